// Package forth implements a compact Forth interpreter: a cell-addressed
// core, a data stack, and a dictionary of built-in and user-defined words.
//
// # Public interface
//
// A Forth instance is created with New, fed source text through Eval (or
// SetStringInput/SetReader followed by Run), and inspected through the
// stack interface (Push, Pop, Depth) and the dictionary interface (Find,
// DefineConstant). The whole interpreter state except the stacks can be
// serialized to a core image with SaveCore and revived with LoadCore, so
// word definitions persist across processes.
//
// # Words
//
// The dictionary provides arithmetic and logic (+ - * / or and xor = < >
// u>), stack manipulation (dup drop swap over rot -rot nip tuck), memory
// access (@ ! here allot), colon definitions (: ... ;), conditionals
// (if ... else ... then), loops (begin ... until), stack comments
// (( ... )), and output (. cr). Register words push the core address of an
// interpreter register: base, `invalid and `source-id.
//
// Numbers are parsed according to the base register; base 0 (the default)
// selects the prefix convention 0x... hex, 0... octal, otherwise decimal.
//
// # Error handling
//
// Two failure classes are kept distinct:
//
//   - Ordinary errors (unknown word, malformed definition, bad core image)
//     are returned as error values from Eval, Run and LoadCore. They also
//     set the `invalid register.
//   - Invariant violations (stack underflow, out-of-range memory access,
//     division by zero) raise a fatal fault: a panic carrying *Fault. The
//     interpreter makes no attempt to continue past them.
package forth
