package forth

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Cell is the interpreter's machine word.
type Cell int64

// Core size limits, in cells.
const (
	// MinCoreSize is the smallest core New accepts.
	MinCoreSize = 2048

	// DefaultCoreSize is a comfortable core for interactive use.
	DefaultCoreSize = 32768
)

// Interpreter registers live at fixed core addresses so that Forth code can
// inspect them with @ and !.
const (
	regBase     = 0 // numeric input base; 0 selects prefix auto-detection
	regInvalid  = 1 // set to 1 when the last Eval/Run failed
	regSourceID = 2 // -1 while reading from a string, 0 for a reader
	regHere     = 3 // next free core cell
	numRegs     = 8 // cells 4..7 reserved
)

const (
	maxStackDepth = 1024
	maxCallDepth  = 256

	// sourceString and sourceReader are the `source-id register values.
	sourceString Cell = -1
	sourceReader Cell = 0
)

// Forth is one interpreter instance. Instances are independent and none of
// the methods are safe for concurrent use.
type Forth struct {
	stack   []Cell
	memory  []Cell
	words   map[string]*word
	out     io.Writer
	pending string
	reader  io.Reader
	depth   int // current word call depth
}

// New creates an interpreter with a core of size cells writing word output
// to out. Size must be at least MinCoreSize.
func New(size int, out io.Writer) (*Forth, error) {
	if size < MinCoreSize {
		return nil, fmt.Errorf("core size %d below minimum %d", size, MinCoreSize)
	}
	if out == nil {
		out = io.Discard
	}
	f := &Forth{
		stack:  make([]Cell, 0, maxStackDepth),
		memory: make([]Cell, size),
		words:  make(map[string]*word),
		out:    out,
	}
	f.memory[regHere] = numRegs
	f.memory[regSourceID] = sourceReader
	f.installBuiltins()
	return f, nil
}

// Push places v on top of the data stack. Pushing beyond the stack limit is
// an invariant violation and raises a fatal fault.
func (f *Forth) Push(v Cell) {
	if len(f.stack) >= maxStackDepth {
		raise(FaultStackOverflow, "depth %d", len(f.stack))
	}
	f.stack = append(f.stack, v)
}

// Pop removes and returns the top of the data stack. Popping an empty stack
// is an invariant violation and raises a fatal fault.
func (f *Forth) Pop() Cell {
	if len(f.stack) == 0 {
		raise(FaultStackUnderflow, "pop on empty stack")
	}
	v := f.stack[len(f.stack)-1]
	f.stack = f.stack[:len(f.stack)-1]
	return v
}

// Depth returns the number of cells on the data stack.
func (f *Forth) Depth() int {
	return len(f.stack)
}

// Find reports whether name is defined in the dictionary. The match is
// exact: trailing or embedded spaces make the lookup fail.
func (f *Forth) Find(name string) bool {
	_, ok := f.words[name]
	return ok
}

// DefineConstant installs a word that pushes v when executed.
func (f *Forth) DefineConstant(name string, v Cell) error {
	if name == "" {
		return fmt.Errorf("constant name must not be empty")
	}
	f.words[name] = &word{name: name, kind: wordConst, value: v}
	return nil
}

// Eval compiles and runs one string of source text. Compilation problems
// (unknown words, malformed control flow) are returned as errors and set
// the `invalid register; faults raised while running propagate as panics.
func (f *Forth) Eval(src string) error {
	f.memory[regSourceID] = sourceString
	code, err := f.compile(strings.Fields(src))
	if err != nil {
		f.memory[regInvalid] = 1
		return err
	}
	f.exec(code)
	return nil
}

// SetStringInput queues s as the interpreter's input for the next Run.
func (f *Forth) SetStringInput(s string) {
	f.pending = s
	f.reader = nil
	f.memory[regSourceID] = sourceString
}

// SetReader directs the interpreter to read input from r on the next Run.
func (f *Forth) SetReader(r io.Reader) {
	f.reader = r
	f.pending = ""
	f.memory[regSourceID] = sourceReader
}

// Run interprets whatever input source was configured last. String input is
// consumed; a reader is drained to EOF.
func (f *Forth) Run() error {
	if f.reader != nil {
		data, err := io.ReadAll(f.reader)
		if err != nil {
			f.memory[regInvalid] = 1
			return fmt.Errorf("read input: %w", err)
		}
		src := string(data)
		code, cerr := f.compile(strings.Fields(src))
		if cerr != nil {
			f.memory[regInvalid] = 1
			return cerr
		}
		f.exec(code)
		return nil
	}
	src := f.pending
	f.pending = ""
	return f.Eval(src)
}

// fetch reads the core cell at addr, faulting on out-of-range addresses.
func (f *Forth) fetch(addr Cell) Cell {
	if addr < 0 || int(addr) >= len(f.memory) {
		raise(FaultBadAddress, "fetch at %d (core size %d)", addr, len(f.memory))
	}
	return f.memory[addr]
}

// store writes v to the core cell at addr, faulting on out-of-range
// addresses.
func (f *Forth) store(addr, v Cell) {
	if addr < 0 || int(addr) >= len(f.memory) {
		raise(FaultBadAddress, "store at %d (core size %d)", addr, len(f.memory))
	}
	f.memory[addr] = v
}

// parseNumber interprets tok according to the base register. Base 0 uses
// the prefix convention (0x hex, leading 0 octal, decimal otherwise).
func (f *Forth) parseNumber(tok string) (Cell, bool) {
	base := int(f.memory[regBase])
	if base < 0 || base == 1 || base > 36 {
		base = 0
	}
	n, err := strconv.ParseInt(tok, base, 64)
	if err != nil {
		return 0, false
	}
	return Cell(n), true
}
