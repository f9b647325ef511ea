package forth

import (
	"fmt"
)

// wordKind distinguishes the three dictionary entry shapes.
type wordKind int

const (
	wordPrim  wordKind = iota // built-in, implemented in Go
	wordConst                 // pushes a fixed value
	wordColon                 // user definition, compiled code
)

type word struct {
	name  string
	kind  wordKind
	prim  func(*Forth)
	value Cell
	code  []instr
}

// opcodes for compiled code.
type opcode int

const (
	opPush    opcode = iota // push val
	opCall                  // execute w
	opBranch                // jump to val
	opBranch0               // pop; jump to val when zero
)

type instr struct {
	op  opcode
	val Cell
	w   *word
}

// ctlKind tracks open control structures during compilation.
type ctlKind int

const (
	ctlIf ctlKind = iota
	ctlElse
	ctlBegin
)

type ctlEntry struct {
	kind ctlKind
	pos  int
}

// compile translates a token stream into executable code. Colon definitions
// encountered in the stream are installed in the dictionary as a side
// effect; everything else becomes the returned anonymous code sequence.
func (f *Forth) compile(tokens []string) ([]instr, error) {
	code, rest, err := f.compileUnit(tokens, "")
	if err != nil {
		return nil, err
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("unexpected %q outside a definition", rest[0])
	}
	return code, nil
}

// compileUnit compiles tokens until the terminator token (or end of input
// when terminator is empty) and returns the remaining tokens.
func (f *Forth) compileUnit(tokens []string, terminator string) ([]instr, []string, error) {
	var code []instr
	var ctl []ctlEntry

	for len(tokens) > 0 {
		tok := tokens[0]
		tokens = tokens[1:]

		if terminator != "" && tok == terminator {
			if len(ctl) != 0 {
				return nil, nil, fmt.Errorf("unterminated control structure in definition")
			}
			return code, tokens, nil
		}

		switch tok {
		case ":":
			if terminator != "" {
				return nil, nil, fmt.Errorf("nested definition")
			}
			if len(tokens) == 0 {
				return nil, nil, fmt.Errorf("definition missing a name")
			}
			name := tokens[0]
			body, rest, err := f.compileUnit(tokens[1:], ";")
			if err != nil {
				return nil, nil, fmt.Errorf("in definition of %q: %w", name, err)
			}
			f.words[name] = &word{name: name, kind: wordColon, code: body}
			tokens = rest

		case "(":
			// Stack comment: discard tokens through the closing paren.
			closed := false
			for len(tokens) > 0 {
				t := tokens[0]
				tokens = tokens[1:]
				if t == ")" {
					closed = true
					break
				}
			}
			if !closed {
				return nil, nil, fmt.Errorf("unterminated comment")
			}

		case "if":
			code = append(code, instr{op: opBranch0, val: -1})
			ctl = append(ctl, ctlEntry{kind: ctlIf, pos: len(code) - 1})

		case "else":
			n := len(ctl)
			if n == 0 || ctl[n-1].kind != ctlIf {
				return nil, nil, fmt.Errorf("else without if")
			}
			code = append(code, instr{op: opBranch, val: -1})
			code[ctl[n-1].pos].val = Cell(len(code))
			ctl[n-1] = ctlEntry{kind: ctlElse, pos: len(code) - 1}

		case "then":
			n := len(ctl)
			if n == 0 || (ctl[n-1].kind != ctlIf && ctl[n-1].kind != ctlElse) {
				return nil, nil, fmt.Errorf("then without if")
			}
			code[ctl[n-1].pos].val = Cell(len(code))
			ctl = ctl[:n-1]

		case "begin":
			ctl = append(ctl, ctlEntry{kind: ctlBegin, pos: len(code)})

		case "until":
			n := len(ctl)
			if n == 0 || ctl[n-1].kind != ctlBegin {
				return nil, nil, fmt.Errorf("until without begin")
			}
			code = append(code, instr{op: opBranch0, val: Cell(ctl[n-1].pos)})
			ctl = ctl[:n-1]

		case ";":
			return nil, nil, fmt.Errorf("; outside a definition")

		default:
			if w, ok := f.words[tok]; ok {
				code = append(code, instr{op: opCall, w: w})
				break
			}
			if n, ok := f.parseNumber(tok); ok {
				code = append(code, instr{op: opPush, val: n})
				break
			}
			return nil, nil, fmt.Errorf("unknown word %q", tok)
		}
	}

	if terminator != "" {
		return nil, nil, fmt.Errorf("missing %q", terminator)
	}
	if len(ctl) != 0 {
		return nil, nil, fmt.Errorf("unterminated control structure")
	}
	return code, tokens, nil
}

// exec runs compiled code. Runtime problems are invariant violations and
// raise fatal faults; exec itself never returns an error.
func (f *Forth) exec(code []instr) {
	f.depth++
	if f.depth > maxCallDepth {
		f.depth--
		raise(FaultCallOverflow, "call depth %d", maxCallDepth)
	}
	defer func() { f.depth-- }()

	for pc := 0; pc < len(code); {
		in := code[pc]
		switch in.op {
		case opPush:
			f.Push(in.val)
			pc++
		case opCall:
			switch in.w.kind {
			case wordPrim:
				in.w.prim(f)
			case wordConst:
				f.Push(in.w.value)
			case wordColon:
				f.exec(in.w.code)
			}
			pc++
		case opBranch:
			pc = int(in.val)
		case opBranch0:
			if f.Pop() == 0 {
				pc = int(in.val)
			} else {
				pc++
			}
		}
	}
}

// boolCell converts a Go condition to the Forth truth cells 1 and 0.
func boolCell(b bool) Cell {
	if b {
		return 1
	}
	return 0
}

func (f *Forth) installBuiltins() {
	prims := map[string]func(*Forth){
		"+": func(f *Forth) { b, a := f.Pop(), f.Pop(); f.Push(a + b) },
		"-": func(f *Forth) { b, a := f.Pop(), f.Pop(); f.Push(a - b) },
		"*": func(f *Forth) { b, a := f.Pop(), f.Pop(); f.Push(a * b) },
		"/": func(f *Forth) {
			b, a := f.Pop(), f.Pop()
			if b == 0 {
				raise(FaultDivideByZero, "%d / 0", a)
			}
			f.Push(a / b)
		},
		"or":  func(f *Forth) { b, a := f.Pop(), f.Pop(); f.Push(a | b) },
		"and": func(f *Forth) { b, a := f.Pop(), f.Pop(); f.Push(a & b) },
		"xor": func(f *Forth) { b, a := f.Pop(), f.Pop(); f.Push(a ^ b) },
		"=":   func(f *Forth) { b, a := f.Pop(), f.Pop(); f.Push(boolCell(a == b)) },
		"<":   func(f *Forth) { b, a := f.Pop(), f.Pop(); f.Push(boolCell(a < b)) },
		">":   func(f *Forth) { b, a := f.Pop(), f.Pop(); f.Push(boolCell(a > b)) },
		"u>": func(f *Forth) {
			b, a := f.Pop(), f.Pop()
			f.Push(boolCell(uint64(a) > uint64(b)))
		},
		"dup":  func(f *Forth) { a := f.Pop(); f.Push(a); f.Push(a) },
		"drop": func(f *Forth) { f.Pop() },
		"swap": func(f *Forth) { b, a := f.Pop(), f.Pop(); f.Push(b); f.Push(a) },
		"over": func(f *Forth) { b, a := f.Pop(), f.Pop(); f.Push(a); f.Push(b); f.Push(a) },
		"rot": func(f *Forth) {
			c, b, a := f.Pop(), f.Pop(), f.Pop()
			f.Push(b)
			f.Push(c)
			f.Push(a)
		},
		"-rot": func(f *Forth) {
			c, b, a := f.Pop(), f.Pop(), f.Pop()
			f.Push(c)
			f.Push(a)
			f.Push(b)
		},
		"nip":  func(f *Forth) { b, _ := f.Pop(), f.Pop(); f.Push(b) },
		"tuck": func(f *Forth) { b, a := f.Pop(), f.Pop(); f.Push(b); f.Push(a); f.Push(b) },
		"@":    func(f *Forth) { f.Push(f.fetch(f.Pop())) },
		"!": func(f *Forth) {
			addr := f.Pop()
			v := f.Pop()
			f.store(addr, v)
		},
		"here": func(f *Forth) { f.Push(f.memory[regHere]) },
		"allot": func(f *Forth) {
			n := f.Pop()
			next := f.memory[regHere] + n
			if next < numRegs || int(next) > len(f.memory) {
				raise(FaultOutOfMemory, "allot %d at %d (core size %d)", n, f.memory[regHere], len(f.memory))
			}
			f.memory[regHere] = next
		},
		".":  func(f *Forth) { fmt.Fprintf(f.out, "%d ", f.Pop()) },
		"cr": func(f *Forth) { fmt.Fprintln(f.out) },
	}
	for name, fn := range prims {
		f.words[name] = &word{name: name, kind: wordPrim, prim: fn}
	}

	// Register words push the core address of an interpreter register so
	// Forth code can read them with @.
	regs := map[string]Cell{
		"base":       regBase,
		"`invalid":   regInvalid,
		"`source-id": regSourceID,
	}
	for name, addr := range regs {
		f.words[name] = &word{name: name, kind: wordConst, value: addr}
	}
}
