// Package suite contains the fixed check sequence exercising the forth
// interpreter's public interface: the test content the harness executes.
package suite

import (
	"io"
	"os"

	"github.com/forthcheck/forthcheck/internal/forth"
	"github.com/forthcheck/forthcheck/internal/harness"
)

// Config adjusts the suite without changing its checks.
type Config struct {
	// CorePath is where the persistence phase saves the core image.
	CorePath string

	// KeepFiles retains the core image after the run.
	KeepFiles bool

	// CoreSize is the interpreter core size; zero selects the minimum.
	CoreSize int

	// Out receives interpreter word output (the . and cr words).
	Out io.Writer
}

// Build assembles the interpreter test script. The phases depend on each
// other only through the saved core image: the setup phase writes it, the
// persistence phase reloads it.
func Build(cfg Config) *harness.Script {
	if cfg.CoreSize == 0 {
		cfg.CoreSize = forth.MinCoreSize
	}
	if cfg.CorePath == "" {
		cfg.CorePath = "unit.core"
	}

	var (
		f       *forth.Forth
		initErr error
		here    forth.Cell
	)

	evalOK := func(src string) func() bool {
		return func() bool { return f.Eval(src) == nil }
	}
	popIs := func(want forth.Cell) func() bool {
		return func() bool { return f.Pop() == want }
	}

	setup := harness.Phase{Name: "setup and push/pop interface", Steps: []harness.Step{
		harness.State("f = forth.New(MinCoreSize)", func() {
			f, initErr = forth.New(cfg.CoreSize, cfg.Out)
		}),
		harness.Must("f != nil", func() bool { return initErr == nil && f != nil }),

		harness.Check("f.Depth() == 0", func() bool { return f.Depth() == 0 }),
		harness.Check(`f.Eval("here ") == nil`, evalOK("here ")),
		harness.State("here = f.Pop()", func() { here = f.Pop() }),
		harness.State("f.Push(here)", func() { f.Push(here) }),
		harness.Check(`f.Eval("2 2 + ") == nil`, evalOK("2 2 + ")),
		harness.Check("f.Pop() == 4", popIs(4)),

		// Define a word, call it, pop the result.
		harness.Check(`!f.Find("unit-01")`, func() bool { return !f.Find("unit-01") }),
		harness.Check(`f.Eval(": unit-01 69 ; unit-01 ") == nil`, evalOK(": unit-01 69 ; unit-01 ")),
		harness.Check(`f.Find("unit-01")`, func() bool { return f.Find("unit-01") }),
		// Note the trailing space: dictionary lookups are exact.
		harness.Check(`!f.Find("unit-01 ")`, func() bool { return !f.Find("unit-01 ") }),
		harness.Check("f.Pop() == 69", popIs(69)),
		harness.Check("f.Depth() == 1", func() bool { return f.Depth() == 1 }), // "here" still on stack

		// Constants.
		harness.Check(`f.DefineConstant("constant-1", 0xAA0A) == nil`, func() bool {
			return f.DefineConstant("constant-1", 0xAA0A) == nil
		}),
		harness.Check(`f.DefineConstant("constant-2", 0x5055) == nil`, func() bool {
			return f.DefineConstant("constant-2", 0x5055) == nil
		}),
		harness.Check(`f.Eval("constant-1 constant-2 or") == nil`, evalOK("constant-1 constant-2 or")),
		harness.Check("f.Pop() == 0xFA5F", popIs(0xFA5F)),

		// String input.
		harness.State(`f.SetStringInput(" 18 2 /")`, func() { f.SetStringInput(" 18 2 /") }),
		harness.Check("f.Run() == nil", func() bool { return f.Run() == nil }),
		harness.Check("f.Pop() == 9", popIs(9)),
		harness.State("f.SetReader(os.Stdin)", func() { f.SetReader(os.Stdin) }),

		// Save the core for the persistence phase.
		harness.Check("f.SaveCore(core) == nil", func() bool {
			core, err := os.Create(cfg.CorePath)
			if err != nil {
				return false
			}
			defer core.Close()
			return f.SaveCore(core) == nil
		}),

		// More simple arithmetic.
		harness.State("f.Push(99)", func() { f.Push(99) }),
		harness.State("f.Push(98)", func() { f.Push(98) }),
		harness.Check(`f.Eval("+") == nil`, evalOK("+")),
		harness.Check("f.Pop() == 197", popIs(197)),
		harness.Check("f.Depth() == 1", func() bool { return f.Depth() == 1 }),
		harness.Check("here == f.Pop()", func() bool { return here == f.Pop() }),
		harness.State("f = nil", func() { f = nil }),
	}}

	persistence := harness.Phase{Name: "persistence of word definitions across core loads", Steps: []harness.Step{
		harness.State("f = forth.LoadCore(core)", func() {
			core, err := os.Open(cfg.CorePath)
			if err != nil {
				f, initErr = nil, err
				return
			}
			defer core.Close()
			f, initErr = forth.LoadCore(core, cfg.Out)
		}),
		// Stack position does not persist across loads.
		harness.Check("f.Depth() == 0", func() bool { return f.Depth() == 0 }),
		harness.Must("f != nil", func() bool { return initErr == nil && f != nil }),

		// The word "unit-01" was defined before the save.
		harness.Check(`f.Find("unit-01")`, func() bool { return f.Find("unit-01") }),
		harness.Check(`f.Eval("unit-01 constant-1 *") == nil`, evalOK("unit-01 constant-1 *")),
		harness.Check("f.Pop() == 69 * 0xAA0A", popIs(69*0xAA0A)),
		harness.Check("f.Depth() == 0", func() bool { return f.Depth() == 0 }),

		harness.State("remove core file", func() {
			if !cfg.KeepFiles {
				os.Remove(cfg.CorePath)
			}
		}),
	}}

	builtins := harness.Phase{Name: "built-in words", Steps: []harness.Step{
		harness.State("f = forth.New(MinCoreSize)", func() {
			f, initErr = forth.New(cfg.CoreSize, cfg.Out)
		}),
		harness.Must("f != nil", func() bool { return initErr == nil && f != nil }),

		// if...else...then and hex conversion.
		harness.Check(`f.Eval(": if-test if 0x55 else 0xAA then ;") == nil`,
			evalOK(": if-test if 0x55 else 0xAA then ;")),
		harness.Check(`f.Eval("0 if-test") == nil`, evalOK("0 if-test")),
		harness.Check("f.Pop() == 0xAA", popIs(0xAA)),
		harness.State("f.Push(1)", func() { f.Push(1) }),
		harness.Check(`f.Eval("if-test") == nil`, evalOK("if-test")),
		harness.Check("f.Pop() == 0x55", popIs(0x55)),

		// Simple loops.
		harness.Check(`f.Eval(" : loop-test begin 1 + dup 10 u> until ;") == nil`,
			evalOK(" : loop-test begin 1 + dup 10 u> until ;")),
		harness.Check(`f.Eval(" 1 loop-test") == nil`, evalOK(" 1 loop-test")),
		harness.Check("f.Pop() == 11", popIs(11)),
		harness.Check(`f.Eval(" 39 loop-test") == nil`, evalOK(" 39 loop-test")),
		harness.Check("f.Pop() == 40", popIs(40)),

		// rot and comments.
		harness.Check(`f.Eval(" 1 2 3 rot ( 1 2 3 -- 2 3 1 )") == nil`,
			evalOK(" 1 2 3 rot ( 1 2 3 -- 2 3 1 )")),
		harness.Check("f.Pop() == 1", popIs(1)),
		harness.Check("f.Pop() == 3", popIs(3)),
		harness.Check("f.Pop() == 2", popIs(2)),

		harness.Check(`f.Eval(" 1 2 3 -rot ") == nil`, evalOK(" 1 2 3 -rot ")),
		harness.Check("f.Pop() == 2", popIs(2)),
		harness.Check("f.Pop() == 1", popIs(1)),
		harness.Check("f.Pop() == 3", popIs(3)),

		harness.Check(`f.Eval(" 3 4 5 nip ") == nil`, evalOK(" 3 4 5 nip ")),
		harness.Check("f.Pop() == 5", popIs(5)),
		harness.Check("f.Pop() == 3", popIs(3)),

		harness.Check(`f.Eval(" here 32 allot here swap - ") == nil`,
			evalOK(" here 32 allot here swap - ")),
		harness.Check("f.Pop() == 32", popIs(32)),

		harness.Check(`f.Eval(" 67 23 tuck ") == nil`, evalOK(" 67 23 tuck ")),
		harness.Check("f.Pop() == 23", popIs(23)),
		harness.Check("f.Pop() == 67", popIs(67)),
		harness.Check("f.Pop() == 23", popIs(23)),
	}}

	internals := harness.Phase{Name: "interpreter internals", Steps: []harness.Step{
		harness.State("f = forth.New(MinCoreSize)", func() {
			f, initErr = forth.New(cfg.CoreSize, cfg.Out)
		}),
		harness.Must("f != nil", func() bool { return initErr == nil && f != nil }),

		// Base starts at zero: the prefix auto-detection mode.
		harness.Check(`f.Eval(" base @ 0 = ") == nil`, evalOK(" base @ 0 = ")),
		harness.Check("f.Pop() != 0", func() bool { return f.Pop() != 0 }),

		// The invalid flag is clear on a fresh interpreter.
		harness.Check("f.Eval(\" `invalid @ 0 = \") == nil", evalOK(" `invalid @ 0 = ")),
		harness.Check("f.Pop() != 0", func() bool { return f.Pop() != 0 }),

		// Source id is -1 while reading from a string.
		harness.Check("f.Eval(\" `source-id @ -1 = \") == nil", evalOK(" `source-id @ -1 = ")),
		harness.Check("f.Pop() != 0", func() bool { return f.Pop() != 0 }),
	}}

	return &harness.Script{
		Name:   "forth",
		Phases: []harness.Phase{setup, persistence, builtins, internals},
	}
}
