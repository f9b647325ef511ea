package forth

import (
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newForth(t *testing.T) *Forth {
	t.Helper()
	f, err := New(MinCoreSize, io.Discard)
	require.NoError(t, err)
	return f
}

func TestNew_RejectsSmallCore(t *testing.T) {
	_, err := New(MinCoreSize-1, io.Discard)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "below minimum")
}

func TestPushPop(t *testing.T) {
	f := newForth(t)

	assert.Equal(t, 0, f.Depth())
	f.Push(42)
	f.Push(7)
	assert.Equal(t, 2, f.Depth())
	assert.Equal(t, Cell(7), f.Pop())
	assert.Equal(t, Cell(42), f.Pop())
	assert.Equal(t, 0, f.Depth())
}

func TestEval_Arithmetic(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want Cell
	}{
		{"add", "2 2 +", 4},
		{"subtract", "10 3 -", 7},
		{"multiply", "6 7 *", 42},
		{"divide", "18 2 /", 9},
		{"bitwise or", "0xAA0A 0x5055 or", 0xFA5F},
		{"bitwise and", "0xFF 0x0F and", 0x0F},
		{"bitwise xor", "0xFF 0x0F xor", 0xF0},
		{"hex literal", "0x55", 0x55},
		{"octal literal", "017", 15},
		{"negative literal", "-5 3 +", -2},
		{"equal true", "4 4 =", 1},
		{"equal false", "4 5 =", 0},
		{"unsigned greater", "11 10 u>", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newForth(t)
			require.NoError(t, f.Eval(tt.src))
			assert.Equal(t, tt.want, f.Pop())
			assert.Equal(t, 0, f.Depth())
		})
	}
}

func TestEval_StackWords(t *testing.T) {
	f := newForth(t)

	require.NoError(t, f.Eval(" 1 2 3 rot ( 1 2 3 -- 2 3 1 )"))
	assert.Equal(t, Cell(1), f.Pop())
	assert.Equal(t, Cell(3), f.Pop())
	assert.Equal(t, Cell(2), f.Pop())

	require.NoError(t, f.Eval(" 1 2 3 -rot "))
	assert.Equal(t, Cell(2), f.Pop())
	assert.Equal(t, Cell(1), f.Pop())
	assert.Equal(t, Cell(3), f.Pop())

	require.NoError(t, f.Eval(" 3 4 5 nip "))
	assert.Equal(t, Cell(5), f.Pop())
	assert.Equal(t, Cell(3), f.Pop())

	require.NoError(t, f.Eval(" 67 23 tuck "))
	assert.Equal(t, Cell(23), f.Pop())
	assert.Equal(t, Cell(67), f.Pop())
	assert.Equal(t, Cell(23), f.Pop())
}

func TestEval_ColonDefinition(t *testing.T) {
	f := newForth(t)

	assert.False(t, f.Find("unit-01"))
	require.NoError(t, f.Eval(": unit-01 69 ; unit-01 "))
	assert.True(t, f.Find("unit-01"))
	assert.False(t, f.Find("unit-01 "), "dictionary lookup must be exact")
	assert.Equal(t, Cell(69), f.Pop())
}

func TestEval_Conditionals(t *testing.T) {
	f := newForth(t)
	require.NoError(t, f.Eval(": if-test if 0x55 else 0xAA then ;"))

	require.NoError(t, f.Eval("0 if-test"))
	assert.Equal(t, Cell(0xAA), f.Pop())

	f.Push(1)
	require.NoError(t, f.Eval("if-test"))
	assert.Equal(t, Cell(0x55), f.Pop())
}

func TestEval_Loops(t *testing.T) {
	f := newForth(t)
	require.NoError(t, f.Eval(" : loop-test begin 1 + dup 10 u> until ;"))

	require.NoError(t, f.Eval(" 1 loop-test"))
	assert.Equal(t, Cell(11), f.Pop())

	require.NoError(t, f.Eval(" 39 loop-test"))
	assert.Equal(t, Cell(40), f.Pop())
}

func TestEval_HereAndAllot(t *testing.T) {
	f := newForth(t)
	require.NoError(t, f.Eval(" here 32 allot here swap - "))
	assert.Equal(t, Cell(32), f.Pop())
}

func TestEval_CompileErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"unknown word", "bogus-word"},
		{"unterminated definition", ": broken 1 2"},
		{"semicolon outside definition", "1 ;"},
		{"else without if", ": w else then ;"},
		{"until without begin", ": w until ;"},
		{"unterminated comment", "( no closing paren"},
		{"nested definition", ": outer : inner ; ;"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newForth(t)
			require.Error(t, f.Eval(tt.src))

			// Failed evals must set the invalid register.
			require.NoError(t, f.Eval(" `invalid @ "))
			assert.Equal(t, Cell(1), f.Pop())
		})
	}
}

func TestRegisters(t *testing.T) {
	f := newForth(t)

	require.NoError(t, f.Eval(" base @ 0 = "))
	assert.Equal(t, Cell(1), f.Pop())

	require.NoError(t, f.Eval(" `invalid @ 0 = "))
	assert.Equal(t, Cell(1), f.Pop())

	require.NoError(t, f.Eval(" `source-id @ -1 = "))
	assert.Equal(t, Cell(1), f.Pop())
}

func TestBaseRegister_ChangesNumberParsing(t *testing.T) {
	f := newForth(t)

	// Switch to hex-only input: 10 now reads as 16.
	require.NoError(t, f.Eval(" 16 base ! "))
	require.NoError(t, f.Eval(" 10 "))
	assert.Equal(t, Cell(16), f.Pop())
}

func TestDefineConstant(t *testing.T) {
	f := newForth(t)

	require.NoError(t, f.DefineConstant("constant-1", 0xAA0A))
	require.NoError(t, f.DefineConstant("constant-2", 0x5055))
	require.Error(t, f.DefineConstant("", 1))

	require.NoError(t, f.Eval("constant-1 constant-2 or"))
	assert.Equal(t, Cell(0xFA5F), f.Pop())
}

func TestStringInputRun(t *testing.T) {
	f := newForth(t)

	f.SetStringInput(" 18 2 /")
	require.NoError(t, f.Run())
	assert.Equal(t, Cell(9), f.Pop())
}

func TestReaderInputRun(t *testing.T) {
	f := newForth(t)

	f.SetReader(strings.NewReader(" 99 98 + "))
	require.NoError(t, f.Run())
	assert.Equal(t, Cell(197), f.Pop())

	require.NoError(t, f.Eval(" `source-id @ "))
	// Eval switched the source back to string mode.
	assert.Equal(t, Cell(-1), f.Pop())
}

func TestOutputWords(t *testing.T) {
	var out strings.Builder
	f, err := New(MinCoreSize, &out)
	require.NoError(t, err)

	require.NoError(t, f.Eval(" 42 . cr "))
	assert.Equal(t, "42 \n", out.String())
}

func TestFaults(t *testing.T) {
	tests := []struct {
		name string
		run  func(f *Forth)
		want FaultCode
	}{
		{"pop empty stack", func(f *Forth) { f.Pop() }, FaultStackUnderflow},
		{"drop empty stack", func(f *Forth) { _ = f.Eval(" drop ") }, FaultStackUnderflow},
		{"divide by zero", func(f *Forth) { _ = f.Eval(" 1 0 / ") }, FaultDivideByZero},
		{"fetch out of range", func(f *Forth) { _ = f.Eval(" -1 @ ") }, FaultBadAddress},
		{"store out of range", func(f *Forth) { _ = f.Eval(" 1 999999999 ! ") }, FaultBadAddress},
		{"allot past end", func(f *Forth) { _ = f.Eval(" 999999999 allot ") }, FaultOutOfMemory},
		{"deep call chain", func(f *Forth) {
			require.NoError(t, f.Eval(": w0 1 ;"))
			for i := 1; i <= 300; i++ {
				require.NoError(t, f.Eval(fmt.Sprintf(": w%d w%d ;", i, i-1)))
			}
			_ = f.Eval(" w300 ")
		}, FaultCallOverflow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newForth(t)
			defer func() {
				r := recover()
				require.NotNil(t, r, "expected a fatal fault")
				flt, ok := r.(*Fault)
				require.True(t, ok, "panic value %v is not a *Fault", r)
				assert.Equal(t, tt.want, flt.Code)
				assert.Equal(t, tt.want.String(), flt.FaultName())
			}()
			tt.run(f)
		})
	}
}

func TestStackOverflowFault(t *testing.T) {
	f := newForth(t)
	defer func() {
		r := recover()
		require.NotNil(t, r)
		flt, ok := r.(*Fault)
		require.True(t, ok)
		assert.Equal(t, FaultStackOverflow, flt.Code)
	}()
	for {
		f.Push(1)
	}
}
