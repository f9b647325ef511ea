package forth

import "fmt"

// FaultCode categorizes fatal faults raised by interpreter invariant checks.
type FaultCode int

const (
	// FaultStackUnderflow indicates a pop from an empty data stack.
	FaultStackUnderflow FaultCode = iota

	// FaultStackOverflow indicates a push beyond the data stack limit.
	FaultStackOverflow

	// FaultBadAddress indicates a memory access outside the core.
	FaultBadAddress

	// FaultDivideByZero indicates integer division by zero.
	FaultDivideByZero

	// FaultOutOfMemory indicates an allot past the end of the core.
	FaultOutOfMemory

	// FaultCallOverflow indicates the word call depth limit was exceeded.
	FaultCallOverflow
)

// String returns the canonical fault class name.
func (c FaultCode) String() string {
	switch c {
	case FaultStackUnderflow:
		return "stack-underflow"
	case FaultStackOverflow:
		return "stack-overflow"
	case FaultBadAddress:
		return "bad-address"
	case FaultDivideByZero:
		return "divide-by-zero"
	case FaultOutOfMemory:
		return "out-of-memory"
	case FaultCallOverflow:
		return "call-overflow"
	default:
		return "unknown-fault"
	}
}

// Fault is the fatal-fault signal raised (via panic) when an interpreter
// invariant is violated. It is not returned as an ordinary error: after an
// invariant violation the interpreter state can no longer be trusted, and
// callers that want to survive must intercept the panic.
type Fault struct {
	Code   FaultCode
	Detail string
}

// Error implements the error interface for callers that recover the fault
// and want to wrap it.
func (f *Fault) Error() string {
	if f.Detail == "" {
		return f.Code.String()
	}
	return fmt.Sprintf("%s: %s", f.Code, f.Detail)
}

// FaultName returns the fault class name. The test harness uses this to
// label intercepted faults without importing interpreter internals.
func (f *Fault) FaultName() string {
	return f.Code.String()
}

// raise aborts execution with a fatal fault.
func raise(code FaultCode, format string, args ...any) {
	panic(&Fault{Code: code, Detail: fmt.Sprintf(format, args...)})
}
