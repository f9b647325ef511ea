package harness

import (
	"fmt"
	"sync/atomic"
)

// faultNamer is implemented by fault values that know their class name.
// The forth interpreter's *forth.Fault satisfies it; the harness does not
// depend on any particular library's fault type.
type faultNamer interface {
	FaultName() string
}

// Fault describes one intercepted fatal fault.
type Fault struct {
	// Name is the fault class ("stack-underflow", ...), or a rendering of
	// the recovered value when the class is unrecognized.
	Name string

	// Value is the raw recovered panic value, kept for diagnostics.
	Value any
}

// Interceptor converts a fatal fault raised during a protected check into
// an ordinary failed outcome instead of process termination.
//
// The armed flag is the interception contract: a fault is consumed only
// while armed, and arming is exclusive to the one check currently running.
// The flag is atomic so the recovery path and the evaluator agree on its
// value across the interception boundary.
type Interceptor struct {
	armed atomic.Bool
	last  *Fault
}

// NewInterceptor returns a disarmed interceptor.
func NewInterceptor() *Interceptor {
	return &Interceptor{}
}

// Arm marks the start of a protected region. It must be paired with Disarm
// on every exit path; Protect does this for you.
func (in *Interceptor) Arm() {
	in.last = nil
	in.armed.Store(true)
}

// Disarm marks the end of a protected region. Safe to call when already
// disarmed.
func (in *Interceptor) Disarm() {
	in.armed.Store(false)
}

// Armed reports whether a protected region is currently active.
func (in *Interceptor) Armed() bool {
	return in.armed.Load()
}

// LastFault returns the fault consumed by the most recent protected region,
// or nil if it completed normally.
func (in *Interceptor) LastFault() *Fault {
	return in.last
}

// Protect evaluates fn inside an armed region. If fn completes, its result
// is returned with a nil fault. If fn raises a fatal fault, the fault is
// consumed, the outcome is false and the fault is returned. Either way the
// interceptor is disarmed before Protect returns.
//
// A panic arriving while the interceptor is not armed is re-raised: only
// checks are protected, never the surrounding harness.
func (in *Interceptor) Protect(fn func() bool) (ok bool, fault *Fault) {
	in.Arm()
	defer in.Disarm()
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if !in.armed.Load() {
			// Stale or foreign fault: not ours to consume.
			panic(r)
		}
		// Disarm before anything else so a second fault cannot resume here.
		in.armed.Store(false)
		fault = classifyFault(r)
		in.last = fault
		ok = false
	}()
	return fn(), nil
}

// classifyFault names a recovered panic value.
func classifyFault(r any) *Fault {
	if n, ok := r.(faultNamer); ok {
		return &Fault{Name: n.FaultName(), Value: r}
	}
	if err, ok := r.(error); ok {
		return &Fault{Name: fmt.Sprintf("unrecognized fault (%v)", err), Value: r}
	}
	return &Fault{Name: fmt.Sprintf("unrecognized fault (%v)", r), Value: r}
}
