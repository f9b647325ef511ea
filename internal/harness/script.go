package harness

import "runtime"

// Kind distinguishes the operations a script step can perform.
type Kind int

const (
	// KindState is a side-effecting statement. It always executes and is
	// not fault-protected.
	KindState Kind = iota

	// KindCheck is a fault-protected boolean check.
	KindCheck

	// KindMust is a check whose failure aborts the whole run.
	KindMust
)

// Step is one operation in a script.
type Step struct {
	Kind Kind
	Text string // textual form, printed in report lines
	File string // declaration site, reported on failure
	Line int
	Do   func() bool
}

// Phase is a named, ordered list of steps. Later phases may rely on state
// established by earlier ones; nothing is rolled back on failure.
type Phase struct {
	Name  string
	Steps []Step
}

// Script is a complete run: an ordered list of phases consumed by the
// Runner. Keeping the operations as data rather than control flow lets the
// same Runner execute hand-written suites and loaded scenarios alike.
type Script struct {
	Name   string
	Phases []Phase
}

// State builds a statement step. fn runs unprotected; its failure is a
// harness crash, not a recorded check.
func State(text string, fn func()) Step {
	file, line := caller()
	return Step{
		Kind: KindState,
		Text: text,
		File: file,
		Line: line,
		Do:   func() bool { fn(); return true },
	}
}

// Check builds a fault-protected check step.
func Check(text string, fn func() bool) Step {
	file, line := caller()
	return Step{Kind: KindCheck, Text: text, File: file, Line: line, Do: fn}
}

// Must builds a mandatory check step: on failure the run stops immediately.
func Must(text string, fn func() bool) Step {
	file, line := caller()
	return Step{Kind: KindMust, Text: text, File: file, Line: line, Do: fn}
}

// caller captures the step constructor's call site.
func caller() (string, int) {
	_, file, line, ok := runtime.Caller(2)
	if !ok {
		return "unknown", 0
	}
	return file, line
}
