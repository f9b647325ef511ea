package harness

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"
)

// MustError reports that a mandatory check failed and the run was aborted.
// The summary of checks completed so far has already been reported.
type MustError struct {
	Text string
	File string
	Line int
}

// Error implements the error interface.
func (e *MustError) Error() string {
	return fmt.Sprintf("mandatory check failed: %s (%s:%d)", e.Text, filepath.Base(e.File), e.Line)
}

// Runner is the run controller: it owns the harness state (ledger,
// interceptor, reporter) for exactly one run and executes a script's phases
// strictly in sequence. Construct a fresh Runner per run.
type Runner struct {
	ledger *Ledger
	intr   *Interceptor
	rep    *Reporter
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Runner.
type Option func(*Runner)

// WithReporter sets the report destination. The default reporter is plain
// and writes nowhere.
func WithReporter(rep *Reporter) Option {
	return func(r *Runner) { r.rep = rep }
}

// WithLogger sets the diagnostic logger. Logs are discarded by default.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) { r.logger = logger }
}

// WithClock overrides the wall clock, pinning banner timestamps and elapsed
// times for deterministic transcripts.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

// NewRunner creates a run controller with a zeroed ledger and a disarmed
// interceptor.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		rep:    NewReporter(io.Discard, false, true),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.ledger = NewLedger(r.now)
	r.intr = NewInterceptor()
	return r
}

// Ledger exposes the run's ledger, mainly for callers that record history.
func (r *Runner) Ledger() *Ledger {
	return r.ledger
}

// Interceptor exposes the fault interceptor, mainly for leak checks.
func (r *Runner) Interceptor() *Interceptor {
	return r.intr
}

// Run executes the script and returns the final summary. The returned error
// is non-nil only when a mandatory check failed (*MustError); ordinary
// check failures are reported through the summary.
func (r *Runner) Run(s *Script) (Summary, error) {
	r.rep.Banner(s.Name, r.now())

	for _, phase := range s.Phases {
		r.rep.Note(phase.Name)
		r.logger.Debug("phase start", "phase", phase.Name)

		for _, step := range phase.Steps {
			switch step.Kind {
			case KindState:
				r.rep.Statement(step.Text)
				step.Do()

			case KindCheck:
				r.check(step)

			case KindMust:
				r.rep.Must(step.Text)
				if !r.check(step) {
					sum := r.ledger.Summarize()
					r.rep.Summary(s.Name, sum)
					r.logger.Error("mandatory check failed",
						"check", step.Text, "file", step.File, "line", step.Line)
					return sum, &MustError{Text: step.Text, File: step.File, Line: step.Line}
				}
			}
		}
	}

	sum := r.ledger.Summarize()
	r.rep.Summary(s.Name, sum)
	r.logger.Info("run complete",
		"passed", sum.Passed, "failed", sum.Failed, "elapsed", sum.Elapsed)
	return sum, nil
}

// check evaluates one step under fault protection, records it in the ledger
// exactly once, and reports the outcome.
func (r *Runner) check(step Step) bool {
	ok, fault := r.intr.Protect(step.Do)
	r.ledger.Record(ok)

	if fault != nil {
		r.rep.Fault(fault.Name)
		r.logger.Debug("fault intercepted", "check", step.Text, "fault", fault.Name)
	}
	if ok {
		r.rep.Pass(step.Text)
	} else {
		r.rep.Fail(step.Text, step.File, step.Line)
	}
	return ok
}
