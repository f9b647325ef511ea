package harness

import "time"

// Ledger accumulates pass/fail counts for one run. Counters only ever grow
// and are never reset mid-run; passed+failed equals the number of completed
// checks. Not safe for concurrent use — the harness is single-threaded.
type Ledger struct {
	passed  uint
	failed  uint
	started time.Time
	now     func() time.Time
}

// Summary is the final accounting for a run.
type Summary struct {
	Passed  uint          `json:"passed"`
	Failed  uint          `json:"failed"`
	Total   uint          `json:"total"`
	Elapsed time.Duration `json:"elapsed"`
}

// Ok reports whether every check passed.
func (s Summary) Ok() bool {
	return s.Failed == 0
}

// NewLedger creates a ledger whose elapsed time starts now. The clock is
// injectable so tests and golden transcripts stay deterministic.
func NewLedger(now func() time.Time) *Ledger {
	if now == nil {
		now = time.Now
	}
	return &Ledger{started: now(), now: now}
}

// Record counts one check outcome. Call exactly once per check.
func (l *Ledger) Record(ok bool) {
	if ok {
		l.passed++
	} else {
		l.failed++
	}
}

// Passed returns the running pass count.
func (l *Ledger) Passed() uint { return l.passed }

// Failed returns the running failure count.
func (l *Ledger) Failed() uint { return l.failed }

// Summarize returns the totals and elapsed wall-clock time so far.
func (l *Ledger) Summarize() Summary {
	return Summary{
		Passed:  l.passed,
		Failed:  l.failed,
		Total:   l.passed + l.failed,
		Elapsed: l.now().Sub(l.started),
	}
}
