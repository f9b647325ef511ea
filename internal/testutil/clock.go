// Package testutil provides deterministic helpers for harness tests.
package testutil

import "time"

// RunStart is the reference timestamp used across tests and golden
// transcripts.
var RunStart = time.Date(2015, time.September, 14, 10, 30, 0, 0, time.UTC)

// FixedClock returns a clock pinned to t. Banner timestamps and elapsed
// times derived from it are fully deterministic (elapsed is always zero).
func FixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// SteppedClock returns a clock that starts at start and advances by step
// on every reading, so successive measurements are distinct but still
// deterministic.
func SteppedClock(start time.Time, step time.Duration) func() time.Time {
	t := start
	return func() time.Time {
		now := t
		t = t.Add(step)
		return now
	}
}
