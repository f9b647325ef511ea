package harness

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/forthcheck/forthcheck/internal/testutil"
)

func TestLedger_Counts(t *testing.T) {
	l := NewLedger(nil)

	outcomes := []bool{true, false, true, true, false}
	for _, ok := range outcomes {
		l.Record(ok)
	}

	sum := l.Summarize()
	assert.Equal(t, uint(3), sum.Passed)
	assert.Equal(t, uint(2), sum.Failed)
	assert.Equal(t, uint(len(outcomes)), sum.Total)
	assert.False(t, sum.Ok())
}

func TestLedger_TotalAlwaysMatchesChecks(t *testing.T) {
	l := NewLedger(nil)
	for i := 0; i < 100; i++ {
		l.Record(i%3 == 0)
		sum := l.Summarize()
		assert.Equal(t, sum.Passed+sum.Failed, sum.Total)
		assert.Equal(t, uint(i+1), sum.Total)
	}
}

func TestLedger_AllPassed(t *testing.T) {
	l := NewLedger(nil)
	l.Record(true)
	l.Record(true)
	assert.True(t, l.Summarize().Ok())
	assert.Equal(t, uint(2), l.Passed())
	assert.Equal(t, uint(0), l.Failed())
}

func TestLedger_Elapsed(t *testing.T) {
	l := NewLedger(testutil.SteppedClock(testutil.RunStart, 250*time.Millisecond))

	// First reading was consumed by the constructor.
	sum := l.Summarize()
	assert.Equal(t, 250*time.Millisecond, sum.Elapsed)

	sum = l.Summarize()
	assert.Equal(t, 500*time.Millisecond, sum.Elapsed)
}
