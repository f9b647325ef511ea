package harness

import (
	"bytes"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forthcheck/forthcheck/internal/forth"
	"github.com/forthcheck/forthcheck/internal/testutil"
)

func TestRun_KnownOutcomes(t *testing.T) {
	outcomes := []bool{true, true, false, true, false, false, true}

	var steps []Step
	for _, ok := range outcomes {
		ok := ok
		steps = append(steps, Check("outcome", func() bool { return ok }))
	}
	script := &Script{Name: "known", Phases: []Phase{{Name: "phase", Steps: steps}}}

	r := NewRunner()
	sum, err := r.Run(script)
	require.NoError(t, err)
	assert.Equal(t, uint(4), sum.Passed)
	assert.Equal(t, uint(3), sum.Failed)
	assert.Equal(t, uint(len(outcomes)), sum.Total)
}

// check(1==1), check(1==2), check(fault) must end with one pass,
// two failures, and a completed run.
func TestRun_FaultRecordedAsFailureAndRunContinues(t *testing.T) {
	var afterFault bool
	script := &Script{
		Name: "survival",
		Phases: []Phase{{
			Name: "checks",
			Steps: []Step{
				Check("1 == 1", func() bool { return 1 == 1 }),
				Check("1 == 2", func() bool { return 1 == 2 }),
				Check("faulting", func() bool {
					panic(&forth.Fault{Code: forth.FaultStackUnderflow})
				}),
				State("after fault", func() { afterFault = true }),
			},
		}},
	}

	r := NewRunner()
	sum, err := r.Run(script)
	require.NoError(t, err)
	assert.Equal(t, uint(1), sum.Passed)
	assert.Equal(t, uint(2), sum.Failed)
	assert.True(t, afterFault, "run must continue past an intercepted fault")
	assert.False(t, r.Interceptor().Armed(), "no armed leakage after the run")
}

func TestRun_MustFailureStopsRun(t *testing.T) {
	var ranAfter bool
	script := &Script{
		Name: "abort",
		Phases: []Phase{{
			Name: "setup",
			Steps: []Step{
				Must("setup succeeds", func() bool { return false }),
				Check("never evaluated", func() bool { ranAfter = true; return true }),
			},
		}},
	}

	r := NewRunner()
	sum, err := r.Run(script)
	require.Error(t, err)

	var mustErr *MustError
	require.ErrorAs(t, err, &mustErr)
	assert.Equal(t, "setup succeeds", mustErr.Text)

	assert.False(t, ranAfter, "nothing after a failed mandatory check may run")
	assert.Equal(t, uint(0), sum.Passed)
	assert.Equal(t, uint(1), sum.Failed, "the failed must is still recorded")
}

func TestRun_MustPassBehavesLikeOrdinaryCheck(t *testing.T) {
	script := &Script{
		Name: "must-pass",
		Phases: []Phase{{
			Name: "setup",
			Steps: []Step{
				Must("setup succeeds", func() bool { return true }),
				Check("2+2 == 4", func() bool { return 2+2 == 4 }),
			},
		}},
	}

	r := NewRunner()
	sum, err := r.Run(script)
	require.NoError(t, err)
	assert.Equal(t, uint(2), sum.Passed)
	assert.Equal(t, uint(0), sum.Failed)
	assert.True(t, sum.Ok())
}

func TestRun_StatementsAreNotCounted(t *testing.T) {
	var effects int
	script := &Script{
		Name: "statements",
		Phases: []Phase{{
			Name: "phase",
			Steps: []Step{
				State("effect 1", func() { effects++ }),
				State("effect 2", func() { effects++ }),
				Check("checked once", func() bool { return true }),
			},
		}},
	}

	sum, err := NewRunner().Run(script)
	require.NoError(t, err)
	assert.Equal(t, 2, effects)
	assert.Equal(t, uint(1), sum.Total, "statements must not touch the ledger")
}

func TestRun_DeterministicRerun(t *testing.T) {
	build := func() *Script {
		return &Script{
			Name: "rerun",
			Phases: []Phase{{
				Name: "phase",
				Steps: []Step{
					Check("pass", func() bool { return true }),
					Check("fail", func() bool { return false }),
					Check("fault", func() bool {
						panic(&forth.Fault{Code: forth.FaultDivideByZero})
					}),
				},
			}},
		}
	}

	first, err := NewRunner().Run(build())
	require.NoError(t, err)
	second, err := NewRunner().Run(build())
	require.NoError(t, err)
	assert.Equal(t, first.Passed, second.Passed)
	assert.Equal(t, first.Failed, second.Failed)
	assert.Equal(t, first.Total, second.Total)
}

// TestRun_Transcript pins the exact report stream for a small mixed script.
// Regenerate with: go test ./internal/harness -update
func TestRun_Transcript(t *testing.T) {
	script := &Script{
		Name: "demo",
		Phases: []Phase{{
			Name: "arithmetic",
			Steps: []Step{
				{Kind: KindState, Text: "x = 1", File: "demo.fs", Line: 3,
					Do: func() bool { return true }},
				{Kind: KindCheck, Text: "1 == 1", File: "demo.fs", Line: 5,
					Do: func() bool { return true }},
				{Kind: KindCheck, Text: "1 == 2", File: "demo.fs", Line: 7,
					Do: func() bool { return false }},
				{Kind: KindCheck, Text: "f.Pop()", File: "demo.fs", Line: 9,
					Do: func() bool { panic(&forth.Fault{Code: forth.FaultStackUnderflow}) }},
			},
		}},
	}

	var buf bytes.Buffer
	r := NewRunner(
		WithReporter(NewReporter(&buf, false, false)),
		WithClock(testutil.FixedClock(testutil.RunStart)),
	)
	_, err := r.Run(script)
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "demo_transcript", buf.Bytes())
}

func TestRun_SilentReporterProducesNoOutput(t *testing.T) {
	var buf bytes.Buffer
	r := NewRunner(WithReporter(NewReporter(&buf, false, true)))

	_, err := r.Run(&Script{
		Name: "quiet",
		Phases: []Phase{{
			Name: "phase",
			Steps: []Step{
				State("statement", func() {}),
				Check("fails", func() bool { return false }),
			},
		}},
	})
	require.NoError(t, err)
	assert.Zero(t, buf.Len())
}
