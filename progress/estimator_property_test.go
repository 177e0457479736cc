package progress

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

// Property: for any interleaving of queue and in-progress events, the step
// sequence is non-decreasing, stays inside [0,100), and only the terminal
// transition returns exactly 100.
func TestProperty_Estimator_MonotonicBounded(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		expected := time.Duration(rapid.Int64Range(-1000, 120_000).Draw(rt, "expectedMs")) * time.Millisecond
		e, clock := newClockedEstimator(Config{Expected: expected})

		numEvents := rapid.IntRange(1, 40).Draw(rt, "numEvents")
		prev := 0
		stepIndex := 0
		for i := 0; i < numEvents; i++ {
			clock.Advance(time.Duration(rapid.Int64Range(0, 10_000).Draw(rt, "advanceMs")) * time.Millisecond)

			var u Update
			if rapid.Bool().Draw(rt, "queued") {
				u = e.OnQueue()
			} else {
				stepIndex++
				u = e.OnProgress(Event{}, stepIndex)
			}

			assert.GreaterOrEqual(rt, u.Step, prev, "step must never decrease")
			assert.GreaterOrEqual(rt, u.Step, 0)
			assert.Less(rt, u.Step, 100, "only OnCompleted may reach 100")
			assert.Equal(rt, Total, u.Total)
			prev = u.Step
		}

		done := e.OnCompleted()
		assert.Equal(rt, 100, done.Step)
		assert.GreaterOrEqual(rt, done.Step, prev)
	})
}

// Property: the first OnQueue of a fresh estimator always lands in [0,10],
// regardless of configuration.
func TestProperty_Estimator_InitialQueueStepLow(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		expected := time.Duration(rapid.Int64Range(1, 600_000).Draw(rt, "expectedMs")) * time.Millisecond
		e, _ := newClockedEstimator(Config{Expected: expected})

		u := e.OnQueue()
		assert.GreaterOrEqual(rt, u.Step, 0)
		assert.LessOrEqual(rt, u.Step, 10)
	})
}

// Property: a recognized milestone log always wins over the default step
// message, whatever the surrounding log lines look like.
func TestProperty_Estimator_MilestonePrecedence(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		const marker = "ksampler"
		e, _ := newClockedEstimator(Config{
			Expected:    time.Minute,
			Milestones:  []Milestone{{Match: marker, Message: "Sampling..."}},
			StepMessage: func(step int) string { return "default" },
		})

		noise := rapid.SliceOfN(rapid.StringMatching(`[a-z ]{0,20}`), 0, 5).Draw(rt, "noise")
		line := rapid.StringMatching(`[a-z ]{0,10}`).Draw(rt, "prefix") + marker +
			rapid.StringMatching(`[a-z ]{0,10}`).Draw(rt, "suffix")
		logs := append(append([]string{}, noise...), line)

		u := e.OnProgress(Event{Logs: logs}, 1)
		assert.Equal(rt, "Sampling...", u.Message)
	})
}
