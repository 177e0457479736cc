package progress

import (
	"fmt"
	"strings"
	"time"
)

// Total is the fixed denominator of every Update.
const Total = 100

const (
	// queueStep is reported while the job waits for a worker.
	queueStep = 5
	// timeScale maps a fully elapsed expected duration onto the bar.
	timeScale = 92
	// ceiling is the highest step any non-terminal transition may return.
	// Only OnCompleted yields 100, so the bar never looks done while the
	// remote job is still finalizing or uploading results.
	ceiling = 97
)

// Update is one progress report, forwarded verbatim to the host status sink.
type Update struct {
	Step    int    `json:"step"`
	Total   int    `json:"total"`
	Message string `json:"message"`
}

// Event is an opaque lifecycle notification from the remote queue. The
// estimator only inspects the textual log lines it may carry.
type Event struct {
	Logs []string
}

// Milestone maps a recognizable provider log fragment to a display message.
// An empty Message surfaces the matching log line verbatim.
type Milestone struct {
	Match   string
	Message string
}

// Config describes one job invocation's estimation parameters. It is
// immutable for the invocation's lifetime.
type Config struct {
	// Expected is the caller's estimate of the total job duration, derived
	// from heuristics such as resolution, clip length or image count.
	// Zero or negative saturates the time-based estimate at the ceiling.
	Expected time.Duration

	// QueueMessage is shown while the job waits for a worker.
	QueueMessage string

	// FinalizingMessage is shown with the terminal 100% update.
	FinalizingMessage string

	// StepMessage produces the default in-progress message for a step
	// index. Optional; a generic fallback is used when nil or empty.
	StepMessage func(step int) string

	// Milestones are matched, in order, against provider log lines.
	// A milestone match takes precedence over StepMessage.
	Milestones []Milestone
}

// Estimator turns lifecycle events into bounded progress updates.
//
// Reported steps never decrease within one estimator's event sequence and
// reach exactly 100 only on OnCompleted. Not safe for concurrent use; each
// job invocation owns its own instance.
type Estimator struct {
	cfg      Config
	start    time.Time
	lastStep int

	now func() time.Time // injectable clock for tests
}

// NewEstimator creates an estimator for a single job invocation. The wall
// clock starts ticking here, not at the first event.
func NewEstimator(cfg Config) *Estimator {
	if cfg.QueueMessage == "" {
		cfg.QueueMessage = "Waiting for an available worker..."
	}
	if cfg.FinalizingMessage == "" {
		cfg.FinalizingMessage = "Finalizing result..."
	}
	e := &Estimator{cfg: cfg, now: time.Now}
	e.start = e.now()
	return e
}

// OnQueue reports that the remote job is waiting for a worker. It may be
// called any number of times, including after in-progress events when the
// queue re-enqueues the job; the returned step never regresses.
func (e *Estimator) OnQueue() Update {
	step := queueStep
	if step < e.lastStep {
		step = e.lastStep
	}
	e.lastStep = step
	return Update{Step: step, Total: Total, Message: e.cfg.QueueMessage}
}

// OnProgress reports one in-progress event. stepIndex is the caller's
// monotonic count of in-progress events observed so far; it nudges the bar
// forward even when the time estimate runs long, so the display keeps
// moving on jobs slower than predicted.
func (e *Estimator) OnProgress(ev Event, stepIndex int) Update {
	frac := 1.0
	if e.cfg.Expected > 0 {
		frac = float64(e.now().Sub(e.start)) / float64(e.cfg.Expected)
		if frac < 0 {
			frac = 0
		}
		if frac > 1 {
			frac = 1
		}
	}

	// Blend: the time fraction carries the bar, each observed event adds
	// one point on top. The exact weights are presentation polish.
	step := int(frac*timeScale+0.5) + stepIndex
	if step > ceiling {
		step = ceiling
	}
	if step < e.lastStep {
		step = e.lastStep
	}
	e.lastStep = step

	return Update{Step: step, Total: Total, Message: e.progressMessage(ev, stepIndex)}
}

// OnCompleted reports the terminal transition. It is the only transition
// that returns 100. Callers invoke it exactly once per job.
func (e *Estimator) OnCompleted() Update {
	e.lastStep = Total
	return Update{Step: Total, Total: Total, Message: e.cfg.FinalizingMessage}
}

// progressMessage selects the display text for an in-progress event.
// Precedence: milestone match > configured step message > generic fallback.
func (e *Estimator) progressMessage(ev Event, stepIndex int) string {
	for _, line := range ev.Logs {
		for _, m := range e.cfg.Milestones {
			if m.Match == "" || !strings.Contains(line, m.Match) {
				continue
			}
			if m.Message != "" {
				return m.Message
			}
			return line
		}
	}
	if e.cfg.StepMessage != nil {
		if msg := e.cfg.StepMessage(stepIndex); msg != "" {
			return msg
		}
	}
	return fmt.Sprintf("Processing step %d...", stepIndex)
}
