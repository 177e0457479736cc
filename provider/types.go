package provider

// Phase is the lifecycle phase of a queued inference job.
type Phase string

const (
	PhaseQueued     Phase = "IN_QUEUE"
	PhaseInProgress Phase = "IN_PROGRESS"
	PhaseCompleted  Phase = "COMPLETED"
)

// Terminal reports whether the phase ends the job's lifecycle.
func (p Phase) Terminal() bool { return p == PhaseCompleted }

// LogEntry is one provider-emitted log line attached to a status update.
type LogEntry struct {
	Message   string `json:"message"`
	Level     string `json:"level,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

// QueueUpdate is one lifecycle event for a submitted job. Phase-specific
// payload: QueuePosition is meaningful while queued, Logs while in progress.
type QueueUpdate struct {
	Phase         Phase      `json:"status"`
	QueuePosition int        `json:"queue_position,omitempty"`
	Logs          []LogEntry `json:"logs,omitempty"`
	ResponseURL   string     `json:"response_url,omitempty"`

	// Err is set by Subscribe when the event stream breaks; it is never
	// populated from the wire.
	Err *Error `json:"-"`
}

// LogLines flattens the update's log messages.
func (u *QueueUpdate) LogLines() []string {
	if len(u.Logs) == 0 {
		return nil
	}
	lines := make([]string, 0, len(u.Logs))
	for _, l := range u.Logs {
		lines = append(lines, l.Message)
	}
	return lines
}

// JobHandle identifies a submitted job and the URLs the queue returned for
// tracking it.
type JobHandle struct {
	RequestID   string `json:"request_id"`
	Endpoint    string `json:"-"`
	StatusURL   string `json:"status_url"`
	ResponseURL string `json:"response_url"`
	CancelURL   string `json:"cancel_url"`
}
