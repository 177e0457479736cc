package progress

import "go.uber.org/zap"

// Reporter receives progress updates for one job invocation. The host's
// status sink implements this; updates are meant to be forwarded verbatim.
type Reporter interface {
	Report(u Update)
}

// ReporterFunc is a function adapter for Reporter.
type ReporterFunc func(Update)

// Report implements Reporter. A nil func is a no-op.
func (f ReporterFunc) Report(u Update) {
	if f != nil {
		f(u)
	}
}

// Discard drops all updates. Use it when progress display isn't needed.
var Discard Reporter = ReporterFunc(nil)

// NewZapReporter logs updates at debug level. Useful for headless runs and
// tests where no host status sink is attached.
func NewZapReporter(logger *zap.Logger) Reporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return ReporterFunc(func(u Update) {
		logger.Debug("progress",
			zap.Int("step", u.Step),
			zap.Int("total", u.Total),
			zap.String("message", u.Message),
		)
	})
}
