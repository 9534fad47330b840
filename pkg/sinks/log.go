package sinks

import "context"

// logSink writes results to the structured log. Always succeeds.
type logSink struct {
	id  string
	typ string
	log Logger
}

func newLogSink(_ context.Context, cfg SinkConfig, log Logger) (Sink, error) {
	return &logSink{id: cfg.ID, typ: TypeLog, log: ensureLogger(log)}, nil
}

func (l *logSink) ID() string   { return l.id }
func (l *logSink) Type() string { return l.typ }

func (l *logSink) Publish(_ context.Context, res Result) error {
	if res.Passed {
		l.log.InfoObj("check result", "check_result", res)
	} else {
		l.log.WarnObj("check result", "check_result", res)
	}
	return nil
}
