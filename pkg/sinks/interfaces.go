package sinks

import "context"

// Sink delivers check results to a downstream destination (log, webhook,
// queue, topic).
type Sink interface {
	ID() string
	Type() string
	Publish(ctx context.Context, res Result) error
}
