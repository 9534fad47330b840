package sinks

import (
	"context"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/pubsub"
	"google.golang.org/api/option"
)

// pubsubPublisher is the minimal topic surface used by pubsubSink, so tests
// can fake it without a live Pub/Sub connection.
type pubsubPublisher interface {
	Publish(ctx context.Context, data []byte, attrs map[string]string) (string, error)
	Stop()
}

// topicAdapter adapts *pubsub.Topic to pubsubPublisher.
type topicAdapter struct {
	topic *pubsub.Topic
}

func (t topicAdapter) Publish(ctx context.Context, data []byte, attrs map[string]string) (string, error) {
	res := t.topic.Publish(ctx, &pubsub.Message{Data: data, Attributes: attrs})
	return res.Get(ctx)
}

func (t topicAdapter) Stop() { t.topic.Stop() }

// pubsubSink implements the Sink interface for Google Cloud Pub/Sub.
type pubsubSink struct {
	id     string
	typ    string
	topic  pubsubPublisher
	client *pubsub.Client
	log    Logger
}

// newPubSubSink creates a new Pub/Sub sink with the given configuration.
func newPubSubSink(ctx context.Context, cfg SinkConfig, log Logger) (Sink, error) {
	if cfg.PubSub == nil {
		return nil, fmt.Errorf("sink %q missing gcppubsub configuration", cfg.ID)
	}

	if ctx == nil {
		ctx = context.Background()
	}

	var opts []option.ClientOption
	if cfg.PubSub.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.PubSub.CredentialsFile))
	}

	client, err := pubsub.NewClient(ctx, cfg.PubSub.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("create pubsub client: %w", err)
	}

	return &pubsubSink{
		id:     cfg.ID,
		typ:    TypePubSub,
		topic:  topicAdapter{topic: client.Topic(cfg.PubSub.TopicID)},
		client: client,
		log:    ensureLogger(log),
	}, nil
}

func (p *pubsubSink) ID() string   { return p.id }
func (p *pubsubSink) Type() string { return p.typ }

// Publish sends the result to the configured Pub/Sub topic.
func (p *pubsubSink) Publish(ctx context.Context, res Result) error {
	payload, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	attrs := map[string]string{
		"run_id": res.RunID,
		"suite":  res.Suite,
		"check":  res.Check,
	}

	msgID, err := p.topic.Publish(ctx, payload, attrs)
	if err != nil {
		p.log.ErrorObj("pubsub sink publish failed", "sink_pubsub_error", map[string]any{
			"sink_id": p.id,
			"error":   err.Error(),
		})
		return fmt.Errorf("publish to pubsub: %w", err)
	}
	p.log.DebugObj("pubsub sink delivered result", "sink_pubsub_delivery", map[string]any{
		"sink_id":    p.id,
		"message_id": msgID,
	})
	return nil
}

// Close stops the topic and releases the underlying client.
func (p *pubsubSink) Close() error {
	if p == nil {
		return nil
	}
	if p.topic != nil {
		p.topic.Stop()
	}
	if p.client != nil {
		return p.client.Close()
	}
	return nil
}
