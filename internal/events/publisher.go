// Package events publishes usage-accounting events to Pub/Sub for the
// downstream billing and analytics pipeline. Publishing is best-effort: a
// failed publish is logged and never affects the request that produced it.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub/v2"
	"github.com/rs/zerolog"
)

// ActionEvent describes one accounted metered action.
type ActionEvent struct {
	DeviceID    string    `json:"device_id"`
	Plan        string    `json:"plan"`
	Action      string    `json:"action"`
	ActionsUsed int       `json:"actions_used"`
	PeriodKey   string    `json:"period_key"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// Config holds configuration for the publisher.
type Config struct {
	ProjectID string
	TopicName string
	Logger    zerolog.Logger
}

// Publisher publishes action events to a Pub/Sub topic.
type Publisher struct {
	client    *pubsub.Client
	publisher *pubsub.Publisher
	topicName string
	logger    zerolog.Logger
}

// NewPublisher creates a new Pub/Sub publisher.
func NewPublisher(ctx context.Context, cfg Config) (*Publisher, error) {
	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	return &Publisher{
		client:    client,
		publisher: client.Publisher(cfg.TopicName),
		topicName: cfg.TopicName,
		logger:    cfg.Logger,
	}, nil
}

// Publish sends one action event. Errors are logged, not returned; accounting
// has already happened in the ledger and the response must not depend on the
// analytics pipeline.
func (p *Publisher) Publish(ctx context.Context, event ActionEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		p.logger.Error().Err(err).Msg("failed to encode action event")
		return
	}

	result := p.publisher.Publish(ctx, &pubsub.Message{Data: data})
	go func() {
		if _, err := result.Get(context.WithoutCancel(ctx)); err != nil {
			p.logger.Error().
				Err(err).
				Str("topic", p.topicName).
				Str("device_id", event.DeviceID).
				Msg("failed to publish action event")
		}
	}()
}

// Close flushes pending messages and closes the client.
func (p *Publisher) Close() error {
	p.publisher.Stop()
	return p.client.Close()
}
