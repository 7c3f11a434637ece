package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
)

// Publisher delivers an encoded payload to a broker topic.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload []byte) (string, error)
}

// PublishingJob is a job whose work is emitting its payload as an event.
type PublishingJob struct {
	name        string
	description string
	pub         Publisher
	log         *slog.Logger
}

// NewPublishingJob creates a job that publishes on the topic it is handed.
func NewPublishingJob(name, description string, pub Publisher, log *slog.Logger) *PublishingJob {
	return &PublishingJob{
		name:        name,
		description: description,
		pub:         pub,
		log:         log,
	}
}

// Descriptor implements Provider.
func (j *PublishingJob) Descriptor() Descriptor {
	return Descriptor{
		Name:        j.name,
		Description: j.description,
		Handler:     j.Run,
	}
}

// Run JSON-encodes payload and publishes it on topic. Broker errors are
// returned as-is.
func (j *PublishingJob) Run(ctx context.Context, payload Payload, topic string) error {
	if payload == nil {
		payload = Payload{}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", j.name, err)
	}

	id, err := j.pub.Publish(ctx, topic, data)
	if err != nil {
		return err
	}

	j.log.Info("published job event",
		slog.String("job", j.name),
		slog.String("topic", topic),
		slog.String("message_id", id),
	)
	return nil
}
