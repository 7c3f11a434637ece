package broker

import (
	"context"
	"sync/atomic"

	"github.com/redis/go-redis/v9"
)

// payloadField is the stream entry field holding the encoded payload.
const payloadField = "payload"

// Producer sends messages to a single topic. A topic maps to one Redis
// stream; the message identifier is the stream entry ID.
type Producer struct {
	topic  string
	client redis.Cmdable
	maxLen int64
	closed atomic.Bool
}

// Topic returns the topic this producer is bound to.
func (p *Producer) Topic() string {
	return p.topic
}

// Send appends payload to the topic and returns the broker-assigned id.
func (p *Producer) Send(ctx context.Context, payload []byte) (string, error) {
	if p.closed.Load() {
		return "", &PublishError{Topic: p.topic, Err: ErrProducerClosed}
	}

	args := &redis.XAddArgs{
		Stream: p.topic,
		Values: map[string]any{payloadField: payload},
	}
	if p.maxLen > 0 {
		args.MaxLen = p.maxLen
		args.Approx = true
	}

	id, err := p.client.XAdd(ctx, args).Result()
	if err != nil {
		return "", &PublishError{Topic: p.topic, Err: err}
	}
	return id, nil
}

// Close marks the producer closed. Subsequent sends fail.
func (p *Producer) Close() {
	p.closed.Store(true)
}
