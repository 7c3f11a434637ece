// Package broker publishes job events to Redis Streams.
package broker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"golang.org/x/sync/singleflight"

	"github.com/jobber-dev/jobber/internal/config"
	"github.com/jobber-dev/jobber/pkg/logger"
)

// producerCreateTimeout bounds the broker ping made when a topic's producer
// is first created.
const producerCreateTimeout = 5 * time.Second

var Module = fx.Module("broker",
	fx.Provide(
		NewClient,
		NewPublisher,
	),
	fx.Invoke(RegisterLifecycle),
)

// NewClient creates the process-wide broker client from BROKER_URL.
func NewClient(cfg *config.Config) (*redis.Client, error) {
	if err := cfg.Broker.Validate(); err != nil {
		return nil, err
	}

	opts, err := redis.ParseURL(cfg.Broker.URL)
	if err != nil {
		return nil, &config.Error{Key: "BROKER_URL", Reason: fmt.Sprintf("is invalid: %v", err)}
	}
	opts.MaxRetries = cfg.Broker.MaxRetries

	return redis.NewClient(opts), nil
}

// Publisher owns the broker client and at most one Producer per topic.
type Publisher struct {
	client *redis.Client
	maxLen int64
	log    *slog.Logger

	mu        sync.RWMutex
	producers map[string]*Producer
	closed    bool
	group     singleflight.Group
}

// NewPublisher creates a publisher over client.
func NewPublisher(client *redis.Client, cfg *config.Config, log *slog.Logger) *Publisher {
	return &Publisher{
		client:    client,
		maxLen:    cfg.Broker.StreamMaxLen,
		log:       log.With(logger.Scope("broker")),
		producers: make(map[string]*Producer),
	}
}

// RegisterLifecycle closes the publisher on shutdown.
func RegisterLifecycle(lc fx.Lifecycle, p *Publisher) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return p.Close()
		},
	})
}

// Producer returns the producer for topic, creating it on first use.
// Concurrent first uses share one creation, which is not tied to any single
// caller's cancellation.
func (p *Publisher) Producer(ctx context.Context, topic string) (*Producer, error) {
	p.mu.RLock()
	prod, ok := p.producers[topic]
	closed := p.closed
	p.mu.RUnlock()

	if closed {
		return nil, &PublishError{Topic: topic, Err: ErrPublisherClosed}
	}
	if ok {
		return prod, nil
	}

	ch := p.group.DoChan(topic, func() (any, error) {
		return p.createProducer(context.WithoutCancel(ctx), topic)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Producer), nil
	case <-ctx.Done():
		return nil, &PublishError{Topic: topic, Err: ctx.Err()}
	}
}

func (p *Publisher) createProducer(ctx context.Context, topic string) (*Producer, error) {
	p.mu.RLock()
	existing, ok := p.producers[topic]
	p.mu.RUnlock()
	if ok {
		return existing, nil
	}

	pingCtx, cancel := context.WithTimeout(ctx, producerCreateTimeout)
	defer cancel()
	if err := p.client.Ping(pingCtx).Err(); err != nil {
		return nil, &PublishError{Topic: topic, Err: err}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, &PublishError{Topic: topic, Err: ErrPublisherClosed}
	}

	created := &Producer{topic: topic, client: p.client, maxLen: p.maxLen}
	p.producers[topic] = created
	p.log.Info("producer created", slog.String("topic", created.Topic()))
	return created, nil
}

// Publish sends payload to topic through its producer.
func (p *Publisher) Publish(ctx context.Context, topic string, payload []byte) (string, error) {
	prod, err := p.Producer(ctx, topic)
	if err != nil {
		return "", err
	}
	return prod.Send(ctx, payload)
}

// Topics returns the topics that currently have a producer.
func (p *Publisher) Topics() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.topicsLocked()
}

func (p *Publisher) topicsLocked() []string {
	topics := make([]string, 0, len(p.producers))
	for t := range p.producers {
		topics = append(topics, t)
	}
	sort.Strings(topics)
	return topics
}

// Ping checks broker connectivity.
func (p *Publisher) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

// Close closes every producer, then the client. It is idempotent.
func (p *Publisher) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	topics := p.topicsLocked()
	p.closed = true
	producers := p.producers
	p.producers = make(map[string]*Producer)
	p.mu.Unlock()

	for _, prod := range producers {
		prod.Close()
		p.log.Debug("producer closed", slog.String("topic", prod.Topic()))
	}

	p.log.Info("closing broker client", slog.Any("topics", topics))
	if err := p.client.Close(); err != nil && !errors.Is(err, redis.ErrClosed) {
		return fmt.Errorf("close broker client: %w", err)
	}
	return nil
}
