package broker

import (
	"errors"
	"fmt"
)

var (
	// ErrProducerClosed is returned by Send after the producer was closed.
	ErrProducerClosed = errors.New("broker: producer closed")

	// ErrPublisherClosed is returned when a producer is requested after Close.
	ErrPublisherClosed = errors.New("broker: publisher closed")
)

// PublishError reports a failure to create a producer for, or deliver a
// message to, a topic.
type PublishError struct {
	Topic string
	Err   error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("broker: publish to %q: %v", e.Topic, e.Err)
}

func (e *PublishError) Unwrap() error {
	return e.Err
}
