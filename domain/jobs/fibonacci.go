package jobs

import (
	"log/slog"

	"github.com/jobber-dev/jobber/pkg/logger"
)

// NewFibonacci is the baseline job. Its consumer computes the sequence; the
// job itself only emits the request event.
func NewFibonacci(pub Publisher, log *slog.Logger) *PublishingJob {
	return NewPublishingJob(
		"Fibonacci",
		"Generate a Fibonacci sequence and store it in DB",
		pub,
		log.With(logger.Scope("jobs.fibonacci")),
	)
}
