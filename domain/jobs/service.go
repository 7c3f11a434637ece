package jobs

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/jobber-dev/jobber/pkg/apperror"
	"github.com/jobber-dev/jobber/pkg/logger"
	"github.com/jobber-dev/jobber/pkg/tracing"
)

// Service executes registered jobs.
type Service struct {
	registry *Registry
	log      *slog.Logger
}

// NewService creates the execution engine
func NewService(registry *Registry, log *slog.Logger) *Service {
	return &Service{
		registry: registry,
		log:      log.With(logger.Scope("jobs")),
	}
}

// List returns registered jobs matching f.
func (s *Service) List(_ context.Context, f Filter) ([]Descriptor, error) {
	return s.registry.List(f)
}

// Execute runs the named job once with an empty payload on the topic named
// after the job, and returns its descriptor as acknowledgement. Handler
// errors are returned unchanged and never retried. The handler keeps
// running if ctx is cancelled after dispatch.
func (s *Service) Execute(ctx context.Context, name string) (Descriptor, error) {
	if !s.registry.Ready() {
		return Descriptor{}, apperror.ErrNotReady
	}

	ctx, span := tracing.Start(ctx, "jobs.execute", attribute.String("jobber.job.name", name))
	defer span.End()

	d, ok := s.registry.Lookup(name)
	if !ok {
		executions.WithLabelValues("unknown", statusNotFound).Inc()
		span.SetStatus(codes.Error, "job not found")
		return Descriptor{}, apperror.NewJobNotFound(name)
	}

	start := time.Now()
	err := d.Handler(context.WithoutCancel(ctx), Payload{}, d.Name)
	if err != nil {
		executions.WithLabelValues(d.Name, statusFailed).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.log.Error("job failed",
			slog.String("job", d.Name),
			slog.Duration("duration", time.Since(start)),
			logger.Error(err),
		)
		return Descriptor{}, err
	}

	executions.WithLabelValues(d.Name, statusSuccess).Inc()
	s.log.Info("job executed",
		slog.String("job", d.Name),
		slog.Duration("duration", time.Since(start)),
	)
	return d, nil
}
