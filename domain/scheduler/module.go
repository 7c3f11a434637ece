package scheduler

import (
	"context"
	"errors"
	"log/slog"

	"go.uber.org/fx"

	"github.com/jobber-dev/jobber/domain/health"
	"github.com/jobber-dev/jobber/domain/jobs"
	"github.com/jobber-dev/jobber/internal/config"
)

var errNotRunning = errors.New("scheduler is not running")

// Module runs jobs on the schedules given in JOB_SCHEDULES. It must be
// installed after jobs.Module so the registry is ready when it starts.
var Module = fx.Module("scheduler",
	fx.Provide(
		NewScheduler,
		health.AsCheck(schedulerCheck),
	),
	fx.Invoke(RegisterSchedulerLifecycle),
)

// LifecycleParams contains dependencies for the scheduler lifecycle
type LifecycleParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Scheduler *Scheduler
	Service   *jobs.Service
	Registry  *jobs.Registry
	Config    *config.Config
	Log       *slog.Logger
}

// RegisterSchedulerLifecycle schedules configured jobs and runs the scheduler
func RegisterSchedulerLifecycle(p LifecycleParams) {
	if !p.Config.Scheduler.Enabled() {
		p.Log.Info("no job schedules configured, scheduler disabled")
		return
	}

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := ScheduleJobs(p.Scheduler, p.Service, p.Registry, p.Config.Scheduler.Schedules); err != nil {
				return err
			}
			if err := p.Scheduler.Start(ctx); err != nil {
				return err
			}
			for _, task := range p.Scheduler.GetTaskInfo() {
				p.Log.Info("job scheduled",
					slog.String("job", task.Name),
					slog.Time("next_run", task.NextRun))
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return p.Scheduler.Stop(ctx)
		},
	})
}

// schedulerCheck fails when schedules are configured but the scheduler is
// not running.
func schedulerCheck(s *Scheduler, cfg *config.Config) health.Check {
	return health.Check{Name: "scheduler", Probe: func(context.Context) error {
		if cfg.Scheduler.Enabled() && !s.IsRunning() {
			return errNotRunning
		}
		return nil
	}}
}
