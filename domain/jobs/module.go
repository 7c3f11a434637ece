package jobs

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/jobber-dev/jobber/domain/health"
	"github.com/jobber-dev/jobber/pkg/apperror"
	"github.com/jobber-dev/jobber/pkg/broker"
	"github.com/jobber-dev/jobber/pkg/logger"
)

// Module provides the job registry, the execution engine and the job API.
// Jobs are contributed to the "jobs" value group.
var Module = fx.Module("jobs",
	fx.Provide(
		func(p *broker.Publisher) Publisher { return p },
		AsJob(NewFibonacci),
		fx.Annotate(NewRegistry, fx.ParamTags(`group:"jobs"`)),
		NewService,
		NewHandler,
		health.AsCheck(registryCheck),
		health.AsCheck(brokerCheck),
	),
	fx.Invoke(
		RegisterRegistryLifecycle,
		RegisterRoutes,
	),
)

// AsJob annotates a Provider constructor for the "jobs" value group.
func AsJob(f any) any {
	return fx.Annotate(
		f,
		fx.As(new(Provider)),
		fx.ResultTags(`group:"jobs"`),
	)
}

// RegisterRegistryLifecycle initializes the registry before the server
// starts accepting requests. An invalid registry aborts startup.
func RegisterRegistryLifecycle(lc fx.Lifecycle, r *Registry, log *slog.Logger) {
	log = log.With(logger.Scope("jobs"))

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := r.Initialize(ctx); err != nil {
				return err
			}
			jobs, _ := r.List(Filter{})
			names := make([]string, 0, len(jobs))
			for _, d := range jobs {
				names = append(names, d.Name)
			}
			log.Info("job registry ready", slog.Any("jobs", names))
			return nil
		},
	})
}

func registryCheck(r *Registry) health.Check {
	return health.Check{Name: "registry", Probe: func(context.Context) error {
		if !r.Ready() {
			return apperror.ErrNotReady
		}
		return nil
	}}
}

func brokerCheck(p *broker.Publisher) health.Check {
	return health.Check{Name: "broker", Probe: p.Ping}
}
