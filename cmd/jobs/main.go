// Package main runs the jobs service: the job registry and execution engine,
// guarded by the identity service over gRPC, publishing to Redis Streams.
package main

import (
	"log/slog"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/jobber-dev/jobber/domain/health"
	"github.com/jobber-dev/jobber/domain/jobs"
	"github.com/jobber-dev/jobber/domain/scheduler"
	"github.com/jobber-dev/jobber/internal/config"
	"github.com/jobber-dev/jobber/internal/server"
	"github.com/jobber-dev/jobber/internal/tracing"
	"github.com/jobber-dev/jobber/pkg/auth"
	"github.com/jobber-dev/jobber/pkg/authrpc"
	"github.com/jobber-dev/jobber/pkg/broker"
	"github.com/jobber-dev/jobber/pkg/logger"
)

func main() {
	_ = godotenv.Load(".env")
	_ = godotenv.Overload(".env.local")

	fx.New(
		fx.WithLogger(func(log *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: log}
		}),

		// Infrastructure
		logger.Module,
		config.Module,
		server.Module,
		tracing.Module,
		broker.Module,

		// Request guard delegating to the identity service
		authrpc.Module,
		auth.Module,

		// Jobs (scheduler after jobs: it needs a ready registry)
		jobs.Module,
		scheduler.Module,

		health.Module,
	).Run()
}
