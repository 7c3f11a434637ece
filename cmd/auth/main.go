// Package main runs the identity service: identity records, login, and the
// auth delegation gRPC endpoint used by other services' request guards.
package main

import (
	"log/slog"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/jobber-dev/jobber/domain/authgrpc"
	"github.com/jobber-dev/jobber/domain/health"
	"github.com/jobber-dev/jobber/domain/session"
	"github.com/jobber-dev/jobber/domain/users"
	"github.com/jobber-dev/jobber/internal/config"
	"github.com/jobber-dev/jobber/internal/database"
	"github.com/jobber-dev/jobber/internal/server"
	"github.com/jobber-dev/jobber/internal/tracing"
	"github.com/jobber-dev/jobber/pkg/auth"
	"github.com/jobber-dev/jobber/pkg/logger"
)

func main() {
	// .env.local overrides .env
	_ = godotenv.Load(".env")
	_ = godotenv.Overload(".env.local")

	fx.New(
		fx.WithLogger(func(log *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: log}
		}),

		// Infrastructure
		logger.Module,
		config.Module,
		database.Module,
		server.Module,
		tracing.Module,

		// Identity
		users.Module,
		session.Module,
		authgrpc.Module,

		// Guards local routes with the in-process authenticator
		auth.Module,

		health.Module,
		fx.Provide(health.AsCheck(health.DatabaseCheck)),
	).Run()
}
