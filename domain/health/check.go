package health

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

// Check is a named readiness probe. Modules contribute checks to the
// "health_checks" value group with AsCheck.
type Check struct {
	Name  string
	Probe func(ctx context.Context) error
}

// AsCheck annotates a Check constructor for the "health_checks" group.
func AsCheck(f any) any {
	return fx.Annotate(f, fx.ResultTags(`group:"health_checks"`))
}

// DatabaseCheck pings the Postgres pool.
func DatabaseCheck(pool *pgxpool.Pool) Check {
	return Check{Name: "database", Probe: pool.Ping}
}
