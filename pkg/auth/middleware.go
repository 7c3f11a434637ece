package auth

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"

	"github.com/jobber-dev/jobber/pkg/apperror"
	"github.com/jobber-dev/jobber/pkg/logger"
)

// Module provides the guard and its echo middleware. The Authenticator is
// supplied by the host service.
var Module = fx.Module("auth",
	fx.Provide(
		NewGuard,
		NewMiddleware,
	),
)

// Middleware adapts the Guard to echo routes
type Middleware struct {
	guard *Guard
	log   *slog.Logger
}

// NewMiddleware creates a new auth middleware
func NewMiddleware(guard *Guard, log *slog.Logger) *Middleware {
	return &Middleware{
		guard: guard,
		log:   log.With(logger.Scope("auth")),
	}
}

// RequireAuth returns middleware that requires an admitted identity
func (m *Middleware) RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			d := m.guard.CanAdmit(req.Context(), req)
			if !d.Admitted {
				m.log.Debug("request denied",
					slog.String("path", req.URL.Path),
					slog.String("reason", d.Reason),
				)
				return apperror.ErrUnauthorized
			}

			c.Set(string(IdentityContextKey), d.Identity)
			c.SetRequest(req.WithContext(WithIdentity(req.Context(), d.Identity)))

			return next(c)
		}
	}
}
