package jobs

import (
	"github.com/labstack/echo/v4"

	"github.com/jobber-dev/jobber/pkg/auth"
)

// RegisterRoutes registers the job routes. Both require an admitted request.
func RegisterRoutes(e *echo.Echo, h *Handler, authMiddleware *auth.Middleware) {
	g := e.Group("/api/jobs")
	g.Use(authMiddleware.RequireAuth())

	g.GET("", h.List)
	g.POST("/:name/execute", h.Execute)
}
