package users

import (
	"github.com/labstack/echo/v4"

	"github.com/jobber-dev/jobber/pkg/auth"
)

// RegisterRoutes registers the users routes
func RegisterRoutes(e *echo.Echo, h *Handler, authMiddleware *auth.Middleware) {
	g := e.Group("/api/users")

	g.POST("", h.Create)
	g.GET("/:id", h.Get, authMiddleware.RequireAuth())
}
