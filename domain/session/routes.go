package session

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes registers the session routes
func RegisterRoutes(e *echo.Echo, h *Handler, limiter *LoginLimiter) {
	g := e.Group("/api/auth")

	g.POST("/login", h.Login, limiter.Middleware())
	g.POST("/logout", h.Logout)
}
