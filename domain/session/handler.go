package session

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/jobber-dev/jobber/internal/config"
	"github.com/jobber-dev/jobber/pkg/apperror"
)

// LoginRequest is the request body for POST /api/auth/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Handler handles login and logout
type Handler struct {
	svc        *Service
	cookieName string
	secure     bool
}

// NewHandler creates a new session handler
func NewHandler(svc *Service, cfg *config.Config) *Handler {
	return &Handler{
		svc:        svc,
		cookieName: cfg.Auth.CookieName,
		secure:     cfg.IsProduction(),
	}
}

// Login verifies credentials and sets the session cookie
// POST /api/auth/login
func (h *Handler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return apperror.ErrBadRequest.WithInternal(err)
	}

	result, err := h.svc.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	c.SetCookie(h.cookie(result.Token, result.ExpiresAt))
	return c.JSON(http.StatusOK, result.User)
}

// Logout clears the session cookie
// POST /api/auth/logout
func (h *Handler) Logout(c echo.Context) error {
	ck := h.cookie("", time.Unix(0, 0))
	ck.MaxAge = -1
	c.SetCookie(ck)
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) cookie(value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     h.cookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
