package users

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jobber-dev/jobber/pkg/apperror"
)

// Handler handles HTTP requests for users
type Handler struct {
	svc *Service
}

// NewHandler creates a new users handler
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Create registers an identity
// POST /api/users
func (h *Handler) Create(c echo.Context) error {
	var req CreateUserRequest
	if err := c.Bind(&req); err != nil {
		return apperror.ErrBadRequest.WithInternal(err)
	}

	u, err := h.svc.Create(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, u.ToResponse())
}

// Get returns an identity, or null when it does not exist
// GET /api/users/:id
func (h *Handler) Get(c echo.Context) error {
	u, err := h.svc.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	if u == nil {
		return c.JSON(http.StatusOK, nil)
	}

	return c.JSON(http.StatusOK, u.ToResponse())
}
