package jobs

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jobber-dev/jobber/pkg/apperror"
	"github.com/jobber-dev/jobber/pkg/broker"
)

// Handler handles HTTP requests for jobs
type Handler struct {
	svc *Service
}

// NewHandler creates a new jobs handler
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// List returns registered jobs
// GET /api/jobs?name=<name>
func (h *Handler) List(c echo.Context) error {
	var f Filter
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &f); err != nil {
		return apperror.ErrBadRequest.WithInternal(err)
	}

	jobs, err := h.svc.List(c.Request().Context(), f)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, jobs)
}

// Execute runs a job and returns its descriptor
// POST /api/jobs/:name/execute
func (h *Handler) Execute(c echo.Context) error {
	d, err := h.svc.Execute(c.Request().Context(), c.Param("name"))
	if err != nil {
		var pubErr *broker.PublishError
		if errors.As(err, &pubErr) {
			return apperror.ErrPublishFailed.WithInternal(err)
		}
		return err
	}

	return c.JSON(http.StatusOK, d)
}
