package health

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/jobber-dev/jobber/internal/version"
)

// Handler handles health check requests
type Handler struct {
	checks  []Check
	startAt time.Time
	timeout time.Duration
}

// NewHandler creates a new health handler
func NewHandler(checks ...Check) *Handler {
	return &Handler{
		checks:  checks,
		startAt: time.Now(),
		timeout: 5 * time.Second,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp string                 `json:"timestamp"`
	Uptime    string                 `json:"uptime"`
	Version   version.Info           `json:"version"`
	Checks    map[string]CheckResult `json:"checks"`
}

// CheckResult represents an individual health check result
type CheckResult struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

func (h *Handler) run(ctx context.Context) (map[string]CheckResult, bool) {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	results := make(map[string]CheckResult, len(h.checks))
	healthy := true
	for _, c := range h.checks {
		if err := c.Probe(ctx); err != nil {
			healthy = false
			results[c.Name] = CheckResult{Status: "unhealthy", Message: err.Error()}
			continue
		}
		results[c.Name] = CheckResult{Status: "healthy"}
	}
	return results, healthy
}

// Health returns the overall service health
// GET /health
func (h *Handler) Health(c echo.Context) error {
	results, healthy := h.run(c.Request().Context())

	resp := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Uptime:    time.Since(h.startAt).Round(time.Second).String(),
		Version:   version.Current(),
		Checks:    results,
	}

	code := http.StatusOK
	if !healthy {
		resp.Status = "unhealthy"
		code = http.StatusServiceUnavailable
	}
	return c.JSON(code, resp)
}

// Healthz is the liveness probe
// GET /healthz
func (h *Handler) Healthz(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

// Ready is the readiness probe
// GET /ready
func (h *Handler) Ready(c echo.Context) error {
	if _, healthy := h.run(c.Request().Context()); !healthy {
		return c.JSON(http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
		})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"status": "ready",
	})
}
