package server

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/jobber-dev/jobber/internal/config"
)

func TestNewEcho_CORSAllowList(t *testing.T) {
	cfg := &config.Config{CORSAllowedOrigins: []string{"https://app.example.com/", " http://localhost:5173"}}
	e := NewEcho(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	e.GET("/api/jobs", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	tests := []struct {
		origin  string
		allowed bool
	}{
		{"https://app.example.com", true},
		{"http://localhost:5173", true},
		{"https://evil.example.com", false},
		{"null", false},
	}

	for _, tt := range tests {
		t.Run(tt.origin, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/jobs", nil)
			req.Header.Set(echo.HeaderOrigin, tt.origin)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			if tt.allowed {
				assert.Equal(t, tt.origin, rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
				assert.Equal(t, "true", rec.Header().Get(echo.HeaderAccessControlAllowCredentials))
			} else {
				assert.Empty(t, rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
			}
		})
	}
}

func TestNewEcho_CORSEmptyListDeniesCrossOrigin(t *testing.T) {
	e := NewEcho(&config.Config{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	e.GET("/api/jobs", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/api/jobs", nil)
	req.Header.Set(echo.HeaderOrigin, "https://app.example.com")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
}
