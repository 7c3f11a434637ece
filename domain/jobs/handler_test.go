package jobs

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobber-dev/jobber/internal/config"
	"github.com/jobber-dev/jobber/pkg/apperror"
	"github.com/jobber-dev/jobber/pkg/auth"
)

type tokenAuthenticator struct {
	calls atomic.Int32
}

func (a *tokenAuthenticator) Authenticate(_ context.Context, token string) (*auth.Identity, error) {
	a.calls.Add(1)
	if token != "valid" {
		return nil, auth.ErrUnauthenticated
	}
	return &auth.Identity{SubjectID: "u-1", Email: "a@x.com"}, nil
}

// countingJob records whether the registry ever asked for its descriptor or ran it.
type countingJob struct {
	inner    Provider
	consults atomic.Int32
}

func (c *countingJob) Descriptor() Descriptor {
	c.consults.Add(1)
	return c.inner.Descriptor()
}

func newJobsEcho(t *testing.T, registry *Registry) (*echo.Echo, *tokenAuthenticator) {
	t.Helper()

	cfg := &config.Config{
		Auth:    config.AuthConfig{CookieName: "Authentication"},
		AuthRPC: config.AuthRPCConfig{Timeout: time.Second},
	}
	authn := &tokenAuthenticator{}
	guard, err := auth.NewGuard(authn, cfg, discard())
	require.NoError(t, err)
	mw := auth.NewMiddleware(guard, discard())

	e := echo.New()
	e.HTTPErrorHandler = apperror.HTTPErrorHandler(discard())
	RegisterRoutes(e, NewHandler(NewService(registry, discard())), mw)
	return e, authn
}

func serve(e *echo.Echo, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: "Authentication", Value: token})
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHandler_ExecuteRequiresAdmission(t *testing.T) {
	pub, mr := newTestBroker(t)

	t.Run("unauthenticated is denied before the registry is consulted", func(t *testing.T) {
		// Left uninitialized: any registry access would answer 503 instead of 401.
		fib := &countingJob{inner: NewFibonacci(pub, discard())}
		e, _ := newJobsEcho(t, NewRegistry(fib))

		rec := serve(e, http.MethodPost, "/api/jobs/Fibonacci/execute", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)

		rec = serve(e, http.MethodPost, "/api/jobs/Fibonacci/execute", "forged")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)

		assert.Equal(t, int32(0), fib.consults.Load())
		assert.Equal(t, 0, streamLen(t, mr, "Fibonacci"))
	})

	t.Run("authenticated emits exactly one event", func(t *testing.T) {
		e, authn := newJobsEcho(t, readyRegistry(t, NewFibonacci(pub, discard())))

		rec := serve(e, http.MethodPost, "/api/jobs/Fibonacci/execute", "valid")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"name":"Fibonacci","description":"Generate a Fibonacci sequence and store it in DB"}`, rec.Body.String())
		assert.Equal(t, int32(1), authn.calls.Load())
		assert.Equal(t, 1, streamLen(t, mr, "Fibonacci"))
	})
}

func TestHandler_ExecuteErrors(t *testing.T) {
	pub, mr := newTestBroker(t)
	e, _ := newJobsEcho(t, readyRegistry(t, NewFibonacci(pub, discard())))

	rec := serve(e, http.MethodPost, "/api/jobs/Nope/execute", "valid")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Job 'Nope' not found")

	mr.Close()
	rec = serve(e, http.MethodPost, "/api/jobs/Fibonacci/execute", "valid")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "publish_failed")
}

func TestHandler_List(t *testing.T) {
	pub, _ := newTestBroker(t)
	e, _ := newJobsEcho(t, readyRegistry(t, NewFibonacci(pub, discard()), job("Cleanup")))

	rec := serve(e, http.MethodGet, "/api/jobs", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(e, http.MethodGet, "/api/jobs", "valid")
	require.Equal(t, http.StatusOK, rec.Code)
	var all []Descriptor
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &all))
	require.Len(t, all, 2)
	assert.Equal(t, "Fibonacci", all[0].Name)
	assert.Equal(t, "Cleanup", all[1].Name)

	rec = serve(e, http.MethodGet, "/api/jobs?name=FIBONACCI", "valid")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &all))
	require.Len(t, all, 1)
	assert.Equal(t, "Fibonacci", all[0].Name)

	rec = serve(e, http.MethodGet, "/api/jobs?name=Unknown", "valid")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
