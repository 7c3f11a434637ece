package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
	"golang.org/x/crypto/bcrypt"

	"github.com/jobber-dev/jobber/domain/users"
	"github.com/jobber-dev/jobber/internal/config"
	"github.com/jobber-dev/jobber/pkg/apperror"
)

type fakeLookup struct {
	users map[string]*users.User
	err   error
}

func (f *fakeLookup) GetByEmail(_ context.Context, email string) (*users.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.users[users.NormalizeEmail(email)], nil
}

func newTestLogin(t *testing.T, lookup UserLookup) (*Service, *TokenManager) {
	t.Helper()
	tokens := newTestTokens(t, "secret", time.Hour)
	svc, err := NewService(lookup, tokens, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return svc, tokens
}

func seededLookup(t *testing.T) *fakeLookup {
	t.Helper()
	digest, err := users.HashPassword("P@ss1", bcrypt.MinCost)
	require.NoError(t, err)
	return &fakeLookup{users: map[string]*users.User{
		"a@x.com": {ID: "user-1", Email: "a@x.com", Password: digest},
	}}
}

func TestService_Login(t *testing.T) {
	svc, tokens := newTestLogin(t, seededLookup(t))
	ctx := context.Background()

	result, err := svc.Login(ctx, "A@x.com", "P@ss1")
	require.NoError(t, err)
	assert.Equal(t, &users.UserResponse{ID: "user-1", Email: "a@x.com"}, result.User)

	claims, err := tokens.Verify(result.Token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, result.ExpiresAt.Unix(), claims.ExpiresAt.Unix())
}

func TestService_LoginFailuresAreIndistinguishable(t *testing.T) {
	svc, _ := newTestLogin(t, seededLookup(t))
	ctx := context.Background()

	_, unknownErr := svc.Login(ctx, "nobody@x.com", "P@ss1")
	_, wrongErr := svc.Login(ctx, "a@x.com", "wrong")

	require.Error(t, unknownErr)
	require.Error(t, wrongErr)
	assert.Equal(t, unknownErr, wrongErr)
	assert.True(t, errors.Is(unknownErr, apperror.ErrInvalidCredentials))

	failing, _ := newTestLogin(t, &fakeLookup{err: errors.New("db down")})
	_, storeErr := failing.Login(ctx, "a@x.com", "P@ss1")
	assert.Equal(t, wrongErr, storeErr)
}

func newTestEcho(t *testing.T, env string, ratePerMin, burst int) *echo.Echo {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &config.Config{
		Environment: env,
		Auth: config.AuthConfig{
			CookieName:         "Authentication",
			LoginRatePerMinute: ratePerMin,
			LoginBurst:         burst,
		},
	}
	svc, _ := newTestLogin(t, seededLookup(t))

	e := echo.New()
	e.HTTPErrorHandler = apperror.HTTPErrorHandler(log)
	RegisterRoutes(e, NewHandler(svc, cfg), NewLoginLimiter(cfg))
	return e
}

func login(e *echo.Echo, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHandler_Login(t *testing.T) {
	t.Run("sets cookie", func(t *testing.T) {
		e := newTestEcho(t, "local", 0, 0)

		rec := login(e, `{"email":"a@x.com","password":"P@ss1"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"id":"user-1","email":"a@x.com"}`, rec.Body.String())

		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		ck := cookies[0]
		assert.Equal(t, "Authentication", ck.Name)
		assert.NotEmpty(t, ck.Value)
		assert.True(t, ck.HttpOnly)
		assert.False(t, ck.Secure)
		assert.Equal(t, http.SameSiteLaxMode, ck.SameSite)
		assert.Equal(t, "/", ck.Path)
		assert.WithinDuration(t, time.Now().Add(time.Hour), ck.Expires, time.Minute)
	})

	t.Run("secure in production", func(t *testing.T) {
		e := newTestEcho(t, "production", 0, 0)

		rec := login(e, `{"email":"a@x.com","password":"P@ss1"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, rec.Result().Cookies()[0].Secure)
	})

	t.Run("invalid credentials", func(t *testing.T) {
		e := newTestEcho(t, "local", 0, 0)

		rec := login(e, `{"email":"a@x.com","password":"nope"}`)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "User credentials are not valid")
		assert.Empty(t, rec.Result().Cookies())
	})

	t.Run("throttled", func(t *testing.T) {
		e := newTestEcho(t, "local", 1, 2)

		assert.Equal(t, http.StatusUnauthorized, login(e, `{"email":"a@x.com","password":"x"}`).Code)
		assert.Equal(t, http.StatusUnauthorized, login(e, `{"email":"a@x.com","password":"x"}`).Code)
		assert.Equal(t, http.StatusTooManyRequests, login(e, `{"email":"a@x.com","password":"P@ss1"}`).Code)
	})
}

func TestHandler_Logout(t *testing.T) {
	e := newTestEcho(t, "local", 0, 0)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "Authentication", cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestLoginLimiter_PerIP(t *testing.T) {
	l := NewLoginLimiter(&config.Config{Auth: config.AuthConfig{LoginRatePerMinute: 1, LoginBurst: 1}})

	assert.True(t, l.Allow("10.0.0.1"))
	assert.False(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.2"))
}

func TestLoginLimiter_SweepIdle(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	l := NewLoginLimiter(&config.Config{Auth: config.AuthConfig{LoginRatePerMinute: 6, LoginBurst: 2}})
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.1"))
	assert.False(t, l.Allow("10.0.0.1"))

	now = now.Add(30 * time.Second)
	assert.True(t, l.Allow("10.0.0.2"))
	require.Equal(t, 2, l.Len())

	// 10.0.0.1 has been idle for over a minute; 10.0.0.2 has not.
	now = now.Add(45 * time.Second)
	assert.Equal(t, 1, l.Sweep())
	assert.Equal(t, 1, l.Len())

	// A fresh limiter for an evicted client starts full.
	assert.True(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.1"))
	assert.False(t, l.Allow("10.0.0.1"))
}

func TestRegisterLimiterLifecycle(t *testing.T) {
	lc := fxtest.NewLifecycle(t)
	RegisterLimiterLifecycle(lc, NewLoginLimiter(&config.Config{}))
	lc.RequireStart().RequireStop()
}
