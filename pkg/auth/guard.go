package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jobber-dev/jobber/internal/config"
	"github.com/jobber-dev/jobber/pkg/logger"
)

// Decision is the outcome of admission: either Admitted with an Identity, or
// denied with a Reason that is logged but never shown to the caller.
type Decision struct {
	Admitted bool
	Identity *Identity
	Reason   string
}

// Admit builds an admitting decision.
func Admit(id *Identity) Decision {
	return Decision{Admitted: true, Identity: id}
}

// Deny builds a denying decision.
func Deny(reason string) Decision {
	return Decision{Reason: reason}
}

// Guard decides whether an inbound request may proceed by delegating
// credential verification to an Authenticator.
type Guard struct {
	authn      Authenticator
	cookieName string
	timeout    time.Duration
	log        *slog.Logger
}

// NewGuard creates a request guard. Every authenticate call it makes is
// bounded by AUTH_GRPC_TIMEOUT.
func NewGuard(authn Authenticator, cfg *config.Config, log *slog.Logger) (*Guard, error) {
	if err := cfg.AuthRPC.Validate(); err != nil {
		return nil, err
	}
	return &Guard{
		authn:      authn,
		cookieName: cfg.Auth.CookieName,
		timeout:    cfg.AuthRPC.Timeout,
		log:        log.With(logger.Scope("guard")),
	}, nil
}

// CanAdmit extracts the credential from r and asks the Authenticator to verify
// it. A missing credential is denied without a remote call; any failure of
// the call, including the deadline, is a denial.
func (g *Guard) CanAdmit(ctx context.Context, r *http.Request) Decision {
	token := g.extractToken(r)
	if token == "" {
		return Deny("missing credential")
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	id, err := g.authn.Authenticate(ctx, token)
	if err != nil {
		g.log.Warn("authentication denied", logger.Error(err))
		return Deny("credential rejected")
	}
	if id == nil {
		return Deny("credential rejected")
	}

	return Admit(id)
}

// extractToken reads the session cookie, falling back to a bearer token.
func (g *Guard) extractToken(r *http.Request) string {
	if c, err := r.Cookie(g.cookieName); err == nil && c.Value != "" {
		return c.Value
	}

	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}

	return ""
}
