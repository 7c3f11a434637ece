package auth

import (
	"context"
	"errors"

	"github.com/labstack/echo/v4"
)

// Identity is the verified subject behind a credential.
type Identity struct {
	SubjectID string `json:"id"`
	Email     string `json:"email"`
}

// Authenticator verifies a credential and resolves it to an Identity. The
// identity service satisfies it in-process; other services reach it over gRPC.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*Identity, error)
}

// ErrUnauthenticated is returned by Authenticator implementations for any
// credential that does not resolve to a live identity.
var ErrUnauthenticated = errors.New("unauthenticated")

type contextKey string

// IdentityContextKey stores the admitted Identity in both echo and request contexts.
const IdentityContextKey contextKey = "auth_identity"

// GetIdentity retrieves the admitted identity from the Echo context
func GetIdentity(c echo.Context) *Identity {
	if id, ok := c.Get(string(IdentityContextKey)).(*Identity); ok {
		return id
	}
	return nil
}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, IdentityContextKey, id)
}

// IdentityFromContext returns the identity stored by WithIdentity, if any.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(IdentityContextKey).(*Identity)
	return id, ok && id != nil
}
