package authgrpc

import (
	"context"
	"log/slog"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/jobber-dev/jobber/domain/session"
	"github.com/jobber-dev/jobber/domain/users"
	"github.com/jobber-dev/jobber/pkg/auth"
	"github.com/jobber-dev/jobber/pkg/authrpc"
	"github.com/jobber-dev/jobber/pkg/logger"
)

// TokenVerifier checks a session token's signature and expiry.
type TokenVerifier interface {
	Verify(token string) (*session.Claims, error)
}

// SubjectLookup resolves a subject id to its identity record.
type SubjectLookup interface {
	GetByID(ctx context.Context, id string) (*users.User, error)
}

// Server resolves session tokens to identities. It backs the gRPC endpoint
// and is also the identity service's in-process auth.Authenticator.
type Server struct {
	tokens TokenVerifier
	users  SubjectLookup
	log    *slog.Logger
}

// NewServer creates the delegation server
func NewServer(tokens TokenVerifier, lookup SubjectLookup, log *slog.Logger) *Server {
	return &Server{
		tokens: tokens,
		users:  lookup,
		log:    log.With(logger.Scope("authgrpc")),
	}
}

// Authenticate implements auth.Authenticator. Every failure is
// auth.ErrUnauthenticated; the cause is only logged.
func (s *Server) Authenticate(ctx context.Context, token string) (*auth.Identity, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		s.log.Debug("token rejected", logger.Error(err))
		return nil, auth.ErrUnauthenticated
	}

	u, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		s.log.Warn("subject lookup failed", slog.String("user_id", claims.UserID), logger.Error(err))
		return nil, auth.ErrUnauthenticated
	}
	if u == nil {
		s.log.Debug("subject no longer exists", slog.String("user_id", claims.UserID))
		return nil, auth.ErrUnauthenticated
	}

	return &auth.Identity{SubjectID: u.ID, Email: u.Email}, nil
}

// rpcHandler exposes Server as auth.AuthService.
type rpcHandler struct {
	srv *Server
}

func (h rpcHandler) Authenticate(ctx context.Context, req *authrpc.AuthenticateRequest) (*authrpc.AuthenticateResponse, error) {
	id, err := h.srv.Authenticate(ctx, req.Token)
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, "invalid credential")
	}
	return &authrpc.AuthenticateResponse{SubjectID: id.SubjectID, Email: id.Email}, nil
}
