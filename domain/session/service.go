package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/jobber-dev/jobber/domain/users"
	"github.com/jobber-dev/jobber/pkg/apperror"
	"github.com/jobber-dev/jobber/pkg/logger"
)

// UserLookup is the part of the users service login depends on.
type UserLookup interface {
	GetByEmail(ctx context.Context, email string) (*users.User, error)
}

// LoginResult is a successful login.
type LoginResult struct {
	User      *users.UserResponse
	Token     string
	ExpiresAt time.Time
}

// Service verifies credentials and issues session tokens.
type Service struct {
	users  UserLookup
	tokens *TokenManager
	log    *slog.Logger

	// compared against when the email is unknown so both failure paths cost a hash
	dummyDigest string
}

// NewService creates the login service
func NewService(lookup UserLookup, tokens *TokenManager, log *slog.Logger) (*Service, error) {
	dummy, err := users.HashPassword("jobber-dummy-password", 0)
	if err != nil {
		return nil, err
	}
	return &Service{
		users:       lookup,
		tokens:      tokens,
		log:         log.With(logger.Scope("session")),
		dummyDigest: dummy,
	}, nil
}

// Login returns apperror.ErrInvalidCredentials for every failure.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		s.log.Warn("login lookup failed", logger.Error(err))
		return nil, apperror.ErrInvalidCredentials
	}

	if u == nil {
		users.ComparePassword(s.dummyDigest, password)
		return nil, apperror.ErrInvalidCredentials
	}
	if !users.ComparePassword(u.Password, password) {
		return nil, apperror.ErrInvalidCredentials
	}

	token, expires, err := s.tokens.Issue(u.ID)
	if err != nil {
		s.log.Error("failed to issue session token", logger.Error(err))
		return nil, apperror.ErrInvalidCredentials
	}

	s.log.Info("user logged in", slog.String("user_id", u.ID))

	return &LoginResult{
		User:      u.ToResponse(),
		Token:     token,
		ExpiresAt: expires,
	}, nil
}
