package users

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/google/uuid"

	"github.com/jobber-dev/jobber/internal/config"
	"github.com/jobber-dev/jobber/pkg/apperror"
	"github.com/jobber-dev/jobber/pkg/logger"
)

// Store is the persistence the service needs. *Repository implements it.
type Store interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
}

// Service handles business logic for identity records
type Service struct {
	store      Store
	bcryptCost int
	log        *slog.Logger
}

// NewService creates a new users service
func NewService(store Store, cfg *config.Config, log *slog.Logger) *Service {
	return &Service{
		store:      store,
		bcryptCost: cfg.Auth.BcryptCost,
		log:        log.With(logger.Scope("users.svc")),
	}
}

// NormalizeEmail lowercases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create registers a new identity with a hashed password.
func (s *Service) Create(ctx context.Context, email, password string) (*User, error) {
	email = NormalizeEmail(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, invalidField("email", "email must be a valid address")
	}
	if password == "" {
		return nil, invalidField("password", "password is required")
	}
	if len(password) > MaxPasswordBytes {
		return nil, invalidField("password", fmt.Sprintf("password must be at most %d bytes", MaxPasswordBytes))
	}

	digest, err := HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, apperror.NewInternal("failed to hash password", err)
	}

	u := &User{
		ID:       uuid.NewString(),
		Email:    email,
		Password: digest,
	}
	if err := s.store.Create(ctx, u); err != nil {
		return nil, err
	}

	s.log.Info("user created", slog.String("user_id", u.ID))
	return u, nil
}

func invalidField(field, message string) *apperror.Error {
	return apperror.ErrValidation.WithMessage(message).WithDetails(map[string]any{"field": field})
}

// GetByID returns nil, nil for unknown or malformed ids.
func (s *Service) GetByID(ctx context.Context, id string) (*User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}
	return s.store.FindByID(ctx, id)
}

// GetByEmail returns nil, nil when no identity has the email.
func (s *Service) GetByEmail(ctx context.Context, email string) (*User, error) {
	return s.store.FindByEmail(ctx, NormalizeEmail(email))
}
