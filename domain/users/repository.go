package users

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/uptrace/bun"

	"github.com/jobber-dev/jobber/pkg/apperror"
	"github.com/jobber-dev/jobber/pkg/logger"
)

const uniqueViolation = "23505"

// Repository handles database operations for users
type Repository struct {
	db  bun.IDB
	log *slog.Logger
}

// NewRepository creates a new users repository
func NewRepository(db bun.IDB, log *slog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With(logger.Scope("users.repo")),
	}
}

// Create inserts a user. A duplicate email yields apperror.ErrConflict.
func (r *Repository) Create(ctx context.Context, u *User) error {
	_, err := r.db.NewInsert().Model(u).Returning("*").Exec(ctx)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return apperror.ErrConflict.WithMessage("email already registered")
		}
		r.log.Error("failed to create user", logger.Error(err))
		return apperror.ErrDatabase.WithInternal(err)
	}
	return nil
}

// FindByID returns nil, nil when no user has the id.
func (r *Repository) FindByID(ctx context.Context, id string) (*User, error) {
	u := new(User)
	err := r.db.NewSelect().Model(u).Where("u.id = ?", id).Scan(ctx)
	return r.one(u, err)
}

// FindByEmail returns nil, nil when no user has the (normalized) email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	u := new(User)
	err := r.db.NewSelect().Model(u).Where("lower(u.email) = ?", email).Scan(ctx)
	return r.one(u, err)
}

func (r *Repository) one(u *User, err error) (*User, error) {
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.log.Error("failed to query user", logger.Error(err))
		return nil, apperror.ErrDatabase.WithInternal(err)
	}
	return u, nil
}
