package users

import (
	"time"

	"github.com/uptrace/bun"
)

// User is an identity record in auth.users
type User struct {
	bun.BaseModel `bun:"table:auth.users,alias:u"`

	ID        string    `bun:"id,pk,type:uuid"`
	Email     string    `bun:"email,notnull"`
	Password  string    `bun:"password,notnull"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// ToResponse strips the password digest.
func (u *User) ToResponse() *UserResponse {
	return &UserResponse{ID: u.ID, Email: u.Email}
}

// CreateUserRequest is the request body for POST /api/users
type CreateUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse is the public view of an identity
type UserResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}
