package users

import (
	"context"
	"sync"

	"github.com/jobber-dev/jobber/pkg/apperror"
)

// memStore is an in-memory Store for tests.
type memStore struct {
	mu    sync.Mutex
	byID  map[string]*User
	email map[string]string
}

func newMemStore() *memStore {
	return &memStore{byID: map[string]*User{}, email: map[string]string{}}
}

func (m *memStore) Create(_ context.Context, u *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.email[u.Email]; ok {
		return apperror.ErrConflict.WithMessage("email already registered")
	}
	cp := *u
	m.byID[u.ID] = &cp
	m.email[u.Email] = u.ID
	return nil
}

func (m *memStore) FindByID(_ context.Context, id string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (m *memStore) FindByEmail(_ context.Context, email string) (*User, error) {
	m.mu.Lock()
	id, ok := m.email[email]
	m.mu.Unlock()
	if !ok {
		return nil, nil
	}
	return m.FindByID(context.Background(), id)
}
