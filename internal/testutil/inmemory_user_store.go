package testutil

import (
	"context"
	"sync"

	"github.com/vedawell/vedawell/internal/domain/user"
	ierr "github.com/vedawell/vedawell/internal/errors"
)

// InMemoryUserStore implements user.Repository
type InMemoryUserStore struct {
	mu    sync.RWMutex
	users map[string]*user.User
}

func NewInMemoryUserStore() *InMemoryUserStore {
	return &InMemoryUserStore{
		users: make(map[string]*user.User),
	}
}

func (r *InMemoryUserStore) GetByID(ctx context.Context, id string) (*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if u, exists := r.users[id]; exists {
		cp := *u
		return &cp, nil
	}
	return nil, ierr.NewError("user not found").Mark(ierr.ErrNotFound)
}

// AddUser seeds a user for tests
func (r *InMemoryUserStore) AddUser(u *user.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *u
	r.users[u.ID] = &cp
}

func (r *InMemoryUserStore) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users = make(map[string]*user.User)
}
