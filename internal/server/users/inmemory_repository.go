package users

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/lifedash/internal/common"
)

// InMemoryRepository is a map-backed Repository used by tests and local runs
// without PostgreSQL.
type InMemoryRepository struct {
	mu      sync.RWMutex
	byEmail map[string]*User
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{byEmail: make(map[string]*User)}
}

func (r *InMemoryRepository) Create(ctx context.Context, user *User) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := strings.ToLower(user.Email)
	if _, ok := r.byEmail[key]; ok {
		return nil, common.ErrorAlreadyExists
	}

	stored := *user
	stored.ID = uuid.NewString()
	stored.CreatedAt = time.Now().UTC()
	r.byEmail[key] = &stored

	out := stored
	return &out, nil
}

func (r *InMemoryRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, common.ErrorNotFound
	}
	out := *user
	return &out, nil
}
