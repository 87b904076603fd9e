package user

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps accounts in process memory. Used in tests and when the
// storefront runs without Mongo.
type MemoryStore struct {
	mu    sync.RWMutex
	users map[string]*User // keyed by id
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: make(map[string]*User)}
}

// Seed inserts a ready-made account, overwriting any record with the same id.
func (s *MemoryStore) Seed(u User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	s.users[u.ID] = &u
}

func (s *MemoryStore) Lookup(_ context.Context, identifier string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ident := strings.ToLower(identifier)
	for _, u := range s.users {
		if strings.ToLower(u.Email) == ident || strings.ToLower(u.Username) == ident {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) Create(_ context.Context, params CreateParams) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(params.Email)
	username := strings.ToLower(params.Username)
	for _, u := range s.users {
		if strings.ToLower(u.Email) == email || (username != "" && strings.ToLower(u.Username) == username) {
			return nil, ErrDuplicate
		}
	}

	role := params.Role
	if role == "" {
		role = "user"
	}
	u := &User{
		ID:           uuid.NewString(),
		Email:        params.Email,
		Username:     params.Username,
		FirstName:    params.FirstName,
		LastName:     params.LastName,
		DisplayName:  params.DisplayName,
		Role:         role,
		PasswordHash: params.PasswordHash,
		CreatedAt:    time.Now(),
	}
	s.users[u.ID] = u
	cp := *u
	return &cp, nil
}
