package auth

import (
	"context"
	"sync"
	"time"

	"github.com/vidtube/backend/internal/models"
)

// NewInMemoryTokenStore returns a TokenStore backed by an in-memory map.
func NewInMemoryTokenStore() *InMemoryTokenStore {
	return &InMemoryTokenStore{users: make(map[string]models.User)}
}

// InMemoryTokenStore implements TokenStore for tests and local development.
type InMemoryTokenStore struct {
	mu    sync.RWMutex
	users map[string]models.User
}

// Seed registers a user so later token operations can resolve it.
func (s *InMemoryTokenStore) Seed(user models.User) {
	s.mu.Lock()
	s.users[user.ID] = user
	s.mu.Unlock()
}

// SaveRefreshToken stores the token on the user record, replacing any previous one.
func (s *InMemoryTokenStore) SaveRefreshToken(_ context.Context, userID, token string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user := s.users[userID]
	user.ID = userID
	user.RefreshToken = token
	user.RefreshExpiresAt = &expiresAt
	s.users[userID] = user
	return nil
}

// FindByRefreshToken resolves the user holding the provided refresh token.
func (s *InMemoryTokenStore) FindByRefreshToken(_ context.Context, token string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if user.RefreshToken != "" && user.RefreshToken == token {
			return user, nil
		}
	}
	return models.User{}, ErrSessionNotFound
}

// ClearRefreshToken removes the stored token for the user.
func (s *InMemoryTokenStore) ClearRefreshToken(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return nil
	}
	user.RefreshToken = ""
	user.RefreshExpiresAt = nil
	s.users[userID] = user
	return nil
}

// Has reports whether the user currently holds the given refresh token. Useful for tests.
func (s *InMemoryTokenStore) Has(userID, token string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[userID]
	return ok && user.RefreshToken == token
}
