package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/expiryguard/expiryguard/internal/domain"
)

// Store is an in-memory secret store. It backs tests and serves as a
// drop-in for the Redis store wherever one is not available.
type Store struct {
	mu      sync.RWMutex
	secrets map[string]*domain.Secret // ID -> Secret
}

// NewStore creates an empty in-memory store
func NewStore() *Store {
	return &Store{
		secrets: make(map[string]*domain.Secret),
	}
}

// Save upserts a secret by ID.
func (s *Store) Save(_ context.Context, secret *domain.Secret) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Copy so later caller mutations don't leak into the store.
	cp := *secret
	s.secrets[secret.ID] = &cp
	return nil
}

// Get retrieves a secret by ID.
func (s *Store) Get(_ context.Context, id string) (*domain.Secret, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	secret, ok := s.secrets[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	cp := *secret
	return &cp, nil
}

// List retrieves every stored secret, active or not, ordered by
// ascending expiry date.
func (s *Store) List(_ context.Context) ([]*domain.Secret, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Secret, 0, len(s.secrets))
	for _, secret := range s.secrets {
		cp := *secret
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ExpiryDate.Before(out[j].ExpiryDate)
	})
	return out, nil
}

// ListActiveExpiringBetween returns active secrets whose expiry date falls
// inside [min, max], both inclusive, ordered by ascending expiry date.
func (s *Store) ListActiveExpiringBetween(_ context.Context, min, max time.Time) ([]*domain.Secret, error) {
	minDay := domain.DateUTC(min)
	maxDay := domain.DateUTC(max)

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Secret, 0)
	for _, secret := range s.secrets {
		if !secret.Active {
			continue
		}
		day := domain.DateUTC(secret.ExpiryDate)
		if day.Before(minDay) || day.After(maxDay) {
			continue
		}
		cp := *secret
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ExpiryDate.Before(out[j].ExpiryDate)
	})
	return out, nil
}
