package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/expiryguard/expiryguard/internal/domain"
	"github.com/redis/go-redis/v9"
)

// ErrNotFound mirrors the domain sentinel so callers of this package
// can match on either.
var ErrNotFound = domain.ErrNotFound

// Store handles Redis persistence for secrets.
//
// Each secret lives as a JSON value under its own key. A ZSET keyed by
// expiry epoch-day backs the expiring-between range query, and a plain
// set tracks all IDs. Save rewrites the full JSON value, so the two
// notification-state fields always land together.
type Store struct {
	client *redis.Client
}

// NewStore creates a new Redis store
func NewStore(client *redis.Client) *Store {
	return &Store{
		client: client,
	}
}

// epochDay converts a calendar date to its ZSET score.
func epochDay(t time.Time) float64 {
	return float64(domain.DateUTC(t).Unix() / 86400)
}

// Save upserts a secret by ID.
func (s *Store) Save(ctx context.Context, secret *domain.Secret) error {
	data, err := json.Marshal(secret)
	if err != nil {
		return fmt.Errorf("failed to marshal secret: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, SecretKey(secret.ID), data, 0)
	pipe.SAdd(ctx, KeyAllSecrets, secret.ID)
	pipe.ZAdd(ctx, KeyByExpiry, redis.Z{Score: epochDay(secret.ExpiryDate), Member: secret.ID})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save secret: %w", err)
	}
	return nil
}

// Get retrieves a secret by ID.
func (s *Store) Get(ctx context.Context, id string) (*domain.Secret, error) {
	data, err := s.client.Get(ctx, SecretKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get secret: %w", err)
	}

	var secret domain.Secret
	if err := json.Unmarshal(data, &secret); err != nil {
		return nil, fmt.Errorf("failed to unmarshal secret: %w", err)
	}
	return &secret, nil
}

// List retrieves every stored secret, active or not.
func (s *Store) List(ctx context.Context) ([]*domain.Secret, error) {
	ids, err := s.client.SMembers(ctx, KeyAllSecrets).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get secret IDs: %w", err)
	}

	secrets := make([]*domain.Secret, 0, len(ids))
	for _, id := range ids {
		secret, err := s.Get(ctx, id)
		if err != nil {
			// Skip entries that couldn't be retrieved
			continue
		}
		secrets = append(secrets, secret)
	}

	sort.Slice(secrets, func(i, j int) bool {
		return secrets[i].ExpiryDate.Before(secrets[j].ExpiryDate)
	})
	return secrets, nil
}

// ListActiveExpiringBetween returns active secrets whose expiry date falls
// inside [min, max], both inclusive, ordered by ascending expiry date.
func (s *Store) ListActiveExpiringBetween(ctx context.Context, min, max time.Time) ([]*domain.Secret, error) {
	ids, err := s.client.ZRangeByScore(ctx, KeyByExpiry, &redis.ZRangeBy{
		Min: strconv.FormatFloat(epochDay(min), 'f', -1, 64),
		Max: strconv.FormatFloat(epochDay(max), 'f', -1, 64),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to query expiry index: %w", err)
	}

	// ZRangeByScore returns ascending score order, which is ascending
	// expiry date. Active filtering happens on the decoded value.
	secrets := make([]*domain.Secret, 0, len(ids))
	for _, id := range ids {
		secret, err := s.Get(ctx, id)
		if err != nil {
			continue
		}
		if !secret.Active {
			continue
		}
		secrets = append(secrets, secret)
	}
	return secrets, nil
}
