package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"parkinglot/backend/services/parking-service/internal/models"
)

// Store caches active parking sessions by registration number so that cost
// checks avoid a database round trip. Postgres stays the source of truth.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore returns redis-backed store.
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

func (s *Store) key(carRegNumber string) string {
	return fmt.Sprintf("parking:active:%s", carRegNumber)
}

// Save caches an active session.
func (s *Store) Save(ctx context.Context, session *models.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(session.CarRegNumber), data, s.ttl).Err()
}

// Get returns the cached session, or nil without error on a miss.
func (s *Store) Get(ctx context.Context, carRegNumber string) (*models.Session, error) {
	result, err := s.client.Get(ctx, s.key(carRegNumber)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var session models.Session
	if err := json.Unmarshal(result, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// Delete removes cached session.
func (s *Store) Delete(ctx context.Context, carRegNumber string) error {
	return s.client.Del(ctx, s.key(carRegNumber)).Err()
}
