package repository

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	customerrors "github.com/axellelanca/urlregistry/internal/errors"
	"github.com/axellelanca/urlregistry/internal/models"
)

const defaultRedisKey = "urlregistry:records"

// RedisStore keeps the JSON snapshot under a single key, so a save is one SET.
type RedisStore struct {
	redis *redis.Client
	key   string
}

type RedisOption func(s *RedisStore)

// WithRedisKey overrides the key holding the snapshot.
func WithRedisKey(key string) RedisOption {
	return func(s *RedisStore) {
		if key != "" {
			s.key = key
		}
	}
}

// NewRedisStore creates a RedisStore on an existing client.
func NewRedisStore(client *redis.Client, opts ...RedisOption) *RedisStore {
	s := &RedisStore{
		redis: client,
		key:   defaultRedisKey,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads the snapshot. A missing key is an empty collection.
func (s *RedisStore) Load(ctx context.Context) ([]models.ShortURL, error) {
	data, err := s.redis.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []models.ShortURL{}, nil
		}
		return []models.ShortURL{}, &customerrors.PersistenceError{Op: "load", Err: err}
	}

	records, err := decodeSnapshot(data)
	if err != nil {
		return []models.ShortURL{}, &customerrors.PersistenceError{Op: "load", Err: err}
	}
	return records, nil
}

// Save overwrites the snapshot key.
func (s *RedisStore) Save(ctx context.Context, records []models.ShortURL) error {
	data, err := encodeSnapshot(records)
	if err != nil {
		return &customerrors.PersistenceError{Op: "save", Err: err}
	}
	if err := s.redis.Set(ctx, s.key, data, 0).Err(); err != nil {
		return &customerrors.PersistenceError{Op: "save", Err: err}
	}
	return nil
}

// Close closes the client.
func (s *RedisStore) Close() error {
	return s.redis.Close()
}
