package repository

import (
	"context"
	"sync"

	"github.com/axellelanca/urlregistry/internal/models"
)

// MemoryStore keeps the snapshot in process memory. It is used for tests and
// for the "memory" storage type, where durability is not wanted.
type MemoryStore struct {
	mu      sync.RWMutex
	records []models.ShortURL
	saves   int
}

// NewMemoryStore creates a MemoryStore seeded with a copy of records.
func NewMemoryStore(records ...models.ShortURL) *MemoryStore {
	return &MemoryStore{records: cloneAll(records)}
}

// Load returns a deep copy of the stored collection.
func (s *MemoryStore) Load(ctx context.Context) ([]models.ShortURL, error) {
	select {
	case <-ctx.Done():
		return []models.ShortURL{}, ctx.Err()
	default:
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.records), nil
}

// Save swaps in a deep copy of records.
func (s *MemoryStore) Save(ctx context.Context, records []models.ShortURL) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	snapshot := cloneAll(records)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = snapshot
	s.saves++
	return nil
}

// Saves returns how many successful saves the store has received.
func (s *MemoryStore) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}

// Close is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}
