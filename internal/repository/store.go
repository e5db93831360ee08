// Package repository implements the persistence adapter the registry loads
// from at startup and writes after every mutation.
package repository

import (
	"context"

	"github.com/axellelanca/urlregistry/internal/models"
)

// Store is a durable key-value store for the whole record collection.
type Store interface {
	// Load returns every persisted record in insertion order. Missing data yields an
	// empty slice and no error; malformed data yields an empty slice and a
	// PersistenceError the caller may log but must not treat as fatal.
	Load(ctx context.Context) ([]models.ShortURL, error)

	// Save overwrites the persisted collection with records. Either the new
	// collection is fully durable or the previous one is left unchanged.
	Save(ctx context.Context, records []models.ShortURL) error

	// Close releases the backend's resources.
	Close() error
}

func cloneAll(records []models.ShortURL) []models.ShortURL {
	out := make([]models.ShortURL, len(records))
	for i := range records {
		out[i] = *records[i].Clone()
	}
	return out
}
