package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/afero"

	customerrors "github.com/axellelanca/urlregistry/internal/errors"
	"github.com/axellelanca/urlregistry/internal/fsutil"
	"github.com/axellelanca/urlregistry/internal/models"
)

// FileStore persists the collection as one JSON document.
// Saves write a temporary file next to the target and rename it into place,
// so a crash mid-write leaves the previous snapshot intact.
type FileStore struct {
	fs   afero.Fs
	path string
}

// NewFileStore creates a FileStore writing to path on fsys.
func NewFileStore(fsys afero.Fs, path string) *FileStore {
	return &FileStore{fs: fsys, path: path}
}

// Load reads the snapshot. A missing file is an empty collection.
func (s *FileStore) Load(ctx context.Context) ([]models.ShortURL, error) {
	if err := ctx.Err(); err != nil {
		return []models.ShortURL{}, err
	}

	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []models.ShortURL{}, nil
		}
		return []models.ShortURL{}, &customerrors.PersistenceError{Op: "load", Err: err}
	}

	records, err := decodeSnapshot(data)
	if err != nil {
		return []models.ShortURL{}, &customerrors.PersistenceError{
			Op:  "load",
			Err: fmt.Errorf("malformed snapshot %s: %w", s.path, err),
		}
	}
	return records, nil
}

// Save atomically replaces the snapshot with records.
func (s *FileStore) Save(ctx context.Context, records []models.ShortURL) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := encodeSnapshot(records)
	if err != nil {
		return &customerrors.PersistenceError{Op: "save", Err: err}
	}
	if err := fsutil.WriteFileAtomic(s.fs, s.path, data); err != nil {
		return &customerrors.PersistenceError{Op: "save", Err: err}
	}
	return nil
}

// Close is a no-op; no handle is held between calls.
func (s *FileStore) Close() error {
	return nil
}
