package eventlog

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/goccy/go-json"
	"github.com/spf13/afero"

	"github.com/axellelanca/urlregistry/internal/fsutil"
)

// Sink persists the newest entries of a Log.
type Sink interface {
	Persist(entries []Entry) error
	Restore() ([]Entry, error)
	Clear() error
}

// NopSink discards everything.
type NopSink struct{}

func (NopSink) Persist([]Entry) error     { return nil }
func (NopSink) Restore() ([]Entry, error) { return nil, nil }
func (NopSink) Clear() error              { return nil }

// FileSink stores entries as a JSON array, newest first.
type FileSink struct {
	fs   afero.Fs
	path string
}

// NewFileSink creates a FileSink writing to path on fsys.
func NewFileSink(fsys afero.Fs, path string) *FileSink {
	return &FileSink{fs: fsys, path: path}
}

// Persist atomically replaces the file with entries.
func (s *FileSink) Persist(entries []Entry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode event log: %w", err)
	}
	if err := fsutil.WriteFileAtomic(s.fs, s.path, data); err != nil {
		return fmt.Errorf("write event log: %w", err)
	}
	return nil
}

// Restore reads the persisted entries. A missing file yields none.
func (s *FileSink) Restore() ([]Entry, error) {
	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read event log: %w", err)
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode event log: %w", err)
	}
	return entries, nil
}

// Clear removes the file.
func (s *FileSink) Clear() error {
	if err := s.fs.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove event log: %w", err)
	}
	return nil
}
