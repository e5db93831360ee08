// Package eventlog is the append-only side channel of operational events
// shown to users alongside the registry. It never fails its callers.
package eventlog

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/axellelanca/urlregistry/internal/logging"
)

// Level classifies an entry.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
	LevelSuccess Level = "success"
)

const (
	// DefaultCapacity is the number of entries kept in memory.
	DefaultCapacity = 1000
	// DefaultPersistLimit is the number of newest entries handed to the sink.
	DefaultPersistLimit = 100
)

// Entry is one logged event.
type Entry struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	Level     Level          `json:"level"`
	Message   string         `json:"message"`
	Data      map[string]any `json:"data,omitempty"`
}

// Log keeps the newest entries first, capped at capacity.
type Log struct {
	// persistMu orders sink writes so an older tail never overwrites a newer one.
	persistMu    sync.Mutex
	mu           sync.RWMutex
	entries      []Entry
	capacity     int
	persistLimit int
	sink         Sink
	logger       *zap.SugaredLogger
	now          func() time.Time
}

type Option func(l *Log)

// WithCapacity overrides DefaultCapacity.
func WithCapacity(n int) Option {
	return func(l *Log) {
		if n > 0 {
			l.capacity = n
		}
	}
}

// WithPersistLimit overrides DefaultPersistLimit.
func WithPersistLimit(n int) Option {
	return func(l *Log) {
		if n >= 0 {
			l.persistLimit = n
		}
	}
}

// WithSink sets where the newest entries are persisted.
func WithSink(s Sink) Option {
	return func(l *Log) {
		if s != nil {
			l.sink = s
		}
	}
}

// WithLogger mirrors every entry to a zap logger.
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(l *Log) {
		l.logger = logging.OrNop(logger)
	}
}

// WithNow overrides the timestamp source.
func WithNow(now func() time.Time) Option {
	return func(l *Log) {
		if now != nil {
			l.now = now
		}
	}
}

// New creates an empty Log.
func New(opts ...Option) *Log {
	l := &Log{
		capacity:     DefaultCapacity,
		persistLimit: DefaultPersistLimit,
		sink:         NopSink{},
		logger:       zap.NewNop().Sugar(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.persistLimit > l.capacity {
		l.persistLimit = l.capacity
	}
	return l
}

// Restore replaces the buffer with the sink's persisted entries.
// A sink failure leaves the buffer empty.
func (l *Log) Restore() {
	entries, err := l.sink.Restore()
	if err != nil {
		l.logger.Warnw("failed to restore event log", "error", err)
		entries = nil
	}
	if len(entries) > l.capacity {
		entries = entries[:l.capacity]
	}

	l.mu.Lock()
	l.entries = append([]Entry(nil), entries...)
	l.mu.Unlock()
}

// Info records an informational event.
func (l *Log) Info(message string, data map[string]any) { l.Add(LevelInfo, message, data) }

// Success records a completed user-visible action.
func (l *Log) Success(message string, data map[string]any) { l.Add(LevelSuccess, message, data) }

// Warning records an unusual but expected condition.
func (l *Log) Warning(message string, data map[string]any) { l.Add(LevelWarning, message, data) }

// Error records a failure.
func (l *Log) Error(message string, data map[string]any) { l.Add(LevelError, message, data) }

// Add records an entry, trims the buffer and hands the newest entries to the sink.
func (l *Log) Add(level Level, message string, data map[string]any) {
	entry := Entry{
		ID:        uuid.NewString(),
		Timestamp: l.now(),
		Level:     level,
		Message:   message,
		Data:      data,
	}
	l.mirror(entry)

	l.persistMu.Lock()
	defer l.persistMu.Unlock()

	l.mu.Lock()
	l.entries = append(l.entries, Entry{})
	copy(l.entries[1:], l.entries)
	l.entries[0] = entry
	if len(l.entries) > l.capacity {
		l.entries = l.entries[:l.capacity]
	}
	tail := l.newestLocked(l.persistLimit)
	l.mu.Unlock()

	if err := l.sink.Persist(tail); err != nil {
		l.logger.Errorw("failed to persist event log", "error", err)
	}
}

// Entries returns a copy of the buffer, newest first.
func (l *Log) Entries() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.newestLocked(len(l.entries))
}

// Len returns the number of buffered entries.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Clear empties the buffer and the sink.
func (l *Log) Clear() {
	l.persistMu.Lock()
	defer l.persistMu.Unlock()

	l.mu.Lock()
	l.entries = nil
	l.mu.Unlock()

	if err := l.sink.Clear(); err != nil {
		l.logger.Errorw("failed to clear persisted event log", "error", err)
	}
}

func (l *Log) newestLocked(n int) []Entry {
	if n > len(l.entries) {
		n = len(l.entries)
	}
	out := make([]Entry, n)
	copy(out, l.entries[:n])
	return out
}

func (l *Log) mirror(e Entry) {
	kv := make([]any, 0, 2*len(e.Data)+2)
	kv = append(kv, "event_level", string(e.Level))
	for k, v := range e.Data {
		kv = append(kv, k, v)
	}

	switch e.Level {
	case LevelWarning:
		l.logger.Warnw(e.Message, kv...)
	case LevelError:
		l.logger.Errorw(e.Message, kv...)
	default:
		l.logger.Infow(e.Message, kv...)
	}
}
