package monitor

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/axellelanca/urlregistry/internal/eventlog"
	"github.com/axellelanca/urlregistry/internal/logging"
	"github.com/axellelanca/urlregistry/internal/models"
)

// Registry is the part of the URL registry the monitor drives.
type Registry interface {
	RefreshExpiryStatus(ctx context.Context)
	List() []models.ShortURL
}

// ExpiryMonitor periodically refreshes expiry status and reports records that
// moved from active to expired since the previous pass.
type ExpiryMonitor struct {
	registry    Registry
	interval    time.Duration
	events      *eventlog.Log
	logger      *zap.SugaredLogger
	knownStates map[string]bool // short code -> expired at last pass
	mu          sync.Mutex
	done        chan struct{}
}

// NewExpiryMonitor creates a monitor running every interval.
func NewExpiryMonitor(registry Registry, interval time.Duration, events *eventlog.Log, logger *zap.SugaredLogger) *ExpiryMonitor {
	if events == nil {
		events = eventlog.New()
	}
	return &ExpiryMonitor{
		registry:    registry,
		interval:    interval,
		events:      events,
		logger:      logging.OrNop(logger),
		knownStates: make(map[string]bool),
		done:        make(chan struct{}),
	}
}

// Start runs a pass immediately, then one per interval, until ctx is cancelled.
// Start must be called at most once.
func (m *ExpiryMonitor) Start(ctx context.Context) {
	defer close(m.done)
	m.logger.Infow("starting expiry monitor", "interval", m.interval)
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	// A pass that has started finishes its save even if ctx is cancelled meanwhile.
	passCtx := context.WithoutCancel(ctx)
	m.Check(passCtx)

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("expiry monitor stopped")
			return
		case <-ticker.C:
			if ctx.Err() != nil {
				continue
			}
			m.Check(passCtx)
		}
	}
}

// Done is closed once Start has returned, after any in-flight pass has finished.
func (m *ExpiryMonitor) Done() <-chan struct{} {
	return m.done
}

// Check runs one refresh pass and returns the codes that expired since the last pass.
// The first time a code is seen only its state is recorded.
func (m *ExpiryMonitor) Check(ctx context.Context) []string {
	m.registry.RefreshExpiryStatus(ctx)

	var transitioned []string
	for _, rec := range m.registry.List() {
		m.mu.Lock()
		previous, exists := m.knownStates[rec.ShortCode]
		m.knownStates[rec.ShortCode] = rec.IsExpired
		m.mu.Unlock()

		if !exists {
			m.logger.Debugw("initial expiry state", "shortCode", rec.ShortCode, "state", formatState(rec.IsExpired))
			continue
		}

		if !previous && rec.IsExpired {
			transitioned = append(transitioned, rec.ShortCode)
			m.logger.Infow("short URL expired", "shortCode", rec.ShortCode, "expiresAt", rec.ExpiresAt)
			m.events.Warning("Short URL expired", map[string]any{
				"shortcode":   rec.ShortCode,
				"originalUrl": rec.OriginalURL,
				"expiresAt":   rec.ExpiresAt,
			})
		}
	}
	return transitioned
}

func formatState(expired bool) string {
	if expired {
		return "EXPIRED"
	}
	return "ACTIVE"
}
