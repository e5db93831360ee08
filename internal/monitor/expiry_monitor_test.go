package monitor_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axellelanca/urlregistry/internal/clock"
	"github.com/axellelanca/urlregistry/internal/eventlog"
	"github.com/axellelanca/urlregistry/internal/models"
	"github.com/axellelanca/urlregistry/internal/monitor"
	"github.com/axellelanca/urlregistry/internal/repository"
	"github.com/axellelanca/urlregistry/internal/services"
)

var base = time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)

func setup(t *testing.T) (*services.URLRegistry, *clock.Mock, *eventlog.Log) {
	t.Helper()
	mock := clock.NewMock(base)
	events := eventlog.New()
	reg := services.NewURLRegistry(context.Background(), repository.NewMemoryStore(),
		services.WithClock(mock),
		services.WithEventLog(events),
	)
	for code, validity := range map[string]int{"fast": 1, "slow": 60} {
		_, err := reg.Create(context.Background(), services.CreateRequest{
			OriginalURL:     "https://example.com/" + code,
			CustomShortCode: code,
			ValidityMinutes: validity,
		})
		require.NoError(t, err)
	}
	return reg, mock, events
}

func countWarnings(entries []eventlog.Entry) int {
	n := 0
	for _, e := range entries {
		if e.Level == eventlog.LevelWarning && e.Message == "Short URL expired" {
			n++
		}
	}
	return n
}

func TestExpiryMonitor_ReportsEachTransitionOnce(t *testing.T) {
	reg, mock, events := setup(t)
	m := monitor.NewExpiryMonitor(reg, time.Minute, events, nil)

	assert.Empty(t, m.Check(context.Background()))

	mock.Advance(2 * time.Minute)
	assert.Equal(t, []string{"fast"}, m.Check(context.Background()))
	assert.Empty(t, m.Check(context.Background()))

	mock.Advance(time.Hour)
	assert.Equal(t, []string{"slow"}, m.Check(context.Background()))

	assert.Equal(t, 2, countWarnings(events.Entries()))
}

func TestExpiryMonitor_FirstPassOnlyRecordsState(t *testing.T) {
	reg, mock, events := setup(t)
	mock.Advance(2 * time.Hour)
	m := monitor.NewExpiryMonitor(reg, time.Minute, events, nil)

	assert.Empty(t, m.Check(context.Background()))
	assert.Equal(t, 0, countWarnings(events.Entries()))

	rec, err := reg.Get("fast")
	require.NoError(t, err)
	assert.True(t, rec.IsExpired)
}

func TestExpiryMonitor_StartStopsOnCancel(t *testing.T) {
	reg, _, events := setup(t)
	m := monitor.NewExpiryMonitor(reg, 10*time.Millisecond, events, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Start(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("monitor did not stop after cancel")
	}
	select {
	case <-m.Done():
	default:
		t.Fatal("Done must be closed once Start has returned")
	}
}

// blockingRegistry holds the first refresh until released.
type blockingRegistry struct {
	entered chan struct{}
	release chan struct{}
	once    sync.Once
	mu      sync.Mutex
	calls   int
	ctxErrs []error
}

func (r *blockingRegistry) RefreshExpiryStatus(ctx context.Context) {
	r.once.Do(func() {
		close(r.entered)
		<-r.release
	})
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	r.ctxErrs = append(r.ctxErrs, ctx.Err())
}

func (r *blockingRegistry) List() []models.ShortURL { return nil }

func TestExpiryMonitor_DoneWaitsForInFlightPass(t *testing.T) {
	reg := &blockingRegistry{entered: make(chan struct{}), release: make(chan struct{})}
	m := monitor.NewExpiryMonitor(reg, time.Hour, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go m.Start(ctx)
	<-reg.entered

	cancel()
	select {
	case <-m.Done():
		t.Fatal("Done closed while a pass was still running")
	case <-time.After(20 * time.Millisecond):
	}

	close(reg.release)
	select {
	case <-m.Done():
	case <-time.After(time.Second):
		t.Fatal("monitor did not finish after the pass completed")
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()
	assert.Equal(t, 1, reg.calls)
	assert.Equal(t, []error{nil}, reg.ctxErrs, "the in-flight pass must not see a cancelled context")
}
