package workers_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	customerrors "github.com/axellelanca/urlregistry/internal/errors"
	"github.com/axellelanca/urlregistry/internal/eventlog"
	"github.com/axellelanca/urlregistry/internal/models"
	"github.com/axellelanca/urlregistry/internal/workers"
)

var base = time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)

type recordingRecorder struct {
	mu     sync.Mutex
	clicks map[string][]models.ClickEvent
	block  chan struct{}
}

func newRecorder() *recordingRecorder {
	return &recordingRecorder{clicks: make(map[string][]models.ClickEvent)}
}

func (r *recordingRecorder) RecordClick(_ context.Context, code string, click models.ClickEvent) error {
	if r.block != nil {
		<-r.block
	}
	if code == "missing" {
		return &customerrors.LookupError{ShortCode: code, Err: customerrors.ErrShortCodeNotFound}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clicks[code] = append(r.clicks[code], click)
	return nil
}

func TestClickDispatcher_PreservesPerCodeOrder(t *testing.T) {
	rec := newRecorder()
	d := workers.NewClickDispatcher(rec, 4, 500, nil, nil)

	codes := []string{"aaa", "bbb", "ccc", "ddd", "eee"}
	for i := 0; i < 100; i++ {
		for _, code := range codes {
			ok := d.Dispatch(workers.ClickJob{
				ShortCode: code,
				Click:     models.NewClickEvent(base.Add(time.Duration(i)*time.Second), fmt.Sprintf("%d", i), "Tokyo, JP"),
			})
			require.True(t, ok)
		}
	}
	d.Stop()

	for _, code := range codes {
		clicks := rec.clicks[code]
		require.Len(t, clicks, 100, code)
		for i, c := range clicks {
			assert.Equal(t, fmt.Sprintf("%d", i), c.Referrer)
		}
	}
}

func TestClickDispatcher_DropsWhenQueueFull(t *testing.T) {
	rec := newRecorder()
	rec.block = make(chan struct{})
	events := eventlog.New()
	d := workers.NewClickDispatcher(rec, 1, 1, events, nil)

	// The first job is taken by the blocked worker, the second fills the queue.
	require.True(t, d.Dispatch(workers.ClickJob{ShortCode: "aaa"}))
	require.Eventually(t, func() bool {
		return d.Dispatch(workers.ClickJob{ShortCode: "aaa"})
	}, time.Second, time.Millisecond)

	assert.False(t, d.Dispatch(workers.ClickJob{ShortCode: "aaa"}))
	assert.Equal(t, "Click dropped, analytics queue is full", events.Entries()[0].Message)

	close(rec.block)
	d.Stop()
	assert.Len(t, rec.clicks["aaa"], 2)
}

func TestClickDispatcher_StopIsIdempotentAndRejectsLateJobs(t *testing.T) {
	rec := newRecorder()
	d := workers.NewClickDispatcher(rec, 2, 10, nil, nil)

	require.True(t, d.Dispatch(workers.ClickJob{ShortCode: "missing"}))
	d.Stop()
	d.Stop()

	assert.False(t, d.Dispatch(workers.ClickJob{ShortCode: "aaa"}))
	assert.Empty(t, rec.clicks)
}
