// Package workers records clicks off the request path.
package workers

import (
	"context"
	"sync"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"

	"github.com/axellelanca/urlregistry/internal/eventlog"
	"github.com/axellelanca/urlregistry/internal/logging"
	"github.com/axellelanca/urlregistry/internal/metrics"
	"github.com/axellelanca/urlregistry/internal/models"
)

// ClickJob is one click waiting to be appended to its record.
type ClickJob struct {
	ShortCode string
	Click     models.ClickEvent
}

// Recorder is satisfied by the URL registry.
type Recorder interface {
	RecordClick(ctx context.Context, shortCode string, click models.ClickEvent) error
}

// ClickDispatcher fans click jobs out to a fixed pool of workers. Every job for
// a given short code lands on the same worker, so clicks are appended in the
// order they were dispatched.
type ClickDispatcher struct {
	queues   []chan ClickJob
	recorder Recorder
	events   *eventlog.Log
	logger   *zap.SugaredLogger

	mu      sync.RWMutex // guards stopped against sends on closed queues
	stopped bool
	wg      sync.WaitGroup
}

// NewClickDispatcher starts workerCount workers, each with a queue of bufferSize.
func NewClickDispatcher(recorder Recorder, workerCount, bufferSize int, events *eventlog.Log, logger *zap.SugaredLogger) *ClickDispatcher {
	if workerCount < 1 {
		workerCount = 1
	}
	if bufferSize < 0 {
		bufferSize = 0
	}
	if events == nil {
		events = eventlog.New()
	}

	d := &ClickDispatcher{
		queues:   make([]chan ClickJob, workerCount),
		recorder: recorder,
		events:   events,
		logger:   logging.OrNop(logger),
	}

	d.logger.Infow("starting click workers", "workers", workerCount, "bufferSize", bufferSize)
	for i := range d.queues {
		d.queues[i] = make(chan ClickJob, bufferSize)
		d.wg.Add(1)
		go d.work(i, d.queues[i])
	}
	return d
}

// Dispatch queues job without blocking. It returns false when the job was
// dropped because the worker's queue is full or the dispatcher is stopped.
func (d *ClickDispatcher) Dispatch(job ClickJob) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.stopped {
		d.logger.Warnw("click dispatcher stopped, dropping click", "shortCode", job.ShortCode)
		return false
	}

	select {
	case d.queues[d.shard(job.ShortCode)] <- job:
		return true
	default:
		metrics.ClicksDropped.Inc()
		d.logger.Warnw("click queue is full, dropping click", "shortCode", job.ShortCode)
		d.events.Warning("Click dropped, analytics queue is full", map[string]any{"shortcode": job.ShortCode})
		return false
	}
}

// Stop closes the queues and waits for the workers to drain them.
func (d *ClickDispatcher) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	for _, q := range d.queues {
		close(q)
	}
	d.mu.Unlock()

	d.wg.Wait()
	d.logger.Info("click workers stopped")
}

func (d *ClickDispatcher) shard(code string) int {
	return int(xxhash.Sum64String(code) % uint64(len(d.queues)))
}

func (d *ClickDispatcher) work(id int, jobs <-chan ClickJob) {
	defer d.wg.Done()

	for job := range jobs {
		if err := d.recorder.RecordClick(context.Background(), job.ShortCode, job.Click); err != nil {
			d.logger.Errorw("failed to record click", "worker", id, "shortCode", job.ShortCode, "error", err)
			continue
		}
		d.logger.Debugw("click recorded", "worker", id, "shortCode", job.ShortCode)
	}
}
