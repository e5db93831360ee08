// Package services contains the URL registry: the authoritative collection of
// alias records and the only code allowed to mutate it.
package services

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/axellelanca/urlregistry/internal/clock"
	customerrors "github.com/axellelanca/urlregistry/internal/errors"
	"github.com/axellelanca/urlregistry/internal/eventlog"
	"github.com/axellelanca/urlregistry/internal/location"
	"github.com/axellelanca/urlregistry/internal/logging"
	"github.com/axellelanca/urlregistry/internal/metrics"
	"github.com/axellelanca/urlregistry/internal/models"
	"github.com/axellelanca/urlregistry/internal/repository"
	"github.com/axellelanca/urlregistry/internal/shortcode"
	"github.com/axellelanca/urlregistry/internal/validator"
)

// DefaultMaxAttempts bounds how many generated candidates Create tries before
// giving up with ErrCodeSpaceExhausted.
const DefaultMaxAttempts = 20

// DefaultTopN is the size of the click ranking returned by Summary.
const DefaultTopN = 10

// CreateRequest describes a new alias. An empty CustomShortCode asks for a generated one.
type CreateRequest struct {
	OriginalURL     string
	CustomShortCode string
	ValidityMinutes int
}

// URLRegistry owns every ShortURL record. Each mutation and its persistence
// write happen inside one critical section, so the uniqueness check and the
// insert are atomic and saves reach the store in mutation order.
type URLRegistry struct {
	mu      sync.Mutex
	records []*models.ShortURL // insertion order
	byCode  map[string]*models.ShortURL

	store       repository.Store
	generator   shortcode.CodeGenerator
	clock       clock.Clock
	events      *eventlog.Log
	logger      *zap.SugaredLogger
	maxAttempts int
	newID       func() string
}

type Option func(r *URLRegistry)

// WithClock overrides the real clock.
func WithClock(c clock.Clock) Option {
	return func(r *URLRegistry) { r.clock = c }
}

// WithGenerator overrides the default 6-character generator.
func WithGenerator(g shortcode.CodeGenerator) Option {
	return func(r *URLRegistry) { r.generator = g }
}

// WithMaxAttempts overrides DefaultMaxAttempts. Values below 1 are ignored.
func WithMaxAttempts(n int) Option {
	return func(r *URLRegistry) {
		if n > 0 {
			r.maxAttempts = n
		}
	}
}

// WithEventLog sets the event log user-visible events are written to.
func WithEventLog(l *eventlog.Log) Option {
	return func(r *URLRegistry) { r.events = l }
}

// WithLogger sets the operational logger.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(r *URLRegistry) { r.logger = logging.OrNop(l) }
}

// WithIDFunc overrides uuid-based record IDs.
func WithIDFunc(f func() string) Option {
	return func(r *URLRegistry) { r.newID = f }
}

// NewURLRegistry creates a registry and loads the persisted records from store.
// Load failures are logged and the registry starts with whatever could be read.
func NewURLRegistry(ctx context.Context, store repository.Store, opts ...Option) *URLRegistry {
	r := &URLRegistry{
		byCode:      make(map[string]*models.ShortURL),
		store:       store,
		generator:   shortcode.NewGenerator(shortcode.DefaultLength),
		clock:       clock.Real{},
		events:      eventlog.New(),
		logger:      zap.NewNop().Sugar(),
		maxAttempts: DefaultMaxAttempts,
		newID:       uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}

	r.load(ctx)
	return r
}

func (r *URLRegistry) load(ctx context.Context) {
	loaded, err := r.store.Load(ctx)
	if err != nil {
		r.logger.Warnw("failed to load stored short URLs, starting empty", "error", err)
		r.events.Warning("Stored short URLs could not be loaded", map[string]any{"error": err.Error()})
	}

	now := r.clock.Now()
	for i := range loaded {
		rec := loaded[i].Clone()
		if _, dup := r.byCode[rec.ShortCode]; dup || rec.ShortCode == "" || !rec.ExpiresAt.After(rec.CreatedAt) {
			r.logger.Warnw("skipping invalid stored record", "shortCode", rec.ShortCode, "id", rec.ID)
			r.events.Warning("Skipped invalid stored short URL", map[string]any{"shortCode": rec.ShortCode})
			continue
		}
		if rec.Clicks == nil {
			rec.Clicks = []models.ClickEvent{}
		}
		rec.Refresh(now)
		r.records = append(r.records, rec)
		r.byCode[rec.ShortCode] = rec
	}

	r.logger.Infow("registry loaded", "records", len(r.records))
}

// Create validates req, assigns a code and inserts a new record.
func (r *URLRegistry) Create(ctx context.Context, req CreateRequest) (*models.ShortURL, error) {
	if !validator.ValidateURL(req.OriginalURL) {
		return nil, r.reject("invalid_url", req, &customerrors.ValidationError{
			Field: "originalUrl", Value: req.OriginalURL, Err: customerrors.ErrInvalidURL,
		})
	}
	if !validator.ValidateValidityMinutes(req.ValidityMinutes) {
		return nil, r.reject("invalid_validity", req, &customerrors.ValidationError{
			Field: "validityMinutes", Value: req.ValidityMinutes, Err: customerrors.ErrInvalidValidity,
		})
	}
	if req.CustomShortCode != "" && !validator.ValidateShortCode(req.CustomShortCode) {
		return nil, r.reject("invalid_short_code", req, &customerrors.ValidationError{
			Field: "shortCode", Value: req.CustomShortCode, Err: customerrors.ErrInvalidShortCode,
		})
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	code := req.CustomShortCode
	if code != "" {
		// Codes are never recycled, so expired records still block reuse.
		if _, taken := r.byCode[code]; taken {
			return nil, r.reject("code_taken", req, fmt.Errorf("%q: %w", code, customerrors.ErrCodeTaken))
		}
	} else {
		generated, err := r.generateLocked()
		if err != nil {
			return nil, r.reject("code_generation", req, err)
		}
		code = generated
	}

	now := r.clock.Now()
	rec := &models.ShortURL{
		ID:          r.newID(),
		OriginalURL: req.OriginalURL,
		ShortCode:   code,
		CreatedAt:   now,
		ExpiresAt:   now.Add(minutes(req.ValidityMinutes)),
		IsExpired:   false,
		Clicks:      []models.ClickEvent{},
	}
	r.records = append(r.records, rec)
	r.byCode[code] = rec

	r.persistLocked(ctx, "create")

	metrics.Created.Inc()
	r.events.Success("URL shortened successfully", map[string]any{
		"shortCode":   rec.ShortCode,
		"originalUrl": rec.OriginalURL,
		"expiresAt":   rec.ExpiresAt,
	})
	return rec.Clone(), nil
}

// generateLocked draws candidates until one is valid and unused, within the retry budget.
func (r *URLRegistry) generateLocked() (string, error) {
	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		code, err := r.generator.Generate()
		if err != nil {
			return "", fmt.Errorf("failed to generate short code: %w", err)
		}
		if !validator.ValidateShortCode(code) {
			r.logger.Warnw("generator produced an invalid short code", "code", code)
			continue
		}
		if _, taken := r.byCode[code]; !taken {
			return code, nil
		}
		r.logger.Debugw("short code collision, retrying", "code", code, "attempt", attempt, "maxAttempts", r.maxAttempts)
	}
	return "", fmt.Errorf("after %d attempts: %w", r.maxAttempts, customerrors.ErrCodeSpaceExhausted)
}

func (r *URLRegistry) reject(reason string, req CreateRequest, err error) error {
	metrics.CreateRejected.WithLabelValues(reason).Inc()
	r.events.Error("URL validation failed", map[string]any{
		"error":           err.Error(),
		"originalUrl":     req.OriginalURL,
		"customShortCode": req.CustomShortCode,
		"validityMinutes": req.ValidityMinutes,
	})
	return err
}

// Resolve returns the record for code if it is still within its validity window.
// An expired record is refused with ErrExpired; use Get to read it for statistics.
func (r *URLRegistry) Resolve(code string) (*models.ShortURL, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, err := r.resolveLocked(code)
	if err != nil {
		return nil, err
	}
	return rec.Clone(), nil
}

func (r *URLRegistry) resolveLocked(code string) (*models.ShortURL, error) {
	rec, ok := r.byCode[code]
	if !ok {
		metrics.Resolutions.WithLabelValues("not_found").Inc()
		return nil, &customerrors.LookupError{ShortCode: code, Err: customerrors.ErrShortCodeNotFound}
	}
	if rec.Refresh(r.clock.Now()) {
		metrics.Resolutions.WithLabelValues("expired").Inc()
		return nil, &customerrors.LookupError{ShortCode: code, Err: customerrors.ErrExpired}
	}
	metrics.Resolutions.WithLabelValues("resolved").Inc()
	return rec, nil
}

// RecordClick appends click to the record's history and persists.
//
// It does not check expiry: callers must have resolved code successfully first.
// Recording on an expired code that was never resolved is a contract violation,
// not a reported error.
func (r *URLRegistry) RecordClick(ctx context.Context, code string, click models.ClickEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.byCode[code]
	if !ok {
		return &customerrors.LookupError{ShortCode: code, Err: customerrors.ErrShortCodeNotFound}
	}
	r.appendClickLocked(ctx, rec, click)
	return nil
}

func (r *URLRegistry) appendClickLocked(ctx context.Context, rec *models.ShortURL, click models.ClickEvent) {
	if click.Referrer == "" {
		click.Referrer = models.DirectReferrer
	}
	rec.Clicks = append(rec.Clicks, click)
	r.persistLocked(ctx, "record_click")
	metrics.ClicksRecorded.Inc()
}

// Visit runs the whole resolution flow for one access: resolve, build the click
// from referrer and locator, record it. Resolution and recording share one
// critical section. The returned record includes the new click.
func (r *URLRegistry) Visit(ctx context.Context, code, referrer string, locator location.Locator) (*models.ShortURL, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, err := r.resolveLocked(code)
	if err != nil {
		r.logLookupFailure(code, err)
		return nil, err
	}

	click := models.NewClickEvent(r.clock.Now(), referrer, locator.Locate(ctx))
	r.appendClickLocked(ctx, rec, click)
	r.events.Info("URL click recorded", map[string]any{
		"shortcode": code,
		"referrer":  click.Referrer,
		"location":  click.Location,
	})
	return rec.Clone(), nil
}

// LogLookupFailure writes the warning event shown when an access cannot be served.
func (r *URLRegistry) LogLookupFailure(code string, err error) {
	r.logLookupFailure(code, err)
}

func (r *URLRegistry) logLookupFailure(code string, err error) {
	switch {
	case isExpired(err):
		r.events.Warning("Attempted access to expired short URL", map[string]any{"shortcode": code})
	case isNotFound(err):
		r.events.Warning("Attempted access to non-existent short URL", map[string]any{"shortcode": code})
	}
}

// RefreshExpiryStatus recomputes IsExpired for every record and persists.
// It is idempotent and safe to call on a timer.
func (r *URLRegistry) RefreshExpiryStatus(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clock.Now()
	expired := 0
	for _, rec := range r.records {
		if rec.Refresh(now) {
			expired++
		}
	}
	metrics.ExpiredRecords.Set(float64(expired))

	r.persistLocked(ctx, "refresh_expiry")
}

// List returns copies of all records in insertion order. The copies' IsExpired
// reflects the current time; the registry's own cache is not touched.
func (r *URLRegistry) List() []models.ShortURL {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clock.Now()
	out := make([]models.ShortURL, len(r.records))
	for i, rec := range r.records {
		out[i] = *rec.Clone()
		out[i].Refresh(now)
	}
	return out
}

// Get returns a copy of the record for code whether or not it has expired.
// This is the statistics path; it never yields ErrExpired.
func (r *URLRegistry) Get(code string) (*models.ShortURL, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.byCode[code]
	if !ok {
		return nil, &customerrors.LookupError{ShortCode: code, Err: customerrors.ErrShortCodeNotFound}
	}
	c := rec.Clone()
	c.Refresh(r.clock.Now())
	return c, nil
}

// Len returns the number of records.
func (r *URLRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

// Summary aggregates totals and the top records by click count.
// Ties keep insertion order. top <= 0 uses DefaultTopN.
func (r *URLRegistry) Summary(top int) models.Summary {
	if top <= 0 {
		top = DefaultTopN
	}
	records := r.List()

	s := models.Summary{TotalURLs: len(records)}
	ranking := make([]models.CodeClicks, 0, len(records))
	for i := range records {
		if records[i].IsExpired {
			s.ExpiredURLs++
		} else {
			s.ActiveURLs++
		}
		s.TotalClicks += records[i].ClickCount()
		ranking = append(ranking, models.CodeClicks{ShortCode: records[i].ShortCode, Clicks: records[i].ClickCount()})
	}

	sort.SliceStable(ranking, func(i, j int) bool { return ranking[i].Clicks > ranking[j].Clicks })
	if len(ranking) > top {
		ranking = ranking[:top]
	}
	s.TopByClicks = ranking
	return s
}

// persistLocked saves the whole collection. A failure keeps the in-memory
// change, is counted and becomes an error-level event.
func (r *URLRegistry) persistLocked(ctx context.Context, op string) {
	snapshot := make([]models.ShortURL, len(r.records))
	for i, rec := range r.records {
		snapshot[i] = *rec.Clone()
	}

	if err := r.store.Save(ctx, snapshot); err != nil {
		metrics.PersistenceFailures.WithLabelValues(op).Inc()
		r.logger.Errorw("failed to persist short URLs", "operation", op, "error", err)
		r.events.Error("Failed to save short URLs", map[string]any{
			"operation": op,
			"error":     err.Error(),
		})
	}
}
