// Package api exposes the registry as a JSON query API. It never issues HTTP
// redirects: resolving an alias returns the original URL in the body.
package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/axellelanca/urlregistry/internal/clock"
	customerrors "github.com/axellelanca/urlregistry/internal/errors"
	"github.com/axellelanca/urlregistry/internal/eventlog"
	"github.com/axellelanca/urlregistry/internal/location"
	"github.com/axellelanca/urlregistry/internal/logging"
	"github.com/axellelanca/urlregistry/internal/metrics"
	"github.com/axellelanca/urlregistry/internal/models"
	"github.com/axellelanca/urlregistry/internal/services"
	"github.com/axellelanca/urlregistry/internal/workers"
)

// ClickQueue accepts clicks for asynchronous recording.
type ClickQueue interface {
	Dispatch(job workers.ClickJob) bool
}

// Handler holds the dependencies of every route.
type Handler struct {
	registry        *services.URLRegistry
	clicks          ClickQueue
	events          *eventlog.Log
	logger          *zap.SugaredLogger
	locator         location.Locator
	clock           clock.Clock
	baseURL         string
	defaultValidity int
}

type HandlerOption func(h *Handler)

// WithClickQueue records clicks through q instead of synchronously.
func WithClickQueue(q ClickQueue) HandlerOption {
	return func(h *Handler) { h.clicks = q }
}

func WithLocator(l location.Locator) HandlerOption {
	return func(h *Handler) { h.locator = l }
}

func WithClock(c clock.Clock) HandlerOption {
	return func(h *Handler) { h.clock = c }
}

// WithBaseURL sets the prefix used to build full short URLs in responses.
func WithBaseURL(u string) HandlerOption {
	return func(h *Handler) { h.baseURL = u }
}

// WithDefaultValidity sets the validity used when a create request omits it.
func WithDefaultValidity(minutes int) HandlerOption {
	return func(h *Handler) { h.defaultValidity = minutes }
}

func WithLogger(l *zap.SugaredLogger) HandlerOption {
	return func(h *Handler) { h.logger = logging.OrNop(l) }
}

// NewHandler creates a Handler over registry and events.
func NewHandler(registry *services.URLRegistry, events *eventlog.Log, opts ...HandlerOption) *Handler {
	h := &Handler{
		registry:        registry,
		events:          events,
		logger:          zap.NewNop().Sugar(),
		locator:         location.Mock{},
		clock:           clock.Real{},
		baseURL:         "http://localhost:8080",
		defaultValidity: 30,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// SetupRoutes registers every route on router.
func SetupRoutes(router *gin.Engine, h *Handler) {
	router.GET("/health", HealthCheckHandler)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.POST("/links", h.CreateLink)
		v1.GET("/links", h.ListLinks)
		v1.GET("/links/:shortCode/resolve", h.ResolveLink)
		v1.GET("/links/:shortCode/stats", h.LinkStats)
		v1.GET("/summary", h.Summary)
		v1.GET("/logs", h.Logs)
		v1.DELETE("/logs", h.ClearLogs)
		v1.POST("/refresh", h.Refresh)
	}
}

// RequestLogger logs one line per request through zap.
func RequestLogger(logger *zap.SugaredLogger) gin.HandlerFunc {
	logger = logging.OrNop(logger)
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Infow("request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

// HealthCheckHandler reports that the process is serving.
func HealthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// CreateLinkRequest is the body of POST /api/v1/links.
// A missing validity_minutes uses the configured default.
type CreateLinkRequest struct {
	OriginalURL     string `json:"original_url" binding:"required"`
	ShortCode       string `json:"short_code"`
	ValidityMinutes *int   `json:"validity_minutes"`
}

// LinkResponse describes one record.
type LinkResponse struct {
	ShortCode    string    `json:"short_code"`
	OriginalURL  string    `json:"original_url"`
	FullShortURL string    `json:"full_short_url"`
	CreatedAt    time.Time `json:"created_at"`
	ExpiresAt    time.Time `json:"expires_at"`
	IsExpired    bool      `json:"is_expired"`
	TotalClicks  int       `json:"total_clicks"`
}

// StatsResponse adds the click history to LinkResponse.
type StatsResponse struct {
	LinkResponse
	Clicks []models.ClickEvent `json:"clicks"`
}

func (h *Handler) toResponse(rec *models.ShortURL) LinkResponse {
	return LinkResponse{
		ShortCode:    rec.ShortCode,
		OriginalURL:  rec.OriginalURL,
		FullShortURL: h.baseURL + "/" + rec.ShortCode,
		CreatedAt:    rec.CreatedAt,
		ExpiresAt:    rec.ExpiresAt,
		IsExpired:    rec.IsExpired,
		TotalClicks:  rec.ClickCount(),
	}
}

// CreateLink handles POST /api/v1/links.
func (h *Handler) CreateLink(c *gin.Context) {
	var req CreateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	validity := h.defaultValidity
	if req.ValidityMinutes != nil {
		validity = *req.ValidityMinutes
	}

	rec, err := h.registry.Create(c.Request.Context(), services.CreateRequest{
		OriginalURL:     req.OriginalURL,
		CustomShortCode: req.ShortCode,
		ValidityMinutes: validity,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, h.toResponse(rec))
}

// ListLinks handles GET /api/v1/links.
func (h *Handler) ListLinks(c *gin.Context) {
	records := h.registry.List()
	out := make([]LinkResponse, 0, len(records))
	for i := range records {
		out = append(out, h.toResponse(&records[i]))
	}
	c.JSON(http.StatusOK, gin.H{"links": out, "total": len(out)})
}

// ResolveLink handles GET /api/v1/links/:shortCode/resolve. The click is
// queued for recording after the lookup succeeds.
func (h *Handler) ResolveLink(c *gin.Context) {
	shortCode := c.Param("shortCode")

	rec, err := h.registry.Resolve(shortCode)
	if err != nil {
		h.registry.LogLookupFailure(shortCode, err)
		h.writeError(c, err)
		return
	}

	click := models.NewClickEvent(h.clock.Now(), c.GetHeader("Referer"), h.locator.Locate(c.Request.Context()))
	h.recordClick(c, shortCode, click)

	c.JSON(http.StatusOK, gin.H{
		"short_code":   rec.ShortCode,
		"original_url": rec.OriginalURL,
		"expires_at":   rec.ExpiresAt,
	})
}

func (h *Handler) recordClick(c *gin.Context, shortCode string, click models.ClickEvent) {
	if h.clicks != nil {
		if h.clicks.Dispatch(workers.ClickJob{ShortCode: shortCode, Click: click}) {
			h.events.Info("URL click recorded", map[string]any{
				"shortcode": shortCode,
				"referrer":  click.Referrer,
				"location":  click.Location,
			})
		}
		return
	}

	if err := h.registry.RecordClick(c.Request.Context(), shortCode, click); err != nil {
		h.logger.Errorw("failed to record click", "shortCode", shortCode, "error", err)
		return
	}
	h.events.Info("URL click recorded", map[string]any{
		"shortcode": shortCode,
		"referrer":  click.Referrer,
		"location":  click.Location,
	})
}

// LinkStats handles GET /api/v1/links/:shortCode/stats. Expired records are still served.
func (h *Handler) LinkStats(c *gin.Context) {
	rec, err := h.registry.Get(c.Param("shortCode"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, StatsResponse{LinkResponse: h.toResponse(rec), Clicks: rec.Clicks})
}

// Summary handles GET /api/v1/summary?top=N.
func (h *Handler) Summary(c *gin.Context) {
	top := 0
	if raw := c.Query("top"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "top must be a positive integer"})
			return
		}
		top = n
	}
	c.JSON(http.StatusOK, h.registry.Summary(top))
}

// Logs handles GET /api/v1/logs?level=L, newest first.
func (h *Handler) Logs(c *gin.Context) {
	entries := h.events.Entries()
	if level := c.Query("level"); level != "" {
		filtered := make([]eventlog.Entry, 0, len(entries))
		for _, e := range entries {
			if string(e.Level) == level {
				filtered = append(filtered, e)
			}
		}
		entries = filtered
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries, "total": len(entries)})
}

// ClearLogs handles DELETE /api/v1/logs.
func (h *Handler) ClearLogs(c *gin.Context) {
	h.events.Clear()
	c.Status(http.StatusNoContent)
}

// Refresh handles POST /api/v1/refresh and returns the updated summary.
func (h *Handler) Refresh(c *gin.Context) {
	h.registry.RefreshExpiryStatus(c.Request.Context())
	c.JSON(http.StatusOK, h.registry.Summary(0))
}

func (h *Handler) writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := err.Error()
	switch {
	case customerrors.IsValidation(err):
		status = http.StatusBadRequest
	case errors.Is(err, customerrors.ErrCodeTaken):
		status = http.StatusConflict
	case errors.Is(err, customerrors.ErrCodeSpaceExhausted):
		status = http.StatusServiceUnavailable
	case errors.Is(err, customerrors.ErrShortCodeNotFound):
		status = http.StatusNotFound
		message = "Short URL not found"
	case errors.Is(err, customerrors.ErrExpired):
		status = http.StatusGone
		message = "This short URL has expired"
	}

	if status == http.StatusInternalServerError {
		h.logger.Errorw("request failed", "path", c.FullPath(), "error", err)
		c.JSON(status, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": message})
}
