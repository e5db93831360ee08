package api_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axellelanca/urlregistry/internal/api"
	"github.com/axellelanca/urlregistry/internal/clock"
	"github.com/axellelanca/urlregistry/internal/eventlog"
	"github.com/axellelanca/urlregistry/internal/location"
	"github.com/axellelanca/urlregistry/internal/repository"
	"github.com/axellelanca/urlregistry/internal/services"
	"github.com/axellelanca/urlregistry/internal/workers"
)

var base = time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)

type queue struct {
	mu   sync.Mutex
	jobs []workers.ClickJob
}

func (q *queue) Dispatch(job workers.ClickJob) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = append(q.jobs, job)
	return true
}

type testServer struct {
	router   *gin.Engine
	registry *services.URLRegistry
	clock    *clock.Mock
	events   *eventlog.Log
}

func newTestServer(t *testing.T, opts ...api.HandlerOption) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mock := clock.NewMock(base)
	events := eventlog.New()
	reg := services.NewURLRegistry(context.Background(), repository.NewMemoryStore(),
		services.WithClock(mock),
		services.WithEventLog(events),
	)

	all := append([]api.HandlerOption{
		api.WithClock(mock),
		api.WithLocator(location.Static("Berlin, DE")),
		api.WithBaseURL("https://sho.rt"),
		api.WithDefaultValidity(30),
	}, opts...)

	router := gin.New()
	api.SetupRoutes(router, api.NewHandler(reg, events, all...))
	return &testServer{router: router, registry: reg, clock: mock, events: events}
}

func (s *testServer) do(t *testing.T, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) mustCreate(t *testing.T, body map[string]any) {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/v1/links", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func TestHealthCheck(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestCreateLink(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/v1/links", map[string]any{
		"original_url": "https://example.com/docs",
		"short_code":   "docs",
	})

	require.Equal(t, http.StatusCreated, w.Code)
	resp := decode[api.LinkResponse](t, w)
	assert.Equal(t, "docs", resp.ShortCode)
	assert.Equal(t, "https://sho.rt/docs", resp.FullShortURL)
	assert.True(t, base.Add(30*time.Minute).Equal(resp.ExpiresAt))
	assert.False(t, resp.IsExpired)
}

func TestCreateLink_ErrorStatuses(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/v1/links", map[string]any{
		"original_url": "https://example.com", "short_code": "taken",
	}).Code)

	tests := []struct {
		name string
		body any
		want int
	}{
		{"missing url", map[string]any{"short_code": "abc"}, http.StatusBadRequest},
		{"invalid url", map[string]any{"original_url": "not a url"}, http.StatusBadRequest},
		{"validity zero", map[string]any{"original_url": "https://example.com", "validity_minutes": 0}, http.StatusBadRequest},
		{"validity too long", map[string]any{"original_url": "https://example.com", "validity_minutes": 10081}, http.StatusBadRequest},
		{"invalid code", map[string]any{"original_url": "https://example.com", "short_code": "a"}, http.StatusBadRequest},
		{"code taken", map[string]any{"original_url": "https://example.com", "short_code": "taken"}, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, http.MethodPost, "/api/v1/links", tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestResolveLink_ReturnsJSONAndRecordsClick(t *testing.T) {
	s := newTestServer(t)
	s.mustCreate(t, map[string]any{"original_url": "https://example.com", "short_code": "gox"})

	w := s.do(t, http.MethodGet, "/api/v1/links/gox/resolve", nil, "Referer", "https://news.example")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Location"))
	body := decode[map[string]any](t, w)
	assert.Equal(t, "https://example.com", body["original_url"])

	rec, err := s.registry.Get("gox")
	require.NoError(t, err)
	require.Len(t, rec.Clicks, 1)
	assert.Equal(t, "https://news.example", rec.Clicks[0].Referrer)
	assert.Equal(t, "Berlin, DE", rec.Clicks[0].Location)
	assert.Equal(t, base, rec.Clicks[0].Timestamp)
}

func TestResolveLink_QueuesClickWhenDispatcherSet(t *testing.T) {
	q := &queue{}
	s := newTestServer(t, api.WithClickQueue(q))
	s.mustCreate(t, map[string]any{"original_url": "https://example.com", "short_code": "async"})

	w := s.do(t, http.MethodGet, "/api/v1/links/async/resolve", nil)

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, q.jobs, 1)
	assert.Equal(t, "async", q.jobs[0].ShortCode)
	assert.Equal(t, "Direct", q.jobs[0].Click.Referrer)
}

func TestResolveLink_NotFoundAndExpired(t *testing.T) {
	s := newTestServer(t)
	s.mustCreate(t, map[string]any{
		"original_url": "https://example.com", "short_code": "brief", "validity_minutes": 1,
	})
	s.clock.Advance(2 * time.Minute)

	expired := s.do(t, http.MethodGet, "/api/v1/links/brief/resolve", nil)
	missing := s.do(t, http.MethodGet, "/api/v1/links/nope/resolve", nil)

	assert.Equal(t, http.StatusGone, expired.Code)
	assert.NotContains(t, expired.Body.String(), "https://example.com")
	assert.Equal(t, http.StatusNotFound, missing.Code)
	assert.Equal(t, "Attempted access to non-existent short URL", s.events.Entries()[0].Message)
}

func TestLinkStats_ServesExpiredRecords(t *testing.T) {
	s := newTestServer(t)
	s.mustCreate(t, map[string]any{
		"original_url": "https://example.com", "short_code": "stat", "validity_minutes": 1,
	})
	s.do(t, http.MethodGet, "/api/v1/links/stat/resolve", nil)
	s.clock.Advance(time.Hour)

	w := s.do(t, http.MethodGet, "/api/v1/links/stat/stats", nil)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[api.StatsResponse](t, w)
	assert.True(t, resp.IsExpired)
	assert.Equal(t, 1, resp.TotalClicks)
	assert.Len(t, resp.Clicks, 1)

	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/v1/links/nope/stats", nil).Code)
}

func TestListSummaryAndRefresh(t *testing.T) {
	s := newTestServer(t)
	for _, code := range []string{"one", "two"} {
		s.mustCreate(t, map[string]any{"original_url": "https://example.com/" + code, "short_code": code})
	}
	s.do(t, http.MethodGet, "/api/v1/links/two/resolve", nil)

	list := decode[map[string]any](t, s.do(t, http.MethodGet, "/api/v1/links", nil))
	assert.EqualValues(t, 2, list["total"])

	summary := decode[map[string]any](t, s.do(t, http.MethodGet, "/api/v1/summary?top=1", nil))
	assert.EqualValues(t, 2, summary["totalUrls"])
	assert.EqualValues(t, 1, summary["totalClicks"])
	assert.Len(t, summary["topByClicks"], 1)

	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/v1/summary?top=zero", nil).Code)

	s.clock.Advance(time.Hour)
	refreshed := decode[map[string]any](t, s.do(t, http.MethodPost, "/api/v1/refresh", nil))
	assert.EqualValues(t, 2, refreshed["expiredUrls"])
}

func TestLogs_FilterAndClear(t *testing.T) {
	s := newTestServer(t)
	s.mustCreate(t, map[string]any{"original_url": "https://example.com", "short_code": "log"})
	require.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, "/api/v1/links", map[string]any{"original_url": "bad"}).Code)

	all := decode[map[string]any](t, s.do(t, http.MethodGet, "/api/v1/logs", nil))
	assert.EqualValues(t, 2, all["total"])

	errs := decode[map[string]any](t, s.do(t, http.MethodGet, "/api/v1/logs?level=error", nil))
	assert.EqualValues(t, 1, errs["total"])

	assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodDelete, "/api/v1/logs", nil).Code)
	assert.Equal(t, 0, s.events.Len())
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	s.mustCreate(t, map[string]any{"original_url": "https://example.com"})

	w := s.do(t, http.MethodGet, "/metrics", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "urlregistry_created_total")
}
