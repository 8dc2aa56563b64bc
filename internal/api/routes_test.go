package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AurifyAE/Honor-TV-View/internal/models"
	"github.com/AurifyAE/Honor-TV-View/internal/pipeline"
	"github.com/AurifyAE/Honor-TV-View/internal/quotes"
)

type stubPipeline struct {
	store     *quotes.Store
	connected bool
}

func (p *stubPipeline) Frame(now time.Time) pipeline.Frame {
	return pipeline.Frame{At: now, FeedConnected: p.connected}
}
func (p *stubPipeline) Store() *quotes.Store { return p.store }
func (p *stubPipeline) Connected() bool      { return p.connected }
func (p *stubPipeline) Stats() pipeline.Stats {
	applied, rejected := p.store.Stats()
	return pipeline.Stats{TicksApplied: applied, TicksRejected: rejected}
}

func newTestServer(t *testing.T, connected bool) (*Server, *quotes.Store) {
	t.Helper()
	store := quotes.NewStore()
	s := NewServer(&stubPipeline{store: store, connected: connected}, nil, 0, "", "*")
	s.now = func() time.Time { return time.Date(2024, 5, 1, 9, 41, 0, 0, time.UTC) }
	return s, store
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	return rr
}

func TestQuotesRoute(t *testing.T) {
	s, store := newTestServer(t, true)
	store.ApplyTick(models.Tick{Symbol: "SILVER", Bid: models.Float(24.1)})
	store.ApplyTick(models.Tick{Symbol: "GOLD", Bid: models.Float(1905), Ask: models.Float(1906)})

	rr := get(t, s, "/v1/quotes")
	require.Equal(t, http.StatusOK, rr.Code)

	var out []models.Quote
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	require.Len(t, out, 2)
	assert.Equal(t, "GOLD", out[0].Symbol)
	assert.Equal(t, 1905.0, out[0].Bid)
	assert.Equal(t, "SILVER", out[1].Symbol)
}

func TestQuoteRoute(t *testing.T) {
	s, store := newTestServer(t, true)
	store.ApplyTick(models.Tick{Symbol: "GOLD", Bid: models.Float(1905)})

	rr := get(t, s, "/v1/quotes/gold")
	require.Equal(t, http.StatusOK, rr.Code)
	var q models.Quote
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &q))
	assert.Equal(t, 1905.0, q.Bid)

	assert.Equal(t, http.StatusNotFound, get(t, s, "/v1/quotes/PLATINUM").Code)
}

func TestPricesRoute(t *testing.T) {
	s, _ := newTestServer(t, true)

	rr := get(t, s, "/v1/prices")
	require.Equal(t, http.StatusOK, rr.Code)

	var f pipeline.Frame
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &f))
	assert.True(t, f.FeedConnected)
	assert.True(t, f.At.Equal(s.now()))
}

func TestHealthRoute(t *testing.T) {
	s, store := newTestServer(t, false)
	store.ApplyTick(models.Tick{Symbol: "GOLD", Bid: models.Float(1905)})
	store.ApplyTick(models.Tick{Symbol: "GOLD"})

	rr := get(t, s, "/health")
	require.Equal(t, http.StatusOK, rr.Code)

	var h healthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &h))
	assert.Equal(t, "degraded", h.Status)
	assert.Equal(t, "disconnected", h.Services.Feed)
	assert.Equal(t, "disabled", h.Services.Database)
	assert.Equal(t, "2024-05-01T09:41:00Z", h.Timestamp)
	assert.Equal(t, uint64(1), h.Pipeline.TicksApplied)
	assert.Equal(t, uint64(1), h.Pipeline.TicksRejected)
}
