package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_Counters(t *testing.T) {
	m := NewManager(WithNamespace("test"))

	m.ObserveQuery("comparison", "pattern", OutcomeResults, 20*time.Millisecond)
	m.ObserveQuery("comparison", "pattern", OutcomeResults, 30*time.Millisecond)
	m.ObserveQuery("unknown", "none", OutcomeEmpty, time.Millisecond)
	m.CacheLookup(true)
	m.CacheLookup(false)
	m.CacheLookup(false)
	m.Narrative("template")
	m.QueryLogFailed()
	m.SetPlayers(2500)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.queries.WithLabelValues("comparison", "pattern", OutcomeResults)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.queries.WithLabelValues("unknown", "none", OutcomeEmpty)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cacheLookups.WithLabelValues("hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.cacheLookups.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.narratives.WithLabelValues("template")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.queryLogFails))
	assert.Equal(t, 2500.0, testutil.ToFloat64(m.players))
}

func TestManager_Handler(t *testing.T) {
	m := NewManager(WithRegistry(prometheus.NewRegistry()))
	m.ObserveHTTP("/api/query", http.MethodPost, http.StatusOK, 5*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), `soccer_scout_http_requests_total{endpoint="/api/query",method="POST",status_code="200"} 1`)
}

func TestManager_NilIsNoop(t *testing.T) {
	var m *Manager
	assert.NotPanics(t, func() {
		m.ObserveQuery("k", "t", OutcomeResults, time.Second)
		m.CacheLookup(true)
		m.Narrative("llm")
		m.QueryLogFailed()
		m.SetPlayers(1)
		m.ObserveHTTP("/", http.MethodGet, 200, time.Second)
	})
	assert.Nil(t, m.Registry())

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
