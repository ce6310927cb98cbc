package providers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockMetrics struct {
	requestEndpoint string
	requestStatus   int
	requestCalls    int
	durationCalls   int
	cacheHits       int
	cacheMisses     int
}

func (m *mockMetrics) IncRequestsTotal(endpoint string, status int) {
	m.requestEndpoint = endpoint
	m.requestStatus = status
	m.requestCalls++
}
func (m *mockMetrics) ObserveRequestDuration(_ string, _ time.Duration) { m.durationCalls++ }
func (m *mockMetrics) IncCacheHits()                                    { m.cacheHits++ }
func (m *mockMetrics) IncCacheMisses()                                  { m.cacheMisses++ }
func (m *mockMetrics) ObservePersistenceDuration(_ time.Duration)       {}
func (m *mockMetrics) IncRemindersScheduled(_ string)                   {}
func (m *mockMetrics) IncRemindersCancelled(_ string, _ int)            {}
func (m *mockMetrics) IncRemindersFired(_ string)                       {}
func (m *mockMetrics) IncRemindersSuppressed(_ string)                  {}
func (m *mockMetrics) SetAttentionCount(_ int)                          {}

type accessLogEntry struct {
	logType TypeEnum
	format  string
}

type middlewareTestLogger struct {
	cacheTestLogger
	entries []accessLogEntry
}

func (m *middlewareTestLogger) Debugf(t TypeEnum, format string, _ ...interface{}) {
	m.entries = append(m.entries, accessLogEntry{logType: t, format: format})
}

func TestMetricsMiddleware_CapturesStatusAndEndpoint(t *testing.T) {
	metrics := &mockMetrics{}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})

	mw := MetricsMiddleware(metrics, &middlewareTestLogger{}, handler)

	req := httptest.NewRequest(http.MethodGet, "/vehicles", nil)
	rr := httptest.NewRecorder()
	mw.ServeHTTP(rr, req)

	assert.Equal(t, 1, metrics.requestCalls)
	assert.Equal(t, "/vehicles", metrics.requestEndpoint)
	assert.Equal(t, http.StatusCreated, metrics.requestStatus)
	assert.Equal(t, 1, metrics.durationCalls)
}

func TestMetricsMiddleware_DefaultStatus200(t *testing.T) {
	metrics := &mockMetrics{}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	mw := MetricsMiddleware(metrics, &middlewareTestLogger{}, handler)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rr := httptest.NewRecorder()
	mw.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, metrics.requestStatus)
}

func TestMetricsMiddleware_RoutesAccessLogByMethod(t *testing.T) {
	logger := &middlewareTestLogger{}
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	mw := MetricsMiddleware(&mockMetrics{}, logger, handler)

	mw.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/vehicles", nil))
	mw.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/entries", nil))

	require.Len(t, logger.entries, 2)
	assert.Equal(t, TypeGet, logger.entries[0].logType)
	assert.Equal(t, TypePost, logger.entries[1].logType)
}

func TestStatusWriter_WriteHeader(t *testing.T) {
	rr := httptest.NewRecorder()
	sw := &statusWriter{ResponseWriter: rr, status: http.StatusOK}

	sw.WriteHeader(http.StatusNotFound)
	assert.Equal(t, http.StatusNotFound, sw.status)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
