package utils

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIMetricsRecordsRequests(t *testing.T) {
	m := NewAPIMetrics(false)

	m.RecordAPIRequest("/api/projects/:projectId", "GET", 200, 15*time.Millisecond)
	m.RecordAPIRequest("/api/projects/:projectId", "GET", 404, time.Millisecond)
	m.RecordError("not_found", "api")
	m.RecordProjectMutation("generate_images")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("/api/projects/:projectId", "GET", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("/api/projects/:projectId", "GET", "404")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.errors.WithLabelValues("not_found", "api")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.mutations.WithLabelValues("generate_images")))
}

func TestAPIMetricsHandlerExposesFamilies(t *testing.T) {
	m := NewAPIMetrics(false)
	m.RecordLLMRequest("google", "gemini-2.5-flash", "ok", 42, time.Second)
	m.WebSocketConnected(1)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "reelboard_llm_tokens_total")
	assert.Contains(t, string(body), "reelboard_ws_clients 1")
}

func TestNilMetricsAreNoops(t *testing.T) {
	var m *APIMetrics
	assert.NotPanics(t, func() {
		m.RecordAPIRequest("/", "GET", 200, time.Millisecond)
		m.RecordError("x", "y")
		m.WebSocketConnected(-1)
	})
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, DEBUG, ParseLogLevel("debug"))
	assert.Equal(t, WARNING, ParseLogLevel("WARN"))
	assert.Equal(t, ERROR, ParseLogLevel("error"))
	assert.Equal(t, INFO, ParseLogLevel("verbose"))
}
