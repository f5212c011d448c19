package http

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"speechwell-server/pkg/store"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

type fakeAMQPStatus struct{ connected bool }

func (f *fakeAMQPStatus) IsConnected() bool { return f.connected }

func newTestServer(t *testing.T) (*Server, *store.ResultStore) {
	t.Helper()
	logger := testLogger()
	resultStore := store.NewResultStore(logger, 10)
	return NewServer(logger, DefaultConfig(), resultStore), resultStore
}

func TestHealthHandlerHealthy(t *testing.T) {
	server, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	server.HealthHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var health HealthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "healthy", health.Checks["result_store"].Status)
	assert.Positive(t, health.System.GoRoutines)
}

func TestHealthHandlerReportsAMQPState(t *testing.T) {
	server, _ := newTestServer(t)
	server.SetAMQPClient(&fakeAMQPStatus{connected: false})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	server.HealthHandler(rec, req)

	var health HealthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "degraded", health.Checks["amqp"].Status)
	// A degraded broker does not make the whole service unhealthy.
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLivenessHandler(t *testing.T) {
	server, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	server.LivenessHandler(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestReadinessHandler(t *testing.T) {
	server, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	server.ReadinessHandler(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	notReady := NewServer(testLogger(), DefaultConfig(), nil)
	rec = httptest.NewRecorder()
	notReady.ReadinessHandler(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestStatusHandler(t *testing.T) {
	server, resultStore := newTestServer(t)
	server.SetAMQPClient(&fakeAMQPStatus{connected: true})

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rec := httptest.NewRecorder()
	server.statusHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var status map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "ok", status["status"])
	assert.Equal(t, float64(resultStore.Capacity()), status["result_capacity"])
	assert.Equal(t, true, status["amqp_connected"])
}

func TestRegisterHandler(t *testing.T) {
	server, _ := newTestServer(t)
	server.RegisterHandler("/custom", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	req := httptest.NewRequest(http.MethodGet, "/custom", nil)
	rec := httptest.NewRecorder()
	server.mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTeapot, rec.Code)
}
