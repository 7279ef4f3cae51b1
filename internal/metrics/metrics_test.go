// v1
// internal/metrics/metrics_test.go
package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ssacity/api/internal/breaker"
	"ssacity/api/internal/models"
)

func TestWrapHandlerCountsByRouteAndStatus(t *testing.T) {
	m := New()
	h := m.WrapHandler("/region", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/region/x", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/region/y", nil))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("/region", "404")))
}

func TestObserveTickAndPublish(t *testing.T) {
	m := New()
	m.ObserveTick(5*time.Millisecond, []models.SmartBin{{BinID: "BIN_001", FillLevel: 42, BatteryLevel: 77}})
	m.IncTickFailure()
	m.ObservePublish("kafka", nil)
	m.ObservePublish("kafka", errors.New("down"))
	m.ObserveCommand("collect", "applied")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ticksTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.tickFailures))
	assert.Equal(t, 42.0, testutil.ToFloat64(m.binFill.WithLabelValues("BIN_001")))
	assert.Equal(t, 77.0, testutil.ToFloat64(m.binBattery.WithLabelValues("BIN_001")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.publishTotal.WithLabelValues("kafka", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.publishTotal.WithLabelValues("kafka", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.commandsTotal.WithLabelValues("collect", "applied")))
}

func TestBreakerStateGauge(t *testing.T) {
	m := New()
	m.SetBreakerState("kafka", breaker.Open)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.cbState.WithLabelValues("kafka")))
	m.SetBreakerState("kafka", breaker.HalfOpen)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cbState.WithLabelValues("kafka")))
	m.SetBreakerState("kafka", breaker.Closed)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.cbState.WithLabelValues("kafka")))
}

func TestHandlerExposition(t *testing.T) {
	m := New()
	m.ObserveTick(time.Millisecond, nil)
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "simulator_ticks_total 1"))
}

func TestIndependentInstances(t *testing.T) {
	assert.NotPanics(t, func() {
		_ = New()
		_ = New()
	})
}
