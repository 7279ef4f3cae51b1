// v2
// internal/http/router_test.go
package httpserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ssacity/api/internal/city"
	"ssacity/api/internal/export"
	"ssacity/api/internal/metrics"
	"ssacity/api/internal/models"
	"ssacity/api/internal/rng"
	"ssacity/api/internal/seed"
	"ssacity/api/internal/simulator"
)

var fixedNow = time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)

func newTestHandlers(t *testing.T) *Handlers {
	t.Helper()
	tables, err := seed.Default()
	require.NoError(t, err)
	src := rng.New(42)
	clock := func() time.Time { return fixedNow }
	sim, err := simulator.New(tables, simulator.Options{Random: src, Clock: clock})
	require.NoError(t, err)
	return &Handlers{
		Bins:    sim,
		City:    city.New(tables, src, clock),
		State:   NewHealthState(),
		Service: "ssacity",
		Version: "test",
	}
}

func serve(h http.Handler, method, target string, hdr map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	h := NewHandler(newTestHandlers(t), nil)
	rec := serve(h, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	body := decode[map[string]any](t, rec)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "2024-06-01T08:00:00Z", body["timestamp"])
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
}

func TestReadiness(t *testing.T) {
	hs := newTestHandlers(t)
	h := NewHandler(hs, nil)

	assert.Equal(t, http.StatusServiceUnavailable, serve(h, http.MethodGet, "/health/ready", nil).Code)
	hs.State.SetReady(true)
	assert.Equal(t, http.StatusOK, serve(h, http.MethodGet, "/health/ready", nil).Code)
	assert.Equal(t, http.StatusOK, serve(h, http.MethodGet, "/health/live", nil).Code)
}

func TestBannerListsEndpoints(t *testing.T) {
	h := NewHandler(newTestHandlers(t), nil)
	body := decode[bannerBody](t, serve(h, http.MethodGet, "/", nil))
	assert.Equal(t, "ssacity", body.Service)
	assert.Contains(t, body.Endpoints, "/api/v2/zone-analytics")
	assert.Contains(t, body.Endpoints, "/metrics")
}

func TestEndpointsFollowRouteTable(t *testing.T) {
	eps := Endpoints()
	require.Len(t, eps, len(routeTable())+1)
	assert.Equal(t, "/", eps[0])
	assert.Equal(t, metricsPath, eps[len(eps)-1])
}

func TestSmartBinsBothPaths(t *testing.T) {
	h := NewHandler(newTestHandlers(t), nil)
	for _, path := range []string{"/dashboard", "/api/v2/smart-bins"} {
		rec := serve(h, http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, rec.Code, path)
		bins := decode[[]models.SmartBin](t, rec)
		require.Len(t, bins, 10, path)
		assert.Equal(t, "BIN_001", bins[0].BinID)
	}
}

func TestAlertsIsArray(t *testing.T) {
	h := NewHandler(newTestHandlers(t), nil)
	for _, path := range []string{"/alerts", "/api/v2/predictive-alerts"} {
		rec := serve(h, http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, strings.HasPrefix(strings.TrimSpace(rec.Body.String()), "["), path)
	}
}

func TestAggregates(t *testing.T) {
	h := NewHandler(newTestHandlers(t), nil)

	zones := decode[[]models.CityZone](t, serve(h, http.MethodGet, "/api/v2/city-zones", nil))
	assert.Len(t, zones, 5)

	analytics := decode[[]models.ZoneAnalytics](t, serve(h, http.MethodGet, "/api/v2/zone-analytics", nil))
	assert.Len(t, analytics, 5)

	kpis := decode[models.OperationalKPIs](t, serve(h, http.MethodGet, "/api/v2/operational-kpis", nil))
	assert.Equal(t, 10, kpis.TotalBins)

	platform := decode[models.PlatformMetrics](t, serve(h, http.MethodGet, "/api/v2/platform-metrics", nil))
	assert.GreaterOrEqual(t, platform.TotalUsers, 1500)

	overview := decode[city.Overview](t, serve(h, http.MethodGet, "/api/v2/city-overview", nil))
	assert.Len(t, overview.Regions, 5)

	incidents := decode[[]city.Incident](t, serve(h, http.MethodGet, "/api/v2/incidents", nil))
	assert.LessOrEqual(t, len(incidents), 5)
}

func TestRegion(t *testing.T) {
	h := NewHandler(newTestHandlers(t), nil)

	first := decode[city.RegionSnapshot](t, serve(h, http.MethodGet, "/region/Downtown", nil))
	assert.Equal(t, "Downtown", first.Region)

	second := serve(h, http.MethodGet, "/region/downtown", nil)
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "Downtown", decode[city.RegionSnapshot](t, second).Region)

	missing := serve(h, http.MethodGet, "/region/Atlantis", nil)
	require.Equal(t, http.StatusNotFound, missing.Code)
	assert.Equal(t, "unknown region: Atlantis", decode[errorBody](t, missing).Error)
}

func TestPredictions(t *testing.T) {
	h := NewHandler(newTestHandlers(t), nil)
	preds := decode[[]city.HourlyPrediction](t, serve(h, http.MethodGet, "/predictions", nil))
	require.Len(t, preds, 24)
	assert.Equal(t, 8, preds[0].Hour)
	assert.Equal(t, 7, preds[23].Hour)
}

func TestHistorical(t *testing.T) {
	h := NewHandler(newTestHandlers(t), nil)

	buckets := decode[[]city.HistoricalBucket](t, serve(h, http.MethodGet, "/historical", nil))
	require.Len(t, buckets, city.DefaultHistoryHours)
	for i := 1; i < len(buckets); i++ {
		assert.Equal(t, time.Hour, buckets[i].Timestamp.Sub(buckets[i-1].Timestamp))
	}
	assert.Equal(t, fixedNow.Add(-time.Hour), buckets[len(buckets)-1].Timestamp.UTC())

	short := decode[[]city.HistoricalBucket](t, serve(h, http.MethodGet, "/historical?hours=6", nil))
	assert.Len(t, short, 6)

	for _, bad := range []string{"abc", "0", "721", "-3"} {
		rec := serve(h, http.MethodGet, "/historical?hours="+bad, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, bad)
		assert.NotEmpty(t, decode[errorBody](t, rec).Error)
	}
}

func TestExport(t *testing.T) {
	h := NewHandler(newTestHandlers(t), nil)
	rec := serve(h, http.MethodGet, "/api/v2/smart-bins/export", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, export.ContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "ssacity_bins_20240601_080000.xlsx")
	assert.True(t, strings.HasPrefix(rec.Body.String(), "PK"))
}

func TestNotFoundAndMethodNotAllowed(t *testing.T) {
	h := NewHandler(newTestHandlers(t), nil)

	rec := serve(h, http.MethodGet, "/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not found: /nope", decode[errorBody](t, rec).Error)

	rec = serve(h, http.MethodPost, "/dashboard", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestCORS(t *testing.T) {
	h := NewHandler(newTestHandlers(t), nil)

	rec := serve(h, http.MethodGet, "/dashboard", map[string]string{"Origin": "http://dashboard.local"})
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	pre := serve(h, http.MethodOptions, "/dashboard", map[string]string{
		"Origin":                        "http://dashboard.local",
		"Access-Control-Request-Method": http.MethodGet,
	})
	assert.Equal(t, http.StatusOK, pre.Code)
	assert.Equal(t, "*", pre.Header().Get("Access-Control-Allow-Origin"))
}

type panickingBins struct {
	BinSource
}

func (panickingBins) Bins() []models.SmartBin { panic("sensor table corrupted") }

func TestPanicIsRecovered(t *testing.T) {
	hs := newTestHandlers(t)
	hs.Bins = panickingBins{BinSource: hs.Bins}
	h := NewHandler(hs, nil)

	rec := serve(h, http.MethodGet, "/dashboard", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	// Other routes keep working.
	assert.Equal(t, http.StatusOK, serve(h, http.MethodGet, "/health", nil).Code)
}

func TestRequestIDIsEchoed(t *testing.T) {
	h := NewHandler(newTestHandlers(t), nil)
	rec := serve(h, http.MethodGet, "/health", map[string]string{RequestIDHeader: "req-123"})
	assert.Equal(t, "req-123", rec.Header().Get(RequestIDHeader))
}

func TestMetricsRoute(t *testing.T) {
	m := metrics.New()
	h := NewHandler(newTestHandlers(t), m)

	serve(h, http.MethodGet, "/region/Uptown", nil)
	serve(h, http.MethodGet, "/region/Atlantis", nil)

	rec := serve(h, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `http_requests_total{route="/region/{name}",status="200"} 1`)
	assert.Contains(t, body, `http_requests_total{route="/region/{name}",status="404"} 1`)
}
