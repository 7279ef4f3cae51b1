// v2
// internal/http/router.go
package httpserver

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"ssacity/api/internal/metrics"
)

type route struct {
	path  string
	serve func(*Handlers, http.ResponseWriter, *http.Request)
}

// routeTable lists the served routes. The legacy dashboard paths and the
// /api/v2 paths share handlers.
func routeTable() []route {
	return []route{
		{"/", (*Handlers).Banner},
		{"/health", (*Handlers).Health},
		{"/health/live", (*Handlers).Live},
		{"/health/ready", (*Handlers).Ready},
		{"/dashboard", (*Handlers).SmartBins},
		{"/alerts", (*Handlers).Alerts},
		{"/predictions", (*Handlers).Predictions},
		{"/historical", (*Handlers).Historical},
		{"/region/{name}", (*Handlers).Region},
		{"/api/v2/smart-bins", (*Handlers).SmartBins},
		{"/api/v2/smart-bins/export", (*Handlers).ExportBins},
		{"/api/v2/predictive-alerts", (*Handlers).Alerts},
		{"/api/v2/operational-kpis", (*Handlers).OperationalKPIs},
		{"/api/v2/city-zones", (*Handlers).CityZones},
		{"/api/v2/zone-analytics", (*Handlers).ZoneAnalytics},
		{"/api/v2/platform-metrics", (*Handlers).PlatformMetrics},
		{"/api/v2/city-overview", (*Handlers).CityOverview},
		{"/api/v2/incidents", (*Handlers).Incidents},
	}
}

const metricsPath = "/metrics"

// Endpoints lists every path served, in registration order.
func Endpoints() []string {
	routes := routeTable()
	out := make([]string, 0, len(routes)+1)
	for _, rt := range routes {
		out = append(out, rt.path)
	}
	return append(out, metricsPath)
}

// NewRouter registers every route on a gorilla/mux router. m may be nil,
// in which case neither request metrics nor /metrics are exposed.
func NewRouter(h *Handlers, m *metrics.Metrics) *mux.Router {
	if h.Log == nil {
		h.Log = zap.NewNop()
	}
	r := mux.NewRouter()
	for _, rt := range routeTable() {
		serve := rt.serve
		var next http.Handler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			serve(h, w, req)
		})
		if m != nil {
			next = m.WrapHandler(rt.path, next)
		}
		r.Handle(rt.path, next).Methods(http.MethodGet, http.MethodHead)
	}
	if m != nil {
		r.Handle(metricsPath, m.Handler()).Methods(http.MethodGet)
	}
	r.NotFoundHandler = http.HandlerFunc(h.NotFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(h.MethodNotAllowed)
	return r
}

// NewHandler is the full middleware stack served by the application:
// access log, then CORS, then panic recovery, then the router.
func NewHandler(h *Handlers, m *metrics.Metrics) http.Handler {
	router := NewRouter(h, m)
	return WrapWithLogging(h.Log, WithCORS(WithRecovery(h.Log, router)))
}
