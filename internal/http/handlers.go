// v2
// internal/http/handlers.go
package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"ssacity/api/internal/city"
	"ssacity/api/internal/export"
	"ssacity/api/internal/models"
)

// BinSource is the read side of the bin simulator.
type BinSource interface {
	Bins() []models.SmartBin
	Zones() []models.CityZone
	Alerts() []models.PredictiveAlert
	ZoneAnalytics() []models.ZoneAnalytics
	OperationalKPIs() models.OperationalKPIs
	PlatformMetrics() models.PlatformMetrics
	TickStats() (uint64, time.Time)
	Now() time.Time
}

// CitySource is the region-level simulator.
type CitySource interface {
	Region(name string) (city.RegionSnapshot, error)
	Overview() city.Overview
	Incidents() []city.Incident
	Predictions() []city.HourlyPrediction
	Historical(hours int) ([]city.HistoricalBucket, error)
}

// Handlers serves the JSON API over the two simulators.
type Handlers struct {
	Log     *zap.Logger
	Bins    BinSource
	City    CitySource
	State   *HealthState
	Service string
	Version string
}

type errorBody struct {
	Error string `json:"error"`
}

type healthBody struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Ticks     uint64    `json:"ticks"`
	LastTick  time.Time `json:"last_tick"`
	Uptime    string    `json:"uptime,omitempty"`
}

type bannerBody struct {
	Service   string   `json:"service"`
	Version   string   `json:"version"`
	Status    string   `json:"status"`
	Endpoints []string `json:"endpoints"`
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.Log.Warn("write_response_failed", zap.Error(err))
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, errorBody{Error: msg})
}

// Banner serves the service name, version and endpoint list.
func (h *Handlers) Banner(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, bannerBody{
		Service:   h.Service,
		Version:   h.Version,
		Status:    "running",
		Endpoints: Endpoints(),
	})
}

// Health reports tick progress and uptime.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	ticks, last := h.Bins.TickStats()
	body := healthBody{
		Status:    "healthy",
		Timestamp: h.Bins.Now().UTC(),
		Ticks:     ticks,
		LastTick:  last,
	}
	if h.State != nil {
		body.Uptime = h.State.Uptime().Truncate(time.Second).String()
	}
	h.writeJSON(w, http.StatusOK, body)
}

// Live always answers 200 while the process serves requests.
func (h *Handlers) Live(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready answers 503 until the application marks itself ready.
func (h *Handlers) Ready(w http.ResponseWriter, r *http.Request) {
	if h.State == nil || !h.State.Ready() {
		h.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not_ready"})
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// SmartBins serves the current bin snapshot.
func (h *Handlers) SmartBins(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.Bins.Bins())
}

// Alerts serves the predictive alerts derived from the bins.
func (h *Handlers) Alerts(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.Bins.Alerts())
}

// CityZones serves the static zone list.
func (h *Handlers) CityZones(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.Bins.Zones())
}

// ZoneAnalytics serves per-zone aggregates.
func (h *Handlers) ZoneAnalytics(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.Bins.ZoneAnalytics())
}

// OperationalKPIs serves fleet-wide KPIs.
func (h *Handlers) OperationalKPIs(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.Bins.OperationalKPIs())
}

// PlatformMetrics serves user engagement figures.
func (h *Handlers) PlatformMetrics(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.Bins.PlatformMetrics())
}

// Region serves one region snapshot; unknown names are 404.
func (h *Handlers) Region(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	snap, err := h.City.Region(name)
	switch {
	case errors.Is(err, city.ErrUnknownRegion):
		h.writeError(w, http.StatusNotFound, err.Error())
		return
	case err != nil:
		h.Log.Error("region_lookup_failed", zap.String("region", name), zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	h.writeJSON(w, http.StatusOK, snap)
}

// CityOverview serves all regions plus the city summary.
func (h *Handlers) CityOverview(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.City.Overview())
}

// Incidents serves the active incident list.
func (h *Handlers) Incidents(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.City.Incidents())
}

// Predictions serves the next hours of city forecasts.
func (h *Handlers) Predictions(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.City.Predictions())
}

// Historical serves hourly buckets; a bad hours parameter is a 400.
func (h *Handlers) Historical(w http.ResponseWriter, r *http.Request) {
	hours, err := parseHours(r.URL.Query().Get("hours"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	buckets, err := h.City.Historical(hours)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, buckets)
}

// ExportBins streams the bins and zone analytics as an XLSX workbook.
func (h *Handlers) ExportBins(w http.ResponseWriter, r *http.Request) {
	data, err := export.Workbook(h.Bins.Bins(), h.Bins.ZoneAnalytics())
	if err != nil {
		h.Log.Error("export_failed", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "export failed")
		return
	}
	name := fmt.Sprintf("ssacity_bins_%s.xlsx", h.Bins.Now().UTC().Format("20060102_150405"))
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.Log.Warn("write_response_failed", zap.Error(err))
	}
}

// NotFound writes a JSON 404.
func (h *Handlers) NotFound(w http.ResponseWriter, r *http.Request) {
	h.writeError(w, http.StatusNotFound, "not found: "+r.URL.Path)
}

// MethodNotAllowed writes a JSON 405.
func (h *Handlers) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	h.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

// parseHours reads the historical window. Empty means the default.
func parseHours(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return city.DefaultHistoryHours, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("hours must be an integer, got %q", raw)
	}
	if n < 1 || n > city.MaxHistoryHours {
		return 0, fmt.Errorf("hours must be between 1 and %d, got %d", city.MaxHistoryHours, n)
	}
	return n, nil
}
