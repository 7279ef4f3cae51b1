// v2
// internal/metrics/metrics.go
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ssacity/api/internal/breaker"
	"ssacity/api/internal/models"
)

// Metrics owns every collector exported by the service. Collectors live on
// a private registry so several instances can coexist in one process.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	ticksTotal        prometheus.Counter
	tickFailures      prometheus.Counter
	tickDuration      prometheus.Histogram
	publishTotal      *prometheus.CounterVec
	commandsTotal     *prometheus.CounterVec
	cbState           *prometheus.GaugeVec
	binFill           *prometheus.GaugeVec
	binBattery        *prometheus.GaugeVec
}

// New registers every collector on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total count of HTTP requests processed by route and status.",
		}, []string{"route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request durations by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		ticksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "simulator_ticks_total",
			Help: "Sensor update passes completed.",
		}),
		tickFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "simulator_tick_failures_total",
			Help: "Sensor update passes that panicked.",
		}),
		tickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "simulator_tick_duration_seconds",
			Help:    "Duration of a sensor update pass.",
			Buckets: prometheus.DefBuckets,
		}),
		publishTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "telemetry_publish_total",
			Help: "Telemetry batches handed to each sink by result.",
		}, []string{"sink", "result"}),
		commandsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bin_commands_total",
			Help: "Maintenance commands consumed by action and result.",
		}, []string{"action", "result"}),
		cbState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "cb_state",
			Help: "Circuit breaker state gauge (0 closed, 1 half, 2 open).",
		}, []string{"target"}),
		binFill: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "bin_fill_level_percent",
			Help: "Latest fill level per bin.",
		}, []string{"bin_id"}),
		binBattery: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "bin_battery_level_percent",
			Help: "Latest battery level per bin.",
		}, []string{"bin_id"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequestsTotal,
		m.httpDuration,
		m.ticksTotal,
		m.tickFailures,
		m.tickDuration,
		m.publishTotal,
		m.commandsTotal,
		m.cbState,
		m.binFill,
		m.binBattery,
	)
	return m
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

// WrapHandler records request count and latency under the route label.
func (m *Metrics) WrapHandler(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(recorder, r)

		m.httpDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
		m.httpRequestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
	})
}

// ObserveTick records a completed pass and the resulting bin levels.
func (m *Metrics) ObserveTick(d time.Duration, bins []models.SmartBin) {
	m.ticksTotal.Inc()
	m.tickDuration.Observe(d.Seconds())
	for _, b := range bins {
		m.binFill.WithLabelValues(b.BinID).Set(b.FillLevel)
		m.binBattery.WithLabelValues(b.BinID).Set(b.BatteryLevel)
	}
}

// IncTickFailure counts a pass that panicked.
func (m *Metrics) IncTickFailure() {
	m.tickFailures.Inc()
}

// ObservePublish counts one sink publish attempt.
func (m *Metrics) ObservePublish(sink string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.publishTotal.WithLabelValues(sink, result).Inc()
}

// ObserveCommand counts one consumed maintenance command.
func (m *Metrics) ObserveCommand(action, result string) {
	m.commandsTotal.WithLabelValues(action, result).Inc()
}

// SetBreakerState matches breaker.Breaker.OnStateChange.
func (m *Metrics) SetBreakerState(target string, s breaker.State) {
	var v float64
	switch s {
	case breaker.HalfOpen:
		v = 1
	case breaker.Open:
		v = 2
	}
	m.cbState.WithLabelValues(target).Set(v)
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
