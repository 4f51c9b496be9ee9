// Package metrics exposes Prometheus instrumentation for the HTTP API
// and the background sweep.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all collectors behind one registry so tests can build
// isolated instances.
type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	SweepRuns       prometheus.Counter
	SweepDuration   prometheus.Histogram
	LowStockItems   prometheus.Gauge
	OverdueTasks    prometheus.Gauge
}

// New builds a registry with Go runtime and process collectors plus the
// application metrics.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: reg,
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aquascope",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method, and status code.",
		}, []string{"route", "method", "status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "aquascope",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		SweepRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "aquascope",
			Name:      "sweep_runs_total",
			Help:      "Completed nightly sweep runs.",
		}),
		SweepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "aquascope",
			Name:      "sweep_duration_seconds",
			Help:      "Nightly sweep duration.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 30},
		}),
		LowStockItems: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "aquascope",
			Name:      "low_stock_consumables",
			Help:      "Consumables currently flagged low stock or depleted.",
		}),
		OverdueTasks: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "aquascope",
			Name:      "overdue_maintenance_tasks",
			Help:      "Active maintenance reminders past their due date.",
		}),
	}
	reg.MustRegister(m.RequestsTotal, m.RequestDuration, m.SweepRuns,
		m.SweepDuration, m.LowStockItems, m.OverdueTasks)
	return m
}

// Handler serves the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRequest records one completed HTTP request.
func (m *Metrics) ObserveRequest(route, method string, status int, elapsed time.Duration) {
	m.RequestsTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

// ObserveSweep records one completed background sweep.
func (m *Metrics) ObserveSweep(elapsed time.Duration, lowStock, overdue int) {
	m.SweepRuns.Inc()
	m.SweepDuration.Observe(elapsed.Seconds())
	m.LowStockItems.Set(float64(lowStock))
	m.OverdueTasks.Set(float64(overdue))
}
