package exporter

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRegistry creates a Prometheus registry with the standard Go and
// process collectors registered
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// MetricsHandler returns the Prometheus scrape handler for the registry
func MetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// Metrics holds the meter and store metrics
type Metrics struct {
	ReadsTotal   prometheus.Counter
	ReadErrors   *prometheus.CounterVec // labels: reason=timeout|crc|malformed|unavailable|other
	ReadDuration prometheus.Histogram
	Value        *prometheus.GaugeVec // labels: register, name, unit
	LastRead     prometheus.Gauge
	StorePushes  *prometheus.CounterVec // labels: result=ok|error
}

// NewMetrics registers and returns the meter metrics
func NewMetrics(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		ReadsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "multical_reads_total",
			Help: "Total successful register reads.",
		}),
		ReadErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "multical_read_errors_total",
			Help: "Failed register reads by failure reason.",
		}, []string{"reason"}),
		ReadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "multical_read_duration_seconds",
			Help:    "Time spent on one register request/response exchange.",
			Buckets: prometheus.DefBuckets,
		}),
		Value: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "multical_value",
			Help: "Last value decoded from the meter, per register.",
		}, []string{"register", "name", "unit"}),
		LastRead: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "multical_last_read_timestamp_seconds",
			Help: "Unix timestamp of the last successful read.",
		}),
		StorePushes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "multical_store_push_total",
			Help: "Processed values pushed to the store by result.",
		}, []string{"result"}),
	}
	reg.MustRegister(m.ReadsTotal, m.ReadErrors, m.ReadDuration, m.Value, m.LastRead, m.StorePushes)
	return m
}
