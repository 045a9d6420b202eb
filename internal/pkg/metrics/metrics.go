package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"block_metrics/internal/app/port"
	"block_metrics/internal/domain/entity"
)

const namespace = "block_metrics"

const (
	OutcomeSucceeded = "succeeded"
	OutcomeFailed    = "failed"
)

// Metrics owns a dedicated Prometheus registry and the service's collectors.
type Metrics struct {
	registry        *prometheus.Registry
	fetchTotal      *prometheus.CounterVec
	fetchDuration   *prometheus.HistogramVec
	aggregateGauges *prometheus.GaugeVec
}

var _ port.FetchObserver = (*Metrics)(nil)

// New creates the collectors and registers them together with the Go and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		fetchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "network_fetch_total",
			Help:      "Latest-block fetches per network by outcome and failure reason.",
		}, []string{"network", "outcome", "reason"}),
		fetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "network_fetch_duration_seconds",
			Help:      "Time spent fetching the latest block of a network.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"network"}),
		aggregateGauges: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "aggregate_networks",
			Help:      "Networks requested and succeeded in the last aggregate.",
		}, []string{"state"}),
	}

	m.registry.MustRegister(
		m.fetchTotal,
		m.fetchDuration,
		m.aggregateGauges,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveFetch implements port.FetchObserver.
func (m *Metrics) ObserveFetch(network string, duration time.Duration, err error) {
	outcome, reason := OutcomeSucceeded, ""
	if err != nil {
		outcome, reason = OutcomeFailed, entity.ClassifyFailure(err)
	}
	m.fetchTotal.WithLabelValues(network, outcome, reason).Inc()
	m.fetchDuration.WithLabelValues(network).Observe(duration.Seconds())
}

// ObserveAggregate implements port.FetchObserver.
func (m *Metrics) ObserveAggregate(requested, succeeded int) {
	m.aggregateGauges.WithLabelValues("requested").Set(float64(requested))
	m.aggregateGauges.WithLabelValues("succeeded").Set(float64(succeeded))
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
