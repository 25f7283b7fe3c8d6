// Package metrics exposes gateway and registry activity to Prometheus.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "apigw"

// Metrics holds the collectors registered on a private registry. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	DispatchTotal    *prometheus.CounterVec
	DispatchDuration *prometheus.HistogramVec
	RegistryChanges  *prometheus.CounterVec
	KeysIssued       prometheus.Counter
}

// New creates the collectors plus Go runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		DispatchTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "gateway",
				Name:      "dispatch_total",
				Help:      "Gateway dispatches by terminal stage and status code",
			},
			[]string{"stage", "code"},
		),

		DispatchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "gateway",
				Name:      "dispatch_duration_seconds",
				Help:      "Time spent dispatching a gateway call",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"stage"},
		),

		RegistryChanges: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "registry",
				Name:      "changes_total",
				Help:      "API definition mutations by action",
			},
			[]string{"action"},
		),

		KeysIssued: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "keys",
				Name:      "issued_total",
				Help:      "Access keys issued or rotated",
			},
		),
	}

	m.registry.MustRegister(
		m.DispatchTotal,
		m.DispatchDuration,
		m.RegistryChanges,
		m.KeysIssued,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveDispatch records one terminal dispatch state.
func (m *Metrics) ObserveDispatch(stage string, code int, d time.Duration) {
	if m == nil {
		return
	}
	m.DispatchTotal.WithLabelValues(stage, strconv.Itoa(code)).Inc()
	m.DispatchDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// ObserveChange records one registry mutation.
func (m *Metrics) ObserveChange(action string) {
	if m == nil {
		return
	}
	m.RegistryChanges.WithLabelValues(action).Inc()
}

// ObserveKeyIssued records a new or rotated access key secret.
func (m *Metrics) ObserveKeyIssued() {
	if m == nil {
		return
	}
	m.KeysIssued.Inc()
}
