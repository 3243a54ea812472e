package jwtauth

import (
	"errors"
	"sort"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kumuluz/go-jwt-auth/core"
)

// Metrics receives verification and authorization measurements.
//
// The middleware reports:
//   - jwtauth_verifications_total{outcome}: success or the failure code
//   - jwtauth_verification_duration_seconds: time spent verifying a token
//   - jwtauth_authorization_decisions_total{decision}
type Metrics interface {
	IncCounter(name string, tags map[string]string)
	ObserveHistogram(name string, value float64, tags map[string]string)
}

// NoopMetrics is a metrics implementation that does nothing.
type NoopMetrics struct{}

func (NoopMetrics) IncCounter(string, map[string]string)                {}
func (NoopMetrics) ObserveHistogram(string, float64, map[string]string) {}

var metricHelp = map[string]string{
	core.MetricVerifications:          "Token verifications by outcome.",
	core.MetricVerificationDuration:   "Time spent verifying a token, in seconds.",
	core.MetricAuthorizationDecisions: "Authorization decisions by result.",
}

// PrometheusMetrics implements Metrics with Prometheus collectors. Collectors
// are created on first use and registered on the Registerer the value was
// built with. A metric keeps the label names of its first observation.
type PrometheusMetrics struct {
	registerer prometheus.Registerer

	mu         sync.Mutex
	counters   map[string]*prometheus.CounterVec
	histograms map[string]*prometheus.HistogramVec
}

// NewPrometheusMetrics returns a Metrics implementation backed by Prometheus.
// A nil registerer means prometheus.DefaultRegisterer.
func NewPrometheusMetrics(registerer prometheus.Registerer) *PrometheusMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	return &PrometheusMetrics{
		registerer: registerer,
		counters:   make(map[string]*prometheus.CounterVec),
		histograms: make(map[string]*prometheus.HistogramVec),
	}
}

func (m *PrometheusMetrics) IncCounter(name string, tags map[string]string) {
	m.mu.Lock()
	vec, ok := m.counters[name]
	if !ok {
		vec = prometheus.NewCounterVec(prometheus.CounterOpts{Name: name, Help: help(name, "counter")}, keys(tags))
		vec = register(m.registerer, vec)
		m.counters[name] = vec
	}
	m.mu.Unlock()

	if c, err := vec.GetMetricWith(prometheus.Labels(tags)); err == nil {
		c.Inc()
	}
}

func (m *PrometheusMetrics) ObserveHistogram(name string, value float64, tags map[string]string) {
	m.mu.Lock()
	vec, ok := m.histograms[name]
	if !ok {
		vec = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    name,
			Help:    help(name, "histogram"),
			Buckets: prometheus.DefBuckets,
		}, keys(tags))
		vec = register(m.registerer, vec)
		m.histograms[name] = vec
	}
	m.mu.Unlock()

	if o, err := vec.GetMetricWith(prometheus.Labels(tags)); err == nil {
		o.Observe(value)
	}
}

// register adds c to r, reusing a collector that was registered earlier under
// the same descriptor.
func register[C prometheus.Collector](r prometheus.Registerer, c C) C {
	if err := r.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
	}
	return c
}

func help(name, kind string) string {
	if h, ok := metricHelp[name]; ok {
		return h
	}
	return name + " " + kind
}

func keys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
