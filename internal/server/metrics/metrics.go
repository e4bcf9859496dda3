// Package metrics exposes Prometheus collectors for quota decisions,
// synthesis calls and HTTP traffic.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "voxgate"

// Metrics groups the server collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	quotaDecisions      *prometheus.CounterVec
	charactersCommitted prometheus.Counter
	synthesisDuration   *prometheus.HistogramVec
	httpRequests        *prometheus.CounterVec
	httpDuration        *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		quotaDecisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "quota_decisions_total",
				Help:      "Quota guard outcomes",
			},
			[]string{"decision"}, // admitted, rejected, committed, released
		),
		charactersCommitted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "characters_committed_total",
				Help:      "Characters charged to accounts",
			},
		),
		synthesisDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "synthesis_duration_seconds",
				Help:      "Duration of speech synthesis calls in seconds",
				Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"status"}, // success, error
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests by route and status code",
			},
			[]string{"method", "route", "code"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}

	for _, c := range []prometheus.Collector{
		m.quotaDecisions, m.charactersCommitted, m.synthesisDuration, m.httpRequests, m.httpDuration,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) RecordQuotaDecision(decision string) {
	if m == nil {
		return
	}
	m.quotaDecisions.WithLabelValues(decision).Inc()
}

func (m *Metrics) RecordCharactersCommitted(n int64) {
	if m == nil {
		return
	}
	m.charactersCommitted.Add(float64(n))
}

func (m *Metrics) RecordSynthesis(status string, seconds float64) {
	if m == nil {
		return
	}
	m.synthesisDuration.WithLabelValues(status).Observe(seconds)
}

func (m *Metrics) RecordHTTPRequest(method, route, code string, seconds float64) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, code).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(seconds)
}
