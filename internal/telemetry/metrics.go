package telemetry

import (
	"context"
	"net/http"
	"strconv"

	"github.com/aretw0/concord/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "concord"

// Metrics holds the collectors exported on /metrics.
type Metrics struct {
	registry *prometheus.Registry

	Submissions      *prometheus.CounterVec
	Duration         prometheus.Histogram
	Transitions      *prometheus.CounterVec
	GuidanceRequests *prometheus.CounterVec
}

// NewMetrics creates the collectors on a dedicated registry, together with
// the Go and process collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Submissions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "submissions_total",
				Help:      "Resolved onboarding submissions by final status and error kind.",
			},
			[]string{"status", "kind"},
		),
		Duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "submission_duration_seconds",
				Help:      "Time from submit to resolution, including the guidance call.",
				Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
			},
		),
		Transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "state_transitions_total",
				Help:      "Submission state transitions by target state.",
			},
			[]string{"to"},
		),
		GuidanceRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "guidance_requests_total",
				Help:      "Requests answered by the guidance API by HTTP status code.",
			},
			[]string{"code"},
		),
	}
	m.registry.MustRegister(
		m.Submissions,
		m.Duration,
		m.Transitions,
		m.GuidanceRequests,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	return m
}

// Registry exposes the underlying registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// TrackPages exports the number of mounted pages, read on every scrape.
func (m *Metrics) TrackPages(count func() int) {
	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pages_mounted",
			Help:      "Onboarding pages currently mounted.",
		},
		func() float64 { return float64(count()) },
	))
}

// ObserveGuidance counts one guidance API response.
func (m *Metrics) ObserveGuidance(code int) {
	m.GuidanceRequests.WithLabelValues(strconv.Itoa(code)).Inc()
}

// Hooks returns lifecycle hooks feeding the submission collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTransition: func(_ context.Context, e *domain.TransitionEvent) {
			m.Transitions.WithLabelValues(string(e.To)).Inc()
		},
		OnResolve: func(_ context.Context, e *domain.ResolveEvent) {
			kind := string(e.Outcome.Kind)
			if kind == "" {
				kind = "none"
			}
			m.Submissions.WithLabelValues(string(e.Outcome.Status), kind).Inc()
			m.Duration.Observe(e.Duration.Seconds())
		},
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
