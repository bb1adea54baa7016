package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "webaccept"

// PrometheusRecorder implements Recorder with client_golang
// collectors registered on its own registry.
type PrometheusRecorder struct {
	registry     *prometheus.Registry
	cases        *prometheus.CounterVec
	caseDuration *prometheus.HistogramVec
	steps        *prometheus.CounterVec
	stepDuration *prometheus.HistogramVec
	clickRetries *prometheus.CounterVec
	sessions     *prometheus.CounterVec
}

// NewPrometheusRecorder creates a recorder. A nil registry gets a
// fresh one.
func NewPrometheusRecorder(reg *prometheus.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &PrometheusRecorder{
		registry: reg,
		cases: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cases_total",
			Help:      "Executed test cases by verdict.",
		}, []string{"case", "verdict"}),
		caseDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "case_duration_seconds",
			Help:      "Wall time of each test case.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 8),
		}, []string{"case"}),
		steps: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "steps_total",
			Help:      "Executed steps by outcome.",
		}, []string{"case", "step", "outcome"}),
		stepDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "step_duration_seconds",
			Help:      "Wall time of each step.",
			Buckets:   prometheus.ExponentialBuckets(0.25, 2, 8),
		}, []string{"case", "step"}),
		clickRetries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "click_retries_total",
			Help:      "Failed click attempts by reason.",
		}, []string{"reason"}),
		sessions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_total",
			Help:      "Remote browser session open attempts.",
		}, []string{"result"}),
	}
}

func (m *PrometheusRecorder) RecordCase(
	name, verdict string, duration time.Duration,
) {
	m.cases.WithLabelValues(name, verdict).Inc()
	m.caseDuration.WithLabelValues(name).Observe(duration.Seconds())
}

func (m *PrometheusRecorder) RecordStep(
	caseName, step string, passed bool, duration time.Duration,
) {
	outcome := "failed"
	if passed {
		outcome = "passed"
	}
	m.steps.WithLabelValues(caseName, step, outcome).Inc()
	m.stepDuration.WithLabelValues(caseName, step).
		Observe(duration.Seconds())
}

func (m *PrometheusRecorder) RecordClickRetry(reason string) {
	m.clickRetries.WithLabelValues(reason).Inc()
}

func (m *PrometheusRecorder) RecordSession(opened bool) {
	result := "failed"
	if opened {
		result = "opened"
	}
	m.sessions.WithLabelValues(result).Inc()
}

// Registry returns the registry the collectors live on.
func (m *PrometheusRecorder) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
