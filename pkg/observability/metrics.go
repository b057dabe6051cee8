// Package observability provides prometheus metrics for turn handling.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the instrument set for the agent core. A private registry
// keeps the exposition surface limited to what we register. All record
// methods are nil-safe so call sites need no instrumentation guard.
type Metrics struct {
	registry *prometheus.Registry

	turnsTotal    *prometheus.CounterVec
	turnDuration  *prometheus.HistogramVec
	llmErrors     prometheus.Counter
	parseFailures prometheus.Counter
}

// NewMetrics creates and registers the instrument set.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		turnsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sitesmith_turns_total",
			Help: "Total conversation turns handled, by agent and response status.",
		}, []string{"agent", "status"}),
		turnDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sitesmith_turn_duration_seconds",
			Help:    "Turn handling duration in seconds, by agent.",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"agent"}),
		llmErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "sitesmith_llm_errors_total",
			Help: "Total LLM request failures.",
		}),
		parseFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "sitesmith_parse_failures_total",
			Help: "Total model outputs rejected as malformed.",
		}),
	}
}

// ObserveTurn records one completed turn.
func (m *Metrics) ObserveTurn(agent, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.turnsTotal.WithLabelValues(agent, status).Inc()
	m.turnDuration.WithLabelValues(agent).Observe(duration.Seconds())
}

// RecordLLMError counts an LLM request failure.
func (m *Metrics) RecordLLMError() {
	if m == nil {
		return
	}
	m.llmErrors.Inc()
}

// RecordParseFailure counts a malformed model output.
func (m *Metrics) RecordParseFailure() {
	if m == nil {
		return
	}
	m.parseFailures.Inc()
}

// Handler returns the /metrics exposition handler.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
