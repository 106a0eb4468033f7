package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Schema generation outcomes
const (
	OutcomeParsed   = "parsed"
	OutcomeFallback = "fallback"
	OutcomeCached   = "cached"
	OutcomeError    = "error"
)

var (
	schemaGenerationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "schemagen_schema_generations_total",
			Help: "Total number of schema generation requests by outcome.",
		},
		[]string{"outcome"},
	)

	parseStrategyTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "schemagen_parse_strategy_total",
			Help: "Model responses by the decode strategy that parsed them.",
		},
		[]string{"strategy"},
	)

	validationIssuesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "schemagen_validation_issues_total",
			Help: "Total number of validation issues reported for generated schemas.",
		},
	)

	llmRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "schemagen_llm_requests_total",
			Help: "Total number of language model requests by prompt and status.",
		},
		[]string{"prompt", "status"},
	)

	llmRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "schemagen_llm_request_duration_seconds",
			Help:    "Language model request latency by prompt.",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
		},
		[]string{"prompt"},
	)

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "schemagen_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)
)

func init() {
	prometheus.MustRegister(
		schemaGenerationsTotal,
		parseStrategyTotal,
		validationIssuesTotal,
		llmRequestsTotal,
		llmRequestDurationSeconds,
		httpRequestsTotal,
	)
}

func RecordSchemaGeneration(outcome string) {
	schemaGenerationsTotal.WithLabelValues(outcome).Inc()
}

func RecordParseStrategy(strategy string) {
	parseStrategyTotal.WithLabelValues(strategy).Inc()
}

func RecordValidationIssues(count int) {
	if count > 0 {
		validationIssuesTotal.Add(float64(count))
	}
}

func RecordLLMRequest(prompt string, err error, duration time.Duration) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	llmRequestsTotal.WithLabelValues(prompt, status).Inc()
	llmRequestDurationSeconds.WithLabelValues(prompt).Observe(duration.Seconds())
}

func RecordHTTPRequest(method, path string, status int) {
	httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
}
