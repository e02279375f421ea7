// Package metrics provides Prometheus instrumentation for chainlens.
package metrics

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "chainlens"

var (
	// HTTPRequestsTotal counts HTTP requests by method, path, and status.
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests by method, path pattern, and status code.",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration observes request latency by method and path.
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// SubgraphQueriesTotal counts gateway queries by subgraph, query and outcome.
	SubgraphQueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "subgraph_queries_total",
			Help:      "Total subgraph queries by subgraph, query name, and status.",
		},
		[]string{"subgraph", "query", "status"},
	)

	// SubgraphQueryDuration observes gateway round-trip latency.
	SubgraphQueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "subgraph_query_duration_seconds",
			Help:      "Subgraph query duration in seconds.",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"subgraph"},
	)

	// AnalyticsRequestsTotal counts analytics API calls by operation and outcome.
	AnalyticsRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analytics_requests_total",
			Help:      "Total blockchain analytics API requests by operation and status.",
		},
		[]string{"operation", "status"},
	)

	// AnalyticsRequestDuration observes analytics API latency.
	AnalyticsRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analytics_request_duration_seconds",
			Help:      "Blockchain analytics API request duration in seconds.",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"operation"},
	)

	// ToolInvocationsTotal counts tool calls by tool name and envelope result.
	ToolInvocationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tool_invocations_total",
			Help:      "Total tool invocations by tool and result (success/failure).",
		},
		[]string{"tool", "result"},
	)

	// ConfiguredSubgraphs reports how many subgraphs the loaded config declares.
	ConfiguredSubgraphs = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "configured_subgraphs",
		Help:      "Number of subgraphs in the loaded configuration.",
	})
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		SubgraphQueriesTotal,
		SubgraphQueryDuration,
		AnalyticsRequestsTotal,
		AnalyticsRequestDuration,
		ToolInvocationsTotal,
		ConfiguredSubgraphs,
	)
}

// ObserveSubgraphQuery records one gateway call. err == nil counts as "ok".
func ObserveSubgraphQuery(subgraph, query string, start time.Time, err error) {
	SubgraphQueryDuration.WithLabelValues(subgraph).Observe(time.Since(start).Seconds())
	SubgraphQueriesTotal.WithLabelValues(subgraph, query, outcome(err)).Inc()
}

// ObserveAnalyticsRequest records one analytics API call.
func ObserveAnalyticsRequest(operation string, start time.Time, err error) {
	AnalyticsRequestDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	AnalyticsRequestsTotal.WithLabelValues(operation, outcome(err)).Inc()
}

// ObserveToolInvocation records the envelope result of a tool call.
func ObserveToolInvocation(tool string, success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	ToolInvocationsTotal.WithLabelValues(tool, result).Inc()
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// Middleware returns a gin middleware that records request metrics.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		timer := prometheus.NewTimer(HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(), // Uses route pattern, not actual path (avoids cardinality explosion)
		))

		c.Next()

		timer.ObserveDuration()
		HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			statusBucket(c.Writer.Status()),
		).Inc()
	}
}

// Handler returns the Prometheus metrics HTTP handler for /metrics endpoint.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// statusBucket groups HTTP status codes into buckets (2xx, 3xx, 4xx, 5xx).
func statusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}
