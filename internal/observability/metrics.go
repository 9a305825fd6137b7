package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters and histograms for the weather tools.
type Metrics struct {
	// Tool invocation metrics.
	ToolCalls    *prometheus.CounterVec   // labels: tool={get_alerts,get_forecast}, outcome={ok,invalid_args}
	ToolDuration *prometheus.HistogramVec // labels: tool

	// Outbound weather API metrics.
	FetchRequests *prometheus.CounterVec   // labels: provider, outcome={success,timeout,transport_error,http_error,decode_error,malformed_response,request_error}
	FetchDuration *prometheus.HistogramVec // labels: provider

	AlertsGenerated    *prometheus.CounterVec // labels: provider
	UnsupportedRegions prometheus.Counter

	// Alert notification sink metrics.
	NotificationsPublished prometheus.Counter
	PublishErrors          prometheus.Counter
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		ToolCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weather_mcp",
			Name:      "tool_calls_total",
			Help:      "Tool invocations by tool and outcome.",
		}, []string{"tool", "outcome"}),
		ToolDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "weather_mcp",
			Name:      "tool_duration_seconds",
			Help:      "Duration of a complete tool invocation.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"tool"}),
		FetchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weather_mcp",
			Name:      "fetch_requests_total",
			Help:      "Outbound weather API requests by provider and outcome.",
		}, []string{"provider", "outcome"}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "weather_mcp",
			Name:      "fetch_duration_seconds",
			Help:      "Outbound weather API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"provider"}),
		AlertsGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weather_mcp",
			Name:      "alerts_generated_total",
			Help:      "Formatted alerts returned to callers, by provider.",
		}, []string{"provider"}),
		UnsupportedRegions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_mcp",
			Name:      "unsupported_regions_total",
			Help:      "Alert lookups for region codes missing from the region table.",
		}),
		NotificationsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_mcp",
			Name:      "notifications_published_total",
			Help:      "Alert notifications written to the sink topic.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_mcp",
			Name:      "publish_errors_total",
			Help:      "Failed alert notification publishes.",
		}),
	}

	prometheus.MustRegister(
		m.ToolCalls,
		m.ToolDuration,
		m.FetchRequests,
		m.FetchDuration,
		m.AlertsGenerated,
		m.UnsupportedRegions,
		m.NotificationsPublished,
		m.PublishErrors,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		ToolCalls:              prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "weather_mcp", Name: "tool_calls_total"}, []string{"tool", "outcome"}),
		ToolDuration:           prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "weather_mcp", Name: "tool_duration_seconds"}, []string{"tool"}),
		FetchRequests:          prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "weather_mcp", Name: "fetch_requests_total"}, []string{"provider", "outcome"}),
		FetchDuration:          prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "weather_mcp", Name: "fetch_duration_seconds"}, []string{"provider"}),
		AlertsGenerated:        prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "weather_mcp", Name: "alerts_generated_total"}, []string{"provider"}),
		UnsupportedRegions:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: "weather_mcp", Name: "unsupported_regions_total"}),
		NotificationsPublished: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "weather_mcp", Name: "notifications_published_total"}),
		PublishErrors:          prometheus.NewCounter(prometheus.CounterOpts{Namespace: "weather_mcp", Name: "publish_errors_total"}),
	}
}
