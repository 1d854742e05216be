package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// APIRequestsTotal counts HTTP requests by method, endpoint and status.
	APIRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "teamcast_api_requests_total",
		Help: "Total HTTP API requests.",
	}, []string{"method", "endpoint", "status"})

	// APIRequestDuration tracks HTTP request latency.
	APIRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "teamcast_api_request_duration_seconds",
		Help:    "HTTP API request duration in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "endpoint", "status"})

	// APIActiveConnections gauges in-flight HTTP requests.
	APIActiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "teamcast_api_active_connections",
		Help: "In-flight HTTP API requests.",
	})

	// GuideRunsTotal counts guide generation runs.
	GuideRunsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "teamcast_guide_runs_total",
		Help: "Total guide generation runs.",
	})

	// GuideChannelOutcomes counts per-channel outcomes by status.
	GuideChannelOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "teamcast_guide_channel_outcomes_total",
		Help: "Per-channel generation outcomes by status.",
	}, []string{"status"})

	// GuideProgrammesTotal gauges the programme count of the latest run.
	GuideProgrammesTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "teamcast_guide_programmes",
		Help: "Programme count of the most recent guide run.",
	})

	// GuideBuildDuration tracks full-run build latency.
	GuideBuildDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "teamcast_guide_build_duration_seconds",
		Help:    "Guide run duration in seconds.",
		Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
	})

	// EventFetchRetriesTotal counts retried event source fetches.
	EventFetchRetriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "teamcast_event_fetch_retries_total",
		Help: "Total retried event source fetch attempts.",
	})
)

// Handler exposes the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
