package httpapi

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "marketintel_http_requests_total",
		Help: "Total HTTP requests by route and status code.",
	}, []string{"path", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "marketintel_http_request_duration_seconds",
		Help:    "HTTP request latency by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"path"})

	// BackfillJobsGauge and OptimizationJobsGauge are updated by
	// cmd/marketintel as jobs transition status; exported here so the
	// CLI wiring and the HTTP server share one registry.
	BackfillJobsGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "marketintel_backfill_jobs",
		Help: "Current backfill jobs by status.",
	}, []string{"status"})

	OptimizationJobsGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "marketintel_optimization_jobs",
		Help: "Current optimization jobs by status.",
	}, []string{"status"})
)

func recordMetrics(path string, status int, seconds float64) {
	requestsTotal.WithLabelValues(path, strconv.Itoa(status)).Inc()
	requestDuration.WithLabelValues(path).Observe(seconds)
}

// metricsHandler exposes the /metrics route for Prometheus scraping.
func metricsHandler() http.Handler {
	return promhttp.Handler()
}
