package middleware

import (
	"sync"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis command failures by operation name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_redis_errors_total",
		Help: "Total number of Redis errors by operation",
	}, []string{"operation"})

	// ArticleSearches counts search requests by outcome.
	ArticleSearches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_article_searches_total",
		Help: "Total number of article search requests by outcome",
	}, []string{"outcome"})

	// MediaUploadDuration records media collaborator upload latency.
	MediaUploadDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "inkwell_media_upload_duration_seconds",
		Help:    "Latency of media service uploads in seconds",
		Buckets: prometheus.DefBuckets,
	})
)

var (
	promOnce sync.Once
	promHTTP *fiberprometheus.FiberPrometheus
)

// InitMetrics constructs the Prometheus HTTP middleware for the given service
// name. The collectors live in the process-global default registry, so the
// middleware is built once and reused on subsequent calls.
func InitMetrics(service string) *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		promHTTP = fiberprometheus.New(service)
	})
	return promHTTP
}

// MetricsMiddleware returns the handler that records per-request metrics.
func MetricsMiddleware(p *fiberprometheus.FiberPrometheus) fiber.Handler {
	return p.Middleware
}
