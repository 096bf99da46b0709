package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	AttemptsStarted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "quiz_attempts_started_total",
			Help: "Number of started quiz attempts",
		},
	)

	AttemptsFinished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_attempts_finished_total",
			Help: "Number of attempts that reached a terminal state",
		},
		[]string{"status"},
	)

	ScoringRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_scoring_runs_total",
			Help: "Scoring computations by strategy (remote, local, fallback)",
		},
		[]string{"strategy"},
	)

	BestEffortFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_best_effort_failures_total",
			Help: "Absorbed failures of side effects (grading, awarding, cache)",
		},
		[]string{"operation"},
	)

	PointsAwarded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "quiz_points_awarded_total",
			Help: "Total gamification points recorded for completed attempts",
		},
	)
)

// Init регистрирует метрики в стандартном реестре
func Init() {
	prometheus.MustRegister(
		RequestCounter,
		RequestDuration,
		AttemptsStarted,
		AttemptsFinished,
		ScoringRuns,
		BestEffortFailures,
		PointsAwarded,
	)
}

// MetricsMiddleware считает запросы и их длительность по шаблону маршрута
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}

		RequestCounter.WithLabelValues(
			c.Request.Method,
			endpoint,
			strconv.Itoa(c.Writer.Status()),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			endpoint,
		).Observe(time.Since(start).Seconds())
	}
}

// PrometheusHandler отдает /metrics
func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
