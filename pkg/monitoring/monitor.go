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
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	// 测验会话生命周期指标，label 为到达的状态
	QuizSessionTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_session_transitions_total",
			Help: "Total number of quiz session state transitions",
		},
		[]string{"status"},
	)

	QuizSessionViolations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_session_violations_total",
			Help: "Total number of recorded anti-cheat signals",
		},
		[]string{"signal"},
	)

	QuizSweepReclaimed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "quiz_sessions_expired_total",
			Help: "Total number of quiz sessions reclaimed by the expiry sweeper",
		},
	)
)

func Init() {
	prometheus.MustRegister(RequestCounter)
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(QuizSessionTransitions)
	prometheus.MustRegister(QuizSessionViolations)
	prometheus.MustRegister(QuizSweepReclaimed)
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
