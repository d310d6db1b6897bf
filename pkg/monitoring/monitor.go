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

	// MasteryUpdates 掌握度更新计数，按考试和科目分维度
	MasteryUpdates = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mastery_updates_total",
			Help: "Total number of mastery state updates",
		},
		[]string{"exam", "subject"},
	)

	// DependencyTimeouts 外部依赖超时被兜底吸收的次数
	DependencyTimeouts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dependency_timeouts_total",
			Help: "Total number of dependency timeouts absorbed with degraded defaults",
		},
		[]string{"dependency"},
	)

	// RecoveryFlags 触发掌握度恢复提升的次数
	RecoveryFlags = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mastery_recovery_flags_total",
			Help: "Total number of mastery recovery boosts triggered",
		},
		[]string{"exam"},
	)

	// UpdateDuration 单次更新管线耗时
	UpdateDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mastery_update_duration_seconds",
			Help:    "End-to-end duration of the mastery update pipeline",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
	)
)

func Init() {
	prometheus.MustRegister(RequestCounter)
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(MasteryUpdates)
	prometheus.MustRegister(DependencyTimeouts)
	prometheus.MustRegister(RecoveryFlags)
	prometheus.MustRegister(UpdateDuration)
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
