// Package metrics exposes Prometheus collectors for the HTTP surface, the
// session engine and the archive pipeline.
package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "exstem_prep"

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests",
			Buckets:   []float64{0.005, 0.025, 0.1, 0.5, 1, 2},
		},
		[]string{"method", "endpoint"},
	)

	SessionsStarted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_started_total",
			Help:      "Sessions started, by mode",
		},
		[]string{"mode"},
	)

	ExamsFinalized = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exams_finalized_total",
			Help:      "Exams finalized by submission or timeout",
		},
	)

	ExamTimeouts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exam_timeouts_total",
			Help:      "Exams submitted automatically when time ran out",
		},
	)

	StreamSubscribers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stream_subscribers",
			Help:      "Connected session stream clients",
		},
	)

	ArchivedAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "archived_attempts_total",
			Help:      "Exam attempts handled by the archive worker, by result",
		},
		[]string{"result"},
	)
)

// Archive results.
const (
	ArchiveStored   = "stored"
	ArchiveRequeued = "requeued"
	ArchiveDropped  = "dropped"
)

var once sync.Once

// Init registers all collectors with the default registry. Safe to call
// more than once.
func Init() {
	once.Do(func() {
		prometheus.MustRegister(
			RequestCounter,
			RequestDuration,
			SessionsStarted,
			ExamsFinalized,
			ExamTimeouts,
			StreamSubscribers,
			ArchivedAttempts,
		)
	})
}

func Middleware() gin.HandlerFunc {
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

func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
