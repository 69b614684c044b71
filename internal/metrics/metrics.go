// Package metrics exposes Prometheus collectors for HTTP traffic and the
// loan lifecycle.
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "librarian",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "librarian",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "librarian",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	loansCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "librarian",
			Subsystem: "loans",
			Name:      "created_total",
			Help:      "Total number of loans created.",
		},
	)

	booksReturned = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "librarian",
			Subsystem: "loans",
			Name:      "returned_total",
			Help:      "Total number of books returned.",
		},
	)

	overdueFound = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "librarian",
			Subsystem: "loans",
			Name:      "overdue_detected_total",
			Help:      "Total number of loans newly detected as overdue by the scan.",
		},
	)

	overdueScans = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "librarian",
			Subsystem: "overdue_scan",
			Name:      "runs_total",
			Help:      "Total number of overdue scans.",
		},
		[]string{"success"},
	)

	overdueScanDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "librarian",
			Subsystem: "overdue_scan",
			Name:      "duration_seconds",
			Help:      "Duration of overdue scans.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10),
		},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		loansCreated,
		booksReturned,
		overdueFound,
		overdueScans,
		overdueScanDuration,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Middleware records request count, duration and in-flight requests. The
// path label is the matched route pattern so ids do not explode the
// label space.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()
		httpInFlight.Inc()
		defer httpInFlight.Dec()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := strings.ToUpper(c.Request.Method)

		httpRequests.WithLabelValues(method, path, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}

// Counters reports loan lifecycle events to the registry.
type Counters struct{}

func (Counters) LoanCreated() {
	loansCreated.Inc()
}

func (Counters) BookReturned() {
	booksReturned.Inc()
}

// RecordOverdueScan records one overdue scan and how many loans it newly
// flagged.
func RecordOverdueScan(flagged int, duration time.Duration, success bool) {
	if duration <= 0 {
		duration = time.Millisecond
	}
	overdueScans.WithLabelValues(strconv.FormatBool(success)).Inc()
	overdueScanDuration.Observe(duration.Seconds())
	if flagged > 0 {
		overdueFound.Add(float64(flagged))
	}
}
