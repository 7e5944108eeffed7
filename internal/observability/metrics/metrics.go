package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes application-level instruments.
type Metrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	numbersIssued   *prometheus.CounterVec
}

// New registers the application instruments on the given registry.
func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "billforge_http_requests_total",
			Help: "HTTP requests processed, by route, method and status.",
		}, []string{"route", "method", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "billforge_http_request_duration_seconds",
			Help:    "HTTP request latency, by route and method.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
		numbersIssued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "billforge_invoice_numbers_issued_total",
			Help: "Invoice numbers issued, by kind (draft or final).",
		}, []string{"kind"}),
	}

	reg.MustRegister(m.requestsTotal, m.requestDuration, m.numbersIssued)
	return m
}

// RecordDraftNumber increments the issued draft number count.
func (m *Metrics) RecordDraftNumber() {
	if m == nil {
		return
	}
	m.numbersIssued.WithLabelValues("draft").Inc()
}

// RecordFinalNumber increments the issued final number count.
func (m *Metrics) RecordFinalNumber() {
	if m == nil {
		return
	}
	m.numbersIssued.WithLabelValues("final").Inc()
}

// GinMiddleware records request counts and latency per route.
func GinMiddleware(m *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		if m == nil {
			return
		}
		route := c.FullPath()
		if strings.TrimSpace(route) == "" {
			route = "unknown"
		}
		m.requestsTotal.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		m.requestDuration.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}
