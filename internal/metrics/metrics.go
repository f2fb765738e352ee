// Package metrics exposes Prometheus collectors for the HTTP layer and for
// domain events such as confirmed pregnancies or clamped stock.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Event names recorded by the services.
const (
	EventPregnancyConfirmed  = "pregnancy_confirmed"
	EventPregnancyReconciled = "pregnancy_reconciled"
	EventTreatmentRecorded   = "treatment_recorded"
	EventInventoryClamped    = "inventory_clamped"
	EventPartialCompletion   = "partial_completion"
	EventReminderCompleted   = "reminder_completed"
	EventSignUp              = "sign_up"
	EventSignIn              = "sign_in"
	EventDigestSent          = "digest_sent"
	EventCommandAnswered     = "command_answered"
)

// Recorder counts domain events. Services accept it so tests can pass Nop.
type Recorder interface {
	RecordEvent(event string)
}

// Nop discards every event.
type Nop struct{}

func (Nop) RecordEvent(string) {}

// OrNop returns r, or Nop when r is nil.
func OrNop(r Recorder) Recorder {
	if r == nil {
		return Nop{}
	}
	return r
}

// Metrics owns a private registry so tests can build several instances.
type Metrics struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	events   *prometheus.CounterVec
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "herdbook",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "herdbook",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "herdbook",
			Name:      "domain_events_total",
			Help:      "Domain events such as confirmed pregnancies and clamped stock.",
		}, []string{"event"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.latency,
		m.events,
	)
	return m
}

// RecordEvent increments the counter for event.
func (m *Metrics) RecordEvent(event string) {
	m.events.WithLabelValues(event).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware records request counts and latency. Unmatched routes are
// grouped so arbitrary paths do not explode label cardinality.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		m.requests.WithLabelValues(route, method, strconv.Itoa(c.Writer.Status())).Inc()
		m.latency.WithLabelValues(route, method).Observe(time.Since(start).Seconds())
	}
}

// Registry exposes the underlying registry for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }
