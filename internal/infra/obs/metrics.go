package obs

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service collectors. It is registered on its own registry
// so tests can build as many as they like.
type Metrics struct {
	Registry *prometheus.Registry

	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
	httpInFlight   prometheus.Gauge
	messages       *prometheus.CounterVec
	messageLatency *prometheus.HistogramVec
	outboxEvents   *prometheus.CounterVec
}

// NewMetrics registers the collectors on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests processed",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "http_inflight_requests",
			Help: "Number of HTTP requests currently being served",
		}),
		messages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "app_messages_total",
			Help: "Commands and queries handled, by outcome",
		}, []string{"kind", "key", "outcome"}),
		messageLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "app_message_duration_seconds",
			Help:    "Command and query latencies in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"kind", "key"}),
		outboxEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "outbox_events_total",
			Help: "Outbox events processed by the relay, by result",
		}, []string{"result"}),
	}
	m.Registry.MustRegister(m.httpRequests, m.httpDuration, m.httpInFlight, m.messages, m.messageLatency, m.outboxEvents)
	return m
}

// HTTP records request metrics. Routes are labelled by their template to keep
// cardinality low.
func (m *Metrics) HTTP() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		m.httpInFlight.Inc()
		defer m.httpInFlight.Dec()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		labels := prometheus.Labels{
			"method": c.Request.Method,
			"route":  route,
			"status": strconv.Itoa(c.Writer.Status()),
		}
		m.httpRequests.With(labels).Inc()
		m.httpDuration.With(labels).Observe(time.Since(start).Seconds())
	}
}

// ObserveMessage implements middleware.Observer.
func (m *Metrics) ObserveMessage(kind, key string, elapsed time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.messages.WithLabelValues(kind, key, outcome).Inc()
	m.messageLatency.WithLabelValues(kind, key).Observe(elapsed.Seconds())
}

// ObserveOutbox counts relay outcomes: sent, retried or dead.
func (m *Metrics) ObserveOutbox(result string) {
	m.outboxEvents.WithLabelValues(result).Inc()
}

func (m *Metrics) Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}))
}
