package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "orange",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "orange",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"service", "method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "orange",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"service", "method", "path"},
	)

	sweepRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "orange",
			Subsystem: "sweeper",
			Name:      "runs_total",
			Help:      "Total number of notification sweep passes.",
		},
		[]string{"sweep"},
	)

	notificationsSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "orange",
			Subsystem: "notifications",
			Name:      "sent_total",
			Help:      "Total number of notification deliveries attempted.",
		},
		[]string{"status"},
	)

	queuePublished = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "orange",
			Subsystem: "queue",
			Name:      "published_total",
			Help:      "Total number of messages published to the notification queue.",
		},
	)

	queueConsumed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "orange",
			Subsystem: "queue",
			Name:      "consumed_total",
			Help:      "Total number of messages consumed from the notification queue.",
		},
		[]string{"status"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		sweepRuns,
		notificationsSent,
		queuePublished,
		queueConsumed,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// IncrementInFlight marks an HTTP request as started.
func IncrementInFlight() { httpInFlight.Inc() }

// DecrementInFlight marks an HTTP request as finished.
func DecrementInFlight() { httpInFlight.Dec() }

// RecordHTTPRequest records one handled HTTP request.
func RecordHTTPRequest(service, method, path, status string, duration time.Duration) {
	httpRequests.WithLabelValues(service, method, path, status).Inc()
	httpDuration.WithLabelValues(service, method, path).Observe(duration.Seconds())
}

// RecordSweepRun counts one sweep pass for the named category.
func RecordSweepRun(sweep string) { sweepRuns.WithLabelValues(sweep).Inc() }

// RecordNotification counts one delivery attempt by outcome.
func RecordNotification(status string) { notificationsSent.WithLabelValues(status).Inc() }

// RecordQueuePublish counts one queued message.
func RecordQueuePublish() { queuePublished.Inc() }

// RecordQueueConsume counts one consumed message by outcome.
func RecordQueueConsume(status string) { queueConsumed.WithLabelValues(status).Inc() }
