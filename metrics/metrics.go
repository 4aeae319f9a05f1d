package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application collectors
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "paldeck",
		Subsystem: "http",
		Name:      "inflight_requests",
		Help:      "Current number of in-flight HTTP requests.",
	})

	httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "paldeck",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of HTTP requests handled.",
	}, []string{"method", "path", "status"})

	httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "paldeck",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Duration of HTTP requests.",
		Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
	}, []string{"method", "path"})

	swipes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "paldeck",
		Subsystem: "discovery",
		Name:      "swipes_total",
		Help:      "Swipes recorded, by direction.",
	}, []string{"direction"})

	matches = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "paldeck",
		Subsystem: "discovery",
		Name:      "matches_created_total",
		Help:      "Matches created by reciprocal right swipes.",
	})

	messages = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "paldeck",
		Subsystem: "chat",
		Name:      "messages_sent_total",
		Help:      "Chat messages stored.",
	})

	realtimeSubscribers = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "paldeck",
		Subsystem: "realtime",
		Name:      "subscribers",
		Help:      "Open realtime subscriptions across all matches.",
	})
)

func init() {
	Registry.MustRegister(
		httpInFlight, httpRequests, httpDuration,
		swipes, matches, messages, realtimeSubscribers,
		collectors.NewGoCollector(),
	)
}

// Handler exposes the registry in the Prometheus text format
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// IncrementInFlight marks the start of a request
func IncrementInFlight() { httpInFlight.Inc() }

// DecrementInFlight marks the end of a request
func DecrementInFlight() { httpInFlight.Dec() }

// RecordHTTPRequest records one finished request
func RecordHTTPRequest(method, path, status string, d time.Duration) {
	httpRequests.WithLabelValues(method, path, status).Inc()
	httpDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

// SwipeRecorded counts one stored swipe
func SwipeRecorded(direction string) { swipes.WithLabelValues(direction).Inc() }

// MatchCreated counts one newly created match
func MatchCreated() { matches.Inc() }

// MessageSent counts one stored message
func MessageSent() { messages.Inc() }

// SubscriberAdded and SubscriberRemoved track realtime subscriptions
func SubscriberAdded()   { realtimeSubscribers.Inc() }
func SubscriberRemoved() { realtimeSubscribers.Dec() }
