package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "service_finder",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	bookingsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "service_finder",
			Name:      "bookings_created_total",
			Help:      "Bookings created.",
		},
	)

	bookingTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "service_finder",
			Name:      "booking_transitions_total",
			Help:      "Booking status transitions by target status.",
		},
		[]string{"status"},
	)

	messagesSent = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "service_finder",
			Name:      "chat_messages_total",
			Help:      "Chat messages persisted.",
		},
	)

	liveConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "service_finder",
			Name:      "realtime_connections",
			Help:      "Open realtime connections.",
		},
	)

	droppedFrames = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "service_finder",
			Name:      "realtime_dropped_frames_total",
			Help:      "Realtime frames dropped on full client buffers.",
		},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			httpRequests,
			bookingsCreated,
			bookingTransitions,
			messagesSent,
			liveConnections,
			droppedFrames,
		)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

func IncBookingCreated() {
	bookingsCreated.Inc()
}

func IncBookingTransition(status string) {
	bookingTransitions.WithLabelValues(status).Inc()
}

func IncMessageSent() {
	messagesSent.Inc()
}

func ConnOpened() {
	liveConnections.Inc()
}

func ConnClosed() {
	liveConnections.Dec()
}

func IncDroppedFrame() {
	droppedFrames.Inc()
}
