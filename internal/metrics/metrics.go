package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "miles",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	bookingsSubmitted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "miles",
			Name:      "bookings_submitted_total",
			Help:      "Booking submissions processed.",
		},
	)

	emails = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "miles",
			Name:      "emails_total",
			Help:      "Email sends by kind and outcome.",
		},
		[]string{"kind", "outcome"},
	)

	persistFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "miles",
			Name:      "booking_persist_failures_total",
			Help:      "Failed booking row inserts.",
		},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, bookingsSubmitted, emails, persistFailures)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

// IncBookingSubmitted counts one processed submission.
func IncBookingSubmitted() {
	bookingsSubmitted.Inc()
}

// IncEmail counts one email attempt. kind is operator or customer,
// outcome is sent, failed or skipped.
func IncEmail(kind, outcome string) {
	emails.WithLabelValues(kind, outcome).Inc()
}

// IncPersistFailure counts a failed booking insert.
func IncPersistFailure() {
	persistFailures.Inc()
}
