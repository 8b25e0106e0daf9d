package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dermanow_http_request_duration_seconds",
			Help:    "Latency of HTTP requests by route pattern.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	OrderTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dermanow_order_transitions_total",
			Help: "Purchase order status transitions.",
		},
		[]string{"action", "to"},
	)

	OrdersCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dermanow_orders_created_total",
			Help: "Purchase orders created, by creating side.",
		},
		[]string{"created_by"},
	)

	DonationsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dermanow_donations_total",
			Help: "Accepted donations.",
		},
	)

	DonatedCents = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dermanow_donated_cents_total",
			Help: "Sum of accepted donations in cents.",
		},
	)

	EventsPublishFailed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dermanow_events_publish_failed_total",
			Help: "Lifecycle events that could not be queued.",
		},
	)

	Settlements = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dermanow_settlements_total",
			Help: "Delivered orders seen by settlement, by outcome.",
		},
		[]string{"outcome"},
	)

	registerOnce sync.Once
)

// Handler serves /metrics.
var Handler = promhttp.Handler

// Register adds the collectors to the default registry. Safe to call more
// than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			HTTPLatency,
			OrderTransitions,
			OrdersCreated,
			DonationsTotal,
			DonatedCents,
			EventsPublishFailed,
			Settlements,
		)
	})
}
