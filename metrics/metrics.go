package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BookingsTotal counts booking attempts by outcome.
	BookingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rentals",
			Name:      "bookings_total",
			Help:      "The total number of booking attempts",
		},
		[]string{"result"},
	)

	// ActiveObservers is the number of connected notification observers.
	ActiveObservers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "rentals",
			Name:      "notification_observers",
			Help:      "The number of connected notification observers",
		},
	)

	NotificationsDelivered = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "rentals",
			Name:      "notifications_delivered_total",
			Help:      "The total number of notifications delivered to observers",
		},
	)

	NotificationsFailed = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "rentals",
			Name:      "notifications_failed_total",
			Help:      "The total number of failed notification deliveries",
		},
	)

	// AuditEvents counts audit events by outcome (published, dropped, failed).
	AuditEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rentals",
			Name:      "audit_events_total",
			Help:      "The total number of audit events by outcome",
		},
		[]string{"outcome"},
	)

	// MessagesProcessed The total number of processed messages (counter)
	MessagesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "messages",
			Name:      "processed_total",
			Help:      "The total number of processed messages",
		},
		[]string{"topic", "handler"},
	)

	// MessagesProcessingFailed total number of message processing failures (counter)
	MessagesProcessingFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "messages",
			Name:      "processing_failed_total",
			Help:      "The total number of message processing failures",
		},
		[]string{"topic", "handler"},
	)

	// MessagesProcessingDuration The total time spent processing messages (summary with quantiles 0.5, 0.9, and 0.99)
	MessagesProcessingDuration = promauto.NewSummaryVec(
		prometheus.SummaryOpts{
			Namespace:  "messages",
			Name:       "processing_duration_seconds",
			Help:       "The total time spent processing messages",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"topic", "handler"},
	)
)
