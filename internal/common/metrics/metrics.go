package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ApplicationsSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "applications_submitted_total",
			Help: "Total number of application submissions accepted",
		},
		[]string{"priority"},
	)

	ApplicationsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "applications_rejected_total",
			Help: "Total number of application submissions rejected",
		},
		[]string{"error_code"},
	)

	LeaseExtractions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lease_extractions_total",
			Help: "Total number of lease extraction requests",
		},
		[]string{"status"},
	)

	FrontendSyncAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "frontend_sync_total",
			Help: "Total number of frontend internal API sync attempts",
		},
		[]string{"status"},
	)

	NotificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_sent_total",
			Help: "Total number of notifications dispatched",
		},
		[]string{"channel", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "http_request_duration_seconds",
			Help: "Duration of HTTP request handling in seconds",
		},
		[]string{"route", "status"},
	)
)
