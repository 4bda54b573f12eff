package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	natsScrapedEventsReceivedCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "inbound_processor",
			Name:      "nats_messages_received_total",
			Help:      "Total number of NATS messages received for scraped inbox events.",
		},
		[]string{"subject_pattern"}, // e.g., "sms.scraped.*"
	)

	archivedMessagesCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "inbound_processor",
			Name:      "messages_archived_total",
			Help:      "Total number of scraped messages handled by the archiver.",
		},
		[]string{"provider_name", "status"}, // status: "inserted", "duplicate", "invalid", "error_db_save"
	)

	eventProcessingDurationHist = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "inbound_processor",
			Name:      "event_processing_duration_seconds",
			Help:      "Duration of archiving one scraped inbox event.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"provider_name"},
	)
)
