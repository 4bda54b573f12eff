package navigator

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	navigationAttemptsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sms_scraper",
			Name:      "navigation_attempts_total",
			Help:      "Total number of page navigation attempts.",
		},
		[]string{"outcome"}, // "success", "error"
	)

	navigationDurationHist = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "sms_scraper",
			Name:      "navigation_duration_seconds",
			Help:      "Duration of a full page load including retries.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 90},
		},
		[]string{"state"}, // terminal state: "loaded", "failed"
	)
)
