package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	listingPagesCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sms_scraper",
			Name:      "listing_pages_total",
			Help:      "Total number of listing pages processed.",
		},
		[]string{"provider", "status"}, // status: "success", "error_navigation", "error_parse"
	)

	numbersScrapedGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "sms_scraper",
			Name:      "numbers_last_scraped",
			Help:      "Number of phone numbers returned by the last listing scrape.",
		},
		[]string{"provider"},
	)

	inboxParsedCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sms_scraper",
			Name:      "inbox_documents_parsed_total",
			Help:      "Total number of inbox documents parsed, by winning layout.",
		},
		[]string{"provider", "layout"}, // layout: "definition_list", "legacy", "none"
	)

	scrapeDurationHist = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "sms_scraper",
			Name:      "scrape_duration_seconds",
			Help:      "Duration of a full listing or inbox extraction.",
			Buckets:   []float64{1, 2, 5, 10, 20, 30, 60, 120, 300},
		},
		[]string{"provider", "kind"}, // kind: "listing", "inbox"
	)

	listingCacheCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sms_scraper",
			Name:      "listing_cache_lookups_total",
			Help:      "Total number of listing cache lookups.",
		},
		[]string{"result"}, // "hit", "miss"
	)
)
