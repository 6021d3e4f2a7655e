package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	checkoutAttemptsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "checkout",
			Name:      "attempts_total",
			Help:      "Total payment attempts by method and terminal outcome.",
		},
		[]string{"method", "outcome"},
	)

	checkoutAttemptDurationHist = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "checkout",
			Name:      "attempt_duration_seconds",
			Help:      "Duration of a full payment attempt including all gateway calls.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	challengeResolutionsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "checkout",
			Name:      "secure3d_resolutions_total",
			Help:      "Total 3-D Secure challenge resolutions by terminal outcome.",
		},
		[]string{"outcome"},
	)
)
