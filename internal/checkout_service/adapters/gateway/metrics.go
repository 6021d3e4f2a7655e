package gateway

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	gatewayRequestsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "checkout",
			Name:      "gateway_requests_total",
			Help:      "Total remote gateway calls by operation and normalized status.",
		},
		[]string{"endpoint", "operation", "status"},
	)

	gatewayRequestDurationHist = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "checkout",
			Name:      "gateway_request_duration_seconds",
			Help:      "Duration of remote gateway calls.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"endpoint", "operation"},
	)
)
