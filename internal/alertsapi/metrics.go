package alertsapi

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tphub_alerts_api_requests_total",
		Help: "Total number of alerts API requests",
	}, []string{"route", "status"})

	latencyHistogram = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tphub_alerts_api_latency_seconds",
		Help:    "Latency of alerts API requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
)
