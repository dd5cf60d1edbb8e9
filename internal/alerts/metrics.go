package alerts

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	anomaliesFetched = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "tphub_alerts_anomalies_fetched",
		Help: "Number of anomalies returned by the last fetch per category",
	}, []string{"category"})

	sourceErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tphub_alerts_source_errors_total",
		Help: "Total number of failed data source fetches",
	}, []string{"source"})

	dispatchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tphub_alerts_dispatch_total",
		Help: "Total number of alert deliveries by channel and result",
	}, []string{"channel", "result"})

	dailyRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tphub_alerts_daily_runs_total",
		Help: "Total number of daily alert runs by status",
	}, []string{"status"})

	dailyRunDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "tphub_alerts_daily_run_duration_seconds",
		Help:    "Duration of daily alert runs",
		Buckets: []float64{1, 2, 5, 10, 20, 30, 60, 120, 300},
	})
)
