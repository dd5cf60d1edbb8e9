package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	readinessOK     = "ok"
	readinessFailed = "failed"
)

var (
	readinessChecks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tphub_alerts_readiness_checks_total",
		Help: "Total number of readiness checks by result",
	}, []string{"result"})

	// BuildInfo is set once at startup with the run mode.
	BuildInfo = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "tphub_alerts_build_info",
		Help: "Process information, always 1",
	}, []string{"mode", "env"})
)
