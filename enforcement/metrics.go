package enforcement

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	executionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "warden_enforcement_executions_total",
			Help: "Enforcement actions executed, by action kind",
		},
		[]string{"action"},
	)

	reversalsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "warden_enforcement_reversals_total",
			Help: "Enforcement actions reversed after expiry, by action kind",
		},
		[]string{"action"},
	)

	sweepFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "warden_enforcement_sweep_failures_total",
			Help: "Per-record failures during sweeps, by stage (execute/reverse)",
		},
		[]string{"stage"},
	)

	entityGoneCancellations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "warden_enforcement_entity_gone_cancellations_total",
			Help: "Records cancelled because their target could no longer be resolved",
		},
	)

	sweepDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "warden_enforcement_sweep_duration_seconds",
			Help:    "Wall time of one scheduler sweep",
			Buckets: prometheus.DefBuckets,
		},
	)
)
