package compliance

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// historyDropped counts bulk history events discarded because the queue was full or closed
	historyDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "railsync_compliance_history_dropped_total",
		Help: "Bulk history events dropped before reaching the store",
	})

	// historyWriteFailures counts background history writes that returned an error
	historyWriteFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "railsync_compliance_history_write_failures_total",
		Help: "Background history writes that failed",
	})

	statusTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "railsync_compliance_status_transitions_total",
		Help: "Status changes written by recalculation, by from and to status",
	}, []string{"from", "to"})

	recalcConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "railsync_compliance_recalc_conflicts_total",
		Help: "Recalculation writes skipped because the record changed mid-scan",
	})

	recalcDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "railsync_compliance_recalc_duration_seconds",
		Help:    "Duration of full recalculation passes",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~40s
	})

	bulkUpdatedRecords = promauto.NewCounter(prometheus.CounterOpts{
		Name: "railsync_compliance_bulk_updated_records_total",
		Help: "Records changed by bulk updates",
	})

	alertsAcknowledged = promauto.NewCounter(prometheus.CounterOpts{
		Name: "railsync_compliance_alerts_acknowledged_total",
		Help: "Alerts moved from pending to acknowledged",
	})
)
