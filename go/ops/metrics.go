package ops

import "github.com/prometheus/client_golang/prometheus"

// Metrics are the process-wide Prometheus collectors for recall's
// background machinery: outbox consumption lag, TocBuilder job
// outcomes, and index rebuild duration. A single Metrics is
// constructed at process wiring time and passed by reference into the
// components that report against it; nothing here touches a global
// registry implicitly.
type Metrics struct {
	OutboxLagSeqs      prometheus.Gauge
	JobsCompletedTotal *prometheus.CounterVec
	JobsFailedTotal    *prometheus.CounterVec
	RollupDuration     *prometheus.HistogramVec
	IndexRebuildSecs   *prometheus.HistogramVec
}

// NewMetrics constructs collectors and registers them against reg.
// Callers typically pass prometheus.NewRegistry() in tests and
// prometheus.DefaultRegisterer in production.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	var m = &Metrics{
		OutboxLagSeqs: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "recall",
			Subsystem: "outbox",
			Name:      "lag_entries",
			Help:      "1 if the indexer's last outbox drain left further entries unread, else 0.",
		}),
		JobsCompletedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "recall",
			Subsystem: "tocbuilder",
			Name:      "jobs_completed_total",
			Help:      "Count of TocBuilder jobs that completed successfully, by kind.",
		}, []string{"kind"}),
		JobsFailedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "recall",
			Subsystem: "tocbuilder",
			Name:      "jobs_failed_total",
			Help:      "Count of TocBuilder jobs that failed terminally, by kind.",
		}, []string{"kind"}),
		RollupDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "recall",
			Subsystem: "tocbuilder",
			Name:      "rollup_duration_seconds",
			Help:      "Wall time to build a rollup TocNode, by level.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"level"}),
		IndexRebuildSecs: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "recall",
			Subsystem: "index",
			Name:      "rebuild_duration_seconds",
			Help:      "Wall time to rebuild an index from the Store, by index kind.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"index"}),
	}
	reg.MustRegister(
		m.OutboxLagSeqs,
		m.JobsCompletedTotal,
		m.JobsFailedTotal,
		m.RollupDuration,
		m.IndexRebuildSecs,
	)
	return m
}
