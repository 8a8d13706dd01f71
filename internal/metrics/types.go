package metrics

import "github.com/prometheus/client_golang/prometheus"

// Service holds all the Prometheus metrics for the application.
type Service struct {
	ImportRuns         *prometheus.CounterVec
	ImportedRecords    *prometheus.CounterVec
	ImportErrors       *prometheus.CounterVec
	UpsertBatches      *prometheus.CounterVec
	ImportDuration     prometheus.Histogram
	AssignmentsSaved   prometheus.Counter
	StatsSaved         prometheus.Counter
	ProcedureDuration  *prometheus.HistogramVec
	SlackNotifSent     prometheus.Counter
	SlackNotifFailed   prometheus.Counter
	StartupTimeSeconds prometheus.Gauge
}
