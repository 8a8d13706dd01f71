package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

var durationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		ImportRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "touchline_import_runs_total",
			Help: "The total number of CSV imports, by data type.",
		}, []string{"data_type"}),
		ImportedRecords: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "touchline_import_records_total",
			Help: "The total number of valid records seen by the importer.",
		}, []string{"data_type"}),
		ImportErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "touchline_import_errors_total",
			Help: "The total number of records rejected by import validation.",
		}, []string{"data_type"}),
		UpsertBatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "touchline_upsert_batches_total",
			Help: "The total number of batch upserts written, by table.",
		}, []string{"table"}),
		ImportDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "touchline_import_duration_seconds",
			Help:    "The duration of a full import run.",
			Buckets: durationBuckets,
		}),
		AssignmentsSaved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "touchline_assignment_saves_total",
			Help: "The total number of match assignment sheets saved.",
		}),
		StatsSaved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "touchline_stat_rows_saved_total",
			Help: "The total number of player match stat rows saved from the admin workflow.",
		}),
		ProcedureDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "touchline_procedure_duration_seconds",
			Help:    "The duration of analytics stored procedure calls.",
			Buckets: durationBuckets,
		}, []string{"procedure"}),
		SlackNotifSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "touchline_slack_notifications_sent_total",
			Help: "The total number of Slack notifications successfully sent.",
		}),
		SlackNotifFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "touchline_slack_notifications_failed_total",
			Help: "The total number of Slack notifications that failed to send.",
		}),
		StartupTimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "touchline_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
	}

	reg.MustRegister(
		s.ImportRuns,
		s.ImportedRecords,
		s.ImportErrors,
		s.UpsertBatches,
		s.ImportDuration,
		s.AssignmentsSaved,
		s.StatsSaved,
		s.ProcedureDuration,
		s.SlackNotifSent,
		s.SlackNotifFailed,
		s.StartupTimeSeconds,
	)

	return s
}

func (s *Service) IncImportRuns(dataType string) {
	s.ImportRuns.WithLabelValues(dataType).Inc()
}

func (s *Service) AddImportedRecords(dataType string, n int) {
	s.ImportedRecords.WithLabelValues(dataType).Add(float64(n))
}

func (s *Service) AddImportErrors(dataType string, n int) {
	s.ImportErrors.WithLabelValues(dataType).Add(float64(n))
}

func (s *Service) IncUpsertBatches(table string) {
	s.UpsertBatches.WithLabelValues(table).Inc()
}

func (s *Service) ObserveImportDuration(duration float64) {
	s.ImportDuration.Observe(duration)
}

func (s *Service) IncAssignmentsSaved() {
	s.AssignmentsSaved.Inc()
}

func (s *Service) AddStatsSaved(n int) {
	s.StatsSaved.Add(float64(n))
}

func (s *Service) ObserveProcedureDuration(procedure string, duration float64) {
	s.ProcedureDuration.WithLabelValues(procedure).Observe(duration)
}

func (s *Service) IncSlackNotifSent() {
	s.SlackNotifSent.Inc()
}

func (s *Service) IncSlackNotifFailed() {
	s.SlackNotifFailed.Inc()
}

func (s *Service) SetStartupTime(duration float64) {
	s.StartupTimeSeconds.Set(duration)
}
