package metrics

// Metrics defines the interface for collecting application metrics.
// This decouples the application from the specific metrics implementation (e.g., Prometheus).
type Metrics interface {
	IncImportRuns(dataType string)
	AddImportedRecords(dataType string, n int)
	AddImportErrors(dataType string, n int)
	IncUpsertBatches(table string)
	ObserveImportDuration(duration float64)
	IncAssignmentsSaved()
	AddStatsSaved(n int)
	ObserveProcedureDuration(procedure string, duration float64)
	IncSlackNotifSent()
	IncSlackNotifFailed()
	SetStartupTime(duration float64)
}
