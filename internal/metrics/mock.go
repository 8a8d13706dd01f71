package metrics

import "sync"

var _ Metrics = (*Mock)(nil)

// Mock is a mock implementation of the Metrics interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu                 sync.Mutex
	importRuns         map[string]int
	importedRecords    map[string]int
	importErrors       map[string]int
	upsertBatches      map[string]int
	importDurations    []float64
	assignmentsSaved   int
	statsSaved         int
	procedureDurations map[string][]float64
	slackNotifSent     int
	slackNotifFailed   int
	startupTime        float64
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{
		importRuns:         make(map[string]int),
		importedRecords:    make(map[string]int),
		importErrors:       make(map[string]int),
		upsertBatches:      make(map[string]int),
		procedureDurations: make(map[string][]float64),
	}
}

func (m *Mock) IncImportRuns(dataType string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.importRuns[dataType]++
}

func (m *Mock) AddImportedRecords(dataType string, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.importedRecords[dataType] += n
}

func (m *Mock) AddImportErrors(dataType string, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.importErrors[dataType] += n
}

func (m *Mock) IncUpsertBatches(table string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upsertBatches[table]++
}

func (m *Mock) ObserveImportDuration(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.importDurations = append(m.importDurations, duration)
}

func (m *Mock) IncAssignmentsSaved() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assignmentsSaved++
}

func (m *Mock) AddStatsSaved(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statsSaved += n
}

func (m *Mock) ObserveProcedureDuration(procedure string, duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.procedureDurations[procedure] = append(m.procedureDurations[procedure], duration)
}

func (m *Mock) IncSlackNotifSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slackNotifSent++
}

func (m *Mock) IncSlackNotifFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slackNotifFailed++
}

func (m *Mock) SetStartupTime(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startupTime = duration
}

// ImportRuns returns the number of imports recorded for dataType.
func (m *Mock) ImportRuns(dataType string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.importRuns[dataType]
}

func (m *Mock) ImportedRecords(dataType string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.importedRecords[dataType]
}

func (m *Mock) ImportErrors(dataType string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.importErrors[dataType]
}

// UpsertBatches returns the number of batches written to table.
func (m *Mock) UpsertBatches(table string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.upsertBatches[table]
}

func (m *Mock) ImportDurations() []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]float64(nil), m.importDurations...)
}

func (m *Mock) AssignmentsSaved() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.assignmentsSaved
}

func (m *Mock) StatsSaved() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.statsSaved
}

// ProcedureCalls returns how many durations were observed for procedure.
func (m *Mock) ProcedureCalls(procedure string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.procedureDurations[procedure])
}

// SlackNotifSent returns the number of times IncSlackNotifSent was called.
func (m *Mock) SlackNotifSent() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slackNotifSent
}

// SlackNotifFailed returns the number of times IncSlackNotifFailed was called.
func (m *Mock) SlackNotifFailed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slackNotifFailed
}

func (m *Mock) StartupTime() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.startupTime
}
