package notifier

import (
	"sync"

	"github.com/mauv0809/touchline/internal/club"
	"github.com/mauv0809/touchline/internal/matchsheet"
)

// Mock is a mock implementation of the Notifier interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	// Call records
	SendMatchReportCalls []*matchsheet.MatchReport
	SendLeaderboardCalls [][]club.PlayerTotals
	PlayerStatsQueries   []string
	NotFoundQueries      []string

	// Errors returned by the send methods
	SendMatchReportErr error
	SendLeaderboardErr error
}

var _ Notifier = (*Mock)(nil)

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

// Reset clears all call records.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendMatchReportCalls = nil
	m.SendLeaderboardCalls = nil
	m.PlayerStatsQueries = nil
	m.NotFoundQueries = nil
}

func (m *Mock) SendMatchReport(report *matchsheet.MatchReport, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendMatchReportCalls = append(m.SendMatchReportCalls, report)
	return m.SendMatchReportErr
}

func (m *Mock) SendLeaderboard(totals []club.PlayerTotals, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendLeaderboardCalls = append(m.SendLeaderboardCalls, totals)
	return m.SendLeaderboardErr
}

func (m *Mock) FormatLeaderboardResponse(totals []club.PlayerTotals) (any, error) {
	return map[string]any{"text": "leaderboard", "count": len(totals)}, nil
}

func (m *Mock) FormatPlayerStatsResponse(totals *club.PlayerTotals, query string) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PlayerStatsQueries = append(m.PlayerStatsQueries, query)
	return map[string]any{"text": "stats for " + totals.PlayerName}, nil
}

func (m *Mock) FormatPlayerNotFoundResponse(query string) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.NotFoundQueries = append(m.NotFoundQueries, query)
	return map[string]any{"text": "not found: " + query}, nil
}

// MatchReports returns the recorded match reports.
func (m *Mock) MatchReports() []*matchsheet.MatchReport {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*matchsheet.MatchReport(nil), m.SendMatchReportCalls...)
}

// Leaderboards returns the recorded leaderboard posts.
func (m *Mock) Leaderboards() [][]club.PlayerTotals {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]club.PlayerTotals(nil), m.SendLeaderboardCalls...)
}
