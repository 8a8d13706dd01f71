package notifier

import (
	"github.com/mauv0809/touchline/internal/club"
	"github.com/mauv0809/touchline/internal/matchsheet"
)

// Notifier defines a high-level interface for sending notifications about club events.
// The rest of the application never talks to the chat provider directly.
type Notifier interface {
	// After match stats are saved
	SendMatchReport(report *matchsheet.MatchReport, dryRun bool) error
	// Scheduled or on demand
	SendLeaderboard(totals []club.PlayerTotals, dryRun bool) error

	// For formatting responses for slash commands
	FormatLeaderboardResponse(totals []club.PlayerTotals) (any, error)
	FormatPlayerStatsResponse(totals *club.PlayerTotals, query string) (any, error)
	FormatPlayerNotFoundResponse(query string) (any, error)
}
