package processor

import (
	"context"

	"github.com/mauv0809/touchline/internal/club"
	"github.com/mauv0809/touchline/internal/matchsheet"
	"github.com/mauv0809/touchline/internal/notifier"
)

// Reporter builds the scoring summary of a match.
type Reporter interface {
	Report(ctx context.Context, matchID string) (*matchsheet.MatchReport, error)
}

// Store defines the database reads required by the processor.
type Store interface {
	PlayerTotals(ctx context.Context, limit int) ([]club.PlayerTotals, error)
}

// Notifier defines the notification operations required by the processor.
type Notifier interface {
	notifier.Notifier
}
