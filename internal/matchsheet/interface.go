package matchsheet

import (
	"context"

	"github.com/mauv0809/touchline/internal/club"
)

// Store persists team assignments and player stat rows.
type Store interface {
	ListAssignments(ctx context.Context, matchID string) ([]Assignment, error)
	ReplaceAssignments(ctx context.Context, matchID string, rows []Assignment) error
	SetAssignment(ctx context.Context, a Assignment) error
	DeleteAssignment(ctx context.Context, matchID, playerID string) error
	UpsertAssignments(ctx context.Context, rows []Assignment, mode club.ConflictMode) error

	ListStats(ctx context.Context, matchID string) ([]Stat, error)
	ListStatsByPlayer(ctx context.Context, playerID string) ([]PlayerMatchLine, error)
	UpsertStats(ctx context.Context, rows []Stat, mode club.ConflictMode) error
	SaveScoring(ctx context.Context, rows []Stat) error
}
