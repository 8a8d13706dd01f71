package importer

import (
	"context"
	"errors"

	"github.com/jonboulle/clockwork"
	"github.com/mauv0809/touchline/internal/club"
	"github.com/mauv0809/touchline/internal/matchsheet"
	"github.com/mauv0809/touchline/internal/metrics"
)

// BatchSize is the number of rows written per upsert call.
const BatchSize = 100

var (
	ErrUnknownDataType   = errors.New("unknown data type")
	ErrNoRecords         = errors.New("no records to import")
	ErrAllRecordsInvalid = errors.New("all records failed validation")
)

type DataType string

const (
	DataTeams       DataType = "teams"
	DataPlayers     DataType = "players"
	DataMatches     DataType = "matches"
	DataPlayerStats DataType = "player_stats"
)

func (d DataType) Valid() bool {
	switch d {
	case DataTeams, DataPlayers, DataMatches, DataPlayerStats:
		return true
	}
	return false
}

// Record is one CSV data row keyed by lower-cased header.
type Record map[string]string

type Request struct {
	DataType       DataType
	Records        []Record
	DryRun         bool
	SkipDuplicates bool
}

type Result struct {
	Message string   `json:"message"`
	Records int      `json:"records"`
	Errors  []string `json:"errors"`
	Skipped int      `json:"skipped"`
	Batches int      `json:"batches"`
	DryRun  bool     `json:"dry_run"`
}

// Store is everything the importer reads and writes.
type Store interface {
	UpsertTeams(ctx context.Context, teams []club.Team, mode club.ConflictMode) error
	UpsertPlayers(ctx context.Context, players []club.Player, mode club.ConflictMode) error
	UpsertMatches(ctx context.Context, matches []club.Match, mode club.ConflictMode) error
	UpsertAssignments(ctx context.Context, rows []matchsheet.Assignment, mode club.ConflictMode) error
	UpsertStats(ctx context.Context, rows []matchsheet.Stat, mode club.ConflictMode) error
	ResolveExternalIDs(ctx context.Context, table string, externalIDs []string) (map[string]string, error)
	ExistingIDs(ctx context.Context, table string, ids []string) (map[string]bool, error)
	PlayerTeams(ctx context.Context, playerIDs []string) (map[string]string, error)
}

type dbStore struct {
	club.ClubStore
	matchsheet.Store
}

// NewStore combines the club and match sheet stores into an importer Store.
func NewStore(clubs club.ClubStore, sheets matchsheet.Store) Store {
	return dbStore{ClubStore: clubs, Store: sheets}
}

// Importer validates CSV records and writes them in batches.
type Importer struct {
	store   Store
	metrics metrics.Metrics
	clock   clockwork.Clock
}
