package club

import "context"

// ClubStore defines the interface for interacting with the club's data.
type ClubStore interface {
	CreateTeam(ctx context.Context, team *Team) error
	UpdateTeam(ctx context.Context, team *Team) error
	GetTeam(ctx context.Context, id string) (*Team, error)
	ListTeams(ctx context.Context) ([]Team, error)
	UpsertTeams(ctx context.Context, teams []Team, mode ConflictMode) error
	CheckTeam(ctx context.Context, team *Team, kind WriteKind) error

	CreatePlayer(ctx context.Context, player *Player) error
	UpdatePlayer(ctx context.Context, player *Player) error
	GetPlayer(ctx context.Context, id string) (*Player, error)
	ListPlayers(ctx context.Context) ([]Player, error)
	ListPlayersByTeam(ctx context.Context, teamID string) ([]Player, error)
	FindPlayerByName(ctx context.Context, name string) (*Player, error)
	PlayerTeams(ctx context.Context, playerIDs []string) (map[string]string, error)
	UpsertPlayers(ctx context.Context, players []Player, mode ConflictMode) error
	CheckPlayer(ctx context.Context, player *Player, kind WriteKind) error

	CreateMatch(ctx context.Context, match *Match) error
	UpdateMatch(ctx context.Context, match *Match) error
	GetMatch(ctx context.Context, id string) (*Match, error)
	ListMatches(ctx context.Context) ([]Match, error)
	ListMatchesByTeam(ctx context.Context, teamID string) ([]Match, error)
	UpsertMatches(ctx context.Context, matches []Match, mode ConflictMode) error
	CheckMatch(ctx context.Context, match *Match, kind WriteKind) error

	ResolveExternalIDs(ctx context.Context, table string, externalIDs []string) (map[string]string, error)
	ExistingIDs(ctx context.Context, table string, ids []string) (map[string]bool, error)
	PlayerTotals(ctx context.Context, limit int) ([]PlayerTotals, error)
	PlayerTotalsByID(ctx context.Context, playerID string) (*PlayerTotals, error)
	TeamRecord(ctx context.Context, teamID string) (*TeamRecord, error)
}
