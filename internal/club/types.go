package club

import (
	"database/sql"
	"errors"
	"sync"

	"github.com/jonboulle/clockwork"
)

var ErrNotFound = errors.New("not found")

// store handles all database operations for teams, players and matches.
type store struct {
	db    *sql.DB
	mu    sync.RWMutex
	clock clockwork.Clock
}

type TeamType string

const (
	TeamTypeClub     TeamType = "club"
	TeamTypeInternal TeamType = "internal"
	TeamTypeExternal TeamType = "external"
)

type MatchType string

const (
	// MatchTypeInternalFriendly is a match between two of the club's own squads.
	MatchTypeInternalFriendly MatchType = "internal_friendly"
	// MatchTypeExternal is a match against an outside club; only the home side is tracked.
	MatchTypeExternal   MatchType = "external"
	MatchTypeTournament MatchType = "tournament"
)

// ConflictMode decides what a batch upsert does with rows whose key already exists.
type ConflictMode int

const (
	ConflictUpdate ConflictMode = iota
	ConflictIgnore
)

type Team struct {
	ID             string   `json:"id"`
	ExternalID     string   `json:"external_id,omitempty"`
	Name           string   `json:"name"`
	PrimaryColor   string   `json:"primary_color,omitempty"`
	SecondaryColor string   `json:"secondary_color,omitempty"`
	TeamType       TeamType `json:"team_type"`
	FoundedYear    *int     `json:"founded_year,omitempty"`
	Description    string   `json:"description,omitempty"`
	CreatedAt      int64    `json:"created_at"`
	UpdatedAt      int64    `json:"updated_at"`
}

// Player is a squad member. TeamID is the default team, used for display and
// as a fallback; the team a player actually played for is recorded per match.
type Player struct {
	ID           string   `json:"id"`
	ExternalID   string   `json:"external_id,omitempty"`
	Name         string   `json:"name"`
	Position     string   `json:"position,omitempty"`
	TeamID       string   `json:"team_id,omitempty"`
	JerseyNumber *int     `json:"jersey_number,omitempty"`
	HeightCm     *float64 `json:"height_cm,omitempty"`
	WeightKg     *float64 `json:"weight_kg,omitempty"`
	DominantFoot string   `json:"dominant_foot,omitempty"`
	BirthDate    string   `json:"birth_date,omitempty"`
	CreatedAt    int64    `json:"created_at"`
	UpdatedAt    int64    `json:"updated_at"`
}

type Match struct {
	ID         string    `json:"id"`
	ExternalID string    `json:"external_id,omitempty"`
	MatchDate  string    `json:"match_date"`
	HomeTeamID string    `json:"home_team_id"`
	AwayTeamID string    `json:"away_team_id,omitempty"`
	HomeScore  int       `json:"home_score"`
	AwayScore  int       `json:"away_score"`
	Venue      string    `json:"venue,omitempty"`
	MatchType  MatchType `json:"match_type"`
	Attendance *int      `json:"attendance,omitempty"`
	Weather    string    `json:"weather,omitempty"`
	Referee    string    `json:"referee,omitempty"`
	CreatedAt  int64     `json:"created_at"`
	UpdatedAt  int64     `json:"updated_at"`
}

// PlayerTotals represents a player's season totals for the leaderboard.
type PlayerTotals struct {
	PlayerID      string  `json:"player_id"`
	PlayerName    string  `json:"player_name"`
	TeamID        string  `json:"team_id,omitempty"`
	MatchesPlayed int     `json:"matches_played"`
	Goals         int     `json:"goals"`
	Assists       int     `json:"assists"`
	OwnGoals      int     `json:"own_goals"`
	GoalsPerMatch float64 `json:"goals_per_match"`
}

// TeamRecord is a team's results summary derived from match scores.
type TeamRecord struct {
	TeamID        string  `json:"team_id"`
	Played        int     `json:"played"`
	Won           int     `json:"won"`
	Drawn         int     `json:"drawn"`
	Lost          int     `json:"lost"`
	GoalsFor      int     `json:"goals_for"`
	GoalsAgainst  int     `json:"goals_against"`
	WinPercentage float64 `json:"win_percentage"`
}
