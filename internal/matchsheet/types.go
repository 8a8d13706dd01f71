package matchsheet

import (
	"database/sql"
	"errors"
	"sync"

	"github.com/jonboulle/clockwork"
	"github.com/mauv0809/touchline/internal/club"
	"github.com/mauv0809/touchline/internal/metrics"
	"github.com/mauv0809/touchline/internal/pubsub"
)

var ErrMatchNotFound = errors.New("match not found")

type store struct {
	db    *sql.DB
	mu    sync.RWMutex
	clock clockwork.Clock
}

// Assignment records which team a player actually played for in a match.
type Assignment struct {
	PlayerID  string `json:"player_id"`
	MatchID   string `json:"match_id"`
	TeamID    string `json:"team_id"`
	CreatedAt int64  `json:"created_at"`
}

// Stat is one player's line for one match.
type Stat struct {
	ID            string  `json:"id"`
	PlayerID      string  `json:"player_id"`
	MatchID       string  `json:"match_id"`
	Goals         int     `json:"goals"`
	Assists       int     `json:"assists"`
	OwnGoals      int     `json:"own_goals"`
	MinutesPlayed int     `json:"minutes_played"`
	Shots         int     `json:"shots"`
	ShotsOnTarget int     `json:"shots_on_target"`
	YellowCards   int     `json:"yellow_cards"`
	RedCards      int     `json:"red_cards"`
	XG            float64 `json:"xg"`
	Tackles       int     `json:"tackles"`
	Interceptions int     `json:"interceptions"`
}

// PlayerMatchLine is a stat row joined with its match, for player pages.
type PlayerMatchLine struct {
	MatchID       string `json:"match_id"`
	MatchDate     string `json:"match_date"`
	TeamID        string `json:"team_id,omitempty"`
	Goals         int    `json:"goals"`
	Assists       int    `json:"assists"`
	OwnGoals      int    `json:"own_goals"`
	MinutesPlayed int    `json:"minutes_played"`
}

// Service runs the per-match admin workflow: assign players to teams, enter
// their scoring, then review and correct the roster.
type Service struct {
	clubs   club.ClubStore
	store   Store
	pubsub  pubsub.PubSubClient
	metrics metrics.Metrics
	clock   clockwork.Clock
}

type AssignmentRow struct {
	PlayerID      string `json:"player_id"`
	PlayerName    string `json:"player_name"`
	DefaultTeamID string `json:"default_team_id,omitempty"`
	Participated  bool   `json:"participated"`
	TeamID        string `json:"team_id,omitempty"`
}

type AssignmentSheet struct {
	Match club.Match      `json:"match"`
	Teams []club.Team     `json:"teams"`
	Rows  []AssignmentRow `json:"rows"`
}

type AssignmentInput struct {
	PlayerID     string `json:"player_id" validate:"required"`
	Participated bool   `json:"participated"`
	TeamID       string `json:"team_id"`
}

type SaveAssignmentsResult struct {
	Saved  int  `json:"saved"`
	DryRun bool `json:"dry_run"`
}

type StatLine struct {
	PlayerID      string `json:"player_id"`
	PlayerName    string `json:"player_name"`
	TeamID        string `json:"team_id,omitempty"`
	Goals         int    `json:"goals"`
	Assists       int    `json:"assists"`
	OwnGoals      int    `json:"own_goals"`
	MinutesPlayed int    `json:"minutes_played"`
	HasStats      bool   `json:"has_stats"`
}

// StatSheet groups every player by the side they were assigned to.
// Other holds unassigned players and guests assigned to a third team.
type StatSheet struct {
	Match club.Match `json:"match"`
	Home  []StatLine `json:"home"`
	Away  []StatLine `json:"away"`
	Other []StatLine `json:"other"`
}

// StatInput carries the raw text of the form fields; blank means zero.
type StatInput struct {
	PlayerID string `json:"player_id" validate:"required"`
	Goals    string `json:"goals"`
	Assists  string `json:"assists"`
	OwnGoals string `json:"own_goals"`
}

type SaveStatsResult struct {
	Saved   int      `json:"saved"`
	Skipped []string `json:"skipped"`
	DryRun  bool     `json:"dry_run"`
}

type RosterLine struct {
	PlayerID      string `json:"player_id"`
	PlayerName    string `json:"player_name"`
	TeamID        string `json:"team_id"`
	TeamName      string `json:"team_name"`
	Goals         int    `json:"goals"`
	Assists       int    `json:"assists"`
	OwnGoals      int    `json:"own_goals"`
	MinutesPlayed int    `json:"minutes_played"`
}

type ScoringLine struct {
	PlayerName string `json:"player_name"`
	TeamName   string `json:"team_name"`
	Goals      int    `json:"goals"`
	Assists    int    `json:"assists"`
	OwnGoals   int    `json:"own_goals"`
}

// MatchReport is the summary sent to the club channel after stats are saved.
type MatchReport struct {
	Match    club.Match    `json:"match"`
	HomeTeam string        `json:"home_team"`
	AwayTeam string        `json:"away_team"`
	Lines    []ScoringLine `json:"lines"`
}
