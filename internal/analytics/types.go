package analytics

import (
	"github.com/jonboulle/clockwork"
	"github.com/mauv0809/touchline/internal/metrics"
	"github.com/mauv0809/touchline/internal/procedures"
)

// Service calls the hosted aggregation procedures and reshapes their rows
// into chart input. No statistic is computed here.
type Service struct {
	caller  procedures.Caller
	metrics metrics.Metrics
	clock   clockwork.Clock
}

// Chart is the labels/datasets shape consumed by bar and radar charts.
// Tooltips, when present, line up with Labels.
type Chart struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
	Tooltips []string  `json:"tooltips,omitempty"`
}

type Dataset struct {
	Label string    `json:"label"`
	Data  []float64 `json:"data"`
}

// ImpactRow is one row of get_player_all_teams_impact.
type ImpactRow struct {
	TeamID         string  `json:"team_id"`
	TeamName       string  `json:"team_name"`
	MatchesWith    int     `json:"matches_with"`
	WinsWith       int     `json:"wins_with"`
	MatchesWithout int     `json:"matches_without"`
	WinsWithout    int     `json:"wins_without"`
	WinRateWith    float64 `json:"win_rate_with"`
	WinRateWithout float64 `json:"win_rate_without"`
	ImpactScore    float64 `json:"impact_score"`
}

type PlayerImpact struct {
	PlayerID string      `json:"player_id"`
	Rows     []ImpactRow `json:"rows"`
	Chart    Chart       `json:"chart"`
}

// TeammateRow is one row of get_player_team_combinations.
type TeammateRow struct {
	TeammateID      string  `json:"teammate_id"`
	TeammateName    string  `json:"teammate_name"`
	MatchesTogether int     `json:"matches_together"`
	WinsTogether    int     `json:"wins_together"`
	WinRate         float64 `json:"win_rate"`
}

type TeammateCombinations struct {
	PlayerID string        `json:"player_id"`
	Rows     []TeammateRow `json:"rows"`
	Chart    Chart         `json:"chart"`
}

// PairRow is one row of get_player_combinations.
type PairRow struct {
	Player1ID       string  `json:"player1_id"`
	Player1Name     string  `json:"player1_name"`
	Player2ID       string  `json:"player2_id"`
	Player2Name     string  `json:"player2_name"`
	MatchesTogether int     `json:"matches_together"`
	WinsTogether    int     `json:"wins_together"`
	WinRate         float64 `json:"win_rate"`
}

type PairCombinations struct {
	TeamID     string    `json:"team_id"`
	MinMatches int       `json:"min_matches"`
	Pairs      []PairRow `json:"pairs"`
	Chart      Chart     `json:"chart"`
}

// LeaderboardRow is one row of get_simplified_leaderboards. Weighted values
// count external games three times as much as internal ones.
type LeaderboardRow struct {
	PlayerID             string  `json:"player_id"`
	PlayerName           string  `json:"player_name"`
	MatchesPlayed        int     `json:"matches_played"`
	WeightedGoals        float64 `json:"weighted_goals"`
	WeightedAssists      float64 `json:"weighted_assists"`
	CleanSheetPercentage float64 `json:"clean_sheet_percentage"`
}

type LeaderboardEntry struct {
	PlayerID      string  `json:"player_id"`
	PlayerName    string  `json:"player_name"`
	MatchesPlayed int     `json:"matches_played"`
	Value         float64 `json:"value"`
}

type Leaderboards struct {
	WeightedGoals   []LeaderboardEntry `json:"weighted_goals"`
	WeightedAssists []LeaderboardEntry `json:"weighted_assists"`
	CleanSheets     []LeaderboardEntry `json:"clean_sheets"`
}

// PerformanceRow is one row of get_team_performance_with_player; Scenario is
// "with" or "without".
type PerformanceRow struct {
	Scenario              string  `json:"scenario"`
	Matches               int     `json:"matches"`
	WinRate               float64 `json:"win_rate"`
	GoalsPerMatch         float64 `json:"goals_per_match"`
	GoalsConcededPerMatch float64 `json:"goals_conceded_per_match"`
	CleanSheetPercentage  float64 `json:"clean_sheet_percentage"`
}

type TeamPerformance struct {
	TeamID   string           `json:"team_id"`
	PlayerID string           `json:"player_id"`
	Rows     []PerformanceRow `json:"rows"`
	Chart    Chart            `json:"chart"`
}

// TeamStatsRow is one row of get_internal_team_statistics and get_club_team_statistics.
type TeamStatsRow struct {
	TeamID        string  `json:"team_id"`
	TeamName      string  `json:"team_name"`
	MatchesPlayed int     `json:"matches_played"`
	Wins          int     `json:"wins"`
	Draws         int     `json:"draws"`
	Losses        int     `json:"losses"`
	GoalsFor      int     `json:"goals_for"`
	GoalsAgainst  int     `json:"goals_against"`
	WinPercentage float64 `json:"win_percentage"`
	CleanSheets   int     `json:"clean_sheets"`
}

type TeamStatistics struct {
	Rows  []TeamStatsRow `json:"rows"`
	Chart Chart          `json:"chart"`
}
