package analytics

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/jonboulle/clockwork"
	"github.com/mauv0809/touchline/internal/metrics"
	"github.com/mauv0809/touchline/internal/procedures"
)

const (
	DefaultLeaderboardLimit = 10
	DefaultMinMatches       = 3
)

// New creates an analytics Service on top of a procedure caller.
func New(caller procedures.Caller, m metrics.Metrics, clock clockwork.Clock) *Service {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Service{caller: caller, metrics: m, clock: clock}
}

func (s *Service) call(ctx context.Context, name string, dest any, args ...procedures.NamedArg) error {
	start := s.clock.Now()
	err := s.caller.Call(ctx, name, args, dest)
	s.metrics.ObserveProcedureDuration(name, s.clock.Since(start).Seconds())
	if err != nil {
		log.Error("Analytics procedure failed", "error", err, "procedure", name)
		return err
	}
	return nil
}

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}

// PlayerImpact compares team win rates with and without the player, one bar group per team.
func (s *Service) PlayerImpact(ctx context.Context, playerID string) (*PlayerImpact, error) {
	rows := []ImpactRow{}
	if err := s.call(ctx, procedures.PlayerAllTeamsImpact, &rows, procedures.NamedArg{Name: "p_player_id", Value: playerID}); err != nil {
		return nil, err
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].ImpactScore > rows[j].ImpactScore })

	chart := Chart{
		Labels: make([]string, len(rows)),
		Datasets: []Dataset{
			{Label: "Win rate with", Data: make([]float64, len(rows))},
			{Label: "Win rate without", Data: make([]float64, len(rows))},
			{Label: "Impact", Data: make([]float64, len(rows))},
		},
		Tooltips: make([]string, len(rows)),
	}
	for i, r := range rows {
		chart.Labels[i] = r.TeamName
		chart.Datasets[0].Data[i] = round1(r.WinRateWith)
		chart.Datasets[1].Data[i] = round1(r.WinRateWithout)
		chart.Datasets[2].Data[i] = round1(r.ImpactScore)
		chart.Tooltips[i] = fmt.Sprintf("%d wins in %d matches with, %d in %d without",
			r.WinsWith, r.MatchesWith, r.WinsWithout, r.MatchesWithout)
	}
	return &PlayerImpact{PlayerID: playerID, Rows: rows, Chart: chart}, nil
}

// PlayerTeamCombinations charts how often the player wins alongside each teammate.
func (s *Service) PlayerTeamCombinations(ctx context.Context, playerID string) (*TeammateCombinations, error) {
	rows := []TeammateRow{}
	if err := s.call(ctx, procedures.PlayerTeamCombinations, &rows, procedures.NamedArg{Name: "p_player_id", Value: playerID}); err != nil {
		return nil, err
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].WinRate != rows[j].WinRate {
			return rows[i].WinRate > rows[j].WinRate
		}
		return rows[i].MatchesTogether > rows[j].MatchesTogether
	})

	chart := Chart{
		Labels: make([]string, len(rows)),
		Datasets: []Dataset{
			{Label: "Win rate together", Data: make([]float64, len(rows))},
			{Label: "Matches together", Data: make([]float64, len(rows))},
		},
		Tooltips: make([]string, len(rows)),
	}
	for i, r := range rows {
		chart.Labels[i] = r.TeammateName
		chart.Datasets[0].Data[i] = round1(r.WinRate)
		chart.Datasets[1].Data[i] = float64(r.MatchesTogether)
		chart.Tooltips[i] = fmt.Sprintf("%d wins in %d matches together", r.WinsTogether, r.MatchesTogether)
	}
	return &TeammateCombinations{PlayerID: playerID, Rows: rows, Chart: chart}, nil
}

// PlayerCombinations ranks player pairs of a team by win rate, then matches played together.
func (s *Service) PlayerCombinations(ctx context.Context, teamID string, minMatches int) (*PairCombinations, error) {
	if minMatches < 1 {
		minMatches = DefaultMinMatches
	}
	pairs := []PairRow{}
	err := s.call(ctx, procedures.PlayerCombinations, &pairs,
		procedures.NamedArg{Name: "p_team_id", Value: teamID},
		procedures.NamedArg{Name: "p_min_matches", Value: minMatches})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		if pairs[i].WinRate != pairs[j].WinRate {
			return pairs[i].WinRate > pairs[j].WinRate
		}
		return pairs[i].MatchesTogether > pairs[j].MatchesTogether
	})

	chart := Chart{
		Labels:   make([]string, len(pairs)),
		Datasets: []Dataset{{Label: "Win rate", Data: make([]float64, len(pairs))}},
		Tooltips: make([]string, len(pairs)),
	}
	for i, p := range pairs {
		chart.Labels[i] = p.Player1Name + " & " + p.Player2Name
		chart.Datasets[0].Data[i] = round1(p.WinRate)
		chart.Tooltips[i] = fmt.Sprintf("%d wins in %d matches", p.WinsTogether, p.MatchesTogether)
	}
	return &PairCombinations{TeamID: teamID, MinMatches: minMatches, Pairs: pairs, Chart: chart}, nil
}

// Leaderboards splits the simplified leaderboard rows into one top list per category.
func (s *Service) Leaderboards(ctx context.Context, limit int) (*Leaderboards, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}
	rows := []LeaderboardRow{}
	if err := s.call(ctx, procedures.SimplifiedLeaderboards, &rows, procedures.NamedArg{Name: "p_limit", Value: limit}); err != nil {
		return nil, err
	}
	return &Leaderboards{
		WeightedGoals:   top(rows, limit, func(r LeaderboardRow) float64 { return r.WeightedGoals }),
		WeightedAssists: top(rows, limit, func(r LeaderboardRow) float64 { return r.WeightedAssists }),
		CleanSheets:     top(rows, limit, func(r LeaderboardRow) float64 { return r.CleanSheetPercentage }),
	}, nil
}

func top(rows []LeaderboardRow, limit int, value func(LeaderboardRow) float64) []LeaderboardEntry {
	entries := make([]LeaderboardEntry, 0, len(rows))
	for _, r := range rows {
		v := value(r)
		if v <= 0 {
			continue
		}
		entries = append(entries, LeaderboardEntry{PlayerID: r.PlayerID, PlayerName: r.PlayerName, MatchesPlayed: r.MatchesPlayed, Value: round1(v)})
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Value > entries[j].Value })
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

var performanceLabels = []string{"Win rate", "Goals per match", "Goals conceded per match", "Clean sheet %"}

// TeamPerformanceWithPlayer builds a radar chart of the team with and without the player.
func (s *Service) TeamPerformanceWithPlayer(ctx context.Context, teamID, playerID string) (*TeamPerformance, error) {
	rows := []PerformanceRow{}
	err := s.call(ctx, procedures.TeamPerformanceWithPlayer, &rows,
		procedures.NamedArg{Name: "p_team_id", Value: teamID},
		procedures.NamedArg{Name: "p_player_id", Value: playerID})
	if err != nil {
		return nil, err
	}

	chart := Chart{Labels: performanceLabels, Datasets: []Dataset{}}
	for _, scenario := range []string{"with", "without"} {
		for _, r := range rows {
			if r.Scenario != scenario {
				continue
			}
			chart.Datasets = append(chart.Datasets, Dataset{
				Label: fmt.Sprintf("%s player (%d matches)", scenarioLabel(scenario), r.Matches),
				Data:  []float64{round1(r.WinRate), round1(r.GoalsPerMatch), round1(r.GoalsConcededPerMatch), round1(r.CleanSheetPercentage)},
			})
		}
	}
	return &TeamPerformance{TeamID: teamID, PlayerID: playerID, Rows: rows, Chart: chart}, nil
}

func scenarioLabel(s string) string {
	if s == "with" {
		return "With"
	}
	return "Without"
}

var teamStatsLabels = []string{"Wins", "Draws", "Losses", "Goals for", "Goals against", "Clean sheets"}

// InternalTeamStatistics charts the club's internal squads against each other.
func (s *Service) InternalTeamStatistics(ctx context.Context) (*TeamStatistics, error) {
	return s.teamStatistics(ctx, procedures.InternalTeamStatistics)
}

// ClubTeamStatistics charts the club teams' external results.
func (s *Service) ClubTeamStatistics(ctx context.Context) (*TeamStatistics, error) {
	return s.teamStatistics(ctx, procedures.ClubTeamStatistics)
}

func (s *Service) teamStatistics(ctx context.Context, procedure string) (*TeamStatistics, error) {
	rows := []TeamStatsRow{}
	if err := s.call(ctx, procedure, &rows); err != nil {
		return nil, err
	}
	chart := Chart{Labels: teamStatsLabels, Datasets: make([]Dataset, 0, len(rows))}
	for _, r := range rows {
		chart.Datasets = append(chart.Datasets, Dataset{
			Label: r.TeamName,
			Data: []float64{
				float64(r.Wins), float64(r.Draws), float64(r.Losses),
				float64(r.GoalsFor), float64(r.GoalsAgainst), float64(r.CleanSheets),
			},
		})
	}
	return &TeamStatistics{Rows: rows, Chart: chart}, nil
}
