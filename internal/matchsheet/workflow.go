package matchsheet

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/jonboulle/clockwork"
	"github.com/mauv0809/touchline/internal/club"
	"github.com/mauv0809/touchline/internal/metrics"
	"github.com/mauv0809/touchline/internal/pubsub"
)

// NewService wires the workflow to its stores and side channels.
func NewService(clubs club.ClubStore, store Store, ps pubsub.PubSubClient, m metrics.Metrics, clock clockwork.Clock) *Service {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Service{
		clubs:   clubs,
		store:   store,
		pubsub:  ps,
		metrics: m,
		clock:   clock,
	}
}

func (s *Service) match(ctx context.Context, matchID string) (*club.Match, error) {
	m, err := s.clubs.GetMatch(ctx, matchID)
	if errors.Is(err, club.ErrNotFound) {
		return nil, ErrMatchNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load match %s: %w", matchID, err)
	}
	return m, nil
}

func (s *Service) assignmentMap(ctx context.Context, matchID string) (map[string]string, error) {
	assignments, err := s.store.ListAssignments(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to load assignments: %w", err)
	}
	byPlayer := make(map[string]string, len(assignments))
	for _, a := range assignments {
		byPlayer[a.PlayerID] = a.TeamID
	}
	return byPlayer, nil
}

// AssignmentSheet lists every player with their current assignment for the match.
// The match's own teams come first in the team list.
func (s *Service) AssignmentSheet(ctx context.Context, matchID string) (*AssignmentSheet, error) {
	m, err := s.match(ctx, matchID)
	if err != nil {
		return nil, err
	}
	players, err := s.clubs.ListPlayers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load players: %w", err)
	}
	teams, err := s.clubs.ListTeams(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load teams: %w", err)
	}
	assigned, err := s.assignmentMap(ctx, matchID)
	if err != nil {
		return nil, err
	}

	rank := func(t club.Team) int {
		switch t.ID {
		case m.HomeTeamID:
			return 0
		case m.AwayTeamID:
			return 1
		}
		return 2
	}
	sort.SliceStable(teams, func(i, j int) bool { return rank(teams[i]) < rank(teams[j]) })

	sheet := &AssignmentSheet{Match: *m, Teams: teams, Rows: make([]AssignmentRow, 0, len(players))}
	for _, p := range players {
		teamID, ok := assigned[p.ID]
		sheet.Rows = append(sheet.Rows, AssignmentRow{
			PlayerID:      p.ID,
			PlayerName:    p.Name,
			DefaultTeamID: p.TeamID,
			Participated:  ok,
			TeamID:        teamID,
		})
	}
	return sheet, nil
}

// SaveAssignments replaces the match's assignments with the participating rows.
// A participant without a team falls back to their default team.
func (s *Service) SaveAssignments(ctx context.Context, matchID string, inputs []AssignmentInput, dryRun bool) (*SaveAssignmentsResult, error) {
	if _, err := s.match(ctx, matchID); err != nil {
		return nil, err
	}
	players, err := s.clubs.ListPlayers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load players: %w", err)
	}
	teams, err := s.clubs.ListTeams(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load teams: %w", err)
	}
	defaults := make(map[string]string, len(players))
	for _, p := range players {
		defaults[p.ID] = p.TeamID
	}
	knownTeams := make(map[string]bool, len(teams))
	for _, t := range teams {
		knownTeams[t.ID] = true
	}

	verr := &club.ValidationError{}
	var order []string
	listed := make(map[string]bool)
	chosen := make(map[string]string)
	for _, in := range inputs {
		defaultTeam, known := defaults[in.PlayerID]
		if !known {
			verr.Add(in.PlayerID, "unknown player")
			continue
		}
		if !in.Participated {
			delete(chosen, in.PlayerID)
			continue
		}
		teamID := in.TeamID
		if teamID == "" {
			teamID = defaultTeam
		}
		if teamID == "" {
			verr.Add(in.PlayerID, "participated but has no team")
			continue
		}
		if !knownTeams[teamID] {
			verr.Add(in.PlayerID, "unknown team "+teamID)
			continue
		}
		if !listed[in.PlayerID] {
			listed[in.PlayerID] = true
			order = append(order, in.PlayerID)
		}
		chosen[in.PlayerID] = teamID
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	rows := make([]Assignment, 0, len(chosen))
	for _, playerID := range order {
		if teamID, ok := chosen[playerID]; ok {
			rows = append(rows, Assignment{PlayerID: playerID, MatchID: matchID, TeamID: teamID})
		}
	}

	result := &SaveAssignmentsResult{Saved: len(rows), DryRun: dryRun}
	if dryRun {
		log.Info("Dry run, not saving assignments", "matchID", matchID, "count", len(rows))
		return result, nil
	}
	if err := s.store.ReplaceAssignments(ctx, matchID, rows); err != nil {
		log.Error("Failed to save assignments", "error", err, "matchID", matchID)
		return nil, err
	}
	s.metrics.IncAssignmentsSaved()
	log.Info("Saved assignments", "matchID", matchID, "count", len(rows))
	return result, nil
}

// StatSheet returns every player with their stat line, grouped by assigned side.
func (s *Service) StatSheet(ctx context.Context, matchID string) (*StatSheet, error) {
	m, err := s.match(ctx, matchID)
	if err != nil {
		return nil, err
	}
	players, err := s.clubs.ListPlayers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load players: %w", err)
	}
	assigned, err := s.assignmentMap(ctx, matchID)
	if err != nil {
		return nil, err
	}
	stats, err := s.store.ListStats(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to load stats: %w", err)
	}
	byPlayer := make(map[string]Stat, len(stats))
	for _, st := range stats {
		byPlayer[st.PlayerID] = st
	}

	sheet := &StatSheet{Match: *m, Home: []StatLine{}, Away: []StatLine{}, Other: []StatLine{}}
	for _, p := range players {
		line := StatLine{PlayerID: p.ID, PlayerName: p.Name, TeamID: assigned[p.ID]}
		if st, ok := byPlayer[p.ID]; ok {
			line.Goals, line.Assists, line.OwnGoals, line.MinutesPlayed = st.Goals, st.Assists, st.OwnGoals, st.MinutesPlayed
			line.HasStats = true
		}
		switch {
		case line.TeamID != "" && line.TeamID == m.HomeTeamID:
			sheet.Home = append(sheet.Home, line)
		case line.TeamID != "" && line.TeamID == m.AwayTeamID:
			sheet.Away = append(sheet.Away, line)
		default:
			sheet.Other = append(sheet.Other, line)
		}
	}
	return sheet, nil
}

// parseCount reads a form field; blank is zero.
func parseCount(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// SaveStats upserts one row per assigned player. Players without an assignment
// for the match are not saved; they are reported in Skipped.
func (s *Service) SaveStats(ctx context.Context, matchID string, inputs []StatInput, dryRun bool) (*SaveStatsResult, error) {
	if _, err := s.match(ctx, matchID); err != nil {
		return nil, err
	}
	assigned, err := s.assignmentMap(ctx, matchID)
	if err != nil {
		return nil, err
	}

	verr := &club.ValidationError{}
	result := &SaveStatsResult{Skipped: []string{}, DryRun: dryRun}
	var order []string
	rows := make(map[string]Stat)
	for _, in := range inputs {
		goals, okG := parseCount(in.Goals)
		assists, okA := parseCount(in.Assists)
		ownGoals, okO := parseCount(in.OwnGoals)
		if !okG {
			verr.Add(in.PlayerID+".goals", "must be a non-negative whole number")
		}
		if !okA {
			verr.Add(in.PlayerID+".assists", "must be a non-negative whole number")
		}
		if !okO {
			verr.Add(in.PlayerID+".own_goals", "must be a non-negative whole number")
		}
		if !okG || !okA || !okO {
			continue
		}
		if _, ok := assigned[in.PlayerID]; !ok {
			if goals+assists+ownGoals > 0 {
				log.Warn("Dropping stats for unassigned player", "matchID", matchID, "playerID", in.PlayerID)
			}
			result.Skipped = append(result.Skipped, in.PlayerID)
			continue
		}
		if _, seen := rows[in.PlayerID]; !seen {
			order = append(order, in.PlayerID)
		}
		rows[in.PlayerID] = Stat{PlayerID: in.PlayerID, MatchID: matchID, Goals: goals, Assists: assists, OwnGoals: ownGoals}
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	batch := make([]Stat, 0, len(order))
	for _, playerID := range order {
		batch = append(batch, rows[playerID])
	}
	result.Saved = len(batch)
	if dryRun {
		log.Info("Dry run, not saving stats", "matchID", matchID, "count", len(batch))
		return result, nil
	}
	if err := s.store.SaveScoring(ctx, batch); err != nil {
		log.Error("Failed to save stats", "error", err, "matchID", matchID)
		return nil, err
	}
	s.metrics.AddStatsSaved(len(batch))
	log.Info("Saved stats", "matchID", matchID, "count", len(batch), "skipped", len(result.Skipped))

	event := pubsub.MatchStatsSaved{MatchID: matchID, Saved: len(batch), SavedAt: s.clock.Now().Unix()}
	if err := s.pubsub.SendMessage(pubsub.EventMatchStatsSaved, event); err != nil {
		log.Error("Failed to publish match stats event", "error", err, "matchID", matchID)
	}
	return result, nil
}

func (s *Service) teamNames(ctx context.Context) (map[string]string, error) {
	teams, err := s.clubs.ListTeams(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load teams: %w", err)
	}
	names := make(map[string]string, len(teams))
	for _, t := range teams {
		names[t.ID] = t.Name
	}
	return names, nil
}

// Roster lists the assigned players of the match with their team and stat line.
func (s *Service) Roster(ctx context.Context, matchID string) ([]RosterLine, error) {
	if _, err := s.match(ctx, matchID); err != nil {
		return nil, err
	}
	assignments, err := s.store.ListAssignments(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to load assignments: %w", err)
	}
	stats, err := s.store.ListStats(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to load stats: %w", err)
	}
	players, err := s.clubs.ListPlayers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load players: %w", err)
	}
	teams, err := s.teamNames(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(players))
	for _, p := range players {
		names[p.ID] = p.Name
	}
	byPlayer := make(map[string]Stat, len(stats))
	for _, st := range stats {
		byPlayer[st.PlayerID] = st
	}

	roster := make([]RosterLine, 0, len(assignments))
	for _, a := range assignments {
		st := byPlayer[a.PlayerID]
		roster = append(roster, RosterLine{
			PlayerID:      a.PlayerID,
			PlayerName:    names[a.PlayerID],
			TeamID:        a.TeamID,
			TeamName:      teams[a.TeamID],
			Goals:         st.Goals,
			Assists:       st.Assists,
			OwnGoals:      st.OwnGoals,
			MinutesPlayed: st.MinutesPlayed,
		})
	}
	sort.SliceStable(roster, func(i, j int) bool {
		if roster[i].TeamName != roster[j].TeamName {
			return roster[i].TeamName < roster[j].TeamName
		}
		return roster[i].PlayerName < roster[j].PlayerName
	})
	return roster, nil
}

// UpdateAssignment edits one roster row. An empty teamID removes the assignment.
func (s *Service) UpdateAssignment(ctx context.Context, matchID, playerID, teamID string, dryRun bool) error {
	if _, err := s.match(ctx, matchID); err != nil {
		return err
	}
	if _, err := s.clubs.GetPlayer(ctx, playerID); err != nil {
		return err
	}
	if teamID != "" {
		if _, err := s.clubs.GetTeam(ctx, teamID); err != nil {
			if errors.Is(err, club.ErrNotFound) {
				v := &club.ValidationError{}
				v.Add("team_id", "unknown team")
				return v
			}
			return err
		}
	}
	if dryRun {
		log.Info("Dry run, not updating assignment", "matchID", matchID, "playerID", playerID, "teamID", teamID)
		return nil
	}
	if teamID == "" {
		return s.store.DeleteAssignment(ctx, matchID, playerID)
	}
	return s.store.SetAssignment(ctx, Assignment{PlayerID: playerID, MatchID: matchID, TeamID: teamID})
}

// Report builds the scoring summary of a match. Players with nothing to report are left out.
func (s *Service) Report(ctx context.Context, matchID string) (*MatchReport, error) {
	m, err := s.match(ctx, matchID)
	if err != nil {
		return nil, err
	}
	roster, err := s.Roster(ctx, matchID)
	if err != nil {
		return nil, err
	}
	teams, err := s.teamNames(ctx)
	if err != nil {
		return nil, err
	}

	report := &MatchReport{Match: *m, HomeTeam: teams[m.HomeTeamID], AwayTeam: teams[m.AwayTeamID], Lines: []ScoringLine{}}
	if report.AwayTeam == "" {
		report.AwayTeam = "Opponent"
	}
	for _, r := range roster {
		if r.Goals == 0 && r.Assists == 0 && r.OwnGoals == 0 {
			continue
		}
		report.Lines = append(report.Lines, ScoringLine{
			PlayerName: r.PlayerName,
			TeamName:   r.TeamName,
			Goals:      r.Goals,
			Assists:    r.Assists,
			OwnGoals:   r.OwnGoals,
		})
	}
	sort.SliceStable(report.Lines, func(i, j int) bool {
		if report.Lines[i].Goals != report.Lines[j].Goals {
			return report.Lines[i].Goals > report.Lines[j].Goals
		}
		return report.Lines[i].Assists > report.Lines[j].Assists
	})
	return report, nil
}
