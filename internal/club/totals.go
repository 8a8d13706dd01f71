package club

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
)

const totalsSelect = `
	SELECT p.id, p.name, COALESCE(p.team_id, ''),
		COUNT(s.id),
		COALESCE(SUM(s.goals), 0),
		COALESCE(SUM(s.assists), 0),
		COALESCE(SUM(s.own_goals), 0)
	FROM players p`

// PlayerTotals returns season totals for every player with at least one stat row,
// ordered by goals then assists. A non-positive limit returns everyone.
func (s *store) PlayerTotals(ctx context.Context, limit int) ([]PlayerTotals, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, totalsSelect+`
		JOIN player_match_stats s ON s.player_id = p.id
		GROUP BY p.id, p.name, p.team_id
		ORDER BY 5 DESC, 6 DESC, p.name
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totals := []PlayerTotals{}
	for rows.Next() {
		t, err := scanTotals(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan player totals: %w", err)
		}
		totals = append(totals, *t)
	}
	return totals, rows.Err()
}

// PlayerTotalsByID returns one player's totals; players without stats get zeros.
func (s *store) PlayerTotalsByID(ctx context.Context, playerID string) (*PlayerTotals, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, totalsSelect+`
		LEFT JOIN player_match_stats s ON s.player_id = p.id
		WHERE p.id = ?
		GROUP BY p.id, p.name, p.team_id`, playerID)
	t, err := scanTotals(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

func scanTotals(sc scanner) (*PlayerTotals, error) {
	var t PlayerTotals
	if err := sc.Scan(&t.PlayerID, &t.PlayerName, &t.TeamID, &t.MatchesPlayed, &t.Goals, &t.Assists, &t.OwnGoals); err != nil {
		return nil, err
	}
	if t.MatchesPlayed > 0 {
		t.GoalsPerMatch = round2(float64(t.Goals) / float64(t.MatchesPlayed))
	}
	return &t, nil
}

// TeamRecord summarises a team's results from the stored match scores.
// For external games the away score is the opponent's.
func (s *store) TeamRecord(ctx context.Context, teamID string) (*TeamRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT home_team_id, home_score, away_score
		FROM matches
		WHERE home_team_id = ? OR away_team_id = ?`, teamID, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rec := &TeamRecord{TeamID: teamID}
	for rows.Next() {
		var homeID string
		var home, away int
		if err := rows.Scan(&homeID, &home, &away); err != nil {
			return nil, err
		}
		scored, conceded := home, away
		if homeID != teamID {
			scored, conceded = away, home
		}
		rec.Played++
		rec.GoalsFor += scored
		rec.GoalsAgainst += conceded
		switch {
		case scored > conceded:
			rec.Won++
		case scored < conceded:
			rec.Lost++
		default:
			rec.Drawn++
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if rec.Played > 0 {
		rec.WinPercentage = math.Round(float64(rec.Won)/float64(rec.Played)*1000) / 10
	}
	return rec, nil
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
