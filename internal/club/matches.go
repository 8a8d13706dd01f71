package club

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/mauv0809/touchline/internal/sqlutil"
)

const matchColumns = `id, external_id, match_date, home_team_id, away_team_id, home_score, away_score, venue, match_type, attendance, weather, referee, created_at, updated_at`

// CreateMatch checks and inserts a match, assigning an id and a natural
// external id when none is set. Unknown teams are validation errors.
func (s *store) CreateMatch(ctx context.Context, match *Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkMatch(ctx, match, WriteCreate); err != nil {
		return err
	}

	if match.ID == "" {
		match.ID = uuid.NewString()
	}
	now := s.clock.Now().Unix()
	match.CreatedAt, match.UpdatedAt = now, now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO matches (`+matchColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, matchArgs(match)...)
	if err != nil {
		return fmt.Errorf("failed to insert match: %w", err)
	}
	log.Debug("Created match", "matchID", match.ID, "date", match.MatchDate)
	return nil
}

func (s *store) UpdateMatch(ctx context.Context, match *Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkMatch(ctx, match, WriteUpdate); err != nil {
		return err
	}

	match.UpdatedAt = s.clock.Now().Unix()
	res, err := s.db.ExecContext(ctx, `
		UPDATE matches SET
			external_id = COALESCE(?, external_id),
			match_date = ?,
			home_team_id = ?,
			away_team_id = ?,
			home_score = ?,
			away_score = ?,
			venue = ?,
			match_type = ?,
			attendance = ?,
			weather = ?,
			referee = ?,
			updated_at = ?
		WHERE id = ?`,
		sqlutil.NullString(match.ExternalID), match.MatchDate, match.HomeTeamID,
		sqlutil.NullString(match.AwayTeamID), match.HomeScore, match.AwayScore,
		sqlutil.NullString(match.Venue), match.MatchType, sqlutil.NullInt(match.Attendance),
		sqlutil.NullString(match.Weather), sqlutil.NullString(match.Referee), match.UpdatedAt, match.ID)
	if err != nil {
		return fmt.Errorf("failed to update match %s: %w", match.ID, err)
	}
	return expectOneRow(res)
}

func (s *store) GetMatch(ctx context.Context, id string) (*Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `SELECT `+matchColumns+` FROM matches WHERE id = ?`, id)
	match, err := scanMatch(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return match, nil
}

// ListMatches returns all matches, most recent first.
func (s *store) ListMatches(ctx context.Context) ([]Match, error) {
	return s.queryMatches(ctx, `SELECT `+matchColumns+` FROM matches ORDER BY match_date DESC, created_at DESC`)
}

// ListMatchesByTeam returns the matches where teamID played home or away.
func (s *store) ListMatchesByTeam(ctx context.Context, teamID string) ([]Match, error) {
	return s.queryMatches(ctx, `
		SELECT `+matchColumns+`
		FROM matches
		WHERE home_team_id = ? OR away_team_id = ?
		ORDER BY match_date DESC, created_at DESC`, teamID, teamID)
}

func (s *store) queryMatches(ctx context.Context, query string, args ...any) ([]Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := []Match{}
	for rows.Next() {
		match, err := scanMatch(rows)
		if err != nil {
			log.Error("Failed to scan match row", "error", err)
			continue
		}
		matches = append(matches, *match)
	}
	return matches, rows.Err()
}

func matchArgs(m *Match) []any {
	return []any{
		m.ID, sqlutil.NullString(m.ExternalID), m.MatchDate, m.HomeTeamID, sqlutil.NullString(m.AwayTeamID),
		m.HomeScore, m.AwayScore, sqlutil.NullString(m.Venue), m.MatchType, sqlutil.NullInt(m.Attendance),
		sqlutil.NullString(m.Weather), sqlutil.NullString(m.Referee), m.CreatedAt, m.UpdatedAt,
	}
}

func scanMatch(sc scanner) (*Match, error) {
	var m Match
	var externalID, awayTeamID, venue, weather, referee sql.NullString
	var attendance sql.NullInt64
	err := sc.Scan(&m.ID, &externalID, &m.MatchDate, &m.HomeTeamID, &awayTeamID, &m.HomeScore, &m.AwayScore,
		&venue, &m.MatchType, &attendance, &weather, &referee, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	m.ExternalID = externalID.String
	m.AwayTeamID = awayTeamID.String
	m.Venue = venue.String
	m.Weather = weather.String
	m.Referee = referee.String
	m.Attendance = sqlutil.FromNullInt(attendance)
	return &m, nil
}
