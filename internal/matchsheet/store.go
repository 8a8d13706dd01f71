package matchsheet

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mauv0809/touchline/internal/club"
	"github.com/mauv0809/touchline/internal/sqlutil"
)

// NewStore creates a new Store backed by db.
func NewStore(db *sql.DB, clock clockwork.Clock) Store {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &store{db: db, clock: clock}
}

func (s *store) ListAssignments(ctx context.Context, matchID string) ([]Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT player_id, match_id, team_id, created_at
		FROM player_match_assignments
		WHERE match_id = ?
		ORDER BY created_at, player_id`, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	assignments := []Assignment{}
	for rows.Next() {
		var a Assignment
		if err := rows.Scan(&a.PlayerID, &a.MatchID, &a.TeamID, &a.CreatedAt); err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

// ReplaceAssignments deletes every assignment of the match and inserts rows
// in one transaction. It is a full replace, never a diff.
func (s *store) ReplaceAssignments(ctx context.Context, matchID string, rows []Assignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM player_match_assignments WHERE match_id = ?`, matchID); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to clear assignments for match %s: %w", matchID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO player_match_assignments (player_id, match_id, team_id, created_at)
		VALUES (?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	now := s.clock.Now().Unix()
	for _, a := range rows {
		if _, err := stmt.ExecContext(ctx, a.PlayerID, matchID, a.TeamID, now); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert assignment for player %s: %w", a.PlayerID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	log.Debug("Replaced assignments", "matchID", matchID, "count", len(rows))
	return nil
}

// SetAssignment inserts or moves a single player's assignment.
func (s *store) SetAssignment(ctx context.Context, a Assignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO player_match_assignments (player_id, match_id, team_id, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(player_id, match_id) DO UPDATE SET team_id = excluded.team_id`,
		a.PlayerID, a.MatchID, a.TeamID, s.clock.Now().Unix())
	return err
}

func (s *store) DeleteAssignment(ctx context.Context, matchID, playerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `DELETE FROM player_match_assignments WHERE match_id = ? AND player_id = ?`, matchID, playerID)
	return err
}

// UpsertAssignments writes a batch of assignments in a single statement.
func (s *store) UpsertAssignments(ctx context.Context, rows []Assignment, mode club.ConflictMode) error {
	if len(rows) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now().Unix()
	values := make([]string, len(rows))
	args := make([]any, 0, len(rows)*4)
	for i, a := range rows {
		values[i] = "(?, ?, ?, ?)"
		args = append(args, a.PlayerID, a.MatchID, a.TeamID, now)
	}
	tail := " ON CONFLICT(player_id, match_id) DO UPDATE SET team_id = excluded.team_id"
	if mode == club.ConflictIgnore {
		tail = " ON CONFLICT(player_id, match_id) DO NOTHING"
	}
	query := `INSERT INTO player_match_assignments (player_id, match_id, team_id, created_at) VALUES ` +
		strings.Join(values, ", ") + tail
	return s.execInTx(ctx, query, args)
}

const statColumns = `id, player_id, match_id, goals, assists, own_goals, minutes_played, shots, shots_on_target, yellow_cards, red_cards, xg, tackles, interceptions`

func (s *store) ListStats(ctx context.Context, matchID string) ([]Stat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT `+statColumns+` FROM player_match_stats WHERE match_id = ?`, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := []Stat{}
	for rows.Next() {
		var st Stat
		err := rows.Scan(&st.ID, &st.PlayerID, &st.MatchID, &st.Goals, &st.Assists, &st.OwnGoals, &st.MinutesPlayed,
			&st.Shots, &st.ShotsOnTarget, &st.YellowCards, &st.RedCards, &st.XG, &st.Tackles, &st.Interceptions)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stats of match %s: %w", matchID, err)
		}
		stats = append(stats, st)
	}
	return stats, rows.Err()
}

// ListStatsByPlayer returns a player's match lines, most recent first. The team
// is the one the player was assigned to for that match, if any.
func (s *store) ListStatsByPlayer(ctx context.Context, playerID string) ([]PlayerMatchLine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT s.match_id, m.match_date, COALESCE(a.team_id, ''), s.goals, s.assists, s.own_goals, s.minutes_played
		FROM player_match_stats s
		JOIN matches m ON m.id = s.match_id
		LEFT JOIN player_match_assignments a ON a.player_id = s.player_id AND a.match_id = s.match_id
		WHERE s.player_id = ?
		ORDER BY m.match_date DESC`, playerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lines := []PlayerMatchLine{}
	for rows.Next() {
		var l PlayerMatchLine
		if err := rows.Scan(&l.MatchID, &l.MatchDate, &l.TeamID, &l.Goals, &l.Assists, &l.OwnGoals, &l.MinutesPlayed); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

// UpsertStats writes a batch of full stat rows keyed by (player_id, match_id).
func (s *store) UpsertStats(ctx context.Context, rows []Stat, mode club.ConflictMode) error {
	if len(rows) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	values := make([]string, len(rows))
	args := make([]any, 0, len(rows)*14)
	row := "(" + sqlutil.Placeholders(14) + ")"
	for i := range rows {
		st := &rows[i]
		if st.ID == "" {
			st.ID = uuid.NewString()
		}
		values[i] = row
		args = append(args, st.ID, st.PlayerID, st.MatchID, st.Goals, st.Assists, st.OwnGoals, st.MinutesPlayed,
			st.Shots, st.ShotsOnTarget, st.YellowCards, st.RedCards, st.XG, st.Tackles, st.Interceptions)
	}
	tail := ` ON CONFLICT(player_id, match_id) DO UPDATE SET
		goals = excluded.goals,
		assists = excluded.assists,
		own_goals = excluded.own_goals,
		minutes_played = excluded.minutes_played,
		shots = excluded.shots,
		shots_on_target = excluded.shots_on_target,
		yellow_cards = excluded.yellow_cards,
		red_cards = excluded.red_cards,
		xg = excluded.xg,
		tackles = excluded.tackles,
		interceptions = excluded.interceptions`
	if mode == club.ConflictIgnore {
		tail = " ON CONFLICT(player_id, match_id) DO NOTHING"
	}
	query := `INSERT INTO player_match_stats (` + statColumns + `) VALUES ` + strings.Join(values, ", ") + tail
	return s.execInTx(ctx, query, args)
}

// SaveScoring writes goals, assists and own goals from the admin form.
// New rows start with zero minutes; other columns of existing rows are kept.
func (s *store) SaveScoring(ctx context.Context, rows []Stat) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO player_match_stats (id, player_id, match_id, goals, assists, own_goals, minutes_played)
		VALUES (?, ?, ?, ?, ?, ?, 0)
		ON CONFLICT(player_id, match_id) DO UPDATE SET
			goals = excluded.goals,
			assists = excluded.assists,
			own_goals = excluded.own_goals`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, st := range rows {
		if _, err := stmt.ExecContext(ctx, uuid.NewString(), st.PlayerID, st.MatchID, st.Goals, st.Assists, st.OwnGoals); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to save stats for player %s: %w", st.PlayerID, err)
		}
	}
	return tx.Commit()
}

func (s *store) execInTx(ctx context.Context, query string, args []any) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}
