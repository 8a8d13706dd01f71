package club

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/mauv0809/touchline/internal/sqlutil"
)

// lookupChunk bounds the number of parameters in IN (...) lookups.
const lookupChunk = 500

var resolvableTables = map[string]bool{
	"teams":   true,
	"players": true,
	"matches": true,
}

// conflictClause builds the ON CONFLICT tail for a batch insert keyed by external_id.
func conflictClause(mode ConflictMode, updateColumns []string) string {
	if mode == ConflictIgnore {
		return " ON CONFLICT(external_id) DO NOTHING"
	}
	sets := make([]string, 0, len(updateColumns)+1)
	for _, c := range updateColumns {
		sets = append(sets, fmt.Sprintf("%s = excluded.%s", c, c))
	}
	sets = append(sets, "updated_at = excluded.updated_at")
	return " ON CONFLICT(external_id) DO UPDATE SET " + strings.Join(sets, ", ")
}

// execBatch runs a single multi-row INSERT inside a transaction.
func (s *store) execBatch(ctx context.Context, table, columns string, width int, args [][]any, tail string) error {
	if len(args) == 0 {
		return nil
	}
	rowPlaceholder := "(" + sqlutil.Placeholders(width) + ")"
	values := make([]string, len(args))
	flat := make([]any, 0, len(args)*width)
	for i, a := range args {
		values[i] = rowPlaceholder
		flat = append(flat, a...)
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s%s", table, columns, strings.Join(values, ", "), tail)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, query, flat...); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to upsert %d %s: %w", len(args), table, err)
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	log.Debug("Upserted batch", "table", table, "rows", len(args))
	return nil
}

// UpsertTeams writes a batch of teams keyed by external_id.
func (s *store) UpsertTeams(ctx context.Context, teams []Team, mode ConflictMode) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now().Unix()
	args := make([][]any, len(teams))
	for i := range teams {
		t := &teams[i]
		if t.ID == "" {
			t.ID = uuid.NewString()
		}
		if t.TeamType == "" {
			t.TeamType = TeamTypeInternal
		}
		t.CreatedAt, t.UpdatedAt = now, now
		args[i] = []any{
			t.ID, sqlutil.NullString(t.ExternalID), t.Name, sqlutil.NullString(t.PrimaryColor),
			sqlutil.NullString(t.SecondaryColor), t.TeamType, sqlutil.NullInt(t.FoundedYear),
			sqlutil.NullString(t.Description), t.CreatedAt, t.UpdatedAt,
		}
	}
	tail := conflictClause(mode, []string{"name", "primary_color", "secondary_color", "team_type", "founded_year", "description"})
	return s.execBatch(ctx, "teams", teamColumns, 10, args, tail)
}

// UpsertPlayers writes a batch of players keyed by external_id.
func (s *store) UpsertPlayers(ctx context.Context, players []Player, mode ConflictMode) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now().Unix()
	args := make([][]any, len(players))
	for i := range players {
		p := &players[i]
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		p.CreatedAt, p.UpdatedAt = now, now
		args[i] = playerArgs(p)
	}
	tail := conflictClause(mode, []string{"name", "position", "team_id", "jersey_number", "height_cm", "weight_kg", "dominant_foot", "birth_date"})
	return s.execBatch(ctx, "players", playerColumns, 12, args, tail)
}

// UpsertMatches writes a batch of matches keyed by external_id.
func (s *store) UpsertMatches(ctx context.Context, matches []Match, mode ConflictMode) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now().Unix()
	args := make([][]any, len(matches))
	for i := range matches {
		m := &matches[i]
		if m.ID == "" {
			m.ID = uuid.NewString()
		}
		if m.MatchType == "" {
			m.MatchType = MatchTypeInternalFriendly
		}
		m.CreatedAt, m.UpdatedAt = now, now
		args[i] = matchArgs(m)
	}
	tail := conflictClause(mode, []string{"match_date", "home_team_id", "away_team_id", "home_score", "away_score", "venue", "match_type", "attendance", "weather", "referee"})
	return s.execBatch(ctx, "matches", matchColumns, 14, args, tail)
}

// ResolveExternalIDs maps external ids of the given table to internal ids.
// Unknown external ids are absent from the result.
func (s *store) ResolveExternalIDs(ctx context.Context, table string, externalIDs []string) (map[string]string, error) {
	if !resolvableTables[table] {
		return nil, fmt.Errorf("cannot resolve external ids for table %q", table)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	resolved := make(map[string]string, len(externalIDs))
	for start := 0; start < len(externalIDs); start += lookupChunk {
		end := min(start+lookupChunk, len(externalIDs))
		chunk := externalIDs[start:end]
		rows, err := s.db.QueryContext(ctx,
			fmt.Sprintf("SELECT external_id, id FROM %s WHERE external_id IN (%s)", table, sqlutil.Placeholders(len(chunk))),
			sqlutil.ToAnySlice(chunk)...)
		if err != nil {
			return nil, err
		}
		if err := collectPairs(rows, resolved); err != nil {
			return nil, err
		}
	}
	return resolved, nil
}

// ExistingIDs reports which of ids are primary keys of the given table.
func (s *store) ExistingIDs(ctx context.Context, table string, ids []string) (map[string]bool, error) {
	if !resolvableTables[table] {
		return nil, fmt.Errorf("cannot look up ids in table %q", table)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	found := make(map[string]bool, len(ids))
	for start := 0; start < len(ids); start += lookupChunk {
		end := min(start+lookupChunk, len(ids))
		chunk := ids[start:end]
		rows, err := s.db.QueryContext(ctx,
			fmt.Sprintf("SELECT id FROM %s WHERE id IN (%s)", table, sqlutil.Placeholders(len(chunk))),
			sqlutil.ToAnySlice(chunk)...)
		if err != nil {
			return nil, err
		}
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return nil, err
			}
			found[id] = true
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, err
		}
	}
	return found, nil
}

func collectPairs(rows *sql.Rows, into map[string]string) error {
	defer rows.Close()
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return err
		}
		into[k] = v
	}
	return rows.Err()
}
