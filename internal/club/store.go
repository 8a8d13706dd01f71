package club

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mauv0809/touchline/internal/sqlutil"
)

// New creates a new ClubStore.
func New(db *sql.DB, clock clockwork.Clock) ClubStore {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &store{
		db:    db,
		clock: clock,
	}
}

type scanner interface {
	Scan(dest ...any) error
}

const teamColumns = `id, external_id, name, primary_color, secondary_color, team_type, founded_year, description, created_at, updated_at`

// CreateTeam checks and inserts a team, assigning an id and a natural
// external id when none is set.
func (s *store) CreateTeam(ctx context.Context, team *Team) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkTeam(ctx, team, WriteCreate); err != nil {
		return err
	}

	if team.ID == "" {
		team.ID = uuid.NewString()
	}
	now := s.clock.Now().Unix()
	team.CreatedAt, team.UpdatedAt = now, now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO teams (`+teamColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		team.ID, sqlutil.NullString(team.ExternalID), team.Name, sqlutil.NullString(team.PrimaryColor),
		sqlutil.NullString(team.SecondaryColor), team.TeamType, sqlutil.NullInt(team.FoundedYear),
		sqlutil.NullString(team.Description), team.CreatedAt, team.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert team: %w", err)
	}
	log.Debug("Created team", "teamID", team.ID, "name", team.Name)
	return nil
}

// UpdateTeam overwrites the editable fields of an existing team.
func (s *store) UpdateTeam(ctx context.Context, team *Team) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkTeam(ctx, team, WriteUpdate); err != nil {
		return err
	}

	team.UpdatedAt = s.clock.Now().Unix()
	res, err := s.db.ExecContext(ctx, `
		UPDATE teams SET
			external_id = COALESCE(?, external_id),
			name = ?,
			primary_color = ?,
			secondary_color = ?,
			team_type = ?,
			founded_year = ?,
			description = ?,
			updated_at = ?
		WHERE id = ?`,
		sqlutil.NullString(team.ExternalID), team.Name, sqlutil.NullString(team.PrimaryColor),
		sqlutil.NullString(team.SecondaryColor), team.TeamType, sqlutil.NullInt(team.FoundedYear),
		sqlutil.NullString(team.Description), team.UpdatedAt, team.ID)
	if err != nil {
		return fmt.Errorf("failed to update team %s: %w", team.ID, err)
	}
	return expectOneRow(res)
}

func (s *store) GetTeam(ctx context.Context, id string) (*Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `SELECT `+teamColumns+` FROM teams WHERE id = ?`, id)
	team, err := scanTeam(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return team, nil
}

// ListTeams returns all teams ordered by name.
func (s *store) ListTeams(ctx context.Context) ([]Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT `+teamColumns+` FROM teams ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	teams := []Team{}
	for rows.Next() {
		team, err := scanTeam(rows)
		if err != nil {
			log.Error("Failed to scan team row", "error", err)
			continue
		}
		teams = append(teams, *team)
	}
	return teams, rows.Err()
}

func scanTeam(sc scanner) (*Team, error) {
	var t Team
	var externalID, primary, secondary, description sql.NullString
	var founded sql.NullInt64
	err := sc.Scan(&t.ID, &externalID, &t.Name, &primary, &secondary, &t.TeamType, &founded,
		&description, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	t.ExternalID = externalID.String
	t.PrimaryColor = primary.String
	t.SecondaryColor = secondary.String
	t.Description = description.String
	t.FoundedYear = sqlutil.FromNullInt(founded)
	return &t, nil
}

const playerColumns = `id, external_id, name, position, team_id, jersey_number, height_cm, weight_kg, dominant_foot, birth_date, created_at, updated_at`

// CreatePlayer checks and inserts a player, assigning an id and a natural
// external id when none is set. An unknown team is a validation error.
func (s *store) CreatePlayer(ctx context.Context, player *Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkPlayer(ctx, player, WriteCreate); err != nil {
		return err
	}

	if player.ID == "" {
		player.ID = uuid.NewString()
	}
	now := s.clock.Now().Unix()
	player.CreatedAt, player.UpdatedAt = now, now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO players (`+playerColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, playerArgs(player)...)
	if err != nil {
		return fmt.Errorf("failed to insert player: %w", err)
	}
	log.Debug("Created player", "playerID", player.ID, "name", player.Name)
	return nil
}

func (s *store) UpdatePlayer(ctx context.Context, player *Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkPlayer(ctx, player, WriteUpdate); err != nil {
		return err
	}

	player.UpdatedAt = s.clock.Now().Unix()
	res, err := s.db.ExecContext(ctx, `
		UPDATE players SET
			external_id = COALESCE(?, external_id),
			name = ?,
			position = ?,
			team_id = ?,
			jersey_number = ?,
			height_cm = ?,
			weight_kg = ?,
			dominant_foot = ?,
			birth_date = ?,
			updated_at = ?
		WHERE id = ?`,
		sqlutil.NullString(player.ExternalID), player.Name, sqlutil.NullString(player.Position),
		sqlutil.NullString(player.TeamID), sqlutil.NullInt(player.JerseyNumber),
		sqlutil.NullFloat(player.HeightCm), sqlutil.NullFloat(player.WeightKg),
		sqlutil.NullString(player.DominantFoot), sqlutil.NullString(player.BirthDate),
		player.UpdatedAt, player.ID)
	if err != nil {
		return fmt.Errorf("failed to update player %s: %w", player.ID, err)
	}
	return expectOneRow(res)
}

func (s *store) GetPlayer(ctx context.Context, id string) (*Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `SELECT `+playerColumns+` FROM players WHERE id = ?`, id)
	player, err := scanPlayer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return player, nil
}

// ListPlayers returns all players ordered by name.
func (s *store) ListPlayers(ctx context.Context) ([]Player, error) {
	return s.queryPlayers(ctx, `SELECT `+playerColumns+` FROM players ORDER BY name`)
}

// ListPlayersByTeam returns the players whose default team is teamID.
func (s *store) ListPlayersByTeam(ctx context.Context, teamID string) ([]Player, error) {
	return s.queryPlayers(ctx, `SELECT `+playerColumns+` FROM players WHERE team_id = ? ORDER BY jersey_number, name`, teamID)
}

// FindPlayerByName does a case-insensitive partial match and returns the closest hit.
func (s *store) FindPlayerByName(ctx context.Context, name string) (*Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT `+playerColumns+`
		FROM players
		WHERE name LIKE ? COLLATE NOCASE
		ORDER BY length(name), name
		LIMIT 1`, "%"+name+"%")
	player, err := scanPlayer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return player, nil
}

// PlayerTeams maps each of the given players to their default team.
// Players without a default team are left out.
func (s *store) PlayerTeams(ctx context.Context, playerIDs []string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	teams := make(map[string]string, len(playerIDs))
	for start := 0; start < len(playerIDs); start += lookupChunk {
		end := min(start+lookupChunk, len(playerIDs))
		chunk := playerIDs[start:end]
		rows, err := s.db.QueryContext(ctx,
			`SELECT id, team_id FROM players WHERE team_id IS NOT NULL AND id IN (`+sqlutil.Placeholders(len(chunk))+`)`,
			sqlutil.ToAnySlice(chunk)...)
		if err != nil {
			return nil, err
		}
		if err := collectPairs(rows, teams); err != nil {
			return nil, err
		}
	}
	return teams, nil
}

func (s *store) queryPlayers(ctx context.Context, query string, args ...any) ([]Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	players := []Player{}
	for rows.Next() {
		player, err := scanPlayer(rows)
		if err != nil {
			log.Error("Failed to scan player row", "error", err)
			continue
		}
		players = append(players, *player)
	}
	return players, rows.Err()
}

func playerArgs(p *Player) []any {
	return []any{
		p.ID, sqlutil.NullString(p.ExternalID), p.Name, sqlutil.NullString(p.Position),
		sqlutil.NullString(p.TeamID), sqlutil.NullInt(p.JerseyNumber), sqlutil.NullFloat(p.HeightCm),
		sqlutil.NullFloat(p.WeightKg), sqlutil.NullString(p.DominantFoot), sqlutil.NullString(p.BirthDate),
		p.CreatedAt, p.UpdatedAt,
	}
}

func scanPlayer(sc scanner) (*Player, error) {
	var p Player
	var externalID, position, teamID, foot, birthDate sql.NullString
	var jersey sql.NullInt64
	var height, weight sql.NullFloat64
	err := sc.Scan(&p.ID, &externalID, &p.Name, &position, &teamID, &jersey, &height, &weight,
		&foot, &birthDate, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.ExternalID = externalID.String
	p.Position = position.String
	p.TeamID = teamID.String
	p.DominantFoot = foot.String
	p.BirthDate = birthDate.String
	p.JerseyNumber = sqlutil.FromNullInt(jersey)
	p.HeightCm = sqlutil.FromNullFloat(height)
	p.WeightKg = sqlutil.FromNullFloat(weight)
	return &p, nil
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
