package club

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// WriteKind tells the checks whether a row is about to be created or updated.
type WriteKind int

const (
	WriteCreate WriteKind = iota
	WriteUpdate
)

// CheckTeam runs every check CreateTeam or UpdateTeam would run, without writing.
func (s *store) CheckTeam(ctx context.Context, team *Team, kind WriteKind) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.checkTeam(ctx, team, kind)
}

// CheckPlayer runs every check CreatePlayer or UpdatePlayer would run, without writing.
func (s *store) CheckPlayer(ctx context.Context, player *Player, kind WriteKind) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.checkPlayer(ctx, player, kind)
}

// CheckMatch runs every check CreateMatch or UpdateMatch would run, without writing.
func (s *store) CheckMatch(ctx context.Context, match *Match, kind WriteKind) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.checkMatch(ctx, match, kind)
}

// The check* helpers expect s.mu to be held.

func (s *store) checkTeam(ctx context.Context, team *Team, kind WriteKind) error {
	if err := ValidateTeam(team); err != nil {
		return err
	}
	if kind == WriteCreate && team.ExternalID == "" {
		team.ExternalID = TeamKey(team.Name)
	}
	v := &ValidationError{}
	if err := s.checkRow(ctx, v, "teams", team.ID, team.ExternalID, kind); err != nil {
		return err
	}
	return v.OrNil()
}

func (s *store) checkPlayer(ctx context.Context, player *Player, kind WriteKind) error {
	if err := ValidatePlayer(player); err != nil {
		return err
	}
	v := &ValidationError{}
	if err := s.requireTeam(ctx, v, "team_id", player.TeamID); err != nil {
		return err
	}
	if kind == WriteCreate && player.ExternalID == "" {
		player.ExternalID = PlayerKey(player.Name, player.TeamID)
	}
	if err := s.checkRow(ctx, v, "players", player.ID, player.ExternalID, kind); err != nil {
		return err
	}
	return v.OrNil()
}

func (s *store) checkMatch(ctx context.Context, match *Match, kind WriteKind) error {
	if err := ValidateMatch(match); err != nil {
		return err
	}
	v := &ValidationError{}
	if err := s.requireTeam(ctx, v, "home_team_id", match.HomeTeamID); err != nil {
		return err
	}
	if err := s.requireTeam(ctx, v, "away_team_id", match.AwayTeamID); err != nil {
		return err
	}
	if kind == WriteCreate && match.ExternalID == "" {
		match.ExternalID = MatchKey(match.MatchDate, match.HomeTeamID, match.AwayTeamID)
	}
	if err := s.checkRow(ctx, v, "matches", match.ID, match.ExternalID, kind); err != nil {
		return err
	}
	return v.OrNil()
}

// requireTeam records a problem when a non-empty team id does not exist.
func (s *store) requireTeam(ctx context.Context, v *ValidationError, field, teamID string) error {
	if teamID == "" {
		return nil
	}
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM teams WHERE id = ?`, teamID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		v.Add(field, fmt.Sprintf("team %q not found", teamID))
		return nil
	}
	return err
}

// checkRow makes sure an updated row exists, a created row's id is free and
// externalID is not taken by another row of the table.
func (s *store) checkRow(ctx context.Context, v *ValidationError, table, id, externalID string, kind WriteKind) error {
	if kind == WriteUpdate || id != "" {
		var one int
		err := s.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT 1 FROM %s WHERE id = ?`, table), id).Scan(&one)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			if kind == WriteUpdate {
				return ErrNotFound
			}
		case err != nil:
			return err
		case kind == WriteCreate:
			v.Add("id", fmt.Sprintf("%q already exists", id))
		}
	}
	if externalID == "" {
		return nil
	}
	var owner string
	err := s.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT id FROM %s WHERE external_id = ?`, table), externalID).Scan(&owner)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil
	case err != nil:
		return err
	}
	if owner != id {
		v.Add("external_id", fmt.Sprintf("%q is already used by %s", externalID, owner))
	}
	return nil
}
