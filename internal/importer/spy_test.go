package importer_test

import (
	"context"
	"sync"

	"github.com/mauv0809/touchline/internal/club"
	"github.com/mauv0809/touchline/internal/matchsheet"
)

// spyStore records write calls and answers lookups from fixed maps.
type spyStore struct {
	mu sync.Mutex

	external map[string]map[string]string
	existing map[string]map[string]bool
	defaults map[string]string

	TeamBatches       [][]club.Team
	PlayerBatches     [][]club.Player
	MatchBatches      [][]club.Match
	AssignmentBatches [][]matchsheet.Assignment
	StatBatches       [][]matchsheet.Stat
	Modes             []club.ConflictMode
}

func newSpyStore() *spyStore {
	return &spyStore{
		external: map[string]map[string]string{},
		existing: map[string]map[string]bool{},
		defaults: map[string]string{},
	}
}

func (s *spyStore) writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.TeamBatches) + len(s.PlayerBatches) + len(s.MatchBatches) + len(s.AssignmentBatches) + len(s.StatBatches)
}

func (s *spyStore) UpsertTeams(_ context.Context, teams []club.Team, mode club.ConflictMode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.TeamBatches = append(s.TeamBatches, append([]club.Team(nil), teams...))
	s.Modes = append(s.Modes, mode)
	return nil
}

func (s *spyStore) UpsertPlayers(_ context.Context, players []club.Player, mode club.ConflictMode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.PlayerBatches = append(s.PlayerBatches, append([]club.Player(nil), players...))
	s.Modes = append(s.Modes, mode)
	return nil
}

func (s *spyStore) UpsertMatches(_ context.Context, matches []club.Match, mode club.ConflictMode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.MatchBatches = append(s.MatchBatches, append([]club.Match(nil), matches...))
	s.Modes = append(s.Modes, mode)
	return nil
}

func (s *spyStore) UpsertAssignments(_ context.Context, rows []matchsheet.Assignment, mode club.ConflictMode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.AssignmentBatches = append(s.AssignmentBatches, append([]matchsheet.Assignment(nil), rows...))
	s.Modes = append(s.Modes, mode)
	return nil
}

func (s *spyStore) UpsertStats(_ context.Context, rows []matchsheet.Stat, mode club.ConflictMode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.StatBatches = append(s.StatBatches, append([]matchsheet.Stat(nil), rows...))
	s.Modes = append(s.Modes, mode)
	return nil
}

func (s *spyStore) ResolveExternalIDs(_ context.Context, table string, externalIDs []string) (map[string]string, error) {
	out := map[string]string{}
	for _, ext := range externalIDs {
		if id, ok := s.external[table][ext]; ok {
			out[ext] = id
		}
	}
	return out, nil
}

func (s *spyStore) ExistingIDs(_ context.Context, table string, ids []string) (map[string]bool, error) {
	out := map[string]bool{}
	for _, id := range ids {
		if s.existing[table][id] {
			out[id] = true
		}
	}
	return out, nil
}

func (s *spyStore) PlayerTeams(_ context.Context, playerIDs []string) (map[string]string, error) {
	out := map[string]string{}
	for _, id := range playerIDs {
		if team, ok := s.defaults[id]; ok {
			out[id] = team
		}
	}
	return out, nil
}
