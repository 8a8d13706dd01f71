package club

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// ValidationError collects field level problems so callers can report all of them at once.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[field] = msg
}

// OrNil returns nil when no problems were recorded.
func (e *ValidationError) OrNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// Messages returns "field message" pairs sorted by field.
func (e *ValidationError) Messages() []string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, fmt.Sprintf("%s %s", k, e.Fields[k]))
	}
	return msgs
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Messages(), "; ")
}

// IsValidDate reports whether s is a YYYY-MM-DD date.
func IsValidDate(s string) bool {
	_, err := time.Parse(dateLayout, s)
	return err == nil
}

func (t TeamType) Valid() bool {
	switch t {
	case TeamTypeClub, TeamTypeInternal, TeamTypeExternal:
		return true
	}
	return false
}

func (m MatchType) Valid() bool {
	switch m {
	case MatchTypeInternalFriendly, MatchTypeExternal, MatchTypeTournament:
		return true
	}
	return false
}

// ValidateTeam trims the team's fields, fills defaults and checks them.
func ValidateTeam(t *Team) error {
	v := &ValidationError{}
	t.Name = strings.TrimSpace(t.Name)
	if t.Name == "" {
		v.Add("name", "is required")
	}
	if t.TeamType == "" {
		t.TeamType = TeamTypeInternal
	}
	if !t.TeamType.Valid() {
		v.Add("team_type", "must be one of club, internal, external")
	}
	if t.FoundedYear != nil && (*t.FoundedYear < 1800 || *t.FoundedYear > 2100) {
		v.Add("founded_year", "must be between 1800 and 2100")
	}
	return v.OrNil()
}

// ValidatePlayer trims the player's fields and checks them.
func ValidatePlayer(p *Player) error {
	v := &ValidationError{}
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		v.Add("name", "is required")
	}
	p.DominantFoot = strings.ToLower(strings.TrimSpace(p.DominantFoot))
	switch p.DominantFoot {
	case "", "left", "right", "both":
	default:
		v.Add("dominant_foot", "must be one of left, right, both")
	}
	if p.BirthDate != "" && !IsValidDate(p.BirthDate) {
		v.Add("birth_date", "must be a YYYY-MM-DD date")
	}
	if p.JerseyNumber != nil && (*p.JerseyNumber < 0 || *p.JerseyNumber > 99) {
		v.Add("jersey_number", "must be between 0 and 99")
	}
	if p.HeightCm != nil && *p.HeightCm <= 0 {
		v.Add("height_cm", "must be positive")
	}
	if p.WeightKg != nil && *p.WeightKg <= 0 {
		v.Add("weight_kg", "must be positive")
	}
	return v.OrNil()
}

// ValidateMatch fills the default match type and checks the match.
// Internal friendlies need two distinct teams; external games may omit the away side.
func ValidateMatch(m *Match) error {
	v := &ValidationError{}
	if !IsValidDate(m.MatchDate) {
		v.Add("match_date", "must be a YYYY-MM-DD date")
	}
	if m.HomeTeamID == "" {
		v.Add("home_team_id", "is required")
	}
	if m.MatchType == "" {
		m.MatchType = MatchTypeInternalFriendly
	}
	if !m.MatchType.Valid() {
		v.Add("match_type", "must be one of internal_friendly, external, tournament")
	}
	if m.MatchType == MatchTypeInternalFriendly {
		if m.AwayTeamID == "" {
			v.Add("away_team_id", "is required for internal friendlies")
		} else if m.AwayTeamID == m.HomeTeamID {
			v.Add("away_team_id", "must differ from the home team")
		}
	}
	if m.HomeScore < 0 {
		v.Add("home_score", "must not be negative")
	}
	if m.AwayScore < 0 {
		v.Add("away_score", "must not be negative")
	}
	if m.Attendance != nil && *m.Attendance < 0 {
		v.Add("attendance", "must not be negative")
	}
	return v.OrNil()
}
