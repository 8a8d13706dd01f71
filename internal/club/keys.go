package club

import "strings"

// Rows created without an external_id get a natural key, both from the admin
// API and from imports, so that re-importing a row finds the stored one.

// TeamKey is the natural key of a team: its name.
func TeamKey(name string) string {
	return naturalKey("team", name)
}

// PlayerKey is the natural key of a player: name and default team, so that
// namesakes in different teams stay apart.
func PlayerKey(name, teamID string) string {
	if teamID == "" {
		return naturalKey("player", name)
	}
	return naturalKey("player", name, teamID)
}

// MatchKey is the natural key of a match: date and both team ids.
func MatchKey(date, homeTeamID, awayTeamID string) string {
	return naturalKey("match", date, homeTeamID, awayTeamID)
}

func naturalKey(parts ...string) string {
	for i, p := range parts {
		parts[i] = strings.ToLower(strings.TrimSpace(p))
	}
	return strings.Join(parts, ":")
}
