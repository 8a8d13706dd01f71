package club

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationError(t *testing.T) {
	v := &ValidationError{}
	assert.NoError(t, v.OrNil())

	v.Add("name", "is required")
	v.Add("birth_date", "must be a YYYY-MM-DD date")
	err := v.OrNil()
	require.Error(t, err)
	assert.Equal(t, []string{"birth_date must be a YYYY-MM-DD date", "name is required"}, v.Messages())
	assert.Equal(t, "validation failed: birth_date must be a YYYY-MM-DD date; name is required", err.Error())
}

func TestValidateMatch(t *testing.T) {
	tests := map[string]struct {
		match  Match
		fields []string
	}{
		"friendly defaults": {
			match: Match{MatchDate: "2024-09-03", HomeTeamID: "a", AwayTeamID: "b"},
		},
		"external without away team": {
			match: Match{MatchDate: "2024-09-03", HomeTeamID: "a", MatchType: MatchTypeExternal},
		},
		"friendly without away team": {
			match:  Match{MatchDate: "2024-09-03", HomeTeamID: "a"},
			fields: []string{"away_team_id"},
		},
		"bad date and negative score": {
			match:  Match{MatchDate: "03/09/2024", HomeTeamID: "a", AwayTeamID: "b", HomeScore: -1},
			fields: []string{"home_score", "match_date"},
		},
		"unknown type": {
			match:  Match{MatchDate: "2024-09-03", HomeTeamID: "a", MatchType: "cup"},
			fields: []string{"match_type"},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			m := tc.match
			err := ValidateMatch(&m)
			if len(tc.fields) == 0 {
				assert.NoError(t, err)
				assert.NotEmpty(t, m.MatchType)
				return
			}
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			for _, f := range tc.fields {
				assert.Contains(t, verr.Fields, f)
			}
			assert.Len(t, verr.Fields, len(tc.fields))
		})
	}
}
