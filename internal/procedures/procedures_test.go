package procedures

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildQuery(t *testing.T) {
	t.Run("named arguments", func(t *testing.T) {
		query, values, err := BuildQuery(PlayerCombinations, []NamedArg{{"p_team_id", "t1"}, {"p_min_matches", 3}})
		require.NoError(t, err)
		assert.Equal(t, "SELECT coalesce(json_agg(t), '[]'::json) FROM get_player_combinations(p_team_id => $1, p_min_matches => $2) t", query)
		assert.Equal(t, []any{"t1", 3}, values)
	})

	t.Run("no arguments", func(t *testing.T) {
		query, values, err := BuildQuery(ClubTeamStatistics, nil)
		require.NoError(t, err)
		assert.Equal(t, "SELECT coalesce(json_agg(t), '[]'::json) FROM get_club_team_statistics() t", query)
		assert.Empty(t, values)
	})

	t.Run("unknown procedure", func(t *testing.T) {
		_, _, err := BuildQuery("drop_everything", nil)
		assert.ErrorIs(t, err, ErrUnknownProcedure)
	})

	t.Run("argument names are identifiers", func(t *testing.T) {
		_, _, err := BuildQuery(PlayerAllTeamsImpact, []NamedArg{{"p_id); --", "x"}})
		assert.Error(t, err)
	})
}

func TestUnavailable(t *testing.T) {
	var out []map[string]any
	err := Unavailable().Call(context.Background(), ClubTeamStatistics, nil, &out)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestMock(t *testing.T) {
	m := NewMock()
	m.Responses[ClubTeamStatistics] = `[{"team_name":"Red","wins":3}]`

	var out []struct {
		TeamName string `json:"team_name"`
		Wins     int    `json:"wins"`
	}
	require.NoError(t, m.Call(context.Background(), ClubTeamStatistics, nil, &out))
	require.Len(t, out, 1)
	assert.Equal(t, "Red", out[0].TeamName)
	assert.Len(t, m.CallsTo(ClubTeamStatistics), 1)

	assert.ErrorIs(t, m.Call(context.Background(), "nope", nil, &out), ErrUnknownProcedure)
}
