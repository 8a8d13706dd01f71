package importer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCSV(t *testing.T) {
	t.Run("header keys are normalised", func(t *testing.T) {
		records, err := ReadCSV(strings.NewReader("\ufeffName, Team_Type ,founded_year\n  Red ,internal,1999\nBlack,club\n"))
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, Record{"name": "Red", "team_type": "internal", "founded_year": "1999"}, records[0])
		assert.Equal(t, Record{"name": "Black", "team_type": "club"}, records[1])
	})

	t.Run("empty input", func(t *testing.T) {
		_, err := ReadCSV(strings.NewReader(""))
		assert.ErrorIs(t, err, ErrNoRecords)
	})

	t.Run("malformed quoting", func(t *testing.T) {
		_, err := ReadCSV(strings.NewReader("name\n\"unterminated\n"))
		assert.Error(t, err)
	})
}

func TestRecordsFromMaps(t *testing.T) {
	records := RecordsFromMaps([]map[string]any{
		{"Name": " Ana ", "jersey_number": float64(9), "height_cm": 171.5, "team_id": nil, "active": true},
	})
	require.Len(t, records, 1)
	assert.Equal(t, Record{"name": "Ana", "jersey_number": "9", "height_cm": "171.5", "team_id": "", "active": "true"}, records[0])
}
