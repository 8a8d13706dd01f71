package sqlutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "", Placeholders(0))
	assert.Equal(t, "?", Placeholders(1))
	assert.Equal(t, "?, ?, ?", Placeholders(3))
}

func TestNullConversions(t *testing.T) {
	assert.False(t, NullString("").Valid)
	assert.Equal(t, "x", NullString("x").String)

	n := 7
	assert.Equal(t, int64(7), NullInt(&n).Int64)
	assert.Nil(t, FromNullInt(NullInt(nil)))
	assert.Equal(t, 7, *FromNullInt(NullInt(&n)))

	f := 1.5
	assert.Equal(t, 1.5, *FromNullFloat(NullFloat(&f)))
}
