package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDay(t *testing.T) {
	t.Parallel()

	d, err := ParseTimeOfDay(" 08:05 ")
	require.NoError(t, err)
	assert.Equal(t, TimeOfDay{Hour: 8, Minute: 5}, d)
	assert.Equal(t, "08:05", d.String())

	for raw, want := range map[string]string{
		"8":     "want HH:MM",
		"24:00": "invalid hour",
		"xx:10": "invalid hour",
		"07:60": "invalid minute",
	} {
		_, err := ParseTimeOfDay(raw)
		require.Error(t, err, raw)
		assert.Contains(t, err.Error(), want)
	}
}

func TestTimeOfDayOnKeepsLocation(t *testing.T) {
	t.Parallel()

	loc, err := time.LoadLocation("Asia/Bangkok")
	require.NoError(t, err)

	ref := time.Date(2026, 10, 14, 23, 59, 0, 0, loc)
	at := TimeOfDay{Hour: 8}.On(ref)
	assert.Equal(t, time.Date(2026, 10, 14, 8, 0, 0, 0, loc), at)
	assert.Equal(t, loc, at.Location())
}
