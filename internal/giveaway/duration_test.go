package giveaway

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDuration(t *testing.T) {
	cases := map[string]time.Duration{
		"90":       90 * time.Second,
		"1m30s":    90 * time.Second,
		"2h":       2 * time.Hour,
		"2H":       2 * time.Hour,
		"1w":       7 * 24 * time.Hour,
		"1d":       24 * time.Hour,
		"5m 30s":   5*time.Minute + 30*time.Second,
		" 10 s ":   10 * time.Second,
		"0":        0,
		"1h1h":     2 * time.Hour,
		"1D12H":    36 * time.Hour,
		"30s":      30 * time.Second,
		"1w2d3h4m": 7*24*time.Hour + 2*24*time.Hour + 3*time.Hour + 4*time.Minute,
	}
	for input, want := range cases {
		got, err := ParseDuration(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}
}

func TestParseDurationInvalid(t *testing.T) {
	for _, input := range []string{"", "   ", "abc", "5x", "m5", "5m abc", "-5s", "1.5h", "99999999999999999999"} {
		_, err := ParseDuration(input)
		assert.ErrorIs(t, err, ErrInvalidDuration, input)
	}
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "1 second", FormatDuration(time.Second))
	assert.Equal(t, "45 seconds", FormatDuration(45*time.Second))
	assert.Equal(t, "1m", FormatDuration(time.Minute))
	assert.Equal(t, "1h 30m", FormatDuration(90*time.Minute))
	assert.Equal(t, "1w 1d 1h 1m 1s", FormatDuration(8*24*time.Hour+time.Hour+time.Minute+time.Second))
}
