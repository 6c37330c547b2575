package giveaway

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	durationToken   = regexp.MustCompile(`(\d+)\s*([smhdw])`)
	durationGrammar = regexp.MustCompile(`^(\d+\s*[smhdw]\s*)+$`)
)

var unitSeconds = map[string]int64{
	"s": 1,
	"m": 60,
	"h": 3600,
	"d": 86400,
	"w": 604800,
}

// ParseDuration accepts a bare second count ("90") or concatenated unit tokens
// ("1m30s", "2h 15m", "1W"). Matching is case-insensitive.
func ParseDuration(input string) (time.Duration, error) {
	value := strings.ToLower(strings.TrimSpace(input))
	if value == "" {
		return 0, ErrInvalidDuration
	}

	if isDigits(value) {
		seconds, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, input)
		}
		return secondsToDuration(seconds, input)
	}

	if !durationGrammar.MatchString(value) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, input)
	}

	var total int64
	for _, match := range durationToken.FindAllStringSubmatch(value, -1) {
		amount, err := strconv.ParseInt(match[1], 10, 64)
		if err != nil || amount > int64(maxDuration/time.Second) {
			return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, input)
		}
		total += amount * unitSeconds[match[2]]
	}
	return secondsToDuration(total, input)
}

func secondsToDuration(seconds int64, input string) (time.Duration, error) {
	if seconds < 0 || seconds > int64(maxDuration/time.Second) {
		return 0, fmt.Errorf("%w: %q out of range", ErrInvalidDuration, input)
	}
	return time.Duration(seconds) * time.Second, nil
}

// maxDuration keeps end times well inside what the platform can render.
const maxDuration = 10 * 365 * 24 * time.Hour

func isDigits(value string) bool {
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return value != ""
}

// FormatDuration renders short durations in words and longer ones as compact units.
func FormatDuration(d time.Duration) string {
	seconds := int64(d / time.Second)
	if seconds < 60 {
		if seconds == 1 {
			return "1 second"
		}
		return fmt.Sprintf("%d seconds", seconds)
	}

	parts := make([]string, 0, 5)
	for _, unit := range []struct {
		suffix string
		size   int64
	}{{"w", 604800}, {"d", 86400}, {"h", 3600}, {"m", 60}} {
		if seconds >= unit.size {
			parts = append(parts, fmt.Sprintf("%d%s", seconds/unit.size, unit.suffix))
			seconds %= unit.size
		}
	}
	if seconds > 0 {
		parts = append(parts, fmt.Sprintf("%ds", seconds))
	}
	return strings.Join(parts, " ")
}
