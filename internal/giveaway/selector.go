package giveaway

import (
	"crypto/rand"
	"math/big"
	"regexp"
)

var drawRandomInt = secureRandomInt

func secureRandomInt(max int) (int, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
	if err != nil {
		return 0, err
	}
	return int(n.Int64()), nil
}

// SelectWinners draws min(count, |participants - exclude|) distinct ids uniformly
// at random. An empty pool yields an empty slice.
func SelectWinners(participants Set, count int, exclude Set) ([]string, error) {
	pool := make([]string, 0, len(participants))
	for _, id := range participants.Sorted() {
		if exclude.Has(id) {
			continue
		}
		pool = append(pool, id)
	}

	actual := count
	if actual > len(pool) {
		actual = len(pool)
	}
	if actual <= 0 {
		return []string{}, nil
	}

	for i := 0; i < actual; i++ {
		j, err := drawRandomInt(len(pool) - i)
		if err != nil {
			return nil, err
		}
		j += i
		pool[i], pool[j] = pool[j], pool[i]
	}
	return append([]string(nil), pool[:actual]...), nil
}

var mentionPattern = regexp.MustCompile(`<@!?(\d+)>`)

// ParseMentions extracts user ids from <@id> and <@!id> mentions in order of
// first appearance.
func ParseMentions(text string) []string {
	matches := mentionPattern.FindAllStringSubmatch(text, -1)
	out := make([]string, 0, len(matches))
	seen := make(Set, len(matches))
	for _, match := range matches {
		if seen.Has(match[1]) {
			continue
		}
		seen[match[1]] = struct{}{}
		out = append(out, match[1])
	}
	return out
}
