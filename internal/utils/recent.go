package utils

import (
	"sync"
	"time"
)

type Join struct {
	UserID string
	At     time.Time
}

// RecentJoins keeps a per-guild sliding window of member joins.
type RecentJoins struct {
	mu     sync.Mutex
	window time.Duration
	max    int
	guilds map[string][]Join
}

func NewRecentJoins(window time.Duration, max int) *RecentJoins {
	return &RecentJoins{window: window, max: max, guilds: make(map[string][]Join)}
}

// Add records a join and returns how many joins are inside the window.
func (r *RecentJoins) Add(guildID, userID string, now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	joins := append(r.pruneLocked(guildID, now), Join{UserID: userID, At: now})
	if r.max > 0 && len(joins) > r.max {
		joins = joins[len(joins)-r.max:]
	}
	r.guilds[guildID] = joins
	return len(joins)
}

// List returns the joins inside the window, newest first.
func (r *RecentJoins) List(guildID string, now time.Time) []Join {
	r.mu.Lock()
	defer r.mu.Unlock()

	joins := r.pruneLocked(guildID, now)
	out := make([]Join, len(joins))
	for i, join := range joins {
		out[len(joins)-1-i] = join
	}
	return out
}

func (r *RecentJoins) pruneLocked(guildID string, now time.Time) []Join {
	joins := r.guilds[guildID]
	cutoff := now.Add(-r.window)
	idx := 0
	for _, join := range joins {
		if join.At.After(cutoff) {
			break
		}
		idx++
	}
	joins = joins[idx:]
	if len(joins) == 0 {
		delete(r.guilds, guildID)
		return nil
	}
	r.guilds[guildID] = joins
	return joins
}
