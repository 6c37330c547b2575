package giveaway

import (
	"sort"
	"sync"
)

// Set is an unordered collection of user ids.
type Set map[string]struct{}

func NewSet(ids ...string) Set {
	set := make(Set, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		set[id] = struct{}{}
	}
	return set
}

func (s Set) Has(id string) bool {
	_, ok := s[id]
	return ok
}

func (s Set) Len() int { return len(s) }

// Sorted returns the members in ascending order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

type ToggleResult int

const (
	Joined ToggleResult = iota + 1
	Left
)

func (r ToggleResult) String() string {
	switch r {
	case Joined:
		return "joined"
	case Left:
		return "left"
	default:
		return "unknown"
	}
}

// Registry tracks who entered each giveaway.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Set
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Set)}
}

// Open creates an empty entry for a giveaway. Existing entrants are kept.
func (r *Registry) Open(giveawayID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[giveawayID]; !ok {
		r.entries[giveawayID] = make(Set)
	}
}

// Toggle adds the actor when absent and removes it when present.
func (r *Registry) Toggle(giveawayID, actorID string) ToggleResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry := r.entries[giveawayID]
	if entry == nil {
		entry = make(Set)
		r.entries[giveawayID] = entry
	}
	if entry.Has(actorID) {
		delete(entry, actorID)
		return Left
	}
	entry[actorID] = struct{}{}
	return Joined
}

// Snapshot returns a copy of the entrants; unknown giveaways yield an empty set.
func (r *Registry) Snapshot(giveawayID string) Set {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry := r.entries[giveawayID]
	out := make(Set, len(entry))
	for id := range entry {
		out[id] = struct{}{}
	}
	return out
}

func (r *Registry) Count(giveawayID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries[giveawayID])
}

func (r *Registry) Clear(giveawayID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, giveawayID)
}

func (r *Registry) export() map[string][]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string][]string, len(r.entries))
	for id, entry := range r.entries {
		out[id] = entry.Sorted()
	}
	return out
}

func (r *Registry) restore(entries map[string][]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = make(map[string]Set, len(entries))
	for id, members := range entries {
		r.entries[id] = NewSet(members...)
	}
}
