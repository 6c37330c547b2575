package giveaway

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Store holds the active and ended giveaway sets. Memory is authoritative; every
// mutation writes a full snapshot through the persister and a failed write is only logged.
type Store struct {
	mu        sync.Mutex
	writeMu   sync.Mutex
	active    []Record
	ended     []EndedRecord
	registry  *Registry
	persister Persister
	grace     time.Duration
	logger    *zap.Logger
}

func NewStore(persister Persister, registry *Registry, grace time.Duration, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	if grace <= 0 {
		grace = 5 * time.Second
	}
	return &Store{
		registry:  registry,
		persister: persister,
		grace:     grace,
		logger:    logger,
	}
}

// Load replaces the in-memory state with the persisted snapshot.
func (s *Store) Load(ctx context.Context) error {
	if s.persister == nil {
		return nil
	}
	snapshot, err := s.persister.Load(ctx)
	if err != nil {
		return fmt.Errorf("load giveaways: %w", err)
	}

	s.mu.Lock()
	s.active = append([]Record(nil), snapshot.Active...)
	s.ended = append([]EndedRecord(nil), snapshot.Ended...)
	s.mu.Unlock()

	participants := snapshot.Participants
	if participants == nil {
		participants = map[string][]string{}
	}
	for _, record := range snapshot.Active {
		if _, ok := participants[record.ID]; !ok {
			participants[record.ID] = nil
		}
	}
	s.registry.restore(participants)
	return nil
}

func (s *Store) Create(ctx context.Context, record Record) error {
	if record.ID == "" {
		return errors.New("giveaway id is required")
	}
	if record.WinnerCount < 1 {
		return ErrInvalidWinners
	}

	s.mu.Lock()
	if s.indexActiveLocked(record.ID) >= 0 || s.indexEndedLocked(record.ID) >= 0 {
		s.mu.Unlock()
		return ErrDuplicate
	}
	s.active = append(s.active, record)
	s.mu.Unlock()

	s.registry.Open(record.ID)
	s.persist(ctx)
	return nil
}

// Get returns an active giveaway.
func (s *Store) Get(id string) (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if idx := s.indexActiveLocked(id); idx >= 0 {
		return s.active[idx], true
	}
	return Record{}, false
}

// GetEnded returns a giveaway still waiting for eviction.
func (s *Store) GetEnded(id string) (EndedRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if idx := s.indexEndedLocked(id); idx >= 0 {
		return s.ended[idx], true
	}
	return EndedRecord{}, false
}

// ListActive returns the active records ordered by end time.
func (s *Store) ListActive() []Record {
	s.mu.Lock()
	out := append([]Record(nil), s.active...)
	s.mu.Unlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].EndTime.Before(out[j].EndTime) })
	return out
}

func (s *Store) ListEnded() []EndedRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]EndedRecord(nil), s.ended...)
}

// MarkEnded moves a record from active to ended. It reports false, changing
// nothing, when the record is not active, which makes completion idempotent.
func (s *Store) MarkEnded(ctx context.Context, id string, now time.Time) (EndedRecord, bool) {
	s.mu.Lock()
	idx := s.indexActiveLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return EndedRecord{}, false
	}
	record := s.active[idx]
	s.active = append(s.active[:idx], s.active[idx+1:]...)
	ended := EndedRecord{Record: record, EndedAt: now, CleanupAt: now.Add(s.grace)}
	s.ended = append(s.ended, ended)
	s.mu.Unlock()

	s.persist(ctx)
	return ended, true
}

// Discard drops an active record without passing through the ended set.
func (s *Store) Discard(ctx context.Context, id string) bool {
	s.mu.Lock()
	idx := s.indexActiveLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return false
	}
	s.active = append(s.active[:idx], s.active[idx+1:]...)
	s.mu.Unlock()

	s.registry.Clear(id)
	s.persist(ctx)
	return true
}

// EvictEnded removes an ended record and its entrants.
func (s *Store) EvictEnded(ctx context.Context, id string) bool {
	s.mu.Lock()
	idx := s.indexEndedLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return false
	}
	s.ended = append(s.ended[:idx], s.ended[idx+1:]...)
	s.mu.Unlock()

	s.registry.Clear(id)
	s.persist(ctx)
	return true
}

// Toggle flips an actor's entry under the store lock, so a giveaway that is
// being ended, discarded or evicted cannot gain or lose entrants meanwhile.
// The bool is false when the giveaway is not active.
func (s *Store) Toggle(id, actorID string) (ToggleResult, int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexActiveLocked(id) < 0 {
		return 0, 0, false
	}
	result := s.registry.Toggle(id, actorID)
	return result, s.registry.Count(id), true
}

// Flush writes the current state, used after entrant changes.
func (s *Store) Flush(ctx context.Context) {
	s.persist(ctx)
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	snapshot := Snapshot{
		Active: append([]Record(nil), s.active...),
		Ended:  append([]EndedRecord(nil), s.ended...),
	}
	s.mu.Unlock()
	snapshot.Participants = s.registry.export()
	return snapshot
}

func (s *Store) persist(ctx context.Context) {
	if s.persister == nil {
		return
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.persister.Save(context.WithoutCancel(ctx), s.Snapshot()); err != nil {
		s.logger.Error("giveaway snapshot write failed", zap.Error(err))
	}
}

func (s *Store) indexActiveLocked(id string) int {
	for i, record := range s.active {
		if record.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) indexEndedLocked(id string) int {
	for i, record := range s.ended {
		if record.ID == id {
			return i
		}
	}
	return -1
}
