package giveaway

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

type memPersister struct {
	mu       sync.Mutex
	snapshot Snapshot
	saves    int
	fail     bool
}

func (p *memPersister) Load(context.Context) (Snapshot, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshot, nil
}

func (p *memPersister) Save(_ context.Context, snapshot Snapshot) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return errors.New("disk full")
	}
	p.saves++
	p.snapshot = snapshot
	return nil
}

func (p *memPersister) last() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshot
}

type fakeNotifier struct {
	mu          sync.Mutex
	gone        map[string]bool
	existsErr   error
	completeErr error
	completed   []Outcome
}

func (n *fakeNotifier) Exists(_ context.Context, record Record) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.gone[record.ID] {
		return ErrMessageGone
	}
	return n.existsErr
}

func (n *fakeNotifier) Completed(_ context.Context, outcome Outcome) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.completed = append(n.completed, outcome)
	return n.completeErr
}

func (n *fakeNotifier) outcomes() []Outcome {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Outcome(nil), n.completed...)
}

type memArchive struct {
	mu      sync.Mutex
	results map[string]Result
}

func newMemArchive() *memArchive {
	return &memArchive{results: make(map[string]Result)}
}

func (a *memArchive) SaveResult(_ context.Context, result Result) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.results[result.Record.ID] = result
	return nil
}

func (a *memArchive) LoadResult(_ context.Context, id string) (Result, bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	result, ok := a.results[id]
	return result, ok, nil
}

type fixture struct {
	clock     *fakeClock
	persister *memPersister
	registry  *Registry
	store     *Store
	archive   *memArchive
	notifier  *fakeNotifier
	service   *Service
	scheduler *Scheduler
}

func newFixture() *fixture {
	f := &fixture{
		clock:     newFakeClock(),
		persister: &memPersister{},
		registry:  NewRegistry(),
		archive:   newMemArchive(),
		notifier:  &fakeNotifier{gone: map[string]bool{}},
	}
	f.store = NewStore(f.persister, f.registry, 5*time.Second, zap.NewNop())
	f.service = NewService(f.store, f.registry, f.archive, Options{MinDuration: 5 * time.Second, PlatformTimeout: time.Second}, zap.NewNop())
	f.service.WithClock(f.clock)
	f.service.SetNotifier(f.notifier)
	f.scheduler = NewScheduler(f.service, 10*time.Second, 5*time.Second, zap.NewNop())
	return f
}

func (f *fixture) create(id, duration string, winners int) Record {
	record, err := f.service.Create(context.Background(), CreateRequest{
		ID:        id,
		GuildID:   "guild",
		ChannelID: "channel",
		HostID:    "host",
		Prize:     "Nitro",
		Duration:  duration,
		Winners:   winners,
	})
	if err != nil {
		panic(err)
	}
	return record
}
