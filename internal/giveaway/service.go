package giveaway

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Notifier renders lifecycle transitions on the chat platform.
type Notifier interface {
	// Exists returns nil while the announcement is reachable, ErrMessageGone
	// once it was deleted and ErrForbidden when access was revoked. Any other
	// error is treated as transient.
	Exists(ctx context.Context, record Record) error
	Completed(ctx context.Context, outcome Outcome) error
}

type Options struct {
	MinDuration     time.Duration
	PlatformTimeout time.Duration
}

// Service applies user actions and completions to the store and registry.
type Service struct {
	store       *Store
	registry    *Registry
	archive     Archive
	notifier    Notifier
	clock       Clock
	logger      *zap.Logger
	minDuration time.Duration
	timeout     time.Duration
}

type CreateRequest struct {
	ID        string
	GuildID   string
	ChannelID string
	HostID    string
	Prize     string
	Duration  string
	Winners   int
	// EndTime, when set, is the end already shown on the announcement.
	EndTime time.Time
}

func NewService(store *Store, registry *Registry, archive Archive, opts Options, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.MinDuration <= 0 {
		opts.MinDuration = 5 * time.Second
	}
	if opts.PlatformTimeout <= 0 {
		opts.PlatformTimeout = 10 * time.Second
	}
	return &Service{
		store:       store,
		registry:    registry,
		archive:     archive,
		clock:       realClock{},
		logger:      logger,
		minDuration: opts.MinDuration,
		timeout:     opts.PlatformTimeout,
	}
}

func (s *Service) WithClock(clock Clock) {
	s.clock = clock
}

func (s *Service) SetNotifier(notifier Notifier) {
	s.notifier = notifier
}

func (s *Service) Store() *Store { return s.store }

func (s *Service) Now() time.Time { return s.clock.Now() }

// Validate checks a duration string and winner count before anything is posted.
func (s *Service) Validate(duration string, winners int) (time.Duration, error) {
	d, err := ParseDuration(duration)
	if err != nil {
		return 0, err
	}
	if d < s.minDuration {
		return 0, fmt.Errorf("%w: %s", ErrDurationTooShort, FormatDuration(s.minDuration))
	}
	if winners < 1 {
		return 0, ErrInvalidWinners
	}
	return d, nil
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (Record, error) {
	d, err := s.Validate(req.Duration, req.Winners)
	if err != nil {
		return Record{}, err
	}
	end := req.EndTime
	if end.IsZero() {
		end = s.clock.Now().Add(d)
	}
	record := Record{
		ID:          req.ID,
		GuildID:     req.GuildID,
		ChannelID:   req.ChannelID,
		HostID:      req.HostID,
		Prize:       req.Prize,
		EndTime:     end,
		WinnerCount: req.Winners,
	}
	if err := s.store.Create(ctx, record); err != nil {
		return Record{}, err
	}
	s.logger.Info("giveaway created",
		zap.String("giveaway_id", record.ID),
		zap.String("guild_id", record.GuildID),
		zap.Time("end_time", record.EndTime),
		zap.Int("winners", record.WinnerCount),
	)
	return record, nil
}

// Toggle enters or withdraws an actor and returns the new entrant count.
func (s *Service) Toggle(ctx context.Context, giveawayID, actorID string) (ToggleResult, int, error) {
	result, count, ok := s.store.Toggle(giveawayID, actorID)
	if !ok {
		return 0, 0, ErrNotFound
	}
	s.store.Flush(ctx)
	return result, count, nil
}

func (s *Service) Entrants(giveawayID string) int {
	return s.registry.Count(giveawayID)
}

// EndEarly completes an active giveaway now. winners <= 0 keeps the stored count.
func (s *Service) EndEarly(ctx context.Context, giveawayID string, winners int) (Outcome, error) {
	record, ok := s.store.Get(giveawayID)
	if !ok {
		return Outcome{}, ErrNotFound
	}
	return s.Complete(ctx, record, winners)
}

// Complete marks the giveaway ended, draws winners and notifies. The state
// transition always happens first; notification failures are only logged.
func (s *Service) Complete(ctx context.Context, record Record, winners int) (Outcome, error) {
	if winners < 1 {
		winners = record.WinnerCount
	}
	ended, ok := s.store.MarkEnded(ctx, record.ID, s.clock.Now())
	if !ok {
		return Outcome{}, ErrAlreadyEnded
	}

	entrants := s.registry.Snapshot(record.ID)
	drawn, err := SelectWinners(entrants, winners, nil)
	if err != nil {
		s.logger.Error("winner draw failed", zap.String("giveaway_id", record.ID), zap.Error(err))
		return Outcome{Record: ended.Record, Entrants: entrants.Len(), Requested: winners}, fmt.Errorf("draw winners: %w", err)
	}
	outcome := Outcome{Record: ended.Record, Entrants: entrants.Len(), Requested: winners, Winners: drawn}

	s.saveResult(ctx, Result{Record: ended.Record, Entrants: entrants.Sorted(), Winners: drawn, EndedAt: ended.EndedAt})
	s.notify(ctx, outcome)

	s.logger.Info("giveaway completed",
		zap.String("giveaway_id", record.ID),
		zap.Int("entrants", outcome.Entrants),
		zap.Strings("winners", drawn),
	)
	return outcome, nil
}

// Reroll draws new winners for an ended giveaway, never picking anyone in
// previous. A giveaway of another guild is reported as ErrNotFound; an empty
// guildID skips that check.
func (s *Service) Reroll(ctx context.Context, guildID, giveawayID string, winners int, previous []string) (Outcome, error) {
	if winners < 1 {
		return Outcome{}, ErrInvalidWinners
	}
	if active, ok := s.store.Get(giveawayID); ok {
		if !sameGuild(guildID, active) {
			return Outcome{}, ErrNotFound
		}
		return Outcome{}, ErrStillActive
	}

	var record Record
	var endedAt time.Time
	entrants := Set{}
	if ended, ok := s.store.GetEnded(giveawayID); ok {
		record = ended.Record
		endedAt = ended.EndedAt
		entrants = s.registry.Snapshot(giveawayID)
	}
	if entrants.Len() == 0 && s.archive != nil {
		result, ok, err := s.archive.LoadResult(ctx, giveawayID)
		if err != nil {
			return Outcome{}, fmt.Errorf("load giveaway result: %w", err)
		}
		if ok {
			if record.ID == "" {
				record = result.Record
				endedAt = result.EndedAt
			}
			entrants = NewSet(result.Entrants...)
		}
	}
	if record.ID == "" || !sameGuild(guildID, record) {
		return Outcome{}, ErrNotFound
	}
	if entrants.Len() == 0 {
		return Outcome{}, ErrNoParticipants
	}

	drawn, err := SelectWinners(entrants, winners, NewSet(previous...))
	if err != nil {
		return Outcome{}, fmt.Errorf("draw winners: %w", err)
	}
	if len(drawn) == 0 {
		return Outcome{}, ErrNoEligible
	}

	if endedAt.IsZero() {
		endedAt = s.clock.Now()
	}
	s.saveResult(ctx, Result{Record: record, Entrants: entrants.Sorted(), Winners: drawn, EndedAt: endedAt})
	s.logger.Info("giveaway rerolled", zap.String("giveaway_id", giveawayID), zap.Strings("winners", drawn))
	return Outcome{Record: record, Entrants: entrants.Len(), Requested: winners, Winners: drawn}, nil
}

func sameGuild(guildID string, record Record) bool {
	return guildID == "" || record.GuildID == guildID
}

// LastWinners returns the most recently archived winners of a giveaway.
func (s *Service) LastWinners(ctx context.Context, giveawayID string) []string {
	if s.archive == nil {
		return nil
	}
	result, ok, err := s.archive.LoadResult(ctx, giveawayID)
	if err != nil || !ok {
		return nil
	}
	return result.Winners
}

// announcementExists asks the notifier whether the announcement is still there.
func (s *Service) announcementExists(ctx context.Context, record Record) error {
	if s.notifier == nil {
		return nil
	}
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.notifier.Exists(callCtx, record)
}

func (s *Service) notify(ctx context.Context, outcome Outcome) {
	if s.notifier == nil {
		return
	}
	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()
	if err := s.notifier.Completed(callCtx, outcome); err != nil {
		s.logger.Warn("giveaway notification failed", zap.String("giveaway_id", outcome.Record.ID), zap.Error(err))
	}
}

func (s *Service) saveResult(ctx context.Context, result Result) {
	if s.archive == nil {
		return
	}
	if err := s.archive.SaveResult(context.WithoutCancel(ctx), result); err != nil {
		s.logger.Warn("giveaway result not archived", zap.String("giveaway_id", result.Record.ID), zap.Error(err))
	}
}
