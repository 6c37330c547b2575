package giveaway

import (
	"context"
	"time"

	"guildkeeper/internal/storage"
)

// Result is the durable outcome of a draw, kept after eviction for rerolls.
type Result struct {
	Record   Record
	Entrants []string
	Winners  []string
	EndedAt  time.Time
}

type Archive interface {
	SaveResult(ctx context.Context, result Result) error
	LoadResult(ctx context.Context, giveawayID string) (Result, bool, error)
}

type storageArchive struct {
	store *storage.Store
}

// NewStorageArchive keeps results in the sqlite giveaway_results table.
func NewStorageArchive(store *storage.Store) Archive {
	return &storageArchive{store: store}
}

func (a *storageArchive) SaveResult(ctx context.Context, result Result) error {
	return a.store.SaveGiveawayResult(ctx, storage.GiveawayResult{
		GiveawayID:  result.Record.ID,
		GuildID:     result.Record.GuildID,
		ChannelID:   result.Record.ChannelID,
		HostID:      result.Record.HostID,
		Prize:       result.Record.Prize,
		WinnerCount: result.Record.WinnerCount,
		EndTime:     result.Record.EndTime,
		EndedAt:     result.EndedAt,
		Entrants:    result.Entrants,
		Winners:     result.Winners,
	})
}

func (a *storageArchive) LoadResult(ctx context.Context, giveawayID string) (Result, bool, error) {
	row, ok, err := a.store.GetGiveawayResult(ctx, giveawayID)
	if err != nil || !ok {
		return Result{}, ok, err
	}
	return Result{
		Record: Record{
			ID:          row.GiveawayID,
			GuildID:     row.GuildID,
			ChannelID:   row.ChannelID,
			HostID:      row.HostID,
			Prize:       row.Prize,
			EndTime:     row.EndTime,
			WinnerCount: row.WinnerCount,
		},
		Entrants: row.Entrants,
		Winners:  row.Winners,
		EndedAt:  row.EndedAt,
	}, true, nil
}
