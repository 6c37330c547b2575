package analytics

import (
	"context"
	"testing"
	"time"

	"guildkeeper/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticSource []storage.ModAction

func (s staticSource) ListModActions(context.Context, string, time.Time) ([]storage.ModAction, error) {
	return s, nil
}

func TestReportCounts(t *testing.T) {
	src := staticSource{
		{ModeratorID: "m1", Action: "warn"},
		{ModeratorID: "m1", Action: "ban"},
		{ModeratorID: "m2", Action: "warn"},
		{ModeratorID: "m3", Action: "kick"},
		{ModeratorID: "m3", Action: "warn"},
	}
	report, err := New(src).Report(context.Background(), "g1", time.Time{})
	require.NoError(t, err)

	assert.Equal(t, 5, report.Total)
	assert.Equal(t, 3, report.ByAction["warn"])
	assert.Equal(t, []Count{{Key: "m1", Total: 2}, {Key: "m3", Total: 2}}, report.TopModerators(2))
	assert.Equal(t, Count{Key: "warn", Total: 3}, report.Actions()[0])
}

func TestReportAgainstStorage(t *testing.T) {
	store, err := storage.New(":memory:")
	require.NoError(t, err)
	defer store.Close()
	require.NoError(t, store.Migrate())

	ctx := context.Background()
	now := time.Now()
	require.NoError(t, store.AddModAction(ctx, storage.ModAction{GuildID: "g1", ModeratorID: "m1", TargetID: "u", Action: "mute", CreatedAt: now}))
	require.NoError(t, store.AddModAction(ctx, storage.ModAction{GuildID: "g1", ModeratorID: "m1", TargetID: "u", Action: "warn", CreatedAt: now.AddDate(0, 0, -40)}))

	report, err := New(store).Report(ctx, "g1", PeriodStart("week", now))
	require.NoError(t, err)
	assert.Equal(t, 1, report.Total)
	assert.Equal(t, 1, report.ByAction["mute"])
}

func TestPeriodStart(t *testing.T) {
	now := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, now.Add(-24*time.Hour), PeriodStart("day", now))
	assert.Equal(t, time.Date(2024, 6, 8, 0, 0, 0, 0, time.UTC), PeriodStart("week", now))
	assert.Equal(t, time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC), PeriodStart("month", now))
	assert.True(t, PeriodStart("all", now).Before(now.AddDate(-10, 0, 0)))
}
