package giveaway

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	server := miniredis.RunT(t)
	client, err := OpenRedis(context.Background(), server.Addr(), "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return server, client
}

func TestRedisPersisterRoundTrip(t *testing.T) {
	server, client := newTestRedis(t)
	persister := NewRedisPersister(client, "test:giveaways")
	ctx := context.Background()

	empty, err := persister.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty.Active)
	assert.Empty(t, empty.Ended)

	end := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	snapshot := Snapshot{
		Active: []Record{{ID: "m1", GuildID: "g", ChannelID: "c", Prize: "Nitro", EndTime: end, WinnerCount: 2}},
		Ended: []EndedRecord{{
			Record:    Record{ID: "m0", ChannelID: "c", EndTime: end, WinnerCount: 1},
			EndedAt:   end,
			CleanupAt: end.Add(5 * time.Second),
		}},
		Participants: map[string][]string{"m1": {"a", "b"}},
	}
	require.NoError(t, persister.Save(ctx, snapshot))

	loaded, err := persister.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, snapshot, loaded)
	assert.True(t, server.Exists("test:giveaways:active"))
	assert.True(t, server.Exists("test:giveaways:ended"))
	assert.True(t, server.Exists("test:giveaways:participants"))
}

func TestRedisPersisterPartialAndCorruptKeys(t *testing.T) {
	server, client := newTestRedis(t)
	persister := NewRedisPersister(client, "")
	ctx := context.Background()

	require.NoError(t, server.Set("guildkeeper:giveaways:participants", `{"m1":["a"]}`))
	loaded, err := persister.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, loaded.Active)
	assert.Equal(t, map[string][]string{"m1": {"a"}}, loaded.Participants)

	require.NoError(t, server.Set("guildkeeper:giveaways:ended", "{"))
	_, err = persister.Load(ctx)
	assert.Error(t, err)
}

func TestStoreOverRedisRestoresState(t *testing.T) {
	_, client := newTestRedis(t)
	ctx := context.Background()

	registry := NewRegistry()
	store := NewStore(NewRedisPersister(client, "test"), registry, 5*time.Second, nil)
	require.NoError(t, store.Create(ctx, Record{ID: "m1", GuildID: "g", ChannelID: "c", EndTime: time.Now().Add(time.Hour), WinnerCount: 1}))
	_, _, ok := store.Toggle("m1", "a")
	require.True(t, ok)
	store.Flush(ctx)

	restoredRegistry := NewRegistry()
	restored := NewStore(NewRedisPersister(client, "test"), restoredRegistry, 5*time.Second, nil)
	require.NoError(t, restored.Load(ctx))
	_, found := restored.Get("m1")
	assert.True(t, found)
	assert.Equal(t, []string{"a"}, restoredRegistry.Snapshot("m1").Sorted())
}

func TestOpenRedisRequiresAddr(t *testing.T) {
	_, err := OpenRedis(context.Background(), "", "", 0)
	assert.Error(t, err)
}
