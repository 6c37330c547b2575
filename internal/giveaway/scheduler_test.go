package giveaway

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGiveawayLifecycle(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.create("m1", "5s", 1)
	for _, actor := range []string{"actor1", "actor2"} {
		result, _, err := f.service.Toggle(ctx, "m1", actor)
		require.NoError(t, err)
		require.Equal(t, Joined, result)
	}

	f.clock.Advance(2 * time.Second)
	f.scheduler.CheckActive(ctx)
	assert.Empty(t, f.notifier.outcomes(), "not expired yet")

	f.clock.Advance(10 * time.Second)
	f.scheduler.CheckActive(ctx)
	outcomes := f.notifier.outcomes()
	require.Len(t, outcomes, 1)
	require.Len(t, outcomes[0].Winners, 1)
	assert.Contains(t, []string{"actor1", "actor2"}, outcomes[0].Winners[0])
	assert.Empty(t, f.store.ListActive())
	require.Len(t, f.store.ListEnded(), 1)

	f.scheduler.CheckActive(ctx)
	assert.Len(t, f.notifier.outcomes(), 1, "a second tick must not draw again")

	f.scheduler.CleanupEnded(ctx)
	assert.Len(t, f.store.ListEnded(), 1, "grace period not elapsed")

	f.clock.Advance(5 * time.Second)
	f.scheduler.CleanupEnded(ctx)
	assert.Empty(t, f.store.ListActive())
	assert.Empty(t, f.store.ListEnded())
	assert.Equal(t, 0, f.registry.Snapshot("m1").Len())
}

func TestCheckActiveDiscardsMissingAnnouncement(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.create("m1", "5s", 1)
	f.notifier.gone["m1"] = true

	f.clock.Advance(6 * time.Second)
	f.scheduler.CheckActive(ctx)

	assert.Empty(t, f.notifier.outcomes())
	assert.Empty(t, f.store.ListActive())
	assert.Empty(t, f.store.ListEnded())
}

func TestCheckActiveRetriesTransientErrors(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.create("m1", "5s", 1)
	f.notifier.existsErr = errors.New("gateway timeout")

	f.clock.Advance(6 * time.Second)
	f.scheduler.CheckActive(ctx)
	assert.Len(t, f.store.ListActive(), 1)

	f.notifier.existsErr = nil
	f.scheduler.CheckActive(ctx)
	assert.Empty(t, f.store.ListActive())
	assert.Len(t, f.notifier.outcomes(), 1)
}

func TestCheckActiveDiscardsForbiddenAnnouncement(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.create("m1", "5s", 1)
	_, _, err := f.service.Toggle(ctx, "m1", "a")
	require.NoError(t, err)
	f.notifier.existsErr = fmt.Errorf("%w: HTTP 403 Forbidden", ErrForbidden)

	f.clock.Advance(6 * time.Second)
	f.scheduler.CheckActive(ctx)

	assert.Empty(t, f.notifier.outcomes())
	assert.Empty(t, f.store.ListActive())
	assert.Empty(t, f.store.ListEnded())
	assert.Equal(t, 0, f.registry.Count("m1"))
}

func TestCheckActiveCompletesAfterRepeatedFailures(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.create("m1", "5s", 1)
	f.notifier.existsErr = errors.New("gateway timeout")

	for i := 1; i < maxCheckFailures; i++ {
		f.clock.Advance(10 * time.Second)
		f.scheduler.CheckActive(ctx)
	}
	assert.Len(t, f.store.ListActive(), 1)
	assert.Empty(t, f.notifier.outcomes())

	f.clock.Advance(10 * time.Second)
	f.scheduler.CheckActive(ctx)
	assert.Empty(t, f.store.ListActive())
	assert.Len(t, f.store.ListEnded(), 1)
	assert.Len(t, f.notifier.outcomes(), 1)
}

func TestSchedulerStartStop(t *testing.T) {
	f := newFixture()
	f.scheduler = NewScheduler(f.service, 10*time.Millisecond, 10*time.Millisecond, nil)
	f.create("m1", "5s", 1)
	f.clock.Advance(time.Minute)

	f.scheduler.Start(context.Background())
	f.scheduler.Start(context.Background())
	assert.Eventually(t, func() bool {
		return len(f.notifier.outcomes()) == 1 && len(f.store.ListActive()) == 0
	}, time.Second, 5*time.Millisecond)
	f.clock.Advance(10 * time.Second)
	assert.Eventually(t, func() bool {
		return len(f.store.ListEnded()) == 0
	}, time.Second, 5*time.Millisecond)
	f.scheduler.Stop()
	f.scheduler.Stop()
}
