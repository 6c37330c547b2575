package storage

import (
	"context"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(":memory:")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(store.Close)
	if err := store.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return store
}

func TestMigrateTwice(t *testing.T) {
	store := newTestStore(t)
	if err := store.Migrate(); err != nil {
		t.Fatalf("second migrate should be ignorable: %v", err)
	}
}

func TestUpsertGuildSettings(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	settings := GuildSettings{
		GuildID:           "g1",
		Prefix:            "?",
		Language:          "fr",
		WelcomeChannel:    "c-welcome",
		WelcomeMessage:    "Hi {user}",
		AutoroleID:        "r1",
		MessageLogChannel: "c-msg",
		ServerLogChannel:  "c-srv",
		ModLogChannel:     "c-mod",
	}
	if err := store.UpsertGuildSettings(ctx, settings); err != nil {
		t.Fatalf("upsert guild settings: %v", err)
	}

	settings.MessageLogChannel = "c2"
	if err := store.UpsertGuildSettings(ctx, settings); err != nil {
		t.Fatalf("update guild settings: %v", err)
	}

	got, err := store.GetGuildSettings(ctx, "g1", GuildSettings{Prefix: "!", Language: "en"})
	if err != nil {
		t.Fatalf("get guild settings: %v", err)
	}
	if got.MessageLogChannel != "c2" {
		t.Fatalf("expected channel c2, got %q", got.MessageLogChannel)
	}
	if got.Prefix != "?" || got.ModLogChannel != "c-mod" {
		t.Fatalf("unexpected settings: %+v", got)
	}
}

func TestGuildSettingsDefaults(t *testing.T) {
	store := newTestStore(t)
	got, err := store.GetGuildSettings(context.Background(), "unknown", GuildSettings{Prefix: "!", Language: "en"})
	if err != nil {
		t.Fatalf("get guild settings: %v", err)
	}
	if got.GuildID != "unknown" || got.Prefix != "!" || got.Language != "en" {
		t.Fatalf("expected defaults, got %+v", got)
	}

	if err := store.UpsertGuildSettings(context.Background(), GuildSettings{GuildID: "g2"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	got, err = store.GetGuildSettings(context.Background(), "g2", GuildSettings{Prefix: "!", Language: "en"})
	if err != nil {
		t.Fatalf("get guild settings: %v", err)
	}
	if got.Prefix != "!" || got.Language != "en" {
		t.Fatalf("blank columns should fall back to defaults, got %+v", got)
	}
}

func TestWarningCases(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Unix(1700000000, 0)

	first, err := store.AddWarning(ctx, "g1", "u1", "m1", "spam", now)
	if err != nil {
		t.Fatalf("add warning: %v", err)
	}
	second, err := store.AddWarning(ctx, "g1", "u2", "m1", "rude", now)
	if err != nil {
		t.Fatalf("add warning: %v", err)
	}
	other, err := store.AddWarning(ctx, "g2", "u1", "m1", "spam", now)
	if err != nil {
		t.Fatalf("add warning: %v", err)
	}
	if first.CaseID != 1 || second.CaseID != 2 || other.CaseID != 1 {
		t.Fatalf("unexpected case ids %d %d %d", first.CaseID, second.CaseID, other.CaseID)
	}

	ok, err := store.DeleteWarning(ctx, "g1", 2)
	if err != nil || !ok {
		t.Fatalf("delete warning: ok=%v err=%v", ok, err)
	}
	third, err := store.AddWarning(ctx, "g1", "u1", "m2", "again", now)
	if err != nil {
		t.Fatalf("add warning: %v", err)
	}
	if third.CaseID != 3 {
		t.Fatalf("case ids must not be reused, got %d", third.CaseID)
	}

	ok, err = store.UpdateWarningReason(ctx, "g1", 1, "flooding", now.Add(time.Minute))
	if err != nil || !ok {
		t.Fatalf("update warning: ok=%v err=%v", ok, err)
	}
	warning, found, err := store.GetWarning(ctx, "g1", 1)
	if err != nil || !found {
		t.Fatalf("get warning: found=%v err=%v", found, err)
	}
	if warning.Reason != "flooding" || warning.EditedAt.IsZero() {
		t.Fatalf("unexpected warning: %+v", warning)
	}

	list, err := store.ListWarnings(ctx, "g1", "u1")
	if err != nil {
		t.Fatalf("list warnings: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 warnings, got %d", len(list))
	}

	cleared, err := store.ClearWarnings(ctx, "g1", "u1")
	if err != nil || cleared != 2 {
		t.Fatalf("clear warnings: cleared=%d err=%v", cleared, err)
	}
	if _, found, _ := store.GetWarning(ctx, "g1", 1); found {
		t.Fatalf("expected warning removed")
	}
}

func TestModActions(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now()

	for _, action := range []string{"ban", "kick", "ban"} {
		if err := store.AddModAction(ctx, ModAction{GuildID: "g1", ModeratorID: "m1", TargetID: "u1", Action: action, Reason: "r", CreatedAt: now}); err != nil {
			t.Fatalf("add action: %v", err)
		}
	}
	if err := store.AddModAction(ctx, ModAction{GuildID: "g1", ModeratorID: "m1", TargetID: "u1", Action: "mute", CreatedAt: now.AddDate(0, 0, -40)}); err != nil {
		t.Fatalf("add action: %v", err)
	}

	actions, err := store.ListModActions(ctx, "g1", now.Add(-time.Hour))
	if err != nil {
		t.Fatalf("list actions: %v", err)
	}
	if len(actions) != 3 {
		t.Fatalf("expected 3 recent actions, got %d", len(actions))
	}

	if err := store.CleanupModActions(ctx, 30); err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	actions, err = store.ListModActions(ctx, "g1", time.Unix(0, 0))
	if err != nil {
		t.Fatalf("list actions: %v", err)
	}
	if len(actions) != 3 {
		t.Fatalf("expected old action removed, got %d", len(actions))
	}
}

func TestAFKStatus(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.SetAFK(ctx, AFKStatus{GuildID: "g1", UserID: "u1", Reason: "lunch", Since: time.Now()}); err != nil {
		t.Fatalf("set afk: %v", err)
	}
	if err := store.SetAFK(ctx, AFKStatus{GuildID: "g1", UserID: "u1", Reason: "sleep", Since: time.Now()}); err != nil {
		t.Fatalf("set afk: %v", err)
	}
	statuses, err := store.ListAFK(ctx)
	if err != nil {
		t.Fatalf("list afk: %v", err)
	}
	if len(statuses) != 1 || statuses[0].Reason != "sleep" {
		t.Fatalf("unexpected statuses: %+v", statuses)
	}
	if err := store.ClearAFK(ctx, "g1", "u1"); err != nil {
		t.Fatalf("clear afk: %v", err)
	}
	statuses, _ = store.ListAFK(ctx)
	if len(statuses) != 0 {
		t.Fatalf("expected empty afk list")
	}
}

func TestGiveawayResults(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	end := time.Unix(1700000000, 0)

	result := GiveawayResult{
		GiveawayID:  "m1",
		GuildID:     "g1",
		ChannelID:   "c1",
		Prize:       "Nitro",
		WinnerCount: 1,
		EndTime:     end,
		EndedAt:     end,
		Entrants:    []string{"u1", "u2"},
		Winners:     []string{"u1"},
	}
	if err := store.SaveGiveawayResult(ctx, result); err != nil {
		t.Fatalf("save result: %v", err)
	}
	result.Winners = []string{"u2"}
	if err := store.SaveGiveawayResult(ctx, result); err != nil {
		t.Fatalf("update result: %v", err)
	}

	got, ok, err := store.GetGiveawayResult(ctx, "m1")
	if err != nil || !ok {
		t.Fatalf("get result: ok=%v err=%v", ok, err)
	}
	if got.Prize != "Nitro" || len(got.Entrants) != 2 || len(got.Winners) != 1 || got.Winners[0] != "u2" {
		t.Fatalf("unexpected result: %+v", got)
	}
	if !got.EndTime.Equal(end) {
		t.Fatalf("unexpected end time %v", got.EndTime)
	}

	if _, ok, err := store.GetGiveawayResult(ctx, "missing"); err != nil || ok {
		t.Fatalf("expected missing result, ok=%v err=%v", ok, err)
	}
}
