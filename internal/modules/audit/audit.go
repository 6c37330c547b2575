package audit

import (
	"context"
	"time"

	"guildkeeper/internal/storage"

	"go.uber.org/zap"
)

const (
	ActionKick     = "kick"
	ActionBan      = "ban"
	ActionUnban    = "unban"
	ActionSoftban  = "softban"
	ActionMute     = "mute"
	ActionUnmute   = "unmute"
	ActionWarn     = "warn"
	ActionDelWarn  = "delwarn"
	ActionClear    = "clearwarns"
	ActionPurge    = "purge"
	ActionLock     = "lock"
	ActionUnlock   = "unlock"
	ActionSlowmode = "slowmode"
	ActionNick     = "nick"
	ActionAddRole  = "addrole"
	ActionRmRole   = "rmrole"
)

// Recorder persists moderation actions.
type Recorder interface {
	AddModAction(ctx context.Context, action storage.ModAction) error
}

// Logger writes every moderation action to storage, the process log and,
// when a notifier is set, the guild's mod-log channel.
type Logger struct {
	store  Recorder
	logger *zap.Logger
	notify func(context.Context, storage.ModAction)
	now    func() time.Time
}

func NewLogger(store Recorder, logger *zap.Logger) *Logger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Logger{store: store, logger: logger, now: time.Now}
}

func (l *Logger) SetNotifier(notify func(context.Context, storage.ModAction)) {
	l.notify = notify
}

func (l *Logger) Log(ctx context.Context, guildID, moderatorID, targetID, action, reason string) storage.ModAction {
	entry := storage.ModAction{
		GuildID:     guildID,
		ModeratorID: moderatorID,
		TargetID:    targetID,
		Action:      action,
		Reason:      reason,
		CreatedAt:   l.now().UTC(),
	}
	if l.store != nil {
		if err := l.store.AddModAction(ctx, entry); err != nil {
			l.logger.Error("mod action not stored", zap.String("guild_id", guildID), zap.String("action", action), zap.Error(err))
		}
	}
	if l.notify != nil {
		l.notify(ctx, entry)
	}
	l.logger.Info("moderation",
		zap.String("guild_id", guildID),
		zap.String("moderator_id", moderatorID),
		zap.String("target_id", targetID),
		zap.String("action", action),
		zap.String("reason", reason),
	)
	return entry
}
