package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"guildkeeper/internal/giveaway"
	"guildkeeper/internal/modules/audit"
	"guildkeeper/internal/storage"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

const (
	maxTimeout      = 28 * 24 * time.Hour
	bulkDeleteLimit = 14 * 24 * time.Hour
)

var memberActionPerms = map[string]int64{
	"kick":    discordgo.PermissionKickMembers,
	"ban":     discordgo.PermissionBanMembers,
	"unban":   discordgo.PermissionBanMembers,
	"softban": discordgo.PermissionBanMembers,
	"mute":    discordgo.PermissionModerateMembers,
	"unmute":  discordgo.PermissionModerateMembers,
	"nick":    discordgo.PermissionManageNicknames,
}

// parseMuteDuration reads "30m", "2h", "1d" or "perm". A bare number is
// minutes. Timeouts are capped at the platform maximum of 28 days.
func parseMuteDuration(input string) (time.Duration, bool) {
	value := strings.ToLower(strings.TrimSpace(input))
	switch value {
	case "perm", "permanent":
		return maxTimeout, true
	case "":
		return time.Hour, true
	}
	if minutes, err := strconv.Atoi(value); err == nil {
		if minutes <= 0 {
			return 0, false
		}
		value += "m"
	}
	d, err := giveaway.ParseDuration(value)
	if err != nil || d < time.Minute {
		return 0, false
	}
	if d > maxTimeout {
		d = maxTimeout
	}
	return d, true
}

func (b *Bot) handleMemberAction(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, lang, name string, opts options) {
	if !b.requirePermission(session, interaction, lang, memberActionPerms[name]) {
		return
	}
	moderator := interactionUser(interaction)
	reason := opts.str("reason", b.t(lang, "reason_none"))
	guildID := interaction.GuildID

	if name == "unban" {
		userID := opts.str("user_id", "")
		if !isSnowflake(userID) {
			b.respondError(session, interaction, lang, b.t(lang, "error_bad_user_id"))
			return
		}
		if err := session.GuildBanDelete(guildID, userID, discordgo.WithAuditLogReason(reason)); err != nil {
			b.respondError(session, interaction, lang, b.actionError(lang, err))
			return
		}
		b.audit.Log(ctx, guildID, moderator.ID, userID, audit.ActionUnban, reason)
		b.respondEmbed(session, interaction, b.commandEmbed(b.t(lang, "mod_title"), b.tf(lang, "mod_unban", mention(userID), reason), b.cfg.EmbedColors.Action, nil), false)
		return
	}

	target := opts.user(session, "user")
	if target == nil {
		b.respondError(session, interaction, lang, b.t(lang, "error_user_not_found"))
		return
	}
	if msg := b.checkTarget(interaction, lang, target); msg != "" {
		b.respondError(session, interaction, lang, msg)
		return
	}

	var (
		err    error
		action string
		key    = "mod_" + name
		args   = []any{mention(target.ID), reason}
	)
	switch name {
	case "kick":
		action = audit.ActionKick
		err = session.GuildMemberDeleteWithReason(guildID, target.ID, reason)
	case "ban":
		action = audit.ActionBan
		err = session.GuildBanCreateWithReason(guildID, target.ID, reason, opts.num("delete_days", 0))
	case "softban":
		action = audit.ActionSoftban
		if err = session.GuildBanCreateWithReason(guildID, target.ID, reason, 7); err == nil {
			err = session.GuildBanDelete(guildID, target.ID, discordgo.WithAuditLogReason(reason))
		}
	case "mute":
		d, ok := parseMuteDuration(opts.str("duration", ""))
		if !ok {
			b.respondError(session, interaction, lang, b.t(lang, "error_bad_duration"))
			return
		}
		until := time.Now().Add(d)
		action = audit.ActionMute
		reason = fmt.Sprintf("%s (%s)", reason, giveaway.FormatDuration(d))
		args = []any{mention(target.ID), reason}
		err = session.GuildMemberTimeout(guildID, target.ID, &until, discordgo.WithAuditLogReason(reason))
	case "unmute":
		action = audit.ActionUnmute
		args = []any{mention(target.ID)}
		err = session.GuildMemberTimeout(guildID, target.ID, nil)
	case "nick":
		nickname := opts.str("nickname", "")
		action = audit.ActionNick
		reason = nickname
		if nickname == "" {
			key = "mod_nick_reset"
			args = []any{mention(target.ID)}
		} else {
			args = []any{mention(target.ID), nickname}
		}
		err = session.GuildMemberNickname(guildID, target.ID, nickname)
	}
	if err != nil {
		b.respondError(session, interaction, lang, b.actionError(lang, err))
		return
	}

	b.audit.Log(ctx, guildID, moderator.ID, target.ID, action, reason)
	b.respondEmbed(session, interaction, b.commandEmbed(b.t(lang, "mod_title"), b.tf(lang, key, args...), b.cfg.EmbedColors.Action, nil), false)
}

// checkTarget returns an error message when the invoker may not act on target.
func (b *Bot) checkTarget(interaction *discordgo.InteractionCreate, lang string, target *discordgo.User) string {
	moderator := interactionUser(interaction)
	if moderator != nil && moderator.ID == target.ID {
		return b.t(lang, "error_self_action")
	}
	if b.session.State != nil && b.session.State.User != nil && b.session.State.User.ID == target.ID {
		return b.t(lang, "error_target_bot")
	}
	member := b.memberForUser(interaction.GuildID, target.ID)
	if member == nil {
		return ""
	}
	if !canActOn(b.guild(interaction.GuildID), interaction.Member, member) {
		return b.t(lang, "error_hierarchy")
	}
	return ""
}

func (b *Bot) actionError(lang string, err error) string {
	if isForbidden(err) {
		return b.t(lang, "error_bot_permission")
	}
	b.logger.Warn("moderation request failed", zap.Error(err))
	return b.t(lang, "error_failed")
}

func (b *Bot) handleWarningCommand(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, lang, name string, opts options) {
	if !b.requirePermission(session, interaction, lang, discordgo.PermissionModerateMembers) {
		return
	}
	moderator := interactionUser(interaction)
	guildID := interaction.GuildID

	switch name {
	case "warn":
		target := opts.user(session, "user")
		if target == nil {
			b.respondError(session, interaction, lang, b.t(lang, "error_user_not_found"))
			return
		}
		if msg := b.checkTarget(interaction, lang, target); msg != "" {
			b.respondError(session, interaction, lang, msg)
			return
		}
		reason := opts.str("reason", b.t(lang, "reason_none"))
		warning, err := b.store.AddWarning(ctx, guildID, target.ID, moderator.ID, reason, time.Now().UTC())
		if err != nil {
			b.logger.Warn("warning not stored", zap.String("guild_id", guildID), zap.Error(err))
			b.respondError(session, interaction, lang, b.t(lang, "error_failed"))
			return
		}
		b.audit.Log(ctx, guildID, moderator.ID, target.ID, audit.ActionWarn, fmt.Sprintf("#%d %s", warning.CaseID, reason))
		total := 0
		if list, err := b.store.ListWarnings(ctx, guildID, target.ID); err == nil {
			total = len(list)
		}
		if b.cfg.Moderation.WarnDM {
			b.dmWarning(guildID, target.ID, lang, reason)
		}
		b.respondEmbed(session, interaction, b.commandEmbed(b.t(lang, "mod_title"), b.tf(lang, "mod_warn", mention(target.ID), warning.CaseID, reason, total), b.cfg.EmbedColors.Warning, nil), false)

	case "warnings":
		target := opts.user(session, "user")
		if target == nil {
			target = moderator
		}
		list, err := b.store.ListWarnings(ctx, guildID, target.ID)
		if err != nil {
			b.respondError(session, interaction, lang, b.t(lang, "error_failed"))
			return
		}
		if len(list) == 0 {
			b.respondEmbed(session, interaction, b.commandEmbed(b.t(lang, "warnings_title"), b.tf(lang, "warnings_none", mention(target.ID)), b.cfg.EmbedColors.Info, nil), true)
			return
		}
		b.respondEmbed(session, interaction, b.commandEmbed(b.t(lang, "warnings_title"), b.tf(lang, "warnings_count", mention(target.ID), len(list)), b.cfg.EmbedColors.Warning, warningFields(list, 10)), true)

	case "clearwarns":
		target := opts.user(session, "user")
		if target == nil {
			b.respondError(session, interaction, lang, b.t(lang, "error_user_not_found"))
			return
		}
		removed, err := b.store.ClearWarnings(ctx, guildID, target.ID)
		if err != nil {
			b.respondError(session, interaction, lang, b.t(lang, "error_failed"))
			return
		}
		b.audit.Log(ctx, guildID, moderator.ID, target.ID, audit.ActionClear, strconv.Itoa(removed))
		b.respondEmbed(session, interaction, b.commandEmbed(b.t(lang, "mod_title"), b.tf(lang, "mod_clearwarns", removed, mention(target.ID)), b.cfg.EmbedColors.Success, nil), false)

	case "delwarn", "case", "editcase":
		optName := "id"
		if name == "delwarn" {
			optName = "case"
		}
		caseID := opts.num(optName, 0)
		warning, ok, err := b.store.GetWarning(ctx, guildID, caseID)
		if err != nil {
			b.respondError(session, interaction, lang, b.t(lang, "error_failed"))
			return
		}
		if !ok {
			b.respondError(session, interaction, lang, b.tf(lang, "case_not_found", caseID))
			return
		}
		switch name {
		case "case":
			b.respondEmbed(session, interaction, b.commandEmbed(b.tf(lang, "case_title", caseID), "", b.cfg.EmbedColors.Info, b.caseFields(lang, warning)), true)
		case "delwarn":
			if _, err := b.store.DeleteWarning(ctx, guildID, caseID); err != nil {
				b.respondError(session, interaction, lang, b.t(lang, "error_failed"))
				return
			}
			b.audit.Log(ctx, guildID, moderator.ID, warning.UserID, audit.ActionDelWarn, fmt.Sprintf("#%d", caseID))
			b.respondEmbed(session, interaction, b.commandEmbed(b.t(lang, "mod_title"), b.tf(lang, "mod_delwarn", caseID), b.cfg.EmbedColors.Success, nil), true)
		case "editcase":
			reason := opts.str("reason", "")
			if _, err := b.store.UpdateWarningReason(ctx, guildID, caseID, reason, time.Now().UTC()); err != nil {
				b.respondError(session, interaction, lang, b.t(lang, "error_failed"))
				return
			}
			b.logger.Info("case edited", zap.String("guild_id", guildID), zap.Int("case", caseID), zap.String("moderator_id", moderator.ID))
			b.respondEmbed(session, interaction, b.commandEmbed(b.t(lang, "mod_title"), b.tf(lang, "mod_editcase", caseID, reason), b.cfg.EmbedColors.Success, nil), true)
		}
	}
}

func warningFields(list []storage.Warning, limit int) []*discordgo.MessageEmbedField {
	fields := make([]*discordgo.MessageEmbedField, 0, limit)
	for _, warning := range list {
		if len(fields) >= limit {
			break
		}
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:  fmt.Sprintf("#%d", warning.CaseID),
			Value: fmt.Sprintf("%s\n%s <t:%d:R>", warning.Reason, mention(warning.ModeratorID), warning.CreatedAt.Unix()),
		})
	}
	return fields
}

func (b *Bot) caseFields(lang string, warning storage.Warning) []*discordgo.MessageEmbedField {
	fields := []*discordgo.MessageEmbedField{
		{Name: b.t(lang, "field_user"), Value: mention(warning.UserID), Inline: true},
		{Name: b.t(lang, "field_moderator"), Value: mention(warning.ModeratorID), Inline: true},
		{Name: b.t(lang, "field_date"), Value: fmt.Sprintf("<t:%d:f>", warning.CreatedAt.Unix()), Inline: true},
		{Name: b.t(lang, "field_reason"), Value: warning.Reason},
	}
	if !warning.EditedAt.IsZero() {
		fields = append(fields, &discordgo.MessageEmbedField{Name: b.t(lang, "field_edited"), Value: fmt.Sprintf("<t:%d:R>", warning.EditedAt.Unix())})
	}
	return fields
}

func (b *Bot) dmWarning(guildID, userID, lang, reason string) {
	channel, err := b.session.UserChannelCreate(userID)
	if err != nil {
		b.logger.Debug("warn dm channel failed", zap.String("user_id", userID), zap.Error(err))
		return
	}
	name := guildID
	if guild := b.guild(guildID); guild != nil {
		name = guild.Name
	}
	embed := b.commandEmbed(b.t(lang, "warn_dm_title"), b.tf(lang, "warn_dm", name, reason), b.cfg.EmbedColors.Warning, nil)
	if _, err := b.session.ChannelMessageSendEmbed(channel.ID, embed); err != nil {
		b.logger.Debug("warn dm failed", zap.String("user_id", userID), zap.Error(err))
	}
}

// purgeable picks up to amount message ids, newest first, stopping at the
// first message too old for bulk deletion.
func purgeable(messages []*discordgo.Message, amount int, userID string, now time.Time) ([]string, bool) {
	ids := make([]string, 0, amount)
	for _, msg := range messages {
		if len(ids) >= amount {
			return ids, true
		}
		ts, err := discordgo.SnowflakeTimestamp(msg.ID)
		if err == nil && now.Sub(ts) >= bulkDeleteLimit {
			return ids, true
		}
		if userID != "" && (msg.Author == nil || msg.Author.ID != userID) {
			continue
		}
		ids = append(ids, msg.ID)
	}
	return ids, len(ids) >= amount
}

func (b *Bot) handlePurge(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, lang string, opts options) {
	if !b.requirePermission(session, interaction, lang, discordgo.PermissionManageMessages) {
		return
	}
	amount := opts.num("amount", 0)
	if amount < 1 || amount > b.cfg.Moderation.MaxPurge {
		b.respondError(session, interaction, lang, b.tf(lang, "purge_range", b.cfg.Moderation.MaxPurge))
		return
	}
	userID := ""
	if target := opts.user(session, "user"); target != nil {
		userID = target.ID
	}

	if err := session.InteractionRespond(interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	}); err != nil {
		b.logger.Warn("purge defer failed", zap.Error(err))
		return
	}

	deleted := 0
	before := ""
	now := time.Now()
	var failure error
	for deleted < amount {
		batch, err := session.ChannelMessages(interaction.ChannelID, 100, before, "", "", discordgo.WithContext(ctx))
		if err != nil {
			failure = err
			break
		}
		if len(batch) == 0 {
			break
		}
		before = batch[len(batch)-1].ID
		ids, done := purgeable(batch, amount-deleted, userID, now)
		if err := session.ChannelMessagesBulkDelete(interaction.ChannelID, ids); err != nil {
			failure = err
			break
		}
		deleted += len(ids)
		if done || len(batch) < 100 {
			break
		}
	}

	content := b.tf(lang, "purge_done", deleted)
	if failure != nil {
		content = b.actionError(lang, failure)
	}
	if _, err := session.InteractionResponseEdit(interaction.Interaction, &discordgo.WebhookEdit{Content: &content}); err != nil {
		b.logger.Warn("purge reply failed", zap.Error(err))
	}
	if deleted > 0 {
		b.audit.Log(ctx, interaction.GuildID, interactionUser(interaction).ID, userID, audit.ActionPurge, fmt.Sprintf("%d messages in %s", deleted, channelMention(interaction.ChannelID)))
	}
}

// notifyModLog posts a moderation entry to the guild's mod-log channel.
func (b *Bot) notifyModLog(ctx context.Context, action storage.ModAction) {
	settings := b.guildSettings(ctx, action.GuildID)
	if settings.ModLogChannel == "" {
		return
	}
	lang := settings.Language
	fields := []*discordgo.MessageEmbedField{
		{Name: b.t(lang, "field_moderator"), Value: mention(action.ModeratorID), Inline: true},
	}
	if action.TargetID != "" {
		fields = append(fields, &discordgo.MessageEmbedField{Name: b.t(lang, "field_user"), Value: mention(action.TargetID), Inline: true})
	}
	if action.Reason != "" {
		fields = append(fields, &discordgo.MessageEmbedField{Name: b.t(lang, "field_reason"), Value: action.Reason})
	}
	title := b.tf(lang, "modlog_title", strings.ToUpper(action.Action))
	b.sendLog(action.GuildID, settings.ModLogChannel, b.commandEmbed(title, "", b.cfg.EmbedColors.Action, fields))
}
