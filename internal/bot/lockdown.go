package bot

import (
	"context"
	"fmt"

	"guildkeeper/internal/modules/audit"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// everyoneOverwrite reads the @everyone overwrite of a channel.
func everyoneOverwrite(channel *discordgo.Channel, guildID string) channelSnapshot {
	snap := channelSnapshot{}
	if channel == nil {
		return snap
	}
	for _, overwrite := range channel.PermissionOverwrites {
		if overwrite.Type == discordgo.PermissionOverwriteTypeRole && overwrite.ID == guildID {
			snap.allow = overwrite.Allow
			snap.deny = overwrite.Deny
			snap.hasPerm = true
			break
		}
	}
	return snap
}

// unlockedOverwrite is used when no snapshot survived: only the send deny we
// added is removed.
func unlockedOverwrite(current channelSnapshot) channelSnapshot {
	current.deny &^= discordgo.PermissionSendMessages
	current.hasPerm = current.allow != 0 || current.deny != 0
	return current
}

func (b *Bot) targetChannel(interaction *discordgo.InteractionCreate, opts options) (*discordgo.Channel, error) {
	channelID := opts.channelID("channel")
	if channelID == "" {
		channelID = interaction.ChannelID
	}
	if channel, err := b.session.State.Channel(channelID); err == nil && channel != nil {
		return channel, nil
	}
	return b.session.Channel(channelID)
}

func (b *Bot) handleChannelCommand(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, lang, name string, opts options) {
	if !b.requirePermission(session, interaction, lang, discordgo.PermissionManageChannels) {
		return
	}
	channel, err := b.targetChannel(interaction, opts)
	if err != nil || channel == nil || channel.GuildID != interaction.GuildID {
		b.respondError(session, interaction, lang, b.t(lang, "error_channel_not_found"))
		return
	}
	moderator := interactionUser(interaction)
	guildID := interaction.GuildID

	switch name {
	case "lock":
		reason := opts.str("reason", b.t(lang, "reason_none"))
		b.lockMu.Lock()
		if _, locked := b.locks[channel.ID]; locked {
			b.lockMu.Unlock()
			b.respondError(session, interaction, lang, b.t(lang, "lock_already"))
			return
		}
		snap := everyoneOverwrite(channel, guildID)
		b.locks[channel.ID] = snap
		b.lockMu.Unlock()

		err = session.ChannelPermissionSet(channel.ID, guildID, discordgo.PermissionOverwriteTypeRole, snap.allow&^discordgo.PermissionSendMessages, snap.deny|discordgo.PermissionSendMessages, discordgo.WithAuditLogReason(reason))
		if err != nil {
			b.lockMu.Lock()
			delete(b.locks, channel.ID)
			b.lockMu.Unlock()
			b.respondError(session, interaction, lang, b.actionError(lang, err))
			return
		}
		b.audit.Log(ctx, guildID, moderator.ID, "", audit.ActionLock, fmt.Sprintf("%s %s", channelMention(channel.ID), reason))
		b.respondEmbed(session, interaction, b.commandEmbed(b.t(lang, "mod_title"), b.tf(lang, "lock_done", channelMention(channel.ID)), b.cfg.EmbedColors.Warning, nil), false)

	case "unlock":
		b.lockMu.Lock()
		snap, ok := b.locks[channel.ID]
		delete(b.locks, channel.ID)
		b.lockMu.Unlock()
		if !ok {
			snap = unlockedOverwrite(everyoneOverwrite(channel, guildID))
		}
		if snap.hasPerm {
			err = session.ChannelPermissionSet(channel.ID, guildID, discordgo.PermissionOverwriteTypeRole, snap.allow, snap.deny)
		} else {
			err = session.ChannelPermissionDelete(channel.ID, guildID)
		}
		if err != nil {
			b.respondError(session, interaction, lang, b.actionError(lang, err))
			return
		}
		b.audit.Log(ctx, guildID, moderator.ID, "", audit.ActionUnlock, channelMention(channel.ID))
		b.respondEmbed(session, interaction, b.commandEmbed(b.t(lang, "mod_title"), b.tf(lang, "unlock_done", channelMention(channel.ID)), b.cfg.EmbedColors.Success, nil), false)

	case "slowmode":
		seconds := opts.num("seconds", 0)
		if seconds < 0 || seconds > 21600 {
			b.respondError(session, interaction, lang, b.t(lang, "slowmode_range"))
			return
		}
		if _, err := session.ChannelEditComplex(channel.ID, &discordgo.ChannelEdit{RateLimitPerUser: &seconds}); err != nil {
			b.respondError(session, interaction, lang, b.actionError(lang, err))
			return
		}
		b.audit.Log(ctx, guildID, moderator.ID, "", audit.ActionSlowmode, fmt.Sprintf("%s %ds", channelMention(channel.ID), seconds))
		message := b.tf(lang, "slowmode_set", channelMention(channel.ID), seconds)
		if seconds == 0 {
			message = b.tf(lang, "slowmode_off", channelMention(channel.ID))
		}
		b.respondEmbed(session, interaction, b.commandEmbed(b.t(lang, "mod_title"), message, b.cfg.EmbedColors.Action, nil), false)
	}
}

func (b *Bot) handleRoleCommand(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, lang, name string, opts options) {
	if !b.requirePermission(session, interaction, lang, discordgo.PermissionManageRoles) {
		return
	}
	target := opts.user(session, "user")
	roleID := opts.roleID("role")
	if target == nil || roleID == "" {
		b.respondError(session, interaction, lang, b.t(lang, "error_user_not_found"))
		return
	}

	guild := b.guild(interaction.GuildID)
	position := -1
	if guild != nil {
		for _, role := range guild.Roles {
			if role.ID == roleID {
				position = role.Position
				break
			}
		}
	}
	if position < 0 {
		b.respondError(session, interaction, lang, b.t(lang, "error_role_not_found"))
		return
	}
	if topRolePosition(guild, interaction.Member) <= position {
		b.respondError(session, interaction, lang, b.t(lang, "error_hierarchy"))
		return
	}

	moderator := interactionUser(interaction)
	var (
		err    error
		action string
		key    string
	)
	if name == "addrole" {
		action, key = audit.ActionAddRole, "role_added"
		err = session.GuildMemberRoleAdd(interaction.GuildID, target.ID, roleID)
	} else {
		action, key = audit.ActionRmRole, "role_removed"
		err = session.GuildMemberRoleRemove(interaction.GuildID, target.ID, roleID)
	}
	if err != nil {
		b.respondError(session, interaction, lang, b.actionError(lang, err))
		return
	}
	b.logger.Debug("role changed", zap.String("guild_id", interaction.GuildID), zap.String("role_id", roleID), zap.String("action", action))
	b.audit.Log(ctx, interaction.GuildID, moderator.ID, target.ID, action, roleMention(roleID))
	b.respondEmbed(session, interaction, b.commandEmbed(b.t(lang, "mod_title"), b.tf(lang, key, roleMention(roleID), mention(target.ID)), b.cfg.EmbedColors.Success, nil), false)
}
