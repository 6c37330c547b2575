package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"guildkeeper/internal/storage"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

func afkKey(guildID, userID string) string {
	return guildID + ":" + userID
}

// renderWelcome fills the {user}, {server} and {count} placeholders.
func renderWelcome(template, userMention, server string, count int) string {
	return strings.NewReplacer(
		"{user}", userMention,
		"{server}", server,
		"{count}", strconv.Itoa(count),
	).Replace(template)
}

func (b *Bot) onGuildMemberAdd(session *discordgo.Session, event *discordgo.GuildMemberAdd) {
	if event.GuildID == "" || event.Member == nil || event.Member.User == nil {
		return
	}
	user := event.Member.User
	recent := b.joins.Add(event.GuildID, user.ID, time.Now())
	if user.Bot {
		return
	}

	ctx := context.Background()
	settings := b.guildSettings(ctx, event.GuildID)
	lang := settings.Language

	if settings.AutoroleID != "" {
		if err := session.GuildMemberRoleAdd(event.GuildID, user.ID, settings.AutoroleID); err != nil {
			b.logger.Warn("autorole failed", zap.String("guild_id", event.GuildID), zap.String("role_id", settings.AutoroleID), zap.Error(err))
		}
	}

	server, count := event.GuildID, 0
	if guild := b.guild(event.GuildID); guild != nil {
		server, count = guild.Name, guild.MemberCount
	}

	if settings.WelcomeChannel != "" {
		template := settings.WelcomeMessage
		if template == "" {
			template = b.t(lang, "welcome_default")
		}
		embed := b.commandEmbed(b.t(lang, "welcome_title"), renderWelcome(template, mention(user.ID), server, count), b.cfg.EmbedColors.Success, nil)
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: user.AvatarURL("128")}
		if _, err := session.ChannelMessageSendComplex(settings.WelcomeChannel, &discordgo.MessageSend{
			Content: mention(user.ID),
			Embeds:  []*discordgo.MessageEmbed{embed},
		}); err != nil {
			b.logger.Warn("welcome failed", zap.String("guild_id", event.GuildID), zap.Error(err))
		}
	}

	if settings.ServerLogChannel != "" {
		created := ""
		if ts, err := discordgo.SnowflakeTimestamp(user.ID); err == nil {
			created = fmt.Sprintf("<t:%d:R>", ts.Unix())
		}
		fields := []*discordgo.MessageEmbedField{
			{Name: b.t(lang, "field_user"), Value: fmt.Sprintf("%s (%s)", mention(user.ID), user.Username), Inline: true},
			{Name: b.t(lang, "field_account_created"), Value: created, Inline: true},
			{Name: b.t(lang, "field_recent_joins"), Value: strconv.Itoa(recent), Inline: true},
		}
		b.sendLog(event.GuildID, settings.ServerLogChannel, b.commandEmbed(b.t(lang, "log_member_joined"), "", b.cfg.EmbedColors.Success, fields))
	}
}

func (b *Bot) handleRecentJoins(session *discordgo.Session, interaction *discordgo.InteractionCreate, lang string) {
	if !b.requirePermission(session, interaction, lang, discordgo.PermissionKickMembers) {
		return
	}
	joins := b.joins.List(interaction.GuildID, time.Now())
	if len(joins) == 0 {
		b.respondEmbed(session, interaction, b.commandEmbed(b.t(lang, "recentjoins_title"), b.t(lang, "recentjoins_none"), b.cfg.EmbedColors.Info, nil), true)
		return
	}
	lines := make([]string, 0, len(joins))
	for i, join := range joins {
		if i >= 25 {
			break
		}
		lines = append(lines, fmt.Sprintf("%s <t:%d:R>", mention(join.UserID), join.At.Unix()))
	}
	description := b.tf(lang, "recentjoins_count", len(joins)) + "\n\n" + strings.Join(lines, "\n")
	b.respondEmbed(session, interaction, b.commandEmbed(b.t(lang, "recentjoins_title"), description, b.cfg.EmbedColors.Info, nil), true)
}

func (b *Bot) loadAFK(ctx context.Context) error {
	statuses, err := b.store.ListAFK(ctx)
	if err != nil {
		return err
	}
	for _, status := range statuses {
		b.afk.Store(afkKey(status.GuildID, status.UserID), status)
	}
	return nil
}

// setAFK records the status in the cache and in storage.
func (b *Bot) setAFK(ctx context.Context, guildID, userID, reason string) error {
	status := storage.AFKStatus{GuildID: guildID, UserID: userID, Reason: reason, Since: time.Now().UTC()}
	if err := b.store.SetAFK(ctx, status); err != nil {
		return err
	}
	b.afk.Store(afkKey(guildID, userID), status)
	return nil
}

func (b *Bot) handleAFK(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, lang string, opts options) {
	user := interactionUser(interaction)
	if interaction.GuildID == "" || user == nil {
		b.respondError(session, interaction, lang, b.t(lang, "error_only_guild"))
		return
	}
	reason := opts.str("reason", "AFK")
	if err := b.setAFK(ctx, interaction.GuildID, user.ID, reason); err != nil {
		b.logger.Warn("afk not stored", zap.String("guild_id", interaction.GuildID), zap.Error(err))
		b.respondError(session, interaction, lang, b.t(lang, "error_failed"))
		return
	}
	b.respondEmbed(session, interaction, b.commandEmbed(b.t(lang, "afk_title"), b.tf(lang, "afk_set", mention(user.ID), reason), b.cfg.EmbedColors.Info, nil), false)
}

// checkAFK clears the author's status and answers mentions of AFK members.
func (b *Bot) checkAFK(ctx context.Context, session *discordgo.Session, msg *discordgo.MessageCreate, lang string) {
	key := afkKey(msg.GuildID, msg.Author.ID)
	if _, ok := b.afk.LoadAndDelete(key); ok {
		if err := b.store.ClearAFK(ctx, msg.GuildID, msg.Author.ID); err != nil {
			b.logger.Warn("afk not cleared", zap.String("guild_id", msg.GuildID), zap.Error(err))
		}
		b.reply(session, msg, b.tf(lang, "afk_back", mention(msg.Author.ID)))
	}

	notices := make([]string, 0, len(msg.Mentions))
	for _, user := range msg.Mentions {
		if user == nil || user.ID == msg.Author.ID {
			continue
		}
		if status, ok := b.afk.Load(afkKey(msg.GuildID, user.ID)); ok {
			notices = append(notices, b.tf(lang, "afk_notice", user.Username, status.Reason, status.Since.Unix()))
		}
	}
	if len(notices) > 0 {
		b.reply(session, msg, strings.Join(notices, "\n"))
	}
}

func (b *Bot) reply(session *discordgo.Session, msg *discordgo.MessageCreate, content string) {
	if _, err := session.ChannelMessageSendReply(msg.ChannelID, content, msg.Reference()); err != nil {
		b.logger.Debug("reply failed", zap.String("channel_id", msg.ChannelID), zap.Error(err))
	}
}

func (b *Bot) snipeEmbed(lang, channelID string) *discordgo.MessageEmbed {
	sniped, ok := b.snipes.Load(channelID)
	if !ok {
		return nil
	}
	content := sniped.Content
	if content == "" {
		content = b.t(lang, "value_empty")
	}
	embed := b.commandEmbed(b.tf(lang, "snipe_title", sniped.AuthorName), content, b.cfg.EmbedColors.Info, nil)
	embed.Timestamp = sniped.DeletedAt.Format(time.RFC3339)
	if sniped.Attachments > 0 {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: b.tf(lang, "snipe_attachments", sniped.Attachments)}
	}
	return embed
}

func (b *Bot) handleSnipe(session *discordgo.Session, interaction *discordgo.InteractionCreate, lang string) {
	if !b.requirePermission(session, interaction, lang, discordgo.PermissionManageMessages) {
		return
	}
	embed := b.snipeEmbed(lang, interaction.ChannelID)
	if embed == nil {
		b.respondError(session, interaction, lang, b.t(lang, "snipe_none"))
		return
	}
	b.respondEmbed(session, interaction, embed, false)
}
