package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"guildkeeper/internal/utils"

	"github.com/bwmarrin/discordgo"
)

// Embed field values are capped at 1024 characters.
const fieldLimit = 1017

type snipedMessage struct {
	AuthorID    string
	AuthorName  string
	Content     string
	Attachments int
	DeletedAt   time.Time
}

func (b *Bot) onMessageDelete(session *discordgo.Session, event *discordgo.MessageDelete) {
	if event.GuildID == "" {
		return
	}
	before := event.BeforeDelete
	if before == nil || before.Author == nil || before.Author.Bot {
		return
	}
	b.snipes.Store(event.ChannelID, snipedMessage{
		AuthorID:    before.Author.ID,
		AuthorName:  before.Author.Username,
		Content:     before.Content,
		Attachments: len(before.Attachments),
		DeletedAt:   time.Now(),
	})

	ctx := context.Background()
	settings := b.guildSettings(ctx, event.GuildID)
	if settings.MessageLogChannel == "" {
		return
	}
	lang := settings.Language
	embed := b.commandEmbed(b.t(lang, "log_message_deleted"), "", b.cfg.EmbedColors.Error, b.deletedMessageFields(lang, before))
	b.sendLog(event.GuildID, settings.MessageLogChannel, embed)
}

func (b *Bot) deletedMessageFields(lang string, msg *discordgo.Message) []*discordgo.MessageEmbedField {
	content := msg.Content
	if content == "" {
		content = b.t(lang, "value_empty")
	}
	fields := []*discordgo.MessageEmbedField{
		{Name: b.t(lang, "field_author"), Value: mention(msg.Author.ID), Inline: true},
		{Name: b.t(lang, "field_channel"), Value: channelMention(msg.ChannelID), Inline: true},
		{Name: b.t(lang, "field_content"), Value: utils.Truncate(content, fieldLimit)},
	}
	if n := len(msg.Attachments); n > 0 {
		fields = append(fields, &discordgo.MessageEmbedField{Name: b.t(lang, "field_attachments"), Value: fmt.Sprintf("%d", n), Inline: true})
	}
	if links := linkList(msg.Content); links != "" {
		fields = append(fields, &discordgo.MessageEmbedField{Name: b.t(lang, "field_links"), Value: links})
	}
	return fields
}

// linkList renders the normalised links in content, one per line.
func linkList(content string) string {
	links := utils.ExtractLinks(content)
	if len(links) == 0 {
		return ""
	}
	lines := make([]string, 0, len(links))
	for _, link := range links {
		lines = append(lines, link.URL)
	}
	return utils.Truncate(strings.Join(lines, "\n"), fieldLimit)
}

func (b *Bot) onMessageUpdate(session *discordgo.Session, event *discordgo.MessageUpdate) {
	if event.GuildID == "" || event.Message == nil || event.BeforeUpdate == nil {
		return
	}
	before := event.BeforeUpdate
	if before.Author == nil || before.Author.Bot || before.Content == event.Content {
		return
	}

	ctx := context.Background()
	settings := b.guildSettings(ctx, event.GuildID)
	if settings.MessageLogChannel == "" {
		return
	}
	lang := settings.Language
	fields := []*discordgo.MessageEmbedField{
		{Name: b.t(lang, "field_author"), Value: mention(before.Author.ID), Inline: true},
		{Name: b.t(lang, "field_channel"), Value: channelMention(event.ChannelID), Inline: true},
		{Name: b.t(lang, "field_before"), Value: utils.Truncate(b.orEmpty(lang, before.Content), 500)},
		{Name: b.t(lang, "field_after"), Value: utils.Truncate(b.orEmpty(lang, event.Content), 500)},
	}
	description := fmt.Sprintf("[%s](%s)", b.t(lang, "log_jump"), jumpLink(event.GuildID, event.ChannelID, event.ID))
	b.sendLog(event.GuildID, settings.MessageLogChannel, b.commandEmbed(b.t(lang, "log_message_edited"), description, b.cfg.EmbedColors.Warning, fields))
}

func (b *Bot) orEmpty(lang, content string) string {
	if strings.TrimSpace(content) == "" {
		return b.t(lang, "value_empty")
	}
	return content
}

func (b *Bot) onGuildMemberRemove(session *discordgo.Session, event *discordgo.GuildMemberRemove) {
	if event.GuildID == "" || event.Member == nil || event.Member.User == nil {
		return
	}
	ctx := context.Background()
	settings := b.guildSettings(ctx, event.GuildID)
	if settings.ServerLogChannel == "" {
		return
	}
	lang := settings.Language
	user := event.Member.User

	title := b.t(lang, "log_member_left")
	color := b.cfg.EmbedColors.Info
	fields := []*discordgo.MessageEmbedField{
		{Name: b.t(lang, "field_user"), Value: fmt.Sprintf("%s (%s)", mention(user.ID), user.Username), Inline: true},
	}
	if actorID := b.resolveAuditActor(event.GuildID, discordgo.AuditLogActionMemberKick, user.ID); actorID != "" {
		title = b.t(lang, "log_member_kicked")
		color = b.cfg.EmbedColors.Action
		fields = append(fields, &discordgo.MessageEmbedField{Name: b.t(lang, "field_by"), Value: mention(actorID), Inline: true})
	}
	if !event.Member.JoinedAt.IsZero() {
		fields = append(fields, &discordgo.MessageEmbedField{Name: b.t(lang, "field_joined"), Value: fmt.Sprintf("<t:%d:R>", event.Member.JoinedAt.Unix()), Inline: true})
	}
	b.sendLog(event.GuildID, settings.ServerLogChannel, b.commandEmbed(title, "", color, fields))
}

// serverEvent posts a create/delete notice with the responsible actor, when
// the audit log names one.
func (b *Bot) serverEvent(guildID, key, subject string, action discordgo.AuditLogAction, targetID string) {
	ctx := context.Background()
	settings := b.guildSettings(ctx, guildID)
	if settings.ServerLogChannel == "" {
		return
	}
	lang := settings.Language
	fields := []*discordgo.MessageEmbedField{}
	if actorID := b.resolveAuditActor(guildID, action, targetID); actorID != "" {
		fields = append(fields, &discordgo.MessageEmbedField{Name: b.t(lang, "field_by"), Value: mention(actorID), Inline: true})
	}
	b.sendLog(guildID, settings.ServerLogChannel, b.commandEmbed(b.t(lang, key), subject, b.cfg.EmbedColors.Info, fields))
}

func (b *Bot) onChannelCreate(session *discordgo.Session, event *discordgo.ChannelCreate) {
	if event.Channel == nil || event.Channel.GuildID == "" {
		return
	}
	b.serverEvent(event.Channel.GuildID, "log_channel_created", fmt.Sprintf("%s (`%s`)", channelMention(event.Channel.ID), event.Channel.Name), discordgo.AuditLogActionChannelCreate, event.Channel.ID)
}

func (b *Bot) onChannelDelete(session *discordgo.Session, event *discordgo.ChannelDelete) {
	if event.Channel == nil || event.Channel.GuildID == "" {
		return
	}
	b.lockMu.Lock()
	delete(b.locks, event.Channel.ID)
	b.lockMu.Unlock()
	b.snipes.Delete(event.Channel.ID)
	b.serverEvent(event.Channel.GuildID, "log_channel_deleted", "`#"+event.Channel.Name+"`", discordgo.AuditLogActionChannelDelete, event.Channel.ID)
}

func (b *Bot) onRoleCreate(session *discordgo.Session, event *discordgo.GuildRoleCreate) {
	if event.GuildID == "" || event.Role == nil {
		return
	}
	b.serverEvent(event.GuildID, "log_role_created", roleMention(event.Role.ID), discordgo.AuditLogActionRoleCreate, event.Role.ID)
}

func (b *Bot) onRoleDelete(session *discordgo.Session, event *discordgo.GuildRoleDelete) {
	if event.GuildID == "" || event.RoleID == "" {
		return
	}
	b.serverEvent(event.GuildID, "log_role_deleted", "`"+event.RoleID+"`", discordgo.AuditLogActionRoleDelete, event.RoleID)
}
