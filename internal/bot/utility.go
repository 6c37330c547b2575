package bot

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strconv"
	"strings"
	"time"

	"guildkeeper/internal/analytics"
	"guildkeeper/internal/giveaway"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
	"golang.org/x/image/colornames"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/oauth2"
)

var pollEmojis = []string{"1️⃣", "2️⃣", "3️⃣", "4️⃣", "5️⃣", "6️⃣", "7️⃣", "8️⃣", "9️⃣", "🔟"}

const invitePermissions = discordgo.PermissionViewChannel |
	discordgo.PermissionSendMessages |
	discordgo.PermissionEmbedLinks |
	discordgo.PermissionAttachFiles |
	discordgo.PermissionReadMessageHistory |
	discordgo.PermissionAddReactions |
	discordgo.PermissionManageMessages |
	discordgo.PermissionManageChannels |
	discordgo.PermissionManageRoles |
	discordgo.PermissionManageNicknames |
	discordgo.PermissionKickMembers |
	discordgo.PermissionBanMembers |
	discordgo.PermissionModerateMembers |
	discordgo.PermissionViewAuditLogs

// parsePollOptions splits "a | b | c" into 2..10 trimmed, non-empty options.
func parsePollOptions(raw string) ([]string, bool) {
	var out []string
	for _, part := range strings.Split(raw, "|") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out, len(out) >= 2 && len(out) <= len(pollEmojis)
}

func (b *Bot) handlePoll(session *discordgo.Session, interaction *discordgo.InteractionCreate, lang string, opts options) {
	question := opts.str("question", "")
	choices, ok := parsePollOptions(opts.str("options", ""))
	if question == "" || !ok {
		b.respondError(session, interaction, lang, b.t(lang, "poll_invalid"))
		return
	}
	lines := make([]string, len(choices))
	for i, choice := range choices {
		lines[i] = pollEmojis[i] + " " + choice
	}
	embed := b.commandEmbed("📊 "+question, strings.Join(lines, "\n\n"), b.cfg.EmbedColors.Info, nil)
	if user := interactionUser(interaction); user != nil {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: b.tf(lang, "poll_by", user.Username)}
	}

	msg, err := session.ChannelMessageSendEmbed(interaction.ChannelID, embed)
	if err != nil {
		b.respondError(session, interaction, lang, b.actionError(lang, err))
		return
	}
	for i := range choices {
		if err := session.MessageReactionAdd(msg.ChannelID, msg.ID, pollEmojis[i]); err != nil {
			b.logger.Debug("poll reaction failed", zap.Error(err))
			break
		}
	}
	b.respond(session, interaction, b.t(lang, "poll_created"), true)
}

// parseColor accepts "#rrggbb", "rrggbb", "0xrrggbb", "#rgb" or an SVG colour name.
func parseColor(value string) (color.RGBA, bool) {
	value = strings.ToLower(strings.TrimSpace(value))
	if named, ok := colornames.Map[strings.ReplaceAll(value, " ", "")]; ok {
		return named, true
	}
	value = strings.TrimPrefix(strings.TrimPrefix(value, "#"), "0x")
	if len(value) == 3 {
		value = string([]byte{value[0], value[0], value[1], value[1], value[2], value[2]})
	}
	if len(value) != 6 {
		return color.RGBA{}, false
	}
	n, err := strconv.ParseUint(value, 16, 32)
	if err != nil {
		return color.RGBA{}, false
	}
	return color.RGBA{R: uint8(n >> 16), G: uint8(n >> 8), B: uint8(n), A: 0xff}, true
}

func hexColor(c color.RGBA) string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// swatchPNG renders a filled rectangle labelled with the hex code.
func swatchPNG(c color.RGBA) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, 160, 80))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)

	label := color.RGBA{A: 0xff}
	if int(c.R)*299+int(c.G)*587+int(c.B)*114 < 128000 {
		label = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	}
	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(label),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(8, 72),
	}
	drawer.DrawString(hexColor(c))

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (b *Bot) handleColor(session *discordgo.Session, interaction *discordgo.InteractionCreate, lang string, opts options) {
	c, ok := parseColor(opts.str("value", ""))
	if !ok {
		b.respondError(session, interaction, lang, b.t(lang, "color_invalid"))
		return
	}
	data, err := swatchPNG(c)
	if err != nil {
		b.logger.Warn("swatch render failed", zap.Error(err))
		b.respondError(session, interaction, lang, b.t(lang, "error_failed"))
		return
	}
	hex := hexColor(c)
	embed := b.commandEmbed(hex, fmt.Sprintf("RGB(%d, %d, %d)", c.R, c.G, c.B), int(c.R)<<16|int(c.G)<<8|int(c.B), nil)
	embed.Image = &discordgo.MessageEmbedImage{URL: "attachment://swatch.png"}
	if err := session.InteractionRespond(interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
			Files:  []*discordgo.File{{Name: "swatch.png", ContentType: "image/png", Reader: bytes.NewReader(data)}},
		},
	}); err != nil {
		b.logger.Warn("color response failed", zap.Error(err))
	}
}

// inviteURL builds the bot authorisation link through the OAuth2 authorize endpoint.
func inviteURL(applicationID string, permissions int64) string {
	cfg := oauth2.Config{
		ClientID: applicationID,
		Endpoint: oauth2.Endpoint{AuthURL: "https://discord.com/oauth2/authorize"},
		Scopes:   []string{"bot", "applications.commands"},
	}
	return cfg.AuthCodeURL("", oauth2.SetAuthURLParam("permissions", strconv.FormatInt(permissions, 10)))
}

func (b *Bot) handleInvite(session *discordgo.Session, interaction *discordgo.InteractionCreate, lang string) {
	appID := b.cfg.ApplicationID
	if appID == "" && session.State != nil && session.State.User != nil {
		appID = session.State.User.ID
	}
	if appID == "" {
		b.respondError(session, interaction, lang, b.t(lang, "error_failed"))
		return
	}
	description := fmt.Sprintf("[%s](%s)", b.t(lang, "invite_link"), inviteURL(appID, invitePermissions))
	b.respondEmbed(session, interaction, b.commandEmbed(b.t(lang, "invite_title"), description, b.cfg.EmbedColors.Info, nil), true)
}

func (b *Bot) handleInfoCommand(session *discordgo.Session, interaction *discordgo.InteractionCreate, lang, name string, opts options) {
	switch name {
	case "ping":
		latency := session.HeartbeatLatency().Round(time.Millisecond)
		b.respondEmbed(session, interaction, b.commandEmbed("🏓 Pong!", b.tf(lang, "ping_body", latency.String()), b.cfg.EmbedColors.Info, nil), false)

	case "uptime":
		uptime := time.Since(b.started).Truncate(time.Second)
		b.respondEmbed(session, interaction, b.commandEmbed(b.t(lang, "uptime_title"), b.tf(lang, "uptime_body", giveaway.FormatDuration(uptime), b.started.Unix()), b.cfg.EmbedColors.Info, nil), false)

	case "avatar":
		user := opts.user(session, "user")
		if user == nil {
			user = interactionUser(interaction)
		}
		embed := b.commandEmbed(b.tf(lang, "avatar_title", user.Username), "", b.cfg.EmbedColors.Info, nil)
		embed.Image = &discordgo.MessageEmbedImage{URL: user.AvatarURL("1024")}
		b.respondEmbed(session, interaction, embed, false)

	case "userinfo":
		user := opts.user(session, "user")
		if user == nil {
			user = interactionUser(interaction)
		}
		b.respondEmbed(session, interaction, b.userInfoEmbed(lang, interaction.GuildID, user), false)

	case "serverinfo":
		guild := b.guild(interaction.GuildID)
		if guild == nil {
			b.respondError(session, interaction, lang, b.t(lang, "error_only_guild"))
			return
		}
		b.respondEmbed(session, interaction, b.serverInfoEmbed(lang, guild), false)
	}
}

func (b *Bot) userInfoEmbed(lang, guildID string, user *discordgo.User) *discordgo.MessageEmbed {
	fields := []*discordgo.MessageEmbedField{
		{Name: "ID", Value: user.ID, Inline: true},
		{Name: b.t(lang, "field_bot"), Value: strconv.FormatBool(user.Bot), Inline: true},
	}
	if ts, err := discordgo.SnowflakeTimestamp(user.ID); err == nil {
		fields = append(fields, &discordgo.MessageEmbedField{Name: b.t(lang, "field_account_created"), Value: fmt.Sprintf("<t:%d:D>", ts.Unix()), Inline: true})
	}
	if guildID != "" {
		if member := b.memberForUser(guildID, user.ID); member != nil {
			if !member.JoinedAt.IsZero() {
				fields = append(fields, &discordgo.MessageEmbedField{Name: b.t(lang, "field_joined"), Value: fmt.Sprintf("<t:%d:D>", member.JoinedAt.Unix()), Inline: true})
			}
			if len(member.Roles) > 0 {
				roles := make([]string, 0, len(member.Roles))
				for _, id := range member.Roles {
					roles = append(roles, roleMention(id))
				}
				fields = append(fields, &discordgo.MessageEmbedField{Name: b.tf(lang, "field_roles", len(roles)), Value: truncateList(roles, fieldLimit)})
			}
		}
	}
	embed := b.commandEmbed(user.Username, mention(user.ID), b.cfg.EmbedColors.Info, fields)
	embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: user.AvatarURL("256")}
	return embed
}

func (b *Bot) serverInfoEmbed(lang string, guild *discordgo.Guild) *discordgo.MessageEmbed {
	text, voice := 0, 0
	for _, channel := range guild.Channels {
		switch channel.Type {
		case discordgo.ChannelTypeGuildText, discordgo.ChannelTypeGuildNews:
			text++
		case discordgo.ChannelTypeGuildVoice, discordgo.ChannelTypeGuildStageVoice:
			voice++
		}
	}
	fields := []*discordgo.MessageEmbedField{
		{Name: "ID", Value: guild.ID, Inline: true},
		{Name: b.t(lang, "field_owner"), Value: mention(guild.OwnerID), Inline: true},
		{Name: b.t(lang, "field_members"), Value: strconv.Itoa(guild.MemberCount), Inline: true},
		{Name: b.t(lang, "field_channels"), Value: fmt.Sprintf("%d / %d", text, voice), Inline: true},
		{Name: b.t(lang, "field_role_count"), Value: strconv.Itoa(len(guild.Roles)), Inline: true},
		{Name: b.t(lang, "field_boosts"), Value: fmt.Sprintf("%d (tier %d)", guild.PremiumSubscriptionCount, guild.PremiumTier), Inline: true},
	}
	if ts, err := discordgo.SnowflakeTimestamp(guild.ID); err == nil {
		fields = append(fields, &discordgo.MessageEmbedField{Name: b.t(lang, "field_created"), Value: fmt.Sprintf("<t:%d:D>", ts.Unix()), Inline: true})
	}
	embed := b.commandEmbed(guild.Name, guild.Description, b.cfg.EmbedColors.Info, fields)
	if guild.Icon != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: discordgo.EndpointGuildIcon(guild.ID, guild.Icon)}
	}
	return embed
}

// truncateList joins items with spaces, dropping the tail that does not fit.
func truncateList(items []string, max int) string {
	var out strings.Builder
	for i, item := range items {
		extra := len(item)
		if i > 0 {
			extra++
		}
		if out.Len()+extra > max {
			out.WriteString(" …")
			break
		}
		if i > 0 {
			out.WriteByte(' ')
		}
		out.WriteString(item)
	}
	return out.String()
}

func (b *Bot) handleModStats(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, lang string, opts options) {
	if !b.requirePermission(session, interaction, lang, discordgo.PermissionModerateMembers) {
		return
	}
	period := opts.str("period", "week")
	report, err := b.analytics.Report(ctx, interaction.GuildID, analytics.PeriodStart(period, time.Now()))
	if err != nil {
		b.logger.Warn("modstats failed", zap.String("guild_id", interaction.GuildID), zap.Error(err))
		b.respondError(session, interaction, lang, b.t(lang, "error_failed"))
		return
	}
	b.respondEmbed(session, interaction, b.modStatsEmbed(lang, period, report), true)
}

func (b *Bot) modStatsEmbed(lang, period string, report analytics.Report) *discordgo.MessageEmbed {
	if report.Total == 0 {
		return b.commandEmbed(b.tf(lang, "modstats_title", period), b.t(lang, "modstats_none"), b.cfg.EmbedColors.Info, nil)
	}
	actions := make([]string, 0, len(report.ByAction))
	for _, count := range report.Actions() {
		actions = append(actions, fmt.Sprintf("`%s` %d", count.Key, count.Total))
	}
	moderators := make([]string, 0, 5)
	for i, count := range report.TopModerators(5) {
		moderators = append(moderators, fmt.Sprintf("%d. %s (%d)", i+1, mention(count.Key), count.Total))
	}
	fields := []*discordgo.MessageEmbedField{
		{Name: b.t(lang, "field_actions"), Value: strings.Join(actions, "\n"), Inline: true},
		{Name: b.t(lang, "field_top_moderators"), Value: strings.Join(moderators, "\n"), Inline: true},
	}
	return b.commandEmbed(b.tf(lang, "modstats_title", period), b.tf(lang, "modstats_total", report.Total), b.cfg.EmbedColors.Info, fields)
}
