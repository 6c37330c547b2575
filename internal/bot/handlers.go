package bot

import (
	"context"
	"strings"

	"guildkeeper/internal/config"
	"guildkeeper/internal/storage"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

type options map[string]*discordgo.ApplicationCommandInteractionDataOption

func optionMap(opts []*discordgo.ApplicationCommandInteractionDataOption) options {
	out := make(options, len(opts))
	for _, opt := range opts {
		out[opt.Name] = opt
	}
	return out
}

func (o options) str(name, fallback string) string {
	if opt, ok := o[name]; ok {
		if value := strings.TrimSpace(opt.StringValue()); value != "" {
			return value
		}
	}
	return fallback
}

func (o options) num(name string, fallback int) int {
	if opt, ok := o[name]; ok {
		return int(opt.IntValue())
	}
	return fallback
}

func (o options) user(session *discordgo.Session, name string) *discordgo.User {
	if opt, ok := o[name]; ok {
		return opt.UserValue(session)
	}
	return nil
}

func (o options) channelID(name string) string {
	if opt, ok := o[name]; ok {
		if id, ok := opt.Value.(string); ok {
			return id
		}
	}
	return ""
}

func (o options) roleID(name string) string {
	return o.channelID(name)
}

func (b *Bot) onInteractionCreate(session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	ctx := context.Background()
	switch interaction.Type {
	case discordgo.InteractionMessageComponent:
		if interaction.MessageComponentData().CustomID == giveawayButtonID {
			b.handleGiveawayButton(ctx, session, interaction)
		}
		return
	case discordgo.InteractionApplicationCommand:
	default:
		return
	}

	data := interaction.ApplicationCommandData()
	lang := b.lang(ctx, interaction.GuildID)
	opts := optionMap(data.Options)

	switch data.Name {
	case "giveaway":
		b.handleGiveawayCreate(ctx, session, interaction, lang, opts)
	case "endgiveaway":
		b.handleEndGiveaway(ctx, session, interaction, lang, opts)
	case "reroll":
		b.handleReroll(ctx, session, interaction, lang, opts)
	case "giveaways":
		b.handleGiveawayList(session, interaction, lang)
	case "config":
		b.handleConfigCommand(ctx, session, interaction, lang, data.Options)
	case "kick", "ban", "unban", "softban", "mute", "unmute", "nick":
		b.handleMemberAction(ctx, session, interaction, lang, data.Name, opts)
	case "warn", "warnings", "clearwarns", "delwarn", "case", "editcase":
		b.handleWarningCommand(ctx, session, interaction, lang, data.Name, opts)
	case "purge":
		b.handlePurge(ctx, session, interaction, lang, opts)
	case "lock", "unlock", "slowmode":
		b.handleChannelCommand(ctx, session, interaction, lang, data.Name, opts)
	case "addrole", "rmrole":
		b.handleRoleCommand(ctx, session, interaction, lang, data.Name, opts)
	case "recentjoins":
		b.handleRecentJoins(session, interaction, lang)
	case "afk":
		b.handleAFK(ctx, session, interaction, lang, opts)
	case "snipe":
		b.handleSnipe(session, interaction, lang)
	case "rate", "rps", "8ball", "random":
		b.handleFunCommand(session, interaction, lang, data.Name, opts)
	case "poll":
		b.handlePoll(session, interaction, lang, opts)
	case "color":
		b.handleColor(session, interaction, lang, opts)
	case "invite":
		b.handleInvite(session, interaction, lang)
	case "ping", "uptime", "userinfo", "serverinfo", "avatar":
		b.handleInfoCommand(session, interaction, lang, data.Name, opts)
	case "modstats":
		b.handleModStats(ctx, session, interaction, lang, opts)
	default:
		b.respondError(session, interaction, lang, b.t(lang, "error_unknown"))
	}
}

func (b *Bot) handleConfigCommand(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, lang string, raw []*discordgo.ApplicationCommandInteractionDataOption) {
	if !b.requirePermission(session, interaction, lang, discordgo.PermissionManageServer) {
		return
	}
	if len(raw) == 0 {
		b.respondError(session, interaction, lang, b.t(lang, "error_no_subcommand"))
		return
	}
	sub := raw[0]
	opts := optionMap(sub.Options)
	settings := b.guildSettings(ctx, interaction.GuildID)
	title := b.t(lang, "config_title")

	switch sub.Name {
	case "show":
		b.respondEmbed(session, interaction, b.commandEmbed(title, b.t(lang, "config_current"), b.cfg.EmbedColors.Info, b.settingsFields(lang, settings)), true)
		return
	case "prefix":
		value := opts.str("value", "")
		if value == "" || len(value) > 5 || strings.ContainsAny(value, " \t\n") {
			b.respondError(session, interaction, lang, b.t(lang, "error_prefix_invalid"))
			return
		}
		settings.Prefix = value
	case "welcome-channel":
		settings.WelcomeChannel = opts.channelID("channel")
	case "welcome-message":
		settings.WelcomeMessage = opts.str("text", "")
	case "autorole":
		settings.AutoroleID = opts.roleID("role")
	case "message-log":
		settings.MessageLogChannel = opts.channelID("channel")
	case "server-log":
		settings.ServerLogChannel = opts.channelID("channel")
	case "mod-log":
		settings.ModLogChannel = opts.channelID("channel")
	case "language":
		settings.Language = config.NormalizeLanguage(opts.str("value", lang))
		lang = settings.Language
		title = b.t(lang, "config_title")
	default:
		b.respondError(session, interaction, lang, b.t(lang, "error_unknown"))
		return
	}

	if err := b.store.UpsertGuildSettings(ctx, settings); err != nil {
		b.logger.Warn("config update failed", zap.String("guild_id", interaction.GuildID), zap.String("key", sub.Name), zap.Error(err))
		b.respondError(session, interaction, lang, b.t(lang, "error_failed"))
		return
	}
	b.respondEmbed(session, interaction, b.commandEmbed(title, b.t(lang, "config_updated"), b.cfg.EmbedColors.Success, b.settingsFields(lang, settings)), true)
}

func (b *Bot) settingsFields(lang string, settings storage.GuildSettings) []*discordgo.MessageEmbedField {
	channel := func(id string) string {
		if id == "" {
			return b.t(lang, "value_not_set")
		}
		return channelMention(id)
	}
	autorole := b.t(lang, "value_not_set")
	if settings.AutoroleID != "" {
		autorole = roleMention(settings.AutoroleID)
	}
	welcome := settings.WelcomeMessage
	if welcome == "" {
		welcome = b.t(lang, "value_default")
	}
	return []*discordgo.MessageEmbedField{
		{Name: b.t(lang, "field_prefix"), Value: "`" + settings.Prefix + "`", Inline: true},
		{Name: b.t(lang, "field_language"), Value: settings.Language, Inline: true},
		{Name: b.t(lang, "field_autorole"), Value: autorole, Inline: true},
		{Name: b.t(lang, "field_welcome_channel"), Value: channel(settings.WelcomeChannel), Inline: true},
		{Name: b.t(lang, "field_message_log"), Value: channel(settings.MessageLogChannel), Inline: true},
		{Name: b.t(lang, "field_server_log"), Value: channel(settings.ServerLogChannel), Inline: true},
		{Name: b.t(lang, "field_mod_log"), Value: channel(settings.ModLogChannel), Inline: true},
		{Name: b.t(lang, "field_welcome_message"), Value: welcome, Inline: false},
	}
}
