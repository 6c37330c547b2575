package bot

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"
	"time"

	"guildkeeper/internal/giveaway"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type prefixCommand struct {
	usage string
	run   func(ctx context.Context, session *discordgo.Session, msg *discordgo.MessageCreate, lang string, args []string)
}

// parsePrefix splits "!name arg arg" into a lower-cased name and its arguments.
func parsePrefix(content, prefix string) (string, []string, bool) {
	if prefix == "" || !strings.HasPrefix(content, prefix) {
		return "", nil, false
	}
	fields := strings.Fields(strings.TrimPrefix(content, prefix))
	if len(fields) == 0 {
		return "", nil, false
	}
	return strings.ToLower(fields[0]), fields[1:], true
}

func (b *Bot) prefixCommands() map[string]prefixCommand {
	return map[string]prefixCommand{
		"help":      {usage: "help", run: b.prefixHelp},
		"ping":      {usage: "ping", run: b.prefixPing},
		"rate":      {usage: "rate <thing>", run: b.prefixFun("rate")},
		"8ball":     {usage: "8ball <question>", run: b.prefixFun("8ball")},
		"rps":       {usage: "rps <rock|paper|scissors>", run: b.prefixFun("rps")},
		"afk":       {usage: "afk [reason]", run: b.prefixAFK},
		"snipe":     {usage: "snipe", run: b.prefixSnipe},
		"warnings":  {usage: "warnings [@user]", run: b.prefixWarnings},
		"giveaways": {usage: "giveaways", run: b.prefixGiveaways},
	}
}

// allow spends one token from the user's bucket.
func (b *Bot) allow(userID string) bool {
	limiter, ok := b.limiters.Load(userID)
	if !ok {
		every := time.Duration(b.cfg.Prefix.CooldownSeconds) * time.Second
		limiter, _ = b.limiters.LoadOrStore(userID, rate.NewLimiter(rate.Every(every), b.cfg.Prefix.Burst))
	}
	return limiter.Allow()
}

func (b *Bot) onMessageCreate(session *discordgo.Session, msg *discordgo.MessageCreate) {
	if msg.Author == nil || msg.Author.Bot || msg.GuildID == "" {
		return
	}
	ctx := context.Background()
	settings := b.guildSettings(ctx, msg.GuildID)
	lang := settings.Language

	b.checkAFK(ctx, session, msg, lang)

	name, args, ok := parsePrefix(msg.Content, settings.Prefix)
	if !ok {
		return
	}
	command, exists := b.prefix[name]
	if !exists {
		return
	}
	if !b.allow(msg.Author.ID) {
		b.reply(session, msg, b.t(lang, "prefix_cooldown"))
		return
	}
	b.logger.Debug("prefix command", zap.String("guild_id", msg.GuildID), zap.String("user_id", msg.Author.ID), zap.String("command", name))
	command.run(ctx, session, msg, lang, args)
}

func (b *Bot) replyEmbed(session *discordgo.Session, msg *discordgo.MessageCreate, embed *discordgo.MessageEmbed) {
	if _, err := session.ChannelMessageSendEmbedReply(msg.ChannelID, embed, msg.Reference()); err != nil {
		b.logger.Debug("reply failed", zap.String("channel_id", msg.ChannelID), zap.Error(err))
	}
}

// messageHasPermission resolves the author's permissions from roles.
func (b *Bot) messageHasPermission(msg *discordgo.MessageCreate, perm int64) bool {
	if msg.Member == nil {
		return false
	}
	member := *msg.Member
	member.User = msg.Author
	perms := memberPermissions(b.guild(msg.GuildID), &member)
	return perms&perm == perm
}

func (b *Bot) prefixHelp(ctx context.Context, session *discordgo.Session, msg *discordgo.MessageCreate, lang string, args []string) {
	prefix := b.guildSettings(ctx, msg.GuildID).Prefix
	names := make([]string, 0, len(b.prefix))
	for name := range b.prefix {
		names = append(names, name)
	}
	sort.Strings(names)
	lines := make([]string, 0, len(names))
	for _, name := range names {
		lines = append(lines, fmt.Sprintf("`%s%s`", prefix, b.prefix[name].usage))
	}
	description := strings.Join(lines, "\n") + "\n\n" + b.t(lang, "help_slash")
	b.replyEmbed(session, msg, b.commandEmbed(b.t(lang, "help_title"), description, b.cfg.EmbedColors.Info, nil))
}

func (b *Bot) prefixPing(ctx context.Context, session *discordgo.Session, msg *discordgo.MessageCreate, lang string, args []string) {
	latency := session.HeartbeatLatency().Round(time.Millisecond)
	b.replyEmbed(session, msg, b.commandEmbed("🏓 Pong!", b.tf(lang, "ping_body", latency.String()), b.cfg.EmbedColors.Info, nil))
}

func (b *Bot) prefixFun(name string) func(context.Context, *discordgo.Session, *discordgo.MessageCreate, string, []string) {
	return func(ctx context.Context, session *discordgo.Session, msg *discordgo.MessageCreate, lang string, args []string) {
		text := strings.Join(args, " ")
		if text == "" {
			b.reply(session, msg, b.tf(lang, "prefix_usage", b.guildSettings(ctx, msg.GuildID).Prefix+b.prefix[name].usage))
			return
		}
		embed, ok := b.funEmbed(lang, name, map[string]string{"thing": text, "question": text, "choice": text}, nil, rand.IntN)
		if !ok {
			b.reply(session, msg, b.t(lang, "fun_"+name+"_invalid"))
			return
		}
		b.replyEmbed(session, msg, embed)
	}
}

func (b *Bot) prefixAFK(ctx context.Context, session *discordgo.Session, msg *discordgo.MessageCreate, lang string, args []string) {
	reason := strings.Join(args, " ")
	if reason == "" {
		reason = "AFK"
	}
	if err := b.setAFK(ctx, msg.GuildID, msg.Author.ID, reason); err != nil {
		b.logger.Warn("afk not stored", zap.String("guild_id", msg.GuildID), zap.Error(err))
		b.reply(session, msg, b.t(lang, "error_failed"))
		return
	}
	b.reply(session, msg, b.tf(lang, "afk_set", mention(msg.Author.ID), reason))
}

func (b *Bot) prefixSnipe(ctx context.Context, session *discordgo.Session, msg *discordgo.MessageCreate, lang string, args []string) {
	if !b.messageHasPermission(msg, discordgo.PermissionManageMessages) {
		b.reply(session, msg, b.t(lang, "error_missing_permission"))
		return
	}
	embed := b.snipeEmbed(lang, msg.ChannelID)
	if embed == nil {
		b.reply(session, msg, b.t(lang, "snipe_none"))
		return
	}
	b.replyEmbed(session, msg, embed)
}

func (b *Bot) prefixWarnings(ctx context.Context, session *discordgo.Session, msg *discordgo.MessageCreate, lang string, args []string) {
	targetID := msg.Author.ID
	if ids := giveaway.ParseMentions(strings.Join(args, " ")); len(ids) > 0 {
		targetID = ids[0]
	}
	if targetID != msg.Author.ID && !b.messageHasPermission(msg, discordgo.PermissionModerateMembers) {
		b.reply(session, msg, b.t(lang, "error_missing_permission"))
		return
	}
	list, err := b.store.ListWarnings(ctx, msg.GuildID, targetID)
	if err != nil {
		b.reply(session, msg, b.t(lang, "error_failed"))
		return
	}
	if len(list) == 0 {
		b.replyEmbed(session, msg, b.commandEmbed(b.t(lang, "warnings_title"), b.tf(lang, "warnings_none", mention(targetID)), b.cfg.EmbedColors.Info, nil))
		return
	}
	b.replyEmbed(session, msg, b.commandEmbed(b.t(lang, "warnings_title"), b.tf(lang, "warnings_count", mention(targetID), len(list)), b.cfg.EmbedColors.Warning, warningFields(list, 10)))
}

func (b *Bot) prefixGiveaways(ctx context.Context, session *discordgo.Session, msg *discordgo.MessageCreate, lang string, args []string) {
	lines := b.activeGiveawayLines(msg.GuildID, 15)
	description := b.t(lang, "giveaways_none")
	if len(lines) > 0 {
		description = strings.Join(lines, "\n")
	}
	b.replyEmbed(session, msg, b.commandEmbed(b.t(lang, "giveaways_title"), description, b.cfg.EmbedColors.Info, nil))
}
