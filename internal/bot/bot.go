package bot

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"guildkeeper/internal/analytics"
	"guildkeeper/internal/config"
	"guildkeeper/internal/giveaway"
	"guildkeeper/internal/modules/audit"
	"guildkeeper/internal/storage"
	"guildkeeper/internal/utils"

	"github.com/bwmarrin/discordgo"
	"github.com/puzpuzpuz/xsync"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type Bot struct {
	cfg       config.Config
	logger    *zap.Logger
	store     *storage.Store
	giveaways *giveaway.Service
	audit     *audit.Logger
	analytics *analytics.Service
	session   *discordgo.Session
	started   time.Time

	joins    *utils.RecentJoins
	snipes   *xsync.MapOf[string, snipedMessage]
	afk      *xsync.MapOf[string, storage.AFKStatus]
	limiters *xsync.MapOf[string, *rate.Limiter]
	prefix   map[string]prefixCommand

	lockMu sync.Mutex
	locks  map[string]channelSnapshot
}

type channelSnapshot struct {
	allow   int64
	deny    int64
	hasPerm bool
}

func New(cfg config.Config, logger *zap.Logger, store *storage.Store, giveaways *giveaway.Service, auditLogger *audit.Logger, analyticsService *analytics.Service) (*Bot, error) {
	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, err
	}

	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsMessageContent
	session.State.MaxMessageCount = 200

	b := &Bot{
		cfg:       cfg,
		logger:    logger,
		store:     store,
		giveaways: giveaways,
		audit:     auditLogger,
		analytics: analyticsService,
		session:   session,
		started:   time.Now(),
		joins:     utils.NewRecentJoins(24*time.Hour, 50),
		snipes:    xsync.NewMapOf[snipedMessage](),
		afk:       xsync.NewMapOf[storage.AFKStatus](),
		limiters:  xsync.NewMapOf[*rate.Limiter](),
		locks:     make(map[string]channelSnapshot),
	}
	b.prefix = b.prefixCommands()

	if giveaways != nil {
		giveaways.SetNotifier(b)
	}
	if auditLogger != nil {
		auditLogger.SetNotifier(b.notifyModLog)
	}
	return b, nil
}

func (b *Bot) Start(ctx context.Context) error {
	b.session.AddHandler(b.onReady)
	b.session.AddHandler(b.onMessageCreate)
	b.session.AddHandler(b.onMessageDelete)
	b.session.AddHandler(b.onMessageUpdate)
	b.session.AddHandler(b.onGuildMemberAdd)
	b.session.AddHandler(b.onGuildMemberRemove)
	b.session.AddHandler(b.onChannelCreate)
	b.session.AddHandler(b.onChannelDelete)
	b.session.AddHandler(b.onRoleCreate)
	b.session.AddHandler(b.onRoleDelete)
	b.session.AddHandler(b.onInteractionCreate)

	if err := b.loadAFK(ctx); err != nil {
		b.logger.Warn("afk statuses not loaded", zap.Error(err))
	}

	if err := b.session.Open(); err != nil {
		return err
	}

	return b.registerCommands()
}

func (b *Bot) Close() {
	if b.session != nil {
		_ = b.session.Close()
	}
}

func (b *Bot) onReady(session *discordgo.Session, event *discordgo.Ready) {
	b.logger.Info("discord ready", zap.String("user", session.State.User.Username), zap.Int("guilds", len(event.Guilds)))
}

func (b *Bot) guildSettings(ctx context.Context, guildID string) storage.GuildSettings {
	defaults := storage.GuildSettings{
		GuildID:  guildID,
		Prefix:   b.cfg.DefaultPrefix,
		Language: b.cfg.DefaultLanguage,
	}
	settings, err := b.store.GetGuildSettings(ctx, guildID, defaults)
	if err != nil {
		b.logger.Warn("guild settings fallback", zap.String("guild_id", guildID), zap.Error(err))
		return defaults
	}
	return settings
}

func (b *Bot) lang(ctx context.Context, guildID string) string {
	if guildID == "" {
		return b.cfg.DefaultLanguage
	}
	return b.guildSettings(ctx, guildID).Language
}

func (b *Bot) respond(session *discordgo.Session, interaction *discordgo.InteractionCreate, content string, ephemeral bool) {
	flags := discordgo.MessageFlags(0)
	if ephemeral {
		flags = discordgo.MessageFlagsEphemeral
	}
	_ = session.InteractionRespond(interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   flags,
		},
	})
}

func (b *Bot) respondEmbed(session *discordgo.Session, interaction *discordgo.InteractionCreate, embed *discordgo.MessageEmbed, ephemeral bool) {
	if embed == nil {
		b.respond(session, interaction, "No response available.", ephemeral)
		return
	}
	flags := discordgo.MessageFlags(0)
	if ephemeral {
		flags = discordgo.MessageFlagsEphemeral
	}
	if err := session.InteractionRespond(interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
			Flags:  flags,
		},
	}); err != nil {
		b.logger.Warn("interaction response failed", zap.String("guild_id", interaction.GuildID), zap.Error(err))
	}
}

func (b *Bot) respondError(session *discordgo.Session, interaction *discordgo.InteractionCreate, lang, message string) {
	b.respondEmbed(session, interaction, b.commandEmbed(b.t(lang, "error_title"), message, b.cfg.EmbedColors.Error, nil), true)
}

func (b *Bot) commandEmbed(title, description string, color int, fields []*discordgo.MessageEmbedField) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       title,
		Description: description,
		Color:       color,
		Timestamp:   time.Now().Format(time.RFC3339),
		Fields:      fields,
	}
}

func (b *Bot) sendLog(guildID, channelID string, embed *discordgo.MessageEmbed) {
	if channelID == "" || embed == nil {
		return
	}
	if _, err := b.session.ChannelMessageSendEmbed(channelID, embed); err != nil {
		b.logger.Warn("log channel send failed", zap.String("guild_id", guildID), zap.String("channel_id", channelID), zap.Error(err))
	}
}

func (b *Bot) resolveAuditActor(guildID string, actionType discordgo.AuditLogAction, targetID string) string {
	logs, err := b.session.GuildAuditLog(guildID, "", "", int(actionType), 5)
	if err != nil || logs == nil {
		return ""
	}
	for _, entry := range logs.AuditLogEntries {
		if entry == nil {
			continue
		}
		if targetID != "" && entry.TargetID != targetID {
			continue
		}
		ts, err := discordgo.SnowflakeTimestamp(entry.ID)
		if err == nil && time.Since(ts) > 30*time.Second {
			continue
		}
		return entry.UserID
	}
	return ""
}

func (b *Bot) guild(guildID string) *discordgo.Guild {
	guild, err := b.session.State.Guild(guildID)
	if err == nil && guild != nil {
		return guild
	}
	guild, _ = b.session.Guild(guildID)
	return guild
}

func (b *Bot) memberForUser(guildID, userID string) *discordgo.Member {
	member, err := b.session.State.Member(guildID, userID)
	if err == nil && member != nil {
		return member
	}
	member, _ = b.session.GuildMember(guildID, userID)
	return member
}

// memberPermissions folds @everyone and the member's roles into one bit set.
// The guild owner and administrators get every permission.
func memberPermissions(guild *discordgo.Guild, member *discordgo.Member) int64 {
	if guild == nil || member == nil {
		return 0
	}
	if member.User != nil && guild.OwnerID == member.User.ID {
		return discordgo.PermissionAll
	}
	roleMap := make(map[string]*discordgo.Role, len(guild.Roles))
	for _, role := range guild.Roles {
		roleMap[role.ID] = role
	}
	perms := int64(0)
	if everyone := roleMap[guild.ID]; everyone != nil {
		perms |= everyone.Permissions
	}
	for _, roleID := range member.Roles {
		if role := roleMap[roleID]; role != nil {
			perms |= role.Permissions
		}
	}
	if perms&discordgo.PermissionAdministrator != 0 {
		return discordgo.PermissionAll
	}
	return perms
}

// topRolePosition returns the highest role position held by member; the
// owner outranks everyone.
func topRolePosition(guild *discordgo.Guild, member *discordgo.Member) int {
	if guild == nil || member == nil {
		return -1
	}
	if member.User != nil && guild.OwnerID == member.User.ID {
		return int(^uint(0) >> 1)
	}
	roleMap := make(map[string]*discordgo.Role, len(guild.Roles))
	for _, role := range guild.Roles {
		roleMap[role.ID] = role
	}
	top := 0
	for _, roleID := range member.Roles {
		if role := roleMap[roleID]; role != nil && role.Position > top {
			top = role.Position
		}
	}
	return top
}

// canActOn reports whether actor strictly outranks target.
func canActOn(guild *discordgo.Guild, actor, target *discordgo.Member) bool {
	return topRolePosition(guild, actor) > topRolePosition(guild, target)
}

// hasPermission checks the invoker of an interaction. Configured owners pass
// every check. Guild interactions carry the resolved permission set; anything
// else falls back to role computation.
func (b *Bot) hasPermission(interaction *discordgo.InteractionCreate, perm int64) bool {
	if interaction.Member == nil {
		return false
	}
	if user := interaction.Member.User; user != nil && b.isOwner(user.ID) {
		return true
	}
	perms := interaction.Member.Permissions
	if perms == 0 {
		perms = memberPermissions(b.guild(interaction.GuildID), interaction.Member)
	}
	if perms&discordgo.PermissionAdministrator != 0 {
		return true
	}
	return perms&perm == perm
}

func (b *Bot) requirePermission(session *discordgo.Session, interaction *discordgo.InteractionCreate, lang string, perm int64) bool {
	if interaction.GuildID == "" || interaction.Member == nil {
		b.respondError(session, interaction, lang, b.t(lang, "error_only_guild"))
		return false
	}
	if !b.hasPermission(interaction, perm) {
		b.respondError(session, interaction, lang, b.t(lang, "error_missing_permission"))
		return false
	}
	return true
}

func (b *Bot) isOwner(userID string) bool {
	for _, id := range b.cfg.OwnerIDs {
		if id == userID {
			return true
		}
	}
	return false
}

func interactionUser(interaction *discordgo.InteractionCreate) *discordgo.User {
	if interaction.Member != nil && interaction.Member.User != nil {
		return interaction.Member.User
	}
	return interaction.User
}

func restStatus(err error) int {
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Response != nil {
		return restErr.Response.StatusCode
	}
	return 0
}

func restCode(err error) int {
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Message != nil {
		return restErr.Message.Code
	}
	return 0
}

// announcementError maps "the message or its channel no longer exists" onto
// giveaway.ErrMessageGone and a lost channel permission onto
// giveaway.ErrForbidden. Every other error passes through.
func announcementError(err error) error {
	if err == nil {
		return nil
	}
	switch restCode(err) {
	case discordgo.ErrCodeUnknownMessage, discordgo.ErrCodeUnknownChannel:
		return fmt.Errorf("%w: %v", giveaway.ErrMessageGone, err)
	}
	switch restStatus(err) {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %v", giveaway.ErrMessageGone, err)
	case http.StatusForbidden:
		return fmt.Errorf("%w: %v", giveaway.ErrForbidden, err)
	}
	return err
}

func isForbidden(err error) bool {
	return restStatus(err) == http.StatusForbidden
}

func mention(userID string) string {
	return "<@" + userID + ">"
}

func channelMention(channelID string) string {
	return "<#" + channelID + ">"
}

func roleMention(roleID string) string {
	return "<@&" + roleID + ">"
}
