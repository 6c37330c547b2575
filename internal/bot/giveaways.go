package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"guildkeeper/internal/giveaway"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

const (
	giveawayButtonID = "giveaway:enter"

	colorGiveaway = 0xF1C40F
	colorWon      = 0x2ECC71
	colorNoWinner = 0xE74C3C
	colorReroll   = 0x3498DB
)

// platformContext bounds a single round of Discord calls made while handling
// a command.
func (b *Bot) platformContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, b.cfg.Giveaway.PlatformTimeout())
}

// Exists implements giveaway.Notifier.
func (b *Bot) Exists(ctx context.Context, record giveaway.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := b.session.ChannelMessage(record.ChannelID, record.ID, discordgo.WithContext(ctx))
	return announcementError(err)
}

// Completed implements giveaway.Notifier: the announcement is closed and the
// result is posted in the same channel.
func (b *Bot) Completed(ctx context.Context, outcome giveaway.Outcome) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	record := outcome.Record

	var editErr error
	msg, err := b.session.ChannelMessage(record.ChannelID, record.ID, discordgo.WithContext(ctx))
	if err == nil && len(msg.Embeds) > 0 {
		embed := *msg.Embeds[0]
		embed.Title = "🎉 Giveaway Ended 🎉"
		embed.Description = endedDescription(embed.Description, outcome)
		embed.Color = colorWon
		if outcome.NoParticipants() {
			embed.Color = colorNoWinner
		}
		_, editErr = b.session.ChannelMessageEditComplex(&discordgo.MessageEdit{
			ID:         record.ID,
			Channel:    record.ChannelID,
			Embeds:     []*discordgo.MessageEmbed{&embed},
			Components: []discordgo.MessageComponent{},
		}, discordgo.WithContext(ctx))
	} else if err != nil {
		editErr = err
	}

	_, sendErr := b.session.ChannelMessageSendEmbed(record.ChannelID, resultEmbed(outcome), discordgo.WithContext(ctx))
	return errors.Join(editErr, sendErr)
}

func announcementEmbed(prize, hostID string, winners int, end time.Time) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("🎉 Giveaway: %s 🎉", prize),
		Description: fmt.Sprintf("Click the button below to participate!\nEnds: <t:%d:R>", end.Unix()),
		Color:       colorGiveaway,
		Timestamp:   time.Now().Format(time.RFC3339),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Prize", Value: prize, Inline: false},
			{Name: "Hosted by", Value: mention(hostID), Inline: false},
			{Name: "Winners", Value: fmt.Sprintf("%d", winners), Inline: false},
		},
	}
}

func participateButton(count int, joined bool) []discordgo.MessageComponent {
	style := discordgo.SuccessButton
	if joined {
		style = discordgo.PrimaryButton
	}
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    fmt.Sprintf("🎉 Participate (%d)", count),
					Style:    style,
					CustomID: giveawayButtonID,
				},
			},
		},
	}
}

// winnersText renders "Winner: @a" or a numbered "Winners (n/requested):" list.
func winnersText(label string, winners []string, requested int) string {
	if len(winners) == 1 {
		return fmt.Sprintf("%s: %s", label, mention(winners[0]))
	}
	lines := make([]string, 0, len(winners)+1)
	lines = append(lines, fmt.Sprintf("%ss (%d/%d):", label, len(winners), requested))
	for i, id := range winners {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, mention(id)))
	}
	return strings.Join(lines, "\n")
}

func endedDescription(description string, outcome giveaway.Outcome) string {
	description = strings.Replace(description, "Ends:", "Ended:", 1)
	if outcome.NoParticipants() || len(outcome.Winners) == 0 {
		return description + "\n\nNo participants found."
	}
	return description + "\n\n**" + winnersText("Winner", outcome.Winners, outcome.Requested) + "**"
}

func rerolledDescription(description string, outcome giveaway.Outcome) string {
	description = strings.Replace(description, "Ended:", "Rerolled:", 1)
	return description + "\n\n**" + winnersText("New Winner", outcome.Winners, outcome.Requested) + "**"
}

func resultEmbed(outcome giveaway.Outcome) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:     "🎉 Giveaway Ended 🎉",
		Timestamp: time.Now().Format(time.RFC3339),
	}
	if outcome.NoParticipants() || len(outcome.Winners) == 0 {
		embed.Description = "No one participated in this giveaway. 😢"
		embed.Color = colorNoWinner
		return embed
	}
	embed.Description = fmt.Sprintf("**%s**\n\n%s\nCongratulations! 🎊", outcome.Record.Prize, winnersText("Winner", outcome.Winners, outcome.Requested))
	embed.Color = colorWon
	return embed
}

// previousWinners collects the mentions of the last winners block in an
// announcement description.
func previousWinners(description string) []string {
	lines := strings.Split(description, "\n")
	start := -1
	for i, line := range lines {
		if strings.Contains(line, "Winner") {
			start = i
		}
	}
	if start < 0 {
		return nil
	}
	return giveaway.ParseMentions(strings.Join(lines[start:], "\n"))
}

func jumpLink(guildID, channelID, messageID string) string {
	return fmt.Sprintf("https://discord.com/channels/%s/%s/%s", guildID, channelID, messageID)
}

func isSnowflake(id string) bool {
	if id == "" || len(id) > 20 {
		return false
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (b *Bot) handleGiveawayCreate(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, lang string, opts options) {
	if !b.requirePermission(session, interaction, lang, discordgo.PermissionManageMessages) {
		return
	}
	host := interactionUser(interaction)
	duration := opts.str("duration", "")
	prize := opts.str("prize", "")
	winners := opts.num("winners", 1)

	d, err := b.giveaways.Validate(duration, winners)
	if err != nil {
		b.respondError(session, interaction, lang, b.giveawayError(lang, err))
		return
	}
	end := b.giveaways.Now().Add(d)

	callCtx, cancel := b.platformContext(ctx)
	defer cancel()

	msg, err := session.ChannelMessageSendComplex(interaction.ChannelID, &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{announcementEmbed(prize, host.ID, winners, end)},
		Components: participateButton(0, false),
	}, discordgo.WithContext(callCtx))
	if err != nil {
		b.logger.Warn("giveaway announcement failed", zap.String("guild_id", interaction.GuildID), zap.Error(err))
		b.respondError(session, interaction, lang, b.t(lang, "error_send_failed"))
		return
	}

	record, err := b.giveaways.Create(ctx, giveaway.CreateRequest{
		ID:        msg.ID,
		GuildID:   interaction.GuildID,
		ChannelID: interaction.ChannelID,
		HostID:    host.ID,
		Prize:     prize,
		Duration:  duration,
		Winners:   winners,
		EndTime:   end,
	})
	if err != nil {
		_ = session.ChannelMessageDelete(interaction.ChannelID, msg.ID, discordgo.WithContext(callCtx))
		b.respondError(session, interaction, lang, b.giveawayError(lang, err))
		return
	}

	description := b.tf(lang, "giveaway_created", prize, giveaway.FormatDuration(d), record.WinnerCount)
	b.respondEmbed(session, interaction, b.commandEmbed(b.t(lang, "giveaway_created_title"), description, b.cfg.EmbedColors.Success, nil), true)
}

func (b *Bot) handleGiveawayButton(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	lang := b.lang(ctx, interaction.GuildID)
	user := interactionUser(interaction)
	if user == nil || interaction.Message == nil {
		return
	}

	result, count, err := b.giveaways.Toggle(ctx, interaction.Message.ID, user.ID)
	if err != nil {
		b.respondError(session, interaction, lang, b.t(lang, "giveaway_closed"))
		return
	}

	if err := session.InteractionRespond(interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Embeds:     interaction.Message.Embeds,
			Components: participateButton(count, result == giveaway.Joined),
		},
	}); err != nil {
		b.logger.Warn("giveaway button update failed", zap.String("giveaway_id", interaction.Message.ID), zap.Error(err))
		return
	}

	key := "giveaway_left"
	if result == giveaway.Joined {
		key = "giveaway_joined"
	}
	if _, err := session.FollowupMessageCreate(interaction.Interaction, true, &discordgo.WebhookParams{
		Content: b.t(lang, key),
		Flags:   discordgo.MessageFlagsEphemeral,
	}); err != nil {
		b.logger.Debug("giveaway follow-up failed", zap.Error(err))
	}
}

func (b *Bot) handleEndGiveaway(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, lang string, opts options) {
	if !b.requirePermission(session, interaction, lang, discordgo.PermissionManageMessages) {
		return
	}
	id := opts.str("giveaway_id", "")
	if !isSnowflake(id) {
		b.respondError(session, interaction, lang, b.t(lang, "giveaway_bad_id"))
		return
	}
	record, ok := b.giveaways.Store().Get(id)
	if !ok || record.GuildID != interaction.GuildID {
		b.respondError(session, interaction, lang, b.t(lang, "giveaway_not_found"))
		return
	}

	outcome, err := b.giveaways.EndEarly(ctx, id, opts.num("winners", 0))
	if err != nil {
		b.respondError(session, interaction, lang, b.giveawayError(lang, err))
		return
	}
	b.respondEmbed(session, interaction, b.commandEmbed(b.t(lang, "success_title"), b.tf(lang, "giveaway_ended", outcome.Requested), b.cfg.EmbedColors.Success, nil), true)
}

func (b *Bot) handleReroll(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, lang string, opts options) {
	if !b.requirePermission(session, interaction, lang, discordgo.PermissionManageMessages) {
		return
	}
	id := opts.str("giveaway_id", "")
	if !isSnowflake(id) {
		b.respondError(session, interaction, lang, b.t(lang, "giveaway_bad_id"))
		return
	}
	if record, ok := b.giveaways.Store().Get(id); ok && record.GuildID != interaction.GuildID {
		b.respondError(session, interaction, lang, b.t(lang, "giveaway_not_found"))
		return
	}

	channelID := interaction.ChannelID
	if ended, ok := b.giveaways.Store().GetEnded(id); ok {
		channelID = ended.ChannelID
	}
	callCtx, cancel := b.platformContext(ctx)
	defer cancel()

	var previous []string
	msg, fetchErr := session.ChannelMessage(channelID, id, discordgo.WithContext(callCtx))
	if fetchErr == nil && len(msg.Embeds) > 0 {
		previous = previousWinners(msg.Embeds[0].Description)
	}
	if len(previous) == 0 {
		previous = b.giveaways.LastWinners(ctx, id)
	}

	outcome, err := b.giveaways.Reroll(ctx, interaction.GuildID, id, opts.num("winners", 1), previous)
	if err != nil {
		b.respondError(session, interaction, lang, b.giveawayError(lang, err))
		return
	}

	if fetchErr == nil && len(msg.Embeds) > 0 {
		embed := *msg.Embeds[0]
		embed.Description = rerolledDescription(embed.Description, outcome)
		if _, err := session.ChannelMessageEditComplex(&discordgo.MessageEdit{
			ID:         msg.ID,
			Channel:    msg.ChannelID,
			Embeds:     []*discordgo.MessageEmbed{&embed},
			Components: []discordgo.MessageComponent{},
		}, discordgo.WithContext(callCtx)); err != nil {
			b.logger.Warn("reroll edit failed", zap.String("giveaway_id", id), zap.Error(err))
		}
	}

	description := fmt.Sprintf("**%s**\n\n%s\nCongratulations! 🎊", outcome.Record.Prize, winnersText("New Winner", outcome.Winners, outcome.Requested))
	b.respondEmbed(session, interaction, b.commandEmbed("🎉 Giveaway Rerolled 🎉", description, colorReroll, nil), false)
}

func (b *Bot) handleGiveawayList(session *discordgo.Session, interaction *discordgo.InteractionCreate, lang string) {
	lines := b.activeGiveawayLines(interaction.GuildID, 15)
	if len(lines) == 0 {
		b.respondEmbed(session, interaction, b.commandEmbed(b.t(lang, "giveaways_title"), b.t(lang, "giveaways_none"), b.cfg.EmbedColors.Info, nil), true)
		return
	}
	b.respondEmbed(session, interaction, b.commandEmbed(b.t(lang, "giveaways_title"), strings.Join(lines, "\n"), b.cfg.EmbedColors.Info, nil), true)
}

func (b *Bot) activeGiveawayLines(guildID string, limit int) []string {
	var lines []string
	for _, record := range b.giveaways.Store().ListActive() {
		if record.GuildID != guildID {
			continue
		}
		if limit > 0 && len(lines) >= limit {
			break
		}
		lines = append(lines, fmt.Sprintf("• [%s](%s) ends <t:%d:R> (%d)",
			record.Prize, jumpLink(record.GuildID, record.ChannelID, record.ID), record.EndTime.Unix(), b.giveaways.Entrants(record.ID)))
	}
	return lines
}

func (b *Bot) giveawayError(lang string, err error) string {
	switch {
	case errors.Is(err, giveaway.ErrInvalidDuration):
		return b.t(lang, "giveaway_bad_duration")
	case errors.Is(err, giveaway.ErrDurationTooShort):
		return b.t(lang, "giveaway_too_short")
	case errors.Is(err, giveaway.ErrInvalidWinners):
		return b.t(lang, "giveaway_bad_winners")
	case errors.Is(err, giveaway.ErrNotFound), errors.Is(err, giveaway.ErrAlreadyEnded):
		return b.t(lang, "giveaway_not_found")
	case errors.Is(err, giveaway.ErrStillActive):
		return b.t(lang, "giveaway_still_active")
	case errors.Is(err, giveaway.ErrNoParticipants):
		return b.t(lang, "giveaway_no_participants")
	case errors.Is(err, giveaway.ErrNoEligible):
		return b.t(lang, "giveaway_no_eligible")
	default:
		b.logger.Warn("giveaway command failed", zap.Error(err))
		return b.t(lang, "error_failed")
	}
}
