package bot

import (
	"bytes"
	"context"
	"errors"
	"image/color"
	"image/png"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"guildkeeper/internal/config"
	"guildkeeper/internal/giveaway"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/colornames"
)

func snowflakeAt(t time.Time) string {
	const discordEpoch = 1420070400000
	return strconv.FormatInt((t.UnixMilli()-discordEpoch)<<22, 10)
}

func TestParsePrefix(t *testing.T) {
	name, args, ok := parsePrefix("!Rate pizza  now", "!")
	require.True(t, ok)
	assert.Equal(t, "rate", name)
	assert.Equal(t, []string{"pizza", "now"}, args)

	name, args, ok = parsePrefix("!!help", "!!")
	require.True(t, ok)
	assert.Equal(t, "help", name)
	assert.Empty(t, args)

	for _, content := range []string{"hello", "!", "! ", "?rate x"} {
		_, _, ok := parsePrefix(content, "!")
		assert.False(t, ok, content)
	}
}

func TestParseMuteDuration(t *testing.T) {
	cases := map[string]time.Duration{
		"":     time.Hour,
		"30m":  30 * time.Minute,
		"2h":   2 * time.Hour,
		"1d":   24 * time.Hour,
		"45":   45 * time.Minute,
		"perm": maxTimeout,
		"60d":  maxTimeout,
	}
	for input, want := range cases {
		got, ok := parseMuteDuration(input)
		require.True(t, ok, input)
		assert.Equal(t, want, got, input)
	}
	for _, input := range []string{"10s", "abc", "0", "-5", "5 minutes"} {
		_, ok := parseMuteDuration(input)
		assert.False(t, ok, input)
	}
}

func TestWinnersText(t *testing.T) {
	assert.Equal(t, "Winner: <@1>", winnersText("Winner", []string{"1"}, 3))
	assert.Equal(t, "Winners (2/3):\n1. <@1>\n2. <@2>", winnersText("Winner", []string{"1", "2"}, 3))
}

func TestEndedDescription(t *testing.T) {
	base := "Click the button below to participate!\nEnds: <t:100:R>"

	won := giveaway.Outcome{Entrants: 3, Requested: 1, Winners: []string{"7"}}
	assert.Equal(t, "Click the button below to participate!\nEnded: <t:100:R>\n\n**Winner: <@7>**", endedDescription(base, won))

	empty := giveaway.Outcome{Requested: 1}
	assert.Equal(t, "Click the button below to participate!\nEnded: <t:100:R>\n\nNo participants found.", endedDescription(base, empty))
}

func TestPreviousWinnersFollowsLastBlock(t *testing.T) {
	base := "Click the button below to participate!\nEnds: <t:100:R>"
	ended := endedDescription(base, giveaway.Outcome{Entrants: 5, Requested: 2, Winners: []string{"1", "2"}})
	assert.Equal(t, []string{"1", "2"}, previousWinners(ended))

	rerolled := rerolledDescription(ended, giveaway.Outcome{Entrants: 5, Requested: 1, Winners: []string{"3"}})
	assert.Contains(t, rerolled, "Rerolled: <t:100:R>")
	assert.Equal(t, []string{"3"}, previousWinners(rerolled))

	assert.Nil(t, previousWinners(base))
}

func TestResultEmbed(t *testing.T) {
	record := giveaway.Record{Prize: "Nitro"}
	embed := resultEmbed(giveaway.Outcome{Record: record, Entrants: 2, Requested: 1, Winners: []string{"9"}})
	assert.Equal(t, "**Nitro**\n\nWinner: <@9>\nCongratulations! 🎊", embed.Description)
	assert.Equal(t, colorWon, embed.Color)

	embed = resultEmbed(giveaway.Outcome{Record: record, Requested: 1})
	assert.Equal(t, colorNoWinner, embed.Color)
	assert.Contains(t, embed.Description, "No one participated")
}

func TestParticipateButton(t *testing.T) {
	row := participateButton(4, true)[0].(discordgo.ActionsRow)
	button := row.Components[0].(discordgo.Button)
	assert.Equal(t, "🎉 Participate (4)", button.Label)
	assert.Equal(t, discordgo.PrimaryButton, button.Style)
	assert.Equal(t, giveawayButtonID, button.CustomID)

	row = participateButton(0, false)[0].(discordgo.ActionsRow)
	assert.Equal(t, discordgo.SuccessButton, row.Components[0].(discordgo.Button).Style)
}

func TestIsSnowflake(t *testing.T) {
	assert.True(t, isSnowflake("1122334455667788"))
	assert.False(t, isSnowflake(""))
	assert.False(t, isSnowflake("12ab"))
	assert.False(t, isSnowflake("123456789012345678901"))
}

func TestRenderWelcome(t *testing.T) {
	got := renderWelcome("Hi {user}, welcome to {server} (#{count}). {user}!", "<@1>", "Guild", 42)
	assert.Equal(t, "Hi <@1>, welcome to Guild (#42). <@1>!", got)
}

func TestParsePollOptions(t *testing.T) {
	opts, ok := parsePollOptions(" a | b |  | c ")
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b", "c"}, opts)

	_, ok = parsePollOptions("only one")
	assert.False(t, ok)

	_, ok = parsePollOptions(strings.Repeat("x|", 11))
	assert.False(t, ok)
}

func TestParseColor(t *testing.T) {
	c, ok := parseColor("#5865F2")
	require.True(t, ok)
	assert.Equal(t, color.RGBA{R: 0x58, G: 0x65, B: 0xF2, A: 0xff}, c)
	assert.Equal(t, "#5865F2", hexColor(c))

	c, ok = parseColor("fff")
	require.True(t, ok)
	assert.Equal(t, "#FFFFFF", hexColor(c))

	c, ok = parseColor("0x000000")
	require.True(t, ok)
	assert.Equal(t, "#000000", hexColor(c))

	c, ok = parseColor("Dark Blue")
	require.True(t, ok)
	assert.Equal(t, colornames.Darkblue, c)

	for _, input := range []string{"nope", "#12345", "#gggggg", ""} {
		_, ok := parseColor(input)
		assert.False(t, ok, input)
	}
}

func TestSwatchPNG(t *testing.T) {
	c := color.RGBA{R: 0x12, G: 0x34, B: 0x56, A: 0xff}
	data, err := swatchPNG(c)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 160, img.Bounds().Dx())
	assert.Equal(t, 80, img.Bounds().Dy())

	r, g, b, _ := img.At(150, 5).RGBA()
	assert.Equal(t, []uint32{0x12, 0x34, 0x56}, []uint32{r >> 8, g >> 8, b >> 8})
}

func TestInviteURL(t *testing.T) {
	raw := inviteURL("123", invitePermissions)
	parsed, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "discord.com", parsed.Host)
	assert.Equal(t, "/oauth2/authorize", parsed.Path)

	query := parsed.Query()
	assert.Equal(t, "123", query.Get("client_id"))
	assert.Equal(t, "bot applications.commands", query.Get("scope"))
	assert.Equal(t, strconv.FormatInt(invitePermissions, 10), query.Get("permissions"))
}

func TestRPSOutcome(t *testing.T) {
	assert.Equal(t, 0, rpsOutcome("rock", "rock"))
	assert.Equal(t, 1, rpsOutcome("rock", "scissors"))
	assert.Equal(t, 1, rpsOutcome("paper", "rock"))
	assert.Equal(t, 1, rpsOutcome("scissors", "paper"))
	assert.Equal(t, -1, rpsOutcome("rock", "paper"))
}

func TestFunEmbed(t *testing.T) {
	b := &Bot{}
	highest := func(n int) int { return n - 1 }

	embed, ok := b.funEmbed("en", "rate", map[string]string{"thing": "pizza"}, nil, highest)
	require.True(t, ok)
	assert.Equal(t, "Rating for 'pizza'", embed.Title)
	assert.Equal(t, ratingStars(10)+" (10/10)", embed.Description)

	embed, ok = b.funEmbed("en", "rps", map[string]string{"choice": "Rock"}, nil, highest)
	require.True(t, ok)
	assert.Contains(t, embed.Description, "scissors")
	assert.Contains(t, embed.Description, translate("en", "rps_win"))

	_, ok = b.funEmbed("en", "rps", map[string]string{"choice": "lizard"}, nil, highest)
	assert.False(t, ok)

	embed, ok = b.funEmbed("en", "random", nil, map[string]int{"min": 5, "max": 5}, highest)
	require.True(t, ok)
	assert.Contains(t, embed.Description, "**5**")

	_, ok = b.funEmbed("en", "random", nil, map[string]int{"min": 6, "max": 5}, highest)
	assert.False(t, ok)

	embed, ok = b.funEmbed("fr", "8ball", map[string]string{"question": "Demain ?"}, nil, highest)
	require.True(t, ok)
	assert.Contains(t, embed.Description, eightBallAnswers[len(eightBallAnswers)-1])
}

func TestRatingStars(t *testing.T) {
	assert.Equal(t, "⭐⭐⭐☆☆☆☆☆☆☆", ratingStars(3))
}

func TestPurgeable(t *testing.T) {
	now := time.Now()
	messages := []*discordgo.Message{
		{ID: snowflakeAt(now.Add(-time.Hour)), Author: &discordgo.User{ID: "a"}},
		{ID: snowflakeAt(now.Add(-2 * time.Hour)), Author: &discordgo.User{ID: "b"}},
		{ID: snowflakeAt(now.Add(-15 * 24 * time.Hour)), Author: &discordgo.User{ID: "a"}},
	}

	ids, done := purgeable(messages, 10, "", now)
	assert.Equal(t, []string{messages[0].ID, messages[1].ID}, ids)
	assert.True(t, done)

	ids, done = purgeable(messages, 1, "", now)
	assert.Equal(t, []string{messages[0].ID}, ids)
	assert.True(t, done)

	ids, _ = purgeable(messages, 10, "b", now)
	assert.Equal(t, []string{messages[1].ID}, ids)

	ids, done = purgeable(messages[:2], 10, "", now)
	assert.Len(t, ids, 2)
	assert.False(t, done)
}

func TestLockOverwrites(t *testing.T) {
	channel := &discordgo.Channel{PermissionOverwrites: []*discordgo.PermissionOverwrite{
		{ID: "role", Type: discordgo.PermissionOverwriteTypeRole, Deny: discordgo.PermissionAddReactions},
		{ID: "g", Type: discordgo.PermissionOverwriteTypeRole, Allow: discordgo.PermissionViewChannel},
	}}
	snap := everyoneOverwrite(channel, "g")
	assert.True(t, snap.hasPerm)
	assert.Equal(t, int64(discordgo.PermissionViewChannel), snap.allow)
	assert.Zero(t, snap.deny)

	assert.False(t, everyoneOverwrite(&discordgo.Channel{}, "g").hasPerm)

	cleared := unlockedOverwrite(channelSnapshot{deny: discordgo.PermissionSendMessages, hasPerm: true})
	assert.False(t, cleared.hasPerm)

	kept := unlockedOverwrite(channelSnapshot{deny: discordgo.PermissionSendMessages | discordgo.PermissionAddReactions, hasPerm: true})
	assert.True(t, kept.hasPerm)
	assert.Equal(t, int64(discordgo.PermissionAddReactions), kept.deny)
}

func TestMemberPermissionsAndHierarchy(t *testing.T) {
	guild := &discordgo.Guild{
		ID:      "g",
		OwnerID: "owner",
		Roles: []*discordgo.Role{
			{ID: "g", Permissions: discordgo.PermissionSendMessages},
			{ID: "mod", Permissions: discordgo.PermissionKickMembers, Position: 5},
			{ID: "admin", Permissions: discordgo.PermissionAdministrator, Position: 10},
		},
	}
	mod := &discordgo.Member{User: &discordgo.User{ID: "m"}, Roles: []string{"mod"}}
	admin := &discordgo.Member{User: &discordgo.User{ID: "a"}, Roles: []string{"admin"}}
	owner := &discordgo.Member{User: &discordgo.User{ID: "owner"}}

	assert.Equal(t, int64(discordgo.PermissionSendMessages|discordgo.PermissionKickMembers), memberPermissions(guild, mod))
	assert.Equal(t, int64(discordgo.PermissionAll), memberPermissions(guild, admin))
	assert.Equal(t, int64(discordgo.PermissionAll), memberPermissions(guild, owner))
	assert.Zero(t, memberPermissions(nil, mod))

	assert.True(t, canActOn(guild, admin, mod))
	assert.False(t, canActOn(guild, mod, admin))
	assert.False(t, canActOn(guild, mod, mod))
	assert.True(t, canActOn(guild, owner, admin))
}

func restError(status, code int) error {
	err := &discordgo.RESTError{Response: &http.Response{StatusCode: status, Status: http.StatusText(status)}}
	if code != 0 {
		err.Message = &discordgo.APIErrorMessage{Code: code}
	}
	return err
}

func TestAnnouncementError(t *testing.T) {
	assert.NoError(t, announcementError(nil))
	assert.ErrorIs(t, announcementError(restError(http.StatusNotFound, discordgo.ErrCodeUnknownMessage)), giveaway.ErrMessageGone)
	assert.ErrorIs(t, announcementError(restError(http.StatusNotFound, discordgo.ErrCodeUnknownChannel)), giveaway.ErrMessageGone)
	assert.ErrorIs(t, announcementError(restError(http.StatusNotFound, 0)), giveaway.ErrMessageGone)

	forbidden := announcementError(restError(http.StatusForbidden, 50001))
	assert.ErrorIs(t, forbidden, giveaway.ErrForbidden)
	assert.False(t, errors.Is(forbidden, giveaway.ErrMessageGone))

	transient := restError(http.StatusBadGateway, 0)
	got := announcementError(transient)
	assert.False(t, errors.Is(got, giveaway.ErrMessageGone))
	assert.False(t, errors.Is(got, giveaway.ErrForbidden))
	assert.Equal(t, transient, got)

	assert.True(t, isForbidden(restError(http.StatusForbidden, 50013)))
}

func TestPlatformContextBoundsCalls(t *testing.T) {
	b := &Bot{cfg: config.Config{Giveaway: config.GiveawayConfig{PlatformTimeoutSeconds: 10}}}

	before := time.Now()
	ctx, cancel := b.platformContext(context.Background())
	defer cancel()

	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	assert.False(t, deadline.Before(before.Add(10*time.Second)))
	assert.False(t, deadline.After(time.Now().Add(10*time.Second)))

	cancel()
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
}

func TestTranslateFallback(t *testing.T) {
	assert.Equal(t, "✅ Vous avez quitté le giveaway !", translate("fr", "giveaway_left"))
	assert.Equal(t, "✅ You have left the giveaway!", translate("de", "giveaway_left"))
	assert.Equal(t, "missing_key", translate("fr", "missing_key"))
}

func TestTruncateList(t *testing.T) {
	assert.Equal(t, "a b c", truncateList([]string{"a", "b", "c"}, 10))
	assert.Equal(t, "aaaa …", truncateList([]string{"aaaa", "bbbb"}, 6))
}

func TestOptionMap(t *testing.T) {
	opts := optionMap([]*discordgo.ApplicationCommandInteractionDataOption{
		{Name: "prize", Type: discordgo.ApplicationCommandOptionString, Value: "  Nitro "},
		{Name: "blank", Type: discordgo.ApplicationCommandOptionString, Value: "   "},
		{Name: "winners", Type: discordgo.ApplicationCommandOptionInteger, Value: float64(3)},
		{Name: "channel", Type: discordgo.ApplicationCommandOptionChannel, Value: "42"},
	})
	assert.Equal(t, "Nitro", opts.str("prize", ""))
	assert.Equal(t, "fallback", opts.str("blank", "fallback"))
	assert.Equal(t, "fallback", opts.str("missing", "fallback"))
	assert.Equal(t, 3, opts.num("winners", 1))
	assert.Equal(t, 1, opts.num("missing", 1))
	assert.Equal(t, "42", opts.channelID("channel"))
	assert.Equal(t, "", opts.roleID("missing"))
}

func TestHasPermission(t *testing.T) {
	b := &Bot{cfg: config.Config{OwnerIDs: []string{"owner"}}}
	interaction := func(userID string, perms int64) *discordgo.InteractionCreate {
		return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
			Member: &discordgo.Member{User: &discordgo.User{ID: userID}, Permissions: perms},
		}}
	}

	assert.True(t, b.hasPermission(interaction("owner", 0), discordgo.PermissionBanMembers))
	assert.True(t, b.hasPermission(interaction("mod", discordgo.PermissionManageMessages), discordgo.PermissionManageMessages))
	assert.False(t, b.hasPermission(interaction("mod", discordgo.PermissionManageMessages), discordgo.PermissionBanMembers))
	assert.True(t, b.hasPermission(interaction("admin", discordgo.PermissionAdministrator), discordgo.PermissionBanMembers))
	assert.False(t, b.hasPermission(&discordgo.InteractionCreate{Interaction: &discordgo.Interaction{}}, discordgo.PermissionSendMessages))
}
