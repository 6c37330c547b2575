package bot

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/bwmarrin/discordgo"
)

var rpsChoices = []string{"rock", "paper", "scissors"}

var eightBallAnswers = []string{
	"It is certain.",
	"It is decidedly so.",
	"Without a doubt.",
	"Yes - definitely.",
	"You may rely on it.",
	"As I see it, yes.",
	"Most likely.",
	"Outlook good.",
	"Yes.",
	"Signs point to yes.",
	"Reply hazy, try again.",
	"Ask again later.",
	"Better not tell you now.",
	"Cannot predict now.",
	"Concentrate and ask again.",
	"Don't count on it.",
	"My reply is no.",
	"My sources say no.",
	"Outlook not so good.",
	"Very doubtful.",
}

// ratingStars renders a 1..10 rating as filled and empty stars.
func ratingStars(rating int) string {
	return strings.Repeat("⭐", rating) + strings.Repeat("☆", 10-rating)
}

// rpsOutcome is 0 for a tie, 1 when the player wins and -1 when the bot wins.
func rpsOutcome(player, bot string) int {
	if player == bot {
		return 0
	}
	beats := map[string]string{"rock": "scissors", "paper": "rock", "scissors": "paper"}
	if beats[player] == bot {
		return 1
	}
	return -1
}

func validRPS(choice string) bool {
	for _, c := range rpsChoices {
		if c == choice {
			return true
		}
	}
	return false
}

// funEmbed builds the reply for a fun command from plain arguments so slash and
// prefix commands share it. The bool is false when the arguments are invalid.
func (b *Bot) funEmbed(lang, name string, args map[string]string, ints map[string]int, intn func(int) int) (*discordgo.MessageEmbed, bool) {
	switch name {
	case "rate":
		rating := intn(10) + 1
		return b.commandEmbed(b.tf(lang, "rate_title", args["thing"]), fmt.Sprintf("%s (%d/10)", ratingStars(rating), rating), colorGiveaway, nil), true

	case "rps":
		choice := strings.ToLower(strings.TrimSpace(args["choice"]))
		if !validRPS(choice) {
			return nil, false
		}
		botChoice := rpsChoices[intn(len(rpsChoices))]
		result := "rps_tie"
		switch rpsOutcome(choice, botChoice) {
		case 1:
			result = "rps_win"
		case -1:
			result = "rps_lose"
		}
		description := b.tf(lang, "rps_body", choice, botChoice, b.t(lang, result))
		return b.commandEmbed(b.t(lang, "rps_title"), description, colorReroll, nil), true

	case "8ball":
		answer := eightBallAnswers[intn(len(eightBallAnswers))]
		return b.commandEmbed("🎱 Magic 8-Ball", b.tf(lang, "8ball_body", args["question"], answer), 0x206694, nil), true

	case "random":
		low, high := ints["min"], ints["max"]
		if low > high || int64(high)-int64(low) >= 1<<31 {
			return nil, false
		}
		n := low + intn(high-low+1)
		return b.commandEmbed(b.t(lang, "random_title"), b.tf(lang, "random_body", low, high, n), colorWon, nil), true
	}
	return nil, false
}

func (b *Bot) handleFunCommand(session *discordgo.Session, interaction *discordgo.InteractionCreate, lang, name string, opts options) {
	args := map[string]string{
		"thing":    opts.str("thing", "?"),
		"choice":   opts.str("choice", ""),
		"question": opts.str("question", "?"),
	}
	ints := map[string]int{
		"min": opts.num("min", 1),
		"max": opts.num("max", 100),
	}
	embed, ok := b.funEmbed(lang, name, args, ints, rand.IntN)
	if !ok {
		b.respondError(session, interaction, lang, b.t(lang, "fun_"+name+"_invalid"))
		return
	}
	b.respondEmbed(session, interaction, embed, false)
}
