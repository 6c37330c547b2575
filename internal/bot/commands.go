package bot

import "github.com/bwmarrin/discordgo"

func locales(en, fr string) map[discordgo.Locale]string {
	return map[discordgo.Locale]string{
		discordgo.EnglishUS: en,
		discordgo.French:    fr,
	}
}

func command(name, en, fr string, perm int64, options ...*discordgo.ApplicationCommandOption) *discordgo.ApplicationCommand {
	loc := locales(en, fr)
	cmd := &discordgo.ApplicationCommand{
		Name:                     name,
		Description:              en,
		DescriptionLocalizations: &loc,
		Options:                  options,
	}
	if perm != 0 {
		cmd.DefaultMemberPermissions = &perm
		dm := false
		cmd.DMPermission = &dm
	}
	return cmd
}

func option(kind discordgo.ApplicationCommandOptionType, name, en, fr string, required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:                     kind,
		Name:                     name,
		Description:              en,
		DescriptionLocalizations: locales(en, fr),
		Required:                 required,
	}
}

func intRange(opt *discordgo.ApplicationCommandOption, min, max float64) *discordgo.ApplicationCommandOption {
	opt.MinValue = &min
	opt.MaxValue = max
	return opt
}

func choices(opt *discordgo.ApplicationCommandOption, values ...string) *discordgo.ApplicationCommandOption {
	for _, value := range values {
		opt.Choices = append(opt.Choices, &discordgo.ApplicationCommandOptionChoice{Name: value, Value: value})
	}
	return opt
}

func subcommand(name, en, fr string, options ...*discordgo.ApplicationCommandOption) *discordgo.ApplicationCommandOption {
	opt := option(discordgo.ApplicationCommandOptionSubCommand, name, en, fr, false)
	opt.Options = options
	return opt
}

const (
	optString  = discordgo.ApplicationCommandOptionString
	optInt     = discordgo.ApplicationCommandOptionInteger
	optUser    = discordgo.ApplicationCommandOptionUser
	optChannel = discordgo.ApplicationCommandOptionChannel
	optRole    = discordgo.ApplicationCommandOptionRole
)

func (b *Bot) commandDefinitions() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		command("giveaway", "Creates a new giveaway", "Creer un nouveau giveaway", discordgo.PermissionManageMessages,
			option(optString, "duration", "Duration (e.g. 30s, 5m, 1h, 2d)", "Duree (ex. 30s, 5m, 1h, 2d)", true),
			option(optString, "prize", "Prize for the giveaway", "Lot du giveaway", true),
			intRange(option(optInt, "winners", "Number of winners (default: 1)", "Nombre de gagnants (defaut : 1)", false), 1, 50),
		),
		command("endgiveaway", "Ends a giveaway early", "Terminer un giveaway en avance", discordgo.PermissionManageMessages,
			option(optString, "giveaway_id", "Message ID of the giveaway", "ID du message du giveaway", true),
			intRange(option(optInt, "winners", "Number of winners (defaults to original)", "Nombre de gagnants (defaut : original)", false), 1, 50),
		),
		command("reroll", "Rerolls a giveaway for new winners", "Retirer de nouveaux gagnants", discordgo.PermissionManageMessages,
			option(optString, "giveaway_id", "Message ID of the giveaway", "ID du message du giveaway", true),
			intRange(option(optInt, "winners", "Number of winners (default: 1)", "Nombre de gagnants (defaut : 1)", false), 1, 50),
		),
		command("giveaways", "Lists active giveaways", "Lister les giveaways actifs", 0),

		command("config", "Configure the bot for this server", "Configurer le bot pour ce serveur", discordgo.PermissionManageServer,
			subcommand("show", "Show the current configuration", "Afficher la configuration"),
			subcommand("prefix", "Set the command prefix", "Definir le prefixe",
				option(optString, "value", "New prefix", "Nouveau prefixe", true)),
			subcommand("welcome-channel", "Set or clear the welcome channel", "Definir le salon de bienvenue",
				option(optChannel, "channel", "Channel (empty to clear)", "Salon (vide pour retirer)", false)),
			subcommand("welcome-message", "Set the welcome message", "Definir le message de bienvenue",
				option(optString, "text", "Use {user}, {server}, {count}", "Utilisez {user}, {server}, {count}", true)),
			subcommand("autorole", "Set or clear the join role", "Definir le role automatique",
				option(optRole, "role", "Role (empty to clear)", "Role (vide pour retirer)", false)),
			subcommand("message-log", "Set or clear the message log channel", "Definir le salon des logs de messages",
				option(optChannel, "channel", "Channel (empty to clear)", "Salon (vide pour retirer)", false)),
			subcommand("server-log", "Set or clear the server log channel", "Definir le salon des logs serveur",
				option(optChannel, "channel", "Channel (empty to clear)", "Salon (vide pour retirer)", false)),
			subcommand("mod-log", "Set or clear the moderation log channel", "Definir le salon des logs de moderation",
				option(optChannel, "channel", "Channel (empty to clear)", "Salon (vide pour retirer)", false)),
			subcommand("language", "Set the bot language", "Definir la langue du bot",
				choices(option(optString, "value", "en or fr", "en ou fr", true), "en", "fr")),
		),

		command("kick", "Kicks a user from the server", "Expulser un membre", discordgo.PermissionKickMembers,
			option(optUser, "user", "User to kick", "Membre a expulser", true),
			option(optString, "reason", "Reason", "Raison", false)),
		command("ban", "Bans a user from the server", "Bannir un membre", discordgo.PermissionBanMembers,
			option(optUser, "user", "User to ban", "Membre a bannir", true),
			option(optString, "reason", "Reason", "Raison", false),
			intRange(option(optInt, "delete_days", "Days of messages to delete (0-7)", "Jours de messages a supprimer (0-7)", false), 0, 7)),
		command("unban", "Unbans a user", "Debannir un utilisateur", discordgo.PermissionBanMembers,
			option(optString, "user_id", "ID of the banned user", "ID de l'utilisateur banni", true),
			option(optString, "reason", "Reason", "Raison", false)),
		command("softban", "Bans and unbans a user to delete their messages", "Bannir puis debannir pour purger les messages", discordgo.PermissionBanMembers,
			option(optUser, "user", "User to softban", "Membre a softban", true),
			option(optString, "reason", "Reason", "Raison", false)),
		command("mute", "Times out a user", "Rendre muet un membre", discordgo.PermissionModerateMembers,
			option(optUser, "user", "User to mute", "Membre a rendre muet", true),
			option(optString, "duration", "Duration (30m, 2h, 1d or perm)", "Duree (30m, 2h, 1d ou perm)", false),
			option(optString, "reason", "Reason", "Raison", false)),
		command("unmute", "Removes a timeout", "Retirer le mode muet", discordgo.PermissionModerateMembers,
			option(optUser, "user", "User to unmute", "Membre", true)),
		command("warn", "Warns a user", "Avertir un membre", discordgo.PermissionModerateMembers,
			option(optUser, "user", "User to warn", "Membre a avertir", true),
			option(optString, "reason", "Reason", "Raison", true)),
		command("warnings", "Shows a user's warnings", "Afficher les avertissements", discordgo.PermissionModerateMembers,
			option(optUser, "user", "User", "Membre", false)),
		command("clearwarns", "Clears a user's warnings", "Effacer les avertissements", discordgo.PermissionModerateMembers,
			option(optUser, "user", "User", "Membre", true)),
		command("delwarn", "Deletes a warning", "Supprimer un avertissement", discordgo.PermissionModerateMembers,
			intRange(option(optInt, "case", "Case number", "Numero de cas", true), 1, 1e9)),
		command("case", "Shows a warning case", "Afficher un cas", discordgo.PermissionModerateMembers,
			intRange(option(optInt, "id", "Case number", "Numero de cas", true), 1, 1e9)),
		command("editcase", "Edits the reason of a case", "Modifier la raison d'un cas", discordgo.PermissionModerateMembers,
			intRange(option(optInt, "id", "Case number", "Numero de cas", true), 1, 1e9),
			option(optString, "reason", "New reason", "Nouvelle raison", true)),
		command("purge", "Deletes recent messages", "Supprimer des messages recents", discordgo.PermissionManageMessages,
			intRange(option(optInt, "amount", "Number of messages", "Nombre de messages", true), 1, 1000),
			option(optUser, "user", "Only messages from this user", "Seulement les messages de ce membre", false)),
		command("lock", "Prevents @everyone from sending messages", "Verrouiller le salon", discordgo.PermissionManageChannels,
			option(optChannel, "channel", "Channel (default: current)", "Salon (defaut : actuel)", false),
			option(optString, "reason", "Reason", "Raison", false)),
		command("unlock", "Restores sending in a locked channel", "Deverrouiller le salon", discordgo.PermissionManageChannels,
			option(optChannel, "channel", "Channel (default: current)", "Salon (defaut : actuel)", false)),
		command("slowmode", "Sets the channel slowmode", "Definir le mode lent", discordgo.PermissionManageChannels,
			intRange(option(optInt, "seconds", "Seconds between messages (0-21600)", "Secondes entre messages (0-21600)", true), 0, 21600),
			option(optChannel, "channel", "Channel (default: current)", "Salon (defaut : actuel)", false)),
		command("nick", "Changes a user's nickname", "Changer le pseudo d'un membre", discordgo.PermissionManageNicknames,
			option(optUser, "user", "User", "Membre", true),
			option(optString, "nickname", "New nickname (empty to reset)", "Nouveau pseudo (vide pour reinitialiser)", false)),

		command("addrole", "Gives a role to a user", "Donner un role", discordgo.PermissionManageRoles,
			option(optUser, "user", "User", "Membre", true),
			option(optRole, "role", "Role", "Role", true)),
		command("rmrole", "Removes a role from a user", "Retirer un role", discordgo.PermissionManageRoles,
			option(optUser, "user", "User", "Membre", true),
			option(optRole, "role", "Role", "Role", true)),

		command("recentjoins", "Lists members who joined in the last 24 hours", "Membres arrives ces dernieres 24 heures", discordgo.PermissionKickMembers),
		command("afk", "Marks you as AFK", "Vous marquer comme absent", 0,
			option(optString, "reason", "Reason", "Raison", false)),
		command("snipe", "Shows the last deleted message in this channel", "Dernier message supprime du salon", discordgo.PermissionManageMessages),

		command("rate", "Rates something from 1 to 10", "Noter quelque chose de 1 a 10", 0,
			option(optString, "thing", "What to rate", "Quoi noter", true)),
		command("rps", "Play rock-paper-scissors", "Jouer a pierre-feuille-ciseaux", 0,
			choices(option(optString, "choice", "rock, paper or scissors", "pierre, feuille ou ciseaux", true), "rock", "paper", "scissors")),
		command("8ball", "Ask the magic 8-ball", "Demander a la boule magique", 0,
			option(optString, "question", "Your question", "Votre question", true)),
		command("random", "Generates a random number", "Generer un nombre aleatoire", 0,
			option(optInt, "min", "Minimum (default: 1)", "Minimum (defaut : 1)", false),
			option(optInt, "max", "Maximum (default: 100)", "Maximum (defaut : 100)", false)),

		command("poll", "Creates a reaction poll", "Creer un sondage", 0,
			option(optString, "question", "Poll question", "Question", true),
			option(optString, "options", "2-10 options separated by |", "2 a 10 options separees par |", true)),
		command("color", "Shows a colour swatch", "Afficher une couleur", 0,
			option(optString, "value", "Hex code or colour name", "Code hexadecimal ou nom", true)),
		command("invite", "Gets the bot invite link", "Lien d'invitation du bot", 0),

		command("ping", "Shows the gateway latency", "Afficher la latence", 0),
		command("uptime", "Shows the bot uptime", "Afficher le temps de fonctionnement", 0),
		command("userinfo", "Shows information about a user", "Informations sur un membre", 0,
			option(optUser, "user", "User (default: you)", "Membre (defaut : vous)", false)),
		command("serverinfo", "Shows information about this server", "Informations sur le serveur", 0),
		command("avatar", "Shows a user's avatar", "Afficher l'avatar d'un membre", 0,
			option(optUser, "user", "User (default: you)", "Membre (defaut : vous)", false)),
		command("modstats", "Moderation statistics", "Statistiques de moderation", discordgo.PermissionModerateMembers,
			choices(option(optString, "period", "day, week, month or all", "day, week, month ou all", false), "day", "week", "month", "all")),
	}
}

func (b *Bot) registerCommands() error {
	commands := b.commandDefinitions()

	appID := b.session.State.User.ID
	existing, err := b.session.ApplicationCommands(appID, "")
	if err != nil {
		for _, cmd := range commands {
			if _, err := b.session.ApplicationCommandCreate(appID, "", cmd); err != nil {
				return err
			}
		}
		return nil
	}

	existingByName := make(map[string]*discordgo.ApplicationCommand)
	for _, cmd := range existing {
		existingByName[cmd.Name] = cmd
	}

	desired := make(map[string]struct{})
	for _, cmd := range commands {
		desired[cmd.Name] = struct{}{}
		if current, ok := existingByName[cmd.Name]; ok {
			if _, err := b.session.ApplicationCommandEdit(appID, "", current.ID, cmd); err != nil {
				return err
			}
			continue
		}
		if _, err := b.session.ApplicationCommandCreate(appID, "", cmd); err != nil {
			return err
		}
	}

	for _, cmd := range existing {
		if _, ok := desired[cmd.Name]; ok {
			continue
		}
		_ = b.session.ApplicationCommandDelete(appID, "", cmd.ID)
	}
	return nil
}
