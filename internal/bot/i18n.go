package bot

import "fmt"

var messages = map[string]map[string]string{
	"en": {
		"error_title":              "Error",
		"success_title":            "Done",
		"error_only_guild":         "This command can only be used in a server.",
		"error_missing_permission": "You do not have permission to use this command.",
		"error_unknown":            "Unknown command.",
		"error_no_subcommand":      "Choose a subcommand.",
		"error_prefix_invalid":     "The prefix must be 1 to 5 characters without spaces.",
		"error_failed":             "Something went wrong, try again later.",
		"error_send_failed":        "I could not post in this channel.",
		"error_bad_user_id":        "That is not a valid user ID.",
		"error_user_not_found":     "User not found.",
		"error_role_not_found":     "Role not found.",
		"error_channel_not_found":  "Channel not found.",
		"error_self_action":        "You cannot do that to yourself.",
		"error_target_bot":         "I cannot do that to myself.",
		"error_hierarchy":          "You cannot act on someone with an equal or higher role.",
		"error_bot_permission":     "I am missing the permissions to do that.",
		"error_bad_duration":       "Invalid duration. Use 30m, 2h, 1d or perm.",

		"config_title":          "Server configuration",
		"config_current":        "Current settings for this server.",
		"config_updated":        "Settings updated.",
		"value_not_set":         "Not set",
		"value_default":         "Default",
		"value_empty":           "*empty*",
		"field_prefix":          "Prefix",
		"field_language":        "Language",
		"field_autorole":        "Autorole",
		"field_welcome_channel": "Welcome channel",
		"field_message_log":     "Message log",
		"field_server_log":      "Server log",
		"field_mod_log":         "Mod log",
		"field_welcome_message": "Welcome message",

		"giveaway_created_title":   "🎉 Giveaway created",
		"giveaway_created":         "Giveaway created for **%s**!\n• Duration: %s\n• Winners: %d\n• Click the button to participate",
		"giveaway_bad_duration":    "Invalid duration format! Use s, m, h, d or w (e.g. 30s, 5m, 1h, 2d).",
		"giveaway_too_short":       "The giveaway is too short.",
		"giveaway_bad_winners":     "Number of winners must be at least 1!",
		"giveaway_bad_id":          "Giveaway ID must be a message ID (numbers only)!",
		"giveaway_not_found":       "Could not find a giveaway with that message ID.",
		"giveaway_still_active":    "This giveaway is still running, use /endgiveaway to end it first.",
		"giveaway_no_participants": "No participants in this giveaway!",
		"giveaway_no_eligible":     "No other participants to reroll!",
		"giveaway_ended":           "Giveaway ended successfully with %d winner(s).",
		"giveaway_closed":          "This giveaway has already ended.",
		"giveaway_joined":          "✅ You have joined the giveaway!",
		"giveaway_left":            "✅ You have left the giveaway!",
		"giveaways_title":          "🎉 Active giveaways",
		"giveaways_none":           "There are no active giveaways in this server.",

		"reason_none":     "No reason provided",
		"mod_title":       "Moderation",
		"mod_kick":        "%s was kicked.\n**Reason:** %s",
		"mod_ban":         "%s was banned.\n**Reason:** %s",
		"mod_unban":       "%s was unbanned.\n**Reason:** %s",
		"mod_softban":     "%s was softbanned.\n**Reason:** %s",
		"mod_mute":        "%s was muted.\n**Reason:** %s",
		"mod_unmute":      "%s is no longer muted.",
		"mod_nick":        "%s is now called **%s**.",
		"mod_nick_reset":  "%s's nickname was reset.",
		"mod_warn":        "%s was warned (case #%d).\n**Reason:** %s\nTotal warnings: %d",
		"mod_clearwarns":  "Removed %d warning(s) from %s.",
		"mod_delwarn":     "Case #%d deleted.",
		"mod_editcase":    "Case #%d updated.\n**Reason:** %s",
		"modlog_title":    "🔨 %s",
		"warn_dm_title":   "⚠️ Warning",
		"warn_dm":         "You were warned in **%s**.\n**Reason:** %s",
		"warnings_title":  "Warnings",
		"warnings_none":   "%s has no warnings.",
		"warnings_count":  "%s has %d warning(s).",
		"case_title":      "Case #%d",
		"case_not_found":  "Case #%d does not exist.",
		"purge_range":     "Amount must be between 1 and %d.",
		"purge_done":      "Deleted %d message(s).",
		"lock_already":    "This channel is already locked.",
		"lock_done":       "🔒 %s is locked.",
		"unlock_done":     "🔓 %s is unlocked.",
		"slowmode_range":  "Slowmode must be between 0 and 21600 seconds.",
		"slowmode_set":    "Slowmode in %s set to %d seconds.",
		"slowmode_off":    "Slowmode disabled in %s.",
		"role_added":      "Added %s to %s.",
		"role_removed":    "Removed %s from %s.",
		"field_user":      "User",
		"field_moderator": "Moderator",
		"field_reason":    "Reason",
		"field_date":      "Date",
		"field_edited":    "Edited",

		"log_message_deleted": "🗑️ Message deleted",
		"log_message_edited":  "✏️ Message edited",
		"log_jump":            "Jump to message",
		"log_member_joined":   "📥 Member joined",
		"log_member_left":     "📤 Member left",
		"log_member_kicked":   "👢 Member kicked",
		"log_channel_created": "Channel created",
		"log_channel_deleted": "Channel deleted",
		"log_role_created":    "Role created",
		"log_role_deleted":    "Role deleted",
		"field_author":        "Author",
		"field_channel":       "Channel",
		"field_content":       "Content",
		"field_attachments":   "Attachments",
		"field_links":         "Links",
		"field_before":        "Before",
		"field_after":         "After",
		"field_by":            "By",
		"field_joined":        "Joined",

		"welcome_title":         "👋 Welcome!",
		"welcome_default":       "Welcome {user} to **{server}**! You are member #{count}.",
		"field_account_created": "Account created",
		"field_recent_joins":    "Joins (24h)",
		"recentjoins_title":     "Recent joins",
		"recentjoins_none":      "Nobody joined in the last 24 hours.",
		"recentjoins_count":     "%d member(s) joined in the last 24 hours.",
		"afk_title":             "💤 AFK",
		"afk_set":               "%s is now AFK: %s",
		"afk_back":              "Welcome back %s, I removed your AFK status.",
		"afk_notice":            "**%s** is AFK: %s (since <t:%d:R>)",
		"snipe_title":           "Last deleted message from %s",
		"snipe_attachments":     "%d attachment(s)",
		"snipe_none":            "There is nothing to snipe here.",

		"rate_title":         "Rating for '%s'",
		"rps_title":          "Rock-Paper-Scissors",
		"rps_body":           "**Your choice:** %s\n**My choice:** %s\n**Result:** %s",
		"rps_tie":            "It's a tie!",
		"rps_win":            "You win! 🎉",
		"rps_lose":           "I win! 😈",
		"8ball_body":         "**Question:** %s\n**Answer:** %s",
		"random_title":       "🎲 Random number",
		"random_body":        "Your random number between %d and %d is:\n**%d**",
		"fun_rate_invalid":   "Tell me what to rate.",
		"fun_rps_invalid":    "Invalid choice! Use `rock`, `paper` or `scissors`.",
		"fun_8ball_invalid":  "Ask a question.",
		"fun_random_invalid": "Minimum value must be less than or equal to maximum value!",

		"poll_invalid":         "A poll needs a question and 2 to 10 options separated by |.",
		"poll_created":         "Poll created.",
		"poll_by":              "Poll by %s",
		"color_invalid":        "Unknown colour. Use a hex code like #5865F2 or a colour name.",
		"invite_title":         "Invite",
		"invite_link":          "Add the bot to your server",
		"ping_body":            "Gateway latency: **%s**",
		"uptime_title":         "Uptime",
		"uptime_body":          "Up for **%s** (since <t:%d:f>).",
		"avatar_title":         "Avatar of %s",
		"field_bot":            "Bot",
		"field_roles":          "Roles (%d)",
		"field_owner":          "Owner",
		"field_members":        "Members",
		"field_channels":       "Text / Voice",
		"field_role_count":     "Roles",
		"field_boosts":         "Boosts",
		"field_created":        "Created",
		"modstats_title":       "Moderation stats (%s)",
		"modstats_none":        "No moderation actions in this period.",
		"modstats_total":       "%d action(s) recorded.",
		"field_actions":        "Actions",
		"field_top_moderators": "Top moderators",

		"help_title":      "Commands",
		"help_slash":      "Every feature is also available as a slash command.",
		"prefix_usage":    "Usage: `%s`",
		"prefix_cooldown": "Slow down a little.",
	},
	"fr": {
		"error_title":              "Erreur",
		"success_title":            "Terminé",
		"error_only_guild":         "Cette commande ne fonctionne que sur un serveur.",
		"error_missing_permission": "Vous n'avez pas la permission d'utiliser cette commande.",
		"error_unknown":            "Commande inconnue.",
		"error_no_subcommand":      "Choisissez une sous-commande.",
		"error_prefix_invalid":     "Le préfixe doit faire 1 à 5 caractères sans espace.",
		"error_failed":             "Une erreur est survenue, réessayez plus tard.",
		"error_send_failed":        "Je ne peux pas écrire dans ce salon.",
		"error_bad_user_id":        "Cet ID d'utilisateur n'est pas valide.",
		"error_user_not_found":     "Utilisateur introuvable.",
		"error_role_not_found":     "Rôle introuvable.",
		"error_channel_not_found":  "Salon introuvable.",
		"error_self_action":        "Vous ne pouvez pas faire ça sur vous-même.",
		"error_target_bot":         "Je ne peux pas faire ça sur moi-même.",
		"error_hierarchy":          "Vous ne pouvez pas agir sur un membre de rang égal ou supérieur.",
		"error_bot_permission":     "Il me manque les permissions nécessaires.",
		"error_bad_duration":       "Durée invalide. Utilisez 30m, 2h, 1d ou perm.",

		"config_title":          "Configuration du serveur",
		"config_current":        "Paramètres actuels du serveur.",
		"config_updated":        "Paramètres mis à jour.",
		"value_not_set":         "Non défini",
		"value_default":         "Par défaut",
		"value_empty":           "*vide*",
		"field_prefix":          "Préfixe",
		"field_language":        "Langue",
		"field_autorole":        "Rôle automatique",
		"field_welcome_channel": "Salon de bienvenue",
		"field_message_log":     "Logs des messages",
		"field_server_log":      "Logs du serveur",
		"field_mod_log":         "Logs de modération",
		"field_welcome_message": "Message de bienvenue",

		"giveaway_created_title":   "🎉 Giveaway créé",
		"giveaway_created":         "Giveaway créé pour **%s** !\n• Durée : %s\n• Gagnants : %d\n• Cliquez sur le bouton pour participer",
		"giveaway_bad_duration":    "Format de durée invalide ! Utilisez s, m, h, d ou w (ex. 30s, 5m, 1h, 2d).",
		"giveaway_too_short":       "Le giveaway est trop court.",
		"giveaway_bad_winners":     "Il faut au moins 1 gagnant !",
		"giveaway_bad_id":          "L'ID du giveaway doit être un ID de message (chiffres uniquement) !",
		"giveaway_not_found":       "Aucun giveaway trouvé avec cet ID de message.",
		"giveaway_still_active":    "Ce giveaway est toujours en cours, utilisez /endgiveaway d'abord.",
		"giveaway_no_participants": "Aucun participant à ce giveaway !",
		"giveaway_no_eligible":     "Aucun autre participant à tirer !",
		"giveaway_ended":           "Giveaway terminé avec %d gagnant(s).",
		"giveaway_closed":          "Ce giveaway est déjà terminé.",
		"giveaway_joined":          "✅ Vous participez au giveaway !",
		"giveaway_left":            "✅ Vous avez quitté le giveaway !",
		"giveaways_title":          "🎉 Giveaways en cours",
		"giveaways_none":           "Aucun giveaway en cours sur ce serveur.",

		"reason_none":     "Aucune raison fournie",
		"mod_title":       "Modération",
		"mod_kick":        "%s a été expulsé.\n**Raison :** %s",
		"mod_ban":         "%s a été banni.\n**Raison :** %s",
		"mod_unban":       "%s a été débanni.\n**Raison :** %s",
		"mod_softban":     "%s a été softban.\n**Raison :** %s",
		"mod_mute":        "%s a été rendu muet.\n**Raison :** %s",
		"mod_unmute":      "%s n'est plus muet.",
		"mod_nick":        "%s s'appelle maintenant **%s**.",
		"mod_nick_reset":  "Le pseudo de %s a été réinitialisé.",
		"mod_warn":        "%s a été averti (cas #%d).\n**Raison :** %s\nAvertissements : %d",
		"mod_clearwarns":  "%d avertissement(s) retiré(s) à %s.",
		"mod_delwarn":     "Cas #%d supprimé.",
		"mod_editcase":    "Cas #%d modifié.\n**Raison :** %s",
		"modlog_title":    "🔨 %s",
		"warn_dm_title":   "⚠️ Avertissement",
		"warn_dm":         "Vous avez reçu un avertissement sur **%s**.\n**Raison :** %s",
		"warnings_title":  "Avertissements",
		"warnings_none":   "%s n'a aucun avertissement.",
		"warnings_count":  "%s a %d avertissement(s).",
		"case_title":      "Cas #%d",
		"case_not_found":  "Le cas #%d n'existe pas.",
		"purge_range":     "Le nombre doit être entre 1 et %d.",
		"purge_done":      "%d message(s) supprimé(s).",
		"lock_already":    "Ce salon est déjà verrouillé.",
		"lock_done":       "🔒 %s est verrouillé.",
		"unlock_done":     "🔓 %s est déverrouillé.",
		"slowmode_range":  "Le mode lent doit être entre 0 et 21600 secondes.",
		"slowmode_set":    "Mode lent de %s réglé sur %d secondes.",
		"slowmode_off":    "Mode lent désactivé dans %s.",
		"role_added":      "%s ajouté à %s.",
		"role_removed":    "%s retiré à %s.",
		"field_user":      "Membre",
		"field_moderator": "Modérateur",
		"field_reason":    "Raison",
		"field_date":      "Date",
		"field_edited":    "Modifié",

		"log_message_deleted": "🗑️ Message supprimé",
		"log_message_edited":  "✏️ Message modifié",
		"log_jump":            "Aller au message",
		"log_member_joined":   "📥 Arrivée",
		"log_member_left":     "📤 Départ",
		"log_member_kicked":   "👢 Membre expulsé",
		"log_channel_created": "Salon créé",
		"log_channel_deleted": "Salon supprimé",
		"log_role_created":    "Rôle créé",
		"log_role_deleted":    "Rôle supprimé",
		"field_author":        "Auteur",
		"field_channel":       "Salon",
		"field_content":       "Contenu",
		"field_attachments":   "Pièces jointes",
		"field_links":         "Liens",
		"field_before":        "Avant",
		"field_after":         "Après",
		"field_by":            "Par",
		"field_joined":        "Arrivé",

		"welcome_title":         "👋 Bienvenue !",
		"welcome_default":       "Bienvenue {user} sur **{server}** ! Tu es le membre n°{count}.",
		"field_account_created": "Compte créé",
		"field_recent_joins":    "Arrivées (24h)",
		"recentjoins_title":     "Arrivées récentes",
		"recentjoins_none":      "Personne n'est arrivé ces dernières 24 heures.",
		"recentjoins_count":     "%d membre(s) arrivé(s) ces dernières 24 heures.",
		"afk_title":             "💤 AFK",
		"afk_set":               "%s est maintenant AFK : %s",
		"afk_back":              "Bon retour %s, j'ai retiré ton statut AFK.",
		"afk_notice":            "**%s** est AFK : %s (depuis <t:%d:R>)",
		"snipe_title":           "Dernier message supprimé de %s",
		"snipe_attachments":     "%d pièce(s) jointe(s)",
		"snipe_none":            "Rien à afficher ici.",

		"rate_title":         "Note pour « %s »",
		"rps_title":          "Pierre-Feuille-Ciseaux",
		"rps_body":           "**Ton choix :** %s\n**Mon choix :** %s\n**Résultat :** %s",
		"rps_tie":            "Égalité !",
		"rps_win":            "Tu as gagné ! 🎉",
		"rps_lose":           "J'ai gagné ! 😈",
		"8ball_body":         "**Question :** %s\n**Réponse :** %s",
		"random_title":       "🎲 Nombre aléatoire",
		"random_body":        "Ton nombre aléatoire entre %d et %d est :\n**%d**",
		"fun_rate_invalid":   "Dis-moi quoi noter.",
		"fun_rps_invalid":    "Choix invalide ! Utilise `rock`, `paper` ou `scissors`.",
		"fun_8ball_invalid":  "Pose une question.",
		"fun_random_invalid": "Le minimum doit être inférieur ou égal au maximum !",

		"poll_invalid":         "Un sondage demande une question et 2 à 10 options séparées par |.",
		"poll_created":         "Sondage créé.",
		"poll_by":              "Sondage de %s",
		"color_invalid":        "Couleur inconnue. Utilisez un code comme #5865F2 ou un nom de couleur.",
		"invite_title":         "Invitation",
		"invite_link":          "Ajouter le bot à votre serveur",
		"ping_body":            "Latence de la gateway : **%s**",
		"uptime_title":         "Temps de fonctionnement",
		"uptime_body":          "En ligne depuis **%s** (<t:%d:f>).",
		"avatar_title":         "Avatar de %s",
		"field_bot":            "Bot",
		"field_roles":          "Rôles (%d)",
		"field_owner":          "Propriétaire",
		"field_members":        "Membres",
		"field_channels":       "Texte / Vocal",
		"field_role_count":     "Rôles",
		"field_boosts":         "Boosts",
		"field_created":        "Créé",
		"modstats_title":       "Statistiques de modération (%s)",
		"modstats_none":        "Aucune action de modération sur cette période.",
		"modstats_total":       "%d action(s) enregistrée(s).",
		"field_actions":        "Actions",
		"field_top_moderators": "Modérateurs les plus actifs",

		"help_title":      "Commandes",
		"help_slash":      "Toutes les fonctions existent aussi en commandes slash.",
		"prefix_usage":    "Utilisation : `%s`",
		"prefix_cooldown": "Doucement, réessaie dans un instant.",
	},
}

// t looks a key up in lang, then in English, and returns the key itself when
// neither has it.
func (b *Bot) t(lang, key string) string {
	return translate(lang, key)
}

func (b *Bot) tf(lang, key string, args ...any) string {
	return fmt.Sprintf(translate(lang, key), args...)
}

func translate(lang, key string) string {
	if table, ok := messages[lang]; ok {
		if value, ok := table[key]; ok {
			return value
		}
	}
	if value, ok := messages["en"][key]; ok {
		return value
	}
	return key
}
