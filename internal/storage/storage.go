package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

type Store struct {
	db *sql.DB
}

type GuildSettings struct {
	GuildID           string
	Prefix            string
	Language          string
	WelcomeChannel    string
	WelcomeMessage    string
	AutoroleID        string
	MessageLogChannel string
	ServerLogChannel  string
	ModLogChannel     string
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	// sqlite serialises writers anyway and ":memory:" is per connection.
	db.SetMaxOpenConns(1)
	return &Store{db: db}, nil
}

func (s *Store) Close() {
	if s.db != nil {
		_ = s.db.Close()
	}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Migrate() error {
	entries, err := migrations.ReadDir("migrations")
	if err != nil {
		return err
	}

	var files []string
	for _, entry := range entries {
		files = append(files, entry.Name())
	}
	sort.Strings(files)

	for _, file := range files {
		content, err := migrations.ReadFile(path.Join("migrations", file))
		if err != nil {
			return err
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			if isIgnorableMigrationError(err) {
				continue
			}
			return fmt.Errorf("migration %s failed: %w", file, err)
		}
	}
	return nil
}

// GetGuildSettings returns the stored settings, filling blanks from defaults.
func (s *Store) GetGuildSettings(ctx context.Context, guildID string, defaults GuildSettings) (GuildSettings, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT prefix, language, welcome_channel, welcome_message, autorole_id,
		message_log_channel, server_log_channel, mod_log_channel
		FROM guild_settings WHERE guild_id = ?`, guildID)

	result := defaults
	result.GuildID = guildID

	err := row.Scan(
		&result.Prefix,
		&result.Language,
		&result.WelcomeChannel,
		&result.WelcomeMessage,
		&result.AutoroleID,
		&result.MessageLogChannel,
		&result.ServerLogChannel,
		&result.ModLogChannel,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return result, nil
		}
		return GuildSettings{}, err
	}
	if result.Prefix == "" {
		result.Prefix = defaults.Prefix
	}
	if result.Language == "" {
		result.Language = defaults.Language
	}
	return result, nil
}

func (s *Store) UpsertGuildSettings(ctx context.Context, settings GuildSettings) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO guild_settings (
			guild_id, prefix, language, welcome_channel, welcome_message, autorole_id,
			message_log_channel, server_log_channel, mod_log_channel
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(guild_id) DO UPDATE SET
			prefix = excluded.prefix,
			language = excluded.language,
			welcome_channel = excluded.welcome_channel,
			welcome_message = excluded.welcome_message,
			autorole_id = excluded.autorole_id,
			message_log_channel = excluded.message_log_channel,
			server_log_channel = excluded.server_log_channel,
			mod_log_channel = excluded.mod_log_channel
	`,
		settings.GuildID,
		settings.Prefix,
		settings.Language,
		settings.WelcomeChannel,
		settings.WelcomeMessage,
		settings.AutoroleID,
		settings.MessageLogChannel,
		settings.ServerLogChannel,
		settings.ModLogChannel,
	)
	return err
}

func unixOrZero(value sql.NullInt64) time.Time {
	if !value.Valid {
		return time.Time{}
	}
	return time.Unix(value.Int64, 0).UTC()
}

func isIgnorableMigrationError(err error) bool {
	if err == nil {
		return false
	}
	message := err.Error()
	return strings.Contains(message, "duplicate column name") || strings.Contains(message, "already exists")
}
