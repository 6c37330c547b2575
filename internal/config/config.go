package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

type Config struct {
	DiscordToken    string           `yaml:"discord_token" env:"DISCORD_TOKEN"`
	ApplicationID   string           `yaml:"application_id" env:"APPLICATION_ID"`
	DatabasePath    string           `yaml:"database_path" env:"DATABASE_PATH"`
	LogLevel        string           `yaml:"log_level" env:"LOG_LEVEL"`
	DefaultLanguage string           `yaml:"default_language" env:"DEFAULT_LANGUAGE"`
	DefaultPrefix   string           `yaml:"default_prefix" env:"DEFAULT_PREFIX"`
	OwnerIDs        []string         `yaml:"owner_ids" env:"OWNER_IDS" envSeparator:","`
	RetentionDays   int              `yaml:"retention_days" env:"RETENTION_DAYS"`
	Health          HealthConfig     `yaml:"health"`
	Giveaway        GiveawayConfig   `yaml:"giveaway"`
	Moderation      ModerationConfig `yaml:"moderation"`
	Prefix          PrefixConfig     `yaml:"prefix"`
	EmbedColors     EmbedColors      `yaml:"embed_colors"`
}

type HealthConfig struct {
	Enabled bool   `yaml:"enabled" env:"HEALTH_ENABLED"`
	Addr    string `yaml:"addr" env:"HEALTH_ADDR"`
}

type GiveawayConfig struct {
	Store                  string `yaml:"store" env:"GIVEAWAY_STORE"`
	DataDir                string `yaml:"data_dir" env:"GIVEAWAY_DATA_DIR"`
	RedisAddr              string `yaml:"redis_addr" env:"REDIS_ADDR"`
	RedisPassword          string `yaml:"redis_password" env:"REDIS_PASSWORD"`
	RedisDB                int    `yaml:"redis_db" env:"REDIS_DB"`
	RedisPrefix            string `yaml:"redis_prefix" env:"REDIS_PREFIX"`
	CheckIntervalSeconds   int    `yaml:"check_interval_seconds" env:"GIVEAWAY_CHECK_INTERVAL_SECONDS"`
	CleanupIntervalSeconds int    `yaml:"cleanup_interval_seconds" env:"GIVEAWAY_CLEANUP_INTERVAL_SECONDS"`
	GraceSeconds           int    `yaml:"grace_seconds" env:"GIVEAWAY_GRACE_SECONDS"`
	MinDurationSeconds     int    `yaml:"min_duration_seconds" env:"GIVEAWAY_MIN_DURATION_SECONDS"`
	PlatformTimeoutSeconds int    `yaml:"platform_timeout_seconds" env:"GIVEAWAY_PLATFORM_TIMEOUT_SECONDS"`
}

type ModerationConfig struct {
	MaxPurge int  `yaml:"max_purge" env:"MAX_PURGE"`
	WarnDM   bool `yaml:"warn_dm" env:"WARN_DM"`
}

type PrefixConfig struct {
	CooldownSeconds int `yaml:"cooldown_seconds" env:"PREFIX_COOLDOWN_SECONDS"`
	Burst           int `yaml:"burst" env:"PREFIX_BURST"`
}

type EmbedColors struct {
	Action  int `yaml:"action" env:"EMBED_COLOR_ACTION"`
	Warning int `yaml:"warning" env:"EMBED_COLOR_WARNING"`
	Error   int `yaml:"error" env:"EMBED_COLOR_ERROR"`
	Success int `yaml:"success" env:"EMBED_COLOR_SUCCESS"`
	Info    int `yaml:"info" env:"EMBED_COLOR_INFO"`
}

func DefaultConfig() Config {
	return Config{
		DatabasePath:    "/data/guildkeeper.db",
		LogLevel:        "info",
		DefaultLanguage: "en",
		DefaultPrefix:   "!",
		RetentionDays:   90,
		Health:          HealthConfig{Enabled: false, Addr: ":8080"},
		Giveaway: GiveawayConfig{
			Store:                  "json",
			DataDir:                "/data/giveaways",
			RedisPrefix:            "guildkeeper:giveaways",
			CheckIntervalSeconds:   10,
			CleanupIntervalSeconds: 5,
			GraceSeconds:           5,
			MinDurationSeconds:     5,
			PlatformTimeoutSeconds: 10,
		},
		Moderation: ModerationConfig{MaxPurge: 100, WarnDM: true},
		Prefix:     PrefixConfig{CooldownSeconds: 3, Burst: 2},
		EmbedColors: EmbedColors{
			Action:  0xF59E0B,
			Warning: 0xEF4444,
			Error:   0xF97316,
			Success: 0x22C55E,
			Info:    0x5865F2,
		},
	}
}

// Load layers defaults, the yaml file named by CONFIG_PATH and the environment.
func Load() (Config, error) {
	cfg := DefaultConfig()

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config.yaml"
	}
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	if cfg.DiscordToken == "" {
		return Config{}, errors.New("DISCORD_TOKEN is required")
	}

	normalize(&cfg)
	return cfg, nil
}

func normalize(cfg *Config) {
	defaults := DefaultConfig()

	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		cfg.LogLevel = "info"
	}
	cfg.DefaultLanguage = NormalizeLanguage(cfg.DefaultLanguage)
	if strings.TrimSpace(cfg.DefaultPrefix) == "" {
		cfg.DefaultPrefix = defaults.DefaultPrefix
	}

	g := &cfg.Giveaway
	switch strings.ToLower(g.Store) {
	case "redis":
		g.Store = "redis"
	default:
		g.Store = "json"
	}
	positive(&g.CheckIntervalSeconds, defaults.Giveaway.CheckIntervalSeconds)
	positive(&g.CleanupIntervalSeconds, defaults.Giveaway.CleanupIntervalSeconds)
	positive(&g.GraceSeconds, defaults.Giveaway.GraceSeconds)
	positive(&g.MinDurationSeconds, defaults.Giveaway.MinDurationSeconds)
	positive(&g.PlatformTimeoutSeconds, defaults.Giveaway.PlatformTimeoutSeconds)

	positive(&cfg.Moderation.MaxPurge, defaults.Moderation.MaxPurge)
	positive(&cfg.Prefix.CooldownSeconds, defaults.Prefix.CooldownSeconds)
	positive(&cfg.Prefix.Burst, defaults.Prefix.Burst)
	positive(&cfg.RetentionDays, defaults.RetentionDays)
}

func positive(value *int, fallback int) {
	if *value <= 0 {
		*value = fallback
	}
}

// NormalizeLanguage maps anything outside the supported set to English.
func NormalizeLanguage(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "fr":
		return "fr"
	default:
		return "en"
	}
}

func (g GiveawayConfig) CheckInterval() time.Duration {
	return time.Duration(g.CheckIntervalSeconds) * time.Second
}

func (g GiveawayConfig) CleanupInterval() time.Duration {
	return time.Duration(g.CleanupIntervalSeconds) * time.Second
}

func (g GiveawayConfig) Grace() time.Duration {
	return time.Duration(g.GraceSeconds) * time.Second
}

func (g GiveawayConfig) MinDuration() time.Duration {
	return time.Duration(g.MinDurationSeconds) * time.Second
}

func (g GiveawayConfig) PlatformTimeout() time.Duration {
	return time.Duration(g.PlatformTimeoutSeconds) * time.Second
}

func BuildLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "json"
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.MessageKey = "message"
	cfg.EncoderConfig.LevelKey = "level"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	lvl, err := zapcore.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	return cfg.Build()
}
