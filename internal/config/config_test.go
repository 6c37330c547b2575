package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadRequiresToken(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("DISCORD_TOKEN", "")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error without token")
	}
}

func TestLoadLayersYamlAndEnv(t *testing.T) {
	path := writeConfig(t, `
discord_token: from-yaml
default_prefix: "?"
giveaway:
  store: redis
  redis_addr: localhost:6379
  check_interval_seconds: 30
moderation:
  max_purge: 50
`)
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("DISCORD_TOKEN", "from-env")
	t.Setenv("OWNER_IDS", "1,2")
	t.Setenv("GIVEAWAY_GRACE_SECONDS", "15")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DiscordToken != "from-env" {
		t.Fatalf("env should override yaml, got %q", cfg.DiscordToken)
	}
	if cfg.DefaultPrefix != "?" {
		t.Fatalf("prefix = %q", cfg.DefaultPrefix)
	}
	if cfg.Giveaway.Store != "redis" || cfg.Giveaway.RedisAddr != "localhost:6379" {
		t.Fatalf("unexpected giveaway store config: %+v", cfg.Giveaway)
	}
	if cfg.Giveaway.CheckInterval() != 30*time.Second {
		t.Fatalf("check interval = %s", cfg.Giveaway.CheckInterval())
	}
	if cfg.Giveaway.Grace() != 15*time.Second {
		t.Fatalf("grace = %s", cfg.Giveaway.Grace())
	}
	if cfg.Giveaway.CleanupInterval() != 5*time.Second {
		t.Fatalf("cleanup interval should keep default, got %s", cfg.Giveaway.CleanupInterval())
	}
	if cfg.Moderation.MaxPurge != 50 || !cfg.Moderation.WarnDM {
		t.Fatalf("unexpected moderation config: %+v", cfg.Moderation)
	}
	if len(cfg.OwnerIDs) != 2 || cfg.OwnerIDs[1] != "2" {
		t.Fatalf("owner ids = %v", cfg.OwnerIDs)
	}
}

func TestLoadNormalizes(t *testing.T) {
	path := writeConfig(t, `
discord_token: token
log_level: LOUD
default_language: de
giveaway:
  store: etcd
  check_interval_seconds: -1
  min_duration_seconds: 0
prefix:
  burst: 0
`)
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("DISCORD_TOKEN", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("log level = %q", cfg.LogLevel)
	}
	if cfg.DefaultLanguage != "en" {
		t.Fatalf("language = %q", cfg.DefaultLanguage)
	}
	if cfg.Giveaway.Store != "json" {
		t.Fatalf("store = %q", cfg.Giveaway.Store)
	}
	if cfg.Giveaway.CheckIntervalSeconds != 10 || cfg.Giveaway.MinDurationSeconds != 5 {
		t.Fatalf("intervals not defaulted: %+v", cfg.Giveaway)
	}
	if cfg.Prefix.Burst != 2 {
		t.Fatalf("burst = %d", cfg.Prefix.Burst)
	}
}

func TestLoadRejectsBadYaml(t *testing.T) {
	t.Setenv("CONFIG_PATH", writeConfig(t, "discord_token: [unterminated"))
	t.Setenv("DISCORD_TOKEN", "token")
	if _, err := Load(); err == nil {
		t.Fatalf("expected yaml error")
	}
}

func TestNormalizeLanguage(t *testing.T) {
	cases := map[string]string{"FR": "fr", " fr ": "fr", "en": "en", "": "en", "es": "en"}
	for in, want := range cases {
		if got := NormalizeLanguage(in); got != want {
			t.Fatalf("NormalizeLanguage(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestBuildLoggerFallsBackToInfo(t *testing.T) {
	logger, err := BuildLogger("verbose")
	if err != nil {
		t.Fatalf("build logger: %v", err)
	}
	if logger.Core().Enabled(-1) {
		t.Fatalf("debug should be disabled at info level")
	}
}
