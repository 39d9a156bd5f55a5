package config

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

// unsetEnv clears key for the test and restores it afterwards.
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	os.Unsetenv(key)
}

func TestLoadConfig_Defaults(t *testing.T) {
	unsetEnv(t, "TZ")
	unsetEnv(t, "BOT_TOKEN")

	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if !cfg.Analysis.RepeatEmoji || !cfg.Analysis.LegacyReplies || cfg.Analysis.Timezone != "UTC" {
		t.Errorf("analysis = %+v", cfg.Analysis)
	}
	if cfg.Scan.Cron != "@daily" || cfg.Scan.RequestsPerSecond != 5 || cfg.Scan.PageSize != 100 {
		t.Errorf("scan = %+v", cfg.Scan)
	}
	if cfg.Storage.Driver != "sqlite" || cfg.Storage.Keep != 7 || cfg.GRPC.Timeout != 10*time.Second {
		t.Errorf("storage %+v grpc %+v", cfg.Storage, cfg.GRPC)
	}
}

func TestLoadConfig_FilesAndEnv(t *testing.T) {
	dir := t.TempDir()
	unsetEnv(t, "BOT_TOKEN")
	unsetEnv(t, "METRICS_ADDR")
	t.Setenv("ANALYSIS_LEGACY_REPLIES", "false")

	writeFile(t, filepath.Join(dir, ".env"), "BOT_TOKEN=from-dotenv\n")
	writeFile(t, filepath.Join(dir, "config.yaml"), `
bot:
  guild_id: "123"
  scan_at_startup: true
analysis:
  timezone: Europe/Berlin
scan:
  channels: ["1", "2"]
grpc:
  timeout: 3s
commands:
  auth:
    admin_roles: ["900"]
`)
	writeFile(t, filepath.Join(dir, "config", "analyzer.json"), `{"storage": {"driver": "file", "path": "snaps"}, "metrics": {"addr": ":9999"}}`)

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.BotToken != "from-dotenv" {
		t.Errorf("BotToken = %q", cfg.BotToken)
	}
	if cfg.Bot.GuildID != "123" || !cfg.Bot.ScanAtStartup {
		t.Errorf("bot = %+v", cfg.Bot)
	}
	if cfg.Analysis.LegacyReplies || cfg.Analysis.Timezone != "Europe/Berlin" {
		t.Errorf("analysis = %+v", cfg.Analysis)
	}
	if !slices.Equal(cfg.Scan.Channels, []string{"1", "2"}) {
		t.Errorf("channels = %v", cfg.Scan.Channels)
	}
	if cfg.Storage.Driver != "file" || cfg.Storage.Path != "snaps" || cfg.Metrics.Addr != ":9999" {
		t.Errorf("storage %+v metrics %+v", cfg.Storage, cfg.Metrics)
	}
	if cfg.GRPC.Timeout != 3*time.Second {
		t.Errorf("timeout = %v", cfg.GRPC.Timeout)
	}
	if !slices.Equal(cfg.Commands.Auth.AdminsRoles, []string{"900"}) {
		t.Errorf("admin roles = %v", cfg.Commands.Auth.AdminsRoles)
	}

	opts, err := AnalyzerOptions(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if opts.Location.String() != "Europe/Berlin" || opts.LegacyReplies || !opts.RepeatEmoji {
		t.Errorf("options = %+v", opts)
	}
}

func TestLoadConfig_BadTimezone(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "config.yaml"), "analysis:\n  timezone: Mars/Olympus\n")
	if _, err := LoadConfig(dir); err == nil {
		t.Fatal("want error for unknown timezone")
	}
}

func TestSave(t *testing.T) {
	unsetEnv(t, "TZ")
	unsetEnv(t, "BOT_TOKEN")
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	cfg := Default()
	cfg.Bot.GuildID = "777"
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := Save(path, cfg); err == nil {
		t.Error("Save() should refuse to overwrite")
	}

	loaded, err := LoadConfig(dir)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Bot.GuildID != "777" || loaded.GRPC.Timeout != 10*time.Second || loaded.Scan.Cron != "@daily" {
		t.Errorf("loaded = %+v", loaded)
	}
}
