package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
	_ "time/tzdata" // 容器里可能没有 zoneinfo

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"discord-analyzer/analyzer"
	"discord-analyzer/models"
)

// setDefaults 为每个配置键注册默认值，这样 AutomaticEnv 也能覆盖没有写进文件的键。
func setDefaults(v *viper.Viper) {
	v.SetDefault("bot_token", "")
	v.SetDefault("bot.admin_channel_id", "")
	v.SetDefault("bot.guild_id", "")
	v.SetDefault("bot.scan_at_startup", false)

	v.SetDefault("analysis.repeat_emoji", true)
	v.SetDefault("analysis.legacy_replies", true)
	tz := os.Getenv("TZ")
	if tz == "" {
		tz = "UTC"
	}
	v.SetDefault("analysis.timezone", tz)

	v.SetDefault("scan.channels", []string{})
	v.SetDefault("scan.cron", "@daily")
	v.SetDefault("scan.requests_per_second", 5.0)
	v.SetDefault("scan.page_size", 100)

	v.SetDefault("storage.driver", "sqlite")
	v.SetDefault("storage.path", "data/analyzer.db")
	v.SetDefault("storage.dsn", "")
	v.SetDefault("storage.export_dir", "data/exports")
	v.SetDefault("storage.keep", 7)

	v.SetDefault("metrics.addr", ":9090")
	v.SetDefault("grpc.addr", ":50051")
	v.SetDefault("grpc.timeout", "10s")

	v.SetDefault("commands.auth.admin_roles", []string{})
	v.SetDefault("commands.auth.developers", []string{})
}

// LoadConfig 从 dir 下的多个源加载配置:
// 1. .env 文件 (用于环境变量)
// 2. config.yaml (基础配置)
// 3. config/analyzer.json (合并到主配置)
// 环境变量会覆盖配置文件中的同名设置，例如 BOT_TOKEN、ANALYSIS_TIMEZONE。
func LoadConfig(dir string) (*models.Config, error) {
	// .env 不存在时忽略。
	if err := godotenv.Load(filepath.Join(dir, ".env")); err != nil {
		log.Printf("No .env file in %s, skipping.", dir)
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("parse config.yaml: %w", err)
		}
		log.Printf("No config.yaml in %s, using defaults and environment.", dir)
	}

	// MergeInConfig 会把 JSON 合并进已有配置。
	v.SetConfigName("analyzer")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(dir, "config"))
	if err := v.MergeInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("merge config/analyzer.json: %w", err)
		}
	}

	var cfg models.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if _, err := AnalyzerOptions(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// AnalyzerOptions 把分析相关的配置转换成 analyzer.Options。未知时区是配置错误。
func AnalyzerOptions(cfg *models.Config) (analyzer.Options, error) {
	loc := time.UTC
	if name := cfg.Analysis.Timezone; name != "" {
		var err error
		loc, err = time.LoadLocation(name)
		if err != nil {
			return analyzer.Options{}, fmt.Errorf("analysis.timezone %q: %w", name, err)
		}
	}
	return analyzer.Options{
		RepeatEmoji:   cfg.Analysis.RepeatEmoji,
		LegacyReplies: cfg.Analysis.LegacyReplies,
		Location:      loc,
	}, nil
}

// Default 返回只包含默认值的配置，供 init 命令生成脚手架。
func Default() *models.Config {
	tz := os.Getenv("TZ")
	if tz == "" {
		tz = "UTC"
	}
	return &models.Config{
		Analysis: models.AnalysisConfig{RepeatEmoji: true, LegacyReplies: true, Timezone: tz},
		Scan:     models.ScanConfig{Channels: []string{}, Cron: "@daily", RequestsPerSecond: 5, PageSize: 100},
		Storage:  models.StorageConfig{Driver: "sqlite", Path: "data/analyzer.db", ExportDir: "data/exports", Keep: 7},
		Metrics:  models.MetricsConfig{Addr: ":9090"},
		GRPC:     models.GRPCConfig{Addr: ":50051", Timeout: 10 * time.Second},
		Commands: models.CommandsConfig{Auth: models.AuthConfig{Developers: []string{}, AdminsRoles: []string{}}},
	}
}

// Save 以 yaml 格式写出配置，已存在的文件不会被覆盖。
func Save(path string, cfg *models.Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
