package models

import "time"

// Config is the full application configuration, decoded by viper from
// config.yaml, config/analyzer.json and the environment.
type Config struct {
	BotToken string         `mapstructure:"bot_token" yaml:"bot_token"`
	Bot      BotConfig      `mapstructure:"bot" yaml:"bot"`
	Analysis AnalysisConfig `mapstructure:"analysis" yaml:"analysis"`
	Scan     ScanConfig     `mapstructure:"scan" yaml:"scan"`
	Storage  StorageConfig  `mapstructure:"storage" yaml:"storage"`
	Metrics  MetricsConfig  `mapstructure:"metrics" yaml:"metrics"`
	GRPC     GRPCConfig     `mapstructure:"grpc" yaml:"grpc"`
	Commands CommandsConfig `mapstructure:"commands" yaml:"commands"`
}

// BotConfig holds the Discord session settings.
type BotConfig struct {
	AdminChannelID string `mapstructure:"admin_channel_id" yaml:"admin_channel_id"`
	GuildID        string `mapstructure:"guild_id" yaml:"guild_id"`
	ScanAtStartup  bool   `mapstructure:"scan_at_startup" yaml:"scan_at_startup"`
}

// AnalysisConfig holds the aggregation toggles.
type AnalysisConfig struct {
	RepeatEmoji   bool   `mapstructure:"repeat_emoji" yaml:"repeat_emoji"`
	LegacyReplies bool   `mapstructure:"legacy_replies" yaml:"legacy_replies"`
	Timezone      string `mapstructure:"timezone" yaml:"timezone"`
}

// ScanConfig controls history acquisition.
type ScanConfig struct {
	Channels          []string `mapstructure:"channels" yaml:"channels"` // empty means every text channel
	Cron              string   `mapstructure:"cron" yaml:"cron"`
	RequestsPerSecond float64  `mapstructure:"requests_per_second" yaml:"requests_per_second"`
	PageSize          int      `mapstructure:"page_size" yaml:"page_size"`
}

// StorageConfig selects where scans and analyses are kept.
type StorageConfig struct {
	Driver    string `mapstructure:"driver" yaml:"driver"` // sqlite, postgres or file
	Path      string `mapstructure:"path" yaml:"path"`
	DSN       string `mapstructure:"dsn" yaml:"dsn"`
	ExportDir string `mapstructure:"export_dir" yaml:"export_dir"`
	// Keep is how many snapshots of each kind a guild keeps; negative keeps all.
	Keep int `mapstructure:"keep" yaml:"keep"`
}

// MetricsConfig holds the prometheus listener address.
type MetricsConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}

// GRPCConfig holds the report service settings.
type GRPCConfig struct {
	Addr    string        `mapstructure:"addr" yaml:"addr"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// CommandsConfig represents the configuration for commands.
type CommandsConfig struct {
	Auth AuthConfig `mapstructure:"auth" yaml:"auth"`
}

// AuthConfig lists who may run admin commands.
type AuthConfig struct {
	Developers  []string `mapstructure:"developers" yaml:"developers"`
	AdminsRoles []string `mapstructure:"admin_roles" yaml:"admin_roles"`
}
