// Package config provides configuration management for the horizon CLI.
package config

import "time"

// Config holds all CLI configuration options.
type Config struct {
	DataDir      string      `koanf:"data_dir"`
	StatePath    string      `koanf:"state_path"`
	Verbose      bool        `koanf:"verbose"`
	OutputFormat string      `koanf:"output"`
	UI           UIConfig    `koanf:"ui"`
	View         ViewConfig  `koanf:"view"`
	Theme        ThemeConfig `koanf:"theme"`
	Fetch        FetchConfig `koanf:"fetch"`
}

// UIConfig holds configuration for the web viewer.
type UIConfig struct {
	Port          int    `koanf:"port"`
	AutoOpen      bool   `koanf:"auto_open"`
	Watch         bool   `koanf:"watch"`
	SessionSecret string `koanf:"session_secret"`
	// IdleTimeout closes sessions without a connected page for this long.
	// Zero keeps them until shutdown.
	IdleTimeout time.Duration `koanf:"idle_timeout"`
}

// ViewConfig holds the defaults every viewer session starts from.
type ViewConfig struct {
	DefaultSource   string        `koanf:"default_source"`
	PageSize        int           `koanf:"page_size"`
	RefreshInterval time.Duration `koanf:"refresh_interval"`
	ImplicitSort    bool          `koanf:"implicit_sort"`
	Theme           string        `koanf:"theme"`
	TagsColumn      string        `koanf:"tags_column"`
	TimestampColumn string        `koanf:"timestamp_column"`
	// RequiredColumns is a list or a comma-separated string.
	RequiredColumns  []string `koanf:"required_columns"`
	PopularTagsLimit int      `koanf:"popular_tags_limit"`
}

// ThemeConfig points at a brand manifest.
type ThemeConfig struct {
	Manifest string `koanf:"manifest"`
}

// FetchConfig bounds remote source fetches.
type FetchConfig struct {
	Timeout time.Duration `koanf:"timeout"`
}

// Default configuration values.
const (
	DefaultDataDir          = "data"
	DefaultStateFile        = ".horizon/state.db"
	DefaultOutput           = "auto" // TTY=text, non-TTY=markdown
	DefaultPort             = 8765
	DefaultPageSize         = 50
	DefaultRefreshInterval  = 15 * time.Second
	DefaultTheme            = "rose"
	DefaultTagsColumn       = "Tags"
	DefaultTimestampColumn  = "UTC"
	DefaultPopularTagsLimit = 20
	DefaultFetchTimeout     = 30 * time.Second
	DefaultIdleTimeout      = 30 * time.Minute
	EnvPrefix               = "HORIZON_"
	SessionSecretEnv        = "HORIZON_SESSION_SECRET"
)
