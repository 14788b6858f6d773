package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// loggerKey is used to store logger in context.
type loggerKey struct{}

// configKey is used to store config in context.
type configKey struct{}

// configNames are searched in the working directory when no --config is given.
var configNames = []string{"horizon.yaml", "horizon.yml"}

// findConfigFile finds the config file to use.
// Priority: explicit path > horizon.yaml > horizon.yml
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range configNames {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

func defaults() map[string]any {
	return map[string]any{
		"data_dir":                DefaultDataDir,
		"state_path":              DefaultStateFile,
		"verbose":                 false,
		"output":                  DefaultOutput,
		"ui.port":                 DefaultPort,
		"ui.auto_open":            true,
		"ui.watch":                true,
		"ui.session_secret":       "",
		"ui.idle_timeout":         DefaultIdleTimeout.String(),
		"view.default_source":     "",
		"view.page_size":          DefaultPageSize,
		"view.refresh_interval":   DefaultRefreshInterval.String(),
		"view.implicit_sort":      false,
		"view.theme":              DefaultTheme,
		"view.tags_column":        DefaultTagsColumn,
		"view.timestamp_column":   DefaultTimestampColumn,
		"view.required_columns":   []string{},
		"view.popular_tags_limit": DefaultPopularTagsLimit,
		"theme.manifest":          "",
		"fetch.timeout":           DefaultFetchTimeout.String(),
	}
}

// Load loads configuration from defaults, file, environment variables and
// flags. It returns the config together with the config file used, if any.
// Precedence (highest to lowest): flags > env vars > config file > defaults
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, string, error) {
	k := koanf.New(".")

	// 1. Load defaults
	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, "", fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Find and load config file
	used := findConfigFile(cfgFile)
	if used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, "", fmt.Errorf("error reading config file %s: %w", used, err)
		}
	}

	// 3. Load environment variables (HORIZON_ prefix)
	// Transform: HORIZON_UI__PORT -> ui.port, HORIZON_DATA_DIR -> data_dir
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, "", fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Load flags (highest priority)
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			// Only load flags that were explicitly set
			if !f.Changed {
				return "", nil
			}
			key := strings.ReplaceAll(f.Name, "-", "_")

			// --state is short for state_path
			if key == "state" {
				return "state_path", posflag.FlagVal(flags, f)
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, "", fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
			Result:           &cfg,
			WeaklyTypedInput: true,
			TagName:          "koanf",
		},
	}); err != nil {
		return nil, "", fmt.Errorf("unable to decode config: %w", err)
	}

	cfg.View.RequiredColumns = trimAll(cfg.View.RequiredColumns)

	// 6. Resolve relative paths against the config file's directory.
	if used != "" {
		if abs, err := filepath.Abs(used); err == nil {
			base := filepath.Dir(abs)
			cfg.DataDir = resolvePathRelativeTo(cfg.DataDir, base, flags, "data-dir")
			cfg.StatePath = resolvePathRelativeTo(cfg.StatePath, base, flags, "state")
			cfg.Theme.Manifest = resolvePathRelativeTo(cfg.Theme.Manifest, base, nil, "")
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return &cfg, used, nil
}

// envKey maps HORIZON_VIEW__PAGE_SIZE to view.page_size. A double
// underscore separates sections.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// resolvePathRelativeTo resolves a config-file path against baseDir. Paths
// given on the command line stay relative to the working directory.
func resolvePathRelativeTo(path, baseDir string, flags *pflag.FlagSet, flag string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if flags != nil && flags.Changed(flag) {
		return path
	}
	return filepath.Join(baseDir, path)
}

func trimAll(ss []string) []string {
	out := ss[:0]
	for _, s := range ss {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// WithConfig returns a context carrying cfg.
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// GetConfig retrieves the config from the command context. Without one it
// returns the defaults.
func GetConfig(ctx context.Context) *Config {
	if c, ok := ctx.Value(configKey{}).(*Config); ok {
		return c
	}
	cfg, _, err := Load("", nil)
	if err != nil {
		return &Config{DataDir: DefaultDataDir, StatePath: DefaultStateFile, OutputFormat: DefaultOutput}
	}
	return cfg
}

// WithLogger returns a context carrying logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	// Return discard logger as safe fallback
	return slog.New(slog.DiscardHandler)
}
