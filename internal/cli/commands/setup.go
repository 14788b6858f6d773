package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/leapstack-labs/horizon/internal/cli/config"
	"github.com/leapstack-labs/horizon/internal/cli/output"
	"github.com/leapstack-labs/horizon/internal/loader"
	"github.com/leapstack-labs/horizon/internal/session"
	"github.com/leapstack-labs/horizon/internal/state"
	"github.com/leapstack-labs/horizon/internal/theme"
	"github.com/leapstack-labs/horizon/pkg/core"
	"github.com/leapstack-labs/horizon/pkg/pipeline"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext collects the config, logger and renderer of cmd.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := config.GetConfig(cmd.Context())
	return &CommandContext{
		Cfg:      cfg,
		Logger:   config.GetLogger(cmd.Context()),
		Renderer: output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.OutputFormat)),
	}
}

// SessionConfig maps the view settings onto a session configuration.
// Store is left for the caller.
func (c *CommandContext) SessionConfig() session.Config {
	cfg := c.Cfg
	return session.Config{
		Loader: loader.New(loader.Config{
			DataDir: cfg.DataDir,
			Timeout: cfg.Fetch.Timeout,
			Logger:  c.Logger,
		}),
		Logger:          c.Logger,
		DefaultSource:   cfg.View.DefaultSource,
		Policy:          pipeline.ParseSortPolicy(cfg.View.ImplicitSort),
		TagsColumn:      cfg.View.TagsColumn,
		TimestampColumn: cfg.View.TimestampColumn,
		RequiredColumns: cfg.View.RequiredColumns,
		PopularLimit:    cfg.View.PopularTagsLimit,
		PageSize:        cfg.View.PageSize,
		RefreshInterval: cfg.View.RefreshInterval,
		Theme:           core.ParseTheme(cfg.View.Theme),
		IdleTTL:         cfg.UI.IdleTimeout,
	}
}

// OpenStore opens the view-state database, creating its directory.
func (c *CommandContext) OpenStore() (*state.SQLiteStore, error) {
	stateDir := filepath.Dir(c.Cfg.StatePath)
	if stateDir != "." && stateDir != "" {
		if err := os.MkdirAll(stateDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create state directory: %w", err)
		}
	}
	store, err := state.OpenAndMigrate(c.Cfg.StatePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open state database: %w", err)
	}
	return store, nil
}

// ThemeVars loads the configured brand manifest. Without one the built-in
// palette applies.
func (c *CommandContext) ThemeVars() ([]theme.Var, error) {
	if c.Cfg.Theme.Manifest == "" {
		return nil, nil
	}
	m, err := theme.LoadFile(c.Cfg.Theme.Manifest)
	if err != nil {
		return nil, fmt.Errorf("failed to load theme manifest: %w", err)
	}
	return theme.Vars(m.Adapt()), nil
}
