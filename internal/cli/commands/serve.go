package commands

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/leapstack-labs/horizon/internal/cli/config"
	"github.com/leapstack-labs/horizon/internal/session"
	"github.com/leapstack-labs/horizon/internal/ui"
	"github.com/spf13/cobra"
)

// devSessionSecret signs cookies when no secret is configured.
const devSessionSecret = "horizon-dev-secret-change-in-production" //nolint:gosec

// ServeOptions holds options for the serve command.
type ServeOptions struct {
	Port      int
	NoBrowser bool
	Watch     bool
}

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	opts := &ServeOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web viewer",
		Long: `Start a local web server with the telemetry viewer.

The viewer provides:
- Search, tag filters, multi-column sort and paging
- Column hiding and reordering
- Shareable URLs for the current view
- Auto-refresh and live reload of local files`,
		Example: `  # Serve the data directory on the default port
  horizon serve

  # Start on a custom port without opening a browser
  horizon serve --port 3000 --no-browser

  # Serve another data directory
  horizon serve --data-dir ./telemetry`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().IntVar(&opts.Port, "port", 0, fmt.Sprintf("Port to serve on (default: %d)", config.DefaultPort))
	cmd.Flags().BoolVar(&opts.NoBrowser, "no-browser", false, "Don't auto-open browser")
	cmd.Flags().BoolVar(&opts.Watch, "watch", true, "Reload sessions when local files change")

	return cmd
}

func runServe(cmd *cobra.Command, opts *ServeOptions) error {
	cc := NewCommandContext(cmd)
	cfg := cc.Cfg

	// CLI flags override config file
	port := cfg.UI.Port
	if opts.Port != 0 {
		port = opts.Port
	}

	autoOpen := cfg.UI.AutoOpen
	if opts.NoBrowser {
		autoOpen = false
	}

	watch := cfg.UI.Watch
	if cmd.Flags().Changed("watch") {
		watch = opts.Watch
	}

	if err := cfg.ValidateDataDir(); err != nil {
		return err
	}

	vars, err := cc.ThemeVars()
	if err != nil {
		return err
	}

	store, err := cc.OpenStore()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	sessCfg := cc.SessionConfig()
	sessCfg.Store = store

	server := ui.NewServer(ui.Config{
		Manager:       session.NewManager(sessCfg),
		Port:          port,
		Watch:         watch,
		SessionSecret: sessionSecret(cfg),
		Logger:        cc.Logger,
		DataDir:       cfg.DataDir,
		ThemeVars:     vars,
	})

	// Open browser if configured
	if autoOpen {
		go openBrowser(fmt.Sprintf("http://localhost:%d", port))
	}

	r := cc.Renderer
	r.Printf("Serving %s on http://localhost:%d\n", cfg.DataDir, port)
	r.Println(r.Styles().Muted.Render("Press Ctrl+C to stop"))

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	return server.Serve(ctx)
}

// sessionSecret returns the configured cookie secret, then the environment,
// then a fixed development secret.
func sessionSecret(cfg *config.Config) string {
	if cfg.UI.SessionSecret != "" {
		return cfg.UI.SessionSecret
	}
	if secret := os.Getenv(config.SessionSecretEnv); secret != "" {
		return secret
	}
	return devSessionSecret
}

// openBrowser opens the default browser to the specified URL.
func openBrowser(url string) {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url) //nolint:noctx
	case "linux":
		cmd = exec.Command("xdg-open", url) //nolint:noctx
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url) //nolint:noctx
	default:
		return
	}

	_ = cmd.Start()
}
