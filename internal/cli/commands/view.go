package commands

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/horizon/internal/cli/output"
	"github.com/leapstack-labs/horizon/internal/session"
	"github.com/leapstack-labs/horizon/internal/tablestate"
	"github.com/leapstack-labs/horizon/internal/tui"
	"github.com/spf13/cobra"
)

// ViewOptions holds options for the view command.
type ViewOptions struct {
	Query    string
	LinkBase string
}

// NewViewCommand creates the view command.
func NewViewCommand() *cobra.Command {
	opts := &ViewOptions{}

	cmd := &cobra.Command{
		Use:   "view [source]",
		Short: "Browse a telemetry CSV in the terminal",
		Long: `Open the terminal viewer. It offers the same search, tag filters,
sort, paging and auto-refresh as the web viewer; press ? for keys.

Copied links point at the web viewer, so a view found in the terminal can
be shared with someone using a browser.`,
		Example: `  # Browse the run the data directory opens first
  horizon view

  # Open a file with a search applied
  horizon view runs/nightly.csv --query 'q=timeout'`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source := ""
			if len(args) == 1 {
				source = args[0]
			}
			return runView(cmd, source, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Query, "query", "q", "", "View query string (the part after ? in a viewer URL)")
	cmd.Flags().StringVar(&opts.LinkBase, "link-base", "", "URL prefix of copied links (default: the local web viewer)")

	return cmd
}

func runView(cmd *cobra.Command, source string, opts *ViewOptions) error {
	cc := NewCommandContext(cmd)
	if !output.IsTerminal(cmd.OutOrStdout()) {
		return errors.New("the terminal viewer needs a terminal; use 'horizon export' for pipes")
	}

	q, err := parseViewQuery(opts.Query)
	if err != nil {
		return err
	}
	if source != "" {
		q.Set(tablestate.ParamSource, source)
	}

	// Log lines would tear the alternate screen.
	cc.Logger = slog.New(slog.DiscardHandler)

	manager := session.NewManager(cc.SessionConfig())
	defer manager.Close()

	sess, err := manager.Open(cmd.Context(), "", q)
	if err != nil {
		return err
	}

	linkBase := opts.LinkBase
	if linkBase == "" {
		linkBase = fmt.Sprintf("http://localhost:%d/", cc.Cfg.UI.Port)
	}

	return tui.Run(cmd.Context(), sess, tui.Options{LinkBase: linkBase})
}
