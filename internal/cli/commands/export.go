package commands

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/leapstack-labs/horizon/internal/cli/output"
	"github.com/leapstack-labs/horizon/internal/loader"
	"github.com/leapstack-labs/horizon/internal/session"
	"github.com/leapstack-labs/horizon/internal/tablestate"
	"github.com/spf13/cobra"
)

// ExportOptions holds options for the export command.
type ExportOptions struct {
	Query  string
	Format string
	Page   bool
}

// NewExportCommand creates the export command.
func NewExportCommand() *cobra.Command {
	opts := &ExportOptions{}

	cmd := &cobra.Command{
		Use:   "export [source]",
		Short: "Print the rows a view selects",
		Long: `Load a telemetry CSV and print the rows that survive search, tag
filters and sort, without starting a server.

The --query flag takes the query string of a viewer URL, so a shared link
can be replayed on the command line. Without a source argument the query's
csv parameter, the configured default source or the runs index decide.

Output defaults to a table on a terminal and CSV otherwise.`,
		Example: `  # Export the latest run as CSV
  horizon export runs/latest/telemetry.csv > latest.csv

  # Replay a shared view
  horizon export --query 'q=timeout&tags=nightly&sort=2:desc'

  # Print only the page the link points at
  horizon export --query 'pg=3&ps=25' --page --format markdown`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source := ""
			if len(args) == 1 {
				source = args[0]
			}
			return runExport(cmd, source, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Query, "query", "q", "", "View query string (the part after ? in a viewer URL)")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format (csv|table|markdown|json)")
	cmd.Flags().BoolVar(&opts.Page, "page", false, "Export only the current page instead of every matching row")

	_ = cmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return Formats, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runExport(cmd *cobra.Command, source string, opts *ExportOptions) error {
	cc := NewCommandContext(cmd)
	r := cc.Renderer

	q, err := parseViewQuery(opts.Query)
	if err != nil {
		return err
	}
	if source != "" {
		q.Set(tablestate.ParamSource, source)
	}

	manager := session.NewManager(cc.SessionConfig())
	defer manager.Close()

	sess, err := manager.Open(cmd.Context(), "", q)
	if err != nil {
		return err
	}
	if sess.State().Source == "" {
		return errors.New("no source given and the data directory has no runs index")
	}
	if err := sess.Reload(cmd.Context()); err != nil {
		return fmt.Errorf("failed to load %s: %s", sess.State().Source, loader.Describe(err))
	}
	if !opts.Page {
		sess.Dispatch(tablestate.SetPaging{Enabled: false})
	}

	v := sess.Snapshot()
	for _, w := range v.State.Warnings {
		r.Warning(w)
	}
	cc.Logger.Debug("export", "source", v.State.Source, "rows", len(v.Result.Visible), "total", len(v.State.Grid.Rows))

	format := opts.Format
	if format == "" {
		format = defaultFormat(r)
	}

	if format == FormatCSV {
		return sess.Export(r.Writer())
	}

	cols := make([]string, len(v.Columns))
	for i, c := range v.Columns {
		cols[i] = v.State.Grid.Header[c]
	}
	rows := make([][]string, len(v.Result.Visible))
	for i, row := range v.Result.Visible {
		cells := make([]string, len(v.Columns))
		for j, c := range v.Columns {
			cells[j] = row.Cell(c)
		}
		rows[i] = cells
	}
	return renderRows(r.Writer(), format, cols, rows)
}

// defaultFormat picks json for --output json, a table on a terminal and
// CSV for pipes.
func defaultFormat(r *output.Renderer) string {
	switch {
	case r.EffectiveMode() == output.ModeJSON:
		return FormatJSON
	case r.IsTTY():
		return FormatTable
	default:
		return FormatCSV
	}
}

// parseViewQuery accepts a bare query string, one with a leading '?', or a
// whole viewer URL.
func parseViewQuery(s string) (url.Values, error) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, "://") {
		u, err := url.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("invalid view URL: %w", err)
		}
		return u.Query(), nil
	}
	q, err := url.ParseQuery(strings.TrimPrefix(s, "?"))
	if err != nil {
		return nil, fmt.Errorf("invalid view query: %w", err)
	}
	return q, nil
}
