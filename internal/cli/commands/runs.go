package commands

import (
	"errors"
	"io/fs"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/leapstack-labs/horizon/internal/cli/output"
	"github.com/leapstack-labs/horizon/internal/loader"
	"github.com/spf13/cobra"
)

// NewRunsCommand creates the runs command.
func NewRunsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "runs",
		Short: "List the runs index of the data directory",
		Long: `List the entries of runs.json in the data directory.

The run a new viewer session opens first is marked. It comes from
.last-run.json, then view.default_source, then the first entry.`,
		Example: `  # List runs
  horizon runs

  # As JSON for scripts
  horizon runs --output json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRuns(cmd)
		},
	}
}

type runInfo struct {
	Name    string `json:"name"`
	Path    string `json:"path"`
	Initial bool   `json:"initial"`
	Missing bool   `json:"missing"`
}

type runsOutput struct {
	DataDir string    `json:"data_dir"`
	Initial string    `json:"initial,omitempty"`
	Runs    []runInfo `json:"runs"`
}

func runRuns(cmd *cobra.Command) error {
	cc := NewCommandContext(cmd)
	r := cc.Renderer

	out, err := collectRuns(cc)
	if err != nil {
		return err
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(out)
	case output.ModeMarkdown:
		return runsMarkdown(r, out)
	default:
		return runsText(r, out)
	}
}

func collectRuns(cc *CommandContext) (runsOutput, error) {
	dataDir := cc.Cfg.DataDir
	runs, err := loader.ReadRuns(dataDir)
	if err != nil {
		return runsOutput{}, err
	}
	last, err := loader.LastRun(dataDir)
	if err != nil {
		cc.Logger.Warn("failed to read last run", "error", err)
	}

	l := loader.New(loader.Config{DataDir: dataDir, Logger: cc.Logger})
	out := runsOutput{
		DataDir: dataDir,
		Initial: loader.InitialSource(cc.Cfg.View.DefaultSource, last, runs),
		Runs:    make([]runInfo, 0, len(runs)),
	}
	for _, run := range runs {
		info := runInfo{Name: run.Name, Path: run.Path, Initial: run.Path == out.Initial}
		if !loader.IsRemote(run.Path) {
			path, err := l.LocalPath(run.Path)
			if err != nil {
				info.Missing = true
			} else if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
				info.Missing = true
			}
		}
		out.Runs = append(out.Runs, info)
	}
	return out, nil
}

func runsText(r *output.Renderer, out runsOutput) error {
	styles := r.Styles()
	if len(out.Runs) == 0 {
		r.Println(styles.Muted.Render("No runs in " + out.DataDir))
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(r.Writer())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"", "Name", "Path", "Status"})
	for _, run := range out.Runs {
		marker := ""
		if run.Initial {
			marker = styles.Success.Render("*")
		}
		status := styles.Success.Render("ok")
		if run.Missing {
			status = styles.Warning.Render("missing")
		}
		t.AppendRow(table.Row{marker, styles.Bold.Render(run.Name), run.Path, status})
	}
	t.Render()
	r.Println(styles.Muted.Render("* opens first in new sessions"))
	return nil
}

func runsMarkdown(r *output.Renderer, out runsOutput) error {
	r.Println(output.FormatHeader(1, "Runs"))
	r.Println("")
	r.Println(output.FormatKeyValue("Data directory", out.DataDir))
	if out.Initial != "" {
		r.Println(output.FormatKeyValue("Opens first", out.Initial))
	}
	r.Println("")
	if len(out.Runs) == 0 {
		r.Println("No runs.")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(r.Writer())
	t.AppendHeader(table.Row{"Name", "Path", "Status"})
	for _, run := range out.Runs {
		status := "ok"
		if run.Missing {
			status = "missing"
		}
		t.AppendRow(table.Row{run.Name, run.Path, status})
	}
	t.RenderMarkdown()
	return nil
}
