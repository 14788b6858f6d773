package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/horizon/internal/cli/output"
	clitest "github.com/leapstack-labs/horizon/internal/cli/testutil"
	"github.com/leapstack-labs/horizon/internal/testutil"
)

func TestCommandMetadata(t *testing.T) {
	tests := []struct {
		cmd   *cobra.Command
		use   string
		flags []string
	}{
		{cmd: NewVersionCommand("test"), use: "version"},
		{cmd: NewServeCommand(), use: "serve", flags: []string{"port", "no-browser", "watch"}},
		{cmd: NewViewCommand(), use: "view [source]", flags: []string{"query", "link-base"}},
		{cmd: NewExportCommand(), use: "export [source]", flags: []string{"query", "format", "page"}},
		{cmd: NewRunsCommand(), use: "runs"},
		{cmd: NewTokensCommand(), use: "tokens <manifest>", flags: []string{"format"}},
	}

	for _, tt := range tests {
		t.Run(tt.use, func(t *testing.T) {
			assert.Equal(t, tt.use, tt.cmd.Use)
			assert.NotEmpty(t, tt.cmd.Short)
			assert.NotEmpty(t, tt.cmd.Long)
			for _, f := range tt.flags {
				assert.NotNil(t, tt.cmd.Flags().Lookup(f), "missing flag --%s", f)
			}
		})
	}
}

func TestExport(t *testing.T) {
	dataDir := testutil.NewDataDir(t)

	tests := []struct {
		name  string
		args  []string
		check func(t *testing.T, out string)
	}{
		{
			name: "csv keeps the full header",
			args: []string{"runs/latest/telemetry.csv", "-q", "q=nightly&sort=0:desc&hide=2", "-f", "csv"},
			check: func(t *testing.T, out string) {
				lines := strings.Split(out, "\n")
				require.Len(t, lines, 3)
				assert.Equal(t, "RunID,UTC,Tags,CWD,GitBranch,GitCommit,Python", lines[0])
				assert.True(t, strings.HasPrefix(lines[1], "r3,"), lines[1])
				assert.True(t, strings.HasPrefix(lines[2], "r1,"), lines[2])
			},
		},
		{
			name: "csv is the default off a terminal",
			args: []string{"runs/latest/telemetry.csv"},
			check: func(t *testing.T, out string) {
				assert.Len(t, strings.Split(out, "\n"), 6)
			},
		},
		{
			name: "json uses visible columns",
			args: []string{"-q", "?q=r2&hide=0|1", "-f", "json"},
			check: func(t *testing.T, out string) {
				var rows []map[string]string
				require.NoError(t, json.Unmarshal([]byte(out), &rows))
				require.Len(t, rows, 1)
				assert.Equal(t, "ci", rows[0]["Tags"])
				assert.NotContains(t, rows[0], "RunID")
				assert.NotContains(t, rows[0], "UTC")
			},
		},
		{
			name: "shared link",
			args: []string{"-q", "http://localhost:8765/?csv=runs%2Flatest%2Ftelemetry.csv&q=foo", "-f", "table"},
			check: func(t *testing.T, out string) {
				assert.Contains(t, out, "r3")
				assert.Contains(t, out, "r4")
				assert.Contains(t, out, "(2 rows)")
			},
		},
		{
			name: "page only",
			args: []string{"-q", "ps=2&pg=2", "--page", "-f", "json"},
			check: func(t *testing.T, out string) {
				var rows []map[string]string
				require.NoError(t, json.Unmarshal([]byte(out), &rows))
				require.Len(t, rows, 2)
				assert.Equal(t, "r3", rows[0]["RunID"])
				assert.Equal(t, "r4", rows[1]["RunID"])
			},
		},
		{
			name: "markdown",
			args: []string{"-q", "q=nightly", "-f", "markdown"},
			check: func(t *testing.T, out string) {
				assert.Contains(t, out, "| RunID |")
				clitest.AssertValidMarkdown(t, out)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := clitest.NewConfig(t, dataDir)
			res := clitest.Execute(t, NewExportCommand(), cfg, tt.args...)
			require.NoError(t, res.Err, res.ErrOut)
			tt.check(t, res.Out)
		})
	}
}

func TestExport_Errors(t *testing.T) {
	tests := []struct {
		name    string
		dataDir func(t testing.TB) string
		args    []string
		wantErr string
	}{
		{
			name:    "missing file",
			dataDir: testutil.NewDataDir,
			args:    []string{"runs/nope.csv"},
			wantErr: "failed to load runs/nope.csv",
		},
		{
			name:    "no source",
			dataDir: func(t testing.TB) string { return t.TempDir() },
			wantErr: "no source given",
		},
		{
			name:    "unknown format",
			dataDir: testutil.NewDataDir,
			args:    []string{"-f", "xml"},
			wantErr: `unknown format "xml"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := clitest.NewConfig(t, tt.dataDir(t))
			res := clitest.Execute(t, NewExportCommand(), cfg, tt.args...)
			require.Error(t, res.Err)
			assert.Contains(t, res.Err.Error(), tt.wantErr)
		})
	}
}

func TestRuns(t *testing.T) {
	dataDir := testutil.NewDataDir(t)
	testutil.WriteFile(t, dataDir, "runs.json", `[
		{"name":"latest","path":"runs/latest/telemetry.csv"},
		{"name":"gone","path":"runs/gone.csv"},
		{"name":"remote","path":"https://example.com/run.csv"}
	]`)

	t.Run("json", func(t *testing.T) {
		cfg := clitest.NewConfig(t, dataDir)
		cfg.OutputFormat = "json"
		res := clitest.Execute(t, NewRunsCommand(), cfg)
		require.NoError(t, res.Err)

		var out runsOutput
		require.NoError(t, json.Unmarshal([]byte(res.Out), &out))
		assert.Equal(t, "runs/latest/telemetry.csv", out.Initial)
		assert.Equal(t, []runInfo{
			{Name: "latest", Path: "runs/latest/telemetry.csv", Initial: true},
			{Name: "gone", Path: "runs/gone.csv", Missing: true},
			{Name: "remote", Path: "https://example.com/run.csv"},
		}, out.Runs)
	})

	t.Run("markdown", func(t *testing.T) {
		cfg := clitest.NewConfig(t, dataDir)
		cfg.OutputFormat = "markdown"
		res := clitest.Execute(t, NewRunsCommand(), cfg)
		require.NoError(t, res.Err)

		assert.Contains(t, res.Out, "# Runs")
		assert.Contains(t, res.Out, "- **Opens first:** runs/latest/telemetry.csv")
		assert.Contains(t, res.Out, "missing")
		clitest.AssertNoANSI(t, res.Out)
		clitest.AssertValidMarkdown(t, res.Out)
	})

	t.Run("text", func(t *testing.T) {
		cfg := clitest.NewConfig(t, dataDir)
		cfg.OutputFormat = "text"
		res := clitest.Execute(t, NewRunsCommand(), cfg)
		require.NoError(t, res.Err)

		assert.Contains(t, res.Out, "latest")
		assert.Contains(t, res.Out, "opens first in new sessions")
	})

	t.Run("no index", func(t *testing.T) {
		cfg := clitest.NewConfig(t, t.TempDir())
		cfg.OutputFormat = "text"
		res := clitest.Execute(t, NewRunsCommand(), cfg)
		require.NoError(t, res.Err)
		assert.Contains(t, res.Out, "No runs in")
	})
}

func TestRunsRendering(t *testing.T) {
	out := runsOutput{
		DataDir: "data",
		Initial: "a.csv",
		Runs: []runInfo{
			{Name: "a", Path: "a.csv", Initial: true},
			{Name: "b", Path: "b.csv", Missing: true},
		},
	}

	t.Run("text off a terminal", func(t *testing.T) {
		tr := clitest.NewTestRenderer(output.ModeText, false)
		require.NoError(t, runsText(tr.Renderer, out))
		clitest.AssertNoANSI(t, tr.Output())
		assert.Contains(t, tr.Output(), "missing")
		assert.Contains(t, tr.Output(), "*")
	})

	t.Run("markdown", func(t *testing.T) {
		tr := clitest.NewTestRenderer(output.ModeMarkdown, false)
		require.NoError(t, runsMarkdown(tr.Renderer, out))
		assert.Contains(t, tr.Output(), "| a | a.csv | ok |")
		assert.Contains(t, tr.Output(), "| b | b.csv | missing |")
		clitest.AssertValidMarkdown(t, tr.Output())
	})

	t.Run("empty", func(t *testing.T) {
		tr := clitest.NewTestRenderer(output.ModeMarkdown, false)
		require.NoError(t, runsMarkdown(tr.Renderer, runsOutput{DataDir: "data"}))
		assert.Contains(t, tr.Output(), "No runs.")
	})
}

func TestTokens(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "brand.json")
	require.NoError(t, os.WriteFile(manifest, []byte(`{
		"brand": {"cyan": {"rgb": [0, 200, 255]}},
		"motion": {"signal_hue_deg": 190}
	}`), 0o644))
	empty := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(empty, []byte(`{}`), 0o644))

	tests := []struct {
		name       string
		args       []string
		output     string
		wantOut    []string
		wantErrOut string
	}{
		{
			name:    "css",
			args:    []string{manifest},
			wantOut: []string{":root {", "  --tint-cyan: 0, 200, 255;", "  --signal-hue: 190;", "}"},
		},
		{
			name:    "yaml",
			args:    []string{manifest, "-f", "yaml"},
			wantOut: []string{"tokens:", "brand.cyan.rgb:", "vars:", "--signal-hue"},
		},
		{
			name:    "json from output mode",
			args:    []string{manifest},
			output:  "json",
			wantOut: []string{`"--tint-cyan"`, `"motion.signal.hue": "190"`},
		},
		{
			name:       "empty manifest warns",
			args:       []string{empty},
			wantErrOut: "manifest yields no variables",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := clitest.NewConfig(t, dir)
			if tt.output != "" {
				cfg.OutputFormat = tt.output
			}
			res := clitest.Execute(t, NewTokensCommand(), cfg, tt.args...)
			require.NoError(t, res.Err)
			for _, w := range tt.wantOut {
				assert.Contains(t, res.Out, w)
			}
			if tt.wantErrOut != "" {
				assert.Contains(t, res.ErrOut, tt.wantErrOut)
			}
		})
	}

	t.Run("unknown format", func(t *testing.T) {
		res := clitest.Execute(t, NewTokensCommand(), clitest.NewConfig(t, dir), manifest, "-f", "toml")
		assert.Error(t, res.Err)
	})
}

func TestParseViewQuery(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    map[string]string
		wantErr bool
	}{
		{name: "empty", in: "", want: map[string]string{}},
		{name: "bare", in: "q=foo&ps=10", want: map[string]string{"q": "foo", "ps": "10"}},
		{name: "leading mark", in: " ?tags=ci%3Bnightly ", want: map[string]string{"tags": "ci;nightly"}},
		{name: "url", in: "http://host:8765/?csv=a.csv&sort=1:desc", want: map[string]string{"csv": "a.csv", "sort": "1:desc"}},
		{name: "bad escape", in: "q=%zz", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := parseViewQuery(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			got := map[string]string{}
			for k := range q {
				got[k] = q.Get(k)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRenderRows(t *testing.T) {
	cols := []string{"a", "b"}
	rows := [][]string{{"1", "x,y"}, {"2"}}

	tests := []struct {
		format string
		want   []string
	}{
		{format: FormatCSV, want: []string{"a,b\n1,\"x,y\"\n2"}},
		{format: FormatTable, want: []string{"x,y", "(2 rows)"}},
		{format: FormatMarkdown, want: []string{"| a | b |", "| 1 | x,y |"}},
		{format: FormatJSON, want: []string{`"b": ""`, `"b": "x,y"`}},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, renderRows(&buf, tt.format, cols, rows))
			for _, w := range tt.want {
				assert.Contains(t, buf.String(), w)
			}
		})
	}

	t.Run("empty", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, renderRows(&buf, FormatTable, cols, nil))
		assert.Equal(t, "(0 rows)\n", buf.String())
	})

	t.Run("unknown", func(t *testing.T) {
		assert.Error(t, renderRows(&bytes.Buffer{}, "xml", cols, nil))
	})
}
