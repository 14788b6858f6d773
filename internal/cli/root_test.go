package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/horizon/internal/testutil"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	root := NewRootCmd()
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	root.SetOut(out)
	root.SetErr(errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), errOut.String(), err
}

func TestRootCmd_Subcommands(t *testing.T) {
	root := NewRootCmd()

	want := []string{"version", "serve", "view", "export", "runs", "tokens", "completion"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}

	for _, flag := range []string{"config", "data-dir", "state", "verbose", "output"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(flag), "missing flag --%s", flag)
	}
}

func TestRootCmd_FlagsReachCommands(t *testing.T) {
	dataDir := testutil.NewDataDir(t)

	out, _, err := execute(t, "--data-dir", dataDir, "-o", "json", "runs")
	require.NoError(t, err)

	var got struct {
		DataDir string `json:"data_dir"`
		Initial string `json:"initial"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, dataDir, got.DataDir)
	assert.Equal(t, "runs/latest/telemetry.csv", got.Initial)
}

func TestRootCmd_VerboseLogsToStderr(t *testing.T) {
	dataDir := testutil.NewDataDir(t)

	out, errOut, err := execute(t, "--data-dir", dataDir, "-v", "export", "-f", "csv")
	require.NoError(t, err)
	assert.Contains(t, out, "RunID,UTC,Tags")
	assert.Contains(t, errOut, "level=DEBUG")
	assert.NotContains(t, out, "level=")
}

func TestRootCmd_InvalidConfig(t *testing.T) {
	_, _, err := execute(t, "--data-dir", t.TempDir(), "-o", "json", "runs", "--config", "missing.yaml")
	assert.Error(t, err)
}

func TestCompletionCommand(t *testing.T) {
	tests := []struct {
		shell string
		want  string
	}{
		{shell: "bash", want: "horizon"},
		{shell: "zsh", want: "#compdef horizon"},
		{shell: "fish", want: "complete -c horizon"},
		{shell: "powershell", want: "horizon"},
	}

	for _, tt := range tests {
		t.Run(tt.shell, func(t *testing.T) {
			out, _, err := execute(t, "completion", tt.shell)
			require.NoError(t, err)
			assert.Contains(t, out, tt.want)
		})
	}

	t.Run("unknown shell", func(t *testing.T) {
		_, _, err := execute(t, "completion", "tcsh")
		assert.Error(t, err)
	})
}

func TestVersionFlag(t *testing.T) {
	out, _, err := execute(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "horizon "+Version)
}
