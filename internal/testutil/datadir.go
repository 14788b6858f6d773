package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// TelemetryCSV is a small run export with the canonical columns.
const TelemetryCSV = `RunID,UTC,Tags,CWD,GitBranch,GitCommit,Python
r1,2024-05-01T03:10:00Z,"ci,nightly",/src/a,main,abc123,3.12
r2,2024-05-01T04:20:00Z,ci,/src/a,main,abc124,3.12
r3,2024-05-02T03:45:00Z,"foo;nightly",/src/b,feature/foo,def456,3.11
r4,2024-05-02T17:00:00Z,foo,/src/b,feature/foo,def457,3.11
r5,not-a-date,,/src/c,main,aaa111,3.10
`

// WriteFile writes content to name under dir, creating parent directories.
func WriteFile(t testing.TB, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

// NewDataDir returns a temp data directory holding TelemetryCSV at
// runs/latest/telemetry.csv plus a runs.json index pointing at it.
func NewDataDir(t testing.TB) string {
	t.Helper()
	dir := t.TempDir()
	WriteFile(t, dir, "runs/latest/telemetry.csv", TelemetryCSV)
	WriteFile(t, dir, "runs.json", `[{"name":"latest","path":"runs/latest/telemetry.csv"}]`)
	return dir
}
