package loader

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Index files read from the data directory.
const (
	RunsFile    = "runs.json"
	LastRunFile = ".last-run.json"
)

// Run is one entry of the runs index.
type Run struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// ReadRuns reads the runs index. A missing index is not an error.
func ReadRuns(dataDir string) ([]Run, error) {
	data, err := os.ReadFile(filepath.Join(dataDir, RunsFile))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", RunsFile, err)
	}

	var runs []Run
	if err := json.Unmarshal(data, &runs); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", RunsFile, err)
	}

	out := runs[:0]
	for _, r := range runs {
		if r.Path == "" {
			continue
		}
		if r.Name == "" {
			r.Name = r.Path
		}
		out = append(out, r)
	}
	return out, nil
}

// LastRun returns the path recorded in the last-run marker, or "".
func LastRun(dataDir string) (string, error) {
	data, err := os.ReadFile(filepath.Join(dataDir, LastRunFile))
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", LastRunFile, err)
	}

	var marker struct {
		Path string `json:"path"`
	}
	if err := json.Unmarshal(data, &marker); err != nil {
		return "", fmt.Errorf("failed to parse %s: %w", LastRunFile, err)
	}
	return marker.Path, nil
}

// InitialSource picks the source a fresh session starts from: the
// last-run marker, else the configured default, else the first run.
func InitialSource(configured, lastRun string, runs []Run) string {
	if lastRun != "" {
		return lastRun
	}
	if configured != "" {
		return configured
	}
	if len(runs) > 0 {
		return runs[0].Path
	}
	return ""
}

// FindRun matches a run by name or path.
func FindRun(runs []Run, key string) (Run, bool) {
	for _, r := range runs {
		if r.Name == key || r.Path == key {
			return r, true
		}
	}
	return Run{}, false
}
