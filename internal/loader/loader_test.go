package loader

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leapstack-labs/horizon/internal/testutil"
	"github.com/leapstack-labs/horizon/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoader_LoadHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok.csv":
			assert.Equal(t, "no-store", r.Header.Get("Cache-Control"))
			w.Header().Set("Content-Type", "text/csv")
			fmt.Fprint(w, "a,b\n1,2\n")
		case "/index.html":
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			fmt.Fprint(w, "<!doctype html><html></html>")
		case "/plain-html":
			w.Header().Set("Content-Type", "text/plain")
			fmt.Fprint(w, "<html>not checked</html>")
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	l := New(Config{Logger: testutil.NewTestLogger(t)})
	ctx := context.Background()

	tests := []struct {
		name    string
		path    string
		rows    int
		wantErr func(t *testing.T, err error)
	}{
		{name: "csv", path: "/ok.csv", rows: 1},
		{name: "text/plain is trusted", path: "/plain-html", rows: 0},
		{
			name: "html",
			path: "/index.html",
			wantErr: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrHTML)
				assert.Contains(t, Describe(err), "Got HTML instead of CSV")
			},
		},
		{
			name: "not found",
			path: "/missing.csv",
			wantErr: func(t *testing.T, err error) {
				var httpErr *HTTPError
				require.ErrorAs(t, err, &httpErr)
				assert.Equal(t, http.StatusNotFound, httpErr.Status)
				assert.Equal(t, "HTTP 404", Describe(err))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			grid, err := l.Load(ctx, srv.URL+tt.path)
			if tt.wantErr != nil {
				require.Error(t, err)
				tt.wantErr(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, grid.Rows, tt.rows)
		})
	}
}

func TestLoader_LoadTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(Config{}).Load(context.Background(), url+"/x.csv")
	require.Error(t, err)
	assert.NotEmpty(t, Describe(err))
}

func TestLoader_LoadLocal(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "runs", "latest"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "runs", "latest", "telemetry.csv"), []byte("RunID,UTC\nr1,2024-01-01T00:00:00Z\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "page.html"), []byte("<html></html>"), 0o644))

	l := New(Config{DataDir: dir})
	ctx := context.Background()

	grid, err := l.Load(ctx, "/runs/latest/telemetry.csv")
	require.NoError(t, err)
	assert.Equal(t, []string{"RunID", "UTC"}, []string(grid.Header))
	assert.Len(t, grid.Rows, 1)

	_, err = l.Load(ctx, "page.html")
	assert.ErrorIs(t, err, ErrHTML)

	_, err = l.Load(ctx, "../../etc/passwd")
	assert.ErrorIs(t, err, ErrOutsideDataDir)

	_, err = l.Load(ctx, "nope.csv")
	assert.Equal(t, "HTTP 404", Describe(err))

	_, err = l.Load(ctx, "  ")
	assert.ErrorIs(t, err, ErrNoSource)
}

func TestParseUpload(t *testing.T) {
	grid, err := ParseUpload("ok.csv", strings.NewReader("\xef\xbb\xbfa,b\n1,2\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, []string(grid.Header))

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"binary", "a,b\n\x00\x01", `Failed to parse CSV "bad.csv": file is not UTF-8 text`},
		{"invalid utf8", "a,\xff\n", `Failed to parse CSV "bad.csv": file is not UTF-8 text`},
		{"html", "<!DOCTYPE html>", `Failed to parse CSV "bad.csv": Got HTML instead of CSV`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseUpload("bad.csv", strings.NewReader(tt.content))
			var upload *UploadError
			require.ErrorAs(t, err, &upload)
			assert.Equal(t, "bad.csv", upload.File)
			assert.True(t, strings.HasPrefix(Describe(err), tt.want), Describe(err))
		})
	}
}

func TestGuard(t *testing.T) {
	var g Guard
	first := g.Next()
	assert.True(t, g.Current(first))

	second := g.Next()
	assert.False(t, g.Current(first))
	assert.True(t, g.Current(second))
}

func TestInspect(t *testing.T) {
	records := [][]string{{"timestamp", "Tags"}, {"1", "a"}, {"2"}}
	grid := core.NewGrid(records)

	warnings := Inspect(grid, []string{"UTC", "Tags", "RunID"})
	assert.Equal(t, []string{
		`Missing "RunID" (synthesizing empty column)`,
		"Row 2 has 1 columns, expected 2",
	}, warnings)

	assert.Nil(t, Inspect(core.NewGrid(nil), []string{"RunID"}))
}

func TestRunsIndex(t *testing.T) {
	dir := t.TempDir()

	runs, err := ReadRuns(dir)
	require.NoError(t, err)
	assert.Empty(t, runs)

	last, err := LastRun(dir)
	require.NoError(t, err)
	assert.Empty(t, last)

	require.NoError(t, os.WriteFile(filepath.Join(dir, RunsFile),
		[]byte(`[{"name":"latest","path":"runs/latest/telemetry.csv"},{"path":"runs/old.csv"},{"name":"empty"}]`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, LastRunFile), []byte(`{"path":"runs/old.csv"}`), 0o644))

	runs, err = ReadRuns(dir)
	require.NoError(t, err)
	assert.Equal(t, []Run{
		{Name: "latest", Path: "runs/latest/telemetry.csv"},
		{Name: "runs/old.csv", Path: "runs/old.csv"},
	}, runs)

	last, err = LastRun(dir)
	require.NoError(t, err)
	assert.Equal(t, "runs/old.csv", last)

	assert.Equal(t, "runs/old.csv", InitialSource("cfg.csv", last, runs))
	assert.Equal(t, "cfg.csv", InitialSource("cfg.csv", "", runs))
	assert.Equal(t, "runs/latest/telemetry.csv", InitialSource("", "", runs))
	assert.Equal(t, "", InitialSource("", "", nil))

	r, ok := FindRun(runs, "latest")
	assert.True(t, ok)
	assert.Equal(t, "runs/latest/telemetry.csv", r.Path)

	require.NoError(t, os.WriteFile(filepath.Join(dir, RunsFile), []byte(`{`), 0o644))
	_, err = ReadRuns(dir)
	assert.Error(t, err)
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "", Describe(nil))
	assert.Equal(t, "boom", Describe(errors.New("boom")))
	assert.Equal(t, "No data source selected", Describe(ErrNoSource))
	assert.Equal(t, "Path escapes the data directory", Describe(fmt.Errorf("wrap: %w", ErrOutsideDataDir)))
}
