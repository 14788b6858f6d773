package ui

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/cookiejar"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/horizon/internal/loader"
	"github.com/leapstack-labs/horizon/internal/session"
	"github.com/leapstack-labs/horizon/internal/testutil"
)

func startServer(t *testing.T, watch bool) (string, *session.Manager, string) {
	t.Helper()

	logger := testutil.NewTestLogger(t)
	dataDir := testutil.NewDataDir(t)
	manager := session.NewManager(session.Config{
		Loader: loader.New(loader.Config{DataDir: dataDir, Logger: logger}),
		Logger: logger,
	})

	srv := NewServer(Config{
		Manager:       manager,
		Watch:         watch,
		SessionSecret: "test-secret",
		Logger:        logger,
		DataDir:       dataDir,
	})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.ServeListener(ctx, ln) }()

	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("server did not shut down")
		}
	})

	return "http://" + ln.Addr().String(), manager, dataDir
}

func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar, Timeout: 5 * time.Second}
}

func get(t *testing.T, c *http.Client, url string) (int, string) {
	t.Helper()
	resp, err := c.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestServer_Routes(t *testing.T) {
	base, manager, _ := startServer(t, false)
	client := newClient(t)

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantBody   string
	}{
		{name: "health", path: "/healthz", wantStatus: http.StatusOK, wantBody: "OK"},
		{name: "viewer page", path: "/", wantStatus: http.StatusOK, wantBody: `id="viewer"`},
		{name: "stylesheet", path: "/static/app.css", wantStatus: http.StatusOK, wantBody: ".viewer"},
		{name: "missing asset", path: "/static/nope.js", wantStatus: http.StatusNotFound},
		{name: "dev reload is off", path: "/hotreload", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := get(t, client, base+tt.path)
			assert.Equal(t, tt.wantStatus, status)
			if tt.wantBody != "" {
				assert.Contains(t, body, tt.wantBody)
			}
		})
	}

	assert.Equal(t, 1, manager.Len(), "the cookie jar should keep one session")
}

func TestServer_WatchReloadsChangedSource(t *testing.T) {
	base, manager, dataDir := startServer(t, true)
	client := newClient(t)

	status, _ := get(t, client, base+"/")
	require.Equal(t, http.StatusOK, status)

	var sess *session.Session
	require.Eventually(t, func() bool {
		manager.Each(func(s *session.Session) { sess = s })
		return sess != nil && len(sess.State().Grid.Rows) == 5
	}, 2*time.Second, 10*time.Millisecond)

	// Give the watcher a moment to register the directories.
	time.Sleep(100 * time.Millisecond)
	testutil.WriteFile(t, dataDir, "runs/latest/telemetry.csv", "RunID,UTC\nz1,2024-01-01T00:00:00Z\n")

	assert.Eventually(t, func() bool {
		return len(sess.State().Grid.Rows) == 1
	}, 3*time.Second, 20*time.Millisecond)
}

func TestWatchedFile(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{name: "data/run.csv", want: true},
		{name: "data/runs.json", want: true},
		{name: "data/.last-run.json", want: true},
		{name: "data/other.json", want: false},
		{name: "data/notes.txt", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, watchedFile(tt.name))
		})
	}
}
