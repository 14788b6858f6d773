package loader

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/leapstack-labs/horizon/pkg/core"
	"github.com/leapstack-labs/horizon/pkg/csvgrid"
)

// MaxSourceBytes caps how much of a source is read.
const MaxSourceBytes = 64 << 20

// DefaultTimeout bounds a single HTTP fetch.
const DefaultTimeout = 30 * time.Second

var csvContentType = regexp.MustCompile(`(?i)text/csv|text/plain|application/octet-stream`)

// Config configures a Loader.
type Config struct {
	// DataDir roots every non-URL source.
	DataDir string
	// Timeout bounds HTTP fetches. Zero means DefaultTimeout.
	Timeout time.Duration
	// Client overrides the HTTP client.
	Client *http.Client
	Logger *slog.Logger
}

// Loader fetches CSV sources.
type Loader struct {
	dataDir string
	client  *http.Client
	logger  *slog.Logger
}

// New creates a Loader.
func New(cfg Config) *Loader {
	client := cfg.Client
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Loader{dataDir: cfg.DataDir, client: client, logger: logger}
}

// DataDir returns the directory local sources resolve against.
func (l *Loader) DataDir() string {
	return l.dataDir
}

// IsRemote reports whether source is an http(s) URL.
func IsRemote(source string) bool {
	s := strings.ToLower(source)
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// Load reads source and parses it into a grid.
func (l *Loader) Load(ctx context.Context, source string) (*core.Grid, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, ErrNoSource
	}

	start := time.Now()
	var (
		text string
		err  error
	)
	if IsRemote(source) {
		text, err = l.fetch(ctx, source)
	} else {
		text, err = l.readLocal(source)
	}
	if err != nil {
		l.logger.Debug("load failed", "source", source, "error", err)
		return nil, err
	}

	grid := core.NewGrid(csvgrid.Parse(text))
	l.logger.Debug("loaded source",
		"source", source,
		"rows", len(grid.Rows),
		"columns", grid.Width(),
		"duration", time.Since(start),
	)
	return grid, nil
}

func (l *Loader) fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Cache-Control", "no-store")
	req.Header.Set("Accept", "text/csv, text/plain;q=0.9, */*;q=0.1")

	resp, err := l.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &HTTPError{URL: url, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxSourceBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", url, err)
	}
	text := string(body)

	ctype := resp.Header.Get("Content-Type")
	if ctype != "" && !csvContentType.MatchString(ctype) && csvgrid.IsProbablyHTML(text) {
		return "", ErrHTML
	}
	return text, nil
}

// LocalPath resolves a non-URL source inside the data directory.
func (l *Loader) LocalPath(source string) (string, error) {
	rel := filepath.FromSlash(strings.TrimLeft(source, "/"))
	rel = filepath.Clean(rel)
	if !filepath.IsLocal(rel) {
		return "", ErrOutsideDataDir
	}
	return filepath.Join(l.dataDir, rel), nil
}

func (l *Loader) readLocal(source string) (string, error) {
	path, err := l.LocalPath(source)
	if err != nil {
		return "", err
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", source, err)
	}
	defer f.Close()

	body, err := io.ReadAll(io.LimitReader(f, MaxSourceBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", source, err)
	}
	text := string(body)
	if csvgrid.IsProbablyHTML(text) {
		return "", ErrHTML
	}
	return text, nil
}
