// Package session holds the live viewer sessions.
//
// A Session owns one TableState and serializes every transition through
// its mutex. It loads sources in the background, guards against stale
// results with request tokens, runs at most one auto-refresh loop, and
// pings subscribers after each change. A Manager creates sessions, seeds
// them from a URL query or persisted state, and closes them.
package session

import (
	"log/slog"
	"time"

	"github.com/leapstack-labs/horizon/internal/loader"
	"github.com/leapstack-labs/horizon/internal/state"
	"github.com/leapstack-labs/horizon/internal/tablestate"
	"github.com/leapstack-labs/horizon/pkg/core"
	"github.com/leapstack-labs/horizon/pkg/pipeline"
)

// DefaultCopiedTTL is how long a copy-status message stays visible.
const DefaultCopiedTTL = 1200 * time.Millisecond

// Copy-status messages.
const (
	MsgCopied     = "Link copied"
	MsgCopyFailed = "Copy failed"
)

// Config configures every session a Manager creates.
type Config struct {
	Loader *loader.Loader
	// Store persists view state. Nil disables persistence.
	Store  state.Store
	Logger *slog.Logger

	DefaultSource   string
	Policy          pipeline.SortPolicy
	TagsColumn      string
	TimestampColumn string
	RequiredColumns []string
	PopularLimit    int

	PageSize        int
	RefreshInterval time.Duration
	Theme           core.Theme

	CopiedTTL time.Duration
	// IdleTTL is how long a session without subscribers survives before
	// SweepIdle closes it. Zero disables sweeping.
	IdleTTL time.Duration
}

func (c *Config) setDefaults() {
	if c.Loader == nil {
		c.Loader = loader.New(loader.Config{Logger: c.Logger})
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.DiscardHandler)
	}
	if c.TagsColumn == "" {
		c.TagsColumn = core.ColumnTags
	}
	if c.TimestampColumn == "" {
		c.TimestampColumn = core.ColumnUTC
	}
	if c.PopularLimit < 1 {
		c.PopularLimit = pipeline.DefaultPopularLimit
	}
	if c.CopiedTTL <= 0 {
		c.CopiedTTL = DefaultCopiedTTL
	}
}

// Defaults returns the initial state configured for new sessions.
func (c *Config) Defaults() tablestate.TableState {
	s := tablestate.New()
	if c.PageSize > 0 {
		s.PageSize = c.PageSize
	}
	if c.RefreshInterval > 0 {
		s.RefreshInterval = max(c.RefreshInterval, tablestate.MinRefreshInterval)
	}
	if c.Theme.Valid() {
		s.Theme = c.Theme
	}
	return s
}
