package session

import (
	"context"
	"errors"
	"io"
	"net/url"
	"slices"
	"sync"
	"time"

	"github.com/leapstack-labs/horizon/internal/loader"
	"github.com/leapstack-labs/horizon/internal/notifier"
	"github.com/leapstack-labs/horizon/internal/tablestate"
	"github.com/leapstack-labs/horizon/pkg/core"
	"github.com/leapstack-labs/horizon/pkg/csvgrid"
	"github.com/leapstack-labs/horizon/pkg/pipeline"
)

// ErrClosed is returned by operations on a closed session.
var ErrClosed = errors.New("session closed")

// View is a consistent snapshot of a session: its state and the derived
// pipeline output for that state.
type View struct {
	ID     string
	State  tablestate.TableState
	Result pipeline.Result
	// Columns is the display order without hidden columns.
	Columns         []int
	TagsColumn      int
	TimestampColumn int
	Runs            []loader.Run
}

// Session is one viewer's application context.
type Session struct {
	id       string
	cfg      *Config
	notifier *notifier.Notifier
	guard    loader.Guard

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu            sync.Mutex
	state         tablestate.TableState
	view          pipeline.View
	runs          []loader.Run
	closed        bool
	refreshCancel context.CancelFunc
	copiedTimer   *time.Timer
	lastSeen      time.Time
}

func newSession(id string, cfg *Config, initial tablestate.TableState, runs []loader.Run) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		id:       id,
		cfg:      cfg,
		notifier: notifier.New(),
		ctx:      ctx,
		cancel:   cancel,
		state:    initial,
		runs:     runs,
		lastSeen: time.Now(),
	}
}

// ID returns the session id.
func (s *Session) ID() string {
	return s.id
}

// State returns a copy of the current state.
func (s *Session) State() tablestate.TableState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Runs returns the runs index the session was opened with.
func (s *Session) Runs() []loader.Run {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.runs)
}

// Snapshot computes the current view.
func (s *Session) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() View {
	st := s.state
	tagsCol := st.Grid.ColumnIndex(s.cfg.TagsColumn)
	tsCol := st.Grid.ColumnIndex(s.cfg.TimestampColumn)
	res := s.view.Compute(st.Grid.Body(), pipeline.Params{
		Query:           st.Search,
		TagsColumn:      tagsCol,
		SelectedTags:    st.SelectedTags,
		SortKeys:        st.SortKeys,
		Policy:          s.cfg.Policy,
		Paging:          st.Paging,
		Page:            st.Page,
		PageSize:        st.PageSize,
		TimestampColumn: tsCol,
		PopularLimit:    s.cfg.PopularLimit,
	})
	return View{
		ID:              s.id,
		State:           st,
		Result:          res,
		Columns:         st.VisibleColumns(),
		TagsColumn:      tagsCol,
		TimestampColumn: tsCol,
		Runs:            slices.Clone(s.runs),
	}
}

// Subscribe returns a channel pinged after every change. Release it with
// Unsubscribe.
func (s *Session) Subscribe() <-chan struct{} {
	return s.notifier.Subscribe()
}

// Unsubscribe releases a channel returned by Subscribe.
func (s *Session) Unsubscribe(ch <-chan struct{}) {
	s.notifier.Unsubscribe(ch)
	s.touch()
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastSeen = time.Now()
	s.mu.Unlock()
}

// idle reports whether the session has had no subscriber and no request
// for at least ttl.
func (s *Session) idle(now time.Time, ttl time.Duration) bool {
	if s.notifier.Len() > 0 {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen) >= ttl
}

// Dispatch applies actions in order as one transition. Page actions
// without an upper bound are clamped to the current page count. A source
// change starts a load; a refresh change restarts the refresh loop.
func (s *Session) Dispatch(actions ...tablestate.Action) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}

	prev := s.state
	for _, a := range actions {
		s.state = tablestate.Reduce(s.state, s.bounded(a))
	}
	next := s.state

	if next.Source != prev.Source {
		s.reloadAsyncLocked()
	}
	if next.AutoRefresh != prev.AutoRefresh || next.RefreshInterval != prev.RefreshInterval {
		s.restartRefreshLocked()
	}
	s.persistLocked()
	s.mu.Unlock()

	s.notifier.Broadcast()
}

// bounded fills in the page count for navigation actions.
func (s *Session) bounded(a tablestate.Action) tablestate.Action {
	pages := func() int { return s.snapshotLocked().Result.Pages }
	switch a := a.(type) {
	case tablestate.SetPage:
		if a.Max < 1 {
			a.Max = pages()
		}
		return a
	case tablestate.NextPage:
		if a.Max < 1 {
			a.Max = pages()
		}
		return a
	case tablestate.LastPage:
		if a.Max < 1 {
			a.Max = pages()
		}
		return a
	}
	return a
}

// Reload loads the current source and applies the result if no newer load
// was issued meanwhile. Without a source, as after an upload, the grid is
// left as it is.
func (s *Session) Reload(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	source := s.state.Source
	if source == "" {
		loading := s.state.Loading
		s.state = tablestate.Reduce(s.state, tablestate.SetLoading{Loading: false})
		s.mu.Unlock()
		if loading {
			s.notifier.Broadcast()
		}
		return nil
	}
	token := s.guard.Next()
	s.state = tablestate.Apply(s.state, tablestate.SetLoading{Loading: true}, tablestate.SetError{})
	s.mu.Unlock()
	s.notifier.Broadcast()

	grid, err := s.cfg.Loader.Load(ctx, source)

	s.mu.Lock()
	if !s.guard.Current(token) {
		s.mu.Unlock()
		s.cfg.Logger.Debug("discarding stale load", "session", s.id, "source", source)
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		s.state = tablestate.Reduce(s.state, tablestate.SetLoading{Loading: false})
		s.mu.Unlock()
		s.notifier.Broadcast()
		return ctxErr
	}
	if err != nil {
		s.cfg.Logger.Warn("load failed", "session", s.id, "source", source, "error", err)
		s.state = tablestate.Apply(s.state,
			tablestate.SetError{Err: loader.Describe(err)},
			tablestate.ReplaceGrid{},
		)
	} else {
		s.replaceGridLocked(grid)
	}
	s.state = tablestate.Reduce(s.state, tablestate.SetLoading{Loading: false})
	s.persistLocked()
	s.mu.Unlock()

	s.notifier.Broadcast()
	return err
}

// replaceGridLocked swaps in grid. When the header is unchanged, or the
// previous grid was empty, the column order and page survive the reload.
func (s *Session) replaceGridLocked(grid *core.Grid) {
	prev := s.state
	if grid == nil {
		grid = &core.Grid{}
	}

	s.state = tablestate.Reduce(s.state, tablestate.ReplaceGrid{
		Grid:     grid,
		Warnings: loader.Inspect(grid, s.cfg.RequiredColumns),
	})

	if prev.Grid.Empty() || slices.Equal(prev.Grid.Header, grid.Header) {
		if tablestate.ValidOrder(prev.ColumnOrder, grid.Width()) {
			s.state = tablestate.Reduce(s.state, tablestate.SetColumnOrder{Order: prev.ColumnOrder})
		}
		s.state = tablestate.Reduce(s.state, s.bounded(tablestate.SetPage{Page: prev.Page}))
	}
}

// Upload replaces the grid with an uploaded file. The source is cleared so
// auto-refresh does not overwrite the upload; any load in flight is
// superseded.
func (s *Session) Upload(name string, r io.Reader) error {
	grid, err := loader.ParseUpload(name, r)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.guard.Next()
	s.state = tablestate.Reduce(s.state, tablestate.SetSource{})
	if err != nil {
		s.cfg.Logger.Warn("upload rejected", "session", s.id, "file", name, "error", err)
		s.state = tablestate.Apply(s.state,
			tablestate.SetError{Err: loader.Describe(err)},
			tablestate.ReplaceGrid{},
		)
	} else {
		s.state = tablestate.Reduce(s.state, tablestate.SetError{})
		s.replaceGridLocked(grid)
	}
	s.state = tablestate.Reduce(s.state, tablestate.SetLoading{Loading: false})
	s.persistLocked()
	s.mu.Unlock()

	s.notifier.Broadcast()
	return err
}

// ReportCopy records the outcome of a copy-link attempt. The message is
// cleared after the configured TTL.
func (s *Session) ReportCopy(ok bool) {
	msg := MsgCopied
	if !ok {
		msg = MsgCopyFailed
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.state = tablestate.Reduce(s.state, tablestate.SetCopied{Message: msg})
	if s.copiedTimer != nil {
		s.copiedTimer.Stop()
	}
	s.copiedTimer = time.AfterFunc(s.cfg.CopiedTTL, func() {
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return
		}
		s.state = tablestate.Reduce(s.state, tablestate.SetCopied{})
		s.mu.Unlock()
		s.notifier.Broadcast()
	})
	s.mu.Unlock()

	s.notifier.Broadcast()
}

// ApplyQuery overlays URL query parameters onto the current state.
func (s *Session) ApplyQuery(q url.Values) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	prev := s.state
	s.state = tablestate.DecodeQuery(q, s.state)
	if !s.state.Grid.Empty() {
		s.state = tablestate.Reduce(s.state, tablestate.SetColumnOrder{Order: s.state.ColumnOrder})
	}
	if s.state.Source != prev.Source {
		s.reloadAsyncLocked()
	}
	if s.state.AutoRefresh != prev.AutoRefresh || s.state.RefreshInterval != prev.RefreshInterval {
		s.restartRefreshLocked()
	}
	s.persistLocked()
	s.mu.Unlock()

	s.notifier.Broadcast()
}

// Palette matches query against the session's runs and popular tags.
func (s *Session) Palette(query string) []PaletteItem {
	v := s.Snapshot()
	tags := make([]string, len(v.Result.Popular))
	for i, tc := range v.Result.Popular {
		tags[i] = tc.Tag
	}
	return Palette(query, v.Runs, tags)
}

// Export writes the visible rows as CSV under the full original header.
func (s *Session) Export(w io.Writer) error {
	v := s.Snapshot()
	records := make([][]string, len(v.Result.Visible))
	for i, r := range v.Result.Visible {
		records[i] = r
	}
	_, err := io.WriteString(w, csvgrid.Serialize(v.State.Grid.Header, records))
	return err
}

// Close stops background work and closes every subscription.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	if s.refreshCancel != nil {
		s.refreshCancel()
		s.refreshCancel = nil
	}
	if s.copiedTimer != nil {
		s.copiedTimer.Stop()
	}
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
	s.notifier.Close()
}

func (s *Session) reloadAsyncLocked() {
	if s.closed {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		_ = s.Reload(s.ctx)
	}()
}

// restartRefreshLocked stops the running refresh loop, if any, and starts
// a new one when auto-refresh is on.
func (s *Session) restartRefreshLocked() {
	if s.refreshCancel != nil {
		s.refreshCancel()
		s.refreshCancel = nil
	}
	if s.closed || !s.state.AutoRefresh {
		return
	}

	interval := max(s.state.RefreshInterval, tablestate.MinRefreshInterval)
	ctx, cancel := context.WithCancel(s.ctx)
	s.refreshCancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				_ = s.Reload(ctx)
			}
		}
	}()
	s.cfg.Logger.Debug("auto-refresh started", "session", s.id, "interval", interval)
}

func (s *Session) persistLocked() {
	if s.cfg.Store == nil {
		return
	}
	data, err := tablestate.MarshalSnapshot(s.state)
	if err != nil {
		s.cfg.Logger.Error("failed to encode view state", "session", s.id, "error", err)
		return
	}
	if err := s.cfg.Store.SaveView(context.Background(), s.id, data); err != nil {
		s.cfg.Logger.Error("failed to persist view state", "session", s.id, "error", err)
	}
}
