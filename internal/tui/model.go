// Package tui is the terminal front end of the viewer. It drives the same
// session type as the web viewer, so search, tags, sort, paging and
// auto-refresh behave identically.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/leapstack-labs/horizon/internal/session"
	"github.com/leapstack-labs/horizon/internal/tablestate"
	"github.com/leapstack-labs/horizon/pkg/core"
)

const (
	cellWidth     = 24
	wideCellWidth = 64
	maxTagKeys    = 9
	// chromeLines counts the lines around the table: title, search,
	// notices, pager, tags and help.
	chromeLines = 8
)

// DefaultLinkBase prefixes copied links when none is configured.
const DefaultLinkBase = "http://localhost:8765/"

// Options configures the terminal viewer.
type Options struct {
	// LinkBase prefixes the query string of copied links.
	LinkBase string
	// Clipboard receives copied links. Nil uses the system clipboard.
	Clipboard func(string) error
}

type changedMsg struct{}

type closedMsg struct{}

// Model is the bubbletea model of the terminal viewer.
type Model struct {
	ctx     context.Context
	sess    *session.Session
	updates <-chan struct{}
	opts    Options

	view   session.View
	table  table.Model
	search textinput.Model
	help   help.Model
	styles styles
	theme  core.Theme

	searching     bool
	col           int // focused position in view.Columns
	width, height int
	quitting      bool
}

// New creates a model bound to sess. It subscribes to the session right
// away; the subscription ends on quit.
func New(ctx context.Context, sess *session.Session, opts Options) Model {
	if opts.LinkBase == "" {
		opts.LinkBase = DefaultLinkBase
	}
	if opts.Clipboard == nil {
		opts.Clipboard = clipboard.WriteAll
	}

	ti := textinput.New()
	ti.Placeholder = "search all columns"
	ti.Prompt = "/ "
	ti.CharLimit = 256

	m := Model{
		ctx:     ctx,
		sess:    sess,
		updates: sess.Subscribe(),
		opts:    opts,
		table:   table.New(table.WithFocused(true), table.WithHeight(10)),
		search:  ti,
		help:    help.New(),
		width:   100,
		height:  30,
	}
	m.refresh()
	return m
}

// Run starts the terminal viewer and blocks until the user quits or ctx
// ends.
func Run(ctx context.Context, sess *session.Session, opts Options) error {
	m := New(ctx, sess, opts)
	defer sess.Unsubscribe(m.updates)

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

// Init satisfies tea.Model.
func (m Model) Init() tea.Cmd {
	return m.waitForChange()
}

func (m Model) waitForChange() tea.Cmd {
	ch := m.updates
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return closedMsg{}
		}
		return changedMsg{}
	}
}

// Update satisfies tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.layout()
		return m, nil

	case changedMsg:
		m.refresh()
		return m, m.waitForChange()

	case closedMsg:
		m.quitting = true
		return m, tea.Quit

	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		return m.updateKeys(msg)
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.searching = false
		m.search.Blur()
		return m, nil

	case tea.KeyEsc:
		m.searching = false
		m.search.Blur()
		m.search.SetValue("")
		m.dispatch(tablestate.SetSearch{})
		return m, nil

	case tea.KeyCtrlC:
		return m.quit()
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if q := m.search.Value(); q != m.view.State.Search {
		m.dispatch(tablestate.SetSearch{Query: q})
	}
	return m, cmd
}

func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	st := m.view.State

	switch {
	case key.Matches(msg, keys.Quit):
		return m.quit()

	case key.Matches(msg, keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.layout()

	case key.Matches(msg, keys.Search):
		m.searching = true
		cmd := m.search.Focus()
		return m, cmd

	case key.Matches(msg, keys.PrevPage):
		m.dispatch(tablestate.PrevPage{})

	case key.Matches(msg, keys.NextPage):
		m.dispatch(tablestate.NextPage{})

	case key.Matches(msg, keys.Reload):
		return m, m.reload()

	case key.Matches(msg, keys.Left):
		if m.col > 0 {
			m.col--
			m.refresh()
		}

	case key.Matches(msg, keys.Right):
		if m.col < len(m.view.Columns)-1 {
			m.col++
			m.refresh()
		}

	case key.Matches(msg, keys.Sort):
		if c, ok := m.focused(); ok {
			m.dispatch(tablestate.CycleSort{Column: c})
		}

	case key.Matches(msg, keys.Hide):
		if c, ok := m.focused(); ok && len(m.view.Columns) > 1 {
			m.dispatch(tablestate.ToggleColumn{Column: c})
		}

	case key.Matches(msg, keys.ShowAll):
		m.dispatch(tablestate.ResetColumns{})

	case key.Matches(msg, keys.Tag):
		n := int(msg.Runes[0] - '1')
		if n < len(m.view.Result.Popular) {
			m.dispatch(tablestate.ToggleTag{Tag: m.view.Result.Popular[n].Tag})
		}

	case key.Matches(msg, keys.ClearTags):
		m.dispatch(tablestate.ClearTags{})

	case key.Matches(msg, keys.Paging):
		m.dispatch(tablestate.SetPaging{Enabled: !st.Paging})

	case key.Matches(msg, keys.Wrap):
		m.dispatch(tablestate.ToggleWrap{})

	case key.Matches(msg, keys.Theme):
		m.dispatch(tablestate.ToggleTheme{})

	case key.Matches(msg, keys.Copy):
		m.copyLink()

	default:
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	m.sess.Unsubscribe(m.updates)
	return m, tea.Quit
}

// dispatch applies actions and re-renders without waiting for the
// session's change ping.
func (m *Model) dispatch(actions ...tablestate.Action) {
	m.sess.Dispatch(actions...)
	m.refresh()
}

func (m Model) reload() tea.Cmd {
	ctx, sess := m.ctx, m.sess
	return func() tea.Msg {
		_ = sess.Reload(ctx)
		return nil
	}
}

func (m *Model) copyLink() {
	err := m.opts.Clipboard(m.Link())
	m.sess.ReportCopy(err == nil)
	m.refresh()
}

// Link returns the shareable URL of the current view.
func (m Model) Link() string {
	q := tablestate.EncodeQuery(m.view.State).Encode()
	if q == "" {
		return m.opts.LinkBase
	}
	return m.opts.LinkBase + "?" + q
}

func (m Model) focused() (int, bool) {
	if m.col < 0 || m.col >= len(m.view.Columns) {
		return 0, false
	}
	return m.view.Columns[m.col], true
}

// refresh pulls a fresh snapshot and rebuilds the table.
func (m *Model) refresh() {
	v := m.sess.Snapshot()
	m.view = v

	if v.State.Theme != m.theme {
		m.theme = v.State.Theme
		m.styles = newStyles(m.theme)
		m.table.SetStyles(m.styles.Table)
	}
	if m.col >= len(v.Columns) {
		m.col = max(len(v.Columns)-1, 0)
	}
	if !m.searching && m.search.Value() != v.State.Search {
		m.search.SetValue(v.State.Search)
	}

	cols, rows := m.tableData()
	m.table.SetRows(nil)
	m.table.SetColumns(cols)
	m.table.SetRows(rows)
	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(max(len(rows)-1, 0))
	}
	m.layout()
}

func (m *Model) tableData() ([]table.Column, []table.Row) {
	v := m.view
	limit := cellWidth
	if v.State.Wrap {
		limit = wideCellWidth
	}

	cols := make([]table.Column, len(v.Columns))
	for i, c := range v.Columns {
		title := v.State.Grid.Header[c]
		if dir, ok := v.State.SortDirection(c); ok {
			title += " " + arrow(dir)
		}
		if i == m.col {
			title = "[" + title + "]"
		}
		w := lipgloss.Width(title)
		for _, r := range v.Result.Visible {
			w = max(w, lipgloss.Width(r.Cell(c)))
		}
		cols[i] = table.Column{Title: title, Width: min(w, limit)}
	}

	rows := make([]table.Row, len(v.Result.Visible))
	for i, r := range v.Result.Visible {
		cells := make(table.Row, len(v.Columns))
		for j, c := range v.Columns {
			cells[j] = r.Cell(c)
		}
		rows[i] = cells
	}
	return cols, rows
}

func (m *Model) layout() {
	chrome := chromeLines
	if m.help.ShowAll {
		chrome += len(keys.FullHelp()[0])
	}
	m.table.SetHeight(max(m.height-chrome, 3))
	m.table.SetWidth(m.width)
	m.search.Width = max(m.width-4, 10)
}

func arrow(d core.Direction) string {
	if d == core.Desc {
		return "▼"
	}
	return "▲"
}

// View satisfies tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	v := m.view
	st := v.State
	s := m.styles

	var b strings.Builder

	// Title
	source := st.Source
	if source == "" {
		source = "no source"
	}
	b.WriteString(s.Title.Render("Horizon") + " " + s.Muted.Render(source))
	switch {
	case st.Loading:
		b.WriteString(" " + s.Status.Render("Loading…"))
	case st.Copied != "":
		b.WriteString(" " + s.Status.Render(st.Copied))
	}
	if st.AutoRefresh {
		b.WriteString(" " + s.Muted.Render(fmt.Sprintf("(every %s)", st.RefreshInterval)))
	}
	b.WriteString("\n")

	b.WriteString(m.search.View() + "\n")

	if st.Error != "" {
		b.WriteString(s.Error.Render(st.Error) + "\n")
	}
	for _, w := range st.Warnings {
		b.WriteString(s.Warning.Render(w) + "\n")
	}

	switch {
	case st.Grid.Empty():
		b.WriteString(s.Muted.Render("No data loaded.") + "\n")
	case len(v.Result.Visible) == 0:
		b.WriteString(s.Muted.Render("No rows match.") + "\n")
	default:
		b.WriteString(m.table.View() + "\n")
	}

	// Pager
	pager := fmt.Sprintf("%d of %d rows", len(v.Result.Sorted), len(st.Grid.Rows))
	if st.Paging {
		pager += fmt.Sprintf(" · Page %d of %d", v.Result.Page, v.Result.Pages)
	}
	b.WriteString(s.Muted.Render(pager) + "\n")

	if tags := m.tagLine(); tags != "" {
		b.WriteString(tags + "\n")
	}

	b.WriteString(m.help.View(keys))
	return b.String()
}

func (m Model) tagLine() string {
	v := m.view
	var parts []string
	for i, tc := range v.Result.Popular {
		if i == maxTagKeys {
			break
		}
		label := fmt.Sprintf("%d %s (%d)", i+1, tc.Tag, tc.Count)
		if v.State.HasTag(tc.Tag) {
			parts = append(parts, m.styles.TagOn.Render(label))
		} else {
			parts = append(parts, m.styles.Tag.Render(label))
		}
	}
	for _, t := range v.State.SelectedTags {
		if !m.listed(t) {
			parts = append(parts, m.styles.TagOn.Render(t))
		}
	}
	return strings.Join(parts, "  ")
}

func (m Model) listed(tag string) bool {
	for i, tc := range m.view.Result.Popular {
		if i == maxTagKeys {
			return false
		}
		if tc.Tag == tag {
			return true
		}
	}
	return false
}
