// Package tablestate holds the view state of a grid and the pure reducer
// that moves it from one value to the next.
package tablestate

import (
	"slices"
	"time"

	"github.com/leapstack-labs/horizon/pkg/core"
)

// Defaults for a fresh view.
const (
	DefaultPageSize        = 50
	DefaultRefreshInterval = 15 * time.Second
	MinRefreshInterval     = 5 * time.Second
)

// TableState is the complete view state of one viewer session.
//
// Values are never mutated in place: Reduce returns a new TableState and
// replaces any slice it changes, so slices may be shared between values.
type TableState struct {
	Source string
	Grid   *core.Grid

	Search       string
	Wrap         bool
	SelectedTags []string // insertion order, no duplicates
	HiddenCols   []int    // sorted, no duplicates
	ColumnOrder  []int
	SortKeys     []core.SortKey

	Paging   bool
	Page     int
	PageSize int

	AutoRefresh     bool
	RefreshInterval time.Duration
	Theme           core.Theme

	// Transient fields, never persisted.
	Loading     bool
	Error       string
	Copied      string
	ShowColumns bool
	Warnings    []string
}

// New returns the default state.
func New() TableState {
	return TableState{
		Grid:            &core.Grid{},
		ColumnOrder:     []int{},
		Paging:          true,
		Page:            1,
		PageSize:        DefaultPageSize,
		RefreshInterval: DefaultRefreshInterval,
		Theme:           core.DefaultTheme,
	}
}

// Width returns the header length of the loaded grid.
func (s TableState) Width() int {
	return s.Grid.Width()
}

// IsHidden reports whether column idx is hidden.
func (s TableState) IsHidden(idx int) bool {
	_, found := slices.BinarySearch(s.HiddenCols, idx)
	return found
}

// HasTag reports whether tag is selected.
func (s TableState) HasTag(tag string) bool {
	return slices.Contains(s.SelectedTags, tag)
}

// SortDirection returns the direction column idx is sorted in, if any.
func (s TableState) SortDirection(idx int) (core.Direction, bool) {
	for _, k := range s.SortKeys {
		if k.Column == idx {
			return k.Dir, true
		}
	}
	return "", false
}

// VisibleColumns returns the display order without hidden columns.
// An order that does not cover the header falls back to identity.
func (s TableState) VisibleColumns() []int {
	order := s.ColumnOrder
	if !ValidOrder(order, s.Width()) {
		order = core.IdentityOrder(s.Width())
	}
	out := make([]int, 0, len(order))
	for _, idx := range order {
		if !s.IsHidden(idx) {
			out = append(out, idx)
		}
	}
	return out
}

// ValidOrder reports whether order is a permutation of 0..width-1.
func ValidOrder(order []int, width int) bool {
	if len(order) != width {
		return false
	}
	seen := make([]bool, width)
	for _, idx := range order {
		if idx < 0 || idx >= width || seen[idx] {
			return false
		}
		seen[idx] = true
	}
	return true
}

func normalizeHidden(cols []int) []int {
	out := make([]int, 0, len(cols))
	for _, c := range cols {
		if c >= 0 {
			out = append(out, c)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t != "" && !slices.Contains(out, t) {
			out = append(out, t)
		}
	}
	return out
}
