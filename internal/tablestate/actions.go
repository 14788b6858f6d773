package tablestate

import (
	"slices"
	"time"

	"github.com/leapstack-labs/horizon/pkg/core"
)

// Action is a named state transition. The concrete types below are the
// only implementations.
type Action interface {
	action()
}

type (
	// SetSource selects a new data source.
	SetSource struct{ Source string }
	// ReplaceGrid swaps in a freshly loaded grid.
	ReplaceGrid struct {
		Grid     *core.Grid
		Warnings []string
	}
	SetSearch        struct{ Query string }
	ToggleTag        struct{ Tag string }
	SetTags          struct{ Tags []string }
	ClearTags        struct{}
	ToggleColumn     struct{ Column int }
	SetHiddenColumns struct{ Columns []int }
	ResetColumns     struct{}
	// SetColumnOrder applies a permutation of the header indexes; any
	// other payload resets the order to identity.
	SetColumnOrder struct{ Order []int }
	SetSortKeys    struct{ Keys []core.SortKey }
	// CycleSort moves a column through none, asc, desc and back to none.
	CycleSort   struct{ Column int }
	SetPaging   struct{ Enabled bool }
	SetPageSize struct{ Size int }

	// Page navigation clamps into [1, Max]. A Max below 1 leaves the
	// upper bound open.
	SetPage   struct{ Page, Max int }
	FirstPage struct{}
	PrevPage  struct{}
	NextPage  struct{ Max int }
	LastPage  struct{ Max int }

	SetAutoRefresh     struct{ Enabled bool }
	SetRefreshInterval struct{ Interval time.Duration }
	ToggleTheme        struct{}
	SetTheme           struct{ Theme core.Theme }
	ToggleWrap         struct{}
	SetWrap            struct{ Wrap bool }
	SetLoading         struct{ Loading bool }
	SetError           struct{ Err string }
	SetCopied          struct{ Message string }
	SetColumnsModal    struct{ Open bool }
)

func (SetSource) action()          {}
func (ReplaceGrid) action()        {}
func (SetSearch) action()          {}
func (ToggleTag) action()          {}
func (SetTags) action()            {}
func (ClearTags) action()          {}
func (ToggleColumn) action()       {}
func (SetHiddenColumns) action()   {}
func (ResetColumns) action()       {}
func (SetColumnOrder) action()     {}
func (SetSortKeys) action()        {}
func (CycleSort) action()          {}
func (SetPaging) action()          {}
func (SetPageSize) action()        {}
func (SetPage) action()            {}
func (FirstPage) action()          {}
func (PrevPage) action()           {}
func (NextPage) action()           {}
func (LastPage) action()           {}
func (SetAutoRefresh) action()     {}
func (SetRefreshInterval) action() {}
func (ToggleTheme) action()        {}
func (SetTheme) action()           {}
func (ToggleWrap) action()         {}
func (SetWrap) action()            {}
func (SetLoading) action()         {}
func (SetError) action()           {}
func (SetCopied) action()          {}
func (SetColumnsModal) action()    {}

// Reduce applies a to s and returns the new state. Fields the action does
// not name are carried over unchanged. Unknown actions return s.
func Reduce(s TableState, a Action) TableState {
	switch a := a.(type) {
	case SetSource:
		s.Source = a.Source
		s.Page = 1
	case ReplaceGrid:
		s.Grid = a.Grid
		if s.Grid == nil {
			s.Grid = &core.Grid{}
		}
		s.Warnings = slices.Clone(a.Warnings)
		s.ColumnOrder = core.IdentityOrder(s.Grid.Width())
		s.SortKeys = inRange(s.SortKeys, s.Width())
		s.Page = 1
	case SetSearch:
		s.Search = a.Query
		s.Page = 1
	case ToggleTag:
		if s.HasTag(a.Tag) {
			s.SelectedTags = slices.DeleteFunc(slices.Clone(s.SelectedTags), func(t string) bool { return t == a.Tag })
		} else if a.Tag != "" {
			s.SelectedTags = append(slices.Clone(s.SelectedTags), a.Tag)
		}
		s.Page = 1
	case SetTags:
		s.SelectedTags = normalizeTags(a.Tags)
		s.Page = 1
	case ClearTags:
		s.SelectedTags = nil
		s.Page = 1
	case ToggleColumn:
		if s.IsHidden(a.Column) {
			s.HiddenCols = slices.DeleteFunc(slices.Clone(s.HiddenCols), func(c int) bool { return c == a.Column })
		} else {
			s.HiddenCols = normalizeHidden(append(slices.Clone(s.HiddenCols), a.Column))
		}
		s.Page = 1
	case SetHiddenColumns:
		s.HiddenCols = normalizeHidden(a.Columns)
		s.Page = 1
	case ResetColumns:
		s.HiddenCols = nil
		s.ColumnOrder = core.IdentityOrder(s.Width())
		s.Page = 1
	case SetColumnOrder:
		if ValidOrder(a.Order, s.Width()) {
			s.ColumnOrder = slices.Clone(a.Order)
		} else {
			s.ColumnOrder = core.IdentityOrder(s.Width())
		}
	case SetSortKeys:
		s.SortKeys = inRange(slices.Clone(a.Keys), s.Width())
	case CycleSort:
		if s.Width() == 0 || (a.Column >= 0 && a.Column < s.Width()) {
			s.SortKeys = cycleSort(s.SortKeys, a.Column)
		}
	case SetPaging:
		s.Paging = a.Enabled
		s.Page = 1
	case SetPageSize:
		s.PageSize = max(a.Size, 1)
		s.Page = 1
	case SetPage:
		s.Page = clamp(a.Page, a.Max)
	case FirstPage:
		s.Page = 1
	case PrevPage:
		s.Page = max(s.Page-1, 1)
	case NextPage:
		s.Page = clamp(s.Page+1, a.Max)
	case LastPage:
		s.Page = max(a.Max, 1)
	case SetAutoRefresh:
		s.AutoRefresh = a.Enabled
	case SetRefreshInterval:
		s.RefreshInterval = max(a.Interval.Truncate(time.Second), MinRefreshInterval)
	case ToggleTheme:
		s.Theme = s.Theme.Toggle()
	case SetTheme:
		s.Theme = core.ParseTheme(string(a.Theme))
	case ToggleWrap:
		s.Wrap = !s.Wrap
	case SetWrap:
		s.Wrap = a.Wrap
	case SetLoading:
		s.Loading = a.Loading
	case SetError:
		s.Error = a.Err
	case SetCopied:
		s.Copied = a.Message
	case SetColumnsModal:
		s.ShowColumns = a.Open
	}
	return s
}

// Apply reduces every action in turn.
func Apply(s TableState, actions ...Action) TableState {
	for _, a := range actions {
		s = Reduce(s, a)
	}
	return s
}

func clamp(page, upper int) int {
	page = max(page, 1)
	if upper >= 1 {
		page = min(page, upper)
	}
	return page
}

// cycleSort replaces the keys with a single key on col, stepping
// asc -> desc -> cleared.
func cycleSort(keys []core.SortKey, col int) []core.SortKey {
	for _, k := range keys {
		if k.Column != col {
			continue
		}
		if k.Dir == core.Asc {
			return []core.SortKey{{Column: col, Dir: core.Desc}}
		}
		return nil
	}
	return []core.SortKey{{Column: col, Dir: core.Asc}}
}

// inRange drops keys on columns the grid does not have. Without a grid
// every key is kept until one arrives.
func inRange(keys []core.SortKey, width int) []core.SortKey {
	if width == 0 {
		return keys
	}
	var kept []core.SortKey
	for _, k := range keys {
		if k.Column >= 0 && k.Column < width {
			kept = append(kept, k)
		}
	}
	return kept
}
