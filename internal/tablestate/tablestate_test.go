package tablestate

import (
	"net/url"
	"testing"
	"time"

	"github.com/leapstack-labs/horizon/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loaded(t *testing.T, width int) TableState {
	t.Helper()
	header := make([]string, width)
	for i := range header {
		header[i] = string(rune('a' + i))
	}
	return Reduce(New(), ReplaceGrid{Grid: core.NewGrid([][]string{header, header})})
}

func TestNew(t *testing.T) {
	s := New()
	assert.True(t, s.Paging)
	assert.Equal(t, 1, s.Page)
	assert.Equal(t, DefaultPageSize, s.PageSize)
	assert.Equal(t, DefaultRefreshInterval, s.RefreshInterval)
	assert.Equal(t, core.ThemeRose, s.Theme)
	assert.Equal(t, 0, s.Width())
}

func TestReplaceGrid(t *testing.T) {
	s := New()
	s.Page = 4
	s.ColumnOrder = []int{2, 1, 0}

	s = Reduce(s, ReplaceGrid{
		Grid:     core.NewGrid([][]string{{"a", "b", "c"}, {"1", "2", "3"}}),
		Warnings: []string{"w"},
	})
	assert.Equal(t, 1, s.Page)
	assert.Equal(t, []int{0, 1, 2}, s.ColumnOrder)
	assert.Equal(t, []string{"w"}, s.Warnings)

	s = Reduce(s, ReplaceGrid{})
	assert.True(t, s.Grid.Empty())
	assert.Equal(t, []int{}, s.ColumnOrder)
}

func TestPageResets(t *testing.T) {
	tests := []struct {
		name   string
		action Action
	}{
		{"source", SetSource{Source: "x.csv"}},
		{"search", SetSearch{Query: "foo"}},
		{"toggle tag", ToggleTag{Tag: "a"}},
		{"set tags", SetTags{Tags: []string{"a"}}},
		{"clear tags", ClearTags{}},
		{"toggle column", ToggleColumn{Column: 1}},
		{"reset columns", ResetColumns{}},
		{"paging", SetPaging{Enabled: false}},
		{"page size", SetPageSize{Size: 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := loaded(t, 3)
			s.Page = 5
			assert.Equal(t, 1, Reduce(s, tt.action).Page)
		})
	}
}

func TestTags(t *testing.T) {
	s := New()
	s = Reduce(s, ToggleTag{Tag: "a"})
	s = Reduce(s, ToggleTag{Tag: "b"})
	assert.Equal(t, []string{"a", "b"}, s.SelectedTags)

	before := s
	s = Reduce(s, ToggleTag{Tag: "a"})
	assert.Equal(t, []string{"b"}, s.SelectedTags)
	assert.Equal(t, []string{"a", "b"}, before.SelectedTags, "previous value must not change")

	s = Reduce(s, SetTags{Tags: []string{"x", "", "x", "y"}})
	assert.Equal(t, []string{"x", "y"}, s.SelectedTags)

	s = Reduce(s, ClearTags{})
	assert.Empty(t, s.SelectedTags)
}

func TestColumns(t *testing.T) {
	s := loaded(t, 4)

	s = Reduce(s, ToggleColumn{Column: 2})
	s = Reduce(s, ToggleColumn{Column: 0})
	assert.Equal(t, []int{0, 2}, s.HiddenCols)
	assert.True(t, s.IsHidden(2))
	assert.Equal(t, []int{1, 3}, s.VisibleColumns())

	s = Reduce(s, ToggleColumn{Column: 2})
	assert.Equal(t, []int{0}, s.HiddenCols)

	s = Reduce(s, SetHiddenColumns{Columns: []int{3, 1, 3, -1}})
	assert.Equal(t, []int{1, 3}, s.HiddenCols)

	s = Reduce(s, SetColumnOrder{Order: []int{3, 2, 1, 0}})
	assert.Equal(t, []int{2, 0}, s.VisibleColumns())

	s = Reduce(s, ResetColumns{})
	assert.Empty(t, s.HiddenCols)
	assert.Equal(t, []int{0, 1, 2, 3}, s.ColumnOrder)
}

func TestSetColumnOrder(t *testing.T) {
	tests := []struct {
		name  string
		order []int
		want  []int
	}{
		{"valid permutation", []int{2, 0, 1}, []int{2, 0, 1}},
		{"duplicate", []int{0, 0, 2}, []int{0, 1, 2}},
		{"too short", []int{1, 0}, []int{0, 1, 2}},
		{"out of range", []int{0, 1, 3}, []int{0, 1, 2}},
		{"negative", []int{-1, 0, 1}, []int{0, 1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := loaded(t, 3)
			s = Reduce(s, SetColumnOrder{Order: tt.order})
			assert.Equal(t, tt.want, s.ColumnOrder)
		})
	}
}

func TestCycleSort(t *testing.T) {
	s := loaded(t, 3)

	s = Reduce(s, CycleSort{Column: 1})
	assert.Equal(t, []core.SortKey{{Column: 1, Dir: core.Asc}}, s.SortKeys)

	s = Reduce(s, CycleSort{Column: 1})
	assert.Equal(t, []core.SortKey{{Column: 1, Dir: core.Desc}}, s.SortKeys)

	s = Reduce(s, CycleSort{Column: 1})
	assert.Empty(t, s.SortKeys)

	s = Reduce(s, SetSortKeys{Keys: []core.SortKey{{Column: 0, Dir: core.Desc}}})
	s = Reduce(s, CycleSort{Column: 2})
	assert.Equal(t, []core.SortKey{{Column: 2, Dir: core.Asc}}, s.SortKeys)

	dir, ok := s.SortDirection(2)
	assert.True(t, ok)
	assert.Equal(t, core.Asc, dir)
}

func TestPageNavigation(t *testing.T) {
	s := New()

	s = Reduce(s, SetPage{Page: 7, Max: 3})
	assert.Equal(t, 3, s.Page)

	s = Reduce(s, NextPage{Max: 3})
	assert.Equal(t, 3, s.Page)

	s = Reduce(s, PrevPage{})
	assert.Equal(t, 2, s.Page)

	s = Reduce(s, FirstPage{})
	s = Reduce(s, PrevPage{})
	assert.Equal(t, 1, s.Page)

	s = Reduce(s, LastPage{Max: 4})
	assert.Equal(t, 4, s.Page)

	s = Reduce(s, SetPage{Page: 0})
	assert.Equal(t, 1, s.Page)

	s = Reduce(s, SetPage{Page: 99})
	assert.Equal(t, 99, s.Page, "no upper bound without Max")

	s = Reduce(s, SetPageSize{Size: 0})
	assert.Equal(t, 1, s.PageSize)
}

func TestToggles(t *testing.T) {
	s := New()

	s = Reduce(s, ToggleTheme{})
	assert.Equal(t, core.ThemeVeil, s.Theme)
	s = Reduce(s, SetTheme{Theme: "bogus"})
	assert.Equal(t, core.ThemeRose, s.Theme)

	s = Reduce(s, ToggleWrap{})
	assert.True(t, s.Wrap)
	s = Reduce(s, SetWrap{Wrap: false})
	assert.False(t, s.Wrap)

	s = Reduce(s, SetAutoRefresh{Enabled: true})
	assert.True(t, s.AutoRefresh)
	s = Reduce(s, SetRefreshInterval{Interval: 2 * time.Second})
	assert.Equal(t, MinRefreshInterval, s.RefreshInterval)
	s = Reduce(s, SetRefreshInterval{Interval: 20500 * time.Millisecond})
	assert.Equal(t, 20*time.Second, s.RefreshInterval)

	s = Apply(s,
		SetLoading{Loading: true},
		SetError{Err: "boom"},
		SetCopied{Message: "Link copied"},
		SetColumnsModal{Open: true},
	)
	assert.True(t, s.Loading)
	assert.Equal(t, "boom", s.Error)
	assert.Equal(t, "Link copied", s.Copied)
	assert.True(t, s.ShowColumns)
}

func TestSortKeysOutOfRange(t *testing.T) {
	keys := []core.SortKey{{Column: 5, Dir: core.Desc}, {Column: 1, Dir: core.Asc}, {Column: -1, Dir: core.Asc}}

	tests := []struct {
		name string
		run  func() TableState
		want []core.SortKey
	}{
		{
			name: "set on loaded grid",
			run:  func() TableState { return Reduce(loaded(t, 3), SetSortKeys{Keys: keys}) },
			want: []core.SortKey{{Column: 1, Dir: core.Asc}},
		},
		{
			name: "kept until a grid arrives",
			run:  func() TableState { return Reduce(New(), SetSortKeys{Keys: keys}) },
			want: keys,
		},
		{
			name: "dropped when the grid narrows",
			run: func() TableState {
				s := Reduce(loaded(t, 6), SetSortKeys{Keys: keys[:2]})
				return Reduce(s, ReplaceGrid{Grid: core.NewGrid([][]string{{"a", "b"}})})
			},
			want: []core.SortKey{{Column: 1, Dir: core.Asc}},
		},
		{
			name: "every key dropped",
			run:  func() TableState { return Reduce(loaded(t, 1), SetSortKeys{Keys: keys[:1]}) },
			want: nil,
		},
		{
			name: "cycle on a missing column",
			run:  func() TableState { return Reduce(loaded(t, 2), CycleSort{Column: 4}) },
			want: nil,
		},
		{
			name: "decoded from a link",
			run: func() TableState {
				q := url.Values{}
				q.Set(ParamSort, "9:desc|0:asc")
				return DecodeQuery(q, loaded(t, 2))
			},
			want: []core.SortKey{{Column: 0, Dir: core.Asc}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.run().SortKeys)
		})
	}
}

func TestReplaceGridKeepsPreviousSortKeys(t *testing.T) {
	prev := Reduce(loaded(t, 4), SetSortKeys{Keys: []core.SortKey{{Column: 3, Dir: core.Asc}, {Column: 0, Dir: core.Desc}}})
	next := Reduce(prev, ReplaceGrid{Grid: core.NewGrid([][]string{{"a", "b"}})})

	assert.Equal(t, []core.SortKey{{Column: 0, Dir: core.Desc}}, next.SortKeys)
	assert.Equal(t, []core.SortKey{{Column: 3, Dir: core.Asc}, {Column: 0, Dir: core.Desc}}, prev.SortKeys)
}

func sharedState(t *testing.T) TableState {
	t.Helper()
	s := loaded(t, 4)
	return Apply(s,
		SetSource{Source: "runs/a.csv"},
		ToggleTheme{},
		SetSearch{Query: "foo bar"},
		ToggleWrap{},
		SetAutoRefresh{Enabled: true},
		SetRefreshInterval{Interval: 20 * time.Second},
		SetTags{Tags: []string{"x", "y z"}},
		SetHiddenColumns{Columns: []int{3, 1}},
		SetSortKeys{Keys: []core.SortKey{{Column: 2, Dir: core.Desc}, {Column: 0, Dir: core.Asc}}},
		SetPageSize{Size: 25},
		SetPage{Page: 3},
		SetColumnOrder{Order: []int{3, 2, 1, 0}},
	)
}

func TestEncodeQuery(t *testing.T) {
	q := EncodeQuery(sharedState(t))

	assert.Equal(t, "runs/a.csv", q.Get(ParamSource))
	assert.Equal(t, "veil", q.Get(ParamTheme))
	assert.Equal(t, "1", q.Get(ParamWrap))
	assert.Equal(t, "20", q.Get(ParamRefresh))
	assert.Equal(t, "x;y z", q.Get(ParamTags))
	assert.Equal(t, "1|3", q.Get(ParamHide))
	assert.Equal(t, "2:desc|0:asc", q.Get(ParamSort))
	assert.False(t, q.Has(ParamPaging))
	assert.Equal(t, "3", q.Get(ParamPage))
	assert.Equal(t, "25", q.Get(ParamPageSize))
	assert.Equal(t, "3|2|1|0", q.Get(ParamOrder))

	assert.Empty(t, EncodeQuery(loaded(t, 3)), "defaults are omitted")

	off := Reduce(New(), SetPaging{Enabled: false})
	assert.Equal(t, "0", EncodeQuery(off).Get(ParamPaging))
}

func TestQueryRoundTrip(t *testing.T) {
	want := sharedState(t)
	q, err := url.ParseQuery(EncodeQuery(want).Encode())
	require.NoError(t, err)
	require.True(t, HasState(q))

	got := DecodeQuery(q, New())
	assert.Equal(t, TakeSnapshot(want), TakeSnapshot(got))
}

func TestDecodeQueryFallbacks(t *testing.T) {
	q := url.Values{}
	q.Set(ParamTheme, "neon")
	q.Set(ParamRefresh, "abc")
	q.Set(ParamPage, "-3")
	q.Set(ParamPageSize, "zero")
	q.Set(ParamSort, "1:desc|bad|2")
	q.Set(ParamOrder, "2|x|0")
	q.Set(ParamHide, "2|x|0")
	q.Set(ParamPaging, "0")

	s := DecodeQuery(q, New())
	assert.Equal(t, core.ThemeRose, s.Theme)
	assert.True(t, s.AutoRefresh)
	assert.Equal(t, 30*time.Second, s.RefreshInterval)
	assert.Equal(t, 1, s.Page)
	assert.Equal(t, DefaultPageSize, s.PageSize)
	assert.Equal(t, []core.SortKey{{Column: 1, Dir: core.Desc}, {Column: 2, Dir: core.Asc}}, s.SortKeys)
	assert.Equal(t, []int{}, s.ColumnOrder)
	assert.Equal(t, []int{0, 2}, s.HiddenCols)
	assert.False(t, s.Paging)

	assert.False(t, HasState(url.Values{"other": {"1"}}))
}

func TestSnapshotRoundTrip(t *testing.T) {
	want := sharedState(t)
	want.Error = "transient"

	data, err := MarshalSnapshot(want)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "transient")

	got, err := UnmarshalSnapshot(data, New())
	require.NoError(t, err)
	assert.Equal(t, TakeSnapshot(want), TakeSnapshot(got))
	assert.Empty(t, got.Error)

	_, err = UnmarshalSnapshot([]byte("{"), New())
	assert.Error(t, err)
}
