package pipeline

import (
	"slices"

	"github.com/leapstack-labs/horizon/pkg/core"
)

// Params carries every input of the row pipeline besides the rows.
// Column indexes below zero disable the feature that uses them.
type Params struct {
	Query           string
	TagsColumn      int
	SelectedTags    []string
	SortKeys        []core.SortKey
	Policy          SortPolicy
	Paging          bool
	Page            int
	PageSize        int
	TimestampColumn int
	PopularLimit    int
}

// Result holds the output of every stage.
type Result struct {
	Searched []core.Row
	Filtered []core.Row
	Sorted   []core.Row
	// Visible is the current page, or Sorted when paging is off.
	Visible []core.Row
	Page    int
	Pages   int
	Popular []TagCount
	Hours   [24]int
}

// Run evaluates the pipeline without memoization.
func Run(rows []core.Row, p Params) Result {
	var v View
	return v.Compute(rows, p)
}

// View memoizes the pipeline. A stage is recomputed only when the identity
// of its input slice or one of its own parameters changed.
// A View is not safe for concurrent use.
type View struct {
	search  memo[string]
	filter  memo[filterParams]
	sort    memo[sortParams]
	page    memo[pageParams]
	popular struct {
		in    []core.Row
		col   int
		limit int
		out   []TagCount
		ok    bool
	}
	hours struct {
		in  []core.Row
		col int
		out [24]int
		ok  bool
	}
}

type filterParams struct {
	col  int
	tags []string
}

type sortParams struct {
	keys   []core.SortKey
	policy SortPolicy
}

type pageParams struct {
	paging     bool
	page, size int
}

type memo[P any] struct {
	in     []core.Row
	params P
	out    []core.Row
	ok     bool
}

func (m *memo[P]) get(in []core.Row, p P, eq func(a, b P) bool, fn func() []core.Row) []core.Row {
	if m.ok && sameRows(m.in, in) && eq(m.params, p) {
		return m.out
	}
	m.in, m.params, m.out, m.ok = in, p, fn(), true
	return m.out
}

// sameRows reports whether a and b are the same slice.
func sameRows(a, b []core.Row) bool {
	if len(a) != len(b) {
		return false
	}
	if len(a) == 0 {
		return (a == nil) == (b == nil)
	}
	return &a[0] == &b[0]
}

// Compute runs the pipeline over rows, reusing cached stages.
func (v *View) Compute(rows []core.Row, p Params) Result {
	size := max(p.PageSize, 1)

	searched := v.search.get(rows, p.Query,
		func(a, b string) bool { return a == b },
		func() []core.Row { return Search(rows, p.Query) })

	fp := filterParams{col: p.TagsColumn, tags: p.SelectedTags}
	filtered := v.filter.get(searched, fp,
		func(a, b filterParams) bool { return a.col == b.col && slices.Equal(a.tags, b.tags) },
		func() []core.Row { return FilterTags(searched, p.TagsColumn, p.SelectedTags) })

	sp := sortParams{keys: p.SortKeys, policy: p.Policy}
	sorted := v.sort.get(filtered, sp,
		func(a, b sortParams) bool { return a.policy == b.policy && slices.Equal(a.keys, b.keys) },
		func() []core.Row { return Sort(filtered, p.SortKeys, p.Policy) })

	pages := PageCount(len(sorted), size)
	page := ClampPage(p.Page, pages)
	pp := pageParams{paging: p.Paging, page: page, size: size}
	visible := v.page.get(sorted, pp,
		func(a, b pageParams) bool { return a == b },
		func() []core.Row { return Paginate(sorted, p.Paging, page, size) })

	if !v.popular.ok || !sameRows(v.popular.in, searched) || v.popular.col != p.TagsColumn || v.popular.limit != p.PopularLimit {
		v.popular.in, v.popular.col, v.popular.limit = searched, p.TagsColumn, p.PopularLimit
		v.popular.out = PopularTags(searched, p.TagsColumn, p.PopularLimit)
		v.popular.ok = true
	}
	if !v.hours.ok || !sameRows(v.hours.in, filtered) || v.hours.col != p.TimestampColumn {
		v.hours.in, v.hours.col = filtered, p.TimestampColumn
		v.hours.out = HourHistogram(filtered, p.TimestampColumn)
		v.hours.ok = true
	}

	if !p.Paging {
		page = 1
	}
	return Result{
		Searched: searched,
		Filtered: filtered,
		Sorted:   sorted,
		Visible:  visible,
		Page:     page,
		Pages:    pages,
		Popular:  v.popular.out,
		Hours:    v.hours.out,
	}
}

// Reset drops every cached stage.
func (v *View) Reset() {
	*v = View{}
}
