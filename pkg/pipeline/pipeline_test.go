package pipeline

import (
	"testing"

	"github.com/leapstack-labs/horizon/pkg/core"
	"github.com/leapstack-labs/horizon/pkg/csvgrid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rows(records ...[]string) []core.Row {
	out := make([]core.Row, len(records))
	for i, r := range records {
		out[i] = core.Row(r)
	}
	return out
}

func firstCells(rs []core.Row) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Cell(0)
	}
	return out
}

func TestSearch(t *testing.T) {
	in := rows(
		[]string{"1", "Foo bar"},
		[]string{"2", "baz"},
		[]string{"3", "FOOD"},
	)

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"case insensitive", "foo", []string{"1", "3"}},
		{"trimmed", "  baz ", []string{"2"}},
		{"no match", "qux", []string{}},
		{"any cell", "3", []string{"3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Search(in, tt.query)
			assert.Equal(t, tt.want, firstCells(got))
			assert.LessOrEqual(t, len(got), len(in))
		})
	}

	t.Run("empty query is identity", func(t *testing.T) {
		got := Search(in, "   ")
		require.Len(t, got, len(in))
		assert.Same(t, &in[0], &got[0])
	})
}

func TestFilterTags(t *testing.T) {
	in := rows(
		[]string{"1", "a,b"},
		[]string{"2", "a"},
		[]string{"3", "b;c|a"},
		[]string{"4"},
	)

	assert.Equal(t, []string{"1", "2", "3", "4"}, firstCells(FilterTags(in, 1, nil)))
	assert.Equal(t, []string{"1", "2", "3", "4"}, firstCells(FilterTags(in, -1, []string{"a"})))
	assert.Equal(t, []string{"1", "2", "3"}, firstCells(FilterTags(in, 1, []string{"a"})))
	assert.Equal(t, []string{"1", "3"}, firstCells(FilterTags(in, 1, []string{"a", "b"})))
	assert.Equal(t, []string{"3"}, firstCells(FilterTags(in, 1, []string{"a", "b", "c"})))
}

func TestFilterTagsMonotonic(t *testing.T) {
	in := rows(
		[]string{"1", "a,b,c"},
		[]string{"2", "a,b"},
		[]string{"3", "a"},
		[]string{"4", "c"},
	)

	selected := []string{}
	prev := len(in)
	for _, tag := range []string{"a", "b", "c", "d"} {
		selected = append(selected, tag)
		n := len(FilterTags(in, 1, selected))
		assert.LessOrEqual(t, n, prev, "adding %q grew the result", tag)
		prev = n
	}
}

func TestCompareCells(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want int
	}{
		{"numeric not lexicographic", "9", "10", -1},
		{"negative numbers", "-2", "1", -1},
		{"timestamps", "2024-01-02T00:00:00Z", "2024-01-01T23:00:00Z", 1},
		{"dates", "2024-01-01", "2024-01-01", 0},
		{"mixed falls back to string", "10", "abc", -1},
		{"case sensitive strings", "B", "a", -1},
		{"empty is not a number", "", "5", -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CompareCells(tt.a, tt.b))
		})
	}
}

func TestParseTime(t *testing.T) {
	tm, ok := ParseTime("2024-03-05 14:22:01")
	require.True(t, ok)
	assert.Equal(t, 14, tm.Hour())

	tm, ok = ParseTime("2024-03-05T23:30:00+02:00")
	require.True(t, ok)
	assert.Equal(t, 21, tm.UTC().Hour())

	_, ok = ParseTime("42")
	assert.False(t, ok)
	_, ok = ParseTime("not a date")
	assert.False(t, ok)
}

func TestSort(t *testing.T) {
	in := rows(
		[]string{"b", "2"},
		[]string{"a", "10"},
		[]string{"c", "2"},
		[]string{"d", "1"},
	)

	t.Run("numeric ascending", func(t *testing.T) {
		got := Sort(in, []core.SortKey{{Column: 1, Dir: core.Asc}}, SortPreserve)
		assert.Equal(t, []string{"d", "b", "c", "a"}, firstCells(got))
	})

	t.Run("descending keeps ties stable", func(t *testing.T) {
		got := Sort(in, []core.SortKey{{Column: 1, Dir: core.Desc}}, SortPreserve)
		assert.Equal(t, []string{"a", "b", "c", "d"}, firstCells(got))
	})

	t.Run("secondary key", func(t *testing.T) {
		got := Sort(in, []core.SortKey{{Column: 1, Dir: core.Asc}, {Column: 0, Dir: core.Desc}}, SortPreserve)
		assert.Equal(t, []string{"d", "c", "b", "a"}, firstCells(got))
	})

	t.Run("no keys preserves order", func(t *testing.T) {
		got := Sort(in, nil, SortPreserve)
		assert.Equal(t, []string{"b", "a", "c", "d"}, firstCells(got))
	})

	t.Run("no keys with implicit first column", func(t *testing.T) {
		got := Sort(in, nil, SortFirstColumn)
		assert.Equal(t, []string{"a", "b", "c", "d"}, firstCells(got))
	})

	t.Run("input untouched", func(t *testing.T) {
		_ = Sort(in, []core.SortKey{{Column: 0, Dir: core.Asc}}, SortPreserve)
		assert.Equal(t, []string{"b", "a", "c", "d"}, firstCells(in))
	})

	t.Run("missing cells sort as empty", func(t *testing.T) {
		short := rows([]string{"x", "b"}, []string{"y"}, []string{"z", "a"})
		got := Sort(short, []core.SortKey{{Column: 1, Dir: core.Asc}}, SortPreserve)
		assert.Equal(t, []string{"y", "z", "x"}, firstCells(got))
	})
}

func TestSortStable(t *testing.T) {
	in := rows(
		[]string{"1", "same"},
		[]string{"2", "other"},
		[]string{"3", "same"},
		[]string{"4", "same"},
	)
	got := Sort(in, []core.SortKey{{Column: 1, Dir: core.Desc}}, SortPreserve)
	assert.Equal(t, []string{"1", "3", "4", "2"}, firstCells(got))
}

func TestPaginate(t *testing.T) {
	in := make([]core.Row, 7)
	for i := range in {
		in[i] = core.Row{string(rune('a' + i))}
	}

	tests := []struct {
		name   string
		paging bool
		page   int
		size   int
		want   []string
	}{
		{"first page", true, 1, 3, []string{"a", "b", "c"}},
		{"last partial page", true, 3, 3, []string{"g"}},
		{"page clamped high", true, 9, 3, []string{"g"}},
		{"page clamped low", true, -2, 3, []string{"a", "b", "c"}},
		{"paging off", false, 2, 3, []string{"a", "b", "c", "d", "e", "f", "g"}},
		{"size floor", true, 2, 0, []string{"b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Paginate(in, tt.paging, tt.page, tt.size)
			assert.Equal(t, tt.want, firstCells(got))
			if tt.paging {
				assert.LessOrEqual(t, len(got), max(tt.size, 1))
			}
		})
	}

	assert.Empty(t, Paginate(nil, true, 1, 10))
	assert.Equal(t, 1, PageCount(0, 10))
	assert.Equal(t, 3, PageCount(7, 3))
	assert.Equal(t, 1, ClampPage(0, 3))
	assert.Equal(t, 3, ClampPage(5, 3))
}

func TestPopularTags(t *testing.T) {
	in := rows(
		[]string{"1", "x,y"},
		[]string{"2", "y;z"},
		[]string{"3", "z|y"},
		[]string{"4", "w"},
	)

	got := PopularTags(in, 1, 0)
	assert.Equal(t, []TagCount{
		{Tag: "y", Count: 3},
		{Tag: "z", Count: 2},
		{Tag: "x", Count: 1},
		{Tag: "w", Count: 1},
	}, got)

	assert.Len(t, PopularTags(in, 1, 2), 2)
	assert.Nil(t, PopularTags(in, -1, 20))
}

func TestHourHistogram(t *testing.T) {
	in := rows(
		[]string{"2024-01-01T03:15:00Z"},
		[]string{"2024-01-02T03:59:59Z"},
		[]string{"2024-01-02 23:00:00"},
		[]string{"garbage"},
		[]string{},
	)

	hours := HourHistogram(in, 0)
	assert.Equal(t, 2, hours[3])
	assert.Equal(t, 1, hours[23])

	total := 0
	for _, n := range hours {
		total += n
	}
	assert.Equal(t, 3, total)

	assert.Equal(t, [24]int{}, HourHistogram(in, -1))
}

func TestViewMemoizes(t *testing.T) {
	grid := core.NewGrid(csvgrid.Parse("id,n\n1,3\n2,1\n3,2\n"))
	p := Params{
		SortKeys:        []core.SortKey{{Column: 1, Dir: core.Asc}},
		Paging:          true,
		Page:            1,
		PageSize:        2,
		TagsColumn:      -1,
		TimestampColumn: -1,
	}

	var v View
	first := v.Compute(grid.Body(), p)
	assert.Equal(t, []string{"2", "3"}, firstCells(first.Visible))
	assert.Equal(t, 2, first.Pages)

	p.Page = 2
	second := v.Compute(grid.Body(), p)
	assert.Equal(t, []string{"1"}, firstCells(second.Visible))
	assert.Same(t, &first.Sorted[0], &second.Sorted[0], "page change must not re-sort")

	p.SortKeys = []core.SortKey{{Column: 1, Dir: core.Desc}}
	third := v.Compute(grid.Body(), p)
	assert.NotSame(t, &first.Sorted[0], &third.Sorted[0])
	assert.Equal(t, []string{"2"}, firstCells(third.Visible))
}

func TestEndToEndSearch(t *testing.T) {
	text := "id,name,tags\n1,foo one,a\n2,bar,b\n3,foobar,a\n4,baz,c\n5,qux,d\n"
	grid := core.NewGrid(csvgrid.Parse(text))
	require.Equal(t, 3, grid.Width())
	require.Len(t, grid.Body(), 5)

	res := Run(grid.Body(), Params{
		Query:           "foo",
		TagsColumn:      grid.ColumnIndex("tags"),
		TimestampColumn: -1,
		Paging:          true,
		Page:            1,
		PageSize:        50,
	})
	assert.Equal(t, []string{"1", "3"}, firstCells(res.Visible))
	assert.Equal(t, []TagCount{{Tag: "a", Count: 2}}, res.Popular)
}
