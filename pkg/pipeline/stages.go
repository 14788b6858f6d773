package pipeline

import (
	"slices"
	"strings"

	"github.com/leapstack-labs/horizon/pkg/core"
	"github.com/leapstack-labs/horizon/pkg/csvgrid"
	"golang.org/x/text/cases"
)

// SortPolicy decides how rows are ordered when no sort keys are active.
type SortPolicy int

const (
	// SortPreserve keeps the input order.
	SortPreserve SortPolicy = iota
	// SortFirstColumn sorts by column 0 ascending.
	SortFirstColumn
)

// ParseSortPolicy maps a config flag to a policy.
func ParseSortPolicy(implicit bool) SortPolicy {
	if implicit {
		return SortFirstColumn
	}
	return SortPreserve
}

// Search keeps rows where any cell contains the trimmed query,
// ignoring case. An empty query returns rows itself.
func Search(rows []core.Row, query string) []core.Row {
	fold := cases.Fold()
	q := fold.String(strings.TrimSpace(query))
	if q == "" {
		return rows
	}

	out := make([]core.Row, 0, len(rows))
	for _, row := range rows {
		for _, cell := range row {
			if strings.Contains(fold.String(cell), q) {
				out = append(out, row)
				break
			}
		}
	}
	return out
}

// FilterTags keeps rows whose tag cell contains every selected tag.
// It is a no-op when nothing is selected or tagsCol is negative.
func FilterTags(rows []core.Row, tagsCol int, selected []string) []core.Row {
	if len(selected) == 0 || tagsCol < 0 {
		return rows
	}

	out := make([]core.Row, 0, len(rows))
	for _, row := range rows {
		if hasAllTags(csvgrid.ParseTags(row.Cell(tagsCol)), selected) {
			out = append(out, row)
		}
	}
	return out
}

func hasAllTags(tags, selected []string) bool {
	for _, want := range selected {
		if !slices.Contains(tags, want) {
			return false
		}
	}
	return true
}

// Sort returns rows ordered by keys. The sort is stable and never reorders
// the input slice. With no keys, policy decides whether anything happens.
func Sort(rows []core.Row, keys []core.SortKey, policy SortPolicy) []core.Row {
	if len(keys) == 0 {
		if policy != SortFirstColumn {
			return rows
		}
		keys = []core.SortKey{{Column: 0, Dir: core.Asc}}
	}

	out := slices.Clone(rows)
	slices.SortStableFunc(out, func(a, b core.Row) int {
		for _, k := range keys {
			c := CompareCells(a.Cell(k.Column), b.Cell(k.Column))
			if c == 0 {
				continue
			}
			if k.Dir == core.Desc {
				return -c
			}
			return c
		}
		return 0
	})
	return out
}

// PageCount returns the number of pages for n rows, at least 1.
func PageCount(n, size int) int {
	if size < 1 {
		size = 1
	}
	pages := (n + size - 1) / size
	return max(pages, 1)
}

// ClampPage moves page into [1, pages].
func ClampPage(page, pages int) int {
	return min(max(page, 1), max(pages, 1))
}

// Paginate returns the rows of the requested page, or all rows when paging
// is off. The page is clamped into range first.
func Paginate(rows []core.Row, paging bool, page, size int) []core.Row {
	if !paging {
		return rows
	}
	if size < 1 {
		size = 1
	}
	page = ClampPage(page, PageCount(len(rows), size))

	start := (page - 1) * size
	end := min(start+size, len(rows))
	if start >= end {
		return []core.Row{}
	}
	return rows[start:end]
}
