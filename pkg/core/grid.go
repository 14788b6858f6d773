package core

import "strings"

// Row is an ordered sequence of cell values.
type Row []string

// Cell returns the value at idx, or "" when the row is too short.
// Parsed rows are not padded to the header width, so every consumer
// reads cells through this accessor.
func (r Row) Cell(idx int) string {
	if idx < 0 || idx >= len(r) {
		return ""
	}
	return r[idx]
}

// Grid is a parsed CSV document: a header row plus data rows.
// A Grid is never mutated after construction; a reload replaces it.
type Grid struct {
	Header Row
	Rows   []Row
}

// NewGrid builds a Grid from raw records where record 0 is the header.
// An empty record list yields an empty Grid.
func NewGrid(records [][]string) *Grid {
	g := &Grid{}
	if len(records) == 0 {
		return g
	}
	g.Header = Row(records[0])
	if len(records) > 1 {
		g.Rows = make([]Row, 0, len(records)-1)
		for _, rec := range records[1:] {
			g.Rows = append(g.Rows, Row(rec))
		}
	}
	return g
}

// Empty reports whether the grid has no header.
func (g *Grid) Empty() bool {
	return g == nil || len(g.Header) == 0
}

// Width returns the header length.
func (g *Grid) Width() int {
	if g == nil {
		return 0
	}
	return len(g.Header)
}

// Body returns the data rows, or nil for an empty grid.
func (g *Grid) Body() []Row {
	if g == nil {
		return nil
	}
	return g.Rows
}

// ColumnIndex finds a header by case-insensitive name.
// Returns -1 when no header matches.
func (g *Grid) ColumnIndex(name string) int {
	if g == nil || name == "" {
		return -1
	}
	for i, h := range g.Header {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return i
		}
	}
	return -1
}

// IdentityOrder returns the column order 0..n-1.
func IdentityOrder(n int) []int {
	if n <= 0 {
		return []int{}
	}
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	return order
}
