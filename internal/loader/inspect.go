package loader

import (
	"github.com/leapstack-labs/horizon/pkg/core"
	"github.com/leapstack-labs/horizon/pkg/csvgrid"
)

// Inspect returns the schema warnings for a freshly loaded grid: one per
// required column that is absent, then any row width mismatches.
// An empty grid has no warnings.
func Inspect(grid *core.Grid, required []string) []string {
	if grid.Empty() {
		return nil
	}

	var warnings []string
	for _, col := range csvgrid.MissingColumns(grid.Header, required, core.ColumnAliases) {
		warnings = append(warnings, csvgrid.MissingColumnWarning(col))
	}

	if len(grid.Rows) == 0 {
		return warnings
	}
	records := make([][]string, 0, len(grid.Rows)+1)
	records = append(records, grid.Header)
	for _, r := range grid.Rows {
		records = append(records, r)
	}
	return append(warnings, csvgrid.Validate(records)...)
}
