package csvgrid

import (
	"fmt"
	"strings"
)

// Validate reports structural problems: fewer than two records, or data
// rows whose width differs from the header.
func Validate(records [][]string) []string {
	if len(records) < 2 {
		return []string{"CSV must have at least a header and one data row"}
	}

	var issues []string
	width := len(records[0])
	for i, r := range records {
		if len(r) != width {
			issues = append(issues, fmt.Sprintf("Row %d has %d columns, expected %d", i, len(r), width))
		}
	}
	return issues
}

// MissingColumns returns the required columns absent from header. A
// required column is satisfied by its own name or any of its aliases,
// compared case-insensitively.
func MissingColumns(header []string, required []string, aliases map[string][]string) []string {
	present := make(map[string]struct{}, len(header))
	for _, h := range header {
		present[strings.ToLower(strings.TrimSpace(h))] = struct{}{}
	}

	var missing []string
	for _, req := range required {
		if !hasAny(present, req, aliases[req]) {
			missing = append(missing, req)
		}
	}
	return missing
}

func hasAny(present map[string]struct{}, name string, aliases []string) bool {
	if _, ok := present[strings.ToLower(name)]; ok {
		return true
	}
	for _, a := range aliases {
		if _, ok := present[strings.ToLower(a)]; ok {
			return true
		}
	}
	return false
}

// MissingColumnWarning formats the warning shown for an absent column.
func MissingColumnWarning(column string) string {
	return fmt.Sprintf("Missing %q (synthesizing empty column)", column)
}
