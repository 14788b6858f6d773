package csvgrid

import "strings"

// ParseTags splits a cell on ',', ';' or '|' and returns the trimmed,
// non-empty tokens in order. Duplicates are kept.
func ParseTags(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.FieldsFunc(value, func(r rune) bool {
		return r == ',' || r == ';' || r == '|'
	})
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
