package csvgrid

import "strings"

// EscapeCell quotes a cell containing a comma, quote, or newline and
// doubles any quotes inside it.
func EscapeCell(v string) string {
	if !strings.ContainsAny(v, ",\"\n") {
		return v
	}
	return `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
}

// Serialize renders header and rows as CSV lines joined by "\n" with no
// trailing newline.
func Serialize(header []string, rows [][]string) string {
	var b strings.Builder
	writeLine(&b, header)
	for _, r := range rows {
		b.WriteByte('\n')
		writeLine(&b, r)
	}
	return b.String()
}

func writeLine(b *strings.Builder, cells []string) {
	for i, c := range cells {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(EscapeCell(c))
	}
}
