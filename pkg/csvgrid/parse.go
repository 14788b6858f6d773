package csvgrid

import "strings"

// Parse scans text into rows of cells.
//
// Rows consisting of exactly one empty cell are dropped, so blank lines and
// a trailing newline never yield phantom rows. Empty input yields nil.
func Parse(text string) [][]string {
	var (
		rows     [][]string
		cur      []string
		cell     strings.Builder
		inQuotes bool
	)

	for i := 0; i < len(text); i++ {
		c := text[i]

		if inQuotes {
			switch {
			case c == '"' && i+1 < len(text) && text[i+1] == '"':
				cell.WriteByte('"')
				i++
			case c == '"':
				inQuotes = false
			default:
				cell.WriteByte(c)
			}
			continue
		}

		switch c {
		case '"':
			inQuotes = true
		case ',':
			cur = append(cur, cell.String())
			cell.Reset()
		case '\n':
			cur = append(cur, cell.String())
			rows = append(rows, cur)
			cur = nil
			cell.Reset()
		case '\r':
		default:
			cell.WriteByte(c)
		}
	}

	if cell.Len() > 0 || len(cur) > 0 {
		cur = append(cur, cell.String())
		rows = append(rows, cur)
	}

	out := rows[:0]
	for _, r := range rows {
		if len(r) == 0 || (len(r) == 1 && r[0] == "") {
			continue
		}
		out = append(out, r)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// IsProbablyHTML reports whether text looks like an HTML document rather
// than CSV. Static file servers commonly answer a missing path with their
// index page, which would otherwise parse as a one-column grid.
func IsProbablyHTML(text string) bool {
	s := strings.TrimSpace(text)
	if len(s) > 200 {
		s = s[:200]
	}
	s = strings.ToLower(s)
	return strings.HasPrefix(s, "<!doctype html") || strings.HasPrefix(s, "<html")
}
