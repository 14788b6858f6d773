package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/leapstack-labs/horizon/pkg/csvgrid"
)

// Export formats.
const (
	FormatCSV      = "csv"
	FormatTable    = "table"
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
)

// Formats lists the accepted --format values.
var Formats = []string{FormatCSV, FormatTable, FormatMarkdown, FormatJSON}

func renderRows(w io.Writer, format string, cols []string, rows [][]string) error {
	switch format {
	case FormatJSON:
		return renderJSON(w, cols, rows)
	case FormatCSV:
		_, err := io.WriteString(w, csvgrid.Serialize(cols, rows))
		return err
	case FormatMarkdown, "md":
		return renderMarkdown(w, cols, rows)
	case FormatTable:
		return renderTable(w, cols, rows)
	}
	return fmt.Errorf("unknown format %q (want one of %v)", format, Formats)
}

func newTable(w io.Writer, cols []string, rows [][]string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	// Header
	headerRow := make(table.Row, len(cols))
	for i, col := range cols {
		headerRow[i] = col
	}
	t.AppendHeader(headerRow)

	// Rows
	for _, r := range rows {
		row := make(table.Row, len(cols))
		for i := range cols {
			if i < len(r) {
				row[i] = r[i]
			}
		}
		t.AppendRow(row)
	}
	return t
}

func renderTable(w io.Writer, cols []string, rows [][]string) error {
	if len(rows) == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}
	newTable(w, cols, rows).Render()
	_, _ = fmt.Fprintf(w, "(%d rows)\n", len(rows))
	return nil
}

func renderMarkdown(w io.Writer, cols []string, rows [][]string) error {
	if len(rows) == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}
	newTable(w, cols, rows).RenderMarkdown()
	return nil
}

func renderJSON(w io.Writer, cols []string, rows [][]string) error {
	results := make([]map[string]string, 0, len(rows))
	for _, r := range rows {
		m := make(map[string]string, len(cols))
		for i, col := range cols {
			if i < len(r) {
				m[col] = r[i]
			} else {
				m[col] = ""
			}
		}
		results = append(results, m)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}
