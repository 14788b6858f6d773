package session

import (
	"strings"

	"github.com/leapstack-labs/horizon/internal/loader"
	"golang.org/x/text/cases"
)

// PaletteLimit caps each kind of palette match.
const PaletteLimit = 8

// Palette result kinds.
const (
	KindRun  = "run"
	KindTag  = "tag"
	KindHint = "hint"
)

// PaletteItem is one command palette entry.
type PaletteItem struct {
	Kind string `json:"kind"`
	Text string `json:"text"`
}

// Palette matches query against run names and tags, up to PaletteLimit of
// each. Runs come first. An empty query or no match yields a single hint.
func Palette(query string, runs []loader.Run, tags []string) []PaletteItem {
	fold := cases.Fold()
	q := fold.String(strings.TrimSpace(query))
	if q == "" {
		return []PaletteItem{{Kind: KindHint, Text: "Type to search runs and tags"}}
	}

	var out []PaletteItem
	n := 0
	for _, r := range runs {
		if n == PaletteLimit {
			break
		}
		if strings.Contains(fold.String(r.Name), q) {
			out = append(out, PaletteItem{Kind: KindRun, Text: r.Name})
			n++
		}
	}
	n = 0
	for _, t := range tags {
		if n == PaletteLimit {
			break
		}
		if strings.Contains(fold.String(t), q) {
			out = append(out, PaletteItem{Kind: KindTag, Text: t})
			n++
		}
	}

	if len(out) == 0 {
		return []PaletteItem{{Kind: KindHint, Text: "No matches"}}
	}
	return out
}
