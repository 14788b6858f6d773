package tui

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/leapstack-labs/horizon/pkg/core"
)

type styles struct {
	Title   lipgloss.Style
	Muted   lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Status  lipgloss.Style
	Tag     lipgloss.Style
	TagOn   lipgloss.Style
	Table   table.Styles
}

// palettes mirror the web themes: rose is warm, veil is cool.
var palettes = map[core.Theme]struct{ accent, selected lipgloss.Color }{
	core.ThemeRose: {accent: lipgloss.Color("#e11d48"), selected: lipgloss.Color("#fecdd3")},
	core.ThemeVeil: {accent: lipgloss.Color("#7c3aed"), selected: lipgloss.Color("#ddd6fe")},
}

func newStyles(t core.Theme) styles {
	p, ok := palettes[t]
	if !ok {
		p = palettes[core.DefaultTheme]
	}

	ts := table.DefaultStyles()
	ts.Header = ts.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(p.accent).
		BorderBottom(true).
		Bold(true)
	ts.Selected = ts.Selected.
		Foreground(lipgloss.Color("#111111")).
		Background(p.selected).
		Bold(false)

	return styles{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(p.accent),
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		Status:  lipgloss.NewStyle().Foreground(p.accent),
		Tag:     lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		TagOn:   lipgloss.NewStyle().Foreground(p.accent).Bold(true).Underline(true),
		Table:   ts,
	}
}
