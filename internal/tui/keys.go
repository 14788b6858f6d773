package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	PrevPage  key.Binding
	NextPage  key.Binding
	Reload    key.Binding
	Search    key.Binding
	Left      key.Binding
	Right     key.Binding
	Sort      key.Binding
	Hide      key.Binding
	ShowAll   key.Binding
	Tag       key.Binding
	ClearTags key.Binding
	Paging    key.Binding
	Wrap      key.Binding
	Theme     key.Binding
	Copy      key.Binding
	Help      key.Binding
	Quit      key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Search, k.PrevPage, k.NextPage, k.Sort, k.Reload, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Search, k.PrevPage, k.NextPage, k.Paging, k.Reload},
		{k.Left, k.Right, k.Sort, k.Hide, k.ShowAll},
		{k.Tag, k.ClearTags, k.Wrap, k.Theme, k.Copy},
		{k.Help, k.Quit},
	}
}

var keys = keyMap{
	PrevPage: key.NewBinding(
		key.WithKeys("["),
		key.WithHelp("[", "prev page"),
	),
	NextPage: key.NewBinding(
		key.WithKeys("]"),
		key.WithHelp("]", "next page"),
	),
	Reload: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reload"),
	),
	Search: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "search"),
	),
	Left: key.NewBinding(
		key.WithKeys("left", "h"),
		key.WithHelp("←/h", "prev column"),
	),
	Right: key.NewBinding(
		key.WithKeys("right", "l"),
		key.WithHelp("→/l", "next column"),
	),
	Sort: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "sort column"),
	),
	Hide: key.NewBinding(
		key.WithKeys("x"),
		key.WithHelp("x", "hide column"),
	),
	ShowAll: key.NewBinding(
		key.WithKeys("X"),
		key.WithHelp("X", "reset columns"),
	),
	Tag: key.NewBinding(
		key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"),
		key.WithHelp("1-9", "toggle tag"),
	),
	ClearTags: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "clear tags"),
	),
	Paging: key.NewBinding(
		key.WithKeys("p"),
		key.WithHelp("p", "paging"),
	),
	Wrap: key.NewBinding(
		key.WithKeys("w"),
		key.WithHelp("w", "wide cells"),
	),
	Theme: key.NewBinding(
		key.WithKeys("t"),
		key.WithHelp("t", "theme"),
	),
	Copy: key.NewBinding(
		key.WithKeys("y"),
		key.WithHelp("y", "copy link"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}
