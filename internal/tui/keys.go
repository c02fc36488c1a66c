package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings for the application
type KeyMap struct {
	// Browsing
	NextCategory key.Binding
	PrevCategory key.Binding
	CycleArea    key.Binding
	CycleYear    key.Binding
	CycleGenre   key.Binding
	CycleSort    key.Binding
	ClearFilter  key.Binding
	Search       key.Binding
	Refresh      key.Binding
	Open         key.Binding

	// Detail
	Back           key.Binding
	Favorite       key.Binding
	Subscribe      key.Binding
	Comment        key.Binding
	MoreComments   key.Binding
	Recommendation key.Binding

	// Global
	Help key.Binding
	Quit key.Binding
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		NextCategory: key.NewBinding(
			key.WithKeys("tab", "]"),
			key.WithHelp("tab", "next category"),
		),
		PrevCategory: key.NewBinding(
			key.WithKeys("shift+tab", "["),
			key.WithHelp("shift+tab", "prev category"),
		),
		CycleArea: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "area"),
		),
		CycleYear: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "year"),
		),
		CycleGenre: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "genre"),
		),
		CycleSort: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "sort"),
		),
		ClearFilter: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "clear filters"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Open: key.NewBinding(
			key.WithKeys("enter", "l", "right"),
			key.WithHelp("enter", "open"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "h", "left", "backspace"),
			key.WithHelp("esc", "back"),
		),
		Favorite: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "favorite"),
		),
		Subscribe: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "subscribe"),
		),
		Comment: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "comment"),
		),
		MoreComments: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "more comments"),
		),
		Recommendation: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5"),
			key.WithHelp("1-5", "open related"),
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
}

// browseKeys is the help.KeyMap for the browse screen
type browseKeys struct{ k KeyMap }

func (b browseKeys) ShortHelp() []key.Binding {
	return []key.Binding{b.k.Open, b.k.NextCategory, b.k.Search, b.k.Help, b.k.Quit}
}

func (b browseKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{b.k.Open, b.k.NextCategory, b.k.PrevCategory, b.k.Refresh},
		{b.k.CycleArea, b.k.CycleYear, b.k.CycleGenre, b.k.CycleSort, b.k.ClearFilter},
		{b.k.Search, b.k.Help, b.k.Quit},
	}
}

// detailKeys is the help.KeyMap for the detail screen
type detailKeys struct{ k KeyMap }

func (d detailKeys) ShortHelp() []key.Binding {
	return []key.Binding{d.k.Back, d.k.Favorite, d.k.Subscribe, d.k.Comment, d.k.Help}
}

func (d detailKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{d.k.Back, d.k.Favorite, d.k.Subscribe},
		{d.k.Comment, d.k.MoreComments, d.k.Recommendation},
		{d.k.Help, d.k.Quit},
	}
}
