package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
//
// Letters and digits are room code input while idle, so idle actions use control keys.
type keyMap struct {
	login   key.Binding
	submit  key.Binding
	erase   key.Binding
	check   key.Binding
	copy    key.Binding
	logout  key.Binding
	tab     key.Binding
	prevTab key.Binding
	search  key.Binding
	more    key.Binding
	clear   key.Binding
	restart key.Binding
	quit    key.Binding
	exit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		login:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "log in")),
		submit:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "compare")),
		erase:   key.NewBinding(key.WithKeys("backspace"), key.WithHelp("⌫", "erase")),
		check:   key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "check code")),
		copy:    key.NewBinding(key.WithKeys("ctrl+y"), key.WithHelp("ctrl+y", "copy my code")),
		logout:  key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "log out")),
		tab:     key.NewBinding(key.WithKeys("tab", "right", "l"), key.WithHelp("tab", "next list")),
		prevTab: key.NewBinding(key.WithKeys("shift+tab", "left", "h"), key.WithHelp("shift+tab", "previous list")),
		search:  key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		more:    key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "load more")),
		clear:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear search")),
		restart: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "compare again")),
		quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		exit:    key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.submit, k.erase, k.check, k.copy},
		{k.tab, k.prevTab, k.search, k.more},
		{k.restart, k.logout, k.quit},
	}
}
