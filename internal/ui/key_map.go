package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the dashboard.
type keyMap struct {
	playPause key.Binding
	next      key.Binding
	previous  key.Binding
	service   key.Binding
	lighting  key.Binding
	dimDown   key.Binding
	dimUp     key.Binding
	tempUp    key.Binding
	tempDown  key.Binding
	search    key.Binding
	enter     key.Binding
	back      key.Binding
	quit      key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		playPause: key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "play/pause")),
		next:      key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next")),
		previous:  key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "prev")),
		service:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "service")),
		lighting:  key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "lights")),
		dimDown:   key.NewBinding(key.WithKeys("["), key.WithHelp("[", "dim")),
		dimUp:     key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "brighten")),
		tempUp:    key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "temp up")),
		tempDown:  key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "temp down")),
		search:    key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		enter:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		back:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.playPause, k.next, k.previous, k.service, k.search, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.playPause, k.next, k.previous, k.service},
		{k.lighting, k.dimDown, k.dimUp, k.tempUp, k.tempDown},
		{k.search, k.enter, k.back, k.quit},
	}
}
