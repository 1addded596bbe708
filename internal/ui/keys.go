package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Open      key.Binding
	Detect    key.Binding
	Remove    key.Binding
	SortClass key.Binding
	SortConf  key.Binding
	SortNone  key.Binding
	Focus     key.Binding
	Send      key.Binding
	Blur      key.Binding
	Save      key.Binding
	Debug     key.Binding
	Logout    key.Binding
	Help      key.Binding
	Quit      key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Open:      key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open image")),
		Detect:    key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "detect")),
		Remove:    key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "remove")),
		SortClass: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "sort class")),
		SortConf:  key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "sort confidence")),
		SortNone:  key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "server order")),
		Focus:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "ask")),
		Send:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "send")),
		Blur:      key.NewBinding(key.WithKeys("esc", "tab"), key.WithHelp("esc", "back")),
		Save:      key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "save annotated")),
		Debug:     key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "debug")),
		Logout:    key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "logout")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Open, k.Detect, k.SortClass, k.SortConf, k.Focus, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Open, k.Detect, k.Remove, k.Save},
		{k.SortClass, k.SortConf, k.SortNone},
		{k.Focus, k.Send, k.Blur},
		{k.Debug, k.Logout, k.Help, k.Quit},
	}
}

// questionKeys is the help shown while typing a question.
type questionKeys struct{ k keyMap }

func (q questionKeys) ShortHelp() []key.Binding {
	return []key.Binding{q.k.Send, q.k.Blur}
}

func (q questionKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{q.ShortHelp()}
}
