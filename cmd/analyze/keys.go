package main

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up          key.Binding
	Down        key.Binding
	Enter       key.Binding
	Back        key.Binding
	Refresh     key.Binding
	ToggleLarge key.Binding
	Select      key.Binding
	Open        key.Binding
	Reveal      key.Binding
	Delete      key.Binding
	Confirm     key.Binding
	Cancel      key.Binding
	Escape      key.Binding
	Quit        key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter", "right", "l"),
			key.WithHelp("enter", "open"),
		),
		Back: key.NewBinding(
			key.WithKeys("left", "h", "b"),
			key.WithHelp("←", "back"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		ToggleLarge: key.NewBinding(
			key.WithKeys("t", "T"),
			key.WithHelp("t", "large files"),
		),
		Select: key.NewBinding(
			key.WithKeys(" ", "space"),
			key.WithHelp("space", "select"),
		),
		Open: key.NewBinding(
			key.WithKeys("o", "O"),
			key.WithHelp("o", "open"),
		),
		Reveal: key.NewBinding(
			key.WithKeys("f", "F"),
			key.WithHelp("f", "show in "+revealLabel),
		),
		Delete: key.NewBinding(
			key.WithKeys("delete", "backspace"),
			key.WithHelp("⌫", "delete"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "confirm"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc", "q"),
			key.WithHelp("esc", "cancel"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}
