package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
)

type keyMap struct {
	Up        key.Binding
	Down      key.Binding
	Input     key.Binding
	Enter     key.Binding
	Fetch     key.Binding
	Delete    key.Binding
	AudioOnly key.Binding
	Export    key.Binding
	Verbose   key.Binding
	Back      key.Binding
	Quit      key.Binding
	ForceQuit key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Input:     key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "add URL")),
		Enter:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "choose format")),
		Fetch:     key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "fetch formats")),
		Delete:    key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "delete")),
		AudioOnly: key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "audio only")),
		Export:    key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "export playlist")),
		Verbose:   key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "verbose")),
		Back:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Quit:      key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		ForceQuit: key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

// bindings is the help for one mode.
type bindings []key.Binding

func (b bindings) ShortHelp() []key.Binding  { return b }
func (b bindings) FullHelp() [][]key.Binding { return [][]key.Binding{b} }

func (k keyMap) help(mode mode) bindings {
	switch mode {
	case modeInput:
		return bindings{
			key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "add")),
			k.Back, k.ForceQuit,
		}
	case modeFormats:
		return bindings{
			k.Up, k.Down,
			key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "download")),
			k.AudioOnly, k.Back,
		}
	case modePlaylist:
		return bindings{
			k.Up, k.Down,
			key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "queue all")),
			key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "discard")),
		}
	default:
		return bindings{k.Input, k.Up, k.Down, k.Enter, k.Fetch, k.Delete, k.AudioOnly, k.Export, k.Verbose, k.Quit}
	}
}

// tableKeyMap restricts the table to cursor movement so that letters stay
// free for commands.
func (k keyMap) tableKeyMap() table.KeyMap {
	return table.KeyMap{
		LineUp:     k.Up,
		LineDown:   k.Down,
		PageUp:     key.NewBinding(key.WithKeys("pgup")),
		PageDown:   key.NewBinding(key.WithKeys("pgdown")),
		GotoTop:    key.NewBinding(key.WithKeys("home", "g")),
		GotoBottom: key.NewBinding(key.WithKeys("end", "G")),
	}
}
