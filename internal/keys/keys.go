// Package keys contains keybinding definitions.
package keys

import "github.com/charmbracelet/bubbles/key"

// EditorKeyMap defines the keybindings of the playground editor.
type EditorKeyMap struct {
	// Caret movement
	Left      key.Binding
	Right     key.Binding
	Up        key.Binding
	Down      key.Binding
	WordLeft  key.Binding
	WordRight key.Binding
	LineStart key.Binding
	LineEnd   key.Binding
	DocStart  key.Binding
	DocEnd    key.Binding

	// Selection
	SelectLeft      key.Binding
	SelectRight     key.Binding
	SelectUp        key.Binding
	SelectDown      key.Binding
	SelectWordLeft  key.Binding
	SelectWordRight key.Binding
	SelectLineStart key.Binding
	SelectLineEnd   key.Binding
	SelectAll       key.Binding

	// Editing
	Backspace     key.Binding
	Delete        key.Binding
	WordBackspace key.Binding
	WordDelete    key.Binding
	Newline       key.Binding

	// General
	ToggleDiagnostics key.Binding
	Help              key.Binding
	Quit              key.Binding
}

// Editor is the default editor keymap.
var Editor = DefaultEditorKeyMap()

// DefaultEditorKeyMap returns the default editor keybindings.
func DefaultEditorKeyMap() EditorKeyMap {
	return EditorKeyMap{
		// Caret movement
		Left: key.NewBinding(
			key.WithKeys("left"),
			key.WithHelp("←", "left"),
		),
		Right: key.NewBinding(
			key.WithKeys("right"),
			key.WithHelp("→", "right"),
		),
		Up: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("↓", "down"),
		),
		WordLeft: key.NewBinding(
			key.WithKeys("ctrl+left", "alt+left", "alt+b"),
			key.WithHelp("ctrl+←", "word left"),
		),
		WordRight: key.NewBinding(
			key.WithKeys("ctrl+right", "alt+right", "alt+f"),
			key.WithHelp("ctrl+→", "word right"),
		),
		LineStart: key.NewBinding(
			key.WithKeys("home"),
			key.WithHelp("home", "line start"),
		),
		LineEnd: key.NewBinding(
			key.WithKeys("end"),
			key.WithHelp("end", "line end"),
		),
		DocStart: key.NewBinding(
			key.WithKeys("ctrl+home"),
			key.WithHelp("ctrl+home", "document start"),
		),
		DocEnd: key.NewBinding(
			key.WithKeys("ctrl+end"),
			key.WithHelp("ctrl+end", "document end"),
		),

		// Selection
		SelectLeft: key.NewBinding(
			key.WithKeys("shift+left"),
			key.WithHelp("shift+←", "extend left"),
		),
		SelectRight: key.NewBinding(
			key.WithKeys("shift+right"),
			key.WithHelp("shift+→", "extend right"),
		),
		SelectUp: key.NewBinding(
			key.WithKeys("shift+up"),
			key.WithHelp("shift+↑", "extend up"),
		),
		SelectDown: key.NewBinding(
			key.WithKeys("shift+down"),
			key.WithHelp("shift+↓", "extend down"),
		),
		SelectWordLeft: key.NewBinding(
			key.WithKeys("ctrl+shift+left"),
			key.WithHelp("ctrl+shift+←", "extend word left"),
		),
		SelectWordRight: key.NewBinding(
			key.WithKeys("ctrl+shift+right"),
			key.WithHelp("ctrl+shift+→", "extend word right"),
		),
		SelectLineStart: key.NewBinding(
			key.WithKeys("shift+home"),
			key.WithHelp("shift+home", "extend to line start"),
		),
		SelectLineEnd: key.NewBinding(
			key.WithKeys("shift+end"),
			key.WithHelp("shift+end", "extend to line end"),
		),
		SelectAll: key.NewBinding(
			key.WithKeys("ctrl+a"),
			key.WithHelp("ctrl+a", "select all"),
		),

		// Editing
		Backspace: key.NewBinding(
			key.WithKeys("backspace", "ctrl+h"),
			key.WithHelp("⌫", "delete backward"),
		),
		Delete: key.NewBinding(
			key.WithKeys("delete", "ctrl+d"),
			key.WithHelp("del", "delete forward"),
		),
		WordBackspace: key.NewBinding(
			key.WithKeys("alt+backspace", "ctrl+w"),
			key.WithHelp("alt+⌫", "delete word backward"),
		),
		WordDelete: key.NewBinding(
			key.WithKeys("ctrl+delete", "alt+delete", "alt+d"),
			key.WithHelp("ctrl+del", "delete word forward"),
		),
		Newline: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "newline"),
		),

		// General
		ToggleDiagnostics: key.NewBinding(
			key.WithKeys("f2"),
			key.WithHelp("f2", "toggle diagnostics"),
		),
		Help: key.NewBinding(
			key.WithKeys("f1"),
			key.WithHelp("f1", "toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("esc", "ctrl+c"),
			key.WithHelp("esc", "quit"),
		),
	}
}

// ShortHelp returns keybindings for the short help view.
func (k EditorKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.ToggleDiagnostics, k.Quit}
}

// FullHelp returns keybindings for the full help view.
func (k EditorKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Left, k.Right, k.Up, k.Down, k.WordLeft, k.WordRight, k.LineStart, k.LineEnd, k.DocStart, k.DocEnd},                                         // Movement
		{k.SelectLeft, k.SelectRight, k.SelectUp, k.SelectDown, k.SelectWordLeft, k.SelectWordRight, k.SelectLineStart, k.SelectLineEnd, k.SelectAll}, // Selection
		{k.Backspace, k.Delete, k.WordBackspace, k.WordDelete, k.Newline},                                                                              // Editing
		{k.Help, k.ToggleDiagnostics, k.Quit},                                                                                                          // General
	}
}
