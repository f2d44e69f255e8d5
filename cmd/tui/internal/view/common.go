package view

import (
	tea "github.com/charmbracelet/bubbletea"
)

// CommonModel holds the terminal size shared by every screen.
type CommonModel struct {
	Width  int
	Height int
}

// BackMsg returns the TUI to the main menu.
type BackMsg struct{}

func Back() tea.Msg {
	return BackMsg{}
}
