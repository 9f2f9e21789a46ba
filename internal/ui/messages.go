package ui

import (
	"github.com/dori/quadro/internal/model"
	"github.com/dori/quadro/internal/store"
)

// Pane is the focused half of the screen
type Pane int

const (
	PaneBoard Pane = iota
	PaneSidebar
)

// String returns the display name for a pane
func (p Pane) String() string {
	switch p {
	case PaneBoard:
		return "Board"
	case PaneSidebar:
		return "Boards"
	default:
		return "Unknown"
	}
}

// StoreChangedMsg is delivered when the store notifies a change
type StoreChangedMsg struct {
	Change store.Change
}

// UserLoadedMsg carries the signed-in user's profile
type UserLoadedMsg struct {
	User model.User
	Err  error
}

// ThemeSavedMsg reports the result of persisting the theme preference
type ThemeSavedMsg struct {
	Theme model.Theme
	Err   error
}
