// Package theme holds the light and dark palettes and the lipgloss styles
// derived from them.
package theme

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/dori/quadro/internal/model"
)

// Theme defines the color scheme for the UI
type Theme struct {
	Name string

	// Base colors
	Background lipgloss.Color
	Foreground lipgloss.Color
	Subtle     lipgloss.Color
	Highlight  lipgloss.Color
	Border     lipgloss.Color

	// Semantic colors
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Success   lipgloss.Color
	Warning   lipgloss.Color
	Error     lipgloss.Color
	Info      lipgloss.Color

	// Priority colors
	PriorityLow    lipgloss.Color
	PriorityMedium lipgloss.Color
	PriorityHigh   lipgloss.Color

	// Drag is the background of a card being dragged
	Drag    lipgloss.Color
	TagBack lipgloss.Color
}

// Styles holds pre-computed lipgloss styles based on theme
type Styles struct {
	App    lipgloss.Style
	Header lipgloss.Style
	Footer lipgloss.Style

	// Card styles
	Card         lipgloss.Style
	CardSelected lipgloss.Style
	CardDragging lipgloss.Style
	CardOverdue  lipgloss.Style

	Column       lipgloss.Style
	ColumnActive lipgloss.Style
	ColumnTitle  lipgloss.Style

	Sidebar         lipgloss.Style
	SidebarItem     lipgloss.Style
	SidebarSelected lipgloss.Style

	Title   lipgloss.Style
	Label   lipgloss.Style
	Tag     lipgloss.Style
	DueDate lipgloss.Style

	Input lipgloss.Style

	HelpKey       lipgloss.Style
	HelpDesc      lipgloss.Style
	HelpSeparator lipgloss.Style

	StatusError lipgloss.Style
	StatusInfo  lipgloss.Style
}

// NewStyles creates styles from a theme
func NewStyles(t Theme) Styles {
	card := lipgloss.NewStyle().
		Foreground(t.Foreground).
		Padding(0, 1)
	column := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(t.Border)

	return Styles{
		App: lipgloss.NewStyle().
			Background(t.Background).
			Foreground(t.Foreground),

		Header: lipgloss.NewStyle().
			Foreground(t.Primary).
			Bold(true).
			Padding(0, 1),

		Footer: lipgloss.NewStyle().
			Foreground(t.Subtle).
			Padding(0, 1),

		Card: card,

		CardSelected: card.
			Background(t.Highlight),

		CardDragging: card.
			Background(t.Drag).
			Foreground(t.Background).
			Bold(true),

		CardOverdue: card.
			Foreground(t.Error),

		Column:       column,
		ColumnActive: column.BorderForeground(t.Primary),

		ColumnTitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Secondary).
			Align(lipgloss.Center),

		Sidebar: lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderRight(true).
			BorderForeground(t.Border).
			Padding(0, 1),

		SidebarItem: lipgloss.NewStyle().
			Foreground(t.Foreground),

		SidebarSelected: lipgloss.NewStyle().
			Foreground(t.Primary).
			Bold(true),

		Title: lipgloss.NewStyle().
			Foreground(t.Primary).
			Bold(true),

		Label: lipgloss.NewStyle().
			Foreground(t.Subtle),

		Tag: lipgloss.NewStyle().
			Foreground(t.Info).
			Background(t.TagBack).
			Padding(0, 1).
			MarginRight(1),

		DueDate: lipgloss.NewStyle().
			Foreground(t.Warning),

		Input: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(t.Primary).
			Padding(0, 1),

		HelpKey: lipgloss.NewStyle().
			Foreground(t.Primary).
			Bold(true),

		HelpDesc: lipgloss.NewStyle().
			Foreground(t.Subtle),

		HelpSeparator: lipgloss.NewStyle().
			Foreground(t.Border),

		StatusError: lipgloss.NewStyle().
			Foreground(t.Error),

		StatusInfo: lipgloss.NewStyle().
			Foreground(t.Info),
	}
}

// PriorityColor returns the color for p
func (t Theme) PriorityColor(p model.Priority) lipgloss.Color {
	switch p {
	case model.PriorityHigh:
		return t.PriorityHigh
	case model.PriorityLow:
		return t.PriorityLow
	default:
		return t.PriorityMedium
	}
}

// Current holds the current active theme and styles
var Current = struct {
	Theme  Theme
	Styles Styles
}{
	Theme:  Dark,
	Styles: NewStyles(Dark),
}

// SetTheme changes the current theme
func SetTheme(t Theme) {
	Current.Theme = t
	Current.Styles = NewStyles(t)
}

// ForMode returns the palette for a user theme preference
func ForMode(mode model.Theme) Theme {
	if mode == model.ThemeLight {
		return Light
	}
	return Dark
}

// Apply switches to the palette for mode if it is not already current
func Apply(mode model.Theme) {
	t := ForMode(mode)
	if Current.Theme.Name != t.Name {
		SetTheme(t)
	}
}
