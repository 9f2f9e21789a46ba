package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dori/quadro/internal/model"
	"github.com/dori/quadro/internal/ui/theme"
)

// SidebarWidth is the rendered width of the sidebar including its border
const SidebarWidth = 28

// SidebarMode represents the current input mode
type SidebarMode int

const (
	SidebarModeNormal SidebarMode = iota
	SidebarModeAdd
	SidebarModeConfirmDelete
)

// SidebarView lists the boards the user can open
type SidebarView struct {
	env    Env
	height int

	cursor    int
	mode      SidebarMode
	textInput textinput.Model
	deleteID  string
}

// NewSidebarView creates a new sidebar
func NewSidebarView(env Env) SidebarView {
	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = 128
	ti.Width = SidebarWidth - 6

	return SidebarView{env: env, textInput: ti}
}

// SetSize sets the view height
func (v SidebarView) SetSize(height int) SidebarView {
	v.height = height
	return v
}

func (v SidebarView) boards() []model.Board {
	return v.env.Store.Boards.All()
}

// Sync keeps the cursor on a board after the list changed
func (v SidebarView) Sync() SidebarView {
	n := len(v.boards())
	if v.cursor >= n {
		v.cursor = n - 1
	}
	if v.cursor < 0 {
		v.cursor = 0
	}
	return v
}

// Update handles messages
func (v SidebarView) Update(msg tea.Msg) (SidebarView, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch v.mode {
		case SidebarModeAdd:
			return v.handleAddMode(msg)
		case SidebarModeConfirmDelete:
			return v.handleConfirmDeleteMode(msg)
		}
		return v.handleNormalMode(msg)
	}

	if v.mode == SidebarModeAdd {
		var cmd tea.Cmd
		v.textInput, cmd = v.textInput.Update(msg)
		return v, cmd
	}
	return v, nil
}

func (v SidebarView) handleNormalMode(msg tea.KeyMsg) (SidebarView, tea.Cmd) {
	boards := v.boards()

	switch msg.String() {
	case "j", "down":
		if v.cursor < len(boards)-1 {
			v.cursor++
		}
	case "k", "up":
		if v.cursor > 0 {
			v.cursor--
		}
	case "enter", "l":
		if v.cursor < len(boards) {
			return v, OpenBoard(v.env, boards[v.cursor].ID)
		}
	case "n", "a":
		v.mode = SidebarModeAdd
		v.textInput.SetValue("")
		v.textInput.Placeholder = "Board name..."
		v.textInput.Focus()
	case "d":
		if v.cursor < len(boards) {
			v.deleteID = boards[v.cursor].ID
			v.mode = SidebarModeConfirmDelete
		}
	}
	return v, nil
}

func (v SidebarView) handleAddMode(msg tea.KeyMsg) (SidebarView, tea.Cmd) {
	switch msg.String() {
	case "enter":
		title := strings.TrimSpace(v.textInput.Value())
		if title == "" {
			return v, nil
		}
		v.mode = SidebarModeNormal
		v.textInput.Blur()
		actions := v.env.Actions
		return v, v.env.run("create board", func(ctx context.Context) error {
			b, err := actions.CreateBoard(ctx, title)
			if err != nil {
				return err
			}
			return actions.OpenBoard(ctx, b.ID)
		}, StatusMsg{Message: fmt.Sprintf("Board '%s' created", title)})
	case "esc":
		v.mode = SidebarModeNormal
		v.textInput.Blur()
		return v, nil
	}

	var cmd tea.Cmd
	v.textInput, cmd = v.textInput.Update(msg)
	return v, cmd
}

func (v SidebarView) handleConfirmDeleteMode(msg tea.KeyMsg) (SidebarView, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		id := v.deleteID
		v.mode = SidebarModeNormal
		v.deleteID = ""
		actions := v.env.Actions
		return v, v.env.run("delete board", func(ctx context.Context) error {
			return actions.DeleteBoard(ctx, id)
		}, StatusMsg{Message: "Board deleted"})
	case "n", "N", "esc":
		v.mode = SidebarModeNormal
		v.deleteID = ""
	}
	return v, nil
}

// View renders the sidebar. focused highlights the cursor.
func (v SidebarView) View(focused bool) string {
	t := theme.Current.Theme
	s := theme.Current.Styles

	lines := []string{s.Title.Render("Boards"), ""}
	selected := v.env.Store.SelectedBoard()
	boards := v.boards()

	for i, b := range boards {
		name := b.Title
		if r := []rune(name); len(r) > SidebarWidth-8 {
			name = string(r[:SidebarWidth-9]) + "…"
		}
		prefix := "  "
		if b.ID == selected {
			prefix = "▸ "
		}
		style := s.SidebarItem
		if b.ID == selected {
			style = s.SidebarSelected
		}
		if focused && i == v.cursor {
			style = style.Background(t.Highlight)
		}
		lines = append(lines, style.Render(prefix+name))
	}
	if len(boards) == 0 {
		lines = append(lines, s.Label.Italic(true).Render("(no boards)"))
	}

	lines = append(lines, "")
	switch v.mode {
	case SidebarModeAdd:
		lines = append(lines, s.Input.Render(v.textInput.View()))
	case SidebarModeConfirmDelete:
		name := v.deleteID
		if b, ok := v.env.Store.Board(v.deleteID); ok {
			name = b.Title
		}
		lines = append(lines, lipgloss.NewStyle().Foreground(t.Error).Bold(true).
			Render(fmt.Sprintf("Delete '%s'? (y/n)", name)))
	default:
		if u := v.env.Store.User(); u != nil {
			lines = append(lines, s.Label.Render(u.Email))
		}
	}

	return s.Sidebar.Width(SidebarWidth - 1).Height(v.height).Render(strings.Join(lines, "\n"))
}

// IsInputMode returns whether the sidebar is capturing text or a confirmation
func (v SidebarView) IsInputMode() bool {
	return v.mode != SidebarModeNormal
}
