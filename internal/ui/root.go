package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dori/quadro/internal/app"
	"github.com/dori/quadro/internal/backend"
	"github.com/dori/quadro/internal/model"
	"github.com/dori/quadro/internal/store"
	"github.com/dori/quadro/internal/ui/theme"
	"github.com/dori/quadro/internal/ui/views"
)

// RootModel is the main application model: sidebar plus board
type RootModel struct {
	app    *app.App
	env    views.Env
	keys   KeyMap
	help   help.Model
	width  int
	height int

	pane        Pane
	sidebar     views.SidebarView
	board       views.BoardView
	helpVisible bool

	// changes carries store notifications into the event loop
	changes <-chan store.Change

	// Status message
	statusMsg string
	errorMsg  string
}

// NewRootModel creates a new root model. The returned function drops the
// store subscription.
func NewRootModel(application *app.App) (RootModel, func()) {
	h := help.New()
	h.ShowAll = false

	env := views.Env{
		Store:   application.Store,
		Board:   application.Board,
		Actions: application.Actions,
		Context: application.Context,
	}

	changes, unsubscribe := subscribe(application.Store)
	theme.Apply(application.Store.Theme())

	return RootModel{
		app:     application,
		env:     env,
		keys:    DefaultKeyMap(),
		help:    h,
		pane:    PaneBoard,
		sidebar: views.NewSidebarView(env),
		board:   views.NewBoardView(env),
		changes: changes,
	}, unsubscribe
}

// subscribe forwards store changes into a channel without ever blocking the
// mutating caller. Bursts collapse into one pending notification since views
// read the store when they render.
func subscribe(st *store.Store) (<-chan store.Change, func()) {
	ch := make(chan store.Change, 1)
	unsubscribe := st.Subscribe(func(c store.Change) {
		select {
		case ch <- c:
		default:
		}
	})
	return ch, unsubscribe
}

// waitForChange blocks until the store changes
func waitForChange(ch <-chan store.Change) tea.Cmd {
	return func() tea.Msg {
		return StoreChangedMsg{Change: <-ch}
	}
}

// Init initializes the model
func (m RootModel) Init() tea.Cmd {
	return tea.Batch(
		waitForChange(m.changes),
		m.loadUser(),
		views.LoadBoards(m.env),
	)
}

func (m RootModel) loadUser() tea.Cmd {
	a := m.app
	return func() tea.Msg {
		ctx, cancel := a.Context(context.Background())
		defer cancel()
		u, err := a.LoadUser(ctx)
		return UserLoadedMsg{User: u, Err: err}
	}
}

// Update handles messages
func (m RootModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.resize()
		return m, nil

	case StoreChangedMsg:
		theme.Apply(m.app.Store.Theme())
		m.sidebar = m.sidebar.Sync()
		m.board = m.board.Sync()
		m.resize()
		return m, waitForChange(m.changes)

	case UserLoadedMsg:
		if msg.Err != nil {
			if errors.Is(msg.Err, backend.ErrNotAuthenticated) {
				m.errorMsg = "Not signed in. Run 'quadro signin' first."
			} else {
				m.errorMsg = msg.Err.Error()
			}
		}
		return m, nil

	case ThemeSavedMsg:
		if msg.Err != nil {
			m.errorMsg = fmt.Sprintf("save theme: %v", msg.Err)
		}
		return m, nil

	case views.BoardsLoadedMsg:
		if m.app.Store.SelectedBoard() == "" {
			if boards := m.app.Store.Boards.All(); len(boards) > 0 {
				return m, views.OpenBoard(m.env, boards[0].ID)
			}
		}
		return m, nil

	case views.ErrorMsg:
		m.errorMsg = msg.Err.Error()
		m.app.Logger.Error("action failed", "err", msg.Err)
		return m, nil

	case views.StatusMsg:
		m.statusMsg = msg.Message
		return m, nil

	case views.CardMovedMsg:
		if msg.Err != nil {
			m.errorMsg = fmt.Sprintf("move card: %v", msg.Err)
		}

	case tea.KeyMsg:
		// Clear status/error on any keypress
		m.statusMsg = ""
		m.errorMsg = ""

		isInputMode := m.sidebar.IsInputMode() || m.board.IsInputMode()

		switch {
		case key.Matches(msg, m.keys.Quit):
			// ctrl+c always quits, but 'q' only quits when not typing
			if msg.String() == "ctrl+c" || !isInputMode {
				if m.board.IsDragging() {
					m.app.Board.Cancel()
				}
				return m, tea.Quit
			}

		case key.Matches(msg, m.keys.ThemeToggle):
			return m, m.toggleTheme()
		}

		if isInputMode || m.board.IsDragging() {
			break
		}

		switch {
		case key.Matches(msg, m.keys.Help):
			m.helpVisible = !m.helpVisible
			m.help.ShowAll = m.helpVisible
			return m, nil

		case key.Matches(msg, m.keys.SwitchPane):
			if m.pane == PaneBoard {
				m.pane = PaneSidebar
				m.app.Store.SetSidebarOpen(true)
			} else {
				m.pane = PaneBoard
			}
			return m, nil

		case key.Matches(msg, m.keys.Sidebar):
			m.app.Store.ToggleSidebar()
			if !m.app.Store.SidebarOpen() {
				m.pane = PaneBoard
			}
			return m, nil
		}
	}

	switch m.pane {
	case PaneSidebar:
		if _, ok := msg.(tea.KeyMsg); ok {
			var cmd tea.Cmd
			m.sidebar, cmd = m.sidebar.Update(msg)
			cmds = append(cmds, cmd)
			if isOpen(msg) {
				m.pane = PaneBoard
			}
			break
		}
		fallthrough
	default:
		newBoard, cmd := m.board.Update(msg)
		m.board = newBoard.(views.BoardView)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// isOpen reports whether a sidebar key opens the board under the cursor
func isOpen(msg tea.Msg) bool {
	k, ok := msg.(tea.KeyMsg)
	return ok && (k.String() == "enter" || k.String() == "l")
}

// resize hands the content area to the child views
func (m *RootModel) resize() {
	// header (1 line) and footer (2 lines)
	contentHeight := m.height - 3
	if contentHeight < 0 {
		contentHeight = 0
	}
	boardWidth := m.width
	if m.app.Store.SidebarOpen() {
		boardWidth -= views.SidebarWidth
	}
	m.sidebar = m.sidebar.SetSize(contentHeight)
	m.board = m.board.SetSize(boardWidth, contentHeight)
}

// toggleTheme flips the theme now and saves it to the profile when signed in
func (m RootModel) toggleTheme() tea.Cmd {
	st := m.app.Store
	next := st.Theme().Toggle()
	st.SetTheme(next)
	theme.Apply(next)

	if st.User() == nil {
		return nil
	}
	a := m.app
	return func() tea.Msg {
		ctx, cancel := a.Context(context.Background())
		defer cancel()
		_, err := a.Services.Users.UpdateProfile(ctx, model.UserPatch{Theme: &next})
		return ThemeSavedMsg{Theme: next, Err: err}
	}
}

// View renders the UI
func (m RootModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	contentHeight := m.height - 3
	var content string
	if m.helpVisible {
		content = m.renderHelp()
	} else {
		main := m.board.View()
		if m.app.Store.SidebarOpen() {
			main = lipgloss.JoinHorizontal(lipgloss.Top, m.sidebar.View(m.pane == PaneSidebar), main)
		}
		content = main
	}

	// Ensure content fills available space
	contentLines := strings.Count(content, "\n") + 1
	if contentLines < contentHeight {
		content += strings.Repeat("\n", contentHeight-contentLines)
	}

	return strings.Join([]string{m.renderHeader(), content, m.renderFooter()}, "\n")
}

// renderHeader renders the header bar
func (m RootModel) renderHeader() string {
	styles := theme.Current.Styles
	t := theme.Current.Theme

	title := styles.Header.Render("quadro")

	viewStyle := lipgloss.NewStyle().
		Foreground(t.Subtle).
		Padding(0, 1)
	paneIndicator := viewStyle.Render(fmt.Sprintf("[%s]", m.pane.String()))

	right := fmt.Sprintf("theme: %s", t.Name)
	if u := m.app.Store.User(); u != nil {
		name := u.Name
		if name == "" {
			name = u.Email
		}
		right = name + " • " + right
	}
	rightSide := viewStyle.Render(right)

	leftSide := lipgloss.JoinHorizontal(lipgloss.Center, title, paneIndicator)
	gap := m.width - lipgloss.Width(leftSide) - lipgloss.Width(rightSide)
	if gap < 0 {
		gap = 0
	}
	return leftSide + strings.Repeat(" ", gap) + rightSide
}

// renderFooter renders the status line and key hints
func (m RootModel) renderFooter() string {
	styles := theme.Current.Styles

	hint := func(k, desc string) string {
		return styles.HelpKey.Render(k) + styles.HelpDesc.Render(" "+desc)
	}
	sep := styles.HelpSeparator.Render(" │ ")

	var status string
	switch {
	case m.errorMsg != "":
		status = styles.StatusError.Render(m.errorMsg)
	case m.statusMsg != "":
		status = styles.StatusInfo.Render(m.statusMsg)
	}

	var line string
	switch {
	case m.board.IsDragging():
		line = hint("h/l", "column") + sep +
			hint("j/k", "position") + sep +
			hint("space/enter", "drop") + sep +
			hint("esc", "cancel")
	case m.sidebar.IsInputMode() || m.board.IsInputMode():
		line = hint("enter", "confirm") + sep + hint("esc", "cancel")
	case m.pane == PaneSidebar:
		line = hint("j/k", "navigate") + sep +
			hint("enter", "open") + sep +
			hint("n", "new board") + sep +
			hint("d", "delete") + sep +
			hint("tab", "board") + sep +
			hint("?", "help")
	default:
		line = hint("space", "pick up") + sep +
			hint("a", "add") + sep +
			hint("enter", "edit") + sep +
			hint("p", "priority") + sep +
			hint("d", "del") + sep +
			hint("/", "search") + sep +
			hint("tab", "boards") + sep +
			hint("?", "help")
	}

	return status + "\n" + line
}

// renderHelp renders the help overlay
func (m RootModel) renderHelp() string {
	t := theme.Current.Theme

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Primary).
		MarginBottom(1)

	sectionStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Secondary).
		MarginTop(1)

	keyStyle := lipgloss.NewStyle().
		Foreground(t.Foreground).
		Bold(true).
		Width(14)

	descStyle := lipgloss.NewStyle().
		Foreground(t.Subtle)

	var b strings.Builder
	b.WriteString(titleStyle.Render("Quadro Help"))
	b.WriteString("\n")

	sections := []struct {
		name string
		keys [][2]string
	}{
		{"Navigation", [][2]string{
			{"h/j/k/l", "Move between columns and cards"},
			{"g / G", "First / last card"},
			{"tab", "Switch between boards and board"},
			{"b", "Toggle sidebar"},
		}},
		{"Moving cards", [][2]string{
			{"space", "Pick up the card under the cursor"},
			{"h/l", "Drag to the previous / next column"},
			{"j/k", "Drag up / down within the column"},
			{"space/enter", "Drop and save"},
			{"esc", "Cancel and put the card back"},
		}},
		{"Editing", [][2]string{
			{"a / A", "Add card / column (a takes @user !high #tag due:fri)"},
			{"enter", "Edit card in the same syntax"},
			{"e", "Edit card description"},
			{"R", "Rename column"},
			{"p", "Cycle priority"},
			{"d / D", "Delete card / column"},
			{"< / >", "Move column left / right"},
			{"r", "Reload board"},
			{"/", "Search cards"},
		}},
		{"System", [][2]string{
			{"ctrl+t", "Toggle light / dark theme"},
			{"q / ctrl+c", "Quit"},
		}},
	}
	for _, sec := range sections {
		b.WriteString(sectionStyle.Render(sec.name))
		b.WriteString("\n")
		for _, kv := range sec.keys {
			b.WriteString(keyStyle.Render(kv[0]))
			b.WriteString(descStyle.Render(kv[1]))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	b.WriteString("\n")
	b.WriteString(descStyle.Render("Press ? to close"))
	return b.String()
}

// Run starts the TUI and blocks until it exits
func Run(application *app.App) error {
	m, unsubscribe := NewRootModel(application)
	defer unsubscribe()

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
