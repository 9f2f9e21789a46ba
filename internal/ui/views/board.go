package views

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dori/quadro/internal/board"
	"github.com/dori/quadro/internal/model"
	"github.com/dori/quadro/internal/ui/theme"
)

// BoardMode represents the current input mode
type BoardMode int

const (
	BoardModeNormal BoardMode = iota
	BoardModeAddCard
	BoardModeAddColumn
	BoardModeEditCard
	BoardModeEditDescription
	BoardModeRenameColumn
	BoardModeSearch
	BoardModeConfirmDeleteCard
	BoardModeConfirmDeleteColumn
)

const minColumnWidth = 26

// BoardView renders the selected board and runs the keyboard drag gesture
type BoardView struct {
	env    Env
	width  int
	height int

	// Navigation state
	col int
	row int

	// Per-column scroll offset, keyed by column id
	scroll map[string]int

	mode      BoardMode
	textInput textinput.Model

	// Card or column the current input applies to
	targetID string

	statusMsg string
}

// NewBoardView creates a new board view
func NewBoardView(env Env) BoardView {
	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = 256

	return BoardView{
		env:       env,
		scroll:    make(map[string]int),
		textInput: ti,
	}
}

// Init initializes the board view
func (v BoardView) Init() tea.Cmd {
	return nil
}

// SetSize sets the view dimensions
func (v BoardView) SetSize(width, height int) BoardView {
	v.width = width
	v.height = height
	return v
}

func (v BoardView) boardID() string {
	return v.env.Store.SelectedBoard()
}

func (v BoardView) columns() []model.Column {
	id := v.boardID()
	if id == "" {
		return nil
	}
	return v.env.Store.ColumnsOf(id)
}

func (v BoardView) cardsAt(col int) []model.Card {
	cols := v.columns()
	if col < 0 || col >= len(cols) {
		return nil
	}
	return v.env.Store.VisibleCards(cols[col].ID)
}

// current returns the card under the cursor
func (v BoardView) current() (model.Card, bool) {
	cards := v.cardsAt(v.col)
	if v.row < 0 || v.row >= len(cards) {
		return model.Card{}, false
	}
	return cards[v.row], true
}

func (v BoardView) currentColumn() (model.Column, bool) {
	cols := v.columns()
	if v.col < 0 || v.col >= len(cols) {
		return model.Column{}, false
	}
	return cols[v.col], true
}

// Sync re-anchors the cursor after the store changed. While dragging, the
// cursor follows the dragged card.
func (v BoardView) Sync() BoardView {
	if id, ok := v.env.Board.Dragging(); ok {
		v.locate(id)
	}
	v.clampCursor()
	return v
}

// locate moves the cursor onto cardID if it is visible
func (v *BoardView) locate(cardID string) bool {
	for ci := range v.columns() {
		for ri, c := range v.cardsAt(ci) {
			if c.ID == cardID {
				v.col, v.row = ci, ri
				v.ensureCursorVisible()
				return true
			}
		}
	}
	return false
}

// Update handles messages
func (v BoardView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case BoardOpenedMsg:
		v.col, v.row = 0, 0
		v.scroll = make(map[string]int)
		return v, nil

	case CardMovedMsg:
		if msg.Err != nil {
			v.statusMsg = "Move failed, board reloaded"
		} else {
			v.statusMsg = ""
		}
		return v.Sync(), nil

	case tea.KeyMsg:
		switch v.mode {
		case BoardModeAddCard, BoardModeAddColumn, BoardModeEditCard, BoardModeEditDescription, BoardModeRenameColumn:
			return v.handleInputMode(msg)
		case BoardModeSearch:
			return v.handleSearchMode(msg)
		case BoardModeConfirmDeleteCard, BoardModeConfirmDeleteColumn:
			return v.handleConfirmDeleteMode(msg)
		}
		if _, dragging := v.env.Board.Dragging(); dragging {
			return v.handleDragMode(msg)
		}
		return v.handleNormalMode(msg)
	}

	if v.IsInputMode() {
		var cmd tea.Cmd
		v.textInput, cmd = v.textInput.Update(msg)
		return v, cmd
	}

	return v, nil
}

// handleNormalMode handles keys in normal mode
func (v BoardView) handleNormalMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	v.statusMsg = ""

	switch msg.String() {
	case "h", "left":
		if v.col > 0 {
			v.col--
			v.clampCursor()
		}
		return v, nil

	case "l", "right":
		if v.col < len(v.columns())-1 {
			v.col++
			v.clampCursor()
		}
		return v, nil

	case "j", "down":
		if v.row < len(v.cardsAt(v.col))-1 {
			v.row++
			v.ensureCursorVisible()
		}
		return v, nil

	case "k", "up":
		if v.row > 0 {
			v.row--
			v.ensureCursorVisible()
		}
		return v, nil

	case "g":
		v.row = 0
		v.ensureCursorVisible()
		return v, nil

	case "G":
		if n := len(v.cardsAt(v.col)); n > 0 {
			v.row = n - 1
			v.ensureCursorVisible()
		}
		return v, nil

	// Pick up
	case " ":
		card, ok := v.current()
		if !ok {
			return v, nil
		}
		if err := v.env.Board.DragStart(card.ID); err != nil {
			return v, errCmd(err)
		}
		v.statusMsg = fmt.Sprintf("Moving '%s'", card.Title)
		return v, nil

	case "a":
		if _, ok := v.currentColumn(); !ok {
			return v, nil
		}
		return v.startInput(BoardModeAddCard, "", "New card...", ""), nil

	case "A":
		if v.boardID() == "" {
			return v, nil
		}
		return v.startInput(BoardModeAddColumn, "", "New column...", ""), nil

	case "enter":
		if card, ok := v.current(); ok {
			return v.startInput(BoardModeEditCard, card.ID, "", board.FormatQuick(card, time.Now())), nil
		}
		return v, nil

	case "e":
		if card, ok := v.current(); ok {
			return v.startInput(BoardModeEditDescription, card.ID, "Description...", card.Description), nil
		}
		return v, nil

	case "R":
		if col, ok := v.currentColumn(); ok {
			return v.startInput(BoardModeRenameColumn, col.ID, "", col.Title), nil
		}
		return v, nil

	case "d":
		if card, ok := v.current(); ok {
			v.targetID = card.ID
			v.mode = BoardModeConfirmDeleteCard
		}
		return v, nil

	case "D":
		if col, ok := v.currentColumn(); ok {
			v.targetID = col.ID
			v.mode = BoardModeConfirmDeleteColumn
		}
		return v, nil

	case "p":
		card, ok := v.current()
		if !ok {
			return v, nil
		}
		return v, v.env.run("change priority", func(ctx context.Context) error {
			_, err := v.env.Actions.CyclePriority(ctx, card.ID)
			return err
		}, nil)

	case "<", ">":
		col, ok := v.currentColumn()
		if !ok {
			return v, nil
		}
		index := v.col - 1
		if msg.String() == ">" {
			index = v.col + 1
		}
		if index < 0 || index >= len(v.columns()) {
			return v, nil
		}
		v.col = index
		return v, v.env.run("move column", func(ctx context.Context) error {
			return v.env.Actions.MoveColumn(ctx, col.ID, index)
		}, nil)

	case "r":
		if id := v.boardID(); id != "" {
			return v, OpenBoard(v.env, id)
		}
		return v, nil

	case "/":
		return v.startInput(BoardModeSearch, "", "Search...", v.env.Store.Search()), nil

	case "esc":
		if v.env.Store.Search() != "" {
			v.env.Store.SetSearch("")
			v.statusMsg = "Search cleared"
			v.clampCursor()
		}
		return v, nil
	}

	return v, nil
}

// handleDragMode handles keys while a card is picked up. Every move lands in
// the store immediately; only the drop talks to the backend.
func (v BoardView) handleDragMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	cardID, _ := v.env.Board.Dragging()
	cols := v.columns()

	var over string
	switch msg.String() {
	case "h", "left":
		if v.col > 0 {
			over = cols[v.col-1].ID
		}
	case "l", "right":
		if v.col < len(cols)-1 {
			over = cols[v.col+1].ID
		}
	case "k", "up":
		if cards := v.cardsAt(v.col); v.row > 0 && v.row < len(cards) {
			over = cards[v.row-1].ID
		}
	case "j", "down":
		if cards := v.cardsAt(v.col); v.row < len(cards)-1 {
			over = cards[v.row+1].ID
		}

	case " ", "enter":
		p, err := v.env.Board.Drop(cardID)
		v.statusMsg = ""
		v.locate(cardID)
		if err != nil {
			return v, errCmd(err)
		}
		if p == nil {
			return v, nil
		}
		return v, v.commit(v.boardID(), p)

	case "esc":
		v.env.Board.Cancel()
		v.statusMsg = "Move cancelled"
		v.locate(cardID)
		return v, nil
	}

	if over == "" {
		return v, nil
	}
	if err := v.env.Board.DragOver(over); err != nil {
		return v, errCmd(err)
	}
	v.locate(cardID)
	return v, nil
}

// commit persists a dropped move. On failure the controller rolls the move
// back and reloads the board.
func (v BoardView) commit(boardID string, p *board.Pending) tea.Cmd {
	ctrl := v.env.Board
	ctxFn := v.env.Context
	if ctxFn == nil {
		ctxFn = func(parent context.Context) (context.Context, context.CancelFunc) {
			return context.WithCancel(parent)
		}
	}
	return func() tea.Msg {
		ctx, cancel := ctxFn(context.Background())
		err := ctrl.Commit(ctx, p)
		cancel()
		if err == nil {
			return CardMovedMsg{CardID: p.CardID}
		}

		ctx, cancel = ctxFn(context.Background())
		defer cancel()
		ctrl.Fail(ctx, boardID, p, err)
		return CardMovedMsg{CardID: p.CardID, Err: err}
	}
}

func (v BoardView) startInput(mode BoardMode, targetID, placeholder, value string) BoardView {
	v.mode = mode
	v.targetID = targetID
	v.textInput.SetValue(value)
	v.textInput.Placeholder = placeholder
	v.textInput.Focus()
	v.textInput.CursorEnd()
	return v
}

func (v BoardView) endInput() BoardView {
	v.mode = BoardModeNormal
	v.targetID = ""
	v.textInput.Blur()
	return v
}

// handleInputMode handles keys in add, edit and rename modes. Empty titles
// are ignored without a backend call; an empty description clears it.
func (v BoardView) handleInputMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		title := strings.TrimSpace(v.textInput.Value())
		if title == "" && v.mode != BoardModeEditDescription {
			return v, nil
		}
		mode, target := v.mode, v.targetID
		v = v.endInput()
		return v, v.submit(mode, target, title)
	case "esc":
		return v.endInput(), nil
	}

	var cmd tea.Cmd
	v.textInput, cmd = v.textInput.Update(msg)
	return v, cmd
}

func (v BoardView) submit(mode BoardMode, target, title string) tea.Cmd {
	a := v.env.Actions
	switch mode {
	case BoardModeAddCard:
		col, ok := v.currentColumn()
		if !ok {
			return nil
		}
		return v.env.run("create card", func(ctx context.Context) error {
			_, err := a.QuickAddCard(ctx, col.ID, title, time.Now())
			return err
		}, StatusMsg{Message: "Card added"})
	case BoardModeAddColumn:
		boardID := v.boardID()
		return v.env.run("create column", func(ctx context.Context) error {
			_, err := a.CreateColumn(ctx, boardID, title)
			return err
		}, StatusMsg{Message: "Column added"})
	case BoardModeEditCard:
		return v.env.run("update card", func(ctx context.Context) error {
			_, err := a.EditCard(ctx, target, title, time.Now())
			return err
		}, nil)
	case BoardModeEditDescription:
		return v.env.run("update card", func(ctx context.Context) error {
			_, err := a.UpdateCard(ctx, target, model.CardPatch{Description: &title})
			return err
		}, nil)
	case BoardModeRenameColumn:
		return v.env.run("rename column", func(ctx context.Context) error {
			return a.RenameColumn(ctx, target, title)
		}, nil)
	}
	return nil
}

// handleSearchMode handles keys in search mode
func (v BoardView) handleSearchMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		v.env.Store.SetSearch(strings.TrimSpace(v.textInput.Value()))
		v = v.endInput()
		v.row = 0
		v.scroll = make(map[string]int)
		return v, nil
	}

	var cmd tea.Cmd
	v.textInput, cmd = v.textInput.Update(msg)
	return v, cmd
}

// handleConfirmDeleteMode handles keys in delete confirmation mode
func (v BoardView) handleConfirmDeleteMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		mode, target := v.mode, v.targetID
		v = v.endInput()
		a := v.env.Actions
		if mode == BoardModeConfirmDeleteColumn {
			return v, v.env.run("delete column", func(ctx context.Context) error {
				return a.DeleteColumn(ctx, target)
			}, StatusMsg{Message: "Column deleted"})
		}
		return v, v.env.run("delete card", func(ctx context.Context) error {
			return a.DeleteCard(ctx, target)
		}, StatusMsg{Message: "Card deleted"})
	case "n", "N", "esc":
		return v.endInput(), nil
	}
	return v, nil
}

// clampCursor ensures the cursor is valid for the current board
func (v *BoardView) clampCursor() {
	cols := v.columns()
	if v.col >= len(cols) {
		v.col = len(cols) - 1
	}
	if v.col < 0 {
		v.col = 0
	}
	cards := v.cardsAt(v.col)
	if v.row >= len(cards) {
		v.row = len(cards) - 1
	}
	if v.row < 0 {
		v.row = 0
	}
	v.ensureCursorVisible()
}

// ensureCursorVisible adjusts scroll to keep cursor in view
func (v *BoardView) ensureCursorVisible() {
	col, ok := v.currentColumn()
	if !ok {
		return
	}
	visible := v.visibleItemCount()
	offset := v.scroll[col.ID]
	if v.row >= offset+visible {
		offset = v.row - visible + 1
	}
	if v.row < offset {
		offset = v.row
	}
	v.scroll[col.ID] = offset
}

// visibleItemCount returns how many cards fit in the column height
func (v BoardView) visibleItemCount() int {
	// header row, column borders, footer
	n := v.height - 6
	if n < 1 {
		return 5
	}
	return n
}

// visibleColumns returns the window of columns that fits the width and
// contains the cursor
func (v BoardView) visibleColumns(total int) (start, end, width int) {
	n := v.width / minColumnWidth
	if n < 1 {
		n = 1
	}
	if n > total {
		n = total
	}
	if n == 0 {
		return 0, 0, v.width
	}
	start = 0
	if v.col >= n {
		start = v.col - n + 1
	}
	return start, start + n, v.width/n - 2
}

// View renders the board
func (v BoardView) View() string {
	if v.width == 0 || v.height == 0 {
		return "Loading..."
	}

	t := theme.Current.Theme
	s := theme.Current.Styles

	boardID := v.boardID()
	if boardID == "" {
		return s.Label.Render("No board selected. Press tab to pick one, or n in the sidebar to create one.")
	}
	b, _ := v.env.Store.Board(boardID)
	cols := v.columns()
	draggedID, dragging := v.env.Board.Dragging()

	title := s.Title.Render(b.Title)
	if q := v.env.Store.Search(); q != "" {
		title += s.Label.Render(fmt.Sprintf("  [search: %s]", q))
	}

	if len(cols) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, title,
			s.Label.Render("This board has no columns. Press A to add one."), v.footer())
	}

	start, end, colWidth := v.visibleColumns(len(cols))
	visible := v.visibleItemCount()
	now := time.Now()

	var rendered []string
	for i := start; i < end; i++ {
		col := cols[i]
		cards := v.cardsAt(i)
		active := i == v.col

		header := s.ColumnTitle.Width(colWidth).Render(fmt.Sprintf("%s (%d)", col.Title, len(cards)))

		offset := v.scroll[col.ID]
		if offset > len(cards) {
			offset = len(cards)
		}
		last := offset + visible
		if last > len(cards) {
			last = len(cards)
		}

		var items []string
		if offset > 0 {
			items = append(items, s.Label.Width(colWidth-2).Align(lipgloss.Center).
				Render(fmt.Sprintf("↑ %d more", offset)))
		}
		for j := offset; j < last; j++ {
			card := cards[j]
			style := s.Card
			switch {
			case dragging && card.ID == draggedID:
				style = s.CardDragging
			case active && j == v.row:
				style = s.CardSelected
			case card.IsOverdue(now):
				style = s.CardOverdue
			}
			items = append(items, style.Width(colWidth-2).Render(renderCard(t, card, colWidth-6)))
		}
		if last < len(cards) {
			items = append(items, s.Label.Width(colWidth-2).Align(lipgloss.Center).
				Render(fmt.Sprintf("↓ %d more", len(cards)-last)))
		}
		if len(cards) == 0 {
			items = append(items, s.Label.Italic(true).Render("(empty)"))
		}

		cs := s.Column
		if active {
			cs = s.ColumnActive
		}
		body := cs.Width(colWidth).Height(v.height - 5).Render(strings.Join(items, "\n"))
		rendered = append(rendered, lipgloss.JoinVertical(lipgloss.Left, header, body))
	}

	row := lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
	return lipgloss.JoinVertical(lipgloss.Left, title, row, v.footer())
}

// renderCard renders a single card line: priority marker, title, due date
// and tags
func renderCard(t theme.Theme, card model.Card, width int) string {
	marker := "●"
	switch card.Priority {
	case model.PriorityHigh:
		marker = "▲"
	case model.PriorityLow:
		marker = "▽"
	}
	marker = lipgloss.NewStyle().Foreground(t.PriorityColor(card.Priority)).Render(marker)

	var extra []string
	if card.DueDate != nil {
		extra = append(extra, card.DueDate.Local().Format("Jan 2"))
	}
	for _, tag := range card.Tags {
		extra = append(extra, "#"+tag)
	}
	suffix := ""
	if len(extra) > 0 {
		suffix = " " + strings.Join(extra, " ")
	}

	title := card.Title
	limit := width - len(suffix)
	if limit < 8 {
		limit = 8
		suffix = ""
	}
	if r := []rune(title); len(r) > limit {
		title = string(r[:limit-1]) + "…"
	}
	return marker + " " + title + lipgloss.NewStyle().Foreground(t.Subtle).Render(suffix)
}

func (v BoardView) footer() string {
	t := theme.Current.Theme
	s := theme.Current.Styles

	input := s.Input.Width(v.width - 4)
	switch v.mode {
	case BoardModeAddCard:
		return input.Render("Add card: " + v.textInput.View())
	case BoardModeAddColumn:
		return input.Render("Add column: " + v.textInput.View())
	case BoardModeEditCard:
		return input.Render("Edit: " + v.textInput.View())
	case BoardModeEditDescription:
		return input.Render("Description: " + v.textInput.View())
	case BoardModeRenameColumn:
		return input.Render("Rename column: " + v.textInput.View())
	case BoardModeSearch:
		return input.Render("Search: " + v.textInput.View())
	case BoardModeConfirmDeleteCard, BoardModeConfirmDeleteColumn:
		name := v.targetID
		if card, ok := v.env.Store.FindCard(v.targetID); ok {
			name = card.Title
		} else if col, ok := v.env.Store.Columns.Get(v.targetID); ok {
			name = col.Title
		}
		return lipgloss.NewStyle().Foreground(t.Error).Bold(true).
			Render(fmt.Sprintf("Delete '%s'? (y/n)", name))
	}
	if v.statusMsg != "" {
		return s.StatusInfo.Render(v.statusMsg)
	}
	return ""
}

// IsInputMode returns whether the view is capturing text or a confirmation
func (v BoardView) IsInputMode() bool {
	return v.mode != BoardModeNormal
}

// IsDragging returns whether a card is picked up
func (v BoardView) IsDragging() bool {
	_, ok := v.env.Board.Dragging()
	return ok
}

func errCmd(err error) tea.Cmd {
	if err == nil || errors.Is(err, context.Canceled) {
		return nil
	}
	return func() tea.Msg { return ErrorMsg{Err: err} }
}
