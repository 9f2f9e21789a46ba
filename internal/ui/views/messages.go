package views

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dori/quadro/internal/board"
	"github.com/dori/quadro/internal/store"
)

// Env is what the views need from the application
type Env struct {
	Store   *store.Store
	Board   *board.Controller
	Actions *board.Actions
	// Context bounds each backend call
	Context func(context.Context) (context.Context, context.CancelFunc)
}

// run executes fn in a command with a bounded context. A failure becomes an
// ErrorMsg prefixed with what, success becomes done (which may be nil).
func (e Env) run(what string, fn func(ctx context.Context) error, done tea.Msg) tea.Cmd {
	ctxFn := e.Context
	if ctxFn == nil {
		ctxFn = func(parent context.Context) (context.Context, context.CancelFunc) {
			return context.WithCancel(parent)
		}
	}
	return func() tea.Msg {
		ctx, cancel := ctxFn(context.Background())
		defer cancel()
		if err := fn(ctx); err != nil {
			return ErrorMsg{Err: fmt.Errorf("%s: %w", what, err)}
		}
		return done
	}
}

// ErrorMsg contains an error to display
type ErrorMsg struct {
	Err error
}

// StatusMsg contains a status message to display
type StatusMsg struct {
	Message string
}

// BoardsLoadedMsg is sent after the board list was refreshed
type BoardsLoadedMsg struct{}

// BoardOpenedMsg is sent after a board's columns and cards were loaded
type BoardOpenedMsg struct {
	BoardID string
}

// CardMovedMsg reports the outcome of committing a dropped card
type CardMovedMsg struct {
	CardID string
	Err    error
}

// LoadBoards refreshes the board list
func LoadBoards(env Env) tea.Cmd {
	return env.run("load boards", env.Actions.LoadBoards, BoardsLoadedMsg{})
}

// OpenBoard selects a board and loads it
func OpenBoard(env Env, boardID string) tea.Cmd {
	return env.run("open board", func(ctx context.Context) error {
		return env.Actions.OpenBoard(ctx, boardID)
	}, BoardOpenedMsg{BoardID: boardID})
}
