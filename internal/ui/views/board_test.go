package views

import (
	"context"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dori/quadro/internal/board"
	"github.com/dori/quadro/internal/db"
	"github.com/dori/quadro/internal/model"
	"github.com/dori/quadro/internal/service"
	"github.com/dori/quadro/internal/store"
)

type boardFixture struct {
	env   Env
	svc   *service.Services
	todo  model.Column
	doing model.Column
	c1    model.Card
}

func newBoardFixture(t *testing.T) boardFixture {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()

	database, err := db.Open(filepath.Join(dir, "test.db"), db.WithSessionFile(filepath.Join(dir, "session.json")))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	if _, err := database.SignUp(ctx, "ana@example.com", "secret123", "Ana"); err != nil {
		t.Fatalf("SignUp: %v", err)
	}

	svc := service.New(database)
	st := store.New()
	env := Env{
		Store:   st,
		Board:   board.NewController(st, svc, nil),
		Actions: board.NewActions(st, svc),
	}

	f := boardFixture{env: env, svc: svc}
	b, err := env.Actions.CreateBoard(ctx, "Roadmap")
	if err != nil {
		t.Fatalf("CreateBoard: %v", err)
	}
	if f.todo, err = env.Actions.CreateColumn(ctx, b.ID, "To Do"); err != nil {
		t.Fatal(err)
	}
	if f.doing, err = env.Actions.CreateColumn(ctx, b.ID, "Doing"); err != nil {
		t.Fatal(err)
	}
	if _, err = env.Actions.CreateColumn(ctx, b.ID, "Done"); err != nil {
		t.Fatal(err)
	}
	if f.c1, err = env.Actions.CreateCard(ctx, f.todo.ID, "C1"); err != nil {
		t.Fatal(err)
	}
	return f
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	backspace = tea.KeyMsg{Type: tea.KeyBackspace}
	space     = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	esc   = tea.KeyMsg{Type: tea.KeyEsc}
)

// typeText sends s one rune at a time
func typeText(t *testing.T, v BoardView, s string) BoardView {
	t.Helper()
	for _, r := range s {
		v, _ = press(t, v, runes(string(r)))
	}
	return v
}

func press(t *testing.T, v BoardView, keys ...tea.KeyMsg) (BoardView, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var m tea.Model
		m, cmd = v.Update(k)
		v = m.(BoardView)
	}
	return v, cmd
}

func TestBoardViewDrag(t *testing.T) {
	t.Run("drop moves before the backend answers", func(t *testing.T) {
		f := newBoardFixture(t)
		v := NewBoardView(f.env).SetSize(120, 30)

		v, _ = press(t, v, space)
		if !v.IsDragging() {
			t.Fatal("space should pick the card up")
		}
		v, cmd := press(t, v, runes("l"), enter)
		if v.IsDragging() {
			t.Error("enter should drop the card")
		}

		if got := f.env.Store.CardsOf(f.doing.ID); len(got) != 1 || got[0].ID != f.c1.ID {
			t.Fatalf("Doing = %v, want [C1]", got)
		}
		if got := f.env.Store.CardsOf(f.todo.ID); len(got) != 0 {
			t.Fatalf("To Do = %v, want empty", got)
		}

		remote, err := f.svc.Cards.Get(context.Background(), f.c1.ID)
		if err != nil {
			t.Fatal(err)
		}
		if remote.ColumnID != f.todo.ID {
			t.Error("backend should not see the move until the command runs")
		}

		if cmd == nil {
			t.Fatal("drop should return a commit command")
		}
		msg, ok := cmd().(CardMovedMsg)
		if !ok || msg.Err != nil {
			t.Fatalf("commit msg = %#v", msg)
		}
		remote, err = f.svc.Cards.Get(context.Background(), f.c1.ID)
		if err != nil {
			t.Fatal(err)
		}
		if remote.ColumnID != f.doing.ID || remote.OrderIndex != 0 {
			t.Errorf("remote card = column %s index %d", remote.ColumnID, remote.OrderIndex)
		}
	})

	t.Run("escape puts the card back", func(t *testing.T) {
		f := newBoardFixture(t)
		v := NewBoardView(f.env).SetSize(120, 30)

		v, _ = press(t, v, space, runes("l"), runes("l"))
		if got := f.env.Store.CardsOf(f.todo.ID); len(got) != 0 {
			t.Fatalf("drag over should move the card, To Do = %v", got)
		}
		v, cmd := press(t, v, esc)
		if cmd != nil {
			t.Error("cancel should not talk to the backend")
		}
		if got := f.env.Store.CardsOf(f.todo.ID); len(got) != 1 || got[0].ID != f.c1.ID {
			t.Errorf("To Do = %v, want [C1]", got)
		}
		if card, ok := v.current(); !ok || card.ID != f.c1.ID {
			t.Error("cursor should follow the card back")
		}
	})

	t.Run("drop in place is a no-op", func(t *testing.T) {
		f := newBoardFixture(t)
		v := NewBoardView(f.env).SetSize(120, 30)

		_, cmd := press(t, v, space, enter)
		if cmd != nil {
			t.Error("dropping where the card started should not commit")
		}
	})
}

func TestBoardViewInput(t *testing.T) {
	t.Run("empty card title is ignored", func(t *testing.T) {
		f := newBoardFixture(t)
		v := NewBoardView(f.env).SetSize(120, 30)

		v, cmd := press(t, v, runes("a"), runes(" "), enter)
		if cmd != nil {
			t.Error("blank title should not issue a command")
		}
		if !v.IsInputMode() {
			t.Error("view should stay in add mode")
		}
		if n := len(f.env.Store.CardsOf(f.todo.ID)); n != 1 {
			t.Errorf("To Do has %d cards, want 1", n)
		}
	})

	t.Run("add card", func(t *testing.T) {
		f := newBoardFixture(t)
		v := NewBoardView(f.env).SetSize(120, 30)

		v, _ = press(t, v, runes("a"))
		for _, r := range "C2" {
			v, _ = press(t, v, runes(string(r)))
		}
		v, cmd := press(t, v, enter)
		if v.IsInputMode() {
			t.Error("enter should leave add mode")
		}
		if cmd == nil {
			t.Fatal("expected create command")
		}
		if msg, ok := cmd().(ErrorMsg); ok {
			t.Fatalf("create failed: %v", msg.Err)
		}
		cards := f.env.Store.CardsOf(f.todo.ID)
		if len(cards) != 2 || cards[1].Title != "C2" {
			t.Errorf("To Do = %v", cards)
		}
	})

	t.Run("add card reads markers", func(t *testing.T) {
		f := newBoardFixture(t)
		v := NewBoardView(f.env).SetSize(120, 30)

		v, _ = press(t, v, runes("a"))
		v = typeText(t, v, "C2 !high #ops")
		_, cmd := press(t, v, enter)
		if cmd == nil {
			t.Fatal("expected create command")
		}
		if msg, ok := cmd().(ErrorMsg); ok {
			t.Fatalf("create failed: %v", msg.Err)
		}
		cards := f.env.Store.CardsOf(f.todo.ID)
		if len(cards) != 2 || cards[1].Title != "C2" || cards[1].Priority != model.PriorityHigh || !cards[1].HasTag("ops") {
			t.Errorf("To Do = %+v", cards)
		}
	})

	t.Run("enter edits the whole card", func(t *testing.T) {
		f := newBoardFixture(t)
		v := NewBoardView(f.env).SetSize(120, 30)

		v, _ = press(t, v, enter)
		if v.mode != BoardModeEditCard || v.textInput.Value() != "C1" {
			t.Fatalf("mode = %v, value = %q", v.mode, v.textInput.Value())
		}
		v = typeText(t, v, " renamed @bo !low #ui")
		v, cmd := press(t, v, enter)
		if v.IsInputMode() || cmd == nil {
			t.Fatal("enter should submit the edit")
		}
		if msg, ok := cmd().(ErrorMsg); ok {
			t.Fatalf("edit failed: %v", msg.Err)
		}

		remote, err := f.svc.Cards.Get(context.Background(), f.c1.ID)
		if err != nil {
			t.Fatal(err)
		}
		if remote.Title != "C1 renamed" || remote.Priority != model.PriorityLow || !remote.HasTag("ui") {
			t.Errorf("remote = %+v", remote)
		}
		if remote.Assignee == nil || *remote.Assignee != "bo" {
			t.Errorf("assignee = %v", remote.Assignee)
		}

		// Reopening shows the markers again
		v, _ = press(t, v, enter)
		if got := v.textInput.Value(); got != "C1 renamed !low @bo #ui" {
			t.Errorf("edit value = %q", got)
		}
	})

	t.Run("e edits the description and may clear it", func(t *testing.T) {
		f := newBoardFixture(t)
		v := NewBoardView(f.env).SetSize(120, 30)

		v, _ = press(t, v, runes("e"))
		v = typeText(t, v, "notes")
		v, cmd := press(t, v, enter)
		if cmd == nil {
			t.Fatal("expected update command")
		}
		cmd()
		if card, _ := f.env.Store.FindCard(f.c1.ID); card.Description != "notes" {
			t.Fatalf("description = %q", card.Description)
		}

		v, _ = press(t, v, runes("e"))
		for range "notes" {
			v, _ = press(t, v, backspace)
		}
		_, cmd = press(t, v, enter)
		if cmd == nil {
			t.Fatal("empty description should still submit")
		}
		cmd()
		remote, _ := f.svc.Cards.Get(context.Background(), f.c1.ID)
		if remote.Description != "" {
			t.Errorf("description = %q, want cleared", remote.Description)
		}
	})

	t.Run("search filters cards", func(t *testing.T) {
		f := newBoardFixture(t)
		v := NewBoardView(f.env).SetSize(120, 30)

		v, _ = press(t, v, runes("/"), runes("z"), enter)
		if f.env.Store.Search() != "z" {
			t.Fatalf("search = %q", f.env.Store.Search())
		}
		if _, ok := v.current(); ok {
			t.Error("no card should match")
		}
		v, _ = press(t, v, esc)
		if _, ok := v.current(); !ok {
			t.Error("esc should clear the search")
		}
	})
}
