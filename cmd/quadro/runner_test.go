package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/dori/quadro/internal/app"
	"github.com/dori/quadro/internal/model"
	"github.com/dori/quadro/internal/notify"
	"github.com/dori/quadro/internal/service"
)

type testRunner struct {
	*Runner
	out   *bytes.Buffer
	sent  [][]string
	clock time.Time
}

func newTestRunner(t *testing.T) *testRunner {
	t.Helper()
	config := app.DefaultConfig()
	config.DataDir = t.TempDir()

	tr := &testRunner{
		out:   &bytes.Buffer{},
		clock: time.Date(2026, 10, 18, 8, 45, 0, 0, time.UTC),
	}
	tr.Runner = NewRunner(RunnerOpts{
		Config: config,
		Logger: app.NewLogger(io.Discard, "error"),
		Output: tr.out,
		Notifier: notify.NewNotifier().WithRunner(func(name string, args ...string) error {
			tr.sent = append(tr.sent, args)
			return nil
		}),
		Now: func() time.Time { return tr.clock },
	})
	t.Cleanup(func() { tr.Close() })
	return tr
}

func (tr *testRunner) run(t *testing.T, args ...string) {
	t.Helper()
	if err := newRootCommand(tr.Runner).Run(context.Background(), append([]string{"quadro"}, args...)); err != nil {
		t.Fatalf("quadro %s: %v", strings.Join(args, " "), err)
	}
}

// runErr runs a command that is expected to fail and returns its error
func (tr *testRunner) runErr(t *testing.T, args ...string) error {
	t.Helper()
	err := newRootCommand(tr.Runner).Run(context.Background(), append([]string{"quadro"}, args...))
	if err == nil {
		t.Fatalf("quadro %s: expected an error", strings.Join(args, " "))
	}
	return err
}

func (tr *testRunner) signUp(t *testing.T) {
	t.Helper()
	tr.run(t, "signup", "--email", "ana@example.com", "--password", "secret123", "--name", "Ana")
}

// roadmap creates a board with To Do and Doing columns and returns their ids
func (tr *testRunner) roadmap(t *testing.T) (boardID string, cols []model.Column) {
	t.Helper()
	tr.run(t, "board", "create", "--column", "To Do", "--column", "Doing", "Roadmap")

	ctx := context.Background()
	boards, err := tr.app.Services.Boards.List(ctx)
	if err != nil || len(boards) != 1 {
		t.Fatalf("boards = %v, %v", boards, err)
	}
	cols, err = tr.app.Services.Columns.List(ctx, boards[0].ID)
	if err != nil || len(cols) != 2 {
		t.Fatalf("columns = %v, %v", cols, err)
	}
	return boards[0].ID, cols
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})
			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})
			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("with nil clock uses time.Now", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})
			if runner.now == nil {
				t.Error("expected now to be set")
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		names := map[string]bool{}
		for _, cmd := range runner.register() {
			names[cmd.Name] = true
		}
		for _, want := range []string{"signin", "board", "card", "member", "note", "event", "remind"} {
			if !names[want] {
				t.Errorf("missing command %q", want)
			}
		}
	})

	t.Run("commands need a session", func(t *testing.T) {
		tr := newTestRunner(t)
		err := newRootCommand(tr.Runner).Run(context.Background(), []string{"quadro", "board", "list"})
		if err == nil {
			t.Fatal("expected an error when signed out")
		}
	})
}

func TestBoardCommands(t *testing.T) {
	t.Run("show prints columns and cards in order", func(t *testing.T) {
		tr := newTestRunner(t)
		tr.signUp(t)
		boardID, cols := tr.roadmap(t)
		tr.run(t, "card", "add", "--column", cols[0].ID, "Fix login @ana !high #auth due:tomorrow")
		tr.run(t, "card", "add", "--column", cols[0].ID, "Write docs")

		tr.out.Reset()
		tr.run(t, "board", "show", "--id", boardID, "--json")
		var view boardView
		if err := sonic.Unmarshal(tr.out.Bytes(), &view); err != nil {
			t.Fatalf("invalid JSON: %v\n%s", err, tr.out.String())
		}
		if view.Title != "Roadmap" || len(view.Columns) != 2 {
			t.Fatalf("view = %+v", view)
		}
		cards := view.Columns[0].Cards
		if len(cards) != 2 || cards[0].Title != "Fix login" || cards[1].Title != "Write docs" {
			t.Fatalf("cards = %+v", cards)
		}
		first := cards[0]
		if first.Priority != model.PriorityHigh {
			t.Errorf("priority = %s, want high", first.Priority)
		}
		if first.Assignee == nil || *first.Assignee != "ana" {
			t.Errorf("assignee = %v", first.Assignee)
		}
		if len(first.Tags) != 1 || first.Tags[0] != "auth" {
			t.Errorf("tags = %v", first.Tags)
		}
		if first.DueDate == nil || first.DueDate.Day() != 19 {
			t.Errorf("due = %v", first.DueDate)
		}
	})

	t.Run("card move renumbers both columns", func(t *testing.T) {
		tr := newTestRunner(t)
		tr.signUp(t)
		boardID, cols := tr.roadmap(t)
		tr.run(t, "card", "add", "--column", cols[0].ID, "A")
		tr.run(t, "card", "add", "--column", cols[0].ID, "B")

		ctx := context.Background()
		todo, _ := tr.app.Services.Cards.List(ctx, cols[0].ID)
		tr.run(t, "card", "move", "--board", boardID, "--id", todo[0].ID, "--column", cols[1].ID)

		todo, err := tr.app.Services.Cards.List(ctx, cols[0].ID)
		if err != nil {
			t.Fatal(err)
		}
		doing, err := tr.app.Services.Cards.List(ctx, cols[1].ID)
		if err != nil {
			t.Fatal(err)
		}
		if len(todo) != 1 || todo[0].Title != "B" || todo[0].OrderIndex != 0 {
			t.Errorf("to do = %+v", todo)
		}
		if len(doing) != 1 || doing[0].Title != "A" || doing[0].OrderIndex != 0 {
			t.Errorf("doing = %+v", doing)
		}
	})

	t.Run("card move to an index in the same column", func(t *testing.T) {
		tr := newTestRunner(t)
		tr.signUp(t)
		boardID, cols := tr.roadmap(t)
		for _, title := range []string{"A", "B", "C"} {
			tr.run(t, "card", "add", "--column", cols[0].ID, title)
		}

		ctx := context.Background()
		todo, _ := tr.app.Services.Cards.List(ctx, cols[0].ID)
		tr.run(t, "card", "move", "--board", boardID, "--id", todo[2].ID, "--column", cols[0].ID, "--index", "0")

		todo, _ = tr.app.Services.Cards.List(ctx, cols[0].ID)
		var got []string
		for _, c := range todo {
			got = append(got, c.Title)
		}
		if strings.Join(got, "") != "CAB" {
			t.Errorf("order = %v, want C A B", got)
		}
	})

	t.Run("delete with board closes the gap", func(t *testing.T) {
		tr := newTestRunner(t)
		tr.signUp(t)
		boardID, cols := tr.roadmap(t)
		tr.run(t, "card", "add", "--column", cols[0].ID, "A")
		tr.run(t, "card", "add", "--column", cols[0].ID, "B")

		ctx := context.Background()
		todo, _ := tr.app.Services.Cards.List(ctx, cols[0].ID)
		tr.run(t, "card", "delete", "--board", boardID, "--id", todo[0].ID)

		todo, _ = tr.app.Services.Cards.List(ctx, cols[0].ID)
		if len(todo) != 1 || todo[0].Title != "B" || todo[0].OrderIndex != 0 {
			t.Errorf("to do = %+v", todo)
		}
	})
}

func TestMemberInvite(t *testing.T) {
	tr := newTestRunner(t)
	tr.signUp(t)
	boardID, _ := tr.roadmap(t)

	tr.out.Reset()
	tr.run(t, "member", "invite", "--board", boardID, "--email", "nobody@example.com")
	if !strings.Contains(tr.out.String(), service.InviteUserNotFound) {
		t.Errorf("output = %q", tr.out.String())
	}

	err := newRootCommand(tr.Runner).Run(context.Background(),
		[]string{"quadro", "member", "invite", "--board", boardID, "--email", "x@example.com", "--role", "owner"})
	if err == nil {
		t.Error("expected owner to be rejected as an invite role")
	}
}

func TestNoteCommands(t *testing.T) {
	tr := newTestRunner(t)
	tr.signUp(t)
	tr.run(t, "note", "add", "--title", "Groceries", "milk, eggs")
	tr.run(t, "note", "add", "--title", "Ideas", "--folder", "work", "--tag", "later", "a kanban app")

	ctx := context.Background()
	notes, err := tr.app.Services.Notes.List(ctx, "")
	if err != nil || len(notes) != 2 {
		t.Fatalf("notes = %v, %v", notes, err)
	}
	var groceries model.Note
	for _, n := range notes {
		if n.Title == "Groceries" {
			groceries = n
		}
	}
	tr.run(t, "note", "pin", "--id", groceries.ID)

	tr.out.Reset()
	tr.run(t, "note", "list", "--json")
	var listed []model.Note
	if err := sonic.Unmarshal(tr.out.Bytes(), &listed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(listed) != 2 || listed[0].ID != groceries.ID || !listed[0].IsPinned {
		t.Errorf("pinned note should come first: %+v", listed)
	}

	inFolder, err := tr.app.Services.Notes.List(ctx, "work")
	if err != nil || len(inFolder) != 1 || inFolder[0].Title != "Ideas" {
		t.Errorf("work folder = %v, %v", inFolder, err)
	}
}

func TestRemind(t *testing.T) {
	t.Run("sends due event reminders once", func(t *testing.T) {
		tr := newTestRunner(t)
		tr.signUp(t)
		tr.run(t, "event", "add", "--start", "2026-10-18 09:00", "--remind", "30", "Standup")
		tr.run(t, "event", "add", "--start", "2026-10-20 09:00", "--remind", "30", "Retro")

		tr.run(t, "remind")
		if len(tr.sent) != 1 {
			t.Fatalf("sent %d notifications, want 1", len(tr.sent))
		}
		if args := strings.Join(tr.sent[0], " "); !strings.Contains(args, "Standup") {
			t.Errorf("args = %q", args)
		}

		tr.run(t, "remind")
		if len(tr.sent) != 1 {
			t.Errorf("reminder fired again: %d notifications", len(tr.sent))
		}
	})

	t.Run("dry run prints without sending", func(t *testing.T) {
		tr := newTestRunner(t)
		tr.signUp(t)
		_, cols := tr.roadmap(t)
		tr.run(t, "card", "add", "--column", cols[0].ID, "Ship it due:today")

		tr.out.Reset()
		tr.run(t, "remind", "--dry-run")
		if len(tr.sent) != 0 {
			t.Errorf("dry run sent %d notifications", len(tr.sent))
		}
		if !strings.Contains(tr.out.String(), "Ship it") {
			t.Errorf("output = %q", tr.out.String())
		}
	})
}

func TestCardEdit(t *testing.T) {
	tr := newTestRunner(t)
	tr.signUp(t)
	_, cols := tr.roadmap(t)
	tr.run(t, "card", "add", "--column", cols[0].ID, "Fix login @ana !high #auth")

	ctx := context.Background()
	cards, _ := tr.app.Services.Cards.List(ctx, cols[0].ID)
	id := cards[0].ID

	t.Run("text rewrites the card", func(t *testing.T) {
		tr.run(t, "card", "edit", "--id", id, `Fix signup !low due:"Dec 1"`)
		card, err := tr.app.Services.Cards.Get(ctx, id)
		if err != nil {
			t.Fatal(err)
		}
		if card.Title != "Fix signup" || card.Priority != model.PriorityLow {
			t.Errorf("card = %+v", card)
		}
		if card.Assignee != nil && *card.Assignee != "" {
			t.Errorf("assignee = %q, want cleared", *card.Assignee)
		}
		if len(card.Tags) != 0 {
			t.Errorf("tags = %v, want none", card.Tags)
		}
		if card.DueDate == nil || card.DueDate.Month() != time.December || card.DueDate.Day() != 1 {
			t.Errorf("due = %v", card.DueDate)
		}
	})

	t.Run("flags change single fields", func(t *testing.T) {
		tr.run(t, "card", "edit", "--id", id, "--description", "Steps to reproduce", "--tag", "ui", "--no-due")
		card, err := tr.app.Services.Cards.Get(ctx, id)
		if err != nil {
			t.Fatal(err)
		}
		if card.Title != "Fix signup" || card.Description != "Steps to reproduce" {
			t.Errorf("card = %+v", card)
		}
		if len(card.Tags) != 1 || card.Tags[0] != "ui" {
			t.Errorf("tags = %v", card.Tags)
		}
		if card.DueDate != nil {
			t.Errorf("due = %v, want cleared", card.DueDate)
		}
	})

	t.Run("nothing to change", func(t *testing.T) {
		tr.out.Reset()
		tr.run(t, "card", "edit", "--id", id)
		if !strings.Contains(tr.out.String(), "Nothing to change") {
			t.Errorf("output = %q", tr.out.String())
		}
	})

	t.Run("bad priority", func(t *testing.T) {
		tr.runErr(t, "card", "edit", "--id", id, "--priority", "urgent")
	})
}

func TestBoardSettingsCommands(t *testing.T) {
	tr := newTestRunner(t)
	tr.signUp(t)
	boardID, _ := tr.roadmap(t)
	ctx := context.Background()

	tr.run(t, "board", "rename", "--id", boardID, "Roadmap 2027")
	b, err := tr.app.Services.Boards.Get(ctx, boardID)
	if err != nil || b.Title != "Roadmap 2027" {
		t.Fatalf("board = %+v, %v", b, err)
	}

	tr.run(t, "board", "settings", "set", "--id", boardID,
		"--visibility", "team", "--comments", "--card-deletion", "--notify-mentions=false")

	tr.out.Reset()
	tr.run(t, "board", "settings", "show", "--id", boardID, "--json")
	var form model.BoardSettings
	if err := sonic.Unmarshal(tr.out.Bytes(), &form); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, tr.out.String())
	}
	if form.Title != "Roadmap 2027" || form.Visibility != model.VisibilityTeam || !form.AllowComments {
		t.Errorf("form = %+v", form)
	}
	if !form.Permissions.AllowCardDeletion || form.Notifications.Mentions || !form.Notifications.CardUpdates {
		t.Errorf("notifications = %+v, permissions = %+v", form.Notifications, form.Permissions)
	}

	tr.runErr(t, "board", "settings", "set", "--id", boardID, "--visibility", "secret")
}

func TestViewerCannotEdit(t *testing.T) {
	tr := newTestRunner(t)
	tr.signUp(t)
	boardID, cols := tr.roadmap(t)
	tr.run(t, "card", "add", "--column", cols[0].ID, "A")

	tr.run(t, "signup", "--email", "bo@example.com", "--password", "secret123", "--name", "Bo")
	tr.run(t, "signin", "--email", "ana@example.com", "--password", "secret123")
	tr.run(t, "member", "invite", "--board", boardID, "--email", "bo@example.com", "--role", "viewer")
	tr.run(t, "signin", "--email", "bo@example.com", "--password", "secret123")

	ctx := context.Background()
	cards, _ := tr.app.Services.Cards.List(ctx, cols[0].ID)
	for _, args := range [][]string{
		{"card", "add", "--column", cols[0].ID, "B"},
		{"card", "edit", "--id", cards[0].ID, "--title", "changed"},
		{"card", "move", "--board", boardID, "--id", cards[0].ID, "--column", cols[1].ID},
		{"card", "delete", "--id", cards[0].ID},
		{"column", "add", "--board", boardID, "Later"},
		{"board", "rename", "--id", boardID, "Mine"},
		{"board", "settings", "set", "--id", boardID, "--comments"},
	} {
		if err := tr.runErr(t, args...); !errors.Is(err, service.ErrForbidden) {
			t.Errorf("quadro %s: err = %v, want ErrForbidden", strings.Join(args, " "), err)
		}
	}

	cards, _ = tr.app.Services.Cards.List(ctx, cols[0].ID)
	if len(cards) != 1 || cards[0].Title != "A" {
		t.Errorf("cards changed: %+v", cards)
	}
}

func TestRemindSettings(t *testing.T) {
	t.Run("disabled notifications only list", func(t *testing.T) {
		tr := newTestRunner(t)
		tr.config.Notify.Enabled = false
		tr.signUp(t)
		tr.run(t, "event", "add", "--start", "2026-10-18 09:00", "--remind", "30", "Standup")

		tr.out.Reset()
		tr.run(t, "remind")
		if len(tr.sent) != 0 {
			t.Errorf("sent %d notifications while disabled", len(tr.sent))
		}
		if out := tr.out.String(); !strings.Contains(out, "disabled") || !strings.Contains(out, "Standup") {
			t.Errorf("output = %q", out)
		}
		tr.runErr(t, "remind", "--test")
	})

	t.Run("test notification", func(t *testing.T) {
		tr := newTestRunner(t)
		tr.signUp(t)
		tr.run(t, "remind", "--test")
		if len(tr.sent) != 1 || !strings.Contains(strings.Join(tr.sent[0], " "), "Notifications are working") {
			t.Errorf("sent = %v", tr.sent)
		}
	})
}
