package board

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dori/quadro/internal/model"
	"github.com/dori/quadro/internal/service"
)

// Saturday
var quickNow = time.Date(2026, 10, 17, 10, 0, 0, 0, time.UTC)

func TestParseQuick(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		title    string
		priority model.Priority
		assignee string
		tags     []string
		dueDay   int
	}{
		{name: "plain title", input: "Write docs", title: "Write docs", priority: model.PriorityMedium},
		{name: "priority", input: "Fix bug !high", title: "Fix bug", priority: model.PriorityHigh},
		{name: "short priority", input: "!l Tidy up", title: "Tidy up", priority: model.PriorityLow},
		{name: "unknown priority stays in title", input: "Wow !!", title: "Wow !!", priority: model.PriorityMedium},
		{name: "assignee and tags", input: "Review @sam #api #urgent", title: "Review", priority: model.PriorityMedium,
			assignee: "sam", tags: []string{"api", "urgent"}},
		{name: "due tomorrow", input: "Ship due:tomorrow", title: "Ship", priority: model.PriorityMedium, dueDay: 18},
		{name: "due weekday", input: "Demo due:fri", title: "Demo", priority: model.PriorityMedium, dueDay: 23},
		{name: "quoted month and day", input: `Launch due:"Dec 1"`, title: "Launch", priority: model.PriorityMedium, dueDay: 1},
		{name: "quoted full date", input: `Audit due:"jan 5, 2027"`, title: "Audit", priority: model.PriorityMedium, dueDay: 5},
		{name: "bad due stays in title", input: "Plan due:someday", title: "Plan due:someday", priority: model.PriorityMedium},
		{name: "quoted marker is title", input: `Fix "#12" crash`, title: "Fix #12 crash", priority: model.PriorityMedium},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseQuick(tt.input, quickNow)
			if got.Title != tt.title {
				t.Errorf("title = %q, want %q", got.Title, tt.title)
			}
			if got.Priority != tt.priority {
				t.Errorf("priority = %s, want %s", got.Priority, tt.priority)
			}
			if tt.assignee == "" && got.Assignee != nil {
				t.Errorf("assignee = %q, want none", *got.Assignee)
			}
			if tt.assignee != "" && (got.Assignee == nil || *got.Assignee != tt.assignee) {
				t.Errorf("assignee = %v, want %q", got.Assignee, tt.assignee)
			}
			if len(got.Tags) != len(tt.tags) {
				t.Fatalf("tags = %v, want %v", got.Tags, tt.tags)
			}
			for i := range tt.tags {
				if got.Tags[i] != tt.tags[i] {
					t.Errorf("tags = %v, want %v", got.Tags, tt.tags)
				}
			}
			switch {
			case tt.dueDay == 0 && got.DueDate != nil:
				t.Errorf("due = %v, want none", got.DueDate)
			case tt.dueDay != 0 && (got.DueDate == nil || got.DueDate.Day() != tt.dueDay):
				t.Errorf("due = %v, want day %d", got.DueDate, tt.dueDay)
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	endOfDay := func(t *testing.T, got *time.Time, y int, m time.Month, d int) {
		t.Helper()
		want := time.Date(y, m, d, 23, 59, 59, 0, time.UTC)
		if got == nil || !got.Equal(want) {
			t.Errorf("got %v, want %v", got, want)
		}
	}

	t.Run("relative dates end the day", func(t *testing.T) {
		endOfDay(t, ParseDate("today", quickNow), 2026, time.October, 17)
	})
	t.Run("same weekday means next week", func(t *testing.T) {
		endOfDay(t, ParseDate("saturday", quickNow), 2026, time.October, 24)
	})
	t.Run("iso date ends the day", func(t *testing.T) {
		endOfDay(t, ParseDate("2026-12-01", quickNow), 2026, time.December, 1)
	})
	t.Run("us date ends the day", func(t *testing.T) {
		endOfDay(t, ParseDate("12/01/2026", quickNow), 2026, time.December, 1)
	})
	t.Run("month and day take this year", func(t *testing.T) {
		endOfDay(t, ParseDate("Dec 1", quickNow), 2026, time.December, 1)
	})
	t.Run("month names ignore case", func(t *testing.T) {
		endOfDay(t, ParseDate("dec 1, 2027", quickNow), 2027, time.December, 1)
	})
	t.Run("garbage", func(t *testing.T) {
		if got := ParseDate("later", quickNow); got != nil {
			t.Errorf("later = %v, want nil", got)
		}
	})
}

func TestFormatDue(t *testing.T) {
	if got := FormatDue(quickNow.Add(2*time.Hour), quickNow); got != "today" {
		t.Errorf("got %q, want today", got)
	}
	if got := FormatDue(quickNow.AddDate(0, 0, 1), quickNow); got != "tomorrow" {
		t.Errorf("got %q, want tomorrow", got)
	}
	if got := FormatDue(time.Date(2027, 1, 5, 0, 0, 0, 0, time.UTC), quickNow); got != "Jan 5, 2027" {
		t.Errorf("got %q", got)
	}
}

func TestFormatQuick(t *testing.T) {
	ana := "ana"
	due := time.Date(2026, 10, 20, 23, 59, 59, 0, time.UTC)
	card := model.Card{
		Title:    "Fix #12 now",
		Priority: model.PriorityHigh,
		Assignee: &ana,
		Tags:     []string{"api"},
		DueDate:  &due,
	}

	text := FormatQuick(card, quickNow)
	if want := `Fix "#12" now !high @ana #api due:2026-10-20`; text != want {
		t.Errorf("FormatQuick = %q, want %q", text, want)
	}
	if p := ParseQuick(text, quickNow).Diff(card, time.UTC); p != (model.CardPatch{}) {
		t.Errorf("reparsed text changes the card: %+v", p)
	}
}

func TestQuickDiff(t *testing.T) {
	ana := "ana"
	due := time.Date(2026, 10, 20, 9, 0, 0, 0, time.UTC)
	card := model.Card{Title: "Ship", Priority: model.PriorityHigh, Assignee: &ana, Tags: []string{"x"}, DueDate: &due}

	p := ParseQuick("Ship it", quickNow).Diff(card, time.UTC)
	if p.Title == nil || *p.Title != "Ship it" {
		t.Errorf("title = %v", p.Title)
	}
	if p.Priority == nil || *p.Priority != model.PriorityMedium {
		t.Errorf("priority = %v", p.Priority)
	}
	if p.Assignee == nil || *p.Assignee != "" {
		t.Errorf("assignee = %v, want cleared", p.Assignee)
	}
	if p.Tags == nil || len(*p.Tags) != 0 {
		t.Errorf("tags = %v, want cleared", p.Tags)
	}
	if !p.ClearDue {
		t.Error("due date should be cleared")
	}

	// Same day keeps the stored time
	p = ParseQuick("Ship !high @ana #x due:2026-10-20", quickNow).Diff(card, time.UTC)
	if p != (model.CardPatch{}) {
		t.Errorf("patch = %+v, want empty", p)
	}
}

func TestEditCard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	card, err := f.actions.EditCard(ctx, f.c1.ID, "C1 renamed !high @bo #ops due:tomorrow", quickNow)
	if err != nil {
		t.Fatalf("EditCard failed: %v", err)
	}
	if card.Title != "C1 renamed" || card.Priority != model.PriorityHigh || card.DueDate == nil {
		t.Errorf("card = %+v", card)
	}
	remote, _ := f.svc.Cards.Get(ctx, f.c1.ID)
	if remote.Title != "C1 renamed" || len(remote.Tags) != 1 || remote.Tags[0] != "ops" {
		t.Errorf("remote = %+v", remote)
	}
	if local, _ := f.st.FindCard(f.c1.ID); local.Title != "C1 renamed" {
		t.Errorf("store title = %q", local.Title)
	}

	before := f.b.Calls()
	if _, err := f.actions.EditCard(ctx, f.c1.ID, FormatQuick(card, quickNow), quickNow); err != nil {
		t.Fatalf("unchanged EditCard failed: %v", err)
	}
	if f.b.Calls() != before {
		t.Error("unchanged edit reached the backend")
	}

	if _, err := f.actions.EditCard(ctx, f.c1.ID, "!low", quickNow); !errors.Is(err, service.ErrEmptyTitle) {
		t.Errorf("title-less edit err = %v", err)
	}
}

func TestQuickAddCard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	card, err := f.actions.QuickAddCard(ctx, f.doing.ID, "Deploy !h #ops", quickNow)
	if err != nil {
		t.Fatalf("QuickAddCard failed: %v", err)
	}
	if card.Title != "Deploy" || card.Priority != model.PriorityHigh || !contains(f.st.CardsOf(f.doing.ID), card.ID) {
		t.Errorf("card = %+v", card)
	}
}
