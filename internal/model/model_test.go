package model

import (
	"testing"
	"time"
)

func TestPriorityNext(t *testing.T) {
	p := PriorityLow
	seen := []Priority{p}
	for i := 0; i < 3; i++ {
		p = p.Next()
		seen = append(seen, p)
	}
	want := []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityLow}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("step %d: expected %s, got %s", i, want[i], seen[i])
		}
	}

	if Priority("urgent").Next() != PriorityMedium {
		t.Error("unknown priority should cycle to medium")
	}
}

func TestCardPatch(t *testing.T) {
	due := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	card := Card{ID: "c1", ColumnID: "todo", Title: "Old", Priority: PriorityLow, DueDate: &due}

	title := "New"
	col := "doing"
	idx := 2
	p := CardPatch{Title: &title, ColumnID: &col, OrderIndex: &idx, ClearDue: true}
	p.Apply(&card)

	if card.Title != "New" || card.ColumnID != "doing" || card.OrderIndex != 2 {
		t.Errorf("patch not applied: %+v", card)
	}
	if card.DueDate != nil {
		t.Error("expected due date to be cleared")
	}
	if card.Priority != PriorityLow {
		t.Error("unset fields must be left untouched")
	}

	row := p.Row()
	if row["title"] != "New" || row["column_id"] != "doing" || row["order_index"] != 2 {
		t.Errorf("unexpected row: %v", row)
	}
	if v, ok := row["due_date"]; !ok || v != nil {
		t.Errorf("expected explicit null due_date, got %v (present=%v)", v, ok)
	}
	if _, ok := row["priority"]; ok {
		t.Error("unset priority must not be rendered")
	}
}

func TestEventReminderAt(t *testing.T) {
	start := time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)
	mins := 15
	e := Event{StartDate: start, ReminderMinutes: &mins, ReminderSet: true}

	at, ok := e.ReminderAt()
	if !ok {
		t.Fatal("expected a reminder")
	}
	if !at.Equal(start.Add(-15 * time.Minute)) {
		t.Errorf("unexpected reminder time %v", at)
	}

	e.ReminderSet = false
	if _, ok := e.ReminderAt(); ok {
		t.Error("reminder should be disabled")
	}
}

func TestRoles(t *testing.T) {
	if _, ok := ParseRole("owner"); ok {
		t.Error("owner is implicit and must not be invitable")
	}
	if r, ok := ParseRole("viewer"); !ok || r.CanEdit() {
		t.Error("viewer parses but cannot edit")
	}
	if !RoleAdmin.CanManageMembers() || RoleMember.CanManageMembers() {
		t.Error("only owners and admins manage members")
	}
}
