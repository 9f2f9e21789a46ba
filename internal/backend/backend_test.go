package backend

import (
	"errors"
	"testing"
	"time"
)

type decoded struct {
	ID       string     `json:"id"`
	Count    int        `json:"count"`
	Done     bool       `json:"done"`
	Tags     []string   `json:"tags"`
	Due      *time.Time `json:"due"`
	Optional *string    `json:"optional"`
}

func TestDecode(t *testing.T) {
	row := Row{
		"id":       "abc",
		"count":    3,
		"done":     true,
		"tags":     []any{"a", "b"},
		"due":      "2026-01-02T03:04:05Z",
		"optional": nil,
		"extra":    "ignored",
	}

	v, err := Decode[decoded](row)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if v.ID != "abc" || v.Count != 3 || !v.Done || len(v.Tags) != 2 {
		t.Errorf("unexpected value: %+v", v)
	}
	if v.Due == nil || v.Due.Year() != 2026 {
		t.Errorf("expected due date to be parsed, got %v", v.Due)
	}
	if v.Optional != nil {
		t.Error("expected nil optional")
	}
}

func TestQueryBuilderDoesNotAlias(t *testing.T) {
	base := From(TableCards).Eq("column_id", "a")
	left := base.Eq("priority", "high")
	right := base.Eq("priority", "low")

	if len(base.Filters) != 1 {
		t.Fatalf("base query was mutated: %v", base.Filters)
	}
	if left.Filters[1].Value != "high" || right.Filters[1].Value != "low" {
		t.Errorf("derived queries share storage: %v / %v", left.Filters, right.Filters)
	}
}

func TestWrapKeepsSentinels(t *testing.T) {
	err := Wrap("update", TableCards, ErrNotFound)
	if !errors.Is(err, ErrNotFound) {
		t.Error("expected ErrNotFound to match through Wrap")
	}

	var be *Error
	if !errors.As(err, &be) || be.Table != TableCards {
		t.Errorf("expected *Error with table, got %v", err)
	}

	remote := &Error{Op: "select", Message: "permission denied", Code: "42501"}
	if Wrap("other", "x", remote) != remote {
		t.Error("existing *Error should pass through unchanged")
	}
}

func TestAuthHub(t *testing.T) {
	var hub AuthHub
	var got []AuthEvent
	unsub := hub.Subscribe(func(e AuthEvent, s *Session) { got = append(got, e) })

	hub.Emit(EventSignedIn, &Session{UserID: "u"})
	unsub()
	hub.Emit(EventSignedOut, nil)

	if len(got) != 1 || got[0] != EventSignedIn {
		t.Errorf("expected only the first event, got %v", got)
	}
}
