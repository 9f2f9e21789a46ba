package main

import (
	"testing"
	"time"

	"github.com/dori/quadro/internal/model"
)

// Saturday
var parseNow = time.Date(2026, 10, 17, 10, 0, 0, 0, time.UTC)

func TestDropTarget(t *testing.T) {
	cards := []model.Card{{ID: "a"}, {ID: "b"}, {ID: "c"}}

	tests := []struct {
		name   string
		cardID string
		index  int
		want   string
	}{
		{name: "append", cardID: "x", index: -1, want: "col"},
		{name: "past the end appends", cardID: "x", index: 3, want: "col"},
		{name: "take a position", cardID: "x", index: 1, want: "b"},
		{name: "own card is skipped", cardID: "a", index: 0, want: "b"},
		{name: "last among others", cardID: "a", index: 2, want: "col"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := dropTarget(cards, tt.cardID, "col", tt.index); got != tt.want {
				t.Errorf("dropTarget = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseEventTime(t *testing.T) {
	got, dateOnly, err := parseEventTime("2026-10-20 14:30", parseNow)
	if err != nil || dateOnly || got.Hour() != 14 || got.Minute() != 30 {
		t.Errorf("got %v, %v, %v", got, dateOnly, err)
	}

	got, dateOnly, err = parseEventTime("tomorrow", parseNow)
	if err != nil || !dateOnly || got.Day() != 18 || got.Hour() != 0 {
		t.Errorf("got %v, %v, %v", got, dateOnly, err)
	}

	if _, _, err := parseEventTime("whenever", parseNow); err == nil {
		t.Error("expected an error")
	}
}
