package notify

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/dori/quadro/internal/model"
)

type call struct {
	name string
	args []string
}

func recorder(calls *[]call, err error) Runner {
	return func(name string, args ...string) error {
		*calls = append(*calls, call{name, args})
		return err
	}
}

func TestArgs(t *testing.T) {
	got := Args(Notification{
		Title:   "Standup",
		Body:    "Starts in 10m0s",
		Urgency: UrgencyCritical,
		Timeout: 2 * time.Second,
		Icon:    "alarm",
	})
	want := []string{"-u", "critical", "-t", "2000", "-i", "alarm", "-a", "quadro", "Standup", "Starts in 10m0s"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Args = %v, want %v", got, want)
	}

	got = Args(Notification{Title: "Hi"})
	want = []string{"-u", "normal", "-a", "quadro", "Hi"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Args = %v, want %v", got, want)
	}

	got = Args(Notification{Title: "Hi", Urgency: UrgencyLow})
	want = []string{"-u", "low", "-a", "quadro", "Hi"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Args = %v, want %v", got, want)
	}
}

func TestSendDisabled(t *testing.T) {
	var calls []call
	n := NewNotifier().WithRunner(recorder(&calls, nil))
	n.SetEnabled(false)
	if err := n.SendSimple("a", "b"); err != nil {
		t.Fatal(err)
	}
	if len(calls) != 0 {
		t.Errorf("disabled notifier ran %d commands", len(calls))
	}
}

func TestDueEvents(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	ten := 10
	events := []model.Event{
		{ID: "soon", Title: "Standup", StartDate: now.Add(5 * time.Minute), ReminderSet: true, ReminderMinutes: &ten},
		{ID: "later", Title: "Lunch", StartDate: now.Add(3 * time.Hour), ReminderSet: true, ReminderMinutes: &ten},
		{ID: "off", Title: "Gym", StartDate: now.Add(5 * time.Minute), ReminderMinutes: &ten},
		{ID: "past", Title: "Yesterday", StartDate: now.Add(-24 * time.Hour), ReminderSet: true, ReminderMinutes: &ten},
	}

	got := DueEvents(events, now, time.Hour)
	if len(got) != 1 || got[0].EventID != "soon" {
		t.Fatalf("DueEvents = %+v, want only soon", got)
	}
}

func TestDueCards(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	at := func(d time.Duration) *time.Time { v := now.Add(d); return &v }
	cards := []model.Card{
		{ID: "b", Title: "Later today", DueDate: at(2 * time.Hour)},
		{ID: "a", Title: "Overdue", DueDate: at(-time.Hour)},
		{ID: "c", Title: "Next week", DueDate: at(7 * 24 * time.Hour)},
		{ID: "d", Title: "No date"},
		{ID: "e", Title: "Ancient", DueDate: at(-72 * time.Hour)},
	}

	got := DueCards(cards, now, 24*time.Hour, 24*time.Hour)
	if len(got) != 2 || got[0].CardID != "a" || got[1].CardID != "b" {
		t.Fatalf("DueCards = %+v, want a then b", got)
	}
}

func TestDeliver(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	rs := []Reminder{
		{Title: "Standup", Due: now.Add(10 * time.Minute), EventID: "e1"},
		{Title: "Ship it", Due: now.Add(-time.Minute), CardID: "c1"},
	}

	var calls []call
	n := NewNotifier().WithRunner(recorder(&calls, nil))
	sent, err := n.Deliver(rs, now)
	if err != nil {
		t.Fatal(err)
	}
	if len(sent) != 2 || len(calls) != 2 {
		t.Fatalf("sent %d, ran %d", len(sent), len(calls))
	}
	if calls[0].name != "notify-send" {
		t.Errorf("command = %q", calls[0].name)
	}
	last := calls[1].args
	if last[1] != "critical" || last[len(last)-1] != "Card is now overdue!" {
		t.Errorf("overdue card args = %v", last)
	}

	calls = nil
	n = NewNotifier().WithRunner(recorder(&calls, errors.New("no display")))
	sent, err = n.Deliver(rs, now)
	if err == nil || len(sent) != 0 || len(calls) != 1 {
		t.Errorf("Deliver with failing runner: sent=%d calls=%d err=%v", len(sent), len(calls), err)
	}
}
