package notify

import (
	"sort"
	"time"

	"github.com/dori/quadro/internal/model"
)

// Reminder is a notification that is due at a point in time
type Reminder struct {
	Title   string
	At      time.Time
	Due     time.Time
	EventID string
	CardID  string
}

// DueEvents returns reminders for events whose reminder time has passed but
// whose start is still ahead of now or within grace of it.
func DueEvents(events []model.Event, now time.Time, grace time.Duration) []Reminder {
	var out []Reminder
	for _, e := range events {
		at, ok := e.ReminderAt()
		if !ok || at.After(now) {
			continue
		}
		if e.StartDate.Before(now.Add(-grace)) {
			continue
		}
		out = append(out, Reminder{Title: e.Title, At: at, Due: e.StartDate, EventID: e.ID})
	}
	sortReminders(out)
	return out
}

// DueCards returns reminders for cards due within window of now, including
// overdue cards no older than grace.
func DueCards(cards []model.Card, now time.Time, window, grace time.Duration) []Reminder {
	var out []Reminder
	for _, c := range cards {
		if c.DueDate == nil {
			continue
		}
		due := *c.DueDate
		if due.After(now.Add(window)) || due.Before(now.Add(-grace)) {
			continue
		}
		out = append(out, Reminder{Title: c.Title, At: due.Add(-window), Due: due, CardID: c.ID})
	}
	sortReminders(out)
	return out
}

func sortReminders(rs []Reminder) {
	sort.SliceStable(rs, func(i, j int) bool { return rs[i].Due.Before(rs[j].Due) })
}

// Deliver sends each reminder and returns those that were sent. It stops at
// the first failure.
func (n *Notifier) Deliver(rs []Reminder, now time.Time) ([]Reminder, error) {
	var sent []Reminder
	for _, r := range rs {
		var err error
		if r.EventID != "" {
			err = n.SendEventReminder(r.Title, r.Due.Sub(now))
		} else {
			err = n.SendDueReminder(r.Title, r.Due.Sub(now))
		}
		if err != nil {
			return sent, err
		}
		sent = append(sent, r)
	}
	return sent, nil
}
