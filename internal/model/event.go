package model

import (
	"time"
)

// DefaultEventColor is applied when an event is created without a color
const DefaultEventColor = "#3b82f6"

// Event is a calendar entry
type Event struct {
	ID              string     `json:"id"`
	UserID          string     `json:"user_id"`
	Title           string     `json:"title"`
	Description     string     `json:"description,omitempty"`
	StartDate       time.Time  `json:"start_date"`
	EndDate         *time.Time `json:"end_date,omitempty"`
	AllDay          bool       `json:"all_day"`
	Color           string     `json:"color,omitempty"`
	ReminderMinutes *int       `json:"reminder_minutes,omitempty"`
	ReminderSet     bool       `json:"reminder_set"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// EntityID implements store.Entity
func (e Event) EntityID() string { return e.ID }

// Duration returns the event length; zero when there is no end date
func (e *Event) Duration() time.Duration {
	if e.EndDate == nil {
		return 0
	}
	return e.EndDate.Sub(e.StartDate)
}

// ReminderAt returns when a reminder should fire, if one is set
func (e *Event) ReminderAt() (time.Time, bool) {
	if !e.ReminderSet || e.ReminderMinutes == nil {
		return time.Time{}, false
	}
	return e.StartDate.Add(-time.Duration(*e.ReminderMinutes) * time.Minute), true
}
