package service

import (
	"context"
	"time"

	"github.com/dori/quadro/internal/backend"
	"github.com/dori/quadro/internal/model"
)

// Events manages calendar events
type Events struct{ base }

// List returns the user's events starting within [from, to], earliest first.
// A zero bound is left open.
func (s *Events) List(ctx context.Context, from, to time.Time) ([]model.Event, error) {
	sess, err := s.session(ctx)
	if err != nil {
		return nil, err
	}
	q := backend.From(backend.TableEvents).Eq("user_id", sess.UserID).OrderBy("start_date", false)
	if !from.IsZero() {
		q = q.Gte("start_date", from.UTC())
	}
	if !to.IsZero() {
		q = q.Lte("start_date", to.UTC())
	}
	return list[model.Event](ctx, s.base, q)
}

// Create stores an event. Color defaults to model.DefaultEventColor.
func (s *Events) Create(ctx context.Context, e model.Event) (model.Event, error) {
	sess, err := s.session(ctx)
	if err != nil {
		return model.Event{}, err
	}
	name, err := title(e.Title)
	if err != nil {
		return model.Event{}, err
	}
	return insert[model.Event](ctx, s.base, backend.TableEvents, eventRow(sess.UserID, name, e))
}

// Update replaces an event's editable fields
func (s *Events) Update(ctx context.Context, e model.Event) (model.Event, error) {
	sess, err := s.session(ctx)
	if err != nil {
		return model.Event{}, err
	}
	name, err := title(e.Title)
	if err != nil {
		return model.Event{}, err
	}
	row := eventRow(sess.UserID, name, e)
	delete(row, "user_id")
	return update[model.Event](ctx, s.base, backend.TableEvents, e.ID, row)
}

// Delete removes an event
func (s *Events) Delete(ctx context.Context, id string) error {
	if _, err := s.session(ctx); err != nil {
		return err
	}
	return s.b.Delete(ctx, backend.TableEvents, id)
}

// MarkReminded clears an event's reminder flag once it has fired
func (s *Events) MarkReminded(ctx context.Context, id string) error {
	if _, err := s.session(ctx); err != nil {
		return err
	}
	_, err := s.b.Update(ctx, backend.TableEvents, id, backend.Row{"reminder_set": false})
	return err
}

func eventRow(userID, name string, e model.Event) backend.Row {
	color := e.Color
	if color == "" {
		color = model.DefaultEventColor
	}
	row := backend.Row{
		"user_id":      userID,
		"title":        name,
		"description":  e.Description,
		"start_date":   e.StartDate.UTC(),
		"end_date":     nil,
		"all_day":      e.AllDay,
		"color":        color,
		"reminder_set": e.ReminderSet,
	}
	if e.EndDate != nil {
		row["end_date"] = e.EndDate.UTC()
	}
	if e.ReminderMinutes != nil {
		row["reminder_minutes"] = *e.ReminderMinutes
	}
	return row
}
