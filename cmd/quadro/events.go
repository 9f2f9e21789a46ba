package main

import (
	"context"
	"fmt"
	"time"

	"github.com/dori/quadro/internal/board"
	"github.com/dori/quadro/internal/model"
	"github.com/dori/quadro/internal/notify"
	"github.com/dori/quadro/internal/service"
	"github.com/urfave/cli/v3"
)

// parseEventTime reads "2006-01-02 15:04", or a date alone (any form
// board.ParseDate understands) which means that whole day
func parseEventTime(s string, now time.Time) (t time.Time, dateOnly bool, err error) {
	if t, err := time.ParseInLocation("2006-01-02 15:04", s, now.Location()); err == nil {
		return t, false, nil
	}
	d := board.ParseDate(s, now)
	if d == nil {
		return time.Time{}, false, fmt.Errorf("cannot parse date %q", s)
	}
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, now.Location()), true, nil
}

// EventList prints events in a date range
func (r *Runner) EventList(ctx context.Context, cmd *cli.Command) error {
	now := r.now()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if s := cmd.String("from"); s != "" {
		t, _, err := parseEventTime(s, now)
		if err != nil {
			return err
		}
		from = t
	}
	to := from.AddDate(0, 0, 30)
	if s := cmd.String("to"); s != "" {
		t, dateOnly, err := parseEventTime(s, now)
		if err != nil {
			return err
		}
		if dateOnly {
			t = t.AddDate(0, 0, 1).Add(-time.Second)
		}
		to = t
	}
	if to.Before(from) {
		return fmt.Errorf("--to is before --from")
	}

	a, ctx, cancel, err := r.session(ctx, cmd)
	if err != nil {
		return err
	}
	defer cancel()

	events, err := a.Services.Events.List(ctx, from, to)
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		return r.writeJSON(events)
	}

	r.writePlainHeader(fmt.Sprintf("Events %s to %s", from.Format("Jan 2"), to.Format("Jan 2")))
	for _, e := range events {
		start := e.StartDate.In(now.Location())
		when := start.Format("Mon Jan 2 15:04")
		if e.AllDay {
			when = start.Format("Mon Jan 2") + " (all day)"
		} else if d := e.Duration(); d > 0 {
			when += fmt.Sprintf(" (%s)", d)
		}
		r.writePlain("%s  %s  %s\n", when, e.Title, e.ID)
	}
	return nil
}

// EventAdd stores an event
func (r *Runner) EventAdd(ctx context.Context, cmd *cli.Command) error {
	name, err := argText(cmd, "event title")
	if err != nil {
		return err
	}
	start, dateOnly, err := parseEventTime(cmd.String("start"), r.now())
	if err != nil {
		return err
	}

	e := model.Event{
		Title:       name,
		Description: cmd.String("description"),
		StartDate:   start,
		AllDay:      cmd.Bool("all-day") || dateOnly,
		Color:       cmd.String("color"),
	}
	if d := cmd.Duration("duration"); d > 0 {
		end := start.Add(d)
		e.EndDate = &end
	}
	if m := int(cmd.Int("remind")); m >= 0 {
		e.ReminderMinutes = &m
		e.ReminderSet = true
	}

	a, ctx, cancel, err := r.session(ctx, cmd)
	if err != nil {
		return err
	}
	defer cancel()

	e, err = a.Services.Events.Create(ctx, e)
	if err != nil {
		return err
	}
	return r.writePlain("Created event %s (%s)\n", e.Title, e.ID)
}

// Remind sends desktop notifications for events whose reminder time has come
// and for cards due soon. Sent event reminders are cleared so they fire once.
// With notifications disabled the reminders are only listed.
func (r *Runner) Remind(ctx context.Context, cmd *cli.Command) error {
	a, ctx, cancel, err := r.session(ctx, cmd)
	if err != nil {
		return err
	}
	defer cancel()

	if cmd.Bool("test") {
		if !a.Notifier.IsEnabled() {
			return fmt.Errorf("notifications are disabled in the config")
		}
		if err := a.Notifier.SendSimple("quadro", "Notifications are working"); err != nil {
			return fmt.Errorf("failed to send test notification: %w", err)
		}
		return r.writePlain("Test notification sent\n")
	}

	now := r.now()
	grace := cmd.Duration("grace")
	events, err := a.Services.Events.List(ctx, now.Add(-grace), time.Time{})
	if err != nil {
		return err
	}
	cards, err := visibleCards(ctx, a.Services)
	if err != nil {
		return err
	}

	reminders := append(notify.DueEvents(events, now, grace), notify.DueCards(cards, now, cmd.Duration("window"), grace)...)
	if !a.Notifier.IsEnabled() {
		r.writePlain("Notifications are disabled; %d reminder(s) due\n", len(reminders))
	}
	if cmd.Bool("dry-run") || !a.Notifier.IsEnabled() {
		for _, rem := range reminders {
			r.writePlain("%s  %s\n", rem.Due.In(now.Location()).Format("Mon Jan 2 15:04"), rem.Title)
		}
		return nil
	}

	sent, err := a.Notifier.Deliver(reminders, now)
	for _, rem := range sent {
		if rem.EventID == "" {
			continue
		}
		if merr := a.Services.Events.MarkReminded(ctx, rem.EventID); merr != nil {
			a.Logger.Warn("failed to clear reminder", "event", rem.EventID, "err", merr)
		}
	}
	if err != nil {
		return fmt.Errorf("failed to send reminder: %w", err)
	}
	return r.writePlain("Sent %d reminder(s)\n", len(sent))
}

// visibleCards gathers the cards of every board the user can see
func visibleCards(ctx context.Context, svc *service.Services) ([]model.Card, error) {
	boards, err := svc.Boards.List(ctx)
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, b := range boards {
		cols, err := svc.Columns.List(ctx, b.ID)
		if err != nil {
			return nil, err
		}
		for _, c := range cols {
			ids = append(ids, c.ID)
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return svc.Cards.List(ctx, ids...)
}
