package board

import (
	"slices"
	"strings"
	"time"

	"github.com/dori/quadro/internal/model"
)

// Quick is a card described by one line of text:
//
//	Fix login @ana !high #auth due:friday
//	Ship release due:"jan 2"
//
// Double quotes group words. A quoted word is always part of the title.
type Quick struct {
	Title    string
	Priority model.Priority
	Assignee *string
	Tags     []string
	DueDate  *time.Time
}

type token struct {
	text   string
	quoted bool
}

// tokenize splits on spaces outside double quotes and drops the quotes
func tokenize(s string) []token {
	var (
		out     []token
		cur     strings.Builder
		inQuote bool
		started bool
		leading bool
	)
	flush := func() {
		if started {
			out = append(out, token{text: cur.String(), quoted: leading})
		}
		cur.Reset()
		started, leading = false, false
	}
	for _, r := range s {
		switch {
		case r == '"':
			if !started {
				leading = true
			}
			started = true
			inQuote = !inQuote
		case !inQuote && (r == ' ' || r == '\t' || r == '\n'):
			flush()
		default:
			started = true
			cur.WriteRune(r)
		}
	}
	flush()
	return out
}

// ParseQuick reads quick-add text. Words it cannot interpret stay in the
// title; priority defaults to medium.
func ParseQuick(text string, now time.Time) Quick {
	q := Quick{Priority: model.PriorityMedium}

	var title []string
	for _, tok := range tokenize(text) {
		if tok.quoted || !q.take(tok.text, now) {
			if tok.text != "" {
				title = append(title, tok.text)
			}
		}
	}
	q.Title = strings.Join(title, " ")
	return q
}

// take applies word to q if it is a marker and reports whether it was
func (q *Quick) take(word string, now time.Time) bool {
	lower := strings.ToLower(word)
	switch {
	case strings.HasPrefix(word, "#") && len(word) > 1:
		q.Tags = append(q.Tags, word[1:])
	case strings.HasPrefix(word, "@") && len(word) > 1:
		a := word[1:]
		q.Assignee = &a
	case strings.HasPrefix(word, "!"):
		p, ok := model.ParsePriority(lower[1:])
		if !ok {
			return false
		}
		q.Priority = p
	case strings.HasPrefix(lower, "due:"):
		d := ParseDate(word[len("due:"):], now)
		if d == nil {
			return false
		}
		q.DueDate = d
	default:
		return false
	}
	return true
}

// marker reports whether word would be read as something other than title
func marker(word string, now time.Time) bool {
	var q Quick
	return q.take(word, now)
}

// ParseDate understands today, tomorrow, nextweek, weekday names and a few
// absolute layouts ("2026-10-17", "10/17/2026", "Oct 17", "Oct 17, 2026").
// Every date resolves to the end of that day in now's location.
func ParseDate(s string, now time.Time) *time.Time {
	s = strings.TrimSpace(s)
	loc := now.Location()
	endOf := func(t time.Time) *time.Time {
		d := time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, loc)
		return &d
	}
	today := *endOf(now)

	lower := strings.ToLower(s)
	switch lower {
	case "today":
		return &today
	case "tomorrow", "tom":
		return endOf(today.AddDate(0, 0, 1))
	case "nextweek":
		return endOf(today.AddDate(0, 0, 7))
	}
	if day, ok := weekdays[lower]; ok {
		n := int(day - today.Weekday())
		if n <= 0 {
			n += 7
		}
		return endOf(today.AddDate(0, 0, n))
	}

	for _, layout := range []string{"2006-01-02", "01/02/2006", "Jan 2, 2006", "Jan 2 2006"} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return endOf(t)
		}
	}
	if t, err := time.ParseInLocation("Jan 2", s, loc); err == nil {
		return endOf(time.Date(now.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc))
	}
	return nil
}

var weekdays = map[string]time.Weekday{
	"monday": time.Monday, "mon": time.Monday,
	"tuesday": time.Tuesday, "tue": time.Tuesday,
	"wednesday": time.Wednesday, "wed": time.Wednesday,
	"thursday": time.Thursday, "thu": time.Thursday,
	"friday": time.Friday, "fri": time.Friday,
	"saturday": time.Saturday, "sat": time.Saturday,
	"sunday": time.Sunday, "sun": time.Sunday,
}

// Card builds a new card for columnID from q
func (q Quick) Card(columnID string) model.Card {
	return model.Card{
		ColumnID: columnID,
		Title:    q.Title,
		Priority: q.Priority,
		Assignee: q.Assignee,
		Tags:     q.Tags,
		DueDate:  q.DueDate,
	}
}

// Diff returns the patch that turns card into what q describes. Title,
// priority, assignee, tags and due date are replaced; a due date on the same
// calendar day in loc counts as unchanged.
func (q Quick) Diff(card model.Card, loc *time.Location) model.CardPatch {
	var p model.CardPatch
	if q.Title != card.Title {
		title := q.Title
		p.Title = &title
	}
	if q.Priority != card.Priority {
		prio := q.Priority
		p.Priority = &prio
	}
	if want, have := deref(q.Assignee), deref(card.Assignee); want != have {
		p.Assignee = &want
	}
	if !slices.Equal(q.Tags, card.Tags) && (len(q.Tags) > 0 || len(card.Tags) > 0) {
		tags := append([]string{}, q.Tags...)
		p.Tags = &tags
	}
	switch {
	case q.DueDate == nil && card.DueDate != nil:
		p.ClearDue = true
	case q.DueDate != nil && (card.DueDate == nil || !sameDay(*q.DueDate, *card.DueDate, loc)):
		due := *q.DueDate
		p.DueDate = &due
	}
	return p
}

// FormatQuick renders card in quick-add syntax, so ParseQuick gives it back.
// Title words that look like markers are quoted.
func FormatQuick(card model.Card, now time.Time) string {
	var parts []string
	for _, w := range strings.Fields(card.Title) {
		if marker(w, now) {
			w = `"` + w + `"`
		}
		parts = append(parts, w)
	}
	if card.Priority.Valid() && card.Priority != model.PriorityMedium {
		parts = append(parts, "!"+string(card.Priority))
	}
	if a := deref(card.Assignee); a != "" {
		parts = append(parts, "@"+a)
	}
	for _, tag := range card.Tags {
		parts = append(parts, "#"+tag)
	}
	if card.DueDate != nil {
		parts = append(parts, "due:"+card.DueDate.In(now.Location()).Format("2006-01-02"))
	}
	return strings.Join(parts, " ")
}

// FormatDue renders a due date relative to now
func FormatDue(t, now time.Time) string {
	t = t.In(now.Location())
	if sameDay(t, now, now.Location()) {
		return "today"
	}
	if sameDay(t, now.AddDate(0, 0, 1), now.Location()) {
		return "tomorrow"
	}
	if t.Year() == now.Year() {
		return t.Format("Mon, Jan 2")
	}
	return t.Format("Jan 2, 2006")
}

func sameDay(a, b time.Time, loc *time.Location) bool {
	a, b = a.In(loc), b.In(loc)
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
