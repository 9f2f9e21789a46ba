package model

import (
	"time"
)

// Priority represents card priority level
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Next cycles low -> medium -> high -> low
func (p Priority) Next() Priority {
	switch p {
	case PriorityLow:
		return PriorityMedium
	case PriorityMedium:
		return PriorityHigh
	case PriorityHigh:
		return PriorityLow
	default:
		return PriorityMedium
	}
}

// Valid reports whether p is a known priority
func (p Priority) Valid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// ParsePriority maps loose user input to a priority
func ParsePriority(s string) (Priority, bool) {
	switch s {
	case "low", "l":
		return PriorityLow, true
	case "medium", "med", "m":
		return PriorityMedium, true
	case "high", "hi", "h":
		return PriorityHigh, true
	}
	return "", false
}

// Card is a single work item in a column
type Card struct {
	ID          string     `json:"id"`
	ColumnID    string     `json:"column_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Assignee    *string    `json:"assignee,omitempty"`
	Priority    Priority   `json:"priority"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
	OrderIndex  int        `json:"order_index"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// EntityID implements store.Entity
func (c Card) EntityID() string { return c.ID }

// IsOverdue returns true if the card is past its due date
func (c *Card) IsOverdue(now time.Time) bool {
	if c.DueDate == nil {
		return false
	}
	return now.After(*c.DueDate)
}

// PriorityWeight returns a numeric weight for sorting by priority
func (c *Card) PriorityWeight() int {
	switch c.Priority {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 2
	}
}

// HasTag reports whether the card carries tag
func (c *Card) HasTag(tag string) bool {
	for _, t := range c.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// CardPatch is a partial card update. A nil field is left untouched.
type CardPatch struct {
	Title       *string
	Description *string
	ColumnID    *string
	OrderIndex  *int
	Priority    *Priority
	Assignee    *string
	DueDate     *time.Time
	ClearDue    bool
	Tags        *[]string
}

// Apply merges the set fields into c
func (p CardPatch) Apply(c *Card) {
	if p.Title != nil {
		c.Title = *p.Title
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
	if p.ColumnID != nil {
		c.ColumnID = *p.ColumnID
	}
	if p.OrderIndex != nil {
		c.OrderIndex = *p.OrderIndex
	}
	if p.Priority != nil {
		c.Priority = *p.Priority
	}
	if p.Assignee != nil {
		a := *p.Assignee
		c.Assignee = &a
	}
	if p.ClearDue {
		c.DueDate = nil
	} else if p.DueDate != nil {
		d := *p.DueDate
		c.DueDate = &d
	}
	if p.Tags != nil {
		c.Tags = append([]string(nil), (*p.Tags)...)
	}
}

// Row renders the patch as backend columns
func (p CardPatch) Row() map[string]any {
	row := map[string]any{}
	if p.Title != nil {
		row["title"] = *p.Title
	}
	if p.Description != nil {
		row["description"] = *p.Description
	}
	if p.ColumnID != nil {
		row["column_id"] = *p.ColumnID
	}
	if p.OrderIndex != nil {
		row["order_index"] = *p.OrderIndex
	}
	if p.Priority != nil {
		row["priority"] = string(*p.Priority)
	}
	if p.Assignee != nil {
		row["assignee"] = *p.Assignee
	}
	if p.ClearDue {
		row["due_date"] = nil
	} else if p.DueDate != nil {
		row["due_date"] = p.DueDate.UTC().Format(time.RFC3339)
	}
	if p.Tags != nil {
		row["tags"] = *p.Tags
	}
	return row
}
