package model

import (
	"time"
)

// DefaultTagColor is applied when a tag is created without a color
const DefaultTagColor = "#3b82f6"

// Tag is a user-owned label that can be attached to cards and notes
type Tag struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Color     string    `json:"color,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EntityID implements store.Entity
func (t Tag) EntityID() string { return t.ID }

// DisplayName returns the tag name with # prefix if not already present
func (t *Tag) DisplayName() string {
	if len(t.Name) > 0 && t.Name[0] == '#' {
		return t.Name
	}
	return "#" + t.Name
}
