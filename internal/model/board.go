package model

import (
	"time"
)

// Visibility controls who can see a board
type Visibility string

const (
	VisibilityPrivate Visibility = "private"
	VisibilityTeam    Visibility = "team"
	VisibilityPublic  Visibility = "public"
)

// ParseVisibility accepts private, team or public
func ParseVisibility(s string) (Visibility, bool) {
	switch v := Visibility(s); v {
	case VisibilityPrivate, VisibilityTeam, VisibilityPublic:
		return v, true
	}
	return "", false
}

// Board is the top-level container of columns and cards
type Board struct {
	ID              string     `json:"id"`
	UserID          string     `json:"user_id"`
	Title           string     `json:"title"`
	Description     string     `json:"description,omitempty"`
	Visibility      Visibility `json:"visibility,omitempty"`
	BackgroundColor string     `json:"background_color,omitempty"`
	AllowComments   bool       `json:"allow_comments"`
	AllowInvites    bool       `json:"allow_invites"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// EntityID implements store.Entity
func (b Board) EntityID() string { return b.ID }

// IsOwnedBy returns true if userID owns the board
func (b *Board) IsOwnedBy(userID string) bool {
	return userID != "" && b.UserID == userID
}

// BoardPatch is a partial board update
type BoardPatch struct {
	Title           *string
	Description     *string
	Visibility      *Visibility
	BackgroundColor *string
	AllowComments   *bool
	AllowInvites    *bool
}

// Apply merges the set fields into b
func (p BoardPatch) Apply(b *Board) {
	if p.Title != nil {
		b.Title = *p.Title
	}
	if p.Description != nil {
		b.Description = *p.Description
	}
	if p.Visibility != nil {
		b.Visibility = *p.Visibility
	}
	if p.BackgroundColor != nil {
		b.BackgroundColor = *p.BackgroundColor
	}
	if p.AllowComments != nil {
		b.AllowComments = *p.AllowComments
	}
	if p.AllowInvites != nil {
		b.AllowInvites = *p.AllowInvites
	}
}

// Row renders the patch as backend columns
func (p BoardPatch) Row() map[string]any {
	row := map[string]any{}
	if p.Title != nil {
		row["title"] = *p.Title
	}
	if p.Description != nil {
		row["description"] = *p.Description
	}
	if p.Visibility != nil {
		row["visibility"] = string(*p.Visibility)
	}
	if p.BackgroundColor != nil {
		row["background_color"] = *p.BackgroundColor
	}
	if p.AllowComments != nil {
		row["allow_comments"] = *p.AllowComments
	}
	if p.AllowInvites != nil {
		row["allow_invites"] = *p.AllowInvites
	}
	return row
}
