package model

import (
	"time"
)

// Note is a free-form text document
type Note struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Folder    *string   `json:"folder,omitempty"`
	Tags      []string  `json:"tags,omitempty"`
	IsPinned  bool      `json:"is_pinned"`
	IsPrivate bool      `json:"is_private"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EntityID implements store.Entity
func (n Note) EntityID() string { return n.ID }

// NotePatch is a partial note update
type NotePatch struct {
	Title     *string
	Content   *string
	Folder    *string
	Tags      *[]string
	IsPinned  *bool
	IsPrivate *bool
}

// Apply merges the set fields into n
func (p NotePatch) Apply(n *Note) {
	if p.Title != nil {
		n.Title = *p.Title
	}
	if p.Content != nil {
		n.Content = *p.Content
	}
	if p.Folder != nil {
		f := *p.Folder
		n.Folder = &f
	}
	if p.Tags != nil {
		n.Tags = append([]string(nil), (*p.Tags)...)
	}
	if p.IsPinned != nil {
		n.IsPinned = *p.IsPinned
	}
	if p.IsPrivate != nil {
		n.IsPrivate = *p.IsPrivate
	}
}

// Row renders the patch as backend columns
func (p NotePatch) Row() map[string]any {
	row := map[string]any{}
	if p.Title != nil {
		row["title"] = *p.Title
	}
	if p.Content != nil {
		row["content"] = *p.Content
	}
	if p.Folder != nil {
		row["folder"] = *p.Folder
	}
	if p.Tags != nil {
		row["tags"] = *p.Tags
	}
	if p.IsPinned != nil {
		row["is_pinned"] = *p.IsPinned
	}
	if p.IsPrivate != nil {
		row["is_private"] = *p.IsPrivate
	}
	return row
}
