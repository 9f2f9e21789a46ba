package model

import (
	"time"
)

// Column is an ordered list of cards within a board
type Column struct {
	ID         string    `json:"id"`
	BoardID    string    `json:"board_id"`
	Title      string    `json:"title"`
	OrderIndex int       `json:"order_index"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// EntityID implements store.Entity
func (c Column) EntityID() string { return c.ID }

// ColumnPatch is a partial column update
type ColumnPatch struct {
	Title      *string
	OrderIndex *int
}

// Apply merges the set fields into c
func (p ColumnPatch) Apply(c *Column) {
	if p.Title != nil {
		c.Title = *p.Title
	}
	if p.OrderIndex != nil {
		c.OrderIndex = *p.OrderIndex
	}
}

// Row renders the patch as backend columns
func (p ColumnPatch) Row() map[string]any {
	row := map[string]any{}
	if p.Title != nil {
		row["title"] = *p.Title
	}
	if p.OrderIndex != nil {
		row["order_index"] = *p.OrderIndex
	}
	return row
}
