package service

import (
	"context"

	"github.com/dori/quadro/internal/backend"
	"github.com/dori/quadro/internal/model"
)

// Cards manages the cards of columns
type Cards struct{ base }

// List returns the cards of the given columns by order index
func (s *Cards) List(ctx context.Context, columnIDs ...string) ([]model.Card, error) {
	if _, err := s.session(ctx); err != nil {
		return nil, err
	}
	return list[model.Card](ctx, s.base,
		backend.From(backend.TableCards).In("column_id", backend.Strings(columnIDs)...).OrderBy("order_index", false))
}

// Get returns one card
func (s *Cards) Get(ctx context.Context, id string) (model.Card, error) {
	if _, err := s.session(ctx); err != nil {
		return model.Card{}, err
	}
	return get[model.Card](ctx, s.base, backend.From(backend.TableCards).Eq("id", id))
}

// Create appends c to the end of c.ColumnID. Priority defaults to medium.
func (s *Cards) Create(ctx context.Context, c model.Card) (model.Card, error) {
	if _, err := s.session(ctx); err != nil {
		return model.Card{}, err
	}
	name, err := title(c.Title)
	if err != nil {
		return model.Card{}, err
	}
	n, err := s.count(ctx, backend.From(backend.TableCards).Eq("column_id", c.ColumnID))
	if err != nil {
		return model.Card{}, err
	}

	priority := c.Priority
	if !priority.Valid() {
		priority = model.PriorityMedium
	}
	row := backend.Row{
		"column_id":   c.ColumnID,
		"title":       name,
		"description": c.Description,
		"priority":    string(priority),
		"order_index": n,
	}
	if c.Assignee != nil {
		row["assignee"] = *c.Assignee
	}
	if c.DueDate != nil {
		row["due_date"] = c.DueDate.UTC()
	}
	if len(c.Tags) > 0 {
		row["tags"] = c.Tags
	}
	return insert[model.Card](ctx, s.base, backend.TableCards, row)
}

// Update applies patch to a card
func (s *Cards) Update(ctx context.Context, id string, patch model.CardPatch) (model.Card, error) {
	if _, err := s.session(ctx); err != nil {
		return model.Card{}, err
	}
	if patch.Title != nil {
		t, err := title(*patch.Title)
		if err != nil {
			return model.Card{}, err
		}
		patch.Title = &t
	}
	return update[model.Card](ctx, s.base, backend.TableCards, id, patch.Row())
}

// Move persists a card's column and order index
func (s *Cards) Move(ctx context.Context, id, columnID string, index int) (model.Card, error) {
	return s.Update(ctx, id, model.CardPatch{ColumnID: &columnID, OrderIndex: &index})
}

// Reorder persists column and order index for every given card, as one
// atomic batch on backends that support it
func (s *Cards) Reorder(ctx context.Context, cards []model.Card) error {
	if _, err := s.session(ctx); err != nil {
		return err
	}
	patches := make([]backend.RowPatch, len(cards))
	for i, c := range cards {
		patches[i] = backend.RowPatch{ID: c.ID, Row: backend.Row{
			"column_id":   c.ColumnID,
			"order_index": c.OrderIndex,
		}}
	}
	return s.updateAll(ctx, backend.TableCards, patches)
}

// Delete removes a card
func (s *Cards) Delete(ctx context.Context, id string) error {
	if _, err := s.session(ctx); err != nil {
		return err
	}
	return s.b.Delete(ctx, backend.TableCards, id)
}
