package service

import (
	"context"

	"github.com/dori/quadro/internal/backend"
	"github.com/dori/quadro/internal/model"
)

// Columns manages the lists of a board
type Columns struct{ base }

// List returns a board's columns by order index
func (s *Columns) List(ctx context.Context, boardID string) ([]model.Column, error) {
	if _, err := s.session(ctx); err != nil {
		return nil, err
	}
	return list[model.Column](ctx, s.base,
		backend.From(backend.TableColumns).Eq("board_id", boardID).OrderBy("order_index", false))
}

// Get returns one column
func (s *Columns) Get(ctx context.Context, id string) (model.Column, error) {
	if _, err := s.session(ctx); err != nil {
		return model.Column{}, err
	}
	return get[model.Column](ctx, s.base, backend.From(backend.TableColumns).Eq("id", id))
}

// Create appends a column to a board
func (s *Columns) Create(ctx context.Context, boardID, name string) (model.Column, error) {
	if _, err := s.session(ctx); err != nil {
		return model.Column{}, err
	}
	name, err := title(name)
	if err != nil {
		return model.Column{}, err
	}
	n, err := s.count(ctx, backend.From(backend.TableColumns).Eq("board_id", boardID))
	if err != nil {
		return model.Column{}, err
	}
	return insert[model.Column](ctx, s.base, backend.TableColumns, backend.Row{
		"board_id":    boardID,
		"title":       name,
		"order_index": n,
	})
}

// Update applies patch to a column
func (s *Columns) Update(ctx context.Context, id string, patch model.ColumnPatch) (model.Column, error) {
	if _, err := s.session(ctx); err != nil {
		return model.Column{}, err
	}
	if patch.Title != nil {
		t, err := title(*patch.Title)
		if err != nil {
			return model.Column{}, err
		}
		patch.Title = &t
	}
	return update[model.Column](ctx, s.base, backend.TableColumns, id, patch.Row())
}

// Delete removes a column and its cards
func (s *Columns) Delete(ctx context.Context, id string) error {
	if _, err := s.session(ctx); err != nil {
		return err
	}
	return s.b.Delete(ctx, backend.TableColumns, id)
}

// Reorder persists the order index of every given column
func (s *Columns) Reorder(ctx context.Context, columns []model.Column) error {
	if _, err := s.session(ctx); err != nil {
		return err
	}
	patches := make([]backend.RowPatch, len(columns))
	for i, c := range columns {
		patches[i] = backend.RowPatch{ID: c.ID, Row: backend.Row{"order_index": c.OrderIndex}}
	}
	return s.updateAll(ctx, backend.TableColumns, patches)
}
