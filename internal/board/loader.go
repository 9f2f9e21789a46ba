package board

import (
	"context"
	"fmt"

	"github.com/dori/quadro/internal/service"
	"github.com/dori/quadro/internal/store"
)

// Loader replaces a board's columns and cards in the store with the backend's
type Loader struct {
	store   *store.Store
	columns *service.Columns
	cards   *service.Cards
}

// NewLoader builds a loader
func NewLoader(st *store.Store, svc *service.Services) *Loader {
	return &Loader{store: st, columns: svc.Columns, cards: svc.Cards}
}

// Load fetches the board's columns, then all their cards, and overwrites the
// store's copy. Columns that disappeared remotely lose their cards locally.
func (l *Loader) Load(ctx context.Context, boardID string) error {
	cols, err := l.columns.List(ctx, boardID)
	if err != nil {
		return fmt.Errorf("failed to load columns: %w", err)
	}

	ids := make([]string, len(cols))
	for i, col := range cols {
		ids[i] = col.ID
	}
	cards, err := l.cards.List(ctx, ids...)
	if err != nil {
		return fmt.Errorf("failed to load cards: %w", err)
	}

	parents := ids
	for _, col := range l.store.ColumnsOf(boardID) {
		parents = append(parents, col.ID)
	}
	l.store.Columns.Set(boardID, cols)
	l.store.Cards.Replace(parents, cards)
	return nil
}
