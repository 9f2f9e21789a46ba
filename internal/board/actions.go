package board

import (
	"context"
	"fmt"
	"time"

	"github.com/dori/quadro/internal/model"
	"github.com/dori/quadro/internal/service"
	"github.com/dori/quadro/internal/store"
)

// Actions are the non-drag board edits. Each one calls the backend first and
// updates the store only when the call succeeds.
type Actions struct {
	store  *store.Store
	svc    *service.Services
	loader *Loader
}

// NewActions builds the action set
func NewActions(st *store.Store, svc *service.Services) *Actions {
	return &Actions{store: st, svc: svc, loader: NewLoader(st, svc)}
}

// LoadBoards refreshes the board list
func (a *Actions) LoadBoards(ctx context.Context) error {
	boards, err := a.svc.Boards.List(ctx)
	if err != nil {
		return err
	}
	a.store.Boards.Set(boards)
	return nil
}

// OpenBoard selects a board and loads its columns and cards
func (a *Actions) OpenBoard(ctx context.Context, boardID string) error {
	a.store.SetSelectedBoard(boardID)
	return a.loader.Load(ctx, boardID)
}

// CreateBoard makes a board and selects it
func (a *Actions) CreateBoard(ctx context.Context, title string) (model.Board, error) {
	b, err := a.svc.Boards.Create(ctx, title, "")
	if err != nil {
		return model.Board{}, err
	}
	a.store.Boards.Upsert(b)
	a.store.SetSelectedBoard(b.ID)
	return b, nil
}

// DeleteBoard removes a board and clears the selection if it was selected
func (a *Actions) DeleteBoard(ctx context.Context, boardID string) error {
	if err := a.svc.Boards.Delete(ctx, boardID); err != nil {
		return err
	}
	for _, col := range a.store.ColumnsOf(boardID) {
		a.store.RemoveColumn(col.ID)
	}
	a.store.Boards.Remove(boardID)
	if a.store.SelectedBoard() == boardID {
		a.store.SetSelectedBoard("")
	}
	return nil
}

// RenameBoard changes a board's title
func (a *Actions) RenameBoard(ctx context.Context, boardID, title string) (model.Board, error) {
	b, err := a.svc.Boards.Update(ctx, boardID, model.BoardPatch{Title: &title})
	if err != nil {
		return model.Board{}, err
	}
	a.store.Boards.Upsert(b)
	return b, nil
}

// CreateColumn appends a column to the board
func (a *Actions) CreateColumn(ctx context.Context, boardID, title string) (model.Column, error) {
	col, err := a.svc.Columns.Create(ctx, boardID, title)
	if err != nil {
		return model.Column{}, err
	}
	a.store.Columns.Upsert(col)
	return col, nil
}

// RenameColumn changes a column's title
func (a *Actions) RenameColumn(ctx context.Context, columnID, title string) error {
	col, err := a.svc.Columns.Update(ctx, columnID, model.ColumnPatch{Title: &title})
	if err != nil {
		return err
	}
	a.store.Columns.Upsert(col)
	return nil
}

// DeleteColumn removes a column with its cards
func (a *Actions) DeleteColumn(ctx context.Context, columnID string) error {
	col, ok := a.store.Columns.Get(columnID)
	if err := a.svc.Columns.Delete(ctx, columnID); err != nil {
		return err
	}
	a.store.RemoveColumn(columnID)
	if !ok {
		return nil
	}
	return a.compactColumns(ctx, col.BoardID)
}

// MoveColumn reorders a column optimistically and persists the new order,
// reverting on failure
func (a *Actions) MoveColumn(ctx context.Context, columnID string, index int) error {
	m, ok := a.store.MoveColumn(columnID, index)
	if !ok || !m.Moved() {
		return nil
	}
	var changed []model.Column
	for _, pl := range m.Changed {
		if col, ok := a.store.Columns.Get(pl.ID); ok {
			changed = append(changed, col)
		}
	}
	if err := a.svc.Columns.Reorder(ctx, changed); err != nil {
		a.store.Columns.Revert(m)
		return fmt.Errorf("failed to reorder columns: %w", err)
	}
	return nil
}

// CreateCard appends a card to a column
func (a *Actions) CreateCard(ctx context.Context, columnID, title string) (model.Card, error) {
	card, err := a.svc.Cards.Create(ctx, model.Card{ColumnID: columnID, Title: title})
	if err != nil {
		return model.Card{}, err
	}
	a.store.Cards.Upsert(card)
	return card, nil
}

// QuickAddCard appends a card described in quick-add syntax
func (a *Actions) QuickAddCard(ctx context.Context, columnID, text string, now time.Time) (model.Card, error) {
	card, err := a.svc.Cards.Create(ctx, ParseQuick(text, now).Card(columnID))
	if err != nil {
		return model.Card{}, err
	}
	a.store.Cards.Upsert(card)
	return card, nil
}

// EditCard rewrites a card from quick-add syntax. Only the fields that differ
// are sent; an unchanged card makes no backend call.
func (a *Actions) EditCard(ctx context.Context, cardID, text string, now time.Time) (model.Card, error) {
	card, ok := a.store.FindCard(cardID)
	if !ok {
		var err error
		if card, err = a.svc.Cards.Get(ctx, cardID); err != nil {
			return model.Card{}, err
		}
	}
	q := ParseQuick(text, now)
	if q.Title == "" {
		return model.Card{}, service.ErrEmptyTitle
	}
	patch := q.Diff(card, now.Location())
	if patch == (model.CardPatch{}) {
		return card, nil
	}
	return a.UpdateCard(ctx, cardID, patch)
}

// UpdateCard applies patch remotely, then stores the returned card
func (a *Actions) UpdateCard(ctx context.Context, cardID string, patch model.CardPatch) (model.Card, error) {
	card, err := a.svc.Cards.Update(ctx, cardID, patch)
	if err != nil {
		return model.Card{}, err
	}
	a.store.Cards.Upsert(card)
	return card, nil
}

// CyclePriority advances a card's priority low -> medium -> high -> low
func (a *Actions) CyclePriority(ctx context.Context, cardID string) (model.Card, error) {
	card, ok := a.store.FindCard(cardID)
	if !ok {
		return model.Card{}, fmt.Errorf("card %s not found", cardID)
	}
	next := card.Priority.Next()
	return a.UpdateCard(ctx, cardID, model.CardPatch{Priority: &next})
}

// DeleteCard removes a card and closes the gap it leaves in its column
func (a *Actions) DeleteCard(ctx context.Context, cardID string) error {
	card, ok := a.store.FindCard(cardID)
	if err := a.svc.Cards.Delete(ctx, cardID); err != nil {
		return err
	}
	a.store.Cards.Remove(cardID)
	if !ok {
		return nil
	}
	return a.compactCards(ctx, card.ColumnID)
}

// compactCards renumbers a column's cards 0..n-1 and persists the changes
func (a *Actions) compactCards(ctx context.Context, columnID string) error {
	var changed []model.Card
	for i, c := range a.store.CardsOf(columnID) {
		if c.OrderIndex != i {
			idx := i
			a.store.Cards.Patch(c.ID, func(card *model.Card) { card.OrderIndex = idx })
			c.OrderIndex = i
			changed = append(changed, c)
		}
	}
	return a.svc.Cards.Reorder(ctx, changed)
}

// compactColumns renumbers a board's columns 0..n-1 and persists the changes
func (a *Actions) compactColumns(ctx context.Context, boardID string) error {
	var changed []model.Column
	for i, col := range a.store.ColumnsOf(boardID) {
		if col.OrderIndex != i {
			idx := i
			a.store.Columns.Patch(col.ID, func(c *model.Column) { c.OrderIndex = idx })
			col.OrderIndex = i
			changed = append(changed, col)
		}
	}
	return a.svc.Columns.Reorder(ctx, changed)
}
