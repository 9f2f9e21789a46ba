// Package board runs the card drag gesture against the store: optimistic
// moves while dragging, a remote commit on drop, and precise rollback plus a
// reload when the commit fails.
package board

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/dori/quadro/internal/model"
	"github.com/dori/quadro/internal/service"
	"github.com/dori/quadro/internal/store"
)

// ErrNotDragging is returned when a drag event arrives without a picked card
var ErrNotDragging = errors.New("no card is being dragged")

// Controller owns the drag state of one board view
type Controller struct {
	store  *store.Store
	cards  *service.Cards
	loader *Loader
	log    *log.Logger

	// ReloadOnFailure reloads the board after a failed commit
	ReloadOnFailure bool

	mu   sync.Mutex
	drag *gesture
	seq  map[string]int
}

// gesture is one pick-up to drop
type gesture struct {
	cardID string
	origin store.Slot
	moves  []store.Move
}

// Pending is a dropped move waiting for the backend
type Pending struct {
	CardID string
	From   store.Slot
	To     store.Slot
	// Cards holds every card whose column or order index changed, as it is now
	Cards []model.Card

	seq int
}

// NewController builds a controller. logger may be nil.
func NewController(st *store.Store, svc *service.Services, logger *log.Logger) *Controller {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Controller{
		store:           st,
		cards:           svc.Cards,
		loader:          NewLoader(st, svc),
		log:             logger,
		ReloadOnFailure: true,
		seq:             make(map[string]int),
	}
}

// Loader returns the loader used for rollback-by-reload
func (c *Controller) Loader() *Loader {
	return c.loader
}

// Dragging returns the id of the picked card, if any
func (c *Controller) Dragging() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.drag == nil {
		return "", false
	}
	return c.drag.cardID, true
}

// DragStart picks a card up. A gesture already in progress is cancelled first.
func (c *Controller) DragStart(cardID string) error {
	c.Cancel()

	card, ok := c.store.FindCard(cardID)
	if !ok {
		return fmt.Errorf("card %s not found", cardID)
	}
	index := 0
	for i, sib := range c.store.CardsOf(card.ColumnID) {
		if sib.ID == cardID {
			index = i
			break
		}
	}

	c.mu.Lock()
	c.seq[cardID]++
	c.drag = &gesture{cardID: cardID, origin: store.Slot{ParentID: card.ColumnID, Index: index}}
	c.mu.Unlock()
	return nil
}

// DragOver moves the picked card over overID, which is a column (append at
// its end) or a card (take that card's position). The store changes now.
func (c *Controller) DragOver(overID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.drag == nil {
		return ErrNotDragging
	}
	if overID == "" || overID == c.drag.cardID {
		return nil
	}

	dest, index, ok := c.target(overID)
	if !ok {
		return fmt.Errorf("unknown drop target %s", overID)
	}
	m, ok := c.store.MoveCard(c.drag.cardID, dest, index)
	if !ok {
		return fmt.Errorf("card %s not found", c.drag.cardID)
	}
	if m.Moved() {
		c.drag.moves = append(c.drag.moves, m)
	}
	return nil
}

// target resolves overID into a column and index
func (c *Controller) target(overID string) (string, int, bool) {
	if over, ok := c.store.FindCard(overID); ok {
		for i, sib := range c.store.CardsOf(over.ColumnID) {
			if sib.ID == overID {
				return over.ColumnID, i, true
			}
		}
	}
	if col, ok := c.store.Columns.Get(overID); ok {
		n := c.store.Cards.Len(col.ID)
		if cur, found := c.store.FindCard(c.drag.cardID); found && cur.ColumnID == col.ID {
			n--
		}
		return col.ID, n, true
	}
	return "", 0, false
}

// Drop ends the gesture over overID. It returns nil when the card ended where
// it started. An empty overID cancels.
func (c *Controller) Drop(overID string) (*Pending, error) {
	if overID == "" {
		c.Cancel()
		return nil, nil
	}
	if err := c.DragOver(overID); err != nil {
		c.Cancel()
		return nil, err
	}

	c.mu.Lock()
	g := c.drag
	c.drag = nil
	seq := c.seq[g.cardID]
	c.mu.Unlock()

	card, ok := c.store.FindCard(g.cardID)
	if !ok {
		return nil, fmt.Errorf("card %s not found", g.cardID)
	}
	to := store.Slot{ParentID: card.ColumnID}
	for i, sib := range c.store.CardsOf(card.ColumnID) {
		if sib.ID == g.cardID {
			to.Index = i
			break
		}
	}
	if to == g.origin {
		return nil, nil
	}

	return &Pending{
		CardID: g.cardID,
		From:   g.origin,
		To:     to,
		Cards:  c.changed(g.moves),
		seq:    seq,
	}, nil
}

// changed lists the current state of every card whose placement differs
// from where it stood before the first move
func (c *Controller) changed(moves []store.Move) []model.Card {
	initial := make(map[string]store.Placement)
	var order []string
	for _, m := range moves {
		for _, pl := range m.Before {
			if _, seen := initial[pl.ID]; !seen {
				initial[pl.ID] = pl
				order = append(order, pl.ID)
			}
		}
	}

	var out []model.Card
	for _, id := range order {
		card, ok := c.store.FindCard(id)
		if !ok {
			continue
		}
		was := initial[id]
		if card.ColumnID != was.ParentID || card.OrderIndex != was.OrderIndex {
			out = append(out, card)
		}
	}
	return out
}

// Cancel reverts the drag-over moves of the current gesture, if any
func (c *Controller) Cancel() {
	c.mu.Lock()
	g := c.drag
	c.drag = nil
	c.mu.Unlock()
	if g == nil {
		return
	}
	for i := len(g.moves) - 1; i >= 0; i-- {
		c.store.RevertMove(g.moves[i])
	}
}

// Commit persists the moved card's new column and index together with its
// renumbered siblings as one reorder
func (c *Controller) Commit(ctx context.Context, p *Pending) error {
	cards := []model.Card{{ID: p.CardID, ColumnID: p.To.ParentID, OrderIndex: p.To.Index}}
	for _, card := range p.Cards {
		if card.ID != p.CardID {
			cards = append(cards, card)
		}
	}
	if err := c.cards.Reorder(ctx, cards); err != nil {
		return fmt.Errorf("failed to move card: %w", err)
	}
	return nil
}

// Rollback puts the dragged card back at its origin slot unless it has been
// picked up again since. Siblings are renumbered around it; their columns
// are left alone so later committed moves survive.
// It reports whether the revert was applied.
func (c *Controller) Rollback(p *Pending) bool {
	c.mu.Lock()
	stale := c.seq[p.CardID] != p.seq
	c.mu.Unlock()
	if stale {
		return false
	}
	_, ok := c.store.MoveCard(p.CardID, p.From.ParentID, p.From.Index)
	return ok
}

// Fail handles a failed commit: precise rollback, then a reload of the
// board when ReloadOnFailure is set
func (c *Controller) Fail(ctx context.Context, boardID string, p *Pending, cause error) error {
	reverted := c.Rollback(p)
	c.log.Error("card move failed", "card", p.CardID, "from", p.From.ParentID, "to", p.To.ParentID,
		"reverted", reverted, "err", cause)
	if !c.ReloadOnFailure {
		return nil
	}
	if err := c.loader.Load(ctx, boardID); err != nil {
		c.log.Error("board reload failed", "board", boardID, "err", err)
		return err
	}
	return nil
}

// DragEnd drops over overID and commits, rolling back on failure.
// The returned error is the commit failure joined with any reload failure.
func (c *Controller) DragEnd(ctx context.Context, boardID, overID string) error {
	p, err := c.Drop(overID)
	if err != nil || p == nil {
		return err
	}
	if err := c.Commit(ctx, p); err != nil {
		return errors.Join(err, c.Fail(ctx, boardID, p, err))
	}
	c.log.Debug("card moved", "card", p.CardID, "column", p.To.ParentID, "index", p.To.Index)
	return nil
}
