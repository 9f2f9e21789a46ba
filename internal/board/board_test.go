package board

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/dori/quadro/internal/backend"
	"github.com/dori/quadro/internal/db"
	"github.com/dori/quadro/internal/model"
	"github.com/dori/quadro/internal/service"
	"github.com/dori/quadro/internal/store"
)

var (
	errNetwork = errors.New("network unreachable")
	errTimeout = errors.New("read timed out")
)

// flakyBackend fails writes on demand and counts calls
type flakyBackend struct {
	backend.Backend
	mu         sync.Mutex
	failWrites bool
	failReads  bool
	calls      int
}

func (f *flakyBackend) setFail(v bool) {
	f.mu.Lock()
	f.failWrites = v
	f.mu.Unlock()
}

func (f *flakyBackend) count() (fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.failWrites
}

func (f *flakyBackend) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *flakyBackend) setFailReads(v bool) {
	f.mu.Lock()
	f.failReads = v
	f.mu.Unlock()
}

func (f *flakyBackend) Select(ctx context.Context, q backend.Query) ([]backend.Row, error) {
	f.count()
	f.mu.Lock()
	fail := f.failReads
	f.mu.Unlock()
	if fail {
		return nil, &backend.Error{Op: "select", Table: q.Table, Err: errTimeout}
	}
	return f.Backend.Select(ctx, q)
}

func (f *flakyBackend) Insert(ctx context.Context, table string, row backend.Row) (backend.Row, error) {
	if f.count() {
		return nil, &backend.Error{Op: "insert", Table: table, Err: errNetwork}
	}
	return f.Backend.Insert(ctx, table, row)
}

func (f *flakyBackend) Update(ctx context.Context, table, id string, row backend.Row) (backend.Row, error) {
	if f.count() {
		return nil, &backend.Error{Op: "update", Table: table, Err: errNetwork}
	}
	return f.Backend.Update(ctx, table, id, row)
}

type fixture struct {
	db      *db.DB
	b       *flakyBackend
	svc     *service.Services
	st      *store.Store
	ctrl    *Controller
	actions *Actions

	board model.Board
	todo  model.Column
	doing model.Column
	done  model.Column
	c1    model.Card
	c2    model.Card
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	d, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	if _, err := d.SignUp(ctx, "ana@example.com", "secret123", "Ana"); err != nil {
		t.Fatalf("SignUp failed: %v", err)
	}

	f := &fixture{db: d, b: &flakyBackend{Backend: d}, st: store.New()}
	f.svc = service.New(f.b)
	f.ctrl = NewController(f.st, f.svc, nil)
	f.actions = NewActions(f.st, f.svc)

	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("setup failed: %v", err)
		}
	}
	f.board, err = f.svc.Boards.Create(ctx, "Board", "")
	must(err)
	f.todo, err = f.svc.Columns.Create(ctx, f.board.ID, "To Do")
	must(err)
	f.doing, err = f.svc.Columns.Create(ctx, f.board.ID, "Doing")
	must(err)
	f.done, err = f.svc.Columns.Create(ctx, f.board.ID, "Done")
	must(err)
	f.c1, err = f.svc.Cards.Create(ctx, model.Card{ColumnID: f.todo.ID, Title: "C1"})
	must(err)
	f.c2, err = f.svc.Cards.Create(ctx, model.Card{ColumnID: f.todo.ID, Title: "C2"})
	must(err)

	must(f.actions.OpenBoard(ctx, f.board.ID))
	return f
}

func cardIDs(cards []model.Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.ID
	}
	return out
}

func contains(cards []model.Card, id string) bool {
	for _, c := range cards {
		if c.ID == id {
			return true
		}
	}
	return false
}

func TestLoadFillsStore(t *testing.T) {
	f := newFixture(t)

	cols := f.st.ColumnsOf(f.board.ID)
	if len(cols) != 3 || cols[0].Title != "To Do" || cols[2].Title != "Done" {
		t.Fatalf("columns = %v", cols)
	}
	if got := cardIDs(f.st.CardsOf(f.todo.ID)); len(got) != 2 || got[0] != f.c1.ID {
		t.Errorf("to do = %v", got)
	}
	if f.st.SelectedBoard() != f.board.ID {
		t.Errorf("selected board = %q", f.st.SelectedBoard())
	}
}

func TestDragIsOptimistic(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if err := f.ctrl.DragStart(f.c1.ID); err != nil {
		t.Fatalf("DragStart failed: %v", err)
	}
	if err := f.ctrl.DragOver(f.doing.ID); err != nil {
		t.Fatalf("DragOver failed: %v", err)
	}

	// Visible before any remote call
	before := f.b.Calls()
	if !contains(f.st.CardsOf(f.doing.ID), f.c1.ID) || contains(f.st.CardsOf(f.todo.ID), f.c1.ID) {
		t.Fatal("drag-over did not move the card in the store")
	}

	p, err := f.ctrl.Drop(f.doing.ID)
	if err != nil || p == nil {
		t.Fatalf("Drop = %v, %v", p, err)
	}
	if f.b.Calls() != before {
		t.Error("drop made backend calls before commit")
	}
	if p.From.ParentID != f.todo.ID || p.To.ParentID != f.doing.ID {
		t.Errorf("pending = %+v", p)
	}

	if err := f.ctrl.Commit(ctx, p); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	remote, err := f.svc.Cards.Get(ctx, f.c1.ID)
	if err != nil || remote.ColumnID != f.doing.ID {
		t.Errorf("remote card = %+v, %v", remote, err)
	}
	// Sibling left behind was renumbered remotely
	sib, _ := f.svc.Cards.Get(ctx, f.c2.ID)
	if sib.OrderIndex != 0 {
		t.Errorf("c2 remote order = %d, want 0", sib.OrderIndex)
	}
}

func TestFailedDragRollsBackAndReloads(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Someone else adds a card the store has not seen
	other, err := f.db.Insert(ctx, backend.TableCards, backend.Row{"column_id": f.done.ID, "title": "remote", "order_index": 0})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	f.b.setFail(true)
	if err := f.ctrl.DragStart(f.c1.ID); err != nil {
		t.Fatalf("DragStart failed: %v", err)
	}
	err = f.ctrl.DragEnd(ctx, f.board.ID, f.doing.ID)
	if !errors.Is(err, errNetwork) {
		t.Fatalf("DragEnd err = %v, want network error", err)
	}

	if got := cardIDs(f.st.CardsOf(f.todo.ID)); len(got) != 2 || got[0] != f.c1.ID || got[1] != f.c2.ID {
		t.Errorf("to do after rollback = %v", got)
	}
	if len(f.st.CardsOf(f.doing.ID)) != 0 {
		t.Errorf("doing after rollback = %v", cardIDs(f.st.CardsOf(f.doing.ID)))
	}
	if !contains(f.st.CardsOf(f.done.ID), other["id"].(string)) {
		t.Error("reload did not bring in the remote state")
	}
}

func TestReloadOverwritesOptimisticState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.ctrl.DragStart(f.c1.ID)
	p, _ := f.ctrl.Drop(f.done.ID)
	if p == nil {
		t.Fatal("expected pending move")
	}
	// Remote moved the card somewhere else in the meantime
	if _, err := f.db.Update(ctx, backend.TableCards, f.c1.ID, backend.Row{"column_id": f.doing.ID}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if err := f.ctrl.Fail(ctx, f.board.ID, p, errNetwork); err != nil {
		t.Fatalf("Fail failed: %v", err)
	}
	if !contains(f.st.CardsOf(f.doing.ID), f.c1.ID) {
		t.Error("store does not match remote after reload")
	}
	if contains(f.st.CardsOf(f.todo.ID), f.c1.ID) || contains(f.st.CardsOf(f.done.ID), f.c1.ID) {
		t.Error("card present in more than one column")
	}
}

func TestStaleRollbackIsSkipped(t *testing.T) {
	f := newFixture(t)

	f.ctrl.DragStart(f.c1.ID)
	first, _ := f.ctrl.Drop(f.doing.ID)

	f.ctrl.DragStart(f.c1.ID)
	second, _ := f.ctrl.Drop(f.done.ID)
	if first == nil || second == nil {
		t.Fatal("expected two pending moves")
	}

	if f.ctrl.Rollback(first) {
		t.Error("stale failure reverted a newer move")
	}
	card, _ := f.st.FindCard(f.c1.ID)
	if card.ColumnID != f.done.ID {
		t.Errorf("card in %s, want done", card.ColumnID)
	}

	if !f.ctrl.Rollback(second) {
		t.Error("latest failure was not reverted")
	}
	card, _ = f.st.FindCard(f.c1.ID)
	if card.ColumnID != f.doing.ID {
		t.Errorf("card in %s, want doing", card.ColumnID)
	}
}

func TestRollbackKeepsLaterMoves(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.ctrl.ReloadOnFailure = false

	// c1 is dropped but its commit is still in flight
	f.ctrl.DragStart(f.c1.ID)
	slow, _ := f.ctrl.Drop(f.doing.ID)
	if slow == nil {
		t.Fatal("expected pending move")
	}

	// c2 moves and commits while c1 waits
	f.ctrl.DragStart(f.c2.ID)
	if err := f.ctrl.DragEnd(ctx, f.board.ID, f.done.ID); err != nil {
		t.Fatalf("DragEnd failed: %v", err)
	}

	if err := f.ctrl.Fail(ctx, f.board.ID, slow, errNetwork); err != nil {
		t.Fatalf("Fail failed: %v", err)
	}

	if got := cardIDs(f.st.CardsOf(f.todo.ID)); len(got) != 1 || got[0] != f.c1.ID {
		t.Errorf("to do after rollback = %v", got)
	}
	if got := cardIDs(f.st.CardsOf(f.done.ID)); len(got) != 1 || got[0] != f.c2.ID {
		t.Errorf("done after rollback = %v, committed move was undone", got)
	}
	remote, err := f.svc.Cards.List(ctx, f.done.ID)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(remote) != 1 || remote[0].ID != f.c2.ID {
		t.Errorf("remote done = %v", cardIDs(remote))
	}
	if card, _ := f.st.FindCard(f.c1.ID); card.OrderIndex != 0 {
		t.Errorf("c1 order = %d, want 0", card.OrderIndex)
	}
}

func TestDragEndReportsReloadFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.b.setFail(true)
	f.b.setFailReads(true)
	f.ctrl.DragStart(f.c1.ID)
	err := f.ctrl.DragEnd(ctx, f.board.ID, f.doing.ID)
	if !errors.Is(err, errNetwork) {
		t.Errorf("DragEnd err = %v, want commit failure", err)
	}
	if !errors.Is(err, errTimeout) {
		t.Errorf("DragEnd err = %v, want reload failure", err)
	}
	if !contains(f.st.CardsOf(f.todo.ID), f.c1.ID) {
		t.Error("card not rolled back")
	}
}

func TestCancelRevertsDragOver(t *testing.T) {
	f := newFixture(t)

	f.ctrl.DragStart(f.c1.ID)
	f.ctrl.DragOver(f.doing.ID)
	f.ctrl.DragOver(f.done.ID)
	p, err := f.ctrl.Drop("")
	if err != nil || p != nil {
		t.Fatalf("Drop(\"\") = %v, %v", p, err)
	}

	if got := cardIDs(f.st.CardsOf(f.todo.ID)); len(got) != 2 || got[0] != f.c1.ID {
		t.Errorf("to do after cancel = %v", got)
	}
	if _, dragging := f.ctrl.Dragging(); dragging {
		t.Error("still dragging after cancel")
	}
	if err := f.ctrl.DragOver(f.done.ID); !errors.Is(err, ErrNotDragging) {
		t.Errorf("DragOver after cancel err = %v", err)
	}
}

func TestDragWithinColumn(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.ctrl.DragStart(f.c2.ID)
	if err := f.ctrl.DragEnd(ctx, f.board.ID, f.c1.ID); err != nil {
		t.Fatalf("DragEnd failed: %v", err)
	}
	if got := cardIDs(f.st.CardsOf(f.todo.ID)); got[0] != f.c2.ID || got[1] != f.c1.ID {
		t.Errorf("to do = %v", got)
	}
	remote, _ := f.svc.Cards.List(ctx, f.todo.ID)
	if remote[0].ID != f.c2.ID {
		t.Errorf("remote order = %v", cardIDs(remote))
	}

	// Dropping back where it started is not a move
	f.ctrl.DragStart(f.c2.ID)
	p, err := f.ctrl.Drop(f.c2.ID)
	if err != nil || p != nil {
		t.Errorf("same-slot drop = %v, %v", p, err)
	}
}

func TestCreateCardWithEmptyTitle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	before := f.b.Calls()
	n := len(f.st.CardsOf(f.todo.ID))
	_, err := f.actions.CreateCard(ctx, f.todo.ID, "   ")
	if !errors.Is(err, service.ErrEmptyTitle) {
		t.Errorf("err = %v, want ErrEmptyTitle", err)
	}
	if f.b.Calls() != before {
		t.Error("empty title reached the backend")
	}
	if len(f.st.CardsOf(f.todo.ID)) != n {
		t.Error("card count changed")
	}

	card, err := f.actions.CreateCard(ctx, f.todo.ID, "C3")
	if err != nil {
		t.Fatalf("CreateCard failed: %v", err)
	}
	if card.OrderIndex != 2 || !contains(f.st.CardsOf(f.todo.ID), card.ID) {
		t.Errorf("card = %+v", card)
	}
}

func TestActions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	card, err := f.actions.CyclePriority(ctx, f.c1.ID)
	if err != nil || card.Priority != model.PriorityHigh {
		t.Errorf("CyclePriority = %v, %v", card.Priority, err)
	}

	if err := f.actions.DeleteCard(ctx, f.c1.ID); err != nil {
		t.Fatalf("DeleteCard failed: %v", err)
	}
	left := f.st.CardsOf(f.todo.ID)
	if len(left) != 1 || left[0].OrderIndex != 0 {
		t.Errorf("to do after delete = %+v", left)
	}
	remote, _ := f.svc.Cards.Get(ctx, f.c2.ID)
	if remote.OrderIndex != 0 {
		t.Errorf("remote c2 order = %d", remote.OrderIndex)
	}

	if err := f.actions.MoveColumn(ctx, f.done.ID, 0); err != nil {
		t.Fatalf("MoveColumn failed: %v", err)
	}
	cols, _ := f.svc.Columns.List(ctx, f.board.ID)
	if cols[0].ID != f.done.ID || cols[1].ID != f.todo.ID {
		t.Errorf("remote columns = %v", cols)
	}

	f.b.setFail(true)
	if err := f.actions.MoveColumn(ctx, f.done.ID, 2); err == nil {
		t.Error("expected MoveColumn to fail")
	}
	if got := f.st.ColumnsOf(f.board.ID); got[0].ID != f.done.ID {
		t.Error("failed column move was not reverted")
	}
	f.b.setFail(false)

	if err := f.actions.DeleteColumn(ctx, f.todo.ID); err != nil {
		t.Fatalf("DeleteColumn failed: %v", err)
	}
	if _, ok := f.st.FindCard(f.c2.ID); ok {
		t.Error("card of deleted column still in store")
	}
	for i, col := range f.st.ColumnsOf(f.board.ID) {
		if col.OrderIndex != i {
			t.Errorf("column %s order %d at %d", col.Title, col.OrderIndex, i)
		}
	}
}
