// Package service is the data access layer: one type per entity kind that
// turns intents into backend calls and shapes the rows it gets back.
package service

import (
	"context"
	"errors"
	"strings"

	"github.com/dori/quadro/internal/backend"
)

// ErrEmptyTitle is returned before any backend call when a title or name is blank
var ErrEmptyTitle = errors.New("title is required")

// Services groups the per-entity services over one backend
type Services struct {
	Backend backend.Backend

	Users    *Users
	Boards   *Boards
	Columns  *Columns
	Cards    *Cards
	Members  *Members
	Settings *Settings
	Notes    *Notes
	Folders  *Folders
	Tags     *Tags
	Events   *Events
}

// New wires every service to b
func New(b backend.Backend) *Services {
	base := base{b: b}
	return &Services{
		Backend:  b,
		Users:    &Users{base},
		Boards:   &Boards{base},
		Columns:  &Columns{base},
		Cards:    &Cards{base},
		Members:  &Members{base},
		Settings: &Settings{base},
		Notes:    &Notes{base},
		Folders:  &Folders{base},
		Tags:     &Tags{base},
		Events:   &Events{base},
	}
}

type base struct {
	b backend.Backend
}

// session returns the signed-in session or ErrNotAuthenticated
func (s base) session(ctx context.Context) (*backend.Session, error) {
	sess, err := s.b.Session(ctx)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, backend.ErrNotAuthenticated
	}
	return sess, nil
}

// one returns the single row matching q
func (s base) one(ctx context.Context, q backend.Query) (backend.Row, error) {
	rows, err := s.b.Select(ctx, q.Take(1))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, &backend.Error{Op: "select", Table: q.Table, Code: "PGRST116",
			Message: "no rows returned", Err: backend.ErrNotFound}
	}
	return rows[0], nil
}

func (s base) count(ctx context.Context, q backend.Query) (int, error) {
	rows, err := s.b.Select(ctx, q)
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

// updateAll applies patches in one batch when the backend supports it, or
// one update at a time, stopping at the first failure
func (s base) updateAll(ctx context.Context, table string, patches []backend.RowPatch) error {
	if b, ok := s.b.(backend.Batcher); ok {
		return b.UpdateAll(ctx, table, patches)
	}
	for _, p := range patches {
		if _, err := s.b.Update(ctx, table, p.ID, p.Row); err != nil {
			return err
		}
	}
	return nil
}

// title trims s and rejects blanks
func title(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrEmptyTitle
	}
	return s, nil
}

func list[T any](ctx context.Context, s base, q backend.Query) ([]T, error) {
	rows, err := s.b.Select(ctx, q)
	if err != nil {
		return nil, err
	}
	return backend.DecodeAll[T](rows)
}

func get[T any](ctx context.Context, s base, q backend.Query) (T, error) {
	row, err := s.one(ctx, q)
	if err != nil {
		var zero T
		return zero, err
	}
	return backend.Decode[T](row)
}

func insert[T any](ctx context.Context, s base, table string, row backend.Row) (T, error) {
	out, err := s.b.Insert(ctx, table, row)
	if err != nil {
		var zero T
		return zero, err
	}
	return backend.Decode[T](out)
}

func update[T any](ctx context.Context, s base, table, id string, partial backend.Row) (T, error) {
	out, err := s.b.Update(ctx, table, id, partial)
	if err != nil {
		var zero T
		return zero, err
	}
	return backend.Decode[T](out)
}
