package service

import (
	"context"
	"sort"

	"github.com/dori/quadro/internal/backend"
	"github.com/dori/quadro/internal/model"
)

// Boards manages boards
type Boards struct{ base }

// List returns boards the user owns, boards they are a member of, and public
// boards, most recently updated first
func (s *Boards) List(ctx context.Context) ([]model.Board, error) {
	sess, err := s.session(ctx)
	if err != nil {
		return nil, err
	}

	owned, err := list[model.Board](ctx, s.base, backend.From(backend.TableBoards).Eq("user_id", sess.UserID))
	if err != nil {
		return nil, err
	}

	memberships, err := list[model.BoardMember](ctx, s.base,
		backend.From(backend.TableBoardMembers).Eq("user_id", sess.UserID))
	if err != nil {
		return nil, err
	}
	ids := make([]any, 0, len(memberships))
	for _, m := range memberships {
		ids = append(ids, m.BoardID)
	}
	shared, err := list[model.Board](ctx, s.base, backend.From(backend.TableBoards).In("id", ids...))
	if err != nil {
		return nil, err
	}

	public, err := list[model.Board](ctx, s.base,
		backend.From(backend.TableBoards).Eq("visibility", string(model.VisibilityPublic)))
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var out []model.Board
	for _, group := range [][]model.Board{owned, shared, public} {
		for _, b := range group {
			if !seen[b.ID] {
				seen[b.ID] = true
				out = append(out, b)
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

// Get returns one board
func (s *Boards) Get(ctx context.Context, id string) (model.Board, error) {
	if _, err := s.session(ctx); err != nil {
		return model.Board{}, err
	}
	return get[model.Board](ctx, s.base, backend.From(backend.TableBoards).Eq("id", id))
}

// Create makes a board owned by the signed-in user
func (s *Boards) Create(ctx context.Context, name, description string) (model.Board, error) {
	sess, err := s.session(ctx)
	if err != nil {
		return model.Board{}, err
	}
	name, err = title(name)
	if err != nil {
		return model.Board{}, err
	}
	return insert[model.Board](ctx, s.base, backend.TableBoards, backend.Row{
		"user_id":     sess.UserID,
		"title":       name,
		"description": description,
	})
}

// Update applies patch to a board
func (s *Boards) Update(ctx context.Context, id string, patch model.BoardPatch) (model.Board, error) {
	if _, err := s.session(ctx); err != nil {
		return model.Board{}, err
	}
	if patch.Title != nil {
		t, err := title(*patch.Title)
		if err != nil {
			return model.Board{}, err
		}
		patch.Title = &t
	}
	return update[model.Board](ctx, s.base, backend.TableBoards, id, patch.Row())
}

// Delete removes a board with its columns and cards
func (s *Boards) Delete(ctx context.Context, id string) error {
	if _, err := s.session(ctx); err != nil {
		return err
	}
	return s.b.Delete(ctx, backend.TableBoards, id)
}
