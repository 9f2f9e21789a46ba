package service

import (
	"context"
	"strings"

	"github.com/dori/quadro/internal/backend"
	"github.com/dori/quadro/internal/model"
)

// Notes manages the user's notes
type Notes struct{ base }

// List returns the user's notes, most recently updated first.
// A non-empty folder restricts the list to that folder.
func (s *Notes) List(ctx context.Context, folder string) ([]model.Note, error) {
	sess, err := s.session(ctx)
	if err != nil {
		return nil, err
	}
	q := backend.From(backend.TableNotes).Eq("user_id", sess.UserID).OrderBy("updated_at", true)
	if folder != "" {
		q = q.Eq("folder", folder)
	}
	return list[model.Note](ctx, s.base, q)
}

// Create stores a note for the signed-in user
func (s *Notes) Create(ctx context.Context, n model.Note) (model.Note, error) {
	sess, err := s.session(ctx)
	if err != nil {
		return model.Note{}, err
	}
	name, err := title(n.Title)
	if err != nil {
		return model.Note{}, err
	}
	row := backend.Row{
		"user_id":    sess.UserID,
		"title":      name,
		"content":    n.Content,
		"is_pinned":  n.IsPinned,
		"is_private": n.IsPrivate,
	}
	if n.Folder != nil && strings.TrimSpace(*n.Folder) != "" {
		row["folder"] = strings.TrimSpace(*n.Folder)
	}
	if len(n.Tags) > 0 {
		row["tags"] = n.Tags
	}
	return insert[model.Note](ctx, s.base, backend.TableNotes, row)
}

// Update applies patch to a note
func (s *Notes) Update(ctx context.Context, id string, patch model.NotePatch) (model.Note, error) {
	if _, err := s.session(ctx); err != nil {
		return model.Note{}, err
	}
	if patch.Title != nil {
		t, err := title(*patch.Title)
		if err != nil {
			return model.Note{}, err
		}
		patch.Title = &t
	}
	return update[model.Note](ctx, s.base, backend.TableNotes, id, patch.Row())
}

// TogglePin flips a note's pinned flag
func (s *Notes) TogglePin(ctx context.Context, id string) (model.Note, error) {
	if _, err := s.session(ctx); err != nil {
		return model.Note{}, err
	}
	n, err := get[model.Note](ctx, s.base, backend.From(backend.TableNotes).Eq("id", id))
	if err != nil {
		return model.Note{}, err
	}
	pinned := !n.IsPinned
	return s.Update(ctx, id, model.NotePatch{IsPinned: &pinned})
}

// Delete removes a note
func (s *Notes) Delete(ctx context.Context, id string) error {
	if _, err := s.session(ctx); err != nil {
		return err
	}
	return s.b.Delete(ctx, backend.TableNotes, id)
}

// Folders manages note folders
type Folders struct{ base }

// List returns the user's folders by name
func (s *Folders) List(ctx context.Context) ([]model.Folder, error) {
	sess, err := s.session(ctx)
	if err != nil {
		return nil, err
	}
	return list[model.Folder](ctx, s.base,
		backend.From(backend.TableFolders).Eq("user_id", sess.UserID).OrderBy("name", false))
}

// Create makes a folder
func (s *Folders) Create(ctx context.Context, name string) (model.Folder, error) {
	sess, err := s.session(ctx)
	if err != nil {
		return model.Folder{}, err
	}
	name, err = title(name)
	if err != nil {
		return model.Folder{}, err
	}
	return insert[model.Folder](ctx, s.base, backend.TableFolders, backend.Row{
		"user_id": sess.UserID,
		"name":    name,
	})
}

// Delete removes a folder. Notes keep their folder name.
func (s *Folders) Delete(ctx context.Context, id string) error {
	if _, err := s.session(ctx); err != nil {
		return err
	}
	return s.b.Delete(ctx, backend.TableFolders, id)
}
