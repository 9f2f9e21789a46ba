package service

import (
	"context"
	"strings"

	"github.com/dori/quadro/internal/backend"
	"github.com/dori/quadro/internal/model"
)

// Tags manages the user's tags
type Tags struct{ base }

// List returns the user's tags by name
func (s *Tags) List(ctx context.Context) ([]model.Tag, error) {
	sess, err := s.session(ctx)
	if err != nil {
		return nil, err
	}
	return list[model.Tag](ctx, s.base,
		backend.From(backend.TableTags).Eq("user_id", sess.UserID).OrderBy("name", false))
}

// Create makes a tag. Color defaults to model.DefaultTagColor.
func (s *Tags) Create(ctx context.Context, name, color string) (model.Tag, error) {
	sess, err := s.session(ctx)
	if err != nil {
		return model.Tag{}, err
	}
	name, err = title(strings.TrimPrefix(strings.TrimSpace(name), "#"))
	if err != nil {
		return model.Tag{}, err
	}
	if color == "" {
		color = model.DefaultTagColor
	}
	return insert[model.Tag](ctx, s.base, backend.TableTags, backend.Row{
		"user_id": sess.UserID,
		"name":    name,
		"color":   color,
	})
}

// Update renames or recolors a tag
func (s *Tags) Update(ctx context.Context, id, name, color string) (model.Tag, error) {
	if _, err := s.session(ctx); err != nil {
		return model.Tag{}, err
	}
	row := backend.Row{}
	if name != "" {
		n, err := title(strings.TrimPrefix(name, "#"))
		if err != nil {
			return model.Tag{}, err
		}
		row["name"] = n
	}
	if color != "" {
		row["color"] = color
	}
	return update[model.Tag](ctx, s.base, backend.TableTags, id, row)
}

// Delete removes a tag
func (s *Tags) Delete(ctx context.Context, id string) error {
	if _, err := s.session(ctx); err != nil {
		return err
	}
	return s.b.Delete(ctx, backend.TableTags, id)
}
