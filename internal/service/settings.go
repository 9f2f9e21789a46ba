package service

import (
	"context"
	"errors"

	"github.com/dori/quadro/internal/backend"
	"github.com/dori/quadro/internal/model"
)

// Settings reads and saves the board settings form
type Settings struct{ base }

type settingsRow struct {
	Notifications *model.NotificationSettings `json:"notifications"`
	Permissions   *model.PermissionSettings   `json:"permissions"`
}

// Get merges the board's own columns with its settings row, falling back to
// defaults when the row (or part of it) is missing
func (s *Settings) Get(ctx context.Context, boardID string) (model.BoardSettings, error) {
	if _, err := s.session(ctx); err != nil {
		return model.BoardSettings{}, err
	}
	board, err := get[model.Board](ctx, s.base, backend.From(backend.TableBoards).Eq("id", boardID))
	if err != nil {
		return model.BoardSettings{}, err
	}

	form := model.BoardSettings{
		Title:           board.Title,
		Description:     board.Description,
		Visibility:      board.Visibility,
		BackgroundColor: board.BackgroundColor,
		AllowComments:   board.AllowComments,
		AllowInvites:    board.AllowInvites,
		Notifications:   model.DefaultNotifications(),
		Permissions:     model.DefaultPermissions(),
	}

	row, err := get[settingsRow](ctx, s.base, backend.From(backend.TableBoardSettings).Eq("board_id", boardID))
	if errors.Is(err, backend.ErrNotFound) {
		return form, nil
	}
	if err != nil {
		return model.BoardSettings{}, err
	}
	if row.Notifications != nil {
		form.Notifications = *row.Notifications
	}
	if row.Permissions != nil {
		form.Permissions = *row.Permissions
	}
	return form, nil
}

// Save updates the board columns and upserts the settings row
func (s *Settings) Save(ctx context.Context, boardID string, form model.BoardSettings) error {
	if _, err := s.session(ctx); err != nil {
		return err
	}
	name, err := title(form.Title)
	if err != nil {
		return err
	}
	visibility := form.Visibility
	if visibility == "" {
		visibility = model.VisibilityPrivate
	}

	patch := model.BoardPatch{
		Title:           &name,
		Description:     &form.Description,
		Visibility:      &visibility,
		BackgroundColor: &form.BackgroundColor,
		AllowComments:   &form.AllowComments,
		AllowInvites:    &form.AllowInvites,
	}
	if _, err := s.b.Update(ctx, backend.TableBoards, boardID, patch.Row()); err != nil {
		return err
	}

	notifications, err := backend.Encode(form.Notifications)
	if err != nil {
		return err
	}
	permissions, err := backend.Encode(form.Permissions)
	if err != nil {
		return err
	}
	_, err = s.b.Upsert(ctx, backend.TableBoardSettings, backend.Row{
		"board_id":      boardID,
		"notifications": notifications,
		"permissions":   permissions,
	}, "board_id")
	return err
}
