package service

import (
	"context"
	"strings"

	"github.com/dori/quadro/internal/backend"
	"github.com/dori/quadro/internal/model"
)

// Users reads and edits profile rows
type Users struct{ base }

// Current returns the signed-in user's profile
func (s *Users) Current(ctx context.Context) (model.User, error) {
	sess, err := s.session(ctx)
	if err != nil {
		return model.User{}, err
	}
	return get[model.User](ctx, s.base, backend.From(backend.TableUsers).Eq("id", sess.UserID))
}

// ByEmail looks a user up by email
func (s *Users) ByEmail(ctx context.Context, email string) (model.User, error) {
	if _, err := s.session(ctx); err != nil {
		return model.User{}, err
	}
	email = strings.ToLower(strings.TrimSpace(email))
	return get[model.User](ctx, s.base, backend.From(backend.TableUsers).Eq("email", email))
}

// UpdateProfile changes the signed-in user's name, theme or avatar
func (s *Users) UpdateProfile(ctx context.Context, patch model.UserPatch) (model.User, error) {
	sess, err := s.session(ctx)
	if err != nil {
		return model.User{}, err
	}
	return update[model.User](ctx, s.base, backend.TableUsers, sess.UserID, patch.Row())
}
