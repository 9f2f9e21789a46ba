package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/dori/quadro/internal/backend"
	"github.com/dori/quadro/internal/model"
)

var (
	// ErrInvalidRole is returned for roles that cannot be granted
	ErrInvalidRole = errors.New("role must be admin, member or viewer")
	// ErrForbidden is returned when the user's role does not allow an action
	ErrForbidden = errors.New("not allowed on this board")
)

// Invite outcome messages
const (
	InviteUserNotFound  = "User not found. They need an account first."
	InviteAlreadyMember = "User is already a member of this board."
	InviteSent          = "User invited successfully!"
)

// InviteResult is shown to the inviter as-is
type InviteResult struct {
	Success bool
	Message string
	Member  *model.BoardMember
}

// Members manages board membership
type Members struct{ base }

// List returns a board's members with their profiles, oldest first
func (s *Members) List(ctx context.Context, boardID string) ([]model.BoardMember, error) {
	if _, err := s.session(ctx); err != nil {
		return nil, err
	}
	members, err := list[model.BoardMember](ctx, s.base,
		backend.From(backend.TableBoardMembers).Eq("board_id", boardID).OrderBy("created_at", false))
	if err != nil {
		return nil, err
	}

	ids := make([]any, len(members))
	for i, m := range members {
		ids[i] = m.UserID
	}
	users, err := list[model.User](ctx, s.base, backend.From(backend.TableUsers).In("id", ids...))
	if err != nil {
		return nil, err
	}
	byID := make(map[string]model.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	for i := range members {
		if u, ok := byID[members[i].UserID]; ok {
			members[i].User = &u
		}
	}
	return members, nil
}

// Add grants userID a role on boardID
func (s *Members) Add(ctx context.Context, boardID, userID string, role model.Role) (model.BoardMember, error) {
	if _, err := s.session(ctx); err != nil {
		return model.BoardMember{}, err
	}
	if _, ok := model.ParseRole(string(role)); !ok {
		return model.BoardMember{}, ErrInvalidRole
	}
	return insert[model.BoardMember](ctx, s.base, backend.TableBoardMembers, backend.Row{
		"board_id": boardID,
		"user_id":  userID,
		"role":     string(role),
	})
}

// Remove revokes userID's membership of boardID
func (s *Members) Remove(ctx context.Context, boardID, userID string) error {
	m, err := s.find(ctx, boardID, userID)
	if err != nil {
		return err
	}
	return s.b.Delete(ctx, backend.TableBoardMembers, m.ID)
}

// UpdateRole changes userID's role on boardID
func (s *Members) UpdateRole(ctx context.Context, boardID, userID string, role model.Role) (model.BoardMember, error) {
	if _, ok := model.ParseRole(string(role)); !ok {
		return model.BoardMember{}, ErrInvalidRole
	}
	m, err := s.find(ctx, boardID, userID)
	if err != nil {
		return model.BoardMember{}, err
	}
	return update[model.BoardMember](ctx, s.base, backend.TableBoardMembers, m.ID, backend.Row{"role": string(role)})
}

// Invite adds the account registered under email. Expected outcomes (no such
// user, already a member) are reported in the result, not as errors.
func (s *Members) Invite(ctx context.Context, boardID, email string, role model.Role) (InviteResult, error) {
	if _, ok := model.ParseRole(string(role)); !ok {
		return InviteResult{}, ErrInvalidRole
	}
	users := &Users{s.base}
	u, err := users.ByEmail(ctx, email)
	if errors.Is(err, backend.ErrNotFound) {
		return InviteResult{Message: InviteUserNotFound}, nil
	}
	if err != nil {
		return InviteResult{}, err
	}

	current, err := s.Role(ctx, boardID, u.ID)
	if err != nil {
		return InviteResult{}, err
	}
	if current != "" {
		return InviteResult{Message: InviteAlreadyMember}, nil
	}

	m, err := s.Add(ctx, boardID, u.ID, role)
	if err != nil {
		return InviteResult{}, fmt.Errorf("failed to add member: %w", err)
	}
	m.User = &u
	return InviteResult{Success: true, Message: InviteSent, Member: &m}, nil
}

// Role returns userID's role on boardID: owner for the board's owner, the
// membership role otherwise, or "" when the user has no access
func (s *Members) Role(ctx context.Context, boardID, userID string) (model.Role, error) {
	if _, err := s.session(ctx); err != nil {
		return "", err
	}
	board, err := get[model.Board](ctx, s.base, backend.From(backend.TableBoards).Eq("id", boardID))
	if err != nil {
		return "", err
	}
	if board.IsOwnedBy(userID) {
		return model.RoleOwner, nil
	}

	m, err := s.find(ctx, boardID, userID)
	if errors.Is(err, backend.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return m.Role, nil
}

// CanManage reports whether userID may invite and remove members
func (s *Members) CanManage(ctx context.Context, boardID, userID string) (bool, error) {
	role, err := s.Role(ctx, boardID, userID)
	if err != nil {
		return false, err
	}
	return role.CanManageMembers(), nil
}

// CanEdit reports whether userID may change boardID's columns and cards
func (s *Members) CanEdit(ctx context.Context, boardID, userID string) (bool, error) {
	role, err := s.Role(ctx, boardID, userID)
	if err != nil {
		return false, err
	}
	return role.CanEdit(), nil
}

func (s *Members) find(ctx context.Context, boardID, userID string) (model.BoardMember, error) {
	if _, err := s.session(ctx); err != nil {
		return model.BoardMember{}, err
	}
	return get[model.BoardMember](ctx, s.base,
		backend.From(backend.TableBoardMembers).Eq("board_id", boardID).Eq("user_id", userID))
}
