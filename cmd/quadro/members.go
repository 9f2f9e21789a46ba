package main

import (
	"context"
	"fmt"

	"github.com/dori/quadro/internal/model"
	"github.com/dori/quadro/internal/service"
	"github.com/urfave/cli/v3"
)

func parseRole(s string) (model.Role, error) {
	role, ok := model.ParseRole(s)
	if !ok {
		return "", service.ErrInvalidRole
	}
	return role, nil
}

// MemberList prints a board's members
func (r *Runner) MemberList(ctx context.Context, cmd *cli.Command) error {
	a, ctx, cancel, err := r.session(ctx, cmd)
	if err != nil {
		return err
	}
	defer cancel()

	members, err := a.Services.Members.List(ctx, cmd.String("board"))
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		return r.writeJSON(members)
	}

	r.writePlainHeader(fmt.Sprintf("Members (%d)", len(members)))
	for _, m := range members {
		name := m.UserID
		if m.User != nil {
			name = m.User.DisplayName()
		}
		r.writePlain("%-8s %s  %s\n", m.Role, name, m.UserID)
	}
	return nil
}

// MemberInvite adds a registered user by email. Expected refusals are printed,
// not returned as errors.
func (r *Runner) MemberInvite(ctx context.Context, cmd *cli.Command) error {
	role, err := parseRole(cmd.String("role"))
	if err != nil {
		return err
	}
	a, ctx, cancel, err := r.session(ctx, cmd)
	if err != nil {
		return err
	}
	defer cancel()

	boardID := cmd.String("board")
	if err := r.requireManager(ctx, a.Services, boardID); err != nil {
		return err
	}
	res, err := a.Services.Members.Invite(ctx, boardID, cmd.String("email"), role)
	if err != nil {
		return err
	}
	return r.writePlain("%s\n", res.Message)
}

// MemberRemove removes a member from a board
func (r *Runner) MemberRemove(ctx context.Context, cmd *cli.Command) error {
	a, ctx, cancel, err := r.session(ctx, cmd)
	if err != nil {
		return err
	}
	defer cancel()

	boardID := cmd.String("board")
	if err := r.requireManager(ctx, a.Services, boardID); err != nil {
		return err
	}
	if err := a.Services.Members.Remove(ctx, boardID, cmd.String("user")); err != nil {
		return err
	}
	return r.writePlain("Member removed\n")
}

// MemberRole changes a member's role
func (r *Runner) MemberRole(ctx context.Context, cmd *cli.Command) error {
	role, err := parseRole(cmd.String("role"))
	if err != nil {
		return err
	}
	a, ctx, cancel, err := r.session(ctx, cmd)
	if err != nil {
		return err
	}
	defer cancel()

	boardID := cmd.String("board")
	if err := r.requireManager(ctx, a.Services, boardID); err != nil {
		return err
	}
	m, err := a.Services.Members.UpdateRole(ctx, boardID, cmd.String("user"), role)
	if err != nil {
		return err
	}
	return r.writePlain("%s is now %s\n", m.UserID, m.Role)
}

// requireManager fails unless the signed-in user may manage boardID's members
func (r *Runner) requireManager(ctx context.Context, svc *service.Services, boardID string) error {
	u, err := svc.Users.Current(ctx)
	if err != nil {
		return err
	}
	ok, err := svc.Members.CanManage(ctx, boardID, u.ID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: only the owner or an admin can manage board %s", service.ErrForbidden, boardID)
	}
	return nil
}

// requireEditor fails unless the signed-in user may change boardID's columns
// and cards
func (r *Runner) requireEditor(ctx context.Context, svc *service.Services, boardID string) error {
	u, err := svc.Users.Current(ctx)
	if err != nil {
		return err
	}
	ok, err := svc.Members.CanEdit(ctx, boardID, u.ID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: viewers cannot change board %s", service.ErrForbidden, boardID)
	}
	return nil
}

// boardOfColumn returns the board a column belongs to
func boardOfColumn(ctx context.Context, svc *service.Services, columnID string) (string, error) {
	col, err := svc.Columns.Get(ctx, columnID)
	if err != nil {
		return "", fmt.Errorf("column %s: %w", columnID, err)
	}
	return col.BoardID, nil
}

// boardOfCard returns a card with the board it belongs to
func boardOfCard(ctx context.Context, svc *service.Services, cardID string) (model.Card, string, error) {
	card, err := svc.Cards.Get(ctx, cardID)
	if err != nil {
		return model.Card{}, "", fmt.Errorf("card %s: %w", cardID, err)
	}
	boardID, err := boardOfColumn(ctx, svc, card.ColumnID)
	return card, boardID, err
}
