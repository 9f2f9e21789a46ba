package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/dori/quadro/internal/rest"
	"github.com/urfave/cli/v3"
)

// SignUp creates an account and loads its profile
func (r *Runner) SignUp(ctx context.Context, cmd *cli.Command) error {
	a, ctx, cancel, err := r.session(ctx, cmd)
	if err != nil {
		return err
	}
	defer cancel()

	email := cmd.String("email")
	_, err = a.Backend.SignUp(ctx, email, cmd.String("password"), cmd.String("name"))
	if errors.Is(err, rest.ErrConfirmationRequired) {
		return r.writePlain("Check %s for a confirmation link, then run 'quadro signin'.\n", email)
	}
	if err != nil {
		return fmt.Errorf("sign up failed: %w", err)
	}

	u, err := a.LoadUser(ctx)
	if err != nil {
		return err
	}
	return r.writePlain("Signed up as %s\n", u.Email)
}

// SignIn starts a session
func (r *Runner) SignIn(ctx context.Context, cmd *cli.Command) error {
	a, ctx, cancel, err := r.session(ctx, cmd)
	if err != nil {
		return err
	}
	defer cancel()

	if _, err := a.Backend.SignIn(ctx, cmd.String("email"), cmd.String("password")); err != nil {
		return fmt.Errorf("sign in failed: %w", err)
	}
	u, err := a.LoadUser(ctx)
	if err != nil {
		return err
	}
	return r.writePlain("Signed in as %s\n", u.DisplayName())
}

// SignOut ends the session
func (r *Runner) SignOut(ctx context.Context, cmd *cli.Command) error {
	a, ctx, cancel, err := r.session(ctx, cmd)
	if err != nil {
		return err
	}
	defer cancel()

	if err := a.SignOut(ctx); err != nil {
		return err
	}
	return r.writePlain("Signed out\n")
}

// WhoAmI prints the signed-in user
func (r *Runner) WhoAmI(ctx context.Context, cmd *cli.Command) error {
	a, ctx, cancel, err := r.session(ctx, cmd)
	if err != nil {
		return err
	}
	defer cancel()

	u, err := a.LoadUser(ctx)
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		return r.writeJSON(u)
	}
	r.writePlain("%s\n", u.DisplayName())
	r.writePlain("  email: %s\n", u.Email)
	r.writePlain("  id:    %s\n", u.ID)
	if u.Theme != "" {
		r.writePlain("  theme: %s\n", u.Theme)
	}
	return nil
}
