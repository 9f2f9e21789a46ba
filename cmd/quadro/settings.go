package main

import (
	"context"
	"fmt"

	"github.com/dori/quadro/internal/model"
	"github.com/urfave/cli/v3"
)

// SettingsShow prints a board's settings form
func (r *Runner) SettingsShow(ctx context.Context, cmd *cli.Command) error {
	a, ctx, cancel, err := r.session(ctx, cmd)
	if err != nil {
		return err
	}
	defer cancel()

	form, err := a.Services.Settings.Get(ctx, cmd.String("id"))
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		return r.writeJSON(form)
	}

	r.writePlainHeader(form.Title)
	if form.Description != "" {
		r.writePlain("%s\n", form.Description)
	}
	r.writePlain("visibility      %s\n", form.Visibility)
	r.writePlain("background      %s\n", form.BackgroundColor)
	r.writePlain("comments        %s\n", onOff(form.AllowComments))
	r.writePlain("invites         %s\n", onOff(form.AllowInvites))
	r.writePlain("\nNotifications\n")
	r.writePlain("  card updates  %s\n", onOff(form.Notifications.CardUpdates))
	r.writePlain("  mentions      %s\n", onOff(form.Notifications.Mentions))
	r.writePlain("  due dates     %s\n", onOff(form.Notifications.DueDate))
	r.writePlain("  new members   %s\n", onOff(form.Notifications.NewMembers))
	r.writePlain("\nPermissions\n")
	r.writePlain("  member invites    %s\n", onOff(form.Permissions.AllowMemberInvites))
	r.writePlain("  card deletion     %s\n", onOff(form.Permissions.AllowCardDeletion))
	r.writePlain("  list deletion     %s\n", onOff(form.Permissions.AllowListDeletion))
	return r.writePlain("  require approval  %s\n", onOff(form.Permissions.RequireApproval))
}

// SettingsSet loads the settings form, applies the flags that were given and
// saves it back. Only the owner or an admin may change settings.
func (r *Runner) SettingsSet(ctx context.Context, cmd *cli.Command) error {
	a, ctx, cancel, err := r.session(ctx, cmd)
	if err != nil {
		return err
	}
	defer cancel()

	id := cmd.String("id")
	if err := r.requireManager(ctx, a.Services, id); err != nil {
		return err
	}
	form, err := a.Services.Settings.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := applySettings(cmd, &form); err != nil {
		return err
	}
	if err := a.Services.Settings.Save(ctx, id, form); err != nil {
		return err
	}
	return r.writePlain("Saved settings for %s\n", form.Title)
}

func applySettings(cmd *cli.Command, form *model.BoardSettings) error {
	if cmd.IsSet("title") {
		form.Title = cmd.String("title")
	}
	if cmd.IsSet("description") {
		form.Description = cmd.String("description")
	}
	if cmd.IsSet("visibility") {
		v, ok := model.ParseVisibility(cmd.String("visibility"))
		if !ok {
			return fmt.Errorf("visibility must be private, team or public")
		}
		form.Visibility = v
	}
	if cmd.IsSet("background") {
		form.BackgroundColor = cmd.String("background")
	}

	flags := map[string]*bool{
		"comments":            &form.AllowComments,
		"invites":             &form.AllowInvites,
		"notify-card-updates": &form.Notifications.CardUpdates,
		"notify-mentions":     &form.Notifications.Mentions,
		"notify-due-date":     &form.Notifications.DueDate,
		"notify-new-members":  &form.Notifications.NewMembers,
		"member-invites":      &form.Permissions.AllowMemberInvites,
		"card-deletion":       &form.Permissions.AllowCardDeletion,
		"list-deletion":       &form.Permissions.AllowListDeletion,
		"require-approval":    &form.Permissions.RequireApproval,
	}
	for name, field := range flags {
		if cmd.IsSet(name) {
			*field = cmd.Bool(name)
		}
	}
	return nil
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
