package main

import (
	"context"
	"fmt"

	"github.com/dori/quadro/internal/model"
	"github.com/urfave/cli/v3"
)

// NoteList prints notes, pinned first
func (r *Runner) NoteList(ctx context.Context, cmd *cli.Command) error {
	a, ctx, cancel, err := r.session(ctx, cmd)
	if err != nil {
		return err
	}
	defer cancel()

	notes, err := a.Services.Notes.List(ctx, cmd.String("folder"))
	if err != nil {
		return err
	}
	notes = pinnedFirst(notes)
	if cmd.Bool("json") {
		return r.writeJSON(notes)
	}

	r.writePlainHeader(fmt.Sprintf("Notes (%d)", len(notes)))
	for _, n := range notes {
		pin := " "
		if n.IsPinned {
			pin = "*"
		}
		r.writePlain("%s %s", pin, n.Title)
		if n.Folder != nil {
			r.writePlain("  [%s]", *n.Folder)
		}
		for _, tag := range n.Tags {
			r.writePlain(" #%s", tag)
		}
		r.writePlain("  %s\n", n.ID)
	}
	return nil
}

// pinnedFirst moves pinned notes to the front, keeping the order otherwise
func pinnedFirst(notes []model.Note) []model.Note {
	out := make([]model.Note, 0, len(notes))
	for _, n := range notes {
		if n.IsPinned {
			out = append(out, n)
		}
	}
	for _, n := range notes {
		if !n.IsPinned {
			out = append(out, n)
		}
	}
	return out
}

// NoteAdd stores a note
func (r *Runner) NoteAdd(ctx context.Context, cmd *cli.Command) error {
	a, ctx, cancel, err := r.session(ctx, cmd)
	if err != nil {
		return err
	}
	defer cancel()

	n := model.Note{
		Title:     cmd.String("title"),
		Content:   cmd.Args().First(),
		Tags:      cmd.StringSlice("tag"),
		IsPrivate: cmd.Bool("private"),
	}
	if folder := cmd.String("folder"); folder != "" {
		n.Folder = &folder
	}
	n, err = a.Services.Notes.Create(ctx, n)
	if err != nil {
		return err
	}
	return r.writePlain("Created note %s (%s)\n", n.Title, n.ID)
}

// NotePin toggles a note's pin
func (r *Runner) NotePin(ctx context.Context, cmd *cli.Command) error {
	a, ctx, cancel, err := r.session(ctx, cmd)
	if err != nil {
		return err
	}
	defer cancel()

	n, err := a.Services.Notes.TogglePin(ctx, cmd.String("id"))
	if err != nil {
		return err
	}
	if n.IsPinned {
		return r.writePlain("Pinned %s\n", n.Title)
	}
	return r.writePlain("Unpinned %s\n", n.Title)
}

// NoteDelete removes a note
func (r *Runner) NoteDelete(ctx context.Context, cmd *cli.Command) error {
	a, ctx, cancel, err := r.session(ctx, cmd)
	if err != nil {
		return err
	}
	defer cancel()

	id := cmd.String("id")
	if err := a.Services.Notes.Delete(ctx, id); err != nil {
		return err
	}
	return r.writePlain("Deleted note %s\n", id)
}

// FolderList prints the user's folders
func (r *Runner) FolderList(ctx context.Context, cmd *cli.Command) error {
	a, ctx, cancel, err := r.session(ctx, cmd)
	if err != nil {
		return err
	}
	defer cancel()

	folders, err := a.Services.Folders.List(ctx)
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		return r.writeJSON(folders)
	}
	for _, f := range folders {
		r.writePlain("%s  %s\n", f.Name, f.ID)
	}
	return nil
}

// FolderAdd creates a folder
func (r *Runner) FolderAdd(ctx context.Context, cmd *cli.Command) error {
	name, err := argText(cmd, "folder name")
	if err != nil {
		return err
	}
	a, ctx, cancel, err := r.session(ctx, cmd)
	if err != nil {
		return err
	}
	defer cancel()

	f, err := a.Services.Folders.Create(ctx, name)
	if err != nil {
		return err
	}
	return r.writePlain("Created folder %s (%s)\n", f.Name, f.ID)
}

// TagList prints the user's tags
func (r *Runner) TagList(ctx context.Context, cmd *cli.Command) error {
	a, ctx, cancel, err := r.session(ctx, cmd)
	if err != nil {
		return err
	}
	defer cancel()

	tags, err := a.Services.Tags.List(ctx)
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		return r.writeJSON(tags)
	}
	for _, t := range tags {
		r.writePlain("%s  %s  %s\n", t.DisplayName(), t.Color, t.ID)
	}
	return nil
}

// TagAdd creates a tag
func (r *Runner) TagAdd(ctx context.Context, cmd *cli.Command) error {
	name, err := argText(cmd, "tag name")
	if err != nil {
		return err
	}
	a, ctx, cancel, err := r.session(ctx, cmd)
	if err != nil {
		return err
	}
	defer cancel()

	t, err := a.Services.Tags.Create(ctx, name, cmd.String("color"))
	if err != nil {
		return err
	}
	return r.writePlain("Created tag %s (%s)\n", t.DisplayName(), t.ID)
}
