package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dori/quadro/internal/board"
	"github.com/dori/quadro/internal/model"
	"github.com/urfave/cli/v3"
)

// boardView is the JSON shape of `board show`
type boardView struct {
	model.Board
	Columns []columnView `json:"columns"`
}

type columnView struct {
	model.Column
	Cards []model.Card `json:"cards"`
}

// argText joins the positional arguments; what names them in the error
func argText(cmd *cli.Command, what string) (string, error) {
	text := strings.TrimSpace(strings.Join(cmd.Args().Slice(), " "))
	if text == "" {
		return "", fmt.Errorf("%s is required", what)
	}
	return text, nil
}

// BoardList prints the boards visible to the user
func (r *Runner) BoardList(ctx context.Context, cmd *cli.Command) error {
	a, ctx, cancel, err := r.session(ctx, cmd)
	if err != nil {
		return err
	}
	defer cancel()

	boards, err := a.Services.Boards.List(ctx)
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		return r.writeJSON(boards)
	}

	var userID string
	if u, err := a.LoadUser(ctx); err == nil {
		userID = u.ID
	}
	r.writePlainHeader(fmt.Sprintf("Boards (%d)", len(boards)))
	for _, b := range boards {
		owner := ""
		if b.IsOwnedBy(userID) {
			owner = " (owner)"
		}
		r.writePlain("%s  %s%s\n", b.ID, b.Title, owner)
	}
	return nil
}

// BoardCreate makes a board, optionally with columns
func (r *Runner) BoardCreate(ctx context.Context, cmd *cli.Command) error {
	name, err := argText(cmd, "board title")
	if err != nil {
		return err
	}
	a, ctx, cancel, err := r.session(ctx, cmd)
	if err != nil {
		return err
	}
	defer cancel()

	b, err := a.Services.Boards.Create(ctx, name, cmd.String("description"))
	if err != nil {
		return err
	}
	for _, col := range cmd.StringSlice("column") {
		if _, err := a.Actions.CreateColumn(ctx, b.ID, col); err != nil {
			return fmt.Errorf("board %s created, column %q failed: %w", b.ID, col, err)
		}
	}
	return r.writePlain("Created board %s (%s)\n", b.Title, b.ID)
}

// BoardDelete removes a board
func (r *Runner) BoardDelete(ctx context.Context, cmd *cli.Command) error {
	a, ctx, cancel, err := r.session(ctx, cmd)
	if err != nil {
		return err
	}
	defer cancel()

	id := cmd.String("id")
	if err := a.Actions.DeleteBoard(ctx, id); err != nil {
		return err
	}
	return r.writePlain("Deleted board %s\n", id)
}

// BoardRename changes a board's title
func (r *Runner) BoardRename(ctx context.Context, cmd *cli.Command) error {
	name, err := argText(cmd, "board title")
	if err != nil {
		return err
	}
	a, ctx, cancel, err := r.session(ctx, cmd)
	if err != nil {
		return err
	}
	defer cancel()

	id := cmd.String("id")
	if err := r.requireManager(ctx, a.Services, id); err != nil {
		return err
	}
	b, err := a.Actions.RenameBoard(ctx, id, name)
	if err != nil {
		return err
	}
	return r.writePlain("Renamed board to %s\n", b.Title)
}

// BoardShow prints a board's columns and cards in order
func (r *Runner) BoardShow(ctx context.Context, cmd *cli.Command) error {
	a, ctx, cancel, err := r.session(ctx, cmd)
	if err != nil {
		return err
	}
	defer cancel()

	id := cmd.String("id")
	b, err := a.Services.Boards.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := a.Actions.OpenBoard(ctx, id); err != nil {
		return err
	}

	view := boardView{Board: b, Columns: []columnView{}}
	for _, col := range a.Store.ColumnsOf(id) {
		view.Columns = append(view.Columns, columnView{Column: col, Cards: a.Store.CardsOf(col.ID)})
	}
	if cmd.Bool("json") {
		return r.writeJSON(view)
	}

	now := r.now()
	r.writePlainHeader(b.Title)
	for _, col := range view.Columns {
		r.writePlain("\n%s (%d)  [%s]\n", col.Title, len(col.Cards), col.ID)
		for _, c := range col.Cards {
			r.writePlain("  %d. %s  [%s]", c.OrderIndex+1, c.Title, c.Priority)
			if c.Assignee != nil {
				r.writePlain(" @%s", *c.Assignee)
			}
			for _, tag := range c.Tags {
				r.writePlain(" #%s", tag)
			}
			if c.DueDate != nil {
				due := board.FormatDue(*c.DueDate, now)
				if c.IsOverdue(now) {
					due += " (overdue)"
				}
				r.writePlain(" due %s", due)
			}
			r.writePlain("  %s\n", c.ID)
		}
	}
	return nil
}

// ColumnAdd appends a column
func (r *Runner) ColumnAdd(ctx context.Context, cmd *cli.Command) error {
	name, err := argText(cmd, "column title")
	if err != nil {
		return err
	}
	a, ctx, cancel, err := r.session(ctx, cmd)
	if err != nil {
		return err
	}
	defer cancel()

	boardID := cmd.String("board")
	if err := r.requireEditor(ctx, a.Services, boardID); err != nil {
		return err
	}
	col, err := a.Actions.CreateColumn(ctx, boardID, name)
	if err != nil {
		return err
	}
	return r.writePlain("Created column %s (%s)\n", col.Title, col.ID)
}

// CardAdd parses quick-add text into a card at the end of a column
func (r *Runner) CardAdd(ctx context.Context, cmd *cli.Command) error {
	text, err := argText(cmd, "card text")
	if err != nil {
		return err
	}
	quick := board.ParseQuick(text, r.now())
	if quick.Title == "" {
		return fmt.Errorf("card title is required")
	}

	a, ctx, cancel, err := r.session(ctx, cmd)
	if err != nil {
		return err
	}
	defer cancel()

	columnID := cmd.String("column")
	boardID, err := boardOfColumn(ctx, a.Services, columnID)
	if err != nil {
		return err
	}
	if err := r.requireEditor(ctx, a.Services, boardID); err != nil {
		return err
	}

	card := quick.Card(columnID)
	card.Description = cmd.String("description")
	card, err = a.Services.Cards.Create(ctx, card)
	if err != nil {
		return err
	}

	r.writePlain("Added: %s [%s]", card.Title, card.Priority)
	if card.DueDate != nil {
		r.writePlain(" due %s", board.FormatDue(*card.DueDate, r.now()))
	}
	return r.writePlain("  %s\n", card.ID)
}

// CardEdit changes a card. Positional text rewrites it in quick-add syntax;
// flags then override single fields.
func (r *Runner) CardEdit(ctx context.Context, cmd *cli.Command) error {
	a, ctx, cancel, err := r.session(ctx, cmd)
	if err != nil {
		return err
	}
	defer cancel()

	card, boardID, err := boardOfCard(ctx, a.Services, cmd.String("id"))
	if err != nil {
		return err
	}
	if err := r.requireEditor(ctx, a.Services, boardID); err != nil {
		return err
	}

	now := r.now()
	patch, err := cardPatch(cmd, card, now)
	if err != nil {
		return err
	}
	if patch == (model.CardPatch{}) {
		return r.writePlain("Nothing to change\n")
	}
	card, err = a.Actions.UpdateCard(ctx, card.ID, patch)
	if err != nil {
		return err
	}
	return r.writePlain("Updated: %s\n", board.FormatQuick(card, now))
}

// cardPatch builds the update requested by `card edit`
func cardPatch(cmd *cli.Command, card model.Card, now time.Time) (model.CardPatch, error) {
	var patch model.CardPatch
	if text := strings.TrimSpace(strings.Join(cmd.Args().Slice(), " ")); text != "" {
		q := board.ParseQuick(text, now)
		if q.Title == "" {
			return patch, fmt.Errorf("card title is required")
		}
		patch = q.Diff(card, now.Location())
	}

	if cmd.IsSet("title") {
		title := cmd.String("title")
		patch.Title = &title
	}
	if cmd.IsSet("description") {
		desc := cmd.String("description")
		patch.Description = &desc
	}
	if cmd.IsSet("priority") {
		p, ok := model.ParsePriority(strings.ToLower(cmd.String("priority")))
		if !ok {
			return patch, fmt.Errorf("priority must be low, medium or high")
		}
		patch.Priority = &p
	}
	if cmd.IsSet("assignee") {
		assignee := strings.TrimPrefix(cmd.String("assignee"), "@")
		patch.Assignee = &assignee
	}
	if cmd.IsSet("tag") {
		tags := make([]string, 0, len(cmd.StringSlice("tag")))
		for _, tag := range cmd.StringSlice("tag") {
			if tag = strings.TrimPrefix(tag, "#"); tag != "" {
				tags = append(tags, tag)
			}
		}
		patch.Tags = &tags
	}
	if cmd.IsSet("due") {
		due := board.ParseDate(cmd.String("due"), now)
		if due == nil {
			return patch, fmt.Errorf("cannot parse due date %q", cmd.String("due"))
		}
		patch.DueDate, patch.ClearDue = due, false
	}
	if cmd.Bool("no-due") {
		patch.DueDate, patch.ClearDue = nil, true
	}
	return patch, nil
}

// CardMove drags a card to --column at --index through the board controller,
// so the siblings on both sides are renumbered the same way the board does
func (r *Runner) CardMove(ctx context.Context, cmd *cli.Command) error {
	a, ctx, cancel, err := r.session(ctx, cmd)
	if err != nil {
		return err
	}
	defer cancel()

	boardID := cmd.String("board")
	cardID := cmd.String("id")
	columnID := cmd.String("column")
	if err := r.requireEditor(ctx, a.Services, boardID); err != nil {
		return err
	}
	if err := a.Actions.OpenBoard(ctx, boardID); err != nil {
		return err
	}
	if _, ok := a.Store.Columns.Get(columnID); !ok {
		return fmt.Errorf("column %s is not on board %s", columnID, boardID)
	}

	overID := dropTarget(a.Store.CardsOf(columnID), cardID, columnID, int(cmd.Int("index")))
	if err := a.Board.DragStart(cardID); err != nil {
		return err
	}
	if err := a.Board.DragEnd(ctx, boardID, overID); err != nil {
		return err
	}

	card, _ := a.Store.FindCard(cardID)
	return r.writePlain("Moved %s to position %d\n", card.Title, card.OrderIndex+1)
}

// dropTarget picks the id to drop on so the card lands at index among the
// column's other cards: the card now at that position, or the column itself
// to append
func dropTarget(cards []model.Card, cardID, columnID string, index int) string {
	others := make([]model.Card, 0, len(cards))
	for _, c := range cards {
		if c.ID != cardID {
			others = append(others, c)
		}
	}
	if index < 0 || index >= len(others) {
		return columnID
	}
	return others[index].ID
}

// CardDelete removes a card; with --board the column is compacted too
func (r *Runner) CardDelete(ctx context.Context, cmd *cli.Command) error {
	a, ctx, cancel, err := r.session(ctx, cmd)
	if err != nil {
		return err
	}
	defer cancel()

	id := cmd.String("id")
	_, owner, err := boardOfCard(ctx, a.Services, id)
	if err != nil {
		return err
	}
	if err := r.requireEditor(ctx, a.Services, owner); err != nil {
		return err
	}
	if boardID := cmd.String("board"); boardID != "" {
		if err := a.Actions.OpenBoard(ctx, boardID); err != nil {
			return err
		}
	}
	if err := a.Actions.DeleteCard(ctx, id); err != nil {
		return err
	}
	return r.writePlain("Deleted card %s\n", id)
}
