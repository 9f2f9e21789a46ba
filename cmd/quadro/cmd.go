// submodule cmd contains command definitions
package main

import (
	"time"

	"github.com/urfave/cli/v3"
)

func jsonFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  "json",
		Usage: "Output JSON",
	}
}

func boardFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "board",
		Aliases:  []string{"b"},
		Usage:    "Board ID",
		Required: true,
	}
}

func idFlag(usage string) cli.Flag {
	return &cli.StringFlag{
		Name:     "id",
		Usage:    usage,
		Required: true,
	}
}

func initCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "init",
		Usage:  "Write the default configuration file",
		Action: r.Init,
	}
}

func signupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "signup",
		Usage: "Create an account and sign in",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Required: true},
			&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Sources: cli.EnvVars("QUADRO_PASSWORD"), Required: true},
			&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "Display name"},
		},
		Action: r.SignUp,
	}
}

func signinCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "signin",
		Usage: "Sign in with email and password",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Required: true},
			&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Sources: cli.EnvVars("QUADRO_PASSWORD"), Required: true},
		},
		Action: r.SignIn,
	}
}

func signoutCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "signout",
		Usage:  "End the current session",
		Action: r.SignOut,
	}
}

func whoamiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "whoami",
		Usage:  "Show the signed-in user",
		Flags:  []cli.Flag{jsonFlag()},
		Action: r.WhoAmI,
	}
}

func boardCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "board",
		Usage: "Board operations",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List boards you own, belong to, or that are public",
				Flags:  []cli.Flag{jsonFlag()},
				Action: r.BoardList,
			},
			{
				Name:      "create",
				Usage:     "Create a board",
				ArgsUsage: "<title>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "description", Aliases: []string{"d"}},
					&cli.StringSliceFlag{Name: "column", Usage: "Add a column (repeatable)"},
				},
				Action: r.BoardCreate,
			},
			{
				Name:   "delete",
				Usage:  "Delete a board with its columns and cards",
				Flags:  []cli.Flag{idFlag("Board ID")},
				Action: r.BoardDelete,
			},
			{
				Name:   "show",
				Usage:  "Print a board's columns and cards",
				Flags:  []cli.Flag{idFlag("Board ID"), jsonFlag()},
				Action: r.BoardShow,
			},
			{
				Name:      "rename",
				Usage:     "Rename a board",
				ArgsUsage: "<title>",
				Flags:     []cli.Flag{idFlag("Board ID")},
				Action:    r.BoardRename,
			},
			settingsCommand(r),
		},
	}
}

func settingsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "settings",
		Usage: "Board settings",
		Commands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Print a board's settings",
				Flags:  []cli.Flag{idFlag("Board ID"), jsonFlag()},
				Action: r.SettingsShow,
			},
			{
				Name:  "set",
				Usage: "Change board settings; unset flags keep their value",
				Flags: []cli.Flag{
					idFlag("Board ID"),
					&cli.StringFlag{Name: "title"},
					&cli.StringFlag{Name: "description", Aliases: []string{"d"}},
					&cli.StringFlag{Name: "visibility", Usage: "private, team or public"},
					&cli.StringFlag{Name: "background", Usage: "Background color"},
					&cli.BoolFlag{Name: "comments", Usage: "Allow comments"},
					&cli.BoolFlag{Name: "invites", Usage: "Allow invites"},
					&cli.BoolFlag{Name: "notify-card-updates"},
					&cli.BoolFlag{Name: "notify-mentions"},
					&cli.BoolFlag{Name: "notify-due-date"},
					&cli.BoolFlag{Name: "notify-new-members"},
					&cli.BoolFlag{Name: "member-invites", Usage: "Members may invite others"},
					&cli.BoolFlag{Name: "card-deletion", Usage: "Members may delete cards"},
					&cli.BoolFlag{Name: "list-deletion", Usage: "Members may delete columns"},
					&cli.BoolFlag{Name: "require-approval", Usage: "New members need approval"},
				},
				Action: r.SettingsSet,
			},
		},
	}
}

func columnCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "column",
		Usage: "Column operations",
		Commands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Append a column to a board",
				ArgsUsage: "<title>",
				Flags:     []cli.Flag{boardFlag()},
				Action:    r.ColumnAdd,
			},
		},
	}
}

func cardCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "card",
		Usage: "Card operations",
		Commands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Add a card: \"Fix login @ana !high #auth due:friday\"",
				ArgsUsage: "<text>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "column", Usage: "Column ID", Required: true},
					&cli.StringFlag{Name: "description", Aliases: []string{"d"}},
				},
				Action: r.CardAdd,
			},
			{
				Name:      "edit",
				Usage:     "Edit a card; text replaces it in quick-add syntax, flags change single fields",
				ArgsUsage: "[text]",
				Flags: []cli.Flag{
					idFlag("Card ID"),
					&cli.StringFlag{Name: "title"},
					&cli.StringFlag{Name: "description", Aliases: []string{"d"}},
					&cli.StringFlag{Name: "priority", Aliases: []string{"p"}, Usage: "low, medium or high"},
					&cli.StringFlag{Name: "assignee", Aliases: []string{"a"}},
					&cli.StringSliceFlag{Name: "tag", Usage: "Replace the tags (repeatable)"},
					&cli.StringFlag{Name: "due", Usage: "Due date, e.g. friday or 2026-11-02"},
					&cli.BoolFlag{Name: "no-due", Usage: "Clear the due date"},
				},
				Action: r.CardEdit,
			},
			{
				Name:  "move",
				Usage: "Move a card to a column and position",
				Flags: []cli.Flag{
					boardFlag(),
					idFlag("Card ID"),
					&cli.StringFlag{Name: "column", Usage: "Destination column ID", Required: true},
					&cli.IntFlag{Name: "index", Usage: "Position in the destination column (default: end)", Value: -1},
				},
				Action: r.CardMove,
			},
			{
				Name:  "delete",
				Usage: "Delete a card",
				Flags: []cli.Flag{
					idFlag("Card ID"),
					&cli.StringFlag{Name: "board", Aliases: []string{"b"}, Usage: "Board ID, to close the gap left in the column"},
				},
				Action: r.CardDelete,
			},
		},
	}
}

func memberCommand(r *Runner) *cli.Command {
	roleFlag := &cli.StringFlag{Name: "role", Usage: "admin, member or viewer", Value: "member"}
	return &cli.Command{
		Name:  "member",
		Usage: "Board membership",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List board members",
				Flags:  []cli.Flag{boardFlag(), jsonFlag()},
				Action: r.MemberList,
			},
			{
				Name:   "invite",
				Usage:  "Invite an existing user by email",
				Flags:  []cli.Flag{boardFlag(), &cli.StringFlag{Name: "email", Aliases: []string{"e"}, Required: true}, roleFlag},
				Action: r.MemberInvite,
			},
			{
				Name:   "remove",
				Usage:  "Remove a member",
				Flags:  []cli.Flag{boardFlag(), &cli.StringFlag{Name: "user", Usage: "User ID", Required: true}},
				Action: r.MemberRemove,
			},
			{
				Name:  "role",
				Usage: "Change a member's role",
				Flags: []cli.Flag{
					boardFlag(),
					&cli.StringFlag{Name: "user", Usage: "User ID", Required: true},
					&cli.StringFlag{Name: "role", Usage: "admin, member or viewer", Required: true},
				},
				Action: r.MemberRole,
			},
		},
	}
}

func noteCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "note",
		Usage: "Notes",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List notes, pinned first",
				Flags:  []cli.Flag{&cli.StringFlag{Name: "folder", Aliases: []string{"f"}}, jsonFlag()},
				Action: r.NoteList,
			},
			{
				Name:      "add",
				Usage:     "Add a note",
				ArgsUsage: "<content>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Required: true},
					&cli.StringFlag{Name: "folder", Aliases: []string{"f"}},
					&cli.StringSliceFlag{Name: "tag"},
					&cli.BoolFlag{Name: "private"},
				},
				Action: r.NoteAdd,
			},
			{
				Name:   "pin",
				Usage:  "Toggle a note's pin",
				Flags:  []cli.Flag{idFlag("Note ID")},
				Action: r.NotePin,
			},
			{
				Name:   "delete",
				Usage:  "Delete a note",
				Flags:  []cli.Flag{idFlag("Note ID")},
				Action: r.NoteDelete,
			},
		},
	}
}

func folderCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "folder",
		Usage: "Note folders",
		Commands: []*cli.Command{
			{Name: "list", Usage: "List folders", Flags: []cli.Flag{jsonFlag()}, Action: r.FolderList},
			{Name: "add", Usage: "Add a folder", ArgsUsage: "<name>", Action: r.FolderAdd},
		},
	}
}

func tagCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "tag",
		Usage: "Tags",
		Commands: []*cli.Command{
			{Name: "list", Usage: "List tags", Flags: []cli.Flag{jsonFlag()}, Action: r.TagList},
			{
				Name:      "add",
				Usage:     "Add a tag",
				ArgsUsage: "<name>",
				Flags:     []cli.Flag{&cli.StringFlag{Name: "color", Usage: "Hex color"}},
				Action:    r.TagAdd,
			},
		},
	}
}

func eventCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "event",
		Usage: "Calendar events",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List events in a date range",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "from", Usage: "Start date (default: today)"},
					&cli.StringFlag{Name: "to", Usage: "End date (default: 30 days after start)"},
					jsonFlag(),
				},
				Action: r.EventList,
			},
			{
				Name:      "add",
				Usage:     "Add an event",
				ArgsUsage: "<title>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "start", Usage: "2006-01-02 15:04, 2006-01-02 or a word like tomorrow", Required: true},
					&cli.DurationFlag{Name: "duration", Usage: "Event length"},
					&cli.BoolFlag{Name: "all-day"},
					&cli.StringFlag{Name: "description", Aliases: []string{"d"}},
					&cli.StringFlag{Name: "color"},
					&cli.IntFlag{Name: "remind", Usage: "Reminder minutes before start", Value: -1},
				},
				Action: r.EventAdd,
			},
		},
	}
}

func remindCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "remind",
		Usage: "Send desktop notifications for due events and cards",
		Flags: []cli.Flag{
			&cli.DurationFlag{Name: "window", Usage: "Notify cards due within this window", Value: 24 * time.Hour},
			&cli.DurationFlag{Name: "grace", Usage: "Still notify items this late", Value: time.Hour},
			&cli.BoolFlag{Name: "dry-run", Usage: "Print reminders without sending"},
			&cli.BoolFlag{Name: "test", Usage: "Send one test notification and exit"},
		},
		Action: r.Remind,
	}
}

func versionCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "version",
		Usage:  "Show version",
		Action: r.Version,
	}
}
