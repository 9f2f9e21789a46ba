package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dori/quadro/internal/app"
	"github.com/dori/quadro/internal/backend"
	"github.com/urfave/cli/v3"
)

var version = "0.1.0"

func main() {
	logger := app.NewLogger(nil, "info")
	runner := NewRunner(RunnerOpts{Logger: logger})

	root := newRootCommand(runner)
	err := root.Run(context.Background(), os.Args)
	if cerr := runner.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		if errors.Is(err, backend.ErrNotAuthenticated) {
			fmt.Fprintln(os.Stderr, "Not signed in. Run 'quadro signin' first.")
			os.Exit(1)
		}
		logger.Fatalf("application error: %v", err)
	}
}

func newRootCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "quadro",
		Usage:   "Kanban boards, notes and calendar in the terminal",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   app.DefaultConfigPath(),
				Sources: cli.EnvVars("QUADRO_CONFIG"),
			},
			&cli.StringFlag{
				Name:    "data-dir",
				Usage:   "Override the data directory",
				Sources: cli.EnvVars("QUADRO_DATA_DIR"),
			},
		},
		Commands: r.register(),
		Action:   r.TUI,
	}
}
