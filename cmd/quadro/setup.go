package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dori/quadro/internal/app"
	"github.com/dori/quadro/internal/ui"
	"github.com/urfave/cli/v3"
)

// Init writes the default config file to --config
func (r *Runner) Init(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("config")
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if err := app.CreateConfigFile(path); err != nil {
		return err
	}
	return r.writePlain("Created %s\n", path)
}

// TUI starts the interactive board
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	a, err := r.open(cmd, app.Options{Lock: true, LogToFile: true})
	if err != nil {
		return err
	}
	return ui.Run(a)
}

// Version prints the program version
func (r *Runner) Version(ctx context.Context, cmd *cli.Command) error {
	return r.writePlain("quadro %s\n", version)
}
