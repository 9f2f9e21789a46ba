package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/bytedance/sonic"
	"github.com/charmbracelet/log"
	"github.com/dori/quadro/internal/app"
	"github.com/dori/quadro/internal/notify"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config   *app.Config
	logger   *log.Logger
	output   io.Writer
	notifier *notify.Notifier
	now      func() time.Time

	app *app.App
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	// Config skips loading --config when set
	Config   *app.Config
	Logger   *log.Logger
	Output   io.Writer
	Notifier *notify.Notifier
	Now      func() time.Time
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = app.NewLogger(nil, "info")
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Runner{
		config:   opts.Config,
		logger:   opts.Logger,
		output:   opts.Output,
		notifier: opts.Notifier,
		now:      opts.Now,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		initCommand, signupCommand, signinCommand, signoutCommand, whoamiCommand,
		boardCommand, columnCommand, cardCommand, memberCommand,
		noteCommand, folderCommand, tagCommand, eventCommand, remindCommand, versionCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// loadConfig resolves the configuration from --config and --data-dir
func (r *Runner) loadConfig(cmd *cli.Command) (*app.Config, error) {
	config := r.config
	if config == nil {
		var err error
		if config, err = app.LoadConfigOrDefault(cmd.String("config")); err != nil {
			return nil, err
		}
	}
	if dir := cmd.String("data-dir"); dir != "" {
		config.DataDir = dir
	}
	return config, nil
}

// open builds the application on first use
func (r *Runner) open(cmd *cli.Command, opts app.Options) (*app.App, error) {
	if r.app != nil {
		return r.app, nil
	}
	config, err := r.loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if opts.LogWriter == nil && !opts.LogToFile {
		opts.LogWriter = os.Stderr
	}

	a, err := app.New(config, opts)
	if err != nil {
		return nil, err
	}
	if r.notifier != nil {
		r.notifier.SetEnabled(config.Notify.Enabled)
		a.Notifier = r.notifier
	}
	r.app = a
	return a, nil
}

// session opens the app and returns a context bounded by the request timeout
func (r *Runner) session(ctx context.Context, cmd *cli.Command) (*app.App, context.Context, context.CancelFunc, error) {
	a, err := r.open(cmd, app.Options{})
	if err != nil {
		return nil, nil, nil, err
	}
	ctx, cancel := a.Context(ctx)
	return a, ctx, cancel, nil
}

// Close releases the application, if one was opened
func (r *Runner) Close() error {
	if r.app == nil {
		return nil
	}
	err := r.app.Close()
	r.app = nil
	return err
}

func (r *Runner) writeJSON(data any) error {
	output, err := sonic.ConfigStd.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
