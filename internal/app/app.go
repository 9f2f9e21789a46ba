package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dori/quadro/internal/backend"
	"github.com/dori/quadro/internal/board"
	"github.com/dori/quadro/internal/db"
	"github.com/dori/quadro/internal/model"
	"github.com/dori/quadro/internal/notify"
	"github.com/dori/quadro/internal/rest"
	"github.com/dori/quadro/internal/service"
	"github.com/dori/quadro/internal/store"
	"github.com/gofrs/flock"
)

// ErrAlreadyRunning is returned when another TUI holds the data dir lock
var ErrAlreadyRunning = errors.New("another instance of quadro is already running")

// App holds the application state and dependencies
type App struct {
	Config   *Config
	Backend  backend.Backend
	Services *service.Services
	Store    *store.Store
	Board    *board.Controller
	Actions  *board.Actions
	Notifier *notify.Notifier
	Logger   *log.Logger
	DataDir  string

	lockFile    *flock.Flock
	logFile     *os.File
	unsubscribe func()
}

// Options controls how New sets the app up
type Options struct {
	// Lock takes the single-instance lock (TUI mode)
	Lock bool
	// LogToFile sends logs to <data_dir>/quadro.log instead of LogWriter
	LogToFile bool
	// LogWriter receives logs when LogToFile is false; defaults to stderr
	LogWriter io.Writer
}

// New creates a new application instance
func New(cfg *Config, opts Options) (*App, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	dataDir := cfg.ResolvedDataDir()
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	app := &App{
		Config:   cfg,
		DataDir:  dataDir,
		Store:    store.New(),
		Notifier: notify.NewNotifier(),
	}
	app.Notifier.SetEnabled(cfg.Notify.Enabled)

	w := opts.LogWriter
	if opts.LogToFile {
		f, err := OpenLogFile(dataDir)
		if err != nil {
			return nil, err
		}
		app.logFile = f
		w = f
	}
	app.Logger = NewLogger(w, cfg.Log.Level)

	if opts.Lock {
		if err := app.acquireLock(); err != nil {
			app.closeLog()
			return nil, err
		}
	}

	b, err := openBackend(cfg, dataDir)
	if err != nil {
		app.releaseLock()
		app.closeLog()
		return nil, err
	}
	app.Backend = b
	app.Services = service.New(b)
	app.Board = board.NewController(app.Store, app.Services, app.Logger.WithPrefix("board"))
	app.Board.ReloadOnFailure = cfg.Board.ReloadOnFailure
	app.Actions = board.NewActions(app.Store, app.Services)

	if cfg.UI.Theme != "" {
		app.Store.SetTheme(model.Theme(cfg.UI.Theme))
	}

	app.unsubscribe = b.OnAuthStateChange(func(event backend.AuthEvent, s *backend.Session) {
		app.Logger.Info("auth state changed", "event", event)
		if event == backend.EventSignedOut {
			app.Store.Reset()
		}
	})

	app.Logger.Debug("app started", "backend", cfg.Backend.Kind, "data_dir", dataDir)
	return app, nil
}

func openBackend(cfg *Config, dataDir string) (backend.Backend, error) {
	switch cfg.Backend.Kind {
	case BackendREST:
		c, err := rest.New(rest.Options{
			URL:         cfg.REST.URL,
			AnonKey:     cfg.REST.AnonKey,
			RateLimit:   cfg.REST.RateLimit,
			SessionPath: filepath.Join(dataDir, "rest-session.json"),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create rest client: %w", err)
		}
		return c, nil
	default:
		database, err := db.Open(cfg.ResolvedDBPath(), db.WithSessionFile(filepath.Join(dataDir, "session.json")))
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		return database, nil
	}
}

// Context returns a context bounded by the configured request timeout
func (a *App) Context(parent context.Context) (context.Context, context.CancelFunc) {
	timeout := a.Config.Board.RequestTimeout.Duration
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return context.WithTimeout(parent, timeout)
}

// LoadUser puts the signed-in user's profile in the store
func (a *App) LoadUser(ctx context.Context) (model.User, error) {
	u, err := a.Services.Users.Current(ctx)
	if err != nil {
		return model.User{}, err
	}
	a.Store.SetUser(&u)
	return u, nil
}

// SignOut ends the session; the store is cleared by the auth listener
func (a *App) SignOut(ctx context.Context) error {
	return a.Backend.SignOut(ctx)
}

// acquireLock acquires an exclusive file lock to prevent multiple instances
func (a *App) acquireLock() error {
	lockPath := filepath.Join(a.DataDir, "quadro.lock")
	a.lockFile = flock.New(lockPath)

	locked, err := a.lockFile.TryLock()
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}

	if !locked {
		return ErrAlreadyRunning
	}

	return nil
}

// releaseLock releases the file lock
func (a *App) releaseLock() {
	if a.lockFile != nil {
		a.lockFile.Unlock()
	}
}

func (a *App) closeLog() {
	if a.logFile != nil {
		a.logFile.Close()
		a.logFile = nil
	}
}

// Close cleans up application resources
func (a *App) Close() error {
	var errs []error

	if a.unsubscribe != nil {
		a.unsubscribe()
	}

	if a.Backend != nil {
		if err := a.Backend.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close backend: %w", err))
		}
	}

	a.releaseLock()
	a.closeLog()

	return errors.Join(errs...)
}
