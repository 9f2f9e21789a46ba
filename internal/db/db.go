// Package db is the local backend: a SQLite file holding every table plus
// password accounts, so the client works without a hosted service.
package db

import (
	"database/sql"
	"embed"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dori/quadro/internal/backend"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

// DB wraps the SQL database connection and the local session
type DB struct {
	*sql.DB

	sessionPath string
	now         func() time.Time
	hub         backend.AuthHub

	mu      sync.Mutex
	session *backend.Session
}

var (
	_ backend.Backend = (*DB)(nil)
	_ backend.Batcher = (*DB)(nil)
)

// Option configures Open
type Option func(*DB)

// WithSessionFile sets where the signed-in session is persisted
func WithSessionFile(path string) Option {
	return func(db *DB) { db.sessionPath = path }
}

// WithClock overrides the time source for timestamps
func WithClock(now func() time.Time) Option {
	return func(db *DB) { db.now = now }
}

// DefaultDataDir returns the default data directory path
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".quadro"
	}
	return filepath.Join(home, ".local", "share", "quadro")
}

// DefaultDBPath returns the default database file path
func DefaultDBPath() string {
	return filepath.Join(DefaultDataDir(), "quadro.db")
}

// Open opens a database connection, runs migrations and restores any saved session
func Open(dbPath string, opts ...Option) (*DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=ON", dbPath)
	sqlDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB.SetMaxOpenConns(1) // SQLite only supports one writer
	sqlDB.SetMaxIdleConns(1)

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db := &DB{
		DB:          sqlDB,
		sessionPath: filepath.Join(dir, "session.json"),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(db)
	}

	if err := db.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := db.restoreSession(); err != nil {
		sqlDB.Close()
		return nil, err
	}

	return db, nil
}

// migrate runs database migrations using embedded SQL files
func (db *DB) migrate() error {
	// Silence goose logging (it corrupts TUI output)
	goose.SetLogger(log.New(io.Discard, "", 0))
	goose.SetBaseFS(migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}

	if err := goose.Up(db.DB, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.DB.Close()
}

// Transaction executes a function within a transaction
func (db *DB) Transaction(fn func(*sql.Tx) error) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}
