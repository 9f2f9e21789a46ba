package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/dori/quadro/internal/backend"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

// SignUp creates a local account and its profile row, then signs it in
func (db *DB) SignUp(ctx context.Context, email, password, name string) (*backend.Session, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, &backend.Error{Op: "signup", Code: "validation_failed", Message: "email is required"}
	}
	if len(password) < minPasswordLength {
		return nil, &backend.Error{Op: "signup", Code: "weak_password",
			Message: fmt.Sprintf("password should be at least %d characters", minPasswordLength)}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	id := uuid.New().String()
	now := formatTime(db.now())
	var display any
	if name = strings.TrimSpace(name); name != "" {
		display = name
	}

	err = db.Transaction(func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO auth_users (id, email, password_hash, created_at) VALUES (?, ?, ?, ?)`,
			id, email, string(hash), now); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO users (id, email, name, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
			id, email, display, now, now)
		return err
	})
	if err != nil {
		if terr := translate("signup", "", err); errors.Is(terr, backend.ErrConflict) {
			return nil, &backend.Error{Op: "signup", Code: "user_already_exists",
				Message: "User already registered", Err: backend.ErrConflict}
		}
		return nil, backend.Wrap("signup", "", err)
	}

	return db.startSession(id, email)
}

// SignIn checks the password and starts a session
func (db *DB) SignIn(ctx context.Context, email, password string) (*backend.Session, error) {
	email = normalizeEmail(email)

	var id, hash string
	err := db.QueryRowContext(ctx,
		`SELECT id, password_hash FROM auth_users WHERE email = ?`, email).Scan(&id, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, invalidCredentials()
	}
	if err != nil {
		return nil, backend.Wrap("signin", "", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return nil, invalidCredentials()
	}

	return db.startSession(id, email)
}

// SignOut forgets the session
func (db *DB) SignOut(ctx context.Context) error {
	db.mu.Lock()
	db.session = nil
	db.mu.Unlock()

	if err := os.Remove(db.sessionPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove session: %w", err)
	}
	db.hub.Emit(backend.EventSignedOut, nil)
	return nil
}

// Session returns the current session or nil
func (db *DB) Session(ctx context.Context) (*backend.Session, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.session == nil {
		return nil, nil
	}
	s := *db.session
	return &s, nil
}

// OnAuthStateChange registers fn for sign-in and sign-out
func (db *DB) OnAuthStateChange(fn backend.AuthListener) func() {
	return db.hub.Subscribe(fn)
}

func (db *DB) startSession(id, email string) (*backend.Session, error) {
	s := &backend.Session{
		AccessToken: uuid.New().String(),
		UserID:      id,
		Email:       email,
	}

	data, err := sonic.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to encode session: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(db.sessionPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}
	if err := os.WriteFile(db.sessionPath, data, 0600); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	db.mu.Lock()
	db.session = s
	db.mu.Unlock()

	out := *s
	db.hub.Emit(backend.EventSignedIn, &out)
	return &out, nil
}

// restoreSession loads a saved session whose account still exists
func (db *DB) restoreSession() error {
	data, err := os.ReadFile(db.sessionPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read session: %w", err)
	}

	var s backend.Session
	if err := sonic.Unmarshal(data, &s); err != nil || s.UserID == "" {
		os.Remove(db.sessionPath)
		return nil
	}

	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM auth_users WHERE id = ?`, s.UserID).Scan(&n); err != nil {
		return fmt.Errorf("failed to check session: %w", err)
	}
	if n == 0 {
		os.Remove(db.sessionPath)
		return nil
	}

	db.session = &s
	return nil
}

func invalidCredentials() error {
	return &backend.Error{Op: "signin", Code: "invalid_credentials",
		Message: "Invalid login credentials", Err: backend.ErrInvalidCredentials}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
