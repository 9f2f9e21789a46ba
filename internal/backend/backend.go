// Package backend defines the contract between the client and the service that
// holds authoritative data: table-level CRUD plus password authentication.
//
// Two implementations exist: internal/db (local SQLite) and internal/rest
// (a PostgREST/GoTrue deployment such as Supabase).
package backend

import (
	"context"
	"time"
)

// Table names shared by every backend
const (
	TableUsers         = "users"
	TableBoards        = "boards"
	TableBoardMembers  = "board_members"
	TableBoardSettings = "board_settings"
	TableColumns       = "columns"
	TableCards         = "cards"
	TableTags          = "tags"
	TableFolders       = "folders"
	TableNotes         = "notes"
	TableEvents        = "events"
)

// Row is a single record keyed by column name
type Row = map[string]any

// DB is the CRUD half of the contract
type DB interface {
	// Select returns rows matching q, in q's order
	Select(ctx context.Context, q Query) ([]Row, error)
	// Insert stores row and returns it as persisted (with id and timestamps)
	Insert(ctx context.Context, table string, row Row) (Row, error)
	// Update merges partial into the row with the given id and returns the result.
	// Returns ErrNotFound when no row matched.
	Update(ctx context.Context, table, id string, partial Row) (Row, error)
	// Delete removes the row with the given id
	Delete(ctx context.Context, table, id string) error
	// Upsert inserts row or, if a row with the same conflict column value exists, updates it
	Upsert(ctx context.Context, table string, row Row, conflict string) (Row, error)
}

// Session identifies the signed-in account
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	UserID       string    `json:"user_id"`
	Email        string    `json:"email"`
	ExpiresAt    time.Time `json:"expires_at,omitempty"`
}

// Expired reports whether the session is past its expiry. Zero means no expiry.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// AuthEvent is the kind of auth state change
type AuthEvent string

const (
	EventSignedIn  AuthEvent = "SIGNED_IN"
	EventSignedOut AuthEvent = "SIGNED_OUT"
)

// AuthListener receives auth state changes. session is nil on sign-out.
type AuthListener func(event AuthEvent, session *Session)

// Auth is the authentication half of the contract
type Auth interface {
	SignUp(ctx context.Context, email, password, name string) (*Session, error)
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignOut(ctx context.Context) error
	// Session returns the current session, or nil when signed out
	Session(ctx context.Context) (*Session, error)
	OnAuthStateChange(fn AuthListener) (unsubscribe func())
}

// Backend is everything the data access layer needs
type Backend interface {
	DB
	Auth
	Close() error
}

// RowPatch is one partial update of a batch
type RowPatch struct {
	ID  string
	Row Row
}

// Batcher is implemented by backends that can apply several updates
// atomically: all patches land or none do
type Batcher interface {
	UpdateAll(ctx context.Context, table string, patches []RowPatch) error
}
