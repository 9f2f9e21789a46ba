package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/dori/quadro/internal/backend"
	"github.com/golang-jwt/jwt/v4"
)

// tokenResponse is GoTrue's session payload
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	ExpiresAt    int64  `json:"expires_at"`
	User         struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
	// Signup without auto-confirm returns the bare user
	ID    string `json:"id"`
	Email string `json:"email"`
}

// accessClaims are the parts of the access token the client reads.
// The token is not verified here; the server does that on every request.
type accessClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// ErrConfirmationRequired means sign-up succeeded but the account must be
// confirmed by email before signing in
var ErrConfirmationRequired = errors.New("check your email to confirm the account")

// SignUp registers an account, storing name in the user metadata
func (c *Client) SignUp(ctx context.Context, email, password, name string) (*backend.Session, error) {
	data, err := c.do(ctx, request{
		op:     "signup",
		method: http.MethodPost,
		path:   "/auth/v1/signup",
		body: map[string]any{
			"email":    strings.TrimSpace(email),
			"password": password,
			"data":     map[string]any{"name": name},
		},
		token: c.anonKey,
	})
	if err != nil {
		return nil, err
	}

	var tr tokenResponse
	if err := sonic.Unmarshal(data, &tr); err != nil {
		return nil, backend.Wrap("signup", "", fmt.Errorf("failed to decode response: %w", err))
	}
	if tr.AccessToken == "" {
		return nil, &backend.Error{Op: "signup", Code: "email_not_confirmed",
			Message: ErrConfirmationRequired.Error(), Err: ErrConfirmationRequired}
	}
	return c.startSession(tr)
}

// SignIn exchanges email and password for a session
func (c *Client) SignIn(ctx context.Context, email, password string) (*backend.Session, error) {
	return c.token(ctx, "signin", "password", map[string]any{
		"email":    strings.TrimSpace(email),
		"password": password,
	})
}

// SignOut revokes the session server-side and forgets it locally.
// The local session is dropped even if the server call fails.
func (c *Client) SignOut(ctx context.Context) error {
	token := c.accessToken()
	var callErr error
	if token != c.anonKey {
		_, callErr = c.do(ctx, request{
			op:     "signout",
			method: http.MethodPost,
			path:   "/auth/v1/logout",
			token:  token,
		})
	}

	c.mu.Lock()
	c.session = nil
	c.mu.Unlock()
	if err := c.removeSession(); err != nil {
		return err
	}
	c.hub.Emit(backend.EventSignedOut, nil)

	if errors.Is(callErr, backend.ErrNotAuthenticated) {
		return nil
	}
	return callErr
}

// Session returns the current session, refreshing it when expired
func (c *Client) Session(ctx context.Context) (*backend.Session, error) {
	c.mu.Lock()
	s := c.session
	c.mu.Unlock()
	if s == nil {
		return nil, nil
	}
	if !s.Expired(c.now()) {
		cp := *s
		return &cp, nil
	}
	if s.RefreshToken == "" {
		return nil, c.expire()
	}

	fresh, err := c.token(ctx, "refresh", "refresh_token", map[string]any{"refresh_token": s.RefreshToken})
	if err != nil {
		var be *backend.Error
		if errors.As(err, &be) && be.Status >= 400 && be.Status < 500 {
			return nil, c.expire()
		}
		return nil, err
	}
	return fresh, nil
}

// User fetches the account behind the current token from /auth/v1/user
func (c *Client) User(ctx context.Context) (id, email string, err error) {
	data, err := c.do(ctx, request{op: "user", method: http.MethodGet, path: "/auth/v1/user"})
	if err != nil {
		return "", "", err
	}
	var u struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	}
	if err := sonic.Unmarshal(data, &u); err != nil {
		return "", "", backend.Wrap("user", "", fmt.Errorf("failed to decode response: %w", err))
	}
	return u.ID, u.Email, nil
}

// OnAuthStateChange registers fn for sign-in and sign-out
func (c *Client) OnAuthStateChange(fn backend.AuthListener) func() {
	return c.hub.Subscribe(fn)
}

func (c *Client) token(ctx context.Context, op, grant string, body map[string]any) (*backend.Session, error) {
	data, err := c.do(ctx, request{
		op:     op,
		method: http.MethodPost,
		path:   "/auth/v1/token",
		query:  []string{"grant_type=" + grant},
		body:   body,
		token:  c.anonKey,
	})
	if err != nil {
		return nil, err
	}

	var tr tokenResponse
	if err := sonic.Unmarshal(data, &tr); err != nil {
		return nil, backend.Wrap(op, "", fmt.Errorf("failed to decode response: %w", err))
	}
	if tr.AccessToken == "" {
		return nil, &backend.Error{Op: op, Message: "no access token in response", Err: backend.ErrNotAuthenticated}
	}
	return c.startSession(tr)
}

func (c *Client) startSession(tr tokenResponse) (*backend.Session, error) {
	s := &backend.Session{
		AccessToken:  tr.AccessToken,
		RefreshToken: tr.RefreshToken,
		UserID:       tr.User.ID,
		Email:        tr.User.Email,
	}
	switch {
	case tr.ExpiresAt > 0:
		s.ExpiresAt = time.Unix(tr.ExpiresAt, 0).UTC()
	case tr.ExpiresIn > 0:
		s.ExpiresAt = c.now().Add(time.Duration(tr.ExpiresIn) * time.Second).UTC()
	}
	fillFromClaims(s)

	if err := c.saveSession(s); err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.session = s
	c.mu.Unlock()

	out := *s
	c.hub.Emit(backend.EventSignedIn, &out)
	return &out, nil
}

// fillFromClaims fills blanks in s from the access token's claims
func fillFromClaims(s *backend.Session) {
	var claims accessClaims
	if _, _, err := jwt.NewParser().ParseUnverified(s.AccessToken, &claims); err != nil {
		return
	}
	if s.UserID == "" {
		s.UserID = claims.Subject
	}
	if s.Email == "" {
		s.Email = claims.Email
	}
	if s.ExpiresAt.IsZero() && claims.ExpiresAt != nil {
		s.ExpiresAt = claims.ExpiresAt.Time.UTC()
	}
}

func (c *Client) accessToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return c.anonKey
	}
	return c.session.AccessToken
}

func (c *Client) expire() error {
	c.mu.Lock()
	c.session = nil
	c.mu.Unlock()
	if err := c.removeSession(); err != nil {
		return err
	}
	c.hub.Emit(backend.EventSignedOut, nil)
	return nil
}

func (c *Client) saveSession(s *backend.Session) error {
	if c.sessionPath == "" {
		return nil
	}
	data, err := sonic.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(c.sessionPath), 0755); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}
	if err := os.WriteFile(c.sessionPath, data, 0600); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (c *Client) loadSession() error {
	if c.sessionPath == "" {
		return nil
	}
	data, err := os.ReadFile(c.sessionPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read session: %w", err)
	}
	var s backend.Session
	if err := sonic.Unmarshal(data, &s); err != nil || s.AccessToken == "" {
		return c.removeSession()
	}
	c.session = &s
	return nil
}

func (c *Client) removeSession() error {
	if c.sessionPath == "" {
		return nil
	}
	if err := os.Remove(c.sessionPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove session: %w", err)
	}
	return nil
}
