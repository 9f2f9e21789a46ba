// Package rest is the hosted backend: a PostgREST data API and a GoTrue auth
// API behind one base URL, the layout Supabase projects expose.
package rest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/dori/quadro/internal/backend"
	"golang.org/x/time/rate"
)

// ErrNotConfigured is returned by New without a URL or key
var ErrNotConfigured = errors.New("rest backend not configured")

// Options configures a Client
type Options struct {
	URL     string
	AnonKey string
	// RateLimit is the maximum requests per second; zero means unlimited
	RateLimit float64
	// SessionPath is where the signed-in session is saved; empty keeps it in memory
	SessionPath string
	HTTPClient  *http.Client
}

// Client talks to a PostgREST/GoTrue deployment
type Client struct {
	baseURL     string
	anonKey     string
	httpClient  *http.Client
	limiter     *rate.Limiter
	sessionPath string
	now         func() time.Time
	hub         backend.AuthHub

	mu      sync.Mutex
	session *backend.Session
}

var _ backend.Backend = (*Client)(nil)

// New creates a client and restores a saved session, if any
func New(opts Options) (*Client, error) {
	if opts.URL == "" || opts.AnonKey == "" {
		return nil, ErrNotConfigured
	}

	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}

	c := &Client{
		baseURL:     strings.TrimRight(opts.URL, "/"),
		anonKey:     opts.AnonKey,
		httpClient:  client,
		limiter:     rate.NewLimiter(limit, 1),
		sessionPath: opts.SessionPath,
		now:         time.Now,
	}

	if err := c.loadSession(); err != nil {
		return nil, err
	}
	return c, nil
}

// Close releases idle connections
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// request is one call against the deployment
type request struct {
	op     string
	table  string
	method string
	path   string
	query  []string // already-encoded key=value pairs
	body   any
	prefer string
	token  string // overrides the session token
}

// apiError is the union of PostgREST and GoTrue error bodies
type apiError struct {
	Code             any    `json:"code"`
	ErrorCode        string `json:"error_code"`
	Message          string `json:"message"`
	Msg              string `json:"msg"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	Details          string `json:"details"`
	Hint             string `json:"hint"`
}

// do sends r and returns the raw response body
func (c *Client) do(ctx context.Context, r request) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, backend.Wrap(r.op, r.table, err)
	}

	fullURL := c.baseURL + r.path
	if len(r.query) > 0 {
		fullURL += "?" + strings.Join(r.query, "&")
	}

	var body io.Reader
	if r.body != nil {
		data, err := sonic.Marshal(r.body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, fullURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	token := r.token
	if token == "" {
		token = c.accessToken()
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.prefer != "" {
		req.Header.Set("Prefer", r.prefer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, backend.Wrap(r.op, r.table, fmt.Errorf("request failed: %w", err))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, backend.Wrap(r.op, r.table, fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode >= 400 {
		return nil, decodeError(r.op, r.table, resp.StatusCode, data)
	}
	return data, nil
}

func decodeError(op, table string, status int, data []byte) error {
	var body apiError
	_ = sonic.Unmarshal(data, &body)

	e := &backend.Error{Op: op, Table: table, Status: status}

	switch code := body.Code.(type) {
	case string:
		e.Code = code
	case float64:
		e.Code = fmt.Sprint(int(code))
	}
	if body.ErrorCode != "" {
		e.Code = body.ErrorCode
	}
	if e.Code == "" {
		e.Code = body.Error
	}

	for _, m := range []string{body.Message, body.Msg, body.ErrorDescription, body.Error} {
		if m != "" {
			e.Message = m
			break
		}
	}
	if e.Message == "" {
		e.Message = http.StatusText(status)
	}

	switch {
	case e.Code == "PGRST116" || status == http.StatusNotFound:
		e.Err = backend.ErrNotFound
	case e.Code == "23505" || e.Code == "23503" || e.Code == "user_already_exists" || status == http.StatusConflict:
		e.Err = backend.ErrConflict
	case e.Code == "invalid_credentials" || e.Code == "invalid_grant":
		e.Err = backend.ErrInvalidCredentials
	case status == http.StatusUnauthorized:
		e.Err = backend.ErrNotAuthenticated
	}
	return e
}
