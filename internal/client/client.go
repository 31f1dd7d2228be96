// Package client is the Go client for the gatekeeper API, plus the
// client-side auth state cache that UI layers consult instead of hitting the
// server on every render.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/sessionlab/gatekeeper/internal/core/domain"
)

const defaultRequestTimeout = 10 * time.Second

// Client talks to a gatekeeper server over HTTP. It holds the session
// reference obtained at login and presents it as a bearer token. Safe for
// concurrent use.
type Client struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: defaultRequestTimeout},
	}
}

type credentialsPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authPayload struct {
	Token string                 `json:"token"`
	User  *domain.PublicIdentity `json:"user"`
}

type sessionPayload struct {
	LoggedIn bool                   `json:"logged_in"`
	User     *domain.PublicIdentity `json:"user"`
}

// Signup registers a new identity. A duplicate email returns
// domain.ErrIdentityExists.
func (c *Client) Signup(ctx context.Context, email, password string) (*domain.PublicIdentity, error) {
	var out authPayload
	err := c.do(ctx, http.MethodPost, "/auth/signup", credentialsPayload{Email: email, Password: password}, &out)
	if err != nil {
		return nil, err
	}
	return out.User, nil
}

// Login authenticates and stores the returned session reference for
// subsequent calls. Every authentication failure is
// domain.ErrInvalidCredentials.
func (c *Client) Login(ctx context.Context, email, password string) (*domain.PublicIdentity, error) {
	var out authPayload
	err := c.do(ctx, http.MethodPost, "/auth/login", credentialsPayload{Email: email, Password: password}, &out)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.token = out.Token
	c.mu.Unlock()
	return out.User, nil
}

// Logout revokes the held session reference and discards it. Calling it
// without a session is not an error.
func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/auth/logout", nil, nil)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
	return nil
}

// Session queries the server for the current authentication state.
func (c *Client) Session(ctx context.Context) (bool, *domain.PublicIdentity, error) {
	var out sessionPayload
	if err := c.do(ctx, http.MethodGet, "/auth/session", nil, &out); err != nil {
		return false, nil, err
	}
	return out.LoggedIn, out.User, nil
}

// Secret fetches the protected demo resource. Denied access returns
// domain.ErrSessionInvalid.
func (c *Client) Secret(ctx context.Context) (string, error) {
	var out struct {
		Message string `json:"message"`
	}
	if err := c.do(ctx, http.MethodGet, "/secret", nil, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

// Token returns the session reference held from the last login, if any.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
	case resp.StatusCode == http.StatusUnauthorized:
		if path == "/auth/login" {
			return domain.ErrInvalidCredentials
		}
		return domain.ErrSessionInvalid
	case resp.StatusCode == http.StatusConflict:
		return domain.ErrIdentityExists
	default:
		return fmt.Errorf("%s %s: unexpected status %d", method, path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
