package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/davrk/sharpen/internal/model"
)

// Client talks to the sharpen sync service. All methods are safe to call
// without a cached token; authenticated endpoints return ErrNotAuthenticated.
type Client struct {
	baseURL string
	http    *http.Client
	creds   *CredentialStore
}

// ErrNotAuthenticated is returned for endpoints that need a session token
// when none is cached.
var ErrNotAuthenticated = fmt.Errorf("not authenticated")

// NewClient builds a client against the given base URL, e.g.
// "https://example.com/api/sharpen".
func NewClient(baseURL string, creds *CredentialStore) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		creds:   creds,
	}
}

// AuthStatus describes the server's view of the cached session.
type AuthStatus struct {
	Authenticated bool   `json:"authenticated"`
	Email         string `json:"email"`
}

// CheckAuth validates the cached session token against the server.
// With no cached token it reports unauthenticated without a network call.
func (c *Client) CheckAuth(ctx context.Context) (AuthStatus, error) {
	token := c.creds.Load().SessionToken
	if token == "" {
		return AuthStatus{}, nil
	}
	var status AuthStatus
	if err := c.do(ctx, http.MethodGet, "/auth/me", token, nil, &status); err != nil {
		return AuthStatus{}, err
	}
	if !status.Authenticated {
		// Stale token. Best-effort drop so later commands skip the network.
		_ = c.creds.Clear()
	}
	return status, nil
}

// RequestLoginLink asks the server to email a one-time login link.
func (c *Client) RequestLoginLink(ctx context.Context, email string) (string, error) {
	req := map[string]string{"email": email}
	var resp struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := c.do(ctx, http.MethodPost, "/auth/request", "", req, &resp); err != nil {
		return "", err
	}
	if !resp.Success {
		return "", fmt.Errorf("login request rejected: %s", resp.Message)
	}
	return resp.Message, nil
}

// VerifyToken exchanges a one-time login token for a session token and
// caches the resulting credentials.
func (c *Client) VerifyToken(ctx context.Context, token string) (Credentials, error) {
	req := map[string]string{"token": token}
	var resp struct {
		SessionToken string `json:"session_token"`
		Email        string `json:"email"`
		Error        string `json:"error"`
	}
	if err := c.do(ctx, http.MethodPost, "/auth/verify", "", req, &resp); err != nil {
		return Credentials{}, err
	}
	if resp.SessionToken == "" {
		if resp.Error == "" {
			resp.Error = "invalid token"
		}
		return Credentials{}, fmt.Errorf("verification failed: %s", resp.Error)
	}
	creds := Credentials{SessionToken: resp.SessionToken, Email: resp.Email}
	if err := c.creds.Save(creds); err != nil {
		return Credentials{}, err
	}
	return creds, nil
}

// Logout invalidates the server session and clears the local cache.
// The cache is cleared even when the server call fails.
func (c *Client) Logout(ctx context.Context) error {
	token := c.creds.Load().SessionToken
	var reqErr error
	if token != "" {
		reqErr = c.do(ctx, http.MethodPost, "/auth/logout", token, nil, nil)
	}
	if err := c.creds.Clear(); err != nil {
		return err
	}
	return reqErr
}

// FetchProgress downloads the remote user data. Returns nil without error
// when the server has no record yet.
func (c *Client) FetchProgress(ctx context.Context) (*model.UserData, error) {
	token := c.creds.Load().SessionToken
	if token == "" {
		return nil, ErrNotAuthenticated
	}
	var resp struct {
		Data *model.UserData `json:"data"`
	}
	err := c.do(ctx, http.MethodGet, "/progress", token, nil, &resp)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return resp.Data, nil
}

// PushProgress uploads user data, overwriting the remote copy.
func (c *Client) PushProgress(ctx context.Context, data model.UserData) error {
	token := c.creds.Load().SessionToken
	if token == "" {
		return ErrNotAuthenticated
	}
	return c.do(ctx, http.MethodPost, "/progress", token, data, nil)
}

// statusError preserves the HTTP status for callers that care about 404.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.code, e.body)
}

func isNotFound(err error) bool {
	se, ok := err.(*statusError)
	return ok && se.code == http.StatusNotFound
}

func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	var payload *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		payload = bytes.NewReader(raw)
	} else {
		payload = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		// Best-effort close of the response body.
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(resp.Body)
		return &statusError{code: resp.StatusCode, body: strings.TrimSpace(buf.String())}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
