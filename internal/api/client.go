// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Configuration constants for the parley API.
const (
	// DefaultBaseURL is the base URL for the parley backend.
	DefaultBaseURL = "https://api.parley.chat"

	// DefaultTimeout is the default timeout for non-streaming requests.
	DefaultTimeout = 60 * time.Second

	// MaxResponseSize is the maximum allowed response body size.
	// SECURITY: Response size limit prevents memory exhaustion.
	MaxResponseSize = 10 * 1024 * 1024 // 10MB limit
)

var (
	// PERFORMANCE: Connection pooling reduces TCP handshake overhead.
	// One transport shared by every client so connections pool across
	// instances.
	sharedTransport = &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
	}

	// sharedStreamingClient is used for completion streams (no timeout,
	// context-controlled).
	sharedStreamingClient = &http.Client{
		Transport: sharedTransport,
		// No timeout for streaming - controlled via context
	}
)

// Error variables for common API errors.
var (
	// ErrAuthFailed indicates authentication failed (bad credentials or
	// an expired token). The UI routes this to the login screen.
	ErrAuthFailed = errors.New("authentication failed")

	// ErrRateLimited indicates the daily message limit was reached.
	ErrRateLimited = errors.New("rate limited")

	// ErrEmailTaken indicates the email is already registered.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidInput indicates the server rejected the request body.
	ErrInvalidInput = errors.New("invalid input")
)

// APIError represents an error response from the parley backend that does
// not map to one of the sentinel errors above.
type APIError struct {
	Status  int
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error (HTTP %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api error (HTTP %d)", e.Status)
}

// Client is a client for the parley backend API.
//
// The zero token means unauthenticated; auth endpoints that require a
// bearer token will fail with ErrAuthFailed server-side. The token is
// mutex-guarded because auth commands rewrite it from background
// goroutines while other requests are in flight.
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu    sync.RWMutex
	token string
}

// NewClient creates a new API client for the given base URL. An empty
// baseURL falls back to DefaultBaseURL.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Transport: sharedTransport,
			Timeout:   DefaultTimeout,
		},
	}
}

// SetTimeout overrides the timeout for non-streaming requests.
// Streaming completions stay context-bounded and are unaffected.
func (c *Client) SetTimeout(timeout time.Duration) {
	if timeout > 0 {
		c.httpClient.Timeout = timeout
	}
}

// SetToken sets the bearer token used for authenticated requests.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Token returns the current bearer token, or "" if unauthenticated.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// setHeaders sets the required headers for API requests.
func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

// =============================================================================
// AUTH ENDPOINTS
// =============================================================================

// Register creates a new account and returns the signed-in user.
func (c *Client) Register(ctx context.Context, name, email, password string) (*User, error) {
	var user User
	body := RegisterRequest{Name: name, Email: email, Password: password}
	if err := c.doJSON(ctx, http.MethodPost, "/auth/register", body, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Login authenticates with email and password and returns the user,
// including a fresh bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (*User, error) {
	var user User
	body := LoginRequest{Email: email, Password: password}
	if err := c.doJSON(ctx, http.MethodPost, "/auth/login", body, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// CurrentUser fetches the account behind the current token. ErrAuthFailed
// means the stored token is no longer valid and the cached user should be
// cleared.
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	var user User
	if err := c.doJSON(ctx, http.MethodGet, "/auth/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUser updates profile fields on the current account. Empty fields
// in the request are left unchanged server-side.
func (c *Client) UpdateUser(ctx context.Context, update UpdateUserRequest) (*User, error) {
	var user User
	if err := c.doJSON(ctx, http.MethodPut, "/auth/update", update, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// =============================================================================
// MODEL CATALOGUE
// =============================================================================

// Models fetches the model catalogue with per-day usage limits.
func (c *Client) Models(ctx context.Context) ([]Model, error) {
	var models []Model
	if err := c.doJSON(ctx, http.MethodGet, "/chat/limits", nil, &models); err != nil {
		return nil, err
	}
	return models, nil
}

// =============================================================================
// STREAMING COMPLETION
// =============================================================================

// OnTextFunc receives the running concatenation of completion text after
// each batch of decoded deltas.
type OnTextFunc func(text string)

// Complete performs a streaming chat completion request and returns the
// full completion text.
//
// The full message history is sent; the server holds no state. onText, if
// non-nil, is invoked with the running concatenation whenever new deltas
// arrive, so the caller can render partial output live. On any transport
// or HTTP error the partial text is discarded and only the error is
// returned.
func (c *Client) Complete(ctx context.Context, modelID string, messages []Message, onText OnTextFunc) (string, error) {
	reqBody := CompletionRequest{ModelID: modelID, Messages: messages}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	c.setHeaders(req)
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	// PERFORMANCE: Shared streaming client, timeout handled via context.
	resp, err := sharedStreamingClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("chat completion rejected: status %d", resp.StatusCode)
		body, _ := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
		return "", c.handleErrorResponse(resp.StatusCode, body)
	}

	// The decoder is fed the whole accumulated body after every read, and
	// tracks internally how much it has already consumed. Each event line
	// is therefore decoded exactly once, in arrival order.
	var (
		decoder Decoder
		buf     strings.Builder
		chunk   = make([]byte, 4096)
	)
	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		n, err := resp.Body.Read(chunk)
		if n > 0 {
			buf.Write(chunk[:n])
			if delta := decoder.Feed(buf.String()); delta != "" && onText != nil {
				onText(decoder.Text())
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			// Partial text is deliberately dropped here. A failed
			// stream must leave no half-finished reply behind.
			log.Printf("chat stream aborted after %d bytes: %v", buf.Len(), err)
			return "", fmt.Errorf("stream read failed: %w", err)
		}
	}

	// Flush a final unterminated line, if any.
	if tail := buf.String(); !strings.HasSuffix(tail, "\n") {
		buf.WriteByte('\n')
		if delta := decoder.Feed(buf.String()); delta != "" && onText != nil {
			onText(decoder.Text())
		}
	}

	return decoder.Text(), nil
}

// =============================================================================
// REQUEST PLUMBING
// =============================================================================

// doJSON performs a JSON request against the API and decodes the response
// into out. A nil body sends no request body; a nil out discards the
// response.
func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := readResponse(resp)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.handleErrorResponse(resp.StatusCode, respBody)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// readResponse reads a response body with a size limit.
func readResponse(resp *http.Response) ([]byte, error) {
	limitedReader := io.LimitReader(resp.Body, MaxResponseSize)
	body, err := io.ReadAll(limitedReader)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) == MaxResponseSize {
		return nil, fmt.Errorf("response exceeded maximum size of %d bytes", MaxResponseSize)
	}
	return body, nil
}

// handleErrorResponse converts HTTP error responses to appropriate Go
// errors. The server message, when present, is preserved via %w wrapping
// so callers can both match the sentinel and show the text.
func (c *Client) handleErrorResponse(statusCode int, body []byte) error {
	var apiErr apiErrorResponse
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Message != "" {
		switch statusCode {
		case http.StatusUnauthorized:
			return fmt.Errorf("%w: %s", ErrAuthFailed, apiErr.Message)
		case http.StatusTooManyRequests:
			return fmt.Errorf("%w: %s", ErrRateLimited, apiErr.Message)
		case http.StatusConflict:
			return fmt.Errorf("%w: %s", ErrEmailTaken, apiErr.Message)
		case http.StatusBadRequest:
			return fmt.Errorf("%w: %s", ErrInvalidInput, apiErr.Message)
		default:
			return &APIError{Status: statusCode, Message: apiErr.Message}
		}
	}

	// Fallback for unparseable error responses
	switch statusCode {
	case http.StatusUnauthorized:
		return ErrAuthFailed
	case http.StatusTooManyRequests:
		return ErrRateLimited
	case http.StatusConflict:
		return ErrEmailTaken
	case http.StatusBadRequest:
		return ErrInvalidInput
	default:
		return &APIError{Status: statusCode, Message: strings.TrimSpace(string(body))}
	}
}
