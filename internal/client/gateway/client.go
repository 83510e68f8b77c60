// Copyright (c) 2026 GenrA. All rights reserved.

/*
Package gateway is the typed HTTP client of the GenrA API.

Every server operation has a method on [Client]. Responses are unwrapped from
the {"data": ...} envelope; non-2xx responses become [*APIError].

A request that fails with 401 while a refresh token is held triggers one
token refresh and one replay. Concurrent callers share a single refresh.
*/
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// DefaultTimeout bounds each HTTP round trip.
const DefaultTimeout = 15 * time.Second

const apiPrefix = "/api/v1"

// # Token Storage

// TokenStore holds the current session. Implementations must be safe for concurrent use.
type TokenStore interface {
	Session() *Session
	SetSession(session *Session)
}

// MemoryTokens keeps the session in memory.
type MemoryTokens struct {
	mu      sync.RWMutex
	session *Session
}

// Session returns a copy of the current session, or nil.
func (tokens *MemoryTokens) Session() *Session {
	tokens.mu.RLock()
	defer tokens.mu.RUnlock()
	if tokens.session == nil {
		return nil
	}
	copied := *tokens.session
	return &copied
}

// SetSession replaces the session; nil signs out.
func (tokens *MemoryTokens) SetSession(session *Session) {
	tokens.mu.Lock()
	defer tokens.mu.Unlock()
	tokens.session = session
}

// # Client

// Options configures a [Client]. Zero values use defaults.
type Options struct {
	HTTPClient *http.Client
	Timeout    time.Duration
	Tokens     TokenStore
	Logger     *slog.Logger
	Now        func() time.Time
}

// Client calls the GenrA API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenStore
	logger     *slog.Logger
	now        func() time.Time

	refreshMu sync.Mutex
}

// New creates a client for the API at baseURL (scheme and host, e.g. http://localhost:8080).
func New(baseURL string, options Options) *Client {
	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: options.HTTPClient,
		tokens:     options.Tokens,
		logger:     options.Logger,
		now:        options.Now,
	}
	if client.httpClient == nil {
		timeout := options.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		client.httpClient = &http.Client{Timeout: timeout}
	}
	if client.tokens == nil {
		client.tokens = &MemoryTokens{}
	}
	if client.logger == nil {
		client.logger = slog.Default()
	}
	if client.now == nil {
		client.now = time.Now
	}
	return client
}

// BaseURL returns the API origin.
func (client *Client) BaseURL() string { return client.baseURL }

// Tokens exposes the session store.
func (client *Client) Tokens() TokenStore { return client.tokens }

// SetSession stores a session, filling ExpiresAt from ExpiresIn when missing.
func (client *Client) SetSession(session *Session) {
	if session != nil && session.ExpiresAt.IsZero() && session.ExpiresIn > 0 {
		session.ExpiresAt = client.now().Add(time.Duration(session.ExpiresIn) * time.Second)
	}
	client.tokens.SetSession(session)
}

// # Transport

type call struct {
	method      string
	path        string
	query       url.Values
	body        any
	raw         []byte
	contentType string

	// anonymous requests never carry a token and never trigger a refresh.
	anonymous bool
}

type envelope struct {
	Data json.RawMessage `json:"data"`
	Meta *Meta           `json:"meta"`
}

// do performs the call and decodes the data member into out (which may be nil).
func (client *Client) do(ctx context.Context, request call, out any) (*Meta, error) {
	payload, contentType, err := request.encode()
	if err != nil {
		return nil, err
	}

	accessToken := ""
	if !request.anonymous {
		if session := client.tokens.Session(); session != nil {
			accessToken = session.AccessToken
		}
	}

	response, err := client.send(ctx, request, payload, contentType, accessToken)
	if err != nil {
		return nil, err
	}

	if response.StatusCode == http.StatusUnauthorized && accessToken != "" {
		drain(response)
		if refreshed, refreshErr := client.refreshAfter(ctx, accessToken); refreshErr == nil && refreshed != "" {
			response, err = client.send(ctx, request, payload, contentType, refreshed)
			if err != nil {
				return nil, err
			}
		} else {
			return nil, &APIError{Status: http.StatusUnauthorized, Code: CodeUnauthorized, Message: "Session expired"}
		}
	}

	defer drain(response)
	return decode(response, out)
}

func (request call) encode() ([]byte, string, error) {
	if request.raw != nil {
		return request.raw, request.contentType, nil
	}
	if request.body == nil {
		return nil, "", nil
	}
	payload, err := json.Marshal(request.body)
	if err != nil {
		return nil, "", fmt.Errorf("gateway_encode_failed: %w", err)
	}
	return payload, "application/json", nil
}

func (client *Client) send(ctx context.Context, request call, payload []byte, contentType, accessToken string) (*http.Response, error) {
	target := client.baseURL + apiPrefix + request.path
	if len(request.query) > 0 {
		target += "?" + request.query.Encode()
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	httpRequest, err := http.NewRequestWithContext(ctx, request.method, target, body)
	if err != nil {
		return nil, fmt.Errorf("gateway_request_failed: %w", err)
	}
	httpRequest.Header.Set("Accept", "application/json")
	if contentType != "" {
		httpRequest.Header.Set("Content-Type", contentType)
	}
	if accessToken != "" {
		httpRequest.Header.Set("Authorization", "Bearer "+accessToken)
	}

	response, err := client.httpClient.Do(httpRequest)
	if err != nil {
		return nil, fmt.Errorf("gateway_request_failed: %s %s: %w", request.method, request.path, err)
	}

	client.logger.DebugContext(ctx, "gateway_response",
		slog.String("method", request.method),
		slog.String("path", request.path),
		slog.Int("status", response.StatusCode),
	)
	return response, nil
}

func decode(response *http.Response, out any) (*Meta, error) {
	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("gateway_read_failed: %w", err)
	}

	if response.StatusCode < 200 || response.StatusCode > 299 {
		apiErr := &APIError{Status: response.StatusCode}
		if json.Unmarshal(body, apiErr) != nil || apiErr.Code == "" {
			apiErr.Code = strings.ToUpper(strings.ReplaceAll(http.StatusText(response.StatusCode), " ", "_"))
			apiErr.Message = strings.TrimSpace(string(body))
		}
		return nil, apiErr
	}

	if out == nil || response.StatusCode == http.StatusNoContent || len(body) == 0 {
		return nil, nil
	}

	var wrapped envelope
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, fmt.Errorf("gateway_decode_failed: %w", err)
	}
	if len(wrapped.Data) > 0 {
		if err := json.Unmarshal(wrapped.Data, out); err != nil {
			return nil, fmt.Errorf("gateway_decode_failed: %w", err)
		}
	}
	return wrapped.Meta, nil
}

func drain(response *http.Response) {
	_, _ = io.Copy(io.Discard, response.Body)
	_ = response.Body.Close()
}

/*
refreshAfter rotates the session after staleToken was rejected.

If another goroutine already replaced staleToken, its token is returned
without a second refresh. A rejected refresh clears the session.
*/
func (client *Client) refreshAfter(ctx context.Context, staleToken string) (string, error) {
	client.refreshMu.Lock()
	defer client.refreshMu.Unlock()

	current := client.tokens.Session()
	if current == nil || current.RefreshToken == "" {
		return "", fmt.Errorf("gateway_refresh_failed: no refresh token")
	}
	if current.AccessToken != staleToken {
		return current.AccessToken, nil
	}

	session, err := client.Refresh(ctx, current.RefreshToken)
	if err != nil {
		if apiErr, ok := AsAPIError(err); ok && apiErr.Status < http.StatusInternalServerError {
			client.tokens.SetSession(nil)
		}
		client.logger.WarnContext(ctx, "gateway_refresh_failed", slog.Any("error", err))
		return "", err
	}
	return session.AccessToken, nil
}

func pageQuery(page PageRequest, query url.Values) url.Values {
	if query == nil {
		query = url.Values{}
	}
	if page.Page > 0 {
		query.Set("page", fmt.Sprint(page.Page))
	}
	if page.Limit > 0 {
		query.Set("limit", fmt.Sprint(page.Limit))
	}
	return query
}

func escape(segment string) string {
	return url.PathEscape(segment)
}
