package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/moura-tracker/timeclock/internal/domain/auth"
	"golang.org/x/oauth2"
)

const maxBodyBytes = 4 << 20

// Client calls the time-tracking backend. Requests made with a session in the
// context carry that session's bearer token.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// envelope is the backend's {status, message, data} wrapper. Bodies without it are
// decoded as the payload itself. Error bodies carry a numeric status instead.
type envelope struct {
	Status  json.RawMessage `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (e envelope) isError() bool {
	var s string
	if err := json.Unmarshal(e.Status, &s); err != nil {
		return false
	}
	return strings.EqualFold(s, "error")
}

func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.Do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, query url.Values, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, query, body, out)
}

func (c *Client) Put(ctx context.Context, path string, query url.Values, body, out any) error {
	return c.Do(ctx, http.MethodPut, path, query, body, out)
}

// Do sends one request and decodes the unwrapped payload into out when non-nil.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	endpoint := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode backend request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to build backend request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient(ctx).Do(req)
	if err != nil {
		slog.Error("Backend request failed", "method", method, "path", path, "request_id", requestID, "error", err)
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: failed to read response: %w", ErrUnavailable, err)
	}

	slog.Debug("Backend request completed",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"request_id", requestID,
		"duration", time.Since(start),
	)

	return decodeResponse(resp.StatusCode, raw, out)
}

// httpClient returns a client that injects the session token, or the bare client
// for anonymous calls such as login.
func (c *Client) httpClient(ctx context.Context) *http.Client {
	session, ok := auth.SessionFromContext(ctx)
	if !ok || session.Token == "" {
		return c.http
	}
	base := context.WithValue(ctx, oauth2.HTTPClient, c.http)
	client := oauth2.NewClient(base, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: session.Token,
		TokenType:   "Bearer",
	}))
	client.Timeout = c.http.Timeout
	return client
}

func decodeResponse(status int, raw []byte, out any) error {
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return fmt.Errorf("%w: backend returned status %d", auth.ErrSessionExpired, status)
	}

	var env envelope
	hasEnvelope := len(bytes.TrimSpace(raw)) > 0 && json.Unmarshal(raw, &env) == nil

	if status < 200 || status > 299 {
		apiErr := &APIError{StatusCode: status, kind: kindFor(status)}
		if hasEnvelope {
			apiErr.Message = env.Message
		}
		return apiErr
	}

	if hasEnvelope && env.isError() {
		return &APIError{StatusCode: http.StatusBadRequest, Message: env.Message, kind: ErrRejected}
	}

	if out == nil {
		return nil
	}

	payload := raw
	if hasEnvelope && env.Data != nil {
		payload = env.Data
	}
	if len(bytes.TrimSpace(payload)) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("failed to decode backend response: %w", err)
	}
	return nil
}

func kindFor(status int) error {
	switch {
	case status == http.StatusNotFound:
		return ErrNotFound
	case status == http.StatusConflict:
		return ErrConflict
	case status >= 500:
		return ErrUnavailable
	default:
		return ErrRejected
	}
}

// Message extracts the backend's message from err, if any.
func Message(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return ""
}
