// Package apiclient is the HTTP client of the subscription service and the
// user directory. Client implements session.Backend and DirectoryClient
// implements session.Directory.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rshade/subview/internal/logging"
	"github.com/rshade/subview/internal/subscription"
)

// DefaultTimeout bounds one request when no timeout is configured.
const DefaultTimeout = 15 * time.Second

// maxErrorBody caps how much of an error response is read for its message.
const maxErrorBody = 4096

// Errors returned before a request is sent.
var (
	ErrInvalidBaseURL = errors.New("invalid base URL")
	ErrInvalidID      = errors.New("invalid subscription identifier")
	ErrUnknownRoutes  = errors.New("unknown route family")
)

// Routes selects the path family of the subscription service.
type Routes string

// Route families.
const (
	// RoutesUnified addresses /subscriptions/{id}.
	RoutesUnified Routes = "unified"
	// RoutesProfile addresses /profile/subscriptions/{id}.
	RoutesProfile Routes = "profile"
)

func (r Routes) prefix() string {
	if r == RoutesProfile {
		return "/profile/subscriptions"
	}
	return "/subscriptions"
}

// Option configures a Client or DirectoryClient.
type Option func(*transport)

// WithToken sends token as a bearer credential.
func WithToken(token string) Option {
	return func(t *transport) { t.token = token }
}

// WithTimeout bounds each request.
func WithTimeout(d time.Duration) Option {
	return func(t *transport) {
		if d > 0 {
			t.http.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(t *transport) { t.http = c }
}

// transport is the request plumbing shared by both clients.
type transport struct {
	base  *url.URL
	token string
	http  *http.Client
}

func newTransport(baseURL string, opts []Option) (*transport, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBaseURL, baseURL)
	}
	t := &transport{base: u, http: &http.Client{Timeout: DefaultTimeout}}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

func (t *transport) endpoint(path string, query url.Values) string {
	u := *t.base
	u.Path = t.base.Path + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// do sends a request and decodes a JSON response into out. A non-2xx
// response becomes a *subscription.StatusError.
func (t *transport) do(ctx context.Context, operation, method, target string, body, out any) error {
	log := logging.FromContext(ctx)
	started := time.Now()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding %s request: %w", operation, err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("building %s request: %w", operation, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if t.token != "" {
		req.Header.Set("Authorization", "Bearer "+t.token)
	}
	if traceID := logging.TraceIDFromContext(ctx); traceID != "" {
		req.Header.Set("X-Trace-Id", traceID)
	}

	resp, err := t.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, target, err)
	}
	defer resp.Body.Close()

	log.Debug().
		Ctx(ctx).
		Str("component", "apiclient").
		Str("operation", operation).
		Str("method", method).
		Str("url", target).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(started)).
		Msg("request finished")

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return statusError(resp)
	}
	if out == nil {
		return nil
	}
	if decodeErr := json.NewDecoder(resp.Body).Decode(out); decodeErr != nil {
		return fmt.Errorf("decoding %s response: %w", operation, decodeErr)
	}
	return nil
}

func statusError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	msg := strings.TrimSpace(string(raw))
	if json.Unmarshal(raw, &payload) == nil {
		switch {
		case payload.Message != "":
			msg = payload.Message
		case payload.Error != "":
			msg = payload.Error
		}
	}
	return subscription.NewStatusError(resp.StatusCode, msg)
}

// Client calls the subscription service.
type Client struct {
	t      *transport
	routes Routes
}

// New returns a client for the service at baseURL using the given routes.
func New(baseURL string, routes Routes, opts ...Option) (*Client, error) {
	if routes != RoutesUnified && routes != RoutesProfile {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRoutes, routes)
	}
	t, err := newTransport(baseURL, opts)
	if err != nil {
		return nil, err
	}
	return &Client{t: t, routes: routes}, nil
}

// Routes returns the route family in use.
func (c *Client) Routes() Routes {
	return c.routes
}

func (c *Client) path(id, suffix string) (string, error) {
	if _, err := uuid.Parse(id); err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return c.routes.prefix() + "/" + url.PathEscape(id) + suffix, nil
}

func getOne[T any](ctx context.Context, c *Client, operation, id, suffix string) (T, error) {
	var out T
	p, err := c.path(id, suffix)
	if err != nil {
		return out, err
	}
	err = c.t.do(ctx, operation, http.MethodGet, c.t.endpoint(p, nil), nil, &out)
	return out, err
}

func getPage[T any](ctx context.Context, c *Client, operation, id, suffix string, page, pageSize int) (subscription.Page[T], error) {
	var out subscription.Page[T]
	p, err := c.path(id, suffix)
	if err != nil {
		return out, err
	}
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("pageSize", strconv.Itoa(pageSize))
	err = c.t.do(ctx, operation, http.MethodGet, c.t.endpoint(p, q), nil, &out)
	return out, err
}
