package buildserver

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
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/vango-dev/studio/internal/errors"
	"github.com/vango-dev/studio/internal/telemetry"
)

// DefaultTimeout bounds every HTTP request to the build server.
const DefaultTimeout = 10 * time.Second

// maxBody caps how much of a response body is read.
const maxBody = 16 << 20

// SessionInit is the build server's answer to a session init request.
type SessionInit struct {
	SessionID     string `json:"sessionId"`
	WorkspacePath string `json:"workspacePath"`
	SessionPath   string `json:"sessionPath"`
}

// Client talks to the build server over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a client for the build server at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "buildserver")
	return c
}

// BaseURL returns the server URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// InitSession asks the server for a session. With forceNew the server
// discards the current session and creates a fresh one.
func (c *Client) InitSession(ctx context.Context, forceNew bool) (SessionInit, error) {
	var body struct {
		ForceNew bool `json:"forceNew,omitempty"`
	}
	body.ForceNew = forceNew

	var out SessionInit
	if err := c.do(ctx, http.MethodPost, "/session/init", body, &out); err != nil {
		return SessionInit{}, err
	}
	if out.SessionID == "" {
		return SessionInit{}, errors.New("E242").
			WithDetail("session init response has no sessionId").
			WithSource(c.baseURL + "/session/init")
	}
	return out, nil
}

type fileResponse struct {
	Success bool    `json:"success"`
	Content *string `json:"content,omitempty"`
	Error   string  `json:"error,omitempty"`
}

// ReadFile returns the content of a file in the session workspace.
func (c *Client) ReadFile(ctx context.Context, sessionID, path string) (string, error) {
	endpoint := sessionFilePath(sessionID, path)

	var out fileResponse
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &out); err != nil {
		return "", err
	}
	if !out.Success || out.Content == nil {
		detail := "server reported no content"
		if out.Error != "" {
			detail = out.Error
		}
		return "", errors.New("E241").WithDetail(detail).WithSource(endpoint)
	}
	return *out.Content, nil
}

// WriteFile replaces the content of a file in the session workspace.
func (c *Client) WriteFile(ctx context.Context, sessionID, path, content string) error {
	endpoint := sessionFilePath(sessionID, path)

	body := struct {
		Content string `json:"content"`
	}{content}

	var out fileResponse
	if err := c.do(ctx, http.MethodPut, endpoint, body, &out); err != nil {
		return err
	}
	if !out.Success {
		detail := "write not acknowledged"
		if out.Error != "" {
			detail = out.Error
		}
		return errors.New("E241").WithDetail(detail).WithSource(endpoint)
	}
	return nil
}

// ScanComponents returns the server's component list. Entries that are not
// JSON objects are dropped; fields of the wrong type read as empty.
func (c *Client) ScanComponents(ctx context.Context) ([]RawComponent, error) {
	var out struct {
		Components []json.RawMessage `json:"components"`
	}
	if err := c.do(ctx, http.MethodGet, "/scan-components", nil, &out); err != nil {
		return nil, err
	}

	comps := make([]RawComponent, 0, len(out.Components))
	for _, raw := range out.Components {
		rc, ok := decodeRawComponent(raw)
		if !ok {
			c.logger.Debug("skipping malformed component entry", "entry", string(raw))
			continue
		}
		comps = append(comps, rc)
	}
	return comps, nil
}

func sessionFilePath(sessionID, path string) string {
	parts := strings.Split(strings.TrimLeft(path, "/"), "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return "/session-file/" + url.PathEscape(sessionID) + "/" + strings.Join(parts, "/")
}

// do performs a JSON request and decodes a JSON response into out.
func (c *Client) do(ctx context.Context, method, path string, in, out any) (err error) {
	ctx, span := telemetry.StartSpan(ctx, "buildserver.request",
		attribute.String("http.method", method),
		attribute.String("http.route", path),
	)
	defer func() { telemetry.EndSpan(span, err) }()

	target := c.baseURL + path

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return errors.New("E240").Wrap(err).WithSource(target)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return errors.New("E240").Wrap(err).WithSource(target)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return errors.New("E240").Wrap(err).WithSource(target).
			WithSuggestion("Check that the build server is running at " + c.baseURL)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return errors.New("E240").Wrap(err).WithSource(target)
	}

	c.logger.Debug("request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if resp.StatusCode >= 400 {
		return errors.New("E241").
			WithDetail(fmt.Sprintf("%s %s: %s", method, path, resp.Status)).
			WithSource(target)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors.New("E242").Wrap(err).WithSource(target)
	}
	return nil
}
