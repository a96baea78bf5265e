package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// --- Error Definitions ---

var (
	// ErrServerFailure is the generic fallback when the backend reports a
	// failure without a usable message.
	ErrServerFailure = errors.New("the server could not process the request")
)

// StatusError reports a non-200 response. Message carries the `detail`
// string from the body when the body was parseable JSON, otherwise it is
// empty and callers fall back to a generic notice.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("server returned status %d", e.StatusCode)
}

// Config holds the backend connection settings. BaseURL is injected at
// construction time so environments (and tests) can point the client
// anywhere.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client is the NextChamp backend API client shared by every screen.
type Client struct {
	config     Config
	httpClient *http.Client
}

// NewClient creates a backend client. A zero timeout falls back to a
// generous default because a single analysetest call covers the whole
// server-side video processing run.
func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Minute
	}
	return &Client{
		config: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// BaseURL returns the configured server base URL.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// JoinURL joins a base URL and a server-relative path into one absolute
// URL. Backslashes from platform-specific paths are normalized to "/",
// and duplicate or missing slashes at the join point are collapsed, so
// "http://h/" + "/a/b.mp4" resolves to "http://h/a/b.mp4".
func JoinURL(base, path string) string {
	base = strings.TrimRight(strings.ReplaceAll(base, `\`, "/"), "/")
	path = strings.TrimLeft(strings.ReplaceAll(path, `\`, "/"), "/")
	if path == "" {
		return base
	}
	return base + "/" + path
}

// endpoint resolves a server-relative path against the configured base.
func (c *Client) endpoint(path string) string {
	return JoinURL(c.config.BaseURL, path)
}

// doJSON issues a request with an optional JSON body and decodes a JSON
// response into out. Non-200 statuses become a *StatusError with the
// body's detail message when one is present.
func (c *Client) doJSON(ctx context.Context, method, path string, body any, out any) error {
	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path), reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusErrorFromBody(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// statusErrorFromBody builds a StatusError, pulling the FastAPI-style
// `detail` field out of the body when it parses.
func statusErrorFromBody(resp *http.Response) error {
	serr := &StatusError{StatusCode: resp.StatusCode}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return serr
	}
	var payload struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &payload) == nil {
		if payload.Detail != "" {
			serr.Message = payload.Detail
		} else if payload.Message != "" {
			serr.Message = payload.Message
		}
	}
	return serr
}

// download issues a GET and streams the response body to dst, returning
// the number of bytes copied.
func (c *Client) download(ctx context.Context, path string, dst io.Writer) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(path), nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, statusErrorFromBody(resp)
	}

	n, err := io.Copy(dst, resp.Body)
	if err != nil {
		return n, fmt.Errorf("download interrupted: %w", err)
	}
	return n, nil
}
