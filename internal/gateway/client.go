package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"sync"
	"time"
)

var (
	// ErrUnauthorized marks a 401 from the backend. The client's
	// unauthorized hook has already fired by the time a caller sees it.
	ErrUnauthorized = errors.New("gateway: unauthorized")

	// ErrNotFound marks a 404. For the profile resource this is an
	// expected state, not a failure.
	ErrNotFound = errors.New("gateway: not found")
)

// StatusError carries any other non-2xx response. Message holds the
// server-provided error text verbatim when present.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("gateway: backend returned %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("gateway: backend returned %d", e.Code)
}

type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client is the single outbound HTTP client for the backend REST API.
// Its default Authorization header is mutable shared state: only the
// session store may set or clear it.
type Client struct {
	baseURL string
	http    *http.Client

	mu            sync.RWMutex
	authorization string

	// onUnauthorized fires on every 401, regardless of which caller
	// issued the request. A single unauthorized response terminates
	// the session view-wide.
	onUnauthorized func()
}

func New(cfg Config, onUnauthorized func()) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		http:           &http.Client{Timeout: timeout},
		onUnauthorized: onUnauthorized,
	}
}

// SetAuthorization installs the bearer credential on all future requests.
func (c *Client) SetAuthorization(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.authorization = "Bearer " + token
}

// ClearAuthorization removes the bearer credential.
func (c *Client) ClearAuthorization() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.authorization = ""
}

func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, "", nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("gateway: encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}
	return c.do(ctx, http.MethodPost, path, "application/json", reader, out)
}

func (c *Client) Delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, "", nil, nil)
}

// FilePart is one uploaded document in a multipart submission.
type FilePart struct {
	Field    string
	Filename string
	Content  io.Reader
}

// PostMultipart submits form fields and file parts as multipart/form-data.
func (c *Client) PostMultipart(ctx context.Context, path string, fields map[string]string, files []FilePart, out any) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for key, value := range fields {
		if err := w.WriteField(key, value); err != nil {
			return fmt.Errorf("gateway: write form field %s: %w", key, err)
		}
	}

	for _, f := range files {
		part, err := w.CreateFormFile(f.Field, f.Filename)
		if err != nil {
			return fmt.Errorf("gateway: create form file %s: %w", f.Field, err)
		}
		if _, err := io.Copy(part, f.Content); err != nil {
			return fmt.Errorf("gateway: copy form file %s: %w", f.Field, err)
		}
	}

	if err := w.Close(); err != nil {
		return fmt.Errorf("gateway: finalize multipart body: %w", err)
	}

	return c.do(ctx, http.MethodPost, path, w.FormDataContentType(), &buf, out)
}

func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("gateway: build request: %w", err)
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	c.mu.RLock()
	if c.authorization != "" {
		req.Header.Set("Authorization", c.authorization)
	}
	c.mu.RUnlock()

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("gateway: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return fmt.Errorf("%s %s: %w", method, path, ErrUnauthorized)

	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%s %s: %w", method, path, ErrNotFound)

	case resp.StatusCode >= 400:
		return &StatusError{
			Code:    resp.StatusCode,
			Message: serverMessage(resp.Body),
		}
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("gateway: decode %s %s response: %w", method, path, err)
	}

	return nil
}

// serverMessage extracts the backend's error text from a failure body.
func serverMessage(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil {
		return ""
	}

	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &payload); err == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}

	return ""
}
