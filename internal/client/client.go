// Package client is a typed HTTP client for the todos API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/mesh-intelligence/todos/pkg/types"
)

// Client talks to a running todos server.
type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a Client for the server at baseURL. A nil httpClient uses
// http.DefaultClient.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// Unwrap maps the status onto the matching sentinel in pkg/types so callers
// can test with errors.Is.
func (e *APIError) Unwrap() error {
	switch {
	case e.StatusCode == http.StatusNotFound:
		return types.ErrNotFound
	case e.StatusCode == http.StatusBadRequest:
		return types.ErrValidation
	case e.StatusCode >= http.StatusInternalServerError:
		return types.ErrStorageUnavailable
	default:
		return nil
	}
}

// List returns every todo, newest first.
func (c *Client) List(ctx context.Context) ([]types.Todo, error) {
	var todos []types.Todo
	if err := c.do(ctx, http.MethodGet, "/api/todos", nil, &todos); err != nil {
		return nil, err
	}
	if todos == nil {
		todos = []types.Todo{}
	}
	return todos, nil
}

// Create adds a todo.
func (c *Client) Create(ctx context.Context, in types.NewTodo) (types.Todo, error) {
	var todo types.Todo
	err := c.do(ctx, http.MethodPost, "/api/todos", in, &todo)
	return todo, err
}

// Get fetches one todo. A missing id returns an error matching
// types.ErrNotFound.
func (c *Client) Get(ctx context.Context, id string) (types.Todo, error) {
	var todo types.Todo
	err := c.do(ctx, http.MethodGet, todoPath(id), nil, &todo)
	return todo, err
}

// Update sends patch with PATCH and returns the updated todo.
func (c *Client) Update(ctx context.Context, id string, patch types.TodoPatch) (types.Todo, error) {
	var todo types.Todo
	err := c.do(ctx, http.MethodPatch, todoPath(id), patch, &todo)
	return todo, err
}

// Delete removes a todo.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, todoPath(id), nil, nil)
}

func todoPath(id string) string {
	return "/api/todos/" + url.PathEscape(id)
}

// do sends payload as JSON (when non-nil) and decodes the response into dest
// (when non-nil).
func (c *Client) do(ctx context.Context, method, path string, payload, dest any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return readErrorResponse(resp)
	}
	if dest == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func readErrorResponse(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil && payload.Error != "" {
		apiErr.Message = payload.Error
	}
	return apiErr
}
