package taskapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/Makepad-fr/taskboard/internal/model"
)

// Client is the HTTP wrapper for the task REST API.
// It is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	l          *zap.Logger

	mu    sync.RWMutex
	token string
}

type Option func(*Client)

func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRateLimit caps outgoing requests; rps <= 0 leaves them unlimited.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.l = l }
}

// NewClient creates a new task API client rooted at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{},
		l:          zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetToken replaces the bearer token used for subsequent requests.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) bearer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// LoginURL is the page where the server lets a user sign in.
func (c *Client) LoginURL() string {
	return c.baseURL + "/login"
}

// ListTasks fetches the task collection via GET /api/tasks, in server order.
func (c *Client) ListTasks(ctx context.Context) ([]model.Task, error) {
	resp, err := c.do(ctx, http.MethodGet, "/api/tasks", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var tasks []model.Task
	if err := json.NewDecoder(resp.Body).Decode(&tasks); err != nil {
		return nil, fmt.Errorf("failed to decode task list: %w", err)
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	return tasks, nil
}

// CreateTask creates a task via POST /api/tasks.
// The description is sent as given; callers validate it first.
func (c *Client) CreateTask(ctx context.Context, description string) (*model.Task, error) {
	resp, err := c.do(ctx, http.MethodPost, "/api/tasks", createTaskRequest{Description: description})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return decodeTask(resp.Body)
}

// SetCompleted updates the completion flag via PUT /api/tasks/{id}.
func (c *Client) SetCompleted(ctx context.Context, id int, completed bool) (*model.Task, error) {
	resp, err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/tasks/%d", id), updateTaskRequest{Completed: completed})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return decodeTask(resp.Body)
}

// DeleteTask removes a task via DELETE /api/tasks/{id}.
func (c *Client) DeleteTask(ctx context.Context, id int) error {
	resp, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/tasks/%d", id), nil)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// do sends one request and returns the response only for 2xx statuses.
// Any other status is turned into an error and the body is closed.
func (c *Client) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s %s request: %w", method, path, err)
		}
		rd = bytes.NewReader(b)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s %s request: %w", method, path, err)
	}
	reqID := uuid.NewString()
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", reqID)
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if token := c.bearer(); token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.l.Warn("request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.String("request_id", reqID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to call %s %s: %w", method, path, err)
	}
	c.l.Debug("request done",
		zap.String("method", method),
		zap.String("path", path),
		zap.String("request_id", reqID),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	return nil, newAPIError(method, path, resp.StatusCode, raw)
}

func decodeTask(r io.Reader) (*model.Task, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read task response: %w", err)
	}
	// Some deployments answer mutations with an empty body.
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}
	var t model.Task
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, fmt.Errorf("failed to decode task response: %w", err)
	}
	return &t, nil
}

// ---- Request types scoped to this package ----

type createTaskRequest struct {
	Description string `json:"description"`
}

type updateTaskRequest struct {
	Completed bool `json:"completed"`
}
