// Package apitest runs an in-memory task API for tests.
package apitest

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/Makepad-fr/taskboard/internal/model"
)

// MaxDescription mirrors the column width of the real service.
const MaxDescription = 80

// Request is one call the server received.
type Request struct {
	Method    string
	Path      string
	Body      string
	Auth      string
	RequestID string
}

type failure struct {
	status int
	body   any
}

// Server is a fake of the task API backed by a slice.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	tasks    []model.Task
	nextID   int
	token    string
	requests []Request
	failNext map[string]failure
}

// New starts a server seeded with tasks and stops it when the test ends.
func New(t testing.TB, tasks ...model.Task) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := &Server{failNext: map[string]failure{}}
	for _, task := range tasks {
		s.tasks = append(s.tasks, task)
		if task.ID > s.nextID {
			s.nextID = task.ID
		}
	}

	r := gin.New()
	r.Use(s.record, s.authorize, s.inject)
	api := r.Group("/api/tasks")
	api.GET("", s.list)
	api.POST("", s.create)
	api.PUT("/:id", s.update)
	api.DELETE("/:id", s.remove)

	s.Server = httptest.NewServer(r)
	t.Cleanup(s.Close)
	return s
}

// RequireToken makes every request without this bearer token fail with 401.
func (s *Server) RequireToken(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}

// FailNext makes the next request with method answer status and body.
func (s *Server) FailNext(method string, status int, body any) {
	s.mu.Lock()
	s.failNext[method] = failure{status: status, body: body}
	s.mu.Unlock()
}

// Requests returns a copy of every request received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// Count returns how many requests used method.
func (s *Server) Count(method string) int {
	n := 0
	for _, r := range s.Requests() {
		if r.Method == method {
			n++
		}
	}
	return n
}

// Tasks returns the server-side state.
func (s *Server) Tasks() []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Task(nil), s.tasks...)
}

func (s *Server) record(c *gin.Context) {
	var body []byte
	if c.Request.Body != nil {
		body, _ = io.ReadAll(c.Request.Body)
		c.Request.Body = io.NopCloser(bytes.NewReader(body))
	}
	s.mu.Lock()
	s.requests = append(s.requests, Request{
		Method:    c.Request.Method,
		Path:      c.Request.URL.Path,
		Body:      string(body),
		Auth:      c.GetHeader("Authorization"),
		RequestID: c.GetHeader("X-Request-ID"),
	})
	s.mu.Unlock()
	c.Next()
}

func (s *Server) authorize(c *gin.Context) {
	s.mu.Lock()
	token := s.token
	s.mu.Unlock()
	if token == "" {
		c.Next()
		return
	}
	if strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ") != token {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "login required"})
		return
	}
	c.Next()
}

func (s *Server) inject(c *gin.Context) {
	s.mu.Lock()
	f, ok := s.failNext[c.Request.Method]
	delete(s.failNext, c.Request.Method)
	s.mu.Unlock()
	if !ok {
		c.Next()
		return
	}
	switch b := f.body.(type) {
	case nil:
		c.AbortWithStatus(f.status)
	case string:
		c.Data(f.status, "text/plain", []byte(b))
		c.Abort()
	default:
		c.AbortWithStatusJSON(f.status, b)
	}
}

func (s *Server) list(c *gin.Context) {
	c.JSON(http.StatusOK, s.Tasks())
}

func (s *Server) create(c *gin.Context) {
	var req struct {
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Description) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "task description is required"})
		return
	}
	if len(req.Description) > MaxDescription {
		c.JSON(http.StatusBadRequest, gin.H{"error": "description too long"})
		return
	}

	s.mu.Lock()
	s.nextID++
	task := model.Task{ID: s.nextID, Description: req.Description}
	s.tasks = append(s.tasks, task)
	s.mu.Unlock()

	c.JSON(http.StatusCreated, task)
}

func (s *Server) update(c *gin.Context) {
	var req map[string]any
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	completed, ok := req["completed"].(bool)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "field 'completed' (boolean) is required"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(c.Param("id"))
	if i < 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}
	s.tasks[i].Completed = completed
	c.JSON(http.StatusOK, s.tasks[i])
}

func (s *Server) remove(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(c.Param("id"))
	if i < 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}
	s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	c.Status(http.StatusNoContent)
}

// index must be called with s.mu held.
func (s *Server) index(raw string) int {
	id, err := strconv.Atoi(raw)
	if err != nil {
		return -1
	}
	for i, t := range s.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}
