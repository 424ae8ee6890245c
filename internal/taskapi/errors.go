package taskapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrUnauthorized is returned (wrapped in *APIError) when the server answers 401.
var ErrUnauthorized = errors.New("unauthorized")

// APIError is a non-2xx answer from the task API.
type APIError struct {
	Method  string
	Path    string
	Status  int
	Message string // server-provided message, may be empty
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("task API %s %s error %d: %s", e.Method, e.Path, e.Status, e.Message)
	}
	return fmt.Sprintf("task API %s %s error %d", e.Method, e.Path, e.Status)
}

// Is lets errors.Is(err, ErrUnauthorized) match a 401.
func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == http.StatusUnauthorized
}

// UserMessage returns the message the server meant for the user, or def.
func UserMessage(err error, def string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return def
}

func newAPIError(method, path string, status int, body []byte) *APIError {
	e := &APIError{Method: method, Path: path, Status: status}
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		e.Message = strings.TrimSpace(payload.Error)
		if e.Message == "" {
			e.Message = strings.TrimSpace(payload.Message)
		}
	}
	return e
}
