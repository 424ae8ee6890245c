package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Task is a unit of work owned by the server.
// The client never holds an authoritative copy; it renders the last snapshot.
type Task struct {
	ID          int    `json:"id"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}

var (
	ErrEmptyDescription = errors.New("task description cannot be empty")
	ErrInvalidID        = errors.New("invalid task id")
)

// NormalizeDescription trims s and rejects it when nothing is left.
func NormalizeDescription(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrEmptyDescription
	}
	return s, nil
}

// ParseID parses a task id as received from a row or the command line.
func ParseID(s string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidID, s)
	}
	return id, nil
}

// Stats counts done and pending tasks.
func Stats(tasks []Task) (done, pending int) {
	for _, t := range tasks {
		if t.Completed {
			done++
		} else {
			pending++
		}
	}
	return
}
