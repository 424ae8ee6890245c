package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Makepad-fr/taskboard/internal/model"
	"github.com/Makepad-fr/taskboard/internal/taskapi"
	"github.com/Makepad-fr/taskboard/internal/tasklist"
)

// TaskAPI is the part of the task API client the TUI uses.
type TaskAPI interface {
	ListTasks(ctx context.Context) ([]model.Task, error)
	CreateTask(ctx context.Context, description string) (*model.Task, error)
	SetCompleted(ctx context.Context, id int, completed bool) (*model.Task, error)
	DeleteTask(ctx context.Context, id int) error
	SetToken(token string)
	LoginURL() string
}

// runner executes controller effects off the UI goroutine.
// Requests are neither de-duplicated nor cancelled; results may arrive in
// any order.
type runner struct {
	ctx       context.Context
	api       TaskAPI
	saveToken func(string) error
}

func (r runner) cmds(effects []tasklist.Effect) tea.Cmd {
	if len(effects) == 0 {
		return nil
	}
	cmds := make([]tea.Cmd, 0, len(effects))
	for _, e := range effects {
		cmds = append(cmds, func() tea.Msg { return r.run(e) })
	}
	return tea.Batch(cmds...)
}

func (r runner) run(e tasklist.Effect) tasklist.Event {
	switch e := e.(type) {
	case tasklist.Fetch:
		tasks, err := r.api.ListTasks(r.ctx)
		switch {
		case errors.Is(err, taskapi.ErrUnauthorized):
			return tasklist.Unauthorized{}
		case err != nil:
			return tasklist.FetchFailed{Err: err}
		}
		return tasklist.Loaded{Tasks: tasks}

	case tasklist.Create:
		task, err := r.api.CreateTask(r.ctx, e.Description)
		if err != nil {
			return tasklist.CreateFailed{Err: err, Message: taskapi.UserMessage(err, "")}
		}
		return tasklist.Created{Task: task}

	case tasklist.Update:
		_, err := r.api.SetCompleted(r.ctx, e.ID, e.Completed)
		return tasklist.Updated{ID: e.ID, Err: err}

	case tasklist.Delete:
		if err := r.api.DeleteTask(r.ctx, e.ID); err != nil {
			return tasklist.DeleteFailed{ID: e.ID, Err: err}
		}
		return tasklist.Deleted{ID: e.ID}

	case tasklist.Login:
		r.api.SetToken(e.Token)
		tasks, err := r.api.ListTasks(r.ctx)
		switch {
		case errors.Is(err, taskapi.ErrUnauthorized):
			return tasklist.LoginRejected{}
		case err != nil:
			return tasklist.LoginFailed{Err: err}
		}
		if r.saveToken != nil {
			if err := r.saveToken(e.Token); err != nil {
				return tasklist.LoginFailed{Err: err}
			}
		}
		return tasklist.LoggedIn{Tasks: tasks}
	}
	return nil
}
