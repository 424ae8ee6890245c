// Package tasklist holds the task list state and the rules that keep it in
// step with the server. It performs no I/O: Handle turns an Event into a new
// state plus the Effects the host must run.
package tasklist

import (
	"strings"

	"go.uber.org/zap"

	"github.com/Makepad-fr/taskboard/internal/model"
	"github.com/Makepad-fr/taskboard/internal/reconcile"
)

const (
	MsgEmptyDescription = "Task description cannot be empty."
	MsgCreateFailed     = "Failed to add the task."
	MsgDeleteFailed     = "Error deleting task."
	MsgConfirmDelete    = "Are you sure you want to delete this task?"
	MsgEmptyToken       = "Token cannot be empty."
	MsgTokenRejected    = "Token rejected by the server."
)

type Screen int

const (
	ScreenTasks Screen = iota
	ScreenLogin
)

// Controller is constructed once at startup and lives as long as the program.
type Controller struct {
	l *zap.Logger

	tasks  []model.Task
	loaded bool
	screen Screen

	modalOpen bool
	draft     string
	modalErr  string

	confirming    bool
	pendingDelete int

	alert    string
	loginErr string
}

func New(l *zap.Logger) *Controller {
	if l == nil {
		l = zap.NewNop()
	}
	return &Controller{l: l}
}

// Init returns the effects to run once the program starts.
func (c *Controller) Init() []Effect {
	return []Effect{Fetch{}}
}

// Tasks returns the rendered snapshot in server order.
func (c *Controller) Tasks() []model.Task { return c.tasks }

// Loaded reports whether at least one fetch succeeded.
func (c *Controller) Loaded() bool { return c.loaded }

func (c *Controller) Screen() Screen { return c.screen }

func (c *Controller) ModalOpen() bool { return c.modalOpen }

// Draft is the text the description field must show.
func (c *Controller) Draft() string { return c.draft }

func (c *Controller) ModalErr() string { return c.modalErr }

// Confirming reports whether a delete waits for an answer, and for which id.
func (c *Controller) Confirming() (int, bool) { return c.pendingDelete, c.confirming }

// Alert is the last message for the user outside the modal.
func (c *Controller) Alert() string { return c.alert }

func (c *Controller) LoginErr() string { return c.loginErr }

// Task looks up a task of the current snapshot.
func (c *Controller) Task(id int) (model.Task, bool) {
	for _, t := range c.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return model.Task{}, false
}

// Handle applies ev and returns the effects it triggers.
func (c *Controller) Handle(ev Event) []Effect {
	switch ev := ev.(type) {
	case OpenModal:
		c.alert = ""
		c.modalOpen = true
		c.modalErr = ""
		return nil

	case CancelModal:
		c.modalOpen = false
		c.draft = ""
		c.modalErr = ""
		return nil

	case Submit:
		c.draft = ev.Description
		desc, err := model.NormalizeDescription(ev.Description)
		if err != nil {
			c.modalErr = MsgEmptyDescription
			return nil
		}
		c.modalErr = ""
		return []Effect{Create{Description: desc}}

	case Created:
		c.draft = ""
		c.modalOpen = false
		c.modalErr = ""
		return []Effect{Fetch{}}

	case CreateFailed:
		c.l.Warn("create task failed", zap.Error(ev.Err))
		c.modalErr = ev.Message
		if c.modalErr == "" {
			c.modalErr = MsgCreateFailed
		}
		return nil

	case Toggle:
		c.alert = ""
		return c.toggle(ev)

	case Updated:
		if reconcile.Settle(ev.Err) == reconcile.Resync {
			c.l.Warn("update task status failed, resyncing",
				zap.Int("task_id", ev.ID), zap.Error(ev.Err))
			return []Effect{Fetch{}}
		}
		return nil

	case RequestDelete:
		c.alert = ""
		id, err := model.ParseID(ev.TaskID)
		if err != nil {
			c.l.Error("delete aborted", zap.Error(err))
			return nil
		}
		c.confirming = true
		c.pendingDelete = id
		return nil

	case ConfirmDelete:
		if !c.confirming {
			return nil
		}
		c.confirming = false
		if !ev.Yes {
			return nil
		}
		return []Effect{Delete{ID: c.pendingDelete}}

	case Deleted:
		return []Effect{Fetch{}}

	case DeleteFailed:
		c.l.Error("delete task failed", zap.Int("task_id", ev.ID), zap.Error(ev.Err))
		c.alert = MsgDeleteFailed
		return nil

	case Refresh:
		c.alert = ""
		return []Effect{Fetch{}}

	case Loaded:
		c.tasks = append([]model.Task(nil), ev.Tasks...)
		c.loaded = true
		c.screen = ScreenTasks
		return nil

	case FetchFailed:
		c.l.Error("fetch tasks failed", zap.Error(ev.Err))
		return nil

	case Unauthorized:
		c.l.Info("not signed in, showing login")
		c.screen = ScreenLogin
		c.modalOpen = false
		c.confirming = false
		c.loginErr = ""
		return nil

	case SubmitToken:
		token := strings.TrimSpace(ev.Token)
		if token == "" {
			c.loginErr = MsgEmptyToken
			return nil
		}
		c.loginErr = ""
		return []Effect{Login{Token: token}}

	case LoggedIn:
		c.tasks = append([]model.Task(nil), ev.Tasks...)
		c.loaded = true
		c.screen = ScreenTasks
		c.loginErr = ""
		return nil

	case LoginRejected:
		c.l.Warn("token rejected by the server")
		c.loginErr = MsgTokenRejected
		return nil

	case LoginFailed:
		c.l.Error("save token failed", zap.Error(ev.Err))
		c.loginErr = ev.Err.Error()
		return nil
	}
	return nil
}

// toggle flips the row at once and asks the server to confirm.
// A failed confirmation comes back as Updated and triggers a resync.
func (c *Controller) toggle(ev Toggle) []Effect {
	w := reconcile.Write[int, model.Task]{
		Key: ev.ID,
		Apply: func(t model.Task) model.Task {
			t.Completed = ev.Completed
			return t
		},
	}
	tasks, ok := reconcile.Apply(c.tasks, taskID, w)
	if !ok {
		c.l.Warn("toggle on unknown task", zap.Int("task_id", ev.ID))
		return nil
	}
	c.tasks = tasks
	return []Effect{Update{ID: ev.ID, Completed: ev.Completed}}
}

func taskID(t model.Task) int { return t.ID }
