package tui

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Makepad-fr/taskboard/internal/model"
	"github.com/Makepad-fr/taskboard/internal/ui"
)

// taskRow is one rendered task, bound to the task id.
type taskRow struct {
	ID        int
	Text      string
	Completed bool
}

// renderTask builds the row for t. It has no side effects.
func renderTask(t model.Task) taskRow {
	return taskRow{ID: t.ID, Text: t.Description, Completed: t.Completed}
}

func renderTasks(tasks []model.Task) []list.Item {
	items := make([]list.Item, 0, len(tasks))
	for _, t := range tasks {
		items = append(items, renderTask(t))
	}
	return items
}

// TaskID is the id as a row exposes it to handlers.
func (r taskRow) TaskID() string { return strconv.Itoa(r.ID) }

func (r taskRow) FilterValue() string { return r.Text }

func (r taskRow) Checkbox(th ui.Theme) string {
	if r.Completed {
		return th.BoxChecked
	}
	return th.BoxUnchecked
}

// Line renders the row: checkbox, description, delete control.
func (r taskRow) Line(th ui.Theme, selected bool) string {
	box := th.Muted.Render(r.Checkbox(th))
	text := r.Text
	if r.Completed {
		box = th.Success.Render(r.Checkbox(th))
		text = th.Done.Render(text)
	}
	prefix := "  "
	if selected {
		prefix = th.Selected.Render("> ")
	}
	del := th.Muted.Render(fmt.Sprintf("#%d %s", r.ID, th.Trash))
	return fmt.Sprintf("%s%s %s  %s", prefix, box, text, del)
}

// Custom delegate to control how rows render (single line)
type rowDelegate struct{}

func (d rowDelegate) Height() int                               { return 1 }
func (d rowDelegate) Spacing() int                              { return 0 }
func (d rowDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d rowDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	r, ok := item.(taskRow)
	if !ok {
		return
	}
	fmt.Fprint(w, r.Line(ui.Current(), index == m.Index()))
}
