package tui

import (
	"context"
	"net/http"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap/zaptest"

	"github.com/Makepad-fr/taskboard/internal/model"
	"github.com/Makepad-fr/taskboard/internal/taskapi"
	"github.com/Makepad-fr/taskboard/internal/taskapi/apitest"
	"github.com/Makepad-fr/taskboard/internal/tasklist"
	"github.com/Makepad-fr/taskboard/internal/ui"
)

func newTestModel(t *testing.T, srv *apitest.Server, saved *string) Model {
	t.Helper()
	client := taskapi.NewClient(srv.URL)
	m := New(context.Background(), Options{
		API:    client,
		Logger: zaptest.NewLogger(t),
		SaveToken: func(tok string) error {
			if saved != nil {
				*saved = tok
			}
			return nil
		},
	})
	m, _ = update(m, tea.WindowSizeMsg{Width: 100, Height: 30})
	return settle(t, m, m.Init())
}

func update(m Model, msg tea.Msg) (Model, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func press(m Model, k string) (Model, tea.Cmd) {
	switch k {
	case "enter":
		return update(m, tea.KeyMsg{Type: tea.KeyEnter})
	case "esc":
		return update(m, tea.KeyMsg{Type: tea.KeyEsc})
	}
	return update(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)})
}

// settle runs cmd and feeds controller events back until no work is left.
func settle(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case tasklist.Event:
			var next tea.Cmd
			m, next = update(m, msg)
			queue = append(queue, next)
		}
	}
	return m
}

func rows(t *testing.T, m Model) []taskRow {
	t.Helper()
	var out []taskRow
	for _, it := range m.list.Items() {
		r, ok := it.(taskRow)
		if !ok {
			t.Fatalf("unexpected list item %T", it)
		}
		out = append(out, r)
	}
	return out
}

func TestRenderTask(t *testing.T) {
	th := ui.Current()
	open := renderTask(model.Task{ID: 7, Description: "Buy milk"})
	done := renderTask(model.Task{ID: 8, Description: "Walk dog", Completed: true})

	if open.ID != 7 || open.TaskID() != "7" || open.Checkbox(th) != th.BoxUnchecked {
		t.Errorf("unexpected open row: %+v", open)
	}
	if done.Checkbox(th) != th.BoxChecked {
		t.Errorf("completed row not checked")
	}
	line := open.Line(th, false)
	if !strings.Contains(line, "Buy milk") || !strings.Contains(line, th.Trash) {
		t.Errorf("row misses description or delete control: %q", line)
	}
}

func TestListMirrorsServer(t *testing.T) {
	srv := apitest.New(t, model.Task{ID: 1, Description: "Buy milk"})
	m := newTestModel(t, srv, nil)

	got := rows(t, m)
	if len(got) != 1 {
		t.Fatalf("rows = %+v", got)
	}
	if got[0].ID != 1 || got[0].Text != "Buy milk" || got[0].Completed {
		t.Errorf("unexpected row: %+v", got[0])
	}
	view := m.View()
	if !strings.Contains(view, "Buy milk") || !strings.Contains(view, ui.Current().BoxUnchecked) {
		t.Errorf("view misses the row:\n%s", view)
	}
}

func TestListKeepsOrderAndState(t *testing.T) {
	srv := apitest.New(t,
		model.Task{ID: 5, Description: "e", Completed: true},
		model.Task{ID: 2, Description: "b"},
		model.Task{ID: 9, Description: "i", Completed: true},
	)
	m := newTestModel(t, srv, nil)

	got := rows(t, m)
	want := srv.Tasks()
	if len(got) != len(want) {
		t.Fatalf("rows = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].ID != want[i].ID || got[i].Completed != want[i].Completed {
			t.Errorf("row %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestAddTask(t *testing.T) {
	t.Run("blank description sends nothing", func(t *testing.T) {
		srv := apitest.New(t)
		m := newTestModel(t, srv, nil)

		m, _ = press(m, "a")
		m.input.SetValue("   ")
		m, cmd := press(m, "enter")
		if cmd != nil {
			m = settle(t, m, cmd)
		}
		if n := srv.Count(http.MethodPost); n != 0 {
			t.Errorf("POST sent %d times", n)
		}
		if !m.ctrl.ModalOpen() || !strings.Contains(m.View(), tasklist.MsgEmptyDescription) {
			t.Errorf("validation message not shown:\n%s", m.View())
		}
	})

	t.Run("server rejection keeps modal", func(t *testing.T) {
		srv := apitest.New(t)
		m := newTestModel(t, srv, nil)

		long := strings.Repeat("x", apitest.MaxDescription+1)
		m, _ = press(m, "a")
		m.input.SetValue(long)
		m, cmd := press(m, "enter")
		m = settle(t, m, cmd)

		if !m.ctrl.ModalOpen() {
			t.Fatal("modal closed")
		}
		if m.input.Value() != long {
			t.Errorf("description changed to %q", m.input.Value())
		}
		if !strings.Contains(m.View(), "description too long") {
			t.Errorf("server message not shown:\n%s", m.View())
		}
		for _, line := range strings.Split(m.View(), "\n") {
			if strings.Contains(line, "Add new task") && strings.Contains(line, "description too long") {
				t.Errorf("message joined onto the title: %q", line)
			}
		}
	})

	t.Run("success closes modal and refreshes", func(t *testing.T) {
		srv := apitest.New(t, model.Task{ID: 1, Description: "Buy milk"})
		m := newTestModel(t, srv, nil)

		m, _ = press(m, "a")
		m.input.SetValue("  Walk dog ")
		m, cmd := press(m, "enter")
		m = settle(t, m, cmd)

		if m.ctrl.ModalOpen() || m.input.Value() != "" {
			t.Errorf("modal open=%v value=%q", m.ctrl.ModalOpen(), m.input.Value())
		}
		got := rows(t, m)
		if len(got) != 2 || got[1].Text != "Walk dog" {
			t.Errorf("rows = %+v", got)
		}
	})

	t.Run("cancel clears the field", func(t *testing.T) {
		srv := apitest.New(t)
		m := newTestModel(t, srv, nil)

		m, _ = press(m, "a")
		m.input.SetValue("half typed")
		m, _ = press(m, "esc")
		if m.ctrl.ModalOpen() || m.input.Value() != "" {
			t.Errorf("modal open=%v value=%q", m.ctrl.ModalOpen(), m.input.Value())
		}
	})
}

func TestToggle(t *testing.T) {
	t.Run("flips before the server answers", func(t *testing.T) {
		srv := apitest.New(t, model.Task{ID: 1, Description: "Buy milk"})
		m := newTestModel(t, srv, nil)

		m, cmd := press(m, "x")
		if !rows(t, m)[0].Completed {
			t.Fatal("row not flipped optimistically")
		}
		if srv.Count(http.MethodPut) != 0 {
			t.Fatal("request ran before the command")
		}
		m = settle(t, m, cmd)
		if !srv.Tasks()[0].Completed || !rows(t, m)[0].Completed {
			t.Errorf("server=%+v rows=%+v", srv.Tasks(), rows(t, m))
		}
	})

	t.Run("failed PUT is reconciled by a refresh", func(t *testing.T) {
		srv := apitest.New(t, model.Task{ID: 1, Description: "Buy milk"})
		m := newTestModel(t, srv, nil)
		srv.FailNext(http.MethodPut, http.StatusInternalServerError, map[string]string{"error": "boom"})

		m, cmd := press(m, "x")
		if !rows(t, m)[0].Completed {
			t.Fatal("row not flipped optimistically")
		}
		m = settle(t, m, cmd)
		if rows(t, m)[0].Completed {
			t.Errorf("row still shows the rejected state")
		}
		if n := srv.Count(http.MethodGet); n != 2 {
			t.Errorf("GET count = %d, want initial load plus resync", n)
		}
	})

	t.Run("filtered rows stay visible", func(t *testing.T) {
		srv := apitest.New(t,
			model.Task{ID: 1, Description: "Buy milk"},
			model.Task{ID: 2, Description: "Walk dog"},
		)
		m := newTestModel(t, srv, nil)
		m.list.SetFilterText("milk")
		if n := len(m.list.VisibleItems()); n != 1 {
			t.Fatalf("visible = %d, want 1", n)
		}

		check := func(stage string) {
			t.Helper()
			vis := m.list.VisibleItems()
			if len(vis) != 1 {
				t.Fatalf("%s: visible = %d, want 1", stage, len(vis))
			}
			r, ok := m.list.SelectedItem().(taskRow)
			if !ok || r.ID != 1 || !r.Completed {
				t.Errorf("%s: selected = %+v", stage, m.list.SelectedItem())
			}
		}

		m, cmd := press(m, "x")
		check("after toggle")
		m = settle(t, m, cmd)
		check("after PUT")
		if !srv.Tasks()[0].Completed {
			t.Errorf("server task not completed")
		}
	})

	t.Run("empty list ignores the key", func(t *testing.T) {
		srv := apitest.New(t)
		m := newTestModel(t, srv, nil)
		if _, cmd := press(m, "x"); cmd != nil {
			t.Errorf("unexpected command")
		}
	})
}

func TestDelete(t *testing.T) {
	t.Run("declined sends nothing", func(t *testing.T) {
		srv := apitest.New(t, model.Task{ID: 1, Description: "Buy milk"})
		m := newTestModel(t, srv, nil)

		m, _ = press(m, "d")
		if !strings.Contains(m.View(), tasklist.MsgConfirmDelete) {
			t.Fatalf("no confirmation prompt:\n%s", m.View())
		}
		m, cmd := press(m, "n")
		if cmd != nil {
			t.Errorf("unexpected command after declining")
		}
		if _, ok := m.ctrl.Confirming(); ok {
			t.Errorf("prompt still open")
		}
		if n := srv.Count(http.MethodDelete); n != 0 {
			t.Errorf("DELETE sent %d times", n)
		}
	})

	t.Run("confirmed removes and refreshes", func(t *testing.T) {
		srv := apitest.New(t,
			model.Task{ID: 1, Description: "Buy milk"},
			model.Task{ID: 2, Description: "Walk dog"},
		)
		m := newTestModel(t, srv, nil)

		m, _ = press(m, "d")
		m, cmd := press(m, "y")
		m = settle(t, m, cmd)

		got := rows(t, m)
		if len(got) != 1 || got[0].ID != 2 {
			t.Errorf("rows = %+v", got)
		}
	})

	t.Run("failure alerts and keeps the list", func(t *testing.T) {
		srv := apitest.New(t, model.Task{ID: 1, Description: "Buy milk"})
		m := newTestModel(t, srv, nil)
		srv.FailNext(http.MethodDelete, http.StatusInternalServerError, nil)

		m, _ = press(m, "d")
		m, cmd := press(m, "y")
		m = settle(t, m, cmd)

		if len(rows(t, m)) != 1 {
			t.Errorf("list changed after failed delete")
		}
		if !strings.Contains(m.View(), tasklist.MsgDeleteFailed) {
			t.Errorf("alert not shown:\n%s", m.View())
		}
	})
}

func TestUnauthorizedShowsLogin(t *testing.T) {
	srv := apitest.New(t, model.Task{ID: 1, Description: "Buy milk"})
	srv.RequireToken("s3cret")

	var saved string
	m := newTestModel(t, srv, &saved)
	if m.ctrl.Screen() != tasklist.ScreenLogin {
		t.Fatalf("screen = %v, want login", m.ctrl.Screen())
	}
	if !strings.Contains(m.View(), srv.URL+"/login") {
		t.Errorf("login view does not point at the login page:\n%s", m.View())
	}

	m.token.SetValue("wrong")
	m, cmd := press(m, "enter")
	m = settle(t, m, cmd)
	if saved != "" {
		t.Errorf("rejected token was saved: %q", saved)
	}
	if m.ctrl.Screen() != tasklist.ScreenLogin || !strings.Contains(m.View(), tasklist.MsgTokenRejected) {
		t.Errorf("rejection not reported:\n%s", m.View())
	}
	if m.token.Value() != "wrong" {
		t.Errorf("token field = %q, want it kept for correction", m.token.Value())
	}

	m.token.SetValue("s3cret")
	m, cmd = press(m, "enter")
	m = settle(t, m, cmd)

	if saved != "s3cret" {
		t.Errorf("saved token = %q", saved)
	}
	if m.ctrl.Screen() != tasklist.ScreenTasks || len(rows(t, m)) != 1 {
		t.Errorf("screen = %v rows = %+v", m.ctrl.Screen(), rows(t, m))
	}
}
