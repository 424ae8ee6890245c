package tui

import (
	"fmt"
	"strings"

	"github.com/Makepad-fr/taskboard/internal/tasklist"
	"github.com/Makepad-fr/taskboard/internal/ui"
)

func (m Model) View() string {
	th := ui.Current()

	if m.ctrl.Screen() == tasklist.ScreenLogin {
		lines := []string{
			th.Title.Render("Sign in"),
			"",
			"Your session is not authorized.",
			"Sign in at " + th.Accent.Render(m.loginURL) + " and paste your API token below.",
			"",
			m.token.View(),
		}
		if e := m.ctrl.LoginErr(); e != "" {
			lines = append(lines, th.Error.Render(e))
		}
		lines = append(lines, "", th.Help.Render("enter sign in • esc quit"))
		return ui.Panel(strings.Join(lines, "\n"))
	}

	var b strings.Builder
	b.WriteString(m.list.View())

	if id, ok := m.ctrl.Confirming(); ok {
		text := fmt.Sprintf("#%d", id)
		if t, found := m.ctrl.Task(id); found {
			text = fmt.Sprintf("%q", t.Description)
		}
		prompt := tasklist.MsgConfirmDelete + " " + th.Muted.Render(text) + "\n" +
			th.Help.Render("y delete • n cancel")
		b.WriteString("\n" + ui.Panel(prompt))
	}

	if m.ctrl.ModalOpen() {
		lines := []string{th.Title.Render("Add new task"), m.input.View()}
		if e := m.ctrl.ModalErr(); e != "" {
			lines = append(lines, th.Error.Render(e))
		}
		lines = append(lines, th.Help.Render("enter add • esc cancel"))
		body := strings.Join(lines, "\n")
		b.WriteString("\n" + ui.Panel(body))
	}

	if a := m.ctrl.Alert(); a != "" {
		b.WriteString("\n" + th.Error.Render(th.SymFail+" "+a))
	}
	if m.flash != "" {
		b.WriteString("\n" + th.Muted.Render(m.flash))
	}
	return ui.Panel(b.String())
}
