package tui

import (
	"context"
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/Makepad-fr/taskboard/internal/model"
	"github.com/Makepad-fr/taskboard/internal/tasklist"
	"github.com/Makepad-fr/taskboard/internal/ui"
)

// Options configure a Model.
type Options struct {
	API    TaskAPI
	Logger *zap.Logger
	// SaveToken persists a login token once the server has accepted it.
	SaveToken func(string) error
}

// Model is the Bubble Tea model of the task list page.
type Model struct {
	ctrl *tasklist.Controller
	run  runner
	keys keyMap
	l    *zap.Logger

	list  list.Model
	input textinput.Model // task description field
	token textinput.Model // login screen field

	loginURL string
	flash    string // clipboard result, local to the view
	width    int
	height   int
}

type copiedMsg struct{ err error }

// New builds the model. ctx bounds every request the model issues.
func New(ctx context.Context, opt Options) Model {
	l := opt.Logger
	if l == nil {
		l = zap.NewNop()
	}
	keys := defaultKeys()

	lst := list.New(nil, rowDelegate{}, 0, 0)
	lst.SetShowHelp(true)
	lst.SetShowPagination(true)
	lst.SetShowStatusBar(true)
	lst.SetFilteringEnabled(true)
	lst.Styles.Title = ui.Current().Title
	lst.Styles.HelpStyle = ui.Current().Help
	lst.Styles.PaginationStyle = ui.Current().Help
	lst.FilterInput.Prompt = "/ "
	lst.SetStatusBarItemName("task", "tasks")
	lst.AdditionalShortHelpKeys = keys.listHelp
	lst.AdditionalFullHelpKeys = keys.listHelp

	m := Model{
		ctrl:     tasklist.New(l),
		run:      runner{ctx: ctx, api: opt.API, saveToken: opt.SaveToken},
		keys:     keys,
		l:        l,
		list:     lst,
		loginURL: opt.API.LoginURL(),
	}

	m.input = textinput.New()
	m.input.Prompt = "> "
	m.input.Placeholder = "What needs to be done?"
	m.input.CharLimit = 200
	m.input.Cursor.SetMode(cursor.CursorStatic)

	m.token = textinput.New()
	m.token.Prompt = "token: "
	m.token.Placeholder = "paste your API token"
	m.token.EchoMode = textinput.EchoPassword
	m.token.EchoCharacter = '•'
	m.token.Cursor.SetMode(cursor.CursorStatic)

	m.sync()
	return m
}

// Init implements tea.Model: load the list as soon as the program starts.
func (m Model) Init() tea.Cmd {
	return m.run.cmds(m.ctrl.Init())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case tasklist.Event:
		return m.dispatch(msg)

	case copiedMsg:
		if msg.err != nil {
			m.l.Warn("copy to clipboard failed", zap.Error(msg.err))
			m.flash = "Copy failed."
		} else {
			m.flash = "Copied."
		}
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.ForceQuit) {
			return m, tea.Quit
		}
		m.flash = ""
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// login screen
	if m.ctrl.Screen() == tasklist.ScreenLogin {
		switch {
		case key.Matches(msg, m.keys.Submit):
			return m.dispatch(tasklist.SubmitToken{Token: m.token.Value()})
		case key.Matches(msg, m.keys.Cancel):
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m.token, cmd = m.token.Update(msg)
		return m, cmd
	}

	// delete prompt
	if _, ok := m.ctrl.Confirming(); ok {
		switch {
		case key.Matches(msg, m.keys.Yes), key.Matches(msg, m.keys.Submit):
			return m.dispatch(tasklist.ConfirmDelete{Yes: true})
		case key.Matches(msg, m.keys.No):
			return m.dispatch(tasklist.ConfirmDelete{Yes: false})
		}
		return m, nil
	}

	// add modal
	if m.ctrl.ModalOpen() {
		switch {
		case key.Matches(msg, m.keys.Submit):
			return m.dispatch(tasklist.Submit{Description: m.input.Value()})
		case key.Matches(msg, m.keys.Cancel):
			return m.dispatch(tasklist.CancelModal{})
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	if m.list.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Add):
		return m.dispatch(tasklist.OpenModal{})
	case key.Matches(msg, m.keys.Refresh):
		return m.dispatch(tasklist.Refresh{})
	case key.Matches(msg, m.keys.Toggle):
		if r, ok := m.selected(); ok {
			return m.dispatch(tasklist.Toggle{ID: r.ID, Completed: !r.Completed})
		}
		return m, nil
	case key.Matches(msg, m.keys.Delete):
		if r, ok := m.selected(); ok {
			return m.dispatch(tasklist.RequestDelete{TaskID: r.TaskID()})
		}
		return m, nil
	case key.Matches(msg, m.keys.Copy):
		if r, ok := m.selected(); ok {
			text := r.Text
			return m, func() tea.Msg { return copiedMsg{err: clipboard.WriteAll(text)} }
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// dispatch hands ev to the controller, mirrors the new state into the
// widgets and starts the resulting effects.
func (m Model) dispatch(ev tasklist.Event) (tea.Model, tea.Cmd) {
	effects := m.ctrl.Handle(ev)
	m.sync()
	return m, m.run.cmds(effects)
}

// sync mirrors controller state into the bubbles widgets.
func (m *Model) sync() {
	th := ui.Current()
	tasks := m.ctrl.Tasks()

	if cmd := m.list.SetItems(renderTasks(tasks)); cmd != nil {
		// An active filter drops its matches on SetItems; rebuild them now
		// so the visible rows never go blank between events.
		m.list, _ = m.list.Update(cmd())
	}
	if n := len(m.list.VisibleItems()); n > 0 && m.list.Index() >= n {
		m.list.Select(n - 1)
	}
	dn, pn := model.Stats(tasks)
	m.list.Title = fmt.Sprintf("%s   %s %d  %s %d  %s %d",
		th.Title.Render("Tasks"),
		th.Success.Render(th.SymDone), dn,
		th.Pending.Render(th.SymPending), pn,
		th.Accent.Render("Total"), len(tasks),
	)

	if m.ctrl.ModalOpen() {
		m.input.Focus()
	} else {
		m.input.SetValue(m.ctrl.Draft())
		m.input.Blur()
	}

	if m.ctrl.Screen() == tasklist.ScreenLogin {
		m.token.Focus()
	} else {
		m.token.SetValue("")
		m.token.Blur()
	}
	m.resize()
}

func (m *Model) resize() {
	if m.width == 0 || m.height == 0 {
		return
	}
	h := m.height - 4
	if m.ctrl.ModalOpen() {
		h -= 5
	}
	if _, ok := m.ctrl.Confirming(); ok {
		h -= 3
	}
	if h < 3 {
		h = 3
	}
	m.list.SetSize(m.width-4, h)
	m.input.Width = m.width - 12
}

func (m Model) selected() (taskRow, bool) {
	r, ok := m.list.SelectedItem().(taskRow)
	return r, ok
}

// Run starts the full-screen program and blocks until the user quits.
func Run(ctx context.Context, opt Options) error {
	p := tea.NewProgram(New(ctx, opt), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
