package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Makepad-fr/taskboard/internal/model"
	"github.com/Makepad-fr/taskboard/internal/taskapi"
	"github.com/Makepad-fr/taskboard/internal/tasklist"
	"github.com/Makepad-fr/taskboard/internal/ui"
)

func newListCmd(a *app) *cobra.Command {
	var plain, group bool
	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List tasks (interactive unless --plain)",
		Args:  noArgs("ls"),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !plain {
				return a.runTUI(cmd.Context())
			}
			tasks, err := a.client.ListTasks(cmd.Context())
			if err != nil {
				return a.apiFailure("ls", err, "Could not load tasks.")
			}
			fmt.Fprintln(a.stdout, renderPlain(tasks, group))
			return nil
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "print the list instead of opening the interactive view")
	cmd.Flags().BoolVar(&group, "group", false, "group output by pending/done (with --plain)")
	return cmd
}

func newAddCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "add <description...>",
		Short:   "Add a new task (description can be multiple words)",
		Example: `  taskboard add "Buy milk"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			desc, err := model.NormalizeDescription(strings.Join(args, " "))
			if err != nil {
				return usageErr("add: %s", tasklist.MsgEmptyDescription)
			}
			task, err := a.client.CreateTask(cmd.Context(), desc)
			if err != nil {
				return a.apiFailure("add", err, tasklist.MsgCreateFailed)
			}
			if task != nil {
				ui.OK(a.stdout, fmt.Sprintf("added #%d", task.ID))
			} else {
				ui.OK(a.stdout, "added")
			}
			return nil
		},
	}
}

// newDoneCmd builds `done` (completed=true) or `undo` (completed=false).
func newDoneCmd(a *app, completed bool) *cobra.Command {
	name, short, okMsg := "done", "Mark a task as done", "marked done"
	if !completed {
		name, short, okMsg = "undo", "Mark a task as pending again", "marked pending"
	}
	return &cobra.Command{
		Use:   name + " <id>",
		Short: short,
		Args:  exactArgs(name, "<id>", 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := model.ParseID(args[0])
			if err != nil {
				a.l.Error(name+" aborted", zap.Error(err))
				return usageErr("%s: not a number: %s", name, args[0])
			}
			if _, err := a.client.SetCompleted(cmd.Context(), id, completed); err != nil {
				return a.apiFailure(name, err, "Failed to update the task status.")
			}
			ui.OK(a.stdout, fmt.Sprintf("#%d %s", id, okMsg))
			return nil
		},
	}
}

func newRemoveCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a task",
		Args:  exactArgs("rm", "<id>", 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := model.ParseID(args[0])
			if err != nil {
				a.l.Error("delete aborted", zap.Error(err))
				return usageErr("rm: not a number: %s", args[0])
			}
			if !yes && !a.confirm(tasklist.MsgConfirmDelete) {
				ui.Hint(a.stdout, "cancelled")
				return nil
			}
			if err := a.client.DeleteTask(cmd.Context(), id); err != nil {
				return a.apiFailure("rm", err, tasklist.MsgDeleteFailed)
			}
			ui.OK(a.stdout, fmt.Sprintf("removed #%d", id))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

// confirm asks a yes/no question on stdin; anything but y/yes is a no.
func (a *app) confirm(question string) bool {
	fmt.Fprintf(a.stdout, "%s [y/N] ", question)
	line, err := bufio.NewReader(a.stdin).ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(a.stdout)
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

// apiFailure prints the outcome of a failed API call and picks the exit code.
func (a *app) apiFailure(op string, err error, def string) error {
	if errors.Is(err, taskapi.ErrUnauthorized) {
		return a.notLoggedIn()
	}
	a.l.Error(op+" failed", zap.Error(err))
	ui.Fail(a.stderr, taskapi.UserMessage(err, def))
	return reported(exitError, err)
}

func renderPlain(tasks []model.Task, group bool) string {
	th := ui.Current()
	dn, pn := model.Stats(tasks)
	header := fmt.Sprintf("%s   %s %d  %s %d  %s %d",
		th.Title.Render("Tasks"),
		th.Success.Render(th.SymDone), dn,
		th.Pending.Render(th.SymPending), pn,
		th.Accent.Render("Total"), len(tasks),
	)
	lines := []string{header, ui.ProgressBar(dn, len(tasks), 28), ""}

	if len(tasks) == 0 {
		lines = append(lines, th.Muted.Render("no tasks yet, add one with `taskboard add`"))
		return ui.Panel(strings.Join(lines, "\n"))
	}
	if !group {
		for _, t := range tasks {
			lines = append(lines, plainLine(th, t))
		}
		return ui.Panel(strings.Join(lines, "\n"))
	}

	lines = append(lines, th.Pending.Render("Pending"))
	for _, t := range tasks {
		if !t.Completed {
			lines = append(lines, plainLine(th, t))
		}
	}
	lines = append(lines, "", th.Success.Render("Done"))
	for _, t := range tasks {
		if t.Completed {
			lines = append(lines, plainLine(th, t))
		}
	}
	return ui.Panel(strings.Join(lines, "\n"))
}

func plainLine(th ui.Theme, t model.Task) string {
	box, text := th.Muted.Render(th.BoxUnchecked), t.Description
	if t.Completed {
		box, text = th.Success.Render(th.BoxChecked), th.Done.Render(t.Description)
	}
	return fmt.Sprintf("%s %s %s", box, th.Muted.Render(fmt.Sprintf("#%-3d", t.ID)), text)
}

func noArgs(name string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != 0 {
			return usageErr("usage: taskboard %s", name)
		}
		return nil
	}
}

func exactArgs(name, usage string, n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return usageErr("usage: taskboard %s %s", name, usage)
		}
		return nil
	}
}
