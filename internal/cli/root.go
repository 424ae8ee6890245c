package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/Makepad-fr/taskboard/internal/auth"
	"github.com/Makepad-fr/taskboard/internal/config"
	"github.com/Makepad-fr/taskboard/internal/logger"
	"github.com/Makepad-fr/taskboard/internal/taskapi"
	"github.com/Makepad-fr/taskboard/internal/tui"
	"github.com/Makepad-fr/taskboard/internal/ui"
)

// Version is set at build time
var Version = "dev"

var timeNow = time.Now

// Exit codes: 0 ok, 1 error, 2 usage or not logged in.
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

// exitErr carries the code a command wants to exit with.
// Its message has already been printed when printed is true.
type exitErr struct {
	code    int
	err     error
	printed bool
}

func (e *exitErr) Error() string { return e.err.Error() }
func (e *exitErr) Unwrap() error { return e.err }

func usageErr(format string, a ...any) error {
	return &exitErr{code: exitUsage, err: fmt.Errorf(format, a...)}
}

// reported marks err as already shown to the user.
func reported(code int, err error) error {
	return &exitErr{code: code, err: err, printed: true}
}

// app is the state shared by every subcommand once flags are parsed.
type app struct {
	v      *viper.Viper
	cfg    *config.Config
	l      *zap.Logger
	client *taskapi.Client

	stdin          io.Reader
	stdout, stderr io.Writer

	configPath string
}

// Execute runs the CLI with the given arguments and IO and returns an exit code.
func Execute(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a := &app{v: config.New(), stdin: stdin, stdout: stdout, stderr: stderr}
	root := newRoot(a)
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if a.l != nil {
		_ = a.l.Sync()
	}
	if err == nil {
		return exitOK
	}

	var ee *exitErr
	if errors.As(err, &ee) {
		if ee.printed {
			return ee.code
		}
		ui.Fail(stderr, ee.Error())
		if ee.code == exitUsage {
			ui.Hint(stderr, "Run `taskboard --help` for usage.")
		}
		return ee.code
	}
	// cobra's own errors: unknown command, bad flag, wrong arg count
	ui.Fail(stderr, err.Error())
	return exitUsage
}

func newRoot(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "taskboard",
		Short: "A terminal client for your task list",
		Long: `taskboard shows the tasks stored on a task server and lets you add,
complete and delete them. Without a subcommand it opens the interactive list.`,
		Version:       Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTUI(cmd.Context())
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "config file (default ~/.taskboard/config.yaml)")
	pf.String("server", "", "task server base URL")
	pf.String("theme", "", "color theme: classic, neon or mono")
	_ = a.v.BindPFlag("server.url", pf.Lookup("server"))
	_ = a.v.BindPFlag("ui.theme", pf.Lookup("theme"))

	root.AddCommand(
		newListCmd(a),
		newAddCmd(a),
		newDoneCmd(a, true),
		newDoneCmd(a, false),
		newRemoveCmd(a),
		newAuthCmd(a),
	)
	return root
}

// setup loads config, logger and the API client.
func (a *app) setup() error {
	cfg, err := config.Load(a.v, a.configPath)
	if err != nil {
		return &exitErr{code: exitError, err: err}
	}
	a.cfg = cfg
	ui.SetTheme(cfg.UI.Theme)

	l, err := logger.New(cfg.Logger)
	if err != nil {
		return &exitErr{code: exitError, err: err}
	}
	a.l = l

	opts := []taskapi.Option{
		taskapi.WithTimeout(cfg.Server.Timeout),
		taskapi.WithRateLimit(cfg.Server.RateLimit, cfg.Server.Burst),
		taskapi.WithLogger(l),
	}
	ti, err := auth.GetToken()
	if err != nil {
		l.Warn("credentials unreadable", zap.Error(err))
	}
	if ti != nil {
		if ti.Expired(timeNow()) {
			l.Info("stored token has expired", zap.String("source", ti.Source))
		}
		opts = append(opts, taskapi.WithToken(ti.Token))
	}
	a.client = taskapi.NewClient(cfg.Server.URL, opts...)
	return nil
}

func (a *app) runTUI(ctx context.Context) error {
	err := tui.Run(ctx, tui.Options{
		API:    a.client,
		Logger: a.l,
		SaveToken: func(token string) error {
			_, err := auth.SetToken(token)
			return err
		},
	})
	if err != nil {
		return &exitErr{code: exitError, err: fmt.Errorf("tui: %w", err)}
	}
	return nil
}

// notLoggedIn explains how to get a token after a 401.
func (a *app) notLoggedIn() error {
	ui.Fail(a.stderr, "not logged in")
	ui.Hint(a.stderr, fmt.Sprintf("Sign in at %s, then run `taskboard auth login` or set %s.",
		a.cfg.Server.LoginURL(), auth.EnvToken))
	return reported(exitUsage, taskapi.ErrUnauthorized)
}
