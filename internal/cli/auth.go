package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Makepad-fr/taskboard/internal/auth"
	"github.com/Makepad-fr/taskboard/internal/ui"
)

func newAuthCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth <login|logout|status|whoami>",
		Short: "Token authentication",
		Args:  exactArgs("auth", "<login|logout|status|whoami>", 0),
		RunE: func(cmd *cobra.Command, args []string) error {
			return usageErr("usage: taskboard auth <login|logout|status|whoami>")
		},
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "login [token]",
			Short: "Store an API token",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.authLogin(args)
			},
		},
		&cobra.Command{
			Use:   "logout",
			Short: "Forget the stored token",
			Args:  noArgs("auth logout"),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.authLogout()
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show where the token comes from and when it expires",
			Args:  noArgs("auth status"),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.authStatus()
			},
		},
		&cobra.Command{
			Use:   "whoami",
			Short: "Decode the token payload locally",
			Args:  noArgs("auth whoami"),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.authWhoAmI()
			},
		},
	)
	return cmd
}

func (a *app) authLogin(args []string) error {
	var token string
	if len(args) == 1 {
		token = args[0]
	} else {
		fmt.Fprintf(a.stdout, "Sign in at %s\n", a.cfg.Server.LoginURL())
		fmt.Fprint(a.stdout, "Paste your token: ")
		line, err := bufio.NewReader(a.stdin).ReadString('\n')
		if err != nil && line == "" {
			return &exitErr{code: exitError, err: fmt.Errorf("read token: %w", err)}
		}
		token = line
	}
	ti, err := auth.SetToken(token)
	if err != nil {
		return &exitErr{code: exitError, err: fmt.Errorf("save token: %w", err)}
	}
	a.client.SetToken(ti.Token)
	ui.OK(a.stdout, "logged in")
	if ti.Expired(timeNow()) {
		ui.Hint(a.stdout, "warning: this token has already expired")
	}
	return nil
}

func (a *app) authLogout() error {
	ti, _ := auth.GetToken()
	if ti != nil && ti.Source == "env" {
		ui.OK(a.stdout, fmt.Sprintf("token is provided by %s env var (nothing to delete)", auth.EnvToken))
		return nil
	}
	if err := auth.DeleteToken(); err != nil {
		return &exitErr{code: exitError, err: fmt.Errorf("logout: %w", err)}
	}
	ui.OK(a.stdout, "logged out")
	return nil
}

func (a *app) authStatus() error {
	ti, err := auth.GetToken()
	if err != nil {
		return &exitErr{code: exitError, err: err}
	}
	if ti == nil {
		ui.Hint(a.stdout, "not logged in")
		fmt.Fprintln(a.stdout, "Run: taskboard auth login")
		return nil
	}
	fmt.Fprintf(a.stdout, "source: %s\n", ti.Source)
	fmt.Fprintf(a.stdout, "server: %s\n", a.cfg.Server.URL)
	switch {
	case ti.ExpiresAt == nil:
		fmt.Fprintln(a.stdout, "expires: (unknown)")
	case ti.Expired(timeNow()):
		fmt.Fprintf(a.stdout, "expires: %s (expired)\n", ti.ExpiresAt.UTC().Format(time.RFC3339))
	default:
		fmt.Fprintf(a.stdout, "expires: %s\n", ti.ExpiresAt.UTC().Format(time.RFC3339))
	}
	fmt.Fprintf(a.stdout, "env override: %s\n", auth.EnvToken)
	return nil
}

// whoami decodes a JWT locally (unsigned); opaque tokens print basic info.
func (a *app) authWhoAmI() error {
	ti, _ := auth.GetToken()
	if ti == nil || strings.TrimSpace(ti.Token) == "" {
		ui.Fail(a.stderr, "not logged in. Run: taskboard auth login")
		return reported(exitUsage, fmt.Errorf("not logged in"))
	}
	claims, err := auth.Claims(ti.Token)
	if err != nil {
		fmt.Fprintln(a.stdout, "Opaque token (cannot introspect locally).")
		fmt.Fprintln(a.stdout, "source:", ti.Source)
		return nil
	}
	b, err := json.MarshalIndent(claims, "", "  ")
	if err != nil {
		return &exitErr{code: exitError, err: fmt.Errorf("marshal claims: %w", err)}
	}
	fmt.Fprintln(a.stdout, "JWT payload:")
	fmt.Fprintln(a.stdout, string(b))
	return nil
}
