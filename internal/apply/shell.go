// Package apply pushes compiled configuration commands to a device through
// its configuration shell.
package apply

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"regexp"
	"strings"
	"time"
)

const (
	DefaultShell      = "bash"
	DefaultWrapper    = "/opt/edgeos/sbin/edgeos-cfg-cmd-wrapper"
	DefaultSessionAPI = "/bin/cli-shell-api"
)

var errorLine = regexp.MustCompile(`(?m)^Error:`)

// Applier pushes a command list to a device.
type Applier interface {
	Apply(ctx context.Context, commands []string) (*Outcome, error)
}

// Outcome is what the configuration shell reported.
type Outcome struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// ShellApplier feeds each command, prefixed by the configuration wrapper,
// to a shell's standard input.
type ShellApplier struct {
	Shell   string
	Wrapper string
	// SessionAPI is run with "inSession" before applying; empty skips
	// the check.
	SessionAPI string
	// Transaction wraps the commands in begin/commit/save/end.
	Transaction bool
	// WaitDelay bounds how long output is drained after the shell is
	// killed on cancellation.
	WaitDelay time.Duration
	Logger    *slog.Logger
}

// NewShellApplier returns an applier for the EdgeOS configuration shell.
func NewShellApplier() *ShellApplier {
	return &ShellApplier{
		Shell:       DefaultShell,
		Wrapper:     DefaultWrapper,
		SessionAPI:  DefaultSessionAPI,
		Transaction: true,
		WaitDelay:   5 * time.Second,
	}
}

func (a *ShellApplier) logger() *slog.Logger {
	if a.Logger == nil {
		return slog.Default()
	}
	return a.Logger
}

// Script returns the text written to the shell. commands is not modified.
func (a *ShellApplier) Script(commands []string) string {
	lines := make([]string, 0, len(commands)+4)
	if a.Transaction {
		lines = append(lines, "begin")
	}
	lines = append(lines, commands...)
	if a.Transaction {
		lines = append(lines, "commit", "save", "end")
	}

	var b strings.Builder
	for _, l := range lines {
		fmt.Fprintf(&b, "%s %s;\n", a.Wrapper, l)
	}
	return b.String()
}

// Apply runs the wrapped commands in one shell and classifies the result.
func (a *ShellApplier) Apply(ctx context.Context, commands []string) (*Outcome, error) {
	if err := a.checkSession(ctx); err != nil {
		return nil, err
	}

	a.logger().Info("Applying configuration", "commands", len(commands), "shell", a.Shell, "wrapper", a.Wrapper)

	cmd := exec.CommandContext(ctx, a.Shell)
	cmd.Stdin = strings.NewReader(a.Script(commands))
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = a.WaitDelay

	runErr := cmd.Run()
	out := &Outcome{ExitCode: -1, Stdout: stdout.String(), Stderr: stderr.String()}
	if cmd.ProcessState != nil {
		out.ExitCode = cmd.ProcessState.ExitCode()
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return out, &ApplyError{Reason: "configuration shell did not finish", Outcome: out, Err: ctxErr}
	}
	var exitErr *exec.ExitError
	if runErr != nil && !errors.As(runErr, &exitErr) {
		return out, &ApplyError{Reason: "failed to run configuration shell", Outcome: out, Err: runErr}
	}
	if err := Classify(out); err != nil {
		return out, err
	}

	a.logger().Info("Configuration applied", "exit_code", out.ExitCode)
	return out, nil
}

func (a *ShellApplier) checkSession(ctx context.Context) error {
	if a.SessionAPI == "" {
		return nil
	}
	if err := exec.CommandContext(ctx, a.SessionAPI, "inSession").Run(); err != nil {
		return &ApplyError{Reason: "not inside a configuration session", Err: err}
	}
	return nil
}

// Classify fails the outcome unless the shell exited 0, printed no line
// starting with "Error:" and wrote nothing to stderr.
func Classify(o *Outcome) error {
	switch {
	case o.ExitCode != 0:
		return &ApplyError{Reason: fmt.Sprintf("configuration shell exited with status %d", o.ExitCode), Outcome: o}
	case errorLine.MatchString(o.Stdout):
		return &ApplyError{Reason: "configuration shell reported an error", Outcome: o}
	case o.Stderr != "":
		return &ApplyError{Reason: "configuration shell wrote to stderr", Outcome: o}
	}
	return nil
}
