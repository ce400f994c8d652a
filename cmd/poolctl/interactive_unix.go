// SPDX-License-Identifier: MPL-2.0

//go:build !windows

package cmd

import (
	"errors"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/delldu/poolformer/internal/launcher"

	"github.com/creack/pty"
	"golang.org/x/term"
)

// attachPTY runs a prepared command on a pseudo-terminal wired to the
// caller's terminal, so the evaluation tool sees a TTY (progress bars,
// colored output). The tool's exit code is extracted the same way as in
// a plain run.
func attachPTY(prepared *launcher.PreparedCommand) *launcher.Result {
	cmd := prepared.Cmd

	ptmx, err := pty.Start(cmd)
	if err != nil {
		return &launcher.Result{
			ExitCode: 1,
			Error:    &launcher.LaunchError{Tool: cmd.Path, Cause: err},
		}
	}
	defer ptmx.Close()

	// Track terminal resizes for the child.
	winch := make(chan os.Signal, 1)
	signal.Notify(winch, syscall.SIGWINCH)
	go func() {
		for range winch {
			_ = pty.InheritSize(os.Stdin, ptmx)
		}
	}()
	winch <- syscall.SIGWINCH // initial size
	defer func() {
		signal.Stop(winch)
		close(winch)
	}()

	// Raw mode so keystrokes reach the child unmodified.
	if term.IsTerminal(int(os.Stdin.Fd())) {
		oldState, rawErr := term.MakeRaw(int(os.Stdin.Fd()))
		if rawErr == nil {
			defer term.Restore(int(os.Stdin.Fd()), oldState)
		}
	}

	go func() {
		_, _ = io.Copy(ptmx, os.Stdin)
	}()
	_, _ = io.Copy(os.Stdout, ptmx)

	return ptyWaitResult(cmd)
}

// ptyWaitResult maps the child's termination into a Result, propagating
// its exit status unchanged.
func ptyWaitResult(cmd *exec.Cmd) *launcher.Result {
	err := cmd.Wait()
	if err == nil {
		return &launcher.Result{ExitCode: 0}
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &launcher.Result{ExitCode: launcher.ExitCode(exitErr.ExitCode())}
	}

	return &launcher.Result{
		ExitCode: 1,
		Error:    &launcher.LaunchError{Tool: cmd.Path, Cause: err},
	}
}
