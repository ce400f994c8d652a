// SPDX-License-Identifier: MPL-2.0

package launcher

import (
	"bytes"
	"fmt"
	"os/exec"
)

// NativeLauncher spawns the evaluation tool directly as a child process.
type NativeLauncher struct {
	// Env overrides the default environment builder.
	Env *EnvBuilder
}

// NewNativeLauncher creates a new native launcher.
func NewNativeLauncher() *NativeLauncher {
	return &NativeLauncher{Env: NewEnvBuilder()}
}

// Name returns the launcher name.
func (l *NativeLauncher) Name() string {
	return "native"
}

// Available returns whether this launcher is available.
// Spawning a child process needs no external machinery.
func (l *NativeLauncher) Available() bool {
	return true
}

// Validate checks if the context can be executed.
func (l *NativeLauncher) Validate(ctx *ExecutionContext) error {
	if ctx.Tool == "" {
		return fmt.Errorf("no evaluation tool configured")
	}
	if ctx.Variant.ConfigPath == "" || ctx.Variant.CheckpointPath == "" {
		return fmt.Errorf("variant '%s' has no config or checkpoint path", ctx.Variant.Name)
	}
	return validateWorkDir(ctx.WorkDir)
}

// Execute launches the evaluation tool and blocks until it terminates.
// The child's exit code is propagated unchanged; a process that cannot
// be located or started yields a LaunchError instead.
func (l *NativeLauncher) Execute(ctx *ExecutionContext) *Result {
	cmd, err := l.prepare(ctx)
	if err != nil {
		return &Result{ExitCode: 1, Error: err}
	}

	cmd.Stdout = ctx.Stdout
	cmd.Stderr = ctx.Stderr
	cmd.Stdin = ctx.Stdin

	return waitResult(cmd, cmd.Path)
}

// ExecuteCapture launches the tool and captures its output.
func (l *NativeLauncher) ExecuteCapture(ctx *ExecutionContext) *Result {
	cmd, err := l.prepare(ctx)
	if err != nil {
		return &Result{ExitCode: 1, Error: err}
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	result := waitResult(cmd, cmd.Path)
	result.Output = stdout.String()
	result.ErrOutput = stderr.String()
	return result
}

// SupportsInteractive returns true; the native launcher can always hand
// its prepared command to a PTY.
func (l *NativeLauncher) SupportsInteractive() bool {
	return true
}

// PrepareInteractive prepares the child process for PTY attachment.
func (l *NativeLauncher) PrepareInteractive(ctx *ExecutionContext) (*PreparedCommand, error) {
	cmd, err := l.prepare(ctx)
	if err != nil {
		return nil, err
	}
	return &PreparedCommand{Cmd: cmd}, nil
}

// prepare resolves the program, builds the environment and returns an
// exec.Cmd ready to run. A program that cannot be located on PATH is a
// LaunchError.
func (l *NativeLauncher) prepare(ctx *ExecutionContext) (*exec.Cmd, error) {
	program, args := ctx.Invocation()

	resolved, err := exec.LookPath(program)
	if err != nil {
		return nil, &LaunchError{Tool: program, Cause: err}
	}

	env, err := l.envBuilder().Build(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to build environment: %w", err)
	}

	cmd := exec.CommandContext(ctx.Context, resolved, args...)
	if ctx.WorkDir != "" {
		cmd.Dir = ctx.WorkDir
	}
	cmd.Env = EnvToSlice(env)

	return cmd, nil
}

func (l *NativeLauncher) envBuilder() *EnvBuilder {
	if l.Env != nil {
		return l.Env
	}
	return NewEnvBuilder()
}

// waitResult runs the prepared command and maps the outcome to a Result.
// Real exit codes pass through untouched; anything else (start failure,
// signal without status) becomes a LaunchError.
func waitResult(cmd *exec.Cmd, program string) *Result {
	if err := cmd.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return &Result{ExitCode: ExitCode(exitErr.ExitCode())}
		}
		return &Result{ExitCode: 1, Error: &LaunchError{Tool: program, Cause: err}}
	}
	return &Result{ExitCode: 0}
}
