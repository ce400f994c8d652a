// SPDX-License-Identifier: MPL-2.0

package launcher

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// VirtualLauncher runs the invocation through the embedded mvdan/sh
// interpreter instead of spawning a shell. The evaluation tool itself is
// still executed as a real child process by the interpreter's exec
// handler, so exit codes behave exactly as in the native launcher.
type VirtualLauncher struct {
	// Env overrides the default environment builder.
	Env *EnvBuilder
}

// NewVirtualLauncher creates a new virtual launcher.
func NewVirtualLauncher() *VirtualLauncher {
	return &VirtualLauncher{Env: NewEnvBuilder()}
}

// Name returns the launcher name.
func (l *VirtualLauncher) Name() string {
	return "virtual"
}

// Available returns whether this launcher is available.
// The interpreter is built in, so it always is.
func (l *VirtualLauncher) Available() bool {
	return true
}

// Validate checks if the context can be executed.
func (l *VirtualLauncher) Validate(ctx *ExecutionContext) error {
	if ctx.Tool == "" {
		return fmt.Errorf("no evaluation tool configured")
	}
	if ctx.Variant.ConfigPath == "" || ctx.Variant.CheckpointPath == "" {
		return fmt.Errorf("variant '%s' has no config or checkpoint path", ctx.Variant.Name)
	}
	if _, err := ShellCommandLine(ctx); err != nil {
		return err
	}
	return validateWorkDir(ctx.WorkDir)
}

// Execute runs the invocation through the embedded interpreter.
func (l *VirtualLauncher) Execute(ctx *ExecutionContext) *Result {
	return l.run(ctx, ctx.Stdout, ctx.Stderr)
}

// ExecuteCapture runs the invocation and captures its output.
func (l *VirtualLauncher) ExecuteCapture(ctx *ExecutionContext) *Result {
	var stdout, stderr bytes.Buffer
	result := l.run(ctx, &stdout, &stderr)
	result.Output = stdout.String()
	result.ErrOutput = stderr.String()
	return result
}

func (l *VirtualLauncher) run(ctx *ExecutionContext, stdout, stderr io.Writer) *Result {
	line, err := ShellCommandLine(ctx)
	if err != nil {
		return &Result{ExitCode: 1, Error: err}
	}

	parser := syntax.NewParser()
	prog, err := parser.Parse(strings.NewReader(line), "invocation")
	if err != nil {
		return &Result{ExitCode: 1, Error: fmt.Errorf("failed to parse invocation: %w", err)}
	}

	env, err := l.envBuilder().Build(ctx)
	if err != nil {
		return &Result{ExitCode: 1, Error: fmt.Errorf("failed to build environment: %w", err)}
	}

	opts := []interp.RunnerOption{
		interp.Env(expand.ListEnviron(EnvToSlice(env)...)),
		interp.StdIO(ctx.Stdin, stdout, stderr),
	}
	if ctx.WorkDir != "" {
		opts = append(opts, interp.Dir(ctx.WorkDir))
	}

	runner, err := interp.New(opts...)
	if err != nil {
		return &Result{ExitCode: 1, Error: fmt.Errorf("failed to create interpreter: %w", err)}
	}

	execCtx := ctx.Context
	if execCtx == nil {
		execCtx = context.Background()
	}

	if err := runner.Run(execCtx, prog); err != nil {
		var exitStatus interp.ExitStatus
		if errors.As(err, &exitStatus) {
			return &Result{ExitCode: ExitCode(exitStatus)}
		}
		return &Result{ExitCode: 1, Error: &LaunchError{Tool: ctx.Tool, Cause: err}}
	}

	return &Result{ExitCode: 0}
}

func (l *VirtualLauncher) envBuilder() *EnvBuilder {
	if l.Env != nil {
		return l.Env
	}
	return NewEnvBuilder()
}

// ShellCommandLine renders the invocation as a single shell command with
// every word quoted. Used by the virtual launcher and by --dry-run output.
func ShellCommandLine(ctx *ExecutionContext) (string, error) {
	program, args := ctx.Invocation()
	words := append([]string{program}, args...)

	quoted := make([]string, len(words))
	for i, w := range words {
		q, err := syntax.Quote(w, syntax.LangBash)
		if err != nil {
			return "", fmt.Errorf("failed to quote argument '%s': %w", w, err)
		}
		quoted[i] = q
	}
	return strings.Join(quoted, " "), nil
}
