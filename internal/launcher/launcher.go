// SPDX-License-Identifier: MPL-2.0

// Package launcher spawns the external segmentation evaluation tool for a
// selected model variant and propagates its exit status verbatim.
package launcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/delldu/poolformer/internal/variant"

	"github.com/google/uuid"
)

// Launcher mode constants for the supported execution strategies.
const (
	ModeNative  Mode = "native"
	ModeVirtual Mode = "virtual"
)

// ShowDirFlag is the flag the evaluation tool expects before the output
// directory argument.
const ShowDirFlag = "--show-dir"

var (
	// ErrLaunchFailure is the sentinel error wrapped by LaunchError.
	ErrLaunchFailure = errors.New("launch failure")
	// ErrInvalidMode is the sentinel error wrapped by InvalidModeError.
	ErrInvalidMode = errors.New("invalid launcher mode")
)

type (
	// Mode identifies a launcher implementation.
	Mode string

	// ExecutionContext contains all information needed to launch one
	// evaluation run.
	ExecutionContext struct {
		// Variant is the model variant to evaluate.
		Variant variant.Variant
		// Tool is the evaluation entry point (e.g. "test.py").
		Tool string
		// Interpreter runs the tool when it is a script (e.g. "python3").
		Interpreter string
		// ShowDir is the directory the tool writes visualizations into.
		ShowDir string
		// WorkDir is the working directory of the child process. Empty
		// means the current directory.
		WorkDir string
		// Context is the Go context for cancellation.
		Context context.Context
		// Stdout is where to write standard output.
		Stdout io.Writer
		// Stderr is where to write standard error.
		Stderr io.Writer
		// Stdin is where to read standard input.
		Stdin io.Reader
		// EnvFiles contains dotenv file paths merged into the child
		// environment, in order.
		EnvFiles []string
		// ExtraEnv contains env vars set last (highest priority).
		ExtraEnv map[string]string
		// ExecutionID uniquely identifies this run.
		ExecutionID string
	}

	// Result contains the outcome of one evaluation run.
	Result struct {
		// ExitCode is the child process's exit code, unchanged.
		ExitCode ExitCode
		// Error contains any launch-level error that occurred.
		Error error
		// Output contains captured stdout (capture mode only).
		Output string
		// ErrOutput contains captured stderr (capture mode only).
		ErrOutput string
	}

	// Launcher defines the interface for spawning the evaluation tool.
	Launcher interface {
		// Name returns the launcher name.
		Name() string
		// Execute launches the tool and blocks until it terminates.
		Execute(ctx *ExecutionContext) *Result
		// Available returns whether this launcher can run on the current system.
		Available() bool
		// Validate checks if the context can be executed with this launcher.
		Validate(ctx *ExecutionContext) error
	}

	// CapturingLauncher is implemented by launchers that support capturing output.
	CapturingLauncher interface {
		// ExecuteCapture launches the tool and captures stdout/stderr.
		ExecuteCapture(ctx *ExecutionContext) *Result
	}

	// InteractiveLauncher is implemented by launchers that can hand the
	// prepared child process to the caller for PTY attachment.
	InteractiveLauncher interface {
		Launcher

		// SupportsInteractive returns true if this launcher can run interactively.
		SupportsInteractive() bool

		// PrepareInteractive prepares the child process for interactive
		// execution. The caller attaches the returned exec.Cmd to a PTY
		// and is responsible for calling Cleanup afterwards.
		PrepareInteractive(ctx *ExecutionContext) (*PreparedCommand, error)
	}

	// PreparedCommand contains a command ready for execution along with any
	// cleanup function.
	PreparedCommand struct {
		// Cmd is the prepared exec.Cmd ready for PTY attachment.
		Cmd *exec.Cmd
		// Cleanup is a function to call after execution completes.
		// May be nil if no cleanup is needed.
		Cleanup func()
	}

	// LaunchError is returned when the evaluation tool cannot be located
	// or started. It is distinct from the tool itself exiting non-zero.
	LaunchError struct {
		// Tool is the program (tool or interpreter) that failed to launch.
		Tool string
		// Cause is the underlying error.
		Cause error
	}

	// InvalidModeError is returned when a Mode value is not recognized.
	InvalidModeError struct {
		Value Mode
	}

	// Registry holds all available launchers.
	Registry struct {
		launchers map[Mode]Launcher
	}
)

// Error implements the error interface.
func (e *LaunchError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to launch '%s': %v", e.Tool, e.Cause)
	}
	return fmt.Sprintf("failed to launch '%s'", e.Tool)
}

// Unwrap returns ErrLaunchFailure so callers can use errors.Is.
func (e *LaunchError) Unwrap() error { return ErrLaunchFailure }

// Error implements the error interface.
func (e *InvalidModeError) Error() string {
	return fmt.Sprintf("invalid launcher mode '%s' (must be 'native' or 'virtual')", e.Value)
}

// Unwrap returns ErrInvalidMode so callers can use errors.Is.
func (e *InvalidModeError) Unwrap() error { return ErrInvalidMode }

// String returns the mode name.
func (m Mode) String() string { return string(m) }

// IsValid returns whether the Mode is recognized, and a list of
// validation errors if it is not.
func (m Mode) IsValid() (bool, []error) {
	switch m {
	case ModeNative, ModeVirtual:
		return true, nil
	}
	return false, []error{&InvalidModeError{Value: m}}
}

// NewExecutionContext creates an execution context with defaults for the
// given variant.
func NewExecutionContext(v variant.Variant) *ExecutionContext {
	return &ExecutionContext{
		Variant:     v,
		Tool:        "test.py",
		Interpreter: "python3",
		ShowDir:     "output",
		Context:     context.Background(),
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
		Stdin:       os.Stdin,
		ExtraEnv:    make(map[string]string),
		ExecutionID: uuid.NewString(),
	}
}

// Args returns the argument list handed to the evaluation tool:
// config path, checkpoint path, --show-dir, show dir.
func (ctx *ExecutionContext) Args() []string {
	return []string{
		ctx.Variant.ConfigPath,
		ctx.Variant.CheckpointPath,
		ShowDirFlag,
		ctx.ShowDir,
	}
}

// Invocation returns the program to spawn and its full argument list.
// Script tools run through the configured interpreter; anything else is
// spawned directly.
func (ctx *ExecutionContext) Invocation() (program string, args []string) {
	if strings.HasSuffix(ctx.Tool, ".py") && ctx.Interpreter != "" {
		return ctx.Interpreter, append([]string{ctx.Tool}, ctx.Args()...)
	}
	return ctx.Tool, ctx.Args()
}

// Success returns true if the tool executed and exited zero.
func (r *Result) Success() bool {
	return r.ExitCode.IsSuccess() && r.Error == nil
}

// GetInteractiveLauncher returns the launcher as an InteractiveLauncher if
// it supports interactive mode, otherwise nil.
func GetInteractiveLauncher(l Launcher) InteractiveLauncher {
	if il, ok := l.(InteractiveLauncher); ok && il.SupportsInteractive() {
		return il
	}
	return nil
}

// NewRegistry creates a registry with the built-in launchers registered.
func NewRegistry() *Registry {
	r := &Registry{launchers: make(map[Mode]Launcher)}
	r.Register(ModeNative, NewNativeLauncher())
	r.Register(ModeVirtual, NewVirtualLauncher())
	return r
}

// Register adds a launcher to the registry.
func (r *Registry) Register(mode Mode, l Launcher) {
	r.launchers[mode] = l
}

// Get returns a launcher by mode.
func (r *Registry) Get(mode Mode) (Launcher, error) {
	l, ok := r.launchers[mode]
	if !ok {
		return nil, &InvalidModeError{Value: mode}
	}
	return l, nil
}

// Available returns all modes whose launcher can run on this system.
func (r *Registry) Available() []Mode {
	var modes []Mode
	for mode, l := range r.launchers {
		if l.Available() {
			modes = append(modes, mode)
		}
	}
	return modes
}

// Execute launches the tool using the launcher registered for mode.
func (r *Registry) Execute(mode Mode, ctx *ExecutionContext) *Result {
	l, err := r.Get(mode)
	if err != nil {
		return &Result{ExitCode: 1, Error: err}
	}

	if !l.Available() {
		return &Result{
			ExitCode: 1,
			Error:    fmt.Errorf("launcher '%s' is not available on this system", l.Name()),
		}
	}

	if err := l.Validate(ctx); err != nil {
		return &Result{ExitCode: 1, Error: err}
	}

	return l.Execute(ctx)
}

// EnvToSlice converts a map of environment variables to a slice.
func EnvToSlice(env map[string]string) []string {
	result := make([]string, 0, len(env))
	for k, v := range env {
		result = append(result, k+"="+v)
	}
	return result
}

// findEnvSeparator returns the index of the '=' separator in an
// environment variable string.
func findEnvSeparator(e string) int {
	for i := 0; i < len(e); i++ {
		if e[i] == '=' {
			return i
		}
	}
	return -1
}
