// SPDX-License-Identifier: MPL-2.0

package launcher

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/delldu/poolformer/internal/variant"
)

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(data)
}

func TestShellCommandLine(t *testing.T) {
	t.Parallel()

	v, err := variant.Lookup(variant.S12)
	if err != nil {
		t.Fatalf("Lookup(s12) error = %v", err)
	}
	ctx := NewExecutionContext(v)

	line, err := ShellCommandLine(ctx)
	if err != nil {
		t.Fatalf("ShellCommandLine() error = %v", err)
	}

	want := "python3 test.py configs/sem_fpn/PoolFormer/fpn_poolformer_s12_ade20k_40k.cfg ../checkpoint/fpn_poolformer_s12_ade20k_40k.ckpt --show-dir output"
	if line != want {
		t.Errorf("ShellCommandLine() = %q, want %q", line, want)
	}
}

func TestShellCommandLine_QuotesSpecialCharacters(t *testing.T) {
	t.Parallel()

	v, err := variant.Lookup(variant.S12)
	if err != nil {
		t.Fatalf("Lookup(s12) error = %v", err)
	}
	ctx := NewExecutionContext(v)
	ctx.ShowDir = "my output dir"

	line, err := ShellCommandLine(ctx)
	if err != nil {
		t.Fatalf("ShellCommandLine() error = %v", err)
	}
	if strings.HasSuffix(line, " my output dir") {
		t.Errorf("show dir not quoted: %q", line)
	}
	if !strings.Contains(line, "my output dir") {
		t.Errorf("show dir missing from command line: %q", line)
	}
}

func TestVirtualLauncher_ExitCodePropagation(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tests := []struct {
		name string
		code ExitCode
	}{
		{"success", 0},
		{"generic failure", 1},
		{"tool-defined failure", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			tool := writeFakeTool(t, dir, "exit "+tt.code.String())

			result := NewVirtualLauncher().Execute(nativeContext(t, tool))
			if result.ExitCode != tt.code {
				t.Errorf("ExitCode = %d, want %d", result.ExitCode, tt.code)
			}
		})
	}
}

func TestVirtualLauncher_ArgvPassedVerbatim(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	dir := t.TempDir()
	argsOut := filepath.Join(dir, "args.txt")
	tool := writeFakeTool(t, dir, `printf '%s\n' "$@" > "$ARGS_OUT"`)

	ctx := nativeContext(t, tool)
	ctx.ExtraEnv["ARGS_OUT"] = argsOut

	result := NewVirtualLauncher().Execute(ctx)
	if !result.Success() {
		t.Fatalf("Execute() = exit %d, error %v", result.ExitCode, result.Error)
	}

	data := readFile(t, argsOut)
	got := strings.Split(strings.TrimSpace(data), "\n")
	if len(got) != 4 {
		t.Fatalf("child argv = %v, want 4 entries", got)
	}
	if got[2] != "--show-dir" || got[3] != "output" {
		t.Errorf("argv tail = %v, want [--show-dir output]", got[2:])
	}
}

func TestVirtualLauncher_ToolMissing(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := nativeContext(t, filepath.Join(t.TempDir(), "does-not-exist"))

	result := NewVirtualLauncher().Execute(ctx)
	if result.ExitCode == 0 {
		t.Error("ExitCode = 0 for missing tool, want non-zero")
	}
}

func TestVirtualLauncher_ExecuteCapture(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	dir := t.TempDir()
	tool := writeFakeTool(t, dir, `echo captured`)

	result := NewVirtualLauncher().ExecuteCapture(nativeContext(t, tool))
	if !result.Success() {
		t.Fatalf("ExecuteCapture() = exit %d, error %v", result.ExitCode, result.Error)
	}
	if strings.TrimSpace(result.Output) != "captured" {
		t.Errorf("Output = %q, want %q", result.Output, "captured")
	}
}

func TestVirtualLauncher_Validate(t *testing.T) {
	t.Parallel()

	l := NewVirtualLauncher()

	v, err := variant.Lookup(variant.S24)
	if err != nil {
		t.Fatalf("Lookup(s24) error = %v", err)
	}

	if err := l.Validate(NewExecutionContext(v)); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}

	ctx := NewExecutionContext(v)
	ctx.Tool = ""
	if err := l.Validate(ctx); err == nil {
		t.Error("Validate() with empty tool expected error")
	}
}

func TestVirtualLauncher_LaunchErrorWrapsSentinel(t *testing.T) {
	t.Parallel()

	err := &LaunchError{Tool: "test.py", Cause: errors.New("boom")}
	if !errors.Is(err, ErrLaunchFailure) {
		t.Error("LaunchError does not wrap ErrLaunchFailure")
	}
	if !strings.Contains(err.Error(), "test.py") {
		t.Errorf("Error() = %q, want tool name included", err.Error())
	}
}
