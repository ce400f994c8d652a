// SPDX-License-Identifier: MPL-2.0

package launcher

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/delldu/poolformer/internal/variant"
)

// writeFakeTool writes an executable shell script standing in for the
// evaluation tool and returns its absolute path.
func writeFakeTool(t *testing.T, dir, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake tool scripts require a POSIX shell")
	}
	path := filepath.Join(dir, "fake-tool")
	content := "#!/bin/sh\n" + script + "\n"
	if err := os.WriteFile(path, []byte(content), 0o755); err != nil {
		t.Fatalf("failed to write fake tool: %v", err)
	}
	return path
}

func nativeContext(t *testing.T, tool string) *ExecutionContext {
	t.Helper()
	v, err := variant.Lookup(variant.S24)
	if err != nil {
		t.Fatalf("Lookup(s24) error = %v", err)
	}
	ctx := NewExecutionContext(v)
	ctx.Tool = tool
	ctx.Stdin = strings.NewReader("")
	ctx.Stdout = &bytes.Buffer{}
	ctx.Stderr = &bytes.Buffer{}
	return ctx
}

func TestNativeLauncher_ArgvPassedVerbatim(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	dir := t.TempDir()
	argsOut := filepath.Join(dir, "args.txt")
	tool := writeFakeTool(t, dir, `printf '%s\n' "$@" > "$ARGS_OUT"`)

	ctx := nativeContext(t, tool)
	ctx.ExtraEnv["ARGS_OUT"] = argsOut

	result := NewNativeLauncher().Execute(ctx)
	if !result.Success() {
		t.Fatalf("Execute() = exit %d, error %v", result.ExitCode, result.Error)
	}

	data, err := os.ReadFile(argsOut)
	if err != nil {
		t.Fatalf("failed to read recorded args: %v", err)
	}
	got := strings.Split(strings.TrimSpace(string(data)), "\n")
	want := []string{
		"configs/sem_fpn/PoolFormer/fpn_poolformer_s24_ade20k_40k.cfg",
		"../checkpoint/fpn_poolformer_s24_ade20k_40k.ckpt",
		"--show-dir",
		"output",
	}
	if len(got) != len(want) {
		t.Fatalf("child argv = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("argv[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestNativeLauncher_ExitCodePropagation(t *testing.T) {
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
		{"command not found convention", 127},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			tool := writeFakeTool(t, dir, "exit "+tt.code.String())

			result := NewNativeLauncher().Execute(nativeContext(t, tool))
			if result.ExitCode != tt.code {
				t.Errorf("ExitCode = %d, want %d", result.ExitCode, tt.code)
			}
			if result.Error != nil {
				t.Errorf("Error = %v, want nil (tool ran)", result.Error)
			}
		})
	}
}

func TestNativeLauncher_ToolMissing(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := nativeContext(t, filepath.Join(t.TempDir(), "does-not-exist"))

	result := NewNativeLauncher().Execute(ctx)
	if result.Error == nil {
		t.Fatal("Execute() with missing tool expected error")
	}
	if !errors.Is(result.Error, ErrLaunchFailure) {
		t.Errorf("error = %v, want errors.Is(err, ErrLaunchFailure)", result.Error)
	}
	if result.ExitCode == 0 {
		t.Error("ExitCode = 0 for launch failure, want non-zero")
	}
}

func TestNativeLauncher_SearchPathReachesChild(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	dir := t.TempDir()
	tool := writeFakeTool(t, dir, `printf '%s' "$MODULE_SEARCH_PATH"`)

	ctx := nativeContext(t, tool)
	ctx.WorkDir = dir

	launcher := NewNativeLauncher()
	result := launcher.ExecuteCapture(ctx)
	if !result.Success() {
		t.Fatalf("ExecuteCapture() = exit %d, error %v", result.ExitCode, result.Error)
	}

	parent := filepath.Dir(dir)
	if !strings.HasPrefix(result.Output, parent) {
		t.Errorf("child %s = %q, want prefix %q", SearchPathVar, result.Output, parent)
	}
}

func TestNativeLauncher_ExecuteCapture(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	dir := t.TempDir()
	tool := writeFakeTool(t, dir, `echo out; echo err >&2; exit 3`)

	result := NewNativeLauncher().ExecuteCapture(nativeContext(t, tool))
	if result.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", result.ExitCode)
	}
	if strings.TrimSpace(result.Output) != "out" {
		t.Errorf("Output = %q, want %q", result.Output, "out")
	}
	if strings.TrimSpace(result.ErrOutput) != "err" {
		t.Errorf("ErrOutput = %q, want %q", result.ErrOutput, "err")
	}
}

func TestNativeLauncher_Validate(t *testing.T) {
	t.Parallel()

	l := NewNativeLauncher()

	v, err := variant.Lookup(variant.S12)
	if err != nil {
		t.Fatalf("Lookup(s12) error = %v", err)
	}

	ctx := NewExecutionContext(v)
	if err := l.Validate(ctx); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}

	ctx.Tool = ""
	if err := l.Validate(ctx); err == nil {
		t.Error("Validate() with empty tool expected error")
	}

	ctx = NewExecutionContext(v)
	ctx.WorkDir = filepath.Join(t.TempDir(), "missing")
	if err := l.Validate(ctx); err == nil {
		t.Error("Validate() with missing workdir expected error")
	}
}

func TestNativeLauncher_PrepareInteractive(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	dir := t.TempDir()
	tool := writeFakeTool(t, dir, "exit 0")

	prepared, err := NewNativeLauncher().PrepareInteractive(nativeContext(t, tool))
	if err != nil {
		t.Fatalf("PrepareInteractive() error = %v", err)
	}
	if prepared.Cmd == nil {
		t.Fatal("PrepareInteractive() returned nil Cmd")
	}
	if len(prepared.Cmd.Args) != 5 {
		t.Errorf("prepared argv length = %d, want 5 (tool + 4 args)", len(prepared.Cmd.Args))
	}
}
