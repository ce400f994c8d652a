// SPDX-License-Identifier: MPL-2.0

package launcher

import (
	"errors"
	"reflect"
	"testing"

	"github.com/delldu/poolformer/internal/variant"
)

func mustVariant(t *testing.T, name variant.Name) variant.Variant {
	t.Helper()
	v, err := variant.Lookup(name)
	if err != nil {
		t.Fatalf("Lookup(%q) error = %v", name, err)
	}
	return v
}

func TestExecutionContext_Args(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name variant.Name
		want []string
	}{
		{
			name: variant.S24,
			want: []string{
				"configs/sem_fpn/PoolFormer/fpn_poolformer_s24_ade20k_40k.cfg",
				"../checkpoint/fpn_poolformer_s24_ade20k_40k.ckpt",
				"--show-dir",
				"output",
			},
		},
		{
			name: variant.S12,
			want: []string{
				"configs/sem_fpn/PoolFormer/fpn_poolformer_s12_ade20k_40k.cfg",
				"../checkpoint/fpn_poolformer_s12_ade20k_40k.ckpt",
				"--show-dir",
				"output",
			},
		},
	}

	for _, tt := range tests {
		t.Run(string(tt.name), func(t *testing.T) {
			t.Parallel()

			ctx := NewExecutionContext(mustVariant(t, tt.name))
			if got := ctx.Args(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Args() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExecutionContext_Args_CustomShowDir(t *testing.T) {
	t.Parallel()

	ctx := NewExecutionContext(mustVariant(t, variant.S24))
	ctx.ShowDir = "results"

	args := ctx.Args()
	if args[2] != "--show-dir" || args[3] != "results" {
		t.Errorf("Args() tail = %v, want [--show-dir results]", args[2:])
	}
}

func TestExecutionContext_Invocation(t *testing.T) {
	t.Parallel()

	t.Run("script tool runs through interpreter", func(t *testing.T) {
		t.Parallel()

		ctx := NewExecutionContext(mustVariant(t, variant.S24))
		program, args := ctx.Invocation()
		if program != "python3" {
			t.Errorf("program = %q, want %q", program, "python3")
		}
		if args[0] != "test.py" {
			t.Errorf("args[0] = %q, want %q", args[0], "test.py")
		}
		if len(args) != 5 {
			t.Errorf("len(args) = %d, want 5", len(args))
		}
	})

	t.Run("binary tool is spawned directly", func(t *testing.T) {
		t.Parallel()

		ctx := NewExecutionContext(mustVariant(t, variant.S24))
		ctx.Tool = "/usr/local/bin/evaluate"
		program, args := ctx.Invocation()
		if program != "/usr/local/bin/evaluate" {
			t.Errorf("program = %q", program)
		}
		if len(args) != 4 {
			t.Errorf("len(args) = %d, want 4", len(args))
		}
	})
}

func TestExecutionContext_Defaults(t *testing.T) {
	t.Parallel()

	ctx := NewExecutionContext(mustVariant(t, variant.S12))
	if ctx.Tool != "test.py" {
		t.Errorf("Tool = %q, want %q", ctx.Tool, "test.py")
	}
	if ctx.ShowDir != "output" {
		t.Errorf("ShowDir = %q, want %q", ctx.ShowDir, "output")
	}
	if ctx.ExecutionID == "" {
		t.Error("ExecutionID is empty")
	}
	if ctx.Context == nil {
		t.Error("Context is nil")
	}
}

func TestMode_IsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		mode Mode
		want bool
	}{
		{ModeNative, true},
		{ModeVirtual, true},
		{"", false},
		{"container", false},
	}

	for _, tt := range tests {
		valid, errs := tt.mode.IsValid()
		if valid != tt.want {
			t.Errorf("Mode(%q).IsValid() = %v, want %v", tt.mode, valid, tt.want)
		}
		if !valid {
			if len(errs) != 1 {
				t.Fatalf("Mode(%q).IsValid() errors = %v", tt.mode, errs)
			}
			if !errors.Is(errs[0], ErrInvalidMode) {
				t.Errorf("error %v does not wrap ErrInvalidMode", errs[0])
			}
		}
	}
}

func TestRegistry_Get(t *testing.T) {
	t.Parallel()

	r := NewRegistry()

	native, err := r.Get(ModeNative)
	if err != nil {
		t.Fatalf("Get(native) error = %v", err)
	}
	if native.Name() != "native" {
		t.Errorf("native.Name() = %q", native.Name())
	}

	virtual, err := r.Get(ModeVirtual)
	if err != nil {
		t.Fatalf("Get(virtual) error = %v", err)
	}
	if virtual.Name() != "virtual" {
		t.Errorf("virtual.Name() = %q", virtual.Name())
	}

	if _, err := r.Get("container"); !errors.Is(err, ErrInvalidMode) {
		t.Errorf("Get(container) error = %v, want ErrInvalidMode", err)
	}
}

func TestRegistry_Execute_UnknownMode(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	ctx := NewExecutionContext(mustVariant(t, variant.S24))

	result := r.Execute("bogus", ctx)
	if result.Error == nil {
		t.Fatal("Execute(bogus) expected error")
	}
	if result.ExitCode != 1 {
		t.Errorf("ExitCode = %d, want 1", result.ExitCode)
	}
}

func TestRegistry_Available(t *testing.T) {
	t.Parallel()

	modes := NewRegistry().Available()
	if len(modes) != 2 {
		t.Errorf("Available() = %v, want both built-in launchers", modes)
	}
}

func TestGetInteractiveLauncher(t *testing.T) {
	t.Parallel()

	if il := GetInteractiveLauncher(NewNativeLauncher()); il == nil {
		t.Error("native launcher should support interactive mode")
	}
	if il := GetInteractiveLauncher(NewVirtualLauncher()); il != nil {
		t.Error("virtual launcher should not support interactive mode")
	}
}

func TestResult_Success(t *testing.T) {
	t.Parallel()

	if !(&Result{ExitCode: 0}).Success() {
		t.Error("zero exit with no error should be success")
	}
	if (&Result{ExitCode: 3}).Success() {
		t.Error("non-zero exit should not be success")
	}
	if (&Result{ExitCode: 0, Error: errors.New("x")}).Success() {
		t.Error("error should not be success")
	}
}

func TestEnvToSlice(t *testing.T) {
	t.Parallel()

	got := EnvToSlice(map[string]string{"A": "1"})
	if len(got) != 1 || got[0] != "A=1" {
		t.Errorf("EnvToSlice = %v", got)
	}
}
