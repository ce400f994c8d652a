// SPDX-License-Identifier: MPL-2.0

package launcher

import (
	"errors"
	"testing"
)

func TestExitCode_IsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code ExitCode
		want bool
	}{
		{0, true},
		{1, true},
		{3, true},
		{127, true},
		{255, true},
		{-1, false},
		{256, false},
	}

	for _, tt := range tests {
		valid, errs := tt.code.IsValid()
		if valid != tt.want {
			t.Errorf("ExitCode(%d).IsValid() = %v, want %v", tt.code, valid, tt.want)
		}
		if !valid && !errors.Is(errs[0], ErrInvalidExitCode) {
			t.Errorf("error %v does not wrap ErrInvalidExitCode", errs[0])
		}
	}
}

func TestExitCode_IsSuccess(t *testing.T) {
	t.Parallel()

	if !ExitCode(0).IsSuccess() {
		t.Error("ExitCode(0).IsSuccess() = false")
	}
	if ExitCode(3).IsSuccess() {
		t.Error("ExitCode(3).IsSuccess() = true")
	}
}

func TestExitCode_String(t *testing.T) {
	t.Parallel()

	if got := ExitCode(127).String(); got != "127" {
		t.Errorf("String() = %q, want %q", got, "127")
	}
}
