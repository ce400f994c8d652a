// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"strings"
	"testing"

	"github.com/delldu/poolformer/internal/issue"
	"github.com/delldu/poolformer/internal/launcher"
)

func TestGetVersionString(t *testing.T) {
	// Not parallel: subtests mutate package-level Version/Commit/BuildDate vars.

	t.Run("ldflags version takes priority", func(t *testing.T) {
		origVersion, origCommit, origBuildDate := Version, Commit, BuildDate
		t.Cleanup(func() {
			Version, Commit, BuildDate = origVersion, origCommit, origBuildDate
		})

		Version = "v1.2.3"
		Commit = "abc1234"
		BuildDate = "2026-06-15T10:00:00Z"

		got := getVersionString()
		want := "v1.2.3 (commit: abc1234, built: 2026-06-15T10:00:00Z)"
		if got != want {
			t.Errorf("getVersionString() = %q, want %q", got, want)
		}
	})

	t.Run("fallback to dev when no build info", func(t *testing.T) {
		origVersion, origCommit, origBuildDate := Version, Commit, BuildDate
		t.Cleanup(func() {
			Version, Commit, BuildDate = origVersion, origCommit, origBuildDate
		})

		Version = "dev"
		Commit = "unknown"
		BuildDate = "unknown"

		got := getVersionString()
		want := "dev (built from source)"
		if got != want {
			t.Errorf("getVersionString() = %q, want %q", got, want)
		}
	})
}

func TestExitError(t *testing.T) {
	t.Parallel()

	t.Run("message from wrapped error", func(t *testing.T) {
		t.Parallel()
		inner := errors.New("tool exited badly")
		e := &ExitError{Code: 3, Err: inner}
		if e.Error() != "tool exited badly" {
			t.Errorf("Error() = %q, want %q", e.Error(), "tool exited badly")
		}
		if !errors.Is(e, inner) {
			t.Error("errors.Is should find the wrapped error")
		}
	})

	t.Run("message without wrapped error", func(t *testing.T) {
		t.Parallel()
		e := &ExitError{Code: launcher.ExitCode(127)}
		if e.Error() != "exit status 127" {
			t.Errorf("Error() = %q, want %q", e.Error(), "exit status 127")
		}
	})

	t.Run("errors.As through wrapping", func(t *testing.T) {
		t.Parallel()
		var target *ExitError
		wrapped := errors.Join(errors.New("context"), &ExitError{Code: 1})
		if !errors.As(wrapped, &target) {
			t.Fatal("errors.As should unwrap to *ExitError")
		}
		if target.Code != 1 {
			t.Errorf("Code = %d, want 1", target.Code)
		}
	})
}

func TestFormatErrorForDisplay(t *testing.T) {
	t.Parallel()

	t.Run("plain error", func(t *testing.T) {
		t.Parallel()
		got := formatErrorForDisplay(errors.New("boom"), false)
		if got != "boom" {
			t.Errorf("formatErrorForDisplay() = %q, want %q", got, "boom")
		}
	})

	t.Run("actionable error uses Format", func(t *testing.T) {
		t.Parallel()
		ae := issue.NewErrorContext().
			WithOperation("load config").
			WithResource("config.cue").
			WithSuggestion("run poolctl config init").
			Wrap(errors.New("no such file")).
			Build()

		got := formatErrorForDisplay(ae, false)
		if !strings.Contains(got, "load config") {
			t.Errorf("formatted error should mention the operation, got %q", got)
		}
	})
}
