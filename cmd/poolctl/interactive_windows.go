// SPDX-License-Identifier: MPL-2.0

//go:build windows

package cmd

import (
	"errors"

	"github.com/delldu/poolformer/internal/launcher"
)

// attachPTY is not supported on Windows; interactive runs fall back to
// an error so callers can retry without --interactive.
func attachPTY(prepared *launcher.PreparedCommand) *launcher.Result {
	return &launcher.Result{
		ExitCode: 1,
		Error:    errors.New("interactive mode is not supported on windows"),
	}
}
