// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// LauncherNative spawns the evaluation tool directly as a child process.
	// Defined locally to avoid coupling config to internal/launcher.
	LauncherNative LauncherMode = "native"
	// LauncherVirtual runs the invocation through the embedded mvdan/sh interpreter.
	LauncherVirtual LauncherMode = "virtual"
)

var (
	// ErrInvalidLauncherMode is returned when a config LauncherMode value is not recognized.
	ErrInvalidLauncherMode = errors.New("invalid launcher mode")
	// ErrInvalidToolPath is returned when the tool value is whitespace-only.
	ErrInvalidToolPath = errors.New("invalid tool path")
	// ErrInvalidShowDir is returned when the show_dir value is whitespace-only.
	ErrInvalidShowDir = errors.New("invalid show dir")
)

type (
	// LauncherMode selects how evaluation runs are spawned.
	LauncherMode string

	// UIConfig holds user interface preferences.
	UIConfig struct {
		// Verbose enables verbose output.
		Verbose bool `mapstructure:"verbose"`
		// Interactive attaches evaluation runs to a PTY.
		Interactive bool `mapstructure:"interactive"`
	}

	// Config is the poolctl configuration.
	Config struct {
		// Tool is the evaluation entry point (script or binary).
		Tool string `mapstructure:"tool"`
		// Interpreter runs the tool when it is a script.
		Interpreter string `mapstructure:"interpreter"`
		// ShowDir is where the tool writes visualizations.
		ShowDir string `mapstructure:"show_dir"`
		// WorkDir is the child process working directory (empty = current).
		WorkDir string `mapstructure:"work_dir"`
		// DefaultLauncher is used when --launcher is not given.
		DefaultLauncher LauncherMode `mapstructure:"default_launcher"`
		// UI holds user interface preferences.
		UI UIConfig `mapstructure:"ui"`
	}
)

// String returns the mode name.
func (m LauncherMode) String() string { return string(m) }

// IsValid returns whether the LauncherMode is recognized, and a list of
// validation errors if it is not.
func (m LauncherMode) IsValid() (bool, []error) {
	switch m {
	case LauncherNative, LauncherVirtual:
		return true, nil
	}
	return false, []error{fmt.Errorf("%w: '%s' (must be 'native' or 'virtual')", ErrInvalidLauncherMode, m)}
}

// DefaultConfig returns the built-in defaults used when no config file exists.
func DefaultConfig() *Config {
	return &Config{
		Tool:            "test.py",
		Interpreter:     "python3",
		ShowDir:         "output",
		DefaultLauncher: LauncherNative,
		UI: UIConfig{
			Verbose:     false,
			Interactive: false,
		},
	}
}

// Validate checks constraints the CUE schema cannot express.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Tool) == "" {
		return fmt.Errorf("%w: tool must not be empty or whitespace", ErrInvalidToolPath)
	}
	if strings.TrimSpace(c.ShowDir) == "" {
		return fmt.Errorf("%w: show_dir must not be empty or whitespace", ErrInvalidShowDir)
	}
	if valid, errs := c.DefaultLauncher.IsValid(); !valid {
		return errs[0]
	}
	return nil
}
