// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for poolctl.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/delldu/poolformer/internal/config"
	"github.com/delldu/poolformer/internal/issue"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"

	// verbose enables verbose output
	verbose bool
	// cfgFile allows specifying a custom config file
	cfgFile string
	// interactive attaches evaluation runs to a PTY
	interactive bool

	// rootCmd represents the base command when called without any subcommands
	rootCmd = &cobra.Command{
		Use:   "poolctl",
		Short: "PoolFormer segmentation evaluation launcher",
		Long: TitleStyle.Render("poolctl") + SubtitleStyle.Render(" - PoolFormer segmentation evaluation launcher") + `

poolctl launches the external semantic-segmentation evaluation tool for
a selected PoolFormer model variant, with the exact arguments and module
search path the evaluation expects, and propagates the tool's exit
status unchanged.

` + SubtitleStyle.Render("Examples:") + `
  poolctl list              List the evaluable model variants
  poolctl eval s24          Evaluate the s24 variant on ADE20K
  poolctl eval s12 --dry-run  Print the command line without running it
  poolctl config show       Show current configuration`,
	}
)

func init() {
	cobra.OnInitialize(initRootConfig)

	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/poolctl/config.cue)")
	rootCmd.PersistentFlags().BoolVarP(&interactive, "interactive", "i", false, "attach the evaluation run to a PTY")

	// Add subcommands
	rootCmd.AddCommand(evalCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(configCmd)
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	// Use fang.Execute for enhanced Cobra styling
	// Pass version via fang.WithVersion() since fang overrides rootCmd.Version
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(int(exitErr.Code))
		}
		os.Exit(1)
	}
}

// initRootConfig reads in config file and ENV variables if set.
func initRootConfig() {
	// Set custom config file path if provided via --config flag
	if cfgFile != "" {
		config.SetConfigFilePathOverride(cfgFile)
	}

	// Load configuration; surface loading errors but keep running on defaults.
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, WarningStyle.Render("Warning: ")+formatErrorForDisplay(err, verbose))
	}

	// Apply verbose from config if not set via flag
	if cfg != nil && !verbose {
		verbose = cfg.UI.Verbose
	}

	// Apply interactive from config if not set via flag
	if cfg != nil && !interactive {
		interactive = cfg.UI.Interactive
	}
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}

// GetVerbose returns the verbose flag value
func GetVerbose() bool {
	return verbose
}
