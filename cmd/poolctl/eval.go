// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/delldu/poolformer/internal/config"
	"github.com/delldu/poolformer/internal/issue"
	"github.com/delldu/poolformer/internal/launcher"
	"github.com/delldu/poolformer/internal/variant"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	// eval command flags
	evalShowDir  string
	evalTool     string
	evalLauncher string
	evalWorkDir  string
	evalEnvFiles []string
	evalEnvVars  []string
	evalDryRun   bool
	evalNoRecord bool

	evalCmd = &cobra.Command{
		Use:   "eval <variant>",
		Short: "Run the segmentation evaluation for a model variant",
		Long: `Run the external evaluation tool for a PoolFormer model variant.

The tool is launched with the variant's config and checkpoint paths plus
'--show-dir <dir>', and its exit status is propagated unchanged. The
parent of the working directory is prepended to ` + launcher.SearchPathVar + `
so the tool's runtime can import the model definitions.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeVariants,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(variant.Name(args[0]))
		},
	}
)

func init() {
	evalCmd.Flags().StringVar(&evalShowDir, "show-dir", "", "directory the tool writes visualizations into (default from config)")
	evalCmd.Flags().StringVar(&evalTool, "tool", "", "evaluation entry point (default from config)")
	evalCmd.Flags().StringVar(&evalLauncher, "launcher", "", "launcher mode: native or virtual (default from config)")
	evalCmd.Flags().StringVar(&evalWorkDir, "workdir", "", "working directory for the child process")
	evalCmd.Flags().StringArrayVar(&evalEnvFiles, "env-file", nil, "dotenv file merged into the child environment (repeatable, '?' suffix marks optional)")
	evalCmd.Flags().StringArrayVar(&evalEnvVars, "env-var", nil, "KEY=VALUE set in the child environment (repeatable, highest precedence)")
	evalCmd.Flags().BoolVar(&evalDryRun, "dry-run", false, "print the command line without launching anything")
	evalCmd.Flags().BoolVar(&evalNoRecord, "no-manifest", false, "do not write a run.toml record into the show dir")
}

// completeVariants provides shell completion for variant names.
func completeVariants(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	var names []string
	for _, n := range variant.Names() {
		names = append(names, string(n))
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}

// runEval resolves the variant, builds the execution context and launches
// the evaluation tool, propagating its exit code through ExitError.
func runEval(name variant.Name) error {
	v, err := variant.Lookup(name)
	if err != nil {
		renderIssue(issue.UnknownVariantId)
		return err
	}

	cfg := config.Get()
	logger := newRunLogger()

	ectx, err := buildExecutionContext(v, cfg)
	if err != nil {
		return err
	}

	mode := launcher.Mode(cfg.DefaultLauncher)
	if evalLauncher != "" {
		mode = launcher.Mode(evalLauncher)
	}
	if valid, errs := mode.IsValid(); !valid {
		renderIssue(issue.LauncherNotAvailableId)
		return errs[0]
	}

	line, err := launcher.ShellCommandLine(ectx)
	if err != nil {
		return err
	}

	if evalDryRun {
		fmt.Println(CmdStyle.Render(line))
		return nil
	}

	logger.Debug("launching evaluation",
		"variant", v.Name,
		"launcher", mode,
		"execution_id", ectx.ExecutionID,
		"cmdline", line)
	warnMissingCheckpoint(logger, ectx)

	started := time.Now()
	result := executeRun(mode, ectx)

	if result.Error != nil {
		if errors.Is(result.Error, launcher.ErrLaunchFailure) {
			renderIssue(issue.ToolNotFoundId)
		}
		return &ExitError{Code: nonZero(result.ExitCode), Err: result.Error}
	}

	if !evalNoRecord {
		record := launcher.NewRunRecord(ectx, mode, started, result)
		if err := launcher.WriteManifest(resolveFromWorkDir(ectx.WorkDir, ectx.ShowDir), record); err != nil {
			// Bookkeeping only; never changes the run's outcome.
			logger.Warn("could not write run manifest", "err", err)
		}
	}

	if !result.ExitCode.IsSuccess() {
		renderIssue(issue.EvaluationFailedId)
		return &ExitError{Code: result.ExitCode}
	}

	logger.Debug("evaluation finished",
		"variant", v.Name,
		"duration", time.Since(started),
		"show_dir", ectx.ShowDir)
	return nil
}

// buildExecutionContext merges config values and eval flags into the
// launcher's execution context.
func buildExecutionContext(v variant.Variant, cfg *config.Config) (*launcher.ExecutionContext, error) {
	ectx := launcher.NewExecutionContext(v)
	ectx.Tool = cfg.Tool
	ectx.Interpreter = cfg.Interpreter
	ectx.ShowDir = cfg.ShowDir
	ectx.WorkDir = cfg.WorkDir

	if evalTool != "" {
		ectx.Tool = evalTool
	}
	if evalShowDir != "" {
		ectx.ShowDir = evalShowDir
	}
	if evalWorkDir != "" {
		ectx.WorkDir = evalWorkDir
	}
	ectx.EnvFiles = evalEnvFiles

	for _, pair := range evalEnvVars {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("invalid --env-var '%s' (expected KEY=VALUE)", pair)
		}
		ectx.ExtraEnv[key] = value
	}

	return ectx, nil
}

// executeRun dispatches to the PTY-attached path for interactive runs and
// the registry otherwise.
func executeRun(mode launcher.Mode, ectx *launcher.ExecutionContext) *launcher.Result {
	registry := launcher.NewRegistry()

	if interactive {
		l, err := registry.Get(mode)
		if err == nil {
			if il := launcher.GetInteractiveLauncher(l); il != nil {
				return runInteractive(il, ectx)
			}
		}
		// Launchers without PTY support fall through to a plain run.
	}

	return registry.Execute(mode, ectx)
}

// runInteractive validates and prepares the command, then hands it to the
// platform PTY attachment.
func runInteractive(il launcher.InteractiveLauncher, ectx *launcher.ExecutionContext) *launcher.Result {
	if err := il.Validate(ectx); err != nil {
		return &launcher.Result{ExitCode: 1, Error: err}
	}

	prepared, err := il.PrepareInteractive(ectx)
	if err != nil {
		return &launcher.Result{ExitCode: 1, Error: err}
	}
	if prepared.Cleanup != nil {
		defer prepared.Cleanup()
	}

	return attachPTY(prepared)
}

// resolveFromWorkDir resolves a path the tool interprets relative to its
// working directory into one valid from the caller's directory.
func resolveFromWorkDir(workDir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	base := workDir
	if base == "" {
		base = "."
	}
	return filepath.Join(base, filepath.FromSlash(path))
}

// warnMissingCheckpoint flags a checkpoint that is clearly absent before
// the tool spends minutes loading the config. Path validity remains the
// tool's concern; this is advisory only.
func warnMissingCheckpoint(logger *log.Logger, ectx *launcher.ExecutionContext) {
	path := resolveFromWorkDir(ectx.WorkDir, ectx.Variant.CheckpointPath)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		logger.Warn("checkpoint file not found; the evaluation tool will likely fail",
			"checkpoint", ectx.Variant.CheckpointPath)
	}
}

// nonZero maps launch failures to exit code 1 when no child ever ran.
func nonZero(code launcher.ExitCode) launcher.ExitCode {
	if code == 0 {
		return 1
	}
	return code
}

// renderIssue prints the actionable markdown help for a failure class.
func renderIssue(id issue.Id) {
	rendered, err := issue.Get(id).Render("dark")
	if err != nil {
		return
	}
	fmt.Fprint(os.Stderr, rendered)
}

// newRunLogger builds the stderr logger used for verbose diagnostics.
func newRunLogger() *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: false,
		Prefix:          "poolctl",
	})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}
