// SPDX-License-Identifier: MPL-2.0

package launcher

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// ManifestFileName is the name of the run record written into the show dir.
const ManifestFileName = "run.toml"

// RunRecord describes one completed evaluation run. It is written into
// the show dir so results can be traced back to the exact invocation
// that produced them.
type RunRecord struct {
	// ExecutionID uniquely identifies the run.
	ExecutionID string `toml:"execution_id"`
	// Variant is the evaluated model variant name.
	Variant string `toml:"variant"`
	// Launcher is the launcher mode that ran the tool.
	Launcher string `toml:"launcher"`
	// Tool is the evaluation entry point.
	Tool string `toml:"tool"`
	// Args is the argument list handed to the tool.
	Args []string `toml:"args"`
	// StartedAt is when the child process was launched.
	StartedAt time.Time `toml:"started_at"`
	// Duration is how long the run took.
	Duration time.Duration `toml:"duration"`
	// ExitCode is the tool's exit code, unchanged.
	ExitCode int `toml:"exit_code"`
}

// NewRunRecord builds the record for a finished run.
func NewRunRecord(ctx *ExecutionContext, mode Mode, startedAt time.Time, result *Result) RunRecord {
	return RunRecord{
		ExecutionID: ctx.ExecutionID,
		Variant:     string(ctx.Variant.Name),
		Launcher:    string(mode),
		Tool:        ctx.Tool,
		Args:        ctx.Args(),
		StartedAt:   startedAt,
		Duration:    time.Since(startedAt),
		ExitCode:    int(result.ExitCode),
	}
}

// WriteManifest writes the run record as TOML into dir, creating the
// directory if the tool did not. Callers treat failures as non-fatal:
// the manifest is bookkeeping and must never change the run's outcome.
func WriteManifest(dir string, record RunRecord) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create show dir '%s': %w", dir, err)
	}

	data, err := toml.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode run record: %w", err)
	}

	path := filepath.Join(dir, ManifestFileName)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write run manifest '%s': %w", path, err)
	}
	return nil
}

// ReadManifest reads a run record back from dir.
func ReadManifest(dir string) (RunRecord, error) {
	path := filepath.Join(dir, ManifestFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return RunRecord{}, fmt.Errorf("failed to read run manifest '%s': %w", path, err)
	}

	var record RunRecord
	if err := toml.Unmarshal(data, &record); err != nil {
		return RunRecord{}, fmt.Errorf("failed to decode run manifest '%s': %w", path, err)
	}
	return record, nil
}
