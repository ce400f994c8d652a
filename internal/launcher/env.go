// SPDX-License-Identifier: MPL-2.0

package launcher

import (
	"fmt"
	"os"
	"path/filepath"
)

// SearchPathVar is the environment variable instructing the evaluation
// tool's runtime where to locate importable code modules.
const SearchPathVar = "MODULE_SEARCH_PATH"

type (
	// EnvBuilder builds the child process environment for an evaluation
	// run. It applies a 4-level precedence hierarchy (higher number wins):
	//
	//  1. Host environment (inherited in full)
	//  2. Module search path override (parent dir prepended, never replacing)
	//  3. EnvFiles (--env-file flag, loaded in order)
	//  4. ExtraEnv (--env-var flag) - HIGHEST priority
	EnvBuilder struct {
		// Environ returns the host environment as "KEY=VALUE" strings.
		// When nil, os.Environ() is used.
		Environ func() []string
	}
)

// NewEnvBuilder creates a new EnvBuilder.
func NewEnvBuilder() *EnvBuilder {
	return &EnvBuilder{}
}

// Build constructs the environment map following the 4-level precedence.
func (b *EnvBuilder) Build(ctx *ExecutionContext) (map[string]string, error) {
	environ := b.Environ
	if environ == nil {
		environ = os.Environ
	}

	// 1. Host environment
	env := make(map[string]string)
	for _, entry := range environ() {
		idx := findEnvSeparator(entry)
		if idx == -1 {
			continue
		}
		env[entry[:idx]] = entry[idx+1:]
	}

	// 2. Module search path: prepend the parent of the working directory
	parent, err := moduleParentDir(ctx.WorkDir)
	if err != nil {
		return nil, err
	}
	env[SearchPathVar] = SearchPathValue(parent, env[SearchPathVar])

	// 3. EnvFiles
	for _, path := range ctx.EnvFiles {
		if err := LoadEnvFile(env, path, ctx.WorkDir); err != nil {
			return nil, err
		}
	}

	// 4. ExtraEnv (highest priority)
	for k, v := range ctx.ExtraEnv {
		env[k] = v
	}

	return env, nil
}

// SearchPathValue computes the module search path passed to the child:
// the parent directory prepended to the existing value, or the parent
// directory alone when the variable was previously unset or empty.
// Pre-existing entries are always preserved.
func SearchPathValue(parentDir, oldValue string) string {
	if oldValue == "" {
		return parentDir
	}
	return parentDir + string(os.PathListSeparator) + oldValue
}

// moduleParentDir resolves the parent directory of the effective working
// directory, which the tool's runtime needs on its module search path to
// import the model definitions.
func moduleParentDir(workDir string) (string, error) {
	dir := workDir
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get current working directory: %w", err)
		}
		dir = cwd
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve working directory '%s': %w", dir, err)
	}
	return filepath.Dir(abs), nil
}

// validateWorkDir validates that a working directory exists and is accessible.
// This provides a better error message than letting exec fail with a cryptic error.
func validateWorkDir(dir string) error {
	if dir == "" {
		return nil
	}

	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("directory does not exist: %s", dir)
		}
		if os.IsPermission(err) {
			return fmt.Errorf("permission denied: %s", dir)
		}
		return fmt.Errorf("cannot access directory: %w", err)
	}

	if !info.IsDir() {
		return fmt.Errorf("not a directory: %s", dir)
	}

	return nil
}
