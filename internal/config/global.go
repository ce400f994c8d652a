// SPDX-License-Identifier: MPL-2.0

package config

import "sync"

var (
	mu sync.Mutex

	// cached holds the last successfully loaded config.
	cached *Config

	// configDirOverride allows tests to override the config directory.
	// This is necessary because os.UserHomeDir() doesn't reliably respect
	// the HOME environment variable on all platforms (e.g., macOS in CI).
	configDirOverride string

	// configFilePathOverride holds the --config flag value.
	configFilePathOverride string
)

// Get returns the cached config, loading it on first use. When loading
// fails, built-in defaults are returned so callers always get a usable
// config; the load error is surfaced separately by the CLI layer.
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	if cached != nil {
		return cached
	}

	cfg, err := Load()
	if err != nil {
		return DefaultConfig()
	}
	cached = cfg
	return cached
}

// Reset clears the cache and test overrides. Call from test cleanup to
// restore defaults.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	cached = nil
	configDirOverride = ""
	configFilePathOverride = ""
}

// SetConfigDirOverride sets a custom config directory path.
// This is primarily intended for testing to bypass os.UserHomeDir() which
// doesn't reliably respect the HOME env var on all platforms (e.g., macOS in CI).
func SetConfigDirOverride(dir string) {
	mu.Lock()
	defer mu.Unlock()
	configDirOverride = dir
	cached = nil
}

// SetConfigFilePathOverride sets the config file path from the --config flag.
func SetConfigFilePathOverride(path string) {
	mu.Lock()
	defer mu.Unlock()
	configFilePathOverride = path
	cached = nil
}
