// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"sync"
)

// Package-level cache for the process-wide configuration. The CLI loads
// config once and reads it from many commands; the cache keeps those reads
// cheap and consistent.
var (
	configMu sync.Mutex

	// globalConfig is the cached configuration, nil until the first Load.
	globalConfig *Config
	// configPath is the file the cached configuration was loaded from
	// (empty when defaults were used).
	configPath string
	// configFilePathOverride forces loading from a specific file, set via
	// the --config flag.
	configFilePathOverride string
)

// Load returns the process-wide configuration, loading it on first use.
// Subsequent calls return the cached value until an override invalidates it.
func Load() (*Config, error) {
	configMu.Lock()
	defer configMu.Unlock()

	if globalConfig != nil {
		return globalConfig, nil
	}

	cfg, path, err := loadWithOptions(context.Background(), LoadOptions{
		ConfigFilePath: configFilePathOverride,
	})
	if err != nil {
		return nil, err
	}

	globalConfig = cfg
	configPath = path
	return globalConfig, nil
}

// ResolvedPath returns the file the cached configuration was loaded from.
// Empty means defaults (or Load has not run yet).
func ResolvedPath() string {
	configMu.Lock()
	defer configMu.Unlock()
	return configPath
}

// SetConfigFilePathOverride forces the next Load to read the given file and
// drops the cached configuration.
func SetConfigFilePathOverride(path string) {
	configMu.Lock()
	defer configMu.Unlock()
	configFilePathOverride = path
	globalConfig = nil
	configPath = ""
}

// InvalidateCache drops the cached configuration so the next Load re-reads
// the file. Intended for tests and for config-mutating commands.
func InvalidateCache() {
	configMu.Lock()
	defer configMu.Unlock()
	globalConfig = nil
	configPath = ""
}
