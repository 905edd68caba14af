// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ConfigFileName+"."+ConfigFileExt)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaultsWhenNoFile(t *testing.T) {
	t.Parallel()

	cfg, path, err := loadWithOptions(context.Background(), LoadOptions{
		ConfigDirPath: t.TempDir(),
	})
	if err != nil {
		t.Fatalf("loadWithOptions() error = %v", err)
	}
	if path != "" {
		t.Errorf("resolved path = %q, want empty for defaults", path)
	}

	defaults := DefaultConfig()
	if cfg.Workers != defaults.Workers {
		t.Errorf("Workers = %d, want default %d", cfg.Workers, defaults.Workers)
	}
	if cfg.LogLevel != defaults.LogLevel {
		t.Errorf("LogLevel = %q, want default %q", cfg.LogLevel, defaults.LogLevel)
	}
	if cfg.UI.ColorScheme != defaults.UI.ColorScheme {
		t.Errorf("ColorScheme = %q, want default %q", cfg.UI.ColorScheme, defaults.UI.ColorScheme)
	}
}

func TestLoadFromFile(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
workers: 4
job_pool_size: 16
log_level: "debug"

metrics: {
	addr: "localhost:9090"
}

ui: {
	color_scheme: "dark"
	verbose: true
}
`)
	cfg, resolved, err := loadWithOptions(context.Background(), LoadOptions{
		ConfigFilePath: path,
	})
	if err != nil {
		t.Fatalf("loadWithOptions() error = %v", err)
	}
	if resolved != path {
		t.Errorf("resolved path = %q, want %q", resolved, path)
	}
	if cfg.Workers != 4 {
		t.Errorf("Workers = %d, want 4", cfg.Workers)
	}
	if cfg.JobPoolSize != 16 {
		t.Errorf("JobPoolSize = %d, want 16", cfg.JobPoolSize)
	}
	if cfg.LogLevel != LogLevelDebug {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if cfg.Metrics.Addr != "localhost:9090" {
		t.Errorf("Metrics.Addr = %q, want localhost:9090", cfg.Metrics.Addr)
	}
	if cfg.UI.ColorScheme != ColorSchemeDark || !cfg.UI.Verbose {
		t.Errorf("UI = %+v, want dark and verbose", cfg.UI)
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `workers: 2`)
	cfg, _, err := loadWithOptions(context.Background(), LoadOptions{
		ConfigFilePath: path,
	})
	if err != nil {
		t.Fatalf("loadWithOptions() error = %v", err)
	}
	if cfg.Workers != 2 {
		t.Errorf("Workers = %d, want 2", cfg.Workers)
	}
	if cfg.LogLevel != LogLevelInfo {
		t.Errorf("LogLevel = %q, want info default preserved", cfg.LogLevel)
	}
}

func TestLoadFromConfigDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	content := `workers: 3`
	if err := os.WriteFile(filepath.Join(dir, "config.cue"), []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, err := loadWithOptions(context.Background(), LoadOptions{
		ConfigDirPath: dir,
	})
	if err != nil {
		t.Fatalf("loadWithOptions() error = %v", err)
	}
	if resolved == "" {
		t.Error("resolved path empty, want the discovered file")
	}
	if cfg.Workers != 3 {
		t.Errorf("Workers = %d, want 3", cfg.Workers)
	}
}

func TestLoadRejectsBadConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
	}{
		{"syntax error", `workers: {`},
		{"schema violation", `workers: 0`},
		{"unknown log level", `log_level: "chatty"`},
		{"bad metrics addr", `metrics: {addr: "no-port"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := writeConfig(t, tt.content)
			_, _, err := loadWithOptions(context.Background(), LoadOptions{
				ConfigFilePath: path,
			})
			if err == nil {
				t.Error("loadWithOptions() error = nil, want error")
			}
		})
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	t.Parallel()

	_, _, err := loadWithOptions(context.Background(), LoadOptions{
		ConfigFilePath: filepath.Join(t.TempDir(), "nope.cue"),
	})
	if err == nil {
		t.Fatal("loadWithOptions() error = nil for missing explicit file, want error")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("error = %q, want not-found message", err)
	}
}

func TestLoadCanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := loadWithOptions(ctx, LoadOptions{}); err == nil {
		t.Error("loadWithOptions() error = nil with canceled context, want error")
	}
}

func TestGenerateCUERoundTrip(t *testing.T) {
	t.Parallel()

	in := &Config{
		AppDir:      "/apps/greeter",
		Workers:     8,
		JobPoolSize: 32,
		LogLevel:    LogLevelWarn,
		Metrics:     MetricsConfig{Addr: ":9090"},
		UI:          UIConfig{ColorScheme: ColorSchemeLight, Verbose: true},
	}

	path := writeConfig(t, GenerateCUE(in))
	out, _, err := loadWithOptions(context.Background(), LoadOptions{
		ConfigFilePath: path,
	})
	if err != nil {
		t.Fatalf("loadWithOptions() on generated file: error = %v", err)
	}

	if out.AppDir != in.AppDir || out.Workers != in.Workers || out.JobPoolSize != in.JobPoolSize {
		t.Errorf("round-trip = %+v, want fields of %+v", out, in)
	}
	if out.LogLevel != in.LogLevel || out.Metrics.Addr != in.Metrics.Addr {
		t.Errorf("round-trip = %+v, want fields of %+v", out, in)
	}
	if out.UI != in.UI {
		t.Errorf("round-trip UI = %+v, want %+v", out.UI, in.UI)
	}
}

func TestConfigDirOverride(t *testing.T) {
	dir := t.TempDir()
	SetConfigDirOverride(dir)
	t.Cleanup(Reset)

	got, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir() error = %v", err)
	}
	if got != dir {
		t.Errorf("ConfigDir() = %q, want override %q", got, dir)
	}
}

func TestCachedLoadInvalidation(t *testing.T) {
	path := writeConfig(t, `workers: 5`)
	SetConfigFilePathOverride(path)
	t.Cleanup(func() {
		SetConfigFilePathOverride("")
		InvalidateCache()
	})

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Workers != 5 {
		t.Errorf("Workers = %d, want 5", cfg.Workers)
	}
	if ResolvedPath() != path {
		t.Errorf("ResolvedPath() = %q, want %q", ResolvedPath(), path)
	}

	// Cached: the same pointer comes back.
	again, err := Load()
	if err != nil {
		t.Fatalf("second Load() error = %v", err)
	}
	if again != cfg {
		t.Error("second Load() returned a different instance, want the cached one")
	}

	// Changing the override drops the cache.
	other := writeConfig(t, `workers: 6`)
	SetConfigFilePathOverride(other)
	cfg, err = Load()
	if err != nil {
		t.Fatalf("Load() after override error = %v", err)
	}
	if cfg.Workers != 6 {
		t.Errorf("Workers = %d after override, want 6", cfg.Workers)
	}
}
