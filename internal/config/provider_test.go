// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestProviderLoadExplicitFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.cue")
	if err := os.WriteFile(path, []byte("workers: 3\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, err := NewProvider().Load(context.Background(), LoadOptions{
		ConfigFilePath: path,
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Workers != 3 {
		t.Errorf("Workers = %d, want 3", cfg.Workers)
	}
	if resolved != path {
		t.Errorf("resolved path = %q, want %q", resolved, path)
	}
}

func TestProviderLoadDefaults(t *testing.T) {
	t.Parallel()

	cfg, resolved, err := NewProvider().Load(context.Background(), LoadOptions{
		ConfigDirPath: t.TempDir(),
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Workers != DefaultConfig().Workers {
		t.Errorf("Workers = %d, want default %d", cfg.Workers, DefaultConfig().Workers)
	}
	if resolved != "" {
		t.Errorf("resolved path = %q, want empty for defaults", resolved)
	}
}

func TestProviderLoadMissingExplicitFile(t *testing.T) {
	t.Parallel()

	_, _, err := NewProvider().Load(context.Background(), LoadOptions{
		ConfigFilePath: filepath.Join(t.TempDir(), "nope.cue"),
	})
	if err == nil {
		t.Fatal("Load() error = nil for missing explicit file, want error")
	}
}
