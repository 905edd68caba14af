// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"testing"
)

func TestLogLevelIsValid(t *testing.T) {
	t.Parallel()

	for _, l := range []LogLevel{LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError} {
		if valid, errs := l.IsValid(); !valid {
			t.Errorf("LogLevel(%q).IsValid() = false, errs %v", l, errs)
		}
	}

	valid, errs := LogLevel("chatty").IsValid()
	if valid {
		t.Fatal("LogLevel(chatty).IsValid() = true, want false")
	}
	if len(errs) != 1 || !errors.Is(errs[0], ErrInvalidLogLevel) {
		t.Errorf("errs = %v, want one ErrInvalidLogLevel", errs)
	}
}

func TestColorSchemeIsValid(t *testing.T) {
	t.Parallel()

	for _, cs := range []ColorScheme{ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight} {
		if valid, _ := cs.IsValid(); !valid {
			t.Errorf("ColorScheme(%q).IsValid() = false", cs)
		}
	}
	if valid, _ := ColorScheme("sepia").IsValid(); valid {
		t.Error("ColorScheme(sepia).IsValid() = true, want false")
	}
}

func TestAppDirPathIsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		path  AppDirPath
		valid bool
	}{
		{"empty is valid", "", true},
		{"normal path", "/apps/greeter", true},
		{"whitespace only", "   ", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if valid, _ := tt.path.IsValid(); valid != tt.valid {
				t.Errorf("AppDirPath(%q).IsValid() = %v, want %v", tt.path, valid, tt.valid)
			}
		})
	}
}

func TestConfigIsValid(t *testing.T) {
	t.Parallel()

	if valid, errs := DefaultConfig().IsValid(); !valid {
		t.Fatalf("DefaultConfig().IsValid() = false, errs %v", errs)
	}

	bad := Config{
		AppDir:      "  ",
		Workers:     0,
		JobPoolSize: -1,
		LogLevel:    "chatty",
		UI:          UIConfig{ColorScheme: "sepia"},
	}
	valid, errs := bad.IsValid()
	if valid {
		t.Fatal("IsValid() = true for broken config, want false")
	}
	if len(errs) != 1 {
		t.Fatalf("errs = %v, want one wrapping InvalidConfigError", errs)
	}

	var ce *InvalidConfigError
	if !errors.As(errs[0], &ce) {
		t.Fatalf("errs[0] = %T, want *InvalidConfigError", errs[0])
	}
	if !errors.Is(errs[0], ErrInvalidConfig) {
		t.Error("errs[0] does not unwrap to ErrInvalidConfig")
	}
	if len(ce.FieldErrors) != 5 {
		t.Errorf("FieldErrors = %v, want 5 entries", ce.FieldErrors)
	}

	wantSentinels := []error{
		ErrInvalidAppDirPath,
		ErrInvalidWorkerCount,
		ErrInvalidJobPoolSize,
		ErrInvalidLogLevel,
		ErrInvalidUIConfig,
	}
	for _, sentinel := range wantSentinels {
		found := false
		for _, fe := range ce.FieldErrors {
			if errors.Is(fe, sentinel) {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("FieldErrors missing %v", sentinel)
		}
	}
}
