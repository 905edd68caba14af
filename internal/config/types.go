// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// LogLevelDebug enables all host diagnostics.
	LogLevelDebug LogLevel = "debug"
	// LogLevelInfo is the default host verbosity.
	LogLevelInfo LogLevel = "info"
	// LogLevelWarn limits host output to warnings and errors.
	LogLevelWarn LogLevel = "warn"
	// LogLevelError limits host output to errors.
	LogLevelError LogLevel = "error"

	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"
)

var (
	// ErrInvalidLogLevel is returned when a LogLevel value is not recognized.
	ErrInvalidLogLevel = errors.New("invalid log level")
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidAppDirPath is returned when an AppDirPath value is whitespace-only.
	ErrInvalidAppDirPath = errors.New("invalid app dir path")
	// ErrInvalidWorkerCount is returned when the worker count is below 1.
	ErrInvalidWorkerCount = errors.New("invalid worker count")
	// ErrInvalidJobPoolSize is returned when the job pool size is negative.
	ErrInvalidJobPoolSize = errors.New("invalid job pool size")
	// ErrInvalidMetricsConfig is the sentinel error wrapped by InvalidMetricsConfigError.
	ErrInvalidMetricsConfig = errors.New("invalid metrics config")
	// ErrInvalidUIConfig is the sentinel error wrapped by InvalidUIConfigError.
	ErrInvalidUIConfig = errors.New("invalid UI config")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// LogLevel selects the host logger verbosity.
	LogLevel string

	// InvalidLogLevelError is returned when a LogLevel value is not recognized.
	// It wraps ErrInvalidLogLevel for errors.Is() compatibility.
	InvalidLogLevelError struct {
		Value LogLevel
	}

	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	// It wraps ErrInvalidColorScheme for errors.Is() compatibility.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// AppDirPath is a filesystem path to a directory holding a funcfile.cue.
	// The zero value ("") is valid and means "use the current directory".
	// Non-zero values must not be whitespace-only.
	AppDirPath string

	// InvalidAppDirPathError is returned when an AppDirPath value is
	// non-empty but whitespace-only.
	InvalidAppDirPathError struct {
		Value AppDirPath
	}

	// InvalidWorkerCountError is returned when the configured worker count
	// is below 1. It wraps ErrInvalidWorkerCount for errors.Is().
	InvalidWorkerCountError struct {
		Value int
	}

	// InvalidJobPoolSizeError is returned when the configured job pool size
	// is negative. It wraps ErrInvalidJobPoolSize for errors.Is().
	InvalidJobPoolSizeError struct {
		Value int
	}

	// InvalidMetricsConfigError is returned when a MetricsConfig has invalid
	// fields. It wraps ErrInvalidMetricsConfig for errors.Is() compatibility
	// and collects field-level validation errors.
	InvalidMetricsConfigError struct {
		FieldErrors []error
	}

	// InvalidUIConfigError is returned when a UIConfig has invalid fields.
	// It wraps ErrInvalidUIConfig for errors.Is() compatibility and collects
	// field-level validation errors.
	InvalidUIConfigError struct {
		FieldErrors []error
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// field-level validation errors from all sub-components.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// AppDir is the directory holding the funcfile.cue to serve.
		AppDir AppDirPath `json:"app_dir" mapstructure:"app_dir"`
		// Workers is the number of pooled sessions (minimum 1).
		Workers int `json:"workers" mapstructure:"workers"`
		// JobPoolSize caps concurrent background jobs across all sessions.
		// Zero means plain goroutines with no cap.
		JobPoolSize int `json:"job_pool_size" mapstructure:"job_pool_size"`
		// LogLevel selects host logger verbosity.
		LogLevel LogLevel `json:"log_level" mapstructure:"log_level"`
		// Metrics configures the metrics endpoint.
		Metrics MetricsConfig `json:"metrics" mapstructure:"metrics"`
		// UI configures the user interface.
		UI UIConfig `json:"ui" mapstructure:"ui"`
	}

	// MetricsConfig configures the Prometheus metrics endpoint.
	MetricsConfig struct {
		// Addr is the host:port to expose /metrics on. Empty disables the
		// endpoint.
		Addr string `json:"addr" mapstructure:"addr"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		// ColorScheme sets the color scheme
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
		// Verbose enables verbose output
		Verbose bool `json:"verbose" mapstructure:"verbose"`
	}
)

// String returns the string representation of the LogLevel.
func (l LogLevel) String() string { return string(l) }

// IsValid returns whether the LogLevel is one of the defined levels,
// and a list of validation errors if it is not.
func (l LogLevel) IsValid() (bool, []error) {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return true, nil
	default:
		return false, []error{&InvalidLogLevelError{Value: l}}
	}
}

// Error implements the error interface for InvalidLogLevelError.
func (e *InvalidLogLevelError) Error() string {
	return fmt.Sprintf("invalid log level %q (valid: debug, info, warn, error)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidLogLevelError) Unwrap() error { return ErrInvalidLogLevel }

// String returns the string representation of the ColorScheme.
func (cs ColorScheme) String() string { return string(cs) }

// IsValid returns whether the ColorScheme is one of the defined color schemes,
// and a list of validation errors if it is not.
func (cs ColorScheme) IsValid() (bool, []error) {
	switch cs {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true, nil
	default:
		return false, []error{&InvalidColorSchemeError{Value: cs}}
	}
}

// Error implements the error interface for InvalidColorSchemeError.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidColorSchemeError) Unwrap() error { return ErrInvalidColorScheme }

// String returns the string representation of the AppDirPath.
func (p AppDirPath) String() string { return string(p) }

// IsValid returns whether the AppDirPath is valid.
// The zero value ("") is valid (means "use the current directory").
// Non-zero values must not be whitespace-only.
func (p AppDirPath) IsValid() (bool, []error) {
	if p == "" {
		return true, nil
	}
	if strings.TrimSpace(string(p)) == "" {
		return false, []error{&InvalidAppDirPathError{Value: p}}
	}
	return true, nil
}

// Error implements the error interface for InvalidAppDirPathError.
func (e *InvalidAppDirPathError) Error() string {
	return fmt.Sprintf("invalid app dir path %q: non-empty value must not be whitespace-only", e.Value)
}

// Unwrap returns ErrInvalidAppDirPath for errors.Is() compatibility.
func (e *InvalidAppDirPathError) Unwrap() error { return ErrInvalidAppDirPath }

// Error implements the error interface for InvalidWorkerCountError.
func (e *InvalidWorkerCountError) Error() string {
	return fmt.Sprintf("invalid worker count %d: must be at least 1", e.Value)
}

// Unwrap returns ErrInvalidWorkerCount for errors.Is() compatibility.
func (e *InvalidWorkerCountError) Unwrap() error { return ErrInvalidWorkerCount }

// Error implements the error interface for InvalidJobPoolSizeError.
func (e *InvalidJobPoolSizeError) Error() string {
	return fmt.Sprintf("invalid job pool size %d: must not be negative", e.Value)
}

// Unwrap returns ErrInvalidJobPoolSize for errors.Is() compatibility.
func (e *InvalidJobPoolSizeError) Unwrap() error { return ErrInvalidJobPoolSize }

// IsValid returns whether the MetricsConfig has valid fields.
// Addr syntax is checked at load time; the zero value is always valid.
func (c MetricsConfig) IsValid() (bool, []error) {
	if c.Addr != "" && strings.TrimSpace(c.Addr) == "" {
		return false, []error{&InvalidMetricsConfigError{
			FieldErrors: []error{errors.New("addr must not be whitespace-only")},
		}}
	}
	return true, nil
}

// Error implements the error interface for InvalidMetricsConfigError.
func (e *InvalidMetricsConfigError) Error() string {
	return fmt.Sprintf("invalid metrics config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidMetricsConfig for errors.Is() compatibility.
func (e *InvalidMetricsConfigError) Unwrap() error { return ErrInvalidMetricsConfig }

// IsValid returns whether the UIConfig has valid fields.
// It delegates to ColorScheme.IsValid(); bool fields need no validation.
func (c UIConfig) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.ColorScheme.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidUIConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidUIConfigError.
func (e *InvalidUIConfigError) Error() string {
	return fmt.Sprintf("invalid UI config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidUIConfig for errors.Is() compatibility.
func (e *InvalidUIConfigError) Unwrap() error { return ErrInvalidUIConfig }

// IsValid returns whether the Config has valid fields.
// It delegates to AppDir.IsValid(), LogLevel.IsValid(), Metrics.IsValid(),
// and UI.IsValid(), and range-checks Workers and JobPoolSize.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.AppDir.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if c.Workers < 1 {
		errs = append(errs, &InvalidWorkerCountError{Value: c.Workers})
	}
	if c.JobPoolSize < 0 {
		errs = append(errs, &InvalidJobPoolSizeError{Value: c.JobPoolSize})
	}
	if valid, fieldErrs := c.LogLevel.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Metrics.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.UI.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		AppDir:      "",
		Workers:     1,
		JobPoolSize: 0,
		LogLevel:    LogLevelInfo,
		Metrics: MetricsConfig{
			Addr: "",
		},
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
			Verbose:     false,
		},
	}
}
