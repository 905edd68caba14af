// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for funcshell.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"funcshell/internal/config"
	"funcshell/internal/issue"
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
	// appDir points at the directory holding the funcfile.cue
	appDir string

	// rootCmd represents the base command when called without any subcommands
	rootCmd = &cobra.Command{
		Use:   "funcshell",
		Short: "A shell-function worker host",
		Long: TitleStyle.Render("funcshell") + SubtitleStyle.Render(" - A shell-function worker host") + `

funcshell executes shell-script functions on long-lived interpreter
sessions. Each session is initialized once from the app's profile script,
then serves invocations one at a time, restoring its baseline state
between invocations so no state leaks from one to the next.

Apps are described in 'funcfile.cue' files using CUE format: the
functions, their scripts and entry points, declared parameters, and
output bindings.

` + SubtitleStyle.Render("Quick Start:") + `
  1. Create a funcfile.cue in your app directory
  2. Declare functions and their scripts using CUE syntax
  3. Invoke one with: funcshell run <function-name>

` + SubtitleStyle.Render("Examples:") + `
  funcshell functions         List the app's functions
  funcshell run hello         Invoke the 'hello' function once
  funcshell serve             Serve invocation requests over stdio
  funcshell config show       Show current configuration`,
	}
)

func init() {
	cobra.OnInitialize(initRootConfig)

	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/funcshell/config.cue)")
	rootCmd.PersistentFlags().StringVarP(&appDir, "app-dir", "a", "", "directory holding the funcfile.cue (default is the current directory)")

	// Add subcommands
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(functionsCmd)
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
			os.Exit(exitErr.Code)
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

	cfg, err := config.Load()
	if err != nil {
		// Always surface config loading errors to the user
		fmt.Fprintln(os.Stderr, WarningStyle.Render("Warning: ")+formatErrorForDisplay(err, verbose))
	}

	// Apply verbose from config if not set via flag
	if cfg != nil && !verbose {
		verbose = cfg.UI.Verbose
	}

	// Apply app dir from config if not set via flag
	if cfg != nil && appDir == "" {
		appDir = cfg.AppDir.String()
	}
	if appDir == "" {
		appDir = "."
	}
}

// newLogger builds the host logger from the loaded configuration and the
// verbose flag.
func newLogger() *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
	})

	level := log.InfoLevel
	if cfg, err := config.Load(); err == nil && cfg != nil {
		switch cfg.LogLevel {
		case config.LogLevelDebug:
			level = log.DebugLevel
		case config.LogLevelWarn:
			level = log.WarnLevel
		case config.LogLevelError:
			level = log.ErrorLevel
		}
	}
	if verbose {
		level = log.DebugLevel
	}
	logger.SetLevel(level)
	return logger
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
