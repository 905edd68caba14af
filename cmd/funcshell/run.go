// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"funcshell/internal/issue"
	"funcshell/internal/shell"
	"funcshell/internal/worker"
)

var (
	runBindings []string
	runMetadata string

	runCmd = &cobra.Command{
		Use:   "run <function>",
		Short: "Invoke one function and print its outputs",
		Long: `Run creates a single session, initializes it from the app's profile
script, invokes the named function once, and prints the registered
output bindings as JSON.

Parameter bindings are passed as NAME=VALUE pairs; values are converted
according to the parameter's declared type. Trigger metadata can be
passed as a JSON object via --metadata.`,
		Example: `  funcshell run hello
  funcshell run hello -b WHO=world
  funcshell run handle-request --metadata '{"Method": "GET"}'`,
		Args: cobra.ExactArgs(1),
		RunE: runRun,
	}
)

func init() {
	runCmd.Flags().StringArrayVarP(&runBindings, "binding", "b", nil, "parameter binding as NAME=VALUE (repeatable)")
	runCmd.Flags().StringVar(&runMetadata, "metadata", "", "trigger metadata as a JSON object")
}

func runRun(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	app, err := loadApp()
	if err != nil {
		return err
	}

	req, err := buildRequest(runBindings, runMetadata)
	if err != nil {
		return err
	}

	m, err := worker.NewManager(worker.Config{
		App:         app,
		SessionName: "run",
		Logger:      logger,
	})
	if err != nil {
		return err
	}
	defer m.Dispose()

	if err := m.Initialize(cmd.Context()); err != nil {
		renderIssue(issue.ProfileFailedId)
		return &ExitError{Code: 1, Err: err}
	}

	res, err := m.InvokeFunction(cmd.Context(), args[0], req)
	if err != nil {
		if errors.Is(err, worker.ErrUnknownFunction) {
			renderIssue(issue.FunctionNotFoundId)
		} else {
			renderIssue(issue.ScriptExecutionFailedId)
		}
		return &ExitError{Code: 1, Err: err}
	}

	out, err := json.MarshalIndent(res.Outputs, "", "  ")
	if err != nil {
		return fmt.Errorf("encode outputs: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}

// buildRequest assembles the invocation request from the flag values.
func buildRequest(bindings []string, metadata string) (shell.Request, error) {
	var req shell.Request
	for _, b := range bindings {
		name, value, ok := strings.Cut(b, "=")
		if !ok || name == "" {
			return shell.Request{}, fmt.Errorf("invalid binding %q: expected NAME=VALUE", b)
		}
		req.Bindings = append(req.Bindings, shell.ParameterBinding{Name: name, Value: value})
	}

	if metadata != "" {
		meta := map[string]any{}
		if err := json.Unmarshal([]byte(metadata), &meta); err != nil {
			return shell.Request{}, fmt.Errorf("invalid metadata: %w", err)
		}
		req.Metadata = meta
	}
	return req, nil
}
