// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"
	"strings"

	"funcshell/internal/funcfile"
	"funcshell/internal/issue"
)

// loadApp discovers and parses the app descriptor from the resolved app
// directory, rendering the matching issue page when that fails.
func loadApp() (*funcfile.Funcfile, error) {
	app, err := funcfile.Discover(appDir)
	if err != nil {
		id := issue.FuncfileParseErrorId
		if strings.Contains(err.Error(), "no "+funcfile.FuncfileName) {
			id = issue.FuncfileNotFoundId
		}
		renderIssue(id)
		return nil, fmt.Errorf("load app from %s: %w", appDir, err)
	}
	return app, nil
}

// renderIssue prints the Markdown guidance page for the given issue id.
// Rendering failures are swallowed: the caller's error is the real signal.
func renderIssue(id issue.Id) {
	page := issue.Get(id)
	if page == nil {
		return
	}
	out, err := page.Render("dark")
	if err != nil {
		return
	}
	fmt.Fprintln(os.Stderr, out)
}
