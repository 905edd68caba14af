// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var functionsCmd = &cobra.Command{
	Use:   "functions",
	Short: "List the app's functions",
	Long: `Functions lists every function declared in the app descriptor along with
its script, entry point, and declared parameters.`,
	Args: cobra.NoArgs,
	RunE: runFunctions,
}

func runFunctions(cmd *cobra.Command, _ []string) error {
	app, err := loadApp()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, TitleStyle.Render(app.App))
	if app.Profile != "" {
		fmt.Fprintln(out, SubtitleStyle.Render("profile: "+app.Profile))
	}
	fmt.Fprintln(out)

	if len(app.Functions) == 0 {
		fmt.Fprintln(out, SubtitleStyle.Render("(no functions declared)"))
		return nil
	}

	for i := range app.Functions {
		fn := &app.Functions[i]

		fmt.Fprintln(out, FuncStyle.Render(fn.Name))
		if fn.Description != "" {
			fmt.Fprintln(out, "  "+fn.Description)
		}

		target := fn.Script
		if fn.EntryPoint != "" {
			target += " (entry point: " + fn.EntryPoint + ")"
		}
		fmt.Fprintln(out, SubtitleStyle.Render("  script: "+target))

		if len(fn.Parameters) > 0 {
			params := make([]string, len(fn.Parameters))
			for j, p := range fn.Parameters {
				typ := string(p.Type)
				if typ == "" {
					typ = "string"
				}
				params[j] = p.Name + ":" + typ
			}
			fmt.Fprintln(out, SubtitleStyle.Render("  params: "+strings.Join(params, ", ")))
		}

		if outputs := fn.OutputBindings(); len(outputs) > 0 {
			fmt.Fprintln(out, SubtitleStyle.Render("  outputs: "+strings.Join(outputs, ", ")))
		}
		fmt.Fprintln(out)
	}
	return nil
}
