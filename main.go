// SPDX-License-Identifier: MPL-2.0

package main

import cmd "funcshell/cmd/funcshell"

func main() {
	cmd.Execute()
}
