// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type Id int

const (
	FuncfileNotFoundId Id = iota + 1
	FuncfileParseErrorId
	FunctionNotFoundId
	ProfileFailedId
	ScriptExecutionFailedId
	ConfigLoadFailedId
	WorkerPoolExhaustedId
	PermissionDeniedId
)

type MarkdownMsg string

type HttpLink string

type Renderer interface {
	Render(in string, stylePath string) (string, error)
}

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink  // must never be empty, because we need to have docs about all issue types
	extLinks []HttpLink  // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		extraMd += "\n\n"
		extraMd += "## See also: "
		for _, link := range i.docLinks {
			extraMd += "- [" + string(link) + "]"
		}
		for _, link := range i.extLinks {
			extraMd += "- [" + string(link) + "]"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	funcfileNotFoundIssue = &Issue{
		id: FuncfileNotFoundId,
		mdMsg: `
# No funcfile found!

We searched for a funcfile.cue but couldn't find one in the expected locations.

## Search locations (in order of precedence):
1. The directory passed via --app-dir
2. The app_dir configured in your config file
3. Current directory

## Things you can try:
- Change into the directory that holds your app:
~~~
$ cd /path/to/your/app
$ funcshell functions
~~~

- Or point funcshell at it explicitly:
~~~
$ funcshell serve --app-dir /path/to/your/app
~~~

## Example funcfile structure:
~~~cue
app: "greeter"
profile: "profile.sh"
functions: [
  {
    name: "hello"
    script: "hello.sh"
    parameters: [{name: "WHO", type: "string"}]
    bindings: [{name: "greeting", direction: "out"}]
  }
]
~~~`,
	}

	funcfileParseErrorIssue = &Issue{
		id: FuncfileParseErrorId,
		mdMsg: `
# Funcfile parse error!

Your funcfile.cue exists but couldn't be parsed.

## Common causes:
- CUE syntax errors (missing brackets, quotes, commas)
- Values that don't match the schema
- Duplicate function names

## Things you can try:
- Check the error message above for the exact location
- Validate your CUE syntax with the cue tool:
~~~
$ cue vet funcfile.cue
~~~

- Compare against the example in the docs`,
	}

	functionNotFoundIssue = &Issue{
		id: FunctionNotFoundId,
		mdMsg: `
# Function not found!

The function you asked for is not declared in the app descriptor.

## Things you can try:
- List the declared functions:
~~~
$ funcshell functions
~~~

- Check the spelling of the function name
- Make sure you're pointing at the right app directory`,
	}

	profileFailedIssue = &Issue{
		id: ProfileFailedId,
		mdMsg: `
# Profile script failed!

The app's profile script raised an error during session initialization.
Sessions cannot serve invocations until the profile completes successfully.

## Things you can try:
- Run the profile script standalone to reproduce the error
- Check that every file the profile sources exists
- Remember the profile runs once per session, before any function`,
	}

	scriptExecutionFailedIssue = &Issue{
		id: ScriptExecutionFailedId,
		mdMsg: `
# Script execution failed!

The function's script exited with an error.

## Things you can try:
- Check the error stream records above for messages the script emitted
- Run with --verbose to see the full diagnostic stream
- Verify the script's exit status when run standalone`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Config load failed!

Your configuration file exists but couldn't be loaded.

## Config file location:
- Linux: ~/.config/funcshell/config.cue
- macOS: ~/Library/Application Support/funcshell/config.cue
- Windows: %APPDATA%\funcshell\config.cue

## Things you can try:
- Check the CUE syntax of your config file
- Remove the config file to fall back to defaults
- Use --config to point at a known-good file`,
	}

	workerPoolExhaustedIssue = &Issue{
		id: WorkerPoolExhaustedId,
		mdMsg: `
# Worker pool exhausted!

Every pooled session is busy and the request timed out waiting for one.

## Things you can try:
- Raise the worker count in your config:
~~~cue
workers: 4
~~~

- Check for long-running functions hogging sessions
- Lower the request rate`,
	}

	permissionDeniedIssue = &Issue{
		id: PermissionDeniedId,
		mdMsg: `
# Permission denied!

You don't have permission to perform this operation.

## Common causes:
- Trying to write to a protected directory
- Script file is not readable
- Config directory is owned by another user

## Things you can try:
- Check file/directory permissions
- Run funcshell from a directory you own`,
	}

	issues = map[Id]*Issue{
		funcfileNotFoundIssue.Id():      funcfileNotFoundIssue,
		funcfileParseErrorIssue.Id():    funcfileParseErrorIssue,
		functionNotFoundIssue.Id():      functionNotFoundIssue,
		profileFailedIssue.Id():         profileFailedIssue,
		scriptExecutionFailedIssue.Id(): scriptExecutionFailedIssue,
		configLoadFailedIssue.Id():      configLoadFailedIssue,
		workerPoolExhaustedIssue.Id():   workerPoolExhaustedIssue,
		permissionDeniedIssue.Id():      permissionDeniedIssue,
	}
)

func Values() []*Issue {
	return maps.Values(issues)
}

func Get(id Id) *Issue {
	return issues[id]
}
