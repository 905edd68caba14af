// SPDX-License-Identifier: MPL-2.0

package shell

import (
	"errors"
	"fmt"
)

var (
	// ErrNoEntryPoint is returned when an entry-point invocation names a
	// function the imported module did not declare.
	ErrNoEntryPoint = errors.New("entry point not declared by module")

	// ErrUnknownType is returned when a declared parameter references a type
	// name that is not registered in the type-resolution table.
	ErrUnknownType = errors.New("unknown parameter type")
)

type (
	// ProfileError is returned when the startup profile script fails to load
	// or run. It is fatal to session initialization.
	ProfileError struct {
		// Path is the profile script path.
		Path string
		// Cause is the underlying load or execution error.
		Cause error
	}

	// ScriptError reports errors a script accumulated through the write-error
	// channel without aborting execution. It is advisory: the run itself
	// completed, but the script flagged failures along the way.
	ScriptError struct {
		// Script identifies the script or function that produced the errors.
		Script string
		// Messages are the accumulated error records, in production order.
		Messages []string
	}
)

// Error implements the error interface.
func (e *ProfileError) Error() string {
	return fmt.Sprintf("profile script %s failed: %v", e.Path, e.Cause)
}

// Unwrap returns the underlying cause for errors.Is/As.
func (e *ProfileError) Unwrap() error {
	return e.Cause
}

// Error implements the error interface.
func (e *ScriptError) Error() string {
	if len(e.Messages) == 1 {
		return fmt.Sprintf("%s reported an error: %s", e.Script, e.Messages[0])
	}
	return fmt.Sprintf("%s reported %d errors", e.Script, len(e.Messages))
}
