// SPDX-License-Identifier: MPL-2.0

// Package funcfile loads and validates function app descriptors. An app is
// described by a funcfile.cue file: the app name, an optional startup profile
// script, and the set of functions the worker can execute, each with its
// script, optional entry point, declared parameters, and bindings.
package funcfile

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"funcshell/internal/platform"
)

// FuncfileName is the base name of the app descriptor file.
const FuncfileName = "funcfile.cue"

// DefaultMetadataName is the reserved variable name under which trigger
// metadata is exposed to scripts that request it.
const DefaultMetadataName = "TRIGGER_METADATA"

const (
	// TypeString declares a plain string parameter.
	TypeString ParamType = "string"
	// TypeInt declares an integer parameter.
	TypeInt ParamType = "int"
	// TypeNumber declares a floating-point parameter.
	TypeNumber ParamType = "number"
	// TypeBool declares a boolean parameter.
	TypeBool ParamType = "bool"
	// TypeJSON declares a parameter passed through as compact JSON.
	TypeJSON ParamType = "json"
)

const (
	// DirectionIn marks a binding that supplies data to the function.
	DirectionIn BindingDirection = "in"
	// DirectionOut marks a binding the function populates via set-output.
	DirectionOut BindingDirection = "out"
)

type (
	// ParamType is the declared semantic type of a parameter. Beyond the
	// built-in types, it may name a type registered in the process-wide
	// type-resolution table (e.g. HttpRequestContext).
	ParamType string

	// BindingDirection distinguishes input from output bindings.
	BindingDirection string

	// Funcfile is the parsed app descriptor from funcfile.cue.
	Funcfile struct {
		// App is the application name.
		App string `json:"app"`
		// Profile is an optional startup script path, relative to the
		// descriptor's directory. Run once per session before any invocation.
		Profile string `json:"profile,omitempty"`
		// Functions are the invocable function definitions.
		Functions []Function `json:"functions"`

		// FilePath is where this descriptor was loaded from (not in CUE).
		FilePath string `json:"-"`
	}

	// Function describes one invocable function.
	Function struct {
		// Name is the function's unique name within the app.
		Name string `json:"name"`
		// Script is the script file path, relative to the descriptor's
		// directory.
		Script string `json:"script"`
		// EntryPoint optionally names a function declared by the script. When
		// set, the script is imported as a module and the named function is
		// the invocation target; when empty, the script itself is the target.
		EntryPoint string `json:"entrypoint,omitempty"`
		// Description is free-form documentation shown by the CLI.
		Description string `json:"description,omitempty"`
		// Parameters are the declared parameters, matched by name against the
		// caller's bindings.
		Parameters []Parameter `json:"params,omitempty"`
		// Bindings declare the function's input and output bindings.
		Bindings []Binding `json:"bindings,omitempty"`
		// WantsMetadata requests the trigger-metadata mapping as an
		// additional argument under MetadataName.
		WantsMetadata bool `json:"wants_metadata,omitempty"`
		// MetadataName overrides the reserved metadata variable name.
		MetadataName string `json:"metadata_name,omitempty"`

		dir string
	}

	// Parameter is one declared parameter.
	Parameter struct {
		// Name is the parameter name; bindings are matched against it.
		Name string `json:"name"`
		// Type is the declared semantic type. Empty means string.
		Type ParamType `json:"type,omitempty"`
	}

	// Binding declares a named input or output binding.
	Binding struct {
		// Name is the binding name.
		Name string `json:"name"`
		// Direction is "in" or "out".
		Direction BindingDirection `json:"direction"`
	}
)

// entryPointRe matches valid shell function identifiers.
var entryPointRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Get finds a function by name, or nil.
func (f *Funcfile) Get(name string) *Function {
	for i := range f.Functions {
		if f.Functions[i].Name == name {
			return &f.Functions[i]
		}
	}
	return nil
}

// Dir returns the directory the descriptor was loaded from.
func (f *Funcfile) Dir() string {
	return filepath.Dir(f.FilePath)
}

// ProfilePath returns the absolute profile script path, or empty when the
// app declares no profile.
func (f *Funcfile) ProfilePath() string {
	if f.Profile == "" {
		return ""
	}
	return f.resolve(f.Profile)
}

func (f *Funcfile) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(f.Dir(), path)
}

// Param finds a declared parameter by name, or nil.
func (fn *Function) Param(name string) *Parameter {
	for i := range fn.Parameters {
		if fn.Parameters[i].Name == name {
			return &fn.Parameters[i]
		}
	}
	return nil
}

// ScriptPath returns the absolute path of the function's script.
func (fn *Function) ScriptPath() string {
	if filepath.IsAbs(fn.Script) {
		return fn.Script
	}
	return filepath.Join(fn.dir, fn.Script)
}

// ReservedMetadataName returns the variable name under which trigger
// metadata is exposed.
func (fn *Function) ReservedMetadataName() string {
	if fn.MetadataName != "" {
		return fn.MetadataName
	}
	return DefaultMetadataName
}

// OutputBindings returns the declared output binding names, in order.
func (fn *Function) OutputBindings() []string {
	var out []string
	for _, b := range fn.Bindings {
		if b.Direction == DirectionOut {
			out = append(out, b.Name)
		}
	}
	return out
}

// validate checks constraints the CUE schema cannot express and fills
// per-function defaults.
func (f *Funcfile) validate() error {
	if strings.TrimSpace(f.App) == "" {
		return fmt.Errorf("%s: app name must not be empty", f.FilePath)
	}

	seen := make(map[string]bool, len(f.Functions))
	for i := range f.Functions {
		fn := &f.Functions[i]
		fn.dir = f.Dir()

		if seen[fn.Name] {
			return fmt.Errorf("%s: duplicate function name %q", f.FilePath, fn.Name)
		}
		seen[fn.Name] = true

		if strings.TrimSpace(fn.Script) == "" {
			return fmt.Errorf("%s: function %q has no script", f.FilePath, fn.Name)
		}
		if platform.IsWindowsReservedName(filepath.Base(fn.Script)) {
			return fmt.Errorf("%s: function %q script %q is a Windows reserved filename", f.FilePath, fn.Name, fn.Script)
		}
		if fn.EntryPoint != "" && !entryPointRe.MatchString(fn.EntryPoint) {
			return fmt.Errorf("%s: function %q has invalid entry point %q", f.FilePath, fn.Name, fn.EntryPoint)
		}

		if err := validateBindings(f.FilePath, fn); err != nil {
			return err
		}
		if err := validateParams(f.FilePath, fn); err != nil {
			return err
		}
	}
	return nil
}

func validateBindings(path string, fn *Function) error {
	seen := make(map[string]bool, len(fn.Bindings))
	for _, b := range fn.Bindings {
		if seen[b.Name] {
			return fmt.Errorf("%s: function %q has duplicate binding %q", path, fn.Name, b.Name)
		}
		seen[b.Name] = true
		if b.Direction != DirectionIn && b.Direction != DirectionOut {
			return fmt.Errorf("%s: function %q binding %q has invalid direction %q", path, fn.Name, b.Name, b.Direction)
		}
	}
	return nil
}

func validateParams(path string, fn *Function) error {
	seen := make(map[string]bool, len(fn.Parameters))
	for _, p := range fn.Parameters {
		if !entryPointRe.MatchString(p.Name) {
			return fmt.Errorf("%s: function %q has invalid parameter name %q", path, fn.Name, p.Name)
		}
		if seen[p.Name] {
			return fmt.Errorf("%s: function %q has duplicate parameter %q", path, fn.Name, p.Name)
		}
		seen[p.Name] = true
	}
	return nil
}
