// SPDX-License-Identifier: MPL-2.0

package shell

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"funcshell/internal/funcfile"
)

type (
	// ParameterBinding is one named input value supplied by the caller.
	ParameterBinding struct {
		// Name is matched against the target's declared parameters.
		Name string
		// Value is the raw value as delivered by the caller.
		Value any
	}

	// Request describes one invocation: the ordered parameter bindings plus
	// the trigger-metadata mapping (read-only to the callee).
	Request struct {
		Bindings []ParameterBinding
		Metadata map[string]any
	}

	// Result is the outcome of one invocation.
	Result struct {
		// Outputs maps output-binding names to the values the script
		// registered through the set-output builtin. Always non-nil on
		// success, possibly empty.
		Outputs map[string]any
		// Pipeline holds the lines the target wrote to stdout. Captured but
		// deliberately not merged into Outputs; reserved for a future
		// default-output-binding mechanism.
		Pipeline []string
	}
)

// Invoke binds the request onto the session, runs the target function or
// script, and harvests the declared outputs.
//
// The returned ModuleHandle is non-nil iff the function declares an entry
// point; the caller passes it to Reset so the imported module is unloaded
// even when execution failed. Execution errors propagate unmodified.
func Invoke(ctx context.Context, s *Session, fn *funcfile.Function, req Request) (Result, *ModuleHandle, error) {
	s.stdout.Reset()
	s.stderr.Reset()

	// Resolve before binding: for entry-point functions the module's
	// top-level code runs during import and could clobber a bound variable,
	// so the bindings are attached only after the import completed.
	var (
		handle *ModuleHandle
		runErr error
	)
	if fn.EntryPoint == "" {
		if err := bindParameters(ctx, s, fn, req); err != nil {
			return Result{}, nil, err
		}
		runErr = s.RunScript(ctx, fn.ScriptPath())
	} else {
		handle, runErr = s.ImportModule(ctx, fn.ScriptPath())
		if runErr == nil {
			if err := bindParameters(ctx, s, fn, req); err != nil {
				return Result{}, handle, err
			}
			runErr = s.CallFunction(ctx, fn.EntryPoint)
		}
	}

	if errs := s.TakeScriptErrors(); len(errs) > 0 {
		s.emit(Record{
			Level:      LevelError,
			Message:    (&ScriptError{Script: fn.Name, Messages: errs}).Error(),
			UserFacing: true,
		})
	}

	if runErr != nil {
		return Result{}, handle, runErr
	}

	return Result{
		Outputs:  s.TakeOutputs(),
		Pipeline: s.stdout.Lines(),
	}, handle, nil
}

// bindParameters attaches every matched binding as a shell variable named
// after the declared parameter, converting the raw value according to the
// parameter's declared semantic type. Bindings with no matching declared
// parameter are dropped. Requested trigger metadata is attached as compact
// JSON under the function's reserved variable name.
func bindParameters(ctx context.Context, s *Session, fn *funcfile.Function, req Request) error {
	for _, b := range req.Bindings {
		param := fn.Param(b.Name)
		if param == nil {
			s.logger.Debug("dropping unmatched binding", "session", s.id, "function", fn.Name, "binding", b.Name)
			continue
		}
		value, err := convertValue(param.Type, b.Value)
		if err != nil {
			return fmt.Errorf("bind parameter %q: %w", param.Name, err)
		}
		if err := s.SetVar(ctx, param.Name, value); err != nil {
			return fmt.Errorf("bind parameter %q: %w", param.Name, err)
		}
	}

	if fn.WantsMetadata {
		meta := req.Metadata
		if meta == nil {
			meta = map[string]any{}
		}
		data, err := json.Marshal(meta)
		if err != nil {
			return fmt.Errorf("encode trigger metadata: %w", err)
		}
		if err := s.SetVar(ctx, fn.ReservedMetadataName(), string(data)); err != nil {
			return fmt.Errorf("bind trigger metadata: %w", err)
		}
	}
	return nil
}

// convertValue normalizes a raw binding value per the declared parameter
// type into the string form handed to the interpreter.
func convertValue(typ funcfile.ParamType, raw any) (string, error) {
	switch typ {
	case "", funcfile.TypeString:
		if s, ok := raw.(string); ok {
			return s, nil
		}
		return jsonString(raw)

	case funcfile.TypeInt:
		switch v := raw.(type) {
		case string:
			if _, err := strconv.ParseInt(v, 10, 64); err != nil {
				return "", fmt.Errorf("value %q is not an integer", v)
			}
			return v, nil
		case float64:
			if v != float64(int64(v)) {
				return "", fmt.Errorf("value %v is not an integer", v)
			}
			return strconv.FormatInt(int64(v), 10), nil
		case int:
			return strconv.Itoa(v), nil
		case int64:
			return strconv.FormatInt(v, 10), nil
		default:
			return "", fmt.Errorf("value of type %T is not an integer", raw)
		}

	case funcfile.TypeNumber:
		switch v := raw.(type) {
		case string:
			if _, err := strconv.ParseFloat(v, 64); err != nil {
				return "", fmt.Errorf("value %q is not a number", v)
			}
			return v, nil
		case float64:
			return strconv.FormatFloat(v, 'g', -1, 64), nil
		case int:
			return strconv.Itoa(v), nil
		default:
			return "", fmt.Errorf("value of type %T is not a number", raw)
		}

	case funcfile.TypeBool:
		switch v := raw.(type) {
		case bool:
			return strconv.FormatBool(v), nil
		case string:
			b, err := strconv.ParseBool(v)
			if err != nil {
				return "", fmt.Errorf("value %q is not a bool", v)
			}
			return strconv.FormatBool(b), nil
		default:
			return "", fmt.Errorf("value of type %T is not a bool", raw)
		}

	case funcfile.TypeJSON:
		return jsonString(raw)

	default:
		convert, ok := LookupType(string(typ))
		if !ok {
			return "", fmt.Errorf("%w: %q", ErrUnknownType, typ)
		}
		return convert(raw)
	}
}

func jsonString(raw any) (string, error) {
	data, err := json.Marshal(raw)
	if err != nil {
		return "", fmt.Errorf("encode value as JSON: %w", err)
	}
	return string(data), nil
}
