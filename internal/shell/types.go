// SPDX-License-Identifier: MPL-2.0

package shell

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	cmap "github.com/orcaman/concurrent-map/v2"
)

const (
	// TypeHTTPRequestContext is the well-known name scripts use to declare a
	// parameter carrying an inbound HTTP trigger payload.
	TypeHTTPRequestContext = "HttpRequestContext"
	// TypeHTTPResponseContext is the well-known name scripts use to declare a
	// parameter carrying an HTTP response shape.
	TypeHTTPResponseContext = "HttpResponseContext"
)

type (
	// ConvertFunc normalizes a raw binding value into the string form handed
	// to the interpreter as a shell variable.
	ConvertFunc func(raw any) (string, error)

	// HTTPRequestContext is the canonical shape of an HTTP trigger payload as
	// seen by script bodies.
	HTTPRequestContext struct {
		Method  string            `json:"method,omitempty"`
		URL     string            `json:"url,omitempty"`
		Headers map[string]string `json:"headers,omitempty"`
		Query   map[string]string `json:"query,omitempty"`
		Params  map[string]string `json:"params,omitempty"`
		Body    any               `json:"body,omitempty"`
	}

	// HTTPResponseContext is the canonical shape scripts populate to answer
	// an HTTP trigger.
	HTTPResponseContext struct {
		StatusCode int               `json:"status_code,omitempty"`
		Headers    map[string]string `json:"headers,omitempty"`
		Body       any               `json:"body,omitempty"`
	}
)

// typeRegistry is the process-wide type-resolution table. It is shared by
// every session in the process and must be populated before the first
// session is created.
var (
	typeRegistry = cmap.New[ConvertFunc]()

	wellKnownOnce sync.Once
)

// RegisterWellKnownTypes installs the two well-known context types into the
// process-wide type-resolution table. It is safe to call from every manager
// constructor: the first call wins and subsequent calls are no-ops.
func RegisterWellKnownTypes() {
	wellKnownOnce.Do(func() {
		mustRegisterType(TypeHTTPRequestContext, convertThrough[HTTPRequestContext])
		mustRegisterType(TypeHTTPResponseContext, convertThrough[HTTPResponseContext])
	})
}

// RegisterType adds a named type conversion to the process-wide table.
// Registering a name twice is an error.
func RegisterType(name string, fn ConvertFunc) error {
	if !typeRegistry.SetIfAbsent(name, fn) {
		return fmt.Errorf("type %q already registered", name)
	}
	return nil
}

// LookupType resolves a registered type conversion by name.
func LookupType(name string) (ConvertFunc, bool) {
	return typeRegistry.Get(name)
}

func mustRegisterType(name string, fn ConvertFunc) {
	if err := RegisterType(name, fn); err != nil {
		panic(err)
	}
}

// convertThrough round-trips a raw value through T, validating its shape and
// producing canonical compact JSON.
func convertThrough[T any](raw any) (string, error) {
	data, err := json.Marshal(raw)
	if err != nil {
		return "", fmt.Errorf("marshal binding value: %w", err)
	}
	var shaped T
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&shaped); err != nil {
		return "", fmt.Errorf("binding value does not match declared type: %w", err)
	}
	out, err := json.Marshal(shaped)
	if err != nil {
		return "", fmt.Errorf("marshal converted value: %w", err)
	}
	return string(out), nil
}
