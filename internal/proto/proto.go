// SPDX-License-Identifier: MPL-2.0

// Package proto implements the line-oriented JSON protocol between the
// funcshell worker and its host. Each request and each response is one
// newline-terminated JSON object; requests are answered in order.
package proto

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"sync"
)

// MaxMessageSize bounds a single protocol line (16MB).
const MaxMessageSize = 16 * 1024 * 1024

type (
	// Request asks the worker to invoke one function.
	Request struct {
		// ID correlates the response with this request.
		ID string `json:"id"`
		// Function is the function name from the app descriptor.
		Function string `json:"function"`
		// Bindings are the ordered named input values.
		Bindings []Binding `json:"bindings,omitempty"`
		// Metadata is the trigger-metadata mapping.
		Metadata map[string]any `json:"metadata,omitempty"`
	}

	// Binding is one named input value.
	Binding struct {
		Name  string `json:"name"`
		Value any    `json:"value"`
	}

	// Response carries the outcome of one invocation.
	Response struct {
		// ID echoes the request id.
		ID string `json:"id"`
		// Outputs maps output-binding names to values. Present on success,
		// possibly empty.
		Outputs map[string]any `json:"outputs,omitempty"`
		// Error is the invocation error message, empty on success.
		Error string `json:"error,omitempty"`
	}

	// Codec reads requests from r and writes responses to w, one JSON object
	// per line. Reads are single-consumer; writes are serialized so
	// responses never interleave.
	Codec struct {
		scanner *bufio.Scanner

		writeMu sync.Mutex
		w       io.Writer
	}
)

// NewCodec creates a codec over the given transport pair.
func NewCodec(r io.Reader, w io.Writer) *Codec {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), MaxMessageSize)
	return &Codec{
		scanner: scanner,
		w:       w,
	}
}

// Read returns the next request. io.EOF signals an orderly end of input.
func (c *Codec) Read() (*Request, error) {
	for c.scanner.Scan() {
		line := c.scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			return nil, fmt.Errorf("decode request: %w", err)
		}
		if req.ID == "" {
			return nil, fmt.Errorf("decode request: missing id")
		}
		return &req, nil
	}
	if err := c.scanner.Err(); err != nil {
		return nil, fmt.Errorf("read request: %w", err)
	}
	return nil, io.EOF
}

// Write sends one response.
func (c *Codec) Write(resp *Response) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("encode response: %w", err)
	}
	data = append(data, '\n')

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if _, err := c.w.Write(data); err != nil {
		return fmt.Errorf("write response: %w", err)
	}
	return nil
}
