// SPDX-License-Identifier: MPL-2.0

package worker

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"funcshell/internal/funcfile"
	"funcshell/internal/proto"
)

// runService feeds the given request lines through a service over a
// single-manager pool and returns the decoded responses keyed by id.
func runService(t *testing.T, pool *Pool, input string) map[string]proto.Response {
	t.Helper()

	var out bytes.Buffer
	codec := proto.NewCodec(strings.NewReader(input), &out)
	svc := NewService(pool, codec, quietLogger())

	if err := svc.Serve(context.Background()); err != nil {
		t.Fatalf("Serve() error = %v", err)
	}

	responses := make(map[string]proto.Response)
	scanner := bufio.NewScanner(&out)
	for scanner.Scan() {
		var resp proto.Response
		if err := json.Unmarshal(scanner.Bytes(), &resp); err != nil {
			t.Fatalf("decode response line %q: %v", scanner.Text(), err)
		}
		responses[resp.ID] = resp
	}
	return responses
}

func TestServiceDispatch(t *testing.T) {
	t.Parallel()

	app := testApp(t, "", map[string]string{
		"hello": `set-output greeting "hi $WHO"`,
	})
	app.Functions[0].Parameters = []funcfile.Parameter{{Name: "WHO", Type: funcfile.TypeString}}

	pool, err := NewPool(1, func(i int) (*Manager, error) {
		return NewManager(Config{App: app, Logger: quietLogger()})
	})
	if err != nil {
		t.Fatalf("NewPool() error = %v", err)
	}
	t.Cleanup(pool.Close)

	input := `{"id":"1","function":"hello","bindings":[{"name":"WHO","value":"world"}]}` + "\n" +
		`{"id":"2","function":"missing"}` + "\n"

	responses := runService(t, pool, input)
	if len(responses) != 2 {
		t.Fatalf("got %d responses, want 2: %v", len(responses), responses)
	}

	ok := responses["1"]
	if ok.Error != "" {
		t.Fatalf("response 1 error = %q, want success", ok.Error)
	}
	if got := ok.Outputs["greeting"]; got != "hi world" {
		t.Errorf("response 1 outputs[greeting] = %v, want %q", got, "hi world")
	}

	bad := responses["2"]
	if bad.Error == "" {
		t.Error("response 2 error empty, want unknown-function error")
	}
	if !strings.Contains(bad.Error, "unknown function") {
		t.Errorf("response 2 error = %q, want it to name the unknown function", bad.Error)
	}
}

func TestServiceEmptyInput(t *testing.T) {
	t.Parallel()

	pool := newTestPool(t, 1)
	responses := runService(t, pool, "")
	if len(responses) != 0 {
		t.Errorf("got %d responses for empty input, want 0", len(responses))
	}
}

func TestServiceMalformedRequestAborts(t *testing.T) {
	t.Parallel()

	pool := newTestPool(t, 1)

	var out bytes.Buffer
	codec := proto.NewCodec(strings.NewReader("{not json}\n"), &out)
	svc := NewService(pool, codec, quietLogger())

	if err := svc.Serve(context.Background()); err == nil {
		t.Error("Serve() error = nil for malformed input, want decode error")
	}
}
