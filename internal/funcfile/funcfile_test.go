// SPDX-License-Identifier: MPL-2.0

package funcfile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const validFuncfile = `
app: "greeter"
profile: "profile.sh"
functions: [
	{
		name:        "hello"
		script:      "hello.sh"
		entrypoint:  "main"
		description: "Say hello"
		params: [
			{name: "WHO", type: "string"},
			{name: "COUNT", type: "int"},
		]
		bindings: [
			{name: "WHO", direction: "in"},
			{name: "greeting", direction: "out"},
		]
	},
	{
		name:           "handle_request"
		script:         "handler.sh"
		wants_metadata: true
		metadata_name:  "REQ_META"
	},
]
`

func TestParseBytesValid(t *testing.T) {
	t.Parallel()

	f, err := ParseBytes([]byte(validFuncfile), "/apps/greeter/funcfile.cue")
	if err != nil {
		t.Fatalf("ParseBytes() error = %v", err)
	}

	if f.App != "greeter" {
		t.Errorf("App = %q, want %q", f.App, "greeter")
	}
	if got := f.ProfilePath(); got != "/apps/greeter/profile.sh" {
		t.Errorf("ProfilePath() = %q, want resolved path", got)
	}
	if len(f.Functions) != 2 {
		t.Fatalf("parsed %d functions, want 2", len(f.Functions))
	}

	hello := f.Get("hello")
	if hello == nil {
		t.Fatal("Get(hello) = nil")
	}
	if hello.EntryPoint != "main" {
		t.Errorf("EntryPoint = %q, want %q", hello.EntryPoint, "main")
	}
	if got := hello.ScriptPath(); got != "/apps/greeter/hello.sh" {
		t.Errorf("ScriptPath() = %q, want resolved path", got)
	}
	if p := hello.Param("COUNT"); p == nil || p.Type != TypeInt {
		t.Errorf("Param(COUNT) = %+v, want int parameter", p)
	}
	if hello.Param("NOPE") != nil {
		t.Error("Param(NOPE) != nil for undeclared parameter")
	}
	if out := hello.OutputBindings(); len(out) != 1 || out[0] != "greeting" {
		t.Errorf("OutputBindings() = %v, want [greeting]", out)
	}
	if got := hello.ReservedMetadataName(); got != DefaultMetadataName {
		t.Errorf("ReservedMetadataName() = %q, want default", got)
	}

	handler := f.Get("handle_request")
	if handler == nil {
		t.Fatal("Get(handle_request) = nil")
	}
	if !handler.WantsMetadata {
		t.Error("WantsMetadata = false, want true")
	}
	if got := handler.ReservedMetadataName(); got != "REQ_META" {
		t.Errorf("ReservedMetadataName() = %q, want override", got)
	}

	if f.Get("missing") != nil {
		t.Error("Get(missing) != nil")
	}
}

func TestParseBytesRejectsInvalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		wantIn  string
	}{
		{
			"syntax error",
			`app: "x" functions: [`,
			"",
		},
		{
			"empty app name",
			`app: "", functions: []`,
			"",
		},
		{
			"duplicate function names",
			`
app: "x"
functions: [
	{name: "dup", script: "a.sh"},
	{name: "dup", script: "b.sh"},
]`,
			"duplicate function name",
		},
		{
			"bad entry point",
			`
app: "x"
functions: [{name: "f", script: "f.sh", entrypoint: "not valid"}]`,
			"",
		},
		{
			"reserved script filename",
			`
app: "x"
functions: [{name: "f", script: "nul.sh"}]`,
			"Windows reserved filename",
		},
		{
			"duplicate parameter names",
			`
app: "x"
functions: [{name: "f", script: "f.sh", params: [{name: "A"}, {name: "A"}]}]`,
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := ParseBytes([]byte(tt.content), "funcfile.cue")
			if err == nil {
				t.Fatal("ParseBytes() error = nil, want validation error")
			}
			if tt.wantIn != "" && !strings.Contains(err.Error(), tt.wantIn) {
				t.Errorf("ParseBytes() error = %q, want it to contain %q", err, tt.wantIn)
			}
		})
	}
}

func TestDiscover(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	content := `
app: "mini"
functions: [{name: "noop", script: "noop.sh"}]
`
	if err := os.WriteFile(filepath.Join(dir, FuncfileName), []byte(content), 0o644); err != nil {
		t.Fatalf("write funcfile: %v", err)
	}

	f, err := Discover(dir)
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	if f.App != "mini" {
		t.Errorf("App = %q, want %q", f.App, "mini")
	}
	if got := f.Dir(); got != dir {
		t.Errorf("Dir() = %q, want %q", got, dir)
	}
}

func TestDiscoverMissing(t *testing.T) {
	t.Parallel()

	_, err := Discover(t.TempDir())
	if err == nil {
		t.Fatal("Discover() error = nil for empty dir, want error")
	}
	if !strings.Contains(err.Error(), FuncfileName) {
		t.Errorf("Discover() error = %q, want it to name %s", err, FuncfileName)
	}
}
