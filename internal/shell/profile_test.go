// SPDX-License-Identifier: MPL-2.0

package shell

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestRunProfileEmptyPathIsNoError(t *testing.T) {
	t.Parallel()

	s := newTestSession(t)
	if err := RunProfile(context.Background(), s, ""); err != nil {
		t.Errorf("RunProfile(\"\") error = %v, want nil", err)
	}
}

func TestRunProfileGlobalStatePersists(t *testing.T) {
	t.Parallel()

	s := newTestSession(t)
	s.AttachSink(&recordingSink{})

	profile := writeScript(t, `
GREETING=hello
greet() { set-output greeting "$GREETING"; }
`)
	if err := RunProfile(context.Background(), s, profile); err != nil {
		t.Fatalf("RunProfile() error = %v", err)
	}

	// Top-level variable assignments persist; the module record and its
	// function declarations are unloaded right after the run.
	if got := readVar(t, s, "GREETING"); got != "hello" {
		t.Errorf("GREETING = %q after profile, want %q", got, "hello")
	}
	if s.LoadedFunc("greet") {
		t.Error("profile function still loaded after the run")
	}
}

func TestRunProfileFailureIsFatal(t *testing.T) {
	t.Parallel()

	s := newTestSession(t)
	s.AttachSink(&recordingSink{})

	profile := writeScript(t, "exit 7\n")
	err := RunProfile(context.Background(), s, profile)
	if err == nil {
		t.Fatal("RunProfile() error = nil, want *ProfileError")
	}
	var pe *ProfileError
	if !errors.As(err, &pe) {
		t.Fatalf("RunProfile() error = %T, want *ProfileError", err)
	}
	if pe.Path != profile {
		t.Errorf("ProfileError.Path = %q, want %q", pe.Path, profile)
	}
}

func TestRunProfileMissingFile(t *testing.T) {
	t.Parallel()

	s := newTestSession(t)
	s.AttachSink(&recordingSink{})

	err := RunProfile(context.Background(), s, "/does/not/exist.sh")
	var pe *ProfileError
	if !errors.As(err, &pe) {
		t.Fatalf("RunProfile() error = %T (%v), want *ProfileError", err, err)
	}
}

func TestRunProfileReportsAccumulatedErrors(t *testing.T) {
	t.Parallel()

	s := newTestSession(t)
	sink := &recordingSink{}
	s.AttachSink(sink)

	profile := writeScript(t, "write-error config missing\n")
	if err := RunProfile(context.Background(), s, profile); err != nil {
		t.Fatalf("RunProfile() error = %v", err)
	}

	records := sink.all()
	if len(records) != 2 {
		t.Fatalf("sink got %d records, want builtin record plus summary", len(records))
	}
	summary := records[1]
	if !summary.UserFacing || summary.Level != LevelError {
		t.Errorf("summary record = %+v, want user-facing error", summary)
	}
	if !strings.Contains(summary.Message, "config missing") {
		t.Errorf("summary message = %q, want it to quote the first error", summary.Message)
	}
}
