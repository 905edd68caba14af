// SPDX-License-Identifier: MPL-2.0

package shell

import (
	"context"
	"testing"
)

func TestLevelString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		level Level
		want  string
	}{
		{LevelTrace, "trace"},
		{LevelDebug, "debug"},
		{LevelVerbose, "verbose"},
		{LevelInformation, "information"},
		{LevelProgress, "progress"},
		{LevelWarning, "warning"},
		{LevelError, "error"},
		{Level(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			t.Parallel()

			if got := tt.level.String(); got != tt.want {
				t.Errorf("Level(%d).String() = %q, want %q", tt.level, got, tt.want)
			}
		})
	}
}

func TestStreamBuiltinsEmitInOrder(t *testing.T) {
	t.Parallel()

	s := newTestSession(t)
	sink := &recordingSink{}
	s.AttachSink(sink)

	script := writeScript(t, `
write-debug probing
write-verbose details here
write-info starting up
write-progress halfway
write-warning look out
write-error it broke
`)
	if err := s.RunScript(context.Background(), script); err != nil {
		t.Fatalf("RunScript() error = %v", err)
	}

	want := []Record{
		{Level: LevelDebug, Message: "probing", UserFacing: true},
		{Level: LevelVerbose, Message: "details here", UserFacing: true},
		{Level: LevelInformation, Message: "starting up", UserFacing: true},
		{Level: LevelProgress, Message: "halfway", UserFacing: true},
		{Level: LevelWarning, Message: "look out", UserFacing: true},
		{Level: LevelError, Message: "it broke", UserFacing: true},
	}

	got := sink.all()
	if len(got) != len(want) {
		t.Fatalf("sink got %d records, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("record[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestWriteErrorAccumulates(t *testing.T) {
	t.Parallel()

	s := newTestSession(t)
	s.AttachSink(&recordingSink{})

	script := writeScript(t, `
write-error first failure
write-warning not an error
write-error second failure
`)
	if err := s.RunScript(context.Background(), script); err != nil {
		t.Fatalf("RunScript() error = %v", err)
	}

	errs := s.TakeScriptErrors()
	if len(errs) != 2 {
		t.Fatalf("TakeScriptErrors() = %v, want 2 entries", errs)
	}
	if errs[0] != "first failure" || errs[1] != "second failure" {
		t.Errorf("TakeScriptErrors() = %v, want the two write-error payloads in order", errs)
	}

	// Purged on take.
	if again := s.TakeScriptErrors(); len(again) != 0 {
		t.Errorf("second TakeScriptErrors() = %v, want empty", again)
	}
}

func TestRecordsBeforeSinkAttachedAreDropped(t *testing.T) {
	t.Parallel()

	s := newTestSession(t)
	script := writeScript(t, "write-info early\n")
	if err := s.RunScript(context.Background(), script); err != nil {
		t.Fatalf("RunScript() error = %v", err)
	}

	sink := &recordingSink{}
	s.AttachSink(sink)
	if got := sink.all(); len(got) != 0 {
		t.Errorf("sink got %d records emitted before attach, want 0", len(got))
	}
}
