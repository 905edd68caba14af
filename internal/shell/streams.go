// SPDX-License-Identifier: MPL-2.0

package shell

import (
	"github.com/charmbracelet/log"
)

const (
	// LevelTrace is for host-internal diagnostics that scripts never emit.
	LevelTrace Level = iota
	// LevelDebug corresponds to the write-debug channel.
	LevelDebug
	// LevelVerbose corresponds to the write-verbose channel.
	LevelVerbose
	// LevelInformation corresponds to the write-info channel.
	LevelInformation
	// LevelProgress corresponds to the write-progress channel.
	LevelProgress
	// LevelWarning corresponds to the write-warning channel.
	LevelWarning
	// LevelError corresponds to the write-error channel.
	LevelError
)

type (
	// Level identifies the diagnostic channel a stream record was produced on.
	Level int

	// Record is a single diagnostic record emitted by a script through one of
	// the write-* builtins. Records are forwarded to the attached Sink one at
	// a time, in production order, on the goroutine that produced them.
	Record struct {
		// Level is the diagnostic channel the record belongs to.
		Level Level
		// Message is the record payload.
		Message string
		// UserFacing marks records that should be surfaced to the function
		// author rather than kept as host-internal diagnostics.
		UserFacing bool
	}

	// Sink consumes stream records as they are produced. Consume is called
	// synchronously from the interpreter goroutine, so implementations must
	// not block for long.
	Sink interface {
		Consume(rec Record)
	}

	// LogSink adapts a charmbracelet logger into a Sink.
	LogSink struct {
		logger *log.Logger
	}
)

// String returns the channel name as used by the write-* builtins.
func (l Level) String() string {
	switch l {
	case LevelTrace:
		return "trace"
	case LevelDebug:
		return "debug"
	case LevelVerbose:
		return "verbose"
	case LevelInformation:
		return "information"
	case LevelProgress:
		return "progress"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// NewLogSink returns a Sink that forwards records to logger, mapping the
// seven stream levels onto the four logger levels.
func NewLogSink(logger *log.Logger) *LogSink {
	return &LogSink{logger: logger}
}

// Consume implements Sink.
func (s *LogSink) Consume(rec Record) {
	kv := []any{"channel", rec.Level.String(), "user", rec.UserFacing}
	switch rec.Level {
	case LevelTrace, LevelDebug, LevelVerbose:
		s.logger.Debug(rec.Message, kv...)
	case LevelInformation, LevelProgress:
		s.logger.Info(rec.Message, kv...)
	case LevelWarning:
		s.logger.Warn(rec.Message, kv...)
	case LevelError:
		s.logger.Error(rec.Message, kv...)
	}
}

// streamBuiltins maps builtin command names to the channel they emit on.
// One builtin per diagnostic channel; they are intercepted by the session's
// exec handler before falling through to external command lookup.
var streamBuiltins = map[string]Level{
	"write-debug":    LevelDebug,
	"write-verbose":  LevelVerbose,
	"write-info":     LevelInformation,
	"write-progress": LevelProgress,
	"write-warning":  LevelWarning,
	"write-error":    LevelError,
}
