// SPDX-License-Identifier: MPL-2.0

// Package shell hosts reusable script-execution sessions built on the
// mvdan/sh interpreter. A Session owns exactly one interpreter instance and
// is driven through a strict lifecycle by its execution manager: initialize
// once (profile script), then invoke functions one at a time, with a full
// state reset between invocations so no variable, function, or background
// job leaks from one invocation into the next.
package shell

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

type (
	// Config configures a new Session.
	Config struct {
		// Name is a human-readable session name used in logs.
		Name string
		// Dir is the interpreter working directory. Empty means the process
		// working directory.
		Dir string
		// Env is the base environment as KEY=VALUE pairs. Nil inherits the
		// process environment.
		Env []string
		// Logger receives host-side diagnostics. Nil uses the default logger.
		Logger *log.Logger
		// Jobs is an optional shared goroutine pool for background jobs.
		// Nil runs jobs on plain goroutines.
		Jobs *ants.Pool
	}

	// Session is an exclusively-owned interpreter instance plus its identity
	// and initialization state. It is not safe for concurrent use; the owning
	// manager serializes all access.
	Session struct {
		id          string
		name        string
		initialized bool
		closed      bool

		runner *interp.Runner
		parser *syntax.Parser
		logger *log.Logger

		mu         sync.Mutex
		sink       Sink
		outputs    map[string]any
		scriptErrs []string

		stdout *captureBuffer
		stderr *captureBuffer

		jobs *jobTable

		// base is the interpreter sealed when initialization completes. The
		// session executes on subshell copies forked from it; Reset discards
		// the working copy and forks a fresh one. Nothing runs on base after
		// sealing, so the baseline state never drifts.
		base   *interp.Runner
		sealed bool
	}

	// ModuleHandle records a dynamically imported script module: its name
	// (the script's base filename, extension stripped) and the functions it
	// declared. Unloading the handle removes those functions again.
	ModuleHandle struct {
		// Name is the module name.
		Name string

		funcs []string
	}
)

// New creates a Session with a fresh interpreter instance.
func New(cfg Config) (*Session, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	name := cfg.Name
	if name == "" {
		name = "session"
	}

	s := &Session{
		id:      uuid.NewString(),
		name:    name,
		parser:  syntax.NewParser(),
		logger:  logger,
		outputs: make(map[string]any),
		stdout:  newCaptureBuffer(),
		stderr:  newCaptureBuffer(),
	}
	s.jobs = newJobTable(s, cfg.Jobs)

	env := cfg.Env
	if env == nil {
		env = os.Environ()
	}

	opts := []interp.RunnerOption{
		interp.Env(expand.ListEnviron(env...)),
		interp.StdIO(nil, s.stdout, s.stderr),
		interp.ExecHandlers(s.commandHandler),
	}
	if cfg.Dir != "" {
		opts = append(opts, interp.Dir(cfg.Dir))
	}

	runner, err := interp.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create interpreter: %w", err)
	}
	s.runner = runner

	logger.Debug("session created", "session", s.id, "name", name)
	return s, nil
}

// ID returns the session's unique identity.
func (s *Session) ID() string { return s.id }

// Name returns the session's human-readable name.
func (s *Session) Name() string { return s.name }

// Initialized reports whether the owning manager completed initialization.
func (s *Session) Initialized() bool { return s.initialized }

// MarkInitialized flips the initialization flag. It transitions false to true
// exactly once; the owning manager gates the call.
func (s *Session) MarkInitialized() { s.initialized = true }

// AttachSink wires the diagnostic-stream sink. The first attached sink stays
// active for the session's entire lifetime; later calls are no-ops.
func (s *Session) AttachSink(sink Sink) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sink == nil {
		s.sink = sink
	}
}

// emit forwards one stream record to the attached sink, synchronously, on
// the producing goroutine. Records produced before a sink is attached are
// dropped.
func (s *Session) emit(rec Record) {
	s.mu.Lock()
	sink := s.sink
	s.mu.Unlock()

	if sink != nil {
		sink.Consume(rec)
	}
}

// accumulateError records one non-fatal script error for the current run.
func (s *Session) accumulateError(msg string) {
	s.mu.Lock()
	s.scriptErrs = append(s.scriptErrs, msg)
	s.mu.Unlock()
}

// commandHandler intercepts the session builtins (write-*, set-output,
// start-job) before external command lookup.
func (s *Session) commandHandler(next interp.ExecHandlerFunc) interp.ExecHandlerFunc {
	return func(ctx context.Context, args []string) error {
		if len(args) == 0 {
			return next(ctx, args)
		}

		if level, ok := streamBuiltins[args[0]]; ok {
			msg := strings.Join(args[1:], " ")
			if level == LevelError {
				s.accumulateError(msg)
			}
			s.emit(Record{
				Level:      level,
				Message:    msg,
				UserFacing: true,
			})
			return nil
		}

		switch args[0] {
		case "set-output":
			if len(args) < 3 {
				fmt.Fprintln(interp.HandlerCtx(ctx).Stderr, "set-output: usage: set-output NAME VALUE")
				return interp.ExitStatus(2)
			}
			s.setOutput(args[1], strings.Join(args[2:], " "))
			return nil
		case "start-job":
			if len(args) < 3 {
				fmt.Fprintln(interp.HandlerCtx(ctx).Stderr, "start-job: usage: start-job NAME COMMAND [ARG...]")
				return interp.ExitStatus(2)
			}
			if err := s.jobs.start(args[1], args[2:]); err != nil {
				fmt.Fprintf(interp.HandlerCtx(ctx).Stderr, "start-job: %v\n", err)
				return interp.ExitStatus(1)
			}
			return nil
		}

		return next(ctx, args)
	}
}

// setOutput records one output binding. Scripts call the set-output builtin
// during execution; the pipeline purges the store after every invocation.
func (s *Session) setOutput(name, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outputs[name] = value
}

// TakeOutputs returns the output-binding store and purges it.
func (s *Session) TakeOutputs() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.outputs
	s.outputs = make(map[string]any)
	return out
}

// TakeScriptErrors returns the errors accumulated through the write-error
// channel since the last call, purging them.
func (s *Session) TakeScriptErrors() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	errs := s.scriptErrs
	s.scriptErrs = nil
	return errs
}

// SetVar binds a string value as a shell variable in the session's global
// scope by executing an assignment statement on the interpreter. The
// interpreter does not read externally-written state maps back, so the
// assignment must go through it. The next reset removes the variable again
// unless it is part of the baseline.
func (s *Session) SetVar(ctx context.Context, name, value string) error {
	if !syntax.ValidName(name) {
		return fmt.Errorf("invalid variable name %q", name)
	}
	quoted, err := syntax.Quote(value, syntax.LangPOSIX)
	if err != nil {
		return fmt.Errorf("quote value for %s: %w", name, err)
	}
	file, err := s.parse([]byte(name+"="+quoted), "var:"+name)
	if err != nil {
		return err
	}
	return s.runner.Run(ctx, file)
}

// parse parses script source into a syntax tree.
func (s *Session) parse(src []byte, name string) (*syntax.File, error) {
	file, err := s.parser.Parse(bytes.NewReader(src), name)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	return file, nil
}

// RunScript parses and executes a whole script file in the session's global
// scope.
func (s *Session) RunScript(ctx context.Context, scriptPath string) error {
	src, err := os.ReadFile(scriptPath)
	if err != nil {
		return fmt.Errorf("read script %s: %w", scriptPath, err)
	}
	file, err := s.parse(src, scriptPath)
	if err != nil {
		return err
	}
	return s.runner.Run(ctx, file)
}

// ImportModule loads a script file as a module: the script runs in the
// session's global scope and every function it declares becomes callable.
// The returned handle records the declared functions so they can be unloaded
// again; it is non-nil even when execution fails partway, so cleanup can
// remove whatever was declared before the failure.
func (s *Session) ImportModule(ctx context.Context, scriptPath string) (*ModuleHandle, error) {
	handle := &ModuleHandle{Name: moduleName(scriptPath)}

	src, err := os.ReadFile(scriptPath)
	if err != nil {
		return handle, fmt.Errorf("read script %s: %w", scriptPath, err)
	}
	file, err := s.parse(src, scriptPath)
	if err != nil {
		return handle, err
	}

	before := make(map[string]bool, len(s.runner.Funcs))
	for name := range s.runner.Funcs {
		before[name] = true
	}

	runErr := s.runner.Run(ctx, file)

	for name := range s.runner.Funcs {
		if !before[name] {
			handle.funcs = append(handle.funcs, name)
		}
	}
	return handle, runErr
}

// UnloadModule removes every function the module declared. Unload failures
// are suppressed: cleanup must never fail the invocation that preceded it.
func (s *Session) UnloadModule(handle *ModuleHandle) {
	if handle == nil || s.runner.Funcs == nil {
		return
	}
	for _, name := range handle.funcs {
		delete(s.runner.Funcs, name)
	}
}

// LoadedFunc reports whether a function with the given name is currently
// declared in the session.
func (s *Session) LoadedFunc(name string) bool {
	_, ok := s.runner.Funcs[name]
	return ok
}

// CallFunction invokes a previously imported function by name.
func (s *Session) CallFunction(ctx context.Context, name string) error {
	if !syntax.ValidName(name) {
		return fmt.Errorf("invalid entry point name %q", name)
	}
	if !s.LoadedFunc(name) {
		return fmt.Errorf("%w: %q", ErrNoEntryPoint, name)
	}
	file, err := s.parse([]byte(name), name)
	if err != nil {
		return err
	}
	return s.runner.Run(ctx, file)
}

// SealBaseline freezes the current interpreter as the session's clean
// baseline and switches execution to a subshell copy of it. Called once by
// the manager when initialization completes; every reset discards the
// working copy and forks a fresh one, so variables, functions, and the
// working directory all return to exactly this point.
func (s *Session) SealBaseline() {
	s.base = s.runner
	s.runner = s.base.Subshell()
	s.sealed = true
}

// restoreBaseline discards the working interpreter and forks a fresh copy
// of the sealed baseline.
func (s *Session) restoreBaseline() {
	if !s.sealed {
		return
	}
	s.runner = s.base.Subshell()
}

// Jobs returns the number of live background jobs.
func (s *Session) Jobs() int { return s.jobs.count() }

// TerminateJobs force-terminates and removes all background jobs, suppressing
// any termination error.
func (s *Session) TerminateJobs() {
	s.jobs.terminateAll()
}

// Close releases the session: all background jobs are terminated and the
// session stops accepting work. Close is idempotent.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.jobs.terminateAll()
	s.logger.Debug("session closed", "session", s.id)
	return nil
}

// moduleName derives a module name from a script path: base filename with
// the extension stripped.
func moduleName(scriptPath string) string {
	base := filepath.Base(scriptPath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// captureBuffer is a concurrency-safe output buffer that can be drained
// between invocations.
type captureBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func newCaptureBuffer() *captureBuffer {
	return &captureBuffer{}
}

// Write implements io.Writer.
func (b *captureBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

// String returns the buffered output.
func (b *captureBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// Lines returns the buffered output split into lines, without a trailing
// empty line.
func (b *captureBuffer) Lines() []string {
	out := b.String()
	if out == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(out, "\n"), "\n")
}

// Reset discards the buffered output.
func (b *captureBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf.Reset()
}
