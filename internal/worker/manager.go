// SPDX-License-Identifier: MPL-2.0

// Package worker drives shell sessions through the execution lifecycle:
// each Manager owns exactly one session, initializes it once (stream wiring
// plus profile script), then executes function invocations strictly one at a
// time, resetting the session to its baseline after every attempt. A Pool
// composes managers for callers that dispatch many invocations concurrently.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/panjf2000/ants/v2"

	"funcshell/internal/funcfile"
	"funcshell/internal/shell"
)

const (
	// StateUninitialized indicates the manager was created but Initialize has
	// not completed.
	StateUninitialized ManagerState = iota
	// StateReady indicates the manager can accept an invocation.
	StateReady
	// StateExecuting indicates an invocation is in flight.
	StateExecuting
	// StateDisposed indicates the manager released its session (terminal).
	StateDisposed
)

var (
	// ErrNotInitialized is returned when InvokeFunction is called before
	// Initialize has completed.
	ErrNotInitialized = errors.New("manager not initialized")
	// ErrDisposed is returned for any call after Dispose.
	ErrDisposed = errors.New("manager disposed")
	// ErrBusy is returned when an invocation is attempted while another is
	// still in flight. Managers are strictly sequential.
	ErrBusy = errors.New("manager busy")
	// ErrUnknownFunction is returned when the invoked function is not part
	// of the app descriptor.
	ErrUnknownFunction = errors.New("unknown function")
)

type (
	// ManagerState is the lifecycle state of a Manager.
	ManagerState int32

	// Config configures a Manager.
	Config struct {
		// App is the function app descriptor served by this manager.
		App *funcfile.Funcfile
		// SessionName names the underlying session in logs.
		SessionName string
		// Dir is the session working directory. Empty means the app
		// descriptor's directory.
		Dir string
		// Env is the session base environment. Nil inherits the process
		// environment.
		Env []string
		// Logger receives host diagnostics. Nil uses the default logger.
		Logger *log.Logger
		// Sink receives the session's diagnostic stream records. Nil wires a
		// LogSink over Logger.
		Sink shell.Sink
		// Jobs is an optional shared goroutine pool for background jobs.
		Jobs *ants.Pool
	}

	// Manager owns one session and sequences stream wiring, profile
	// initialization, invocation, and reset. It is designed for
	// single-threaded sequential use: callers must not overlap calls.
	Manager struct {
		cfg     Config
		session *shell.Session
		logger  *log.Logger
		state   atomic.Int32
	}
)

// String returns a human-readable state name.
func (s ManagerState) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateReady:
		return "ready"
	case StateExecuting:
		return "executing"
	case StateDisposed:
		return "disposed"
	default:
		return "unknown"
	}
}

// NewManager creates a Manager around a fresh session. The process-wide
// well-known type registration runs here, before the session exists; it is
// idempotent across managers.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.App == nil {
		return nil, errors.New("app descriptor is required")
	}

	shell.RegisterWellKnownTypes()

	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	dir := cfg.Dir
	if dir == "" {
		dir = cfg.App.Dir()
	}

	session, err := shell.New(shell.Config{
		Name:   cfg.SessionName,
		Dir:    dir,
		Env:    cfg.Env,
		Logger: logger,
		Jobs:   cfg.Jobs,
	})
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	m := &Manager{
		cfg:     cfg,
		session: session,
		logger:  logger.With("session", session.ID()),
	}
	m.state.Store(int32(StateUninitialized))
	return m, nil
}

// State returns the manager's current lifecycle state.
func (m *Manager) State() ManagerState {
	return ManagerState(m.state.Load())
}

// SessionID returns the owned session's identity.
func (m *Manager) SessionID() string {
	return m.session.ID()
}

// Initialize wires the diagnostic-stream sink and runs the profile script,
// exactly once. It is idempotent: once the session is initialized, further
// calls are no-ops. A profile failure is fatal and leaves the manager
// uninitialized.
func (m *Manager) Initialize(ctx context.Context) error {
	switch m.State() {
	case StateDisposed:
		return ErrDisposed
	case StateReady, StateExecuting:
		return nil
	}
	if m.session.Initialized() {
		return nil
	}

	sink := m.cfg.Sink
	if sink == nil {
		sink = shell.NewLogSink(m.logger)
	}
	m.session.AttachSink(sink)

	if err := shell.RunProfile(ctx, m.session, m.cfg.App.ProfilePath()); err != nil {
		return err
	}

	m.session.SealBaseline()
	m.session.MarkInitialized()
	m.state.Store(int32(StateReady))
	m.logger.Debug("manager initialized", "app", m.cfg.App.App)
	return nil
}

// InvokeFunction executes one function invocation on the owned session. The
// session is always reset afterwards, success or failure, so the next
// invocation starts from the post-initialization baseline. Execution errors
// propagate unmodified.
func (m *Manager) InvokeFunction(ctx context.Context, name string, req shell.Request) (shell.Result, error) {
	switch m.State() {
	case StateUninitialized:
		return shell.Result{}, ErrNotInitialized
	case StateDisposed:
		return shell.Result{}, ErrDisposed
	}
	if !m.state.CompareAndSwap(int32(StateReady), int32(StateExecuting)) {
		return shell.Result{}, ErrBusy
	}

	fn := m.cfg.App.Get(name)
	if fn == nil {
		m.state.Store(int32(StateReady))
		return shell.Result{}, fmt.Errorf("%w: %q", ErrUnknownFunction, name)
	}

	start := time.Now()

	var handle *shell.ModuleHandle
	defer func() {
		// The reset runs unconditionally, even when the invocation panics:
		// the next invocation must start from the baseline.
		shell.Reset(m.session, handle)
		m.state.Store(int32(StateReady))
	}()

	res, handle, err := shell.Invoke(ctx, m.session, fn, req)

	observeInvocation(fn.Name, err, time.Since(start))
	if err != nil {
		m.logger.Debug("invocation failed", "function", fn.Name, "err", err)
		return shell.Result{}, err
	}
	return res, nil
}

// Dispose releases the owned session. No further calls are permitted.
func (m *Manager) Dispose() error {
	prev := ManagerState(m.state.Swap(int32(StateDisposed)))
	if prev == StateDisposed {
		return nil
	}
	return m.session.Close()
}
