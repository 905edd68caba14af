// SPDX-License-Identifier: MPL-2.0

package worker

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"funcshell/internal/shell"
)

func touch(path string) error {
	return os.WriteFile(path, nil, 0o644)
}

func newTestPool(t *testing.T, size int) *Pool {
	t.Helper()
	app := testApp(t, "", map[string]string{
		"hello": "set-output greeting hi\n",
	})
	p, err := NewPool(size, func(i int) (*Manager, error) {
		return NewManager(Config{
			App:    app,
			Logger: quietLogger(),
		})
	})
	if err != nil {
		t.Fatalf("NewPool() error = %v", err)
	}
	t.Cleanup(p.Close)
	return p
}

func TestPoolRejectsBadSize(t *testing.T) {
	t.Parallel()

	if _, err := NewPool(0, nil); err == nil {
		t.Error("NewPool(0) error = nil, want error")
	}
}

func TestPoolAcquireInitializesAndServes(t *testing.T) {
	t.Parallel()

	p := newTestPool(t, 2)
	if got := p.Size(); got != 2 {
		t.Fatalf("Size() = %d, want 2", got)
	}

	m, err := p.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if got := m.State(); got != StateReady {
		t.Errorf("acquired manager state = %v, want %v", got, StateReady)
	}

	res, err := m.InvokeFunction(context.Background(), "hello", shell.Request{})
	if err != nil {
		t.Fatalf("InvokeFunction() error = %v", err)
	}
	if got := res.Outputs["greeting"]; got != "hi" {
		t.Errorf("outputs[greeting] = %v, want %q", got, "hi")
	}
	p.Release(m)
}

func TestPoolAcquireBlocksUntilRelease(t *testing.T) {
	t.Parallel()

	p := newTestPool(t, 1)

	m, err := p.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := p.Acquire(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Acquire() on exhausted pool: error = %v, want DeadlineExceeded", err)
	}

	p.Release(m)
	m2, err := p.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire() after release: error = %v", err)
	}
	p.Release(m2)
}

func TestPoolInitFailureIsRetried(t *testing.T) {
	t.Parallel()

	// A profile that fails until a marker appears lets the first checkout
	// fail and a later one succeed on the same manager.
	dir := t.TempDir()
	app := testApp(t, "test -f "+dir+"/ready\n", map[string]string{"hello": ":\n"})

	p, err := NewPool(1, func(i int) (*Manager, error) {
		return NewManager(Config{App: app, Logger: quietLogger()})
	})
	if err != nil {
		t.Fatalf("NewPool() error = %v", err)
	}
	t.Cleanup(p.Close)

	if _, err := p.Acquire(context.Background()); err == nil {
		t.Fatal("Acquire() error = nil, want profile failure")
	}

	if err := touch(dir + "/ready"); err != nil {
		t.Fatalf("touch marker: %v", err)
	}
	m, err := p.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire() after marker: error = %v", err)
	}
	p.Release(m)
}

func TestPoolCloseDisposesManagers(t *testing.T) {
	t.Parallel()

	p := newTestPool(t, 1)
	m, err := p.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}

	p.Close()
	if _, err := p.Acquire(context.Background()); !errors.Is(err, ErrPoolClosed) {
		t.Errorf("Acquire() after close: error = %v, want ErrPoolClosed", err)
	}

	// Releasing into a closed pool disposes the manager.
	p.Release(m)
	if got := m.State(); got != StateDisposed {
		t.Errorf("released manager state = %v, want %v", got, StateDisposed)
	}
}
