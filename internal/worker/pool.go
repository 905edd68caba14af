// SPDX-License-Identifier: MPL-2.0

package worker

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	cmap "github.com/orcaman/concurrent-map/v2"
)

// ErrPoolClosed is returned by Acquire after Close.
var ErrPoolClosed = errors.New("pool closed")

// Pool is a fixed-size set of Managers handed out one at a time. A checked
// out manager is exclusively owned by the caller until released, so the
// sequential-use contract of each manager holds even when many requests are
// dispatched concurrently.
//
// Managers are created up front but initialized lazily, on first checkout.
type Pool struct {
	free     chan *Manager
	managers cmap.ConcurrentMap[string, *Manager]
	closed   atomic.Bool
}

// NewPool creates size managers using the factory.
func NewPool(size int, factory func(i int) (*Manager, error)) (*Pool, error) {
	if size < 1 {
		return nil, fmt.Errorf("pool size must be at least 1, got %d", size)
	}

	p := &Pool{
		free:     make(chan *Manager, size),
		managers: cmap.New[*Manager](),
	}
	for i := 0; i < size; i++ {
		m, err := factory(i)
		if err != nil {
			p.Close()
			return nil, fmt.Errorf("create manager %d: %w", i, err)
		}
		p.managers.Set(m.SessionID(), m)
		p.free <- m
	}
	return p, nil
}

// Acquire checks out a free manager, initializing it if this is its first
// checkout, and blocks until one is available or ctx is done. The caller
// must Release the manager when finished with it.
func (p *Pool) Acquire(ctx context.Context) (*Manager, error) {
	if p.closed.Load() {
		return nil, ErrPoolClosed
	}

	select {
	case m, ok := <-p.free:
		if !ok {
			return nil, ErrPoolClosed
		}
		poolCheckedOut.Inc()
		if err := m.Initialize(ctx); err != nil {
			// Initialization is retried on the next checkout.
			p.Release(m)
			return nil, err
		}
		return m, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Release returns a checked-out manager to the pool.
func (p *Pool) Release(m *Manager) {
	if m == nil {
		return
	}
	poolCheckedOut.Dec()
	if p.closed.Load() {
		_ = m.Dispose()
		return
	}
	p.free <- m
}

// Size returns the number of managers owned by the pool.
func (p *Pool) Size() int {
	return p.managers.Count()
}

// Close disposes every manager. Checked-out managers are disposed as they
// are released.
func (p *Pool) Close() {
	if !p.closed.CompareAndSwap(false, true) {
		return
	}
	for {
		select {
		case m, ok := <-p.free:
			if !ok {
				return
			}
			_ = m.Dispose()
		default:
			return
		}
	}
}
