// SPDX-License-Identifier: MPL-2.0

package shell

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"mvdan.cc/sh/v3/syntax"
)

// jobStopTimeout bounds how long termination waits for a job goroutine to
// observe cancellation before moving on.
const jobStopTimeout = 2 * time.Second

type (
	// job is one background task started by the start-job builtin. It runs a
	// command line on a subshell copy of the session's interpreter, detached
	// from the invocation that started it.
	job struct {
		name   string
		cancel context.CancelFunc
		done   chan struct{}
	}

	// jobTable tracks the background jobs of one session. Every invocation
	// ends with terminateAll so no job survives into the next invocation.
	jobTable struct {
		session *Session
		pool    *ants.Pool

		mu   sync.Mutex
		jobs map[string]*job
		seq  int
	}
)

func newJobTable(s *Session, pool *ants.Pool) *jobTable {
	return &jobTable{
		session: s,
		pool:    pool,
		jobs:    make(map[string]*job),
	}
}

// start launches args as a background job under the given name. The job runs
// on a subshell copy of the interpreter so it cannot race the session's own
// runner, with a cancelable context detached from the invocation.
func (t *jobTable) start(name string, args []string) error {
	src, err := quoteCommand(args)
	if err != nil {
		return err
	}
	file, err := t.session.parse([]byte(src), "job:"+name)
	if err != nil {
		return err
	}

	sub := t.session.runner.Subshell()
	ctx, cancel := context.WithCancel(context.Background())

	j := &job{
		name:   name,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	t.mu.Lock()
	t.seq++
	key := fmt.Sprintf("%s#%d", name, t.seq)
	t.jobs[key] = j
	t.mu.Unlock()

	task := func() {
		defer close(j.done)
		// Job failures are advisory: surface them on the error channel
		// instead of failing the invocation that spawned the job.
		if err := sub.Run(ctx, file); err != nil && ctx.Err() == nil {
			t.session.emit(Record{
				Level:      LevelError,
				Message:    fmt.Sprintf("background job %s failed: %v", name, err),
				UserFacing: true,
			})
		}
	}

	if t.pool != nil {
		if err := t.pool.Submit(task); err != nil {
			cancel()
			t.remove(key)
			return fmt.Errorf("submit job %s: %w", name, err)
		}
		return nil
	}
	go task()
	return nil
}

// terminateAll cancels every live job, waits briefly for each goroutine to
// exit, and empties the table. Termination errors are suppressed.
func (t *jobTable) terminateAll() {
	t.mu.Lock()
	jobs := t.jobs
	t.jobs = make(map[string]*job)
	t.mu.Unlock()

	for _, j := range jobs {
		j.cancel()
	}
	deadline := time.After(jobStopTimeout)
	for _, j := range jobs {
		select {
		case <-j.done:
		case <-deadline:
			return
		}
	}
}

func (t *jobTable) remove(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.jobs, key)
}

func (t *jobTable) count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.jobs)
}

// quoteCommand renders args as a shell command line with each argument
// safely quoted.
func quoteCommand(args []string) (string, error) {
	quoted := make([]string, 0, len(args))
	for _, arg := range args {
		q, err := syntax.Quote(arg, syntax.LangPOSIX)
		if err != nil {
			return "", fmt.Errorf("quote job argument %q: %w", arg, err)
		}
		quoted = append(quoted, q)
	}
	return strings.Join(quoted, " "), nil
}
