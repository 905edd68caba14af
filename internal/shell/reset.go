// SPDX-License-Identifier: MPL-2.0

package shell

// Reset restores the session to its clean baseline after an invocation
// attempt, success or failure:
//
//  1. interpreter state (variables, functions, working directory) goes back
//     to the baseline sealed at initialization, and the output-binding store
//     is cleared;
//  2. if the invocation imported a module, its functions are unloaded;
//  3. background jobs started during the invocation are force-terminated
//     and removed.
//
// Steps 2 and 3 remove artifacts the state restore does not automatically
// clear. All cleanup errors are suppressed: cleanup must never fail the
// invocation that already completed (or failed) before it.
func Reset(s *Session, handle *ModuleHandle) {
	s.restoreBaseline()

	s.mu.Lock()
	s.outputs = make(map[string]any)
	s.scriptErrs = nil
	s.mu.Unlock()

	s.stdout.Reset()
	s.stderr.Reset()

	if handle != nil {
		s.UnloadModule(handle)
		s.logger.Debug("module unloaded", "session", s.id, "module", handle.Name)
	}

	s.TerminateJobs()
}
