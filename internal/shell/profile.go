// SPDX-License-Identifier: MPL-2.0

package shell

import (
	"context"
	"fmt"
)

// RunProfile runs the optional startup profile script against the session.
// The profile is loaded as a module in the session's global scope, so its
// top-level variable and function declarations become globally visible, and
// the module record is unloaded immediately afterwards: the profile's job is
// to mutate global state, not to remain loaded.
//
// An empty profilePath is a normal condition, logged at trace level. Load or
// execution errors are logged with their cause and returned as *ProfileError.
// Either way, errors the profile accumulated through the write-error channel
// are reported as a user-facing error record.
//
// The owning manager guarantees this runs at most once per session lifetime.
func RunProfile(ctx context.Context, s *Session, profilePath string) error {
	if profilePath == "" {
		s.logger.Debug("no profile script configured, skipping", "session", s.id)
		return nil
	}

	handle, runErr := s.ImportModule(ctx, profilePath)
	s.UnloadModule(handle)

	if errs := s.TakeScriptErrors(); len(errs) > 0 {
		s.emit(Record{
			Level:      LevelError,
			Message:    fmt.Sprintf("profile script %s reported %d error(s): %s", profilePath, len(errs), errs[0]),
			UserFacing: true,
		})
	}

	if runErr != nil {
		s.logger.Error("profile script failed", "session", s.id, "profile", profilePath, "err", runErr)
		return &ProfileError{Path: profilePath, Cause: runErr}
	}

	s.logger.Debug("profile script completed", "session", s.id, "profile", profilePath)
	return nil
}
