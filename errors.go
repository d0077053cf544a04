package nativeusers

import (
	"errors"
	"fmt"
)

var (
	// ErrNotStarted is returned by Put, Delete, and GetUsers, and sent on
	// GetUserAsync's error channel, when the store is not in
	// StateStarted. The blocking GetUser and VerifyPassword report the
	// same condition as a nil User instead.
	ErrNotStarted = errors.New("nativeusers: store has not been started")

	// ErrAlreadyBuilt guards Builder.Build against reuse.
	ErrAlreadyBuilt = errors.New("nativeusers: builder already used")

	// ErrIllegalReset is returned by Reset outside StateStopped/StateFailed.
	ErrIllegalReset = errors.New("nativeusers: reset is only valid when stopped or failed")

	// ErrMissingDependency is returned by Builder.Build when no document
	// store or purger was supplied (a missing hasher defaults to BCrypt),
	// and by Start when any of the three collaborators is nil.
	ErrMissingDependency = errors.New("nativeusers: missing required dependency")
)

// CachePurgeFailedError is surfaced from Put/Delete when the underlying
// mutation succeeded but the follow-up realm-cache purge failed. Callers
// should treat the mutation itself as having landed and clear the affected
// realm's cache manually.
type CachePurgeFailedError struct {
	Username string
	Err      error
}

func (e *CachePurgeFailedError) Error() string {
	return fmt.Sprintf("nativeusers: clearing the realm cache for %q failed, please clear it manually: %v", e.Username, e.Err)
}

func (e *CachePurgeFailedError) Unwrap() error { return e.Err }

// ListenerFailure wraps the errors collected while notifying listeners
// during a single poll iteration. Only the first raised error becomes the
// primary error the scheduler observes; the rest are attached as
// Suppressed for diagnostics.
type ListenerFailure struct {
	Err        error
	Suppressed []error
}

func (e *ListenerFailure) Error() string {
	if len(e.Suppressed) == 0 {
		return fmt.Sprintf("nativeusers: listener failure: %v", e.Err)
	}
	return fmt.Sprintf("nativeusers: listener failure: %v (+%d more)", e.Err, len(e.Suppressed))
}

func (e *ListenerFailure) Unwrap() error { return e.Err }
