// Package session holds the in-memory session state machine.
//
// States and transitions:
//
//	Unauthenticated --BeginRestore--------> Restoring
//	Unauthenticated --CommitAuthenticated-> Authenticated
//	Restoring       --CommitAuthenticated-> Authenticated
//	Authenticated   --UpdateProfile-------> Authenticated
//	any             --Clear---------------> Unauthenticated
//
// Committing arms the outbound API client through the Armer given to
// NewMachine; Clear disarms it. Both happen under the same lock as the state
// change, so no observer can see Authenticated without an armed client or
// the reverse.
//
// The machine also owns the busy slot (Acquire) that serializes the
// mutating operations of the session manager. It does not queue: a second
// Acquire fails with common.ErrSessionBusy.
package session
