package workflow

import "errors"

// The moderation error taxonomy. All four are terminal: the caller gets a
// single message and nothing is retried or partially applied.
var (
	// ErrValidation marks a malformed or incomplete submission.
	ErrValidation = errors.New("invalid submission")
	// ErrPermissionDenied marks an actor lacking the role or ownership
	// an action requires.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrNotFound marks an unknown listing id.
	ErrNotFound = errors.New("listing not found")
	// ErrInvalidTransition marks an action that is not legal from the
	// listing's current status.
	ErrInvalidTransition = errors.New("invalid status transition")
)
