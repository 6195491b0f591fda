package core

import (
	"errors"
	"fmt"
)

// Error categories returned by the network operations. Callers match them with
// errors.Is; every returned error wraps exactly one category.
var (
	// ErrValidation reports rejected user input (blank name, empty target list).
	ErrValidation = errors.New("validation error")

	// ErrInvalidOperation reports an operation the graph model forbids, such as
	// relating a person to themselves. It also matches ErrValidation.
	ErrInvalidOperation = fmt.Errorf("invalid operation: %w", ErrValidation)

	// ErrUnknownPerson reports a reference to a name that is not in the network.
	ErrUnknownPerson = errors.New("unknown person")

	// ErrIndexOutOfRange reports a stale or invalid history display index.
	// Callers should re-read the history and retry.
	ErrIndexOutOfRange = errors.New("history index out of range")

	// ErrNothingPending reports a confirm without a preceding request.
	ErrNothingPending = errors.New("no deletion pending confirmation")
)
