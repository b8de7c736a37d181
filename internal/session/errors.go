package session

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks malformed arguments such as an unknown court id.
	ErrValidation = errors.New("invalid argument")
	// ErrConflict marks an operation that is not allowed in the current state.
	// The state is left untouched.
	ErrConflict = errors.New("state conflict")
	// ErrInvalidState is returned by State.Validate.
	ErrInvalidState = errors.New("invalid session state")
)

var (
	ErrSlotFull          = fmt.Errorf("%w: no empty slot on that half", ErrConflict)
	ErrSlotEmpty         = fmt.Errorf("%w: slot is empty", ErrConflict)
	ErrCourtLocked       = fmt.Errorf("%w: court has a game in progress", ErrConflict)
	ErrAlreadyInProgress = fmt.Errorf("%w: game already in progress", ErrConflict)
	ErrNotInProgress     = fmt.Errorf("%w: no game in progress", ErrConflict)
	ErrCourtNotFull      = fmt.Errorf("%w: court is not full", ErrConflict)
	ErrCourtNotEmpty     = fmt.Errorf("%w: court is not empty", ErrConflict)
	ErrPlayerNotQueued   = fmt.Errorf("%w: player is not in the queue", ErrConflict)
)

// IsValidation reports whether err was caused by bad arguments.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsConflict reports whether err was caused by the current session state.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}
