// README: Error kinds returned by the ride engine.
package ride

import (
	"errors"
	"fmt"
)

var (
	ErrValidation        = errors.New("validation error")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrNotFound          = errors.New("ride not found")
	ErrStorage           = errors.New("storage error")
)

// TransitionError carries the attempted action and the state it was refused in, so
// callers can tell a stale double-click apart from an authorization failure.
type TransitionError struct {
	Action Action
	Role   Role
	Status Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s ride: role=%s, status=%s", e.Action, e.Role, e.Status)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}

func validationErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func unauthorizedErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUnauthorized, fmt.Sprintf(format, args...))
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorage, op, err)
}
