package domain

import (
	"errors"
	"fmt"
)

// ErrAuthRequired is returned when a mutating operation is attempted without
// a session. It is a gate, not a failure: the caller should prompt for login
// and no state has changed.
var ErrAuthRequired = errors.New("authentication required")

// ValidationError reports a rejected project field before any state
// mutation or network call happens.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid project: %s %s", e.Field, e.Reason)
}

// IsValidation reports whether err is a validation rejection.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
