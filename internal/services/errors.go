package services

import "errors"

var (
	// ErrValidation marks client input faults.
	ErrValidation = errors.New("validation failed")
	// ErrServiceUnavailable is returned while no storage has been attached.
	ErrServiceUnavailable = errors.New("database not initialized")
)

// ValidationError carries the message shown to the caller.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// MsgNameAndMessageRequired is reported when a required field is empty.
const MsgNameAndMessageRequired = "Name and message are required"
