package services

import (
	"errors"
	"fmt"
)

// Failure classes surfaced to callers. Detailed errors wrap one of these so
// handlers can map them with errors.Is.
var (
	ErrInvalidFormat      = errors.New("invalid email format")
	ErrInvalidOrderData   = errors.New("invalid order data")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrNotFound           = errors.New("not found")
	ErrIllegalTransition  = errors.New("illegal status transition")
	ErrInvalidStatus      = errors.New("invalid status")
	ErrStorageFailure     = errors.New("storage failure")
)

func invalidOrder(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidOrderData}, args...)...)
}

// storageError keeps the cause for logs while classifying it as a storage
// failure.
func storageError(op string, err error) error {
	return fmt.Errorf("%s: %w", op, errors.Join(ErrStorageFailure, err))
}
