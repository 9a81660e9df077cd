package service

import (
	"errors"
	"fmt"
)

// ErrNotAvailable is returned when an optional collaborator, such as the
// notifier, was not configured.
var ErrNotAvailable = errors.New("capability not available")

// ValidationError reports bad caller input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}
