package service

import "fmt"

// ValidationError marks a request the caller can fix. The HTTP layer maps
// it to a 400 with the message intact; all other errors become opaque 500s.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Validationf builds a ValidationError from a format string.
func Validationf(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}
