package helper

import "fmt"

// NewError wraps an error with the operation that produced it.
// It is the single error-wrapping idiom used across all handlers.
func NewError(operation string, err error) error {
	return fmt.Errorf("error in %s: %w", operation, err)
}
