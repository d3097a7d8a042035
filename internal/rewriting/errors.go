package rewriting

import "fmt"

// Error is returned when the text-generation provider call fails.
type Error struct {
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("rewrite failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("rewrite failed: %s", e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}
