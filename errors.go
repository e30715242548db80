package perdomain

import (
	"errors"
	"fmt"
)

var (
	// ErrWrongContext matches every WrongContextError.
	ErrWrongContext = errors.New("perdomain: wrong execution context")
	// ErrElementNotFound matches every ElementResolutionError.
	ErrElementNotFound = errors.New("perdomain: form element not found")
	// ErrClosed is returned by a manager after Close.
	ErrClosed = errors.New("perdomain: manager closed")
)

// WrongContextError is returned when an operation that enumerates
// permissions runs in an injected context.
type WrongContextError struct {
	Op string
}

func (e *WrongContextError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("perdomain: %s only works on extension pages", e.Op)
}

func (e *WrongContextError) Is(target error) bool {
	return target == ErrWrongContext
}

// ElementResolutionError is returned when a selector matches no form.
type ElementResolutionError struct {
	Selector string
}

func (e *ElementResolutionError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("perdomain: no form matches selector %q", e.Selector)
}

func (e *ElementResolutionError) Is(target error) bool {
	return target == ErrElementNotFound
}
