package services

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound covers both "does not exist" and "belongs to another user";
	// callers must not be able to tell the two apart.
	ErrNotFound = errors.New("not found")

	// ErrInsufficientStock means a deduction would drive an ingredient's
	// quantity negative. The enclosing write is rolled back.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrAIServiceUnavailable marks provider timeouts, transport failures and
	// empty responses. Retryable, distinct from internal errors.
	ErrAIServiceUnavailable = errors.New("ai service unavailable")
)

// InsufficientIngredientError names the ingredient that ran out so the
// rejection is actionable for the user.
type InsufficientIngredientError struct {
	Name string
}

func (e *InsufficientIngredientError) Error() string {
	return fmt.Sprintf("insufficient quantity of ingredient %q", e.Name)
}

func (e *InsufficientIngredientError) Unwrap() error { return ErrInsufficientStock }

// ValidationError rejects structurally invalid input before anything touches
// the database.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func validationErrorf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}
