package workshop

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized: the actor is neither owner nor member of the tenant
	// owning the target resource, or lacks the owner role where required.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound covers missing rows and cross-tenant references alike, so
	// existence never leaks across the tenant boundary.
	ErrNotFound = errors.New("not found")

	ErrInsufficientStock = errors.New("insufficient stock")

	ErrValidation = errors.New("validation failed")

	ErrInvalidTransition = fmt.Errorf("%w: invalid status transition", ErrValidation)
)
