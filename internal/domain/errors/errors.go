package errors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrAlreadyExists      = errors.New("already exists")
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccessDenied       = errors.New("access denied")
	ErrInvalidState       = errors.New("invalid state")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrDesignFileRequired = errors.New("design file required")
	ErrRevisionLimit      = errors.New("revision limit reached")
	ErrProductInactive    = errors.New("product not available")
)

// InvalidStateError reports a guard violation with enough context for the
// caller to render what state the entity is in and which states were expected.
type InvalidStateError struct {
	Entity   string
	Current  string
	Expected []string
}

func (e *InvalidStateError) Error() string {
	if len(e.Expected) == 0 {
		return fmt.Sprintf("%s is %s", e.Entity, e.Current)
	}
	return fmt.Sprintf("%s is %s, expected %s", e.Entity, e.Current, strings.Join(e.Expected, " or "))
}

// Is makes InvalidStateError match ErrInvalidState for errors.Is checks.
func (e *InvalidStateError) Is(target error) bool {
	return target == ErrInvalidState
}

// NewInvalidState builds an InvalidStateError for the given entity.
func NewInvalidState(entity, current string, expected ...string) error {
	return &InvalidStateError{Entity: entity, Current: current, Expected: expected}
}
