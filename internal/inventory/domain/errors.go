package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Callers match them with errors.Is; the message carries the detail.
var (
	ErrInvalidArgument    = &DomainError{Kind: "invalid_argument", Message: "invalid argument"}
	ErrNotFound           = &DomainError{Kind: "not_found", Message: "not found"}
	ErrConflict           = &DomainError{Kind: "conflict", Message: "concurrent update conflict"}
	ErrInvariantViolation = &DomainError{Kind: "invariant_violation", Message: "ledger invariant violated"}
)

// DomainError represents a domain-level error kind
type DomainError struct {
	Kind    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// InvalidArgument wraps ErrInvalidArgument with a formatted detail
func InvalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// NotFound wraps ErrNotFound with a formatted detail
func NotFound(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// Conflict wraps ErrConflict with a formatted detail
func Conflict(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

// InvariantViolation wraps ErrInvariantViolation with a formatted detail
func InvariantViolation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvariantViolation, fmt.Sprintf(format, args...))
}

// KindOf returns the kind of the first DomainError in err's chain, or "" for
// errors that did not originate in the domain (store failures and the like).
func KindOf(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}
