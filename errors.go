package mga

import (
	"errors"
	"fmt"
)

// ErrorKind classifies the structural failures of a search.
type ErrorKind string

const (
	// KindPrecondition flags invalid inputs, reported before any background work starts.
	KindPrecondition ErrorKind = "PRECONDITION"
	// KindInfeasible flags a search which completed without any valid candidate.
	KindInfeasible ErrorKind = "INFEASIBLE"
	// KindNumerical flags a primitive which received degenerate inputs.
	KindNumerical ErrorKind = "NUMERICAL"
)

// Sentinels usable with errors.Is, which matches on the kind only.
var (
	ErrPrecondition = &Error{Kind: KindPrecondition}
	ErrInfeasible   = &Error{Kind: KindInfeasible}
	ErrNumerical    = &Error{Kind: KindNumerical}
)

// Error is a structured error with a kind, a message and optional details.
type Error struct {
	Kind    ErrorKind
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// NewPrecondition creates an error for invalid inputs.
func NewPrecondition(format string, args ...any) *Error {
	return &Error{Kind: KindPrecondition, Message: fmt.Sprintf(format, args...)}
}

// NewInfeasible creates an error for searches which found no valid candidate.
func NewInfeasible(format string, args ...any) *Error {
	return &Error{Kind: KindInfeasible, Message: fmt.Sprintf(format, args...)}
}

// NewNumerical creates an error for degenerate numerical inputs.
func NewNumerical(format string, args ...any) *Error {
	return &Error{Kind: KindNumerical, Message: fmt.Sprintf(format, args...)}
}

// IsKind checks if err is, or wraps, an *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var mErr *Error
	if errors.As(err, &mErr) {
		return mErr.Kind == kind
	}
	return false
}
