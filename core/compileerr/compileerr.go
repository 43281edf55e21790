// Package compileerr defines the error taxonomy shared by every stage of
// the BifrostQL query compiler.
package compileerr

import (
	"errors"
	"fmt"
)

// Kind classifies why a compile failed. It does not replace the error
// message; callers that need to branch on failure type use errors.As to
// recover the Kind without string-matching messages.
type Kind int

const (
	// InvalidArgument covers nulls/blanks where a value is required, a
	// zero-column primary key, a _primaryKey length mismatch, duplicate
	// aliases, and malformed identifiers.
	InvalidArgument Kind = iota
	// InvalidFilter covers a filter shape that is neither a column
	// operator leaf, and/or/relation combinator.
	InvalidFilter
	// SchemaLookup covers a missing table, column, or link.
	SchemaLookup
	// NotSupported covers a sort suffix or aggregate function outside the
	// supported set.
	NotSupported
	// ExecutionError covers user-facing, recoverable failures meant to be
	// surfaced to the GraphQL layer verbatim (unknown join, PK mismatch).
	ExecutionError
)

func (k Kind) String() string {
	switch k {
	case InvalidArgument:
		return "InvalidArgument"
	case InvalidFilter:
		return "InvalidFilter"
	case SchemaLookup:
		return "SchemaLookup"
	case NotSupported:
		return "NotSupported"
	case ExecutionError:
		return "ExecutionError"
	default:
		return "Unknown"
	}
}

// Error wraps a message with a Kind so callers can classify the failure.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

// New builds a *Error of the given kind.
func New(k Kind, format string, args ...interface{}) error {
	return &Error{Kind: k, Msg: fmt.Sprintf(format, args...)}
}

// Is reports whether err carries the given Kind.
func Is(err error, k Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == k
	}
	return false
}
