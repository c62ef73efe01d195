package common

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrKind classifies the failures reported across the slow-control runtime.
type ErrKind uint32

const (
	// ConnectionErr covers socket, accept, dial and transport failures.
	ConnectionErr ErrKind = iota
	// ProtocolErr covers malformed frames and unexpected replies.
	ProtocolErr
	// ConfigErr covers missing or invalid configuration.
	ConfigErr
	// HandlerErr covers failures of hardware actions invoked by a callback.
	HandlerErr
	// TimeoutErr is returned when a blocking operation ran out of time.
	TimeoutErr
	// NotFoundErr is returned for unknown nodes, variables or config objects.
	NotFoundErr
)

// String ...
func (k ErrKind) String() string {
	switch k {
	case ConnectionErr:
		return "Connection"
	case ProtocolErr:
		return "Protocol"
	case ConfigErr:
		return "Config"
	case HandlerErr:
		return "Handler"
	case TimeoutErr:
		return "Timeout"
	case NotFoundErr:
		return "Not Found"
	default:
		return "Unknown"
	}
}

// Error is a classified error. Op names the operation that failed.
type Error struct {
	kind  ErrKind
	op    string
	cause error
}

// NewError ...
func NewError(kind ErrKind, op string, cause error) *Error {
	return &Error{
		kind:  kind,
		op:    op,
		cause: cause,
	}
}

// Errorf builds a classified error from a format string.
func Errorf(kind ErrKind, op string, format string, args ...interface{}) *Error {
	return NewError(kind, op, fmt.Errorf(format, args...))
}

// Error ...
func (e *Error) Error() string {
	if e.cause == nil {
		return fmt.Sprintf("%s: %s error", e.op, e.kind)
	}
	return fmt.Sprintf("%s: %s error: %v", e.op, e.kind, e.cause)
}

// Kind returns the classification of the error.
func (e *Error) Kind() ErrKind {
	return e.kind
}

// Cause implements the causer interface of pkg/errors.
func (e *Error) Cause() error {
	return e.cause
}

// Unwrap ...
func (e *Error) Unwrap() error {
	return e.cause
}

// IsKind checks that an error, or any error it wraps, is a classified Error
// of the given kind.
func IsKind(err error, kind ErrKind) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e.kind == kind
		}
		cause := errors.Cause(err)
		if cause == err {
			return false
		}
		err = cause
	}
	return false
}
