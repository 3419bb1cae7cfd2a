package fault

import (
	"errors"
	"fmt"
)

// #region kind

// Kind classifies a failure for callers that need to branch on cause.
type Kind int

const (
	// InvalidArgument marks rejected input: non-positive baselines, empty
	// signal sets, structurally invalid snapshot documents.
	InvalidArgument Kind = iota + 1
	// UninitializedState marks use of an optimizer before its profile exists.
	UninitializedState
	// IOFailure marks snapshot or store read/write failures.
	IOFailure
)

// String returns the kind's stable name.
func (k Kind) String() string {
	switch k {
	case InvalidArgument:
		return "invalid_argument"
	case UninitializedState:
		return "uninitialized_state"
	case IOFailure:
		return "io_failure"
	default:
		return "unknown"
	}
}

// #endregion kind

// #region error

// Error is a classified failure. It wraps an optional cause.
type Error struct {
	Kind  Kind
	Msg   string
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Cause }

// New creates a classified error with a formatted message.
func New(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap classifies an underlying error. Returns nil if cause is nil.
func Wrap(kind Kind, cause error, format string, args ...any) error {
	if cause == nil {
		return nil
	}
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Cause: cause}
}

// IsKind reports whether err (or anything it wraps) carries the given kind.
func IsKind(err error, kind Kind) bool {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind == kind
	}
	return false
}

// #endregion error
