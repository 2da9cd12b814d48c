package vault

import (
	"errors"
	"fmt"
)

// Kind classifies a remote store error.
type Kind int

const (
	// KindOther covers remote failures with no more specific classification.
	KindOther Kind = iota
	// KindNotFound means the path or key does not exist on the server.
	KindNotFound
	// KindPermissionDenied means the token is not allowed to perform the operation.
	KindPermissionDenied
	// KindUnreachable means the server could not be contacted.
	KindUnreachable
	// KindCancelled means the request was cancelled before completion.
	KindCancelled
)

// String returns the kind name for status messages.
func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindPermissionDenied:
		return "permission denied"
	case KindUnreachable:
		return "unreachable"
	case KindCancelled:
		return "cancelled"
	default:
		return "error"
	}
}

// Error is the error type returned by the remote store client.
type Error struct {
	Kind    Kind
	Op      string // "list", "read", "write", "delete"
	Path    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if msg == "" {
		msg = e.Kind.String()
	}
	return fmt.Sprintf("vault %s %s: %s", e.Op, e.Path, msg)
}

// Unwrap returns the underlying error, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is a vault error of the given kind.
func IsKind(err error, kind Kind) bool {
	var ve *Error
	return errors.As(err, &ve) && ve.Kind == kind
}
