package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Kind is the stable tag attached to every gateway error. Callers branch on
// the kind; the detail string is for humans and logs only.
type Kind string

const (
	// KindConnection covers profile validation, authentication, and network
	// failures while dialing or pinging a pool. Fatal for the call; the
	// gateway never retries on its own.
	KindConnection Kind = "connection_error"

	// KindRejected means the statement failed classification. Never retried
	// and never auto-rewritten.
	KindRejected Kind = "rejected_statement"

	// KindTimeout means query execution exceeded the configured deadline.
	KindTimeout Kind = "timeout"

	// KindNotFound means the named catalog object does not exist.
	KindNotFound Kind = "not_found"

	// KindInconsistency means the catalog sub-queries observed conflicting
	// states (concurrent schema change between sub-queries).
	KindInconsistency Kind = "metadata_inconsistency"
)

// Error is the typed error returned across the gateway boundary.
type Error struct {
	Kind   Kind
	Detail string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a gateway error with a formatted detail string.
func NewError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// WrapError attaches a kind and detail to an underlying cause.
func WrapError(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the kind of err, or an empty Kind if err is not a gateway
// error.
func KindOf(err error) Kind {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// classifyExecError maps a driver error from query execution to a gateway
// error. Deadline expiry is surfaced as a distinct Timeout kind so callers
// can advise shortening the query instead of blindly resubmitting it.
func classifyExecError(err error, detail string) *Error {
	if errors.Is(err, context.DeadlineExceeded) || isDriverTimeout(err) {
		return WrapError(KindTimeout, err, "%s exceeded the configured timeout", detail)
	}
	return WrapError(KindConnection, err, "%s failed", detail)
}

// isDriverTimeout recognizes timeout errors that the driver reports without
// wrapping context.DeadlineExceeded (e.g. server-side attention signals).
func isDriverTimeout(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline exceeded")
}
