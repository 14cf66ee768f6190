package item

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies an engine error for propagation policy decisions:
// validation, not-found, and cycle errors are final; conflict errors are
// safe to retry once after a re-read; transient store errors are retried
// automatically with backoff before being surfaced.
type Kind string

const (
	KindValidation Kind = "validation"
	KindNotFound   Kind = "not_found"
	KindCycle      Kind = "cycle_detected"
	KindConflict   Kind = "conflict"
	KindTransient  Kind = "transient_store"
)

// Retryable reports whether the error kind may succeed on retry.
func (k Kind) Retryable() bool {
	return k == KindConflict || k == KindTransient
}

// Error is the single error type crossing engine package boundaries.
// Every user-visible failure carries its kind, the implicated node ids,
// and a remediation hint.
type Error struct {
	Kind    Kind
	NodeIDs []string
	Message string
	Hint    string
	Err     error // wrapped cause, if any
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	b.WriteString(": ")
	b.WriteString(e.Message)
	if len(e.NodeIDs) > 0 {
		fmt.Fprintf(&b, " (nodes: %s)", strings.Join(e.NodeIDs, ", "))
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf extracts the Kind from err, or "" if err is not an engine error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, k Kind) bool {
	return KindOf(err) == k
}

// AsError unwraps err to an *Error if one is in the chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

// NotFound builds a not-found error for the given node id.
func NotFound(id string) *Error {
	return &Error{
		Kind:    KindNotFound,
		NodeIDs: []string{id},
		Message: "item does not exist",
		Hint:    "verify the id; the item may have been deleted",
	}
}

// Validation builds a validation error implicating the given nodes.
func Validation(msg, hint string, nodeIDs ...string) *Error {
	return &Error{Kind: KindValidation, NodeIDs: nodeIDs, Message: msg, Hint: hint}
}

// CycleDetected builds a cycle error carrying the offending path.
func CycleDetected(path []string) *Error {
	return &Error{
		Kind:    KindCycle,
		NodeIDs: path,
		Message: fmt.Sprintf("dependency edge would create a cycle: %s", strings.Join(path, " → ")),
		Hint:    "remove one of the existing edges in the path before adding this one",
	}
}

// Conflict builds a conflict error for a raced update.
func Conflict(msg string, nodeIDs ...string) *Error {
	return &Error{
		Kind:    KindConflict,
		NodeIDs: nodeIDs,
		Message: msg,
		Hint:    "a concurrent update raced this one; re-read and retry once",
	}
}

// Transient wraps a backing-store failure that may clear on retry.
func Transient(msg string, err error, nodeIDs ...string) *Error {
	return &Error{
		Kind:    KindTransient,
		NodeIDs: nodeIDs,
		Message: msg,
		Hint:    "backing store is lagging or rate-limited; retry later",
		Err:     err,
	}
}
