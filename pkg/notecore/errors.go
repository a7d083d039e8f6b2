// Package notecore holds the error taxonomy shared by every core package.
package notecore

import (
	"errors"
	"fmt"
)

// ErrorKind discriminates the error variants the core can surface. Callers
// should switch on Kind rather than matching error strings.
type ErrorKind string

const (
	// StepPreconditionViolation means a step's inputs do not match the
	// current document: unknown block id, out-of-range offset, wrong node
	// kind. The whole transaction is rejected and the prior state is kept.
	StepPreconditionViolation ErrorKind = "StepPreconditionViolation"
	// InvalidSelection means an explicit selection on a transaction does
	// not correspond to a position in the post-step document.
	InvalidSelection ErrorKind = "InvalidSelection"
	// SchemaViolation means content of the wrong child-kind was placed in
	// a block, or a mark was applied to a block that excludes it.
	SchemaViolation ErrorKind = "SchemaViolation"
	// UnknownType means a registered schema lookup missed a type name.
	// Treated as a SchemaViolation by callers that don't care to
	// distinguish it.
	UnknownType ErrorKind = "UnknownType"
	// BuildError means the transaction builder observed an inconsistency
	// while accumulating steps. Builders fail fast at the offending call.
	BuildError ErrorKind = "BuildError"
)

// Error is the single concrete error type the core returns. It carries a
// Kind discriminant alongside the wrapped cause, the way jobs.WorkerError
// carries a status code alongside its wrapped error.
type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

// NewError builds an Error of the given kind wrapping cause, which may be
// nil.
func NewError(kind ErrorKind, msg string, cause error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: cause}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// Unwrap implements the contract for errors.Unwrap.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is implements the contract for errors.Is, matching on Kind only so
// callers can write errors.Is(err, notecore.NewError(notecore.InvalidSelection, "", nil)).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// Of reports whether err is a notecore.Error of kind k, unwrapping as
// needed.
func Of(err error, k ErrorKind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == k
}
