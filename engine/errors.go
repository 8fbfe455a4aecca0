package engine

import (
	"errors"
	"fmt"
)

// ErrorKind splits rule failures into two classes: preconditions (the
// action is not available right now — wrong turn, wrong phase) and rule
// violations (the action is available but its inputs break a game rule).
// Both leave state untouched and are reported to the acting player only.
type ErrorKind uint8

const (
	KindPrecondition ErrorKind = iota
	KindRuleViolation
)

// Error is the engine's error type. Insolvency and timeouts are state
// transitions, not Errors.
type Error struct {
	Kind ErrorKind
	msg  string
}

func (e *Error) Error() string { return e.msg }

func preconditionf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindPrecondition, msg: fmt.Sprintf(format, args...)}
}

func violationf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindRuleViolation, msg: fmt.Sprintf(format, args...)}
}

// IsPrecondition reports whether err is an engine precondition failure.
func IsPrecondition(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindPrecondition
}

// IsRuleViolation reports whether err is an engine rule violation.
func IsRuleViolation(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindRuleViolation
}
