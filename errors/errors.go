// Package errors defines the error surface of the message queue subsystem:
// a small set of codes grouped into categories, wrapped in a QueueError that
// preserves an optional cause.
package errors

import "fmt"

// Code identifies one of the error kinds in the external interface.
// Codes are produced only at the innermost layer that detects the
// condition; higher layers never translate one code into another.
type Code string

const (
	CodeInvalidArgument    Code = "INVALID_ARGUMENT"
	CodePermissionDenied   Code = "PERMISSION_DENIED"
	CodeWouldBlock         Code = "WOULD_BLOCK"
	CodeMessageTooLarge    Code = "MESSAGE_TOO_LARGE"
	CodeTimedOut           Code = "TIMED_OUT"
	CodeInterrupted        Code = "INTERRUPTED"
	CodeInvalidDescriptor  Code = "INVALID_DESCRIPTOR"
	CodeBusy               Code = "BUSY"
	CodeNoMemory           Code = "NO_MEMORY"
	CodeAlreadyExists      Code = "ALREADY_EXISTS"
	CodeNotFound           Code = "NOT_FOUND"
	CodeNotPermitted       Code = "NOT_PERMITTED"
)

// Category groups codes by the kind of failure.
type Category string

const (
	CategoryPrecondition Category = "PRECONDITION"
	CategoryTransient    Category = "TRANSIENT"
	CategoryResource     Category = "RESOURCE"
	CategoryLifecycle    Category = "LIFECYCLE"
	CategoryFatal        Category = "FATAL"
)

var categoryByCode = map[Code]Category{
	CodeInvalidArgument:   CategoryPrecondition,
	CodePermissionDenied:  CategoryPrecondition,
	CodeMessageTooLarge:   CategoryPrecondition,
	CodeBusy:              CategoryPrecondition,
	CodeWouldBlock:        CategoryTransient,
	CodeTimedOut:          CategoryTransient,
	CodeInterrupted:       CategoryTransient,
	CodeNoMemory:          CategoryResource,
	CodeAlreadyExists:     CategoryResource,
	CodeNotFound:          CategoryResource,
	CodeInvalidDescriptor: CategoryLifecycle,
	CodeNotPermitted:      CategoryFatal,
}

// QueueError is the concrete error type returned across the public API.
type QueueError struct {
	Code     Code
	Category Category
	Message  string
	Cause    error
}

func (e *QueueError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Category, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Category, e.Code, e.Message)
}

func (e *QueueError) Unwrap() error { return e.Cause }

// Is compares by code, ignoring message and cause, so callers can write
// errors.Is(err, errors.ErrWouldBlock).
func (e *QueueError) Is(target error) bool {
	t, ok := target.(*QueueError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates a QueueError for code, deriving its category automatically.
func New(code Code, message string) *QueueError {
	return &QueueError{Code: code, Category: categoryByCode[code], Message: message}
}

// Wrap creates a QueueError around cause.
func Wrap(code Code, message string, cause error) *QueueError {
	return &QueueError{Code: code, Category: categoryByCode[code], Message: message, Cause: cause}
}

// IsTransient reports whether err is a QueueError in CategoryTransient —
// would-block, timed-out, or interrupted — the "transient unavailability"
// class a caller can usually retry.
func IsTransient(err error) bool {
	var qe *QueueError
	if ok := asQueueError(err, &qe); ok {
		return qe.Category == CategoryTransient
	}
	return false
}

func asQueueError(err error, out **QueueError) bool {
	for err != nil {
		if qe, ok := err.(*QueueError); ok {
			*out = qe
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
