// Package apperror defines the application error taxonomy. Every failure
// crossing the repository boundary is expressed as one of the Kind values
// below; raw backend errors never escape past the data layer.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Kind classifies an error independently of the backend vocabulary that
// produced it.
type Kind string

const (
	KindNotFound           Kind = "not_found"
	KindConflict           Kind = "conflict"
	KindValidation         Kind = "validation"
	KindBadRequest         Kind = "bad_request"
	KindUnauthorized       Kind = "unauthorized"
	KindForbidden          Kind = "forbidden"
	KindServiceUnavailable Kind = "service_unavailable"
	KindDatabaseConstraint Kind = "database_constraint"
	KindDatabaseError      Kind = "database_error"
)

// Error is the typed application error carried through the service and
// handler layers. Context holds structured diagnostic metadata (table,
// operation, original backend code) and is safe to log; Message is the
// technical message, not guaranteed safe for end users.
type Error struct {
	Kind      Kind
	Code      string
	Message   string
	Context   map[string]interface{}
	Unmapped  bool
	Timestamp time.Time

	cause error
}

// New creates an Error of the given kind. Context may be nil.
func New(kind Kind, code, message string, context map[string]interface{}) *Error {
	if context == nil {
		context = map[string]interface{}{}
	}
	return &Error{
		Kind:      kind,
		Code:      code,
		Message:   message,
		Context:   context,
		Timestamp: time.Now().UTC(),
	}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

// Unwrap exposes the underlying cause for errors.Is / errors.As chains.
func (e *Error) Unwrap() error { return e.cause }

// Is matches two application errors by kind, so callers can compare against
// a bare kind marker without caring about message or context.
func (e *Error) Is(target error) bool {
	var appErr *Error
	if errors.As(target, &appErr) {
		return e.Kind == appErr.Kind
	}
	return false
}

// WithCause attaches an underlying error and returns the receiver.
func (e *Error) WithCause(cause error) *Error {
	e.cause = cause
	return e
}

// WithContext merges additional context entries and returns the receiver.
func (e *Error) WithContext(kv map[string]interface{}) *Error {
	for k, v := range kv {
		e.Context[k] = v
	}
	return e
}

// HTTPStatus maps the error kind to the HTTP status a handler should emit.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict, KindDatabaseConstraint:
		return http.StatusConflict
	case KindValidation, KindBadRequest:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// NotFound reports a record that does not exist, or does not exist in the
// queried state (for example an active-only view of a soft-deleted row).
func NotFound(resource string, id interface{}) *Error {
	return New(KindNotFound, "RESOURCE_NOT_FOUND",
		fmt.Sprintf("%s with ID %v not found", resource, id),
		map[string]interface{}{"resource": resource, "id": id})
}

// Conflict reports a record that exists but whose requested state transition
// is illegal (already active/inactive, blocked by dependents, retry needed).
func Conflict(message string, context map[string]interface{}) *Error {
	return New(KindConflict, "RESOURCE_CONFLICT", message, context)
}

// Validation reports caller-supplied data violating a field-level rule.
func Validation(message, field string) *Error {
	return New(KindValidation, "VALIDATION_FAILED", message,
		map[string]interface{}{"field": field})
}

// BadRequest reports caller-supplied data violating a business rule or
// structural limit.
func BadRequest(message string, context map[string]interface{}) *Error {
	return New(KindBadRequest, "BAD_REQUEST", message, context)
}

// Unauthorized reports a failed or expired authentication credential at the
// data layer.
func Unauthorized(message string) *Error {
	if message == "" {
		message = "authentication required"
	}
	return New(KindUnauthorized, "UNAUTHORIZED", message, nil)
}

// Forbidden reports an authorization failure at the data layer.
func Forbidden(message string) *Error {
	if message == "" {
		message = "access denied"
	}
	return New(KindForbidden, "FORBIDDEN", message, nil)
}

// ServiceUnavailable reports a transient infrastructure failure; callers may
// retry.
func ServiceUnavailable(service string, context map[string]interface{}) *Error {
	return New(KindServiceUnavailable, "SERVICE_UNAVAILABLE",
		fmt.Sprintf("service %s is currently unavailable", service), context)
}

// DatabaseConstraint reports a named constraint violation.
func DatabaseConstraint(constraint, table string) *Error {
	return New(KindDatabaseConstraint, "DATABASE_CONSTRAINT_VIOLATION",
		fmt.Sprintf("database constraint violation: %s on table %s", constraint, table),
		map[string]interface{}{"constraint": constraint, "table": table})
}

// Database reports any backend failure not covered by a more specific kind.
func Database(operation, table, message string) *Error {
	return New(KindDatabaseError, "DATABASE_ERROR",
		fmt.Sprintf("database %s failed on table %s: %s", operation, table, message),
		map[string]interface{}{"operation": operation, "table": table})
}

// As extracts an *Error from an error chain.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsKind reports whether err is an application error of the given kind.
func IsKind(err error, kind Kind) bool {
	if appErr, ok := As(err); ok {
		return appErr.Kind == kind
	}
	return false
}
