// Package apperr defines the error taxonomy shared by repositories, services
// and HTTP handlers.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Kind classifies an application error
type Kind string

const (
	KindValidation       Kind = "VALIDATION_ERROR"
	KindNotFound         Kind = "NOT_FOUND"
	KindUnauthorized     Kind = "UNAUTHORIZED"
	KindForbidden        Kind = "FORBIDDEN"
	KindConflict         Kind = "CONFLICT"
	KindCapacityExceeded Kind = "CAPACITY_EXCEEDED"
	KindExternalService  Kind = "EXTERNAL_SERVICE_ERROR"
	KindInternal         Kind = "INTERNAL_ERROR"
)

// Error is the typed error returned across service boundaries
type Error struct {
	Kind    Kind
	Code    string            // machine readable reason, e.g. INVALID_STATE_TRANSITION
	Message string            // safe to show to clients
	Fields  map[string]string // field-scoped messages for validation errors
	Err     error             // underlying cause, never serialized
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches on kind and code so callers can compare against template errors
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Code == "" || t.Code == e.Code
}

func newErr(kind Kind, code, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Code: code, Message: fmt.Sprintf(format, args...)}
}

// Validation returns a validation error carrying per-field messages
func Validation(fields map[string]string) *Error {
	e := &Error{Kind: KindValidation, Code: string(KindValidation), Message: "Validation failed", Fields: fields}
	if len(fields) == 1 {
		for _, msg := range fields {
			e.Message = msg
		}
	}
	return e
}

// InvalidInput is a request-level validation error without a field map
func InvalidInput(format string, args ...interface{}) *Error {
	return newErr(KindValidation, "INVALID_INPUT", format, args...)
}

func NotFound(resource string, id interface{}) *Error {
	return newErr(KindNotFound, "NOT_FOUND", "%s %v not found", resource, id)
}

func Unauthorized(format string, args ...interface{}) *Error {
	return newErr(KindUnauthorized, "UNAUTHORIZED", format, args...)
}

func Forbidden(format string, args ...interface{}) *Error {
	return newErr(KindForbidden, "FORBIDDEN", format, args...)
}

func Conflict(format string, args ...interface{}) *Error {
	return newErr(KindConflict, "CONFLICT", format, args...)
}

// InvalidTransition is the conflict raised by state machine violations
func InvalidTransition(entity, from, to string) *Error {
	return newErr(KindConflict, "INVALID_STATE_TRANSITION", "%s cannot move from %s to %s", entity, from, to)
}

func CapacityExceeded(format string, args ...interface{}) *Error {
	return newErr(KindCapacityExceeded, "CAPACITY_EXCEEDED", format, args...)
}

// External wraps a failure of a third party dependency such as the payment gateway
func External(service string, err error) *Error {
	return &Error{Kind: KindExternalService, Code: "EXTERNAL_SERVICE_ERROR", Message: service + " is unavailable, please retry", Err: err}
}

// Internal wraps an unexpected failure. The cause is logged, never returned to clients.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Code: "INTERNAL_ERROR", Message: "An unexpected error occurred", Err: err}
}

// WithCode overrides the machine readable code
func (e *Error) WithCode(code string) *Error {
	e.Code = code
	return e
}

// WithErr attaches a cause
func (e *Error) WithErr(err error) *Error {
	e.Err = err
	return e
}

// As extracts an *Error from err, wrapping unknown errors as Internal
func As(err error) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}

// KindOf returns the kind of err, KindInternal for foreign errors
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	return As(err).Kind
}

// IsKind reports whether err is an application error of the given kind
func IsKind(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}

// HTTPStatus maps an error to its response status code
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindConflict, KindCapacityExceeded:
		return http.StatusConflict
	case KindExternalService:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// FieldList renders field errors in a stable order, used in log lines
func FieldList(fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+fields[k])
	}
	return strings.Join(parts, "; ")
}
