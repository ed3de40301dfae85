package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
)

type Kind string

const (
	KindInvalidTransition Kind = "invalid_transition"
	KindValidation        Kind = "validation_error"
	KindPersistence       Kind = "persistence_error"
	KindNotification      Kind = "notification_error"
	KindInternal          Kind = "internal_error"

	// Request-level kinds used only by the control API.
	KindBadRequest   Kind = "bad_request"
	KindUnauthorized Kind = "unauthorized"
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type Error struct {
	Kind    Kind        `json:"-"`
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Err     error       `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Status maps the error kind to the HTTP status used by the control API.
func (e *Error) Status() int {
	switch e.Kind {
	case KindInvalidTransition:
		return http.StatusConflict
	case KindValidation, KindBadRequest:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// Fields returns the offending fields of a validation error.
func (e *Error) Fields() []FieldError {
	fields, _ := e.Details.([]FieldError)
	return fields
}

func New(kind Kind, code, message string) *Error {
	return &Error{
		Kind:    kind,
		Code:    code,
		Message: message,
	}
}

func InvalidTransition(op, state string) *Error {
	err := New(KindInvalidTransition, string(KindInvalidTransition), fmt.Sprintf("cannot %s while %s", op, state))
	err.Details = map[string]string{"operation": op, "state": state}
	return err
}

func Validation(fields ...FieldError) *Error {
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		names = append(names, f.Field)
	}
	err := New(KindValidation, string(KindValidation), "invalid settings: "+strings.Join(names, ", "))
	err.Details = fields
	return err
}

func Persistence(op string, cause error) *Error {
	err := New(KindPersistence, string(KindPersistence), op)
	err.Err = cause
	return err
}

func Notification(cause error) *Error {
	err := New(KindNotification, string(KindNotification), "notification failed")
	err.Err = cause
	return err
}

func Internal(message string) *Error {
	if message == "" {
		message = "internal error"
	}
	return New(KindInternal, string(KindInternal), message)
}

func BadRequest(code, message string) *Error {
	return New(KindBadRequest, code, message)
}

func Unauthorized(message string) *Error {
	return New(KindUnauthorized, string(KindUnauthorized), message)
}

// As extracts an *Error from anywhere in err's chain.
func As(err error) (*Error, bool) {
	var appErr *Error
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func IsKind(err error, kind Kind) bool {
	appErr, ok := As(err)
	return ok && appErr.Kind == kind
}
