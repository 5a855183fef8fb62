// Package errors is the error taxonomy shared by every mangavault component.
//
// Kind classifies an Error by the severity ladder of the spec: user-input
// and transport/application errors are recoverable by a caller (the batch
// loop records and continues past them); parse and programmer errors are
// not, and abort whatever loop produced them.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is the error-severity classification used to decide whether a
// failure can be recovered from locally (batch loop continues) or must
// abort the operation.
type Kind string

const (
	KindUserInput   Kind = "user_input"
	KindTransport   Kind = "transport"
	KindApplication Kind = "application"
	KindParse       Kind = "parse"
	KindProgrammer  Kind = "programmer"
)

// Error represents a domain error with additional context.
type Error struct {
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	Kind       Kind                   `json:"kind"`
	HTTPStatus int                    `json:"-"`
	Err        error                  `json:"-"`
	Details    map[string]interface{} `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap implements the unwrap interface for error chaining.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is implements error comparison for errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithDetails adds contextual details to the error.
func (e *Error) WithDetails(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// Wrap wraps an underlying error with this domain error.
func (e *Error) Wrap(err error) *Error {
	return &Error{
		Code:       e.Code,
		Message:    e.Message,
		Kind:       e.Kind,
		HTTPStatus: e.HTTPStatus,
		Err:        err,
		Details:    e.Details,
	}
}

// Recoverable reports whether the batch loop (component G) may record this
// error against a single item and continue to the next one, rather than
// aborting the whole run.
func (e *Error) Recoverable() bool {
	return e.Kind == KindTransport || e.Kind == KindApplication
}

// Common, vendor-independent errors.
var (
	ErrValidation = &Error{Code: "VALIDATION_ERROR", Message: "validation failed", Kind: KindUserInput, HTTPStatus: http.StatusBadRequest}
	ErrNotFound   = &Error{Code: "NOT_FOUND", Message: "resource not found", Kind: KindUserInput, HTTPStatus: http.StatusNotFound}
	ErrInternal   = &Error{Code: "INTERNAL_ERROR", Message: "internal error", Kind: KindProgrammer, HTTPStatus: http.StatusInternalServerError}
)

// New creates a new domain error of the given kind.
func New(kind Kind, code, message string, httpStatus int) *Error {
	return &Error{Code: code, Message: message, Kind: kind, HTTPStatus: httpStatus}
}

// Is checks if the target error matches this error type.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// GetHTTPStatus extracts an HTTP status from err, defaulting to 500.
func GetHTTPStatus(err error) int {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

// GetKind extracts the Kind from err, defaulting to KindProgrammer for an
// error that never went through this package.
func GetKind(err error) Kind {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Kind
	}
	return KindProgrammer
}
