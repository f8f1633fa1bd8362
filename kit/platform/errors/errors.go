package errors

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// Error codes understood by automated handlers. The transport layer maps
// these onto HTTP status codes; services should never return a bare error
// across a package boundary.
const (
	EInternal            = "internal error"
	ENotImplemented      = "not implemented"
	ENotFound            = "not found"
	EConflict            = "conflict"             // action cannot be performed
	EInvalid             = "invalid"              // validation failed
	EUnprocessableEntity = "unprocessable entity" // data type is correct, but out of range
	EEmptyValue          = "empty value"
	EUnavailable         = "unavailable"
	EForbidden           = "forbidden"
	ETooManyRequests     = "too many requests"
	EUnauthorized        = "unauthorized"
	EMethodNotAllowed    = "method not allowed"
	ETooLarge            = "request too large"
)

// Error is the canonical error type crossing service boundaries.
//
// Code targets automated handlers so that recovery can occur. Msg is a
// human-readable message. Op and Err chain errors together into a logical
// stack trace. Fields carries per-field validation messages when Code is
// EInvalid; it is nil for every other kind of failure.
type Error struct {
	Code   string
	Msg    string
	Op     string
	Err    error
	Fields map[string]string
}

// Error implements the error interface by writing out the recursive messages.
func (e *Error) Error() string {
	if e.Msg != "" && e.Err != nil {
		var b strings.Builder
		b.WriteString(e.Msg)
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
		return b.String()
	} else if e.Msg != "" {
		return e.Msg
	} else if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("<%s>", e.Code)
}

// Unwrap returns the wrapped error, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// ErrorCode returns the code of the root error, if available; otherwise returns EInternal.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}

	e, ok := err.(*Error)
	if !ok {
		return EInternal
	}

	if e == nil {
		return ""
	}

	if e.Code != "" {
		return e.Code
	}

	if e.Err != nil {
		return ErrorCode(e.Err)
	}

	return EInternal
}

// ErrorMessage returns the human-readable message of the error, if available.
// Otherwise returns a generic error message.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	e, ok := err.(*Error)
	if !ok {
		return "An internal error has occurred."
	}

	if e == nil {
		return ""
	}

	if e.Msg != "" {
		return e.Msg
	}

	if e.Err != nil {
		return ErrorMessage(e.Err)
	}

	return "An internal error has occurred."
}

// ErrorFields returns the per-field detail map of the outermost error that
// carries one. Returns nil when the error has no field detail.
func ErrorFields(err error) map[string]string {
	e, ok := err.(*Error)
	if !ok || e == nil {
		return nil
	}

	if e.Fields != nil {
		return e.Fields
	}

	if e.Err != nil {
		return ErrorFields(e.Err)
	}

	return nil
}

// ErrInternalServiceError wraps err as an EInternal coded error unless it
// already carries a code. Store-level faults pass through here so internal
// detail never leaks to callers.
func ErrInternalServiceError(err error, op string) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(*Error); ok {
		return err
	}
	return &Error{
		Code: EInternal,
		Op:   op,
		Err:  err,
	}
}

// errEncode is a JSON encoding helper handling the recursive stack of errors.
type errEncode struct {
	Code   string            `json:"code"`
	Msg    string            `json:"message,omitempty"`
	Op     string            `json:"op,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
	Err    interface{}       `json:"error,omitempty"`
}

// MarshalJSON recursively marshals the stack of Err.
func (e *Error) MarshalJSON() ([]byte, error) {
	ee := errEncode{
		Code:   e.Code,
		Msg:    e.Msg,
		Op:     e.Op,
		Fields: e.Fields,
	}
	if e.Err != nil {
		if inner, ok := e.Err.(*Error); ok {
			ee.Err = inner
		} else {
			ee.Err = e.Err.Error()
		}
	}
	return json.Marshal(ee)
}

// HTTPErrorHandler is the interface to handle an http error.
type HTTPErrorHandler interface {
	HandleHTTPError(ctx context.Context, err error, w http.ResponseWriter)
}
