package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/marketd/marketd/kit/platform/errors"
)

// PlatformErrorCodeHeader carries the machine-readable error code of a failed
// response.
const PlatformErrorCodeHeader = "X-Platform-Error-Code"

// ErrorHandler is the error handler in the http package.
type ErrorHandler int

var _ errors.HTTPErrorHandler = ErrorHandler(0)

// errorResponse is the wire shape of every failure response: a stable code,
// a message, and a per-field detail map for validation failures.
type errorResponse struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func emitError(err error) errorResponse {
	e := errorResponse{
		Code:    errors.ErrorCode(err),
		Message: "An internal error has occurred",
	}
	if cerr, ok := err.(*errors.Error); ok {
		e.Message = cerr.Error()
		e.Fields = errors.ErrorFields(cerr)
	}
	return e
}

func errorStatusCode(err error) int {
	code, ok := statusCodePlatformError[errors.ErrorCode(err)]
	if !ok {
		return http.StatusBadRequest
	}
	return code
}

// HandleHTTPError encodes err with the appropriate status code and format,
// sets the X-Platform-Error-Code header on the response,
// and sets the response status to the corresponding status code.
func (h ErrorHandler) HandleHTTPError(ctx context.Context, err error, w http.ResponseWriter) {
	if err == nil {
		return
	}

	w.Header().Set(PlatformErrorCodeHeader, errors.ErrorCode(err))
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(errorStatusCode(err))

	b, _ := json.Marshal(emitError(err))
	_, _ = w.Write(b)
}

// statusCodePlatformError converts a coded error to an http status code.
var statusCodePlatformError = map[string]int{
	errors.EInternal:            http.StatusInternalServerError,
	errors.ENotImplemented:      http.StatusNotImplemented,
	errors.EInvalid:             http.StatusBadRequest,
	errors.EUnprocessableEntity: http.StatusUnprocessableEntity,
	errors.EEmptyValue:          http.StatusBadRequest,
	errors.EConflict:            http.StatusUnprocessableEntity,
	errors.ENotFound:            http.StatusNotFound,
	errors.EUnavailable:         http.StatusServiceUnavailable,
	errors.EForbidden:           http.StatusForbidden,
	errors.ETooManyRequests:     http.StatusTooManyRequests,
	errors.EUnauthorized:        http.StatusUnauthorized,
	errors.EMethodNotAllowed:    http.StatusMethodNotAllowed,
	errors.ETooLarge:            http.StatusRequestEntityTooLarge,
}
