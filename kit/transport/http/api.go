package http

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/marketd/marketd/kit/platform/errors"
	"go.uber.org/zap"
)

// API provides a consolidated means for handling API interfaces: responding
// with JSON, decoding request bodies and writing coded errors.
type API struct {
	log *zap.Logger

	unmarshalErrFn func(encoding string, err error) error
	okErrFn        func(err error) error
	errFn          func(err error) (interface{}, int, error)
}

// APIOptFn is a functional option for the API type.
type APIOptFn func(*API)

// WithLog sets the logger errors are written to before responding.
func WithLog(log *zap.Logger) APIOptFn {
	return func(a *API) {
		a.log = log
	}
}

// NewAPI creates a new API type.
func NewAPI(opts ...APIOptFn) *API {
	api := API{
		unmarshalErrFn: func(encoding string, err error) error {
			return &errors.Error{
				Code: errors.EInvalid,
				Msg:  "failed to unmarshal " + encoding + " request body",
				Err:  err,
			}
		},
		errFn: func(err error) (interface{}, int, error) {
			return emitError(err), errorStatusCode(err), nil
		},
	}
	for _, o := range opts {
		o(&api)
	}
	return &api
}

// DecodeJSON decodes reader with json. Unknown fields in the payload are an
// error so undeclared fields can never reach the store.
func (a *API) DecodeJSON(r io.Reader, v interface{}) error {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return a.unmarshalErrFn("json", err)
	}
	return nil
}

// Respond writes to the response writer, handling any errors in the marshaling.
func (a *API) Respond(w http.ResponseWriter, r *http.Request, status int, v interface{}) {
	if status == http.StatusNoContent || v == nil {
		w.WriteHeader(status)
		return
	}

	b, err := json.Marshal(v)
	if err != nil {
		a.Err(w, r, &errors.Error{
			Code: errors.EInternal,
			Err:  err,
		})
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(b); err != nil {
		a.logErr("failed to write response body", r, err)
	}
}

// Err writes a coded error out to the response writer. Uncoded errors are
// reported as internal without their detail.
func (a *API) Err(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	a.logErr("api error encountered", r, err)

	v, status, _ := a.errFn(err)

	w.Header().Set(PlatformErrorCodeHeader, errors.ErrorCode(err))
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	b, merr := json.Marshal(v)
	if merr != nil {
		b = []byte(`{"code":"` + errors.EInternal + `"}`)
	}
	if _, werr := w.Write(b); werr != nil {
		a.logErr("failed to write error response body", r, werr)
	}
}

func (a *API) logErr(msg string, r *http.Request, err error) {
	if a.log == nil {
		return
	}

	fields := []zap.Field{
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	}
	a.log.Error(msg, fields...)
}
