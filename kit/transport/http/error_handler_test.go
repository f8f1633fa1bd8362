package http_test

import (
	"context"
	"encoding/json"
	nethttp "net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/marketd/marketd/kit/platform/errors"
	kithttp "github.com/marketd/marketd/kit/transport/http"
)

func TestErrorHandler_HandleHTTPError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "not found",
			err:        &errors.Error{Code: errors.ENotFound, Msg: "listing not found"},
			wantStatus: nethttp.StatusNotFound,
			wantCode:   errors.ENotFound,
		},
		{
			name:       "unauthorized",
			err:        &errors.Error{Code: errors.EUnauthorized, Msg: "invalid token"},
			wantStatus: nethttp.StatusUnauthorized,
			wantCode:   errors.EUnauthorized,
		},
		{
			name:       "forbidden",
			err:        &errors.Error{Code: errors.EForbidden, Msg: "listing is not yours"},
			wantStatus: nethttp.StatusForbidden,
			wantCode:   errors.EForbidden,
		},
		{
			name:       "invalid",
			err:        &errors.Error{Code: errors.EInvalid, Msg: "page must be at least 1"},
			wantStatus: nethttp.StatusBadRequest,
			wantCode:   errors.EInvalid,
		},
		{
			name:       "internal",
			err:        &errors.Error{Code: errors.EInternal, Err: context.DeadlineExceeded},
			wantStatus: nethttp.StatusInternalServerError,
			wantCode:   errors.EInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := httptest.NewRecorder()
			kithttp.ErrorHandler(0).HandleHTTPError(context.Background(), tt.err, w)

			require.Equal(t, tt.wantStatus, w.Code)
			require.Equal(t, tt.wantCode, w.Header().Get(kithttp.PlatformErrorCodeHeader))

			var body struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			require.Equal(t, tt.wantCode, body.Code)
		})
	}
}

func TestErrorHandler_UncodedError(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	kithttp.ErrorHandler(0).HandleHTTPError(context.Background(), context.Canceled, w)

	// uncoded errors are reported as internal and their detail is withheld
	require.Equal(t, nethttp.StatusInternalServerError, w.Code)

	var body struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "An internal error has occurred", body.Message)
}

func TestErrorHandler_ValidationFields(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	kithttp.ErrorHandler(0).HandleHTTPError(context.Background(), &errors.Error{
		Code: errors.EInvalid,
		Msg:  "listing validation failed",
		Fields: map[string]string{
			"name":  "must be at least 3 characters",
			"price": "must be greater than zero",
		},
	}, w)

	require.Equal(t, nethttp.StatusBadRequest, w.Code)

	var body struct {
		Fields map[string]string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Fields, 2)
}

func TestErrorHandler_NilError(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	kithttp.ErrorHandler(0).HandleHTTPError(context.Background(), nil, w)
	require.Equal(t, nethttp.StatusOK, w.Code)
	require.Empty(t, w.Body.Bytes())
}
