package errors_test

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/marketd/marketd/kit/platform/errors"
)

func TestError_Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  *errors.Error
		want string
	}{
		{
			name: "msg only",
			err:  &errors.Error{Code: errors.EInvalid, Msg: "listing validation failed"},
			want: "listing validation failed",
		},
		{
			name: "msg and wrapped error",
			err:  &errors.Error{Msg: "store failure", Err: fmt.Errorf("disk full")},
			want: "store failure: disk full",
		},
		{
			name: "wrapped error only",
			err:  &errors.Error{Code: errors.EInternal, Err: fmt.Errorf("disk full")},
			want: "disk full",
		},
		{
			name: "code only",
			err:  &errors.Error{Code: errors.ENotFound},
			want: "<not found>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestErrorCode(t *testing.T) {
	t.Parallel()

	require.Equal(t, "", errors.ErrorCode(nil))

	// uncoded errors are internal
	require.Equal(t, errors.EInternal, errors.ErrorCode(fmt.Errorf("plain")))

	require.Equal(t, errors.ENotFound, errors.ErrorCode(&errors.Error{Code: errors.ENotFound}))

	// the code of the innermost coded error wins when the outer has none
	err := &errors.Error{
		Op:  "listings.FindListingByID",
		Err: &errors.Error{Code: errors.ENotFound, Msg: "listing not found"},
	}
	require.Equal(t, errors.ENotFound, errors.ErrorCode(err))
}

func TestErrorMessage(t *testing.T) {
	t.Parallel()

	require.Equal(t, "An internal error has occurred.", errors.ErrorMessage(fmt.Errorf("secret detail")))

	err := &errors.Error{
		Code: errors.EInternal,
		Err:  &errors.Error{Msg: "migration failed"},
	}
	require.Equal(t, "migration failed", errors.ErrorMessage(err))
}

func TestErrorFields(t *testing.T) {
	t.Parallel()

	require.Nil(t, errors.ErrorFields(fmt.Errorf("plain")))
	require.Nil(t, errors.ErrorFields(&errors.Error{Code: errors.EInvalid}))

	fields := map[string]string{"price": "must be greater than zero"}
	err := &errors.Error{
		Op:  "listings.CreateListing",
		Err: &errors.Error{Code: errors.EInvalid, Fields: fields},
	}
	require.Equal(t, fields, errors.ErrorFields(err))
}

func TestErrInternalServiceError(t *testing.T) {
	t.Parallel()

	require.NoError(t, errors.ErrInternalServiceError(nil, "op"))

	// already-coded errors pass through untouched
	coded := &errors.Error{Code: errors.ENotFound}
	require.Equal(t, coded, errors.ErrInternalServiceError(coded, "op"))

	wrapped := errors.ErrInternalServiceError(fmt.Errorf("no such table"), "listings.FindListings")
	require.Equal(t, errors.EInternal, errors.ErrorCode(wrapped))
}

func TestErrorMarshalJSON(t *testing.T) {
	t.Parallel()

	err := &errors.Error{
		Code:   errors.EInvalid,
		Msg:    "listing validation failed",
		Fields: map[string]string{"name": "must be at least 3 characters"},
		Err:    &errors.Error{Code: errors.EInvalid, Msg: "inner"},
	}

	b, merr := json.Marshal(err)
	require.NoError(t, merr)

	var got struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Fields  map[string]string `json:"fields"`
		Err     json.RawMessage   `json:"error"`
	}
	require.NoError(t, json.Unmarshal(b, &got))
	require.Equal(t, errors.EInvalid, got.Code)
	require.Equal(t, "listing validation failed", got.Message)
	require.Contains(t, got.Fields, "name")
	require.NotEmpty(t, got.Err)
}
