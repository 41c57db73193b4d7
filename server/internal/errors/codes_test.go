package errors

import (
	"fmt"
	"net/http"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code   ErrorCode
		status int
	}{
		{ErrCodeUnauthorized, http.StatusUnauthorized},
		{ErrCodeInvalidArgument, http.StatusBadRequest},
		{ErrCodePermissionDenied, http.StatusForbidden},
		{ErrCodeRateLimitExceeded, http.StatusTooManyRequests},
		{ErrCodePayloadTooLarge, http.StatusRequestEntityTooLarge},
		{ErrCodeInternal, http.StatusInternalServerError},
		{ErrorCode("SOMETHING_ELSE"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.status, tt.code.HTTPStatus())
		})
	}
}

func TestCodeFromHTTPStatus(t *testing.T) {
	assert.Equal(t, ErrCodeNotFound, CodeFromHTTPStatus(http.StatusNotFound))
	assert.Equal(t, ErrCodePayloadTooLarge, CodeFromHTTPStatus(http.StatusRequestEntityTooLarge))
	assert.Equal(t, ErrCodeInvalidArgument, CodeFromHTTPStatus(http.StatusUnsupportedMediaType))
	assert.Equal(t, ErrCodeInternal, CodeFromHTTPStatus(http.StatusBadGateway))
}

func TestAPIErrorMessage(t *testing.T) {
	err := PermissionDenied("metrics are restricted")
	assert.Equal(t, "[PERMISSION_DENIED] metrics are restricted", err.Error())

	expired := fmt.Errorf("token is expired")
	err = Unauthorized("authentication required", expired)
	assert.Equal(t, "[UNAUTHORIZED] authentication required: token is expired", err.Error())
	assert.ErrorIs(t, err, expired)

	cause := fmt.Errorf("connection refused")
	err = Internal("failed to load view state", cause)
	assert.Equal(t, "[INTERNAL] failed to load view state: connection refused", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestIsCode(t *testing.T) {
	err := RateLimitExceeded("slow down")
	assert.True(t, IsCode(err, ErrCodeRateLimitExceeded))
	assert.False(t, IsCode(err, ErrCodeInternal))

	wrapped := pkgerrors.Wrap(err, "middleware")
	assert.True(t, IsCode(wrapped, ErrCodeRateLimitExceeded))
	assert.False(t, IsCode(fmt.Errorf("plain"), ErrCodeInternal))
}

func TestGetCodeFromError(t *testing.T) {
	assert.Equal(t, ErrCodeInvalidArgument, GetCodeFromError(InvalidArgument("bad json", nil), ErrCodeInternal))
	assert.Equal(t, ErrCodeInternal, GetCodeFromError(fmt.Errorf("boom"), ErrCodeInternal))
	assert.Equal(t, ErrCodeUnauthorized, GetCodeFromError(pkgerrors.Wrap(Unauthorized("x", nil), "auth"), ErrCodeInternal))
}
