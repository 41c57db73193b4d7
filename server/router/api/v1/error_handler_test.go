package v1

import (
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	apierrors "github.com/Edelbertschen/taskfuchs-sub005/server/internal/errors"
)

func TestToErrorResponse(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    apierrors.ErrorCode
		message string
	}{
		{
			name:    "api error",
			err:     apierrors.InvalidArgument("request body is not valid JSON", nil),
			status:  http.StatusBadRequest,
			code:    apierrors.ErrCodeInvalidArgument,
			message: "request body is not valid JSON",
		},
		{
			name:    "wrapped api error",
			err:     errors.Wrap(apierrors.Unauthorized("authentication required", nil), "middleware"),
			status:  http.StatusUnauthorized,
			code:    apierrors.ErrCodeUnauthorized,
			message: "authentication required",
		},
		{
			name:    "internal cause is hidden",
			err:     apierrors.Internal("failed to get view state", errors.New("dial tcp: connection refused")),
			status:  http.StatusInternalServerError,
			code:    apierrors.ErrCodeInternal,
			message: "internal error",
		},
		{
			name:    "body limit",
			err:     echo.ErrStatusRequestEntityTooLarge,
			status:  http.StatusRequestEntityTooLarge,
			code:    apierrors.ErrCodePayloadTooLarge,
			message: "Request Entity Too Large",
		},
		{
			name:    "method not allowed",
			err:     echo.ErrMethodNotAllowed,
			status:  http.StatusMethodNotAllowed,
			code:    apierrors.ErrCodeMethodNotAllowed,
			message: "Method Not Allowed",
		},
		{
			name:    "plain error",
			err:     errors.New("boom"),
			status:  http.StatusInternalServerError,
			code:    apierrors.ErrCodeInternal,
			message: "internal error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			response, status := toErrorResponse(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, response.Code)
			assert.Equal(t, tt.message, response.Message)
		})
	}
}
