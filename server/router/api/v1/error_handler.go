package v1

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	apierrors "github.com/Edelbertschen/taskfuchs-sub005/server/internal/errors"
	"github.com/Edelbertschen/taskfuchs-sub005/server/internal/observability"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    apierrors.ErrorCode `json:"code"`
	Message string              `json:"message"`
}

// HTTPErrorHandler writes errors as ErrorResponse.
// Causes of internal errors are logged, never returned to the client.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	response, status := toErrorResponse(err)
	if status >= http.StatusInternalServerError {
		observability.LoggerFromContext(c.Request().Context()).Error("internal error",
			"error", err.Error())
	}

	var writeErr error
	if c.Request().Method == http.MethodHead {
		writeErr = c.NoContent(status)
	} else {
		writeErr = c.JSON(status, response)
	}
	if writeErr != nil {
		observability.LoggerFromContext(c.Request().Context()).Warn("failed to write error response",
			"error", writeErr.Error())
	}
}

func toErrorResponse(err error) (ErrorResponse, int) {
	var apiErr *apierrors.APIError
	if errors.As(err, &apiErr) {
		message := apiErr.Message
		if apiErr.Code == apierrors.ErrCodeInternal {
			message = "internal error"
		}
		return ErrorResponse{Code: apiErr.Code, Message: message}, apiErr.Code.HTTPStatus()
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		message := http.StatusText(httpErr.Code)
		if m, ok := httpErr.Message.(string); ok && m != "" {
			message = m
		} else if httpErr.Message != nil {
			message = fmt.Sprint(httpErr.Message)
		}
		if httpErr.Code >= http.StatusInternalServerError {
			message = "internal error"
		}
		return ErrorResponse{Code: apierrors.CodeFromHTTPStatus(httpErr.Code), Message: message}, httpErr.Code
	}

	return ErrorResponse{Code: apierrors.ErrCodeInternal, Message: "internal error"}, http.StatusInternalServerError
}
