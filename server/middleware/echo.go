package middleware

import (
	"log/slog"

	"github.com/labstack/echo/v4"

	"github.com/Edelbertschen/taskfuchs-sub005/server/auth"
	apierrors "github.com/Edelbertschen/taskfuchs-sub005/server/internal/errors"
	"github.com/Edelbertschen/taskfuchs-sub005/server/internal/observability"
)

// RequestIDHeader is echoed back on every response.
const RequestIDHeader = echo.HeaderXRequestID

// RequestLogger attaches a RequestContext to every request and logs one line when it finishes.
// metrics may be nil.
func RequestLogger(logger *slog.Logger, metrics *observability.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			route := req.Method + " " + c.Path()
			reqCtx := observability.NewRequestContextWithID(logger, req.Header.Get(RequestIDHeader), route)
			c.SetRequest(req.WithContext(observability.WithRequestContext(req.Context(), reqCtx)))
			c.Response().Header().Set(RequestIDHeader, reqCtx.RequestID)

			err := next(c)
			if err != nil {
				// Let the error handler write the response so the logged status is the real one.
				c.Error(err)
			}

			status := c.Response().Status
			attrs := []slog.Attr{
				slog.Int(observability.LogFieldStatus, status),
				slog.Int64(observability.LogFieldDuration, reqCtx.DurationMs()),
			}
			if err != nil {
				attrs = append(attrs, slog.String(observability.LogFieldErrorCode,
					string(apierrors.GetCodeFromError(err, apierrors.CodeFromHTTPStatus(status)))))
			}
			switch {
			case status >= 500:
				reqCtx.Error("request failed", err, attrs...)
			case status >= 400:
				reqCtx.Warn("request rejected", attrs...)
			default:
				reqCtx.Info("request finished", attrs...)
			}
			if metrics != nil {
				metrics.Record(route, status, reqCtx.Duration())
			}
			return nil
		}
	}
}

// Authenticate rejects requests without valid credentials and stores the caller in the request context.
func Authenticate(authenticator *auth.Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			result, err := authenticator.Authenticate(req)
			if err != nil {
				return apierrors.Unauthorized("authentication required", err)
			}

			ctx := auth.SetUserIDInContext(req.Context(), result.UserID)
			if reqCtx, ok := observability.FromContext(ctx); ok {
				reqCtx.UserID = result.UserID
			}
			c.SetRequest(req.WithContext(ctx))
			return next(c)
		}
	}
}

// RateLimit rejects requests beyond the caller's budget with RATE_LIMIT_EXCEEDED.
// Authenticated requests are keyed by user id, anonymous ones by client address.
func RateLimit(limiter *RateLimiter) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := auth.GetUserID(c.Request().Context())
			if key == "" {
				key = "ip:" + c.RealIP()
			}
			if !limiter.Allow(key) {
				return apierrors.RateLimitExceeded("too many requests")
			}
			return next(c)
		}
	}
}
