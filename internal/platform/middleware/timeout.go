package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ehr/vitals/internal/platform/apperr"
)

// RequestTimeout puts a deadline on the request context. Storage calls observe
// it through the context; if the handler fails after the deadline passed, the
// client gets a 504 instead of whatever error the cancelled query produced.
// A non-positive timeout disables the middleware.
func RequestTimeout(timeout time.Duration) echo.MiddlewareFunc {
	if timeout <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx, cancel := context.WithTimeout(c.Request().Context(), timeout)
			defer cancel()
			c.SetRequest(c.Request().WithContext(ctx))

			err := next(c)
			if err == nil || c.Response().Committed {
				return err
			}
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return c.JSON(http.StatusGatewayTimeout, &apperr.AppError{
					Code:    "TIMEOUT",
					Message: "request processing exceeded the allowed time",
				})
			}
			return err
		}
	}
}
