package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

// RequestTimeout puts a deadline on each request context. Paths listed in
// overrides use their own timeout; image extraction calls slow upstream
// models and needs minutes rather than seconds. When the deadline passes
// before the handler returns, the client gets 504.
func RequestTimeout(timeout time.Duration, overrides map[string]time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			d := timeout
			if o, ok := overrides[strings.TrimRight(c.Request().URL.Path, "/")]; ok {
				d = o
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), d)
			defer cancel()

			c.SetRequest(c.Request().WithContext(ctx))

			done := make(chan error, 1)
			go func() {
				done <- next(c)
			}()

			select {
			case err := <-done:
				return err
			case <-ctx.Done():
				if errors.Is(ctx.Err(), context.DeadlineExceeded) {
					return gatewayTimeoutError(c)
				}
				// Client went away.
				return ctx.Err()
			}
		}
	}
}

func gatewayTimeoutError(c echo.Context) error {
	if c.Response().Committed {
		return nil
	}
	return jsonError(c, http.StatusGatewayTimeout, "request processing exceeded the allowed time limit")
}
