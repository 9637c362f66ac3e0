package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func jsonError(c echo.Context, status int, msg string) error {
	return c.JSON(status, errorBody{Error: msg})
}

// ErrorHandler renders errors as {"error": "..."}. When hideInternal is set,
// the message of any 5xx response is replaced with the generic status text and
// the original is only logged.
func ErrorHandler(logger zerolog.Logger, hideInternal bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		msg := err.Error()
		var details string
		var he *echo.HTTPError
		if errors.As(err, &he) {
			status = he.Code
			switch m := he.Message.(type) {
			case string:
				msg = m
			case error:
				msg = m.Error()
			default:
				msg = http.StatusText(status)
			}
			if he.Internal != nil {
				details = he.Internal.Error()
			}
		}

		if status >= http.StatusInternalServerError {
			rid, _ := c.Get("request_id").(string)
			logger.Error().Err(err).
				Str("request_id", rid).
				Str("path", c.Request().URL.Path).
				Msg("request failed")
			if hideInternal {
				msg = http.StatusText(status)
				details = ""
			}
		}

		body := errorBody{Error: msg, Details: details}
		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, body)
		}
		if err != nil {
			logger.Error().Err(err).Msg("write error response")
		}
	}
}
