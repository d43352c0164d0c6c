package middleware

import (
	"errors"
	"fmt"

	"github.com/labstack/echo/v4"

	"syncserver/internal/apierror"
	"syncserver/internal/diag"
	"syncserver/internal/metrics"
	"syncserver/internal/tags"
)

const originTag = "tokenserver_origin"

// EmitHTTPStatus counts every response under its status class, http_1XX
// through http_5XX.
func EmitHTTPStatus(m *metrics.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)

			status := StatusOf(c, err)
			if status < 100 || status > 599 {
				return err
			}

			t := tags.New()
			if scope := diag.FromContext(c.Request().Context()); scope != nil {
				t.AddTag(originTag, scope.Origin())
			}
			m.IncrWithTags(fmt.Sprintf("http_%dXX", status/100), t)

			return err
		}
	}
}

// StatusOf returns the status the client receives for a handler outcome.
// The error handler has not run yet when middleware sees err, so the status
// is derived from err rather than from the response.
func StatusOf(c echo.Context, err error) int {
	if err == nil || c.Response().Committed {
		return c.Response().Status
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code
	}
	return apierror.StatusCode(err)
}
