package middleware

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"syncserver/internal/apierror"
	"syncserver/internal/diag"
	"syncserver/internal/report"
)

// Recover turns a handler panic into a 500 envelope. The panic never reaches
// the error handler, so it is queued as a pending event for Correlate to
// report.
func Recover(logger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				if r == http.ErrAbortHandler {
					panic(r)
				}

				cause, ok := r.(error)
				if !ok {
					cause = fmt.Errorf("%v", r)
				}
				perr := apierror.Internal(fmt.Errorf("handler panic: %w", cause))
				diag.Pending(c, report.EventFromError(perr))

				logger.Error("recovered from panic",
					slog.String("error", cause.Error()),
					slog.String("path", c.Request().URL.Path))

				if c.Response().Committed {
					err = nil
					return
				}
				status, body := apierror.Render(perr)
				err = c.JSON(status, body)
			}()
			return next(c)
		}
	}
}
