package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// tokenserverPrefix marks routes whose 404s keep their error envelope.
const tokenserverPrefix = "/1.0/"

var notFoundBody = []byte("0")

// Render404 replaces the body of 404 errors with a bare 0, which is what
// sync clients expect for missing resources.
func Render404() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			if err == nil || c.Response().Committed {
				return err
			}
			if strings.HasPrefix(c.Request().URL.Path, tokenserverPrefix) {
				return err
			}
			if StatusOf(c, err) != http.StatusNotFound {
				return err
			}
			return c.JSONBlob(http.StatusNotFound, notFoundBody)
		}
	}
}
