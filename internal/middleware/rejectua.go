package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"syncserver/internal/metrics"
	"syncserver/internal/useragent"
)

const rejectedLabel = "error.rejectua"

var rejectedBody = []byte("0")

// RejectUA answers requests from legacy Firefox-iOS-Sync clients with a bare
// 503 before they reach the handler. Those clients crash on regular
// response headers.
func RejectUA(m *metrics.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !useragent.IsLegacyIOSSync(c.Request().UserAgent()) {
				return next(c)
			}
			m.Incr(rejectedLabel)
			return c.JSONBlob(http.StatusServiceUnavailable, rejectedBody)
		}
	}
}
