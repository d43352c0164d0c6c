package middleware

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
)

const (
	HeaderWeaveTimestamp = "X-Weave-Timestamp"
	HeaderLastModified   = "X-Last-Modified"
)

// WeaveTimestamp stamps every response with the server time in seconds. The
// stamp is never earlier than an X-Last-Modified header set by the handler.
func WeaveTimestamp(now func() time.Time) echo.MiddlewareFunc {
	if now == nil {
		now = time.Now
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			res := c.Response()
			res.Before(func() {
				ts := float64(now().UnixMilli()) / 1000
				if lm, err := strconv.ParseFloat(res.Header().Get(HeaderLastModified), 64); err == nil && lm > ts {
					ts = lm
				}
				res.Header().Set(HeaderWeaveTimestamp, strconv.FormatFloat(ts, 'f', 2, 64))
			})
			return next(c)
		}
	}
}
