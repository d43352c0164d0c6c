package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"syncserver/internal/diag"
	"syncserver/internal/metrics"
	"syncserver/internal/report"
	"syncserver/internal/tags"
	"syncserver/internal/useragent"
)

const requestTimer = "request.duration"

type CorrelateConfig struct {
	Metrics  *metrics.Metrics
	Reporter *report.Reporter
	// ParseUA parses User-Agent headers for the seed tags. Defaults to
	// useragent.Parse.
	ParseUA func(string) useragent.Info
}

// Correlate gives each request a request-side and a response-side
// diagnostic scope. Once the inner chain returns, on every path, it merges
// the seed tags with both scopes, reports the terminal error, drains the
// pending events of both scopes and stops the request timer.
func Correlate(cfg CorrelateConfig) echo.MiddlewareFunc {
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.Noop()
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			req := c.Request()
			seed := tags.FromRequest(req, cfg.ParseUA)
			seed.AddExtra(tags.ExtraRequestID, c.Response().Header().Get(echo.HeaderXRequestID))

			reqScope := diag.NewScope()
			respScope := diag.NewScope()
			c.SetRequest(req.WithContext(diag.WithScope(req.Context(), reqScope)))
			diag.Attach(c, respScope)

			timer := cfg.Metrics.StartTimer(requestTimer, seed)

			defer func() {
				merged := seed.Merge(reqScope.Tags(), respScope.Tags())
				// The client may be gone; reporting still happens.
				ctx := context.WithoutCancel(req.Context())

				if cfg.Reporter != nil {
					if reportable(err) {
						cfg.Reporter.Process(ctx, err, merged, cfg.Metrics)
					}
					for _, ev := range append(reqScope.Drain(), respScope.Drain()...) {
						cfg.Reporter.Report(ctx, ev, merged)
					}
				}

				timer.StopWith(merged)
			}()

			return next(c)
		}
	}
}

// Routing and framework errors below 500 are plain client mistakes and carry
// no taxonomy.
func reportable(err error) bool {
	if err == nil {
		return false
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code >= http.StatusInternalServerError
	}
	return true
}
