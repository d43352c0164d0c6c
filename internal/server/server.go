package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"syncserver/internal/apierror"
	"syncserver/internal/handler"
	"syncserver/internal/metrics"
	"syncserver/internal/middleware"
	"syncserver/internal/useragent"
)

// New builds the echo instance for st. Middleware is listed outermost first.
func New(st *State) *echo.Echo {
	if st.Metrics == nil {
		st.Metrics = metrics.Noop()
	}
	if st.Logger == nil {
		st.Logger = slog.New(slog.DiscardHandler)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = ErrorHandler(st.Logger)

	var parseUA func(string) useragent.Info
	if st.UA != nil {
		parseUA = st.UA.Parse
	}

	e.Use(
		middleware.Render404(),
		middleware.WeaveTimestamp(nil),
		middleware.RequestID(),
		middleware.Correlate(middleware.CorrelateConfig{
			Metrics:  st.Metrics,
			Reporter: st.Reporter,
			ParseUA:  parseUA,
		}),
		middleware.RejectUA(st.Metrics),
		middleware.CORS(st.CORS),
		middleware.EmitHTTPStatus(st.Metrics),
	)
	if st.Limits.MaxRequestBytes > 0 {
		e.Use(echomw.BodyLimit(strconv.FormatInt(st.Limits.MaxRequestBytes, 10) + "B"))
	}
	e.Use(middleware.Recover(st.Logger))

	handler.New(st.Pool, st.Deadman, st.Version, st.Logger).Register(e)

	if st.MetricsHandler != nil {
		e.GET("/metrics", echo.WrapHandler(st.MetricsHandler))
	}
	if st.Pprof {
		g := e.Group("/debug/pprof", middleware.DebugAuth(st.Secrets.Debug))
		middleware.RegisterPprof(g)
		st.Logger.Info("pprof endpoints enabled", slog.String("path", "/debug/pprof/*"))
	}

	return e
}

// ErrorHandler renders classified errors as the JSON error envelope.
// Framework errors below 500 keep echo's own rendering.
func ErrorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var he *echo.HTTPError
		if errors.As(err, &he) && he.Code < http.StatusInternalServerError {
			c.Echo().DefaultHTTPErrorHandler(err, c)
			return
		}

		status, body := apierror.Render(err)
		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, body)
		}
		if err != nil {
			logger.Error("failed to write error response", slog.String("error", err.Error()))
		}
	}
}
