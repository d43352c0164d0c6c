package middleware_test

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"syncserver/internal/apierror"
	"syncserver/internal/diag"
	"syncserver/internal/metrics"
	"syncserver/internal/metrics/metricstest"
	"syncserver/internal/middleware"
	"syncserver/internal/report"
	"syncserver/internal/report/reporttest"
)

const firefoxUA = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:120.0) Gecko/20100101 Firefox/120.0"

type correlated struct {
	echo    *echo.Echo
	metrics *metricstest.Sink
	events  *reporttest.Sink
}

func newCorrelated(t *testing.T) *correlated {
	t.Helper()
	sink := metricstest.New()
	events := reporttest.New()
	logger := slog.New(slog.DiscardHandler)

	e := echo.New()
	e.Use(middleware.RequestID())
	e.Use(middleware.Correlate(middleware.CorrelateConfig{
		Metrics:  metrics.New(sink, logger),
		Reporter: report.New(events, logger),
	}))
	return &correlated{echo: e, metrics: sink, events: events}
}

func (c *correlated) get(path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("User-Agent", firefoxUA)
	return serve(c.echo, req)
}

func (c *correlated) requestTags(t *testing.T) map[string]string {
	t.Helper()
	samples := c.metrics.Named("request.duration")
	require.Len(t, samples, 1)
	return samples[0].Tags
}

func TestCorrelate_ResponseSideTagMerged(t *testing.T) {
	c := newCorrelated(t)
	c.echo.GET("/", func(ec echo.Context) error {
		diag.FromEcho(ec).AddTag("foo", "bar")
		return ec.NoContent(http.StatusOK)
	})

	c.get("/")

	tags := c.requestTags(t)
	assert.Equal(t, "bar", tags["foo"])
	assert.Equal(t, http.MethodGet, tags["uri.method"])
	assert.Equal(t, "Firefox", tags["ua.browser.family"])
}

func TestCorrelate_RequestSideTagMerged(t *testing.T) {
	c := newCorrelated(t)
	c.echo.GET("/", func(ec echo.Context) error {
		diag.AddTag(ec.Request().Context(), "collection", "bookmarks")
		return ec.NoContent(http.StatusOK)
	})

	c.get("/")

	assert.Equal(t, "bookmarks", c.requestTags(t)["collection"])
}

func TestCorrelate_ResponseSideWins(t *testing.T) {
	c := newCorrelated(t)
	c.echo.GET("/", func(ec echo.Context) error {
		diag.AddTag(ec.Request().Context(), "outcome", "started")
		diag.AddTag(ec.Request().Context(), "uri.method", "OVERRIDDEN")
		diag.FromEcho(ec).AddTag("outcome", "finished")
		return ec.NoContent(http.StatusOK)
	})

	c.get("/")

	tags := c.requestTags(t)
	assert.Equal(t, "finished", tags["outcome"])
	assert.Equal(t, "OVERRIDDEN", tags["uri.method"])
}

func TestCorrelate_ReportsInternalErrorWithMergedTags(t *testing.T) {
	c := newCorrelated(t)
	c.echo.GET("/", func(ec echo.Context) error {
		diag.FromEcho(ec).AddTag("foo", "bar")
		diag.AddExtra(ec.Request().Context(), "uid", "12345")
		return apierror.Internal(errors.New("disk on fire"))
	})

	rec := c.get("/")

	events := c.events.Events()
	require.Len(t, events, 1)
	ev := events[0]
	assert.Equal(t, "bar", ev.Tags["foo"])
	assert.Equal(t, "Firefox", ev.Tags["ua.browser.family"])
	assert.Equal(t, "12345", ev.Extra["uid"])
	assert.Equal(t, "/", ev.Extra["uri.path"])
	assert.Equal(t, firefoxUA, ev.Extra["ua"])

	_, err := uuid.Parse(ev.Extra["request_id"])
	require.NoError(t, err)
	assert.Equal(t, rec.Header().Get(echo.HeaderXRequestID), ev.Extra["request_id"])

	require.Len(t, ev.Exceptions, 2)
	assert.Equal(t, "disk on fire", ev.Exceptions[0].Value)
}

func TestCorrelate_UserErrorCountedNotReported(t *testing.T) {
	c := newCorrelated(t)
	c.echo.GET("/", func(echo.Context) error {
		return apierror.QuotaExceeded()
	})

	c.get("/")

	assert.Empty(t, c.events.Events())
	assert.Equal(t, int64(1), c.metrics.Total("storage.quota.at_limit"))
	sample, ok := c.metrics.Last("storage.quota.at_limit")
	require.True(t, ok)
	assert.Equal(t, "Firefox", sample.Tags["ua.browser.family"])
}

func TestCorrelate_FrameworkErrors(t *testing.T) {
	c := newCorrelated(t)
	c.echo.GET("/teapot", func(echo.Context) error {
		return echo.NewHTTPError(http.StatusTeapot)
	})
	c.echo.GET("/broken", func(echo.Context) error {
		return echo.NewHTTPError(http.StatusBadGateway)
	})

	c.get("/missing")
	c.get("/teapot")
	assert.Empty(t, c.events.Events())

	c.get("/broken")
	require.Len(t, c.events.Events(), 1)
	assert.Equal(t, int64(1), c.metrics.Total("error.unclassified"))
}

func TestCorrelate_PendingEventsDrainedOnce(t *testing.T) {
	c := newCorrelated(t)
	c.echo.GET("/", func(ec echo.Context) error {
		diag.FromContext(ec.Request().Context()).Capture(report.NewEvent(report.LevelWarning, "request side"))
		diag.Pending(ec, report.NewEvent(report.LevelWarning, "response side"))
		return ec.NoContent(http.StatusOK)
	})

	c.get("/")

	var messages []string
	for _, ev := range c.events.Events() {
		messages = append(messages, ev.Message)
		assert.Equal(t, "Firefox", ev.Tags["ua.browser.family"])
	}
	assert.Equal(t, []string{"request side", "response side"}, messages)
}

func TestCorrelate_TimerStoppedOnPanic(t *testing.T) {
	c := newCorrelated(t)
	c.echo.GET("/", func(ec echo.Context) error {
		diag.FromEcho(ec).AddTag("foo", "bar")
		panic("handler exploded")
	})

	assert.Panics(t, func() { c.get("/") })

	assert.Equal(t, "bar", c.requestTags(t)["foo"])
}

func TestCorrelate_CanceledRequestStillReported(t *testing.T) {
	c := newCorrelated(t)
	c.echo.GET("/", func(ec echo.Context) error {
		<-ec.Request().Context().Done()
		return apierror.Canceled(ec.Request().Context().Err())
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	ctx, cancel := context.WithCancel(req.Context())
	cancel()
	serve(c.echo, req.WithContext(ctx))

	require.Len(t, c.events.Events(), 1)
	assert.Equal(t, int64(1), c.metrics.Total("storage.blocking.canceled"))
	assert.Len(t, c.metrics.Named("request.duration"), 1)
}
