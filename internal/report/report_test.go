package report_test

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"syncserver/internal/apierror"
	"syncserver/internal/metrics"
	"syncserver/internal/metrics/metricstest"
	"syncserver/internal/report"
	"syncserver/internal/report/mocks"
	"syncserver/internal/report/reporttest"
	"syncserver/internal/tags"
)

func newReporter(sink report.Sink) *report.Reporter {
	return report.New(sink, slog.New(slog.NewTextHandler(os.Stdout, nil)))
}

type chainError struct {
	name  string
	cause error
}

func (e *chainError) Error() string { return e.name }
func (e *chainError) Unwrap() error { return e.cause }

func TestEventFromError_RootCauseFirst(t *testing.T) {
	d := &chainError{name: "D"}
	c := &chainError{name: "C", cause: d}
	b := &chainError{name: "B", cause: c}
	a := &chainError{name: "A", cause: b}

	ev := report.EventFromError(a)

	require.Len(t, ev.Exceptions, 4)
	values := []string{ev.Exceptions[0].Value, ev.Exceptions[1].Value, ev.Exceptions[2].Value, ev.Exceptions[3].Value}
	assert.Equal(t, []string{"D", "C", "B", "A"}, values)
	assert.Equal(t, "report_test.chainError", ev.Exceptions[0].Type)
	assert.Equal(t, report.LevelError, ev.Level)
	assert.Equal(t, "A", ev.Message)
}

func TestEventFromError_StackOnlyWhereCaptured(t *testing.T) {
	root := errors.New("connection reset")
	err := apierror.Database(fmt.Errorf("query: %w", root))

	ev := report.EventFromError(err)

	require.Len(t, ev.Exceptions, 3)
	assert.Empty(t, ev.Exceptions[0].Stacktrace)
	assert.Empty(t, ev.Exceptions[1].Stacktrace)
	assert.Equal(t, "apierror.Error", ev.Exceptions[2].Type)
	require.NotEmpty(t, ev.Exceptions[2].Stacktrace)

	frames := ev.Exceptions[2].Stacktrace
	assert.Equal(t, "TestEventFromError_StackOnlyWhereCaptured", frames[len(frames)-1].Function)
}

func TestEventFromError_PkgErrorsStack(t *testing.T) {
	err := pkgerrors.Wrap(errors.New("io"), "reading")

	ev := report.EventFromError(err)

	var withStack int
	for _, ex := range ev.Exceptions {
		if len(ex.Stacktrace) > 0 {
			withStack++
		}
	}
	assert.Equal(t, 1, withStack)
}

func TestProcess_FourDeepChain(t *testing.T) {
	sink := reporttest.New()
	r := newReporter(sink)

	d := errors.New("D")
	c := fmt.Errorf("C: %w", d)
	b := fmt.Errorf("B: %w", c)
	a := apierror.Internal(b)

	reported := r.Process(context.Background(), a, tags.New(), metrics.Noop())

	assert.True(t, reported)
	events := sink.Events()
	require.Len(t, events, 1)
	require.Len(t, events[0].Exceptions, 4)
	assert.Equal(t, "D", events[0].Exceptions[0].Value)
	assert.Equal(t, "apierror.Error", events[0].Exceptions[3].Type)
}

func TestProcess_UserErrorCountedNotReported(t *testing.T) {
	sink := reporttest.New()
	metricSink := metricstest.New()
	r := newReporter(sink)

	ts := tags.With("ua.os.family", "Linux")
	reported := r.Process(context.Background(), apierror.InvalidGeneration(), ts, metrics.New(metricSink, nil))

	assert.False(t, reported)
	assert.Empty(t, sink.Events())
	s, ok := metricSink.Last("request.error.invalid_generation")
	require.True(t, ok)
	assert.Equal(t, "Linux", s.Tags["ua.os.family"])
}

func TestProcess_LabeledAndReported(t *testing.T) {
	sink := reporttest.New()
	metricSink := metricstest.New()
	r := newReporter(sink)

	ts := tags.With("uri.method", "GET")
	ts.AddExtra("uri.path", "/1.5/1/info/collections")

	reported := r.Process(context.Background(), apierror.PoolTimeout(errors.New("deadline")), ts, metrics.New(metricSink, nil))

	assert.True(t, reported)
	assert.Equal(t, int64(1), metricSink.Total("storage.pool.timeout"))
	events := sink.Events()
	require.Len(t, events, 1)
	assert.Equal(t, map[string]string{"uri.method": "GET"}, events[0].Tags)
	assert.Equal(t, map[string]string{"uri.path": "/1.5/1/info/collections"}, events[0].Extra)
}

func TestProcess_UnclassifiedWrapped(t *testing.T) {
	sink := reporttest.New()
	metricSink := metricstest.New()
	r := newReporter(sink)

	reported := r.Process(context.Background(), errors.New("surprise"), tags.New(), metrics.New(metricSink, nil))

	assert.True(t, reported)
	assert.Equal(t, int64(1), metricSink.Total("error.unclassified"))
	events := sink.Events()
	require.Len(t, events, 1)
	require.Len(t, events[0].Exceptions, 2)
	assert.Equal(t, "surprise", events[0].Exceptions[0].Value)
}

func TestProcess_Nil(t *testing.T) {
	sink := mocks.NewMockSink(t)
	r := newReporter(sink)

	assert.False(t, r.Process(context.Background(), nil, tags.New(), metrics.Noop()))
}

func TestReport_SinkErrorLogged(t *testing.T) {
	sink := mocks.NewMockSink(t)
	sink.EXPECT().Capture(mock.Anything, mock.Anything).Return(errors.New("sentry down")).Once()
	r := newReporter(sink)

	assert.NotPanics(t, func() {
		r.Report(context.Background(), report.NewEvent(report.LevelError, "boom"), tags.With("k", "v"))
	})
}

func TestReport_FillsTagsOnNilMaps(t *testing.T) {
	sink := mocks.NewMockSink(t)
	var captured *report.Event
	sink.EXPECT().Capture(mock.Anything, mock.Anything).
		Run(func(_ context.Context, ev *report.Event) { captured = ev }).
		Return(nil).Once()
	r := newReporter(sink)

	r.Report(context.Background(), &report.Event{Message: "m"}, tags.With("k", "v"))

	require.NotNil(t, captured)
	assert.Equal(t, "v", captured.Tags["k"])
	assert.NotNil(t, captured.Extra)
}

func TestLogSink(t *testing.T) {
	sink := report.NewLogSink(slog.New(slog.NewTextHandler(os.Stdout, nil)))

	err := sink.Capture(context.Background(), report.EventFromError(apierror.Internal(errors.New("x"))))

	assert.NoError(t, err)
}
