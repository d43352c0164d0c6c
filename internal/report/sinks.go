package report

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"
)

// LogSink writes events to a structured logger. It is the fallback when no
// Sentry DSN is configured.
type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Capture(ctx context.Context, ev *Event) error {
	types := make([]string, len(ev.Exceptions))
	for i, e := range ev.Exceptions {
		types[i] = e.Type
	}
	level := slog.LevelError
	if ev.Level == LevelWarning {
		level = slog.LevelWarn
	}
	s.logger.Log(ctx, level, ev.Message,
		slog.Any("exceptions", types),
		slog.Any("tags", ev.Tags),
		slog.Any("extra", ev.Extra))
	return nil
}

var ErrNotSent = errors.New("sentry dropped event")

// SentrySink forwards events to Sentry.
type SentrySink struct {
	client *sentry.Client
}

type SentryConfig struct {
	DSN         string
	Environment string
	Release     string
}

func NewSentrySink(cfg SentryConfig) (*SentrySink, error) {
	client, err := sentry.NewClient(sentry.ClientOptions{
		Dsn:         cfg.DSN,
		Environment: cfg.Environment,
		Release:     cfg.Release,
	})
	if err != nil {
		return nil, err
	}
	return &SentrySink{client: client}, nil
}

func (s *SentrySink) Capture(_ context.Context, ev *Event) error {
	if id := s.client.CaptureEvent(toSentry(ev), nil, sentry.NewScope()); id == nil {
		return ErrNotSent
	}
	return nil
}

// Flush waits up to timeout for queued events to be delivered.
func (s *SentrySink) Flush(timeout time.Duration) bool {
	return s.client.Flush(timeout)
}

func toSentry(ev *Event) *sentry.Event {
	out := sentry.NewEvent()
	out.Message = ev.Message
	out.Level = sentry.Level(ev.Level)
	out.Tags = ev.Tags
	for k, v := range ev.Extra {
		out.Extra[k] = v
	}
	for _, e := range ev.Exceptions {
		ex := sentry.Exception{Type: e.Type, Value: e.Value}
		if len(e.Stacktrace) > 0 {
			frames := make([]sentry.Frame, len(e.Stacktrace))
			for i, f := range e.Stacktrace {
				frames[i] = sentry.Frame{
					Function: f.Function,
					Module:   f.Module,
					AbsPath:  f.File,
					Lineno:   f.Line,
					InApp:    true,
				}
			}
			ex.Stacktrace = &sentry.Stacktrace{Frames: frames}
		}
		out.Exception = append(out.Exception, ex)
	}
	return out
}
