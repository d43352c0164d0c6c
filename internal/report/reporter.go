// Package report turns request failures into counters and error-tracker
// events.
package report

//go:generate go tool mockery

import (
	"context"
	"errors"
	"log/slog"
	"maps"

	"syncserver/internal/apierror"
	"syncserver/internal/metrics"
	"syncserver/internal/tags"
)

// LevelTrace sits below slog.LevelDebug.
const LevelTrace = slog.Level(-8)

// Sink accepts finished events.
type Sink interface {
	Capture(ctx context.Context, ev *Event) error
}

type Reporter struct {
	sink   Sink
	logger *slog.Logger
}

func New(sink Sink, logger *slog.Logger) *Reporter {
	return &Reporter{sink: sink, logger: logger}
}

// Process handles the terminal error of a request: it bumps the error's
// metric label, then forwards reportable errors to the sink tagged with t.
// It reports whether an event was submitted.
func (r *Reporter) Process(ctx context.Context, err error, t *tags.Tags, m *metrics.Metrics) bool {
	if err == nil {
		return false
	}

	ae := apierror.Classify(err)
	if label := ae.MetricLabel(); label != "" {
		m.IncrWithTags(label, t)
	}

	if !ae.IsReportable() {
		r.logger.Log(ctx, LevelTrace, "not reporting error",
			slog.String("error", err.Error()),
			slog.String("kind", ae.Kind.String()))
		return false
	}

	// Unclassified errors are reported through their wrapper so the label
	// and captured stack travel with the chain.
	reported := err
	if !inChain(err, ae) {
		reported = ae
	}
	r.Report(ctx, EventFromError(reported), t)
	return true
}

// Report fills ev's tags and extras from t and submits it. Sink failures are
// logged.
func (r *Reporter) Report(ctx context.Context, ev *Event, t *tags.Tags) {
	if ev.Tags == nil {
		ev.Tags = map[string]string{}
	}
	if ev.Extra == nil {
		ev.Extra = map[string]string{}
	}
	maps.Copy(ev.Tags, t.Tags())
	maps.Copy(ev.Extra, t.Extra())

	if err := r.sink.Capture(ctx, ev); err != nil {
		r.logger.Error("failed to report error",
			slog.String("error", err.Error()),
			slog.String("message", ev.Message))
	}
}

func inChain(err error, target *apierror.Error) bool {
	for e := err; e != nil; e = errors.Unwrap(e) {
		if ae, ok := e.(*apierror.Error); ok && ae == target {
			return true
		}
	}
	return false
}
