// Package metrics is the counter/gauge/timer handle used throughout request
// processing. A Metrics value wraps a Sink plus a default tag set; sink
// failures are logged and never returned to callers.
package metrics

import (
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"syncserver/internal/tags"
)

type Metrics struct {
	sink   Sink
	tags   *tags.Tags
	logger *slog.Logger
	warn   *rate.Sometimes
	now    func() time.Time
}

func New(sink Sink, logger *slog.Logger) *Metrics {
	if sink == nil {
		sink = NoopSink{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Metrics{
		sink:   sink,
		tags:   tags.New(),
		logger: logger,
		warn:   &rate.Sometimes{First: 1, Interval: time.Minute},
		now:    time.Now,
	}
}

// Noop returns a Metrics that discards everything.
func Noop() *Metrics {
	return New(NoopSink{}, nil)
}

// WithTags returns a copy whose default tags are extended by t.
func (m *Metrics) WithTags(t *tags.Tags) *Metrics {
	cp := *m
	cp.tags = m.tags.Merge(t)
	return &cp
}

// WithClock replaces the time source used by timers.
func (m *Metrics) WithClock(now func() time.Time) *Metrics {
	cp := *m
	cp.now = now
	return &cp
}

// Tags returns a copy of the default tags.
func (m *Metrics) Tags() *tags.Tags {
	return m.tags.Clone()
}

func (m *Metrics) Incr(label string) {
	m.CountWithTags(label, 1, nil)
}

func (m *Metrics) IncrWithTag(label, key, value string) {
	m.CountWithTags(label, 1, tags.With(key, value))
}

func (m *Metrics) IncrWithTags(label string, t *tags.Tags) {
	m.CountWithTags(label, 1, t)
}

func (m *Metrics) Count(label string, value int64) {
	m.CountWithTags(label, value, nil)
}

func (m *Metrics) CountWithTags(label string, value int64, t *tags.Tags) {
	if err := m.sink.Count(label, value, m.tags.Merge(t).Tags()); err != nil {
		m.failed("count", label, err)
	}
}

func (m *Metrics) Gauge(label string, value float64) {
	m.GaugeWithTags(label, value, nil)
}

func (m *Metrics) GaugeWithTags(label string, value float64, t *tags.Tags) {
	if err := m.sink.Gauge(label, value, m.tags.Merge(t).Tags()); err != nil {
		m.failed("gauge", label, err)
	}
}

func (m *Metrics) timing(label string, d time.Duration, t *tags.Tags) {
	if err := m.sink.Timing(label, d, t.Tags()); err != nil {
		m.failed("timing", label, err)
	}
}

func (m *Metrics) failed(kind, label string, err error) {
	m.warn.Do(func() {
		m.logger.Warn("metric send failed",
			slog.String("kind", kind),
			slog.String("label", label),
			slog.String("error", err.Error()))
	})
}

// StartTimer begins a Timer that emits label once on Stop or StopWith.
// Callers should defer Stop so the sample is sent on every return path.
func (m *Metrics) StartTimer(label string, t *tags.Tags) *Timer {
	return &Timer{
		metrics: m,
		label:   label,
		tags:    m.tags.Merge(t),
		start:   m.now(),
	}
}

// Timer emits exactly one timing sample. Stop and StopWith are safe to call
// any number of times; only the first call emits.
type Timer struct {
	metrics *Metrics
	label   string
	tags    *tags.Tags
	start   time.Time
	once    sync.Once
}

func (t *Timer) Stop() {
	t.StopWith(nil)
}

// StopWith emits the sample tagged with the start tags extended by extra.
func (t *Timer) StopWith(extra *tags.Tags) {
	t.once.Do(func() {
		elapsed := t.metrics.now().Sub(t.start)
		t.metrics.timing(t.label, elapsed, t.tags.Merge(extra))
	})
}
