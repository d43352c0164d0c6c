package metrics

//go:generate go tool mockery

import "time"

// Sink receives fire-and-forget metric submissions. Implementations may
// return an error; the Metrics emitter logs it and carries on.
type Sink interface {
	Count(name string, value int64, tags map[string]string) error
	Gauge(name string, value float64, tags map[string]string) error
	Timing(name string, value time.Duration, tags map[string]string) error
}

// NoopSink discards everything.
type NoopSink struct{}

func (NoopSink) Count(string, int64, map[string]string) error          { return nil }
func (NoopSink) Gauge(string, float64, map[string]string) error        { return nil }
func (NoopSink) Timing(string, time.Duration, map[string]string) error { return nil }
