// Package metricstest provides an in-memory metrics.Sink for tests.
package metricstest

import (
	"maps"
	"sync"
	"time"

	"syncserver/internal/metrics"
)

type Sample struct {
	Kind     metrics.SampleKind
	Name     string
	Value    float64
	Duration time.Duration
	Tags     map[string]string
}

// Sink records every submission.
type Sink struct {
	mu      sync.Mutex
	samples []Sample
}

func New() *Sink {
	return &Sink{}
}

func (s *Sink) Count(name string, value int64, tags map[string]string) error {
	s.add(Sample{Kind: metrics.KindCount, Name: name, Value: float64(value), Tags: tags})
	return nil
}

func (s *Sink) Gauge(name string, value float64, tags map[string]string) error {
	s.add(Sample{Kind: metrics.KindGauge, Name: name, Value: value, Tags: tags})
	return nil
}

func (s *Sink) Timing(name string, value time.Duration, tags map[string]string) error {
	s.add(Sample{Kind: metrics.KindTiming, Name: name, Duration: value, Tags: tags})
	return nil
}

func (s *Sink) add(sample Sample) {
	sample.Tags = maps.Clone(sample.Tags)
	s.mu.Lock()
	s.samples = append(s.samples, sample)
	s.mu.Unlock()
}

// Samples returns every recorded sample in submission order.
func (s *Sink) Samples() []Sample {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Sample, len(s.samples))
	copy(out, s.samples)
	return out
}

// Named returns the samples recorded under name.
func (s *Sink) Named(name string) []Sample {
	var out []Sample
	for _, sample := range s.Samples() {
		if sample.Name == name {
			out = append(out, sample)
		}
	}
	return out
}

// Total sums the counter values recorded under name.
func (s *Sink) Total(name string) int64 {
	var total int64
	for _, sample := range s.Named(name) {
		if sample.Kind == metrics.KindCount {
			total += int64(sample.Value)
		}
	}
	return total
}

// Last returns the most recent sample recorded under name.
func (s *Sink) Last(name string) (Sample, bool) {
	named := s.Named(name)
	if len(named) == 0 {
		return Sample{}, false
	}
	return named[len(named)-1], true
}
