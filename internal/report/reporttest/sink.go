// Package reporttest provides an in-memory report.Sink for tests.
package reporttest

import (
	"context"
	"sync"

	"syncserver/internal/report"
)

type Sink struct {
	mu     sync.Mutex
	events []*report.Event
}

func New() *Sink {
	return &Sink{}
}

func (s *Sink) Capture(_ context.Context, ev *report.Event) error {
	s.mu.Lock()
	s.events = append(s.events, ev)
	s.mu.Unlock()
	return nil
}

func (s *Sink) Events() []*report.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*report.Event, len(s.events))
	copy(out, s.events)
	return out
}
