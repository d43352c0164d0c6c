// Package diag carries per-request diagnostic state: tags added by handlers
// and events raised by middleware that never reach the error handler.
//
// A request has two scopes. The request-side scope travels in the request's
// context.Context and is visible to anything below the handler; the
// response-side scope lives in the echo.Context store and is what code
// finishing a response writes to. The correlation middleware merges both.
package diag

import (
	"context"
	"sync"

	"github.com/labstack/echo/v4"

	"syncserver/internal/report"
	"syncserver/internal/tags"
)

type Scope struct {
	mu     sync.Mutex
	tags   *tags.Tags
	events []*report.Event
	origin string
}

func NewScope() *Scope {
	return &Scope{tags: tags.New()}
}

func (s *Scope) AddTag(key, value string) {
	s.mu.Lock()
	s.tags.AddTag(key, value)
	s.mu.Unlock()
}

func (s *Scope) AddExtra(key, value string) {
	s.mu.Lock()
	s.tags.AddExtra(key, value)
	s.mu.Unlock()
}

func (s *Scope) Extend(t *tags.Tags) {
	s.mu.Lock()
	s.tags.Extend(t)
	s.mu.Unlock()
}

// Tags returns a snapshot of the scope's tags.
func (s *Scope) Tags() *tags.Tags {
	if s == nil {
		return tags.New()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tags.Clone()
}

// SetOrigin records which upstream service originated the request.
func (s *Scope) SetOrigin(origin string) {
	s.mu.Lock()
	s.origin = origin
	s.mu.Unlock()
}

func (s *Scope) Origin() string {
	if s == nil {
		return ""
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.origin
}

// Capture queues ev to be reported when the request finishes.
func (s *Scope) Capture(ev *report.Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	s.mu.Unlock()
}

func (s *Scope) CaptureError(err error) {
	s.Capture(report.EventFromError(err))
}

// Drain returns the queued events and empties the queue.
func (s *Scope) Drain() []*report.Event {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.events
	s.events = nil
	return out
}

type ctxKey struct{}

func WithScope(ctx context.Context, s *Scope) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the request-side scope, or nil.
func FromContext(ctx context.Context) *Scope {
	s, _ := ctx.Value(ctxKey{}).(*Scope)
	return s
}

// AddTag adds a tag to the request-side scope of ctx, if any.
func AddTag(ctx context.Context, key, value string) {
	if s := FromContext(ctx); s != nil {
		s.AddTag(key, value)
	}
}

// AddExtra adds an extra to the request-side scope of ctx, if any.
func AddExtra(ctx context.Context, key, value string) {
	if s := FromContext(ctx); s != nil {
		s.AddExtra(key, value)
	}
}

const echoKey = "diag.scope"

// Attach installs s as the response-side scope of c.
func Attach(c echo.Context, s *Scope) {
	c.Set(echoKey, s)
}

// FromEcho returns the response-side scope of c, or nil.
func FromEcho(c echo.Context) *Scope {
	s, _ := c.Get(echoKey).(*Scope)
	return s
}

// Pending captures ev on the response-side scope of c, falling back to the
// request-side scope.
func Pending(c echo.Context, ev *report.Event) {
	if s := FromEcho(c); s != nil {
		s.Capture(ev)
		return
	}
	if s := FromContext(c.Request().Context()); s != nil {
		s.Capture(ev)
	}
}
