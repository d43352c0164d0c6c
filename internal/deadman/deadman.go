// Package deadman derives a load-balancer health signal from pool snapshots.
//
// The pool is saturated when every connection it may open is busy and none
// is idle. Saturation that outlasts the grace period marks the process
// unhealthy so the load balancer sheds traffic away from it.
package deadman

import (
	"sync"
	"time"

	"syncserver/internal/pool"
)

type Deadman struct {
	maxSize uint32
	grace   time.Duration
	now     func() time.Time

	mu           sync.RWMutex
	clockStart   time.Time
	previousIdle uint32
}

// New builds a monitor for a pool of maxSize connections. A maxSize of 0
// means the limit is unknown and the pool is never considered saturated.
// A grace of 0 tracks saturation without ever reporting unhealthy.
func New(maxSize uint32, grace time.Duration) *Deadman {
	return &Deadman{maxSize: maxSize, grace: grace, now: time.Now}
}

// WithClock replaces the time source.
func (d *Deadman) WithClock(now func() time.Time) *Deadman {
	d.now = now
	return d
}

// Observe records a snapshot. It sets the saturation clock the first time
// the pool is seen saturated and clears it as soon as it is not.
func (d *Deadman) Observe(s pool.State) {
	now := d.now()

	d.mu.Lock()
	d.observe(s, now)
	d.mu.Unlock()
}

func (d *Deadman) observe(s pool.State, now time.Time) {
	saturated := d.maxSize > 0 && s.Busy() >= d.maxSize && s.IdleConnections == 0
	switch {
	case saturated && d.clockStart.IsZero():
		d.clockStart = now
	case !saturated:
		d.clockStart = time.Time{}
	}
	d.previousIdle = s.IdleConnections
}

type Status struct {
	Healthy bool
	State   pool.State
	// Saturated is true while the saturation clock runs; Duration is how
	// long it has been running.
	Saturated bool
	Duration  time.Duration
}

// Check observes s and evaluates health in one step.
func (d *Deadman) Check(s pool.State) Status {
	now := d.now()

	d.mu.Lock()
	d.observe(s, now)
	clockStart := d.clockStart
	d.mu.Unlock()

	return d.status(s, clockStart, now)
}

// Status evaluates health from the last observation.
func (d *Deadman) Status(s pool.State) Status {
	now := d.now()

	d.mu.RLock()
	clockStart := d.clockStart
	d.mu.RUnlock()

	return d.status(s, clockStart, now)
}

func (d *Deadman) status(s pool.State, clockStart, now time.Time) Status {
	st := Status{Healthy: true, State: s}
	if clockStart.IsZero() {
		return st
	}
	st.Saturated = true
	st.Duration = now.Sub(clockStart)
	if d.grace > 0 && st.Duration > d.grace {
		st.Healthy = false
	}
	return st
}

// ClockStart is when the current saturation began, or the zero time.
func (d *Deadman) ClockStart() time.Time {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.clockStart
}

// PreviousIdle is the idle count of the last observation.
func (d *Deadman) PreviousIdle() uint32 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.previousIdle
}

func (d *Deadman) MaxSize() uint32 {
	return d.maxSize
}
