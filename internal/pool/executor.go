package pool

import (
	"context"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/semaphore"

	"syncserver/internal/apierror"
	"syncserver/internal/metrics"
)

const inFlightGauge = "storage.blocking.in_flight"

// Executor runs blocking backend work on a bounded set of goroutines, away
// from request handling. Every call is counted in an in-flight gauge from
// entry until the work has finished, whatever the outcome.
type Executor struct {
	sem      *semaphore.Weighted
	inFlight atomic.Int64
	metrics  *metrics.Metrics
}

func NewExecutor(workers int64, m *metrics.Metrics) *Executor {
	if m == nil {
		m = metrics.Noop()
	}
	return &Executor{
		sem:     semaphore.NewWeighted(max(1, workers)),
		metrics: m,
	}
}

// InFlight is the number of calls that have entered Do and not yet finished.
func (e *Executor) InFlight() int64 {
	return e.inFlight.Load()
}

// Do runs fn on a worker. If ctx ends first Do returns a canceled error
// without waiting; fn keeps its worker until it returns.
func (e *Executor) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	e.enter()

	if err := e.sem.Acquire(ctx, 1); err != nil {
		e.exit()
		return apierror.Canceled(err)
	}

	done := make(chan error, 1)
	go func() {
		var err error
		defer func() {
			if r := recover(); r != nil {
				err = apierror.Internal(fmt.Errorf("blocking operation panicked: %v", r))
			}
			e.exit()
			e.sem.Release(1)
			done <- err
		}()
		err = fn(ctx)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return apierror.Canceled(ctx.Err())
	}
}

func (e *Executor) enter() {
	e.metrics.Gauge(inFlightGauge, float64(e.inFlight.Add(1)))
}

func (e *Executor) exit() {
	e.metrics.Gauge(inFlightGauge, float64(e.inFlight.Add(-1)))
}
