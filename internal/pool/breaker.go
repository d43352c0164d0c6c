package pool

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"syncserver/internal/apierror"
)

type BreakerConfig struct {
	Name             string
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold float64
	MinRequests      uint32
}

// Breaker stops sending work to a backend that keeps failing. Only backend
// failures count against it; user errors pass through as successes.
type Breaker struct {
	Pool
	cb *gobreaker.CircuitBreaker
}

func WithBreaker(p Pool, cfg BreakerConfig, logger *slog.Logger) *Breaker {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				slog.String("name", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
		},
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			ae := apierror.Classify(err)
			return ae.Kind == apierror.KindUserInput || ae.Kind == apierror.KindDependency
		},
	})
	return &Breaker{Pool: p, cb: cb}
}

func (b *Breaker) RunBlocking(ctx context.Context, fn func(ctx context.Context, conn Conn) error) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, b.Pool.RunBlocking(ctx, fn)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return apierror.ResourceUnavailable(err)
	}
	return err
}

func (b *Breaker) Clone() Pool {
	return &Breaker{Pool: b.Pool.Clone(), cb: b.cb}
}

// BreakerState is the breaker's current state name.
func (b *Breaker) BreakerState() string {
	return b.cb.State().String()
}
