package pool

import (
	"context"
	"log/slog"
	"os"
	"time"

	"syncserver/internal/metrics"
	"syncserver/internal/tags"
)

const DefaultReportInterval = 10 * time.Second

// Observer receives every snapshot the reporter takes.
type Observer interface {
	Observe(s State)
}

// Reporter periodically publishes pool gauges and feeds observers.
type Reporter struct {
	pool      Pool
	metrics   *metrics.Metrics
	logger    *slog.Logger
	interval  time.Duration
	observers []Observer
	extra     []func(m *metrics.Metrics)
}

func NewReporter(p Pool, m *metrics.Metrics, interval time.Duration, logger *slog.Logger) *Reporter {
	if interval <= 0 {
		interval = DefaultReportInterval
	}
	hostname, err := os.Hostname()
	if err != nil {
		logger.Warn("failed to resolve hostname", slog.String("error", err.Error()))
	}
	return &Reporter{
		pool:     p,
		metrics:  m.WithTags(tags.With("hostname", hostname)),
		logger:   logger,
		interval: interval,
	}
}

// Observe registers o to receive each snapshot.
func (r *Reporter) Observe(o Observer) *Reporter {
	r.observers = append(r.observers, o)
	return r
}

// Also runs fn on every tick with the reporter's tagged metrics.
func (r *Reporter) Also(fn func(m *metrics.Metrics)) *Reporter {
	r.extra = append(r.extra, fn)
	return r
}

// Run reports immediately and then every interval until ctx is done.
func (r *Reporter) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		r.Tick()
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Tick takes one snapshot.
func (r *Reporter) Tick() {
	state := r.pool.State()

	r.metrics.Gauge("storage.pool.connections.active", float64(state.Busy()))
	r.metrics.Gauge("storage.pool.connections.idle", float64(state.IdleConnections))

	for _, o := range r.observers {
		o.Observe(state)
	}
	for _, fn := range r.extra {
		fn(r.metrics)
	}
}
