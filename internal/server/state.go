// Package server assembles the HTTP surface: the process-wide State and the
// echo instance with its middleware in pipeline order.
package server

import (
	"log/slog"
	"net/http"

	"syncserver/internal/cache"
	"syncserver/internal/deadman"
	"syncserver/internal/handler"
	"syncserver/internal/metrics"
	"syncserver/internal/middleware"
	"syncserver/internal/pool"
	"syncserver/internal/report"
)

type Secrets struct {
	// Master signs tokens issued to clients.
	Master string
	// Debug unlocks the pprof routes. Empty leaves them open.
	Debug string
}

// Limits bound what a single request may carry.
type Limits struct {
	MaxRequestBytes       int64
	MaxPostBytes          int64
	MaxPostRecords        int64
	MaxRecordPayloadBytes int64
	MaxTotalBytes         int64
	MaxTotalRecords       int64
}

// State is built once at startup and shared by every request. It owns the
// pool; the metrics handle and deadman are shared by reference with the
// background reporter.
type State struct {
	Pool     pool.Pool
	Secrets  Secrets
	Limits   Limits
	Metrics  *metrics.Metrics
	Deadman  *deadman.Deadman
	Reporter *report.Reporter
	UA       *cache.UserAgents
	Version  handler.VersionInfo
	CORS     middleware.CORSConfig
	Logger   *slog.Logger

	// MetricsHandler serves /metrics when the sink exposes one.
	MetricsHandler http.Handler
	Pprof          bool
}

// Close releases what State owns.
func (s *State) Close() {
	if s.Pool != nil {
		s.Pool.Close()
	}
	if s.UA != nil {
		s.UA.Close()
	}
}
