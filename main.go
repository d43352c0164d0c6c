package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/multierr"
	"golang.org/x/net/netutil"

	"syncserver/internal/cache"
	"syncserver/internal/config"
	"syncserver/internal/deadman"
	"syncserver/internal/handler"
	"syncserver/internal/metrics"
	"syncserver/internal/middleware"
	"syncserver/internal/pool"
	"syncserver/internal/report"
	"syncserver/internal/server"
	"syncserver/internal/useragent"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	level, err := cfg.LogLevel()
	if err != nil {
		logger.Warn("falling back to info logging", slog.String("error", err.Error()))
	}
	logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("application failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) (err error) {
	sink, metricsHandler, closeSink, err := newMetricsSink(ctx, &cfg.Metrics, logger)
	if err != nil {
		return fmt.Errorf("failed to create metrics sink: %w", err)
	}
	defer func() { err = multierr.Append(err, closeSink()) }()
	m := metrics.New(sink, logger)

	reportSink, flushReports, err := newReportSink(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create error reporter: %w", err)
	}
	defer flushReports()
	reporter := report.New(reportSink, logger)

	exec := pool.NewExecutor(cfg.Database.BlockingWorkers, m)
	p, err := pool.Open(ctx, cfg.Database.URL, pool.Config{
		MaxSize:        cfg.Database.PoolMaxSize,
		AcquireTimeout: cfg.Database.AcquireTimeout,
	}, exec)
	if err != nil {
		return fmt.Errorf("failed to open storage pool: %w", err)
	}
	if b := cfg.Database.Breaker; b.Enabled {
		p = pool.WithBreaker(p, pool.BreakerConfig{
			Name:             "storage",
			MaxRequests:      b.MaxRequests,
			Interval:         b.Interval,
			Timeout:          b.Timeout,
			FailureThreshold: b.FailureThreshold,
			MinRequests:      b.MinRequests,
		}, logger)
	}

	uaCache, err := cache.NewUserAgents(cfg.Cache.UserAgentMaxSizePow2, useragent.Parse)
	if err != nil {
		p.Close()
		return fmt.Errorf("failed to create user agent cache: %w", err)
	}

	health := deadman.New(p.MaxSize(), cfg.Deadman.GracePeriod)
	if cfg.Deadman.GracePeriod == 0 {
		logger.Warn("DEADMAN_GRACE_PERIOD is not set, /__lbheartbeat__ will never report unhealthy")
	}

	st := &server.State{
		Pool: p,
		Secrets: server.Secrets{
			Master: cfg.Secrets.Master,
			Debug:  cfg.Secrets.Debug,
		},
		Limits: server.Limits{
			MaxRequestBytes:       cfg.Limits.MaxRequestBytes,
			MaxPostBytes:          cfg.Limits.MaxPostBytes,
			MaxPostRecords:        cfg.Limits.MaxPostRecords,
			MaxRecordPayloadBytes: cfg.Limits.MaxRecordPayloadBytes,
			MaxTotalBytes:         cfg.Limits.MaxTotalBytes,
			MaxTotalRecords:       cfg.Limits.MaxTotalRecords,
		},
		Metrics:  m,
		Deadman:  health,
		Reporter: reporter,
		UA:       uaCache,
		Version: handler.VersionInfo{
			Source:  cfg.Version.Source,
			Version: cfg.Version.Version,
			Commit:  cfg.Version.Commit,
			Build:   cfg.Version.Build,
		},
		CORS: middleware.CORSConfig{
			AllowOrigins: []string{cfg.CORS.AllowedOrigin},
			AllowMethods: cfg.CORS.AllowedMethods,
			AllowHeaders: cfg.CORS.AllowedHeaders,
			MaxAge:       cfg.CORS.MaxAge,
		},
		Logger:         logger,
		MetricsHandler: metricsHandler,
		Pprof:          cfg.Debug.Pprof,
	}
	defer st.Close()

	poolReporter := pool.NewReporter(p.Clone(), m, cfg.Deadman.ReportInterval, logger).
		Observe(health).
		Also(func(m *metrics.Metrics) { collectInfraMetrics(m, uaCache) })
	go poolReporter.Run(ctx)

	e := server.New(st)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("starting HTTP server",
		slog.String("addr", addr),
		slog.Int("max_connections", cfg.Server.MaxConnections))

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to create HTTP listener: %w", err)
	}
	if cfg.Server.MaxConnections > 0 {
		listener = netutil.LimitListener(listener, cfg.Server.MaxConnections)
	}

	httpServer := &http.Server{
		Handler:        e,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: 1 << 14, // 16KB
	}

	serveErr := make(chan error, 1)
	go func() {
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		return fmt.Errorf("http server failed: %w", err)
	}
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown failed: %w", err)
	}
	return nil
}

func newMetricsSink(ctx context.Context, cfg *config.MetricsConfig, logger *slog.Logger) (metrics.Sink, http.Handler, func() error, error) {
	noClose := func() error { return nil }

	switch cfg.Backend {
	case config.MetricsStatsd:
		s, err := metrics.NewStatsdSink(cfg.StatsdHost, cfg.StatsdPort, cfg.Label)
		if err != nil {
			return nil, nil, nil, err
		}
		logger.Info("sending metrics to statsd",
			slog.String("host", cfg.StatsdHost),
			slog.Int("port", cfg.StatsdPort))
		return s, nil, s.Close, nil
	case config.MetricsPrometheus:
		s := metrics.NewPrometheusSink(cfg.Label, nil)
		return s, s.Handler(), noClose, nil
	case config.MetricsPostgres:
		db, err := pgxpool.New(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to connect metrics database: %w", err)
		}
		rec := metrics.NewRecorder(metrics.NewPgxWriter(db), metrics.RecorderConfig{
			BufferSize:     cfg.BufferSize,
			FlushThreshold: cfg.FlushThreshold,
			FlushInterval:  cfg.FlushInterval,
		}, logger)
		rec.Start(ctx)
		return rec, nil, func() error {
			rec.Close()
			db.Close()
			return nil
		}, nil
	default:
		return metrics.NoopSink{}, nil, noClose, nil
	}
}

func newReportSink(cfg *config.Config, logger *slog.Logger) (report.Sink, func(), error) {
	if cfg.Report.SentryDSN == "" {
		logger.Info("SENTRY_DSN not set, error reports go to the log")
		return report.NewLogSink(logger), func() {}, nil
	}
	s, err := report.NewSentrySink(report.SentryConfig{
		DSN:         cfg.Report.SentryDSN,
		Environment: cfg.Report.Environment,
		Release:     cfg.Version.Version,
	})
	if err != nil {
		return nil, nil, err
	}
	return s, func() { s.Flush(cfg.Report.FlushTimeout) }, nil
}

func collectInfraMetrics(m *metrics.Metrics, uaCache *cache.UserAgents) {
	hits, misses, ratio := uaCache.Stats()

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	m.Gauge("cache.user_agent.hits", float64(hits))
	m.Gauge("cache.user_agent.misses", float64(misses))
	m.Gauge("cache.user_agent.hit_ratio", ratio)
	m.Gauge("process.goroutines", float64(runtime.NumGoroutine()))
	m.Gauge("process.heap_alloc_mb", float64(memStats.HeapAlloc)/1024/1024)
}
