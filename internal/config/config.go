package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"syncserver/internal/report"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Metrics  MetricsConfig
	Report   ReportConfig
	Deadman  DeadmanConfig
	CORS     CORSConfig
	Limits   LimitsConfig
	Secrets  SecretsConfig
	Debug    DebugConfig
	Cache    CacheConfig
	Log      LogConfig
	Version  VersionConfig
}

type ServerConfig struct {
	Host            string        `env:"SERVER_HOST" envDefault:"localhost"`
	Port            int           `env:"SERVER_PORT" envDefault:"8000"`
	MaxConnections  int           `env:"SERVER_MAX_CONNECTIONS" envDefault:"10000"`
	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"30s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"30s"`
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" envDefault:"120s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

type DatabaseConfig struct {
	URL            string        `env:"DATABASE_URL" envDefault:"sqlite://:memory:"`
	PoolMaxSize    uint32        `env:"DATABASE_POOL_MAX_SIZE" envDefault:"10"`
	AcquireTimeout time.Duration `env:"DATABASE_POOL_CONNECTION_TIMEOUT" envDefault:"30s"`
	// BlockingWorkers bounds concurrent blocking backend calls.
	BlockingWorkers int64 `env:"DATABASE_BLOCKING_WORKERS" envDefault:"64"`
	Breaker         BreakerConfig
}

type BreakerConfig struct {
	Enabled          bool          `env:"DATABASE_BREAKER_ENABLED" envDefault:"false"`
	MaxRequests      uint32        `env:"DATABASE_BREAKER_MAX_REQUESTS" envDefault:"1"`
	Interval         time.Duration `env:"DATABASE_BREAKER_INTERVAL" envDefault:"60s"`
	Timeout          time.Duration `env:"DATABASE_BREAKER_TIMEOUT" envDefault:"30s"`
	FailureThreshold float64       `env:"DATABASE_BREAKER_FAILURE_THRESHOLD" envDefault:"0.5"`
	MinRequests      uint32        `env:"DATABASE_BREAKER_MIN_REQUESTS" envDefault:"20"`
}

const (
	MetricsNoop       = "noop"
	MetricsStatsd     = "statsd"
	MetricsPrometheus = "prometheus"
	MetricsPostgres   = "postgres"
)

type MetricsConfig struct {
	Backend    string `env:"METRICS_BACKEND" envDefault:"statsd"`
	StatsdHost string `env:"STATSD_HOST" envDefault:"localhost"`
	StatsdPort int    `env:"STATSD_PORT" envDefault:"8125"`
	Label      string `env:"STATSD_LABEL" envDefault:"syncstorage"`
	// PostgresURL is where the postgres backend writes samples.
	PostgresURL    string        `env:"METRICS_POSTGRES_URL"`
	BufferSize     int           `env:"METRICS_BUFFER_SIZE" envDefault:"10000"`
	FlushThreshold int           `env:"METRICS_FLUSH_THRESHOLD" envDefault:"1000"`
	FlushInterval  time.Duration `env:"METRICS_FLUSH_INTERVAL" envDefault:"1s"`
}

type ReportConfig struct {
	SentryDSN    string        `env:"SENTRY_DSN"`
	Environment  string        `env:"SENTRY_ENVIRONMENT" envDefault:"dev"`
	FlushTimeout time.Duration `env:"SENTRY_FLUSH_TIMEOUT" envDefault:"2s"`
}

type DeadmanConfig struct {
	// GracePeriod is how long the pool may stay saturated before
	// /__lbheartbeat__ reports unhealthy. Zero never reports unhealthy.
	GracePeriod    time.Duration `env:"DEADMAN_GRACE_PERIOD"`
	ReportInterval time.Duration `env:"DEADMAN_REPORT_INTERVAL" envDefault:"10s"`
}

type CORSConfig struct {
	AllowedOrigin  string   `env:"CORS_ALLOWED_ORIGIN" envDefault:"*"`
	AllowedMethods []string `env:"CORS_ALLOWED_METHODS" envDefault:"DELETE,GET,POST,PUT"`
	AllowedHeaders []string `env:"CORS_ALLOWED_HEADERS" envDefault:"Authorization,Content-Type,UserAgent,X-Client-State,X-If-Modified-Since,X-If-Unmodified-Since,X-Verify-Code"`
	MaxAge         int      `env:"CORS_MAX_AGE" envDefault:"1728000"`
}

type LimitsConfig struct {
	MaxRequestBytes       int64 `env:"LIMITS_MAX_REQUEST_BYTES" envDefault:"2625536"`
	MaxPostBytes          int64 `env:"LIMITS_MAX_POST_BYTES" envDefault:"2621440"`
	MaxPostRecords        int64 `env:"LIMITS_MAX_POST_RECORDS" envDefault:"100"`
	MaxRecordPayloadBytes int64 `env:"LIMITS_MAX_RECORD_PAYLOAD_BYTES" envDefault:"2621440"`
	MaxTotalBytes         int64 `env:"LIMITS_MAX_TOTAL_BYTES" envDefault:"262144000"`
	MaxTotalRecords       int64 `env:"LIMITS_MAX_TOTAL_RECORDS" envDefault:"10000"`
}

type SecretsConfig struct {
	Master string `env:"MASTER_SECRET,notEmpty"`
	Debug  string `env:"DEBUG_SECRET"`
}

type DebugConfig struct {
	Pprof bool `env:"DEBUG_PPROF" envDefault:"false"`
}

type CacheConfig struct {
	// UserAgentMaxSizePow2 caps the parsed User-Agent cache at 2^n bytes.
	UserAgentMaxSizePow2 int `env:"CACHE_USER_AGENT_MAX_SIZE_POW2" envDefault:"24"`
}

type LogConfig struct {
	Level string `env:"LOG_LEVEL" envDefault:"info"`
}

type VersionConfig struct {
	Source  string `env:"VERSION_SOURCE" envDefault:"https://github.com/mozilla-services/syncstorage-rs"`
	Version string `env:"VERSION" envDefault:"dev"`
	Commit  string `env:"VERSION_COMMIT"`
	Build   string `env:"VERSION_BUILD"`
}

var ErrUnknownMetricsBackend = errors.New("unknown metrics backend")

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Metrics.Backend {
	case MetricsNoop, MetricsStatsd, MetricsPrometheus:
	case MetricsPostgres:
		if c.Metrics.PostgresURL == "" {
			return errors.New("METRICS_POSTGRES_URL is required for the postgres metrics backend")
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownMetricsBackend, c.Metrics.Backend)
	}
	if c.Deadman.GracePeriod < 0 {
		return errors.New("DEADMAN_GRACE_PERIOD must not be negative")
	}
	return nil
}

// LogLevel maps LOG_LEVEL to a slog level. trace sits below debug.
func (c *Config) LogLevel() (slog.Level, error) {
	switch strings.ToLower(c.Log.Level) {
	case "trace":
		return report.LevelTrace, nil
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", c.Log.Level)
	}
}
