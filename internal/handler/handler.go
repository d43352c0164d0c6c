package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"syncserver/internal/apierror"
	"syncserver/internal/pool"
)

const (
	statusOK      = "Ok"
	statusErr     = "Err"
	statusUnknown = "Unknown"
)

var errTestError = errors.New("oh noes")

// VersionInfo is served by /__version__.
type VersionInfo struct {
	Source  string `json:"source"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Build   string `json:"build"`
}

type heartbeatResponse struct {
	Status      string `json:"status"`
	Database    string `json:"database"`
	DatabaseMsg string `json:"database_msg,omitempty"`
	Version     string `json:"version"`
}

type lbHeartbeatResponse struct {
	ActiveConnections uint32 `json:"active_connections"`
	IdleConnections   uint32 `json:"idle_connections"`
	DurationMS        *int64 `json:"duration_ms,omitempty"`
}

type Handler struct {
	pool    Pool
	health  HealthMonitor
	version VersionInfo
	logger  *slog.Logger
}

func New(p Pool, health HealthMonitor, version VersionInfo, logger *slog.Logger) *Handler {
	return &Handler{
		pool:    p,
		health:  health,
		version: version,
		logger:  logger,
	}
}

func (h *Handler) Register(e *echo.Echo) {
	e.GET("/__heartbeat__", h.Heartbeat)
	e.GET("/__lbheartbeat__", h.LBHeartbeat)
	e.GET("/__version__", Handle(http.StatusOK, h.Version))
	e.GET("/__error__", Handle(http.StatusOK, h.TestError))
}

// Handle adapts fn to echo. A result is rendered as JSON with status; an
// error is returned to the pipeline untouched.
func Handle[T any](status int, fn func(c echo.Context) (T, error)) echo.HandlerFunc {
	return func(c echo.Context) error {
		res, err := fn(c)
		if err != nil {
			return err
		}
		return c.JSON(status, res)
	}
}

// Heartbeat pings the storage backend through the blocking pool.
func (h *Handler) Heartbeat(c echo.Context) error {
	resp := heartbeatResponse{
		Status:   statusOK,
		Database: statusOK,
		Version:  h.version.Version,
	}

	err := h.pool.RunBlocking(c.Request().Context(), func(ctx context.Context, conn pool.Conn) error {
		return conn.Ping(ctx)
	})
	if err != nil {
		h.logger.Error("heartbeat database check failed", slog.String("error", err.Error()))
		resp.Status = statusErr
		resp.Database = statusUnknown
		resp.DatabaseMsg = "check failed"
		return c.JSON(http.StatusServiceUnavailable, resp)
	}

	return c.JSON(http.StatusOK, resp)
}

// LBHeartbeat answers the load balancer. It turns 503 once the pool has
// been saturated for longer than the grace period.
func (h *Handler) LBHeartbeat(c echo.Context) error {
	st := h.health.Check(h.pool.State())

	resp := lbHeartbeatResponse{
		ActiveConnections: st.State.Busy(),
		IdleConnections:   st.State.IdleConnections,
	}
	if st.Saturated {
		ms := st.Duration.Milliseconds()
		resp.DurationMS = &ms
	}

	if !st.Healthy {
		h.logger.Warn("pool saturated past grace period",
			slog.Uint64("active_connections", uint64(resp.ActiveConnections)),
			slog.Duration("duration", st.Duration))
		return c.JSON(http.StatusServiceUnavailable, resp)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) Version(echo.Context) (VersionInfo, error) {
	return h.version, nil
}

// TestError fails on purpose so error reporting can be checked end to end.
func (h *Handler) TestError(echo.Context) (struct{}, error) {
	h.logger.Error("test error")
	return struct{}{}, apierror.Internal(errTestError)
}
