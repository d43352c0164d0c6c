package handler

import (
	"context"

	"syncserver/internal/deadman"
	"syncserver/internal/pool"
)

//go:generate go tool mockery

type Pool interface {
	RunBlocking(ctx context.Context, fn func(ctx context.Context, conn pool.Conn) error) error
	State() pool.State
}

type HealthMonitor interface {
	Check(s pool.State) deadman.Status
}
