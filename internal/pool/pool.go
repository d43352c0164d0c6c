// Package pool is the storage connection pool capability. Backends differ
// (pgx, database/sql over SQLite, DynamoDB sessions) but all run blocking
// calls on the shared Executor and report the same State snapshot.
package pool

import (
	"context"
	"time"
)

// State is a point-in-time snapshot of a pool. IdleConnections never exceeds
// ActiveConnections.
type State struct {
	ActiveConnections uint32 `json:"active_connections"`
	IdleConnections   uint32 `json:"idle_connections"`
}

// Busy is the number of connections checked out.
func (s State) Busy() uint32 {
	if s.IdleConnections > s.ActiveConnections {
		return 0
	}
	return s.ActiveConnections - s.IdleConnections
}

// Conn is a checked-out backend connection. Release returns it to the pool.
type Conn interface {
	Ping(ctx context.Context) error
	Release()
}

type Pool interface {
	// Acquire checks out a connection, failing with a pool exhausted or
	// pool timeout error when none frees up in time.
	Acquire(ctx context.Context) (Conn, error)
	// RunBlocking acquires a connection and runs fn with it on the blocking
	// executor. The connection is released when fn returns.
	RunBlocking(ctx context.Context, fn func(ctx context.Context, conn Conn) error) error
	State() State
	// MaxSize is the configured connection limit, or 0 if unbounded.
	MaxSize() uint32
	// Clone returns a handle sharing the same underlying pool.
	Clone() Pool
	Close()
}

// Run is RunBlocking for functions that produce a value.
func Run[T any](ctx context.Context, p Pool, fn func(ctx context.Context, conn Conn) (T, error)) (T, error) {
	var out T
	err := p.RunBlocking(ctx, func(ctx context.Context, conn Conn) error {
		v, err := fn(ctx, conn)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	return out, err
}

type Config struct {
	MaxSize        uint32
	AcquireTimeout time.Duration
}

func withAcquireTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
