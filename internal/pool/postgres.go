package pool

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	pkgerrors "github.com/pkg/errors"

	"syncserver/internal/apierror"
)

// Postgres is a Pool over pgxpool.
type Postgres struct {
	pool *pgxpool.Pool
	exec *Executor
	cfg  Config
}

func NewPostgres(ctx context.Context, dsn string, cfg Config, exec *Executor) (*Postgres, error) {
	pcfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres dsn: %w", err)
	}
	if cfg.MaxSize > 0 {
		pcfg.MaxConns = int32(cfg.MaxSize)
	}
	cfg.MaxSize = uint32(pcfg.MaxConns)

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}
	return &Postgres{pool: pool, exec: exec, cfg: cfg}, nil
}

// DB exposes the underlying pgx pool.
func (p *Postgres) DB() *pgxpool.Pool {
	return p.pool
}

func (p *Postgres) Acquire(ctx context.Context) (Conn, error) {
	ctx, cancel := withAcquireTimeout(ctx, p.cfg.AcquireTimeout)
	defer cancel()

	c, err := p.pool.Acquire(ctx)
	if err != nil {
		stat := p.pool.Stat()
		return nil, acquireError(err, uint32(stat.AcquiredConns()), p.cfg.MaxSize, "postgres")
	}
	return &PostgresConn{Conn: c}, nil
}

func (p *Postgres) RunBlocking(ctx context.Context, fn func(ctx context.Context, conn Conn) error) error {
	return runWithConn(ctx, p, p.exec, fn)
}

func (p *Postgres) State() State {
	stat := p.pool.Stat()
	return State{
		ActiveConnections: uint32(stat.TotalConns()),
		IdleConnections:   uint32(stat.IdleConns()),
	}
}

func (p *Postgres) MaxSize() uint32 {
	return p.cfg.MaxSize
}

func (p *Postgres) Clone() Pool {
	cp := *p
	return &cp
}

func (p *Postgres) Close() {
	p.pool.Close()
}

type PostgresConn struct {
	Conn *pgxpool.Conn
}

func (c *PostgresConn) Ping(ctx context.Context) error {
	if err := c.Conn.Ping(ctx); err != nil {
		return apierror.Database(pkgerrors.Wrap(err, "postgres ping"))
	}
	return nil
}

func (c *PostgresConn) Release() {
	c.Conn.Release()
}

// acquireError maps a failed checkout onto the taxonomy. A deadline with every
// connection checked out is exhaustion; otherwise the backend was slow.
func acquireError(err error, busy, maxSize uint32, backend string) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		if maxSize > 0 && busy >= maxSize {
			return apierror.PoolExhausted(err)
		}
		return apierror.PoolTimeout(err)
	case errors.Is(err, context.Canceled):
		return apierror.Canceled(err)
	default:
		return apierror.Database(pkgerrors.Wrapf(err, "acquire %s connection", backend))
	}
}

func runWithConn(ctx context.Context, p Pool, exec *Executor, fn func(ctx context.Context, conn Conn) error) error {
	return exec.Do(ctx, func(ctx context.Context) error {
		conn, err := p.Acquire(ctx)
		if err != nil {
			return err
		}
		defer conn.Release()
		return fn(ctx, conn)
	})
}
