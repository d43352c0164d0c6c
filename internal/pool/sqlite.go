package pool

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	pkgerrors "github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"syncserver/internal/apierror"
)

const defaultSQLiteMaxSize = 4

// SQLite is a Pool over database/sql, used for local runs and tests.
type SQLite struct {
	db   *sqlx.DB
	exec *Executor
	cfg  Config
}

// NewSQLite opens path, which may be ":memory:".
func NewSQLite(ctx context.Context, path string, cfg Config, exec *Executor) (*SQLite, error) {
	db, err := sqlx.ConnectContext(ctx, "sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if cfg.MaxSize == 0 {
		cfg.MaxSize = defaultSQLiteMaxSize
	}
	db.SetMaxOpenConns(int(cfg.MaxSize))
	db.SetMaxIdleConns(int(cfg.MaxSize))
	return &SQLite{db: db, exec: exec, cfg: cfg}, nil
}

// DB exposes the underlying handle.
func (p *SQLite) DB() *sqlx.DB {
	return p.db
}

func (p *SQLite) Acquire(ctx context.Context) (Conn, error) {
	ctx, cancel := withAcquireTimeout(ctx, p.cfg.AcquireTimeout)
	defer cancel()

	c, err := p.db.Connx(ctx)
	if err != nil {
		return nil, acquireError(err, uint32(p.db.Stats().InUse), p.cfg.MaxSize, "sqlite")
	}
	return &SQLiteConn{Conn: c}, nil
}

func (p *SQLite) RunBlocking(ctx context.Context, fn func(ctx context.Context, conn Conn) error) error {
	return runWithConn(ctx, p, p.exec, fn)
}

func (p *SQLite) State() State {
	stats := p.db.Stats()
	return State{
		ActiveConnections: uint32(stats.OpenConnections),
		IdleConnections:   uint32(stats.Idle),
	}
}

func (p *SQLite) MaxSize() uint32 {
	return p.cfg.MaxSize
}

func (p *SQLite) Clone() Pool {
	cp := *p
	return &cp
}

func (p *SQLite) Close() {
	_ = p.db.Close()
}

type SQLiteConn struct {
	Conn *sqlx.Conn
}

func (c *SQLiteConn) Ping(ctx context.Context) error {
	if err := c.Conn.PingContext(ctx); err != nil {
		return apierror.Database(pkgerrors.Wrap(err, "sqlite ping"))
	}
	return nil
}

func (c *SQLiteConn) Release() {
	_ = c.Conn.Close()
}
