package executor

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tuannm99/sqlab/internal"
	"github.com/tuannm99/sqlab/internal/resultset"
)

var ErrClosed = errors.New("executor: closed")

// Executor runs scripts through database/sql. Each Execute call holds one
// dedicated connection until the returned cursor is closed.
type Executor struct {
	db      *sql.DB
	driver  string
	split   bool
	timeout time.Duration
	log     *slog.Logger
}

// Open prepares a pool for conn. No connection is made until Execute.
func Open(conn internal.Connection, log *slog.Logger) (*Executor, error) {
	driver, dsn, err := normalize(conn.Driver, conn.DSN)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("executor: open %s: %w", driver, err)
	}
	// one script at a time; nothing to keep warm in between
	db.SetMaxIdleConns(0)

	return New(db, driver, conn.Timeout, log), nil
}

// New wraps an existing pool. A zero timeout means no deadline.
func New(db *sql.DB, driver string, timeout time.Duration, log *slog.Logger) *Executor {
	if log == nil {
		log = slog.Default()
	}
	return &Executor{
		db:      db,
		driver:  driver,
		split:   splitDrivers[driver],
		timeout: timeout,
		log:     log.With("driver", driver),
	}
}

func (e *Executor) Close() error {
	if e == nil || e.db == nil {
		return nil
	}
	err := e.db.Close()
	e.db = nil
	return err
}

// Execute runs script on one dedicated connection. Drivers that return
// every result set get the script as a single query. For the others the
// script is split at top-level semicolons and each statement becomes its
// own batch, in order. The first statement runs before Execute returns;
// driver errors are returned unchanged.
func (e *Executor) Execute(ctx context.Context, script string) (resultset.Cursor, error) {
	if e == nil || e.db == nil {
		return nil, ErrClosed
	}

	cancel := context.CancelFunc(func() {})
	if e.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
	}

	start := time.Now()
	conn, err := e.db.Conn(ctx)
	if err != nil {
		cancel()
		return nil, err
	}

	c := &cursor{
		ctx:    ctx,
		conn:   conn,
		cancel: cancel,
		start:  start,
		log:    e.log,
	}
	if e.split {
		c.split = true
		c.pending = splitStatements(script)
		e.log.Debug("executing script", "bytes", len(script), "statements", len(c.pending), "timeout", e.timeout)
		if !c.query() && c.err != nil {
			_ = c.Close()
			return nil, c.err
		}
		return c, nil
	}

	e.log.Debug("executing script", "bytes", len(script), "timeout", e.timeout)
	c.rows, err = conn.QueryContext(ctx, script)
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}
