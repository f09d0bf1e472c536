package executor

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/tuannm99/sqlab/internal/record"
)

// cursor adapts *sql.Rows to resultset.Cursor. It owns the connection it
// was opened on and releases both on Close. In split mode each batch is
// the result of the next pending statement.
type cursor struct {
	ctx    context.Context
	conn   *sql.Conn
	rows   *sql.Rows
	cancel context.CancelFunc
	start  time.Time
	log    *slog.Logger

	split   bool
	pending []string

	started bool
	closed  bool
	batches int
	nrows   int
	err     error

	dest []any
	ptrs []any
	vals []record.Value
}

func (c *cursor) NextBatch() bool {
	if c.closed || c.err != nil {
		return false
	}
	if c.started {
		if !c.advance() {
			return false
		}
	} else if c.rows == nil {
		return false
	}
	c.started = true

	cols, err := c.rows.Columns()
	if err != nil {
		c.err = err
		return false
	}
	c.dest = make([]any, len(cols))
	c.ptrs = make([]any, len(cols))
	for i := range c.dest {
		c.ptrs[i] = &c.dest[i]
	}
	c.vals = make([]record.Value, len(cols))
	c.batches++
	return true
}

func (c *cursor) advance() bool {
	if c.split {
		return c.query()
	}
	return c.rows.NextResultSet()
}

// query finishes the current statement and runs the next pending one.
func (c *cursor) query() bool {
	if c.rows != nil {
		if err := c.rows.Err(); err != nil {
			c.err = err
			return false
		}
		if err := c.rows.Close(); err != nil {
			c.err = err
			return false
		}
		c.rows = nil
	}
	if len(c.pending) == 0 {
		return false
	}

	stmt := c.pending[0]
	c.pending = c.pending[1:]
	rows, err := c.conn.QueryContext(c.ctx, stmt)
	if err != nil {
		c.err = err
		return false
	}
	c.rows = rows
	return true
}

func (c *cursor) Next() bool {
	if c.closed || c.err != nil || c.rows == nil || !c.rows.Next() {
		return false
	}
	if err := c.rows.Scan(c.ptrs...); err != nil {
		c.err = err
		return false
	}
	for i, v := range c.dest {
		c.vals[i] = record.FromDriver(v)
	}
	c.nrows++
	return true
}

func (c *cursor) Values() []record.Value { return c.vals }

func (c *cursor) Err() error {
	if c.err != nil {
		return c.err
	}
	if c.rows == nil {
		return nil
	}
	return c.rows.Err()
}

func (c *cursor) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true

	var err error
	if c.rows != nil {
		err = c.rows.Close()
	}
	err = errors.Join(err, c.conn.Close())
	c.cancel()

	c.log.Debug("script finished",
		"batches", c.batches,
		"rows", c.nrows,
		"elapsed", time.Since(c.start),
	)
	return err
}
