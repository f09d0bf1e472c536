// Package resultset turns the batches produced by one script execution into
// an ordered sequence of canonical row-strings.
package resultset

import (
	"context"
	"errors"
	"fmt"

	"github.com/tuannm99/sqlab/internal/policy"
	"github.com/tuannm99/sqlab/internal/record"
)

var (
	ErrExecutionFailed     = errors.New("resultset: execution failed")
	ErrColumnWidthExceeded = errors.New("resultset: requested column limit exceeds the row's actual column count")
)

// ColumnWidthExceededError reports the first row that had fewer values than
// the width in force for its batch.
type ColumnWidthExceededError struct {
	Batch int // zero-based batch index
	Row   int // zero-based row index inside the batch
	Want  int
	Have  int
}

func (e *ColumnWidthExceededError) Error() string {
	return fmt.Sprintf("%s: batch %d row %d has %d column(s), %d requested",
		ErrColumnWidthExceeded, e.Batch, e.Row, e.Have, e.Want)
}

func (e *ColumnWidthExceededError) Is(target error) bool {
	return target == ErrColumnWidthExceeded
}

// Cursor walks the batches of one execution. It follows the database/sql
// shape: NextBatch must be called before the first batch is read.
type Cursor interface {
	NextBatch() bool
	Next() bool
	// Values returns the current row as reported by the driver. The slice
	// may be reused by the next call to Next.
	Values() []record.Value
	Err() error
	Close() error
}

// Executor runs a whole script on one connection-scoped execution.
type Executor interface {
	Execute(ctx context.Context, script string) (Cursor, error)
}

// Sequence is the concatenation, in execution order, of every row of every
// batch of one script run.
type Sequence struct {
	Rows    []string
	Batches int
}

func (s Sequence) Len() int { return len(s.Rows) }

// Materialize executes script and renders every row under p.
//
// The width of a batch is resolved once, from p when it is fixed or from the
// first row's reported column count otherwise, and reused for every later row
// of that batch. A row shorter than that width aborts the run with a
// ColumnWidthExceededError. Nothing is returned on failure.
func Materialize(ctx context.Context, ex Executor, script string, p policy.Policy) (seq Sequence, err error) {
	cur, err := ex.Execute(ctx, script)
	if err != nil {
		return Sequence{}, fmt.Errorf("%w: %w", ErrExecutionFailed, err)
	}
	defer func() {
		if cerr := cur.Close(); cerr != nil && err == nil {
			seq, err = Sequence{}, fmt.Errorf("%w: close: %w", ErrExecutionFailed, cerr)
		}
	}()

	var rows []string
	batch := 0
	for cur.NextBatch() {
		width := -1
		for r := 0; cur.Next(); r++ {
			vals := cur.Values()
			if width < 0 {
				width = batchWidth(p, len(vals))
			}
			if len(vals) < width {
				return Sequence{}, &ColumnWidthExceededError{Batch: batch, Row: r, Want: width, Have: len(vals)}
			}
			rows = append(rows, record.NewRow(vals[:width]).String())
		}
		batch++
	}
	if err := cur.Err(); err != nil {
		return Sequence{}, fmt.Errorf("%w: %w", ErrExecutionFailed, err)
	}
	if err := ctx.Err(); err != nil {
		return Sequence{}, fmt.Errorf("%w: %w", ErrExecutionFailed, err)
	}

	return Sequence{Rows: rows, Batches: batch}, nil
}

func batchWidth(p policy.Policy, reported int) int {
	if w, ok := p.Width(); ok {
		return w
	}
	return reported
}
