package resultset

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tuannm99/sqlab/internal/policy"
	"github.com/tuannm99/sqlab/internal/record"
)

// ---- fakes ----

type fakeCursor struct {
	batches [][][]record.Value
	batch   int
	row     int
	err     error
	closed  int
}

func (c *fakeCursor) NextBatch() bool {
	c.batch++
	c.row = 0
	return c.batch <= len(c.batches)
}

func (c *fakeCursor) Next() bool {
	if c.batch < 1 || c.batch > len(c.batches) {
		return false
	}
	if c.row >= len(c.batches[c.batch-1]) {
		return false
	}
	c.row++
	return true
}

func (c *fakeCursor) Values() []record.Value { return c.batches[c.batch-1][c.row-1] }

func (c *fakeCursor) Err() error { return c.err }

func (c *fakeCursor) Close() error {
	c.closed++
	return nil
}

type fakeExecutor struct {
	cur     *fakeCursor
	err     error
	scripts []string
}

func (f *fakeExecutor) Execute(_ context.Context, script string) (Cursor, error) {
	f.scripts = append(f.scripts, script)
	if f.err != nil {
		return nil, f.err
	}
	return f.cur, nil
}

func vals(vs ...any) []record.Value {
	out := make([]record.Value, len(vs))
	for i, v := range vs {
		out[i] = record.FromDriver(v)
	}
	return out
}

func fixed(t *testing.T, n int) policy.Policy {
	t.Helper()
	p, err := policy.FixedWidth(n)
	require.NoError(t, err)
	return p
}

// ---- tests ----

func TestMaterialize_ConcatenatesBatchesInOrder(t *testing.T) {
	cur := &fakeCursor{batches: [][][]record.Value{
		{vals(int64(1), "a"), vals(int64(2), "b")},
		{},
		{vals(3.5, true, nil)},
	}}
	ex := &fakeExecutor{cur: cur}

	seq, err := Materialize(context.Background(), ex, "select 1", policy.Unbounded())
	require.NoError(t, err)
	require.Equal(t, []string{"1,a", "2,b", "3.5,true,null"}, seq.Rows)
	require.Equal(t, 3, seq.Batches)
	require.Equal(t, 3, seq.Len())
	require.Equal(t, 1, cur.closed)
	require.Equal(t, []string{"select 1"}, ex.scripts)
}

func TestMaterialize_NullRendersAsToken(t *testing.T) {
	cur := &fakeCursor{batches: [][][]record.Value{
		{vals(nil, "x", nil)},
	}}
	seq, err := Materialize(context.Background(), &fakeExecutor{cur: cur}, "", policy.Unbounded())
	require.NoError(t, err)
	require.Equal(t, []string{"null,x,null"}, seq.Rows)
}

func TestMaterialize_FixedWidthTruncates(t *testing.T) {
	cur := &fakeCursor{batches: [][][]record.Value{
		{vals(int64(1), "two", 3.25, nil, false)},
	}}
	seq, err := Materialize(context.Background(), &fakeExecutor{cur: cur}, "", fixed(t, 3))
	require.NoError(t, err)
	require.Equal(t, []string{"1,two,3.25"}, seq.Rows)
}

func TestMaterialize_FixedWidthOverflow(t *testing.T) {
	cur := &fakeCursor{batches: [][][]record.Value{
		{vals(int64(1), "a")},
	}}
	seq, err := Materialize(context.Background(), &fakeExecutor{cur: cur}, "", fixed(t, 3))
	require.ErrorIs(t, err, ErrColumnWidthExceeded)
	require.NotErrorIs(t, err, ErrExecutionFailed)
	require.Empty(t, seq.Rows)
	require.Equal(t, 1, cur.closed)

	var wide *ColumnWidthExceededError
	require.True(t, errors.As(err, &wide))
	require.Equal(t, ColumnWidthExceededError{Batch: 0, Row: 0, Want: 3, Have: 2}, *wide)
}

func TestMaterialize_WidthCachedFromFirstRowOfBatch(t *testing.T) {
	cur := &fakeCursor{batches: [][][]record.Value{
		// later rows report more columns than the first: extra values are dropped
		{vals(int64(1), "a"), vals(int64(2), "b", "extra")},
		// a new batch resolves its own width
		{vals("x", "y", "z")},
	}}
	seq, err := Materialize(context.Background(), &fakeExecutor{cur: cur}, "", policy.Unbounded())
	require.NoError(t, err)
	require.Equal(t, []string{"1,a", "2,b", "x,y,z"}, seq.Rows)
}

func TestMaterialize_ShorterLaterRowFails(t *testing.T) {
	cur := &fakeCursor{batches: [][][]record.Value{
		{vals(int64(1), "a", "b"), vals(int64(2))},
	}}
	_, err := Materialize(context.Background(), &fakeExecutor{cur: cur}, "", policy.Unbounded())

	var wide *ColumnWidthExceededError
	require.ErrorAs(t, err, &wide)
	require.Equal(t, 1, wide.Row)
	require.Equal(t, 3, wide.Want)
	require.Equal(t, 1, wide.Have)
}

func TestMaterialize_ExecuteErrorIsWrapped(t *testing.T) {
	boom := errors.New("syntax error near 'selec'")
	_, err := Materialize(context.Background(), &fakeExecutor{err: boom}, "selec 1", policy.Unbounded())
	require.ErrorIs(t, err, ErrExecutionFailed)
	require.ErrorIs(t, err, boom)
}

func TestMaterialize_CursorErrorDropsPartialRows(t *testing.T) {
	boom := errors.New("connection reset")
	cur := &fakeCursor{
		batches: [][][]record.Value{{vals(int64(1))}},
		err:     boom,
	}
	seq, err := Materialize(context.Background(), &fakeExecutor{cur: cur}, "", policy.Unbounded())
	require.ErrorIs(t, err, ErrExecutionFailed)
	require.ErrorIs(t, err, boom)
	require.Nil(t, seq.Rows)
	require.Equal(t, 1, cur.closed)
}

func TestMaterialize_Deterministic(t *testing.T) {
	build := func() *fakeExecutor {
		return &fakeExecutor{cur: &fakeCursor{batches: [][][]record.Value{
			{vals(int64(7), "seven", nil), vals(int64(8), "eight", 8.0)},
		}}}
	}
	a, err := Materialize(context.Background(), build(), "q", policy.Unbounded())
	require.NoError(t, err)
	b, err := Materialize(context.Background(), build(), "q", policy.Unbounded())
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestMaterialize_EmptyScript(t *testing.T) {
	seq, err := Materialize(context.Background(), &fakeExecutor{cur: &fakeCursor{}}, "", policy.Unbounded())
	require.NoError(t, err)
	require.Zero(t, seq.Len())
	require.Zero(t, seq.Batches)
}
