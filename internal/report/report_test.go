package report

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tuannm99/sqlab/internal/compare"
	"github.com/tuannm99/sqlab/internal/policy"
)

func render(o compare.Outcome) string {
	var buf bytes.Buffer
	New(&buf, false).Outcome(o)
	return buf.String()
}

func TestOutcome_Success(t *testing.T) {
	out := render(compare.Compare([]string{"1,a"}, []string{"1,a"}, policy.Unbounded()))
	require.Equal(t, "Success: The results are the same.\nRows processed: 1\nDone\n", out)
}

func TestOutcome_Mismatches(t *testing.T) {
	o := compare.Compare([]string{"1,a", "2,b"}, []string{"1,a", "2,c", "3,d"}, policy.Unbounded())
	out := render(o)

	require.Contains(t, out, "Fail: different number of records\nA has 2 records\nB has 3 records\n")
	require.Contains(t, out, "Fail: row number 1 has differences\nA ='2,b'\nB ='2,c'\n")
	require.NotContains(t, out, "Success")
	require.True(t, strings.HasSuffix(out, "Rows processed: 2\nDone\n"))
}

func TestOutcome_EmptyWarning(t *testing.T) {
	out := render(compare.Compare(nil, nil, policy.Unbounded()))
	require.Contains(t, out, "Warning: There were no results to compare. Check your SQL files.")
	require.Contains(t, out, "Success: The results are the same.")
	require.Contains(t, out, "Rows processed: 0")
}

func TestOutcome_FixedWidthBanner(t *testing.T) {
	p, err := policy.FixedWidth(2)
	require.NoError(t, err)
	out := render(compare.Compare([]string{"1,a"}, []string{"1,a"}, p))
	require.True(t, strings.HasPrefix(out, "Comparing first 2 column(s)\n"))
}

func TestInlineDiff(t *testing.T) {
	r := New(&bytes.Buffer{}, false)
	d := r.InlineDiff("42,alice,null", "42,alicia,null")
	require.True(t, strings.HasPrefix(d, "42,alic"))
	require.True(t, strings.HasSuffix(d, ",null"))
	require.Contains(t, d, "[-e-]")
	require.Contains(t, d, "{+ia+}")

	require.Equal(t, "same", r.InlineDiff("same", "same"))
}

func TestErrorsAndUsage(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf, false)

	r.Usage("Not enough args")
	r.NotFound("missing.sql", errors.New("loader: script not found"))
	r.Error("B", errors.New("syntax error"))
	r.Warning("--only given without a value")
	r.Error("", errors.New("sqlab: no config file found"))

	out := buf.String()
	require.Contains(t, out, "Not enough args\nUsage:\n > sqlab <scriptA> <scriptB>")
	require.Contains(t, out, "Can't load SQL file 'missing.sql'\n")
	require.Contains(t, out, "Error: (script B) syntax error\n")
	require.Contains(t, out, "Warning: --only given without a value\n")
	require.Contains(t, out, "Error: sqlab: no config file found\n")
}
