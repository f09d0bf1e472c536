// Package compare diffs two materialized result sequences row by row.
package compare

import "github.com/tuannm99/sqlab/internal/policy"

// Mismatch is one position where the two sequences disagree.
type Mismatch struct {
	Index int
	A     string
	B     string
}

// Outcome is a pure report; producing it prints nothing.
type Outcome struct {
	Policy         policy.Policy
	RowsCompared   int
	LenA           int
	LenB           int
	LengthMismatch bool
	Mismatches     []Mismatch
	EmptyWarning   bool
}

// Success reports whether both sequences hold the same rows in the same order.
// An empty comparison is a success that still carries EmptyWarning.
func (o Outcome) Success() bool {
	return !o.LengthMismatch && len(o.Mismatches) == 0
}

// Compare walks the overlapping prefix of a and b and records every row that
// differs as an opaque string. It never stops early.
func Compare(a, b []string, p policy.Policy) Outcome {
	n := min(len(a), len(b))

	out := Outcome{
		Policy:         p,
		RowsCompared:   n,
		LenA:           len(a),
		LenB:           len(b),
		LengthMismatch: len(a) != len(b),
		EmptyWarning:   n == 0,
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			out.Mismatches = append(out.Mismatches, Mismatch{Index: i, A: a[i], B: b[i]})
		}
	}
	return out
}
