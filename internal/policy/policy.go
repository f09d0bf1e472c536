// Package policy resolves how many columns of each row take part in a
// comparison.
package policy

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// OnlyFlag caps the number of compared columns.
const OnlyFlag = "--only"

var ErrInvalidLimit = errors.New("policy: invalid column limit")

// Policy is either unbounded or a fixed width. The zero value is Unbounded.
// It is immutable once resolved and passed by value.
type Policy struct {
	fixed bool
	width int
}

func Unbounded() Policy { return Policy{} }

// FixedWidth forces every row to exactly n columns.
func FixedWidth(n int) (Policy, error) {
	if n < 0 {
		return Policy{}, fmt.Errorf("%w: %d is negative", ErrInvalidLimit, n)
	}
	return Policy{fixed: true, width: n}, nil
}

func (p Policy) IsFixed() bool { return p.fixed }

// Width returns the forced width and true for FixedWidth policies.
func (p Policy) Width() (int, bool) { return p.width, p.fixed }

func (p Policy) String() string {
	if !p.fixed {
		return "unbounded"
	}
	return fmt.Sprintf("first %d column(s)", p.width)
}

// Resolution is the outcome of scanning the raw argument list.
type Resolution struct {
	Policy Policy
	// Rest holds the arguments with every --only occurrence (and its value) removed.
	Rest []string
	// Warning is set when --only was present but unusable and the policy fell back to Unbounded.
	Warning string
}

// Resolve scans args for "--only N" or "--only=N".
//
// A missing or non-numeric value degrades to Unbounded with a warning. A
// negative value, or two occurrences disagreeing on the width, is an
// ErrInvalidLimit.
func Resolve(args []string) (Resolution, error) {
	res := Resolution{Rest: make([]string, 0, len(args))}

	var resolved *Policy
	for i := 0; i < len(args); i++ {
		arg := args[i]

		var (
			raw      string
			hasValue bool
		)
		switch {
		case arg == OnlyFlag:
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "--") {
				raw, hasValue = args[i+1], true
				i++
			}
		case strings.HasPrefix(arg, OnlyFlag+"="):
			raw, hasValue = strings.TrimPrefix(arg, OnlyFlag+"="), true
		default:
			res.Rest = append(res.Rest, arg)
			continue
		}

		if !hasValue || raw == "" {
			res.Warning = fmt.Sprintf("%s given without a value; comparing all columns", OnlyFlag)
			continue
		}

		n, err := strconv.Atoi(raw)
		if err != nil {
			res.Warning = fmt.Sprintf("%s value %q is not a number; comparing all columns", OnlyFlag, raw)
			continue
		}
		p, err := FixedWidth(n)
		if err != nil {
			return Resolution{}, err
		}
		if resolved != nil && *resolved != p {
			return Resolution{}, fmt.Errorf("%w: %s given twice (%d and %d)", ErrInvalidLimit, OnlyFlag, resolved.width, n)
		}
		resolved = &p
	}

	if resolved != nil {
		res.Policy = *resolved
		res.Warning = ""
	}
	return res, nil
}
