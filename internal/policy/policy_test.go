package policy

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolve_Absent(t *testing.T) {
	res, err := Resolve([]string{"a.sql", "b.sql"})
	require.NoError(t, err)
	require.False(t, res.Policy.IsFixed())
	require.Empty(t, res.Warning)
	require.Equal(t, []string{"a.sql", "b.sql"}, res.Rest)
}

func TestResolve_FixedWidth(t *testing.T) {
	cases := map[string][]string{
		"separate": {"a.sql", "--only", "3", "b.sql"},
		"equals":   {"a.sql", "b.sql", "--only=3"},
		"repeated": {"--only", "3", "a.sql", "b.sql", "--only=3"},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			res, err := Resolve(args)
			require.NoError(t, err)

			w, ok := res.Policy.Width()
			require.True(t, ok)
			require.Equal(t, 3, w)
			require.Empty(t, res.Warning)
			require.Equal(t, []string{"a.sql", "b.sql"}, res.Rest)
		})
	}
}

func TestResolve_ZeroIsAllowed(t *testing.T) {
	res, err := Resolve([]string{"--only", "0"})
	require.NoError(t, err)
	w, ok := res.Policy.Width()
	require.True(t, ok)
	require.Equal(t, 0, w)
}

func TestResolve_FallbackWarnings(t *testing.T) {
	cases := map[string]struct {
		args []string
		rest []string
	}{
		"missing value at end": {args: []string{"a.sql", "b.sql", "--only"}, rest: []string{"a.sql", "b.sql"}},
		"followed by a flag":   {args: []string{"a.sql", "b.sql", "--only", "--verbose"}, rest: []string{"a.sql", "b.sql", "--verbose"}},
		"not a number":         {args: []string{"a.sql", "--only", "three", "b.sql"}, rest: []string{"a.sql", "b.sql"}},
		"empty equals":         {args: []string{"a.sql", "b.sql", "--only="}, rest: []string{"a.sql", "b.sql"}},
		"fractional":           {args: []string{"a.sql", "b.sql", "--only=2.5"}, rest: []string{"a.sql", "b.sql"}},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			res, err := Resolve(tc.args)
			require.NoError(t, err)
			require.False(t, res.Policy.IsFixed())
			require.NotEmpty(t, res.Warning)
			require.Contains(t, res.Warning, OnlyFlag)
			require.Equal(t, tc.rest, res.Rest)
		})
	}
}

func TestResolve_Invalid(t *testing.T) {
	_, err := Resolve([]string{"a.sql", "b.sql", "--only", "-1"})
	require.ErrorIs(t, err, ErrInvalidLimit)

	_, err = Resolve([]string{"a.sql", "b.sql", "--only", "2", "--only=4"})
	require.ErrorIs(t, err, ErrInvalidLimit)
}

func TestFixedWidth(t *testing.T) {
	_, err := FixedWidth(-2)
	require.ErrorIs(t, err, ErrInvalidLimit)

	p, err := FixedWidth(5)
	require.NoError(t, err)
	require.Equal(t, "first 5 column(s)", p.String())
	require.Equal(t, "unbounded", Unbounded().String())
}
