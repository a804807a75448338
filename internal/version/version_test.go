package version

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	v, err := Parse("1.2.3")
	require.NoError(t, err)
	require.Equal(t, Version{1, 2, 3}, v)

	v, err = Parse("19.0.7.1")
	require.NoError(t, err)
	require.Equal(t, Version{19, 0, 7, 1}, v)

	v, err = Parse("2")
	require.NoError(t, err)
	require.Equal(t, Version{2}, v)
}

func TestParseInvalid(t *testing.T) {
	for _, input := range []string{"", "  ", "1.x.0", "1..2", "a.b.c", "1.-2.0"} {
		_, err := Parse(input)
		require.ErrorIs(t, err, ErrInvalid, "input %q", input)
	}
}

func TestCompare(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"1.2.0", "1.1.9", 1},
		{"1.1.0", "1.1.0", 0},
		{"1.1.0", "1.2.0", -1},
		{"2.10.0", "2.9.0", 1},
		{"1.2", "1.2.0", 0},
		{"1.2", "1.2.1", -1},
		{"1.2.0.1", "1.2.0", 1},
	}
	for _, tc := range cases {
		a, err := Parse(tc.a)
		require.NoError(t, err)
		b, err := Parse(tc.b)
		require.NoError(t, err)
		require.Equal(t, tc.want, Compare(a, b), "Compare(%s, %s)", tc.a, tc.b)
	}
}

func TestIsHigher(t *testing.T) {
	a, err := Parse("1.2.0")
	require.NoError(t, err)
	b, err := Parse("1.1.9")
	require.NoError(t, err)
	require.True(t, IsHigher(a, b))
	require.False(t, IsHigher(b, a))

	same, err := Parse("1.1.0")
	require.NoError(t, err)
	require.False(t, IsHigher(same, same))
}

func TestBump(t *testing.T) {
	cases := []struct {
		current, want string
	}{
		{"1.4.0", "1.5.0"},
		{"2.9.0", "2.10.0"},
		{"0.0.0", "0.1.0"},
		{"3.1.7", "3.2.0"},
		{"1", "1.1.0"},
	}
	for _, tc := range cases {
		v, err := Parse(tc.current)
		require.NoError(t, err)
		require.Equal(t, tc.want, v.Bump().String(), "Bump(%s)", tc.current)
	}
}

func TestPadAndString(t *testing.T) {
	v, err := Parse("1.2")
	require.NoError(t, err)
	require.Equal(t, "1.2.0", v.Pad(3).String())
	require.Equal(t, "1.2", v.String())

	full, err := Parse("1.2.3")
	require.NoError(t, err)
	require.Equal(t, "1.2.3", full.Pad(3).String())
}
