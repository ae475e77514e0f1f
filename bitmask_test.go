package keydata

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBitmaskSetHas(t *testing.T) {
	var m Bitmask
	require.True(t, m.IsZero())

	for _, id := range []KeyID{0, 1, 63, 64, 127, 128, 200, 254} {
		require.False(t, m.Has(id))
		m.Set(id)
		require.True(t, m.Has(id))
	}
	require.Equal(t, 8, m.Count())
	require.False(t, m.IsZero())
}

func TestBitmaskOr(t *testing.T) {
	var a, b Bitmask
	a.Set(1)
	a.Set(70)
	b.Set(70)
	b.Set(130)

	or := a.Or(b)
	require.True(t, or.Has(1))
	require.True(t, or.Has(70))
	require.True(t, or.Has(130))
	require.Equal(t, 3, or.Count())

	// The inputs are untouched.
	require.False(t, a.Has(130))
	require.False(t, b.Has(1))
}

func TestBitmaskCloneIsIndependent(t *testing.T) {
	var m Bitmask
	m.Set(10)

	c := m.Clone()
	require.True(t, m.Equals(c))

	c.Set(20)
	require.False(t, m.Has(20))
	require.False(t, m.Equals(c))
}
