package keydata

import (
	"testing"

	"github.com/stretchr/testify/require"
)

var keyMana = NewBoundedKey[float64]("mana", 50, 0, 100)

func TestValueIsImmutable(t *testing.T) {
	v, err := NewValue(keyMana, 30)
	require.NoError(t, err)
	require.Equal(t, 30.0, v.Get())
	require.Same(t, keyMana, v.Key())

	// With returns a new snapshot, leaving the original untouched.
	w, err := v.With(60)
	require.NoError(t, err)
	require.Equal(t, 60.0, w.Get())
	require.Equal(t, 30.0, v.Get())
}

func TestNewValueRejectsOutOfRange(t *testing.T) {
	_, err := NewValue(keyMana, 101)
	var oob *OutOfBoundsError
	require.ErrorAs(t, err, &oob)
	require.Equal(t, "mana", oob.Key)
}

func TestMutableValueSetKeepsPreviousOnFailure(t *testing.T) {
	v, err := NewMutableValue(keyMana, 40)
	require.NoError(t, err)

	require.NoError(t, v.Set(80))
	require.Equal(t, 80.0, v.Get())

	err = v.Set(-5)
	require.Error(t, err)
	require.Equal(t, 80.0, v.Get())
}

func TestMutableValueFreezeSnapshots(t *testing.T) {
	v, err := NewMutableValue(keyMana, 40)
	require.NoError(t, err)

	frozen := v.Freeze()
	require.NoError(t, v.Set(90))
	require.Equal(t, 40.0, frozen.Get())

	thawed := frozen.ToMutable()
	require.NoError(t, thawed.Set(10))
	require.Equal(t, 40.0, frozen.Get())
}

func TestBoundedValueExposesRange(t *testing.T) {
	v, err := NewBoundedValue(keyMana, 0)
	require.NoError(t, err)

	require.Equal(t, 0.0, v.Min())
	require.Equal(t, 100.0, v.Max())
	require.Equal(t, 50.0, v.Default())
	require.True(t, v.AtMin())
	require.False(t, v.AtMax())

	w, err := v.With(100)
	require.NoError(t, err)
	require.True(t, w.AtMax())
	require.True(t, w.EqualValue(100))
}

func TestBoundedValueBoundarySemantics(t *testing.T) {
	tests := []struct {
		name string
		v    float64
		ok   bool
	}{
		{"at min", 0, true},
		{"at max", 100, true},
		{"below min", -1, false},
		{"above max", 100.5, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBoundedValue(keyMana, tt.v)
			if tt.ok {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
			}
		})
	}
}

func TestBoundedValueRequiresBoundedKey(t *testing.T) {
	plain := NewKey[float64]("plain_counter")
	_, err := NewBoundedValue(plain, 1)
	require.Error(t, err)
	_, err = NewMutableBoundedValue(plain, 1)
	require.Error(t, err)
}

func TestMutableBoundedValueSet(t *testing.T) {
	v, err := NewMutableBoundedValue(keyMana, 50)
	require.NoError(t, err)

	require.NoError(t, v.Set(v.Max()))
	require.Error(t, v.Set(v.Max()+1))
	require.Equal(t, 100.0, v.Get())

	frozen := v.Freeze()
	require.True(t, frozen.AtMax())
}
