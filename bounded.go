package keydata

import "fmt"

// BoundedValue is an immutable snapshot of a range-checked property. It
// exposes the key's default, minimum and maximum alongside the current value.
// Comparisons use the key's comparison rule, not raw equality.
type BoundedValue[T any] struct {
	key *TypedKey[T]
	val T
}

// NewBoundedValue creates an immutable bounded value. The key must be
// bounded; the value is validated against its range.
func NewBoundedValue[T any](k *TypedKey[T], v T) (BoundedValue[T], error) {
	if !k.Bounded() {
		return BoundedValue[T]{}, fmt.Errorf("keydata: key %q is not bounded", k.Name())
	}
	if err := k.check(v); err != nil {
		return BoundedValue[T]{}, err
	}
	return BoundedValue[T]{key: k, val: v}, nil
}

// Key returns the key this value belongs to.
func (v BoundedValue[T]) Key() *TypedKey[T] { return v.key }

// Get returns the wrapped value.
func (v BoundedValue[T]) Get() T { return v.val }

// Min returns the inclusive lower bound.
func (v BoundedValue[T]) Min() T { return v.key.Min() }

// Max returns the inclusive upper bound.
func (v BoundedValue[T]) Max() T { return v.key.Max() }

// Default returns the key's default value.
func (v BoundedValue[T]) Default() T {
	def, _ := v.key.Default()
	return def
}

// With returns a new snapshot carrying val, leaving v untouched.
// Values outside [Min, Max] are rejected.
func (v BoundedValue[T]) With(val T) (BoundedValue[T], error) {
	return NewBoundedValue(v.key, val)
}

// EqualValue reports whether the wrapped value equals other under the key's
// comparison rule.
func (v BoundedValue[T]) EqualValue(other T) bool {
	return v.key.Compare(v.val, other) == 0
}

// AtMin reports whether the wrapped value sits on the lower bound.
func (v BoundedValue[T]) AtMin() bool {
	return v.key.Compare(v.val, v.key.Min()) == 0
}

// AtMax reports whether the wrapped value sits on the upper bound.
func (v BoundedValue[T]) AtMax() bool {
	return v.key.Compare(v.val, v.key.Max()) == 0
}

// ToMutable returns a mutable bounded wrapper seeded with this value.
func (v BoundedValue[T]) ToMutable() *MutableBoundedValue[T] {
	return &MutableBoundedValue[T]{key: v.key, val: v.val}
}

// MutableBoundedValue is the read/write form of BoundedValue. Set rejects
// values outside [Min, Max] with OutOfBoundsError.
type MutableBoundedValue[T any] struct {
	key *TypedKey[T]
	val T
}

// NewMutableBoundedValue creates a mutable bounded value. The key must be
// bounded; the initial value is validated against its range.
func NewMutableBoundedValue[T any](k *TypedKey[T], v T) (*MutableBoundedValue[T], error) {
	if !k.Bounded() {
		return nil, fmt.Errorf("keydata: key %q is not bounded", k.Name())
	}
	if err := k.check(v); err != nil {
		return nil, err
	}
	return &MutableBoundedValue[T]{key: k, val: v}, nil
}

// Key returns the key this value belongs to.
func (v *MutableBoundedValue[T]) Key() *TypedKey[T] { return v.key }

// Get returns the wrapped value.
func (v *MutableBoundedValue[T]) Get() T { return v.val }

// Min returns the inclusive lower bound.
func (v *MutableBoundedValue[T]) Min() T { return v.key.Min() }

// Max returns the inclusive upper bound.
func (v *MutableBoundedValue[T]) Max() T { return v.key.Max() }

// Set replaces the wrapped value. Values outside [Min, Max] under the key's
// comparison rule are rejected; the boundary values themselves are accepted.
func (v *MutableBoundedValue[T]) Set(val T) error {
	if err := v.key.check(val); err != nil {
		return err
	}
	v.val = val
	return nil
}

// Freeze produces an immutable snapshot of the current value.
func (v *MutableBoundedValue[T]) Freeze() BoundedValue[T] {
	return BoundedValue[T]{key: v.key, val: v.val}
}
