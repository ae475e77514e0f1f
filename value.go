package keydata

// Value is an immutable, typed snapshot of one property. Mutating operations
// return new snapshots instead of modifying in place, so a Value can be
// shared freely once created.
//
// The mutable and immutable forms are disjoint types: there is no flag to
// flip, and no mutator exists on Value at all.
type Value[T any] struct {
	key *TypedKey[T]
	val T
}

// NewValue creates an immutable value for the given key. For bounded keys the
// value is validated against the key's range.
func NewValue[T any](k *TypedKey[T], v T) (Value[T], error) {
	if err := k.check(v); err != nil {
		return Value[T]{}, err
	}
	return Value[T]{key: k, val: v}, nil
}

// Key returns the key this value belongs to.
func (v Value[T]) Key() *TypedKey[T] { return v.key }

// Get returns the wrapped value.
func (v Value[T]) Get() T { return v.val }

// With returns a new snapshot carrying val, leaving v untouched.
// Bounded keys reject out-of-range values.
func (v Value[T]) With(val T) (Value[T], error) {
	return NewValue(v.key, val)
}

// ToMutable returns a mutable wrapper seeded with this value.
func (v Value[T]) ToMutable() *MutableValue[T] {
	return &MutableValue[T]{key: v.key, val: v.val}
}

// MutableValue is a typed read/write wrapper around one property.
//
// MutableValues are per-request objects owned exclusively by the caller that
// created them; they are not safe for concurrent use.
type MutableValue[T any] struct {
	key *TypedKey[T]
	val T
}

// NewMutableValue creates a mutable value for the given key. For bounded keys
// the initial value is validated against the key's range.
func NewMutableValue[T any](k *TypedKey[T], v T) (*MutableValue[T], error) {
	if err := k.check(v); err != nil {
		return nil, err
	}
	return &MutableValue[T]{key: k, val: v}, nil
}

// Key returns the key this value belongs to.
func (v *MutableValue[T]) Key() *TypedKey[T] { return v.key }

// Get returns the wrapped value.
func (v *MutableValue[T]) Get() T { return v.val }

// Set replaces the wrapped value. For bounded keys, values outside
// [Min, Max] are rejected with OutOfBoundsError and the wrapper keeps its
// previous value.
func (v *MutableValue[T]) Set(val T) error {
	if err := v.key.check(val); err != nil {
		return err
	}
	v.val = val
	return nil
}

// Freeze produces an immutable snapshot of the current value.
func (v *MutableValue[T]) Freeze() Value[T] {
	return Value[T]{key: v.key, val: v.val}
}
