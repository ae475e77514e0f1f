package keydata

import (
	"cmp"
	"fmt"
	"reflect"
	"sync/atomic"
	"unicode"
)

// KeyID is a unique numeric identifier for a registered key.
// Valid IDs range from 0 to MaxKeys-1.
type KeyID uint8

// MaxKeys is the maximum number of key types supported per process.
const MaxKeys = 255

// nextKeyID allocates key IDs process-wide. IDs are assigned when a key is
// constructed, so bitmasks stay consistent across every Registry in the
// process.
var nextKeyID atomic.Uint32

func allocateKeyID(name string) KeyID {
	id := nextKeyID.Add(1) - 1
	if id >= MaxKeys {
		panic(fmt.Sprintf("keydata: key limit exceeded creating %q (max %d keys)", name, MaxKeys))
	}
	return KeyID(id)
}

// Key is the untyped descriptor for one property. Every key is a *TypedKey[T]
// under the hood; the untyped view is what registries and documents work with.
//
// Keys are immutable once created. Identifiers must be unique within a
// Registry; registering two keys with the same identifier fails with
// DuplicateKeyError.
type Key interface {
	// Name returns the stable identifier, e.g. "max_health".
	Name() string

	// Query returns the document field this key serializes to. It is derived
	// deterministically from the identifier: underscores stripped,
	// upper-camel-cased, e.g. "max_health" -> "MaxHealth".
	Query() string

	// ValueType returns the Go type of the key's values.
	ValueType() reflect.Type

	// Bounded reports whether values for this key are range-checked.
	Bounded() bool

	// ID returns the process-wide numeric id of the key.
	ID() KeyID

	// validate checks a candidate value against the key's value type and
	// bounds. Untyped entry point for dispatch and deserialization.
	validate(v any) error

	// defaultValue returns the key's default, if one was configured.
	defaultValue() (any, bool)
}

// TypedKey is the typed handle for a key. Package-level construction is the
// expected pattern:
//
//	var KeyHealth = keydata.NewBoundedKey[float64]("health", 20, 0, math.MaxFloat32)
type TypedKey[T any] struct {
	id      KeyID
	name    string
	query   string
	def     T
	hasDef  bool
	min     T
	max     T
	bounded bool
	compare func(a, b T) int
}

// KeyOption configures a key at construction time.
type KeyOption[T any] func(*TypedKey[T])

// WithQuery overrides the derived document field name.
func WithQuery[T any](query string) KeyOption[T] {
	return func(k *TypedKey[T]) {
		k.query = query
	}
}

// WithDefault sets the key's default value, used by ReadOrDefault paths and
// to fill fields missing from deserialized documents.
func WithDefault[T any](def T) KeyOption[T] {
	return func(k *TypedKey[T]) {
		k.def = def
		k.hasDef = true
	}
}

// WithBounds marks the key as bounded with the given inclusive range.
// A comparator must also be configured, either via WithComparator or by
// using NewBoundedKey.
func WithBounds[T any](min, max T) KeyOption[T] {
	return func(k *TypedKey[T]) {
		k.min = min
		k.max = max
		k.bounded = true
	}
}

// WithComparator sets the comparison rule used for bounds checks. This
// supports domain-specific orderings that differ from raw equality.
func WithComparator[T any](compare func(a, b T) int) KeyOption[T] {
	return func(k *TypedKey[T]) {
		k.compare = compare
	}
}

// NewKey creates a key for values of type T. The identifier should be a
// stable snake_case name; the document field is derived from it.
//
// Keys are cheap descriptors: creating one does not register it. Keys become
// usable for holder access once passed to Builder.Key.
func NewKey[T any](name string, opts ...KeyOption[T]) *TypedKey[T] {
	if name == "" {
		panic("keydata: key identifier must not be empty")
	}
	k := &TypedKey[T]{
		id:    allocateKeyID(name),
		name:  name,
		query: deriveQuery(name),
	}
	for _, opt := range opts {
		opt(k)
	}
	if k.bounded {
		if k.compare == nil {
			panic(fmt.Sprintf("keydata: bounded key %q has no comparator; use NewBoundedKey or WithComparator", name))
		}
		if k.compare(k.min, k.max) > 0 {
			panic(fmt.Sprintf("keydata: key %q has min > max", name))
		}
	}
	return k
}

// NewBoundedKey creates a bounded key for an ordered value type with the
// given default and inclusive [min, max] range. The comparison rule defaults
// to the natural ordering and can be overridden with WithComparator.
func NewBoundedKey[T cmp.Ordered](name string, def, min, max T, opts ...KeyOption[T]) *TypedKey[T] {
	base := []KeyOption[T]{
		WithComparator[T](cmp.Compare[T]),
		WithDefault(def),
		WithBounds(min, max),
	}
	return NewKey(name, append(base, opts...)...)
}

// NewComparedKey creates a bounded key for an arbitrary value type using an
// explicit comparison rule.
func NewComparedKey[T any](name string, def, min, max T, compare func(a, b T) int, opts ...KeyOption[T]) *TypedKey[T] {
	base := []KeyOption[T]{
		WithComparator(compare),
		WithDefault(def),
		WithBounds(min, max),
	}
	return NewKey(name, append(base, opts...)...)
}

// Name returns the key's stable identifier.
func (k *TypedKey[T]) Name() string { return k.name }

// Query returns the document field the key serializes to.
func (k *TypedKey[T]) Query() string { return k.query }

// ValueType returns the Go type of the key's values.
func (k *TypedKey[T]) ValueType() reflect.Type { return reflect.TypeOf((*T)(nil)).Elem() }

// Bounded reports whether values for this key are range-checked.
func (k *TypedKey[T]) Bounded() bool { return k.bounded }

// ID returns the process-wide numeric id of the key.
func (k *TypedKey[T]) ID() KeyID { return k.id }

// Default returns the key's configured default value.
func (k *TypedKey[T]) Default() (T, bool) { return k.def, k.hasDef }

// Min returns the inclusive lower bound. Only meaningful for bounded keys.
func (k *TypedKey[T]) Min() T { return k.min }

// Max returns the inclusive upper bound. Only meaningful for bounded keys.
func (k *TypedKey[T]) Max() T { return k.max }

// Compare compares two values under the key's comparison rule. For unbounded
// keys without a configured comparator, Compare panics.
func (k *TypedKey[T]) Compare(a, b T) int {
	if k.compare == nil {
		panic(fmt.Sprintf("keydata: key %q has no comparator", k.name))
	}
	return k.compare(a, b)
}

// check validates a typed value against the key's bounds.
// Boundary values Min and Max themselves are accepted.
func (k *TypedKey[T]) check(v T) error {
	if !k.bounded {
		return nil
	}
	if k.compare(v, k.min) < 0 || k.compare(v, k.max) > 0 {
		return &OutOfBoundsError{Key: k.name, Value: v, Min: k.min, Max: k.max}
	}
	return nil
}

func (k *TypedKey[T]) validate(v any) error {
	tv, ok := v.(T)
	if !ok {
		cv, cok := coerceValue(v, k.ValueType())
		if !cok {
			return fmt.Errorf("keydata: key %q expects %v, got %T", k.name, k.ValueType(), v)
		}
		tv = cv.(T)
	}
	return k.check(tv)
}

func (k *TypedKey[T]) defaultValue() (any, bool) {
	if !k.hasDef {
		return nil, false
	}
	return k.def, true
}

// deriveQuery derives the document field name from a key identifier:
// separator runes are stripped and each part is upper-camel-cased.
func deriveQuery(name string) string {
	out := make([]rune, 0, len(name))
	up := true
	for _, r := range name {
		switch r {
		case '_', '-', '.', ' ':
			up = true
			continue
		}
		if up {
			out = append(out, unicode.ToUpper(r))
			up = false
			continue
		}
		out = append(out, r)
	}
	return string(out)
}
