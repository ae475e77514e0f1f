package keydata

import (
	"fmt"
	"log/slog"
)

// Bundle is the read surface shared by mutable and immutable property
// bundles. A bundle is a named, versioned group of related values sharing a
// lifecycle, addressed field-by-field through registered keys.
type Bundle interface {
	// Name returns the bundle's stable identifier, e.g. "health".
	Name() string

	// Version returns the bundle's content version, written into serialized
	// documents and checked on deserialization.
	Version() int

	// Keys returns every key the bundle declares. Each declared key must be
	// resolvable through both the field table and the serialize path; the
	// Builder verifies this at registration.
	Keys() []Key

	// Fields returns the bundle's field table: one explicit accessor/mutator
	// pair per declared key. Immutable bundles return fields with nil
	// mutators.
	Fields() []Field

	// Serialize emits the bundle as a generic document, including its
	// content version.
	Serialize() *Document
}

// MutableBundle is a bundle supporting in-place updates. The mutable and
// immutable variants are disjoint interfaces: mutators are rejected on
// immutable bundles by the type system, not by a runtime flag.
//
// Mutable bundles are per-request objects owned exclusively by their caller;
// they are not safe for concurrent use.
type MutableBundle interface {
	Bundle

	// Copy returns a deep duplicate of the bundle.
	Copy() MutableBundle

	// ToImmutable produces a frozen snapshot. Later mutation of the source
	// bundle does not affect the snapshot.
	ToImmutable() ImmutableBundle
}

// ImmutableBundle is a frozen bundle snapshot.
type ImmutableBundle interface {
	Bundle

	// ToMutable returns a caller-owned mutable copy of the snapshot.
	ToMutable() MutableBundle
}

// Field binds one key to its accessor and mutator on a bundle instance.
// Field tables are built with NewField, which checks the value type and the
// key's bounds before invoking the mutator, so bundle authors write plain
// assignments.
type Field struct {
	// Key identifies the property this field carries.
	Key Key

	// Get reads the field's current value.
	Get func() any

	// Set writes the field after validation. Nil on immutable bundles.
	Set func(v any) error
}

// NewField builds a field table entry from a typed accessor/mutator pair.
// Pass a nil mutator for immutable bundles. The mutator runs only after the
// value passed both the type check and the key's bounds check, so a failed
// Set leaves the bundle untouched.
func NewField[T any](k *TypedKey[T], get func() T, set func(T)) Field {
	f := Field{
		Key: k,
		Get: func() any { return get() },
	}
	if set == nil {
		return f
	}
	f.Set = func(v any) error {
		tv, ok := v.(T)
		if !ok {
			cv, cok := coerceValue(v, k.ValueType())
			if !cok {
				return fmt.Errorf("keydata: key %q expects %v, got %T", k.Name(), k.ValueType(), v)
			}
			tv = cv.(T)
		}
		if err := k.check(tv); err != nil {
			return err
		}
		set(tv)
		return nil
	}
	return f
}

// GetField reads one field of a bundle by key. It returns false when the
// bundle does not declare the key.
func GetField[T any](b Bundle, k *TypedKey[T]) (T, bool) {
	var zero T
	f, ok := fieldFor(b, k)
	if !ok {
		return zero, false
	}
	v, ok := f.Get().(T)
	if !ok {
		return zero, false
	}
	return v, true
}

// SetField writes one field of a mutable bundle by key. Bounded keys reject
// out-of-range values with OutOfBoundsError. Only MutableBundle is accepted:
// immutable bundles have no Set path at the type level.
func SetField[T any](b MutableBundle, k *TypedKey[T], v T) error {
	f, ok := fieldFor(b, k)
	if !ok {
		return fmt.Errorf("keydata: bundle %q does not declare key %q", b.Name(), k.Name())
	}
	return f.Set(v)
}

func fieldFor(b Bundle, k Key) (Field, bool) {
	for _, f := range b.Fields() {
		if f.Key == k {
			return f, true
		}
	}
	return Field{}, false
}

// SerializeBundle emits the generic document for a bundle: its content
// version followed by one field per declared key, named by the key's query.
// Concrete bundle types implement Serialize by delegating here.
func SerializeBundle(b Bundle) *Document {
	d := NewDocument()
	d.Set(QueryContentVersion, b.Version())
	for _, f := range b.Fields() {
		d.Set(f.Key.Query(), f.Get())
	}
	return d
}

// deserializeInto populates a mutable bundle from a document through its
// field table. Fields missing from the document fall back to the key's
// default; keys without defaults make the document undecodable.
func deserializeInto(b MutableBundle, d *Document) error {
	for _, f := range b.Fields() {
		v, ok := d.Get(f.Key.Query())
		if !ok {
			def, has := f.Key.defaultValue()
			if !has {
				return &DeserializeError{Bundle: b.Name(), Field: f.Key.Query(), Err: ErrAbsent}
			}
			slog.Debug("keydata: document missing field, using key default",
				"bundle", b.Name(),
				"field", f.Key.Query())
			v = def
		}
		if err := f.Set(v); err != nil {
			return &DeserializeError{Bundle: b.Name(), Field: f.Key.Query(), Err: err}
		}
	}
	return nil
}

// keyMask computes the presence bitmask for a bundle's declared keys.
func keyMask(b Bundle) Bitmask {
	var mask Bitmask
	for _, k := range b.Keys() {
		mask.Set(k.ID())
	}
	return mask
}
