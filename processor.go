package keydata

import (
	"reflect"
)

// BundleProcessor translates whole-bundle operations into holder-specific
// reads and writes. Processors are stateless strategies bound to one holder
// type family; they never own holder state, only mediate access to it.
//
// Holders are opaque, externally-owned objects. The core never constructs
// them; it only reads and writes them through processor calls.
//
// Multiple processors may be registered for the same bundle against
// different holder-type families. Dispatch picks the most specific match;
// ties are rejected with AmbiguousProcessorError at registration time.
type BundleProcessor interface {
	// Bundle returns the name of the bundle type this processor serves.
	Bundle() string

	// Holder returns the holder type family this processor supports: a
	// concrete type, or an interface type for a subtype family. Use
	// HolderType to express it.
	Holder() reflect.Type

	// Exists reports whether the holder currently carries the bundle's data.
	Exists(holder any) bool

	// Read returns a caller-owned mutable copy of the holder's data, or
	// false when the holder does not carry it.
	Read(holder any) (MutableBundle, bool)

	// ReadOrDefault returns the holder's data, default-filled when absent.
	ReadOrDefault(holder any) MutableBundle

	// Apply writes every field of b to the holder. The call is
	// all-or-nothing: each field is validated against its key's bounds
	// before the first write, and a validation failure leaves the holder
	// completely unmodified.
	Apply(holder any, b Bundle) TransactionResult

	// Remove clears the bundle's data from the holder. Mandatory properties
	// fail with a ResultUnremovable outcome.
	Remove(holder any) TransactionResult
}

// ValueProcessor is the single-key analogue of BundleProcessor, used when a
// value is offered to a holder independent of its parent bundle. Its
// validation rules must stay consistent with the bundle-level processor for
// the same key; this is asserted in tests rather than by the type system.
type ValueProcessor interface {
	// Key returns the key this processor serves.
	Key() Key

	// Holder returns the holder type family this processor supports.
	Holder() reflect.Type

	// Exists reports whether the holder currently carries the key's value.
	Exists(holder any) bool

	// Read returns the holder's current value for the key, or false when
	// absent.
	Read(holder any) (any, bool)

	// ReadOrDefault returns the holder's value, the key's default when
	// absent.
	ReadOrDefault(holder any) any

	// Offer writes one value to the holder after validating it against the
	// key's bounds.
	Offer(holder any, v any) TransactionResult

	// Remove clears the key's value from the holder.
	Remove(holder any) TransactionResult
}

// HolderType returns the reflect.Type for a holder type family. Use a
// concrete type for exact matches or an interface for a subtype family:
//
//	keydata.HolderType[*Record]()    // exact holder type
//	keydata.HolderType[Living]()     // any holder implementing Living
func HolderType[H any]() reflect.Type {
	return reflect.TypeOf((*H)(nil)).Elem()
}

// holderSupports reports whether a holder of dynamic type ht belongs to the
// given family. This is the cheap supports() check every dispatch performs
// before touching the holder.
func holderSupports(family, ht reflect.Type) bool {
	if family == nil || ht == nil {
		return false
	}
	if family.Kind() == reflect.Interface {
		return ht.Implements(family)
	}
	return ht == family
}
