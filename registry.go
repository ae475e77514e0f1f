package keydata

import (
	"fmt"
	"log/slog"
	"reflect"
)

// bundleType describes a registered bundle: its identity, content version
// and default factory. Deserialization routes through the factory plus the
// bundle's own field table.
type bundleType struct {
	name    string
	version int
	rtype   reflect.Type
	keys    Bitmask
	create  func() MutableBundle
}

// Registry is the process-wide composition root. It wires keys, bundles and
// processors together and routes every holder request to the correct
// processor.
//
// Concurrency:
// A Registry is populated once by Builder.Init during a sequential startup
// phase and is immutable afterward. All read and routing methods are safe
// for concurrent use without locking. Per-request objects (bundles, values,
// results) are owned by the caller that requested them and must not be
// shared across concurrent operations.
type Registry struct {
	keysByName map[string]Key
	keysByID   [MaxKeys]Key
	keyCount   int

	bundles      map[string]*bundleType
	bundleByType map[reflect.Type]*bundleType

	procs     *processorTable
	observers []Observer
}

// LookupKey returns the registered key with the given identifier.
func (r *Registry) LookupKey(name string) (Key, bool) {
	k, ok := r.keysByName[name]
	return k, ok
}

// KeyByID returns the registered key with the given numeric id.
func (r *Registry) KeyByID(id KeyID) (Key, bool) {
	k := r.keysByID[id]
	return k, k != nil
}

// Keys returns every registered key in key id order.
func (r *Registry) Keys() []Key {
	out := make([]Key, 0, r.keyCount)
	for _, k := range r.keysByID {
		if k != nil {
			out = append(out, k)
		}
	}
	return out
}

// KeyCount returns the number of registered keys.
func (r *Registry) KeyCount() int { return r.keyCount }

// BundleNames returns the identifiers of every registered bundle type.
func (r *Registry) BundleNames() []string {
	out := make([]string, 0, len(r.bundles))
	for name := range r.bundles {
		out = append(out, name)
	}
	return out
}

// BundleKeys returns the presence mask of the named bundle's declared keys.
func (r *Registry) BundleKeys(name string) (Bitmask, bool) {
	bt, ok := r.bundles[name]
	if !ok {
		return Bitmask{}, false
	}
	return bt.keys, true
}

// NewBundle creates a default-filled mutable bundle of the named type.
func (r *Registry) NewBundle(name string) (MutableBundle, bool) {
	bt, ok := r.bundles[name]
	if !ok {
		return nil, false
	}
	return bt.create(), true
}

// Supports reports whether any registered processor can serve the named
// bundle against the holder's type.
func (r *Registry) Supports(holder any, bundle string) bool {
	_, ok := r.procs.bundleProcessorFor(bundle, holder)
	return ok
}

// Exists reports whether the holder currently carries the named bundle's
// data. False for unsupported holders.
func (r *Registry) Exists(holder any, bundle string) bool {
	p, ok := r.procs.bundleProcessorFor(bundle, holder)
	if !ok {
		return false
	}
	return p.Exists(holder)
}

// ReadBundle returns a caller-owned copy of the holder's data for the named
// bundle, or false when the holder is unsupported or does not carry it.
func (r *Registry) ReadBundle(holder any, bundle string) (MutableBundle, bool) {
	p, ok := r.procs.bundleProcessorFor(bundle, holder)
	if !ok {
		return nil, false
	}
	return p.Read(holder)
}

// ReadBundleOrDefault returns the holder's data for the named bundle,
// default-filled when the holder supports the bundle but does not carry it.
// It fails with ErrUnsupported when no processor serves the holder's type.
func (r *Registry) ReadBundleOrDefault(holder any, bundle string) (MutableBundle, error) {
	p, ok := r.procs.bundleProcessorFor(bundle, holder)
	if !ok {
		return nil, fmt.Errorf("%w: bundle %q, holder %T", ErrUnsupported, bundle, holder)
	}
	return p.ReadOrDefault(holder), nil
}

// Apply writes every field of b to the holder, all-or-nothing. Each field is
// validated against its key's bounds before the processor is invoked; a
// single invalid field rejects the whole call and leaves the holder
// completely unmodified. Successful applies notify registered observers.
func (r *Registry) Apply(holder any, b Bundle) TransactionResult {
	for _, f := range b.Fields() {
		if err := f.Key.validate(f.Get()); err != nil {
			return FailedResult(ResultOutOfBounds, err)
		}
	}
	p, ok := r.procs.bundleProcessorFor(b.Name(), holder)
	if !ok {
		return FailedResult(ResultUnsupported, fmt.Errorf("%w: bundle %q, holder %T", ErrUnsupported, b.Name(), holder))
	}
	res := p.Apply(holder, b)
	if res.Success() {
		r.notify(ChangeEvent{Holder: holder, Subject: b.Name(), Op: OpApply, Result: res})
	}
	return res
}

// RemoveBundle clears the named bundle's data from the holder. Mandatory
// properties fail with a ResultUnremovable outcome. Successful removals
// notify registered observers.
func (r *Registry) RemoveBundle(holder any, bundle string) TransactionResult {
	p, ok := r.procs.bundleProcessorFor(bundle, holder)
	if !ok {
		return FailedResult(ResultUnsupported, fmt.Errorf("%w: bundle %q, holder %T", ErrUnsupported, bundle, holder))
	}
	res := p.Remove(holder)
	if res.Success() {
		r.notify(ChangeEvent{Holder: holder, Subject: bundle, Op: OpRemove, Result: res})
	}
	return res
}

// HasValue reports whether the holder currently carries a value for the key.
func (r *Registry) HasValue(holder any, k Key) bool {
	p, ok := r.procs.valueProcessorFor(k.Name(), holder)
	if !ok {
		return false
	}
	return p.Exists(holder)
}

// RemoveValue clears the key's value from the holder. Mandatory properties
// fail with a ResultUnremovable outcome.
func (r *Registry) RemoveValue(holder any, k Key) TransactionResult {
	p, ok := r.procs.valueProcessorFor(k.Name(), holder)
	if !ok {
		return FailedResult(ResultUnsupported, fmt.Errorf("%w: key %q, holder %T", ErrUnsupported, k.Name(), holder))
	}
	res := p.Remove(holder)
	if res.Success() {
		r.notify(ChangeEvent{Holder: holder, Subject: k.Name(), Op: OpRemove, Result: res})
	}
	return res
}

// Deserialize decodes a document into a new mutable bundle of the named
// type. Unknown bundles and mismatched content versions fail with
// DeserializeError.
func (r *Registry) Deserialize(bundle string, d *Document) (MutableBundle, error) {
	bt, ok := r.bundles[bundle]
	if !ok {
		return nil, &DeserializeError{Bundle: bundle, Err: fmt.Errorf("unknown bundle")}
	}
	ver, ok := d.GetInt(QueryContentVersion)
	if !ok {
		slog.Warn("keydata: document has no content version, assuming current",
			"bundle", bundle,
			"version", bt.version)
	} else if ver != bt.version {
		return nil, &DeserializeError{
			Bundle: bundle,
			Field:  QueryContentVersion,
			Err:    fmt.Errorf("unsupported content version %d, want %d", ver, bt.version),
		}
	}
	b := bt.create()
	if err := deserializeInto(b, d); err != nil {
		return nil, err
	}
	return b, nil
}

// bundleTypeFor resolves a registered bundle by its concrete Go type.
func (r *Registry) bundleTypeFor(t reflect.Type) (*bundleType, bool) {
	bt, ok := r.bundleByType[t]
	return bt, ok
}

// Read returns a caller-owned copy of the holder's data for bundle type B,
// or false when the holder is unsupported or does not carry it.
//
//	health, ok := keydata.Read[*HealthData](reg, rec)
func Read[B MutableBundle](r *Registry, holder any) (B, bool) {
	var zero B
	bt, ok := r.bundleTypeFor(reflect.TypeOf((*B)(nil)).Elem())
	if !ok {
		return zero, false
	}
	mb, ok := r.ReadBundle(holder, bt.name)
	if !ok {
		return zero, false
	}
	b, ok := mb.(B)
	if !ok {
		return zero, false
	}
	return b, true
}

// ReadOrDefault returns the holder's data for bundle type B, default-filled
// when absent. It fails with ErrUnsupported when no processor serves the
// holder's type.
func ReadOrDefault[B MutableBundle](r *Registry, holder any) (B, error) {
	var zero B
	bt, ok := r.bundleTypeFor(reflect.TypeOf((*B)(nil)).Elem())
	if !ok {
		return zero, fmt.Errorf("keydata: bundle type %v is not registered", reflect.TypeOf((*B)(nil)).Elem())
	}
	mb, err := r.ReadBundleOrDefault(holder, bt.name)
	if err != nil {
		return zero, err
	}
	b, ok := mb.(B)
	if !ok {
		return zero, fmt.Errorf("keydata: processor for %q returned %T, want %v", bt.name, mb, reflect.TypeOf((*B)(nil)).Elem())
	}
	return b, nil
}

// Remove clears bundle type B's data from the holder.
func Remove[B MutableBundle](r *Registry, holder any) TransactionResult {
	bt, ok := r.bundleTypeFor(reflect.TypeOf((*B)(nil)).Elem())
	if !ok {
		return FailedResult(ResultUnsupported, fmt.Errorf("keydata: bundle type %v is not registered", reflect.TypeOf((*B)(nil)).Elem()))
	}
	return r.RemoveBundle(holder, bt.name)
}

// DeserializeBundle decodes a document into a new bundle of type B.
func DeserializeBundle[B MutableBundle](r *Registry, d *Document) (B, error) {
	var zero B
	bt, ok := r.bundleTypeFor(reflect.TypeOf((*B)(nil)).Elem())
	if !ok {
		return zero, fmt.Errorf("keydata: bundle type %v is not registered", reflect.TypeOf((*B)(nil)).Elem())
	}
	mb, err := r.Deserialize(bt.name, d)
	if err != nil {
		return zero, err
	}
	return mb.(B), nil
}

// Get returns the holder's current value for the key, routed through the
// most specific registered value processor. False when the holder is
// unsupported or does not carry the value.
//
//	health, ok := keydata.Get(reg, rec, KeyHealth)
func Get[T any](r *Registry, holder any, k *TypedKey[T]) (T, bool) {
	var zero T
	p, ok := r.procs.valueProcessorFor(k.Name(), holder)
	if !ok {
		return zero, false
	}
	v, ok := p.Read(holder)
	if !ok {
		return zero, false
	}
	tv, ok := v.(T)
	if !ok {
		return zero, false
	}
	return tv, true
}

// GetOrDefault returns the holder's value for the key, the key's default
// when absent. It fails with ErrUnsupported when no processor serves the
// holder's type.
func GetOrDefault[T any](r *Registry, holder any, k *TypedKey[T]) (T, error) {
	var zero T
	p, ok := r.procs.valueProcessorFor(k.Name(), holder)
	if !ok {
		return zero, fmt.Errorf("%w: key %q, holder %T", ErrUnsupported, k.Name(), holder)
	}
	v := p.ReadOrDefault(holder)
	tv, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("keydata: processor for key %q returned %T, want %v", k.Name(), v, k.ValueType())
	}
	return tv, nil
}

// Offer writes one value to the holder. The value is validated against the
// key's bounds before the processor is invoked; out-of-range values fail
// with a ResultOutOfBounds outcome and leave the holder unmodified.
// Successful offers notify registered observers.
func Offer[T any](r *Registry, holder any, k *TypedKey[T], v T) TransactionResult {
	if err := k.check(v); err != nil {
		return FailedResult(ResultOutOfBounds, err)
	}
	p, ok := r.procs.valueProcessorFor(k.Name(), holder)
	if !ok {
		return FailedResult(ResultUnsupported, fmt.Errorf("%w: key %q, holder %T", ErrUnsupported, k.Name(), holder))
	}
	res := p.Offer(holder, v)
	if res.Success() {
		r.notify(ChangeEvent{Holder: holder, Subject: k.Name(), Op: OpOffer, Result: res})
	}
	return res
}
