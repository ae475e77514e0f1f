package keydata

import (
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Record is an in-memory, document-serializable holder. It is the reference
// holder implementation: engine-owned objects (entities, items, blocks) get
// their own processors in the embedding application, while records carry
// custom data with no native representation.
//
// Concurrency:
// A Record's stored state is guarded internally, so processor calls against
// the same record from different goroutines are safe. The bundles returned
// by Read are caller-owned copies; mutating them never touches the record
// until they are applied back.
type Record struct {
	id uuid.UUID

	mu sync.RWMutex

	// mask tracks which keys are currently carried (256 bits)
	mask Bitmask

	// bundles stores frozen snapshots indexed by bundle name
	bundles map[string]ImmutableBundle
}

// NewRecord creates an empty record with a fresh identity.
func NewRecord() *Record {
	return &Record{
		id:      uuid.New(),
		bundles: make(map[string]ImmutableBundle),
	}
}

// newRecordWithID restores a record with a known identity.
func newRecordWithID(id uuid.UUID) *Record {
	return &Record{
		id:      id,
		bundles: make(map[string]ImmutableBundle),
	}
}

// ID returns the record's identity.
func (r *Record) ID() uuid.UUID { return r.id }

// Carries reports whether the record currently holds a value for the key.
func (r *Record) Carries(k Key) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.mask.Has(k.ID())
}

// Mask returns a copy of the record's key presence bitmask.
func (r *Record) Mask() Bitmask {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.mask.Clone()
}

// BundleNames returns the names of every bundle the record carries, sorted.
func (r *Record) BundleNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.bundles))
	for name := range r.bundles {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// String returns a compact representation for debugging.
func (r *Record) String() string {
	return fmt.Sprintf("Record{ID: %s, Bundles: %v}", r.id, r.BundleNames())
}

// bundle returns the stored snapshot for a bundle name.
func (r *Record) bundle(name string) (ImmutableBundle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.bundles[name]
	return b, ok
}

// storeBundle replaces the stored snapshot for a bundle.
func (r *Record) storeBundle(b ImmutableBundle) {
	r.mu.Lock()
	r.bundles[b.Name()] = b
	r.mask = r.mask.Or(keyMask(b))
	r.mu.Unlock()
}

// removeBundle deletes a stored snapshot and recomputes the key mask from
// the remaining bundles.
func (r *Record) removeBundle(name string) (ImmutableBundle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	prior, ok := r.bundles[name]
	if !ok {
		return nil, false
	}
	delete(r.bundles, name)

	var mask Bitmask
	for _, b := range r.bundles {
		mask = mask.Or(keyMask(b))
	}
	r.mask = mask
	return prior, true
}

// Serialize emits the record as a generic document: its identity plus one
// nested document per carried bundle.
func (r *Record) Serialize() *Document {
	d := NewDocument()
	d.Set("Id", r.id.String())

	bundles := NewDocument()
	for _, name := range r.BundleNames() {
		if b, ok := r.bundle(name); ok {
			bundles.Set(name, b.Serialize())
		}
	}
	d.Set("Bundles", bundles)
	return d
}

// DeserializeRecord restores a record from a document produced by
// Record.Serialize, decoding each nested bundle through the registry.
func DeserializeRecord(reg *Registry, d *Document) (*Record, error) {
	raw, ok := d.GetString("Id")
	if !ok {
		return nil, fmt.Errorf("keydata: record document has no Id field")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("keydata: record document has invalid Id: %w", err)
	}

	rec := newRecordWithID(id)
	bundles, ok := d.GetDocument("Bundles")
	if !ok {
		return rec, nil
	}
	for _, name := range bundles.Fields() {
		sub, ok := bundles.GetDocument(name)
		if !ok {
			return nil, &DeserializeError{Bundle: name, Err: fmt.Errorf("bundle entry is not a document")}
		}
		mb, err := reg.Deserialize(name, sub)
		if err != nil {
			return nil, err
		}
		rec.storeBundle(mb.ToImmutable())
	}
	return rec, nil
}

// recordProcessorOptions configures record-backed processors.
type recordProcessorOptions struct {
	mandatory bool
}

// RecordProcessorOption configures a record-backed processor.
type RecordProcessorOption func(*recordProcessorOptions)

// Mandatory marks the property as one the holder type can never be without:
// Remove always fails with a ResultUnremovable outcome.
func Mandatory() RecordProcessorOption {
	return func(o *recordProcessorOptions) {
		o.mandatory = true
	}
}

// recordProcessor stores whole bundles of type B on *Record holders.
type recordProcessor[B MutableBundle] struct {
	name     string
	defaults func() B
	opts     recordProcessorOptions
}

// NewRecordProcessor returns a processor that stores bundle type B on
// *Record holders via the bundle's own serialize path.
func NewRecordProcessor[B MutableBundle](defaults func() B, opts ...RecordProcessorOption) BundleProcessor {
	p := &recordProcessor[B]{
		name:     defaults().Name(),
		defaults: defaults,
	}
	for _, opt := range opts {
		opt(&p.opts)
	}
	return p
}

func (p *recordProcessor[B]) Bundle() string { return p.name }

func (p *recordProcessor[B]) Holder() reflect.Type { return HolderType[*Record]() }

func (p *recordProcessor[B]) Exists(holder any) bool {
	rec, ok := holder.(*Record)
	if !ok {
		return false
	}
	_, ok = rec.bundle(p.name)
	return ok
}

func (p *recordProcessor[B]) Read(holder any) (MutableBundle, bool) {
	rec, ok := holder.(*Record)
	if !ok {
		return nil, false
	}
	snap, ok := rec.bundle(p.name)
	if !ok {
		return nil, false
	}
	return snap.ToMutable(), true
}

func (p *recordProcessor[B]) ReadOrDefault(holder any) MutableBundle {
	if b, ok := p.Read(holder); ok {
		return b
	}
	return p.defaults()
}

func (p *recordProcessor[B]) Apply(holder any, b Bundle) TransactionResult {
	rec, ok := holder.(*Record)
	if !ok {
		return FailedResult(ResultUnsupported, fmt.Errorf("%w: holder %T", ErrUnsupported, holder))
	}
	if b.Name() != p.name {
		return FailedResult(ResultUnsupported, fmt.Errorf("keydata: processor for %q cannot apply bundle %q", p.name, b.Name()))
	}

	// Validate every field before the first write: a single invalid field
	// rejects the whole call and the record keeps its prior state.
	for _, f := range b.Fields() {
		if err := f.Key.validate(f.Get()); err != nil {
			return FailedResult(ResultOutOfBounds, err)
		}
	}

	next := freezeBundle(b)
	prior, _ := rec.bundle(p.name)
	rec.storeBundle(next)
	return SuccessResult(replacements(prior, next)...)
}

func (p *recordProcessor[B]) Remove(holder any) TransactionResult {
	rec, ok := holder.(*Record)
	if !ok {
		return FailedResult(ResultUnsupported, fmt.Errorf("%w: holder %T", ErrUnsupported, holder))
	}
	if p.opts.mandatory {
		return FailedResult(ResultUnremovable, fmt.Errorf("%w: bundle %q", ErrUnremovable, p.name))
	}
	prior, ok := rec.removeBundle(p.name)
	if !ok {
		return FailedResult(ResultAbsent, fmt.Errorf("%w: bundle %q", ErrAbsent, p.name))
	}
	return SuccessResult(replacements(prior, nil)...)
}

// recordValueProcessor serves a single key whose value lives inside a
// record-stored bundle of type B.
type recordValueProcessor[T any, B MutableBundle] struct {
	key      *TypedKey[T]
	name     string
	defaults func() B
	opts     recordProcessorOptions
}

// NewRecordValueProcessor returns a single-value processor for key k backed
// by bundle type B on *Record holders. Its validation rules are the key's
// own, so bundle-level and value-level access stay consistent.
func NewRecordValueProcessor[T any, B MutableBundle](k *TypedKey[T], defaults func() B, opts ...RecordProcessorOption) ValueProcessor {
	p := &recordValueProcessor[T, B]{
		key:      k,
		name:     defaults().Name(),
		defaults: defaults,
	}
	for _, opt := range opts {
		opt(&p.opts)
	}
	return p
}

func (p *recordValueProcessor[T, B]) Key() Key { return p.key }

func (p *recordValueProcessor[T, B]) Holder() reflect.Type { return HolderType[*Record]() }

func (p *recordValueProcessor[T, B]) Exists(holder any) bool {
	rec, ok := holder.(*Record)
	if !ok {
		return false
	}
	return rec.Carries(p.key)
}

func (p *recordValueProcessor[T, B]) Read(holder any) (any, bool) {
	rec, ok := holder.(*Record)
	if !ok {
		return nil, false
	}
	snap, ok := rec.bundle(p.name)
	if !ok {
		return nil, false
	}
	v, ok := GetField(snap, p.key)
	if !ok {
		return nil, false
	}
	return v, true
}

func (p *recordValueProcessor[T, B]) ReadOrDefault(holder any) any {
	if v, ok := p.Read(holder); ok {
		return v
	}
	if def, has := p.key.Default(); has {
		return def
	}
	v, _ := GetField[T](p.defaults(), p.key)
	return v
}

func (p *recordValueProcessor[T, B]) Offer(holder any, v any) TransactionResult {
	rec, ok := holder.(*Record)
	if !ok {
		return FailedResult(ResultUnsupported, fmt.Errorf("%w: holder %T", ErrUnsupported, holder))
	}
	var mb MutableBundle
	if snap, ok := rec.bundle(p.name); ok {
		mb = snap.ToMutable()
	} else {
		mb = p.defaults()
	}
	f, ok := fieldFor(mb, p.key)
	if !ok {
		return FailedResult(ResultUnsupported, fmt.Errorf("keydata: bundle %q does not declare key %q", p.name, p.key.Name()))
	}
	before := f.Get()
	if err := f.Set(v); err != nil {
		return FailedResult(ResultOutOfBounds, err)
	}
	rec.storeBundle(mb.ToImmutable())
	return SuccessResult(Replacement{Query: p.key.Query(), Before: before, After: f.Get()})
}

func (p *recordValueProcessor[T, B]) Remove(holder any) TransactionResult {
	rec, ok := holder.(*Record)
	if !ok {
		return FailedResult(ResultUnsupported, fmt.Errorf("%w: holder %T", ErrUnsupported, holder))
	}
	if p.opts.mandatory {
		return FailedResult(ResultUnremovable, fmt.Errorf("%w: key %q", ErrUnremovable, p.key.Name()))
	}
	// Record values live inside their bundle; removing a removable value
	// clears the bundle's stored snapshot.
	prior, ok := rec.removeBundle(p.name)
	if !ok {
		return FailedResult(ResultAbsent, fmt.Errorf("%w: key %q", ErrAbsent, p.key.Name()))
	}
	before, _ := GetField(prior, p.key)
	return SuccessResult(Replacement{Query: p.key.Query(), Before: before, After: nil})
}

// freezeBundle produces an immutable snapshot from any bundle form.
func freezeBundle(b Bundle) ImmutableBundle {
	switch bb := b.(type) {
	case ImmutableBundle:
		return bb
	case MutableBundle:
		return bb.ToImmutable()
	default:
		panic(fmt.Sprintf("keydata: bundle %T is neither mutable nor immutable", b))
	}
}

// replacements diffs two bundle states field by field. Either side may be
// nil for creation or removal.
func replacements(prior, next Bundle) []Replacement {
	ref := next
	if ref == nil {
		ref = prior
	}
	if ref == nil {
		return nil
	}
	out := make([]Replacement, 0, len(ref.Fields()))
	for _, f := range ref.Fields() {
		rep := Replacement{Query: f.Key.Query()}
		if prior != nil {
			if pf, ok := fieldFor(prior, f.Key); ok {
				rep.Before = pf.Get()
			}
		}
		if next != nil {
			if nf, ok := fieldFor(next, f.Key); ok {
				rep.After = nf.Get()
			}
		}
		out = append(out, rep)
	}
	return out
}
