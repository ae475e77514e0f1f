package keydata

import (
	"fmt"
	"log/slog"
	"reflect"
)

// Builder configures a Registry before initialization. It is the single
// canonical registration entry point: keys, bundles and processors are
// installed here during a sequential startup phase, and the resulting
// Registry is immutable.
//
//	reg := keydata.NewBuilder().
//	    Key(KeyHealth, KeyMaxHealth).
//	    Bundle(func() keydata.MutableBundle { return NewHealthData() }).
//	    BundleProcessor(keydata.NewRecordProcessor(NewHealthData, keydata.Mandatory())).
//	    Init()
type Builder struct {
	keys        []Key
	bundles     []func() MutableBundle
	bundleProcs []BundleProcessor
	valueProcs  []ValueProcessor
	observers   []Observer
}

// NewBuilder creates a new registry builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Key registers one or more keys.
func (b *Builder) Key(keys ...Key) *Builder {
	b.keys = append(b.keys, keys...)
	return b
}

// Bundle registers a bundle type through its default factory. The factory
// must return a fresh default-filled bundle on every call; it is also used
// to deserialize documents.
func (b *Builder) Bundle(create func() MutableBundle) *Builder {
	b.bundles = append(b.bundles, create)
	return b
}

// BundleProcessor registers a whole-bundle processor.
func (b *Builder) BundleProcessor(p BundleProcessor) *Builder {
	b.bundleProcs = append(b.bundleProcs, p)
	return b
}

// ValueProcessor registers a single-value processor.
func (b *Builder) ValueProcessor(p ValueProcessor) *Builder {
	b.valueProcs = append(b.valueProcs, p)
	return b
}

// Observe registers a change observer, notified after every successful
// mutation routed through the registry.
func (b *Builder) Observe(fn Observer) *Builder {
	b.observers = append(b.observers, fn)
	return b
}

// Init builds the Registry. Registration errors are fatal and abort startup
// with a panic; use Build to handle them as values.
func (b *Builder) Init() *Registry {
	r, err := b.Build()
	if err != nil {
		panic("keydata: failed to build registry: " + err.Error())
	}
	return r
}

// Build validates every registration and assembles the Registry. It fails
// with DuplicateKeyError for conflicting key identifiers and
// AmbiguousProcessorError for processor ties; both indicate programmer
// errors that should abort startup.
func (b *Builder) Build() (*Registry, error) {
	r := &Registry{
		keysByName:   make(map[string]Key, len(b.keys)),
		bundles:      make(map[string]*bundleType, len(b.bundles)),
		bundleByType: make(map[reflect.Type]*bundleType, len(b.bundles)),
		procs:        newProcessorTable(),
		observers:    b.observers,
	}

	for _, k := range b.keys {
		if _, exists := r.keysByName[k.Name()]; exists {
			return nil, &DuplicateKeyError{Name: k.Name()}
		}
		r.keysByName[k.Name()] = k
		r.keysByID[k.ID()] = k
		r.keyCount++
	}

	for _, create := range b.bundles {
		if err := r.registerBundle(create); err != nil {
			return nil, err
		}
	}

	for _, p := range b.bundleProcs {
		if _, ok := r.bundles[p.Bundle()]; !ok {
			return nil, fmt.Errorf("keydata: processor registered for unknown bundle %q", p.Bundle())
		}
		if err := r.procs.addBundleProcessor(p); err != nil {
			return nil, err
		}
	}

	for _, p := range b.valueProcs {
		if r.keysByName[p.Key().Name()] != p.Key() {
			return nil, fmt.Errorf("keydata: value processor registered for unregistered key %q", p.Key().Name())
		}
		if err := r.procs.addValueProcessor(p); err != nil {
			return nil, err
		}
	}

	slog.Debug("keydata: registry built",
		"keys", r.keyCount,
		"bundles", len(r.bundles))
	return r, nil
}

// registerBundle validates a bundle type against its own declaration:
// every declared key must be registered, appear in the field table and
// resolve through the serialize path. A declared key that cannot be read
// back is a silent gap and rejected here, at registration.
func (r *Registry) registerBundle(create func() MutableBundle) error {
	probe := create()
	name := probe.Name()
	if name == "" {
		return fmt.Errorf("keydata: bundle %T has an empty name", probe)
	}
	if _, exists := r.bundles[name]; exists {
		return fmt.Errorf("keydata: duplicate bundle %q", name)
	}
	if probe.Version() < 1 {
		return fmt.Errorf("keydata: bundle %q has content version %d, want >= 1", name, probe.Version())
	}

	doc := probe.Serialize()
	for _, k := range probe.Keys() {
		if r.keysByName[k.Name()] != k {
			return fmt.Errorf("keydata: bundle %q declares unregistered key %q", name, k.Name())
		}
		if _, ok := fieldFor(probe, k); !ok {
			return fmt.Errorf("keydata: bundle %q declares key %q without a field table entry", name, k.Name())
		}
		if _, ok := doc.Get(k.Query()); !ok {
			return fmt.Errorf("keydata: bundle %q does not serialize key %q", name, k.Name())
		}
	}

	bt := &bundleType{
		name:    name,
		version: probe.Version(),
		rtype:   reflect.TypeOf(probe),
		keys:    keyMask(probe),
		create:  create,
	}
	r.bundles[name] = bt
	r.bundleByType[bt.rtype] = bt
	return nil
}
