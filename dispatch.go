package keydata

import (
	"reflect"
	"slices"
)

// processorTable routes holder requests to the most specific registered
// processor. It is populated during the sequential startup phase and
// read-only afterward, so lookups take no locks.
type processorTable struct {
	// byBundle maps bundle name to processors sorted most specific first.
	byBundle map[string][]BundleProcessor

	// byKey maps key identifier to processors sorted most specific first.
	byKey map[string][]ValueProcessor
}

func newProcessorTable() *processorTable {
	return &processorTable{
		byBundle: make(map[string][]BundleProcessor),
		byKey:    make(map[string][]ValueProcessor),
	}
}

// addBundleProcessor registers a processor, rejecting ambiguous holder-type
// pairs. Detection happens here, at registration, never at call time.
func (t *processorTable) addBundleProcessor(p BundleProcessor) error {
	list := t.byBundle[p.Bundle()]
	for _, q := range list {
		if !orderableHolders(p.Holder(), q.Holder()) {
			return &AmbiguousProcessorError{Subject: p.Bundle(), First: q.Holder(), Second: p.Holder()}
		}
	}
	list = append(list, p)
	slices.SortStableFunc(list, func(a, b BundleProcessor) int {
		return compareSpecificity(a.Holder(), b.Holder())
	})
	t.byBundle[p.Bundle()] = list
	return nil
}

// addValueProcessor registers a single-value processor with the same
// ambiguity rules as addBundleProcessor.
func (t *processorTable) addValueProcessor(p ValueProcessor) error {
	name := p.Key().Name()
	list := t.byKey[name]
	for _, q := range list {
		if !orderableHolders(p.Holder(), q.Holder()) {
			return &AmbiguousProcessorError{Subject: name, First: q.Holder(), Second: p.Holder()}
		}
	}
	list = append(list, p)
	slices.SortStableFunc(list, func(a, b ValueProcessor) int {
		return compareSpecificity(a.Holder(), b.Holder())
	})
	t.byKey[name] = list
	return nil
}

// bundleProcessorFor returns the most specific processor supporting the
// holder's dynamic type.
func (t *processorTable) bundleProcessorFor(bundle string, holder any) (BundleProcessor, bool) {
	ht := reflect.TypeOf(holder)
	for _, p := range t.byBundle[bundle] {
		if holderSupports(p.Holder(), ht) {
			return p, true
		}
	}
	return nil, false
}

// valueProcessorFor returns the most specific single-value processor
// supporting the holder's dynamic type.
func (t *processorTable) valueProcessorFor(key string, holder any) (ValueProcessor, bool) {
	ht := reflect.TypeOf(holder)
	for _, p := range t.byKey[key] {
		if holderSupports(p.Holder(), ht) {
			return p, true
		}
	}
	return nil, false
}

// orderableHolders reports whether two holder type families can coexist for
// the same subject. Families coexist when they are provably disjoint
// (distinct concrete types, or a concrete type next to any interface) or
// strictly ordered (one interface implements the other, in exactly one
// direction). Identical families and incomparable interfaces are ambiguous.
func orderableHolders(a, b reflect.Type) bool {
	if a == b {
		return false
	}
	aIface := a.Kind() == reflect.Interface
	bIface := b.Kind() == reflect.Interface
	if aIface && bIface {
		aImplB := a.Implements(b)
		bImplA := b.Implements(a)
		return aImplB != bImplA
	}
	return true
}

// compareSpecificity orders holder families most specific first: concrete
// types before interfaces, narrower interfaces before wider ones.
func compareSpecificity(a, b reflect.Type) int {
	aIface := a.Kind() == reflect.Interface
	bIface := b.Kind() == reflect.Interface
	switch {
	case !aIface && bIface:
		return -1
	case aIface && !bIface:
		return 1
	case aIface && bIface:
		if a.Implements(b) {
			return -1
		}
		if b.Implements(a) {
			return 1
		}
	}
	return 0
}
