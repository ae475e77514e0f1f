package keydata

import "math"

// Keys for the health bundle. Health is clamped to the holder's float range;
// the 20.0 default matches a full vanilla health bar.
var (
	// KeyHealth is the holder's current health.
	KeyHealth = NewBoundedKey[float64]("health", 20, 0, math.MaxFloat32)

	// KeyMaxHealth is the holder's maximum health.
	KeyMaxHealth = NewBoundedKey[float64]("max_health", 20, 1, math.MaxFloat32)
)

// HealthData tracks a holder's current and maximum health. Health is a
// mandatory property on living holders: it can be changed but never removed.
type HealthData struct {
	Current float64
	Max     float64
}

// NewHealthData creates a default-filled health bundle.
func NewHealthData() *HealthData {
	return &HealthData{Current: 20, Max: 20}
}

// Name returns the bundle identifier.
func (h *HealthData) Name() string { return "health" }

// Version returns the content version.
func (h *HealthData) Version() int { return 1 }

// Keys returns the keys the bundle declares.
func (h *HealthData) Keys() []Key { return []Key{KeyHealth, KeyMaxHealth} }

// Fields returns the bundle's field table.
func (h *HealthData) Fields() []Field {
	return []Field{
		NewField(KeyHealth, func() float64 { return h.Current }, func(v float64) { h.Current = v }),
		NewField(KeyMaxHealth, func() float64 { return h.Max }, func(v float64) { h.Max = v }),
	}
}

// Serialize emits the bundle as a generic document.
func (h *HealthData) Serialize() *Document { return SerializeBundle(h) }

// Copy returns a deep duplicate.
func (h *HealthData) Copy() MutableBundle {
	c := *h
	return &c
}

// ToImmutable produces a frozen snapshot.
func (h *HealthData) ToImmutable() ImmutableBundle {
	return ImmutableHealthData{Current: h.Current, Max: h.Max}
}

// ImmutableHealthData is the frozen form of HealthData. It carries no
// mutators: writes against a snapshot are rejected by the type system.
type ImmutableHealthData struct {
	Current float64
	Max     float64
}

// Name returns the bundle identifier.
func (h ImmutableHealthData) Name() string { return "health" }

// Version returns the content version.
func (h ImmutableHealthData) Version() int { return 1 }

// Keys returns the keys the bundle declares.
func (h ImmutableHealthData) Keys() []Key { return []Key{KeyHealth, KeyMaxHealth} }

// Fields returns the bundle's read-only field table.
func (h ImmutableHealthData) Fields() []Field {
	return []Field{
		NewField(KeyHealth, func() float64 { return h.Current }, nil),
		NewField(KeyMaxHealth, func() float64 { return h.Max }, nil),
	}
}

// Serialize emits the snapshot as a generic document.
func (h ImmutableHealthData) Serialize() *Document { return SerializeBundle(h) }

// ToMutable returns a caller-owned mutable copy.
func (h ImmutableHealthData) ToMutable() MutableBundle {
	return &HealthData{Current: h.Current, Max: h.Max}
}

// RegisterHealth wires the health bundle, its keys and its record processors
// into the builder. Health is mandatory on records: Remove always fails with
// a ResultUnremovable outcome.
func RegisterHealth(b *Builder) *Builder {
	return b.
		Key(KeyHealth, KeyMaxHealth).
		Bundle(func() MutableBundle { return NewHealthData() }).
		BundleProcessor(NewRecordProcessor(NewHealthData, Mandatory())).
		ValueProcessor(NewRecordValueProcessor(KeyHealth, NewHealthData, Mandatory())).
		ValueProcessor(NewRecordValueProcessor(KeyMaxHealth, NewHealthData, Mandatory()))
}
