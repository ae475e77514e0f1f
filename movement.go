package keydata

import "github.com/go-gl/mathgl/mgl64"

// Keys for the movement bundle.
var (
	// KeyVelocity is the holder's velocity vector in blocks per tick.
	KeyVelocity = NewKey[mgl64.Vec3]("velocity", WithDefault(mgl64.Vec3{}))

	// KeySpeedScale multiplies the holder's base movement speed.
	KeySpeedScale = NewBoundedKey[float64]("speed_scale", 1, 0.01, 10)
)

// MovementData tracks a holder's velocity and speed multiplier.
type MovementData struct {
	Velocity   mgl64.Vec3
	SpeedScale float64
}

// NewMovementData creates a default-filled movement bundle.
func NewMovementData() *MovementData {
	return &MovementData{SpeedScale: 1}
}

// Name returns the bundle identifier.
func (m *MovementData) Name() string { return "movement" }

// Version returns the content version.
func (m *MovementData) Version() int { return 1 }

// Keys returns the keys the bundle declares.
func (m *MovementData) Keys() []Key { return []Key{KeyVelocity, KeySpeedScale} }

// Fields returns the bundle's field table.
func (m *MovementData) Fields() []Field {
	return []Field{
		NewField(KeyVelocity, func() mgl64.Vec3 { return m.Velocity }, func(v mgl64.Vec3) { m.Velocity = v }),
		NewField(KeySpeedScale, func() float64 { return m.SpeedScale }, func(v float64) { m.SpeedScale = v }),
	}
}

// Serialize emits the bundle as a generic document. The velocity vector is
// encoded as a nested X/Y/Z document.
func (m *MovementData) Serialize() *Document { return SerializeBundle(m) }

// Copy returns a deep duplicate.
func (m *MovementData) Copy() MutableBundle {
	c := *m
	return &c
}

// ToImmutable produces a frozen snapshot.
func (m *MovementData) ToImmutable() ImmutableBundle {
	return ImmutableMovementData{Velocity: m.Velocity, SpeedScale: m.SpeedScale}
}

// ImmutableMovementData is the frozen form of MovementData.
type ImmutableMovementData struct {
	Velocity   mgl64.Vec3
	SpeedScale float64
}

// Name returns the bundle identifier.
func (m ImmutableMovementData) Name() string { return "movement" }

// Version returns the content version.
func (m ImmutableMovementData) Version() int { return 1 }

// Keys returns the keys the bundle declares.
func (m ImmutableMovementData) Keys() []Key { return []Key{KeyVelocity, KeySpeedScale} }

// Fields returns the bundle's read-only field table.
func (m ImmutableMovementData) Fields() []Field {
	return []Field{
		NewField(KeyVelocity, func() mgl64.Vec3 { return m.Velocity }, nil),
		NewField(KeySpeedScale, func() float64 { return m.SpeedScale }, nil),
	}
}

// Serialize emits the snapshot as a generic document.
func (m ImmutableMovementData) Serialize() *Document { return SerializeBundle(m) }

// ToMutable returns a caller-owned mutable copy.
func (m ImmutableMovementData) ToMutable() MutableBundle {
	return &MovementData{Velocity: m.Velocity, SpeedScale: m.SpeedScale}
}

// RegisterMovement wires the movement bundle, its keys and its record
// processors into the builder. Movement data is removable.
func RegisterMovement(b *Builder) *Builder {
	return b.
		Key(KeyVelocity, KeySpeedScale).
		Bundle(func() MutableBundle { return NewMovementData() }).
		BundleProcessor(NewRecordProcessor(NewMovementData)).
		ValueProcessor(NewRecordValueProcessor(KeyVelocity, NewMovementData)).
		ValueProcessor(NewRecordValueProcessor(KeySpeedScale, NewMovementData))
}
