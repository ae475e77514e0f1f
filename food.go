package keydata

// Keys for the food bundle.
var (
	// KeyFoodLevel is the holder's food level, a full bar at 20.
	KeyFoodLevel = NewBoundedKey[int]("food_level", 20, 0, 20)

	// KeySaturation buffers food level loss.
	KeySaturation = NewBoundedKey[float64]("saturation", 5, 0, 20)

	// KeyExhaustion accumulates activity cost until saturation drains.
	KeyExhaustion = NewBoundedKey[float64]("exhaustion", 0, 0, 4)
)

// FoodData tracks a holder's hunger state.
type FoodData struct {
	Level      int
	Saturation float64
	Exhaustion float64
}

// NewFoodData creates a default-filled food bundle.
func NewFoodData() *FoodData {
	return &FoodData{Level: 20, Saturation: 5}
}

// Name returns the bundle identifier.
func (f *FoodData) Name() string { return "food" }

// Version returns the content version.
func (f *FoodData) Version() int { return 1 }

// Keys returns the keys the bundle declares.
func (f *FoodData) Keys() []Key { return []Key{KeyFoodLevel, KeySaturation, KeyExhaustion} }

// Fields returns the bundle's field table.
func (f *FoodData) Fields() []Field {
	return []Field{
		NewField(KeyFoodLevel, func() int { return f.Level }, func(v int) { f.Level = v }),
		NewField(KeySaturation, func() float64 { return f.Saturation }, func(v float64) { f.Saturation = v }),
		NewField(KeyExhaustion, func() float64 { return f.Exhaustion }, func(v float64) { f.Exhaustion = v }),
	}
}

// Serialize emits the bundle as a generic document.
func (f *FoodData) Serialize() *Document { return SerializeBundle(f) }

// Copy returns a deep duplicate.
func (f *FoodData) Copy() MutableBundle {
	c := *f
	return &c
}

// ToImmutable produces a frozen snapshot.
func (f *FoodData) ToImmutable() ImmutableBundle {
	return ImmutableFoodData{Level: f.Level, Saturation: f.Saturation, Exhaustion: f.Exhaustion}
}

// ImmutableFoodData is the frozen form of FoodData.
type ImmutableFoodData struct {
	Level      int
	Saturation float64
	Exhaustion float64
}

// Name returns the bundle identifier.
func (f ImmutableFoodData) Name() string { return "food" }

// Version returns the content version.
func (f ImmutableFoodData) Version() int { return 1 }

// Keys returns the keys the bundle declares.
func (f ImmutableFoodData) Keys() []Key { return []Key{KeyFoodLevel, KeySaturation, KeyExhaustion} }

// Fields returns the bundle's read-only field table.
func (f ImmutableFoodData) Fields() []Field {
	return []Field{
		NewField(KeyFoodLevel, func() int { return f.Level }, nil),
		NewField(KeySaturation, func() float64 { return f.Saturation }, nil),
		NewField(KeyExhaustion, func() float64 { return f.Exhaustion }, nil),
	}
}

// Serialize emits the snapshot as a generic document.
func (f ImmutableFoodData) Serialize() *Document { return SerializeBundle(f) }

// ToMutable returns a caller-owned mutable copy.
func (f ImmutableFoodData) ToMutable() MutableBundle {
	return &FoodData{Level: f.Level, Saturation: f.Saturation, Exhaustion: f.Exhaustion}
}

// RegisterFood wires the food bundle, its keys and its record processors
// into the builder. Food is mandatory on records, like health.
func RegisterFood(b *Builder) *Builder {
	return b.
		Key(KeyFoodLevel, KeySaturation, KeyExhaustion).
		Bundle(func() MutableBundle { return NewFoodData() }).
		BundleProcessor(NewRecordProcessor(NewFoodData, Mandatory())).
		ValueProcessor(NewRecordValueProcessor(KeyFoodLevel, NewFoodData, Mandatory())).
		ValueProcessor(NewRecordValueProcessor(KeySaturation, NewFoodData, Mandatory())).
		ValueProcessor(NewRecordValueProcessor(KeyExhaustion, NewFoodData, Mandatory()))
}
