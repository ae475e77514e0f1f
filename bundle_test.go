package keydata

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/require"
)

func TestSerializeBundleLayout(t *testing.T) {
	h := &HealthData{Current: 12.5, Max: 30}
	d := h.Serialize()

	// Content version leads, followed by one field per key in declaration
	// order, named by the key's query.
	require.Equal(t, []string{QueryContentVersion, "Health", "MaxHealth"}, d.Fields())

	ver, ok := d.GetInt(QueryContentVersion)
	require.True(t, ok)
	require.Equal(t, 1, ver)

	cur, ok := d.GetFloat("Health")
	require.True(t, ok)
	require.Equal(t, 12.5, cur)
}

func TestGetSetField(t *testing.T) {
	h := NewHealthData()

	cur, ok := GetField(h, KeyHealth)
	require.True(t, ok)
	require.Equal(t, 20.0, cur)

	require.NoError(t, SetField(h, KeyHealth, 7.5))
	require.Equal(t, 7.5, h.Current)

	// Out-of-range writes are rejected and leave the bundle untouched.
	err := SetField(h, KeyHealth, -1.0)
	var oob *OutOfBoundsError
	require.ErrorAs(t, err, &oob)
	require.Equal(t, 7.5, h.Current)

	// Keys the bundle does not declare are reported, not silently dropped.
	err = SetField(h, KeyFoodLevel, 10)
	require.Error(t, err)
	_, ok = GetField(h, KeyFoodLevel)
	require.False(t, ok)
}

func TestImmutableBundleHasNoMutators(t *testing.T) {
	snap := NewHealthData().ToImmutable()
	for _, f := range snap.Fields() {
		require.Nil(t, f.Set)
	}
}

func TestCopyAndFreezeAreIsolated(t *testing.T) {
	h := &HealthData{Current: 10, Max: 20}

	cp := h.Copy().(*HealthData)
	cp.Current = 1
	require.Equal(t, 10.0, h.Current)

	snap := h.ToImmutable().(ImmutableHealthData)
	h.Current = 3
	require.Equal(t, 10.0, snap.Current)

	back := snap.ToMutable().(*HealthData)
	back.Current = 8
	require.Equal(t, 10.0, snap.Current)
}

func TestBundleSerializeDeserializeRoundTrip(t *testing.T) {
	reg := RegisterMovement(RegisterFood(RegisterHealth(NewBuilder()))).Init()

	tests := []struct {
		name   string
		bundle MutableBundle
	}{
		{"health", &HealthData{Current: 3.25, Max: 40}},
		{"food", &FoodData{Level: 6, Saturation: 1.5, Exhaustion: 3.99}},
		{"movement", &MovementData{Velocity: mgl64.Vec3{0.1, -2, 0}, SpeedScale: 1.25}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := tt.bundle.Serialize()

			// Through YAML and back, the way the surrounding system would
			// persist it.
			data, err := doc.EncodeYAML()
			require.NoError(t, err)
			decoded, err := DecodeYAML(data)
			require.NoError(t, err)

			back, err := reg.Deserialize(tt.bundle.Name(), decoded)
			require.NoError(t, err)
			require.Equal(t, tt.bundle, back)
			require.True(t, doc.Equal(back.Serialize()))
		})
	}
}

func TestDeserializeFillsMissingFieldsFromDefaults(t *testing.T) {
	reg := RegisterHealth(NewBuilder()).Init()

	doc := (&HealthData{Current: 5, Max: 30}).Serialize()
	doc.Remove("Health")

	b, err := reg.Deserialize("health", doc)
	require.NoError(t, err)
	h := b.(*HealthData)
	require.Equal(t, 20.0, h.Current, "missing field falls back to the key default")
	require.Equal(t, 30.0, h.Max)
}

func TestDeserializeRejectsOutOfRangeFields(t *testing.T) {
	reg := RegisterFood(NewBuilder()).Init()

	doc := NewFoodData().Serialize()
	doc.Set("FoodLevel", 25)

	_, err := reg.Deserialize("food", doc)
	var derr *DeserializeError
	require.ErrorAs(t, err, &derr)
	require.Equal(t, "food", derr.Bundle)
	require.Equal(t, "FoodLevel", derr.Field)
	var oob *OutOfBoundsError
	require.ErrorAs(t, err, &oob)
}

func TestDeserializeRejectsFractionalIntFields(t *testing.T) {
	reg := RegisterFood(NewBuilder()).Init()

	doc := NewFoodData().Serialize()
	doc.Set("FoodLevel", 12.5)

	_, err := reg.Deserialize("food", doc)
	var derr *DeserializeError
	require.ErrorAs(t, err, &derr)
	require.Equal(t, "FoodLevel", derr.Field)
}

var keyTinyLevel = NewKey[uint8]("tiny_level")

func TestFieldSetRejectsUnsignedWraparound(t *testing.T) {
	var stored uint8
	f := NewField(keyTinyLevel, func() uint8 { return stored }, func(v uint8) { stored = v })

	require.Error(t, f.Set(int(-1)))
	require.Equal(t, uint8(0), stored)
	require.Error(t, f.Set(int(300)))
	require.Equal(t, uint8(0), stored)

	require.NoError(t, f.Set(int(7)))
	require.Equal(t, uint8(7), stored)
}

func TestDeserializeContentVersion(t *testing.T) {
	reg := RegisterHealth(NewBuilder()).Init()

	doc := NewHealthData().Serialize()
	doc.Set(QueryContentVersion, 2)
	_, err := reg.Deserialize("health", doc)
	var derr *DeserializeError
	require.ErrorAs(t, err, &derr)
	require.Equal(t, QueryContentVersion, derr.Field)

	// A document with no version at all decodes as current.
	doc = NewHealthData().Serialize()
	doc.Remove(QueryContentVersion)
	_, err = reg.Deserialize("health", doc)
	require.NoError(t, err)
}

func TestDeserializeUnknownBundle(t *testing.T) {
	reg := NewBuilder().Init()
	_, err := reg.Deserialize("ghost", NewDocument())
	var derr *DeserializeError
	require.ErrorAs(t, err, &derr)
	require.Equal(t, "ghost", derr.Bundle)
}

func TestKeyMask(t *testing.T) {
	mask := keyMask(NewHealthData())
	require.True(t, mask.Has(KeyHealth.ID()))
	require.True(t, mask.Has(KeyMaxHealth.ID()))
	require.Equal(t, 2, mask.Count())
}
