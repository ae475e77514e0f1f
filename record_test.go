package keydata

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/require"
)

func newTestRegistry() *Registry {
	return RegisterNameTag(RegisterMovement(RegisterFood(RegisterHealth(NewBuilder())))).Init()
}

func TestApplyRejectsOutOfBoundsAndLeavesHolderUntouched(t *testing.T) {
	reg := newTestRegistry()
	rec := NewRecord()

	res := reg.Apply(rec, &FoodData{Level: 20, Saturation: 5})
	require.True(t, res.Success())

	// One invalid field rejects the whole call. FoodLevel is bounded to 20;
	// 25 must fail and the prior value must survive.
	res = reg.Apply(rec, &FoodData{Level: 25, Saturation: 5})
	require.False(t, res.Success())
	require.Equal(t, ResultOutOfBounds, res.Kind())
	var oob *OutOfBoundsError
	require.ErrorAs(t, res.Err(), &oob)
	require.Equal(t, "food_level", oob.Key)

	level, ok := Get(reg, rec, KeyFoodLevel)
	require.True(t, ok)
	require.Equal(t, 20, level)
}

func TestApplyIsAllOrNothing(t *testing.T) {
	reg := newTestRegistry()
	rec := NewRecord()

	require.True(t, reg.Apply(rec, &FoodData{Level: 10, Saturation: 2, Exhaustion: 1}).Success())

	// The first field is valid, a later one is not. No field may change.
	res := reg.Apply(rec, &FoodData{Level: 15, Saturation: 3, Exhaustion: 99})
	require.Equal(t, ResultOutOfBounds, res.Kind())

	food, ok := Read[*FoodData](reg, rec)
	require.True(t, ok)
	require.Equal(t, &FoodData{Level: 10, Saturation: 2, Exhaustion: 1}, food)
}

func TestRemoveMandatoryBundleIsUnremovable(t *testing.T) {
	reg := newTestRegistry()
	rec := NewRecord()

	require.True(t, reg.Apply(rec, NewHealthData()).Success())

	res := Remove[*HealthData](reg, rec)
	require.False(t, res.Success())
	require.Equal(t, ResultUnremovable, res.Kind())
	require.ErrorIs(t, res.Err(), ErrUnremovable)

	// The value-level path is just as mandatory.
	res = reg.RemoveValue(rec, KeyHealth)
	require.Equal(t, ResultUnremovable, res.Kind())

	_, ok := Read[*HealthData](reg, rec)
	require.True(t, ok, "mandatory data survives the failed removal")
}

func TestRemoveOptionalBundle(t *testing.T) {
	reg := newTestRegistry()
	rec := NewRecord()

	res := Remove[*NameTagData](reg, rec)
	require.Equal(t, ResultAbsent, res.Kind())

	require.True(t, reg.Apply(rec, &NameTagData{DisplayName: "Boss", Visible: true}).Success())
	require.True(t, rec.Carries(KeyDisplayName))

	res = Remove[*NameTagData](reg, rec)
	require.True(t, res.Success())
	require.False(t, rec.Carries(KeyDisplayName))
	require.Len(t, res.Replaced(), 2)
	require.Equal(t, "Boss", res.Replaced()[0].Before)
	require.Nil(t, res.Replaced()[0].After)
}

func TestOfferAndGet(t *testing.T) {
	reg := newTestRegistry()
	rec := NewRecord()

	// Offering to an empty record seeds the containing bundle from defaults.
	res := Offer(reg, rec, KeyHealth, 12.5)
	require.True(t, res.Success())
	require.Equal(t, []Replacement{{Query: "Health", Before: 20.0, After: 12.5}}, res.Replaced())

	got, ok := Get(reg, rec, KeyHealth)
	require.True(t, ok)
	require.Equal(t, 12.5, got)

	// The rest of the bundle was default-filled.
	maxHealth, ok := Get(reg, rec, KeyMaxHealth)
	require.True(t, ok)
	require.Equal(t, 20.0, maxHealth)

	res = Offer(reg, rec, KeyHealth, -1.0)
	require.Equal(t, ResultOutOfBounds, res.Kind())
	got, _ = Get(reg, rec, KeyHealth)
	require.Equal(t, 12.5, got)
}

func TestGetOrDefault(t *testing.T) {
	reg := newTestRegistry()
	rec := NewRecord()

	_, ok := Get(reg, rec, KeySpeedScale)
	require.False(t, ok)

	v, err := GetOrDefault(reg, rec, KeySpeedScale)
	require.NoError(t, err)
	require.Equal(t, 1.0, v)

	_, err = GetOrDefault(reg, "not a holder", KeySpeedScale)
	require.ErrorIs(t, err, ErrUnsupported)
}

func TestReadReturnsCallerOwnedCopy(t *testing.T) {
	reg := newTestRegistry()
	rec := NewRecord()

	require.True(t, reg.Apply(rec, &HealthData{Current: 10, Max: 20}).Success())

	h, ok := Read[*HealthData](reg, rec)
	require.True(t, ok)
	h.Current = 1

	again, ok := Read[*HealthData](reg, rec)
	require.True(t, ok)
	require.Equal(t, 10.0, again.Current, "mutating a read copy never touches the record")
}

func TestReadOrDefaultOnEmptyHolder(t *testing.T) {
	reg := newTestRegistry()
	rec := NewRecord()

	_, ok := Read[*HealthData](reg, rec)
	require.False(t, ok)
	require.False(t, reg.Exists(rec, "health"))
	require.True(t, reg.Supports(rec, "health"))

	h, err := ReadOrDefault[*HealthData](reg, rec)
	require.NoError(t, err)
	require.Equal(t, NewHealthData(), h)

	_, err = ReadOrDefault[*HealthData](reg, 42)
	require.ErrorIs(t, err, ErrUnsupported)
}

func TestUnsupportedHolder(t *testing.T) {
	reg := newTestRegistry()

	res := reg.Apply("not a holder", NewHealthData())
	require.Equal(t, ResultUnsupported, res.Kind())
	require.ErrorIs(t, res.Err(), ErrUnsupported)

	res = Offer(reg, 42, KeyHealth, 10.0)
	require.Equal(t, ResultUnsupported, res.Kind())
}

func TestObserversSeeSuccessfulMutationsOnly(t *testing.T) {
	var events []ChangeEvent
	reg := RegisterHealth(NewBuilder()).
		Observe(func(ev ChangeEvent) { events = append(events, ev) }).
		Init()
	rec := NewRecord()

	require.True(t, reg.Apply(rec, &HealthData{Current: 5, Max: 20}).Success())
	require.True(t, Offer(reg, rec, KeyHealth, 6.0).Success())
	require.False(t, Offer(reg, rec, KeyHealth, -1.0).Success())
	reg.RemoveValue(rec, KeyHealth)

	require.Len(t, events, 2)
	require.Equal(t, OpApply, events[0].Op)
	require.Equal(t, "health", events[0].Subject)
	require.Same(t, rec, events[0].Holder)
	require.Equal(t, OpOffer, events[1].Op)
}

func TestRecordCarriesAndMask(t *testing.T) {
	reg := newTestRegistry()
	rec := NewRecord()

	mask := rec.Mask()
	require.True(t, mask.IsZero())
	require.False(t, rec.Carries(KeyHealth))

	require.True(t, reg.Apply(rec, NewHealthData()).Success())
	require.True(t, rec.Carries(KeyHealth))
	require.True(t, rec.Carries(KeyMaxHealth))
	require.False(t, rec.Carries(KeyFoodLevel))
	require.True(t, reg.HasValue(rec, KeyHealth))
	require.False(t, reg.HasValue(rec, KeyFoodLevel))
}

func TestRecordSerializeDeserializeRoundTrip(t *testing.T) {
	reg := newTestRegistry()
	rec := NewRecord()

	require.True(t, reg.Apply(rec, &HealthData{Current: 7.5, Max: 40}).Success())
	require.True(t, reg.Apply(rec, &MovementData{Velocity: mgl64.Vec3{0.5, -1, 0}, SpeedScale: 2}).Success())
	require.True(t, reg.Apply(rec, &NameTagData{DisplayName: "Scout", Visible: false}).Success())

	doc := rec.Serialize()
	data, err := doc.EncodeYAML()
	require.NoError(t, err)
	decoded, err := DecodeYAML(data)
	require.NoError(t, err)

	back, err := DeserializeRecord(reg, decoded)
	require.NoError(t, err)
	require.Equal(t, rec.ID(), back.ID())
	require.Equal(t, rec.BundleNames(), back.BundleNames())
	backMask := back.Mask()
	require.True(t, backMask.Equals(rec.Mask()))

	h, ok := Read[*HealthData](reg, back)
	require.True(t, ok)
	require.Equal(t, &HealthData{Current: 7.5, Max: 40}, h)

	m, ok := Read[*MovementData](reg, back)
	require.True(t, ok)
	require.Equal(t, mgl64.Vec3{0.5, -1, 0}, m.Velocity)

	n, ok := Read[*NameTagData](reg, back)
	require.True(t, ok)
	require.Equal(t, "Scout", n.DisplayName)
	require.False(t, n.Visible)
}

func TestDeserializeRecordErrors(t *testing.T) {
	reg := newTestRegistry()

	_, err := DeserializeRecord(reg, NewDocument())
	require.Error(t, err)

	_, err = DeserializeRecord(reg, NewDocument().Set("Id", "not-a-uuid"))
	require.Error(t, err)

	bad := NewDocument().
		Set("Id", NewRecord().ID().String()).
		Set("Bundles", NewDocument().Set("ghost", NewDocument()))
	_, err = DeserializeRecord(reg, bad)
	var derr *DeserializeError
	require.ErrorAs(t, err, &derr)
	require.Equal(t, "ghost", derr.Bundle)
}

func TestValueAndBundleValidationAgree(t *testing.T) {
	// Offering a value and applying a bundle carrying the same value must
	// agree on what is valid.
	reg := newTestRegistry()

	for _, v := range []float64{0, 10, 20, 20.5, -0.5} {
		recOffer, recApply := NewRecord(), NewRecord()
		offerRes := Offer(reg, recOffer, KeySaturation, v)
		applyRes := reg.Apply(recApply, &FoodData{Level: 20, Saturation: v})
		require.Equal(t, offerRes.Success(), applyRes.Success(), "saturation %v", v)
	}
}
