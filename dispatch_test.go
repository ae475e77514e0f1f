package keydata

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"
)

// Holder type families used to exercise dispatch ordering. mob satisfies
// both interfaces, beast only the wider one.
type living interface{ CurrentHealth() float64 }

type tameable interface {
	CurrentHealth() float64
	Owner() string
}

type grazing interface{ Graze() }

type mob struct{}

func (mob) CurrentHealth() float64 { return 10 }
func (mob) Owner() string          { return "" }

type beast struct{}

func (beast) CurrentHealth() float64 { return 10 }

// stubProcessor is a dispatch-only BundleProcessor: it records which entry
// was selected and never touches a holder.
type stubProcessor struct {
	tag    string
	bundle string
	holder reflect.Type
}

func (p *stubProcessor) Bundle() string                  { return p.bundle }
func (p *stubProcessor) Holder() reflect.Type            { return p.holder }
func (p *stubProcessor) Exists(any) bool                 { return false }
func (p *stubProcessor) Read(any) (MutableBundle, bool)  { return nil, false }
func (p *stubProcessor) ReadOrDefault(any) MutableBundle { return nil }
func (p *stubProcessor) Apply(any, Bundle) TransactionResult {
	return FailedResult(ResultUnsupported, ErrUnsupported)
}
func (p *stubProcessor) Remove(any) TransactionResult {
	return FailedResult(ResultUnsupported, ErrUnsupported)
}

var _ BundleProcessor = (*stubProcessor)(nil)

func stub(tag string, holder reflect.Type) *stubProcessor {
	return &stubProcessor{tag: tag, bundle: "health", holder: holder}
}

func TestDuplicateHolderTypeIsAmbiguous(t *testing.T) {
	table := newProcessorTable()
	require.NoError(t, table.addBundleProcessor(stub("first", HolderType[mob]())))

	err := table.addBundleProcessor(stub("second", HolderType[mob]()))
	var amb *AmbiguousProcessorError
	require.ErrorAs(t, err, &amb)
	require.Equal(t, "health", amb.Subject)
	require.Equal(t, HolderType[mob](), amb.First)
	require.Equal(t, HolderType[mob](), amb.Second)
}

func TestIncomparableInterfacesAreAmbiguous(t *testing.T) {
	table := newProcessorTable()
	require.NoError(t, table.addBundleProcessor(stub("living", HolderType[living]())))

	// Neither interface implements the other, so a holder satisfying both
	// could not be routed deterministically. Rejected at registration.
	err := table.addBundleProcessor(stub("grazing", HolderType[grazing]()))
	var amb *AmbiguousProcessorError
	require.ErrorAs(t, err, &amb)
}

func TestNestedInterfacesAreOrdered(t *testing.T) {
	table := newProcessorTable()
	require.NoError(t, table.addBundleProcessor(stub("wide", HolderType[living]())))
	require.NoError(t, table.addBundleProcessor(stub("narrow", HolderType[tameable]())))

	// mob satisfies both; the narrower interface wins.
	p, ok := table.bundleProcessorFor("health", mob{})
	require.True(t, ok)
	require.Equal(t, "narrow", p.(*stubProcessor).tag)

	// beast satisfies only the wider one.
	p, ok = table.bundleProcessorFor("health", beast{})
	require.True(t, ok)
	require.Equal(t, "wide", p.(*stubProcessor).tag)
}

func TestConcreteBeatsInterface(t *testing.T) {
	table := newProcessorTable()
	// Registration order must not matter; the interface entry goes in first.
	require.NoError(t, table.addBundleProcessor(stub("family", HolderType[living]())))
	require.NoError(t, table.addBundleProcessor(stub("exact", HolderType[mob]())))

	p, ok := table.bundleProcessorFor("health", mob{})
	require.True(t, ok)
	require.Equal(t, "exact", p.(*stubProcessor).tag)
}

func TestUnsupportedHolderIsNotDispatched(t *testing.T) {
	table := newProcessorTable()
	require.NoError(t, table.addBundleProcessor(stub("exact", HolderType[mob]())))

	_, ok := table.bundleProcessorFor("health", beast{})
	require.False(t, ok)
	_, ok = table.bundleProcessorFor("food", mob{})
	require.False(t, ok)
}

func TestValueProcessorAmbiguityAtRegistration(t *testing.T) {
	// The value-side table applies the same rules; the Builder surfaces the
	// error before the registry is handed out.
	_, err := NewBuilder().
		Key(KeyHealth, KeyMaxHealth).
		Bundle(func() MutableBundle { return NewHealthData() }).
		ValueProcessor(NewRecordValueProcessor(KeyHealth, NewHealthData)).
		ValueProcessor(NewRecordValueProcessor(KeyHealth, NewHealthData)).
		Build()
	var amb *AmbiguousProcessorError
	require.ErrorAs(t, err, &amb)
	require.Equal(t, "health", amb.Subject)
	require.Equal(t, HolderType[*Record](), amb.First)
}

func TestBundleProcessorAmbiguityAtRegistration(t *testing.T) {
	_, err := NewBuilder().
		Key(KeyHealth, KeyMaxHealth).
		Bundle(func() MutableBundle { return NewHealthData() }).
		BundleProcessor(NewRecordProcessor(NewHealthData)).
		BundleProcessor(NewRecordProcessor(NewHealthData)).
		Build()
	var amb *AmbiguousProcessorError
	require.ErrorAs(t, err, &amb)
}

func TestHolderSupports(t *testing.T) {
	require.True(t, holderSupports(HolderType[mob](), reflect.TypeOf(mob{})))
	require.False(t, holderSupports(HolderType[mob](), reflect.TypeOf(beast{})))
	require.True(t, holderSupports(HolderType[living](), reflect.TypeOf(beast{})))
	require.False(t, holderSupports(HolderType[grazing](), reflect.TypeOf(beast{})))
	require.False(t, holderSupports(nil, reflect.TypeOf(mob{})))
	require.False(t, holderSupports(HolderType[mob](), nil))
}
