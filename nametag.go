package keydata

// Keys for the name tag bundle.
var (
	// KeyDisplayName is the text shown above the holder.
	KeyDisplayName = NewKey[string]("display_name", WithDefault(""))

	// KeyNameVisible controls whether the name tag renders.
	KeyNameVisible = NewKey[bool]("name_visible", WithDefault(true))
)

// NameTagData tracks a holder's display name. Unlike health, a name tag is
// optional data: holders without one simply render no tag, and Remove
// succeeds.
type NameTagData struct {
	DisplayName string
	Visible     bool
}

// NewNameTagData creates a default-filled name tag bundle.
func NewNameTagData() *NameTagData {
	return &NameTagData{Visible: true}
}

// Name returns the bundle identifier.
func (n *NameTagData) Name() string { return "name_tag" }

// Version returns the content version.
func (n *NameTagData) Version() int { return 1 }

// Keys returns the keys the bundle declares.
func (n *NameTagData) Keys() []Key { return []Key{KeyDisplayName, KeyNameVisible} }

// Fields returns the bundle's field table.
func (n *NameTagData) Fields() []Field {
	return []Field{
		NewField(KeyDisplayName, func() string { return n.DisplayName }, func(v string) { n.DisplayName = v }),
		NewField(KeyNameVisible, func() bool { return n.Visible }, func(v bool) { n.Visible = v }),
	}
}

// Serialize emits the bundle as a generic document.
func (n *NameTagData) Serialize() *Document { return SerializeBundle(n) }

// Copy returns a deep duplicate.
func (n *NameTagData) Copy() MutableBundle {
	c := *n
	return &c
}

// ToImmutable produces a frozen snapshot.
func (n *NameTagData) ToImmutable() ImmutableBundle {
	return ImmutableNameTagData{DisplayName: n.DisplayName, Visible: n.Visible}
}

// ImmutableNameTagData is the frozen form of NameTagData.
type ImmutableNameTagData struct {
	DisplayName string
	Visible     bool
}

// Name returns the bundle identifier.
func (n ImmutableNameTagData) Name() string { return "name_tag" }

// Version returns the content version.
func (n ImmutableNameTagData) Version() int { return 1 }

// Keys returns the keys the bundle declares.
func (n ImmutableNameTagData) Keys() []Key { return []Key{KeyDisplayName, KeyNameVisible} }

// Fields returns the bundle's read-only field table.
func (n ImmutableNameTagData) Fields() []Field {
	return []Field{
		NewField(KeyDisplayName, func() string { return n.DisplayName }, nil),
		NewField(KeyNameVisible, func() bool { return n.Visible }, nil),
	}
}

// Serialize emits the snapshot as a generic document.
func (n ImmutableNameTagData) Serialize() *Document { return SerializeBundle(n) }

// ToMutable returns a caller-owned mutable copy.
func (n ImmutableNameTagData) ToMutable() MutableBundle {
	return &NameTagData{DisplayName: n.DisplayName, Visible: n.Visible}
}

// RegisterNameTag wires the name tag bundle, its keys and its record
// processors into the builder.
func RegisterNameTag(b *Builder) *Builder {
	return b.
		Key(KeyDisplayName, KeyNameVisible).
		Bundle(func() MutableBundle { return NewNameTagData() }).
		BundleProcessor(NewRecordProcessor(NewNameTagData)).
		ValueProcessor(NewRecordValueProcessor(KeyDisplayName, NewNameTagData)).
		ValueProcessor(NewRecordValueProcessor(KeyNameVisible, NewNameTagData))
}
