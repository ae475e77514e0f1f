package keydata

import (
	"fmt"
	"reflect"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"
)

// QueryContentVersion is the document field carrying a serialized bundle's
// content version.
const QueryContentVersion = "ContentVersion"

var vec3Type = reflect.TypeOf(mgl64.Vec3{})

// Document is a generic ordered mapping from field names to primitive or
// nested-document values. It is the boundary format bundles serialize to and
// deserialize from; the surrounding system hands documents to its persistence
// or transport layers as YAML.
//
// Field iteration preserves insertion order. Setting an existing field
// replaces its value in place.
type Document struct {
	fields []string
	values map[string]any
}

// NewDocument creates an empty document.
func NewDocument() *Document {
	return &Document{values: make(map[string]any)}
}

// Set stores a value under the given field, replacing any previous value.
// mgl64.Vec3 values are normalized to nested documents with X, Y and Z
// fields so that every stored value is a primitive, a slice or a *Document.
func (d *Document) Set(field string, v any) *Document {
	if vec, ok := v.(mgl64.Vec3); ok {
		v = vec3Document(vec)
	}
	if _, exists := d.values[field]; !exists {
		d.fields = append(d.fields, field)
	}
	d.values[field] = v
	return d
}

// Get returns the raw value stored under field.
func (d *Document) Get(field string) (any, bool) {
	v, ok := d.values[field]
	return v, ok
}

// GetDocument returns the nested document stored under field.
func (d *Document) GetDocument(field string) (*Document, bool) {
	v, ok := d.values[field]
	if !ok {
		return nil, false
	}
	sub, ok := v.(*Document)
	return sub, ok
}

// GetFloat returns the value under field as a float64, coercing integer
// values. YAML decodes whole numbers as integers, so numeric reads must not
// depend on the exact wire representation.
func (d *Document) GetFloat(field string) (float64, bool) {
	v, ok := d.values[field]
	if !ok {
		return 0, false
	}
	cv, ok := coerceValue(v, reflect.TypeOf(float64(0)))
	if !ok {
		return 0, false
	}
	return cv.(float64), true
}

// GetInt returns the value under field as an int, coercing other integer
// widths.
func (d *Document) GetInt(field string) (int, bool) {
	v, ok := d.values[field]
	if !ok {
		return 0, false
	}
	cv, ok := coerceValue(v, reflect.TypeOf(int(0)))
	if !ok {
		return 0, false
	}
	return cv.(int), true
}

// GetString returns the value under field as a string.
func (d *Document) GetString(field string) (string, bool) {
	v, ok := d.values[field]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// GetBool returns the value under field as a bool.
func (d *Document) GetBool(field string) (bool, bool) {
	v, ok := d.values[field]
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// GetVec3 returns the value under field as an mgl64.Vec3. The value must be
// a nested document with X, Y and Z fields, the form Set normalizes to.
func (d *Document) GetVec3(field string) (mgl64.Vec3, bool) {
	sub, ok := d.GetDocument(field)
	if !ok {
		return mgl64.Vec3{}, false
	}
	return sub.vec3()
}

// Fields returns the field names in insertion order.
func (d *Document) Fields() []string {
	out := make([]string, len(d.fields))
	copy(out, d.fields)
	return out
}

// Len returns the number of fields.
func (d *Document) Len() int { return len(d.fields) }

// Remove deletes a field. It reports whether the field was present.
func (d *Document) Remove(field string) bool {
	if _, ok := d.values[field]; !ok {
		return false
	}
	delete(d.values, field)
	for i, f := range d.fields {
		if f == field {
			d.fields = append(d.fields[:i], d.fields[i+1:]...)
			break
		}
	}
	return true
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	out := NewDocument()
	for _, f := range d.fields {
		v := d.values[f]
		if sub, ok := v.(*Document); ok {
			v = sub.Clone()
		}
		out.Set(f, v)
	}
	return out
}

// Equal reports whether both documents hold the same fields in the same
// order with equal values. Numeric values are compared by magnitude, so a
// document that round-tripped through YAML compares equal to its source even
// when integer and float representations differ.
func (d *Document) Equal(other *Document) bool {
	if other == nil || len(d.fields) != len(other.fields) {
		return false
	}
	for i, f := range d.fields {
		if other.fields[i] != f {
			return false
		}
		if !valuesEqual(d.values[f], other.values[f]) {
			return false
		}
	}
	return true
}

func valuesEqual(a, b any) bool {
	if da, ok := a.(*Document); ok {
		db, ok := b.(*Document)
		return ok && da.Equal(db)
	}
	if fa, ok := asFloat(a); ok {
		fb, ok := asFloat(b)
		return ok && fa == fb
	}
	if sa, ok := a.([]any); ok {
		sb, ok := b.([]any)
		if !ok || len(sa) != len(sb) {
			return false
		}
		for i := range sa {
			if !valuesEqual(sa[i], sb[i]) {
				return false
			}
		}
		return true
	}
	return a == b
}

// String returns a compact representation for debugging.
func (d *Document) String() string {
	out := "Document{"
	for i, f := range d.fields {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("%s: %v", f, d.values[f])
	}
	return out + "}"
}

// EncodeYAML serializes the document to YAML, preserving field order.
func (d *Document) EncodeYAML() ([]byte, error) {
	return yaml.Marshal(d)
}

// DecodeYAML parses a YAML mapping into a document.
func DecodeYAML(data []byte) (*Document, error) {
	d := NewDocument()
	if err := yaml.Unmarshal(data, d); err != nil {
		return nil, err
	}
	return d, nil
}

// MarshalYAML implements yaml.Marshaler, emitting an order-preserving
// mapping node.
func (d *Document) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, f := range d.fields {
		keyNode := &yaml.Node{}
		keyNode.SetString(f)

		valNode := &yaml.Node{}
		v := d.values[f]
		if sub, ok := v.(*Document); ok {
			enc, err := sub.MarshalYAML()
			if err != nil {
				return nil, err
			}
			valNode = enc.(*yaml.Node)
		} else if err := valNode.Encode(v); err != nil {
			return nil, fmt.Errorf("keydata: cannot encode field %q: %w", f, err)
		}
		node.Content = append(node.Content, keyNode, valNode)
	}
	return node, nil
}

// UnmarshalYAML implements yaml.Unmarshaler. Nested mappings become nested
// documents; scalars decode to string, bool, int or float64.
func (d *Document) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("keydata: document must decode from a mapping, got %v", node.Kind)
	}
	if d.values == nil {
		d.values = make(map[string]any)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valNode := node.Content[i], node.Content[i+1]
		v, err := decodeNode(valNode)
		if err != nil {
			return err
		}
		d.Set(keyNode.Value, v)
	}
	return nil
}

func decodeNode(node *yaml.Node) (any, error) {
	switch node.Kind {
	case yaml.MappingNode:
		sub := NewDocument()
		if err := sub.UnmarshalYAML(node); err != nil {
			return nil, err
		}
		return sub, nil
	case yaml.SequenceNode:
		out := make([]any, 0, len(node.Content))
		for _, item := range node.Content {
			v, err := decodeNode(item)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case yaml.AliasNode:
		return decodeNode(node.Alias)
	default:
		var v any
		if err := node.Decode(&v); err != nil {
			return nil, err
		}
		return v, nil
	}
}

// vec3Document encodes a vector as a nested document.
func vec3Document(v mgl64.Vec3) *Document {
	return NewDocument().
		Set("X", v.X()).
		Set("Y", v.Y()).
		Set("Z", v.Z())
}

// vec3 decodes a nested X/Y/Z document back into a vector.
func (d *Document) vec3() (mgl64.Vec3, bool) {
	x, okX := d.GetFloat("X")
	y, okY := d.GetFloat("Y")
	z, okZ := d.GetFloat("Z")
	if !okX || !okY || !okZ {
		return mgl64.Vec3{}, false
	}
	return mgl64.Vec3{x, y, z}, true
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

// coerceValue converts v to the target type when a lossless, intent-preserving
// conversion exists: numeric width changes and nested documents that encode
// vectors. It returns the converted value boxed as any, holding exactly the
// target type.
func coerceValue(v any, target reflect.Type) (any, bool) {
	if v == nil {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Type() == target {
		return v, true
	}
	if target == vec3Type {
		if sub, ok := v.(*Document); ok {
			vec, ok := sub.vec3()
			if !ok {
				return nil, false
			}
			return vec, true
		}
		return nil, false
	}
	if isNumericKind(rv.Kind()) && isNumericKind(target.Kind()) {
		cv := rv.Convert(target)
		// Converting back must reproduce the input exactly; fractional values
		// on integer targets and out-of-range values are rejected rather than
		// truncated or wrapped.
		if cv.Convert(rv.Type()).Interface() != v {
			return nil, false
		}
		return cv.Interface(), true
	}
	return nil, false
}

func isNumericKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
