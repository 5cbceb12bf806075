package field

import (
	"github.com/artpar/wxgate/core/wire"
)

// Schema is the ordered, self-contained field set for one concrete wire
// type, plus its discriminator value. Schemas are built once at package
// init and are read-only afterwards, safe for unsynchronized concurrent
// reads.
type Schema struct {
	// Type is the discriminator value, e.g. "text".
	Type string

	// Fields holds the specs in declaration order. Treat as read-only.
	Fields []Spec

	index map[string]int // by Attr
}

// New builds a schema from fields in declaration order. Duplicate
// attribute or wire names within one schema are a programming error and
// panic at init time.
func New(typ string, fields ...Spec) Schema {
	s := Schema{Type: typ, index: make(map[string]int, len(fields))}
	for _, f := range fields {
		s.append(f)
	}
	return s
}

// Extend derives a subtype schema: the receiver's fields come first, each
// owning an independent copy of its default, then the subtype's own
// fields. A redeclared attribute replaces the inherited spec but its
// position moves to the end of the order.
func (s Schema) Extend(typ string, fields ...Spec) Schema {
	out := Schema{Type: typ, index: make(map[string]int, len(s.Fields)+len(fields))}
	for _, f := range s.Fields {
		f.Default = deepCopy(f.Default)
		out.append(f)
	}
	for _, f := range fields {
		if i, ok := out.index[f.Attr]; ok {
			out.remove(i)
		}
		out.append(f)
	}
	return out
}

// Spec returns the spec for an attribute name.
func (s Schema) Spec(attr string) (Spec, bool) {
	i, ok := s.index[attr]
	if !ok {
		return Spec{}, false
	}
	return s.Fields[i], true
}

// Get reads attr from data, wrapping converter failures with the schema
// type and field name.
func (s Schema) Get(data RawData, attr string) (any, error) {
	sp, ok := s.Spec(attr)
	if !ok {
		return nil, &ConvertError{Schema: s.Type, Field: attr, Err: errUnknownField}
	}
	v, err := sp.Get(data)
	if err != nil {
		return nil, &ConvertError{Schema: s.Type, Field: attr, Value: data[sp.Wire], Err: err}
	}
	return v, nil
}

// Set writes attr into data verbatim. Unknown attributes are ignored, like
// unrecognized constructor arguments in the envelope's lenient model.
func (s Schema) Set(data RawData, attr string, value any) {
	if sp, ok := s.Spec(attr); ok {
		sp.Set(data, value)
	}
}

func (s *Schema) append(f Spec) {
	if _, ok := s.index[f.Attr]; ok {
		panic("field: duplicate attribute " + f.Attr + " in schema " + s.Type)
	}
	for _, prev := range s.Fields {
		if prev.Wire == f.Wire {
			panic("field: duplicate wire name " + f.Wire + " in schema " + s.Type)
		}
	}
	s.index[f.Attr] = len(s.Fields)
	s.Fields = append(s.Fields, f)
}

func (s *Schema) remove(i int) {
	removed := s.Fields[i]
	s.Fields = append(s.Fields[:i], s.Fields[i+1:]...)
	delete(s.index, removed.Attr)
	for attr, j := range s.index {
		if j > i {
			s.index[attr] = j - 1
		}
	}
}

// Decode builds RawData from a parsed envelope by decoding each present
// field's wire value through its kind. Absent fields stay unset. A decode
// failure names the schema type and field, never a bare parse error.
func Decode(s Schema, env wire.Dict) (RawData, error) {
	data := make(RawData, len(s.Fields))
	for _, sp := range s.Fields {
		raw, ok := env[sp.Wire]
		if !ok {
			continue
		}
		v, err := sp.Kind.Decode(raw)
		if err != nil {
			return nil, &ConvertError{Schema: s.Type, Field: sp.Attr, Value: raw, Err: err}
		}
		data[sp.Wire] = v
	}
	return data, nil
}
