// Package field implements the declarative field system shared by inbound
// messages, outbound replies, and component events.
//
// A Schema is the ordered field set for one concrete wire type, built once
// at process start and never mutated. Each Spec binds a field kind to an
// attribute name, a wire element name, and a default. Instance state lives
// in RawData, keyed by wire name; typed access goes through Spec.Get and
// Spec.Set, which carry the original descriptor semantics: defaults are
// materialized as independent deep copies, nested mappings are exposed as
// lenient wire.Dict views, and read-time converters run afresh on every
// read.
package field

import (
	"github.com/artpar/wxgate/core/wire"
)

// RawData is the untyped value store backing one message or reply
// instance, keyed by wire element name. It is exclusively owned by that
// instance; hand a Clone to anything that outlives the request.
type RawData map[string]any

// Clone returns an independent deep copy.
func (r RawData) Clone() RawData {
	out := make(RawData, len(r))
	for k, v := range r {
		out[k] = deepCopy(v)
	}
	return out
}

// Spec binds one field kind to an attribute name, its wire element name,
// and a default value. Specs are immutable after schema construction.
type Spec struct {
	// Attr is the attribute name used for dynamic access, e.g. "media_id".
	Attr string

	// Wire is the envelope element name, e.g. "MediaId".
	Wire string

	// Kind encodes, decodes, and converts values for this field.
	Kind Kind

	// Default is materialized (as a deep copy) on first read when the
	// instance holds no value for this field.
	Default any
}

// Get reads the field from data with descriptor semantics: a missing value
// materializes an independent copy of the default into data; nested
// mappings are returned as wire.Dict views; non-empty scalars pass through
// the kind's converter on every read, never cached.
func (s Spec) Get(data RawData) (any, error) {
	v, ok := data[s.Wire]
	if !ok || v == nil {
		v = deepCopy(s.Default)
		data[s.Wire] = v
	}
	switch t := v.(type) {
	case map[string]any:
		return wire.Dict(t), nil
	case wire.Dict, []any, []Article:
		return v, nil
	}
	if isEmpty(v) {
		return v, nil
	}
	return s.Kind.Convert(v)
}

// Raw reads the stored value, materializing the default but skipping the
// read-time converter. Encoding starts from this value so converters are
// applied exactly once on the way to the wire.
func (s Spec) Raw(data RawData) any {
	v, ok := data[s.Wire]
	if !ok || v == nil {
		v = deepCopy(s.Default)
		data[s.Wire] = v
	}
	return v
}

// Set stores value verbatim. Conversion happens only on read or encode.
func (s Spec) Set(data RawData, value any) {
	data[s.Wire] = value
}

// isEmpty reports whether v is an absent or empty scalar, which skips the
// read-time converter.
func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	}
	return false
}

// deepCopy copies nested containers so no two instances, nor an instance
// and its Spec, ever alias the same mutable default.
func deepCopy(v any) any {
	switch t := v.(type) {
	case wire.Dict:
		out := make(wire.Dict, len(t))
		for k, vv := range t {
			out[k] = deepCopy(vv)
		}
		return out
	case map[string]any:
		out := make(wire.Dict, len(t))
		for k, vv := range t {
			out[k] = deepCopy(vv)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, vv := range t {
			out[i] = deepCopy(vv)
		}
		return out
	case []Article:
		return append([]Article(nil), t...)
	default:
		return v
	}
}
