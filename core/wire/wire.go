// Package wire implements the plaintext XML envelope exchanged with the
// WeChat server. It converts between envelope text and a nested mapping;
// it knows nothing about message types or field semantics.
//
// The envelope looks like:
//
//	<xml><MsgType><![CDATA[text]]></MsgType><Content><![CDATA[hi]]></Content></xml>
//
// Text leaves are CDATA-wrapped, numeric leaves are raw, composite values
// are nested elements. Repeated sibling elements (news items) become lists.
package wire

import (
	"encoding/xml"
	"io"
	"strings"
)

// Dict is the parsed form of an envelope or a nested element: tag name to
// text leaf, nested Dict, or []any for repeated siblings.
type Dict map[string]any

// Has reports whether key is present.
func (d Dict) Has(key string) bool {
	_, ok := d[key]
	return ok
}

// Text returns the text leaf stored under key, or "" when the key is
// absent or not a leaf. Lookups never fail; absent keys yield the zero
// value, mirroring the lenient access the webhook flow relies on.
func (d Dict) Text(key string) string {
	s, _ := d[key].(string)
	return s
}

// Sub returns the nested mapping stored under key, or nil when the key is
// absent or a leaf.
func (d Dict) Sub(key string) Dict {
	switch v := d[key].(type) {
	case Dict:
		return v
	case map[string]any:
		return Dict(v)
	default:
		return nil
	}
}

// List returns the value under key normalized to a list: absent keys yield
// nil, a single value becomes a one-element list.
func (d Dict) List(key string) []any {
	switch v := d[key].(type) {
	case nil:
		return nil
	case []any:
		return v
	default:
		return []any{v}
	}
}

// Parse parses an envelope document into its nested mapping. The document
// must have a single <xml> root; anything else is a *DecodeError.
//
// Decryption and signature checks happen upstream: Parse expects plaintext.
func Parse(doc string) (Dict, error) {
	dec := xml.NewDecoder(strings.NewReader(doc))
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil, &DecodeError{Reason: "empty document"}
		}
		if err != nil {
			return nil, &DecodeError{Reason: "malformed xml", Err: err}
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if start.Name.Local != "xml" {
			return nil, &DecodeError{Reason: "root element is <" + start.Name.Local + ">, want <xml>"}
		}
		v, err := parseElement(dec)
		if err != nil {
			return nil, err
		}
		if d, ok := v.(Dict); ok {
			return d, nil
		}
		// Root held no child elements.
		return Dict{}, nil
	}
}

// parseElement consumes tokens until the current element closes. Elements
// with children become a Dict (repeated tags collapse into []any), leaf
// elements become their trimmed character data.
func parseElement(dec *xml.Decoder) (any, error) {
	var text strings.Builder
	var children Dict
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, &DecodeError{Reason: "malformed xml", Err: err}
		}
		switch t := tok.(type) {
		case xml.CharData:
			text.Write(t)
		case xml.StartElement:
			child, err := parseElement(dec)
			if err != nil {
				return nil, err
			}
			if children == nil {
				children = Dict{}
			}
			name := t.Name.Local
			switch prev := children[name].(type) {
			case nil:
				children[name] = child
			case []any:
				children[name] = append(prev, child)
			default:
				children[name] = []any{prev, child}
			}
		case xml.EndElement:
			if children != nil {
				return children, nil
			}
			return strings.TrimSpace(text.String()), nil
		}
	}
}

// CDATA renders a CDATA-wrapped text leaf.
func CDATA(name, value string) string {
	return "<" + name + "><![CDATA[" + value + "]]></" + name + ">"
}

// Leaf renders a raw (non-CDATA) leaf, used for numeric values.
func Leaf(name, value string) string {
	return "<" + name + ">" + value + "</" + name + ">"
}
