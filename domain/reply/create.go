package reply

import (
	"fmt"
	"strings"

	"github.com/artpar/wxgate/core/field"
	"github.com/artpar/wxgate/core/wire"
)

// Create builds a reply from whatever shape a handler returned:
//
//   - nil or an empty string yields *Empty ("do nothing, no retry");
//   - a plain string yields *Text;
//   - an existing Reply passes through, with source and target overwritten
//     from src when src is given;
//   - a slice of up to field.MaxArticles articles yields *News;
//   - anything else is a construction error.
//
// When src is given the reply is addressed from the account the message
// was sent to, back at the account that sent it.
func Create(value any, src Addressee) (Reply, error) {
	switch v := value.(type) {
	case nil:
		return NewEmpty(), nil
	case Reply:
		if src != nil {
			v.SetSource(src.Target())
			v.SetTarget(src.Source())
		}
		return v, nil
	case string:
		if v == "" {
			return NewEmpty(), nil
		}
		return NewText(v, src), nil
	case []field.Article:
		if len(v) == 0 {
			return NewEmpty(), nil
		}
		if len(v) > field.MaxArticles {
			return nil, &field.LimitError{What: "articles", Limit: field.MaxArticles, Got: len(v)}
		}
		r := NewNews(src)
		for _, a := range v {
			if err := r.AddArticle(a); err != nil {
				return nil, err
			}
		}
		return r, nil
	default:
		return nil, fmt.Errorf("reply: cannot build a reply from %T", value)
	}
}

// CreateXML is Create followed by Render, for transports that only want
// the response body text.
func CreateXML(value any, src Addressee) (string, error) {
	r, err := Create(value, src)
	if err != nil {
		return "", err
	}
	return r.Render()
}

// Deserialize is the inverse of Render, restricted to the reply registry.
// Unlike inbound message parsing there is no Unknown fallback: the caller
// explicitly asked to interpret the data as one of the known reply shapes,
// so malformed envelopes, a missing MsgType, and unrecognized
// discriminators are all *wire.DecodeError. Empty input yields *Empty.
//
// With replaceTime the stored timestamp is replaced by the current clock.
func Deserialize(doc string, replaceTime bool) (Reply, error) {
	if strings.TrimSpace(doc) == "" {
		return NewEmpty(), nil
	}
	env, err := wire.Parse(doc)
	if err != nil {
		return nil, err
	}
	msgType := env.Text("MsgType")
	if msgType == "" {
		return nil, &wire.DecodeError{Reason: "reply has no MsgType"}
	}
	entry, ok := DefaultRegistry.Lookup(msgType)
	if !ok {
		return nil, &wire.DecodeError{Reason: fmt.Sprintf("unknown reply type %q", msgType)}
	}
	data, err := field.Decode(entry.Schema, env)
	if err != nil {
		return nil, err
	}
	r := entry.New(data)
	if replaceTime {
		r.SetTime(timeNow().Unix())
	}
	return r, nil
}
