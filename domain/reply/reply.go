// Package reply defines the outbound replies a webhook handler can return
// to the platform, their rendering to envelope text, and the strict
// deserializer used when stored reply XML must be interpreted again.
package reply

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/artpar/wxgate/core/field"
	"github.com/artpar/wxgate/core/wire"
)

// timeNow is swapped by tests that pin the reply timestamp.
var timeNow = time.Now

// Reply is the surface common to every outbound reply.
type Reply interface {
	// Type is the wire discriminator.
	Type() string
	// Source is the account the reply is sent from (FromUserName).
	Source() string
	// Target is the account the reply is addressed to (ToUserName).
	Target() string
	// Time is the reply timestamp as epoch seconds.
	Time() int64

	SetSource(string)
	SetTarget(string)
	SetTime(int64)

	// Render emits the envelope text: discriminator leaf first, then one
	// element per field in declared order. Source, target, and time must
	// be populated first; Create supplies them from the originating
	// message.
	Render() (string, error)

	// Raw exposes the instance's backing data.
	Raw() field.RawData
}

// Addressee is the slice of an inbound message a reply needs: a reply is
// sent from the address the message was addressed to, back to the address
// that sent it. *message.Base satisfies it.
type Addressee interface {
	Source() string
	Target() string
}

var baseSchema = field.New("unknown",
	field.Spec{Attr: "source", Wire: "FromUserName", Kind: field.String{}},
	field.Spec{Attr: "target", Wire: "ToUserName", Kind: field.String{}},
	field.Spec{Attr: "time", Wire: "CreateTime", Kind: field.Integer{}},
)

// ErrUnaddressed rejects rendering a reply whose source or target was
// never populated. It is a construction failure, not a decode failure, so
// it deliberately carries none of the decode error types.
var ErrUnaddressed = errors.New("reply: reply has no source or target")

// Base carries the schema/data pairing behind every concrete reply.
type Base struct {
	schema field.Schema
	data   field.RawData
}

// newBase builds reply state, stamping time with the current clock and,
// when src is given, addressing the reply back at the sender.
func newBase(schema field.Schema, src Addressee) Base {
	b := Base{schema: schema, data: field.RawData{}}
	if src != nil {
		b.SetSource(src.Target())
		b.SetTarget(src.Source())
	}
	b.SetTime(timeNow().Unix())
	return b
}

// fromData builds reply state around decoded wire data, for Deserialize.
func fromData(schema field.Schema, data field.RawData) Base {
	if data == nil {
		data = field.RawData{}
	}
	return Base{schema: schema, data: data}
}

func (b *Base) Type() string       { return b.schema.Type }
func (b *Base) Source() string     { return b.strAttr("source") }
func (b *Base) Target() string     { return b.strAttr("target") }
func (b *Base) Time() int64        { return b.intAttr("time") }
func (b *Base) Raw() field.RawData { return b.data }

func (b *Base) SetSource(s string) { b.schema.Set(b.data, "source", s) }
func (b *Base) SetTarget(s string) { b.schema.Set(b.data, "target", s) }
func (b *Base) SetTime(t int64)    { b.schema.Set(b.data, "time", t) }

// Get reads an attribute dynamically, surfacing conversion failures as
// *field.ConvertError.
func (b *Base) Get(attr string) (any, error) {
	return b.schema.Get(b.data, attr)
}

// Render emits the reply envelope. Field converters run exactly once on
// the way to the wire.
func (b *Base) Render() (string, error) {
	if b.Source() == "" || b.Target() == "" {
		return "", ErrUnaddressed
	}
	var sb strings.Builder
	sb.WriteString("<xml>")
	sb.WriteString(wire.CDATA("MsgType", b.schema.Type))
	for _, sp := range b.schema.Fields {
		v := sp.Raw(b.data)
		frag, err := sp.Kind.Encode(sp, v)
		if err != nil {
			if _, ok := err.(*field.LimitError); ok {
				return "", err
			}
			return "", &field.ConvertError{Schema: b.schema.Type, Field: sp.Attr, Value: v, Err: err}
		}
		sb.WriteString(frag)
	}
	sb.WriteString("</xml>")
	return sb.String(), nil
}

func (b *Base) strAttr(attr string) string {
	v, err := b.schema.Get(b.data, attr)
	if err != nil {
		return ""
	}
	s, _ := v.(string)
	return s
}

func (b *Base) intAttr(attr string) int64 {
	v, err := b.schema.Get(b.data, attr)
	if err != nil {
		return 0
	}
	n, _ := v.(int64)
	return n
}

// subDict returns the nested mapping behind attr, materializing it into
// the instance so mutations stick.
func (b *Base) subDict(attr string) wire.Dict {
	sp, ok := b.schema.Spec(attr)
	if !ok {
		return nil
	}
	switch t := sp.Raw(b.data).(type) {
	case wire.Dict:
		return t
	case map[string]any:
		d := wire.Dict(t)
		sp.Set(b.data, d)
		return d
	case nil:
		d := wire.Dict{}
		sp.Set(b.data, d)
		return d
	default:
		return nil
	}
}

// Factory builds a concrete reply around decoded data.
type Factory func(data field.RawData) Reply

// Entry pairs a schema with its factory.
type Entry struct {
	Schema field.Schema
	New    Factory
}

// Registry maps reply discriminators to reply types, populated once at
// init.
type Registry struct {
	mu    sync.RWMutex
	types map[string]Entry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{types: make(map[string]Entry)}
}

// Register adds a reply type, panicking on duplicates at init time.
func (r *Registry) Register(replyType string, e Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.types[replyType]; exists {
		panic("reply: type " + replyType + " already registered")
	}
	r.types[replyType] = e
}

// Lookup resolves a discriminator.
func (r *Registry) Lookup(replyType string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.types[replyType]
	return e, ok
}

// Types lists registered discriminators.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.types))
	for t := range r.types {
		out = append(out, t)
	}
	return out
}

// DefaultRegistry holds the built-in reply catalog.
var DefaultRegistry = NewRegistry()

func register(schema field.Schema, fn Factory) {
	DefaultRegistry.Register(schema.Type, Entry{Schema: schema, New: fn})
}
