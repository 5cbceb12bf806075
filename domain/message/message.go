// Package message defines the inbound messages delivered to the webhook
// endpoint and the discriminator-based dispatch that turns envelope text
// into typed instances.
//
// Parsing is deliberately lenient: an unrecognized MsgType resolves to
// *Unknown, which still exposes the universal envelope fields, so a
// webhook handler never crashes on an unfamiliar inbound type.
package message

import (
	"sync"
	"time"

	"github.com/artpar/wxgate/core/field"
	"github.com/artpar/wxgate/core/wire"
)

// Message is the read surface common to every inbound message.
type Message interface {
	// Type is the wire discriminator, "unknown" for unrecognized types.
	Type() string
	// ID is the platform-assigned message id.
	ID() int64
	// Source is the sender's account (FromUserName).
	Source() string
	// Target is the receiving account (ToUserName).
	Target() string
	// CreateTime is the platform timestamp, zoned per field.Location.
	CreateTime() time.Time
	// Raw exposes the instance's backing data. It is owned by this
	// instance; Clone before sharing across request boundaries.
	Raw() field.RawData
}

// Base carries the schema/data pairing behind every concrete message.
type Base struct {
	schema field.Schema
	data   field.RawData
}

// baseSchema declares the universal envelope fields.
var baseSchema = field.New("unknown",
	field.Spec{Attr: "id", Wire: "MsgId", Kind: field.Integer{}, Default: int64(0)},
	field.Spec{Attr: "source", Wire: "FromUserName", Kind: field.String{}},
	field.Spec{Attr: "target", Wire: "ToUserName", Kind: field.String{}},
	field.Spec{Attr: "create_time", Wire: "CreateTime", Kind: field.DateTime{}},
)

func newBase(schema field.Schema, data field.RawData) Base {
	if data == nil {
		data = field.RawData{}
	}
	return Base{schema: schema, data: data}
}

func (b *Base) Type() string        { return b.schema.Type }
func (b *Base) ID() int64           { return b.intAttr("id") }
func (b *Base) Source() string      { return b.strAttr("source") }
func (b *Base) Target() string      { return b.strAttr("target") }
func (b *Base) Raw() field.RawData  { return b.data }
func (b *Base) Schema() field.Schema { return b.schema }

// CreateTime returns the platform timestamp, or the zero time when unset.
func (b *Base) CreateTime() time.Time {
	v, err := b.schema.Get(b.data, "create_time")
	if err != nil {
		return time.Time{}
	}
	t, _ := v.(time.Time)
	return t
}

// Time is CreateTime as epoch seconds, the raw form some callers prefer.
func (b *Base) Time() int64 {
	t := b.CreateTime()
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}

// Get reads an attribute dynamically, surfacing conversion failures as
// *field.ConvertError naming this schema and field.
func (b *Base) Get(attr string) (any, error) {
	return b.schema.Get(b.data, attr)
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

// Factory builds a concrete message around decoded data.
type Factory func(data field.RawData) Message

// Entry pairs a schema with its factory in the registry.
type Entry struct {
	Schema field.Schema
	New    Factory
}

// Registry maps MsgType discriminators to message types. It is populated
// at init and read-only during steady-state operation.
type Registry struct {
	mu    sync.RWMutex
	types map[string]Entry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{types: make(map[string]Entry)}
}

// Register adds a message type. Registering the same discriminator twice
// is a programming error and panics at init time.
func (r *Registry) Register(msgType string, e Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.types[msgType]; exists {
		panic("message: type " + msgType + " already registered")
	}
	r.types[msgType] = e
}

// Lookup resolves a discriminator.
func (r *Registry) Lookup(msgType string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.types[msgType]
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

// DefaultRegistry holds the built-in message catalog.
var DefaultRegistry = NewRegistry()

func register(schema field.Schema, fn Factory) {
	DefaultRegistry.Register(schema.Type, Entry{Schema: schema, New: fn})
}

// Parse decodes already-decrypted, signature-validated envelope text into
// a typed message. Unknown discriminators fall back to *Unknown and never
// fail; malformed envelopes and field coercion failures do.
func Parse(doc string) (Message, error) {
	env, err := wire.Parse(doc)
	if err != nil {
		return nil, err
	}
	return FromDict(env)
}

// FromDict dispatches a pre-parsed envelope mapping, for callers that
// already hold one.
func FromDict(env wire.Dict) (Message, error) {
	msgType := env.Text("MsgType")
	entry, ok := DefaultRegistry.Lookup(msgType)
	if !ok {
		data, err := field.Decode(baseSchema, env)
		if err != nil {
			return nil, err
		}
		return &Unknown{Base: newBase(baseSchema, data)}, nil
	}
	data, err := field.Decode(entry.Schema, env)
	if err != nil {
		return nil, err
	}
	return entry.New(data), nil
}
