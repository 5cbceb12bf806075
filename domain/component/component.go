// Package component defines the platform-management events pushed to a
// third-party platform's webhook: authorization grants, cancellations, and
// the periodic verify ticket.
//
// Component events discriminate on the InfoType tag, not MsgType, and
// carry their own envelope (AppId, CreateTime). Like inbound messages,
// parsing never fails on an unfamiliar InfoType.
package component

import (
	"sync"
	"time"

	"github.com/artpar/wxgate/core/field"
	"github.com/artpar/wxgate/core/wire"
)

// Event is the read surface common to every component event.
type Event interface {
	// Type is the InfoType discriminator, "unknown" when unrecognized.
	Type() string
	// AppID is the third-party platform's app id.
	AppID() string
	// CreateTime is the platform timestamp.
	CreateTime() time.Time
	// Raw exposes the instance's backing data.
	Raw() field.RawData
}

// Base carries the schema/data pairing behind every concrete event.
type Base struct {
	schema field.Schema
	data   field.RawData
}

var baseSchema = field.New("unknown",
	field.Spec{Attr: "appid", Wire: "AppId", Kind: field.String{}},
	field.Spec{Attr: "create_time", Wire: "CreateTime", Kind: field.DateTime{}},
)

func newBase(schema field.Schema, data field.RawData) Base {
	if data == nil {
		data = field.RawData{}
	}
	return Base{schema: schema, data: data}
}

func (b *Base) Type() string       { return b.schema.Type }
func (b *Base) AppID() string      { return b.strAttr("appid") }
func (b *Base) Raw() field.RawData { return b.data }

func (b *Base) CreateTime() time.Time {
	v, err := b.schema.Get(b.data, "create_time")
	if err != nil {
		return time.Time{}
	}
	t, _ := v.(time.Time)
	return t
}

// Get reads an attribute dynamically.
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

// Factory builds a concrete event around decoded data.
type Factory func(data field.RawData) Event

// Entry pairs a schema with its factory.
type Entry struct {
	Schema field.Schema
	New    Factory
}

// Registry maps InfoType discriminators to event types, populated once at
// init.
type Registry struct {
	mu    sync.RWMutex
	types map[string]Entry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{types: make(map[string]Entry)}
}

// Register adds an event type, panicking on duplicates at init time.
func (r *Registry) Register(infoType string, e Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.types[infoType]; exists {
		panic("component: type " + infoType + " already registered")
	}
	r.types[infoType] = e
}

// Lookup resolves a discriminator.
func (r *Registry) Lookup(infoType string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.types[infoType]
	return e, ok
}

// DefaultRegistry holds the built-in event catalog.
var DefaultRegistry = NewRegistry()

func register(schema field.Schema, fn Factory) {
	DefaultRegistry.Register(schema.Type, Entry{Schema: schema, New: fn})
}

// The built-in event catalog, registered once before any event is parsed.
func init() {
	register(verifyTicketSchema, func(data field.RawData) Event { return &VerifyTicket{newBase(verifyTicketSchema, data)} })
	register(unauthorizedSchema, func(data field.RawData) Event { return &Unauthorized{newBase(unauthorizedSchema, data)} })
	register(authorizedSchema, func(data field.RawData) Event { return &Authorized{newBase(authorizedSchema, data)} })
	register(updateAuthorizedSchema, func(data field.RawData) Event {
		return &UpdateAuthorized{newBase(updateAuthorizedSchema, data)}
	})
}

// Parse decodes plaintext event XML into a typed event, falling back to
// *Unknown for unfamiliar InfoType values.
func Parse(doc string) (Event, error) {
	env, err := wire.Parse(doc)
	if err != nil {
		return nil, err
	}
	infoType := env.Text("InfoType")
	entry, ok := DefaultRegistry.Lookup(infoType)
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

var verifyTicketSchema = baseSchema.Extend("component_verify_ticket",
	field.Spec{Attr: "verify_ticket", Wire: "ComponentVerifyTicket", Kind: field.String{}},
)

// VerifyTicket is the periodic ticket the platform pushes; it feeds the
// component access token exchange.
type VerifyTicket struct{ Base }

func (e *VerifyTicket) Ticket() string { return e.strAttr("verify_ticket") }

var unauthorizedSchema = baseSchema.Extend("unauthorized",
	field.Spec{Attr: "authorizer_appid", Wire: "AuthorizerAppid", Kind: field.String{}},
)

// Unauthorized signals an authorizer revoking its grant.
type Unauthorized struct{ Base }

func (e *Unauthorized) AuthorizerAppID() string { return e.strAttr("authorizer_appid") }

var authorizedSchema = baseSchema.Extend("authorized",
	field.Spec{Attr: "authorizer_appid", Wire: "AuthorizerAppid", Kind: field.String{}},
	field.Spec{Attr: "authorization_code", Wire: "AuthorizationCode", Kind: field.String{}},
	field.Spec{Attr: "authorization_code_expired_time", Wire: "AuthorizationCodeExpiredTime", Kind: field.String{}},
	field.Spec{Attr: "pre_auth_code", Wire: "PreAuthCode", Kind: field.String{}},
)

// Authorized signals a new authorizer grant.
type Authorized struct{ Base }

func (e *Authorized) AuthorizerAppID() string       { return e.strAttr("authorizer_appid") }
func (e *Authorized) AuthorizationCode() string     { return e.strAttr("authorization_code") }
func (e *Authorized) AuthorizationCodeExpiredTime() string {
	return e.strAttr("authorization_code_expired_time")
}
func (e *Authorized) PreAuthCode() string { return e.strAttr("pre_auth_code") }

var updateAuthorizedSchema = baseSchema.Extend("updateauthorized",
	field.Spec{Attr: "authorizer_appid", Wire: "AuthorizerAppid", Kind: field.String{}},
	field.Spec{Attr: "authorization_code", Wire: "AuthorizationCode", Kind: field.String{}},
	field.Spec{Attr: "authorization_code_expired_time", Wire: "AuthorizationCodeExpiredTime", Kind: field.String{}},
	field.Spec{Attr: "pre_auth_code", Wire: "PreAuthCode", Kind: field.String{}},
)

// UpdateAuthorized signals an authorizer changing its granted permission
// set.
type UpdateAuthorized struct{ Base }

func (e *UpdateAuthorized) AuthorizerAppID() string   { return e.strAttr("authorizer_appid") }
func (e *UpdateAuthorized) AuthorizationCode() string { return e.strAttr("authorization_code") }
func (e *UpdateAuthorized) AuthorizationCodeExpiredTime() string {
	return e.strAttr("authorization_code_expired_time")
}
func (e *UpdateAuthorized) PreAuthCode() string { return e.strAttr("pre_auth_code") }

// Unknown is the fallback for unfamiliar InfoType values.
type Unknown struct{ Base }
