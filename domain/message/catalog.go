package message

import (
	"github.com/artpar/wxgate/core/field"
)

// The built-in catalog. Schemas are declared below, each extended from the
// envelope base; factories go into the registry here, once, before any
// envelope is parsed.
func init() {
	register(textSchema, func(data field.RawData) Message { return &Text{newBase(textSchema, data)} })
	register(imageSchema, func(data field.RawData) Message { return &Image{newBase(imageSchema, data)} })
	register(voiceSchema, func(data field.RawData) Message { return &Voice{newBase(voiceSchema, data)} })
	register(shortVideoSchema, func(data field.RawData) Message { return &ShortVideo{newBase(shortVideoSchema, data)} })
	register(videoSchema, func(data field.RawData) Message { return &Video{newBase(videoSchema, data)} })
	register(locationSchema, func(data field.RawData) Message { return &Location{newBase(locationSchema, data)} })
	register(linkSchema, func(data field.RawData) Message { return &Link{newBase(linkSchema, data)} })
	register(miniProgramPageSchema, func(data field.RawData) Message {
		return &MiniProgramPage{newBase(miniProgramPageSchema, data)}
	})
	register(deviceTextSchema, func(data field.RawData) Message { return &DeviceText{newBase(deviceTextSchema, data)} })
	register(deviceEventSchema, func(data field.RawData) Message {
		return &DeviceEvent{newBase(deviceEventSchema, data)}
	})
	register(deviceStatusSchema, func(data field.RawData) Message {
		return &DeviceStatus{newBase(deviceStatusSchema, data)}
	})
}

var textSchema = baseSchema.Extend("text",
	field.Spec{Attr: "content", Wire: "Content", Kind: field.String{}},
)

// Text is a plain text message.
type Text struct{ Base }

// Content returns the message body.
func (m *Text) Content() string { return m.strAttr("content") }

var imageSchema = baseSchema.Extend("image",
	field.Spec{Attr: "media_id", Wire: "MediaId", Kind: field.String{}},
	field.Spec{Attr: "image", Wire: "PicUrl", Kind: field.String{}},
)

// Image is a picture message.
type Image struct{ Base }

func (m *Image) MediaID() string  { return m.strAttr("media_id") }
func (m *Image) ImageURL() string { return m.strAttr("image") }

var voiceSchema = baseSchema.Extend("voice",
	field.Spec{Attr: "media_id", Wire: "MediaId", Kind: field.String{}},
	field.Spec{Attr: "format", Wire: "Format", Kind: field.String{}},
	field.Spec{Attr: "recognition", Wire: "Recognition", Kind: field.String{}},
)

// Voice is a voice message, optionally carrying the platform's speech
// recognition result.
type Voice struct{ Base }

func (m *Voice) MediaID() string     { return m.strAttr("media_id") }
func (m *Voice) Format() string      { return m.strAttr("format") }
func (m *Voice) Recognition() string { return m.strAttr("recognition") }

var shortVideoSchema = baseSchema.Extend("shortvideo",
	field.Spec{Attr: "media_id", Wire: "MediaId", Kind: field.String{}},
	field.Spec{Attr: "thumb_media_id", Wire: "ThumbMediaId", Kind: field.String{}},
)

// ShortVideo is a short video message.
type ShortVideo struct{ Base }

func (m *ShortVideo) MediaID() string      { return m.strAttr("media_id") }
func (m *ShortVideo) ThumbMediaID() string { return m.strAttr("thumb_media_id") }

var videoSchema = baseSchema.Extend("video",
	field.Spec{Attr: "media_id", Wire: "MediaId", Kind: field.String{}},
	field.Spec{Attr: "thumb_media_id", Wire: "ThumbMediaId", Kind: field.String{}},
)

// Video is a video message.
type Video struct{ Base }

func (m *Video) MediaID() string      { return m.strAttr("media_id") }
func (m *Video) ThumbMediaID() string { return m.strAttr("thumb_media_id") }

var locationSchema = baseSchema.Extend("location",
	field.Spec{Attr: "location_x", Wire: "Location_X", Kind: field.String{}},
	field.Spec{Attr: "location_y", Wire: "Location_Y", Kind: field.String{}},
	field.Spec{Attr: "scale", Wire: "Scale", Kind: field.String{}},
	field.Spec{Attr: "label", Wire: "Label", Kind: field.String{}},
)

// Location is a shared geographic position.
type Location struct{ Base }

func (m *Location) Scale() string { return m.strAttr("scale") }
func (m *Location) Label() string { return m.strAttr("label") }

// Location returns the latitude/longitude pair as reported on the wire.
func (m *Location) Location() (x, y string) {
	return m.strAttr("location_x"), m.strAttr("location_y")
}

var linkSchema = baseSchema.Extend("link",
	field.Spec{Attr: "title", Wire: "Title", Kind: field.String{}},
	field.Spec{Attr: "description", Wire: "Description", Kind: field.String{}},
	field.Spec{Attr: "url", Wire: "Url", Kind: field.String{}},
)

// Link is a shared link message.
type Link struct{ Base }

func (m *Link) Title() string       { return m.strAttr("title") }
func (m *Link) Description() string { return m.strAttr("description") }
func (m *Link) URL() string         { return m.strAttr("url") }

var miniProgramPageSchema = baseSchema.Extend("miniprogrampage",
	field.Spec{Attr: "app_id", Wire: "AppId", Kind: field.String{}},
	field.Spec{Attr: "title", Wire: "Title", Kind: field.String{}},
	field.Spec{Attr: "page_path", Wire: "PagePath", Kind: field.String{}},
	field.Spec{Attr: "thumb_url", Wire: "ThumbUrl", Kind: field.String{}},
	field.Spec{Attr: "thumb_media_id", Wire: "ThumbMediaId", Kind: field.String{}},
)

// MiniProgramPage is a mini-program card message.
type MiniProgramPage struct{ Base }

func (m *MiniProgramPage) AppID() string        { return m.strAttr("app_id") }
func (m *MiniProgramPage) Title() string        { return m.strAttr("title") }
func (m *MiniProgramPage) PagePath() string     { return m.strAttr("page_path") }
func (m *MiniProgramPage) ThumbURL() string     { return m.strAttr("thumb_url") }
func (m *MiniProgramPage) ThumbMediaID() string { return m.strAttr("thumb_media_id") }

var deviceTextSchema = baseSchema.Extend("device_text",
	field.Spec{Attr: "device_type", Wire: "DeviceType", Kind: field.String{}},
	field.Spec{Attr: "device_id", Wire: "DeviceID", Kind: field.String{}},
	field.Spec{Attr: "session_id", Wire: "SessionID", Kind: field.String{}},
	field.Spec{Attr: "content", Wire: "Content", Kind: field.Base64Decode{}},
)

// DeviceText is a message relayed from IoT hardware. The device delivers
// its payload base64-encoded; Content decodes it afresh on every read.
type DeviceText struct{ Base }

func (m *DeviceText) DeviceType() string { return m.strAttr("device_type") }
func (m *DeviceText) DeviceID() string   { return m.strAttr("device_id") }
func (m *DeviceText) SessionID() string  { return m.strAttr("session_id") }

// Content returns the decoded device payload. It fails when the device
// sent text that is not valid base64.
func (m *DeviceText) Content() (string, error) {
	v, err := m.Get("content")
	if err != nil {
		return "", err
	}
	s, _ := v.(string)
	return s, nil
}

var deviceEventSchema = baseSchema.Extend("device_event",
	field.Spec{Attr: "event", Wire: "Event", Kind: field.String{}},
	field.Spec{Attr: "device_type", Wire: "DeviceType", Kind: field.String{}},
	field.Spec{Attr: "device_id", Wire: "DeviceID", Kind: field.String{}},
	field.Spec{Attr: "session_id", Wire: "SessionID", Kind: field.String{}},
	field.Spec{Attr: "open_id", Wire: "OpenID", Kind: field.String{}},
	field.Spec{Attr: "content", Wire: "Content", Kind: field.Base64Decode{}},
)

// DeviceEvent is a hardware event (bind, unbind, subscribe status). Its
// payload is base64-encoded on the wire like device text.
type DeviceEvent struct{ Base }

func (m *DeviceEvent) Event() string      { return m.strAttr("event") }
func (m *DeviceEvent) DeviceType() string { return m.strAttr("device_type") }
func (m *DeviceEvent) DeviceID() string   { return m.strAttr("device_id") }
func (m *DeviceEvent) SessionID() string  { return m.strAttr("session_id") }
func (m *DeviceEvent) OpenID() string     { return m.strAttr("open_id") }

// Content returns the decoded event payload, failing on invalid base64.
func (m *DeviceEvent) Content() (string, error) {
	v, err := m.Get("content")
	if err != nil {
		return "", err
	}
	s, _ := v.(string)
	return s, nil
}

var deviceStatusSchema = baseSchema.Extend("device_status",
	field.Spec{Attr: "device_type", Wire: "DeviceType", Kind: field.String{}},
	field.Spec{Attr: "device_id", Wire: "DeviceID", Kind: field.String{}},
	field.Spec{Attr: "status", Wire: "DeviceStatus", Kind: field.Integer{}, Default: int64(0)},
)

// DeviceStatus reports a hardware status code change.
type DeviceStatus struct{ Base }

func (m *DeviceStatus) DeviceType() string { return m.strAttr("device_type") }
func (m *DeviceStatus) DeviceID() string   { return m.strAttr("device_id") }
func (m *DeviceStatus) Status() int64      { return m.intAttr("status") }

// Unknown is the fallback for discriminators absent from the registry. It
// exposes only the universal envelope fields.
type Unknown struct{ Base }
