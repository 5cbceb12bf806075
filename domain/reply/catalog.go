package reply

import (
	"github.com/artpar/wxgate/core/field"
	"github.com/artpar/wxgate/core/wire"
)

// The built-in catalog. Schemas are declared below; factories go into the
// registry here, once, before any reply is built or deserialized.
func init() {
	register(emptySchema, func(data field.RawData) Reply { return &Empty{fromData(emptySchema, data)} })
	register(textSchema, func(data field.RawData) Reply { return &Text{fromData(textSchema, data)} })
	register(imageSchema, func(data field.RawData) Reply { return &Image{fromData(imageSchema, data)} })
	register(voiceSchema, func(data field.RawData) Reply { return &Voice{fromData(voiceSchema, data)} })
	register(videoSchema, func(data field.RawData) Reply { return &Video{fromData(videoSchema, data)} })
	register(musicSchema, func(data field.RawData) Reply { return &Music{fromData(musicSchema, data)} })
	register(newsSchema, func(data field.RawData) Reply { return &News{fromData(newsSchema, data)} })
	register(transferSchema, func(data field.RawData) Reply {
		return &TransferCustomerService{fromData(transferSchema, data)}
	})
	register(deviceTextSchema, func(data field.RawData) Reply { return &DeviceText{fromData(deviceTextSchema, data)} })
	register(deviceEventSchema, func(data field.RawData) Reply {
		return &DeviceEvent{fromData(deviceEventSchema, data)}
	})
	register(deviceStatusSchema, func(data field.RawData) Reply {
		return &DeviceStatus{fromData(deviceStatusSchema, data)}
	})
	register(hardwareSchema, func(data field.RawData) Reply { return &Hardware{fromData(hardwareSchema, data)} })
	register(taskCardSchema, func(data field.RawData) Reply { return &TaskCard{fromData(taskCardSchema, data)} })
}

var emptySchema = baseSchema.Extend("empty")

// Empty renders to the empty string: the explicit "do nothing" signal. The
// platform takes it as an acknowledgement and does not retry delivery.
type Empty struct{ Base }

// NewEmpty creates an empty reply.
func NewEmpty() *Empty {
	return &Empty{newBase(emptySchema, nil)}
}

// Render renders to the empty string, always.
func (r *Empty) Render() (string, error) { return "", nil }

var textSchema = baseSchema.Extend("text",
	field.Spec{Attr: "content", Wire: "Content", Kind: field.String{}},
)

// Text is a plain text reply.
type Text struct{ Base }

// NewText creates a text reply, addressed back at src when given.
func NewText(content string, src Addressee) *Text {
	r := &Text{newBase(textSchema, src)}
	r.SetContent(content)
	return r
}

func (r *Text) Content() string     { return r.strAttr("content") }
func (r *Text) SetContent(s string) { r.schema.Set(r.data, "content", s) }

var imageSchema = baseSchema.Extend("image",
	field.Spec{Attr: "image", Wire: "Image", Kind: field.Image{}},
)

// Image is a picture reply carrying one uploaded media id.
type Image struct{ Base }

// NewImage creates an image reply.
func NewImage(mediaID string, src Addressee) *Image {
	r := &Image{newBase(imageSchema, src)}
	r.SetMediaID(mediaID)
	return r
}

func (r *Image) MediaID() string     { return r.strAttr("image") }
func (r *Image) SetMediaID(s string) { r.schema.Set(r.data, "image", s) }

var voiceSchema = baseSchema.Extend("voice",
	field.Spec{Attr: "voice", Wire: "Voice", Kind: field.Voice{}},
)

// Voice is a voice reply carrying one uploaded media id.
type Voice struct{ Base }

// NewVoice creates a voice reply.
func NewVoice(mediaID string, src Addressee) *Voice {
	r := &Voice{newBase(voiceSchema, src)}
	r.SetMediaID(mediaID)
	return r
}

func (r *Voice) MediaID() string     { return r.strAttr("voice") }
func (r *Voice) SetMediaID(s string) { r.schema.Set(r.data, "voice", s) }

var videoSchema = baseSchema.Extend("video",
	field.Spec{Attr: "video", Wire: "Video", Kind: field.Video{}, Default: wire.Dict{}},
)

// Video is a video reply. Title and description are optional; unset keys
// never appear on the wire.
type Video struct{ Base }

// NewVideo creates a video reply.
func NewVideo(mediaID string, src Addressee) *Video {
	r := &Video{newBase(videoSchema, src)}
	r.SetMediaID(mediaID)
	return r
}

func (r *Video) MediaID() string     { return r.subDict("video").Text("media_id") }
func (r *Video) Title() string       { return r.subDict("video").Text("title") }
func (r *Video) Description() string { return r.subDict("video").Text("description") }

func (r *Video) SetMediaID(s string)     { r.subDict("video")["media_id"] = s }
func (r *Video) SetTitle(s string)       { r.subDict("video")["title"] = s }
func (r *Video) SetDescription(s string) { r.subDict("video")["description"] = s }

var musicSchema = baseSchema.Extend("music",
	field.Spec{Attr: "music", Wire: "Music", Kind: field.Music{}, Default: wire.Dict{}},
)

// Music is a music reply. All sub-fields but the thumbnail media id are
// optional; unset keys never appear on the wire.
type Music struct{ Base }

// NewMusic creates a music reply.
func NewMusic(thumbMediaID string, src Addressee) *Music {
	r := &Music{newBase(musicSchema, src)}
	r.SetThumbMediaID(thumbMediaID)
	return r
}

func (r *Music) ThumbMediaID() string { return r.subDict("music").Text("thumb_media_id") }
func (r *Music) Title() string        { return r.subDict("music").Text("title") }
func (r *Music) Description() string  { return r.subDict("music").Text("description") }
func (r *Music) MusicURL() string     { return r.subDict("music").Text("music_url") }
func (r *Music) HQMusicURL() string   { return r.subDict("music").Text("hq_music_url") }

func (r *Music) SetThumbMediaID(s string) { r.subDict("music")["thumb_media_id"] = s }
func (r *Music) SetTitle(s string)        { r.subDict("music")["title"] = s }
func (r *Music) SetDescription(s string)  { r.subDict("music")["description"] = s }
func (r *Music) SetMusicURL(s string)     { r.subDict("music")["music_url"] = s }
func (r *Music) SetHQMusicURL(s string)   { r.subDict("music")["hq_music_url"] = s }

var newsSchema = baseSchema.Extend("news",
	field.Spec{Attr: "articles", Wire: "Articles", Kind: field.Articles{}, Default: []field.Article{}},
)

// News is an article-list reply, capped at field.MaxArticles items.
type News struct{ Base }

// NewNews creates a news reply with no articles yet.
func NewNews(src Addressee) *News {
	return &News{newBase(newsSchema, src)}
}

// Articles returns the current item list in order.
func (r *News) Articles() []field.Article {
	sp, _ := r.schema.Spec("articles")
	items, _ := sp.Raw(r.data).([]field.Article)
	return items
}

// AddArticle appends one item. Exceeding the cap fails at this point of
// mutation with *field.LimitError; the list is never silently truncated.
func (r *News) AddArticle(a field.Article) error {
	items := r.Articles()
	if len(items) >= field.MaxArticles {
		return &field.LimitError{What: "articles", Limit: field.MaxArticles, Got: len(items) + 1}
	}
	r.schema.Set(r.data, "articles", append(items, a))
	return nil
}

var transferSchema = baseSchema.Extend("transfer_customer_service")

// TransferCustomerService hands the conversation to the customer service
// system. It carries no payload beyond the envelope.
type TransferCustomerService struct{ Base }

// NewTransferCustomerService creates a customer-service transfer reply.
func NewTransferCustomerService(src Addressee) *TransferCustomerService {
	return &TransferCustomerService{newBase(transferSchema, src)}
}

var deviceTextSchema = baseSchema.Extend("device_text",
	field.Spec{Attr: "device_type", Wire: "DeviceType", Kind: field.String{}},
	field.Spec{Attr: "device_id", Wire: "DeviceID", Kind: field.String{}},
	field.Spec{Attr: "session_id", Wire: "SessionID", Kind: field.String{}},
	field.Spec{Attr: "content", Wire: "Content", Kind: field.Base64Encode{}},
)

// DeviceText pushes text to IoT hardware. Content is stored as plain text
// and carried base64-encoded on the wire; reading it back re-encodes on
// every read.
type DeviceText struct{ Base }

// NewDeviceText creates a device text reply.
func NewDeviceText(content string, src Addressee) *DeviceText {
	r := &DeviceText{newBase(deviceTextSchema, src)}
	r.SetContent(content)
	return r
}

func (r *DeviceText) DeviceType() string { return r.strAttr("device_type") }
func (r *DeviceText) DeviceID() string   { return r.strAttr("device_id") }
func (r *DeviceText) SessionID() string  { return r.strAttr("session_id") }

// Content returns the payload base64-encoded, as the read-time converter
// leaves it.
func (r *DeviceText) Content() string { return r.strAttr("content") }

func (r *DeviceText) SetDeviceType(s string) { r.schema.Set(r.data, "device_type", s) }
func (r *DeviceText) SetDeviceID(s string)   { r.schema.Set(r.data, "device_id", s) }
func (r *DeviceText) SetSessionID(s string)  { r.schema.Set(r.data, "session_id", s) }
func (r *DeviceText) SetContent(s string)    { r.schema.Set(r.data, "content", s) }

var deviceEventSchema = baseSchema.Extend("device_event",
	field.Spec{Attr: "event", Wire: "Event", Kind: field.String{}},
	field.Spec{Attr: "device_type", Wire: "DeviceType", Kind: field.String{}},
	field.Spec{Attr: "device_id", Wire: "DeviceID", Kind: field.String{}},
	field.Spec{Attr: "session_id", Wire: "SessionID", Kind: field.String{}},
	field.Spec{Attr: "content", Wire: "Content", Kind: field.Base64Encode{}},
)

// DeviceEvent acknowledges a hardware event.
type DeviceEvent struct{ Base }

// NewDeviceEvent creates a device event reply.
func NewDeviceEvent(event string, src Addressee) *DeviceEvent {
	r := &DeviceEvent{newBase(deviceEventSchema, src)}
	r.SetEvent(event)
	return r
}

func (r *DeviceEvent) Event() string      { return r.strAttr("event") }
func (r *DeviceEvent) DeviceType() string { return r.strAttr("device_type") }
func (r *DeviceEvent) DeviceID() string   { return r.strAttr("device_id") }
func (r *DeviceEvent) SessionID() string  { return r.strAttr("session_id") }
func (r *DeviceEvent) Content() string    { return r.strAttr("content") }

func (r *DeviceEvent) SetEvent(s string)      { r.schema.Set(r.data, "event", s) }
func (r *DeviceEvent) SetDeviceType(s string) { r.schema.Set(r.data, "device_type", s) }
func (r *DeviceEvent) SetDeviceID(s string)   { r.schema.Set(r.data, "device_id", s) }
func (r *DeviceEvent) SetSessionID(s string)  { r.schema.Set(r.data, "session_id", s) }
func (r *DeviceEvent) SetContent(s string)    { r.schema.Set(r.data, "content", s) }

var deviceStatusSchema = baseSchema.Extend("device_status",
	field.Spec{Attr: "device_type", Wire: "DeviceType", Kind: field.String{}},
	field.Spec{Attr: "device_id", Wire: "DeviceID", Kind: field.String{}},
	field.Spec{Attr: "status", Wire: "DeviceStatus", Kind: field.Integer{}},
)

// DeviceStatus reports a hardware status code.
type DeviceStatus struct{ Base }

// NewDeviceStatus creates a device status reply.
func NewDeviceStatus(status int64, src Addressee) *DeviceStatus {
	r := &DeviceStatus{newBase(deviceStatusSchema, src)}
	r.SetStatus(status)
	return r
}

func (r *DeviceStatus) DeviceType() string { return r.strAttr("device_type") }
func (r *DeviceStatus) DeviceID() string   { return r.strAttr("device_id") }
func (r *DeviceStatus) Status() int64      { return r.intAttr("status") }

func (r *DeviceStatus) SetDeviceType(s string) { r.schema.Set(r.data, "device_type", s) }
func (r *DeviceStatus) SetDeviceID(s string)   { r.schema.Set(r.data, "device_id", s) }
func (r *DeviceStatus) SetStatus(n int64)      { r.schema.Set(r.data, "status", n) }

var hardwareSchema = baseSchema.Extend("hardware",
	field.Spec{Attr: "func_flag", Wire: "FuncFlag", Kind: field.Integer{}, Default: int64(0)},
	field.Spec{Attr: "hardware", Wire: "HardWare", Kind: field.Hardware{}, Default: wire.Dict{}},
)

// Hardware is the ranklist hardware reply. Leaving the hardware value
// unset renders the built-in view/action pair.
type Hardware struct{ Base }

// NewHardware creates a hardware reply with default view and action.
func NewHardware(src Addressee) *Hardware {
	return &Hardware{newBase(hardwareSchema, src)}
}

func (r *Hardware) FuncFlag() int64 { return r.intAttr("func_flag") }
func (r *Hardware) View() string    { return r.subDict("hardware").Text("view") }
func (r *Hardware) Action() string  { return r.subDict("hardware").Text("action") }

func (r *Hardware) SetFuncFlag(n int64) { r.schema.Set(r.data, "func_flag", n) }
func (r *Hardware) SetView(s string)    { r.subDict("hardware")["view"] = s }
func (r *Hardware) SetAction(s string)  { r.subDict("hardware")["action"] = s }

var taskCardSchema = baseSchema.Extend("update_taskcard",
	field.Spec{Attr: "task_card", Wire: "TaskCard", Kind: field.TaskCard{}},
)

// TaskCard updates the button label of a previously sent task card.
type TaskCard struct{ Base }

// NewTaskCard creates a task card update reply.
func NewTaskCard(replaceName string, src Addressee) *TaskCard {
	r := &TaskCard{newBase(taskCardSchema, src)}
	r.SetReplaceName(replaceName)
	return r
}

func (r *TaskCard) ReplaceName() string     { return r.strAttr("task_card") }
func (r *TaskCard) SetReplaceName(s string) { r.schema.Set(r.data, "task_card", s) }
