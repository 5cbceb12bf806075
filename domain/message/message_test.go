package message_test

import (
	"errors"
	"testing"
	"time"

	"github.com/artpar/wxgate/core/field"
	"github.com/artpar/wxgate/domain/message"
)

const textEnvelope = `<xml>
	<ToUserName><![CDATA[gh_account]]></ToUserName>
	<FromUserName><![CDATA[user_openid]]></FromUserName>
	<CreateTime>1633000000</CreateTime>
	<MsgType><![CDATA[text]]></MsgType>
	<Content><![CDATA[hello world]]></Content>
	<MsgId>1234567890123456</MsgId>
</xml>`

func TestParse_Text(t *testing.T) {
	msg, err := message.Parse(textEnvelope)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	text, ok := msg.(*message.Text)
	if !ok {
		t.Fatalf("Parse = %T, want *message.Text", msg)
	}
	if text.Type() != "text" {
		t.Errorf("Type = %s, want text", text.Type())
	}
	if text.Content() != "hello world" {
		t.Errorf("Content = %q, want hello world", text.Content())
	}
	if text.Source() != "user_openid" {
		t.Errorf("Source = %s, want user_openid", text.Source())
	}
	if text.Target() != "gh_account" {
		t.Errorf("Target = %s, want gh_account", text.Target())
	}
	if text.ID() != 1234567890123456 {
		t.Errorf("ID = %d, want 1234567890123456", text.ID())
	}
}

func TestParse_CreateTimeZoned(t *testing.T) {
	msg, err := message.Parse(textEnvelope)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	ct := msg.CreateTime()
	if ct.Unix() != 1633000000 {
		t.Errorf("CreateTime.Unix = %d, want 1633000000", ct.Unix())
	}
	if ct.Location() != field.Location {
		t.Errorf("CreateTime zone = %v, want %v", ct.Location(), field.Location)
	}

	base, ok := msg.(*message.Text)
	if !ok {
		t.Fatal("want *message.Text")
	}
	if base.Time() != 1633000000 {
		t.Errorf("Time = %d, want 1633000000", base.Time())
	}
}

func TestParse_UnknownTypeFallsBack(t *testing.T) {
	doc := `<xml>
		<ToUserName><![CDATA[gh]]></ToUserName>
		<FromUserName><![CDATA[user]]></FromUserName>
		<CreateTime>1633000000</CreateTime>
		<MsgType><![CDATA[hologram]]></MsgType>
		<Density>42</Density>
	</xml>`

	msg, err := message.Parse(doc)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	unk, ok := msg.(*message.Unknown)
	if !ok {
		t.Fatalf("Parse = %T, want *message.Unknown", msg)
	}
	if unk.Type() != "unknown" {
		t.Errorf("Type = %s, want unknown", unk.Type())
	}
	if unk.Source() != "user" || unk.Target() != "gh" {
		t.Errorf("envelope fields lost: source=%s target=%s", unk.Source(), unk.Target())
	}
}

func TestParse_MissingMsgTypeFallsBack(t *testing.T) {
	doc := `<xml>
		<FromUserName><![CDATA[user]]></FromUserName>
	</xml>`

	msg, err := message.Parse(doc)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if _, ok := msg.(*message.Unknown); !ok {
		t.Fatalf("Parse = %T, want *message.Unknown", msg)
	}
}

func TestParse_BadIntegerNamesSchemaAndField(t *testing.T) {
	doc := `<xml>
		<MsgType><![CDATA[text]]></MsgType>
		<MsgId>not-a-number</MsgId>
	</xml>`

	_, err := message.Parse(doc)
	var convErr *field.ConvertError
	if !errors.As(err, &convErr) {
		t.Fatalf("error = %v, want *field.ConvertError", err)
	}
	if convErr.Schema != "text" || convErr.Field != "id" {
		t.Errorf("ConvertError names %s.%s, want text.id", convErr.Schema, convErr.Field)
	}
}

func TestParse_MalformedEnvelope(t *testing.T) {
	if _, err := message.Parse("<html></html>"); err == nil {
		t.Fatal("wrong root should fail")
	}
	if _, err := message.Parse(""); err == nil {
		t.Fatal("empty document should fail")
	}
}

func TestParse_Image(t *testing.T) {
	doc := `<xml>
		<MsgType><![CDATA[image]]></MsgType>
		<MediaId><![CDATA[media-1]]></MediaId>
		<PicUrl><![CDATA[http://example.com/p.jpg]]></PicUrl>
	</xml>`

	msg, err := message.Parse(doc)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	img := msg.(*message.Image)
	if img.MediaID() != "media-1" {
		t.Errorf("MediaID = %s", img.MediaID())
	}
	if img.ImageURL() != "http://example.com/p.jpg" {
		t.Errorf("ImageURL = %s", img.ImageURL())
	}
}

func TestParse_Voice(t *testing.T) {
	doc := `<xml>
		<MsgType><![CDATA[voice]]></MsgType>
		<MediaId><![CDATA[m]]></MediaId>
		<Format><![CDATA[amr]]></Format>
		<Recognition><![CDATA[hello]]></Recognition>
	</xml>`

	msg, err := message.Parse(doc)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	v := msg.(*message.Voice)
	if v.Format() != "amr" || v.Recognition() != "hello" {
		t.Errorf("Voice = format %s, recognition %s", v.Format(), v.Recognition())
	}
}

func TestParse_Location(t *testing.T) {
	doc := `<xml>
		<MsgType><![CDATA[location]]></MsgType>
		<Location_X><![CDATA[23.134521]]></Location_X>
		<Location_Y><![CDATA[113.358803]]></Location_Y>
		<Scale><![CDATA[20]]></Scale>
		<Label><![CDATA[somewhere]]></Label>
	</xml>`

	msg, err := message.Parse(doc)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	loc := msg.(*message.Location)
	x, y := loc.Location()
	if x != "23.134521" || y != "113.358803" {
		t.Errorf("Location = (%s, %s)", x, y)
	}
	if loc.Label() != "somewhere" {
		t.Errorf("Label = %s", loc.Label())
	}
}

func TestParse_Link(t *testing.T) {
	doc := `<xml>
		<MsgType><![CDATA[link]]></MsgType>
		<Title><![CDATA[a page]]></Title>
		<Description><![CDATA[about things]]></Description>
		<Url><![CDATA[http://example.com]]></Url>
	</xml>`

	msg, err := message.Parse(doc)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	link := msg.(*message.Link)
	if link.Title() != "a page" || link.URL() != "http://example.com" {
		t.Errorf("Link = %s / %s", link.Title(), link.URL())
	}
}

func TestParse_DeviceTextDecodesContent(t *testing.T) {
	// "ping" base64-encoded by the device.
	doc := `<xml>
		<MsgType><![CDATA[device_text]]></MsgType>
		<DeviceType><![CDATA[gh_device]]></DeviceType>
		<DeviceID><![CDATA[dev-1]]></DeviceID>
		<SessionID><![CDATA[sess-1]]></SessionID>
		<Content><![CDATA[cGluZw==]]></Content>
	</xml>`

	msg, err := message.Parse(doc)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	dt := msg.(*message.DeviceText)
	content, err := dt.Content()
	if err != nil {
		t.Fatalf("Content error: %v", err)
	}
	if content != "ping" {
		t.Errorf("Content = %q, want ping", content)
	}
	if dt.DeviceID() != "dev-1" || dt.SessionID() != "sess-1" {
		t.Errorf("device fields lost: %s / %s", dt.DeviceID(), dt.SessionID())
	}
}

func TestParse_DeviceTextBadBase64(t *testing.T) {
	doc := `<xml>
		<MsgType><![CDATA[device_text]]></MsgType>
		<Content><![CDATA[!!not base64!!]]></Content>
	</xml>`

	msg, err := message.Parse(doc)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	dt := msg.(*message.DeviceText)
	if _, err := dt.Content(); err == nil {
		t.Fatal("Content of invalid base64 should fail")
	}
}

func TestParse_DeviceEvent(t *testing.T) {
	doc := `<xml>
		<MsgType><![CDATA[device_event]]></MsgType>
		<Event><![CDATA[bind]]></Event>
		<DeviceType><![CDATA[gh_device]]></DeviceType>
		<DeviceID><![CDATA[dev-1]]></DeviceID>
		<OpenID><![CDATA[openid-1]]></OpenID>
		<Content><![CDATA[cGluZw==]]></Content>
	</xml>`

	msg, err := message.Parse(doc)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	ev := msg.(*message.DeviceEvent)
	if ev.Event() != "bind" || ev.OpenID() != "openid-1" {
		t.Errorf("DeviceEvent = %s / %s", ev.Event(), ev.OpenID())
	}
	content, err := ev.Content()
	if err != nil {
		t.Fatalf("Content error: %v", err)
	}
	if content != "ping" {
		t.Errorf("Content = %q, want ping", content)
	}
}

func TestParse_DeviceStatus(t *testing.T) {
	doc := `<xml>
		<MsgType><![CDATA[device_status]]></MsgType>
		<DeviceType><![CDATA[gh_device]]></DeviceType>
		<DeviceID><![CDATA[dev-1]]></DeviceID>
		<DeviceStatus>2</DeviceStatus>
	</xml>`

	msg, err := message.Parse(doc)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	st := msg.(*message.DeviceStatus)
	if st.Status() != 2 {
		t.Errorf("Status = %d, want 2", st.Status())
	}
	if st.DeviceID() != "dev-1" {
		t.Errorf("DeviceID = %s", st.DeviceID())
	}
}

func TestRegistry_DuplicatePanics(t *testing.T) {
	r := message.NewRegistry()
	r.Register("text", message.Entry{})

	defer func() {
		if recover() == nil {
			t.Fatal("duplicate registration should panic")
		}
	}()
	r.Register("text", message.Entry{})
}

func TestRegistry_Types(t *testing.T) {
	types := message.DefaultRegistry.Types()
	want := map[string]bool{
		"text": false, "image": false, "voice": false, "video": false,
		"shortvideo": false, "location": false, "link": false,
		"miniprogrampage": false, "device_text": false,
		"device_event": false, "device_status": false,
	}
	for _, typ := range types {
		if _, ok := want[typ]; ok {
			want[typ] = true
		}
	}
	for typ, seen := range want {
		if !seen {
			t.Errorf("registry missing %s", typ)
		}
	}
}

func TestParse_AbsentCreateTime(t *testing.T) {
	doc := `<xml><MsgType><![CDATA[text]]></MsgType></xml>`
	msg, err := message.Parse(doc)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if !msg.CreateTime().Equal(time.Time{}) {
		t.Errorf("CreateTime = %v, want zero", msg.CreateTime())
	}
}
