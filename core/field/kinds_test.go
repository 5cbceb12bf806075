package field

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/artpar/wxgate/core/wire"
)

func TestString_Encode(t *testing.T) {
	sp := Spec{Attr: "content", Wire: "Content", Kind: String{}}
	got, err := String{}.Encode(sp, "hello")
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	if got != "<Content><![CDATA[hello]]></Content>" {
		t.Errorf("Encode = %q", got)
	}
}

func TestInteger_Convert(t *testing.T) {
	tests := []struct {
		name    string
		in      any
		want    int64
		wantErr bool
	}{
		{"string digits", "42", 42, false},
		{"padded string", " 42 ", 42, false},
		{"int64", int64(7), 7, false},
		{"int", 7, 7, false},
		{"not a number", "seven", 0, true},
		{"nested element", wire.Dict{}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Integer{}.Convert(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatal("Convert succeeded, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Convert error: %v", err)
			}
			if got.(int64) != tt.want {
				t.Errorf("Convert = %v, want %d", got, tt.want)
			}
		})
	}
}

func TestInteger_EncodeUnsetUsesDefault(t *testing.T) {
	sp := Spec{Attr: "id", Wire: "MsgId", Kind: Integer{}, Default: int64(0)}
	got, err := Integer{}.Encode(sp, nil)
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	if got != "<MsgId>0</MsgId>" {
		t.Errorf("Encode = %q, want default leaf", got)
	}
}

func TestDateTime_ConvertEpoch(t *testing.T) {
	got, err := DateTime{}.Convert("1633000000")
	if err != nil {
		t.Fatalf("Convert error: %v", err)
	}
	ts, ok := got.(time.Time)
	if !ok {
		t.Fatalf("Convert = %T, want time.Time", got)
	}
	if ts.Unix() != 1633000000 {
		t.Errorf("Unix = %d, want 1633000000", ts.Unix())
	}
	if ts.Location() != Location {
		t.Errorf("Location = %v, want %v", ts.Location(), Location)
	}
}

func TestDateTime_RoundTrip(t *testing.T) {
	sp := Spec{Attr: "time", Wire: "CreateTime", Kind: DateTime{}}

	decoded, err := DateTime{}.Decode("1633000000")
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	out, err := DateTime{}.Encode(sp, decoded)
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	if out != "<CreateTime>1633000000</CreateTime>" {
		t.Errorf("Encode = %q, want the original epoch", out)
	}
}

func TestImage_Decode(t *testing.T) {
	got, err := Image{}.Decode(wire.Dict{"MediaId": "media-1"})
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if got != "media-1" {
		t.Errorf("Decode = %v, want media-1", got)
	}

	if _, err := (Image{}).Decode("flat text"); err == nil {
		t.Error("Decode of a leaf should fail")
	}
}

func TestImage_Encode(t *testing.T) {
	sp := Spec{Attr: "image", Wire: "Image", Kind: Image{}}
	got, err := Image{}.Encode(sp, "media-1")
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	if got != "<Image><MediaId><![CDATA[media-1]]></MediaId></Image>" {
		t.Errorf("Encode = %q", got)
	}
}

func TestVideo_EncodeOmitsUnsetKeys(t *testing.T) {
	sp := Spec{Attr: "video", Wire: "Video", Kind: Video{}}

	got, err := Video{}.Encode(sp, wire.Dict{"media_id": "m1"})
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	if strings.Contains(got, "Title") || strings.Contains(got, "Description") {
		t.Errorf("Encode emitted unset keys: %q", got)
	}

	got, err = Video{}.Encode(sp, wire.Dict{"media_id": "m1", "title": "t", "description": "d"})
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	want := "<Video><MediaId><![CDATA[m1]]></MediaId><Title><![CDATA[t]]></Title><Description><![CDATA[d]]></Description></Video>"
	if got != want {
		t.Errorf("Encode = %q, want %q", got, want)
	}
}

func TestVideo_EncodeRequiresMediaID(t *testing.T) {
	sp := Spec{Attr: "video", Wire: "Video", Kind: Video{}}
	if _, err := (Video{}).Encode(sp, wire.Dict{"title": "t"}); err == nil {
		t.Error("Encode without media_id should fail")
	}
}

func TestMusic_EncodeOrderAndOmission(t *testing.T) {
	sp := Spec{Attr: "music", Wire: "Music", Kind: Music{}}

	got, err := Music{}.Encode(sp, wire.Dict{
		"thumb_media_id": "thumb",
		"music_url":      "http://m",
	})
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	want := "<Music><ThumbMediaId><![CDATA[thumb]]></ThumbMediaId><MusicUrl><![CDATA[http://m]]></MusicUrl></Music>"
	if got != want {
		t.Errorf("Encode = %q, want %q", got, want)
	}

	if _, err := (Music{}).Encode(sp, wire.Dict{"title": "t"}); err == nil {
		t.Error("Encode without thumb_media_id should fail")
	}
}

func TestArticles_Encode(t *testing.T) {
	sp := Spec{Attr: "articles", Wire: "Articles", Kind: Articles{}}
	got, err := Articles{}.Encode(sp, []Article{
		{Title: "a", Description: "da", Image: "pa", URL: "ua"},
		{Title: "b"},
	})
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}

	if !strings.HasPrefix(got, "<ArticleCount>2</ArticleCount>") {
		t.Errorf("Encode missing count prefix: %q", got)
	}
	if strings.Count(got, "<item>") != 2 {
		t.Errorf("Encode item count mismatch: %q", got)
	}
	// Missing keys render as empty text, not omitted.
	if !strings.Contains(got, "<Url><![CDATA[]]></Url>") {
		t.Errorf("Encode should render empty leaves for missing keys: %q", got)
	}
}

func TestArticles_EncodeOverLimit(t *testing.T) {
	sp := Spec{Attr: "articles", Wire: "Articles", Kind: Articles{}}
	items := make([]Article, MaxArticles+1)
	_, err := Articles{}.Encode(sp, items)

	var limitErr *LimitError
	if !errors.As(err, &limitErr) {
		t.Fatalf("error = %v, want *LimitError", err)
	}
	if limitErr.Limit != MaxArticles || limitErr.Got != MaxArticles+1 {
		t.Errorf("LimitError = %+v", limitErr)
	}
}

func TestArticles_DecodePreservesOrder(t *testing.T) {
	src := wire.Dict{
		"item": []any{
			wire.Dict{"Title": "one", "PicUrl": "p1", "Url": "u1"},
			wire.Dict{"Title": "two"},
		},
	}
	got, err := Articles{}.Decode(src)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	items := got.([]Article)
	if len(items) != 2 || items[0].Title != "one" || items[1].Title != "two" {
		t.Errorf("Decode = %+v", items)
	}
	if items[0].Image != "p1" || items[0].URL != "u1" {
		t.Errorf("Decode lost item fields: %+v", items[0])
	}
}

func TestBase64Encode_ConvertNotIdempotent(t *testing.T) {
	once, err := Base64Encode{}.Convert("hello")
	if err != nil {
		t.Fatalf("Convert error: %v", err)
	}
	if once != "aGVsbG8=" {
		t.Errorf("Convert = %v, want aGVsbG8=", once)
	}

	// Feeding the converted value back re-encodes it. The converter runs
	// on every read and never caches.
	twice, err := Base64Encode{}.Convert(once)
	if err != nil {
		t.Fatalf("Convert error: %v", err)
	}
	if twice == once {
		t.Error("second Convert should differ from the first")
	}
}

func TestBase64Encode_WireRoundTrip(t *testing.T) {
	sp := Spec{Attr: "content", Wire: "Content", Kind: Base64Encode{}}

	encoded, err := Base64Encode{}.Encode(sp, "hello")
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	if encoded != "<Content><![CDATA[aGVsbG8=]]></Content>" {
		t.Errorf("Encode = %q", encoded)
	}

	stored, err := Base64Encode{}.Decode("aGVsbG8=")
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if stored != "hello" {
		t.Errorf("Decode = %v, want hello", stored)
	}
}

func TestBase64Decode_Convert(t *testing.T) {
	got, err := Base64Decode{}.Convert("aGVsbG8=")
	if err != nil {
		t.Fatalf("Convert error: %v", err)
	}
	if got != "hello" {
		t.Errorf("Convert = %v, want hello", got)
	}

	if _, err := (Base64Decode{}).Convert("not base64!!"); err == nil {
		t.Error("Convert of invalid base64 should fail")
	}
}

func TestHardware_EncodeDefaults(t *testing.T) {
	sp := Spec{Attr: "hardware", Wire: "HardWare", Kind: Hardware{}}

	got, err := Hardware{}.Encode(sp, nil)
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	want := "<HardWare><MessageView><![CDATA[myrank]]></MessageView><MessageAction><![CDATA[ranklist]]></MessageAction></HardWare>"
	if got != want {
		t.Errorf("Encode = %q, want defaults", got)
	}

	got, err = Hardware{}.Encode(sp, wire.Dict{"view": "v", "action": "a"})
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	if !strings.Contains(got, "CDATA[v]") || !strings.Contains(got, "CDATA[a]") {
		t.Errorf("Encode ignored set values: %q", got)
	}
}

func TestHardware_Decode(t *testing.T) {
	got, err := Hardware{}.Decode(wire.Dict{"MessageView": "myrank", "MessageAction": "ranklist"})
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	d := got.(wire.Dict)
	if d.Text("view") != "myrank" || d.Text("action") != "ranklist" {
		t.Errorf("Decode = %v", d)
	}
}

func TestTaskCard_Encode(t *testing.T) {
	sp := Spec{Attr: "task_card", Wire: "TaskCard", Kind: TaskCard{}}
	got, err := TaskCard{}.Encode(sp, "done")
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	if got != "<TaskCard><ReplaceName><![CDATA[done]]></ReplaceName></TaskCard>" {
		t.Errorf("Encode = %q", got)
	}
}
