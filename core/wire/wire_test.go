package wire

import (
	"errors"
	"testing"
)

func TestParse_FlatEnvelope(t *testing.T) {
	doc := `<xml>
		<ToUserName><![CDATA[gh_account]]></ToUserName>
		<FromUserName><![CDATA[user_openid]]></FromUserName>
		<CreateTime>1633000000</CreateTime>
		<MsgType><![CDATA[text]]></MsgType>
		<Content><![CDATA[hello world]]></Content>
	</xml>`

	d, err := Parse(doc)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	tests := []struct {
		key  string
		want string
	}{
		{"ToUserName", "gh_account"},
		{"FromUserName", "user_openid"},
		{"CreateTime", "1633000000"},
		{"MsgType", "text"},
		{"Content", "hello world"},
	}
	for _, tt := range tests {
		if got := d.Text(tt.key); got != tt.want {
			t.Errorf("Text(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestParse_NestedElement(t *testing.T) {
	doc := `<xml>
		<MsgType><![CDATA[device_event]]></MsgType>
		<HardWare>
			<MessageView><![CDATA[myrank]]></MessageView>
			<MessageAction><![CDATA[ranklist]]></MessageAction>
		</HardWare>
	</xml>`

	d, err := Parse(doc)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	hw := d.Sub("HardWare")
	if hw == nil {
		t.Fatal("Sub(HardWare) = nil, want nested dict")
	}
	if got := hw.Text("MessageView"); got != "myrank" {
		t.Errorf("MessageView = %q, want myrank", got)
	}
	if got := hw.Text("MessageAction"); got != "ranklist" {
		t.Errorf("MessageAction = %q, want ranklist", got)
	}
}

func TestParse_RepeatedSiblings(t *testing.T) {
	doc := `<xml>
		<Articles>
			<item><Title><![CDATA[first]]></Title></item>
			<item><Title><![CDATA[second]]></Title></item>
			<item><Title><![CDATA[third]]></Title></item>
		</Articles>
	</xml>`

	d, err := Parse(doc)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	items := d.Sub("Articles").List("item")
	if len(items) != 3 {
		t.Fatalf("len(items) = %d, want 3", len(items))
	}
	want := []string{"first", "second", "third"}
	for i, raw := range items {
		item, ok := raw.(Dict)
		if !ok {
			t.Fatalf("items[%d] is %T, want Dict", i, raw)
		}
		if got := item.Text("Title"); got != want[i] {
			t.Errorf("items[%d].Title = %q, want %q", i, got, want[i])
		}
	}
}

func TestParse_SingleItemStillListable(t *testing.T) {
	doc := `<xml>
		<Articles>
			<item><Title><![CDATA[only]]></Title></item>
		</Articles>
	</xml>`

	d, err := Parse(doc)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	items := d.Sub("Articles").List("item")
	if len(items) != 1 {
		t.Fatalf("len(items) = %d, want 1", len(items))
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"empty document", ""},
		{"wrong root", "<html><MsgType>text</MsgType></html>"},
		{"unclosed element", "<xml><MsgType>text"},
		{"garbage", "not xml at all"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.doc)
			if err == nil {
				t.Fatal("Parse succeeded, want error")
			}
			var decErr *DecodeError
			if !errors.As(err, &decErr) {
				t.Errorf("error is %T, want *DecodeError", err)
			}
		})
	}
}

func TestParse_EmptyRoot(t *testing.T) {
	d, err := Parse("<xml></xml>")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if len(d) != 0 {
		t.Errorf("len(d) = %d, want 0", len(d))
	}
}

func TestParse_WhitespaceTrimmed(t *testing.T) {
	d, err := Parse("<xml><CreateTime>\n\t  1633000000  \n</CreateTime></xml>")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if got := d.Text("CreateTime"); got != "1633000000" {
		t.Errorf("CreateTime = %q, want trimmed value", got)
	}
}

func TestDict_LenientAccess(t *testing.T) {
	d := Dict{"Content": "hi", "HardWare": Dict{"MessageView": "myrank"}}

	if d.Text("Missing") != "" {
		t.Error("Text on missing key should be empty")
	}
	if d.Sub("Missing") != nil {
		t.Error("Sub on missing key should be nil")
	}
	if d.Sub("Content") != nil {
		t.Error("Sub on leaf should be nil")
	}
	if d.Text("HardWare") != "" {
		t.Error("Text on nested element should be empty")
	}
	if d.List("Missing") != nil {
		t.Error("List on missing key should be nil")
	}
	if got := d.List("Content"); len(got) != 1 || got[0] != "hi" {
		t.Errorf("List on scalar = %v, want one-element list", got)
	}
	if !d.Has("Content") || d.Has("Missing") {
		t.Error("Has mismatch")
	}
}

func TestCDATA(t *testing.T) {
	if got := CDATA("Content", "hi"); got != "<Content><![CDATA[hi]]></Content>" {
		t.Errorf("CDATA = %q", got)
	}
	if got := Leaf("CreateTime", "42"); got != "<CreateTime>42</CreateTime>" {
		t.Errorf("Leaf = %q", got)
	}
}
