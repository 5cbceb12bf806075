package field

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/artpar/wxgate/core/wire"
)

// Kind is the polymorphic per-field wire codec. Encode renders a stored
// value as wire fragments, Decode converts a parsed wire value into stored
// form, and Convert normalizes a stored scalar on read.
type Kind interface {
	Encode(s Spec, value any) (string, error)
	Decode(value any) (any, error)
	Convert(value any) (any, error)
}

// Location is the fixed time zone timestamps are interpreted in. The
// platform reports epoch seconds relative to China Standard Time.
var Location = loadLocation()

func loadLocation() *time.Location {
	if loc, err := time.LoadLocation("Asia/Shanghai"); err == nil {
		return loc
	}
	return time.FixedZone("CST", 8*60*60)
}

// String is a CDATA-wrapped text leaf.
type String struct{}

func (String) Convert(v any) (any, error) { return toText(v), nil }

func (String) Encode(s Spec, v any) (string, error) {
	return wire.CDATA(s.Wire, toText(v)), nil
}

func (String) Decode(v any) (any, error) { return v, nil }

// Integer is a raw numeric leaf. Encoding an unset value substitutes the
// field's default.
type Integer struct{}

func (Integer) Convert(v any) (any, error) {
	n, err := toInt(v)
	if err != nil {
		return nil, err
	}
	return n, nil
}

func (Integer) Encode(s Spec, v any) (string, error) {
	if v == nil {
		return wire.Leaf(s.Wire, toText(s.Default)), nil
	}
	n, err := toInt(v)
	if err != nil {
		return "", err
	}
	return wire.Leaf(s.Wire, strconv.FormatInt(n, 10)), nil
}

func (Integer) Decode(v any) (any, error) { return toInt(v) }

// Float is a raw numeric leaf holding a floating point value.
type Float struct{}

func (Float) Convert(v any) (any, error) {
	f, err := toFloat(v)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (Float) Encode(s Spec, v any) (string, error) {
	if v == nil {
		return wire.Leaf(s.Wire, toText(s.Default)), nil
	}
	f, err := toFloat(v)
	if err != nil {
		return "", err
	}
	return wire.Leaf(s.Wire, strconv.FormatFloat(f, 'g', -1, 64)), nil
}

func (Float) Decode(v any) (any, error) { return toFloat(v) }

// DateTime is an epoch-seconds leaf interpreted as a zoned timestamp in
// Location. Stored values may be time.Time (after decode) or a raw epoch
// value (after a write); both encode back to epoch seconds.
type DateTime struct{}

func (DateTime) Convert(v any) (any, error) {
	if t, ok := v.(time.Time); ok {
		return t.In(Location), nil
	}
	n, err := toInt(v)
	if err != nil {
		return nil, err
	}
	return time.Unix(n, 0).In(Location), nil
}

func (k DateTime) Encode(s Spec, v any) (string, error) {
	if v == nil {
		v = s.Default
	}
	var epoch int64
	switch t := v.(type) {
	case time.Time:
		epoch = t.Unix()
	case nil:
		epoch = 0
	default:
		n, err := toInt(t)
		if err != nil {
			return "", err
		}
		epoch = n
	}
	return wire.Leaf(s.Wire, strconv.FormatInt(epoch, 10)), nil
}

func (k DateTime) Decode(v any) (any, error) { return k.Convert(v) }

// Image wraps a single media identifier in one nested element.
type Image struct{}

func (Image) Convert(v any) (any, error) { return toText(v), nil }

func (Image) Encode(s Spec, v any) (string, error) {
	return "<" + s.Wire + ">" + wire.CDATA("MediaId", toText(v)) + "</" + s.Wire + ">", nil
}

func (Image) Decode(v any) (any, error) {
	d, err := needDict(v)
	if err != nil {
		return nil, err
	}
	return d.Text("MediaId"), nil
}

// Voice wraps a single media identifier in one nested element.
type Voice struct{}

func (Voice) Convert(v any) (any, error) { return toText(v), nil }

func (Voice) Encode(s Spec, v any) (string, error) {
	return "<" + s.Wire + ">" + wire.CDATA("MediaId", toText(v)) + "</" + s.Wire + ">", nil
}

func (Voice) Decode(v any) (any, error) {
	d, err := needDict(v)
	if err != nil {
		return nil, err
	}
	return d.Text("MediaId"), nil
}

// Video wraps a media identifier plus optional title and description.
// Encode emits sub-elements in declared order and omits unset optional
// keys entirely; Decode tolerates any subset being present.
type Video struct{}

func (Video) Convert(v any) (any, error) { return v, nil }

func (Video) Encode(s Spec, v any) (string, error) {
	d := asDict(v)
	if !d.Has("media_id") {
		return "", fmt.Errorf("missing media_id")
	}
	var b strings.Builder
	b.WriteString("<" + s.Wire + ">")
	b.WriteString(wire.CDATA("MediaId", d.Text("media_id")))
	if d.Has("title") {
		b.WriteString(wire.CDATA("Title", d.Text("title")))
	}
	if d.Has("description") {
		b.WriteString(wire.CDATA("Description", d.Text("description")))
	}
	b.WriteString("</" + s.Wire + ">")
	return b.String(), nil
}

func (Video) Decode(v any) (any, error) {
	src, err := needDict(v)
	if err != nil {
		return nil, err
	}
	out := wire.Dict{"media_id": src.Text("MediaId")}
	if src.Has("Title") {
		out["title"] = src.Text("Title")
	}
	if src.Has("Description") {
		out["description"] = src.Text("Description")
	}
	return out, nil
}

// Music wraps a thumbnail media identifier plus optional title,
// description, and stream URLs, with the same subset tolerance as Video.
type Music struct{}

func (Music) Convert(v any) (any, error) { return v, nil }

func (Music) Encode(s Spec, v any) (string, error) {
	d := asDict(v)
	if !d.Has("thumb_media_id") {
		return "", fmt.Errorf("missing thumb_media_id")
	}
	var b strings.Builder
	b.WriteString("<" + s.Wire + ">")
	b.WriteString(wire.CDATA("ThumbMediaId", d.Text("thumb_media_id")))
	if d.Has("title") {
		b.WriteString(wire.CDATA("Title", d.Text("title")))
	}
	if d.Has("description") {
		b.WriteString(wire.CDATA("Description", d.Text("description")))
	}
	if d.Has("music_url") {
		b.WriteString(wire.CDATA("MusicUrl", d.Text("music_url")))
	}
	if d.Has("hq_music_url") {
		b.WriteString(wire.CDATA("HQMusicUrl", d.Text("hq_music_url")))
	}
	b.WriteString("</" + s.Wire + ">")
	return b.String(), nil
}

func (Music) Decode(v any) (any, error) {
	src, err := needDict(v)
	if err != nil {
		return nil, err
	}
	out := wire.Dict{"thumb_media_id": src.Text("ThumbMediaId")}
	if src.Has("Title") {
		out["title"] = src.Text("Title")
	}
	if src.Has("Description") {
		out["description"] = src.Text("Description")
	}
	if src.Has("MusicUrl") {
		out["music_url"] = src.Text("MusicUrl")
	}
	if src.Has("HQMusicUrl") {
		out["hq_music_url"] = src.Text("HQMusicUrl")
	}
	return out, nil
}

// MaxArticles is the hard cap on news items per reply. Exceeding it is a
// construction error, never silent truncation.
const MaxArticles = 10

// Article is one item of a news reply. Missing keys render as empty text.
type Article struct {
	Title       string
	Description string
	Image       string
	URL         string
}

// Articles is a bounded ordered list of news items. Encode emits a count
// leaf followed by one <item> per article; Decode preserves item order.
type Articles struct{}

func (Articles) Convert(v any) (any, error) { return v, nil }

func (Articles) Encode(s Spec, v any) (string, error) {
	items, err := asArticles(v)
	if err != nil {
		return "", err
	}
	if len(items) > MaxArticles {
		return "", &LimitError{What: "articles", Limit: MaxArticles, Got: len(items)}
	}
	var b strings.Builder
	b.WriteString(wire.Leaf("ArticleCount", strconv.Itoa(len(items))))
	b.WriteString("<" + s.Wire + ">")
	for _, a := range items {
		b.WriteString("<item>")
		b.WriteString(wire.CDATA("Title", a.Title))
		b.WriteString(wire.CDATA("Description", a.Description))
		b.WriteString(wire.CDATA("PicUrl", a.Image))
		b.WriteString(wire.CDATA("Url", a.URL))
		b.WriteString("</item>")
	}
	b.WriteString("</" + s.Wire + ">")
	return b.String(), nil
}

func (Articles) Decode(v any) (any, error) {
	src, err := needDict(v)
	if err != nil {
		return nil, err
	}
	var items []Article
	for _, raw := range src.List("item") {
		item := asDict(raw)
		if item == nil {
			return nil, fmt.Errorf("article item is not an element")
		}
		items = append(items, Article{
			Title:       item.Text("Title"),
			Description: item.Text("Description"),
			Image:       item.Text("PicUrl"),
			URL:         item.Text("Url"),
		})
	}
	return items, nil
}

// TaskCard wraps a single replacement label in one nested element.
type TaskCard struct{}

func (TaskCard) Convert(v any) (any, error) { return toText(v), nil }

func (TaskCard) Encode(s Spec, v any) (string, error) {
	return "<" + s.Wire + ">" + wire.CDATA("ReplaceName", toText(v)) + "</" + s.Wire + ">", nil
}

func (TaskCard) Decode(v any) (any, error) {
	d, err := needDict(v)
	if err != nil {
		return nil, err
	}
	return d.Text("ReplaceName"), nil
}

// Base64Encode stores plain text and carries it base64-encoded on the
// wire. The converter re-encodes on every read, not cached: reading a
// value, writing the result back, and reading again double-applies the
// encoding.
type Base64Encode struct{}

func (Base64Encode) Convert(v any) (any, error) {
	return base64.StdEncoding.EncodeToString([]byte(toText(v))), nil
}

func (k Base64Encode) Encode(s Spec, v any) (string, error) {
	enc, _ := k.Convert(v)
	return wire.CDATA(s.Wire, enc.(string)), nil
}

func (Base64Encode) Decode(v any) (any, error) {
	b, err := base64.StdEncoding.DecodeString(toText(v))
	if err != nil {
		return nil, fmt.Errorf("invalid base64: %w", err)
	}
	return string(b), nil
}

// Base64Decode stores base64 text as delivered by the device and decodes
// it on every read. The converter is just as non-idempotent as
// Base64Encode's.
type Base64Decode struct{}

func (Base64Decode) Convert(v any) (any, error) {
	b, err := base64.StdEncoding.DecodeString(toText(v))
	if err != nil {
		return nil, fmt.Errorf("invalid base64: %w", err)
	}
	return string(b), nil
}

func (k Base64Decode) Encode(s Spec, v any) (string, error) {
	dec, err := k.Convert(v)
	if err != nil {
		return "", err
	}
	return wire.CDATA(s.Wire, dec.(string)), nil
}

func (Base64Decode) Decode(v any) (any, error) { return v, nil }

// Hardware is a fixed two-field nested element with built-in defaults when
// no value was set.
type Hardware struct{}

func (Hardware) Convert(v any) (any, error) { return v, nil }

func (Hardware) Encode(s Spec, v any) (string, error) {
	d := asDict(v)
	view, action := d.Text("view"), d.Text("action")
	if len(d) == 0 {
		view, action = "myrank", "ranklist"
	}
	return "<" + s.Wire + ">" +
		wire.CDATA("MessageView", view) +
		wire.CDATA("MessageAction", action) +
		"</" + s.Wire + ">", nil
}

func (Hardware) Decode(v any) (any, error) {
	src, err := needDict(v)
	if err != nil {
		return nil, err
	}
	return wire.Dict{
		"view":   src.Text("MessageView"),
		"action": src.Text("MessageAction"),
	}, nil
}
