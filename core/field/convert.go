package field

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/artpar/wxgate/core/wire"
)

// toText renders any scalar as text. nil renders as the empty string.
func toText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

// toInt coerces a stored or wire value to int64.
func toInt(v any) (int64, error) {
	switch t := v.(type) {
	case int:
		return int64(t), nil
	case int32:
		return int64(t), nil
	case int64:
		return t, nil
	case uint:
		return int64(t), nil
	case uint32:
		return int64(t), nil
	case uint64:
		return int64(t), nil
	case float32:
		return int64(t), nil
	case float64:
		return int64(t), nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("not an integer: %q", t)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("not an integer: %T", v)
	}
}

// toFloat coerces a stored or wire value to float64.
func toFloat(v any) (float64, error) {
	switch t := v.(type) {
	case int:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case float32:
		return float64(t), nil
	case float64:
		return t, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, fmt.Errorf("not a number: %q", t)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("not a number: %T", v)
	}
}

// asDict views v as a wire.Dict, or nil when it is not a mapping.
func asDict(v any) wire.Dict {
	switch t := v.(type) {
	case wire.Dict:
		return t
	case map[string]any:
		return wire.Dict(t)
	case map[string]string:
		out := make(wire.Dict, len(t))
		for k, vv := range t {
			out[k] = vv
		}
		return out
	default:
		return nil
	}
}

// needDict is asDict for decode paths where a mapping is mandatory.
func needDict(v any) (wire.Dict, error) {
	d := asDict(v)
	if d == nil {
		return nil, fmt.Errorf("expected nested element, got %T", v)
	}
	return d, nil
}

// asArticles normalizes the stored articles value to a typed slice.
func asArticles(v any) ([]Article, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case []Article:
		return t, nil
	case []any:
		items := make([]Article, 0, len(t))
		for _, raw := range t {
			if a, ok := raw.(Article); ok {
				items = append(items, a)
				continue
			}
			d := asDict(raw)
			if d == nil {
				return nil, fmt.Errorf("article item is %T, want Article", raw)
			}
			items = append(items, Article{
				Title:       d.Text("title"),
				Description: d.Text("description"),
				Image:       d.Text("image"),
				URL:         d.Text("url"),
			})
		}
		return items, nil
	default:
		return nil, fmt.Errorf("articles value is %T, want []Article", v)
	}
}
