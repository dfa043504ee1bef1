// Package localized models text that is either a plain string (legacy rows)
// or a per-language mapping such as {"en": ..., "fr": ..., "ar": ...}.
package localized

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Text holds localized content. The zero value resolves to "".
type Text struct {
	plain   string
	isPlain bool
	values  map[string]string
	keys    []string // language keys in resolution order
}

// Plain wraps a legacy plain string.
func Plain(s string) Text {
	return Text{plain: s, isPlain: true}
}

// Map builds a Text from language→value pairs. Keys resolve in a fixed
// deterministic order: en, fr, ar first, remaining keys sorted.
func Map(values map[string]string) Text {
	t := Text{values: make(map[string]string, len(values))}
	for k, v := range values {
		t.values[k] = v
	}
	t.keys = orderedKeys(t.values)
	return t
}

var preferredOrder = []string{"en", "fr", "ar"}

func orderedKeys(values map[string]string) []string {
	keys := make([]string, 0, len(values))
	seen := make(map[string]bool, len(values))
	for _, k := range preferredOrder {
		if _, ok := values[k]; ok {
			keys = append(keys, k)
			seen[k] = true
		}
	}
	rest := make([]string, 0, len(values))
	for k := range values {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}

// FromAny converts a dynamically-shaped value (nil, string, map, or Text)
// into a Text. Unknown shapes resolve to "".
func FromAny(v any) Text {
	switch val := v.(type) {
	case nil:
		return Text{}
	case Text:
		return val
	case string:
		return Plain(val)
	case map[string]string:
		return Map(val)
	case map[string]any:
		m := make(map[string]string, len(val))
		for k, item := range val {
			if s, ok := item.(string); ok {
				m[k] = s
			}
		}
		return Map(m)
	}
	return Text{}
}

// IsZero reports whether no content is present at all.
func (t Text) IsZero() bool {
	return !t.isPlain && len(t.values) == 0
}

// Resolve returns the content for lang following the fallback chain:
// requested language, then English, then the first defined value, then "".
// A plain-string Text returns the string for any language.
func (t Text) Resolve(lang string) string {
	if t.isPlain {
		return t.plain
	}
	if len(t.values) == 0 {
		return ""
	}
	if v, ok := t.values[lang]; ok {
		return v
	}
	if v, ok := t.values["en"]; ok {
		return v
	}
	for _, k := range t.keys {
		return t.values[k]
	}
	return ""
}

// Get returns the value stored for exactly lang, without fallback.
func (t Text) Get(lang string) (string, bool) {
	if t.isPlain {
		return "", false
	}
	v, ok := t.values[lang]
	return v, ok
}

// Content resolves an arbitrary row value for lang. It is the single
// localized-content accessor every display path goes through.
func Content(v any, lang string) string {
	return FromAny(v).Resolve(lang)
}

// MarshalJSON preserves the original shape: plain strings stay strings,
// mappings stay objects.
func (t Text) MarshalJSON() ([]byte, error) {
	if t.isPlain {
		return json.Marshal(t.plain)
	}
	if len(t.values) == 0 {
		return []byte(`""`), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range t.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, _ := json.Marshal(k)
		vb, _ := json.Marshal(t.values[k])
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON accepts either a string or an object, keeping the object's
// key order for first-value fallback.
func (t *Text) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}

	switch v := tok.(type) {
	case nil:
		*t = Text{}
		return nil
	case string:
		*t = Plain(v)
		return nil
	case json.Delim:
		if v != '{' {
			return fmt.Errorf("localized: unexpected token %v", v)
		}
	default:
		return fmt.Errorf("localized: unexpected token %v", tok)
	}

	out := Text{values: make(map[string]string)}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("localized: unexpected key %v", keyTok)
		}
		var val string
		if err := dec.Decode(&val); err != nil {
			return err
		}
		if _, exists := out.values[key]; !exists {
			out.keys = append(out.keys, key)
		}
		out.values[key] = val
	}
	*t = out
	return nil
}

// ToRowValue renders the Text in the shape the resource layer stores:
// a string for plain content, a map otherwise.
func (t Text) ToRowValue() any {
	if t.isPlain {
		return t.plain
	}
	if len(t.values) == 0 {
		return ""
	}
	out := make(map[string]any, len(t.values))
	for k, v := range t.values {
		out[k] = v
	}
	return out
}
