// internal/scraper/record.go
package scraper

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Kind identifies which variant a Value holds.
type Kind int

const (
	KindUndefined Kind = iota
	KindString
	KindList
	KindMedia
	KindMediaList
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindMedia:
		return "media"
	case KindMediaList:
		return "media_list"
	default:
		return "undefined"
	}
}

// Value is a single record entry. The zero Value is undefined.
type Value struct {
	kind  Kind
	str   string
	list  []*string
	media []MediaItem
}

// Undefined returns the undefined value. Undefined entries are dropped by Clean.
func Undefined() Value { return Value{} }

// StringValue wraps a scalar string.
func StringValue(s string) Value { return Value{kind: KindString, str: s} }

// OptionalString returns StringValue(*s), or Undefined when s is nil.
func OptionalString(s *string) Value {
	if s == nil {
		return Undefined()
	}
	return StringValue(*s)
}

// ListValue wraps an ordered list. nil entries stand for tags without content.
func ListValue(items ...*string) Value {
	return Value{kind: KindList, list: items}
}

// MediaValue wraps one resolved media record.
func MediaValue(item MediaItem) Value {
	return Value{kind: KindMedia, media: []MediaItem{item}}
}

// MediaListValue wraps an ordered list of media records.
func MediaListValue(items []MediaItem) Value {
	return Value{kind: KindMediaList, media: items}
}

func (v Value) Kind() Kind        { return v.kind }
func (v Value) IsUndefined() bool { return v.kind == KindUndefined }

// Str returns the scalar string, or "" for any other kind.
func (v Value) Str() string {
	if v.kind != KindString {
		return ""
	}
	return v.str
}

// List returns the list items for KindList values.
func (v Value) List() []*string {
	if v.kind != KindList {
		return nil
	}
	return v.list
}

// Media returns the single media record, or the first one of a media list.
func (v Value) Media() MediaItem {
	if (v.kind != KindMedia && v.kind != KindMediaList) || len(v.media) == 0 {
		return nil
	}
	return v.media[0]
}

// MediaList returns every media record held by the value.
func (v Value) MediaList() []MediaItem {
	if v.kind != KindMedia && v.kind != KindMediaList {
		return nil
	}
	return v.media
}

// set reports whether the value counts as present for fallback purposes.
func (v Value) set() bool {
	switch v.kind {
	case KindString:
		return v.str != ""
	case KindList, KindMedia, KindMediaList:
		return true
	default:
		return false
	}
}

func (v Value) clone() Value {
	out := Value{kind: v.kind, str: v.str}
	if v.list != nil {
		out.list = make([]*string, len(v.list))
		for i, s := range v.list {
			if s != nil {
				c := *s
				out.list[i] = &c
			}
		}
	}
	if v.media != nil {
		out.media = make([]MediaItem, len(v.media))
		for i, m := range v.media {
			if m != nil {
				out.media[i] = m.cloneMedia()
			}
		}
	}
	return out
}

// plain converts the value into the shape used by both JSON and YAML encoders.
func (v Value) plain() interface{} {
	switch v.kind {
	case KindString:
		return v.str
	case KindList:
		out := make([]*string, len(v.list))
		copy(out, v.list)
		return out
	case KindMedia:
		if len(v.media) == 0 {
			return nil
		}
		return v.media[0]
	case KindMediaList:
		out := make([]MediaItem, len(v.media))
		copy(out, v.media)
		return out
	default:
		return nil
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.plain())
}

func (v Value) MarshalYAML() (interface{}, error) {
	return v.plain(), nil
}

// Record is the flat extraction result keyed by field name.
type Record map[string]Value

// NewRecord returns an empty record.
func NewRecord() Record {
	return make(Record)
}

// Get returns the value stored under key.
func (r Record) Get(key string) (Value, bool) {
	v, ok := r[key]
	return v, ok
}

// String returns the scalar string stored under key, or "".
func (r Record) String(key string) string {
	return r[key].Str()
}

// Has reports whether key holds a defined value.
func (r Record) Has(key string) bool {
	v, ok := r[key]
	return ok && !v.IsUndefined()
}

// IsSet reports whether key holds a value that is neither undefined nor an empty string.
func (r Record) IsSet(key string) bool {
	return r[key].set()
}

func (r Record) Set(key string, v Value) { r[key] = v }

func (r Record) SetString(key, s string) { r[key] = StringValue(s) }

func (r Record) SetMedia(key string, m MediaItem) { r[key] = MediaValue(m) }

func (r Record) Delete(key string) { delete(r, key) }

// Keys returns the record keys in sorted order.
func (r Record) Keys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a deep copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v.clone()
	}
	return out
}

func (r Record) plain() map[string]interface{} {
	out := make(map[string]interface{}, len(r))
	for k, v := range r {
		if v.IsUndefined() {
			continue
		}
		out[k] = v.plain()
	}
	return out
}

func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.plain())
}

func (r Record) MarshalYAML() (interface{}, error) {
	return r.plain(), nil
}

// UnmarshalJSON restores a record produced by MarshalJSON. Objects are decoded
// into the media type owned by their key; objects under unknown keys are rejected.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Record, len(raw))
	for key, msg := range raw {
		v, err := decodeValue(key, msg)
		if err != nil {
			return fmt.Errorf("field %s: %w", key, err)
		}
		out[key] = v
	}
	*r = out
	return nil
}

func decodeValue(key string, msg json.RawMessage) (Value, error) {
	trimmed := firstNonSpace(msg)
	switch trimmed {
	case 'n':
		return Undefined(), nil
	case '"':
		var s string
		if err := json.Unmarshal(msg, &s); err != nil {
			return Undefined(), err
		}
		return StringValue(s), nil
	case '{':
		item, err := decodeMedia(key, msg)
		if err != nil {
			return Undefined(), err
		}
		return MediaValue(item), nil
	case '[':
		var elems []json.RawMessage
		if err := json.Unmarshal(msg, &elems); err != nil {
			return Undefined(), err
		}
		if len(elems) > 0 && firstNonSpace(elems[0]) == '{' {
			items := make([]MediaItem, 0, len(elems))
			for _, e := range elems {
				item, err := decodeMedia(key, e)
				if err != nil {
					return Undefined(), err
				}
				items = append(items, item)
			}
			return MediaListValue(items), nil
		}
		var list []*string
		if err := json.Unmarshal(msg, &list); err != nil {
			return Undefined(), err
		}
		return ListValue(list...), nil
	default:
		return Undefined(), fmt.Errorf("unsupported JSON value %q", string(msg))
	}
}

func firstNonSpace(b []byte) byte {
	for _, c := range b {
		switch c {
		case ' ', '\t', '\r', '\n':
			continue
		}
		return c
	}
	return 0
}
