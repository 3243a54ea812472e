package claims

import (
	"bytes"
	"encoding/json"
	"math"
	"sort"
	"strconv"
)

// Kind identifies which variant a Value holds.
type Kind int

// Value kinds.
const (
	KindNull Kind = iota
	KindString
	KindInt64
	KindFloat64
	KindBool
	KindList
	KindMap
)

var kindNames = map[Kind]string{
	KindNull:    "null",
	KindString:  "string",
	KindInt64:   "int64",
	KindFloat64: "float64",
	KindBool:    "bool",
	KindList:    "list",
	KindMap:     "map",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Value is a tagged union over the shapes a JSON claim can take.
// The zero Value is Null.
type Value struct {
	kind Kind
	s    string
	i    int64
	f    float64
	b    bool
	list []Value
	m    map[string]Value
}

// Null returns the Null value.
func Null() Value { return Value{} }

// String returns a String value.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Int64 returns an Int64 value.
func Int64(i int64) Value { return Value{kind: KindInt64, i: i} }

// Float64 returns a Float64 value.
func Float64(f float64) Value { return Value{kind: KindFloat64, f: f} }

// Bool returns a Bool value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// List returns a List value holding a copy of items.
func List(items ...Value) Value {
	l := make([]Value, len(items))
	copy(l, items)
	return Value{kind: KindList, list: l}
}

// Map returns a Map value holding a copy of entries.
func Map(entries map[string]Value) Value {
	m := make(map[string]Value, len(entries))
	for k, v := range entries {
		m[k] = v
	}
	return Value{kind: KindMap, m: m}
}

// Wrap converts a loosely typed decoded JSON value into a Value.
//
// Numbers are stored as Int64 when they are integral and fit in 64 bits,
// otherwise as Float64. json.Number is supported so that payloads decoded with
// UseNumber keep their precision. Types that have no JSON shape become Null.
func Wrap(native any) Value {
	switch v := native.(type) {
	case nil:
		return Null()
	case Value:
		return v
	case string:
		return String(v)
	case bool:
		return Bool(v)
	case json.Number:
		return wrapNumber(v)
	case int:
		return Int64(int64(v))
	case int8:
		return Int64(int64(v))
	case int16:
		return Int64(int64(v))
	case int32:
		return Int64(int64(v))
	case int64:
		return Int64(v)
	case uint:
		return wrapFloat(float64(v))
	case uint8:
		return Int64(int64(v))
	case uint16:
		return Int64(int64(v))
	case uint32:
		return Int64(int64(v))
	case uint64:
		if v <= math.MaxInt64 {
			return Int64(int64(v))
		}
		return Float64(float64(v))
	case float32:
		return wrapFloat(float64(v))
	case float64:
		return wrapFloat(v)
	case []any:
		l := make([]Value, len(v))
		for i, item := range v {
			l[i] = Wrap(item)
		}
		return Value{kind: KindList, list: l}
	case []string:
		l := make([]Value, len(v))
		for i, item := range v {
			l[i] = String(item)
		}
		return Value{kind: KindList, list: l}
	case map[string]any:
		m := make(map[string]Value, len(v))
		for key, item := range v {
			m[key] = Wrap(item)
		}
		return Value{kind: KindMap, m: m}
	default:
		return Null()
	}
}

func wrapNumber(n json.Number) Value {
	if i, err := n.Int64(); err == nil {
		return Int64(i)
	}
	f, err := n.Float64()
	if err != nil {
		return Null()
	}
	return wrapFloat(f)
}

func wrapFloat(f float64) Value {
	if f == math.Trunc(f) && f >= math.MinInt64 && f < math.MaxInt64 && !math.IsInf(f, 0) {
		return Int64(int64(f))
	}
	return Float64(f)
}

// Kind reports the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is Null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsString returns the string held by v.
func (v Value) AsString() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.s, true
}

// AsBool returns the boolean held by v.
func (v Value) AsBool() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.b, true
}

// AsLong returns v as an integer. Float64 values are truncated.
func (v Value) AsLong() (int64, bool) {
	switch v.kind {
	case KindInt64:
		return v.i, true
	case KindFloat64:
		return int64(v.f), true
	default:
		return 0, false
	}
}

// AsDouble returns v as a float. Int64 values are widened.
func (v Value) AsDouble() (float64, bool) {
	switch v.kind {
	case KindFloat64:
		return v.f, true
	case KindInt64:
		return float64(v.i), true
	default:
		return 0, false
	}
}

// AsList returns a copy of the elements held by v.
func (v Value) AsList() ([]Value, bool) {
	if v.kind != KindList {
		return nil, false
	}
	l := make([]Value, len(v.list))
	copy(l, v.list)
	return l, true
}

// AsMap returns a copy of the entries held by v.
func (v Value) AsMap() (map[string]Value, bool) {
	if v.kind != KindMap {
		return nil, false
	}
	m := make(map[string]Value, len(v.m))
	for k, item := range v.m {
		m[k] = item
	}
	return m, true
}

// AsStringSet collects the string elements of a List value. Non-string
// elements are skipped. A String value yields a single-element set.
func (v Value) AsStringSet() (map[string]struct{}, bool) {
	switch v.kind {
	case KindString:
		return map[string]struct{}{v.s: {}}, true
	case KindList:
		set := make(map[string]struct{}, len(v.list))
		for _, item := range v.list {
			if s, ok := item.AsString(); ok {
				set[s] = struct{}{}
			}
		}
		return set, true
	default:
		return nil, false
	}
}

// Normalize converts v to a Go value by probing bool, list, numeric, map and
// string in that order. The first probe that succeeds decides the result, so a
// value accepted as bool is never looked at as a list. Null yields nil.
func Normalize(v Value) any {
	if b, ok := v.AsBool(); ok {
		return b
	}
	if l, ok := v.AsList(); ok {
		out := make([]any, len(l))
		for i, item := range l {
			out[i] = item.Native()
		}
		return out
	}
	if _, ok := v.AsDouble(); ok {
		if v.kind == KindInt64 {
			return v.i
		}
		return v.f
	}
	if m, ok := v.AsMap(); ok {
		out := make(map[string]any, len(m))
		for k, item := range m {
			out[k] = item.Native()
		}
		return out
	}
	if s, ok := v.AsString(); ok {
		return s
	}
	return nil
}

// Native converts v recursively into plain Go values: string, bool, int64,
// float64, []any, map[string]any or nil.
func (v Value) Native() any {
	return Normalize(v)
}

// Equal reports whether v and other hold the same variant and contents.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindString:
		return v.s == other.s
	case KindInt64:
		return v.i == other.i
	case KindFloat64:
		return v.f == other.f
	case KindBool:
		return v.b == other.b
	case KindList:
		if len(v.list) != len(other.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(other.list[i]) {
				return false
			}
		}
		return true
	case KindMap:
		if len(v.m) != len(other.m) {
			return false
		}
		for k, item := range v.m {
			o, ok := other.m[k]
			if !ok || !item.Equal(o) {
				return false
			}
		}
		return true
	}
	return false
}

// MarshalJSON encodes v as the JSON it was decoded from.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindMap:
		keys := make([]string, 0, len(v.m))
		for k := range v.m {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		var buf bytes.Buffer
		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			kb, err := json.Marshal(k)
			if err != nil {
				return nil, err
			}
			buf.Write(kb)
			buf.WriteByte(':')
			vb, err := v.m[k].MarshalJSON()
			if err != nil {
				return nil, err
			}
			buf.Write(vb)
		}
		buf.WriteByte('}')
		return buf.Bytes(), nil
	case KindList:
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i, item := range v.list {
			if i > 0 {
				buf.WriteByte(',')
			}
			b, err := item.MarshalJSON()
			if err != nil {
				return nil, err
			}
			buf.Write(b)
		}
		buf.WriteByte(']')
		return buf.Bytes(), nil
	default:
		return json.Marshal(v.Native())
	}
}

// UnmarshalJSON decodes any JSON document into v.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var native any
	if err := dec.Decode(&native); err != nil {
		return err
	}
	*v = Wrap(native)
	return nil
}
