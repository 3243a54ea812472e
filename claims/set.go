package claims

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

var (
	errNotObject    = errors.New("claims payload is not a JSON object")
	errTrailingData = errors.New("claims payload has trailing data")
)

// Set is an immutable mapping from claim name to Value.
type Set struct {
	values map[string]Value
}

// NewSet returns a Set holding a copy of values.
func NewSet(values map[string]Value) Set {
	m := make(map[string]Value, len(values))
	for k, v := range values {
		m[k] = v
	}
	return Set{values: m}
}

// ParseSet decodes a JSON object into a Set. Numbers keep their precision.
func ParseSet(payload []byte) (Set, error) {
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return Set{}, fmt.Errorf("could not decode claims: %w", err)
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return Set{}, errNotObject
	}
	if dec.More() {
		return Set{}, errTrailingData
	}

	values := make(map[string]Value, len(obj))
	for k, v := range obj {
		values[k] = Wrap(v)
	}
	return Set{values: values}, nil
}

// With returns a new Set that also contains name mapped to v.
func (s Set) With(name string, v Value) Set {
	m := make(map[string]Value, len(s.values)+1)
	for k, item := range s.values {
		m[k] = item
	}
	m[name] = v
	return Set{values: m}
}

// Get returns the value stored under name.
func (s Set) Get(name string) (Value, bool) {
	v, ok := s.values[name]
	return v, ok
}

// Has reports whether name is present.
func (s Set) Has(name string) bool {
	_, ok := s.values[name]
	return ok
}

// Names returns the claim names in sorted order.
func (s Set) Names() []string {
	names := make([]string, 0, len(s.values))
	for k := range s.values {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of claims.
func (s Set) Len() int { return len(s.values) }

// Native converts the set into plain Go values.
func (s Set) Native() map[string]any {
	out := make(map[string]any, len(s.values))
	for k, v := range s.values {
		out[k] = v.Native()
	}
	return out
}

// MarshalJSON encodes the set as a JSON object.
func (s Set) MarshalJSON() ([]byte, error) {
	return Map(s.values).MarshalJSON()
}
