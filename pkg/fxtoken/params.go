package fxtoken

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Params is an artwork parameter object: a flat JSON object whose keys keep
// the order in which they were set.
//
// Key order is part of the canonical form and therefore of the fingerprint,
// so Params never sorts. Values are JSON primitives (string, number, bool,
// nil); nested *Params are tolerated. Numbers read back from a token are
// json.Number, which re-encodes to the exact original text.
type Params struct {
	keys   []string
	values map[string]any
}

// NewParams creates an empty parameter object.
func NewParams() *Params {
	return &Params{values: make(map[string]any)}
}

// ParseParams parses a JSON object, preserving key order.
func ParseParams(text string) (*Params, error) {
	p := NewParams()
	if err := p.UnmarshalJSON([]byte(text)); err != nil {
		return nil, err
	}
	return p, nil
}

// Set stores value under key. Re-setting a key keeps its original position.
// It returns p so calls can be chained.
func (p *Params) Set(key string, value any) *Params {
	if p.values == nil {
		p.values = make(map[string]any)
	}
	if _, ok := p.values[key]; !ok {
		p.keys = append(p.keys, key)
	}
	p.values[key] = value
	return p
}

// Get returns the value stored under key.
func (p *Params) Get(key string) (any, bool) {
	if p == nil {
		return nil, false
	}
	v, ok := p.values[key]
	return v, ok
}

// String returns the value under key if it is a string.
func (p *Params) String(key string) (string, bool) {
	v, ok := p.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Float returns the value under key if it is numeric.
func (p *Params) Float(key string) (float64, bool) {
	v, ok := p.Get(key)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint32:
		return float64(n), true
	default:
		return 0, false
	}
}

// Delete removes key.
func (p *Params) Delete(key string) {
	if _, ok := p.values[key]; !ok {
		return
	}
	delete(p.values, key)
	for i, k := range p.keys {
		if k == key {
			p.keys = append(p.keys[:i], p.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order.
func (p *Params) Keys() []string {
	if p == nil {
		return nil
	}
	return append([]string(nil), p.keys...)
}

// Len returns the number of keys.
func (p *Params) Len() int {
	if p == nil {
		return 0
	}
	return len(p.keys)
}

// Canonical returns the canonical JSON form: keys in insertion order, no
// insignificant whitespace, no HTML escaping.
func (p *Params) Canonical() (string, error) {
	b, err := p.MarshalJSON()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Equal reports whether both objects have the same canonical form.
func (p *Params) Equal(other *Params) bool {
	a, errA := p.Canonical()
	b, errB := other.Canonical()
	return errA == nil && errB == nil && a == b
}

// MarshalJSON implements json.Marshaler.
func (p *Params) MarshalJSON() ([]byte, error) {
	if p == nil {
		return []byte("null"), nil
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range p.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := marshalValue(key)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')

		vb, err := marshalValue(p.values[key])
		if err != nil {
			return nil, fmt.Errorf("%w: key %q: %v", ErrSerialization, key, err)
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON implements json.Unmarshaler. Duplicate keys keep the
// position of the first occurrence and the value of the last.
func (p *Params) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("%w: not a JSON object", ErrSerialization)
	}

	p.keys = nil
	p.values = make(map[string]any)

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrSerialization, err)
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("%w: object key is not a string", ErrSerialization)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("%w: key %q: %v", ErrSerialization, key, err)
		}
		value, err := decodeValue(raw)
		if err != nil {
			return fmt.Errorf("%w: key %q: %v", ErrSerialization, key, err)
		}
		p.Set(key, value)
	}

	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: trailing data after object", ErrSerialization)
	}
	return nil
}

func decodeValue(raw json.RawMessage) (any, error) {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '{' {
		nested := NewParams()
		if err := nested.UnmarshalJSON(trimmed); err != nil {
			return nil, err
		}
		return nested, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// marshalValue encodes v like encoding/json but without HTML escaping, so
// "<", ">" and "&" stay literal as in JSON.stringify.
func marshalValue(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
