package fxtoken

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

func TestParams_Canonical(t *testing.T) {
	tests := []struct {
		name   string
		params *Params
		want   string
	}{
		{"empty", NewParams(), `{}`},
		{"insertion order", NewParams().Set("z", 1).Set("a", 2), `{"z":1,"a":2}`},
		{"example", exampleParams(), exampleJSON},
		{"html not escaped", NewParams().Set("a", "<b>&"), `{"a":"<b>&"}`},
		{"primitives", NewParams().Set("s", "x").Set("f", 0.5).Set("b", false).Set("n", nil), `{"s":"x","f":0.5,"b":false,"n":null}`},
		{"escaping", NewParams().Set("q", "a\"b\\c\n"), `{"q":"a\"b\\c\n"}`},
		{"reset keeps position", NewParams().Set("a", 1).Set("b", 2).Set("a", 3), `{"a":3,"b":2}`},
		{"nested", NewParams().Set("o", NewParams().Set("y", 1).Set("x", 2)), `{"o":{"y":1,"x":2}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.params.Canonical()
			if err != nil {
				t.Fatalf("Canonical() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Canonical() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestParseParams(t *testing.T) {
	p, err := ParseParams(` {"z": 1.50, "a": "x", "z": 2e3, "o": {"k": true}} `)
	if err != nil {
		t.Fatalf("ParseParams() error = %v", err)
	}

	if got, want := p.Keys(), []string{"z", "a", "o"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}

	z, _ := p.Get("z")
	if z != json.Number("2e3") {
		t.Errorf("Get(z) = %#v, want json.Number(2e3)", z)
	}
	if f, ok := p.Float("z"); !ok || f != 2000 {
		t.Errorf("Float(z) = %v, %v", f, ok)
	}
	if s, ok := p.String("a"); !ok || s != "x" {
		t.Errorf("String(a) = %q, %v", s, ok)
	}

	canonical, _ := p.Canonical()
	if want := `{"z":2e3,"a":"x","o":{"k":true}}`; canonical != want {
		t.Errorf("Canonical() = %s, want %s", canonical, want)
	}
}

func TestParseParams_PreservesNumberText(t *testing.T) {
	in := `{"w":630,"r":1.50,"e":-0.0}`
	p, err := ParseParams(in)
	if err != nil {
		t.Fatalf("ParseParams() error = %v", err)
	}
	if got, _ := p.Canonical(); got != in {
		t.Errorf("Canonical() = %s, want %s", got, in)
	}
}

func TestParseParams_Invalid(t *testing.T) {
	for _, in := range []string{``, `[]`, `"str"`, `42`, `null`, `{"a":}`, `{"a":1}{}`, `{"a":1`, `{1:2}`} {
		if _, err := ParseParams(in); !errors.Is(err, ErrSerialization) {
			t.Errorf("ParseParams(%q) error = %v, want ErrSerialization", in, err)
		}
	}
}

func TestParams_JSONInterop(t *testing.T) {
	var doc struct {
		Kind   string  `json:"kind"`
		Params *Params `json:"params"`
	}
	if err := json.Unmarshal([]byte(`{"kind":"grid","params":{"b":1,"a":2}}`), &doc); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if got := doc.Params.Keys(); !reflect.DeepEqual(got, []string{"b", "a"}) {
		t.Errorf("Keys() = %v", got)
	}

	out, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if want := `{"kind":"grid","params":{"b":1,"a":2}}`; string(out) != want {
		t.Errorf("Marshal() = %s, want %s", out, want)
	}
}

func TestParams_Delete(t *testing.T) {
	p := NewParams().Set("a", 1).Set("b", 2).Set("c", 3)
	p.Delete("b")
	p.Delete("missing")

	if got := p.Keys(); !reflect.DeepEqual(got, []string{"a", "c"}) {
		t.Errorf("Keys() = %v", got)
	}
	if p.Len() != 2 {
		t.Errorf("Len() = %d, want 2", p.Len())
	}
	if _, ok := p.Get("b"); ok {
		t.Error("Get(b) found deleted key")
	}
}

func TestParams_Equal(t *testing.T) {
	a := NewParams().Set("x", 1).Set("y", 2)
	b := NewParams().Set("x", 1).Set("y", 2)
	c := NewParams().Set("y", 2).Set("x", 1)

	if !a.Equal(b) {
		t.Error("Equal() = false for identical params")
	}
	if a.Equal(c) {
		t.Error("Equal() = true for different key order")
	}
}
