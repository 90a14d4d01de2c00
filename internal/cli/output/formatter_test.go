package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/yndnr/fxgallery/pkg/fxtoken"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatTable, false},
		{"table", FormatTable, false},
		{"JSON", FormatJSON, false},
		{" yaml ", FormatYAML, false},
		{"xml", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNewFormatter(t *testing.T) {
	if _, ok := NewFormatter(FormatJSON, false).(*JSONFormatter); !ok {
		t.Error("NewFormatter(json) is not a JSONFormatter")
	}
	if _, ok := NewFormatter(FormatYAML, false).(*YAMLFormatter); !ok {
		t.Error("NewFormatter(yaml) is not a YAMLFormatter")
	}
	tf, ok := NewFormatter(FormatTable, true).(*TableFormatter)
	if !ok || !tf.Wide {
		t.Errorf("NewFormatter(table, wide) = %#v", NewFormatter(FormatTable, true))
	}
	if _, ok := NewFormatter("unknown", false).(*TableFormatter); !ok {
		t.Error("NewFormatter(unknown) should default to a table")
	}
}

func TestJSONFormatter_Format(t *testing.T) {
	f := &JSONFormatter{}

	t.Run("struct", func(t *testing.T) {
		data := struct {
			Name  string `json:"name"`
			Value int    `json:"value"`
		}{"test", 42}

		var buf bytes.Buffer
		if err := f.Format(&buf, data); err != nil {
			t.Fatalf("Format() error = %v", err)
		}
		want := "{\n  \"name\": \"test\",\n  \"value\": 42\n}\n"
		if buf.String() != want {
			t.Errorf("Format() = %q, want %q", buf.String(), want)
		}
	})

	t.Run("no html escaping", func(t *testing.T) {
		var buf bytes.Buffer
		if err := f.Format(&buf, map[string]string{"text": "<b>&</b>"}); err != nil {
			t.Fatalf("Format() error = %v", err)
		}
		if !strings.Contains(buf.String(), `"<b>&</b>"`) {
			t.Errorf("Format() = %q", buf.String())
		}
	})

	t.Run("nil", func(t *testing.T) {
		var buf bytes.Buffer
		if err := f.Format(&buf, nil); err != nil {
			t.Fatalf("Format(nil) error = %v", err)
		}
		if got := strings.TrimSpace(buf.String()); got != "null" {
			t.Errorf("Format(nil) = %q, want null", got)
		}
	})
}

func TestYAMLFormatter_Format(t *testing.T) {
	f := &YAMLFormatter{}

	t.Run("struct uses json names", func(t *testing.T) {
		data := struct {
			Token  string `json:"token"`
			Seed   uint32 `json:"seed"`
			Sealed bool   `json:"sealed"`
		}{"fx-grid-v2.abc.def", 42, true}

		var buf bytes.Buffer
		if err := f.Format(&buf, data); err != nil {
			t.Fatalf("Format() error = %v", err)
		}
		want := "token: fx-grid-v2.abc.def\nseed: 42\nsealed: true\n"
		if buf.String() != want {
			t.Errorf("Format() = %q, want %q", buf.String(), want)
		}
	})

	t.Run("params keep order", func(t *testing.T) {
		params := fxtoken.NewParams().Set("zoom", 2).Set("angle", 0.5).Set("color1", "#A8DADC")

		var buf bytes.Buffer
		if err := f.Format(&buf, map[string]any{"params": params}); err != nil {
			t.Fatalf("Format() error = %v", err)
		}
		want := "params:\n  zoom: 2\n  angle: 0.5\n  color1: '#A8DADC'\n"
		if buf.String() != want {
			t.Errorf("Format() = %q, want %q", buf.String(), want)
		}
	})

	t.Run("strings that look like other types stay strings", func(t *testing.T) {
		var buf bytes.Buffer
		if err := f.Format(&buf, map[string]string{"flag": "true", "n": "10"}); err != nil {
			t.Fatalf("Format() error = %v", err)
		}
		out := buf.String()
		if !strings.Contains(out, `flag: "true"`) || !strings.Contains(out, `n: "10"`) {
			t.Errorf("Format() = %q", out)
		}
	})

	t.Run("list", func(t *testing.T) {
		var buf bytes.Buffer
		if err := f.Format(&buf, []string{"flow", "grid"}); err != nil {
			t.Fatalf("Format() error = %v", err)
		}
		if buf.String() != "- flow\n- grid\n" {
			t.Errorf("Format() = %q", buf.String())
		}
	})

	t.Run("unmarshalable", func(t *testing.T) {
		var buf bytes.Buffer
		if err := f.Format(&buf, func() {}); err == nil {
			t.Error("Format(func) error = nil")
		}
	})
}
