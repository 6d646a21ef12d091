package cache

import (
	"errors"
	"testing"

	"github.com/KOMKZ/yogan-hiera/document"
)

type failingMarshaler struct{}

func (failingMarshaler) MarshalYAML() (interface{}, error) {
	return nil, errors.New("boom")
}

func TestYAMLSerializer_Serialize(t *testing.T) {
	s := NewYAMLSerializer()

	tests := []struct {
		name    string
		input   any
		wantErr bool
	}{
		{"string", "hello", false},
		{"map", map[string]int{"a": 1, "b": 2}, false},
		{"document", document.MustFrom(map[string]any{"k": []any{1, "x"}}), false},
		{"marshaler error", failingMarshaler{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := s.Serialize(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Serialize() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrCodec) {
				t.Errorf("Serialize() error = %v, want ErrCodec", err)
			}
			if !tt.wantErr && len(data) == 0 {
				t.Error("Serialize() returned empty data")
			}
		})
	}
}

func TestYAMLSerializer_RoundTrip(t *testing.T) {
	s := NewYAMLSerializer()
	src := document.MustFrom(map[string]any{
		"name": "web",
		"port": 80,
		"tags": []any{"a", true, 1.5},
	})

	data, err := s.Serialize(src)
	if err != nil {
		t.Fatalf("Serialize() error = %v", err)
	}

	var got document.Document
	if err := s.Deserialize(data, &got); err != nil {
		t.Fatalf("Deserialize() error = %v", err)
	}
	if !document.Equal(src, got) {
		t.Errorf("Deserialize() = %v, want %v", got, src)
	}
	if s.Name() != "yaml" {
		t.Errorf("Name() = %v, want yaml", s.Name())
	}
}

func TestYAMLSerializer_DeserializeInvalid(t *testing.T) {
	var got map[string]any
	err := NewYAMLSerializer().Deserialize([]byte("a: [broken"), &got)
	if !errors.Is(err, ErrCodec) {
		t.Errorf("Deserialize() error = %v, want ErrCodec", err)
	}
}
