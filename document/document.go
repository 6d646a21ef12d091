// Package document models configuration data as an immutable tagged union:
// a Document is Null, a Scalar (string, int64, float64 or bool), a Sequence
// of Documents or an insertion-ordered Mapping of string keys to Documents.
package document

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Kind is the shape of a Document
type Kind uint8

const (
	KindNull Kind = iota
	KindScalar
	KindSequence
	KindMapping
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "Null"
	case KindScalar:
		return "Scalar"
	case KindSequence:
		return "Sequence"
	case KindMapping:
		return "Mapping"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Document is a configuration value. The zero value is Null.
type Document struct {
	kind   Kind
	scalar any // string, int64, float64 or bool when kind == KindScalar
	seq    []Document
	m      Map
}

// Null returns the null document
func Null() Document {
	return Document{}
}

// String returns a string scalar
func String(s string) Document {
	return Document{kind: KindScalar, scalar: s}
}

// Int returns an integer scalar
func Int(i int64) Document {
	return Document{kind: KindScalar, scalar: i}
}

// Float returns a floating point scalar
func Float(f float64) Document {
	return Document{kind: KindScalar, scalar: f}
}

// Bool returns a boolean scalar
func Bool(b bool) Document {
	return Document{kind: KindScalar, scalar: b}
}

// Sequence returns a sequence holding a copy of items
func Sequence(items ...Document) Document {
	seq := make([]Document, len(items))
	copy(seq, items)
	return Document{kind: KindSequence, seq: seq}
}

// Mapping wraps m
func Mapping(m Map) Document {
	return Document{kind: KindMapping, m: m}
}

// EmptyMapping returns a mapping without keys
func EmptyMapping() Document {
	return Document{kind: KindMapping}
}

// Kind returns the shape of d
func (d Document) Kind() Kind { return d.kind }

func (d Document) IsNull() bool     { return d.kind == KindNull }
func (d Document) IsScalar() bool   { return d.kind == KindScalar }
func (d Document) IsSequence() bool { return d.kind == KindSequence }
func (d Document) IsMapping() bool  { return d.kind == KindMapping }

// Scalar returns the scalar value, nil for non-scalars
func (d Document) Scalar() any {
	if d.kind != KindScalar {
		return nil
	}
	return d.scalar
}

// AsString returns the value of a string scalar
func (d Document) AsString() (string, bool) {
	s, ok := d.Scalar().(string)
	return s, ok
}

// Items returns a copy of the sequence elements
func (d Document) Items() []Document {
	if d.kind != KindSequence {
		return nil
	}
	items := make([]Document, len(d.seq))
	copy(items, d.seq)
	return items
}

// Map returns the mapping of d, empty for non-mappings
func (d Document) Map() Map {
	if d.kind != KindMapping {
		return Map{}
	}
	return d.m
}

// Len is the number of elements of a sequence or keys of a mapping
func (d Document) Len() int {
	switch d.kind {
	case KindSequence:
		return len(d.seq)
	case KindMapping:
		return d.m.Len()
	default:
		return 0
	}
}

// IsEmpty reports whether d is Null or an empty collection
func (d Document) IsEmpty() bool {
	switch d.kind {
	case KindNull:
		return true
	case KindSequence, KindMapping:
		return d.Len() == 0
	default:
		return false
	}
}

// Get looks up key in a mapping
func (d Document) Get(key string) (Document, bool) {
	if d.kind != KindMapping {
		return Document{}, false
	}
	return d.m.Get(key)
}

// Has reports whether a mapping contains key
func (d Document) Has(key string) bool {
	_, ok := d.Get(key)
	return ok
}

// Without returns d minus key. Non-mappings are returned unchanged.
func (d Document) Without(key string) Document {
	if d.kind != KindMapping {
		return d
	}
	return Mapping(d.m.Delete(key))
}

// ShapeName names the concrete shape, e.g. "String" or "Mapping"
func (d Document) ShapeName() string {
	if d.kind != KindScalar {
		return d.kind.String()
	}
	switch d.scalar.(type) {
	case string:
		return "String"
	case int64:
		return "Integer"
	case float64:
		return "Float"
	case bool:
		return "Boolean"
	default:
		return "Scalar"
	}
}

// String renders scalars the way they appear in interpolated text.
// Null renders as the empty string, collections in a compact flow style.
func (d Document) String() string {
	switch d.kind {
	case KindNull:
		return ""
	case KindScalar:
		switch v := d.scalar.(type) {
		case string:
			return v
		case int64:
			return strconv.FormatInt(v, 10)
		case float64:
			return formatFloat(v)
		case bool:
			return strconv.FormatBool(v)
		}
		return fmt.Sprint(d.scalar)
	case KindSequence:
		parts := make([]string, len(d.seq))
		for i, item := range d.seq {
			parts[i] = item.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindMapping:
		parts := make([]string, 0, d.m.Len())
		d.m.Range(func(k string, v Document) bool {
			parts = append(parts, k+": "+v.String())
			return true
		})
		return "{" + strings.Join(parts, ", ") + "}"
	}
	return ""
}

// Native converts d into plain Go values: nil, string, int64, float64, bool,
// []any and map[string]any.
func (d Document) Native() any {
	switch d.kind {
	case KindScalar:
		return d.scalar
	case KindSequence:
		out := make([]any, len(d.seq))
		for i, item := range d.seq {
			out[i] = item.Native()
		}
		return out
	case KindMapping:
		out := make(map[string]any, d.m.Len())
		d.m.Range(func(k string, v Document) bool {
			out[k] = v.Native()
			return true
		})
		return out
	default:
		return nil
	}
}

// Equal reports deep equality. Scalars must agree on type and value;
// mapping key order is not significant.
func Equal(a, b Document) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNull:
		return true
	case KindScalar:
		return a.scalar == b.scalar
	case KindSequence:
		if len(a.seq) != len(b.seq) {
			return false
		}
		for i := range a.seq {
			if !Equal(a.seq[i], b.seq[i]) {
				return false
			}
		}
		return true
	case KindMapping:
		if a.m.Len() != b.m.Len() {
			return false
		}
		equal := true
		a.m.Range(func(k string, av Document) bool {
			bv, ok := b.m.Get(k)
			equal = ok && Equal(av, bv)
			return equal
		})
		return equal
	}
	return false
}

// Equal is shorthand for Equal(d, other)
func (d Document) Equal(other Document) bool {
	return Equal(d, other)
}

// From converts plain Go values into a Document. Maps with non-Map types are
// ordered by key so that the conversion is deterministic.
func From(v any) (Document, error) {
	switch val := v.(type) {
	case nil:
		return Null(), nil
	case Document:
		return val, nil
	case Map:
		return Mapping(val), nil
	case string:
		return String(val), nil
	case bool:
		return Bool(val), nil
	case int:
		return Int(int64(val)), nil
	case int8:
		return Int(int64(val)), nil
	case int16:
		return Int(int64(val)), nil
	case int32:
		return Int(int64(val)), nil
	case int64:
		return Int(val), nil
	case uint:
		return fromUint(uint64(val)), nil
	case uint8:
		return Int(int64(val)), nil
	case uint16:
		return Int(int64(val)), nil
	case uint32:
		return Int(int64(val)), nil
	case uint64:
		return fromUint(val), nil
	case float32:
		return Float(float64(val)), nil
	case float64:
		return Float(val), nil
	case []Document:
		return Sequence(val...), nil
	case []string:
		items := make([]Document, len(val))
		for i, s := range val {
			items[i] = String(s)
		}
		return Document{kind: KindSequence, seq: items}, nil
	case []any:
		items := make([]Document, len(val))
		for i, item := range val {
			d, err := From(item)
			if err != nil {
				return Document{}, fmt.Errorf("index %d: %w", i, err)
			}
			items[i] = d
		}
		return Document{kind: KindSequence, seq: items}, nil
	case map[string]any:
		var b Builder
		for _, k := range sortedKeys(val) {
			d, err := From(val[k])
			if err != nil {
				return Document{}, fmt.Errorf("key %q: %w", k, err)
			}
			b.Set(k, d)
		}
		return Mapping(b.Map()), nil
	case map[string]string:
		var b Builder
		for _, k := range sortedKeys(val) {
			b.Set(k, String(val[k]))
		}
		return Mapping(b.Map()), nil
	default:
		return Document{}, fmt.Errorf("document: unsupported type %T", v)
	}
}

// MustFrom is From for literals known to be convertible
func MustFrom(v any) Document {
	d, err := From(v)
	if err != nil {
		panic(err)
	}
	return d
}

func fromUint(u uint64) Document {
	if u > math.MaxInt64 {
		return Float(float64(u))
	}
	return Int(int64(u))
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// formatFloat keeps a decimal point so the text re-parses as a float
func formatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return ".inf"
	case math.IsInf(f, -1):
		return "-.inf"
	case math.IsNaN(f):
		return ".nan"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}
