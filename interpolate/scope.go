package interpolate

import (
	"strings"

	"github.com/KOMKZ/yogan-hiera/document"
)

// Scope resolves variable names used in %{name} tokens
type Scope interface {
	Lookup(name string) (document.Document, bool)
}

// Vars is a Scope backed by a plain map
type Vars map[string]document.Document

// Lookup returns the value bound to name. A top-scope name ("::x") also
// matches a plain "x" entry.
func (v Vars) Lookup(name string) (document.Document, bool) {
	if d, ok := v[name]; ok {
		return d, true
	}
	if trimmed, ok := strings.CutPrefix(name, "::"); ok && trimmed != "" {
		d, ok := v[trimmed]
		return d, ok
	}
	return document.Document{}, false
}

// FromMap converts plain Go values into Vars
func FromMap(m map[string]any) (Vars, error) {
	vars := make(Vars, len(m))
	for k, v := range m {
		d, err := document.From(v)
		if err != nil {
			return nil, err
		}
		vars[k] = d
	}
	return vars, nil
}

// FromStrings builds Vars from name=value pairs
func FromStrings(m map[string]string) Vars {
	vars := make(Vars, len(m))
	for k, v := range m {
		vars[k] = document.String(v)
	}
	return vars
}

// Chain consults each scope in order. Null values count as unset.
type Chain []Scope

func (c Chain) Lookup(name string) (document.Document, bool) {
	for _, s := range c {
		if s == nil {
			continue
		}
		if d, ok := s.Lookup(name); ok && !d.IsNull() {
			return d, true
		}
	}
	return document.Document{}, false
}

// Parameters exposes the variable table stored under key in doc as "::name"
// entries. A missing or non-mapping table yields an empty set.
func Parameters(doc document.Document, key string) Vars {
	table, ok := doc.Get(key)
	if !ok || !table.IsMapping() {
		return Vars{}
	}
	m := table.Map()
	params := make(Vars, m.Len())
	m.Range(func(k string, v document.Document) bool {
		params["::"+k] = v
		return true
	})
	return params
}
