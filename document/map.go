package document

// Map is an immutable, insertion-ordered string-keyed mapping.
// The zero value is an empty map. Set and Delete return modified copies.
type Map struct {
	keys []string
	vals map[string]Document
}

// Len returns the number of keys
func (m Map) Len() int {
	return len(m.keys)
}

// Keys returns the keys in insertion order
func (m Map) Keys() []string {
	keys := make([]string, len(m.keys))
	copy(keys, m.keys)
	return keys
}

// Get returns the value stored under key
func (m Map) Get(key string) (Document, bool) {
	v, ok := m.vals[key]
	return v, ok
}

// Has reports whether key is present
func (m Map) Has(key string) bool {
	_, ok := m.vals[key]
	return ok
}

// Range calls fn for every entry in order until fn returns false
func (m Map) Range(fn func(key string, value Document) bool) {
	for _, k := range m.keys {
		if !fn(k, m.vals[k]) {
			return
		}
	}
}

// Set returns a copy of m with key bound to value. An existing key keeps its position.
func (m Map) Set(key string, value Document) Map {
	b := m.builder()
	b.Set(key, value)
	return b.Map()
}

// Delete returns a copy of m without key
func (m Map) Delete(key string) Map {
	if !m.Has(key) {
		return m
	}
	var b Builder
	for _, k := range m.keys {
		if k != key {
			b.Set(k, m.vals[k])
		}
	}
	return b.Map()
}

func (m Map) builder() *Builder {
	b := &Builder{
		keys: make([]string, len(m.keys), len(m.keys)+1),
		vals: make(map[string]Document, len(m.keys)+1),
	}
	copy(b.keys, m.keys)
	for k, v := range m.vals {
		b.vals[k] = v
	}
	return b
}

// Builder assembles a Map without copying on every insertion.
// A Builder must not be used after Map has been called.
type Builder struct {
	keys []string
	vals map[string]Document
}

// NewBuilder starts from a copy of m
func NewBuilder(m Map) *Builder {
	return m.builder()
}

// Set binds key to value, keeping the position of an existing key
func (b *Builder) Set(key string, value Document) {
	if b.vals == nil {
		b.vals = make(map[string]Document)
	}
	if _, ok := b.vals[key]; !ok {
		b.keys = append(b.keys, key)
	}
	b.vals[key] = value
}

// Map hands the accumulated entries over as a Map
func (b *Builder) Map() Map {
	m := Map{keys: b.keys, vals: b.vals}
	b.keys, b.vals = nil, nil
	return m
}
