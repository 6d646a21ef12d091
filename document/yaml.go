package document

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Parse decodes the first YAML document in data. Empty input yields Null.
// Aliases are expanded and merge keys (<<) are applied; tags other than the
// core scalar tags are read as strings.
func Parse(data []byte) (Document, error) {
	var root yaml.Node
	dec := yaml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return Null(), nil
		}
		return Document{}, err
	}
	return FromNode(&root)
}

// FromNode converts a yaml.v3 node tree into a Document
func FromNode(n *yaml.Node) (Document, error) {
	var w walker
	return w.fromNode(n, 0)
}

// 别名可以任意嵌套，深度和展开后的节点总数都要限制
const (
	maxNodeDepth = 10000
	maxNodes     = 1_000_000
)

// ErrExcessiveAliasing 别名展开后节点数超出上限
var ErrExcessiveAliasing = errors.New("document contains excessive aliasing")

// walker 在一次转换中累计已展开的节点数
type walker struct {
	nodes int
}

func (w *walker) fromNode(n *yaml.Node, depth int) (Document, error) {
	if n == nil {
		return Null(), nil
	}
	if depth > maxNodeDepth {
		return Document{}, fmt.Errorf("line %d: document nested too deeply", n.Line)
	}
	w.nodes++
	if w.nodes > maxNodes {
		return Document{}, fmt.Errorf("line %d: %w", n.Line, ErrExcessiveAliasing)
	}

	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return Null(), nil
		}
		return w.fromNode(n.Content[0], depth+1)
	case yaml.AliasNode:
		return w.fromNode(n.Alias, depth+1)
	case yaml.ScalarNode:
		return scalarFromNode(n)
	case yaml.SequenceNode:
		items := make([]Document, 0, len(n.Content))
		for _, c := range n.Content {
			d, err := w.fromNode(c, depth+1)
			if err != nil {
				return Document{}, err
			}
			items = append(items, d)
		}
		return Document{kind: KindSequence, seq: items}, nil
	case yaml.MappingNode:
		return w.mappingFromNode(n, depth)
	}
	return Document{}, fmt.Errorf("line %d: unsupported yaml node kind %d", n.Line, n.Kind)
}

func (w *walker) mappingFromNode(n *yaml.Node, depth int) (Document, error) {
	var b Builder
	var merges []*yaml.Node

	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		if k.Kind == yaml.ScalarNode && k.ShortTag() == "!!merge" {
			merges = append(merges, v)
			continue
		}
		key, err := keyFromNode(k)
		if err != nil {
			return Document{}, err
		}
		d, err := w.fromNode(v, depth+1)
		if err != nil {
			return Document{}, err
		}
		b.Set(key, d)
	}

	m := b.Map()
	for _, merge := range merges {
		var err error
		if m, err = w.applyMergeKey(m, merge, depth); err != nil {
			return Document{}, err
		}
	}
	return Mapping(m), nil
}

// applyMergeKey adds the keys of a "<<" value that the mapping does not define itself
func (w *walker) applyMergeKey(m Map, v *yaml.Node, depth int) (Map, error) {
	src, err := w.fromNode(v, depth+1)
	if err != nil {
		return m, err
	}

	var sources []Document
	switch src.kind {
	case KindMapping:
		sources = []Document{src}
	case KindSequence:
		sources = src.seq
	default:
		return m, fmt.Errorf("line %d: merge key value must be a mapping or a list of mappings", v.Line)
	}

	b := NewBuilder(m)
	for _, s := range sources {
		if s.kind != KindMapping {
			return m, fmt.Errorf("line %d: merge key value must be a mapping or a list of mappings", v.Line)
		}
		s.m.Range(func(k string, val Document) bool {
			if !b.has(k) {
				b.Set(k, val)
			}
			return true
		})
	}
	return b.Map(), nil
}

func (b *Builder) has(key string) bool {
	_, ok := b.vals[key]
	return ok
}

func keyFromNode(k *yaml.Node) (string, error) {
	if k.Kind == yaml.AliasNode {
		k = k.Alias
	}
	if k == nil || k.Kind != yaml.ScalarNode {
		line := 0
		if k != nil {
			line = k.Line
		}
		return "", fmt.Errorf("line %d: mapping keys must be scalars", line)
	}
	return k.Value, nil
}

func scalarFromNode(n *yaml.Node) (Document, error) {
	switch n.ShortTag() {
	case "!!null":
		return Null(), nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return Document{}, err
		}
		return Bool(b), nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err == nil {
			return Int(i), nil
		}
		var u uint64
		if err := n.Decode(&u); err == nil {
			return fromUint(u), nil
		}
		return String(n.Value), nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return Document{}, err
		}
		return Float(f), nil
	default:
		return String(n.Value), nil
	}
}

// ToNode converts d into a yaml.v3 node tree
func ToNode(d Document) *yaml.Node {
	switch d.kind {
	case KindScalar:
		switch v := d.scalar.(type) {
		case string:
			return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
		case int64:
			return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(v, 10)}
		case float64:
			return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: formatFloat(v)}
		case bool:
			return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(v)}
		}
	case KindSequence:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range d.seq {
			n.Content = append(n.Content, ToNode(item))
		}
		return n
	case KindMapping:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		d.m.Range(func(k string, v Document) bool {
			n.Content = append(n.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
				ToNode(v),
			)
			return true
		})
		return n
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
}

// Marshal encodes d as a YAML document
func Marshal(d Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(ToNode(d)); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MarshalYAML implements yaml.Marshaler
func (d Document) MarshalYAML() (interface{}, error) {
	return ToNode(d), nil
}

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Document) UnmarshalYAML(n *yaml.Node) error {
	parsed, err := FromNode(n)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
