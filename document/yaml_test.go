package document

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParse_Empty(t *testing.T) {
	for _, in := range []string{"", "\n", "# only a comment\n"} {
		d, err := Parse([]byte(in))
		require.NoError(t, err, "input %q", in)
		assert.True(t, d.IsNull(), "input %q", in)
	}
}

func TestParse_Scalars(t *testing.T) {
	d, err := Parse([]byte(`
str: hello
quoted: "42"
int: 42
neg: -7
hex: 0x1F
float: 1.5
inf: .inf
yes: true
no: false
nothing: ~
empty:
date: 2024-01-02
`))
	require.NoError(t, err)
	require.True(t, d.IsMapping())

	tests := []struct {
		key   string
		want  any
		shape string
	}{
		{"str", "hello", "String"},
		{"quoted", "42", "String"},
		{"int", int64(42), "Integer"},
		{"neg", int64(-7), "Integer"},
		{"hex", int64(31), "Integer"},
		{"float", 1.5, "Float"},
		{"yes", true, "Boolean"},
		{"no", false, "Boolean"},
		{"date", "2024-01-02", "String"},
	}
	for _, tt := range tests {
		v, ok := d.Get(tt.key)
		require.True(t, ok, tt.key)
		assert.Equal(t, tt.want, v.Scalar(), tt.key)
		assert.Equal(t, tt.shape, v.ShapeName(), tt.key)
	}

	inf, _ := d.Get("inf")
	assert.True(t, math.IsInf(inf.Scalar().(float64), 1))

	for _, key := range []string{"nothing", "empty"} {
		v, ok := d.Get(key)
		require.True(t, ok, key)
		assert.True(t, v.IsNull(), key)
	}
}

func TestParse_KeepsKeyOrder(t *testing.T) {
	d, err := Parse([]byte("zeta: 1\nalpha: 2\nmid: 3\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, d.Map().Keys())
}

func TestParse_AnchorsAndMergeKeys(t *testing.T) {
	d, err := Parse([]byte(`
defaults: &defaults
  adapter: postgres
  host: localhost
development:
  <<: *defaults
  host: db.local
list:
  - *defaults
`))
	require.NoError(t, err)

	dev, _ := d.Get("development")
	assert.Equal(t, map[string]any{"adapter": "postgres", "host": "db.local"}, dev.Native())
	assert.False(t, dev.Has("<<"))

	list, _ := d.Get("list")
	require.Equal(t, 1, list.Len())
	assert.Equal(t, "postgres", list.Items()[0].Native().(map[string]any)["adapter"])
}

func TestParse_MergeKeyList(t *testing.T) {
	d, err := Parse([]byte(`
a: &a {x: 1, y: 1}
b: &b {y: 2, z: 2}
c:
  <<: [*a, *b]
`))
	require.NoError(t, err)
	c, _ := d.Get("c")
	assert.Equal(t, map[string]any{"x": int64(1), "y": int64(1), "z": int64(2)}, c.Native())
}

func TestParse_InvalidMergeKey(t *testing.T) {
	_, err := Parse([]byte("a:\n  <<: scalar\n"))
	assert.Error(t, err)
}

func TestParse_ExcessiveAliasing(t *testing.T) {
	// 每一层引用上一层 10 次，展开后约 10^9 个节点
	var b strings.Builder
	b.WriteString("l0: &l0 [x, x, x, x, x, x, x, x, x, x]\n")
	for i := 1; i <= 8; i++ {
		fmt.Fprintf(&b, "l%d: &l%d [", i, i)
		for j := 0; j < 10; j++ {
			if j > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "*l%d", i-1)
		}
		b.WriteString("]\n")
	}

	_, err := Parse([]byte(b.String()))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExcessiveAliasing)
	assert.ErrorContains(t, err, "document contains excessive aliasing")
}

func TestParse_ModerateAliasing(t *testing.T) {
	d, err := Parse([]byte("base: &b [1, 2]\nx: [*b, *b, *b]\n"))
	require.NoError(t, err)
	x, _ := d.Get("x")
	assert.Equal(t, 3, x.Len())
}

func TestParse_Malformed(t *testing.T) {
	_, err := Parse([]byte("key: [unclosed\n"))
	assert.Error(t, err)
}

func TestParse_NonStringKeys(t *testing.T) {
	d, err := Parse([]byte("1: one\ntrue: yes\n"))
	require.NoError(t, err)
	assert.True(t, d.Has("1"))
	assert.True(t, d.Has("true"))
}

func TestMarshal_RoundTrip(t *testing.T) {
	src := MustFrom(map[string]any{
		"name":    "app",
		"port":    8080,
		"ratio":   2.0,
		"enabled": true,
		"quoted":  "true",
		"none":    nil,
		"tags":    []any{"a", "b"},
		"nested":  map[string]any{"k": []any{1, map[string]any{"deep": "v"}}},
	})

	out, err := Marshal(src)
	require.NoError(t, err)

	back, err := Parse(out)
	require.NoError(t, err)
	assertDoc(t, src, back)
	assert.Equal(t, src.Map().Keys(), back.Map().Keys())
}

func TestDocument_YAMLInterfaces(t *testing.T) {
	type holder struct {
		Value Document `yaml:"value"`
	}

	var h holder
	require.NoError(t, yaml.Unmarshal([]byte("value:\n  a: [1, 2]\n"), &h))
	assert.Equal(t, map[string]any{"a": []any{int64(1), int64(2)}}, h.Value.Native())

	out, err := yaml.Marshal(h)
	require.NoError(t, err)
	assert.Contains(t, string(out), "value:")

	var again holder
	require.NoError(t, yaml.Unmarshal(out, &again))
	assert.True(t, Equal(h.Value, again.Value))
}
