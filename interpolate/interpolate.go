// Package interpolate substitutes %{name} tokens inside document values.
//
// Variables are resolved through a Scope. A variable whose value itself
// contains tokens is expanded again, so a parameter table can build values
// out of caller variables. Unknown variables expand to the empty string.
package interpolate

import (
	"regexp"
	"strings"

	"github.com/KOMKZ/yogan-hiera/document"
)

var tokenRe = regexp.MustCompile(`%\{([^\}]*)\}`)

// Interpolator substitutes variables in a document
type Interpolator interface {
	Interpolate(doc document.Document, scope Scope) (document.Document, error)
}

// Func adapts a function to Interpolator
type Func func(doc document.Document, scope Scope) (document.Document, error)

func (f Func) Interpolate(doc document.Document, scope Scope) (document.Document, error) {
	return f(doc, scope)
}

// Default is the %{name} interpolator
var Default Interpolator = Func(Interpolate)

// Interpolate replaces tokens in every string of doc. Mapping keys are left
// untouched; non-string scalars pass through unchanged.
func Interpolate(doc document.Document, scope Scope) (document.Document, error) {
	switch doc.Kind() {
	case document.KindScalar:
		s, ok := doc.AsString()
		if !ok || !strings.Contains(s, "%{") {
			return doc, nil
		}
		out, err := String(s, scope)
		if err != nil {
			return document.Document{}, err
		}
		return document.String(out), nil
	case document.KindSequence:
		items := doc.Items()
		for i, item := range items {
			v, err := Interpolate(item, scope)
			if err != nil {
				return document.Document{}, err
			}
			items[i] = v
		}
		return document.Sequence(items...), nil
	case document.KindMapping:
		b := document.NewBuilder(doc.Map())
		var err error
		doc.Map().Range(func(k string, v document.Document) bool {
			var out document.Document
			if out, err = Interpolate(v, scope); err != nil {
				return false
			}
			b.Set(k, out)
			return true
		})
		if err != nil {
			return document.Document{}, err
		}
		return document.Mapping(b.Map()), nil
	default:
		return doc, nil
	}
}

// String expands the tokens of s
func String(s string, scope Scope) (string, error) {
	return expand(s, scope, nil)
}

func expand(s string, scope Scope, resolving []string) (string, error) {
	matches := tokenRe.FindAllStringSubmatchIndex(s, -1)
	if len(matches) == 0 {
		return s, nil
	}

	var sb strings.Builder
	last := 0
	for _, m := range matches {
		sb.WriteString(s[last:m[0]])
		last = m[1]

		val, err := resolve(strings.TrimSpace(s[m[2]:m[3]]), scope, resolving)
		if err != nil {
			return "", err
		}
		sb.WriteString(val)
	}
	sb.WriteString(s[last:])
	return sb.String(), nil
}

func resolve(name string, scope Scope, resolving []string) (string, error) {
	for _, r := range resolving {
		if r == name {
			return "", ErrInterpolationCycle.WithMsgf(
				"变量循环引用: %s -> %s", strings.Join(resolving, " -> "), name)
		}
	}
	if scope == nil {
		return "", nil
	}

	d, ok := scope.Lookup(name)
	if !ok {
		return "", nil
	}
	val := d.String()
	if !strings.Contains(val, "%{") {
		return val, nil
	}
	return expand(val, scope, append(resolving[:len(resolving):len(resolving)], name))
}
