package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/KOMKZ/yogan-hiera/document"
	"github.com/KOMKZ/yogan-hiera/interpolate"
)

// queryFlags 查询类命令共用的作用域参数
type queryFlags struct {
	Facts    string   `flag:"facts,f" usage:"YAML 作用域文件"`
	Pairs    []string `flag:"scope,s" usage:"作用域变量 name=value（可重复）"`
	Override string   `flag:"override,o" usage:"优先于层级查找的数据源"`
}

// build 合并 facts 文件和 -s 参数，-s 优先
// 值按 YAML 标量解析：port=80 得到整数，name='80' 得到字符串
func (f queryFlags) scope() (interpolate.Vars, error) {
	vars := interpolate.Vars{}

	if f.Facts != "" {
		data, err := os.ReadFile(f.Facts)
		if err != nil {
			return nil, fmt.Errorf("read facts: %w", err)
		}
		doc, err := document.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("parse facts %s: %w", f.Facts, err)
		}
		if !doc.IsNull() && !doc.IsMapping() {
			return nil, fmt.Errorf("facts %s: expected a mapping, got %s", f.Facts, doc.ShapeName())
		}
		doc.Map().Range(func(k string, v document.Document) bool {
			vars[k] = v
			return true
		})
	}

	for _, pair := range f.Pairs {
		name, raw, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid scope %q, expected name=value", pair)
		}
		vars[name] = parseValue(raw)
	}
	return vars, nil
}

func parseValue(raw string) document.Document {
	d, err := document.Parse([]byte(raw))
	if err != nil || d.IsNull() && raw != "" && raw != "~" && raw != "null" {
		return document.String(raw)
	}
	return d
}
