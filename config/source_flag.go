package config

import (
	"fmt"
	"reflect"
	"strings"
)

// FlagSource 命令行参数数据源
//
// 字段通过 `config:"key"` 映射到配置 key，可写多个：`config:"datadir,paths.datadir"`。
// 零值和空切片不参与覆盖；指针字段（如 *bool）非 nil 即表示显式设置，按指向的值写入
type FlagSource struct {
	flags    interface{}
	priority int
}

func NewFlagSource(flags interface{}, priority int) *FlagSource {
	return &FlagSource{flags: flags, priority: priority}
}

func (s *FlagSource) Name() string  { return "flags" }
func (s *FlagSource) Priority() int { return s.priority }

func (s *FlagSource) Load() (map[string]interface{}, error) {
	result := make(map[string]interface{})

	v := reflect.ValueOf(s.flags)
	for v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return result, nil
		}
		v = v.Elem()
	}
	if !v.IsValid() {
		return result, nil
	}
	if v.Kind() != reflect.Struct {
		return nil, fmt.Errorf("flags must be a struct or pointer to struct, got %s", v.Kind())
	}

	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		keys := configKeys(t.Field(i).Tag.Get("config"))
		field := v.Field(i)
		if len(keys) == 0 || !field.CanInterface() || unset(field) {
			continue
		}

		value := field
		if value.Kind() == reflect.Ptr {
			value = value.Elem()
		}
		for _, key := range keys {
			result[key] = value.Interface()
		}
	}
	return result, nil
}

func configKeys(tag string) []string {
	var keys []string
	for _, key := range strings.Split(tag, ",") {
		if key = strings.TrimSpace(key); key != "" && key != "-" {
			keys = append(keys, key)
		}
	}
	return keys
}

func unset(v reflect.Value) bool {
	if v.Kind() == reflect.Slice || v.Kind() == reflect.Map {
		return v.Len() == 0
	}
	return v.IsZero()
}
