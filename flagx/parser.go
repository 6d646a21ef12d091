// Package flagx 把带 tag 的结构体绑定到 pflag.FlagSet
//
// 结构体示例：
//
//	type GlobalFlags struct {
//	    Datadir   string   `flag:"datadir,d" usage:"数据目录" config:"datadir"`
//	    Hierarchy []string `flag:"hierarchy" usage:"层级（可重复）" config:"hierarchy"`
//	    Cacheable *bool    `flag:"cache" usage:"启用缓存" default:"true" config:"cacheable"`
//	    Mode      backend.Mode `flag:"mode,m" usage:"合并模式"`
//	}
//
// BindFlags 注册参数，cobra 解析之后 ParseFlags 把值读回结构体。
// 指针字段只在参数被显式设置时赋值，未设置保持 nil，可以区分"没传"和"传了零值"。
package flagx

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	durationType = reflect.TypeOf(time.Duration(0))
	valueType    = reflect.TypeOf((*pflag.Value)(nil)).Elem()
)

// field 解析后的 tag 信息
type field struct {
	value    reflect.Value
	name     string
	short    string
	usage    string
	def      string
	required bool
	split    bool // []string 是否按逗号拆分（StringSlice），默认 StringArray
}

func fields(target interface{}) ([]field, error) {
	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return nil, fmt.Errorf("target must be a pointer to struct")
	}

	v = v.Elem()
	t := v.Type()

	var out []field
	for i := 0; i < v.NumField(); i++ {
		ft := t.Field(i)
		tag := ft.Tag.Get("flag")
		if tag == "" || !v.Field(i).CanSet() {
			continue
		}

		parts := strings.Split(tag, ",")
		f := field{
			value:    v.Field(i),
			name:     parts[0],
			usage:    ft.Tag.Get("usage"),
			def:      ft.Tag.Get("default"),
			required: ft.Tag.Get("required") == "true",
			split:    ft.Tag.Get("split") == "true",
		}
		if len(parts) > 1 {
			f.short = parts[1]
		}
		out = append(out, f)
	}
	return out, nil
}

// BindFlags 为结构体字段注册参数
func BindFlags(fs *pflag.FlagSet, target interface{}) error {
	list, err := fields(target)
	if err != nil {
		return err
	}

	for _, f := range list {
		if err := register(fs, f); err != nil {
			return fmt.Errorf("bind field %s: %w", f.name, err)
		}
		if f.required {
			if err := markRequired(fs, f.name); err != nil {
				return err
			}
		}
	}
	return nil
}

// register 按字段类型注册参数
func register(fs *pflag.FlagSet, f field) error {
	// 自定义类型（如 backend.Mode）直接作为 pflag.Value
	if f.value.CanAddr() && f.value.Addr().Type().Implements(valueType) {
		val := f.value.Addr().Interface().(pflag.Value)
		if f.def != "" {
			if err := val.Set(f.def); err != nil {
				return fmt.Errorf("default %q: %w", f.def, err)
			}
		}
		fs.VarP(val, f.name, f.short, f.usage)
		return nil
	}

	typ := f.value.Type()
	if typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}

	if typ == durationType {
		def, err := parseDefault(f.def, time.ParseDuration)
		if err != nil {
			return err
		}
		fs.DurationP(f.name, f.short, def, f.usage)
		return nil
	}

	switch typ.Kind() {
	case reflect.String:
		fs.StringP(f.name, f.short, f.def, f.usage)

	case reflect.Int:
		def, err := parseDefault(f.def, strconv.Atoi)
		if err != nil {
			return err
		}
		fs.IntP(f.name, f.short, def, f.usage)

	case reflect.Uint:
		def, err := parseDefault(f.def, func(s string) (uint, error) {
			u, err := strconv.ParseUint(s, 10, 0)
			return uint(u), err
		})
		if err != nil {
			return err
		}
		fs.UintP(f.name, f.short, def, f.usage)

	case reflect.Bool:
		def, err := parseDefault(f.def, strconv.ParseBool)
		if err != nil {
			return err
		}
		fs.BoolP(f.name, f.short, def, f.usage)

	case reflect.Float64:
		def, err := parseDefault(f.def, func(s string) (float64, error) {
			return strconv.ParseFloat(s, 64)
		})
		if err != nil {
			return err
		}
		fs.Float64P(f.name, f.short, def, f.usage)

	case reflect.Slice:
		if typ.Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice element type: %s", typ.Elem().Kind())
		}
		var def []string
		if f.def != "" {
			def = strings.Split(f.def, ",")
		}
		if f.split {
			fs.StringSliceP(f.name, f.short, def, f.usage)
		} else {
			fs.StringArrayP(f.name, f.short, def, f.usage)
		}

	default:
		return fmt.Errorf("unsupported field type: %s", typ.Kind())
	}

	return nil
}

func parseDefault[T any](s string, parse func(string) (T, error)) (T, error) {
	var zero T
	if s == "" {
		return zero, nil
	}
	v, err := parse(s)
	if err != nil {
		return zero, fmt.Errorf("default %q: %w", s, err)
	}
	return v, nil
}

// ParseFlags 把 FlagSet 中的值写回结构体
// 指针字段只在参数被显式设置时赋值
func ParseFlags(fs *pflag.FlagSet, target interface{}) error {
	list, err := fields(target)
	if err != nil {
		return err
	}

	for _, f := range list {
		flag := fs.Lookup(f.name)
		if flag == nil {
			return fmt.Errorf("flag %q not defined", f.name)
		}
		if err := setField(fs, f, flag.Changed); err != nil {
			return fmt.Errorf("parse field %s: %w", f.name, err)
		}
	}
	return nil
}

func setField(fs *pflag.FlagSet, f field, changed bool) error {
	// pflag.Value 字段已经由 pflag 直接写入
	if f.value.CanAddr() && f.value.Addr().Type().Implements(valueType) {
		return nil
	}

	dst := f.value
	if dst.Kind() == reflect.Ptr {
		if !changed {
			dst.Set(reflect.Zero(dst.Type()))
			return nil
		}
		dst.Set(reflect.New(dst.Type().Elem()))
		dst = dst.Elem()
	}

	var (
		val interface{}
		err error
	)

	if dst.Type() == durationType {
		val, err = fs.GetDuration(f.name)
	} else {
		switch dst.Kind() {
		case reflect.String:
			val, err = fs.GetString(f.name)
		case reflect.Int:
			val, err = fs.GetInt(f.name)
		case reflect.Uint:
			val, err = fs.GetUint(f.name)
		case reflect.Bool:
			val, err = fs.GetBool(f.name)
		case reflect.Float64:
			val, err = fs.GetFloat64(f.name)
		case reflect.Slice:
			if f.split {
				val, err = fs.GetStringSlice(f.name)
			} else {
				val, err = fs.GetStringArray(f.name)
			}
		default:
			return fmt.Errorf("unsupported field type: %s", dst.Kind())
		}
	}
	if err != nil {
		return err
	}

	dst.Set(reflect.ValueOf(val).Convert(dst.Type()))
	return nil
}

// markRequired 等价于 cobra.MarkFlagRequired，FlagSet 不一定属于某个 Command
func markRequired(fs *pflag.FlagSet, name string) error {
	return fs.SetAnnotation(name, cobra.BashCompOneRequiredFlag, []string{"true"})
}
