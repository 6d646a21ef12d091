package backend

import (
	"strings"
)

// Mode 多数据源结果的合并方式
type Mode int

const (
	// FirstMatch 返回优先级最高的数据源中的值
	FirstMatch Mode = iota
	// Concatenate 把所有数据源的值拼接为一个列表
	Concatenate
	// DeepMerge 深度合并所有数据源的 Mapping，高优先级覆盖低优先级
	DeepMerge
)

func (m Mode) String() string {
	switch m {
	case FirstMatch:
		return "priority"
	case Concatenate:
		return "array"
	case DeepMerge:
		return "hash"
	}
	return "unknown"
}

// ParseMode 解析模式名，空字符串为 FirstMatch
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "priority", "first":
		return FirstMatch, nil
	case "array", "concat":
		return Concatenate, nil
	case "hash", "merge", "deep":
		return DeepMerge, nil
	}
	return FirstMatch, ErrUnknownMode.WithMsgf("未知的查找模式: %q", s)
}

// Set 实现 pflag.Value
func (m *Mode) Set(s string) error {
	parsed, err := ParseMode(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Type 实现 pflag.Value
func (m *Mode) Type() string {
	return "mode"
}

func (m Mode) valid() bool {
	return m >= FirstMatch && m <= DeepMerge
}
