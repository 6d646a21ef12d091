package backend

import (
	"github.com/KOMKZ/yogan-hiera/errcode"
)

// 模块码
const (
	ModuleCode = 84 // 查找模块码
)

const (
	ErrCodeTypeMismatch = 1
	ErrCodeUnknownMode  = 2
)

var (
	// ErrTypeMismatch 值的类型与查找模式不符
	ErrTypeMismatch = errcode.Register(errcode.New(
		ModuleCode, ErrCodeTypeMismatch,
		"backend", "error.backend.type_mismatch", "类型不匹配",
	))

	// ErrUnknownMode 未知的查找模式
	ErrUnknownMode = errcode.Register(errcode.New(
		ModuleCode, ErrCodeUnknownMode,
		"backend", "error.backend.unknown_mode", "未知的查找模式",
	))
)
