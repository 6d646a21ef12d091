package loader

import (
	"github.com/KOMKZ/yogan-hiera/errcode"
)

// 模块码
const (
	ModuleCode = 81 // 数据文件加载模块码
)

// 错误码定义
const (
	ErrCodeNotFound      = 1
	ErrCodeRead          = 2
	ErrCodeParse         = 3
	ErrCodeShapeMismatch = 4
	ErrCodeCacheDecode   = 5
	ErrCodeWatch         = 6
)

var (
	// ErrNotFound 数据文件不存在
	ErrNotFound = errcode.Register(errcode.New(
		ModuleCode, ErrCodeNotFound,
		"loader", "error.loader.not_found", "数据文件不存在",
	))

	// ErrRead 数据文件读取失败
	ErrRead = errcode.Register(errcode.New(
		ModuleCode, ErrCodeRead,
		"loader", "error.loader.read", "数据文件读取失败",
	))

	// ErrParse YAML 解析失败
	ErrParse = errcode.Register(errcode.New(
		ModuleCode, ErrCodeParse,
		"loader", "error.loader.parse", "数据文件解析失败",
	))

	// ErrShapeMismatch 顶层不是 Mapping
	ErrShapeMismatch = errcode.Register(errcode.New(
		ModuleCode, ErrCodeShapeMismatch,
		"loader", "error.loader.shape_mismatch", "数据文件顶层必须是 Mapping",
	))

	// ErrCacheDecode 缓存条目无法解码，按未命中处理
	ErrCacheDecode = errcode.Register(errcode.New(
		ModuleCode, ErrCodeCacheDecode,
		"loader", "error.loader.cache_decode", "缓存条目解码失败",
	))

	// ErrWatch 文件监听失败
	ErrWatch = errcode.Register(errcode.New(
		ModuleCode, ErrCodeWatch,
		"loader", "error.loader.watch", "文件监听失败",
	))
)
