package cache

import (
	"github.com/KOMKZ/yogan-hiera/errcode"
)

// ModuleCode 缓存模块码
const ModuleCode = 70

// 错误码：70xxxx
const (
	ErrCodeCacheMiss     = 1
	ErrCodeCodec         = 2
	ErrCodeBackend       = 3
	ErrCodeClosed        = 4
	ErrCodeConfigInvalid = 5
)

var (
	// ErrCacheMiss 未命中，调用方应回源读取数据文件
	ErrCacheMiss = errcode.Register(errcode.New(
		ModuleCode, ErrCodeCacheMiss,
		"cache", "error.cache.miss", "缓存未命中",
	))

	// ErrCodec 缓存条目编解码失败
	ErrCodec = errcode.Register(errcode.New(
		ModuleCode, ErrCodeCodec,
		"cache", "error.cache.codec", "缓存条目编解码失败",
	))

	// ErrBackend 存储后端不可用或返回错误
	ErrBackend = errcode.Register(errcode.New(
		ModuleCode, ErrCodeBackend,
		"cache", "error.cache.backend", "缓存后端错误",
	))

	// ErrClosed 存储已关闭
	ErrClosed = errcode.Register(errcode.New(
		ModuleCode, ErrCodeClosed,
		"cache", "error.cache.closed", "缓存已关闭",
	))

	ErrConfigInvalid = errcode.Register(errcode.New(
		ModuleCode, ErrCodeConfigInvalid,
		"cache", "error.cache.config_invalid", "缓存配置无效",
	))
)
