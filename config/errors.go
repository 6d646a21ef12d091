package config

import (
	"github.com/KOMKZ/yogan-hiera/errcode"
)

// 模块码
const (
	ModuleCode = 85 // 配置模块码
)

const (
	ErrCodeRead    = 1
	ErrCodeDecode  = 2
	ErrCodeInvalid = 3
)

var (
	// ErrConfigRead 配置源读取失败
	ErrConfigRead = errcode.Register(errcode.New(
		ModuleCode, ErrCodeRead,
		"config", "error.config.read", "读取配置失败",
	))

	// ErrConfigDecode 配置解析到结构体失败
	ErrConfigDecode = errcode.Register(errcode.New(
		ModuleCode, ErrCodeDecode,
		"config", "error.config.decode", "解析配置失败",
	))

	// ErrConfigInvalid 配置校验失败
	ErrConfigInvalid = errcode.Register(errcode.New(
		ModuleCode, ErrCodeInvalid,
		"config", "error.config.invalid", "配置无效",
	))
)
