package telemetry

import "github.com/KOMKZ/yogan-hiera/errcode"

// 模块码
const ModuleCode = 86

const (
	ErrCodeStart    = 1
	ErrCodeShutdown = 2
)

var (
	// ErrStart 创建导出器或 Provider 失败
	ErrStart = errcode.Register(errcode.New(
		ModuleCode, ErrCodeStart,
		"telemetry", "error.telemetry.start", "启动链路追踪失败",
	))

	// ErrShutdown 刷新或关闭导出器失败
	ErrShutdown = errcode.Register(errcode.New(
		ModuleCode, ErrCodeShutdown,
		"telemetry", "error.telemetry.shutdown", "关闭链路追踪失败",
	))
)
