package imports

import (
	"github.com/KOMKZ/yogan-hiera/errcode"
)

// 模块码
const (
	ModuleCode = 82 // 导入解析模块码
)

const (
	ErrCodeDirective = 1
	ErrCodeCycle     = 2
)

var (
	// ErrImportDirective 导入指令不是字符串列表
	ErrImportDirective = errcode.Register(errcode.New(
		ModuleCode, ErrCodeDirective,
		"imports", "error.imports.directive", "导入指令必须是字符串列表",
	))

	// ErrImportCycle 导入链中出现重复文件
	ErrImportCycle = errcode.Register(errcode.New(
		ModuleCode, ErrCodeCycle,
		"imports", "error.imports.cycle", "导入循环",
	))
)
