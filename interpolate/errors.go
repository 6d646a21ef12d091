package interpolate

import (
	"github.com/KOMKZ/yogan-hiera/errcode"
)

// 模块码
const (
	ModuleCode = 83
)

const (
	ErrCodeCycle = 1
)

// ErrInterpolationCycle a variable expands to itself
var ErrInterpolationCycle = errcode.Register(errcode.New(
	ModuleCode, ErrCodeCycle,
	"interpolate", "error.interpolate.cycle", "变量循环引用",
))
