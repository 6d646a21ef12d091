package config

import (
	"github.com/samber/do/v2"
)

// ProvideOptions 创建 Options Provider
// Options 是最底层组件，无任何依赖
//
// 使用示例：
//
//	do.Provide(injector, config.ProvideOptions(config.LoadParams{
//	    ConfigFile: "/etc/hiera/hiera.yaml",
//	}))
//	opts := do.MustInvoke[config.Options](injector)
func ProvideOptions(p LoadParams) func(do.Injector) (Options, error) {
	return func(do.Injector) (Options, error) {
		return Load(p)
	}
}

// ProvideOptionsValue 直接注册已有的 Options（用于测试或嵌入场景）
func ProvideOptionsValue(opts Options) func(do.Injector) (Options, error) {
	return func(do.Injector) (Options, error) {
		opts.ApplyDefaults()
		return opts, nil
	}
}
