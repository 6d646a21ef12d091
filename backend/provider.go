package backend

import (
	"context"

	"github.com/KOMKZ/yogan-hiera/config"
	"github.com/samber/do/v2"
)

// Provide 创建 Backend Provider，依赖 config.Options
//
// 使用示例：
//
//	injector := do.New()
//	do.Provide(injector, config.ProvideOptions(config.LoadParams{ConfigFile: "hiera.yaml"}))
//	do.Provide(injector, backend.Provide)
//	b := do.MustInvoke[*backend.Backend](injector)
//	defer injector.Shutdown()
func Provide(i do.Injector) (*Backend, error) {
	opts, err := do.Invoke[config.Options](i)
	if err != nil {
		return nil, err
	}
	return NewFromOptions(context.Background(), opts)
}
