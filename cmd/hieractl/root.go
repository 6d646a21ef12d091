package main

import (
	"io"

	"github.com/KOMKZ/yogan-hiera/application"
	"github.com/KOMKZ/yogan-hiera/config"
	"github.com/KOMKZ/yogan-hiera/flagx"
	"github.com/spf13/cobra"
)

// globalFlags 全局参数，带 config tag 的字段覆盖配置文件和环境变量
type globalFlags struct {
	Config    string   `flag:"config,c" usage:"配置文件（默认 ./hiera.yaml）"`
	EnvPrefix string   `flag:"env-prefix" usage:"环境变量前缀" default:"HIERA"`
	Datadir   string   `flag:"datadir,d" usage:"数据目录，可包含 %{var}" config:"datadir"`
	Hierarchy []string `flag:"hierarchy" usage:"层级，按优先级从高到低（可重复）" config:"hierarchy"`
	Cacheable *bool    `flag:"cache" usage:"缓存解析后的数据文件" default:"true" config:"cacheable"`
	LogLevel  string   `flag:"log-level" usage:"日志级别 debug|info|warn|error" config:"logger.level"`
	Trace     *bool    `flag:"trace" usage:"导出链路追踪（默认输出到 stderr）" config:"telemetry.enabled"`
}

// newApp 组装命令树
func newApp(out, errOut io.Writer) *application.CLIApplication {
	var flags globalFlags
	params := &config.LoadParams{}

	root := &cobra.Command{
		Use:           "hieractl",
		Short:         "Hierarchical YAML configuration lookup",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := flagx.ParseFlags(cmd.Flags(), &flags); err != nil {
				return err
			}
			params.ConfigFile = flags.Config
			params.EnvPrefix = flags.EnvPrefix
			params.Flags = flags
			return nil
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	if err := flagx.BindFlags(root.PersistentFlags(), &flags); err != nil {
		panic(err)
	}

	app := application.NewCLI(params, root)
	app.AddCommand(
		newLookupCmd(app),
		newSourcesCmd(app),
		newWarmCmd(app),
		newWatchCmd(app),
		newCheckCmd(app),
	)
	return app
}
