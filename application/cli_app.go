package application

import (
	"context"
	"fmt"
	"time"

	"github.com/KOMKZ/yogan-hiera/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// CLIApplication 命令行应用（BaseApplication + cobra）
type CLIApplication struct {
	*BaseApplication

	rootCmd *cobra.Command
}

// NewCLI 创建命令行应用
// params 通常绑定到 rootCmd 的全局参数，在命令执行前才被读取
func NewCLI(params *config.LoadParams, rootCmd *cobra.Command) *CLIApplication {
	return &CLIApplication{
		BaseApplication: NewBase(params),
		rootCmd:         rootCmd,
	}
}

// OnSetup 注册 Setup 阶段回调（链式调用）
func (c *CLIApplication) OnSetup(fn func(*CLIApplication) error) *CLIApplication {
	c.BaseApplication.OnSetup(func(base *BaseApplication) error {
		return fn(c)
	})
	return c
}

// OnReady 注册初始化完成回调（链式调用）
func (c *CLIApplication) OnReady(fn func(*CLIApplication) error) *CLIApplication {
	c.BaseApplication.OnReady(func(base *BaseApplication) error {
		return fn(c)
	})
	return c
}

// OnShutdown 注册关闭回调（链式调用）
func (c *CLIApplication) OnShutdown(fn func(*CLIApplication) error) *CLIApplication {
	c.BaseApplication.onShutdown = func(ctx context.Context) error {
		return fn(c)
	}
	return c
}

// Execute 执行命令（同步执行，完成后退出）
// Setup 挂在 PersistentPreRunE 上，这样配置参数已经由 cobra 解析
func (c *CLIApplication) Execute() error {
	prev := c.rootCmd.PersistentPreRunE
	c.rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if prev != nil {
			if err := prev(cmd, args); err != nil {
				return err
			}
		}
		return c.start()
	}

	err := c.rootCmd.ExecuteContext(c.ctx)

	shutdownErr := c.gracefulShutdown()
	if err != nil {
		return err
	}
	return shutdownErr
}

func (c *CLIApplication) start() error {
	if err := c.Setup(); err != nil {
		return fmt.Errorf("setup failed: %w", err)
	}

	c.setState(StateRunning)
	if c.onReady != nil {
		if err := c.onReady(c.BaseApplication); err != nil {
			return fmt.Errorf("onReady failed: %w", err)
		}
	}

	c.MustGetLogger().DebugCtx(c.ctx, "✅ CLI application initialized", zap.Int64("startup_time", c.GetStartupTimeMs()))
	return nil
}

func (c *CLIApplication) gracefulShutdown() error {
	if c.logger != nil {
		c.logger.DebugCtx(c.ctx, "Starting CLI application graceful shutdown...")
	}
	return c.BaseApplication.Shutdown(5 * time.Second)
}

// GetRootCmd 获取根命令
func (c *CLIApplication) GetRootCmd() *cobra.Command {
	return c.rootCmd
}

// AddCommand 添加子命令
func (c *CLIApplication) AddCommand(cmds ...*cobra.Command) *CLIApplication {
	c.rootCmd.AddCommand(cmds...)
	return c
}
