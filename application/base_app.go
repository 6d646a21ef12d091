// Package application 提供 hieractl 的应用生命周期
// BaseApplication 管理 DI 容器、配置与查找后端；CLIApplication 在其上挂载 cobra 命令
package application

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/KOMKZ/yogan-hiera/backend"
	"github.com/KOMKZ/yogan-hiera/config"
	"github.com/KOMKZ/yogan-hiera/logger"
	"github.com/KOMKZ/yogan-hiera/telemetry"
	"github.com/samber/do/v2"
	"go.uber.org/zap"
)

// BaseApplication 应用核心
// 组件通过 samber/do 懒加载：Options 依赖命令行参数，只能在参数解析后创建
type BaseApplication struct {
	injector *do.RootScope
	params   *config.LoadParams

	// Setup 后可用
	opts      config.Options
	logs      *logger.Manager
	logger    *logger.CtxZapLogger
	telemetry *telemetry.Manager
	backend   *backend.Backend

	// 生命周期
	ctx       context.Context
	cancel    context.CancelFunc
	state     AppState
	mu        sync.RWMutex
	startTime time.Time

	version string

	onSetup    func(*BaseApplication) error
	onReady    func(*BaseApplication) error
	onShutdown func(context.Context) error
}

// AppState 应用状态
type AppState int

const (
	StateInit AppState = iota
	StateSetup
	StateRunning
	StateStopping
	StateStopped
)

// String 状态字符串表示
func (s AppState) String() string {
	switch s {
	case StateInit:
		return "Init"
	case StateSetup:
		return "Setup"
	case StateRunning:
		return "Running"
	case StateStopping:
		return "Stopping"
	case StateStopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}

// NewBase 创建基础应用实例
// params 在 Setup 时才读取，调用方可以先把它绑定到命令行参数
func NewBase(params *config.LoadParams) *BaseApplication {
	if params == nil {
		params = &config.LoadParams{}
	}

	ctx, cancel := context.WithCancel(context.Background())
	injector := do.New()

	do.Provide(injector, func(do.Injector) (config.Options, error) {
		return config.Load(*params)
	})
	do.Provide(injector, backend.Provide)

	return &BaseApplication{
		injector:  injector,
		params:    params,
		ctx:       ctx,
		cancel:    cancel,
		state:     StateInit,
		startTime: time.Now(),
	}
}

// WithVersion 设置版本号（链式调用）
func (b *BaseApplication) WithVersion(version string) *BaseApplication {
	b.version = version
	return b
}

// GetVersion 获取版本号
func (b *BaseApplication) GetVersion() string {
	return b.version
}

// Setup 加载配置并创建查找后端
func (b *BaseApplication) Setup() error {
	b.setState(StateSetup)

	opts, err := do.Invoke[config.Options](b.injector)
	if err != nil {
		return fmt.Errorf("加载配置失败: %w", err)
	}
	b.opts = opts
	b.logs = logger.NewManager(opts.Logger)
	b.logger = b.logs.GetLogger("application")

	// 先设置全局 Provider，后端创建 tracer 和缓存指标时才能拿到
	b.telemetry = telemetry.NewManager(opts.Telemetry, b.logs.GetLogger("telemetry"))
	if err := b.telemetry.Start(b.ctx); err != nil {
		return err
	}

	bk, err := do.Invoke[*backend.Backend](b.injector)
	if err != nil {
		return fmt.Errorf("创建查找后端失败: %w", err)
	}
	b.backend = bk

	b.logger.DebugCtx(b.ctx, "✅ 应用初始化完成",
		zap.String("datadir", opts.Datadir),
		zap.Strings("hierarchy", opts.Hierarchy),
		zap.Bool("cacheable", opts.Cacheable),
		zap.Int64("startup_ms", b.GetStartupTimeMs()))

	if b.onSetup != nil {
		if err := b.onSetup(b); err != nil {
			return fmt.Errorf("onSetup failed: %w", err)
		}
	}

	return nil
}

// Shutdown 优雅关闭
func (b *BaseApplication) Shutdown(timeout time.Duration) error {
	b.setState(StateStopping)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var errs []error

	// 1. 业务清理回调
	if b.onShutdown != nil {
		if err := b.onShutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("onShutdown failed: %w", err))
		}
	}

	// 2. 释放后端（缓存连接、日志文件），再关闭 DI 容器
	if b.backend != nil {
		if err := b.backend.Close(); err != nil {
			errs = append(errs, fmt.Errorf("关闭查找后端失败: %w", err))
		}
	}
	_ = b.injector.Shutdown()

	// 3. 导出剩余的 span 和指标
	if b.telemetry != nil {
		if err := b.telemetry.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}

	b.cancel()
	if b.logs != nil {
		b.logs.CloseAll()
	}

	b.setState(StateStopped)
	return errors.Join(errs...)
}

// WaitShutdown 等待 SIGINT/SIGTERM 或 context 取消
// 第一次信号取消应用 context，第二次信号立即退出
func (b *BaseApplication) WaitShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	log := b.MustGetLogger()

	select {
	case sig := <-quit:
		log.DebugCtx(b.ctx, "Shutdown signal received", zap.String("signal", sig.String()))
		b.cancel()

		go func() {
			sig := <-quit
			log.WarnCtx(context.Background(), "Second signal received, forcing exit", zap.String("signal", sig.String()))
			os.Exit(1)
		}()

	case <-b.ctx.Done():
		signal.Stop(quit)
		log.DebugCtx(context.Background(), "Context cancelled, starting graceful shutdown")
	}
}

// Cancel 手动触发关闭
func (b *BaseApplication) Cancel() {
	b.cancel()
}

// OnSetup 注册 Setup 阶段回调
func (b *BaseApplication) OnSetup(fn func(*BaseApplication) error) *BaseApplication {
	b.onSetup = fn
	return b
}

// OnReady 注册启动完成回调
func (b *BaseApplication) OnReady(fn func(*BaseApplication) error) *BaseApplication {
	b.onReady = fn
	return b
}

// OnShutdown 注册关闭前回调
func (b *BaseApplication) OnShutdown(fn func(context.Context) error) *BaseApplication {
	b.onShutdown = fn
	return b
}

// MustGetLogger 获取日志实例，Setup 之前调用会 panic
func (b *BaseApplication) MustGetLogger() *logger.CtxZapLogger {
	if b.logger == nil {
		panic("logger not initialized, please call Setup() first")
	}
	return b.logger
}

// MustGetBackend 获取查找后端，Setup 之前调用会 panic
func (b *BaseApplication) MustGetBackend() *backend.Backend {
	if b.backend == nil {
		panic("backend not initialized, please call Setup() first")
	}
	return b.backend
}

// Options 已加载的配置
func (b *BaseApplication) Options() config.Options {
	return b.opts
}

// Params 配置加载参数（可在 Setup 前修改）
func (b *BaseApplication) Params() *config.LoadParams {
	return b.params
}

// Telemetry 链路追踪管理器，Setup 之前为 nil
func (b *BaseApplication) Telemetry() *telemetry.Manager {
	return b.telemetry
}

// GetInjector 获取 samber/do 注入器
func (b *BaseApplication) GetInjector() *do.RootScope {
	return b.injector
}

// GetState 获取当前状态（线程安全）
func (b *BaseApplication) GetState() AppState {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.state
}

// GetStartupTimeMs 自创建以来的毫秒数
func (b *BaseApplication) GetStartupTimeMs() int64 {
	return time.Since(b.startTime).Milliseconds()
}

// Context 获取应用上下文
func (b *BaseApplication) Context() context.Context {
	return b.ctx
}

// setState 设置状态（线程安全）
func (b *BaseApplication) setState(state AppState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = state
}
