package app

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	goalycfg "goaly/internal/config"
	"goaly/internal/logger"
	"goaly/internal/prompt"
	"goaly/internal/store/ailog"
	"goaly/internal/store/gormstore"
	webhttp "goaly/internal/transport/http"
)

// App 负责应用级编排：加载配置→初始化依赖→启动 HTTP 服务。
type App struct {
	cfg     *goalycfg.Config
	server  *webhttp.Server
	prompts *prompt.Manager
	goalsDB *gormstore.GormStore
	callLog *ailog.Store
}

// NewApp 根据配置构建应用对象（不启动）。
func NewApp(cfg *goalycfg.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	logger.SetLevel(cfg.App.LogLevel)
	return buildAppWithWire(context.Background(), cfg)
}

// Run 启动 HTTP 服务与提示词热更新，直到 ctx 取消。
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.cfg == nil {
		return fmt.Errorf("app not initialized")
	}
	if a.server == nil {
		return fmt.Errorf("http server not initialized")
	}
	defer a.Close()

	group, ctx := errgroup.WithContext(ctx)

	if a.prompts != nil {
		if err := a.prompts.Watch(ctx); err != nil {
			logger.Warnf("提示词目录监听未启用: %v", err)
		}
	}

	group.Go(func() error {
		if err := a.server.Start(ctx); err != nil {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	})

	return group.Wait()
}

// Close 释放存储资源。
func (a *App) Close() {
	if a == nil {
		return
	}
	if a.callLog != nil {
		if err := a.callLog.Close(); err != nil {
			logger.Warnf("关闭 AI 调用日志失败: %v", err)
		}
	}
	if a.goalsDB != nil {
		if err := a.goalsDB.Close(); err != nil {
			logger.Warnf("关闭目标数据库失败: %v", err)
		}
	}
}
