package app

import (
	"context"
	"fmt"
	"time"

	"goaly/internal/ai"
	"goaly/internal/analysis/visual"
	goalycfg "goaly/internal/config"
	"goaly/internal/gateway/provider"
	"goaly/internal/goals"
	"goaly/internal/logger"
	"goaly/internal/metrics"
	"goaly/internal/observability"
	"goaly/internal/prompt"
	"goaly/internal/store/ailog"
	"goaly/internal/store/gormstore"
	webhttp "goaly/internal/transport/http"
)

// AppBuilder 组装全部依赖；字段化的构造函数便于测试替换。
type AppBuilder struct {
	cfg *goalycfg.Config

	goalsStoreFn func(string) (*gormstore.GormStore, error)
	callLogFn    func(string) (*ailog.Store, error)
	httpServerFn func(webhttp.ServerConfig) (*webhttp.Server, error)
}

type AppBuilderOption func(*AppBuilder)

func NewAppBuilder(cfg *goalycfg.Config, opts ...AppBuilderOption) *AppBuilder {
	b := &AppBuilder{
		cfg:          cfg,
		goalsStoreFn: gormstore.NewGormStore,
		callLogFn:    ailog.NewStore,
		httpServerFn: webhttp.NewServer,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

func (b *AppBuilder) Build(ctx context.Context) (*App, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := b.cfg
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}

	// 存储
	goalsDB, err := b.goalsStoreFn(cfg.Store.GoalsDB)
	if err != nil {
		return nil, fmt.Errorf("初始化目标数据库失败: %w", err)
	}
	callLog, err := b.callLogFn(cfg.Store.AICallLogDB)
	if err != nil {
		goalsDB.Close()
		return nil, fmt.Errorf("初始化 AI 调用日志失败: %w", err)
	}
	// 两个库路径相同时复用同一连接，避免 SQLite 锁冲突。
	if cfg.Store.AICallLogDB == cfg.Store.GoalsDB {
		if sqlDB, err := goalsDB.SQLDB(); err == nil {
			if err := callLog.UseExternalDB(sqlDB); err != nil {
				logger.Warnf("复用目标库连接失败，维持独立连接: %v", err)
			}
		}
	}

	// AI 能力层
	providerCfg := provider.ConfigFromEnv()
	if err := providerCfg.RequireAPIKey(); err != nil {
		logger.Warnf("OPENROUTER_API_KEY 未配置，AI 能力将全部走静态兜底")
	}
	client := provider.NewClient(providerCfg, time.Duration(cfg.AI.TimeoutSeconds)*time.Second)
	prompts := prompt.NewManager(cfg.Prompt.Dir)
	m := metrics.New()
	aiService := ai.NewService(ai.ServiceParams{
		Config:  providerCfg,
		Client:  client,
		Tracer:  observability.FromConfig(cfg.AI.TraceLog),
		Metrics: m,
		Calls:   callLog,
		Prompts: prompts,
	})

	// 领域与传输
	goalService := goals.NewService(goalsDB, goalsDB)
	var dashboard *visual.Renderer
	if cfg.Dashboard.Enabled {
		dashboard = visual.NewRenderer()
	}
	server, err := b.httpServerFn(webhttp.ServerConfig{
		Addr:        cfg.App.HTTPAddr,
		Goals:       goalService,
		AI:          aiService,
		Calls:       callLog,
		Metrics:     m,
		Dashboard:   dashboard,
		EvidenceDir: cfg.Store.EvidenceDir,
	})
	if err != nil {
		callLog.Close()
		goalsDB.Close()
		return nil, fmt.Errorf("初始化 HTTP 服务失败: %w", err)
	}

	return &App{
		cfg:     cfg,
		server:  server,
		prompts: prompts,
		goalsDB: goalsDB,
		callLog: callLog,
	}, nil
}
