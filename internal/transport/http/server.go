package webhttp

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"goaly/internal/ai"
	"goaly/internal/analysis/visual"
	"goaly/internal/goals"
	"goaly/internal/logger"
	"goaly/internal/metrics"
	"goaly/internal/store/ailog"
)

// Server 提供 Goaly 的 HTTP API（目标 CRUD + AI 能力 + 统计看板）。
type Server struct {
	addr   string
	router *gin.Engine
}

// ServerConfig 描述 HTTP 服务依赖。
type ServerConfig struct {
	Addr        string
	Goals       *goals.Service
	AI          *ai.Service
	Calls       *ailog.Store
	Metrics     *metrics.Metrics
	Dashboard   *visual.Renderer
	EvidenceDir string
}

func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Goals == nil {
		return nil, errors.New("http server requires goals service")
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if cfg.Metrics != nil {
		router.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	r := newRouter(cfg)
	r.register(router.Group("/api"))
	if cfg.Dashboard != nil {
		router.GET("/dashboard", r.handleDashboard)
		router.GET("/dashboard/snapshot", r.handleDashboardSnapshot)
	}

	return &Server{addr: cfg.Addr, router: router}, nil
}

// Handler 暴露底层 handler，测试用。
func (s *Server) Handler() http.Handler {
	return s.router
}

// Addr 返回监听地址。
func (s *Server) Addr() string {
	if s == nil {
		return ""
	}
	return s.addr
}

// Start 启动 HTTP 服务，直到 ctx 取消或出现错误。
func (s *Server) Start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	srv := &http.Server{Addr: s.addr, Handler: s.router}
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	logger.Infof("HTTP 服务已启动 addr=%s", s.addr)
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// requestLogger 记录每次 API 调用，便于追踪。
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery
		client := c.ClientIP()
		c.Next()
		dur := time.Since(start)
		status := c.Writer.Status()
		fullPath := path
		if query != "" {
			fullPath = path + "?" + query
		}
		logger.Debugf("HTTP %s %s status=%d ip=%s dur=%s", method, fullPath, status, client, dur)
	}
}
