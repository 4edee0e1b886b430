package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"globlex/internal/api/v1"
	"globlex/internal/config"
	"globlex/internal/store"
)

// Server HTTP服务器
type Server struct {
	router *gin.Engine
	store  *store.Store
	v1     *v1.Handler
}

// NewServer 创建服务器并打开数据库
func NewServer(cfg *config.AppConfig) (*Server, error) {
	if _, err := config.EnsureDataDir(cfg); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	sqliteStore, err := store.New(config.DBPath(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return New(cfg, sqliteStore), nil
}

// New 基于已有 store 创建服务器
func New(cfg *config.AppConfig, st *store.Store) *Server {
	if !cfg.Server.DevMode {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		router: gin.New(),
		store:  st,
		v1:     v1.NewHandler(st, cfg),
	}
	s.setupRoutes(cfg)
	return s
}

// setupRoutes 设置路由
func (s *Server) setupRoutes(cfg *config.AppConfig) {
	s.router.Use(gin.Recovery(), requestLogger(), cors())

	var upload []gin.HandlerFunc
	if cfg.Import.RateLimit > 0 {
		upload = append(upload, RateLimiter(RateLimiterConfig{
			Rate:      rate.Limit(cfg.Import.RateLimit),
			Burst:     cfg.Import.Burst,
			ExpiresIn: 3 * time.Minute,
		}))
	}

	api := s.router.Group("/api")
	{
		s.v1.RegisterRoutes(api, upload...)
	}
	// 兼容带版本号的前缀
	s.v1.RegisterRoutes(s.router.Group("/api/v1"), upload...)

	s.router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"service": "globlex", "api": "/api"})
	})
	s.router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "接口不存在"})
	})
}

// Handler 返回 http.Handler（用于测试）
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run 启动服务器
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

// Close 关闭数据库
func (s *Server) Close() error {
	return s.store.Close()
}

// GetStore 获取存储（用于测试）
func (s *Server) GetStore() *store.Store {
	return s.store
}
