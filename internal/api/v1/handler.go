package v1

import (
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"globlex/internal/config"
	"globlex/internal/exporter"
	"globlex/internal/importer"
	"globlex/internal/model"
	"globlex/internal/store"
)

// Handler V1 API 处理器
type Handler struct {
	store          *store.Store
	cfg            *config.AppConfig
	defaults       model.CostConfig
	exporter       *exporter.Exporter
	coordinator    *importer.Coordinator
	downloads      *exportDownloadStore
	maxUploadBytes int64
}

// NewHandler 创建 V1 API 处理器
//
// 默认参数来自 config.toml 的 pricing 段，store 中保存的默认参数优先。
// 上传与导出文件写入数据目录下的 uploads/exports。
func NewHandler(st *store.Store, cfg *config.AppConfig) *Handler {
	maxUploadMB := cfg.Import.MaxUploadMB
	if maxUploadMB <= 0 {
		maxUploadMB = 20
	}
	return &Handler{
		store:          st,
		cfg:            cfg,
		defaults:       cfg.Pricing,
		exporter:       exporter.NewExporter(),
		coordinator:    importer.NewCoordinator(st),
		downloads:      newExportDownloadStore(),
		maxUploadBytes: int64(maxUploadMB) << 20,
	}
}

// RegisterRoutes 注册 V1 API 路由，upload 中间件只作用于上传接口
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, upload ...gin.HandlerFunc) {
	// 系统状态
	router.GET("/status", h.GetStatus)

	// 默认成本参数
	router.GET("/config", h.GetConfig)
	router.PUT("/config", h.UpdateConfig)

	// 单产品计算与导出
	router.POST("/calculate", h.Calculate)
	router.POST("/export/xlsx", h.ExportXLSX)
	router.POST("/export/pdf", h.ExportPDF)
	router.GET("/export/download/:token", h.DownloadExport)

	// 批量分析
	uploads := router.Group("", upload...)
	uploads.POST("/batch", h.Batch)
	uploads.POST("/batch/export/stream", h.BatchExportStream)

	// 方案管理
	router.GET("/scenarios", h.ListScenarios)
	router.POST("/scenarios", h.CreateScenario)
	router.GET("/scenarios/:id", h.GetScenario)
	router.PUT("/scenarios/:id", h.UpdateScenario)
	router.DELETE("/scenarios/:id", h.DeleteScenario)
	router.POST("/scenarios/:id/calculate", h.CalculateScenario)

	// 批量运行记录
	router.GET("/runs", h.ListRuns)
}

// dataPath 数据目录下的文件路径，子目录不存在时创建
func (h *Handler) dataPath(subdir, filename string) (string, error) {
	path := config.GetDataPath(h.cfg, subdir, filename)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", err
	}
	return path, nil
}
