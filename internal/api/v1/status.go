package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"globlex/internal/model"
)

// StatusResponse 系统状态响应
type StatusResponse struct {
	ScenarioCount int              `json:"scenarioCount"`
	RunCount      int              `json:"runCount"`
	BaseCurrency  model.Currency   `json:"baseCurrency"`
	Currencies    []model.Currency `json:"currencies"`
	LastRunAt     *time.Time       `json:"lastRunAt,omitempty"`
}

// GetStatus 获取系统状态
// GET /api/status
func (h *Handler) GetStatus(c *gin.Context) {
	cfg, err := h.effectiveConfig()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "读取默认参数失败"})
		return
	}

	resp := StatusResponse{
		BaseCurrency: cfg.Rates.Base,
		Currencies:   cfg.Currencies(),
	}

	if n, err := h.store.CountScenarios(); err == nil {
		resp.ScenarioCount = n
	} else {
		log.Warn().Err(err).Msg("count scenarios failed")
	}
	if n, err := h.store.CountBatchRuns(); err == nil {
		resp.RunCount = n
	} else {
		log.Warn().Err(err).Msg("count batch runs failed")
	}
	if runs, err := h.store.ListBatchRuns(1); err == nil && len(runs) > 0 {
		resp.LastRunAt = &runs[0].CreatedAt
	}

	c.JSON(http.StatusOK, resp)
}
