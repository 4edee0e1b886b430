package v1

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"globlex/internal/calculator"
	"globlex/internal/model"
	"globlex/internal/store"
)

// ScenarioRequest 新建/更新方案请求
type ScenarioRequest struct {
	Name     string            `json:"name"`
	Config   *model.CostConfig `json:"config"`
	UnitCost *float64          `json:"unitCost"`
	Units    *int              `json:"units"`
}

// ListScenarios 方案列表
// GET /api/scenarios
func (h *Handler) ListScenarios(c *gin.Context) {
	list, err := h.store.ListScenarios()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "获取方案列表失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"scenarios": list, "total": len(list)})
}

// CreateScenario 新建方案
// POST /api/scenarios
func (h *Handler) CreateScenario(c *gin.Context) {
	base, err := h.effectiveConfig()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "获取配置失败"})
		return
	}

	sc := &model.Scenario{Config: base, UnitCost: base.ExwCost}
	if err := h.applyScenarioRequest(c, sc); err != nil {
		respondError(c, err)
		return
	}

	if err := h.store.CreateScenario(sc); err != nil {
		h.respondStoreError(c, err, "保存方案失败")
		return
	}
	log.Info().Str("scenario", sc.ID).Str("name", sc.Name).Msg("scenario created")
	c.JSON(http.StatusCreated, sc)
}

// GetScenario 方案详情
// GET /api/scenarios/:id
func (h *Handler) GetScenario(c *gin.Context) {
	sc, err := h.store.GetScenario(c.Param("id"))
	if err != nil {
		h.respondStoreError(c, err, "获取方案失败")
		return
	}
	c.JSON(http.StatusOK, sc)
}

// UpdateScenario 更新方案（未提供的字段保持原值）
// PUT /api/scenarios/:id
func (h *Handler) UpdateScenario(c *gin.Context) {
	sc, err := h.store.GetScenario(c.Param("id"))
	if err != nil {
		h.respondStoreError(c, err, "获取方案失败")
		return
	}

	if err := h.applyScenarioRequest(c, sc); err != nil {
		respondError(c, err)
		return
	}

	if err := h.store.UpdateScenario(sc); err != nil {
		h.respondStoreError(c, err, "保存方案失败")
		return
	}
	c.JSON(http.StatusOK, sc)
}

// DeleteScenario 删除方案
// DELETE /api/scenarios/:id
func (h *Handler) DeleteScenario(c *gin.Context) {
	if err := h.store.DeleteScenario(c.Param("id")); err != nil {
		h.respondStoreError(c, err, "删除方案失败")
		return
	}
	c.Status(http.StatusNoContent)
}

// CalculateScenario 按方案参数计算，请求体可覆盖销量与单位成本
// POST /api/scenarios/:id/calculate
func (h *Handler) CalculateScenario(c *gin.Context) {
	sc, err := h.store.GetScenario(c.Param("id"))
	if err != nil {
		h.respondStoreError(c, err, "获取方案失败")
		return
	}

	cfg := cloneConfig(normalizeConfig(sc.Config))
	unitCost := sc.UnitCost
	req := CalculateRequest{Name: sc.Name, Config: &cfg, UnitCost: &unitCost, Units: sc.Units}
	// 空请求体直接使用方案参数
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的 JSON"})
		return
	}
	if req.Config == nil {
		req.Config = &cfg
	}
	*req.Config = normalizeConfig(*req.Config)

	resp, err := compute(req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// applyScenarioRequest 解析请求并合并到 sc
func (h *Handler) applyScenarioRequest(c *gin.Context, sc *model.Scenario) error {
	cfg := cloneConfig(sc.Config)
	req := ScenarioRequest{Config: &cfg}
	if err := c.ShouldBindJSON(&req); err != nil {
		return &apiError{status: http.StatusBadRequest, message: "无效的 JSON"}
	}

	if name := strings.TrimSpace(req.Name); name != "" {
		sc.Name = name
	}
	if sc.Name == "" {
		return &apiError{status: http.StatusBadRequest, message: "方案名称不能为空"}
	}
	if req.Config != nil {
		sc.Config = normalizeConfig(*req.Config)
	}
	if req.UnitCost != nil {
		sc.UnitCost = *req.UnitCost
	}
	if req.Units != nil {
		sc.Units = *req.Units
	}

	issues := calculator.ValidateConfig(sc.Config)
	if sc.Units < 0 {
		issues = append(issues, "units must be >= 0")
	}
	if sc.UnitCost < 0 {
		issues = append(issues, "unitCost must be >= 0")
	}
	if len(issues) > 0 {
		return &apiError{status: http.StatusBadRequest, message: "参数校验失败", issues: issues}
	}
	return nil
}

func (h *Handler) respondStoreError(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "方案不存在"})
	case errors.Is(err, store.ErrDuplicateName):
		c.JSON(http.StatusConflict, gin.H{"error": "方案名称已存在"})
	default:
		log.Error().Err(err).Msg(message)
		c.JSON(http.StatusInternalServerError, gin.H{"error": message})
	}
}
