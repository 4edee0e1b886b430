package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"globlex/internal/calculator"
	"globlex/internal/model"
)

// effectiveConfig 默认参数：store 中保存的优先，否则使用 config.toml
func (h *Handler) effectiveConfig() (model.CostConfig, error) {
	cfg, ok, err := h.store.GetCostConfig()
	if err != nil {
		return model.CostConfig{}, err
	}
	if !ok {
		return cloneConfig(h.defaults), nil
	}
	return normalizeConfig(cfg), nil
}

// cloneConfig 深拷贝，避免请求解码时修改共享的 map/slice
func cloneConfig(cfg model.CostConfig) model.CostConfig {
	out := cfg
	out.Rates = cfg.Rates.Clone()
	out.DisplayCurrencies = append([]model.Currency(nil), cfg.DisplayCurrencies...)
	return out
}

// normalizeConfig 补齐货币相关缺省值
func normalizeConfig(cfg model.CostConfig) model.CostConfig {
	if cfg.Rates.Base == "" {
		cfg.Rates.Base = model.CurrencyEUR
	}
	cfg.Rates.Base = model.ParseCurrency(string(cfg.Rates.Base))
	if cfg.Rates.Multipliers == nil {
		cfg.Rates.Multipliers = model.DefaultCurrencyRates().Multipliers
	}
	if cfg.Expenses.Currency == "" {
		cfg.Expenses.Currency = model.CurrencyAED
	}
	cfg.Expenses.Currency = model.ParseCurrency(string(cfg.Expenses.Currency))
	for i, cur := range cfg.DisplayCurrencies {
		cfg.DisplayCurrencies[i] = model.ParseCurrency(string(cur))
	}
	return cfg
}

// ConfigResponse 配置响应
type ConfigResponse struct {
	Config     model.CostConfig `json:"config"`
	Currencies []model.Currency `json:"currencies"`
	Saved      bool             `json:"saved"`
}

// GetConfig 获取默认成本参数
// GET /api/config
func (h *Handler) GetConfig(c *gin.Context) {
	_, saved, err := h.store.GetCostConfig()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "获取配置失败"})
		return
	}
	cfg, err := h.effectiveConfig()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "获取配置失败"})
		return
	}
	c.JSON(http.StatusOK, ConfigResponse{
		Config:     cfg,
		Currencies: cfg.Currencies(),
		Saved:      saved,
	})
}

// UpdateConfig 保存默认成本参数（未提供的字段保持原值）
// PUT /api/config
func (h *Handler) UpdateConfig(c *gin.Context) {
	cfg, err := h.effectiveConfig()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "获取配置失败"})
		return
	}
	if err := c.ShouldBindJSON(&cfg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的 JSON"})
		return
	}
	cfg = normalizeConfig(cfg)

	if issues := calculator.ValidateConfig(cfg); len(issues) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "参数校验失败", "issues": issues})
		return
	}

	if err := h.store.SetCostConfig(cfg); err != nil {
		log.Error().Err(err).Msg("save cost config failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "保存配置失败"})
		return
	}

	c.JSON(http.StatusOK, ConfigResponse{
		Config:     cfg,
		Currencies: cfg.Currencies(),
		Saved:      true,
	})
}
