package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"globlex/internal/calculator"
	"globlex/internal/model"
	"globlex/internal/report"
)

// CalculateRequest 单产品计算请求
//
// Config 中未提供的字段沿用默认参数；UnitCost 为空时使用 Config.ExwCost。
type CalculateRequest struct {
	Name     string            `json:"name"`
	Config   *model.CostConfig `json:"config"`
	UnitCost *float64          `json:"unitCost"`
	Units    int               `json:"units"`
}

// CalculateResponse 单产品计算响应
type CalculateResponse struct {
	Result model.ProductResult `json:"result"`
	Report *report.Report      `json:"report"`
}

// apiError 带 HTTP 状态码的处理错误
type apiError struct {
	status  int
	message string
	issues  []string
}

func (e *apiError) Error() string { return e.message }

func (e *apiError) respond(c *gin.Context) {
	body := gin.H{"error": e.message}
	if len(e.issues) > 0 {
		body["issues"] = e.issues
	}
	c.JSON(e.status, body)
}

func respondError(c *gin.Context, err error) {
	var ae *apiError
	if errors.As(err, &ae) {
		ae.respond(c)
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

// bindCalculateRequest 解析请求体，base 为未提供字段的缺省值
func bindCalculateRequest(c *gin.Context, base model.CostConfig) (CalculateRequest, error) {
	cfg := cloneConfig(base)
	req := CalculateRequest{Config: &cfg}
	if err := c.ShouldBindJSON(&req); err != nil {
		return req, &apiError{status: http.StatusBadRequest, message: "无效的 JSON"}
	}
	if req.Config == nil {
		req.Config = &cfg
	}
	*req.Config = normalizeConfig(*req.Config)
	return req, nil
}

// compute 校验参数并计算，返回报表
func compute(req CalculateRequest) (*CalculateResponse, error) {
	cfg := *req.Config
	if issues := calculator.ValidateConfig(cfg); len(issues) > 0 {
		return nil, &apiError{status: http.StatusBadRequest, message: "参数校验失败", issues: issues}
	}

	unitCost := cfg.ExwCost
	if req.UnitCost != nil {
		unitCost = *req.UnitCost
	}
	row := model.ProductRow{Name: req.Name, UnitCost: unitCost, Units: req.Units}
	if issues := calculator.ValidateRow(row); len(issues) > 0 {
		return nil, &apiError{status: http.StatusBadRequest, message: "输入校验失败", issues: issues}
	}

	res, err := calculator.ComputeUnitEconomics(cfg, row.UnitCost, row.Units)
	if err != nil {
		return nil, &apiError{status: http.StatusBadRequest, message: err.Error()}
	}
	res.Name = req.Name

	rep, err := report.Build(cfg, res)
	if err != nil {
		return nil, &apiError{status: http.StatusBadRequest, message: err.Error()}
	}
	return &CalculateResponse{Result: res, Report: rep}, nil
}

// Calculate 单产品计算
// POST /api/calculate
func (h *Handler) Calculate(c *gin.Context) {
	base, err := h.effectiveConfig()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "获取配置失败"})
		return
	}
	req, err := bindCalculateRequest(c, base)
	if err != nil {
		respondError(c, err)
		return
	}

	resp, err := compute(req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
