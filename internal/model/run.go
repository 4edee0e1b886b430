package model

import "time"

// BatchRun 批量分析运行记录
type BatchRun struct {
	ID           string    `json:"id"`
	ScenarioID   string    `json:"scenarioId,omitempty"`
	FileName     string    `json:"fileName"`
	Sheet        string    `json:"sheet"`
	TotalRows    int       `json:"totalRows"`
	ImportedRows int       `json:"importedRows"`
	DroppedRows  int       `json:"droppedRows"`
	BaseCurrency Currency  `json:"baseCurrency"`
	TotalRevenue float64   `json:"totalRevenue"`
	NetProfit    float64   `json:"netProfit"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Scenario 保存的成本参数方案
type Scenario struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Config    CostConfig `json:"config"`
	UnitCost  float64    `json:"unitCost"`
	Units     int        `json:"units"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}
