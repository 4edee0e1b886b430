package model

// ProductRow 批量计算的单行输入
type ProductRow struct {
	Line     int     `json:"line,omitempty"` // 源表格行号（1 起），API 输入为 0
	Name     string  `json:"name"`
	UnitCost float64 `json:"unitCost"`
	Units    int     `json:"units"`
}

// Figures 某一货币下的金额数据
type Figures struct {
	SellingPrice        float64 `json:"sellingPrice"`
	RevenueSharePerUnit float64 `json:"revenueSharePerUnit"`
	DirectRevenue       float64 `json:"directRevenue"`
	RevenueShareTotal   float64 `json:"revenueShareTotal"`
	TotalRevenue        float64 `json:"totalRevenue"`

	UnitCost            float64 `json:"unitCost"`
	FreightAndLogistics float64 `json:"freightAndLogistics"`
	PackagingCost       float64 `json:"packagingCost"`
	WarehousingCost     float64 `json:"warehousingCost"`
	TotalCOGS           float64 `json:"totalCogs"`

	GrossProfitDirect float64 `json:"grossProfitDirect"`
	GrossProfitTotal  float64 `json:"grossProfitTotal"`

	OperatingExpense float64 `json:"operatingExpense"`

	NetProfitDirect float64 `json:"netProfitDirect"`
	NetProfitTotal  float64 `json:"netProfitTotal"`
}

// Scale 按乘数换算全部金额
func (f Figures) Scale(rate float64) Figures {
	return Figures{
		SellingPrice:        f.SellingPrice * rate,
		RevenueSharePerUnit: f.RevenueSharePerUnit * rate,
		DirectRevenue:       f.DirectRevenue * rate,
		RevenueShareTotal:   f.RevenueShareTotal * rate,
		TotalRevenue:        f.TotalRevenue * rate,
		UnitCost:            f.UnitCost * rate,
		FreightAndLogistics: f.FreightAndLogistics * rate,
		PackagingCost:       f.PackagingCost * rate,
		WarehousingCost:     f.WarehousingCost * rate,
		TotalCOGS:           f.TotalCOGS * rate,
		GrossProfitDirect:   f.GrossProfitDirect * rate,
		GrossProfitTotal:    f.GrossProfitTotal * rate,
		OperatingExpense:    f.OperatingExpense * rate,
		NetProfitDirect:     f.NetProfitDirect * rate,
		NetProfitTotal:      f.NetProfitTotal * rate,
	}
}

// Margins 利润率（百分数）
type Margins struct {
	GrossDirect float64 `json:"grossDirect"`
	GrossTotal  float64 `json:"grossTotal"`
	NetDirect   float64 `json:"netDirect"`
	NetTotal    float64 `json:"netTotal"`
}

// ProductResult 单个产品的盈利分析结果（派生数据，不持久化）
type ProductResult struct {
	Line     int     `json:"line,omitempty"`
	Name     string  `json:"name"`
	UnitCost float64 `json:"unitCost"`
	Units    int     `json:"units"`

	AmortizedLogisticsPerUnit float64 `json:"amortizedLogisticsPerUnit"`
	BasePrice                 float64 `json:"basePrice"`

	Margins Margins `json:"margins"`

	BaseCurrency Currency             `json:"baseCurrency"`
	Base         Figures              `json:"base"`
	Views        map[Currency]Figures `json:"views"`

	// ExpenseCurrency 运营费用录入货币，ExpenseTotal 为该货币下的年度合计
	ExpenseCurrency Currency `json:"expenseCurrency"`
	ExpenseTotal    float64  `json:"expenseTotal"`
}

// In 获取指定货币视图
func (r ProductResult) In(c Currency) (Figures, bool) {
	if c == r.BaseCurrency {
		return r.Base, true
	}
	f, ok := r.Views[c]
	return f, ok
}
