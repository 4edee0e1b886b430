package calculator

import "globlex/internal/model"

// Summary 批量结果汇总（用于看板）
type Summary struct {
	ProductCount int   `json:"productCount"`
	TotalUnits   int64 `json:"totalUnits"`

	DirectRevenue     float64 `json:"directRevenue"`
	RevenueShareTotal float64 `json:"revenueShareTotal"`
	TotalRevenue      float64 `json:"totalRevenue"`
	TotalCOGS         float64 `json:"totalCogs"`
	GrossProfitDirect float64 `json:"grossProfitDirect"`
	GrossProfitTotal  float64 `json:"grossProfitTotal"`
	NetProfitDirect   float64 `json:"netProfitDirect"`
	NetProfitTotal    float64 `json:"netProfitTotal"`

	// OperatingExpenseCharged 每行重复扣除的运营费用之和（= 单笔费用 × 产品数）
	OperatingExpenseCharged float64 `json:"operatingExpenseCharged"`

	MeanSellingPrice float64 `json:"meanSellingPrice"`
	GrossMargin      float64 `json:"grossMargin"` // 汇总毛利率 (%)，基于直接收入
}

// Summarize 汇总基准货币下的批量结果
func Summarize(results []model.ProductResult) Summary {
	s := Summary{ProductCount: len(results)}

	var sellingPriceSum float64
	for _, r := range results {
		s.TotalUnits += int64(r.Units)
		s.DirectRevenue += r.Base.DirectRevenue
		s.RevenueShareTotal += r.Base.RevenueShareTotal
		s.TotalRevenue += r.Base.TotalRevenue
		s.TotalCOGS += r.Base.TotalCOGS
		s.GrossProfitDirect += r.Base.GrossProfitDirect
		s.GrossProfitTotal += r.Base.GrossProfitTotal
		s.NetProfitDirect += r.Base.NetProfitDirect
		s.NetProfitTotal += r.Base.NetProfitTotal
		s.OperatingExpenseCharged += r.Base.OperatingExpense
		sellingPriceSum += r.Base.SellingPrice
	}

	if s.ProductCount > 0 {
		s.MeanSellingPrice = sellingPriceSum / float64(s.ProductCount)
	}
	s.GrossMargin = margin(s.GrossProfitDirect, s.DirectRevenue)

	return s
}
