package report

import (
	"fmt"

	"globlex/internal/model"
)

type batchMetric struct {
	label     string
	qualifier bool // 标签带括号限定词，货币并入括号
	pick      func(model.Figures) float64
}

var batchMetrics = []batchMetric{
	{label: "Selling Price per Unit", pick: func(f model.Figures) float64 { return f.SellingPrice }},
	{label: "Direct Revenue", pick: func(f model.Figures) float64 { return f.DirectRevenue }},
	{label: "Revenue Share", pick: func(f model.Figures) float64 { return f.RevenueShareTotal }},
	{label: "Total Revenue", pick: func(f model.Figures) float64 { return f.TotalRevenue }},
	{label: "Total COGS", pick: func(f model.Figures) float64 { return f.TotalCOGS }},
	{label: "Gross Profit (Direct Revenue only", qualifier: true, pick: func(f model.Figures) float64 { return f.GrossProfitDirect }},
	{label: "Gross Profit (Direct + Revenue Share", qualifier: true, pick: func(f model.Figures) float64 { return f.GrossProfitTotal }},
	{label: "Operating Expenses", pick: func(f model.Figures) float64 { return f.OperatingExpense }},
	{label: "Net Profit (Direct Revenue only", qualifier: true, pick: func(f model.Figures) float64 { return f.NetProfitDirect }},
	{label: "Net Profit (Direct + Revenue Share", qualifier: true, pick: func(f model.Figures) float64 { return f.NetProfitTotal }},
}

// BatchTable 批量结果平铺表：每个指标 × 每种货币一列
type BatchTable struct {
	Columns []string    `json:"columns"`
	Names   []string    `json:"names"`
	Values  [][]float64 `json:"values"`
}

func columnName(m batchMetric, cur model.Currency) string {
	if m.qualifier {
		return fmt.Sprintf("%s, %s)", m.label, cur)
	}
	return fmt.Sprintf("%s (%s)", m.label, cur)
}

// BuildBatchTable 生成批量结果表
func BuildBatchTable(currencies []model.Currency, results []model.ProductResult) (*BatchTable, error) {
	t := &BatchTable{
		Columns: []string{"Product Name"},
		Names:   make([]string, 0, len(results)),
		Values:  make([][]float64, 0, len(results)),
	}
	for _, m := range batchMetrics {
		for _, cur := range currencies {
			t.Columns = append(t.Columns, columnName(m, cur))
		}
	}

	for _, r := range results {
		row := make([]float64, 0, len(batchMetrics)*len(currencies))
		for _, m := range batchMetrics {
			for _, cur := range currencies {
				f, ok := r.In(cur)
				if !ok {
					return nil, fmt.Errorf("product %q has no %s view", r.Name, cur)
				}
				row = append(row, m.pick(f))
			}
		}
		t.Names = append(t.Names, r.Name)
		t.Values = append(t.Values, row)
	}
	return t, nil
}

// Column 按列名取整列数值
func (t *BatchTable) Column(name string) ([]float64, bool) {
	idx := -1
	for i, c := range t.Columns {
		if c == name {
			idx = i - 1
			break
		}
	}
	if idx < 0 {
		return nil, false
	}
	out := make([]float64, len(t.Values))
	for i, row := range t.Values {
		out[i] = row[idx]
	}
	return out, true
}
