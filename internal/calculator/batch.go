package calculator

import (
	"fmt"
	"iter"

	"globlex/internal/model"
)

// Results 按输入顺序逐行计算，遇到第一个错误后停止
//
// 调用方负责事先过滤无效行。每一行都会扣除同一笔未分摊的年度运营费用。
func Results(cfg model.CostConfig, rows []model.ProductRow) iter.Seq2[model.ProductResult, error] {
	return func(yield func(model.ProductResult, error) bool) {
		for i, row := range rows {
			res, err := ComputeUnitEconomics(cfg, row.UnitCost, row.Units)
			if err != nil {
				yield(model.ProductResult{}, fmt.Errorf("row %d (%s): %w", rowNumber(i, row), row.Name, err))
				return
			}
			res.Line = row.Line
			res.Name = row.Name
			if !yield(res, nil) {
				return
			}
		}
	}
}

// ComputeBatch 批量计算
func ComputeBatch(cfg model.CostConfig, rows []model.ProductRow) ([]model.ProductResult, error) {
	results := make([]model.ProductResult, 0, len(rows))
	for res, err := range Results(cfg, rows) {
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}

func rowNumber(i int, row model.ProductRow) int {
	if row.Line > 0 {
		return row.Line
	}
	return i + 1
}
