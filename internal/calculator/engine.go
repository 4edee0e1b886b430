package calculator

import (
	"errors"
	"fmt"
	"math"

	"globlex/internal/model"
)

var (
	// ErrInvalidUnits 销量必须大于 0
	ErrInvalidUnits = errors.New("units must be > 0")
	// ErrInvalidUnitCost 单位成本必须为非负有限数
	ErrInvalidUnitCost = errors.New("unit cost must be a finite number >= 0")
	// ErrMissingRate 报表货币缺少有效汇率
	ErrMissingRate = errors.New("missing conversion rate")
)

// ComputeUnitEconomics 计算单个产品的完整盈利分析
//
// 计算顺序固定，保证相同输入得到逐位一致的结果。运营费用作为期间固定成本整笔扣除，不按件分摊。
func ComputeUnitEconomics(cfg model.CostConfig, unitCost float64, units int) (model.ProductResult, error) {
	if units <= 0 {
		return model.ProductResult{}, fmt.Errorf("%w (got %d)", ErrInvalidUnits, units)
	}
	if math.IsNaN(unitCost) || math.IsInf(unitCost, 0) || unitCost < 0 {
		return model.ProductResult{}, fmt.Errorf("%w (got %v)", ErrInvalidUnitCost, unitCost)
	}

	n := float64(units)

	amortized := (cfg.FreightCost + cfg.FOBCost) / n
	basePrice := unitCost + amortized + cfg.PackagingCost + cfg.WarehousingCost
	sellingPrice := basePrice * (1 + cfg.MarkupPercent/100)
	shareUnit := sellingPrice * (cfg.RevenueSharePercent / 100)

	directRevenue := sellingPrice * n
	shareTotal := shareUnit * n
	totalRevenue := directRevenue + shareTotal

	totalCOGS := unitCost*n + cfg.FreightCost + cfg.FOBCost + cfg.PackagingCost*n + cfg.WarehousingCost*n

	grossDirect := directRevenue - totalCOGS
	grossTotal := totalRevenue - totalCOGS

	expenses, err := ConvertExpenses(cfg.Expenses, cfg.Rates, cfg.Currencies())
	if err != nil {
		return model.ProductResult{}, err
	}
	opexBase := expenses[cfg.Rates.Base]

	netDirect := grossDirect - opexBase
	netTotal := grossTotal - opexBase

	base := model.Figures{
		SellingPrice:        sellingPrice,
		RevenueSharePerUnit: shareUnit,
		DirectRevenue:       directRevenue,
		RevenueShareTotal:   shareTotal,
		TotalRevenue:        totalRevenue,
		UnitCost:            unitCost,
		FreightAndLogistics: cfg.FreightAndLogistics(),
		PackagingCost:       cfg.PackagingCost,
		WarehousingCost:     cfg.WarehousingCost,
		TotalCOGS:           totalCOGS,
		GrossProfitDirect:   grossDirect,
		GrossProfitTotal:    grossTotal,
		OperatingExpense:    opexBase,
		NetProfitDirect:     netDirect,
		NetProfitTotal:      netTotal,
	}

	views, err := convertFigures(base, expenses, cfg.Rates, cfg.Currencies())
	if err != nil {
		return model.ProductResult{}, err
	}

	expenseCurrency := expenseCurrencyOf(cfg)

	return model.ProductResult{
		UnitCost:                  unitCost,
		Units:                     units,
		AmortizedLogisticsPerUnit: amortized,
		BasePrice:                 basePrice,
		Margins: model.Margins{
			GrossDirect: margin(grossDirect, directRevenue),
			GrossTotal:  margin(grossTotal, totalRevenue),
			NetDirect:   margin(netDirect, directRevenue),
			NetTotal:    margin(netTotal, totalRevenue),
		},
		BaseCurrency:    cfg.Rates.Base,
		Base:            base,
		Views:           views,
		ExpenseCurrency: expenseCurrency,
		ExpenseTotal:    cfg.Expenses.AnnualTotal(),
	}, nil
}

// margin 利润率（百分数），收入基数为 0 时返回 0
func margin(profit, revenue float64) float64 {
	if revenue == 0 {
		return 0
	}
	return profit / revenue * 100
}

func expenseCurrencyOf(cfg model.CostConfig) model.Currency {
	if cfg.Expenses.Currency == "" {
		return model.CurrencyAED
	}
	return cfg.Expenses.Currency
}
