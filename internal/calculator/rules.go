package calculator

import (
	"fmt"
	"math"

	"globlex/internal/model"
)

// ValidateConfig 校验成本参数（录入端在调用引擎前执行）
func ValidateConfig(cfg model.CostConfig) []string {
	errs := make([]string, 0, 4)

	nonNegative := []struct {
		name  string
		value float64
	}{
		{"exwCost", cfg.ExwCost},
		{"fobCost", cfg.FOBCost},
		{"freightCost", cfg.FreightCost},
		{"packagingCost", cfg.PackagingCost},
		{"warehousingCost", cfg.WarehousingCost},
		{"markupPercent", cfg.MarkupPercent},
		{"revenueSharePercent", cfg.RevenueSharePercent},
	}
	for _, f := range nonNegative {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			errs = append(errs, fmt.Sprintf("%s must be a finite number", f.name))
			continue
		}
		if f.value < 0 {
			errs = append(errs, fmt.Sprintf("%s must be >= 0", f.name))
		}
	}

	for _, line := range cfg.Expenses.Lines() {
		if line.Amount < 0 {
			errs = append(errs, fmt.Sprintf("operating expense %q must be >= 0", line.Label))
		}
	}

	if cfg.Rates.Base == "" {
		errs = append(errs, "base currency is required")
	}
	for _, cur := range cfg.Currencies() {
		if _, ok := cfg.Rates.Rate(cur); !ok {
			errs = append(errs, fmt.Sprintf("conversion rate for %s must be > 0", cur))
		}
	}
	if cur := expenseCurrencyOf(cfg); cur != cfg.Rates.Base {
		if _, ok := cfg.Rates.Rate(cur); !ok {
			errs = append(errs, fmt.Sprintf("expense currency %s has no conversion rate", cur))
		}
	}

	return errs
}

// ValidateRow 校验单行输入
func ValidateRow(row model.ProductRow) []string {
	errs := make([]string, 0, 2)
	if row.Units <= 0 {
		errs = append(errs, "units must be > 0")
	}
	if math.IsNaN(row.UnitCost) || math.IsInf(row.UnitCost, 0) || row.UnitCost < 0 {
		errs = append(errs, "unit cost must be a finite number >= 0")
	}
	return errs
}
