package calculator

import (
	"fmt"

	"globlex/internal/model"
)

// CrossRate 间接汇率 rate[from] / rate[to]
//
// 费用货币到其他货币不使用直接市场汇率，而是经基准货币的乘数相除得到。
func CrossRate(rates model.CurrencyRates, from, to model.Currency) (float64, error) {
	fromRate, ok := rates.Rate(from)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrMissingRate, from)
	}
	toRate, ok := rates.Rate(to)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrMissingRate, to)
	}
	return fromRate / toRate, nil
}

// ConvertFromExpenseCurrency 将以费用货币计价的金额换算到目标货币
//
//	基准货币:   value / rate[from]
//	费用货币:   value
//	其他货币 X: value / (rate[from] / rate[X])
func ConvertFromExpenseCurrency(value float64, rates model.CurrencyRates, from, to model.Currency) (float64, error) {
	if to == from {
		return value, nil
	}
	if to == rates.Base {
		fromRate, ok := rates.Rate(from)
		if !ok {
			return 0, fmt.Errorf("%w: %s", ErrMissingRate, from)
		}
		return value / fromRate, nil
	}
	cross, err := CrossRate(rates, from, to)
	if err != nil {
		return 0, err
	}
	return value / cross, nil
}

// ConvertExpenses 计算年度运营费用在各货币下的金额（始终包含基准货币与费用货币）
func ConvertExpenses(e model.OperatingExpenses, rates model.CurrencyRates, currencies []model.Currency) (map[model.Currency]float64, error) {
	from := e.Currency
	if from == "" {
		from = model.CurrencyAED
	}
	total := e.AnnualTotal()

	targets := append([]model.Currency{rates.Base, from}, currencies...)
	out := make(map[model.Currency]float64, len(targets))
	for _, cur := range targets {
		if _, done := out[cur]; done {
			continue
		}
		v, err := ConvertFromExpenseCurrency(total, rates, from, cur)
		if err != nil {
			return nil, err
		}
		out[cur] = v
	}
	return out, nil
}

// convertFigures 生成各货币视图；运营费用取交叉汇率换算值，其余金额按乘数线性换算
func convertFigures(base model.Figures, expenses map[model.Currency]float64, rates model.CurrencyRates, currencies []model.Currency) (map[model.Currency]model.Figures, error) {
	views := make(map[model.Currency]model.Figures, len(currencies))
	for _, cur := range currencies {
		rate, ok := rates.Rate(cur)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingRate, cur)
		}
		f := base.Scale(rate)
		f.OperatingExpense = expenses[cur]
		views[cur] = f
	}
	return views, nil
}
