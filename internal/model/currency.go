package model

import "strings"

// Currency 货币代码
type Currency string

const (
	CurrencyEUR Currency = "EUR"
	CurrencySAR Currency = "SAR"
	CurrencyAED Currency = "AED"
)

// DefaultDisplayCurrencies 报表默认展示顺序（基准货币在前）
var DefaultDisplayCurrencies = []Currency{CurrencyEUR, CurrencySAR, CurrencyAED}

// ParseCurrency 规范化货币代码
func ParseCurrency(s string) Currency {
	return Currency(strings.ToUpper(strings.TrimSpace(s)))
}

// CurrencyRates 汇率表：1 单位基准货币折合多少目标货币
//
// 汇率是单向乘数，基准货币隐含为 1.0。
type CurrencyRates struct {
	Base        Currency             `json:"base" toml:"base"`
	Multipliers map[Currency]float64 `json:"multipliers" toml:"multipliers"`
}

// DefaultCurrencyRates 默认汇率（EUR 基准）
func DefaultCurrencyRates() CurrencyRates {
	return CurrencyRates{
		Base: CurrencyEUR,
		Multipliers: map[Currency]float64{
			CurrencySAR: 3.75,
			CurrencyAED: 3.67,
		},
	}
}

// Rate 获取目标货币乘数，基准货币固定为 1
func (r CurrencyRates) Rate(c Currency) (float64, bool) {
	if c == r.Base {
		return 1, true
	}
	v, ok := r.Multipliers[c]
	if !ok || v <= 0 {
		return 0, false
	}
	return v, true
}

// Clone 深拷贝
func (r CurrencyRates) Clone() CurrencyRates {
	out := CurrencyRates{Base: r.Base, Multipliers: make(map[Currency]float64, len(r.Multipliers))}
	for k, v := range r.Multipliers {
		out.Multipliers[k] = v
	}
	return out
}
