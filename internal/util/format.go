package util

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// RoundMoney 四舍五入到两位小数（远离零）
func RoundMoney(value float64) float64 {
	return decimal.NewFromFloat(value).Round(2).InexactFloat64()
}

// FormatAmount 千分位两位小数，如 1,234.56
func FormatAmount(value float64) string {
	return humanize.FormatFloat("#,###.##", RoundMoney(value))
}

// FormatMoney 金额 + 货币代码，如 1,234.56 EUR
func FormatMoney(value float64, currency string) string {
	return FormatAmount(value) + " " + currency
}

// FormatUnits 件数，如 26,250 units
func FormatUnits(units int) string {
	return humanize.Comma(int64(units)) + " units"
}

// FormatPercent 百分数（输入已是百分值），如 17.70%
func FormatPercent(value float64) string {
	return fmt.Sprintf("%s%%", decimal.NewFromFloat(value).StringFixed(2))
}
