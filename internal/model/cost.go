package model

// OperatingExpenses 固定运营费用
//
// 工资、房租、水电按月录入（年化 ×12），其余按年录入。金额以 Currency 计价（默认 AED）。
type OperatingExpenses struct {
	Currency Currency `json:"currency" toml:"currency"`

	// 月度项
	Salaries  float64 `json:"salaries" toml:"salaries"`
	Rental    float64 `json:"rental" toml:"rental"`
	Utilities float64 `json:"utilities" toml:"utilities"`

	// 年度项
	SalesTax     float64 `json:"salesTax" toml:"sales_tax"`
	Admin        float64 `json:"admin" toml:"admin"`
	Licences     float64 `json:"licences" toml:"licences"`
	Depreciation float64 `json:"depreciation" toml:"depreciation"`
}

// ExpenseLine 运营费用明细行
type ExpenseLine struct {
	Label   string  `json:"label"`
	Amount  float64 `json:"amount"`
	Monthly bool    `json:"monthly"`
}

// Lines 按报表顺序返回明细
func (e OperatingExpenses) Lines() []ExpenseLine {
	return []ExpenseLine{
		{Label: "Salaries", Amount: e.Salaries, Monthly: true},
		{Label: "Rental", Amount: e.Rental, Monthly: true},
		{Label: "Utilities", Amount: e.Utilities, Monthly: true},
		{Label: "Sales Tax", Amount: e.SalesTax},
		{Label: "Admin", Amount: e.Admin},
		{Label: "Licences", Amount: e.Licences},
		{Label: "Depreciation", Amount: e.Depreciation},
	}
}

// AnnualTotal 年度运营费用合计（以费用货币计价）
func (e OperatingExpenses) AnnualTotal() float64 {
	return (e.Salaries * 12) + (e.Rental * 12) + (e.Utilities * 12) +
		e.SalesTax + e.Admin + e.Licences + e.Depreciation
}

// CostConfig 单次计算的成本与收入参数
type CostConfig struct {
	ExwCost         float64 `json:"exwCost" toml:"exw_cost"`                 // EXW 单位成本 (EUR/件)
	FOBCost         float64 `json:"fobCost" toml:"fob_cost"`                 // FOB 总成本 (EUR)
	FreightCost     float64 `json:"freightCost" toml:"freight_cost"`         // 运费总额 (EUR)
	PackagingCost   float64 `json:"packagingCost" toml:"packaging_cost"`     // 包装印刷 (EUR/件)
	WarehousingCost float64 `json:"warehousingCost" toml:"warehousing_cost"` // 仓储 (EUR/件)

	MarkupPercent       float64 `json:"markupPercent" toml:"markup_percent"`
	RevenueSharePercent float64 `json:"revenueSharePercent" toml:"revenue_share_percent"`

	Expenses OperatingExpenses `json:"expenses" toml:"expenses"`
	Rates    CurrencyRates     `json:"rates" toml:"rates"`

	// DisplayCurrencies 报表列顺序；为空时使用 DefaultDisplayCurrencies
	DisplayCurrencies []Currency `json:"displayCurrencies,omitempty" toml:"display_currencies"`
}

// DefaultCostConfig 默认参数
func DefaultCostConfig() CostConfig {
	return CostConfig{
		ExwCost:             0.64,
		FOBCost:             1100,
		FreightCost:         2850,
		MarkupPercent:       21.5,
		RevenueSharePercent: 10,
		Expenses:            OperatingExpenses{Currency: CurrencyAED},
		Rates:               DefaultCurrencyRates(),
		DisplayCurrencies:   append([]Currency(nil), DefaultDisplayCurrencies...),
	}
}

// Currencies 返回报表使用的货币列表，基准货币始终在首位
func (c CostConfig) Currencies() []Currency {
	src := c.DisplayCurrencies
	if len(src) == 0 {
		src = DefaultDisplayCurrencies
	}
	out := []Currency{c.Rates.Base}
	for _, cur := range src {
		if cur == c.Rates.Base {
			continue
		}
		out = append(out, cur)
	}
	return out
}

// FreightAndLogistics 物流总成本（运费 + FOB）
func (c CostConfig) FreightAndLogistics() float64 {
	return c.FreightCost + c.FOBCost
}
