package report

import (
	"fmt"

	"globlex/internal/calculator"
	"globlex/internal/model"
	"globlex/internal/util"
)

// 报表分组名称（与导出 sheet 名一致）
const (
	SectionRevenue     = "Revenue"
	SectionCOGS        = "COGS"
	SectionGrossProfit = "Gross Profit"
	SectionOpex        = "Operating Expenses"
	SectionNetProfit   = "Net Profit"
)

// Cell 报表单元格：原始数值 + 展示文本
type Cell struct {
	Value float64 `json:"value"`
	Text  string  `json:"text"`
}

// 行类型，决定导出时的数字格式
const (
	KindMoney   = "money"
	KindUnits   = "units"
	KindPercent = "percent"
)

// 运营费用行的录入周期
const (
	PeriodMonthly = "monthly"
	PeriodAnnual  = "annual"
)

// Row 指标行
type Row struct {
	Metric string `json:"metric"`
	Kind   string `json:"kind"`
	Period string `json:"period,omitempty"` // 仅运营费用明细行
	Cells  []Cell `json:"cells"`
}

// Section 指标分组，Currencies 为列顺序
type Section struct {
	Name       string           `json:"name"`
	Title      string           `json:"title"`
	Currencies []model.Currency `json:"currencies"`
	Rows       []Row            `json:"rows"`
}

// Header 表头：Metric + 货币列
func (s Section) Header() []string {
	h := make([]string, 0, len(s.Currencies)+1)
	h = append(h, "Metric")
	for _, c := range s.Currencies {
		h = append(h, string(c))
	}
	return h
}

// Table 转为纯文本表格（含表头）
func (s Section) Table() [][]string {
	out := make([][]string, 0, len(s.Rows)+1)
	out = append(out, s.Header())
	for _, r := range s.Rows {
		line := make([]string, 0, len(r.Cells)+1)
		line = append(line, r.Metric)
		for _, c := range r.Cells {
			line = append(line, c.Text)
		}
		out = append(out, line)
	}
	return out
}

// Report 单产品报表
type Report struct {
	ProductName string              `json:"productName,omitempty"`
	Sections    []Section           `json:"sections"`
	Result      model.ProductResult `json:"result"`
}

// Section 按名称查找分组
func (r *Report) Section(name string) (Section, bool) {
	for _, s := range r.Sections {
		if s.Name == name {
			return s, true
		}
	}
	return Section{}, false
}

// Build 根据计算结果生成五个报表分组
func Build(cfg model.CostConfig, res model.ProductResult) (*Report, error) {
	currencies := cfg.Currencies()

	views := make([]model.Figures, 0, len(currencies))
	for _, cur := range currencies {
		f, ok := res.In(cur)
		if !ok {
			return nil, fmt.Errorf("%w: %s", calculator.ErrMissingRate, cur)
		}
		views = append(views, f)
	}

	money := func(label string, pick func(model.Figures) float64) Row {
		row := Row{Metric: label, Kind: KindMoney, Cells: make([]Cell, len(currencies))}
		for i, cur := range currencies {
			v := pick(views[i])
			row.Cells[i] = Cell{Value: v, Text: util.FormatMoney(v, string(cur))}
		}
		return row
	}
	units := func(label string) Row {
		row := Row{Metric: label, Kind: KindUnits, Cells: make([]Cell, len(currencies))}
		for i := range currencies {
			row.Cells[i] = Cell{Value: float64(res.Units), Text: util.FormatUnits(res.Units)}
		}
		return row
	}
	// 利润率只在基准货币列展示
	percent := func(label string, v float64) Row {
		row := Row{Metric: label, Kind: KindPercent, Cells: make([]Cell, len(currencies))}
		for i := range currencies {
			if i == 0 {
				row.Cells[i] = Cell{Value: v, Text: util.FormatPercent(v)}
				continue
			}
			row.Cells[i] = Cell{Text: "-"}
		}
		return row
	}

	revenue := Section{
		Name:       SectionRevenue,
		Title:      "Revenue and Selling Price",
		Currencies: currencies,
		Rows: []Row{
			money("Selling Price per Unit", func(f model.Figures) float64 { return f.SellingPrice }),
			units("Number of Units Sold"),
			money("Direct Revenue", func(f model.Figures) float64 { return f.DirectRevenue }),
			money("Revenue Share per Unit", func(f model.Figures) float64 { return f.RevenueSharePerUnit }),
			money("Revenue Share", func(f model.Figures) float64 { return f.RevenueShareTotal }),
			money("Total Revenue", func(f model.Figures) float64 { return f.TotalRevenue }),
		},
	}

	cogs := Section{
		Name:       SectionCOGS,
		Title:      "Cost of Goods Sold (COGS)",
		Currencies: currencies,
		Rows: []Row{
			money("EXW Cost per Unit", func(f model.Figures) float64 { return f.UnitCost }),
			money("Freight and Logistics Costs", func(f model.Figures) float64 { return f.FreightAndLogistics }),
			money("Packaging and Printing Cost per Unit", func(f model.Figures) float64 { return f.PackagingCost }),
			money("Warehousing Cost per Unit", func(f model.Figures) float64 { return f.WarehousingCost }),
			money("Total COGS", func(f model.Figures) float64 { return f.TotalCOGS }),
		},
	}

	gross := Section{
		Name:       SectionGrossProfit,
		Title:      "Gross Profit",
		Currencies: currencies,
		Rows: []Row{
			money("Gross Profit (Direct Revenue only)", func(f model.Figures) float64 { return f.GrossProfitDirect }),
			percent("Gross Margin (Direct Revenue only)", res.Margins.GrossDirect),
			money("Gross Profit (Direct + Revenue Share)", func(f model.Figures) float64 { return f.GrossProfitTotal }),
			percent("Gross Margin (Direct + Revenue Share)", res.Margins.GrossTotal),
		},
	}

	opex, err := buildOpexSection(cfg)
	if err != nil {
		return nil, err
	}

	net := Section{
		Name:       SectionNetProfit,
		Title:      "Net Profit",
		Currencies: currencies,
		Rows: []Row{
			money("Net Profit (Direct Revenue only)", func(f model.Figures) float64 { return f.NetProfitDirect }),
			percent("Net Profit Margin (Direct Revenue only)", res.Margins.NetDirect),
			money("Net Profit (Direct + Revenue Share)", func(f model.Figures) float64 { return f.NetProfitTotal }),
			percent("Net Profit Margin (Direct + Revenue Share)", res.Margins.NetTotal),
		},
	}

	return &Report{
		ProductName: res.Name,
		Sections:    []Section{revenue, cogs, gross, opex, net},
		Result:      res,
	}, nil
}

// buildOpexSection 运营费用明细：费用货币列在前，各行按交叉汇率换算
func buildOpexSection(cfg model.CostConfig) (Section, error) {
	from := cfg.Expenses.Currency
	if from == "" {
		from = model.CurrencyAED
	}

	currencies := []model.Currency{from}
	for _, cur := range cfg.Currencies() {
		if cur != from {
			currencies = append(currencies, cur)
		}
	}

	lines := cfg.Expenses.Lines()
	labels := make([]string, 0, len(lines)+1)
	amounts := make([]float64, 0, len(lines)+1)
	periods := make([]string, 0, len(lines)+1)
	for _, l := range lines {
		labels = append(labels, l.Label)
		amounts = append(amounts, l.Amount)
		if l.Monthly {
			periods = append(periods, PeriodMonthly)
		} else {
			periods = append(periods, PeriodAnnual)
		}
	}
	// 合计为年化值
	labels = append(labels, "Total Operating Expenses")
	amounts = append(amounts, cfg.Expenses.AnnualTotal())
	periods = append(periods, PeriodAnnual)

	rows := make([]Row, len(labels))
	for i, label := range labels {
		row := Row{Metric: label, Kind: KindMoney, Period: periods[i], Cells: make([]Cell, len(currencies))}
		for j, cur := range currencies {
			v, err := calculator.ConvertFromExpenseCurrency(amounts[i], cfg.Rates, from, cur)
			if err != nil {
				return Section{}, err
			}
			row.Cells[j] = Cell{Value: v, Text: util.FormatMoney(v, string(cur))}
		}
		rows[i] = row
	}

	return Section{
		Name:       SectionOpex,
		Title:      "Operating Expenses",
		Currencies: currencies,
		Rows:       rows,
	}, nil
}
