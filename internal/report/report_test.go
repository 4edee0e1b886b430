package report

import (
	"reflect"
	"testing"

	"globlex/internal/calculator"
	"globlex/internal/model"
)

func buildSample(t *testing.T, mutate func(*model.CostConfig)) (model.CostConfig, *Report) {
	t.Helper()
	cfg := model.DefaultCostConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	res, err := calculator.ComputeUnitEconomics(cfg, cfg.ExwCost, 26250)
	if err != nil {
		t.Fatalf("ComputeUnitEconomics failed: %v", err)
	}
	rep, err := Build(cfg, res)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return cfg, rep
}

func TestBuild_SectionOrder(t *testing.T) {
	_, rep := buildSample(t, nil)

	var names []string
	for _, s := range rep.Sections {
		names = append(names, s.Name)
	}
	want := []string{SectionRevenue, SectionCOGS, SectionGrossProfit, SectionOpex, SectionNetProfit}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("sections = %v, want %v", names, want)
	}
}

func TestBuild_RevenueTable(t *testing.T) {
	_, rep := buildSample(t, nil)

	rev, ok := rep.Section(SectionRevenue)
	if !ok {
		t.Fatal("missing revenue section")
	}
	table := rev.Table()
	if !reflect.DeepEqual(table[0], []string{"Metric", "EUR", "SAR", "AED"}) {
		t.Fatalf("header = %v", table[0])
	}
	if got := table[2]; got[0] != "Number of Units Sold" || got[1] != "26,250 units" || got[3] != "26,250 units" {
		t.Fatalf("units row = %v", got)
	}
	if got := table[3][1]; got != "25,211.25 EUR" {
		t.Fatalf("direct revenue EUR = %q", got)
	}
}

func TestBuild_MarginOnlyInBaseColumn(t *testing.T) {
	_, rep := buildSample(t, nil)

	gp, _ := rep.Section(SectionGrossProfit)
	margin := gp.Rows[1]
	if margin.Metric != "Gross Margin (Direct Revenue only)" {
		t.Fatalf("metric = %q", margin.Metric)
	}
	if margin.Cells[1].Text != "-" || margin.Cells[2].Text != "-" {
		t.Fatalf("non-base margin cells should be '-', got %+v", margin.Cells)
	}
	if margin.Cells[0].Text != "17.70%" {
		t.Fatalf("base margin = %q, want 17.70%%", margin.Cells[0].Text)
	}
}

func TestBuild_OpexSection(t *testing.T) {
	_, rep := buildSample(t, func(c *model.CostConfig) {
		c.Expenses.Salaries = 1000
	})

	opex, _ := rep.Section(SectionOpex)
	if !reflect.DeepEqual(opex.Header(), []string{"Metric", "AED", "EUR", "SAR"}) {
		t.Fatalf("opex header = %v", opex.Header())
	}
	if len(opex.Rows) != 8 {
		t.Fatalf("opex rows = %d, want 8", len(opex.Rows))
	}
	// 明细按录入值展示，合计年化
	if opex.Rows[0].Cells[0].Text != "1,000.00 AED" {
		t.Errorf("salaries AED = %q", opex.Rows[0].Cells[0].Text)
	}
	total := opex.Rows[7]
	if total.Metric != "Total Operating Expenses" || total.Cells[0].Value != 12000 {
		t.Errorf("total row = %+v", total)
	}
	aedRate, sarRate := 3.67, 3.75
	if total.Cells[2].Value != total.Cells[0].Value/(aedRate/sarRate) {
		t.Errorf("total SAR = %v", total.Cells[2].Value)
	}

	// 工资、房租、水电按月录入，其余与合计按年
	for i, row := range opex.Rows {
		want := PeriodAnnual
		if i < 3 {
			want = PeriodMonthly
		}
		if row.Period != want {
			t.Errorf("%s period = %q, want %q", row.Metric, row.Period, want)
		}
	}
}

func TestBuildBatchTable(t *testing.T) {
	cfg := model.DefaultCostConfig()
	results, err := calculator.ComputeBatch(cfg, []model.ProductRow{
		{Name: "A", UnitCost: 0.64, Units: 26250},
		{Name: "B", UnitCost: 1.2, Units: 1000},
	})
	if err != nil {
		t.Fatalf("ComputeBatch failed: %v", err)
	}

	table, err := BuildBatchTable(cfg.Currencies(), results)
	if err != nil {
		t.Fatalf("BuildBatchTable failed: %v", err)
	}
	if len(table.Columns) != 1+10*3 {
		t.Fatalf("columns = %d", len(table.Columns))
	}
	for _, want := range []string{
		"Selling Price per Unit (EUR)",
		"Gross Profit (Direct Revenue only, SAR)",
		"Net Profit (Direct + Revenue Share, AED)",
		"Operating Expenses (SAR)",
	} {
		if _, ok := table.Column(want); !ok {
			t.Errorf("missing column %q", want)
		}
	}

	col, _ := table.Column("Direct Revenue (EUR)")
	if col[0] != results[0].Base.DirectRevenue || col[1] != results[1].Base.DirectRevenue {
		t.Errorf("direct revenue column = %v", col)
	}
	if table.Names[1] != "B" {
		t.Errorf("names = %v", table.Names)
	}
}
