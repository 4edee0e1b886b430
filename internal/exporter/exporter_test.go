package exporter

import (
	"archive/zip"
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"globlex/internal/calculator"
	"globlex/internal/model"
	"globlex/internal/report"
)

func sampleReport(t *testing.T) *report.Report {
	t.Helper()
	cfg := model.DefaultCostConfig()
	res, err := calculator.ComputeUnitEconomics(cfg, cfg.ExwCost, 26250)
	if err != nil {
		t.Fatalf("ComputeUnitEconomics failed: %v", err)
	}
	res.Name = "Sample"
	rep, err := report.Build(cfg, res)
	if err != nil {
		t.Fatalf("report.Build failed: %v", err)
	}
	return rep
}

func sampleBatch(t *testing.T) BatchData {
	t.Helper()
	cfg := model.DefaultCostConfig()
	rows := []model.ProductRow{
		{Line: 1, Name: "A", UnitCost: 0.64, Units: 1000},
		{Line: 2, Name: "B", UnitCost: 0.80, Units: 2500},
		{Line: 3, Name: "C", UnitCost: 1.10, Units: 800},
	}
	results, err := calculator.ComputeBatch(cfg, rows)
	if err != nil {
		t.Fatalf("ComputeBatch failed: %v", err)
	}
	table, err := report.BuildBatchTable(cfg.Currencies(), results)
	if err != nil {
		t.Fatalf("BuildBatchTable failed: %v", err)
	}
	return BatchData{
		Table:        table,
		Summary:      calculator.Summarize(results),
		BaseCurrency: cfg.Rates.Base,
		DroppedRows:  1,
	}
}

func TestExportReport_Sheets(t *testing.T) {
	f, err := NewExporter().ExportReport(sampleReport(t))
	if err != nil {
		t.Fatalf("ExportReport failed: %v", err)
	}
	defer f.Close()

	want := []string{"Revenue", "COGS", "Gross Profit", "Operating Expenses", "Net Profit"}
	if got := f.GetSheetList(); !reflect.DeepEqual(got, want) {
		t.Errorf("sheets = %v, want %v", got, want)
	}

	header, _ := f.GetCellValue("Revenue", "B1")
	if header != "EUR" {
		t.Errorf("Revenue!B1 = %q, want EUR", header)
	}
	metric, _ := f.GetCellValue("Revenue", "A2")
	if metric != "Selling Price per Unit" {
		t.Errorf("Revenue!A2 = %q", metric)
	}
	units, _ := f.GetCellValue("Revenue", "B3", excelize.Options{RawCellValue: true})
	if units != "26250" {
		t.Errorf("Revenue!B3 = %q, want 26250", units)
	}

	// 运营费用表以费用货币列在前
	opexHeader, _ := f.GetCellValue("Operating Expenses", "B1")
	if opexHeader != "AED" {
		t.Errorf("Operating Expenses!B1 = %q, want AED", opexHeader)
	}

	dash, _ := f.GetCellValue("Gross Profit", "C3")
	if dash != "-" {
		t.Errorf("margin cell in non-base column = %q, want -", dash)
	}
}

func TestExportReport_Empty(t *testing.T) {
	if _, err := NewExporter().ExportReport(&report.Report{}); !errors.Is(err, ErrEmptyReport) {
		t.Errorf("err = %v, want ErrEmptyReport", err)
	}
}

func TestExportBatch_SheetsAndCharts(t *testing.T) {
	data := sampleBatch(t)

	var events []ProgressEvent
	f, err := NewExporter().ExportBatch(data, func(ev ProgressEvent) {
		events = append(events, ev)
	})
	if err != nil {
		t.Fatalf("ExportBatch failed: %v", err)
	}
	defer f.Close()

	want := []string{SheetBatchResults, SheetDashboard}
	if got := f.GetSheetList(); !reflect.DeepEqual(got, want) {
		t.Errorf("sheets = %v, want %v", got, want)
	}

	a1, _ := f.GetCellValue(SheetBatchResults, "A1")
	b1, _ := f.GetCellValue(SheetBatchResults, "B1")
	if a1 != "Product Name" || b1 != "Selling Price per Unit (EUR)" {
		t.Errorf("header = %q, %q", a1, b1)
	}
	a4, _ := f.GetCellValue(SheetBatchResults, "A4")
	if a4 != "C" {
		t.Errorf("A4 = %q, want C", a4)
	}

	count, _ := f.GetCellValue(SheetDashboard, "B2")
	if count != "3" {
		t.Errorf("Dashboard!B2 = %q, want 3", count)
	}

	// 列宽与数字格式
	widths := []struct {
		sheet, col string
		want       float64
	}{
		{SheetBatchResults, "A", 30},
		{SheetBatchResults, "B", 22},
		{SheetDashboard, "A", 48},
		{SheetDashboard, "B", 20},
	}
	for _, w := range widths {
		got, err := f.GetColWidth(w.sheet, w.col)
		if err != nil || got != w.want {
			t.Errorf("%s!%s width = %v (err %v), want %v", w.sheet, w.col, got, err, w.want)
		}
	}
	for _, cell := range []string{"B2", "B4", "B14"} {
		if style, err := f.GetCellStyle(SheetDashboard, cell); err != nil || style == 0 {
			t.Errorf("Dashboard!%s style = %d (err %v), want non-default", cell, style, err)
		}
	}

	if len(events) == 0 || events[len(events)-1].Percent != 100 {
		t.Errorf("progress events = %+v", events)
	}
	for i := 1; i < len(events); i++ {
		if events[i].Percent < events[i-1].Percent {
			t.Errorf("progress went backwards: %+v", events)
			break
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("zip.NewReader failed: %v", err)
	}
	charts := 0
	for _, zf := range zr.File {
		if strings.HasPrefix(zf.Name, "xl/charts/chart") {
			charts++
		}
	}
	if charts != 3 {
		t.Errorf("charts = %d, want 3", charts)
	}
}

func TestExportBatch_EmptyHasNoCharts(t *testing.T) {
	table, err := report.BuildBatchTable(model.DefaultCostConfig().Currencies(), nil)
	if err != nil {
		t.Fatalf("BuildBatchTable failed: %v", err)
	}
	f, err := NewExporter().ExportBatch(BatchData{Table: table, BaseCurrency: model.CurrencyEUR}, nil)
	if err != nil {
		t.Fatalf("ExportBatch failed: %v", err)
	}
	defer f.Close()

	if got := len(f.GetSheetList()); got != 2 {
		t.Errorf("sheets = %d, want 2", got)
	}
}

func TestExportBatch_NilTable(t *testing.T) {
	if _, err := NewExporter().ExportBatch(BatchData{}, nil); !errors.Is(err, ErrNilBatch) {
		t.Errorf("err = %v, want ErrNilBatch", err)
	}
}

func TestReportPDF(t *testing.T) {
	b, err := NewExporter().ReportPDF(sampleReport(t))
	if err != nil {
		t.Fatalf("ReportPDF failed: %v", err)
	}
	if !bytes.HasPrefix(b, []byte("%PDF")) {
		t.Errorf("missing PDF header: %q", b[:min(8, len(b))])
	}
}

func TestBatchPDF(t *testing.T) {
	b, err := NewExporter().BatchPDF(sampleBatch(t))
	if err != nil {
		t.Fatalf("BatchPDF failed: %v", err)
	}
	if !bytes.HasPrefix(b, []byte("%PDF")) {
		t.Errorf("missing PDF header")
	}
}

func TestGridSizes(t *testing.T) {
	tests := []struct {
		columns int
		want    []uint
	}{
		{1, []uint{12}},
		{2, []uint{6, 6}},
		{4, []uint{6, 2, 2, 2}},
		{5, []uint{8, 1, 1, 1, 1}},
	}
	for _, tt := range tests {
		if got := gridSizes(tt.columns); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("gridSizes(%d) = %v, want %v", tt.columns, got, tt.want)
		}
	}
}
