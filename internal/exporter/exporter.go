package exporter

import (
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"

	"globlex/internal/calculator"
	"globlex/internal/model"
	"globlex/internal/report"
)

// 批量导出 sheet 名称
const (
	SheetBatchResults = "Batch Results"
	SheetDashboard    = "Dashboard"
)

var (
	// ErrEmptyReport 报表没有任何分组
	ErrEmptyReport = errors.New("report has no sections")
	// ErrNilBatch 批量表为空
	ErrNilBatch = errors.New("batch table is nil")
)

// Exporter 报表导出器（Excel / PDF）
type Exporter struct {
	creator string
}

// NewExporter 创建导出器
func NewExporter() *Exporter {
	return &Exporter{creator: "globlex"}
}

// BatchData 批量导出输入
type BatchData struct {
	Table        *report.BatchTable
	Summary      calculator.Summary
	BaseCurrency model.Currency
	DroppedRows  int
}

type styles struct {
	header  int
	title   int
	money   int
	units   int
	percent int
}

func newStyles(f *excelize.File) (*styles, error) {
	header, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", WrapText: true},
	})
	if err != nil {
		return nil, fmt.Errorf("创建表头样式失败: %w", err)
	}
	title, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 13}})
	if err != nil {
		return nil, fmt.Errorf("创建标题样式失败: %w", err)
	}
	moneyFmt := "#,##0.00"
	money, err := f.NewStyle(&excelize.Style{CustomNumFmt: &moneyFmt})
	if err != nil {
		return nil, fmt.Errorf("创建金额样式失败: %w", err)
	}
	units, err := f.NewStyle(&excelize.Style{NumFmt: 3})
	if err != nil {
		return nil, fmt.Errorf("创建数量样式失败: %w", err)
	}
	percentFmt := `0.00"%"`
	percent, err := f.NewStyle(&excelize.Style{
		CustomNumFmt: &percentFmt,
		Alignment:    &excelize.Alignment{Horizontal: "right"},
	})
	if err != nil {
		return nil, fmt.Errorf("创建百分比样式失败: %w", err)
	}
	return &styles{header: header, title: title, money: money, units: units, percent: percent}, nil
}

func (s *styles) forKind(kind string) int {
	switch kind {
	case report.KindUnits:
		return s.units
	case report.KindPercent:
		return s.percent
	default:
		return s.money
	}
}

// ExportReport 导出单产品报表：每个分组一个 sheet
func (e *Exporter) ExportReport(rep *report.Report) (*excelize.File, error) {
	if rep == nil || len(rep.Sections) == 0 {
		return nil, ErrEmptyReport
	}

	f := excelize.NewFile()
	st, err := newStyles(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	for i, sec := range rep.Sections {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), sec.Name); err != nil {
				_ = f.Close()
				return nil, fmt.Errorf("重命名 sheet 失败: %w", err)
			}
		} else if _, err := f.NewSheet(sec.Name); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("创建 sheet %s 失败: %w", sec.Name, err)
		}
		if err := writeSection(f, st, sec); err != nil {
			_ = f.Close()
			return nil, err
		}
	}

	e.setDocProps(f, "Unit Economics Report "+rep.ProductName)
	f.SetActiveSheet(0)
	return f, nil
}

// writeSection 表头在第 1 行，数据从第 2 行开始
func writeSection(f *excelize.File, st *styles, sec report.Section) error {
	header := sec.Header()
	for i, h := range header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sec.Name, cell, h); err != nil {
			return fmt.Errorf("写入表头失败: %w", err)
		}
	}
	if err := f.SetRowStyle(sec.Name, 1, 1, st.header); err != nil {
		return fmt.Errorf("设置表头样式失败: %w", err)
	}

	for r, row := range sec.Rows {
		rowNum := r + 2
		if err := f.SetCellValue(sec.Name, fmt.Sprintf("A%d", rowNum), row.Metric); err != nil {
			return fmt.Errorf("写入指标名失败: %w", err)
		}
		for c, cell := range row.Cells {
			ref, _ := excelize.CoordinatesToCellName(c+2, rowNum)
			if row.Kind == report.KindPercent && c > 0 {
				// 利润率只在基准货币列有值
				if err := f.SetCellValue(sec.Name, ref, cell.Text); err != nil {
					return fmt.Errorf("写入单元格 %s 失败: %w", ref, err)
				}
				continue
			}
			if err := f.SetCellValue(sec.Name, ref, cell.Value); err != nil {
				return fmt.Errorf("写入单元格 %s 失败: %w", ref, err)
			}
			if err := f.SetCellStyle(sec.Name, ref, ref, st.forKind(row.Kind)); err != nil {
				return fmt.Errorf("设置单元格样式失败: %w", err)
			}
		}
	}

	lastCol, _ := excelize.ColumnNumberToName(len(header))
	if err := f.SetColWidth(sec.Name, "A", "A", 45); err != nil {
		return fmt.Errorf("设置列宽失败: %w", err)
	}
	if err := f.SetColWidth(sec.Name, "B", lastCol, 18); err != nil {
		return fmt.Errorf("设置列宽失败: %w", err)
	}
	return nil
}

// ExportBatch 导出批量结果与看板
func (e *Exporter) ExportBatch(data BatchData, progress func(ProgressEvent)) (*excelize.File, error) {
	if data.Table == nil {
		return nil, ErrNilBatch
	}

	reportProgress(progress, 5, "准备工作簿")
	f := excelize.NewFile()
	st, err := newStyles(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	if err := f.SetSheetName(f.GetSheetName(0), SheetBatchResults); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("重命名 sheet 失败: %w", err)
	}

	reportProgress(progress, 10, "写入批量结果")
	if err := writeBatchResults(f, st, data.Table, progress); err != nil {
		_ = f.Close()
		return nil, err
	}

	reportProgress(progress, 80, "生成看板")
	if _, err := f.NewSheet(SheetDashboard); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("创建 sheet %s 失败: %w", SheetDashboard, err)
	}
	if err := writeDashboard(f, st, data); err != nil {
		_ = f.Close()
		return nil, err
	}

	e.setDocProps(f, "Batch Unit Economics")
	f.SetActiveSheet(0)
	reportProgress(progress, 100, "完成")
	return f, nil
}

func writeBatchResults(f *excelize.File, st *styles, t *report.BatchTable, progress func(ProgressEvent)) error {
	sheet := SheetBatchResults
	for i, h := range t.Columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("写入表头失败: %w", err)
		}
	}
	if err := f.SetRowStyle(sheet, 1, 1, st.header); err != nil {
		return fmt.Errorf("设置表头样式失败: %w", err)
	}

	total := len(t.Values)
	for i, values := range t.Values {
		rowNum := i + 2
		row := make([]interface{}, 0, len(values)+1)
		row = append(row, t.Names[i])
		for _, v := range values {
			row = append(row, v)
		}
		cell, _ := excelize.CoordinatesToCellName(1, rowNum)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("写入第 %d 行失败: %w", rowNum, err)
		}
		if total > 0 {
			reportProgress(progress, 10+int(float64(i+1)/float64(total)*65), "写入批量结果")
		}
	}

	lastCol, _ := excelize.ColumnNumberToName(len(t.Columns))
	if total > 0 {
		if err := f.SetCellStyle(sheet, "B2", fmt.Sprintf("%s%d", lastCol, total+1), st.money); err != nil {
			return fmt.Errorf("设置金额样式失败: %w", err)
		}
	}
	if err := f.SetColWidth(sheet, "A", "A", 30); err != nil {
		return fmt.Errorf("设置列宽失败: %w", err)
	}
	if err := f.SetColWidth(sheet, "B", lastCol, 22); err != nil {
		return fmt.Errorf("设置列宽失败: %w", err)
	}
	if err := f.SetPanes(sheet, &excelize.Panes{Freeze: true, XSplit: 1, YSplit: 1, TopLeftCell: "B2", ActivePane: "bottomRight"}); err != nil {
		return fmt.Errorf("冻结窗格失败: %w", err)
	}
	return nil
}

func writeDashboard(f *excelize.File, st *styles, data BatchData) error {
	sheet := SheetDashboard
	cur := string(data.BaseCurrency)
	s := data.Summary

	rows := [][]interface{}{
		{"Metric", "Value"},
		{"Products", s.ProductCount},
		{"Total Units", s.TotalUnits},
		{fmt.Sprintf("Direct Revenue (%s)", cur), s.DirectRevenue},
		{fmt.Sprintf("Revenue Share (%s)", cur), s.RevenueShareTotal},
		{fmt.Sprintf("Total Revenue (%s)", cur), s.TotalRevenue},
		{fmt.Sprintf("Total COGS (%s)", cur), s.TotalCOGS},
		{fmt.Sprintf("Gross Profit (Direct Revenue only, %s)", cur), s.GrossProfitDirect},
		{fmt.Sprintf("Gross Profit (Direct + Revenue Share, %s)", cur), s.GrossProfitTotal},
		{fmt.Sprintf("Operating Expenses Charged (%s)", cur), s.OperatingExpenseCharged},
		{fmt.Sprintf("Net Profit (Direct Revenue only, %s)", cur), s.NetProfitDirect},
		{fmt.Sprintf("Net Profit (Direct + Revenue Share, %s)", cur), s.NetProfitTotal},
		{fmt.Sprintf("Mean Selling Price (%s)", cur), s.MeanSellingPrice},
		{"Gross Margin (Direct Revenue only)", s.GrossMargin},
	}
	if data.DroppedRows > 0 {
		rows = append(rows, []interface{}{"Dropped Rows", data.DroppedRows})
	}

	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("写入看板失败: %w", err)
		}
	}
	if err := f.SetRowStyle(sheet, 1, 1, st.header); err != nil {
		return fmt.Errorf("设置表头样式失败: %w", err)
	}
	cellStyles := []struct {
		from, to string
		style    int
	}{
		{"B2", "B3", st.units},
		{"B4", "B13", st.money},
		{"B14", "B14", st.percent},
	}
	for _, cs := range cellStyles {
		if err := f.SetCellStyle(sheet, cs.from, cs.to, cs.style); err != nil {
			return fmt.Errorf("设置看板样式失败: %w", err)
		}
	}
	if err := f.SetColWidth(sheet, "A", "A", 48); err != nil {
		return fmt.Errorf("设置列宽失败: %w", err)
	}
	if err := f.SetColWidth(sheet, "B", "B", 20); err != nil {
		return fmt.Errorf("设置列宽失败: %w", err)
	}

	return addDashboardCharts(f, data)
}

// addDashboardCharts 三张图：直接收入柱状图、总收入占比饼图、单价折线图
func addDashboardCharts(f *excelize.File, data BatchData) error {
	t := data.Table
	n := len(t.Names)
	if n == 0 {
		return nil
	}
	cur := data.BaseCurrency

	// 返回系列名称（表头单元格）与数值区域引用
	ref := func(column string) (string, string, error) {
		idx := -1
		for i, c := range t.Columns {
			if c == column {
				idx = i
				break
			}
		}
		if idx < 0 {
			return "", "", fmt.Errorf("批量表缺少列 %s", column)
		}
		col, err := excelize.ColumnNumberToName(idx + 1)
		if err != nil {
			return "", "", err
		}
		name := fmt.Sprintf("'%s'!$%s$1", SheetBatchResults, col)
		return name, fmt.Sprintf("'%s'!$%s$2:$%s$%d", SheetBatchResults, col, col, n+1), nil
	}
	categories := fmt.Sprintf("'%s'!$A$2:$A$%d", SheetBatchResults, n+1)

	charts := []struct {
		cell   string
		typ    excelize.ChartType
		title  string
		column string
	}{
		{"D2", excelize.Col, "Direct Revenue by Product", fmt.Sprintf("Direct Revenue (%s)", cur)},
		{"D20", excelize.Pie, "Total Revenue Share by Product", fmt.Sprintf("Total Revenue (%s)", cur)},
		{"D38", excelize.Line, "Selling Price per Unit", fmt.Sprintf("Selling Price per Unit (%s)", cur)},
	}

	for _, c := range charts {
		name, values, err := ref(c.column)
		if err != nil {
			return err
		}
		chart := &excelize.Chart{
			Type: c.typ,
			Series: []excelize.ChartSeries{
				{
					Name:       name,
					Categories: categories,
					Values:     values,
				},
			},
			Title:     []excelize.RichTextRun{{Text: c.title}},
			Legend:    excelize.ChartLegend{Position: "bottom"},
			Dimension: excelize.ChartDimension{Width: 640, Height: 320},
		}
		if c.typ == excelize.Pie {
			chart.PlotArea = excelize.ChartPlotArea{ShowPercent: true}
		}
		if err := f.AddChart(SheetDashboard, c.cell, chart); err != nil {
			return fmt.Errorf("添加图表 %s 失败: %w", c.title, err)
		}
	}
	return nil
}

func (e *Exporter) setDocProps(f *excelize.File, title string) {
	_ = f.SetDocProps(&excelize.DocProperties{
		Creator: e.creator,
		Title:   title,
	})
}
